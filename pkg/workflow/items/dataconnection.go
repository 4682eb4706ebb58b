package items

import (
	"context"
	"log/slog"
	"os"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// DataConnection forwards references to files on disk. The files are not
// touched; downstream items receive their paths as file resources.
type DataConnection struct {
	Base
	references []string
}

// NewDataConnection returns a data connection forwarding references.
func NewDataConnection(name string, references []string) *DataConnection {
	return &DataConnection{
		Base:       NewBase(name),
		references: append([]string(nil), references...),
	}
}

// References returns the configured file references.
func (d *DataConnection) References() []string {
	return append([]string(nil), d.references...)
}

func (d *DataConnection) Execute(_ context.Context, _ []workflow.Resource) workflow.Outcome {
	for _, ref := range d.references {
		if _, err := os.Stat(ref); err != nil {
			slog.Warn("referenced file missing", "item", d.Name(), "path", ref)
		}
	}
	slog.Info("forwarding file references", "item", d.Name(), "files", len(d.references))
	return workflow.OutcomeContinue
}

// OutputResources advertises one file resource per reference.
func (d *DataConnection) OutputResources() []workflow.Resource {
	out := make([]workflow.Resource, 0, len(d.references))
	for _, ref := range d.references {
		out = append(out, workflow.Resource{Kind: workflow.ResourceFile, Locator: ref})
	}
	return out
}
