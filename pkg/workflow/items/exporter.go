package items

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// Exporter writes a JSON manifest of its input resources to a file, giving a
// run a durable record of what reached the end of a branch.
type Exporter struct {
	Base
	outFile string
}

type exportManifest struct {
	Item      string              `json:"item"`
	Resources []workflow.Resource `json:"resources"`
}

// NewExporter returns an exporter writing its manifest to outFile.
func NewExporter(name, outFile string) *Exporter {
	return &Exporter{Base: NewBase(name), outFile: outFile}
}

// OutFile returns the manifest path.
func (e *Exporter) OutFile() string { return e.outFile }

func (e *Exporter) Execute(_ context.Context, inputs []workflow.Resource) workflow.Outcome {
	if e.outFile == "" {
		slog.Error("exporter has no output file", "item", e.Name())
		return workflow.OutcomeFailed
	}
	manifest := exportManifest{
		Item:      e.Name(),
		Resources: append([]workflow.Resource{}, inputs...),
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		slog.Error("cannot encode manifest", "item", e.Name(), "err", err)
		return workflow.OutcomeFailed
	}
	if err := os.WriteFile(e.outFile, data, 0o644); err != nil {
		slog.Error("cannot write manifest", "item", e.Name(), "file", e.outFile, "err", err)
		return workflow.OutcomeFailed
	}
	slog.Info("manifest written", "item", e.Name(), "file", e.outFile, "resources", len(inputs))
	return workflow.OutcomeContinue
}

// OutputResources advertises the manifest file.
func (e *Exporter) OutputResources() []workflow.Resource {
	if e.outFile == "" {
		return nil
	}
	return []workflow.Resource{{Kind: workflow.ResourceFile, Locator: e.outFile, IsOutput: true}}
}
