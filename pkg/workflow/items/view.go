package items

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// View is a terminal sink. It records the resources that reach it so a front
// end can display them, and advertises nothing downstream.
type View struct {
	Base

	mu   sync.Mutex
	seen []workflow.Resource
}

// NewView returns a view item.
func NewView(name string) *View {
	return &View{Base: NewBase(name)}
}

func (v *View) Execute(_ context.Context, inputs []workflow.Resource) workflow.Outcome {
	v.mu.Lock()
	v.seen = append([]workflow.Resource(nil), inputs...)
	v.mu.Unlock()
	slog.Info("view refreshed", "item", v.Name(), "resources", len(inputs))
	return workflow.OutcomeContinue
}

// Seen returns the resources observed in the latest run.
func (v *View) Seen() []workflow.Resource {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]workflow.Resource(nil), v.seen...)
}

func (v *View) OutputResources() []workflow.Resource { return nil }
