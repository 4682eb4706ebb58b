// Package items provides the built-in project item kinds that plug into the
// workflow engine: data stores, data connections, tools, views, importers,
// and exporters. Each kind implements workflow.Item; the Registry resolves
// node names to live items for the execution driver.
package items

import (
	"sync"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// Base carries the bookkeeping every item kind shares: the item's name and
// the latest simulation or invalidation state pushed by the scheduler. Item
// kinds embed it and add their own Execute and OutputResources.
type Base struct {
	name string

	mu        sync.Mutex
	rank      int
	simInputs []workflow.Resource
	invalid   bool
	cycles    []workflow.Edge
}

// NewBase returns a Base for an item named name. Rank starts at -1 until the
// first simulation pass assigns one.
func NewBase(name string) Base {
	return Base{name: name, rank: -1}
}

// Name returns the item's node name.
func (b *Base) Name() string { return b.name }

// SimulateExecution records the rank and input view of a dry pass so the
// item can present them without running.
func (b *Base) SimulateExecution(rank int, inputs []workflow.Resource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rank = rank
	b.simInputs = append([]workflow.Resource(nil), inputs...)
	b.invalid = false
	b.cycles = nil
}

// InvalidateWorkflow marks the item's graph as not executable. The offending
// edges are kept for display.
func (b *Base) InvalidateWorkflow(cycles []workflow.Edge) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invalid = true
	b.cycles = append([]workflow.Edge(nil), cycles...)
	b.rank = -1
	b.simInputs = nil
}

// StopExecution is a no-op for item kinds without long-running work. Kinds
// that spawn subprocesses override it.
func (b *Base) StopExecution() {}

// Rank returns the position assigned by the latest simulation pass, or -1
// when the item has not been simulated or its graph was invalidated.
func (b *Base) Rank() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rank
}

// SimulatedInputs returns the resources the latest simulation pass offered
// to this item.
func (b *Base) SimulatedInputs() []workflow.Resource {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]workflow.Resource(nil), b.simInputs...)
}

// Invalidated reports whether the latest notification flagged this item's
// graph as non-executable.
func (b *Base) Invalidated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.invalid
}

// CycleEdges returns the edges reported by the latest invalidation.
func (b *Base) CycleEdges() []workflow.Edge {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]workflow.Edge(nil), b.cycles...)
}
