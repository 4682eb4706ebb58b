package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Driver executes the ordered nodes of one graph, one item at a time,
// waiting for each item's completion signal before advancing. Run blocks the
// calling goroutine; Stop may interrupt from any other goroutine. Each
// driver owns a fresh Broker, so resources never leak across runs.
type Driver struct {
	id      uuid.UUID
	graph   *Graph
	order   []string
	permits map[string]bool
	items   ItemResolver
	broker  *Broker

	mu        sync.Mutex
	state     State
	stop      bool
	current   Item
	forwarded map[string][]Resource
	executed  []string
	skipped   []string
}

// NewDriver prepares a run over graph following order. permits marks which
// nodes actually execute; nodes missing from the map are permitted.
func NewDriver(graph *Graph, order []string, permits map[string]bool, items ItemResolver) *Driver {
	return &Driver{
		id:        uuid.New(),
		graph:     graph,
		order:     order,
		permits:   permits,
		items:     items,
		broker:    NewBroker(),
		forwarded: make(map[string][]Resource),
	}
}

// ID returns the run identifier.
func (d *Driver) ID() uuid.UUID { return d.id }

// Broker returns this run's resource store.
func (d *Driver) Broker() *Broker { return d.broker }

func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Executed returns the nodes that actually ran, in run order.
func (d *Driver) Executed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.executed...)
}

// Skipped returns the visited-but-not-permitted nodes, in run order.
func (d *Driver) Skipped() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.skipped...)
}

// Run walks the order sequentially and returns the terminal state. Every
// node is visited in order; non-permitted nodes are skipped but still
// forward resources so downstream visibility stays intact. A failure or a
// stop abandons the remaining nodes.
func (d *Driver) Run(ctx context.Context) State {
	d.mu.Lock()
	if d.state != StateNotStarted {
		st := d.state
		d.mu.Unlock()
		slog.Error("run already started", "run", d.id, "state", st.String())
		return st
	}
	d.state = StateRunning
	d.mu.Unlock()

	slog.Info("run starting", "run", d.id, "nodes", len(d.order))

	for _, name := range d.order {
		select {
		case <-ctx.Done():
			slog.Info("run cancelled", "run", d.id, "at", name)
			return d.finish(StateUserStopped)
		default:
		}
		if d.stopRequested() {
			return d.finish(StateUserStopped)
		}

		item, err := d.items.Find(name)
		if err != nil {
			slog.Error("no item behind node", "run", d.id, "node", name, "err", err)
			return d.finish(StateFailed)
		}

		inputs := d.inputsFor(name)

		if !d.permitted(name) {
			slog.Info("skipping node", "run", d.id, "node", name)
			d.mu.Lock()
			d.skipped = append(d.skipped, name)
			// A skipped node stays transparent: it forwards what it would
			// have produced plus everything it received.
			d.forwarded[name] = append(stampProvider(name, item.OutputResources()), inputs...)
			d.mu.Unlock()
			continue
		}

		slog.Info("executing node", "run", d.id, "node", name)
		d.setCurrent(item)
		outcome := item.Execute(ctx, inputs)
		d.setCurrent(nil)

		switch outcome {
		case OutcomeContinue:
			for _, r := range item.OutputResources() {
				d.broker.Publish(name, r)
			}
			d.mu.Lock()
			d.executed = append(d.executed, name)
			d.forwarded[name] = d.broker.ResourcesFrom(name)
			d.mu.Unlock()
		case OutcomeStopped:
			slog.Info("node stopped", "run", d.id, "node", name)
			return d.finish(StateUserStopped)
		default:
			slog.Error("node failed", "run", d.id, "node", name, "outcome", outcome.String())
			return d.finish(StateFailed)
		}
	}
	return d.finish(StateCompleted)
}

// Stop requests cancellation: it blocks further nodes from starting and
// forwards the request to the item currently running. Calling it when
// nothing is running is a logged no-op; it reports whether a run was
// actually interrupted.
func (d *Driver) Stop() bool {
	d.mu.Lock()
	if d.state != StateRunning {
		st := d.state
		d.mu.Unlock()
		slog.Info("stop requested but run is not active", "run", d.id, "state", st.String())
		return false
	}
	d.stop = true
	cur := d.current
	d.mu.Unlock()

	slog.Info("stopping run", "run", d.id)
	if cur != nil {
		cur.StopExecution()
	}
	return true
}

// inputsFor assembles the resources forwarded by name's direct predecessors,
// in edge order.
func (d *Driver) inputsFor(name string) []Resource {
	d.mu.Lock()
	defer d.mu.Unlock()
	var in []Resource
	for _, e := range d.graph.IncomingEdges(name) {
		in = append(in, d.forwarded[e.Src]...)
	}
	return in
}

func (d *Driver) permitted(name string) bool {
	allowed, ok := d.permits[name]
	return !ok || allowed
}

func (d *Driver) stopRequested() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop
}

func (d *Driver) setCurrent(item Item) {
	d.mu.Lock()
	d.current = item
	d.mu.Unlock()
}

func (d *Driver) finish(st State) State {
	d.mu.Lock()
	d.state = st
	d.mu.Unlock()
	slog.Info("run finished", "run", d.id, "state", st.String())
	return st
}
