package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// RunResult reports the outcome of one graph's run.
type RunResult struct {
	RunID     uuid.UUID
	Graph     *Graph
	State     State
	Order     []string
	Published []Resource
	Err       error
}

// Scheduler runs a project's graphs one after another, selectively or in
// full, and relays structural-change notifications to items. Graphs never
// execute concurrently: items may share external state such as database
// files. Mutating calls belong to one coordinating goroutine; Stop is safe
// from any goroutine.
type Scheduler struct {
	store *GraphStore
	items ItemResolver

	mu            sync.Mutex
	stopRequested bool
	current       *Driver
}

func NewScheduler(store *GraphStore, items ItemResolver) *Scheduler {
	return &Scheduler{store: store, items: items}
}

// ExecuteAll runs every graph in store order with every node permitted. A
// graph that is not a DAG is reported and skipped; a failed or stopped run
// halts the remaining sequence.
func (s *Scheduler) ExecuteAll(ctx context.Context) []RunResult {
	s.resetStop()
	var results []RunResult
	for _, g := range s.store.Graphs() {
		if s.stopped() {
			slog.Info("stop requested, remaining graphs not started")
			break
		}
		res := s.runGraph(ctx, g, nil)
		results = append(results, res)
		if res.State == StateFailed || res.State == StateUserStopped {
			break
		}
	}
	return results
}

// ExecuteSelected runs only the graphs touched by the named nodes. Within a
// touched graph every node is still visited in order, but only the selected
// ones execute; the rest forward resources without side effects. Unknown
// names fail the whole request before anything runs.
func (s *Scheduler) ExecuteSelected(ctx context.Context, names []string) ([]RunResult, error) {
	selected := make(map[string]bool, len(names))
	for _, n := range names {
		if !s.store.HasNode(n) {
			return nil, fmt.Errorf("unknown item %q", n)
		}
		selected[n] = true
	}

	s.resetStop()
	var results []RunResult
	for _, g := range s.store.Graphs() {
		touched := false
		for _, n := range g.Nodes() {
			if selected[n] {
				touched = true
				break
			}
		}
		if !touched {
			continue
		}
		if s.stopped() {
			slog.Info("stop requested, remaining graphs not started")
			break
		}
		permits := make(map[string]bool, g.NodeCount())
		for _, n := range g.Nodes() {
			permits[n] = selected[n]
		}
		res := s.runGraph(ctx, g, permits)
		results = append(results, res)
		if res.State == StateFailed || res.State == StateUserStopped {
			break
		}
	}
	return results, nil
}

// Stop blocks the next queued graph from starting and forwards the request
// to the run in flight. Reports whether there was anything to stop.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	s.stopRequested = true
	cur := s.current
	s.mu.Unlock()

	if cur == nil {
		slog.Info("stop requested but no run is active")
		return false
	}
	cur.Stop()
	return true
}

// NotifyGraphChanged recomputes g's order and pushes a simulation pass to
// its items: each item learns its rank and the resources its direct
// predecessors advertise, letting it revalidate without a real run. A graph
// that cannot execute invalidates its items instead, with the offending
// edges.
func (s *Scheduler) NotifyGraphChanged(g *Graph) {
	order, err := ExecutionOrder(g)
	if err != nil {
		var cyc CycleError
		if errors.As(err, &cyc) {
			slog.Warn("graph cannot execute", "edges", len(cyc.Edges))
			s.invalidate(g, cyc.Edges)
		}
		return
	}

	advertised := make(map[string][]Resource, len(order))
	for rank, name := range order {
		item, err := s.items.Find(name)
		if err != nil {
			slog.Error("no item behind node", "node", name, "err", err)
			continue
		}
		var inputs []Resource
		for _, e := range g.IncomingEdges(name) {
			inputs = append(inputs, advertised[e.Src]...)
		}
		item.SimulateExecution(rank, inputs)
		advertised[name] = stampProvider(name, item.OutputResources())
	}
}

// NotifyAll runs the simulation pass over every graph in the store.
func (s *Scheduler) NotifyAll() {
	for _, g := range s.store.Graphs() {
		s.NotifyGraphChanged(g)
	}
}

// runGraph orders and executes one graph. A non-DAG graph never starts: its
// items are invalidated and the result carries the CycleError.
func (s *Scheduler) runGraph(ctx context.Context, g *Graph, permits map[string]bool) RunResult {
	order, err := ExecutionOrder(g)
	if err != nil {
		var cyc CycleError
		if errors.As(err, &cyc) {
			slog.Warn("graph is not executable, skipping", "edges", len(cyc.Edges))
			s.invalidate(g, cyc.Edges)
		}
		return RunResult{Graph: g, State: StateNotStarted, Err: err}
	}

	driver := NewDriver(g, order, permits, s.items)
	s.setCurrent(driver)
	state := driver.Run(ctx)
	s.setCurrent(nil)

	return RunResult{
		RunID:     driver.ID(),
		Graph:     g,
		State:     state,
		Order:     order,
		Published: driver.Broker().All(),
	}
}

func (s *Scheduler) invalidate(g *Graph, cycles []Edge) {
	for _, name := range g.Nodes() {
		item, err := s.items.Find(name)
		if err != nil {
			slog.Error("no item behind node", "node", name, "err", err)
			continue
		}
		item.InvalidateWorkflow(cycles)
	}
}

func (s *Scheduler) setCurrent(d *Driver) {
	s.mu.Lock()
	s.current = d
	s.mu.Unlock()
}

func (s *Scheduler) resetStop() {
	s.mu.Lock()
	s.stopRequested = false
	s.mu.Unlock()
}

func (s *Scheduler) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopRequested
}
