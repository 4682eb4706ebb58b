package workflow

import "context"

// Outcome is the completion signal an item reports back to the driver.
// Items must translate every internal fault into one of these; errors never
// cross the execution boundary.
type Outcome int

const (
	OutcomeContinue Outcome = 0
	OutcomeFailed   Outcome = -1
	OutcomeStopped  Outcome = -2
)

func (o Outcome) String() string {
	switch o {
	case OutcomeContinue:
		return "CONTINUE"
	case OutcomeFailed:
		return "FAILED"
	case OutcomeStopped:
		return "STOPPED"
	}
	return "UNKNOWN"
}

// State tracks one run of one graph.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateUserStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	case StateUserStopped:
		return "USER_STOPPED"
	}
	return "UNKNOWN"
}

// Item is the execution-facing surface of a project item. The engine never
// sees concrete item types, only this interface.
type Item interface {
	// Execute runs the item against the resources its upstream neighbors
	// forwarded. It blocks until the item finishes and reports how.
	Execute(ctx context.Context, inputs []Resource) Outcome

	// StopExecution asks a running Execute to wind down. It must be safe to
	// call from another goroutine and when nothing is running.
	StopExecution()

	// SimulateExecution notifies the item of its position in the order and
	// the resources its direct predecessors advertise, without running it.
	SimulateExecution(rank int, inputs []Resource)

	// OutputResources returns what the item currently advertises downstream:
	// declared outputs before a run, actually produced outputs after one.
	OutputResources() []Resource

	// InvalidateWorkflow tells the item its graph cannot execute, listing the
	// edges that close cycles.
	InvalidateWorkflow(cycles []Edge)
}

// ItemResolver finds the item behind a node name.
type ItemResolver interface {
	Find(name string) (Item, error)
}
