package workflow

import (
	"fmt"
	"strings"
)

// CycleError reports that a graph is not executable, carrying every edge
// that participates in a cycle so the user can see exactly what to cut.
type CycleError struct {
	Edges []Edge
}

func (e CycleError) Error() string {
	parts := make([]string, len(e.Edges))
	for i, edge := range e.Edges {
		parts[i] = fmt.Sprintf("%s -> %s", edge.Src, edge.Dst)
	}
	return fmt.Sprintf("graph is not a DAG; cycle edges: %s", strings.Join(parts, ", "))
}

// IntegrityError signals that the store's partition invariant no longer
// holds (a node or edge is missing where it must exist). It is a programming
// bug, not a user mistake: callers abort the operation instead of continuing.
type IntegrityError struct {
	Op     string
	Detail string
}

func (e IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}
