package workflow

import "fmt"

// GraphSnapshot is the persistence shape of a whole store: a flat node list
// and edge list from which the graph partition is rebuilt.
type GraphSnapshot struct {
	Nodes []string    `json:"nodes"`
	Edges [][2]string `json:"edges"`
}

// Snapshot flattens every graph into a single snapshot, in store order.
func (s *GraphStore) Snapshot() GraphSnapshot {
	var snap GraphSnapshot
	for _, g := range s.graphs {
		snap.Nodes = append(snap.Nodes, g.nodes...)
		for _, e := range g.edges {
			snap.Edges = append(snap.Edges, [2]string{e.Src, e.Dst})
		}
	}
	return snap
}

// RestoreGraphStore rebuilds a store from a snapshot. All nodes are created
// before any edge; an edge naming an unknown node fails the whole restore.
func RestoreGraphStore(snap GraphSnapshot) (*GraphStore, error) {
	s := NewGraphStore()
	for _, n := range snap.Nodes {
		if err := s.AddNode(n); err != nil {
			return nil, fmt.Errorf("restore node %q: %w", n, err)
		}
	}
	for _, e := range snap.Edges {
		if err := s.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("restore edge %s -> %s: %w", e[0], e[1], err)
		}
	}
	return s, nil
}
