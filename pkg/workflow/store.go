package workflow

import (
	"fmt"
	"log/slog"
)

// GraphStore owns every graph of one project and keeps the partition
// invariant intact under mutation: each node lives in exactly one graph, and
// each graph is a maximal weakly connected component. One store per project;
// mutating calls belong to a single coordinating goroutine.
type GraphStore struct {
	graphs []*Graph
}

func NewGraphStore() *GraphStore {
	return &GraphStore{}
}

// Graphs returns the graph collection in insertion order.
func (s *GraphStore) Graphs() []*Graph {
	return append([]*Graph(nil), s.graphs...)
}

// NodeNames returns every node across all graphs, in store order.
func (s *GraphStore) NodeNames() []string {
	var out []string
	for _, g := range s.graphs {
		out = append(out, g.nodes...)
	}
	return out
}

func (s *GraphStore) HasNode(name string) bool {
	for _, g := range s.graphs {
		if g.HasNode(name) {
			return true
		}
	}
	return false
}

// GraphCount returns the number of disjoint graphs.
func (s *GraphStore) GraphCount() int { return len(s.graphs) }

// EdgeCount returns the total edge count across all graphs.
func (s *GraphStore) EdgeCount() int {
	n := 0
	for _, g := range s.graphs {
		n += len(g.edges)
	}
	return n
}

// GraphWithNode returns the graph holding name. A miss means the partition
// invariant is broken and is reported as an IntegrityError.
func (s *GraphStore) GraphWithNode(name string) (*Graph, error) {
	for _, g := range s.graphs {
		if g.HasNode(name) {
			return g, nil
		}
	}
	slog.Error("node not found in any graph", "node", name)
	return nil, IntegrityError{Op: "graph lookup", Detail: fmt.Sprintf("node %q not in any graph", name)}
}

// GraphWithEdge returns the graph holding the edge src→dst, with the same
// integrity semantics as GraphWithNode.
func (s *GraphStore) GraphWithEdge(src, dst string) (*Graph, error) {
	for _, g := range s.graphs {
		if g.HasEdge(src, dst) {
			return g, nil
		}
	}
	slog.Error("edge not found in any graph", "src", src, "dst", dst)
	return nil, IntegrityError{Op: "graph lookup", Detail: fmt.Sprintf("edge %s -> %s not in any graph", src, dst)}
}

// AddNode creates a new singleton graph holding name. Names are unique
// across the whole store; a duplicate is rejected.
func (s *GraphStore) AddNode(name string) error {
	if s.HasNode(name) {
		slog.Error("node already exists", "node", name)
		return IntegrityError{Op: "add node", Detail: fmt.Sprintf("node %q already exists", name)}
	}
	s.graphs = append(s.graphs, newGraph([]string{name}, nil))
	return nil
}

// AddEdge connects src to dst. A self-loop lands in the node's own graph; an
// edge inside one graph is added in place; an edge between two graphs merges
// them into one. The merge is atomic: the store never exposes a state where
// the two halves coexist with the merged graph.
func (s *GraphStore) AddEdge(src, dst string) error {
	if src == dst {
		g, err := s.GraphWithNode(src)
		if err != nil {
			return err
		}
		g.addEdge(src, dst)
		return nil
	}

	srcGraph, err := s.GraphWithNode(src)
	if err != nil {
		return err
	}
	dstGraph, err := s.GraphWithNode(dst)
	if err != nil {
		return err
	}

	if srcGraph == dstGraph {
		srcGraph.addEdge(src, dst)
		return nil
	}

	merged := newGraph(
		append(append([]string(nil), srcGraph.nodes...), dstGraph.nodes...),
		append(append([]Edge(nil), srcGraph.edges...), dstGraph.edges...),
	)
	merged.addEdge(src, dst)
	s.replace([]*Graph{srcGraph, dstGraph}, merged)
	return nil
}

// RemoveEdge deletes src→dst and repairs the partition: endpoints left
// without foreign edges split off as singletons (keeping their self-loops),
// and a graph torn in two is replaced by its components.
func (s *GraphStore) RemoveEdge(src, dst string) error {
	g, err := s.GraphWithEdge(src, dst)
	if err != nil {
		return err
	}
	g.removeEdge(src, dst)
	if src == dst {
		return nil
	}

	srcIsolated := g.IsIsolated(src, true)
	dstIsolated := g.IsIsolated(dst, true)
	if srcIsolated || dstIsolated {
		var parts []*Graph
		if srcIsolated {
			parts = append(parts, extractNode(g, src))
		}
		if dstIsolated {
			parts = append(parts, extractNode(g, dst))
		}
		if g.NodeCount() == 0 {
			s.replace([]*Graph{g}, parts...)
		} else {
			s.graphs = append(s.graphs, parts...)
		}
		return nil
	}

	if Connected(g, src, dst) {
		return nil
	}
	if parts := connectedComponents(g); len(parts) > 1 {
		s.replace([]*Graph{g}, parts...)
	}
	return nil
}

// RemoveNode drops name and its incident edges, then repairs the owning
// graph: an emptied graph is discarded, a disconnected one is replaced by
// its components (singletons included).
func (s *GraphStore) RemoveNode(name string) error {
	g, err := s.GraphWithNode(name)
	if err != nil {
		return err
	}
	g.removeNode(name)
	if g.NodeCount() == 0 {
		s.replace([]*Graph{g})
		return nil
	}
	if parts := connectedComponents(g); len(parts) > 1 {
		s.replace([]*Graph{g}, parts...)
	}
	return nil
}

// RenameNode relabels old to new in place. The new name must be unused
// anywhere in the store.
func (s *GraphStore) RenameNode(old, new string) error {
	g, err := s.GraphWithNode(old)
	if err != nil {
		return err
	}
	if old == new {
		return nil
	}
	if s.HasNode(new) {
		slog.Error("rename target already exists", "old", old, "new", new)
		return IntegrityError{Op: "rename node", Detail: fmt.Sprintf("node %q already exists", new)}
	}
	g.renameNode(old, new)
	return nil
}

// replace swaps out graphs for in, splicing in at the first removed slot so
// store order stays stable. A single slice assignment keeps the change
// atomic for readers on the coordinating goroutine.
func (s *GraphStore) replace(out []*Graph, in ...*Graph) {
	removed := func(g *Graph) bool {
		for _, o := range out {
			if o == g {
				return true
			}
		}
		return false
	}
	next := make([]*Graph, 0, len(s.graphs))
	spliced := false
	for _, g := range s.graphs {
		if removed(g) {
			if !spliced {
				next = append(next, in...)
				spliced = true
			}
			continue
		}
		next = append(next, g)
	}
	if !spliced {
		next = append(next, in...)
	}
	s.graphs = next
}

// extractNode pulls name out of g into a fresh singleton graph, carrying any
// self-loops along.
func extractNode(g *Graph, name string) *Graph {
	var loops []Edge
	for _, e := range g.edges {
		if e.Src == name && e.Dst == name {
			loops = append(loops, e)
		}
	}
	g.removeNode(name)
	return newGraph([]string{name}, loops)
}
