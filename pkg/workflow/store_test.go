package workflow_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// checkPartition asserts the store's partition invariant: every expected
// node in exactly one graph, no graph empty.
func checkPartition(t *testing.T, s *workflow.GraphStore, nodes []string) {
	t.Helper()
	seen := make(map[string]int)
	for _, g := range s.Graphs() {
		if g.NodeCount() == 0 {
			t.Error("store contains an empty graph")
		}
		for _, n := range g.Nodes() {
			seen[n]++
		}
	}
	for _, n := range nodes {
		if seen[n] != 1 {
			t.Errorf("node %q appears in %d graphs, want 1", n, seen[n])
		}
	}
	if len(seen) != len(nodes) {
		t.Errorf("store holds %d nodes, want %d", len(seen), len(nodes))
	}
}

func TestStore_AddNodeCreatesSingleton(t *testing.T) {
	s := buildStore(t, []string{"a", "b"}, nil)
	if s.GraphCount() != 2 {
		t.Fatalf("graphs = %d, want 2", s.GraphCount())
	}
	checkPartition(t, s, []string{"a", "b"})
}

func TestStore_AddNodeDuplicate(t *testing.T) {
	s := buildStore(t, []string{"a"}, nil)
	err := s.AddNode("a")
	if err == nil {
		t.Fatal("duplicate AddNode should fail")
	}
	var ie workflow.IntegrityError
	if !errors.As(err, &ie) {
		t.Errorf("error = %T, want IntegrityError", err)
	}
	checkPartition(t, s, []string{"a"})
}

func TestStore_AddEdgeMergesGraphs(t *testing.T) {
	s := buildStore(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g := singleGraph(t, s)
	if !g.HasNode("a") || !g.HasNode("b") || !g.HasEdge("a", "b") {
		t.Errorf("merged graph incomplete: nodes=%v edges=%v", g.Nodes(), g.Edges())
	}
}

func TestStore_AddEdgeInPlace(t *testing.T) {
	s := buildStore(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	if s.GraphCount() != 1 {
		t.Fatalf("graphs = %d, want 1", s.GraphCount())
	}
	// A second edge inside the same graph must not change the graph count.
	if err := s.AddEdge("a", "c"); err != nil {
		t.Fatalf("AddEdge(a, c): %v", err)
	}
	if s.GraphCount() != 1 || s.EdgeCount() != 3 {
		t.Errorf("graphs=%d edges=%d, want 1 and 3", s.GraphCount(), s.EdgeCount())
	}
}

func TestStore_AddEdgeMergesLargerGraphs(t *testing.T) {
	s := buildStore(t, []string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"c", "d"}})
	if s.GraphCount() != 2 {
		t.Fatalf("graphs = %d, want 2", s.GraphCount())
	}
	if err := s.AddEdge("b", "c"); err != nil {
		t.Fatalf("AddEdge(b, c): %v", err)
	}
	g := singleGraph(t, s)
	if g.NodeCount() != 4 || g.EdgeCount() != 3 {
		t.Errorf("merged graph has %d nodes, %d edges, want 4 and 3", g.NodeCount(), g.EdgeCount())
	}
	checkPartition(t, s, []string{"a", "b", "c", "d"})
}

func TestStore_AddEdgeSelfLoop(t *testing.T) {
	s := buildStore(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	if err := s.AddEdge("a", "a"); err != nil {
		t.Fatalf("AddEdge(a, a): %v", err)
	}
	g := singleGraph(t, s)
	if !g.HasEdge("a", "a") {
		t.Error("self-loop not stored")
	}
	if g.EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", g.EdgeCount())
	}
}

func TestStore_AddEdgeUnknownEndpoint(t *testing.T) {
	s := buildStore(t, []string{"a"}, nil)
	if err := s.AddEdge("a", "ghost"); err == nil {
		t.Error("edge to unknown node should fail")
	}
	if err := s.AddEdge("ghost", "a"); err == nil {
		t.Error("edge from unknown node should fail")
	}
}

func TestStore_MergeSplitInverse(t *testing.T) {
	// Adding an edge between two singletons and removing it again restores
	// two singleton graphs.
	s := buildStore(t, []string{"a", "b"}, nil)
	if err := s.AddEdge("a", "b"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if s.GraphCount() != 1 {
		t.Fatalf("after merge: graphs = %d, want 1", s.GraphCount())
	}
	if err := s.RemoveEdge("a", "b"); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}
	if s.GraphCount() != 2 {
		t.Fatalf("after split: graphs = %d, want 2", s.GraphCount())
	}
	if s.EdgeCount() != 0 {
		t.Errorf("edges = %d, want 0", s.EdgeCount())
	}
	checkPartition(t, s, []string{"a", "b"})
}

func TestStore_RemoveEdgeSelfLoop(t *testing.T) {
	s := buildStore(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "a"}})
	if err := s.RemoveEdge("a", "a"); err != nil {
		t.Fatalf("RemoveEdge(a, a): %v", err)
	}
	g := singleGraph(t, s)
	if g.HasEdge("a", "a") {
		t.Error("self-loop still present")
	}
	if !g.HasEdge("a", "b") {
		t.Error("unrelated edge lost")
	}
}

func TestStore_RemoveEdgeExtractsIsolatedEndpoint(t *testing.T) {
	s := buildStore(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	if err := s.RemoveEdge("a", "b"); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}
	if s.GraphCount() != 2 {
		t.Fatalf("graphs = %d, want 2", s.GraphCount())
	}
	ga, err := s.GraphWithNode("a")
	if err != nil {
		t.Fatalf("GraphWithNode(a): %v", err)
	}
	if ga.NodeCount() != 1 || ga.EdgeCount() != 0 {
		t.Errorf("a's graph = %v/%v, want a lone singleton", ga.Nodes(), ga.Edges())
	}
	gb, err := s.GraphWithNode("b")
	if err != nil {
		t.Fatalf("GraphWithNode(b): %v", err)
	}
	if !gb.HasNode("c") || !gb.HasEdge("b", "c") {
		t.Errorf("b's graph = %v/%v, want b->c intact", gb.Nodes(), gb.Edges())
	}
	checkPartition(t, s, []string{"a", "b", "c"})
}

func TestStore_RemoveEdgeKeepsSelfLoopOnExtractedNode(t *testing.T) {
	s := buildStore(t, []string{"a", "b"}, [][2]string{{"a", "a"}, {"a", "b"}})
	if err := s.RemoveEdge("a", "b"); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}
	if s.GraphCount() != 2 {
		t.Fatalf("graphs = %d, want 2", s.GraphCount())
	}
	ga, err := s.GraphWithNode("a")
	if err != nil {
		t.Fatalf("GraphWithNode(a): %v", err)
	}
	// The extracted singleton travels with its self-loop.
	if !ga.HasEdge("a", "a") {
		t.Error("self-loop lost during extraction")
	}
	if ga.NodeCount() != 1 {
		t.Errorf("a's graph nodes = %v, want singleton", ga.Nodes())
	}
}

func TestStore_RemoveEdgeStillConnected(t *testing.T) {
	// Diamond: removing one side leaves the graph connected through the other.
	s := buildStore(t, []string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}})
	if err := s.RemoveEdge("a", "b"); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}
	if s.GraphCount() != 1 {
		t.Errorf("graphs = %d, want 1 (still connected via c)", s.GraphCount())
	}
	checkPartition(t, s, []string{"a", "b", "c", "d"})
}

func TestStore_RemoveEdgeSplitsGraph(t *testing.T) {
	// a->b  b->c  c->d: cutting b->c tears the graph into {a,b} and {c,d}.
	s := buildStore(t, []string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}})
	if err := s.RemoveEdge("b", "c"); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}
	if s.GraphCount() != 2 {
		t.Fatalf("graphs = %d, want 2", s.GraphCount())
	}
	ga, err := s.GraphWithNode("a")
	if err != nil {
		t.Fatalf("GraphWithNode(a): %v", err)
	}
	if !reflect.DeepEqual(ga.Nodes(), []string{"a", "b"}) {
		t.Errorf("first half = %v, want [a b]", ga.Nodes())
	}
	gc, err := s.GraphWithNode("c")
	if err != nil {
		t.Fatalf("GraphWithNode(c): %v", err)
	}
	if !reflect.DeepEqual(gc.Nodes(), []string{"c", "d"}) {
		t.Errorf("second half = %v, want [c d]", gc.Nodes())
	}
	checkPartition(t, s, []string{"a", "b", "c", "d"})
}

func TestStore_RemoveEdgeMissing(t *testing.T) {
	s := buildStore(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	err := s.RemoveEdge("b", "a")
	if err == nil {
		t.Fatal("removing a missing edge should fail")
	}
	var ie workflow.IntegrityError
	if !errors.As(err, &ie) {
		t.Errorf("error = %T, want IntegrityError", err)
	}
}

func TestStore_RemoveNodeSweepsIsolated(t *testing.T) {
	// Star: removing the hub leaves b and c as singletons.
	s := buildStore(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"a", "c"}})
	if err := s.RemoveNode("a"); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if s.GraphCount() != 2 {
		t.Fatalf("graphs = %d, want 2", s.GraphCount())
	}
	if s.HasNode("a") {
		t.Error("removed node still present")
	}
	if s.EdgeCount() != 0 {
		t.Errorf("edges = %d, want 0", s.EdgeCount())
	}
	checkPartition(t, s, []string{"b", "c"})
}

func TestStore_RemoveNodeSplitsIntoComponents(t *testing.T) {
	// Path a->b->c->d: removing b leaves singleton {a} and component {c,d}.
	s := buildStore(t, []string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}})
	if err := s.RemoveNode("b"); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if s.GraphCount() != 2 {
		t.Fatalf("graphs = %d, want 2", s.GraphCount())
	}
	gc, err := s.GraphWithNode("c")
	if err != nil {
		t.Fatalf("GraphWithNode(c): %v", err)
	}
	if !gc.HasEdge("c", "d") {
		t.Error("surviving component lost its edge")
	}
	checkPartition(t, s, []string{"a", "c", "d"})
}

func TestStore_RemoveNodeDiscardsEmptyGraph(t *testing.T) {
	s := buildStore(t, []string{"a"}, nil)
	if err := s.RemoveNode("a"); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if s.GraphCount() != 0 {
		t.Errorf("graphs = %d, want 0", s.GraphCount())
	}
}

func TestStore_RemoveNodeMissing(t *testing.T) {
	s := workflow.NewGraphStore()
	if err := s.RemoveNode("ghost"); err == nil {
		t.Error("removing an unknown node should fail")
	}
}

func TestStore_RenameNode(t *testing.T) {
	s := buildStore(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	if err := s.RenameNode("b", "hub"); err != nil {
		t.Fatalf("RenameNode: %v", err)
	}
	g := singleGraph(t, s)
	if g.HasNode("b") || !g.HasNode("hub") {
		t.Errorf("nodes = %v, want b renamed to hub", g.Nodes())
	}
	if !g.HasEdge("a", "hub") || !g.HasEdge("hub", "c") {
		t.Errorf("edges = %v, want endpoints relabeled", g.Edges())
	}
	checkPartition(t, s, []string{"a", "hub", "c"})
}

func TestStore_RenameNodeCollision(t *testing.T) {
	s := buildStore(t, []string{"a", "b"}, nil)
	if err := s.RenameNode("a", "b"); err == nil {
		t.Error("rename onto an existing name should fail")
	}
	if err := s.RenameNode("ghost", "x"); err == nil {
		t.Error("renaming an unknown node should fail")
	}
}

func TestStore_GraphWithEdge(t *testing.T) {
	s := buildStore(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g, err := s.GraphWithEdge("a", "b")
	if err != nil {
		t.Fatalf("GraphWithEdge: %v", err)
	}
	if !g.HasNode("a") {
		t.Error("wrong graph returned")
	}
	if _, err := s.GraphWithEdge("b", "a"); err == nil {
		t.Error("lookup of a missing edge should fail")
	}
}

func TestStore_PartitionInvariantUnderChurn(t *testing.T) {
	// A longer mutation sequence; the invariant and the edge accounting must
	// hold at every step.
	s := workflow.NewGraphStore()
	nodes := []string{"a", "b", "c", "d", "e", "f"}
	for _, n := range nodes {
		if err := s.AddNode(n); err != nil {
			t.Fatalf("AddNode(%q): %v", n, err)
		}
	}
	adds := [][2]string{
		{"a", "b"}, {"c", "d"}, {"b", "c"}, {"e", "f"}, {"d", "e"}, {"f", "f"},
	}
	for _, e := range adds {
		if err := s.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
		checkPartition(t, s, nodes)
	}
	if s.GraphCount() != 1 || s.EdgeCount() != len(adds) {
		t.Fatalf("graphs=%d edges=%d, want 1 and %d", s.GraphCount(), s.EdgeCount(), len(adds))
	}

	removals := [][2]string{{"d", "e"}, {"b", "c"}, {"f", "f"}}
	for _, e := range removals {
		if err := s.RemoveEdge(e[0], e[1]); err != nil {
			t.Fatalf("RemoveEdge(%v): %v", e, err)
		}
		checkPartition(t, s, nodes)
	}
	if got, want := s.EdgeCount(), len(adds)-len(removals); got != want {
		t.Errorf("edges = %d, want %d", got, want)
	}

	if err := s.RemoveNode("a"); err != nil {
		t.Fatalf("RemoveNode(a): %v", err)
	}
	checkPartition(t, s, []string{"b", "c", "d", "e", "f"})
}
