package workflow

// Edge is a directed connection between two named project items.
type Edge struct {
	Src string
	Dst string
}

// Graph is one weakly connected cluster of project items. Nodes and edges
// keep insertion order so traversals and reports are repeatable. All
// structural mutation goes through GraphStore; the exported surface is
// read-only.
type Graph struct {
	nodes []string
	edges []Edge
}

func newGraph(nodes []string, edges []Edge) *Graph {
	g := &Graph{}
	g.nodes = append(g.nodes, nodes...)
	g.edges = append(g.edges, edges...)
	return g
}

// Nodes returns the node names in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

func (g *Graph) HasNode(name string) bool {
	for _, n := range g.nodes {
		if n == name {
			return true
		}
	}
	return false
}

func (g *Graph) HasEdge(src, dst string) bool {
	for _, e := range g.edges {
		if e.Src == src && e.Dst == dst {
			return true
		}
	}
	return false
}

// OutgoingEdges returns all edges leaving name, in definition order.
func (g *Graph) OutgoingEdges(name string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Src == name {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns all edges arriving at name, in definition order.
func (g *Graph) IncomingEdges(name string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Dst == name {
			out = append(out, e)
		}
	}
	return out
}

// Successors returns the direct downstream neighbors of name.
func (g *Graph) Successors(name string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Src == name {
			out = append(out, e.Dst)
		}
	}
	return out
}

// Predecessors returns the direct upstream neighbors of name.
func (g *Graph) Predecessors(name string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Dst == name {
			out = append(out, e.Src)
		}
	}
	return out
}

func (g *Graph) InDegree(name string) int {
	n := 0
	for _, e := range g.edges {
		if e.Dst == name {
			n++
		}
	}
	return n
}

func (g *Graph) OutDegree(name string) int {
	n := 0
	for _, e := range g.edges {
		if e.Src == name {
			n++
		}
	}
	return n
}

// SourceNodes returns every node without incoming edges, in node order.
func (g *Graph) SourceNodes() []string {
	var out []string
	for _, n := range g.nodes {
		if g.InDegree(n) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// IsIsolated reports whether name has no edges to other nodes. With
// allowSelfLoop, a node whose only edges are its own self-loops still counts
// as isolated.
func (g *Graph) IsIsolated(name string, allowSelfLoop bool) bool {
	for _, e := range g.edges {
		if e.Src != name && e.Dst != name {
			continue
		}
		if allowSelfLoop && e.Src == e.Dst {
			continue
		}
		return false
	}
	return true
}

// neighbors returns the undirected adjacency of name in edge order.
// Self-loops add no reachability and are skipped.
func (g *Graph) neighbors(name string) []string {
	var out []string
	for _, e := range g.edges {
		switch {
		case e.Src == name && e.Dst == name:
		case e.Src == name:
			out = append(out, e.Dst)
		case e.Dst == name:
			out = append(out, e.Src)
		}
	}
	return out
}

// ─── mutators (GraphStore only) ───────────────────────────────────────────────

func (g *Graph) addNode(name string) {
	if g.HasNode(name) {
		return
	}
	g.nodes = append(g.nodes, name)
}

// addEdge records src→dst once; re-adding an existing edge is a no-op.
func (g *Graph) addEdge(src, dst string) {
	if g.HasEdge(src, dst) {
		return
	}
	g.edges = append(g.edges, Edge{Src: src, Dst: dst})
}

func (g *Graph) removeEdge(src, dst string) {
	for i, e := range g.edges {
		if e.Src == src && e.Dst == dst {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return
		}
	}
}

// removeNode drops name and every edge touching it.
func (g *Graph) removeNode(name string) {
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Src == name || e.Dst == name {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	for i, n := range g.nodes {
		if n == name {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			return
		}
	}
}

// renameNode relabels a node and every edge endpoint touching it, in place.
func (g *Graph) renameNode(old, new string) {
	for i, n := range g.nodes {
		if n == old {
			g.nodes[i] = new
		}
	}
	for i, e := range g.edges {
		if e.Src == old {
			g.edges[i].Src = new
		}
		if e.Dst == old {
			g.edges[i].Dst = new
		}
	}
}
