package workflow

// ExecutionOrder returns the order in which g's nodes must run: a
// topological order with breadth-first tie-breaking, seeded from every
// source node at once. Repeated calls on an unchanged graph return the same
// sequence. A graph with any cycle (self-loops included) yields a CycleError
// listing the offending edges.
func ExecutionOrder(g *Graph) ([]string, error) {
	if cyc := CycleEdges(g); len(cyc) > 0 {
		return nil, CycleError{Edges: cyc}
	}

	indegree := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n] = 0
	}
	for _, e := range g.edges {
		indegree[e.Dst]++
	}

	var queue []string
	for _, n := range g.nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, e := range g.edges {
			if e.Src != cur {
				continue
			}
			indegree[e.Dst]--
			if indegree[e.Dst] == 0 {
				queue = append(queue, e.Dst)
			}
		}
	}
	return order, nil
}

// IsAcyclic reports whether g has no directed cycles. A self-loop counts as
// a cycle: self-loops are legal to store but always block execution.
func IsAcyclic(g *Graph) bool {
	return len(CycleEdges(g)) == 0
}

// CycleEdges returns every edge participating in a cycle, in g's edge order:
// all edges inside a strongly connected component of more than one node,
// plus every self-loop.
func CycleEdges(g *Graph) []Edge {
	comp, size := stronglyConnected(g)
	var out []Edge
	for _, e := range g.edges {
		if e.Src == e.Dst {
			out = append(out, e)
			continue
		}
		if c := comp[e.Src]; c == comp[e.Dst] && size[c] > 1 {
			out = append(out, e)
		}
	}
	return out
}

// stronglyConnected runs Tarjan's algorithm, returning each node's component
// id and every component's size.
func stronglyConnected(g *Graph) (comp map[string]int, size map[int]int) {
	comp = make(map[string]int, len(g.nodes))
	size = make(map[int]int)

	index := make(map[string]int, len(g.nodes))
	low := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var stack []string
	next := 0
	nComp := 0

	var visit func(n string)
	visit = func(n string) {
		index[n] = next
		low[n] = next
		next++
		stack = append(stack, n)
		onStack[n] = true

		for _, m := range g.Successors(n) {
			if _, seen := index[m]; !seen {
				visit(m)
				if low[m] < low[n] {
					low[n] = low[m]
				}
			} else if onStack[m] && index[m] < low[n] {
				low[n] = index[m]
			}
		}

		if low[n] == index[n] {
			for {
				m := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[m] = false
				comp[m] = nComp
				size[nComp]++
				if m == n {
					break
				}
			}
			nComp++
		}
	}

	for _, n := range g.nodes {
		if _, seen := index[n]; !seen {
			visit(n)
		}
	}
	return comp, size
}
