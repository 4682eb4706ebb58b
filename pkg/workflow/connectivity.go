package workflow

// Connected reports whether a and b sit in the same weakly connected
// component of g, ignoring edge direction. Used by GraphStore to decide
// whether removing an edge has torn a graph in two.
func Connected(g *Graph, a, b string) bool {
	if !g.HasNode(a) || !g.HasNode(b) {
		return false
	}
	if a == b {
		return true
	}
	visited := map[string]bool{a: true}
	queue := []string{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.neighbors(cur) {
			if next == b {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// connectedComponents partitions g into its weakly connected components.
// Components are ordered by their first node's position in g, and each
// component preserves g's node and edge order.
func connectedComponents(g *Graph) []*Graph {
	comp := make(map[string]int, len(g.nodes))
	next := 0
	for _, n := range g.nodes {
		if _, seen := comp[n]; seen {
			continue
		}
		id := next
		next++
		comp[n] = id
		queue := []string{n}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range g.neighbors(cur) {
				if _, seen := comp[nb]; !seen {
					comp[nb] = id
					queue = append(queue, nb)
				}
			}
		}
	}

	parts := make([]*Graph, next)
	for i := range parts {
		parts[i] = &Graph{}
	}
	for _, n := range g.nodes {
		part := parts[comp[n]]
		part.nodes = append(part.nodes, n)
	}
	for _, e := range g.edges {
		part := parts[comp[e.Src]]
		part.edges = append(part.edges, e)
	}
	return parts
}
