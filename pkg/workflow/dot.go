package workflow

import (
	"fmt"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"
)

// ExportDOT renders g as a Graphviz digraph named name. Only executable
// graphs export; a graph with cycles returns the CycleError instead.
func ExportDOT(g *Graph, name string) (string, error) {
	if cyc := CycleEdges(g); len(cyc) > 0 {
		return "", CycleError{Edges: cyc}
	}

	out := gographviz.NewGraph()
	if err := out.SetName(dotQuote(name)); err != nil {
		return "", fmt.Errorf("dot graph name: %w", err)
	}
	if err := out.SetDir(true); err != nil {
		return "", fmt.Errorf("dot graph direction: %w", err)
	}
	for _, n := range g.Nodes() {
		if err := out.AddNode(dotQuote(name), dotQuote(n), nil); err != nil {
			return "", fmt.Errorf("dot node %q: %w", n, err)
		}
	}
	for _, e := range g.Edges() {
		if err := out.AddEdge(dotQuote(e.Src), dotQuote(e.Dst), true, nil); err != nil {
			return "", fmt.Errorf("dot edge %s -> %s: %w", e.Src, e.Dst, err)
		}
	}
	return out.String(), nil
}

// DOTNode is one node statement of a parsed DOT file, attributes included.
type DOTNode struct {
	ID    string
	Attrs map[string]string
}

// ParseDOT parses a Graphviz DOT string into its graph name, node
// statements, and edges, in definition order. Parsing is permissive:
// arbitrary attribute names are accepted, graph-level attributes are
// tolerated and ignored.
func ParseDOT(src string) (string, []DOTNode, []Edge, error) {
	ast, err := gographviz.ParseString(src)
	if err != nil {
		return "", nil, nil, fmt.Errorf("dot parse error: %w", err)
	}
	collector := newDOTCollector()
	if err := gographviz.Analyse(ast, collector); err != nil {
		return "", nil, nil, fmt.Errorf("dot analyse error: %w", err)
	}

	nodes := make([]DOTNode, 0, len(collector.order))
	for _, id := range collector.order {
		attrs := make(map[string]string, len(collector.nodes[id]))
		for k, v := range collector.nodes[id] {
			attrs[k] = v
		}
		nodes = append(nodes, DOTNode{ID: id, Attrs: attrs})
	}
	return collector.name, nodes, collector.edges, nil
}

// ─── permissive DOT collector ─────────────────────────────────────────────────

// dotCollector implements gographviz.Interface without the attribute
// validation that gographviz.Graph performs.
type dotCollector struct {
	name  string
	order []string
	nodes map[string]map[string]string
	edges []Edge
}

func newDOTCollector() *dotCollector {
	return &dotCollector{nodes: make(map[string]map[string]string)}
}

func (c *dotCollector) SetStrict(_ bool) error { return nil }
func (c *dotCollector) SetDir(_ bool) error    { return nil }
func (c *dotCollector) SetName(n string) error { c.name = unquote(n); return nil }
func (c *dotCollector) String() string         { return c.name }

func (c *dotCollector) AddNode(_ string, name string, attrs map[string]string) error {
	id := unquote(name)
	if _, ok := c.nodes[id]; !ok {
		c.order = append(c.order, id)
		c.nodes[id] = make(map[string]string, len(attrs))
	}
	for k, v := range attrs {
		c.nodes[id][k] = unquote(v)
	}
	return nil
}

func (c *dotCollector) AddEdge(src, dst string, _ bool, _ map[string]string) error {
	c.edges = append(c.edges, Edge{Src: unquote(src), Dst: unquote(dst)})
	return nil
}

func (c *dotCollector) AddPortEdge(src, _, dst, _ string, directed bool, attrs map[string]string) error {
	return c.AddEdge(src, dst, directed, attrs)
}

func (c *dotCollector) AddAttr(_, _, _ string) error { return nil }

func (c *dotCollector) AddSubGraph(_, _ string, _ map[string]string) error { return nil }

// ─── helpers ─────────────────────────────────────────────────────────────────

// unquote strips surrounding double-quotes from a DOT identifier or value.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// dotQuote returns s as a DOT-safe identifier, quoting if necessary.
func dotQuote(s string) string {
	needsQuote := s == "" ||
		strings.ContainsAny(s, " \t\n\\\"{}[]<>=;,-")
	if needsQuote {
		escaped := strings.ReplaceAll(s, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		return `"` + escaped + `"`
	}
	return s
}
