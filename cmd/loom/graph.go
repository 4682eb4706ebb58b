package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
	"github.com/ravi-parthasarathy/loom/pkg/workflow/items"
)

func graphCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph <project.json|workflow.dot>",
		Short: "Print a human-readable summary of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			spec, err := loadProjectFile(args[0])
			if err != nil {
				return err
			}
			store, _, err := items.Build(spec)
			if err != nil {
				return fmt.Errorf("build project: %w", err)
			}

			switch strings.ToLower(format) {
			case "dot":
				out, err := renderDOT(spec, store)
				if err != nil {
					return err
				}
				fmt.Print(out)
			case "text", "":
				fmt.Print(renderText(spec, store))
			default:
				return fmt.Errorf("unknown format %q: use text or dot", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or dot")
	return cmd
}

// truncate shortens s to maxLen chars, appending "…" if needed.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}

// itemAttrs summarizes the configuration of one item for the text view.
func itemAttrs(is items.ItemSpec) string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+truncate(v, 60))
		}
	}
	add("url", is.URL)
	add("references", strings.Join(is.References, ","))
	add("program", is.Program)
	add("args", strings.Join(is.Args, " "))
	add("workdir", is.Workdir)
	add("inputs", strings.Join(is.InputFiles, ","))
	add("outputs", strings.Join(is.OutputFiles, ","))
	add("pattern", is.Pattern)
	add("out_file", is.OutFile)
	return strings.Join(parts, " ")
}

// renderText produces the human-readable project summary: items grouped by
// graph in execution order, then the connection list.
func renderText(spec *items.ProjectSpec, store *workflow.GraphStore) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Project: %s  (%d items, %d connections, %d graphs)\n",
		spec.Project.Name, len(spec.Items), len(spec.Connections), store.GraphCount())

	byName := make(map[string]items.ItemSpec, len(spec.Items))
	maxIDLen := 4
	for _, is := range spec.Items {
		byName[is.Name] = is
		if len(is.Name) > maxIDLen {
			maxIDLen = len(is.Name)
		}
	}

	for i, g := range store.Graphs() {
		order, err := workflow.ExecutionOrder(g)
		if err != nil {
			order = g.Nodes()
			fmt.Fprintf(&sb, "\nGraph %d (%d items, not executable: %v):\n", i+1, g.NodeCount(), err)
		} else {
			fmt.Fprintf(&sb, "\nGraph %d (%d items):\n", i+1, g.NodeCount())
		}
		for _, name := range order {
			is := byName[name]
			typ := is.Type
			if typ == "" {
				typ = items.TypeView
			}
			fmt.Fprintf(&sb, "  %-*s  %-15s  %s\n", maxIDLen, name, typ, itemAttrs(is))
		}
	}

	if len(spec.Connections) > 0 {
		fmt.Fprintf(&sb, "\nConnections:\n")
		maxFromLen := 4
		for _, conn := range spec.Connections {
			if len(conn[0]) > maxFromLen {
				maxFromLen = len(conn[0])
			}
		}
		for _, conn := range spec.Connections {
			fmt.Fprintf(&sb, "  %-*s  ->  %s\n", maxFromLen, conn[0], conn[1])
		}
	}

	return sb.String()
}

// renderDOT produces one DOT digraph per workflow graph.
func renderDOT(spec *items.ProjectSpec, store *workflow.GraphStore) (string, error) {
	base := spec.Project.Name
	if base == "" {
		base = "workflow"
	}
	var out []string
	for i, g := range store.Graphs() {
		name := base
		if store.GraphCount() > 1 {
			name = fmt.Sprintf("%s-%d", base, i+1)
		}
		dot, err := workflow.ExportDOT(g, name)
		if err != nil {
			return "", fmt.Errorf("graph containing %q: %w", g.Nodes()[0], err)
		}
		out = append(out, dot)
	}
	return strings.Join(out, "\n"), nil
}
