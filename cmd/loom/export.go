package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
	"github.com/ravi-parthasarathy/loom/pkg/workflow/items"
)

func exportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <project.json>",
		Short: "Export each workflow graph as a DOT file",
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
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			base := spec.Project.Name
			if base == "" {
				base = "workflow"
			}
			for i, g := range store.Graphs() {
				name := base
				if store.GraphCount() > 1 {
					name = fmt.Sprintf("%s-%d", base, i+1)
				}
				dot, err := workflow.ExportDOT(g, name)
				if err != nil {
					return fmt.Errorf("graph containing %q: %w", g.Nodes()[0], err)
				}
				path := filepath.Join(outDir, name+".dot")
				if err := os.WriteFile(path, []byte(dot), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Printf("[loom] wrote %s (%d nodes, %d edges)\n", path, g.NodeCount(), g.EdgeCount())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for exported DOT files")
	return cmd
}
