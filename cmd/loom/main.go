package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
	"github.com/ravi-parthasarathy/loom/pkg/workflow/items"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   "loom",
		Short: "Loom — workflow graph runner",
		Long: `Loom executes project workflows: directed acyclic graphs of items
such as data stores, tools, importers, and views.

Items pass resources (files, databases, parsed data) to their successors;
disconnected parts of a project run as separate graphs.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initLogger(logLevel, logFormat)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(runCmd())
	root.AddCommand(lintCmd())
	root.AddCommand(graphCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(importCmd())
	return root
}

// ─── run ──────────────────────────────────────────────────────────────────────

func runCmd() *cobra.Command {
	var (
		selected []string
		outPath  string
		workdir  string
	)

	cmd := &cobra.Command{
		Use:   "run <project.json|workflow.dot>",
		Short: "Execute a project's workflows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := loadProjectFile(args[0])
			if err != nil {
				return err
			}
			if workdir != "" {
				for i := range spec.Items {
					if spec.Items[i].Type == items.TypeTool && spec.Items[i].Workdir == "" {
						spec.Items[i].Workdir = workdir
					}
				}
			}
			store, reg, err := items.Build(spec)
			if err != nil {
				return fmt.Errorf("build project: %w", err)
			}
			sched := workflow.NewScheduler(store, reg)
			sched.NotifyAll()

			ctx := signalContext(cmd.Context(), sched)

			var results []workflow.RunResult
			if len(selected) > 0 {
				results, err = sched.ExecuteSelected(ctx, selected)
				if err != nil {
					return err
				}
			} else {
				results = sched.ExecuteAll(ctx)
			}

			printResults(results)
			if err := writeResults(outPath, results); err != nil {
				return err
			}
			for _, res := range results {
				if res.State != workflow.StateCompleted {
					return fmt.Errorf("run finished with state %s", res.State)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&selected, "select", nil, "run only these items (and forward around the rest)")
	cmd.Flags().StringVar(&outPath, "out", "", "path to write run results JSON (optional)")
	cmd.Flags().StringVar(&workdir, "workdir", "", "working directory for tools that do not set one")
	return cmd
}

func printResults(results []workflow.RunResult) {
	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("[loom] run %s: %s: %v\n", res.RunID, res.State, res.Err)
			continue
		}
		fmt.Printf("[loom] run %s: %s  order: %s\n",
			res.RunID, res.State, strings.Join(res.Order, " -> "))
		for _, r := range res.Published {
			if r.IsOutput {
				fmt.Printf("[loom]   %s wrote %s\n", r.Provider, r.Locator)
			}
		}
	}
}

// runSummary is the JSON shape written by --out.
type runSummary struct {
	RunID     string              `json:"run_id"`
	State     string              `json:"state"`
	Order     []string            `json:"order,omitempty"`
	Error     string              `json:"error,omitempty"`
	Published []workflow.Resource `json:"published,omitempty"`
}

// writeResults writes run results to path as JSON. An empty path is a no-op.
func writeResults(path string, results []workflow.RunResult) error {
	if path == "" {
		return nil
	}
	summaries := make([]runSummary, 0, len(results))
	for _, res := range results {
		s := runSummary{
			RunID:     res.RunID.String(),
			State:     res.State.String(),
			Order:     res.Order,
			Published: res.Published,
		}
		if res.Err != nil {
			s.Error = res.Err.Error()
		}
		summaries = append(summaries, s)
	}
	data, err := json.MarshalIndent(map[string][]runSummary{"runs": summaries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// ─── lint ─────────────────────────────────────────────────────────────────────

func lintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <project.json|workflow.dot>",
		Short: "Validate a project file without running it",
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
			for _, g := range store.Graphs() {
				if _, err := workflow.ExecutionOrder(g); err != nil {
					return fmt.Errorf("graph containing %q: %w", g.Nodes()[0], err)
				}
			}
			fmt.Printf("OK: project %q is valid (%d items, %d connections, %d graphs)\n",
				spec.Project.Name, len(spec.Items), len(spec.Connections), store.GraphCount())
			return nil
		},
	}
	return cmd
}

// ─── import ───────────────────────────────────────────────────────────────────

func importCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "import <workflow.dot>",
		Short: "Convert a DOT workflow sketch into a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			spec, err := items.FromDOT(string(src))
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			if outPath == "" {
				outPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".json"
			}
			if err := items.SaveProject(outPath, spec); err != nil {
				return err
			}
			fmt.Printf("[loom] wrote project %s (%d items, %d connections)\n",
				outPath, len(spec.Items), len(spec.Connections))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output project file (default: input with .json extension)")
	return cmd
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// loadProjectFile reads a project document, converting DOT sketches on the
// fly based on the file extension.
func loadProjectFile(path string) (*items.ProjectSpec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		spec, err := items.FromDOT(string(src))
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		return spec, nil
	default:
		return items.LoadProject(path)
	}
}

// initLogger installs the default slog logger.
func initLogger(level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
// The scheduler is stopped first so the current item can wind down before
// the context kills it.
func signalContext(parent context.Context, sched *workflow.Scheduler) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			fmt.Fprintln(os.Stderr, "\n[loom] interrupted - stopping run")
			sched.Stop()
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
