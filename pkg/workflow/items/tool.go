package items

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// ToolConfig describes the external program a Tool item runs.
type ToolConfig struct {
	Program     string
	Args        []string
	Workdir     string
	InputFiles  []string
	OutputFiles []string
}

// Tool runs an external program. Required input files are resolved against
// the resources forwarded by predecessors and appended to the argument list;
// declared output files that exist after the run are published downstream.
type Tool struct {
	Base
	cfg ToolConfig

	mu       sync.Mutex
	cancel   context.CancelFunc
	ran      bool
	produced []workflow.Resource
}

// NewTool returns a tool item running cfg.Program.
func NewTool(name string, cfg ToolConfig) *Tool {
	return &Tool{Base: NewBase(name), cfg: cfg}
}

func (t *Tool) Execute(ctx context.Context, inputs []workflow.Resource) workflow.Outcome {
	if t.cfg.Program == "" {
		slog.Error("tool has no program", "item", t.Name())
		return workflow.OutcomeFailed
	}

	// Resolve required input files against what upstream forwarded.
	args := append([]string(nil), t.cfg.Args...)
	for _, name := range t.cfg.InputFiles {
		r, ok := workflow.FindResource(name, inputs)
		if !ok {
			slog.Error("required input file not available", "item", t.Name(), "file", name)
			return workflow.OutcomeFailed
		}
		args = append(args, r.Locator)
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()
	defer func() {
		cancel()
		t.mu.Lock()
		t.cancel = nil
		t.mu.Unlock()
	}()

	cmd := exec.CommandContext(runCtx, t.cfg.Program, args...)
	if t.cfg.Workdir != "" {
		cmd.Dir = t.cfg.Workdir
	}
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	slog.Info("running tool", "item", t.Name(), "program", t.cfg.Program, "args", strings.Join(args, " "))
	runErr := cmd.Run()

	if runCtx.Err() != nil {
		slog.Info("tool stopped", "item", t.Name())
		return workflow.OutcomeStopped
	}
	if runErr != nil {
		exitCode := -1
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		msg := runErr.Error()
		if firstLine := strings.SplitN(strings.TrimSpace(stderrBuf.String()), "\n", 2)[0]; firstLine != "" {
			msg = firstLine
		}
		slog.Error("tool failed", "item", t.Name(), "exit", exitCode, "reason", msg)
		return workflow.OutcomeFailed
	}

	produced := t.collectOutputs()
	t.mu.Lock()
	t.ran = true
	t.produced = produced
	t.mu.Unlock()
	slog.Info("tool finished", "item", t.Name(), "outputs", len(produced))
	return workflow.OutcomeContinue
}

// StopExecution cancels the running subprocess, if any.
func (t *Tool) StopExecution() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// OutputResources returns the files the last run actually produced; before
// any run it advertises the declared output files so dry passes and skipped
// runs can still offer them downstream.
func (t *Tool) OutputResources() []workflow.Resource {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ran {
		return append([]workflow.Resource(nil), t.produced...)
	}
	out := make([]workflow.Resource, 0, len(t.cfg.OutputFiles))
	for _, f := range t.cfg.OutputFiles {
		out = append(out, workflow.Resource{Kind: workflow.ResourceFile, Locator: t.outputPath(f), IsOutput: true})
	}
	return out
}

// collectOutputs stats each declared output file and keeps the ones the run
// produced.
func (t *Tool) collectOutputs() []workflow.Resource {
	var produced []workflow.Resource
	for _, f := range t.cfg.OutputFiles {
		p := t.outputPath(f)
		if _, err := os.Stat(p); err != nil {
			slog.Warn("declared output not produced", "item", t.Name(), "file", f)
			continue
		}
		produced = append(produced, workflow.Resource{Kind: workflow.ResourceFile, Locator: p, IsOutput: true})
	}
	return produced
}

func (t *Tool) outputPath(f string) string {
	if t.cfg.Workdir != "" && !filepath.IsAbs(f) {
		return filepath.Join(t.cfg.Workdir, f)
	}
	return f
}
