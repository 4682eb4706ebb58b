package items

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// DefaultImportPattern selects the files an importer reads when no pattern
// is configured.
const DefaultImportPattern = "*.json"

// Importer reads structured files selected from its inputs and republishes
// them as data resources. Each file must hold a JSON array of records.
type Importer struct {
	Base
	pattern string

	mu       sync.Mutex
	imported []workflow.Resource
	records  int
}

// NewImporter returns an importer selecting input files by pattern. An empty
// pattern means DefaultImportPattern.
func NewImporter(name, pattern string) *Importer {
	if pattern == "" {
		pattern = DefaultImportPattern
	}
	return &Importer{Base: NewBase(name), pattern: pattern}
}

// Pattern returns the file selection pattern.
func (im *Importer) Pattern() string { return im.pattern }

func (im *Importer) Execute(_ context.Context, inputs []workflow.Resource) workflow.Outcome {
	matches := workflow.FindResourcesMatching(im.pattern, inputs)
	if len(matches) == 0 {
		slog.Warn("no input files match", "item", im.Name(), "pattern", im.pattern)
	}

	var imported []workflow.Resource
	total := 0
	for _, r := range matches {
		data, err := os.ReadFile(r.Locator)
		if err != nil {
			slog.Error("cannot read import file", "item", im.Name(), "file", r.Locator, "err", err)
			return workflow.OutcomeFailed
		}
		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			slog.Error("import file is not a json array", "item", im.Name(), "file", r.Locator, "err", err)
			return workflow.OutcomeFailed
		}
		total += len(records)
		imported = append(imported, workflow.Resource{Kind: workflow.ResourceData, Locator: r.Locator})
	}

	im.mu.Lock()
	im.imported = imported
	im.records = total
	im.mu.Unlock()
	slog.Info("import finished", "item", im.Name(), "files", len(imported), "records", total)
	return workflow.OutcomeContinue
}

// OutputResources advertises one data resource per file imported in the
// latest run.
func (im *Importer) OutputResources() []workflow.Resource {
	im.mu.Lock()
	defer im.mu.Unlock()
	return append([]workflow.Resource(nil), im.imported...)
}

// Records returns the number of records parsed in the latest run.
func (im *Importer) Records() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.records
}
