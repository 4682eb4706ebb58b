package items

import (
	"context"
	"log/slog"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// DataStore exposes a database URL to downstream items. It does no work of
// its own; executing it only checks that the store is configured.
type DataStore struct {
	Base
	url string
}

// NewDataStore returns a data store item advertising url.
func NewDataStore(name, url string) *DataStore {
	return &DataStore{Base: NewBase(name), url: url}
}

// URL returns the configured database URL.
func (d *DataStore) URL() string { return d.url }

func (d *DataStore) Execute(_ context.Context, _ []workflow.Resource) workflow.Outcome {
	if d.url == "" {
		slog.Error("data store has no url", "item", d.Name())
		return workflow.OutcomeFailed
	}
	slog.Info("data store ready", "item", d.Name(), "url", d.url)
	return workflow.OutcomeContinue
}

// OutputResources advertises the database reference, or nothing when the
// store is unconfigured.
func (d *DataStore) OutputResources() []workflow.Resource {
	if d.url == "" {
		return nil
	}
	return []workflow.Resource{{Kind: workflow.ResourceDatabase, Locator: d.url}}
}
