package workflow

import (
	"path"
	"strings"
	"sync"
)

// ResourceKind tags what a published resource points at.
type ResourceKind string

const (
	ResourceDatabase ResourceKind = "database"
	ResourceFile     ResourceKind = "file"
	ResourceData     ResourceKind = "data"
)

// Resource is an artifact one item publishes for downstream consumption: a
// file path, a database URL, or a structured-data reference. Values are
// immutable once published.
type Resource struct {
	Provider string       `json:"provider"`
	Kind     ResourceKind `json:"kind"`
	Locator  string       `json:"locator"`
	IsOutput bool         `json:"is_output,omitempty"`
}

// Name returns the final path segment of the locator.
func (r Resource) Name() string {
	return path.Base(r.Locator)
}

// FindResource returns the first resource whose locator's final path segment
// equals name.
func FindResource(name string, resources []Resource) (Resource, bool) {
	for _, r := range resources {
		if r.Name() == name {
			return r, true
		}
	}
	return Resource{}, false
}

// FindResourcesMatching returns every resource whose locator, or its final
// path segment, matches the glob pattern. A pattern without wildcards
// degrades to an exact name lookup.
func FindResourcesMatching(pattern string, resources []Resource) []Resource {
	if !strings.ContainsAny(pattern, "*?[") {
		r, ok := FindResource(pattern, resources)
		if !ok {
			return nil
		}
		return []Resource{r}
	}
	var out []Resource
	for _, r := range resources {
		if ok, _ := path.Match(pattern, r.Name()); ok {
			out = append(out, r)
			continue
		}
		if ok, _ := path.Match(pattern, r.Locator); ok {
			out = append(out, r)
		}
	}
	return out
}

// stampProvider returns a copy of resources with Provider set to name.
func stampProvider(name string, resources []Resource) []Resource {
	out := make([]Resource, len(resources))
	for i, r := range resources {
		r.Provider = name
		out[i] = r
	}
	return out
}

// Broker accumulates the resources published during a single run. Publishing
// is append-only and atomic per call; concurrent readers only ever observe
// fully published data. A fresh broker is created for every run, nothing
// carries over.
type Broker struct {
	mu         sync.RWMutex
	byProvider map[string][]Resource
	published  []Resource
}

func NewBroker() *Broker {
	return &Broker{byProvider: make(map[string][]Resource)}
}

// Publish appends r to the provider's resource list, stamping the provider
// name onto the resource.
func (b *Broker) Publish(provider string, r Resource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r.Provider = provider
	b.byProvider[provider] = append(b.byProvider[provider], r)
	b.published = append(b.published, r)
}

// ResourcesFrom returns everything provider has published, in publish order.
func (b *Broker) ResourcesFrom(provider string) []Resource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Resource(nil), b.byProvider[provider]...)
}

// All returns every published resource in global publish order.
func (b *Broker) All() []Resource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Resource(nil), b.published...)
}

// FindExact returns the first published resource whose locator's final path
// segment equals name.
func (b *Broker) FindExact(name string) (Resource, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return FindResource(name, b.published)
}

// FindPattern returns every published resource matching the glob pattern,
// degrading to FindExact when the pattern holds no wildcards.
func (b *Broker) FindPattern(pattern string) []Resource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return FindResourcesMatching(pattern, b.published)
}
