package items

import (
	"fmt"
	"sort"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// Registry maps node names to live items. It satisfies workflow.ItemResolver
// so drivers and the scheduler can look items up during runs and
// notifications.
type Registry struct {
	items map[string]workflow.Item
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]workflow.Item)}
}

// Register associates an item with its node name. Names are unique within a
// project; registering a name twice is an error.
func (r *Registry) Register(name string, item workflow.Item) error {
	if _, ok := r.items[name]; ok {
		return fmt.Errorf("item %q already registered", name)
	}
	r.items[name] = item
	return nil
}

// Find returns the item registered under name.
func (r *Registry) Find(name string) (workflow.Item, error) {
	item, ok := r.items[name]
	if !ok {
		return nil, fmt.Errorf("no item registered for %q", name)
	}
	return item, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered items.
func (r *Registry) Len() int { return len(r.items) }
