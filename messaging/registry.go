package messaging

import (
	"sort"
	"sync"
)

// Registry holds the instances living in one window, keyed by instance id. Instances in the same
// window reach each other through it without going through messages.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]any)}
}

// Register stores v under id, replacing any previous entry.
func (r *Registry) Register(id string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = v
}

// Unregister removes id.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Lookup returns the entry registered under id.
func (r *Registry) Lookup(id string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[id]
	return v, ok
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
