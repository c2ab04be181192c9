package manifest

import (
	"sort"
	"sync"

	"github.com/kbukum/scopekit/di"
)

// Registry maps factory names used in manifests to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]di.Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]di.Factory)}
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f di.Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get retrieves a factory by name.
func (r *Registry) Get(name string) (di.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// List returns the sorted factory names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
