package schema

import (
	"fmt"
	"sync"
)

// Registry holds the descriptors of an application. It is populated during
// startup (the definition phase) and read-only afterwards; Validate closes
// the phase by checking that every declared lazy field resolves to a
// registered descriptor.
type Registry struct {
	descriptors map[string]*Descriptor
	mu          sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[string]*Descriptor),
	}
}

// Register adds a descriptor. Duplicate names are rejected; forward
// references inside lazy field resolvers are fine because thunks are not
// evaluated here.
func (r *Registry) Register(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.Name()]; exists {
		return fmt.Errorf("resource %s is already registered", d.Name())
	}
	r.descriptors[d.Name()] = d
	return nil
}

// Get retrieves a descriptor by resource name
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.descriptors[name]
	return d, exists
}

// All returns a copy of the registered descriptors
func (r *Registry) All() map[string]*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Descriptor, len(r.descriptors))
	for k, v := range r.descriptors {
		result[k] = v
	}
	return result
}

// List returns the names of all registered resources
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered descriptors
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.descriptors)
}

// Exists checks whether a resource is registered
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.descriptors[name]
	return exists
}

// Clear removes all registered descriptors (useful for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.descriptors = make(map[string]*Descriptor)
}

// Validate evaluates every lazy field's target resolver and checks the
// result is a registered descriptor. Cycles between resources are legal —
// thunks make mutual references safe — so this only rejects declarations
// that resolve to nothing or to an unregistered type. Call it once after
// the definition phase.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, d := range r.descriptors {
		for _, f := range d.LazyFields() {
			target, err := f.Resolve()
			if err != nil {
				return fmt.Errorf("resource %s: %w", name, err)
			}
			if registered, ok := r.descriptors[target.Name()]; !ok || registered != target {
				return fmt.Errorf("resource %s: lazy field %s targets unregistered resource %s",
					name, f.Name, target.Name())
			}
		}
	}
	return nil
}

// Graph builds the relation graph over the registered descriptors
func (r *Registry) Graph() *Graph {
	return NewGraph(r.All())
}
