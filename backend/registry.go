package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps solver-type identifiers to backend factories. It is safe for
// concurrent registration, unregistration and lookup.
//
// A Registry is constructed explicitly and passed by reference to whatever
// needs to instantiate a backend; there is no process-wide default.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to a solver-type identifier. It fails if the
// identifier is already registered.
func (r *Registry) Register(solverType string, f Factory) error {
	if f == nil {
		return fmt.Errorf("nil factory for solver type %q", solverType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[solverType]; ok {
		return fmt.Errorf("solver type %q already registered", solverType)
	}
	r.factories[solverType] = f
	return nil
}

// Unregister removes the factory bound to the identifier, if any. Subsequent
// lookups for the identifier fail explicitly.
func (r *Registry) Unregister(solverType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, solverType)
}

// Factory returns the factory registered for the identifier.
func (r *Registry) Factory(solverType string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[solverType]
	if !ok {
		return nil, fmt.Errorf("no factory registered for solver type %q", solverType)
	}
	return f, nil
}

// SolverTypes returns the registered identifiers, sorted.
func (r *Registry) SolverTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
