// Package registry holds ordered, named collections of pluggable safety
// components (detectors or checkers). Reads on the validation hot path go
// through an immutable snapshot published atomically; mutations take a
// short exclusive lock and republish.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	ErrDuplicateComponent = errors.New("component name already registered")
	ErrUnknownComponent   = errors.New("component not registered")
)

// Component wraps a registered implementation with its metadata.
// Owned exclusively by the registry; callers mutate it only through
// Enable/Disable/SetWeight.
type Component[T any] struct {
	Name    string
	Version string
	Weight  float64
	Enabled bool
	Impl    T
}

// Info is the introspection view of a registered component.
type Info struct {
	Name    string
	Version string
	Weight  float64
	Enabled bool
}

// Registry is a generic container for named, versioned, weighted plugins.
// The zero value is not usable; call New.
type Registry[T any] struct {
	mu       sync.Mutex
	entries  []*Component[T] // registration order
	snapshot atomic.Pointer[[]Component[T]]
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	r := &Registry[T]{}
	r.publishLocked()
	return r
}

// Register adds a component. Weight must be in (0, 1]; out-of-range weights
// are clamped. Fails if the name is already taken.
func (r *Registry[T]) Register(name, version string, weight float64, impl T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.Name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
		}
	}

	r.entries = append(r.entries, &Component[T]{
		Name:    name,
		Version: version,
		Weight:  clampWeight(weight),
		Enabled: true,
		Impl:    impl,
	})
	r.publishLocked()
	return nil
}

// Unregister removes a component. Idempotent: returns whether an entry
// was removed.
func (r *Registry[T]) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.Name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			r.publishLocked()
			return true
		}
	}
	return false
}

// Enable turns a component back on without re-registering it.
func (r *Registry[T]) Enable(name string) error {
	return r.setEnabled(name, true)
}

// Disable skips a component during orchestration but keeps it listed.
func (r *Registry[T]) Disable(name string) error {
	return r.setEnabled(name, false)
}

func (r *Registry[T]) setEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.Name == name {
			e.Enabled = enabled
			r.publishLocked()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
}

// SetWeight adjusts a component's aggregation weight.
func (r *Registry[T]) SetWeight(name string, weight float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.Name == name {
			e.Weight = clampWeight(weight)
			r.publishLocked()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
}

// List returns metadata for every registered component, enabled or not,
// in registration order.
func (r *Registry[T]) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		infos = append(infos, Info{
			Name:    e.Name,
			Version: e.Version,
			Weight:  e.Weight,
			Enabled: e.Enabled,
		})
	}
	return infos
}

// Snapshot returns the enabled components in registration order.
// Lock-free: callers get an immutable published slice and must not
// modify it.
func (r *Registry[T]) Snapshot() []Component[T] {
	return *r.snapshot.Load()
}

// publishLocked rebuilds the enabled-components snapshot. Caller holds mu.
func (r *Registry[T]) publishLocked() {
	snap := make([]Component[T], 0, len(r.entries))
	for _, e := range r.entries {
		if e.Enabled {
			snap = append(snap, *e)
		}
	}
	r.snapshot.Store(&snap)
}

func clampWeight(w float64) float64 {
	if w <= 0 {
		return 1.0
	}
	if w > 1 {
		return 1.0
	}
	return w
}
