package sketchmap

import (
	"fmt"
	"sync"
)

// Registry is the set of live mosaics, keyed by identifier. It starts empty
// and is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	mosaics map[string]*Mosaic
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		mosaics: make(map[string]*Mosaic),
	}
}

// Register adds m. It fails if a mosaic with the same identifier is already
// registered.
func (r *Registry) Register(m *Mosaic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.mosaics[m.id]; ok {
		return fmt.Errorf("%w: %q", ErrExists, m.id)
	}
	r.mosaics[m.id] = m

	return nil
}

// Unregister removes m, reporting whether it was registered.
func (r *Registry) Unregister(m *Mosaic) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mosaics[m.id] != m {
		return false
	}
	delete(r.mosaics, m.id)

	return true
}

// Lookup returns the mosaic with the given identifier.
func (r *Registry) Lookup(id string) (*Mosaic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mosaics[id]
	return m, ok
}

// Len returns the number of registered mosaics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mosaics)
}

// Mosaics returns a snapshot of the registered mosaics in no particular
// order.
func (r *Registry) Mosaics() []*Mosaic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mosaics := make([]*Mosaic, 0, len(r.mosaics))
	for _, m := range r.mosaics {
		mosaics = append(mosaics, m)
	}
	return mosaics
}
