package surface

import (
	"fmt"
	"reflect"
	"sync"
)

// Entry is the cached outcome of probing one surface type. Exactly one of
// Adapter and Err is set.
type Entry struct {
	Class   string
	Adapter *Adapter
	Err     error
}

// Supported reports whether the surface type can be written.
func (e *Entry) Supported() bool {
	return e.Adapter != nil
}

// Cache memoizes probe outcomes by surface type. It starts empty and is safe
// for concurrent use; a type is only ever probed once.
type Cache struct {
	shape Shape

	mu      sync.Mutex
	entries map[reflect.Type]*Entry
}

// NewCache returns an empty cache probing for shape.
func NewCache(shape Shape) *Cache {
	return &Cache{
		shape:   shape,
		entries: make(map[reflect.Type]*Entry),
	}
}

// Resolve returns the entry for the type of h, probing h if the type hasn't
// been seen before. It never panics.
func (c *Cache) Resolve(h any) *Entry {
	t := reflect.TypeOf(h)
	if t == nil {
		return &Entry{Err: fmt.Errorf("%w: nil handle", ErrUnsupported)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Keyed by type as local types can share a name
	if e, ok := c.entries[t]; ok {
		return e
	}

	a, err := resolve(c.shape, h)
	e := &Entry{
		Class:   Class(h),
		Adapter: a,
		Err:     err,
	}
	c.entries[t] = e

	return e
}

// Len returns the number of surface types resolved so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
