package sketchmap

import (
	"image"

	"github.com/bodgit/sketchmap/grid"
)

// Surface is an opaque host display surface. The host's concrete type is
// probed at runtime to reach its native buffer.
type Surface interface {
	ID() uint16
}

// Host allocates and looks up display surfaces.
type Host interface {
	// NewSurface allocates a new surface in the given world.
	NewSurface(world string) (Surface, error)
	// Surface returns the existing surface with the given identifier.
	Surface(id uint16) (Surface, error)
}

// Store persists mosaic metadata.
type Store interface {
	Save(m *Mosaic) error
	Delete(m *Mosaic) error
}

// Record is a persisted mosaic, as returned by a Loader.
type Record struct {
	ID     string
	Image  image.Image
	XPanes int
	YPanes int
	Public bool
	Format Format
	Layout *grid.Layout
}

// Loader returns every persisted mosaic.
type Loader interface {
	Records() ([]Record, error)
}

type nopStore struct{}

func (nopStore) Save(*Mosaic) error   { return nil }
func (nopStore) Delete(*Mosaic) error { return nil }
