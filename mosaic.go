package sketchmap

import (
	"image"
	"sync/atomic"

	"github.com/bodgit/sketchmap/grid"
)

type pane struct {
	surface Surface
	tile    *image.RGBA
}

// Mosaic renders one source image across a grid of surfaces. Once
// constructed every coordinate of the grid is bound to exactly one surface.
type Mosaic struct {
	id     string
	grid   *grid.Grid
	public bool
	format Format
	panes  map[grid.Coordinate]pane

	deleted atomic.Bool
}

func newMosaic(m image.Image, id string, xPanes, yPanes int, public bool, format Format) (*Mosaic, error) {
	g, err := grid.New(m, xPanes, yPanes)
	if err != nil {
		return nil, err
	}

	return &Mosaic{
		id:     id,
		grid:   g,
		public: public,
		format: format,
		panes:  make(map[grid.Coordinate]pane, g.Len()),
	}, nil
}

func (m *Mosaic) bind(c grid.Coordinate, s Surface) {
	m.panes[c] = pane{
		surface: s,
		tile:    m.grid.Tile(c),
	}
}

// ID returns the mosaic identifier.
func (m *Mosaic) ID() string {
	return m.id
}

// Image returns the source image, scaled to the grid. It must not be
// modified.
func (m *Mosaic) Image() image.Image {
	return m.grid.Image()
}

// Panes returns the number of panes across and down.
func (m *Mosaic) Panes() (int, int) {
	return m.grid.Panes()
}

// Public reports whether the mosaic is public.
func (m *Mosaic) Public() bool {
	return m.public
}

// Format returns the format the source image is stored in.
func (m *Mosaic) Format() Format {
	return m.format
}

// Deleted reports whether the mosaic has been deleted.
func (m *Mosaic) Deleted() bool {
	return m.deleted.Load()
}

// Surface returns the surface bound at c.
func (m *Mosaic) Surface(c grid.Coordinate) (Surface, bool) {
	p, ok := m.panes[c]
	return p.surface, ok
}

// Tile returns the tile shown at c. It must not be modified.
func (m *Mosaic) Tile(c grid.Coordinate) (*image.RGBA, bool) {
	p, ok := m.panes[c]
	return p.tile, ok
}

// Surfaces returns a copy of the coordinate to surface bindings.
func (m *Mosaic) Surfaces() map[grid.Coordinate]Surface {
	surfaces := make(map[grid.Coordinate]Surface, len(m.panes))
	for c, p := range m.panes {
		surfaces[c] = p.surface
	}
	return surfaces
}

// Layout returns the surface identifier to coordinate mapping.
func (m *Mosaic) Layout() *grid.Layout {
	l := grid.NewLayout()
	for c, p := range m.panes {
		l.Set(p.surface.ID(), c)
	}
	return l
}
