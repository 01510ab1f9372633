/*
Package grid decomposes a source image into the 128 by 128 tiles shown by a
rectangular grid of surfaces.
*/
package grid

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// PaneSize is the width and height in pixels of a single tile
const PaneSize = 128

var (
	// ErrDimensionMismatch is returned when the source image is not exactly
	// the size of the grid
	ErrDimensionMismatch = errors.New("grid: image dimensions do not match panes")

	errNoPanes = errors.New("grid: pane counts must be at least one")
)

// Coordinate is the position of a tile within a grid.
type Coordinate struct {
	X int
	Y int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid holds a copy of the source image and the pane counts.
type Grid struct {
	image  *image.RGBA
	xPanes int
	yPanes int
}

// New returns a Grid over a copy of m. The bounds of m must be exactly
// xPanes*PaneSize by yPanes*PaneSize.
func New(m image.Image, xPanes, yPanes int) (*Grid, error) {
	if xPanes < 1 || yPanes < 1 {
		return nil, errNoPanes
	}

	b := m.Bounds()
	if b.Dx() != xPanes*PaneSize || b.Dy() != yPanes*PaneSize {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDimensionMismatch, b.Dx(), b.Dy(), xPanes*PaneSize, yPanes*PaneSize)
	}

	// Own the pixels so the source can't change underneath us, and put the
	// top-left corner at (0, 0)
	dup := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dup, dup.Bounds(), m, b.Min, draw.Src)

	return &Grid{
		image:  dup,
		xPanes: xPanes,
		yPanes: yPanes,
	}, nil
}

// Image returns the source image. It must not be modified.
func (g *Grid) Image() image.Image {
	return g.image
}

// Panes returns the number of panes across and down.
func (g *Grid) Panes() (int, int) {
	return g.xPanes, g.yPanes
}

// Len returns the number of tiles.
func (g *Grid) Len() int {
	return g.xPanes * g.yPanes
}

// Contains reports whether c is inside the grid.
func (g *Grid) Contains(c Coordinate) bool {
	return c.X >= 0 && c.X < g.xPanes && c.Y >= 0 && c.Y < g.yPanes
}

// Coordinates returns every coordinate in the grid, columns first.
func (g *Grid) Coordinates() []Coordinate {
	coords := make([]Coordinate, 0, g.Len())
	for x := 0; x < g.xPanes; x++ {
		for y := 0; y < g.yPanes; y++ {
			coords = append(coords, Coordinate{x, y})
		}
	}
	return coords
}

// Tile returns a copy of the tile at c with its top-left corner at (0, 0).
// It panics if c is outside the grid.
func (g *Grid) Tile(c Coordinate) *image.RGBA {
	if !g.Contains(c) {
		panic(fmt.Sprintf("grid: coordinate %s outside %dx%d grid", c, g.xPanes, g.yPanes))
	}

	tile := image.NewRGBA(image.Rect(0, 0, PaneSize, PaneSize))
	draw.Draw(tile, tile.Bounds(), g.image, image.Pt(c.X*PaneSize, c.Y*PaneSize), draw.Src)

	return tile
}
