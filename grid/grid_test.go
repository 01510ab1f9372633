package grid

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every pixel encodes its own position so tiles can be checked exactly
func gradient(r image.Rectangle) *image.RGBA {
	m := image.NewRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, color.RGBA{uint8(x), uint8(y), uint8(x>>8 | y>>8<<4), 0xff})
		}
	}
	return m
}

func TestNewTiles(t *testing.T) {
	tests := []struct {
		xPanes, yPanes int
	}{
		{1, 1},
		{2, 1},
		{1, 3},
		{3, 2},
		{4, 4},
	}

	for _, tt := range tests {
		src := gradient(image.Rect(0, 0, tt.xPanes*PaneSize, tt.yPanes*PaneSize))
		g, err := New(src, tt.xPanes, tt.yPanes)
		require.NoError(t, err)

		coords := g.Coordinates()
		assert.Len(t, coords, tt.xPanes*tt.yPanes)
		assert.Equal(t, len(coords), g.Len())

		seen := make(map[Coordinate]struct{})
		for _, c := range coords {
			require.True(t, g.Contains(c), "%s", c)
			seen[c] = struct{}{}

			tile := g.Tile(c)
			require.Equal(t, image.Rect(0, 0, PaneSize, PaneSize), tile.Bounds())
			for _, p := range []image.Point{{0, 0}, {127, 0}, {0, 127}, {127, 127}, {64, 31}} {
				assert.Equal(t, src.At(c.X*PaneSize+p.X, c.Y*PaneSize+p.Y), tile.At(p.X, p.Y))
			}
		}
		assert.Len(t, seen, tt.xPanes*tt.yPanes, "duplicate coordinates")
	}
}

func TestCoordinatesOrder(t *testing.T) {
	g, err := New(image.NewRGBA(image.Rect(0, 0, 2*PaneSize, 2*PaneSize)), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []Coordinate{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, g.Coordinates())
}

func TestNewOffsetSource(t *testing.T) {
	src := gradient(image.Rect(0, 0, 3*PaneSize, PaneSize))
	sub := src.SubImage(image.Rect(PaneSize, 0, 3*PaneSize, PaneSize))

	g, err := New(sub, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2*PaneSize, PaneSize), g.Image().Bounds())
	assert.Equal(t, src.At(PaneSize+5, 7), g.Tile(Coordinate{0, 0}).At(5, 7))
}

func TestNewCopiesSource(t *testing.T) {
	src := gradient(image.Rect(0, 0, PaneSize, PaneSize))
	g, err := New(src, 1, 1)
	require.NoError(t, err)

	want := g.Tile(Coordinate{0, 0}).At(3, 3)
	src.Set(3, 3, color.RGBA{1, 2, 3, 4})
	assert.Equal(t, want, g.Tile(Coordinate{0, 0}).At(3, 3))
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name           string
		r              image.Rectangle
		xPanes, yPanes int
		dimension      bool
	}{
		{"too narrow", image.Rect(0, 0, 255, 128), 2, 1, true},
		{"too tall", image.Rect(0, 0, 256, 129), 2, 1, true},
		{"unscaled", image.Rect(0, 0, 640, 480), 2, 2, true},
		{"zero panes", image.Rect(0, 0, 0, 128), 0, 1, false},
		{"negative panes", image.Rect(0, 0, 128, 128), 1, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(image.NewRGBA(tt.r), tt.xPanes, tt.yPanes)
			assert.Nil(t, g)
			require.Error(t, err)
			assert.Equal(t, tt.dimension, errors.Is(err, ErrDimensionMismatch))
		})
	}
}

func TestTileOutside(t *testing.T) {
	g, err := New(image.NewRGBA(image.Rect(0, 0, PaneSize, PaneSize)), 1, 1)
	require.NoError(t, err)
	assert.False(t, g.Contains(Coordinate{1, 0}))
	assert.Panics(t, func() { g.Tile(Coordinate{1, 0}) })
}

func TestCoordinateKey(t *testing.T) {
	m := map[Coordinate]int{{1, 2}: 3}
	assert.Equal(t, 3, m[Coordinate{X: 1, Y: 2}])
	assert.Equal(t, "(1,2)", Coordinate{1, 2}.String())
}
