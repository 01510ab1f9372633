package memhost

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/bodgit/sketchmap/palette"
	"github.com/bodgit/sketchmap/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostSurfaces(t *testing.T) {
	h := New()

	a, err := h.NewSurface("world")
	require.NoError(t, err)
	b, err := h.NewSurface("world_nether")
	require.NoError(t, err)

	assert.Equal(t, uint16(0), a.ID())
	assert.Equal(t, uint16(1), b.ID())
	assert.Equal(t, "world_nether", b.(*MapView).World())

	s, err := h.Surface(1)
	require.NoError(t, err)
	assert.Same(t, b, s)

	// Recreated on demand, then skipped by allocation
	s, err = h.Surface(2)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), s.ID())

	c, err := h.NewSurface("world")
	require.NoError(t, err)
	assert.Equal(t, uint16(3), c.ID())

	views := h.Views()
	require.Len(t, views, 4)
	for i, v := range views {
		assert.Equal(t, uint16(i), v.ID())
	}
	assert.Equal(t, "map_3", views[3].String())
}

func TestMapViewWrite(t *testing.T) {
	h := New()
	s, err := h.NewSurface("world")
	require.NoError(t, err)
	v := s.(*MapView)

	w := surface.NewWriter(surface.NewCache(surface.DefaultShape), palette.EncoderFunc(palette.Encode), nil)
	require.True(t, w.Resolve(v).Supported(), "%v", w.Resolve(v).Err)

	m := image.NewRGBA(image.Rect(0, 0, palette.Width, palette.Height))
	draw.Draw(m, m.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	ok, err := w.Write(v, m)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, int8(surface.Sentinel), v.Dimension())
	assert.Equal(t, int8(0), v.Scale())
	x, z := v.Center()
	assert.Equal(t, int32(0), x)
	assert.Equal(t, int32(0), z)
	assert.Equal(t, 1, v.Changes())
	assert.True(t, v.worldMap.IsDirty())

	r, flagged := v.Dirty()
	assert.True(t, flagged)
	assert.Equal(t, image.Rect(0, 0, palette.Width, palette.Height), r)

	p, err := v.Image()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, p.At(64, 64))

	ok, err = w.Write(v, m)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v.Changes())
}
