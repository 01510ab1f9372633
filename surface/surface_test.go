package surface

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"

	"github.com/bodgit/sketchmap/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedData struct {
	dirty   bool
	changes int
}

func (d *savedData) IsDirty() bool { return d.dirty }

func (d *savedData) SetDirty() {
	d.dirty = true
	d.changes++
}

type worldMap struct {
	savedData
	centerX   int32
	centerZ   int32
	dimension int8
	scale     int8
	colors    []byte
	marks     []image.Point
}

func (m *worldMap) FlagDirty(x, z int) {
	m.marks = append(m.marks, image.Pt(x, z))
}

type mapView struct {
	id       uint16
	worldMap *worldMap
}

func newView() *mapView {
	return &mapView{
		id: 1,
		worldMap: &worldMap{
			centerX:   -640,
			centerZ:   1280,
			dimension: 0,
			scale:     3,
			colors:    make([]byte, palette.Size),
		},
	}
}

// Same shape but the host blows up when flagged
type faultyMap struct {
	savedData
	centerX   int
	centerZ   int
	dimension uint8
	scale     uint8
	colors    []byte
}

func (m *faultyMap) FlagDirty(x, z int32) {
	panic("flag dirty")
}

type faultyView struct {
	worldMap *faultyMap
}

// No embedded type to find a refresh method on
type plainMap struct {
	centerX   int
	centerZ   int
	dimension int8
	scale     int8
	colors    []byte
}

func (m *plainMap) FlagDirty(x, z int) {}

type plainView struct {
	worldMap *plainMap
}

// Colours of the wrong type
type wideMap struct {
	savedData
	centerX   int
	centerZ   int
	dimension int8
	scale     int8
	colors    []int
}

func (m *wideMap) FlagDirty(x, z int) {}

type wideView struct {
	worldMap *wideMap
}

// Shadows the refresh method it embeds
type overMap struct {
	savedData
	centerX   int32
	centerZ   int32
	dimension int8
	scale     int8
	colors    []byte
	refreshes int
}

func (m *overMap) SetDirty() {
	m.refreshes++
}

func (m *overMap) FlagDirty(x, z int) {}

type overView struct {
	worldMap *overMap
}

// Buffer object behind an interface
type anyView struct {
	worldMap interface{}
}

type noBufferView struct {
	id uint16
}

func tile(c color.Color) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, palette.Width, palette.Height))
	draw.Draw(m, m.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return m
}

func encoded(t *testing.T, m image.Image) []byte {
	b, err := palette.Encode(m)
	require.NoError(t, err)
	return b
}

func TestClass(t *testing.T) {
	assert.Equal(t, "", Class(nil))
	assert.Equal(t, "*github.com/bodgit/sketchmap/surface.mapView", Class(newView()))
	assert.Equal(t, "github.com/bodgit/sketchmap/surface.noBufferView", Class(noBufferView{}))
	assert.Equal(t, "int", Class(1))
	assert.Equal(t, "[]uint8", Class([]byte{}))
}

func TestResolve(t *testing.T) {
	c := NewCache(DefaultShape)

	e := c.Resolve(newView())
	require.True(t, e.Supported(), "%v", e.Err)
	assert.NoError(t, e.Err)
	assert.Equal(t, Class(newView()), e.Class)

	assert.Same(t, e, c.Resolve(newView()))
	assert.Equal(t, 1, c.Len())
}

func TestResolveMissingMembers(t *testing.T) {
	tests := []struct {
		name  string
		shape func(*Shape)
	}{
		{"buffer", func(s *Shape) { s.Buffer = "handle" }},
		{"center x", func(s *Shape) { s.CenterX = "originX" }},
		{"center z", func(s *Shape) { s.CenterZ = "originZ" }},
		{"dimension", func(s *Shape) { s.Dimension = "map" }},
		{"scale", func(s *Shape) { s.Scale = "zoom" }},
		{"colors", func(s *Shape) { s.Colors = "pixels" }},
		{"mark dirty", func(s *Shape) { s.MarkDirty = "MarkDirty" }},
		{"mark dirty signature", func(s *Shape) { s.MarkDirty = "SetDirty" }},
		{"wrong member type", func(s *Shape) { s.Scale = "colors" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := DefaultShape
			tt.shape(&shape)
			c := NewCache(shape)

			e := c.Resolve(newView())
			assert.False(t, e.Supported())
			assert.ErrorIs(t, e.Err, ErrUnsupported)
			assert.Same(t, e, c.Resolve(newView()))

			w := NewWriter(c, palette.EncoderFunc(palette.Encode), nil)
			v := newView()
			ok, err := w.Write(v, tile(color.White))
			assert.False(t, ok)
			assert.NoError(t, err)
			assert.Equal(t, int8(0), v.worldMap.dimension)
			assert.Empty(t, v.worldMap.marks)
		})
	}
}

func TestResolveUnsupportedTypes(t *testing.T) {
	tests := []struct {
		name   string
		handle any
	}{
		{"struct value", *newView()},
		{"int", 42},
		{"nil pointer", (*mapView)(nil)},
		{"no buffer field", &noBufferView{}},
		{"nil buffer", &mapView{}},
		{"nil interface buffer", &anyView{}},
		{"no embedded type", &plainView{worldMap: &plainMap{colors: make([]byte, palette.Size)}}},
		{"wrong colors type", &wideView{worldMap: &wideMap{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewCache(DefaultShape).Resolve(tt.handle)
			assert.False(t, e.Supported())
			assert.ErrorIs(t, e.Err, ErrUnsupported)
		})
	}
}

func supportedLocal() any {
	type view struct {
		worldMap *worldMap
	}
	return &view{worldMap: newView().worldMap}
}

func unsupportedLocal() any {
	type view struct {
		worldMap *plainMap
	}
	return &view{worldMap: &plainMap{colors: make([]byte, palette.Size)}}
}

func TestResolveLocalTypes(t *testing.T) {
	supported, unsupported := supportedLocal(), unsupportedLocal()
	require.Equal(t, Class(supported), Class(unsupported))

	c := NewCache(DefaultShape)
	w := NewWriter(c, palette.EncoderFunc(palette.Encode), nil)

	ok, err := w.Write(unsupported, tile(color.White))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = w.Write(supported, tile(color.White))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.False(t, c.Resolve(unsupported).Supported())
	assert.True(t, c.Resolve(supported).Supported())
	assert.Equal(t, 2, c.Len())
}

func TestResolveNil(t *testing.T) {
	c := NewCache(DefaultShape)
	e := c.Resolve(nil)
	assert.False(t, e.Supported())
	assert.ErrorIs(t, e.Err, ErrUnsupported)
	assert.Equal(t, 0, c.Len())
}

func TestResolveInterfaceBuffer(t *testing.T) {
	wm := newView().worldMap
	c := NewCache(DefaultShape)

	e := c.Resolve(&anyView{worldMap: wm})
	require.True(t, e.Supported(), "%v", e.Err)

	ok, err := NewWriter(c, palette.EncoderFunc(palette.Encode), nil).Write(&anyView{worldMap: wm}, tile(color.White))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int8(Sentinel), wm.dimension)
}

func TestResolveConcurrent(t *testing.T) {
	c := NewCache(DefaultShape)

	const n = 32
	entries := make([]*Entry, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries[i] = c.Resolve(newView())
		}(i)
	}
	wg.Wait()

	for _, e := range entries {
		assert.Same(t, entries[0], e)
	}
	assert.Equal(t, 1, c.Len())
}

func TestResolveUnsupportedConcurrent(t *testing.T) {
	c := NewCache(DefaultShape)

	const n = 32
	entries := make([]*Entry, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries[i] = c.Resolve(&noBufferView{id: uint16(i)})
		}(i)
	}
	wg.Wait()

	for _, e := range entries {
		assert.Same(t, entries[0], e)
		assert.False(t, e.Supported())
	}
}
