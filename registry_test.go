package sketchmap

import (
	"fmt"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMosaic(t *testing.T, id string) *Mosaic {
	m, err := newMosaic(image.NewRGBA(image.Rect(0, 0, 128, 128)), id, 1, 1, true, PNG)
	require.NoError(t, err)
	return m
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Mosaics())

	a, b := testMosaic(t, "a"), testMosaic(t, "b")
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))
	assert.Equal(t, 2, r.Len())
	assert.ElementsMatch(t, []*Mosaic{a, b}, r.Mosaics())

	assert.ErrorIs(t, r.Register(a), ErrExists)
	assert.ErrorIs(t, r.Register(testMosaic(t, "a")), ErrExists)

	m, ok := r.Lookup("a")
	assert.True(t, ok)
	assert.Same(t, a, m)

	// Only the registered instance can be removed
	assert.False(t, r.Unregister(testMosaic(t, "a")))
	assert.True(t, r.Unregister(a))
	assert.False(t, r.Unregister(a))
	assert.Equal(t, 1, r.Len())

	_, ok = r.Lookup("a")
	assert.False(t, ok)
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()

	const n = 64
	mosaics := make([]*Mosaic, n)
	for i := range mosaics {
		mosaics[i] = testMosaic(t, fmt.Sprintf("m%d", i))
	}

	var wg sync.WaitGroup
	for _, m := range mosaics {
		wg.Add(1)
		go func(m *Mosaic) {
			defer wg.Done()
			assert.NoError(t, r.Register(m))
			r.Mosaics()
		}(m)
	}
	wg.Wait()
	assert.Equal(t, n, r.Len())

	for _, m := range mosaics[:n/2] {
		wg.Add(1)
		go func(m *Mosaic) {
			defer wg.Done()
			assert.True(t, r.Unregister(m))
		}(m)
	}
	wg.Wait()
	assert.Equal(t, n/2, r.Len())
}
