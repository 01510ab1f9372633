/*
Package memhost implements an in-memory host whose surfaces have the internal
layout sketchmap probes for. It backs the command line tool and tests.
*/
package memhost

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/bodgit/sketchmap"
	"github.com/bodgit/sketchmap/palette"
)

var errExhausted = errors.New("memhost: no surface identifiers left")

// SavedData tracks whether persistent host state has changed.
type SavedData struct {
	dirty   bool
	changes int
}

// IsDirty reports whether the data has changed since it was last saved.
func (d *SavedData) IsDirty() bool {
	return d.dirty
}

// SetDirty marks the data as changed.
func (d *SavedData) SetDirty() {
	d.dirty = true
	d.changes++
}

// WorldMap is the internal buffer object behind a MapView.
type WorldMap struct {
	SavedData

	centerX   int32
	centerZ   int32
	dimension int8
	scale     int8
	colors    []byte

	region  image.Rectangle
	flagged bool
}

// FlagDirty extends the dirty region to include pixel (x, z).
func (m *WorldMap) FlagDirty(x, z int) {
	r := image.Rect(x, z, x+1, z+1)
	if m.flagged {
		r = m.region.Union(r)
	}
	m.region, m.flagged = r, true
}

// MapView is a surface handle.
type MapView struct {
	id       uint16
	world    string
	worldMap *WorldMap
}

func newMapView(id uint16, world string) *MapView {
	return &MapView{
		id:    id,
		world: world,
		worldMap: &WorldMap{
			scale:  3,
			colors: make([]byte, palette.Size),
		},
	}
}

// ID returns the surface identifier.
func (v *MapView) ID() uint16 {
	return v.id
}

// World returns the world the surface belongs to.
func (v *MapView) World() string {
	return v.world
}

// Colors returns a copy of the native buffer.
func (v *MapView) Colors() []byte {
	return append([]byte(nil), v.worldMap.colors...)
}

// Dimension returns the dimension tag of the buffer.
func (v *MapView) Dimension() int8 {
	return v.worldMap.dimension
}

// Scale returns the scale of the buffer.
func (v *MapView) Scale() int8 {
	return v.worldMap.scale
}

// Center returns the center offsets of the buffer.
func (v *MapView) Center() (int32, int32) {
	return v.worldMap.centerX, v.worldMap.centerZ
}

// Dirty returns the region flagged dirty, if any.
func (v *MapView) Dirty() (image.Rectangle, bool) {
	return v.worldMap.region, v.worldMap.flagged
}

// Changes returns how many times the buffer has been marked as changed.
func (v *MapView) Changes() int {
	return v.worldMap.changes
}

// Image returns the native buffer decoded with the host palette.
func (v *MapView) Image() (*image.Paletted, error) {
	return palette.Decode(v.worldMap.colors)
}

// Host allocates MapView surfaces. It is safe for concurrent use.
type Host struct {
	mu    sync.Mutex
	next  uint16
	views map[uint16]*MapView
}

// New returns an empty host.
func New() *Host {
	return &Host{
		views: make(map[uint16]*MapView),
	}
}

// NewSurface allocates a surface with the next free identifier.
func (h *Host) NewSurface(world string) (sketchmap.Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		if _, ok := h.views[h.next]; !ok {
			break
		}
		if h.next == 1<<16-1 {
			return nil, errExhausted
		}
		h.next++
	}

	v := newMapView(h.next, world)
	h.views[v.id] = v

	return v, nil
}

// Surface returns the surface with the given identifier. Surfaces persisted
// by an earlier process are recreated on demand.
func (h *Host) Surface(id uint16) (sketchmap.Surface, error) {
	return h.View(id)
}

// View returns the MapView with the given identifier.
func (h *Host) View(id uint16) (*MapView, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, ok := h.views[id]
	if !ok {
		v = newMapView(id, "")
		h.views[id] = v
	}

	return v, nil
}

// Views returns every surface ordered by identifier.
func (h *Host) Views() []*MapView {
	h.mu.Lock()
	defer h.mu.Unlock()

	views := make([]*MapView, 0, len(h.views))
	for _, v := range h.views {
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].id < views[j].id })

	return views
}

func (v *MapView) String() string {
	return fmt.Sprintf("map_%d", v.id)
}
