package grid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

const maxEntries = 1<<16 - 1

var errTrailingData = errors.New("grid: trailing layout data")

// Layout maps surface identifiers to the coordinate each one shows. It
// implements the encoding.BinaryMarshaler and encoding.BinaryUnmarshaler
// interfaces.
type Layout struct {
	coords map[uint16]Coordinate
}

// NewLayout returns an empty layout
func NewLayout() *Layout {
	return &Layout{
		coords: make(map[uint16]Coordinate),
	}
}

// Len returns the number of surfaces in the layout
func (l *Layout) Len() int {
	return len(l.coords)
}

// Set stores the coordinate shown by surface id
func (l *Layout) Set(id uint16, c Coordinate) {
	l.coords[id] = c
}

// Get returns the coordinate shown by surface id
func (l *Layout) Get(id uint16) (Coordinate, bool) {
	c, ok := l.coords[id]
	return c, ok
}

func (l *Layout) ids() []uint16 {
	keys := make([]uint16, 0, len(l.coords))
	for k := range l.coords {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Each calls fn for every surface in ascending identifier order, stopping at
// the first error
func (l *Layout) Each(fn func(id uint16, c Coordinate) error) error {
	for _, id := range l.ids() {
		if err := fn(id, l.coords[id]); err != nil {
			return err
		}
	}
	return nil
}

type entry struct {
	ID uint16
	X  uint16
	Y  uint16
}

// MarshalBinary encodes the layout into binary form and returns the result
func (l *Layout) MarshalBinary() ([]byte, error) {
	length := len(l.coords)

	if length > maxEntries {
		return nil, fmt.Errorf("more than %d entries", maxEntries)
	}

	b := new(bytes.Buffer)

	// Write out the count
	if err := binary.Write(b, binary.LittleEndian, uint16(length)); err != nil {
		return nil, err
	}

	// Write out each entry sorted by identifier
	for _, id := range l.ids() {
		c := l.coords[id]
		if c.X < 0 || c.X > maxEntries || c.Y < 0 || c.Y > maxEntries {
			return nil, fmt.Errorf("coordinate %s out of range", c)
		}
		e := entry{id, uint16(c.X), uint16(c.Y)}
		if err := binary.Write(b, binary.LittleEndian, &e); err != nil {
			return nil, err
		}
	}

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the layout from binary form
func (l *Layout) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)

	l.coords = make(map[uint16]Coordinate)

	var length uint16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return err
	}

	for i := 0; i < int(length); i++ {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return err
		}
		l.coords[e.ID] = Coordinate{int(e.X), int(e.Y)}
	}

	if r.Len() > 0 {
		return errTrailingData
	}

	return nil
}
