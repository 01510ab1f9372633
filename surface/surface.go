/*
Package surface writes native colour buffers directly into host surface
objects.

The host does not expose its surface internals through any stable API, so the
members needed to write a buffer are discovered at runtime. Each concrete
surface type is probed once and the outcome, supported or not, is cached for
the life of the process. Writes against unsupported types are skipped rather
than failing.
*/
package surface

import (
	"errors"
	"reflect"
)

const (
	// Sentinel is the dimension value marking a buffer as written by us.
	// It is outside the range of any real dimension.
	Sentinel = 99

	minScale = 0
	maxPixel = 127
)

var (
	// ErrUnsupported is recorded on cache entries for surface types that
	// lack one or more of the required members
	ErrUnsupported = errors.New("surface: unsupported host")

	// ErrBufferSize is returned when an encoded buffer is not the same
	// length as the surface buffer
	ErrBufferSize = errors.New("surface: buffer size mismatch")

	errHostFault = errors.New("surface: host fault")
)

// Shape names the members probed on a surface. Buffer is a field of the
// surface handle holding the internal buffer object; the remaining fields and
// MarkDirty belong to that object.
type Shape struct {
	Buffer    string
	CenterX   string
	CenterZ   string
	Dimension string
	Scale     string
	Colors    string
	MarkDirty string
}

// DefaultShape matches the layout of current hosts.
var DefaultShape = Shape{
	Buffer:    "worldMap",
	CenterX:   "centerX",
	CenterZ:   "centerZ",
	Dimension: "dimension",
	Scale:     "scale",
	Colors:    "colors",
	MarkDirty: "FlagDirty",
}

// Class returns a readable identifier of the concrete type of h, or "" if h
// is nil. Types declared inside functions may share an identifier.
func Class(h any) string {
	t := reflect.TypeOf(h)
	if t == nil {
		return ""
	}

	var prefix string
	for t.Kind() == reflect.Ptr {
		prefix += "*"
		t = t.Elem()
	}

	if t.PkgPath() == "" || t.Name() == "" {
		return prefix + t.String()
	}
	return prefix + t.PkgPath() + "." + t.Name()
}
