package surface

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Adapter holds the resolved members of one surface type.
type Adapter struct {
	buffer []int
	data   reflect.Type

	centerX   []int
	centerZ   []int
	dimension []int
	scale     []int
	colors    []int

	markDirty int

	// Name of the refresh method found on the first embedded type, called
	// through the buffer object so an override on it wins
	refresh string
}

func isInt(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isByte(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int8, reflect.Uint8:
		return true
	}
	return false
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// accessible returns v with any read-only restriction from unexported fields
// removed. v must be addressable.
func accessible(v reflect.Value) reflect.Value {
	if v.CanSet() || !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

// Returns the struct behind a pointer to a struct
func structValue(v reflect.Value) (reflect.Value, bool) {
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v.Elem(), true
}

// Returns the internal buffer object, always a non-nil pointer to a struct
func bufferObject(hv reflect.Value, index []int) (reflect.Value, bool) {
	v := accessible(hv.FieldByIndex(index))
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if _, ok := structValue(v); !ok {
		return reflect.Value{}, false
	}
	return v, true
}

func probeField(t reflect.Type, name string, valid func(reflect.Type) bool) ([]int, error) {
	f, ok := t.FieldByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrUnsupported, t, name)
	}
	if !valid(f.Type) {
		return nil, fmt.Errorf("%w: %s.%s has unexpected type %s", ErrUnsupported, t, name, f.Type)
	}
	return f.Index, nil
}

func probeMarkDirty(t reflect.Type, name string) (int, error) {
	m, ok := t.MethodByName(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no method %q", ErrUnsupported, t, name)
	}
	// Receiver plus two integer bounds, no results
	mt := m.Type
	if mt.NumIn() != 3 || !isInt(mt.In(1)) || !isInt(mt.In(2)) || mt.NumOut() != 0 {
		return 0, fmt.Errorf("%w: %s.%s has unexpected signature %s", ErrUnsupported, t, name, mt)
	}
	return m.Index, nil
}

// The refresh method is the first exported method taking and returning
// nothing on the first embedded type
func probeRefresh(t reflect.Type) (string, error) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		pt := f.Type
		if pt.Kind() != reflect.Ptr {
			pt = reflect.PointerTo(pt)
		}
		if pt.Elem().Kind() != reflect.Struct {
			break
		}

		for j := 0; j < pt.NumMethod(); j++ {
			mt := pt.Method(j).Type
			if mt.NumIn() == 1 && mt.NumOut() == 0 {
				return pt.Method(j).Name, nil
			}
		}
		return "", fmt.Errorf("%w: %s has no refresh method", ErrUnsupported, f.Type)
	}
	return "", fmt.Errorf("%w: %s has no embedded type", ErrUnsupported, t)
}

func resolve(shape Shape, h any) (a *Adapter, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("%w: probe failed: %v", ErrUnsupported, r)
		}
	}()

	hv, ok := structValue(reflect.ValueOf(h))
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a pointer to a struct", ErrUnsupported, h)
	}

	sf, ok := hv.Type().FieldByName(shape.Buffer)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no field %q", ErrUnsupported, h, shape.Buffer)
	}

	data, ok := bufferObject(hv, sf.Index)
	if !ok {
		return nil, fmt.Errorf("%w: %T.%s is not a buffer object", ErrUnsupported, h, shape.Buffer)
	}

	a = &Adapter{
		buffer: sf.Index,
		data:   data.Type(),
	}
	st := a.data.Elem()

	if a.centerX, err = probeField(st, shape.CenterX, isInt); err != nil {
		return nil, err
	}
	if a.centerZ, err = probeField(st, shape.CenterZ, isInt); err != nil {
		return nil, err
	}
	if a.dimension, err = probeField(st, shape.Dimension, isByte); err != nil {
		return nil, err
	}
	if a.scale, err = probeField(st, shape.Scale, isByte); err != nil {
		return nil, err
	}
	if a.colors, err = probeField(st, shape.Colors, isBytes); err != nil {
		return nil, err
	}
	if a.markDirty, err = probeMarkDirty(a.data, shape.MarkDirty); err != nil {
		return nil, err
	}
	if a.refresh, err = probeRefresh(st); err != nil {
		return nil, err
	}
	// The buffer object may shadow the method, which must still be callable
	if m, ok := a.data.MethodByName(a.refresh); !ok || m.Type.NumIn() != 1 {
		return nil, fmt.Errorf("%w: %s.%s is not callable without arguments", ErrUnsupported, a.data, a.refresh)
	}

	return a, nil
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errHostFault, r)
		}
	}()
	return fn()
}

func getInt(v reflect.Value) int64 {
	if v.CanInt() {
		return v.Int()
	}
	return int64(v.Uint())
}

func setInt(v reflect.Value, n int64) {
	if v.CanInt() {
		v.SetInt(n)
		return
	}
	v.SetUint(uint64(n))
}

// object returns the buffer object held by h
func (a *Adapter) object(h any) (obj reflect.Value, err error) {
	err = protect(func() error {
		hv, ok := structValue(reflect.ValueOf(h))
		if !ok {
			return fmt.Errorf("%w: %T is not a pointer to a struct", errHostFault, h)
		}
		if obj, ok = bufferObject(hv, a.buffer); !ok {
			return fmt.Errorf("%w: %T has no buffer object", errHostFault, h)
		}
		if obj.Type() != a.data {
			return fmt.Errorf("%w: buffer object is %s, want %s", errHostFault, obj.Type(), a.data)
		}
		return nil
	})
	return
}

func (a *Adapter) field(obj reflect.Value, index []int) reflect.Value {
	return accessible(obj.Elem().FieldByIndex(index))
}

// owned reports whether the buffer carries the sentinel dimension
func (a *Adapter) owned(obj reflect.Value) (owned bool, err error) {
	err = protect(func() error {
		owned = getInt(a.field(obj, a.dimension)) == Sentinel
		return nil
	})
	return
}

func (a *Adapter) colorBuffer(obj reflect.Value) (b []byte, err error) {
	err = protect(func() error {
		b = a.field(obj, a.colors).Bytes()
		return nil
	})
	return
}

func (a *Adapter) write(obj reflect.Value, b []byte) error {
	return protect(func() error {
		dst := a.field(obj, a.colors).Bytes()
		if len(dst) != len(b) {
			return fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSize, len(b), len(dst))
		}

		markDirty := obj.Method(a.markDirty)
		refresh := obj.MethodByName(a.refresh)
		if !refresh.IsValid() || refresh.Type().NumIn() != 0 {
			return fmt.Errorf("%w: %s has no callable %s", errHostFault, a.data, a.refresh)
		}

		setInt(a.field(obj, a.centerX), 0)
		setInt(a.field(obj, a.centerZ), 0)
		setInt(a.field(obj, a.dimension), Sentinel)
		setInt(a.field(obj, a.scale), minScale)
		copy(dst, b)

		// Marking both corners flags the whole buffer
		markDirty.Call([]reflect.Value{reflect.ValueOf(0).Convert(markDirty.Type().In(0)), reflect.ValueOf(0).Convert(markDirty.Type().In(1))})
		markDirty.Call([]reflect.Value{reflect.ValueOf(maxPixel).Convert(markDirty.Type().In(0)), reflect.ValueOf(maxPixel).Convert(markDirty.Type().In(1))})

		refresh.Call(nil)

		return nil
	})
}
