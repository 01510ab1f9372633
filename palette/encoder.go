package palette

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

var errWrongSize = errors.New("palette: image is wrong size")

// Encoder converts a 128 by 128 image into a native surface buffer.
type Encoder interface {
	Encode(m image.Image) ([]byte, error)
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(m image.Image) ([]byte, error)

// Encode calls f(m).
func (f EncoderFunc) Encode(m image.Image) ([]byte, error) {
	return f(m)
}

func checkSize(m image.Image) error {
	b := m.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		return errWrongSize
	}
	return nil
}

// Encode returns the native surface buffer for m, matching each pixel to the
// nearest palette colour.
func Encode(m image.Image) ([]byte, error) {
	if err := checkSize(m); err != nil {
		return nil, err
	}

	b := m.Bounds()
	buf := make([]byte, Size)
	seen := make(map[color.Color]uint8)

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c := m.At(b.Min.X+x, b.Min.Y+y)
			i, ok := seen[c]
			if !ok {
				i = Index(c)
				seen[c] = i
			}
			buf[y*Width+x] = i
		}
	}

	return buf, nil
}

// Quantizer is an Encoder that reduces the image to at most Colors colours
// with a median cut before matching against the palette. Each reduced colour
// is matched once.
type Quantizer struct {
	Colors int
}

// Encode implements Encoder.
func (q Quantizer) Encode(m image.Image) ([]byte, error) {
	if q.Colors <= 0 {
		return Encode(m)
	}
	if err := checkSize(m); err != nil {
		return nil, err
	}

	b := m.Bounds()
	mc := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, mc.Quantize(make(color.Palette, 0, q.Colors), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	lookup := make([]uint8, len(pm.Palette))
	for i, c := range pm.Palette {
		lookup[i] = Index(c)
	}

	buf := make([]byte, Size)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			buf[y*Width+x] = lookup[pm.ColorIndexAt(b.Min.X+x, b.Min.Y+y)]
		}
	}

	return buf, nil
}
