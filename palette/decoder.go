package palette

import (
	"errors"
	"image"
)

var (
	errNotEnough  = errors.New("palette: not enough image data")
	errTooMuch    = errors.New("palette: too much image data")
	errBadPalette = errors.New("palette: invalid palette index")
)

// Decode returns a native surface buffer as an image.Paletted using Palette.
// The buffer is copied.
func Decode(b []byte) (*image.Paletted, error) {
	switch {
	case len(b) < Size:
		return nil, errNotEnough
	case len(b) > Size:
		return nil, errTooMuch
	}

	for _, i := range b {
		if int(i) >= len(Palette) {
			return nil, errBadPalette
		}
	}

	m := image.NewPaletted(image.Rect(0, 0, Width, Height), Palette)
	copy(m.Pix, b)

	return m, nil
}
