package sketchmap

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// Format is the encoding used to store a mosaic's source image.
type Format int

const (
	// PNG stores the source image losslessly
	PNG Format = iota
	// JPEG stores the source image as a JPEG
	JPEG
)

// Extension returns the canonical file extension, without a dot.
func (f Format) Extension() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpg"
	default:
		return ""
	}
}

func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromExtension returns the format for a file extension, ignoring case
// and any leading dot.
func FormatFromExtension(ext string) (Format, bool) {
	ext = strings.TrimPrefix(ext, ".")
	for _, f := range []Format{PNG, JPEG} {
		if strings.EqualFold(ext, f.Extension()) {
			return f, true
		}
	}
	return 0, false
}

// Encode writes m to w in format f.
func (f Format) Encode(w io.Writer, m image.Image) error {
	switch f {
	case PNG:
		return png.Encode(w, m)
	case JPEG:
		return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
	default:
		return fmt.Errorf("sketchmap: unknown format %s", f)
	}
}
