package sketchmap

import (
	"image"

	"github.com/bodgit/sketchmap/grid"
	"golang.org/x/image/draw"
)

// Scale resamples m to exactly fill xPanes by yPanes tiles. m is returned
// unchanged if it is already the right size.
func Scale(m image.Image, xPanes, yPanes int) image.Image {
	r := image.Rect(0, 0, xPanes*grid.PaneSize, yPanes*grid.PaneSize)
	if m.Bounds().Size() == r.Size() {
		return m
	}

	dst := image.NewRGBA(r)
	draw.CatmullRom.Scale(dst, r, m, m.Bounds(), draw.Src, nil)

	return dst
}
