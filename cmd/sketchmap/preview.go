package main

import (
	"image"
	"image/draw"
	"os"

	"github.com/bodgit/sketchmap"
	"github.com/bodgit/sketchmap/grid"
)

func drawTile(dst draw.Image, c grid.Coordinate, m image.Image) {
	r := image.Rect(c.X*grid.PaneSize, c.Y*grid.PaneSize, (c.X+1)*grid.PaneSize, (c.Y+1)*grid.PaneSize)
	draw.Draw(dst, r, m, image.Point{}, draw.Src)
}

func writePNG(file string, m image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := sketchmap.PNG.Encode(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
