/*
Package palette implements the host's native surface colour format.

A surface buffer is 128 by 128 pixels exactly, one byte per pixel in row-major
order, for 16384 bytes in total. Each byte indexes Palette. The first four
entries are transparent; after that every base colour appears four times, once
per shade, so base colour b with shade s is stored at index b*4+s.
*/
package palette

import "image/color"

const (
	// Width is the width in pixels of a surface buffer
	Width = 128
	// Height is the height in pixels of a surface buffer
	Height = Width
	// Size is the length in bytes of a surface buffer
	Size = Width * Height

	shadesPerColor = 4
	transparent    = 0
	alphaThreshold = 0x80
)

// Shade multipliers out of 255, in palette order
var shades = [shadesPerColor]uint32{180, 220, 255, 135}

var baseColors = [...]color.RGBA{
	{0x00, 0x00, 0x00, 0x00}, // transparent
	{0x7f, 0xb2, 0x38, 0xff}, // grass
	{0xf7, 0xe9, 0xa3, 0xff}, // sand
	{0xc7, 0xc7, 0xc7, 0xff}, // wool
	{0xff, 0x00, 0x00, 0xff}, // fire
	{0xa0, 0xa0, 0xff, 0xff}, // ice
	{0xa7, 0xa7, 0xa7, 0xff}, // metal
	{0x00, 0x7c, 0x00, 0xff}, // plant
	{0xff, 0xff, 0xff, 0xff}, // snow
	{0xa4, 0xa8, 0xb8, 0xff}, // clay
	{0x97, 0x6d, 0x4d, 0xff}, // dirt
	{0x70, 0x70, 0x70, 0xff}, // stone
	{0x40, 0x40, 0xff, 0xff}, // water
	{0x8f, 0x77, 0x48, 0xff}, // wood
	{0xff, 0xfc, 0xf5, 0xff}, // quartz
	{0xd8, 0x7f, 0x33, 0xff}, // orange
	{0xb2, 0x4c, 0xd8, 0xff}, // magenta
	{0x66, 0x99, 0xd8, 0xff}, // light blue
	{0xe5, 0xe5, 0x33, 0xff}, // yellow
	{0x7f, 0xcc, 0x19, 0xff}, // lime
	{0xf2, 0x7f, 0xa5, 0xff}, // pink
	{0x4c, 0x4c, 0x4c, 0xff}, // gray
	{0x99, 0x99, 0x99, 0xff}, // light gray
	{0x4c, 0x7f, 0x99, 0xff}, // cyan
	{0x7f, 0x3f, 0xb2, 0xff}, // purple
	{0x33, 0x4c, 0xb2, 0xff}, // blue
	{0x66, 0x4c, 0x33, 0xff}, // brown
	{0x66, 0x7f, 0x33, 0xff}, // green
	{0x99, 0x33, 0x33, 0xff}, // red
	{0x19, 0x19, 0x19, 0xff}, // black
	{0xfa, 0xee, 0x4d, 0xff}, // gold
	{0x5c, 0xdb, 0xd5, 0xff}, // diamond
	{0x4a, 0x80, 0xff, 0xff}, // lapis
	{0x00, 0xd9, 0x3a, 0xff}, // emerald
	{0x81, 0x56, 0x31, 0xff}, // podzol
	{0x70, 0x02, 0x00, 0xff}, // nether
}

// Palette is the host palette indexed by every byte of a surface buffer.
var Palette = makePalette()

// The opaque tail of Palette, used for nearest colour matching
var opaque = Palette[shadesPerColor:]

func makePalette() color.Palette {
	p := make(color.Palette, 0, len(baseColors)*shadesPerColor)
	for i, c := range baseColors {
		for _, s := range shades {
			if i == transparent {
				p = append(p, color.RGBA{})
				continue
			}
			p = append(p, color.RGBA{
				uint8(uint32(c.R) * s / 255),
				uint8(uint32(c.G) * s / 255),
				uint8(uint32(c.B) * s / 255),
				0xff,
			})
		}
	}
	return p
}

// Index returns the palette index closest to c. Colours that are mostly
// transparent map to the transparent index.
func Index(c color.Color) uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A < alphaThreshold {
		return transparent
	}
	n.A = 0xff
	return uint8(opaque.Index(n) + shadesPerColor)
}
