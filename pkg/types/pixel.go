package types

import (
	"image"
	"image/color"
)

// RGB8 reads the straight (non-premultiplied) 8-bit channels of a pixel, with
// fast paths for the common layouts
func RGB8(img image.Image, x, y int) (uint8, uint8, uint8) {
	switch src := img.(type) {
	case *image.NRGBA:
		c := src.NRGBAAt(x, y)
		return c.R, c.G, c.B
	case *image.RGBA:
		if c := src.RGBAAt(x, y); c.A == 0xff {
			return c.R, c.G, c.B
		}
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return c.R, c.G, c.B
}
