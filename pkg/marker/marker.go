// Package marker tags processed images so the pipeline does not run twice on
// its own output.
package marker

import (
	"image"
	"image/color"
	"image/draw"
)

// Size is the edge length of the square painted at the image origin
const Size = 2

// Color is the marker color, opaque pure blue
var Color = color.RGBA{R: 0, G: 0, B: 255, A: 255}

// IsMarked reports whether the origin pixel of img is pure blue. A natural
// photograph can trip this by accident; it is a heuristic, not a signature.
func IsMarked(img image.Image) bool {
	if img == nil {
		return false
	}
	b := img.Bounds()
	if b.Empty() {
		return false
	}
	r, g, bl, a := img.At(b.Min.X, b.Min.Y).RGBA()
	return r == 0 && g == 0 && bl == 0xffff && a == 0xffff
}

// Mark paints the Size x Size marker at the origin of img, clipped to its bounds
func Mark(img draw.Image) {
	b := img.Bounds()
	area := image.Rect(b.Min.X, b.Min.Y, b.Min.X+Size, b.Min.Y+Size).Intersect(b)
	draw.Draw(img, area, image.NewUniform(Color), image.Point{}, draw.Src)
}
