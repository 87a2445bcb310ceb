// Package report renders pipeline results: the annotated image, the
// per-cell table, summary statistics and the grayscale output name.
package report

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/chlorophyll-imager/pkg/types"
)

// Style controls how estimates are written onto the image
type Style struct {
	Color color.RGBA `json:"color"`
	// Size is the font size in points
	Size float64 `json:"size"`
	DPI  float64 `json:"dpi"`
}

// DefaultStyle returns red 48pt text
func DefaultStyle() Style {
	return Style{
		Color: color.RGBA{R: 255, A: 255},
		Size:  48,
		DPI:   72,
	}
}

var (
	parsedFont    *opentype.Font
	parsedFontErr error
	parseFontOnce sync.Once
)

func regularFont() (*opentype.Font, error) {
	parseFontOnce.Do(func() {
		parsedFont, parsedFontErr = opentype.Parse(goregular.TTF)
	})
	return parsedFont, parsedFontErr
}

// NewFace builds the font face described by the style
func (s Style) NewFace() (font.Face, error) {
	f, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    s.Size,
		DPI:     s.DPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

// FormatValue renders a cell estimate with one decimal place
func FormatValue(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// Annotate returns a copy of img with every cell estimate written at its
// centroid. The text baseline starts at the centroid. img is not modified.
func Annotate(img image.Image, spec types.GridSpec, grid *types.EstimateGrid, style Style) (*image.NRGBA, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	if grid == nil || grid.Rows != spec.Rows || grid.Columns != spec.Columns {
		return nil, fmt.Errorf("estimate grid does not match %dx%d layout", spec.Rows, spec.Columns)
	}

	out := imaging.Clone(img)
	face, err := style.NewFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	for row := 0; row < spec.Rows; row++ {
		for col := 0; col < spec.Columns; col++ {
			x, y := spec.Centroid(row, col)
			drawText(out, face, FormatValue(grid.At(row, col)), int(x), int(y), style.Color)
		}
	}
	return out, nil
}

// drawText draws a string with its baseline origin at (x, y)
func drawText(img *image.NRGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
