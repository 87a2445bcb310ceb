//go:build !gocv

package segment

import (
	"image"

	"github.com/disintegration/gift"
)

// label binarizes a grayscale working copy of img, dilates it and labels the
// connected components in pure Go
func (d *Detector) label(img image.Image) (*labelMap, error) {
	pixels, w, h := intensity(img)

	mask := image.NewGray(image.Rect(0, 0, w, h))
	if level, ok := otsuThreshold(pixels); ok {
		for i, p := range pixels {
			if p <= level {
				mask.Pix[i] = 255
			}
		}
	}

	mask = dilate(mask, d.config.DilationIterations)

	fg := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x, v := range row {
			fg[y*w+x] = v != 0
		}
	}

	labels := labelComponents(fg, w, h)
	return &labelMap{
		width:  w,
		height: h,
		labels: labels,
		comps:  collectComponents(labels, w, h),
	}, nil
}

// dilate grows the white foreground by one pixel in all 8 directions per iteration.
// Pixels beyond the border replicate the edge.
func dilate(mask *image.Gray, iterations int) *image.Gray {
	if iterations <= 0 {
		return mask
	}
	g := gift.New(gift.Maximum(3, false))
	for i := 0; i < iterations; i++ {
		dst := image.NewGray(g.Bounds(mask.Bounds()))
		g.Draw(dst, mask)
		mask = dst
	}
	return mask
}
