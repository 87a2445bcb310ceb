package segment

import (
	"image"

	"github.com/disintegration/imaging"
)

// intensity returns a 0-based row-major luminance plane of img
func intensity(img image.Image) ([]uint8, int, int) {
	gray := imaging.Grayscale(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		i := y * gray.Stride
		for x := 0; x < w; x++ {
			out[y*w+x] = gray.Pix[i]
			i += 4
		}
	}
	return out, w, h
}

// otsuThreshold picks the level maximising between-class variance. Pixels at or
// below the level form the dark class. ok is false when the histogram has a
// single populated level and there is nothing to separate.
func otsuThreshold(pixels []uint8) (level uint8, ok bool) {
	var histogram [256]int
	for _, p := range pixels {
		histogram[p]++
	}

	populated := 0
	for _, n := range histogram {
		if n > 0 {
			populated++
		}
	}
	if populated < 2 {
		return 0, false
	}

	total := len(pixels)
	var totalSum float64
	for i, n := range histogram {
		totalSum += float64(i) * float64(n)
	}

	var sumDark float64
	var weightDark int
	var maxVariance float64
	for t := 0; t < 256; t++ {
		weightDark += histogram[t]
		if weightDark == 0 {
			continue
		}
		weightLight := total - weightDark
		if weightLight == 0 {
			break
		}
		sumDark += float64(t) * float64(histogram[t])

		meanDark := sumDark / float64(weightDark)
		meanLight := (totalSum - sumDark) / float64(weightLight)
		variance := float64(weightDark) * float64(weightLight) * (meanDark - meanLight) * (meanDark - meanLight)
		if variance > maxVariance {
			maxVariance = variance
			level = uint8(t)
		}
	}
	return level, true
}

// Threshold returns the automatic foreground level for img. Pixels whose
// intensity is at or below the level are treated as plant.
func Threshold(img image.Image) (uint8, bool) {
	pixels, _, _ := intensity(img)
	return otsuThreshold(pixels)
}
