// Package estimator converts RGB color into a chlorophyll content estimate
// using a log-linear model normalised to a white calibration panel.
package estimator

import (
	"fmt"
	"image"
	"math"

	"github.com/menta2k/chlorophyll-imager/pkg/types"
)

// Estimate evaluates the chlorophyll model for one RGB triple
func Estimate(p types.ModelParameters, r, g, b float64) float64 {
	return math.Exp(p.RCoeff*r*p.ReferenceR/p.RScale +
		p.GCoeff*g*p.ReferenceG/p.GScale +
		p.BCoeff*b*p.ReferenceB/p.BScale +
		p.Constant)
}

// EstimateSample evaluates the model on the mean color of a sample
func EstimateSample(p types.ModelParameters, s types.RegionSample) float64 {
	return Estimate(p, s.MeanR, s.MeanG, s.MeanB)
}

// EstimateSamples fills in the Estimate field of every sample in place
func EstimateSamples(p types.ModelParameters, samples []types.RegionSample) {
	for i := range samples {
		samples[i].Estimate = EstimateSample(p, samples[i])
	}
}

// DirectEncode applies the model to every pixel of img independently and
// rescales the result so the largest estimate maps to 255. divisor is the
// estimate represented by one gray level (max/255).
func DirectEncode(img image.Image, p types.ModelParameters) (*image.Gray, float64, error) {
	if err := p.Validate(); err != nil {
		return nil, 0, err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, 0, fmt.Errorf("empty image: %dx%d", w, h)
	}

	values := make([]float64, w*h)
	var maxVal float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := types.RGB8(img, bounds.Min.X+x, bounds.Min.Y+y)
			v := Estimate(p, float64(r), float64(g), float64(b))
			values[y*w+x] = v
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if math.IsInf(maxVal, 0) || maxVal <= 0 {
		return nil, 0, fmt.Errorf("model produced no finite positive estimate (max=%g)", maxVal)
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range values {
		out.Pix[i] = uint8(255 * v / maxVal)
	}
	return out, maxVal / 255, nil
}
