//go:build gocv

package segment

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// label runs threshold, dilation and component labelling through OpenCV
func (d *Detector) label(img image.Image) (*labelMap, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	w, h := gray.Cols(), gray.Rows()
	bin := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	defer bin.Close()

	minVal, maxVal, _, _ := gocv.MinMaxLoc(gray)
	if minVal < maxVal {
		gocv.Threshold(gray, &bin, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)
	} else {
		bin.SetTo(gocv.NewScalar(0, 0, 0, 0))
	}

	if d.config.DilationIterations > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
		defer kernel.Close()
		gocv.MorphologyExWithParams(bin, &bin, gocv.MorphDilate, kernel, d.config.DilationIterations, gocv.BorderReflect)
	}

	labelsMat := gocv.NewMat()
	defer labelsMat.Close()
	gocv.ConnectedComponents(bin, &labelsMat)

	data, err := labelsMat.DataPtrInt32()
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	labels := make([]int32, w*h)
	copy(labels, data[:w*h])

	return &labelMap{
		width:  w,
		height: h,
		labels: labels,
		comps:  collectComponents(labels, w, h),
	}, nil
}
