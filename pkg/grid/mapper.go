// Package grid maps detected plant regions onto the expected rows x columns
// layout of a plate.
package grid

import (
	"fmt"
	"math"

	"github.com/menta2k/chlorophyll-imager/pkg/types"
)

// Centroids returns the expected plant x positions per column and y positions per row
func Centroids(spec types.GridSpec) (xs, ys []float64) {
	xs = make([]float64, spec.Columns)
	ys = make([]float64, spec.Rows)
	for j := range xs {
		xs[j], _ = spec.Centroid(0, j)
	}
	for i := range ys {
		_, ys[i] = spec.Centroid(i, 0)
	}
	return xs, ys
}

// Nearest returns the index of the sample whose region center is closest to
// (x, y). Ties keep the earliest sample. It returns -1 for an empty list.
func Nearest(samples []types.RegionSample, x, y float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, s := range samples {
		cx, cy := s.Region.Center()
		d := math.Hypot(float64(cx)-x, float64(cy)-y)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Assign fills every cell with the estimate of the sample nearest its centroid.
// Cells are filled independently, so one sample may serve several cells and
// some samples may serve none. With no samples every cell stays unassigned.
func Assign(spec types.GridSpec, samples []types.RegionSample) (*types.EstimateGrid, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}

	g := types.NewEstimateGrid(spec.Rows, spec.Columns)
	if len(samples) == 0 {
		return g, nil
	}

	xs, ys := Centroids(spec)
	for row, y := range ys {
		for col, x := range xs {
			i := Nearest(samples, x, y)
			g.Set(row, col, samples[i].Estimate, i)
		}
	}
	return g, nil
}
