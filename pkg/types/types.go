package types

import (
	"fmt"
	"image"
	"math"
)

// Unassigned is the sentinel stored in grid cells that no region could fill
var Unassigned = math.NaN()

// Region is a detected candidate plant blob in image pixel coordinates
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	// Area is the number of foreground pixels in the component
	Area int `json:"area"`
	// Mask is row-major Width*Height, nil when the whole box is in-region
	Mask []bool `json:"-"`
}

// Center returns the bounding-box center, truncated to whole pixels
func (r Region) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Bounds returns the bounding box as a rectangle
func (r Region) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Contains reports whether the box-local point (x, y) belongs to the region shape
func (r Region) Contains(x, y int) bool {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return false
	}
	if r.Mask == nil {
		return true
	}
	return r.Mask[y*r.Width+x]
}

// Validate checks the region invariants
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("region has invalid dimensions: %dx%d", r.Width, r.Height)
	}
	if r.Mask != nil && len(r.Mask) != r.Width*r.Height {
		return fmt.Errorf("region mask has %d entries, want %d", len(r.Mask), r.Width*r.Height)
	}
	return nil
}

// RegionSample is the masked, background-excluded mean color of a region
type RegionSample struct {
	Region     Region  `json:"region"`
	MeanR      float64 `json:"mean_r"`
	MeanG      float64 `json:"mean_g"`
	MeanB      float64 `json:"mean_b"`
	PixelCount int     `json:"pixel_count"`
	Estimate   float64 `json:"estimate"`
}

// GridSpec describes the expected rows x columns plant layout over the image
type GridSpec struct {
	Rows        int `json:"rows"`
	Columns     int `json:"columns"`
	ImageWidth  int `json:"image_width"`
	ImageHeight int `json:"image_height"`
}

// Validate checks that the grid can be laid out
func (s GridSpec) Validate() error {
	if s.Rows <= 0 {
		return fmt.Errorf("rows must be positive, got %d", s.Rows)
	}
	if s.Columns <= 0 {
		return fmt.Errorf("columns must be positive, got %d", s.Columns)
	}
	if s.ImageWidth <= 0 || s.ImageHeight <= 0 {
		return fmt.Errorf("invalid image dimensions: %dx%d", s.ImageWidth, s.ImageHeight)
	}
	return nil
}

// Centroid returns the expected plant position of cell (row, col), both 0-indexed
func (s GridSpec) Centroid(row, col int) (float64, float64) {
	cellW := float64(s.ImageWidth) / float64(s.Columns)
	cellH := float64(s.ImageHeight) / float64(s.Rows)
	return float64(col)*cellW + cellW/2, float64(row)*cellH + cellH/2
}

// EstimateGrid holds one chlorophyll estimate per grid cell, row-major
type EstimateGrid struct {
	Rows    int       `json:"rows"`
	Columns int       `json:"columns"`
	Values  []float64 `json:"values"`
	// Source is the index of the sample that filled each cell, -1 if unassigned
	Source []int `json:"source"`
}

// NewEstimateGrid allocates a grid with every cell unassigned
func NewEstimateGrid(rows, columns int) *EstimateGrid {
	g := &EstimateGrid{
		Rows:    rows,
		Columns: columns,
		Values:  make([]float64, rows*columns),
		Source:  make([]int, rows*columns),
	}
	for i := range g.Values {
		g.Values[i] = Unassigned
		g.Source[i] = -1
	}
	return g
}

// At returns the estimate of cell (row, col)
func (g *EstimateGrid) At(row, col int) float64 {
	return g.Values[row*g.Columns+col]
}

// Set stores the estimate of cell (row, col) along with the sample it came from
func (g *EstimateGrid) Set(row, col int, value float64, source int) {
	g.Values[row*g.Columns+col] = value
	g.Source[row*g.Columns+col] = source
}

// IsAssigned reports whether a cell received a region estimate
func (g *EstimateGrid) IsAssigned(row, col int) bool {
	return g.Source[row*g.Columns+col] >= 0
}

// ModelParameters are the coefficients of the log-linear chlorophyll model.
// The scales are the white-panel RGB measured in the photograph; the references
// are the white-panel RGB of the calibration target the coefficients were fit on.
type ModelParameters struct {
	RScale     float64 `json:"r_scale"`
	GScale     float64 `json:"g_scale"`
	BScale     float64 `json:"b_scale"`
	RCoeff     float64 `json:"r_coeff"`
	GCoeff     float64 `json:"g_coeff"`
	BCoeff     float64 `json:"b_coeff"`
	Constant   float64 `json:"constant"`
	ReferenceR float64 `json:"reference_r"`
	ReferenceG float64 `json:"reference_g"`
	ReferenceB float64 `json:"reference_b"`
}

// DefaultModelParameters returns the published Arabidopsis seedling calibration
func DefaultModelParameters() ModelParameters {
	return ModelParameters{
		RScale:     243,
		GScale:     243,
		BScale:     242,
		RCoeff:     -0.028,
		GCoeff:     0.019,
		BCoeff:     -0.003,
		Constant:   5.78,
		ReferenceR: 243,
		ReferenceG: 243,
		ReferenceB: 242,
	}
}

// Validate rejects parameters the estimator cannot evaluate
func (p ModelParameters) Validate() error {
	if p.RScale == 0 || p.GScale == 0 || p.BScale == 0 {
		return fmt.Errorf("white scales must be nonzero, got r=%g g=%g b=%g", p.RScale, p.GScale, p.BScale)
	}
	for name, v := range map[string]float64{
		"r_scale": p.RScale, "g_scale": p.GScale, "b_scale": p.BScale,
		"r_coeff": p.RCoeff, "g_coeff": p.GCoeff, "b_coeff": p.BCoeff,
		"constant": p.Constant,
		"reference_r": p.ReferenceR, "reference_g": p.ReferenceG, "reference_b": p.ReferenceB,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", name)
		}
	}
	return nil
}

// TableRow is one line of the human-facing result table, 1-indexed
type TableRow struct {
	Row    int     `json:"row"`
	Column int     `json:"column"`
	Value  float64 `json:"chl"`
}
