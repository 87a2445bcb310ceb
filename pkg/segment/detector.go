// Package segment finds candidate plant regions in a plate photograph.
//
// The image is reduced to intensity, split into foreground and background by an
// automatic global threshold, dilated to merge leaves of the same seedling, and
// labelled into connected components. Components smaller than a minimum area are
// discarded as noise.
package segment

import (
	"fmt"
	"image"

	"github.com/menta2k/chlorophyll-imager/pkg/types"
)

// Detector extracts plant regions from RGB images
type Detector struct {
	config Config
}

// Config holds configuration for region detection
type Config struct {
	// MinArea is the smallest component, in pixels, kept as a region
	MinArea int `json:"min_area"`
	// DilationIterations is how many 3x3 dilations merge fragmented blobs
	DilationIterations int `json:"dilation_iterations"`
}

// DefaultConfig returns the detection settings used for 1-2 week old seedlings
func DefaultConfig() Config {
	return Config{
		MinArea:            150,
		DilationIterations: 3,
	}
}

// New creates a new Detector with default configuration
func New() *Detector {
	return &Detector{config: DefaultConfig()}
}

// NewWithConfig creates a new Detector with custom configuration
func NewWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// Config returns the detector configuration
func (d *Detector) Config() Config {
	return d.config
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.MinArea < 0 {
		return fmt.Errorf("min_area must not be negative, got %d", c.MinArea)
	}
	if c.DilationIterations < 0 {
		return fmt.Errorf("dilation_iterations must not be negative, got %d", c.DilationIterations)
	}
	return nil
}

// Detect returns the plant regions of img in raster order of their first pixel.
// Coordinates are relative to img.Bounds().Min. The input is never modified.
func (d *Detector) Detect(img image.Image) ([]types.Region, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	if err := d.config.Validate(); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty image: %dx%d", bounds.Dx(), bounds.Dy())
	}

	lm, err := d.label(img)
	if err != nil {
		return nil, fmt.Errorf("labelling failed: %w", err)
	}
	return d.regionsFromLabels(lm), nil
}

// labelMap is a component label per pixel (0 = background) plus per-label stats
type labelMap struct {
	width  int
	height int
	labels []int32
	comps  []component
}

type component struct {
	label      int32
	area       int
	minX, minY int
	maxX, maxY int
}

// collectComponents gathers bounding boxes and areas, ordered by the raster
// position of each label's first pixel regardless of how labels were numbered
func collectComponents(labels []int32, w, h int) []component {
	index := make(map[int32]int)
	var comps []component
	for y := 0; y < h; y++ {
		row := labels[y*w : (y+1)*w]
		for x, l := range row {
			if l == 0 {
				continue
			}
			i, ok := index[l]
			if !ok {
				i = len(comps)
				index[l] = i
				comps = append(comps, component{label: l, minX: x, minY: y, maxX: x, maxY: y})
			}
			c := &comps[i]
			c.area++
			if x < c.minX {
				c.minX = x
			}
			if x > c.maxX {
				c.maxX = x
			}
			if y > c.maxY {
				c.maxY = y
			}
		}
	}
	return comps
}

func (d *Detector) regionsFromLabels(lm *labelMap) []types.Region {
	regions := make([]types.Region, 0, len(lm.comps))
	for _, c := range lm.comps {
		if c.area < d.config.MinArea {
			continue
		}
		r := types.Region{
			X:      c.minX,
			Y:      c.minY,
			Width:  c.maxX - c.minX + 1,
			Height: c.maxY - c.minY + 1,
			Area:   c.area,
		}
		if c.area != r.Width*r.Height {
			r.Mask = make([]bool, r.Width*r.Height)
			for y := 0; y < r.Height; y++ {
				off := (r.Y+y)*lm.width + r.X
				for x := 0; x < r.Width; x++ {
					r.Mask[y*r.Width+x] = lm.labels[off+x] == c.label
				}
			}
		}
		regions = append(regions, r)
	}
	return regions
}
