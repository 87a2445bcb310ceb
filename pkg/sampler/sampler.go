package sampler

import (
	"fmt"
	"image"

	"github.com/menta2k/chlorophyll-imager/pkg/types"
)

// BackgroundRule decides which pixels inside a region count as background
type BackgroundRule int

const (
	// RuleNearWhite excludes pixels whose three channels all exceed the level
	RuleNearWhite BackgroundRule = iota
	// RuleAnyBright excludes pixels with any channel above the level
	RuleAnyBright
)

func (r BackgroundRule) String() string {
	switch r {
	case RuleNearWhite:
		return "near-white"
	case RuleAnyBright:
		return "any-bright"
	default:
		return "unknown"
	}
}

// ParseBackgroundRule maps a rule name back to its value
func ParseBackgroundRule(name string) (BackgroundRule, error) {
	switch name {
	case "", "near-white":
		return RuleNearWhite, nil
	case "any-bright":
		return RuleAnyBright, nil
	default:
		return 0, fmt.Errorf("unknown background rule: %s", name)
	}
}

// Config holds configuration for region color sampling
type Config struct {
	BackgroundLevel uint8          `json:"background_level"`
	Rule            BackgroundRule `json:"rule"`
}

// DefaultConfig returns the sampling settings for plants on a white plate
func DefaultConfig() Config {
	return Config{
		BackgroundLevel: 200,
		Rule:            RuleNearWhite,
	}
}

// Sampler computes background-masked average colors of regions
type Sampler struct {
	config Config
}

// New creates a new Sampler with default configuration
func New() *Sampler {
	return &Sampler{config: DefaultConfig()}
}

// NewWithConfig creates a new Sampler with custom configuration
func NewWithConfig(config Config) *Sampler {
	return &Sampler{config: config}
}

// IsBackground reports whether an 8-bit pixel is excluded from region averages
func (s *Sampler) IsBackground(r, g, b uint8) bool {
	lvl := s.config.BackgroundLevel
	if s.config.Rule == RuleAnyBright {
		return r > lvl || g > lvl || b > lvl
	}
	return r > lvl && g > lvl && b > lvl
}

// Sample averages the in-mask, non-background pixels of region r. Region
// coordinates are relative to img.Bounds().Min. ok is false when no pixel
// qualifies.
func (s *Sampler) Sample(img image.Image, r types.Region) (types.RegionSample, bool) {
	bounds := img.Bounds()
	area := r.Bounds().Add(bounds.Min).Intersect(bounds)

	var sumR, sumG, sumB float64
	count := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if !r.Contains(x-bounds.Min.X-r.X, y-bounds.Min.Y-r.Y) {
				continue
			}
			pr, pg, pb := types.RGB8(img, x, y)
			if s.IsBackground(pr, pg, pb) {
				continue
			}
			sumR += float64(pr)
			sumG += float64(pg)
			sumB += float64(pb)
			count++
		}
	}

	if count == 0 {
		return types.RegionSample{Region: r}, false
	}
	return types.RegionSample{
		Region:     r,
		MeanR:      sumR / float64(count),
		MeanG:      sumG / float64(count),
		MeanB:      sumB / float64(count),
		PixelCount: count,
	}, true
}

// SampleAll samples every region in order, leaving out regions with no
// qualifying pixels. dropped counts the regions left out.
func (s *Sampler) SampleAll(img image.Image, regions []types.Region) (samples []types.RegionSample, dropped int) {
	samples = make([]types.RegionSample, 0, len(regions))
	for _, r := range regions {
		sample, ok := s.Sample(img, r)
		if !ok {
			dropped++
			continue
		}
		samples = append(samples, sample)
	}
	return samples, dropped
}
