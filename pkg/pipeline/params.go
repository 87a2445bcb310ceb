package pipeline

import (
	"context"
	"fmt"

	"github.com/menta2k/chlorophyll-imager/pkg/sampler"
	"github.com/menta2k/chlorophyll-imager/pkg/segment"
	"github.com/menta2k/chlorophyll-imager/pkg/types"
)

// Parameters is the per-run configuration supplied by a ConfigProvider. A
// zero Sampler or Detector means the default settings.
type Parameters struct {
	Rows          int                   `json:"rows"`
	Columns       int                   `json:"columns"`
	Model         types.ModelParameters `json:"model"`
	MakeGrayscale bool                  `json:"make_grayscale"`
	Sampler       sampler.Config        `json:"sampler"`
	Detector      segment.Config        `json:"detector"`
}

// DefaultParameters returns a 6x6 plate with the default model and no grayscale output
func DefaultParameters() Parameters {
	return Parameters{
		Rows:     6,
		Columns:  6,
		Model:    types.DefaultModelParameters(),
		Sampler:  sampler.DefaultConfig(),
		Detector: segment.DefaultConfig(),
	}
}

// withDefaults replaces zero-value detector and sampler settings with the
// standard ones, so a provider that only fills the grid and model still gets
// 3 dilations, a 150 px minimum area and a background level of 200
func (p Parameters) withDefaults() Parameters {
	if p.Detector == (segment.Config{}) {
		p.Detector = segment.DefaultConfig()
	}
	if p.Sampler == (sampler.Config{}) {
		p.Sampler = sampler.DefaultConfig()
	}
	return p
}

// Validate checks everything that does not depend on the image
func (p Parameters) Validate() error {
	if p.Rows <= 0 {
		return fmt.Errorf("rows must be positive, got %d", p.Rows)
	}
	if p.Columns <= 0 {
		return fmt.Errorf("columns must be positive, got %d", p.Columns)
	}
	if err := p.Model.Validate(); err != nil {
		return fmt.Errorf("invalid model: %w", err)
	}
	if err := p.Detector.Validate(); err != nil {
		return fmt.Errorf("invalid detector config: %w", err)
	}
	return nil
}

// ConfigProvider supplies the parameters of one run. Returning an error that
// wraps ErrConfigurationAborted means the user cancelled.
type ConfigProvider interface {
	Parameters(ctx context.Context) (Parameters, error)
}

// ProviderFunc adapts a function to ConfigProvider
type ProviderFunc func(ctx context.Context) (Parameters, error)

// Parameters calls f
func (f ProviderFunc) Parameters(ctx context.Context) (Parameters, error) {
	return f(ctx)
}

// StaticProvider always returns the same parameters
type StaticProvider Parameters

// Parameters returns the stored parameters unless ctx is already done
func (s StaticProvider) Parameters(ctx context.Context) (Parameters, error) {
	if err := ctx.Err(); err != nil {
		return Parameters{}, err
	}
	return Parameters(s), nil
}
