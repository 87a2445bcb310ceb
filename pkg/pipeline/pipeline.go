// Package pipeline runs the full chlorophyll estimation on one photograph:
// processed-marker check, parameter request, region detection, color
// sampling, estimation, grid assignment, annotation and reporting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/menta2k/chlorophyll-imager/pkg/estimator"
	"github.com/menta2k/chlorophyll-imager/pkg/grid"
	"github.com/menta2k/chlorophyll-imager/pkg/marker"
	"github.com/menta2k/chlorophyll-imager/pkg/report"
	"github.com/menta2k/chlorophyll-imager/pkg/sampler"
	"github.com/menta2k/chlorophyll-imager/pkg/segment"
	"github.com/menta2k/chlorophyll-imager/pkg/types"
)

// Config holds settings that do not change between runs
type Config struct {
	Style report.Style `json:"style"`
}

// DefaultConfig returns red 48pt annotations
func DefaultConfig() Config {
	return Config{Style: report.DefaultStyle()}
}

// Pipeline processes plate photographs
type Pipeline struct {
	config Config
	logger *slog.Logger
}

// New creates a new Pipeline with default configuration
func New() *Pipeline {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new Pipeline with custom configuration
func NewWithConfig(config Config) *Pipeline {
	return &Pipeline{
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger used for stage diagnostics
func (p *Pipeline) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p.logger = logger
}

// Result holds everything a run produced. Only Status is set for
// StatusAlreadyProcessed and StatusCancelled.
type Result struct {
	Status    Status
	Spec      types.GridSpec
	Annotated *image.NRGBA
	Grid      *types.EstimateGrid
	Table     []types.TableRow
	Summary   report.Summary
	// Grayscale is nil unless requested
	Grayscale        *image.Gray
	GrayscaleDivisor float64
	Regions          []types.Region
	Samples          []types.RegionSample
	// DroppedRegions counts detected regions with no plant pixels
	DroppedRegions int
}

// Err maps the status to its sentinel error, nil for StatusOK
func (r *Result) Err() error {
	switch r.Status {
	case StatusAlreadyProcessed:
		return ErrAlreadyProcessed
	case StatusCancelled:
		return ErrConfigurationAborted
	case StatusNoRegions:
		return ErrEmptyRegionSet
	default:
		return nil
	}
}

// Run processes img. The input is never modified. An already processed image
// or a cancelled provider is reported through Result.Status with a nil error;
// the error return is for invalid input and provider failures.
func (p *Pipeline) Run(ctx context.Context, img image.Image, provider ConfigProvider) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	if img == nil {
		return nil, errors.New("nil image")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty image: %dx%d", bounds.Dx(), bounds.Dy())
	}

	if marker.IsMarked(img) {
		p.logger.Info("image already processed, skipping")
		return &Result{Status: StatusAlreadyProcessed}, nil
	}

	params, err := provider.Parameters(ctx)
	if err != nil {
		if errors.Is(err, ErrConfigurationAborted) || errors.Is(err, context.Canceled) {
			p.logger.Info("configuration aborted")
			return &Result{Status: StatusCancelled}, nil
		}
		return nil, fmt.Errorf("failed to get parameters: %w", err)
	}
	params = params.withDefaults()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	spec := types.GridSpec{
		Rows:        params.Rows,
		Columns:     params.Columns,
		ImageWidth:  bounds.Dx(),
		ImageHeight: bounds.Dy(),
	}
	res = &Result{Status: StatusOK, Spec: spec}

	res.Regions, err = segment.NewWithConfig(params.Detector).Detect(img)
	if err != nil {
		return nil, fmt.Errorf("region detection failed: %w", err)
	}
	p.logger.Debug("regions detected", "count", len(res.Regions))
	if ctx.Err() != nil {
		p.logger.Info("run cancelled after detection")
		return &Result{Status: StatusCancelled}, nil
	}

	res.Samples, res.DroppedRegions = sampler.NewWithConfig(params.Sampler).SampleAll(img, res.Regions)
	if res.DroppedRegions > 0 {
		p.logger.Info("dropped regions without plant pixels", "dropped", res.DroppedRegions)
	}
	if len(res.Samples) == 0 {
		p.logger.Warn("no plant regions found, every cell is unassigned",
			"rows", spec.Rows, "columns", spec.Columns)
		res.Status = StatusNoRegions
	}
	estimator.EstimateSamples(params.Model, res.Samples)

	res.Grid, err = grid.Assign(spec, res.Samples)
	if err != nil {
		return nil, err
	}

	res.Annotated, err = report.Annotate(img, spec, res.Grid, p.config.Style)
	if err != nil {
		return nil, fmt.Errorf("annotation failed: %w", err)
	}
	marker.Mark(res.Annotated)

	res.Table = report.Table(res.Grid)
	res.Summary = report.Summarize(res.Grid)
	p.logger.Debug("grid assigned",
		"assigned", res.Summary.Assigned, "unassigned", res.Summary.Unassigned)

	if params.MakeGrayscale {
		res.Grayscale, res.GrayscaleDivisor, err = estimator.DirectEncode(img, params.Model)
		if err != nil {
			return nil, fmt.Errorf("grayscale encoding failed: %w", err)
		}
		p.logger.Debug("grayscale encoded", "divisor", res.GrayscaleDivisor)
	}

	return res, nil
}
