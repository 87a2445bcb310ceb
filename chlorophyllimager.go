// Package chlorophyllimager estimates per-seedling chlorophyll content from a
// single RGB photograph of a plate of seedlings arranged in a grid.
//
// Basic usage:
//
//	imager := chlorophyllimager.New()
//	img, err := imager.LoadImage(ctx, "plate.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := imager.Analyze(ctx, img, pipeline.StaticProvider(pipeline.DefaultParameters()))
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, row := range res.Table {
//		fmt.Printf("%d\t%d\t%.1f\n", row.Row, row.Column, row.Value)
//	}
//
// Plants are found as dark blobs on a light plate, their non-background mean
// color is turned into an estimate by a log-linear model calibrated against a
// white panel, and each grid cell receives the estimate of the plant nearest
// its center. The annotated output carries a small blue marker in its top-left
// corner so it is not processed a second time.
package chlorophyllimager

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/menta2k/chlorophyll-imager/internal/utils"
	"github.com/menta2k/chlorophyll-imager/pkg/pipeline"
	"github.com/menta2k/chlorophyll-imager/pkg/processing"
	"github.com/menta2k/chlorophyll-imager/pkg/report"
)

// Version of the chlorophyll imager library
const Version = "1.0.0"

// Imager provides a high-level interface for loading, analyzing and saving plates
type Imager struct {
	processor *processing.Processor
	pipeline  *pipeline.Pipeline
	logger    *slog.Logger
}

// New creates a new Imager with default configuration
func New() *Imager {
	return NewWithConfig(pipeline.DefaultConfig())
}

// NewWithConfig creates a new Imager with custom configuration
func NewWithConfig(config pipeline.Config) *Imager {
	return &Imager{
		processor: processing.NewProcessor(),
		pipeline:  pipeline.NewWithConfig(config),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the imager and its pipeline
func (im *Imager) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	im.logger = logger
	im.pipeline.SetLogger(logger)
}

// LoadImage loads an image from a file path or http(s) URL
func (im *Imager) LoadImage(ctx context.Context, source string) (image.Image, error) {
	return im.processor.LoadImageSmart(ctx, source)
}

// SaveImage saves an image, choosing the format from the file extension
func (im *Imager) SaveImage(img image.Image, path string) error {
	return im.processor.SaveImage(img, path, processing.FormatFromPath(path), 95)
}

// Analyze runs the estimation pipeline on img
func (im *Imager) Analyze(ctx context.Context, img image.Image, provider pipeline.ConfigProvider) (*pipeline.Result, error) {
	return im.pipeline.Run(ctx, img, provider)
}

// OutputOptions controls which files ProcessImageFile writes and where
type OutputOptions struct {
	Dir    string
	Suffix string
	// Format of the annotated image: png, jpg or webp
	Format    string
	Quality   int
	WriteCSV  bool
	WriteJSON bool
}

// DefaultOutputOptions writes a PNG and a CSV table into ./output
func DefaultOutputOptions() OutputOptions {
	return OutputOptions{
		Dir:      "./output",
		Suffix:   "_chl",
		Format:   "png",
		Quality:  95,
		WriteCSV: true,
	}
}

// ProcessResult lists the files written for one source image
type ProcessResult struct {
	Source        string
	Result        *pipeline.Result
	AnnotatedPath string
	GrayscalePath string
	CSVPath       string
	JSONPath      string
}

// ProcessImageFile loads, analyzes and writes the outputs of one image.
// Nothing is written when the image was already processed or the provider
// was cancelled.
func (im *Imager) ProcessImageFile(ctx context.Context, source string, provider pipeline.ConfigProvider, opts OutputOptions) (*ProcessResult, error) {
	img, err := im.LoadImage(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	res, err := im.Analyze(ctx, img, provider)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	out := &ProcessResult{Source: source, Result: res}
	if res.Status == pipeline.StatusAlreadyProcessed || res.Status == pipeline.StatusCancelled {
		im.logger.Info("no output written", "source", source, "status", res.Status.String())
		return out, nil
	}

	if err := im.writeOutputs(out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (im *Imager) writeOutputs(out *ProcessResult, opts OutputOptions) error {
	if err := utils.EnsureDir(opts.Dir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	res := out.Result
	base := utils.SourceBaseName(out.Source)

	out.AnnotatedPath = utils.GenerateOutputFilename(out.Source, opts.Dir, opts.Suffix, opts.Format)
	if err := im.processor.SaveImage(res.Annotated, out.AnnotatedPath, opts.Format, opts.Quality); err != nil {
		return fmt.Errorf("failed to save annotated image: %w", err)
	}
	im.logger.Info("annotated image saved", "path", out.AnnotatedPath)

	if res.Grayscale != nil {
		out.GrayscalePath = filepath.Join(opts.Dir, report.GrayscaleName(base, res.GrayscaleDivisor)+".png")
		if err := im.processor.SaveImage(res.Grayscale, out.GrayscalePath, "png", 100); err != nil {
			return fmt.Errorf("failed to save grayscale image: %w", err)
		}
		im.logger.Info("grayscale image saved", "path", out.GrayscalePath)
	}

	if opts.WriteCSV {
		out.CSVPath = filepath.Join(opts.Dir, base+opts.Suffix+".csv")
		if err := writeFile(out.CSVPath, func(f *os.File) error { return report.WriteCSV(f, res.Table) }); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}

	if opts.WriteJSON {
		out.JSONPath = filepath.Join(opts.Dir, base+opts.Suffix+".json")
		rep := report.Report{
			Image:            out.Source,
			Status:           res.Status.String(),
			Rows:             res.Spec.Rows,
			Columns:          res.Spec.Columns,
			Regions:          len(res.Samples),
			DroppedRegions:   res.DroppedRegions,
			Cells:            report.Cells(res.Table),
			Summary:          res.Summary,
			GrayscaleDivisor: res.GrayscaleDivisor,
		}
		if err := writeFile(out.JSONPath, func(f *os.File) error { return report.WriteJSON(f, rep) }); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
