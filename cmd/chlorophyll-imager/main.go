package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	chlorophyllimager "github.com/menta2k/chlorophyll-imager"
	"github.com/menta2k/chlorophyll-imager/internal/config"
	"github.com/menta2k/chlorophyll-imager/internal/utils"
	"github.com/menta2k/chlorophyll-imager/pkg/pipeline"
	"github.com/menta2k/chlorophyll-imager/pkg/processing"
	"github.com/menta2k/chlorophyll-imager/pkg/report"
)

func main() {
	var in, outDir, configPath, ext, rule, logLevel string
	var rows, cols, quality int
	var grayscale, writeCSV, writeJSON, logJSON, initConfig bool

	flag.StringVar(&in, "in", "", "input image path, URL, or directory of images")
	flag.StringVar(&outDir, "out", "", "output directory (overrides config)")
	flag.StringVar(&configPath, "config", config.GetConfigPath(), "configuration file")
	flag.BoolVar(&initConfig, "init-config", false, "write the default configuration to -config and exit")

	flag.IntVar(&rows, "rows", 6, "number of plant rows on the plate")
	flag.IntVar(&cols, "cols", 6, "number of plant columns on the plate")
	flag.BoolVar(&grayscale, "grayscale", false, "also write a per-pixel chlorophyll encoded grayscale image")
	flag.StringVar(&rule, "rule", "near-white", "background rule: near-white|any-bright")

	flag.StringVar(&ext, "ext", "png", "annotated output format: png|jpg|webp")
	flag.IntVar(&quality, "quality", 95, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&writeCSV, "csv", true, "write the result table as CSV")
	flag.BoolVar(&writeJSON, "json", false, "write a JSON report")

	flag.StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	flag.BoolVar(&logJSON, "log-json", false, "log as JSON")
	flag.Parse()

	logger := NewLogger(os.Stderr, parseLevel(logLevel), logJSON)

	if initConfig {
		if err := config.Default().SaveToFile(configPath); err != nil {
			logger.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		logger.Info("default configuration written", "path", configPath)
		return
	}

	if in == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -in plate.jpg|URL|dir [-rows 6] [-cols 6] [-grayscale] [-out outdir] [-ext png|jpg|webp]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	cfg := config.Default()
	if utils.FileExists(configPath) {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
		logger.Debug("configuration loaded", "path", configPath)
	}

	// explicitly set flags win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.OutputDir = outDir
		case "rows":
			cfg.Grid.Rows = rows
		case "cols":
			cfg.Grid.Columns = cols
		case "grayscale":
			cfg.Output.MakeGrayscale = grayscale
		case "rule":
			cfg.Sampling.BackgroundRule = rule
		case "ext":
			cfg.Output.Format = ext
		case "quality":
			cfg.Output.Quality = quality
		case "csv":
			cfg.Output.WriteCSV = writeCSV
		case "json":
			cfg.Output.WriteJSON = writeJSON
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Output.Format == "jpg" || cfg.Output.Format == "jpeg" {
		logger.Warn("jpeg output does not keep the processed marker exactly; re-runs will not be detected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	style := report.DefaultStyle()
	style.Size = cfg.Output.FontSize
	imager := chlorophyllimager.NewWithConfig(pipeline.Config{Style: style})
	imager.SetLogger(logger)

	sources := []string{in}
	if !processing.IsURL(in) && utils.DirExists(in) {
		files, err := utils.ListImageFiles(in)
		if err != nil {
			logger.Error("failed to list images", "dir", in, "error", err)
			os.Exit(1)
		}
		sources = files
		logger.Info("batch mode", "dir", in, "images", len(files))
	}

	opts := chlorophyllimager.OutputOptions{
		Dir:       cfg.Output.OutputDir,
		Suffix:    cfg.Output.Suffix,
		Format:    cfg.Output.Format,
		Quality:   cfg.Output.Quality,
		WriteCSV:  cfg.Output.WriteCSV,
		WriteJSON: cfg.Output.WriteJSON,
	}

	failed := 0
	for _, source := range sources {
		if ctx.Err() != nil {
			logger.Warn("interrupted")
			break
		}
		out, err := imager.ProcessImageFile(ctx, source, cfg, opts)
		if err != nil {
			logger.Error("processing failed", "source", source, "error", err)
			failed++
			continue
		}
		res := out.Result
		switch res.Status {
		case pipeline.StatusAlreadyProcessed:
			logger.Warn("image already processed; open the unprocessed photograph instead", "source", source)
			continue
		case pipeline.StatusCancelled:
			logger.Warn("cancelled", "source", source)
			continue
		case pipeline.StatusNoRegions:
			logger.Warn("no plants found", "source", source)
		}
		printTable(source, res)
		logger.Info("processed", "source", source,
			"plants", len(res.Samples), "assigned", res.Summary.Assigned,
			"mean", res.Summary.Mean, "output", out.AnnotatedPath)
	}

	if failed > 0 {
		logger.Error("some images failed", "failed", failed, "total", len(sources))
		os.Exit(1)
	}
}

func printTable(source string, res *pipeline.Result) {
	fmt.Printf("# %s\n", source)
	fmt.Println("Row\tColumn\tchl")
	for _, row := range res.Table {
		fmt.Printf("%d\t%d\t%s\n", row.Row, row.Column, report.FormatValue(row.Value))
	}
}

