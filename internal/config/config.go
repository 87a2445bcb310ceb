package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/chlorophyll-imager/pkg/pipeline"
	"github.com/menta2k/chlorophyll-imager/pkg/sampler"
	"github.com/menta2k/chlorophyll-imager/pkg/segment"
	"github.com/menta2k/chlorophyll-imager/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Grid      GridConfig            `json:"grid"`
	Model     types.ModelParameters `json:"model"`
	Detection DetectionConfig       `json:"detection"`
	Sampling  SamplingConfig        `json:"sampling"`
	Output    OutputConfig          `json:"output"`
}

// GridConfig holds the expected plant layout
type GridConfig struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// DetectionConfig holds configuration for region detection
type DetectionConfig struct {
	MinArea            int `json:"min_area"`
	DilationIterations int `json:"dilation_iterations"`
}

// SamplingConfig holds configuration for region color sampling
type SamplingConfig struct {
	BackgroundLevel uint8  `json:"background_level"`
	BackgroundRule  string `json:"background_rule"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format        string  `json:"format"`
	Quality       int     `json:"quality"`
	OutputDir     string  `json:"output_dir"`
	Suffix        string  `json:"suffix"`
	MakeGrayscale bool    `json:"make_grayscale"`
	WriteCSV      bool    `json:"write_csv"`
	WriteJSON     bool    `json:"write_json"`
	FontSize      float64 `json:"font_size"`
}

// Default returns a configuration with default values
func Default() *Config {
	det := segment.DefaultConfig()
	smp := sampler.DefaultConfig()
	return &Config{
		Grid:  GridConfig{Rows: 6, Columns: 6},
		Model: types.DefaultModelParameters(),
		Detection: DetectionConfig{
			MinArea:            det.MinArea,
			DilationIterations: det.DilationIterations,
		},
		Sampling: SamplingConfig{
			BackgroundLevel: smp.BackgroundLevel,
			BackgroundRule:  smp.Rule.String(),
		},
		Output: OutputConfig{
			Format:    "png",
			Quality:   95,
			OutputDir: "./output",
			Suffix:    "_chl",
			WriteCSV:  true,
			FontSize:  48,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Grid.Rows < 1 || c.Grid.Columns < 1 {
		return fmt.Errorf("grid.rows and grid.columns must be positive")
	}

	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}

	if c.Detection.MinArea < 0 {
		return fmt.Errorf("detection.min_area must not be negative")
	}

	if c.Detection.DilationIterations < 0 {
		return fmt.Errorf("detection.dilation_iterations must not be negative")
	}

	if _, err := sampler.ParseBackgroundRule(c.Sampling.BackgroundRule); err != nil {
		return fmt.Errorf("sampling.background_rule: %w", err)
	}

	switch c.Output.Format {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.format must be png, jpg or webp")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Output.FontSize <= 0 {
		return fmt.Errorf("output.font_size must be positive")
	}

	return nil
}

// PipelineParameters converts the configuration into per-run parameters
func (c *Config) PipelineParameters() (pipeline.Parameters, error) {
	rule, err := sampler.ParseBackgroundRule(c.Sampling.BackgroundRule)
	if err != nil {
		return pipeline.Parameters{}, err
	}
	return pipeline.Parameters{
		Rows:          c.Grid.Rows,
		Columns:       c.Grid.Columns,
		Model:         c.Model,
		MakeGrayscale: c.Output.MakeGrayscale,
		Sampler: sampler.Config{
			BackgroundLevel: c.Sampling.BackgroundLevel,
			Rule:            rule,
		},
		Detector: segment.Config{
			MinArea:            c.Detection.MinArea,
			DilationIterations: c.Detection.DilationIterations,
		},
	}, nil
}

// Parameters makes Config a pipeline.ConfigProvider
func (c *Config) Parameters(ctx context.Context) (pipeline.Parameters, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.Parameters{}, err
	}
	if err := c.Validate(); err != nil {
		return pipeline.Parameters{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c.PipelineParameters()
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "chlorophyll-imager", "config.json")
}
