// Package config handles pipeline configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/meshquant/pkg/quant"
)

// Config holds all pipeline settings.
type Config struct {
	Input        InputConfig        `yaml:"input"`
	Quantization QuantizationConfig `yaml:"quantization"`
	Output       OutputConfig       `yaml:"output"`
	Run          RunConfig          `yaml:"run"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Report       ReportConfig       `yaml:"report"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// InputConfig holds mesh source settings.
type InputConfig struct {
	// MeshDir is scanned non-recursively for .obj and .ply files.
	MeshDir string `yaml:"mesh_dir"`
}

// QuantizationConfig holds encoder settings.
type QuantizationConfig struct {
	Bins    int      `yaml:"bins"`
	Methods []string `yaml:"methods"`
}

// OutputConfig holds artifact destination settings.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	StatsDir string `yaml:"stats_dir"`
}

// RunConfig holds batch execution settings.
type RunConfig struct {
	// Workers caps concurrent mesh/strategy pairs. Zero means one worker
	// per CPU.
	Workers int `yaml:"workers"`
}

// CatalogConfig holds run history settings.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// ReportConfig holds report and packaging settings.
type ReportConfig struct {
	Dir string `yaml:"dir"`
	// ErrorThreshold is the mean reconstruction error above which a run
	// is called out in the report.
	ErrorThreshold float64 `yaml:"error_threshold"`
	ArchiveName    string  `yaml:"archive_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			MeshDir: "data",
		},
		Quantization: QuantizationConfig{
			Bins:    quant.DefaultBins,
			Methods: []string{"minmax", "sphere"},
		},
		Output: OutputConfig{
			Dir:      "output",
			StatsDir: "stats",
		},
		Run: RunConfig{
			Workers: 0,
		},
		Catalog: CatalogConfig{
			Path: "meshquant.db",
		},
		Report: ReportConfig{
			Dir:            ".",
			ErrorThreshold: 1e-3,
			ArchiveName:    "meshquant_results.zip",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects configurations the pipeline cannot run with. It is
// called once after loading, before any mesh is touched.
func (c *Config) Validate() error {
	if c.Quantization.Bins < 2 || c.Quantization.Bins > quant.MaxBins {
		return fmt.Errorf("%w: got %d", quant.ErrBinsOutOfRange, c.Quantization.Bins)
	}
	if len(c.Quantization.Methods) == 0 {
		return fmt.Errorf("no quantization methods configured")
	}
	if _, err := c.Strategies(); err != nil {
		return err
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Run.Workers)
	}
	if c.Report.ErrorThreshold <= 0 {
		return fmt.Errorf("error threshold must be positive, got %g", c.Report.ErrorThreshold)
	}
	return nil
}

// Strategies resolves the configured method tags.
func (c *Config) Strategies() ([]quant.Strategy, error) {
	out := make([]quant.Strategy, 0, len(c.Quantization.Methods))
	for _, tag := range c.Quantization.Methods {
		s, err := quant.ParseStrategy(tag)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
