// Package cli wires the meshquant commands. Command output goes to
// stdout; logging goes to stderr and the optional log file.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshquant/internal/catalog"
	"github.com/Faultbox/meshquant/internal/config"
	"github.com/Faultbox/meshquant/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:          "meshquant",
	Short:        "Quantize triangle mesh vertices and measure reconstruction error",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `meshquant normalizes mesh vertices (per-axis min-max or unit-sphere),
packs each coordinate into discrete bins, reconstructs the mesh from the
quantized codes and reports the reconstruction error.

A typical session:
  meshquant init          write a default config file
  meshquant run           quantize every mesh in the input directory
  meshquant report        summarize the artifacts of previous runs`,
}

// Persistent flags. Overrides apply only when the flag was set, so a
// config file value survives an untouched flag.
var (
	flagConfig   string
	flagBins     int
	flagMethods  []string
	flagWorkers  int
	flagMeshDir  string
	flagOutDir   string
	flagStatsDir string
	flagLogLevel string
	flagLogFile  string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default ./meshquant.yaml, then the user config dir)")
	pf.IntVar(&flagBins, "bins", 0, "quantization bins, 2 to 65536")
	pf.StringSliceVar(&flagMethods, "method", nil, "normalization methods to run (minmax, sphere)")
	pf.IntVar(&flagWorkers, "workers", 0, "concurrent mesh/strategy pairs, 0 for one per CPU")
	pf.StringVar(&flagMeshDir, "mesh-dir", "", "directory scanned for .obj and .ply meshes")
	pf.StringVar(&flagOutDir, "out", "", "artifact output directory")
	pf.StringVar(&flagStatsDir, "stats-dir", "", "mesh stats output directory")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFile, "log-file", "", "rotating log file path")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration, applies flag overrides, validates
// the result and brings up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	pf := rootCmd.PersistentFlags()
	if pf.Changed("bins") {
		cfg.Quantization.Bins = flagBins
	}
	if pf.Changed("method") {
		cfg.Quantization.Methods = flagMethods
	}
	if pf.Changed("workers") {
		cfg.Run.Workers = flagWorkers
	}
	if pf.Changed("mesh-dir") {
		cfg.Input.MeshDir = flagMeshDir
	}
	if pf.Changed("out") {
		cfg.Output.Dir = flagOutDir
	}
	if pf.Changed("stats-dir") {
		cfg.Output.StatsDir = flagStatsDir
	}
	if pf.Changed("log-level") {
		cfg.Logging.Level = flagLogLevel
	}
	if pf.Changed("log-file") {
		cfg.Logging.LogFile = flagLogFile
	}
}

// openCatalog opens the run history store. A failure is reported but not
// fatal; the caller gets a nil store and the pipeline runs without
// history.
func openCatalog(cfg *config.Config) *catalog.Store {
	store, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run history unavailable: %v\n", err)
		return nil
	}
	return store
}
