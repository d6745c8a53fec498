package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshquant/internal/logger"
	"github.com/Faultbox/meshquant/internal/runner"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <mesh>",
	Short: "Measure reconstruction error against the original mesh",
	Long: `Compare a mesh file against the reconstructed artifacts in the output
directory and rewrite the metrics records. Useful after reconstructing
with different parameters, or to re-derive metrics that were deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	strategies, err := cfg.Strategies()
	if err != nil {
		return err
	}

	r := runner.New(cfg, nil)
	for _, s := range strategies {
		report, err := r.MeasureArtifacts(args[0], s)
		if err != nil {
			return err
		}
		fmt.Printf("%s:\n", s)
		fmt.Printf("  mse=%.6e (per axis %.6e %.6e %.6e)\n",
			report.MSETotal, report.MSEPerAxis[0], report.MSEPerAxis[1], report.MSEPerAxis[2])
		fmt.Printf("  mae=%.6e (per axis %.6e %.6e %.6e)\n",
			report.MAETotal, report.MAEPerAxis[0], report.MAEPerAxis[1], report.MAEPerAxis[2])
		fmt.Printf("  vertex error: max=%.6e min=%.6e mean=%.6e std=%.6e\n",
			report.MaxError, report.MinError, report.MeanError, report.StdError)
	}
	return nil
}
