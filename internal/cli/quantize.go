package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshquant/internal/logger"
	"github.com/Faultbox/meshquant/internal/runner"
)

var quantizeCmd = &cobra.Command{
	Use:   "quantize <mesh>",
	Short: "Quantize a single mesh with every configured method",
	Long: `Quantize one mesh file and write the full artifact set for each
configured method: params record, code container, code sample,
reconstructed PLY and metrics. Use --method to run a subset.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuantize,
}

func init() {
	rootCmd.AddCommand(quantizeCmd)
}

func runQuantize(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	strategies, err := cfg.Strategies()
	if err != nil {
		return err
	}

	store := openCatalog(cfg)
	if store != nil {
		defer store.Close()
	}

	r := runner.New(cfg, store)
	for _, s := range strategies {
		out, err := r.QuantizeFile(args[0], s)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: %d vertices, mse=%.4e mae=%.4e max=%.4e, %s\n",
			out.Mesh, out.Strategy, out.Vertices,
			out.Report.MSETotal, out.Report.MAETotal, out.Report.MaxError,
			out.Elapsed.Round(time.Millisecond))
	}
	return nil
}
