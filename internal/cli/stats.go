package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshquant/internal/logger"
	"github.com/Faultbox/meshquant/internal/runner"
	"github.com/Faultbox/meshquant/pkg/mesh"
)

var statsCmd = &cobra.Command{
	Use:   "stats [mesh...]",
	Short: "Compute per-axis statistics for meshes",
	Long: `Compute vertex statistics (min, max, mean, std, extent per axis) and
write one stats record per mesh. Without arguments every mesh in the
input directory is processed.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	paths := args
	if len(paths) == 0 {
		paths, err = mesh.ListFiles(cfg.Input.MeshDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no mesh files in %s", cfg.Input.MeshDir)
		}
	}

	r := runner.New(cfg, nil)
	for _, path := range paths {
		stats, err := r.StatsFile(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d vertices, %d faces\n", path, stats.VertexCount, stats.FaceCount)
		for a, name := range [...]string{"x", "y", "z"} {
			fmt.Printf("  %s: min=%.6g max=%.6g mean=%.6g std=%.6g extent=%.6g\n",
				name, stats.Min[a], stats.Max[a], stats.Mean[a], stats.Std[a], stats.Extent[a])
		}
	}
	return nil
}
