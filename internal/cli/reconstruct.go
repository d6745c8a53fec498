package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshquant/internal/logger"
	"github.com/Faultbox/meshquant/internal/runner"
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <mesh-name>",
	Short: "Rebuild meshes from previously written artifacts",
	Long: `Rebuild a mesh from the params record and code container a previous
quantize or run left in the output directory. The argument is the mesh
name the artifacts were written under, not a file path.

Without --source the result is a vertex-only point cloud; with the
original mesh file its face list is carried over.`,
	Args: cobra.ExactArgs(1),
	RunE: runReconstruct,
}

var flagSource string

func init() {
	reconstructCmd.Flags().StringVar(&flagSource, "source", "", "original mesh file supplying connectivity")
	rootCmd.AddCommand(reconstructCmd)
}

func runReconstruct(_ *cobra.Command, args []string) error {
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
		path, err := r.ReconstructFromArtifacts(args[0], s, flagSource)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}
