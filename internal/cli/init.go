package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshquant/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration and create the working directories",
	Long: `Write a default configuration file, ready to edit, and create the mesh
input and artifact output directories it points at.

Without an argument the file goes to the user config directory; with one
it goes to the given path. An existing file is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitConfig,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInitConfig(_ *cobra.Command, args []string) error {
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}

	cfg := config.Default()
	applyOverrides(cfg)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("config written: %s\n", path)

	for _, dir := range []string{cfg.Input.MeshDir, cfg.Output.Dir, cfg.Output.StatsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Printf("directory ready: %s\n", dir)
	}
	return nil
}
