package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshquant/internal/logger"
	"github.com/Faultbox/meshquant/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize artifacts into a report and archive",
	Long: `Scan the output and stats directories, render the text report and the
method comparison, and bundle everything into the result archive. Works
from artifacts alone, so it can run long after the batch that produced
them.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	paths, err := report.New(cfg).Generate()
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}
