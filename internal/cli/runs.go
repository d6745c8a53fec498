package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshquant/internal/catalog"
	"github.com/Faultbox/meshquant/internal/logger"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the run history",
	Long: `List the mesh/strategy pairs recorded in the catalog, newest first.
Use --keep to prune the history down to the newest N records.`,
	RunE: runRuns,
}

var flagKeep int

func init() {
	runsCmd.Flags().IntVar(&flagKeep, "keep", -1, "prune history down to the newest N records")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagKeep >= 0 {
		deleted, err := store.Prune(flagKeep)
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d records\n", deleted)
	}

	records, err := store.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	fmt.Printf("%-20s %-20s %-8s %6s %9s %-12s %s\n",
		"time", "mesh", "method", "bins", "vertices", "mse", "mean error")
	for _, rec := range records {
		fmt.Printf("%-20s %-20s %-8s %6d %9d %-12.4e %.4e\n",
			rec.Time.Format("2006-01-02 15:04:05"), rec.Mesh, rec.Strategy,
			rec.Bins, rec.Vertices, rec.MSETotal, rec.MeanError)
	}
	return nil
}
