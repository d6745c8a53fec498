package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshquant/internal/logger"
	"github.com/Faultbox/meshquant/internal/report"
	"github.com/Faultbox/meshquant/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Quantize every mesh in the input directory and write a report",
	Long: `Run the full pipeline: load every .obj and .ply mesh under the input
directory, quantize each one with every configured method, write the
artifacts, then render the report and archive.

A second SIGINT kills the process; the first stops the batch cleanly
after the pairs in flight finish.`,
	RunE: runBatch,
}

var flagNoReport bool

func init() {
	runCmd.Flags().BoolVar(&flagNoReport, "no-report", false, "skip report and archive generation")
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := openCatalog(cfg)
	if store != nil {
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		signal.Stop(sigCh)
		cancel()
	}()

	summary, err := runner.New(cfg, store).RunAll(ctx)
	if err != nil {
		return err
	}
	printSummary(summary)

	if !flagNoReport {
		paths, err := report.New(cfg).Generate()
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("wrote %s\n", p)
		}
	}

	if n := summary.Failed(); n > 0 {
		return fmt.Errorf("%d of %d pairs failed", n, len(summary.Outcomes))
	}
	return nil
}

func printSummary(s *runner.Summary) {
	for _, out := range s.Outcomes {
		if out.Err != nil {
			fmt.Printf("FAIL %-20s %-8s %v\n", out.Mesh, out.Strategy, out.Err)
			continue
		}
		fmt.Printf("ok   %-20s %-8s %7d vertices  mse=%.4e  max=%.4e  %s\n",
			out.Mesh, out.Strategy, out.Vertices,
			out.Report.MSETotal, out.Report.MaxError,
			out.Elapsed.Round(time.Millisecond))
	}
	for _, sk := range s.Skipped {
		fmt.Printf("skip %s: %v\n", sk.Path, sk.Err)
	}
	fmt.Printf("%d pairs, %d failed, %d files skipped, %s total\n",
		len(s.Outcomes), s.Failed(), len(s.Skipped), s.Elapsed.Round(time.Millisecond))
}
