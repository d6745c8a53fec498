// Package report renders human-readable summaries of pipeline artifacts:
// a full text report, a method comparison, and a zip archive bundling
// everything for handoff. The tables need only the artifact files on
// disk, so reports can be regenerated long after a run; error histograms
// additionally need the source meshes and are skipped when those are
// gone.
package report

import (
	"bytes"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshquant/internal/artifacts"
	"github.com/Faultbox/meshquant/internal/catalog"
	"github.com/Faultbox/meshquant/internal/config"
	"github.com/Faultbox/meshquant/internal/logger"
	"github.com/Faultbox/meshquant/pkg/mesh"
	"github.com/Faultbox/meshquant/pkg/quant"
)

// ReportName and ComparisonName are the fixed output file names.
const (
	ReportName     = "REPORT.txt"
	ComparisonName = "comparison_summary.txt"
)

const barWidth = 40

// PairMetrics is one mesh/strategy metrics record found on disk.
type PairMetrics struct {
	Mesh     string
	Strategy quant.Strategy
	Report   *quant.ErrorReport
}

// Data is everything the renderers consume.
type Data struct {
	// Names lists the meshes with at least one metrics record, sorted.
	Names   []string
	Stats   map[string]*mesh.Stats
	Metrics []PairMetrics

	// Dists holds recomputed per-vertex errors keyed by pair label,
	// present only for pairs whose source mesh was found.
	Dists map[string][]float64
	// Runs is the tail of the run history, newest first.
	Runs []catalog.Record
}

// Builder renders reports for one configuration.
type Builder struct {
	cfg    *config.Config
	layout artifacts.Layout
	log    *zap.Logger
}

// New builds a report builder.
func New(cfg *config.Config) *Builder {
	return &Builder{
		cfg:    cfg,
		layout: artifacts.NewLayout(cfg.Output.Dir, cfg.Output.StatsDir),
		log:    logger.Named("report"),
	}
}

// Generate collects artifacts and writes the report, the comparison and
// the archive, returning the written paths.
func (b *Builder) Generate() ([]string, error) {
	data, err := b.Collect()
	if err != nil {
		return nil, err
	}
	b.attachDistributions(data)
	b.attachRecentRuns(data)

	reportPath, err := b.WriteReport(data)
	if err != nil {
		return nil, err
	}
	comparisonPath, err := b.WriteComparison(data)
	if err != nil {
		return nil, err
	}
	archivePath, err := b.Archive(reportPath, comparisonPath)
	if err != nil {
		return nil, err
	}

	paths := []string{reportPath, comparisonPath, archivePath}
	b.log.Info("report generated", zap.Strings("paths", paths))
	return paths, nil
}

// Collect scans the output and stats directories for artifact records.
func (b *Builder) Collect() (*Data, error) {
	pattern := filepath.Join(b.layout.OutDir, "*_metrics_*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning metrics artifacts: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no metrics artifacts under %s; run the pipeline first", b.layout.OutDir)
	}

	data := &Data{Stats: make(map[string]*mesh.Stats)}
	seen := make(map[string]bool)
	for _, path := range matches {
		meshName, s, ok := parseMetricsName(filepath.Base(path))
		if !ok {
			continue
		}
		r, err := artifacts.LoadMetrics(path)
		if err != nil {
			return nil, err
		}
		data.Metrics = append(data.Metrics, PairMetrics{Mesh: meshName, Strategy: s, Report: r})

		if !seen[meshName] {
			seen[meshName] = true
			data.Names = append(data.Names, meshName)
			if stats, err := artifacts.LoadStats(b.layout.StatsPath(meshName)); err == nil {
				data.Stats[meshName] = stats
			}
		}
	}

	sort.Strings(data.Names)
	sort.Slice(data.Metrics, func(i, j int) bool {
		if data.Metrics[i].Mesh != data.Metrics[j].Mesh {
			return data.Metrics[i].Mesh < data.Metrics[j].Mesh
		}
		return data.Metrics[i].Strategy < data.Metrics[j].Strategy
	})
	return data, nil
}

const recentRuns = 10

// attachRecentRuns pulls the newest history records into the report
// trailer. A missing or unreadable catalog just leaves the trailer out;
// the stat check keeps the report from creating an empty database.
func (b *Builder) attachRecentRuns(data *Data) {
	if _, err := os.Stat(b.cfg.Catalog.Path); err != nil {
		return
	}
	store, err := catalog.Open(b.cfg.Catalog.Path)
	if err != nil {
		b.log.Warn("run history unavailable", zap.Error(err))
		return
	}
	defer store.Close()

	records, err := store.List()
	if err != nil {
		b.log.Warn("run history unreadable", zap.Error(err))
		return
	}
	if len(records) > recentRuns {
		records = records[:recentRuns]
	}
	data.Runs = records
}

// parseMetricsName splits "<mesh>_metrics_<method>.json". Mesh names may
// themselves contain underscores, so the split anchors on the last
// "_metrics_" marker.
func parseMetricsName(base string) (string, quant.Strategy, bool) {
	trimmed := strings.TrimSuffix(base, ".json")
	if trimmed == base {
		return "", 0, false
	}
	idx := strings.LastIndex(trimmed, "_metrics_")
	if idx <= 0 {
		return "", 0, false
	}
	s, err := quant.ParseStrategy(trimmed[idx+len("_metrics_"):])
	if err != nil {
		return "", 0, false
	}
	return trimmed[:idx], s, true
}

// WriteReport renders REPORT.txt and returns its path.
func (b *Builder) WriteReport(data *Data) (string, error) {
	threshold := b.cfg.Report.ErrorThreshold
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "MESH QUANTIZATION REPORT\n")
	fmt.Fprintf(buf, "========================\n\n")
	fmt.Fprintf(buf, "generated:       %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(buf, "bins:            %d\n", b.cfg.Quantization.Bins)
	fmt.Fprintf(buf, "error threshold: %.1e (mean per-vertex)\n\n", threshold)

	fmt.Fprintf(buf, "MESHES\n------\n")
	for _, name := range data.Names {
		stats := data.Stats[name]
		if stats == nil {
			fmt.Fprintf(buf, "%s: no stats record\n", name)
			continue
		}
		fmt.Fprintf(buf, "%s: %d vertices, %d faces, extent (%.4g, %.4g, %.4g)\n",
			name, stats.VertexCount, stats.FaceCount,
			stats.Extent[0], stats.Extent[1], stats.Extent[2])
	}

	fmt.Fprintf(buf, "\nRESULTS\n-------\n")
	fmt.Fprintf(buf, "%-20s %-8s %-12s %-12s %-12s %-12s %s\n",
		"mesh", "method", "mse", "mae", "max", "mean", "verdict")
	passed := 0
	for _, pm := range data.Metrics {
		verdict := "PASS"
		if pm.Report.MeanError > threshold {
			verdict = "FAIL"
		} else {
			passed++
		}
		fmt.Fprintf(buf, "%-20s %-8s %-12.4e %-12.4e %-12.4e %-12.4e %s\n",
			pm.Mesh, pm.Strategy, pm.Report.MSETotal, pm.Report.MAETotal,
			pm.Report.MaxError, pm.Report.MeanError, verdict)
	}

	fmt.Fprintf(buf, "\nMSE BY PAIR\n-----------\n")
	writeBars(buf, data.Metrics)

	if len(data.Dists) > 0 {
		fmt.Fprintf(buf, "\nPER-VERTEX ERROR DISTRIBUTIONS\n------------------------------\n")
		for _, pm := range data.Metrics {
			values, ok := data.Dists[pairLabel(pm.Mesh, pm.Strategy)]
			if !ok {
				continue
			}
			fmt.Fprintf(buf, "%s\n", pairLabel(pm.Mesh, pm.Strategy))
			renderHistogram(buf, values)
		}
	}

	fmt.Fprintf(buf, "\nSUMMARY\n-------\n")
	fmt.Fprintf(buf, "%d meshes, %d pairs, %d within threshold\n",
		len(data.Names), len(data.Metrics), passed)
	if best, ok := bestStrategy(data.Metrics); ok {
		fmt.Fprintf(buf, "lower reconstruction error overall: %s\n", best)
	}

	if len(data.Runs) > 0 {
		fmt.Fprintf(buf, "\nRECENT RUNS\n-----------\n")
		for _, rec := range data.Runs {
			fmt.Fprintf(buf, "%s  %-20s %-8s bins=%-6d mse=%.4e\n",
				rec.Time.Format("2006-01-02 15:04:05"), rec.Mesh, rec.Strategy,
				rec.Bins, rec.MSETotal)
		}
	}

	path := filepath.Join(b.cfg.Report.Dir, ReportName)
	if err := writeText(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// writeBars renders a proportional ASCII bar per pair, scaled to the
// largest MSE in the batch.
func writeBars(buf *bytes.Buffer, metrics []PairMetrics) {
	var max float64
	labels := make([]string, len(metrics))
	width := 0
	for i, pm := range metrics {
		labels[i] = pairLabel(pm.Mesh, pm.Strategy)
		if len(labels[i]) > width {
			width = len(labels[i])
		}
		if pm.Report.MSETotal > max {
			max = pm.Report.MSETotal
		}
	}

	for i, pm := range metrics {
		n := 0
		if max > 0 {
			n = int(pm.Report.MSETotal / max * barWidth)
			if n == 0 && pm.Report.MSETotal > 0 {
				n = 1
			}
		}
		fmt.Fprintf(buf, "%-*s %s %.4e\n", width, labels[i], strings.Repeat("#", n), pm.Report.MSETotal)
	}
}

// bestStrategy picks the strategy with the lowest mean MSE across all
// pairs. Needs at least two strategies to be meaningful.
func bestStrategy(metrics []PairMetrics) (quant.Strategy, bool) {
	sums := make(map[quant.Strategy]float64)
	counts := make(map[quant.Strategy]int)
	for _, pm := range metrics {
		sums[pm.Strategy] += pm.Report.MSETotal
		counts[pm.Strategy]++
	}
	if len(sums) < 2 {
		return 0, false
	}

	best := quant.AxisRange
	bestMean := gomath.MaxFloat64
	for _, s := range quant.Strategies() {
		if counts[s] == 0 {
			continue
		}
		mean := sums[s] / float64(counts[s])
		if mean < bestMean {
			bestMean = mean
			best = s
		}
	}
	return best, true
}

// WriteComparison renders the per-mesh method comparison and returns its
// path.
func (b *Builder) WriteComparison(data *Data) (string, error) {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "QUANTIZATION METHOD COMPARISON\n")
	fmt.Fprintf(buf, "==============================\n")

	wins := make(map[quant.Strategy]int)
	for _, name := range data.Names {
		fmt.Fprintf(buf, "\n%s\n", name)

		var best quant.Strategy
		bestMSE := gomath.MaxFloat64
		found := 0
		for _, pm := range data.Metrics {
			if pm.Mesh != name {
				continue
			}
			found++
			fmt.Fprintf(buf, "  %-8s mse=%.4e mae=%.4e max=%.4e\n",
				pm.Strategy, pm.Report.MSETotal, pm.Report.MAETotal, pm.Report.MaxError)
			if pm.Report.MSETotal < bestMSE {
				bestMSE = pm.Report.MSETotal
				best = pm.Strategy
			}
		}
		if found > 1 {
			wins[best]++
			fmt.Fprintf(buf, "  -> lower mse: %s\n", best)
		}
	}

	if len(wins) > 0 {
		fmt.Fprintf(buf, "\nOVERALL\n")
		for _, s := range quant.Strategies() {
			if n, ok := wins[s]; ok {
				fmt.Fprintf(buf, "  %s wins %d of %d meshes\n", s, n, len(data.Names))
			}
		}
	}

	path := filepath.Join(b.cfg.Report.Dir, ComparisonName)
	if err := writeText(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func writeText(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
