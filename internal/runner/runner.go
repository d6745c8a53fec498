// Package runner executes the quantization pipeline over whole mesh
// directories and persists every artifact the stages produce. Faults in
// one mesh/strategy pair never abort the rest of a batch.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshquant/internal/artifacts"
	"github.com/Faultbox/meshquant/internal/catalog"
	"github.com/Faultbox/meshquant/internal/config"
	"github.com/Faultbox/meshquant/internal/logger"
	"github.com/Faultbox/meshquant/pkg/mesh"
	"github.com/Faultbox/meshquant/pkg/quant"
)

// PairOutcome captures one mesh/strategy pair of a batch. Err is the
// pair's own fault and leaves the other pairs untouched.
type PairOutcome struct {
	Mesh     string
	Strategy quant.Strategy
	Vertices int
	Report   *quant.ErrorReport
	Elapsed  time.Duration
	Err      error
}

// Skipped names a mesh file the batch could not load.
type Skipped struct {
	Path string
	Err  error
}

// Summary aggregates a whole batch.
type Summary struct {
	Outcomes []PairOutcome
	Skipped  []Skipped
	Bins     int
	Started  time.Time
	Elapsed  time.Duration
}

// Failed counts pair faults, not counting skipped files.
func (s *Summary) Failed() int {
	n := 0
	for _, out := range s.Outcomes {
		if out.Err != nil {
			n++
		}
	}
	return n
}

// Runner drives the pipeline according to one loaded configuration.
type Runner struct {
	cfg    *config.Config
	layout artifacts.Layout
	store  *catalog.Store
	log    *zap.Logger
}

// New builds a runner. The catalog store may be nil to skip run history.
func New(cfg *config.Config, store *catalog.Store) *Runner {
	return &Runner{
		cfg:    cfg,
		layout: artifacts.NewLayout(cfg.Output.Dir, cfg.Output.StatsDir),
		store:  store,
		log:    logger.Named("runner"),
	}
}

// RunAll loads every mesh under the configured directory and runs every
// configured strategy against each one, bounded by the worker limit.
// Unreadable files are recorded and skipped; per-pair faults land in the
// summary. The returned error is reserved for configuration and
// environment problems that invalidate the whole batch.
func (r *Runner) RunAll(ctx context.Context) (*Summary, error) {
	strategies, err := r.cfg.Strategies()
	if err != nil {
		return nil, err
	}
	// Surface a bad bin count here, before any mesh is read.
	if _, err := quant.NewQuantizer(r.cfg.Quantization.Bins, quant.DomainUnit); err != nil {
		return nil, err
	}

	paths, err := mesh.ListFiles(r.cfg.Input.MeshDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no mesh files in %s", r.cfg.Input.MeshDir)
	}
	if err := r.layout.EnsureDirs(); err != nil {
		return nil, err
	}

	summary := &Summary{Bins: r.cfg.Quantization.Bins, Started: time.Now()}

	var meshes []*mesh.Mesh
	for _, path := range paths {
		m, err := mesh.Load(path)
		if err != nil {
			r.log.Error("skipping unreadable mesh", zap.String("path", path), zap.Error(err))
			summary.Skipped = append(summary.Skipped, Skipped{Path: path, Err: err})
			continue
		}
		if err := r.saveStats(m); err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}

	type pair struct {
		m *mesh.Mesh
		s quant.Strategy
	}
	var pairs []pair
	for _, m := range meshes {
		for _, s := range strategies {
			pairs = append(pairs, pair{m, s})
		}
	}

	outcomes := make([]PairOutcome, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.runPair(p.m, p.s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.Outcomes = outcomes
	summary.Elapsed = time.Since(summary.Started)
	r.log.Info("batch finished",
		zap.Int("meshes", len(meshes)),
		zap.Int("pairs", len(pairs)),
		zap.Int("failed", summary.Failed()),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// workers resolves the configured worker count, defaulting to one per CPU.
func (r *Runner) workers() int {
	if r.cfg.Run.Workers > 0 {
		return r.cfg.Run.Workers
	}
	return runtime.NumCPU()
}

// saveStats writes the per-mesh stats record and warns about degenerate
// geometry. Degenerate input is recoverable and never fails a run.
func (r *Runner) saveStats(m *mesh.Mesh) error {
	stats := m.Stats()

	if deg := stats.DegenerateAxes(); len(deg) == 3 {
		r.log.Warn("mesh collapses to a single point", zap.String("mesh", m.Name))
	} else {
		for _, axis := range deg {
			r.log.Warn("mesh axis has zero extent",
				zap.String("mesh", m.Name), zap.String("axis", axisName(axis)))
		}
	}
	return artifacts.SaveStats(r.layout.StatsPath(m.Name), stats)
}

// runPair executes one mesh/strategy pair end to end: pipeline round
// trip, metrics, artifacts, catalog record.
func (r *Runner) runPair(m *mesh.Mesh, s quant.Strategy) PairOutcome {
	out := PairOutcome{Mesh: m.Name, Strategy: s, Vertices: len(m.Vertices)}
	start := time.Now()

	res, err := quant.Run(quant.VertexSet(m.Vertices), s, r.cfg.Quantization.Bins)
	if err != nil {
		return r.fail(out, "pipeline failed", err)
	}
	report, err := quant.ComputeErrors(quant.VertexSet(m.Vertices), res.Reconstructed)
	if err != nil {
		return r.fail(out, "metrics failed", err)
	}
	if err := r.persist(m, s, res, report); err != nil {
		return r.fail(out, "persisting artifacts failed", err)
	}

	out.Report = report
	out.Elapsed = time.Since(start)

	if r.store != nil {
		_, err := r.store.Append(catalog.Record{
			Mesh:      m.Name,
			Strategy:  s.String(),
			Bins:      r.cfg.Quantization.Bins,
			Vertices:  len(m.Vertices),
			MSETotal:  report.MSETotal,
			MAETotal:  report.MAETotal,
			MaxError:  report.MaxError,
			MeanError: report.MeanError,
		})
		if err != nil {
			// History is best effort; the artifacts on disk are the
			// source of truth.
			r.log.Warn("catalog append failed", zap.String("mesh", m.Name), zap.Error(err))
		}
	}

	r.log.Info("mesh quantized",
		zap.String("mesh", m.Name),
		zap.Stringer("method", s),
		zap.Int("bins", r.cfg.Quantization.Bins),
		zap.Int("vertices", len(m.Vertices)),
		zap.Float64("mse", report.MSETotal),
		zap.Float64("max_error", report.MaxError),
		zap.Duration("elapsed", out.Elapsed))
	return out
}

func (r *Runner) fail(out PairOutcome, msg string, err error) PairOutcome {
	out.Err = err
	r.log.Error(msg,
		zap.String("mesh", out.Mesh),
		zap.Stringer("method", out.Strategy),
		zap.Error(err))
	return out
}

// persist writes the full artifact set for one successful pair.
func (r *Runner) persist(m *mesh.Mesh, s quant.Strategy, res *quant.Result, report *quant.ErrorReport) error {
	bins := r.cfg.Quantization.Bins
	if err := artifacts.SaveParams(r.layout.ParamsPath(m.Name, s), res.Params); err != nil {
		return err
	}
	if err := artifacts.SaveCodes(r.layout.CodesPath(m.Name, s), res.Codes, bins); err != nil {
		return err
	}
	if err := artifacts.SaveSample(r.layout.SamplePath(m.Name, s), res.Codes, bins); err != nil {
		return err
	}
	if err := artifacts.SaveReconstructed(r.layout.ReconstructedPath(m.Name, s), res.Reconstructed, m.Faces); err != nil {
		return err
	}
	return artifacts.SaveMetrics(r.layout.MetricsPath(m.Name, s), report)
}

func axisName(a int) string {
	return [...]string{"x", "y", "z"}[a]
}
