package runner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshquant/internal/artifacts"
	"github.com/Faultbox/meshquant/pkg/mesh"
	"github.com/Faultbox/meshquant/pkg/quant"
)

// Single-step entry points for the step-by-step commands. Each one reads
// or writes the same artifact layout the batch run uses, so steps can be
// mixed freely with full runs.

// StatsFile loads one mesh, writes its stats record and returns it.
func (r *Runner) StatsFile(path string) (*mesh.Stats, error) {
	m, err := mesh.Load(path)
	if err != nil {
		return nil, err
	}
	if err := r.layout.EnsureDirs(); err != nil {
		return nil, err
	}
	if err := r.saveStats(m); err != nil {
		return nil, err
	}
	return m.Stats(), nil
}

// QuantizeFile runs the pipeline on a single mesh file and writes the
// full artifact set, returning the outcome.
func (r *Runner) QuantizeFile(path string, s quant.Strategy) (PairOutcome, error) {
	m, err := mesh.Load(path)
	if err != nil {
		return PairOutcome{}, err
	}
	if err := r.layout.EnsureDirs(); err != nil {
		return PairOutcome{}, err
	}
	if err := r.saveStats(m); err != nil {
		return PairOutcome{}, err
	}

	out := r.runPair(m, s)
	if out.Err != nil {
		return out, out.Err
	}
	return out, nil
}

// ReconstructFromArtifacts rebuilds mesh-space vertices from the stored
// params and codes of an earlier run, without the original mesh. When
// srcMeshPath is given its connectivity carries over to the output;
// otherwise the result is a point cloud. Returns the written path.
func (r *Runner) ReconstructFromArtifacts(meshName string, s quant.Strategy, srcMeshPath string) (string, error) {
	params, err := artifacts.LoadParams(r.layout.ParamsPath(meshName, s))
	if err != nil {
		return "", err
	}
	if params.Strategy != s {
		return "", fmt.Errorf("params record is for %q, not %q", params.Strategy, s)
	}
	codes, bins, err := artifacts.LoadCodes(r.layout.CodesPath(meshName, s))
	if err != nil {
		return "", err
	}

	vertices, err := quant.Reconstruct(codes, params, bins)
	if err != nil {
		return "", err
	}

	var faces [][3]int
	if srcMeshPath != "" {
		src, err := mesh.Load(srcMeshPath)
		if err != nil {
			return "", err
		}
		if len(src.Vertices) != len(vertices) {
			return "", fmt.Errorf("%w: source mesh has %d vertices, codes have %d",
				quant.ErrShapeMismatch, len(src.Vertices), len(vertices))
		}
		faces = src.Faces
	}

	outPath := r.layout.ReconstructedPath(meshName, s)
	if err := artifacts.SaveReconstructed(outPath, vertices, faces); err != nil {
		return "", err
	}

	r.log.Info("mesh reconstructed",
		zap.String("mesh", meshName),
		zap.Stringer("method", s),
		zap.Int("bins", bins),
		zap.Int("vertices", len(vertices)))
	return outPath, nil
}

// MeasureArtifacts compares an original mesh file against the stored
// reconstruction for one strategy, writes the metrics record and returns
// the report.
func (r *Runner) MeasureArtifacts(originalPath string, s quant.Strategy) (*quant.ErrorReport, error) {
	original, err := mesh.Load(originalPath)
	if err != nil {
		return nil, err
	}
	reconstructed, err := mesh.Load(r.layout.ReconstructedPath(original.Name, s))
	if err != nil {
		return nil, err
	}

	report, err := quant.ComputeErrors(quant.VertexSet(original.Vertices), quant.VertexSet(reconstructed.Vertices))
	if err != nil {
		return nil, err
	}
	if err := artifacts.SaveMetrics(r.layout.MetricsPath(original.Name, s), report); err != nil {
		return nil, err
	}

	r.log.Info("metrics computed",
		zap.String("mesh", original.Name),
		zap.Stringer("method", s),
		zap.Float64("mse", report.MSETotal),
		zap.Float64("max_error", report.MaxError))
	return report, nil
}
