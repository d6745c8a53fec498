// Package artifacts lays out and persists the files a pipeline run
// produces: params records, quantized code containers, reconstructed
// meshes, metrics and mesh stats.
package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/meshquant/pkg/formats"
	"github.com/Faultbox/meshquant/pkg/mesh"
	"github.com/Faultbox/meshquant/pkg/quant"
)

// SampleSize is how many leading code triples the human-readable sample
// file carries.
const SampleSize = 10

// Layout derives artifact paths from a mesh name and strategy. All runs
// for one output directory share a single flat naming scheme, so a later
// stage can locate an earlier stage's files without extra bookkeeping.
type Layout struct {
	OutDir   string
	StatsDir string
}

// NewLayout builds a layout over the two destination directories.
func NewLayout(outDir, statsDir string) Layout {
	return Layout{OutDir: outDir, StatsDir: statsDir}
}

// EnsureDirs creates the destination directories if needed.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{l.OutDir, l.StatsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// ParamsPath returns the params record path for one mesh/strategy pair.
func (l Layout) ParamsPath(meshName string, s quant.Strategy) string {
	return filepath.Join(l.OutDir, fmt.Sprintf("%s_params_%s.json", meshName, s))
}

// CodesPath returns the quantized code container path.
func (l Layout) CodesPath(meshName string, s quant.Strategy) string {
	return filepath.Join(l.OutDir, fmt.Sprintf("%s_quantized_%s.qvc", meshName, s))
}

// SamplePath returns the human-readable code sample path.
func (l Layout) SamplePath(meshName string, s quant.Strategy) string {
	return filepath.Join(l.OutDir, fmt.Sprintf("%s_quantized_%s_sample.txt", meshName, s))
}

// ReconstructedPath returns the reconstructed mesh path.
func (l Layout) ReconstructedPath(meshName string, s quant.Strategy) string {
	return filepath.Join(l.OutDir, fmt.Sprintf("%s_reconstructed_%s.ply", meshName, s))
}

// MetricsPath returns the metrics record path.
func (l Layout) MetricsPath(meshName string, s quant.Strategy) string {
	return filepath.Join(l.OutDir, fmt.Sprintf("%s_metrics_%s.json", meshName, s))
}

// StatsPath returns the mesh stats record path.
func (l Layout) StatsPath(meshName string) string {
	return filepath.Join(l.StatsDir, fmt.Sprintf("%s_stats.json", meshName))
}

// SaveParams writes a params record as indented JSON.
func SaveParams(path string, p quant.Params) error {
	return writeJSON(path, p)
}

// LoadParams reads a params record back.
func LoadParams(path string) (quant.Params, error) {
	var p quant.Params
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading params: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing params %s: %w", path, err)
	}
	return p, nil
}

// SaveCodes writes quantized codes into a QVC container.
func SaveCodes(path string, codes quant.QuantizedSet, bins int) error {
	qvc := &formats.QVC{Bins: bins, Codes: codes}
	return qvc.WriteFile(path)
}

// LoadCodes reads a QVC container back as codes plus bin count.
func LoadCodes(path string) (quant.QuantizedSet, int, error) {
	qvc, err := formats.ParseQVCFile(path)
	if err != nil {
		return nil, 0, err
	}
	return quant.QuantizedSet(qvc.Codes), qvc.Bins, nil
}

// SaveSample writes the first SampleSize code triples as plain text, one
// triple per line, for eyeballing an encoder's output.
func SaveSample(path string, codes quant.QuantizedSet, bins int) error {
	n := len(codes)
	if n > SampleSize {
		n = SampleSize
	}

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "# first %d of %d quantized triples, %d bins\n", n, len(codes), bins)
	for _, c := range codes[:n] {
		fmt.Fprintf(buf, "%d %d %d\n", c[0], c[1], c[2])
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing sample: %w", err)
	}
	return nil
}

// SaveReconstructed writes reconstructed vertices as an ASCII PLY,
// carrying over the source mesh connectivity.
func SaveReconstructed(path string, vertices quant.VertexSet, faces [][3]int) error {
	ply := &formats.PLY{Vertices: vertices, Faces: faces}
	return ply.WriteFile(path)
}

// SaveMetrics writes an error report as indented JSON. The per-vertex
// distribution stays out of the record.
func SaveMetrics(path string, r *quant.ErrorReport) error {
	return writeJSON(path, r)
}

// LoadMetrics reads an error report back.
func LoadMetrics(path string) (*quant.ErrorReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metrics: %w", err)
	}
	r := &quant.ErrorReport{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing metrics %s: %w", path, err)
	}
	return r, nil
}

// SaveStats writes a mesh stats record as indented JSON.
func SaveStats(path string, s *mesh.Stats) error {
	return writeJSON(path, s)
}

// LoadStats reads a mesh stats record back.
func LoadStats(path string) (*mesh.Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	s := &mesh.Stats{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing stats %s: %w", path, err)
	}
	return s, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
