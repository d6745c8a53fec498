package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/Faultbox/meshquant/pkg/mesh"
	"github.com/Faultbox/meshquant/pkg/quant"
)

const histBuckets = 10

// attachDistributions recomputes per-vertex errors for every pair whose
// original mesh is still present in the input directory. The metrics
// records carry only aggregates, so distributions come from comparing
// the original against the reconstructed artifact. Pairs without a
// source mesh are simply left out.
func (b *Builder) attachDistributions(data *Data) {
	data.Dists = make(map[string][]float64)

	for _, name := range data.Names {
		srcPath, ok := findSourceMesh(b.cfg.Input.MeshDir, name)
		if !ok {
			continue
		}
		original, err := mesh.Load(srcPath)
		if err != nil {
			b.log.Warn("skipping distribution, source mesh unreadable",
				zap.String("path", srcPath), zap.Error(err))
			continue
		}

		for _, pm := range data.Metrics {
			if pm.Mesh != name {
				continue
			}
			recon, err := mesh.Load(b.layout.ReconstructedPath(name, pm.Strategy))
			if err != nil {
				continue
			}
			r, err := quant.ComputeErrors(original.Vertices, recon.Vertices)
			if err != nil {
				b.log.Warn("skipping distribution, comparison failed",
					zap.String("mesh", name), zap.Stringer("method", pm.Strategy), zap.Error(err))
				continue
			}
			data.Dists[pairLabel(name, pm.Strategy)] = r.PerVertex
		}
	}
}

func findSourceMesh(dir, name string) (string, bool) {
	for _, ext := range []string{".obj", ".ply"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func pairLabel(meshName string, s quant.Strategy) string {
	return fmt.Sprintf("%s/%s", meshName, s)
}

// renderHistogram buckets values into histBuckets equal-width buckets
// and renders one proportional bar per bucket.
func renderHistogram(buf *bytes.Buffer, values []float64) {
	if len(values) == 0 {
		return
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		fmt.Fprintf(buf, "  all %d vertices at error %.4e\n", len(values), lo)
		return
	}

	counts := make([]int, histBuckets)
	width := (hi - lo) / histBuckets
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= histBuckets {
			i = histBuckets - 1
		}
		counts[i]++
	}

	peak := 0
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	for i, c := range counts {
		n := 0
		if peak > 0 {
			n = c * barWidth / peak
			if n == 0 && c > 0 {
				n = 1
			}
		}
		fmt.Fprintf(buf, "  [%.3e, %.3e) %-*s %d\n",
			lo+float64(i)*width, lo+float64(i+1)*width,
			barWidth, strings.Repeat("#", n), c)
	}
}
