package report

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/Faultbox/meshquant/internal/artifacts"
	"github.com/Faultbox/meshquant/internal/catalog"
	"github.com/Faultbox/meshquant/internal/config"
	"github.com/Faultbox/meshquant/pkg/mesh"
	"github.com/Faultbox/meshquant/pkg/quant"
)

func testBuilder(t *testing.T) *Builder {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Input.MeshDir = filepath.Join(base, "meshes")
	cfg.Output.Dir = filepath.Join(base, "output")
	cfg.Output.StatsDir = filepath.Join(base, "stats")
	cfg.Report.Dir = filepath.Join(base, "report")
	cfg.Catalog.Path = filepath.Join(base, "runs.db")

	b := New(cfg)
	if err := b.layout.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}
	if err := os.MkdirAll(cfg.Input.MeshDir, 0755); err != nil {
		t.Fatalf("creating mesh dir: %v", err)
	}
	return b
}

func seedMetrics(t *testing.T, b *Builder, meshName string, s quant.Strategy, mse, mean float64) {
	t.Helper()

	r := &quant.ErrorReport{
		MSETotal:   mse,
		MAETotal:   mse / 2,
		MSEPerAxis: [3]float64{mse, mse, mse},
		MAEPerAxis: [3]float64{mse / 2, mse / 2, mse / 2},
		MaxError:   mean * 3,
		MeanError:  mean,
		StdError:   mean / 4,
	}
	if err := artifacts.SaveMetrics(b.layout.MetricsPath(meshName, s), r); err != nil {
		t.Fatalf("SaveMetrics(%s, %s) error = %v", meshName, s, err)
	}
}

func seedStats(t *testing.T, b *Builder, meshName string, vertices int) {
	t.Helper()

	stats := &mesh.Stats{
		VertexCount: vertices,
		FaceCount:   vertices / 2,
		Max:         [3]float64{1, 2, 3},
		Extent:      [3]float64{1, 2, 3},
	}
	if err := artifacts.SaveStats(b.layout.StatsPath(meshName), stats); err != nil {
		t.Fatalf("SaveStats(%s) error = %v", meshName, err)
	}
}

func TestCollectFindsPairs(t *testing.T) {
	b := testBuilder(t)
	seedMetrics(t, b, "teapot", quant.UnitSphere, 2e-8, 1e-4)
	seedMetrics(t, b, "bunny", quant.AxisRange, 1e-8, 1e-4)
	seedMetrics(t, b, "bunny", quant.UnitSphere, 4e-8, 2e-4)
	seedStats(t, b, "bunny", 100)

	data, err := b.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got := data.Names; !sort.StringsAreSorted(got) || len(got) != 2 {
		t.Errorf("Names = %v, want two sorted names", got)
	}
	if len(data.Metrics) != 3 {
		t.Fatalf("len(Metrics) = %d, want 3", len(data.Metrics))
	}
	if data.Metrics[0].Mesh != "bunny" || data.Metrics[0].Strategy != quant.AxisRange {
		t.Errorf("Metrics[0] = %s/%s, want bunny/minmax", data.Metrics[0].Mesh, data.Metrics[0].Strategy)
	}
	if data.Metrics[2].Mesh != "teapot" {
		t.Errorf("Metrics[2].Mesh = %q, want teapot", data.Metrics[2].Mesh)
	}
	if data.Stats["bunny"] == nil || data.Stats["bunny"].VertexCount != 100 {
		t.Errorf("Stats[bunny] = %+v, want vertex count 100", data.Stats["bunny"])
	}
	if data.Stats["teapot"] != nil {
		t.Errorf("Stats[teapot] = %+v, want nil for missing record", data.Stats["teapot"])
	}
}

func TestCollectWithoutArtifacts(t *testing.T) {
	b := testBuilder(t)

	if _, err := b.Collect(); err == nil {
		t.Fatal("Collect() on empty output directory did not fail")
	}
}

func TestParseMetricsName(t *testing.T) {
	tests := []struct {
		base     string
		wantMesh string
		wantS    quant.Strategy
		wantOK   bool
	}{
		{"bunny_metrics_minmax.json", "bunny", quant.AxisRange, true},
		{"bunny_metrics_sphere.json", "bunny", quant.UnitSphere, true},
		{"my_test_mesh_metrics_sphere.json", "my_test_mesh", quant.UnitSphere, true},
		{"bunny_metrics_zscore.json", "", 0, false},
		{"bunny_stats.json", "", 0, false},
		{"_metrics_minmax.json", "", 0, false},
		{"bunny_metrics_minmax.qvc", "", 0, false},
	}
	for _, tt := range tests {
		meshName, s, ok := parseMetricsName(tt.base)
		if ok != tt.wantOK {
			t.Errorf("parseMetricsName(%q) ok = %v, want %v", tt.base, ok, tt.wantOK)
			continue
		}
		if ok && (meshName != tt.wantMesh || s != tt.wantS) {
			t.Errorf("parseMetricsName(%q) = %q/%s, want %q/%s",
				tt.base, meshName, s, tt.wantMesh, tt.wantS)
		}
	}
}

func TestWriteReportVerdicts(t *testing.T) {
	b := testBuilder(t)
	seedMetrics(t, b, "bunny", quant.AxisRange, 1e-8, 1e-5)
	seedMetrics(t, b, "bunny", quant.UnitSphere, 4e-8, 5e-3)
	seedStats(t, b, "bunny", 42)

	data, err := b.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	path, err := b.WriteReport(data)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	text := string(raw)

	for _, want := range []string{
		"bunny: 42 vertices",
		"PASS",
		"FAIL",
		"1 within threshold",
		strings.Repeat("#", barWidth),
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestWriteComparisonPicksWinner(t *testing.T) {
	b := testBuilder(t)
	seedMetrics(t, b, "bunny", quant.AxisRange, 1e-8, 1e-5)
	seedMetrics(t, b, "bunny", quant.UnitSphere, 4e-8, 2e-5)

	data, err := b.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	path, err := b.WriteComparison(data)
	if err != nil {
		t.Fatalf("WriteComparison() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading comparison: %v", err)
	}
	text := string(raw)

	if !strings.Contains(text, "-> lower mse: minmax") {
		t.Errorf("comparison does not pick minmax:\n%s", text)
	}
	if !strings.Contains(text, "minmax wins 1 of 1 meshes") {
		t.Errorf("comparison missing overall tally:\n%s", text)
	}
}

func TestComparisonSkipsSingleMethodMeshes(t *testing.T) {
	b := testBuilder(t)
	seedMetrics(t, b, "bunny", quant.AxisRange, 1e-8, 1e-5)

	data, err := b.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	path, err := b.WriteComparison(data)
	if err != nil {
		t.Fatalf("WriteComparison() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading comparison: %v", err)
	}
	if strings.Contains(string(raw), "OVERALL") {
		t.Errorf("single-method comparison should not declare a winner:\n%s", raw)
	}
}

func TestRenderHistogram(t *testing.T) {
	buf := new(bytes.Buffer)
	renderHistogram(buf, []float64{0, 0, 0, 1})
	text := buf.String()

	if got := strings.Count(text, "\n"); got != histBuckets {
		t.Errorf("histogram has %d lines, want %d:\n%s", got, histBuckets, text)
	}
	if !strings.Contains(text, strings.Repeat("#", barWidth)) {
		t.Errorf("peak bucket not scaled to full width:\n%s", text)
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if !strings.HasSuffix(lines[len(lines)-1], " 1") {
		t.Errorf("last bucket should hold the single max value:\n%s", text)
	}
}

func TestRenderHistogramUniformValues(t *testing.T) {
	buf := new(bytes.Buffer)
	renderHistogram(buf, []float64{0.5, 0.5, 0.5})

	if !strings.Contains(buf.String(), "all 3 vertices at error") {
		t.Errorf("uniform distribution not collapsed to one line: %q", buf.String())
	}
}

func TestReportIncludesDistributions(t *testing.T) {
	b := testBuilder(t)

	objPath := filepath.Join(b.cfg.Input.MeshDir, "tri.obj")
	obj := "v 0 0 0\nv 1 2 2\nv 2 4 4\n"
	if err := os.WriteFile(objPath, []byte(obj), 0644); err != nil {
		t.Fatalf("writing source mesh: %v", err)
	}

	recon := quant.VertexSet{{0.1, 0, 0}, {1, 2, 2.1}, {2, 3.9, 4}}
	reconPath := b.layout.ReconstructedPath("tri", quant.AxisRange)
	if err := artifacts.SaveReconstructed(reconPath, recon, nil); err != nil {
		t.Fatalf("writing reconstructed mesh: %v", err)
	}
	seedMetrics(t, b, "tri", quant.AxisRange, 1e-8, 1e-4)

	data, err := b.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	b.attachDistributions(data)

	values, ok := data.Dists["tri/minmax"]
	if !ok || len(values) != 3 {
		t.Fatalf("Dists[tri/minmax] = %v, want three per-vertex errors", values)
	}

	path, err := b.WriteReport(data)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(raw), "PER-VERTEX ERROR DISTRIBUTIONS") {
		t.Errorf("report missing distribution section:\n%s", raw)
	}
}

func TestDistributionsSkipMissingSource(t *testing.T) {
	b := testBuilder(t)
	seedMetrics(t, b, "bunny", quant.AxisRange, 1e-8, 1e-4)

	data, err := b.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	b.attachDistributions(data)

	if len(data.Dists) != 0 {
		t.Errorf("Dists = %v, want none without a source mesh", data.Dists)
	}
}

func TestReportIncludesRecentRuns(t *testing.T) {
	b := testBuilder(t)
	seedMetrics(t, b, "bunny", quant.AxisRange, 1e-8, 1e-4)

	store, err := catalog.Open(b.cfg.Catalog.Path)
	if err != nil {
		t.Fatalf("opening catalog: %v", err)
	}
	for _, name := range []string{"bunny", "teapot"} {
		if _, err := store.Append(catalog.Record{Mesh: name, Strategy: "minmax", Bins: 1024}); err != nil {
			t.Fatalf("appending record: %v", err)
		}
	}
	store.Close()

	data, err := b.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	b.attachRecentRuns(data)
	if len(data.Runs) != 2 || data.Runs[0].Mesh != "teapot" {
		t.Fatalf("Runs = %v, want two records newest first", data.Runs)
	}

	path, err := b.WriteReport(data)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(raw), "RECENT RUNS") {
		t.Errorf("report missing run trailer:\n%s", raw)
	}
}

func TestGenerateWritesArchive(t *testing.T) {
	b := testBuilder(t)
	seedMetrics(t, b, "bunny", quant.AxisRange, 1e-8, 1e-5)
	seedMetrics(t, b, "bunny", quant.UnitSphere, 4e-8, 2e-5)
	seedStats(t, b, "bunny", 42)

	paths, err := b.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("Generate() returned %d paths, want 3", len(paths))
	}

	zr, err := zip.OpenReader(paths[2])
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer zr.Close()

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"output/bunny_metrics_minmax.json",
		"output/bunny_metrics_sphere.json",
		"stats/bunny_stats.json",
		ReportName,
		ComparisonName,
	} {
		if !names[want] {
			t.Errorf("archive missing %s, got %v", want, names)
		}
	}
}

func TestArchiveToleratesMissingStatsDir(t *testing.T) {
	b := testBuilder(t)
	seedMetrics(t, b, "bunny", quant.AxisRange, 1e-8, 1e-5)
	if err := os.RemoveAll(b.layout.StatsDir); err != nil {
		t.Fatalf("removing stats dir: %v", err)
	}

	if _, err := b.Archive(); err != nil {
		t.Fatalf("Archive() with missing stats dir error = %v", err)
	}
}
