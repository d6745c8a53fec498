package quant

import (
	"fmt"
	gomath "math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrorReport summarizes the discrepancy between an original vertex set
// and its reconstruction. Totals average over all vertex components,
// per-axis values over one component each. The scalar per-vertex error is
// the Euclidean distance between paired vertices.
type ErrorReport struct {
	MSETotal   float64    `json:"mse_total"`
	MAETotal   float64    `json:"mae_total"`
	MSEPerAxis [3]float64 `json:"mse_per_axis"`
	MAEPerAxis [3]float64 `json:"mae_per_axis"`

	MaxError  float64 `json:"max_error"`
	MinError  float64 `json:"min_error"`
	MeanError float64 `json:"mean_error"`
	StdError  float64 `json:"std_error"`

	// PerVertex holds the full Euclidean error distribution, kept in
	// memory for histograms but left out of serialized reports.
	PerVertex []float64 `json:"-"`
}

// ComputeErrors compares two vertex sets of equal length. StdError is the
// population standard deviation of the per-vertex Euclidean errors. The
// result is a pure function of the inputs; vertex order is significant
// because vertices pair by index.
func ComputeErrors(original, reconstructed VertexSet) (*ErrorReport, error) {
	if len(original) == 0 {
		return nil, ErrEmptyVertexSet
	}
	if len(original) != len(reconstructed) {
		return nil, fmt.Errorf("%w: %d original, %d reconstructed",
			ErrShapeMismatch, len(original), len(reconstructed))
	}

	n := float64(len(original))
	r := &ErrorReport{PerVertex: make([]float64, len(original))}
	for i := range original {
		var sq float64
		for a := 0; a < 3; a++ {
			diff := original[i][a] - reconstructed[i][a]
			r.MSEPerAxis[a] += diff * diff
			r.MAEPerAxis[a] += gomath.Abs(diff)
			sq += diff * diff
		}
		r.PerVertex[i] = gomath.Sqrt(sq)
	}
	for a := 0; a < 3; a++ {
		r.MSEPerAxis[a] /= n
		r.MAEPerAxis[a] /= n
		r.MSETotal += r.MSEPerAxis[a]
		r.MAETotal += r.MAEPerAxis[a]
	}
	r.MSETotal /= 3
	r.MAETotal /= 3

	r.MinError = floats.Min(r.PerVertex)
	r.MaxError = floats.Max(r.PerVertex)
	r.MeanError = stat.Mean(r.PerVertex, nil)
	r.StdError = gomath.Sqrt(stat.MomentAbout(2, r.PerVertex, r.MeanError, nil))
	return r, nil
}
