package mesh

import (
	gomath "math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a mesh for catalog records and reports. Std is the
// population standard deviation per axis.
type Stats struct {
	VertexCount int        `json:"vertex_count"`
	FaceCount   int        `json:"face_count"`
	Min         [3]float64 `json:"min"`
	Max         [3]float64 `json:"max"`
	Mean        [3]float64 `json:"mean"`
	Std         [3]float64 `json:"std"`
	Extent      [3]float64 `json:"extent"`
}

// Stats computes the per-axis summary of m.
func (m *Mesh) Stats() *Stats {
	s := &Stats{
		VertexCount: len(m.Vertices),
		FaceCount:   len(m.Faces),
	}
	if len(m.Vertices) == 0 {
		return s
	}

	column := make([]float64, len(m.Vertices))
	for a := 0; a < 3; a++ {
		for i, vert := range m.Vertices {
			column[i] = vert[a]
		}
		s.Min[a] = floats.Min(column)
		s.Max[a] = floats.Max(column)
		s.Mean[a] = stat.Mean(column, nil)
		s.Std[a] = gomath.Sqrt(stat.MomentAbout(2, column, s.Mean[a], nil))
		s.Extent[a] = s.Max[a] - s.Min[a]
	}
	return s
}

// DegenerateAxes reports axes whose extent is zero. Such axes quantize to
// a single bin and reconstruct exactly, which usually signals a flat or
// collapsed mesh worth flagging.
func (s *Stats) DegenerateAxes() []int {
	var axes []int
	for a := 0; a < 3; a++ {
		if s.Extent[a] == 0 {
			axes = append(axes, a)
		}
	}
	return axes
}
