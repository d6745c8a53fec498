package quant

import (
	"fmt"

	"github.com/Faultbox/meshquant/pkg/math"
)

// ExtractParams computes the normalization parameters of v under s.
// AxisRange records the per-axis minimum and maximum. UnitSphere records
// the centroid and the bounding radius; when every vertex coincides with
// the centroid the radius is zero and gets recorded as 1, which keeps the
// forward map defined and sends all vertices to the zero vector.
func ExtractParams(v VertexSet, s Strategy) (Params, error) {
	if len(v) == 0 {
		return Params{}, ErrEmptyVertexSet
	}
	switch s {
	case AxisRange:
		p := Params{Strategy: AxisRange, Min: v[0], Max: v[0]}
		for _, vert := range v[1:] {
			for a := 0; a < 3; a++ {
				if vert[a] < p.Min[a] {
					p.Min[a] = vert[a]
				}
				if vert[a] > p.Max[a] {
					p.Max[a] = vert[a]
				}
			}
		}
		return p, nil
	case UnitSphere:
		var sum math.Vec3
		for _, vert := range v {
			sum = math.Add(sum, vert)
		}
		center := math.Scale(sum, 1/float64(len(v)))
		scale := 0.0
		for _, vert := range v {
			if d := math.Distance(vert, center); d > scale {
				scale = d
			}
		}
		if scale == 0 {
			scale = 1
		}
		return Params{Strategy: UnitSphere, Center: center, Scale: scale}, nil
	default:
		return Params{}, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(s))
	}
}

// Forward maps v into the normalized domain of p's strategy.
//
// AxisRange: n[a] = (v[a] - min[a]) / (max[a] - min[a]), inside [0,1].
// Axes with zero range map to 0; the inverse recovers their constant
// coordinate from min[a] alone.
//
// UnitSphere: n = (v - center) / scale, inside the closed unit ball.
func Forward(v VertexSet, p Params) (VertexSet, error) {
	out := make(VertexSet, len(v))
	switch p.Strategy {
	case AxisRange:
		rng := math.Sub(p.Max, p.Min)
		for i, vert := range v {
			for a := 0; a < 3; a++ {
				if rng[a] == 0 {
					out[i][a] = 0
					continue
				}
				out[i][a] = (vert[a] - p.Min[a]) / rng[a]
			}
		}
	case UnitSphere:
		for i, vert := range v {
			out[i] = math.Scale(math.Sub(vert, p.Center), 1/p.Scale)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(p.Strategy))
	}
	return out, nil
}

// Inverse maps normalized coordinates back into mesh space. In exact
// arithmetic Inverse(Forward(v, p), p) == v for the params extracted from
// v. On a zero-range axis the term n[a]*(max[a]-min[a]) vanishes, so the
// axis reconstructs min[a] exactly whatever the normalized value was.
func Inverse(n VertexSet, p Params) (VertexSet, error) {
	out := make(VertexSet, len(n))
	switch p.Strategy {
	case AxisRange:
		for i, vert := range n {
			for a := 0; a < 3; a++ {
				out[i][a] = vert[a]*(p.Max[a]-p.Min[a]) + p.Min[a]
			}
		}
	case UnitSphere:
		for i, vert := range n {
			out[i] = math.Add(math.Scale(vert, p.Scale), p.Center)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(p.Strategy))
	}
	return out, nil
}

// Normalize extracts parameters from v and applies the forward map in one
// step, returning both.
func Normalize(v VertexSet, s Strategy) (Params, VertexSet, error) {
	p, err := ExtractParams(v, s)
	if err != nil {
		return Params{}, nil, err
	}
	n, err := Forward(v, p)
	if err != nil {
		return Params{}, nil, err
	}
	return p, n, nil
}
