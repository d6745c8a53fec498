package quant

import (
	"fmt"
	gomath "math"
)

const (
	// DefaultBins is the default number of quantization bins per axis.
	DefaultBins = 1024

	// MaxBins is the largest supported bin count. Codes are stored as
	// uint16, so the largest code MaxBins-1 must fit in 16 bits.
	MaxBins = 1 << 16
)

// Domain identifies the per-component range of the normalized coordinates
// a quantizer consumes.
type Domain uint8

const (
	// DomainUnit is [0,1], produced by AxisRange normalization.
	DomainUnit Domain = iota

	// DomainSigned is [-1,1], produced by UnitSphere normalization. The
	// quantizer remaps it through u = (x+1)/2 before encoding; the remap
	// belongs to discretization, not to normalization.
	DomainSigned
)

// QuantizedSet is an ordered sequence of 3-component integer codes, one
// triple per source vertex. Every component lies in [0, bins-1].
type QuantizedSet [][3]uint16

// Validate checks the code-range invariant against the given bin count.
// A violation means an encoding defect upstream, not bad input data.
func (q QuantizedSet) Validate(bins int) error {
	for i, c := range q {
		for a := 0; a < 3; a++ {
			if int(c[a]) >= bins {
				return fmt.Errorf("%w: vertex %d axis %d has code %d with %d bins",
					ErrCodeOutOfRange, i, a, c[a], bins)
			}
		}
	}
	return nil
}

// Quantizer maps normalized coordinates to integer bin codes and back.
// It is a pure function of its configuration and holds no per-call state,
// so a single Quantizer may be shared across goroutines.
type Quantizer struct {
	bins   int
	domain Domain
}

// NewQuantizer builds a quantizer with the given bin count and input
// domain. A bin count outside [2, MaxBins] is rejected here, before any
// vertex is touched.
func NewQuantizer(bins int, domain Domain) (*Quantizer, error) {
	if bins < 2 || bins > MaxBins {
		return nil, fmt.Errorf("%w: got %d", ErrBinsOutOfRange, bins)
	}
	return &Quantizer{bins: bins, domain: domain}, nil
}

// Bins returns the configured bin count.
func (q *Quantizer) Bins() int { return q.bins }

// Encode quantizes every component of every vertex. A coordinate u in
// [0,1] becomes floor(u*(bins-1)) clamped into [0, bins-1]; the clamp
// keeps the boundary value u == 1.0 on the top code instead of one past
// it. DomainSigned input is remapped into [0,1] first. All codes are in
// range by construction.
func (q *Quantizer) Encode(n VertexSet) QuantizedSet {
	top := float64(q.bins - 1)
	out := make(QuantizedSet, len(n))
	for i, vert := range n {
		for a := 0; a < 3; a++ {
			u := vert[a]
			if q.domain == DomainSigned {
				u = (u + 1) / 2
			}
			code := gomath.Floor(u * top)
			if code < 0 {
				code = 0
			}
			if code > top {
				code = top
			}
			out[i][a] = uint16(code)
		}
	}
	return out
}

// Decode maps codes back to normalized coordinates: u = code/(bins-1),
// the lower edge of the bin, matching the floor used by Encode.
// DomainSigned output is remapped through x = 2u - 1. Codes at or above
// the bin count fail with ErrCodeOutOfRange.
func (q *Quantizer) Decode(codes QuantizedSet) (VertexSet, error) {
	if err := codes.Validate(q.bins); err != nil {
		return nil, err
	}
	top := float64(q.bins - 1)
	out := make(VertexSet, len(codes))
	for i, c := range codes {
		for a := 0; a < 3; a++ {
			u := float64(c[a]) / top
			if q.domain == DomainSigned {
				u = u*2 - 1
			}
			out[i][a] = u
		}
	}
	return out, nil
}
