// Package quant implements the vertex quantization round trip for 3D
// meshes: normalization into a bounded reference domain, uniform scalar
// quantization into fixed-width integer codes, reconstruction back into
// mesh space, and error metrics comparing original to reconstructed
// vertices.
//
// Every operation is a pure function over immutable inputs. Distinct
// mesh/strategy pairs share no state and may be processed concurrently
// without synchronization.
package quant

import "errors"

// Pipeline errors.
var (
	// Configuration errors, surfaced before any per-vertex work begins.
	ErrBinsOutOfRange  = errors.New("bins must be in [2, 65536]")
	ErrUnknownStrategy = errors.New("unknown normalization strategy")

	// ErrEmptyVertexSet rejects meshes with no vertices.
	ErrEmptyVertexSet = errors.New("vertex set must contain at least one vertex")

	// Internal-consistency errors. A stage produced data violating the
	// pipeline contract; the affected mesh/strategy pair is aborted.
	ErrShapeMismatch  = errors.New("vertex count changed between pipeline stages")
	ErrCodeOutOfRange = errors.New("quantized code outside bin range")

	// ErrMalformedParams marks a params record whose variant fields do not
	// match its method tag.
	ErrMalformedParams = errors.New("params record missing variant fields")
)

// VertexSet is an ordered sequence of 3-component float64 vertices.
// A VertexSet is immutable by convention: every transform in this package
// returns a freshly allocated set and never writes through its input.
type VertexSet [][3]float64

// Clone returns a deep copy of v. Elements are value arrays, so a single
// copy is sufficient.
func (v VertexSet) Clone() VertexSet {
	out := make(VertexSet, len(v))
	copy(out, v)
	return out
}
