package quant

import "fmt"

// Result carries everything one pipeline run produces for a mesh/strategy
// pair: the normalization parameters, the integer codes, and the lossy
// reconstruction in mesh space.
type Result struct {
	Params        Params
	Codes         QuantizedSet
	Reconstructed VertexSet
}

// Run executes the full round trip on one vertex set: extract parameters,
// forward normalize, encode, decode, inverse normalize. The input is
// never modified. Runs on distinct inputs share no state and may execute
// concurrently.
func Run(v VertexSet, s Strategy, bins int) (*Result, error) {
	qz, err := NewQuantizer(bins, s.Domain())
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, ErrEmptyVertexSet
	}
	params, normalized, err := Normalize(v, s)
	if err != nil {
		return nil, err
	}
	codes := qz.Encode(normalized)
	// Encode clamps, so this only fires on a clamping defect.
	if err := codes.Validate(bins); err != nil {
		return nil, err
	}
	decoded, err := qz.Decode(codes)
	if err != nil {
		return nil, err
	}
	reconstructed, err := Inverse(decoded, params)
	if err != nil {
		return nil, err
	}
	if len(reconstructed) != len(v) {
		return nil, fmt.Errorf("%w: %d vertices in, %d out", ErrShapeMismatch, len(v), len(reconstructed))
	}
	return &Result{Params: params, Codes: codes, Reconstructed: reconstructed}, nil
}

// Reconstruct rebuilds mesh-space vertices from persisted codes and
// parameters, without access to the original mesh: decode followed by
// inverse normalization.
func Reconstruct(codes QuantizedSet, p Params, bins int) (VertexSet, error) {
	if !p.Strategy.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(p.Strategy))
	}
	qz, err := NewQuantizer(bins, p.Strategy.Domain())
	if err != nil {
		return nil, err
	}
	decoded, err := qz.Decode(codes)
	if err != nil {
		return nil, err
	}
	return Inverse(decoded, p)
}
