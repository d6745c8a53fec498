package quant

import (
	"encoding/json"
	"fmt"
)

// Params holds everything needed to invert a normalization: the strategy
// tag plus that strategy's extracted values. Only the tagged variant's
// fields are meaningful; the rest stay zero. A Params value is computed
// once per mesh/strategy pair and never modified afterwards.
type Params struct {
	Strategy Strategy

	// AxisRange: per-axis source minimum and maximum.
	Min [3]float64
	Max [3]float64

	// UnitSphere: centroid and bounding radius. A degenerate radius of
	// zero is recorded as 1 so the forward map stays defined.
	Center [3]float64
	Scale  float64
}

// DegenerateAxes reports which recorded axes carried no information:
// zero-range axes under AxisRange. Such axes normalize to 0 and still
// reconstruct their constant coordinate exactly. UnitSphere records no
// per-axis ranges, so it never reports degenerate axes here; a collapsed
// sphere mesh is detected at extraction time instead.
func (p Params) DegenerateAxes() [3]bool {
	var d [3]bool
	if p.Strategy == AxisRange {
		for a := 0; a < 3; a++ {
			d[a] = p.Max[a] == p.Min[a]
		}
	}
	return d
}

// paramsRecord is the on-disk shape of Params. Pointer fields let the
// encoder emit exactly the tagged variant's fields and the decoder tell
// absent from zero.
type paramsRecord struct {
	Method string      `json:"method"`
	Min    *[3]float64 `json:"min,omitempty"`
	Max    *[3]float64 `json:"max,omitempty"`
	Center *[3]float64 `json:"center,omitempty"`
	Scale  *float64    `json:"scale,omitempty"`
}

// MarshalJSON writes the method tag plus the tagged variant's fields.
func (p Params) MarshalJSON() ([]byte, error) {
	if !p.Strategy.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(p.Strategy))
	}
	rec := paramsRecord{Method: p.Strategy.String()}
	switch p.Strategy {
	case AxisRange:
		min, max := p.Min, p.Max
		rec.Min, rec.Max = &min, &max
	case UnitSphere:
		center, scale := p.Center, p.Scale
		rec.Center, rec.Scale = &center, &scale
	}
	return json.Marshal(rec)
}

// UnmarshalJSON restores a Params from its record form, rejecting records
// whose fields do not match the method tag.
func (p *Params) UnmarshalJSON(data []byte) error {
	var rec paramsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	s, err := ParseStrategy(rec.Method)
	if err != nil {
		return err
	}
	out := Params{Strategy: s}
	switch s {
	case AxisRange:
		if rec.Min == nil || rec.Max == nil {
			return fmt.Errorf("%w: %q needs min and max", ErrMalformedParams, rec.Method)
		}
		out.Min, out.Max = *rec.Min, *rec.Max
	case UnitSphere:
		if rec.Center == nil || rec.Scale == nil {
			return fmt.Errorf("%w: %q needs center and scale", ErrMalformedParams, rec.Method)
		}
		out.Center, out.Scale = *rec.Center, *rec.Scale
	}
	*p = out
	return nil
}
