package quant

import "fmt"

// Strategy selects one of the supported normalization methods. The set is
// closed: adding a method means extending every switch in this package.
type Strategy uint8

const (
	// AxisRange rescales each axis independently into [0,1] using the
	// per-axis minimum and maximum (min-max normalization).
	AxisRange Strategy = iota

	// UnitSphere centers vertices on their centroid and divides by the
	// bounding radius, mapping the mesh into the closed unit ball.
	UnitSphere
)

// Strategies lists every supported strategy in processing order.
func Strategies() []Strategy {
	return []Strategy{AxisRange, UnitSphere}
}

// String returns the short tag used in artifact names and params records.
func (s Strategy) String() string {
	switch s {
	case AxisRange:
		return "minmax"
	case UnitSphere:
		return "sphere"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == AxisRange || s == UnitSphere
}

// Domain returns the normalized coordinate domain s produces. AxisRange
// yields [0,1] per axis, UnitSphere yields [-1,1] per axis.
func (s Strategy) Domain() Domain {
	if s == UnitSphere {
		return DomainSigned
	}
	return DomainUnit
}

// ParseStrategy converts a tag ("minmax" or "sphere") back into a
// Strategy. Unknown tags are a configuration error.
func ParseStrategy(tag string) (Strategy, error) {
	switch tag {
	case "minmax":
		return AxisRange, nil
	case "sphere":
		return UnitSphere, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, tag)
	}
}
