// Package math provides small vector helpers for 3D mesh processing.
package math

import "math"

// Vec3 is a 3D point or direction in mesh space. Components stay float64
// end to end; the pipeline must not degrade coordinate precision.
type Vec3 = [3]float64

// Add returns a + b.
func Add(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub returns a - b.
func Sub(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale returns v * s.
func Scale(v Vec3, s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product.
func Dot(a, b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Length returns the magnitude.
func Length(v Vec3) float64 {
	return math.Sqrt(Dot(v, v))
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return Length(Sub(a, b))
}
