package space

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vectors with a norm below this are treated as zero-length.
const tiny = 1e-12

// WorldUp is the default up hint.
var WorldUp = r3.Vec{X: 0, Y: 1, Z: 0}

// V is a quick notation for constructing a vector.
func V(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}

// IsZero is a predicate: has v (almost) no length?
func IsZero(v r3.Vec) bool {
	return r3.Norm(v) <= tiny
}

// Unit normalizes v. For a zero-length v the second return value is false
// and the zero vector is returned.
func Unit(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n <= tiny || math.IsNaN(n) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// Perpendicular returns an arbitrary unit vector perpendicular to ref.
// It zeroes the smallest-magnitude component of ref and swaps the other two,
// negating one of them.
func Perpendicular(ref r3.Vec) r3.Vec {
	ax, ay, az := math.Abs(ref.X), math.Abs(ref.Y), math.Abs(ref.Z)
	var p r3.Vec
	switch {
	case ax <= ay && ax <= az:
		p = r3.Vec{X: 0, Y: -ref.Z, Z: ref.Y}
	case ay <= az:
		p = r3.Vec{X: -ref.Z, Y: 0, Z: ref.X}
	default:
		p = r3.Vec{X: -ref.Y, Y: ref.X, Z: 0}
	}
	if u, ok := Unit(p); ok {
		return u
	}
	return r3.Vec{X: 1}
}

// Reject removes the component of v along the unit vector axis.
func Reject(v, axis r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(r3.Dot(v, axis), axis))
}

// Midpoint of a and b.
func Midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// Distance between two points.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// IsFinite is a predicate: v has no NaN or ±Inf components.
func IsFinite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
