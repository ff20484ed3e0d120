/*
Package arcfit reshapes chains and clusters of 3D nodes onto circles and
circular arcs. The root package holds the small numeric vocabulary shared by
the sub-packages: ε-predicates, 2D pairs and a fixed-iteration minimizer.

Sub-packages:

	space    - 3D helpers, orientations and the plane estimator
	circle   - pinned and free circle solvers, arc parameterization
	chain    - node contracts and the sequence detector
	edit     - interactive models (pinned arc, free circle) and gestures
	config   - settings
	memgraph - an in-memory node graph

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package arcfit

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arcfit'
func tracer() tracing.Trace {
	return tracing.Select("arcfit")
}

// === Numeric Data Type =====================================================

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 1e-12

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Sign returns -1 for negative n and +1 otherwise.
func Sign(n float64) int {
	if n < 0 {
		return -1
	}
	return 1
}

// IsFinite is a predicate: n is neither NaN nor ±Inf.
func IsFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// WrapAngle maps a to the half-open branch [lo, lo+2π).
func WrapAngle(a, lo float64) float64 {
	a = math.Mod(a-lo, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a + lo
}

// Minimize searches the minimum of a unimodal function f on [lo, hi] by
// ternary search. The iteration count is fixed, so the run time of a call
// does not depend on the shape of f.
func Minimize(f func(float64) float64, lo, hi float64, iterations int) float64 {
	for i := 0; i < iterations; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if f(m1) < f(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	return (lo + hi) / 2
}

// === Pair Data Type ========================================================

// Pair is a 2D point or vector in the coordinates of a working plane.
type Pair complex128

// Origin represents the frequently used constant (0,0).
var Origin = P(0, 0)

// Pretty Stringer for simple pairs.
func (p Pair) String() string {
	return fmt.Sprintf("(%g,%g)", real(p), imag(p))
}

// C returns a Pair as a complex number.
func (p Pair) C() complex128 {
	return complex128(p)
}

// C2P returns a Pair from a complex number.
func C2P(c complex128) Pair {
	if cmplx.IsNaN(c) || cmplx.IsInf(c) {
		tracer().Errorf("created pair for complex.NaN")
		return Origin
	}
	return Pair(c)
}

// P is a quick notation for contructing a pair from floats.
func P(x, y float64) Pair {
	return Pair(complex(x, y))
}

// X is the x-part of a pair.
func (p Pair) X() float64 {
	return real(p)
}

// Y is the y-part of a pair.
func (p Pair) Y() float64 {
	return imag(p)
}

// Abs is the length of p.
func (p Pair) Abs() float64 {
	return cmplx.Abs(p.C())
}

// Phase is the angle of p, atan2(y, x).
func (p Pair) Phase() float64 {
	return math.Atan2(p.Y(), p.X())
}

// Dot is the scalar product of two pairs.
func (p Pair) Dot(q Pair) float64 {
	return p.X()*q.X() + p.Y()*q.Y()
}

// Cross is the z-component of the 3D cross product of p and q.
func (p Pair) Cross(q Pair) float64 {
	return p.X()*q.Y() - p.Y()*q.X()
}

// Scaled returns a new pair scaled by factor a.
func (p Pair) Scaled(a float64) Pair {
	return P(p.X()*a, p.Y()*a)
}

// Perp returns p rotated counter-clockwise by 90°.
func (p Pair) Perp() Pair {
	return P(-p.Y(), p.X())
}

// Unit returns p scaled to length 1. The zero pair is returned unchanged.
func (p Pair) Unit() Pair {
	l := p.Abs()
	if Is0(l) {
		return p
	}
	return p.Scaled(1 / l)
}

// Distance is the euclidean distance between two pairs.
func (p Pair) Distance(q Pair) float64 {
	return (q - p).Abs()
}

// Polar returns the pair at angle phi on a circle of radius r around p.
func (p Pair) Polar(r, phi float64) Pair {
	return p + P(r*math.Cos(phi), r*math.Sin(phi))
}

// Equal compares two pairs.
func (p Pair) Equal(q Pair) bool {
	return Is0(p.X()-q.X()) && Is0(p.Y()-q.Y())
}
