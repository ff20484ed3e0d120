package space

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Identity is the orientation without rotation.
var Identity = quat.Number{Real: 1}

// Local axes of an orientation.
var (
	axisRight   = r3.Vec{X: 1}
	axisUp      = r3.Vec{Y: 1}
	axisForward = r3.Vec{Z: 1}
)

// LookRotation returns the orientation whose forward axis points along dir
// and whose up axis is as close to up as possible. If up is parallel to dir,
// an arbitrary perpendicular is used as up. A zero dir yields Identity.
func LookRotation(dir, up r3.Vec) quat.Number {
	f, ok := Unit(dir)
	if !ok {
		return Identity
	}
	right, ok := Unit(r3.Cross(up, f))
	if !ok {
		right, _ = Unit(r3.Cross(Perpendicular(f), f))
	}
	u := r3.Cross(f, right)
	return fromAxes(right, u, f)
}

// fromAxes converts the rotation matrix with columns x, y, z to a quaternion.
func fromAxes(x, y, z r3.Vec) quat.Number {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z
	var q quat.Number
	tr := m00 + m11 + m22
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = quat.Number{Real: s / 4, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = quat.Number{Real: (m21 - m12) / s, Imag: s / 4, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: s / 4, Kmag: (m12 + m21) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: s / 4}
	}
	return Normalize(q)
}

// Normalize scales q to unit length. A zero q yields Identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n <= tiny || math.IsNaN(n) {
		return Identity
	}
	return quat.Scale(1/n, q)
}

// Rotate applies the rotation q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// Forward is the local +Z axis of q in world space.
func Forward(q quat.Number) r3.Vec {
	return Rotate(q, axisForward)
}

// Up is the local +Y axis of q in world space.
func Up(q quat.Number) r3.Vec {
	return Rotate(q, axisUp)
}

// Right is the local +X axis of q in world space.
func Right(q quat.Number) r3.Vec {
	return Rotate(q, axisRight)
}

// Relative expresses orientation q in the frame of orientation frame,
// i.e. frame⁻¹·q. Applying it with Compose(frame', rel) moves q along with
// the frame.
func Relative(frame, q quat.Number) quat.Number {
	return Normalize(quat.Mul(quat.Conj(frame), q))
}

// Compose returns frame·rel.
func Compose(frame, rel quat.Number) quat.Number {
	return Normalize(quat.Mul(frame, rel))
}

// SameOrientation is a predicate: do p and q describe the same rotation
// within tolerance eps? Both q and -q describe the same rotation.
func SameOrientation(p, q quat.Number, eps float64) bool {
	d := p.Real*q.Real + p.Imag*q.Imag + p.Jmag*q.Jmag + p.Kmag*q.Kmag
	return math.Abs(math.Abs(d)-1) <= eps
}
