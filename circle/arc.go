package circle

import (
	"math"

	"github.com/npillmayer/arcfit"
	"github.com/npillmayer/arcfit/space"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Spans below this are taken as "first and last point coincide".
const fullCircleTolerance = 1e-9

// PlaneCircle is a circle located in space by a plane basis.
type PlaneCircle struct {
	Basis  space.PlaneBasis
	Circle Circle2D
}

// Angle is the plane angle of pos, measured around the circle center.
// pos is projected into the plane first.
func (pc PlaneCircle) Angle(pos r3.Vec) float64 {
	return (pc.Basis.Project(pos) - pc.Circle.Center).Phase()
}

// PointAt is the point in space at the given plane angle.
func (pc PlaneCircle) PointAt(angle float64) r3.Vec {
	return pc.Basis.Unproject(pc.Circle.Center.Polar(pc.Circle.Radius, angle))
}

// Center is the circle center in space.
func (pc PlaneCircle) Center() r3.Vec {
	return pc.Basis.Unproject(pc.Circle.Center)
}

// Tangent is the unit tangent at angle, pointing in the direction of
// increasing angle.
func (pc PlaneCircle) Tangent(angle float64) r3.Vec {
	return pc.Basis.InPlane(arcfit.P(-math.Sin(angle), math.Cos(angle)))
}

// TangentOrientation is the orientation looking along the tangent at angle,
// with the plane normal as up. dir = -1 looks along decreasing angles.
func (pc PlaneCircle) TangentOrientation(angle float64, dir int) quat.Number {
	t := r3.Scale(float64(dir), pc.Tangent(angle))
	return space.LookRotation(t, pc.Basis.Normal)
}

// ArcSpan parameterizes an arc of a PlaneCircle by theta, the normalized
// position along the arc: theta(first) = 0, theta(last) = 1.
//
//	theta(pos)   = wrap( Dir·(angle(pos) − AngleFirst) ) / ArcAngle
//	angle(theta) = AngleFirst + Dir·theta·ArcAngle
//
// wrap moves an angle difference into a branch of width 2π centered on the
// middle of the arc, shifted by WrapBias. Points off the arc thus get
// theta < 0 or theta > 1, whichever endpoint is nearer.
type ArcSpan struct {
	PlaneCircle
	AngleFirst float64
	ArcAngle   float64 // in (0, 2π]
	Dir        int     // +1: counter-clockwise in plane coordinates, -1: clockwise
	WrapBias   float64
}

// NewArcSpan creates the arc of pc running from first to last in direction
// dir. If first and last coincide, the arc is the full circle.
func NewArcSpan(pc PlaneCircle, first, last r3.Vec, dir int, wrapBias float64) ArcSpan {
	if dir >= 0 {
		dir = 1
	} else {
		dir = -1
	}
	a1 := pc.Angle(first)
	a2 := pc.Angle(last)
	span := arcfit.WrapAngle(float64(dir)*(a2-a1), 0)
	if span < fullCircleTolerance || span > 2*math.Pi-fullCircleTolerance {
		span = 2 * math.Pi
	}
	return ArcSpan{
		PlaneCircle: pc,
		AngleFirst:  a1,
		ArcAngle:    span,
		Dir:         dir,
		WrapBias:    wrapBias,
	}
}

// Choice tells if the span is the minor or the major arc.
func (as ArcSpan) Choice() ArcChoice {
	if as.ArcAngle > math.Pi+fullCircleTolerance {
		return Major
	}
	return Minor
}

// Length is the arc length.
func (as ArcSpan) Length() float64 {
	return as.Circle.Radius * as.ArcAngle
}

// Theta is the normalized arc position of pos.
func (as ArcSpan) Theta(pos r3.Vec) float64 {
	return as.ThetaOfAngle(as.Angle(pos))
}

// ThetaOfAngle is the normalized arc position of a plane angle.
func (as ArcSpan) ThetaOfAngle(angle float64) float64 {
	lo := as.ArcAngle/2 - math.Pi + as.WrapBias
	delta := arcfit.WrapAngle(float64(as.Dir)*(angle-as.AngleFirst), lo)
	return delta / as.ArcAngle
}

// AngleFromTheta is the plane angle at normalized arc position theta.
func (as ArcSpan) AngleFromTheta(theta float64) float64 {
	return as.AngleFirst + float64(as.Dir)*theta*as.ArcAngle
}

// PointAtTheta is the point in space at normalized arc position theta.
func (as ArcSpan) PointAtTheta(theta float64) r3.Vec {
	return as.PointAt(as.AngleFromTheta(theta))
}

// OrientationAt is the orientation looking along the arc, from first to
// last, at normalized arc position theta.
func (as ArcSpan) OrientationAt(theta float64) quat.Number {
	return as.TangentOrientation(as.AngleFromTheta(theta), as.Dir)
}
