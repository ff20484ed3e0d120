/*
Package space deals with the 3D side of arc fitting: vector helpers on top of
gonum's r3, orientations as unit quaternions, and the estimation of a 2D
working plane for a cloud of points.

A PlaneBasis is a local orthonormal frame (centroid, ex, ey, normal). Points
are projected into it to get 2D coordinates suitable for planar circle
fitting, and 2D results are mapped back with Unproject:

	basis := space.EstimatePlane(points, space.WorldUp)
	q := basis.Project(points[0])  // arcfit.Pair
	p := basis.Unproject(q)        // ≈ points[0], if points are coplanar

Orientations follow the usual look-direction convention: local +Z is the
forward direction, local +Y is up and local +X is right.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package space

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arcfit.space'
func tracer() tracing.Trace {
	return tracing.Select("arcfit.space")
}
