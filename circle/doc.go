/*
Package circle fits circles to points in a working plane and parameterizes
positions along them.

Two solvers are provided. SolveBisector finds a circle pinned through two
fixed points, searching the center along their perpendicular bisector so that
the remaining points deviate as little as possible from the circle. FitFree is
an unconstrained algebraic least-squares fit for an unordered point set.

PlaneCircle lifts a 2D circle back into space (positions, tangents,
orientations), and ArcSpan maps between plane angles and the normalized arc
position theta, where theta = 0 at the first endpoint of an arc and theta = 1
at the last one.

All searches run a fixed number of iterations; there is no convergence test.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package circle

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arcfit.circle'
func tracer() tracing.Trace {
	return tracing.Select("arcfit.circle")
}

// SearchIterations is the fixed iteration count of all ternary searches.
const SearchIterations = 80

// chords shorter than this are considered degenerate
const degenerateChord = 1e-12

var (
	// ErrDegenerateFit indicates that no unique circle fits the input points.
	ErrDegenerateFit = errors.New("points do not determine a circle")
)
