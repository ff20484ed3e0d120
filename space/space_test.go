package space

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertVec(t *testing.T, want, got r3.Vec, eps float64, msg string) {
	t.Helper()
	if r3.Norm(r3.Sub(want, got)) > eps {
		t.Errorf("%s: expected %v, got %v", msg, want, got)
	}
}

func TestPerpendicular(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for _, v := range []r3.Vec{V(1, 0, 0), V(0, 1, 0), V(0, 0, 1), V(1, 2, 3), V(-4, 0.1, 2)} {
		p := Perpendicular(v)
		assert.InDelta(t, 0, r3.Dot(p, v), 1e-12, "perpendicular of %v", v)
		assert.InDelta(t, 1, r3.Norm(p), 1e-12, "perpendicular of %v", v)
	}
}

func TestLookRotation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	dir, _ := Unit(V(1, 1, 0))
	q := LookRotation(dir, WorldUp)
	assertVec(t, dir, Forward(q), 1e-9, "forward")
	up, _ := Unit(Reject(WorldUp, dir))
	assertVec(t, up, Up(q), 1e-9, "up")
	assert.InDelta(t, 0, r3.Dot(Right(q), dir), 1e-9)
	//
	q = LookRotation(V(0, 2, 0), WorldUp) // up parallel to forward
	assertVec(t, V(0, 1, 0), Forward(q), 1e-9, "forward along up")
	assert.InDelta(t, 0, r3.Dot(Up(q), V(0, 1, 0)), 1e-9)
	//
	assert.Equal(t, Identity, LookRotation(r3.Vec{}, WorldUp))
}

func TestRelativeCompose(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	frame := LookRotation(V(1, 0, 0), WorldUp)
	node := LookRotation(V(1, 1, 0), V(0, 0, 1))
	rel := Relative(frame, node)
	back := Compose(frame, rel)
	assert.True(t, SameOrientation(node, back, 1e-9), "expected %v, got %v", node, back)
}

func TestPlaneFromCoplanarPoints(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	n, _ := Unit(V(1, 2, 3))
	u := Perpendicular(n)
	w := r3.Cross(n, u)
	origin := V(5, -2, 7)
	coords := [][2]float64{{0, 0}, {4, 1}, {-3, 2}, {1, -5}, {6, 6}, {-2, -1}}
	points := make([]r3.Vec, len(coords))
	for i, c := range coords {
		points[i] = r3.Add(origin, r3.Add(r3.Scale(c[0], u), r3.Scale(c[1], w)))
	}
	basis := EstimatePlane(points, WorldUp)
	assert.InDelta(t, 1, math.Abs(r3.Dot(basis.Normal, n)), 1e-6, "normal %v vs %v", basis.Normal, n)
	assert.GreaterOrEqual(t, r3.Dot(basis.Normal, WorldUp), 0.0, "normal must agree with up hint")
	assert.InDelta(t, 0, r3.Dot(basis.Ex, basis.Ey), 1e-9)
	assertVec(t, basis.Normal, r3.Cross(basis.Ex, basis.Ey), 1e-9, "normal = ex × ey")
	for _, p := range points {
		assertVec(t, p, basis.Unproject(basis.Project(p)), 1e-9, "reconstruction")
	}
}

func TestPlaneFromColinearPoints(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	dir, _ := Unit(V(1, -1, 0.5))
	base := V(1, 2, 3)
	var points []r3.Vec
	for _, s := range []float64{-3, -1, 0, 2, 5} {
		points = append(points, r3.Add(base, r3.Scale(s, dir)))
	}
	basis := EstimatePlane(points, WorldUp)
	assert.InDelta(t, 1, math.Abs(r3.Dot(basis.Ex, dir)), 1e-9, "ex must run along the line")
	for _, p := range points {
		residual := Reject(r3.Sub(p, basis.Centroid), basis.Ex)
		assert.InDelta(t, 0, r3.Norm(residual), 1e-9)
	}
	assert.GreaterOrEqual(t, r3.Dot(basis.Normal, WorldUp), 0.0)
	assertVec(t, basis.Normal, r3.Cross(basis.Ex, basis.Ey), 1e-9, "normal = ex × ey")
}

func TestPlaneDegenerateInput(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Equal(t, CanonicalBasis, EstimatePlane(nil, WorldUp))
	basis := EstimatePlane([]r3.Vec{V(1, 1, 1), V(1, 1, 1)}, WorldUp)
	assertVec(t, V(1, 1, 1), basis.Centroid, 1e-12, "centroid")
	assert.InDelta(t, 1, r3.Norm(basis.Normal), 1e-9)
	assert.InDelta(t, 0, r3.Dot(basis.Ex, basis.Ey), 1e-9)
}
