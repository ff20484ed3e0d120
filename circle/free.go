package circle

import (
	"fmt"
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/npillmayer/arcfit"
	"gonum.org/v1/gonum/mat"
)

// FitFree fits a circle to an unordered set of at least three points.
//
// It is the algebraic (Kåsa) least-squares fit: minimize
//
//	Σ ( x² + y² + D·x + E·y + F )²
//
// Coordinates are shifted to the centroid and scaled by the extent of the
// bounding box before solving, which keeps the linear system well
// conditioned for points far from the origin. For points lying exactly on a
// circle the fit recovers that circle.
func FitFree(points []arcfit.Pair) (Circle2D, error) {
	if len(points) < 3 {
		return Circle2D{}, fmt.Errorf("%w: need 3 points, have %d", ErrDegenerateFit, len(points))
	}
	centroid := arcfit.Origin
	contour := make(polyclip.Contour, len(points))
	for i, p := range points {
		centroid += p
		contour[i] = polyclip.Point{X: p.X(), Y: p.Y()}
	}
	centroid = centroid.Scaled(1 / float64(len(points)))
	box := contour.BoundingBox()
	scale := math.Max(box.Max.X-box.Min.X, box.Max.Y-box.Min.Y)
	if scale < degenerateChord {
		return Circle2D{}, fmt.Errorf("%w: all points coincide", ErrDegenerateFit)
	}
	a := mat.NewDense(len(points), 3, nil)
	b := mat.NewVecDense(len(points), nil)
	var sxx, syy, sxy float64
	for i, p := range points {
		q := (p - centroid).Scaled(1 / scale)
		sxx, syy, sxy = sxx+q.X()*q.X(), syy+q.Y()*q.Y(), sxy+q.X()*q.Y()
		a.Set(i, 0, q.X())
		a.Set(i, 1, q.Y())
		a.Set(i, 2, 1)
		b.SetVec(i, -(q.X()*q.X() + q.Y()*q.Y()))
	}
	if sxx*syy-sxy*sxy <= 1e-12*(sxx+syy)*(sxx+syy) {
		return Circle2D{}, fmt.Errorf("%w: points are colinear", ErrDegenerateFit)
	}
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return Circle2D{}, fmt.Errorf("%w: %v", ErrDegenerateFit, err)
	}
	d, e, f := x.AtVec(0), x.AtVec(1), x.AtVec(2)
	cx, cy := -d/2, -e/2
	r2 := cx*cx + cy*cy - f
	if r2 <= 0 || !arcfit.IsFinite(r2) || !arcfit.IsFinite(cx) || !arcfit.IsFinite(cy) {
		return Circle2D{}, fmt.Errorf("%w: points are colinear", ErrDegenerateFit)
	}
	c := Circle2D{
		Center: centroid + arcfit.P(cx, cy).Scaled(scale),
		Radius: math.Sqrt(r2) * scale,
	}
	tracer().Debugf("free circle fit over %d points: %s", len(points), c)
	return c, nil
}

// FallbackCircle is the circle around the centroid of points, with the mean
// distance to the centroid as radius. It is used where FitFree fails.
func FallbackCircle(points []arcfit.Pair) Circle2D {
	if len(points) == 0 {
		return Circle2D{Radius: 1}
	}
	centroid := arcfit.Origin
	for _, p := range points {
		centroid += p
	}
	centroid = centroid.Scaled(1 / float64(len(points)))
	r := 0.0
	for _, p := range points {
		r += p.Distance(centroid)
	}
	r /= float64(len(points))
	if r < degenerateChord {
		r = 1
	}
	return Circle2D{Center: centroid, Radius: r}
}
