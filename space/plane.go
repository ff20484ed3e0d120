package space

import (
	"math"

	"github.com/npillmayer/arcfit"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Power iteration runs for a fixed number of steps, keeping the cost of a
// plane estimate independent of the input.
const powerIterations = 60

// Thresholds of the colinearity pre-check.
const (
	colinearMinSpread   = 1e-4
	colinearMaxResidual = 1e-2
)

// PlaneBasis is a local orthonormal 2D frame in 3D space. Normal = Ex × Ey.
// A basis is never modified after creation; callers replace it as a whole.
type PlaneBasis struct {
	Centroid r3.Vec
	Ex       r3.Vec
	Ey       r3.Vec
	Normal   r3.Vec
}

// CanonicalBasis is the XY plane through the origin.
var CanonicalBasis = PlaneBasis{
	Ex:     r3.Vec{X: 1},
	Ey:     r3.Vec{Y: 1},
	Normal: r3.Vec{Z: 1},
}

// NewBasis creates a basis at origin from an in-plane direction ex and a
// direction ey, which will be orthogonalized against ex.
func NewBasis(origin, ex, ey r3.Vec) PlaneBasis {
	x, ok := Unit(ex)
	if !ok {
		x = r3.Vec{X: 1}
	}
	y, ok := Unit(Reject(ey, x))
	if !ok {
		y = Perpendicular(x)
	}
	return PlaneBasis{Centroid: origin, Ex: x, Ey: y, Normal: r3.Cross(x, y)}
}

// Project maps a point to the 2D coordinates of the plane.
func (b PlaneBasis) Project(p r3.Vec) arcfit.Pair {
	d := r3.Sub(p, b.Centroid)
	return arcfit.P(r3.Dot(d, b.Ex), r3.Dot(d, b.Ey))
}

// ProjectAll maps a list of points to plane coordinates.
func (b PlaneBasis) ProjectAll(points []r3.Vec) []arcfit.Pair {
	pairs := make([]arcfit.Pair, len(points))
	for i, p := range points {
		pairs[i] = b.Project(p)
	}
	return pairs
}

// Unproject maps 2D plane coordinates back to a point in space.
func (b PlaneBasis) Unproject(q arcfit.Pair) r3.Vec {
	return r3.Add(b.Centroid, r3.Add(r3.Scale(q.X(), b.Ex), r3.Scale(q.Y(), b.Ey)))
}

// InPlane maps a 2D direction to a direction in space.
func (b PlaneBasis) InPlane(d arcfit.Pair) r3.Vec {
	return r3.Add(r3.Scale(d.X(), b.Ex), r3.Scale(d.Y(), b.Ey))
}

// EstimatePlane fits a working plane to a set of points. It never fails:
// for degenerate input it falls back to an arbitrary, but usable, basis.
//
// The normal is flipped (together with Ey) to agree in sign with the up
// hint. A zero up hint disables the flip.
func EstimatePlane(points []r3.Vec, up r3.Vec) PlaneBasis {
	if len(points) == 0 {
		tracer().Debugf("plane estimate for empty point set, using canonical basis")
		return CanonicalBasis
	}
	centroid := r3.Vec{}
	for _, p := range points {
		centroid = r3.Add(centroid, p)
	}
	centroid = r3.Scale(1/float64(len(points)), centroid)
	cov := covariance(points, centroid)

	v1, ok := dominantEigenvector(cov)
	if !ok {
		tracer().Debugf("plane estimate: points coincide, using fallback axes")
		v1 = Perpendicular(hintOrDefault(up))
	}
	if colinear(points, centroid, v1) {
		tracer().Debugf("plane estimate: points are colinear along %v", v1)
		return colinearBasis(centroid, v1, up)
	}

	lambda := mat.Inner(vec(v1), cov, vec(v1)) // Rayleigh quotient
	deflated := mat.NewSymDense(3, nil)
	deflated.SymRankOne(cov, -lambda, vec(v1))
	v2, ok := dominantEigenvector(deflated)
	if ok {
		v2, ok = Unit(Reject(v2, v1)) // Gram-Schmidt
	}
	if !ok {
		tracer().Debugf("plane estimate: second axis degenerate, using fallback")
		v2 = Perpendicular(v1)
	}
	basis := PlaneBasis{Centroid: centroid, Ex: v1, Ey: v2, Normal: r3.Cross(v1, v2)}
	return basis.alignedTo(up)
}

// alignedTo flips normal and Ey if the normal disagrees with up.
func (b PlaneBasis) alignedTo(up r3.Vec) PlaneBasis {
	if r3.Dot(b.Normal, up) < 0 {
		b.Normal = r3.Scale(-1, b.Normal)
		b.Ey = r3.Scale(-1, b.Ey)
	}
	return b
}

func hintOrDefault(up r3.Vec) r3.Vec {
	if IsZero(up) {
		return WorldUp
	}
	return up
}

// colinearBasis builds a basis for points on a line: Ex runs along the line,
// the normal is the up hint made perpendicular to the line.
func colinearBasis(centroid, dir, up r3.Vec) PlaneBasis {
	n, ok := Unit(Reject(hintOrDefault(up), dir))
	if !ok {
		n = Perpendicular(dir)
	}
	return PlaneBasis{Centroid: centroid, Ex: dir, Ey: r3.Cross(n, dir), Normal: n}
}

// colinear tests if all points lie (almost) on the line through centroid
// in direction dir.
func colinear(points []r3.Vec, centroid, dir r3.Vec) bool {
	lo, hi := math.Inf(1), math.Inf(-1)
	maxOrth := 0.0
	for _, p := range points {
		d := r3.Sub(p, centroid)
		t := r3.Dot(d, dir)
		lo, hi = math.Min(lo, t), math.Max(hi, t)
		maxOrth = math.Max(maxOrth, r3.Norm(Reject(d, dir)))
	}
	spread := hi - lo
	return spread > colinearMinSpread && maxOrth/spread <= colinearMaxResidual
}

func covariance(points []r3.Vec, centroid r3.Vec) *mat.SymDense {
	cov := mat.NewSymDense(3, nil)
	for _, p := range points {
		d := vec(r3.Sub(p, centroid))
		cov.SymRankOne(cov, 1, d)
	}
	cov.ScaleSym(1/float64(len(points)), cov)
	return cov
}

// dominantEigenvector finds the eigenvector of m with the largest absolute
// eigenvalue by power iteration. It starts from the column of m with the
// largest diagonal entry, which is nonzero for any nonzero covariance matrix.
func dominantEigenvector(m *mat.SymDense) (r3.Vec, bool) {
	start, best := 0, -1.0
	for i := 0; i < 3; i++ {
		if d := math.Abs(m.At(i, i)); d > best {
			start, best = i, d
		}
	}
	v := mat.NewVecDense(3, []float64{m.At(0, start), m.At(1, start), m.At(2, start)})
	w := mat.NewVecDense(3, nil)
	for i := 0; i < powerIterations; i++ {
		n := mat.Norm(v, 2)
		if n <= tiny || math.IsNaN(n) {
			return r3.Vec{}, false
		}
		v.ScaleVec(1/n, v)
		w.MulVec(m, v)
		v, w = w, v
	}
	return Unit(r3.Vec{X: v.AtVec(0), Y: v.AtVec(1), Z: v.AtVec(2)})
}

func vec(v r3.Vec) *mat.VecDense {
	return mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
}
