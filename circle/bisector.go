package circle

import (
	"fmt"
	"math"

	"github.com/npillmayer/arcfit"
)

// ArcChoice selects one of the two arcs between two points on a circle.
type ArcChoice int8

// Minor is the shorter arc, Major the longer one.
const (
	Minor ArcChoice = iota
	Major
)

func (a ArcChoice) String() string {
	if a == Major {
		return "major"
	}
	return "minor"
}

// Circle2D is a circle in the 2D coordinates of a working plane.
type Circle2D struct {
	Center arcfit.Pair
	Radius float64
}

func (c Circle2D) String() string {
	return fmt.Sprintf("circle(%s, r=%.4g)", c.Center, c.Radius)
}

// BiSector2D is the perpendicular bisector of two points.
type BiSector2D struct {
	Midpoint    arcfit.Pair
	Perp        arcfit.Pair // unit vector, left of the direction p1→p2
	ChordLength float64
}

// NewBiSector creates the bisector of p1 and p2. For coincident points the
// perpendicular falls back to +Y.
func NewBiSector(p1, p2 arcfit.Pair) BiSector2D {
	d := p2 - p1
	bs := BiSector2D{
		Midpoint:    (p1 + p2).Scaled(0.5),
		ChordLength: d.Abs(),
	}
	if bs.ChordLength < degenerateChord {
		bs.Perp = arcfit.P(0, 1)
	} else {
		bs.Perp = d.Scaled(1 / bs.ChordLength).Perp()
	}
	return bs
}

// At returns the point on the bisector at signed distance t from the midpoint.
func (bs BiSector2D) At(t float64) arcfit.Pair {
	return bs.Midpoint + bs.Perp.Scaled(t)
}

// BisectorFit is the result of SolveBisector.
type BisectorFit struct {
	Circle  Circle2D
	T       float64     // signed offset of the center along the bisector
	Arc     ArcChoice   // arc between p1 and p2 which holds the other points
	SideDir arcfit.Pair // unit vector from the bisector midpoint towards the center
}

// SolveBisector fits a circle through p1 and p2, minimizing
//
//	Σ ( |c−qᵢ| − |c−p1| )²
//
// over all other points qᵢ, with the center c restricted to the bisector of
// p1 and p2. The search interval is ±10 chord lengths. Without other points
// every center fits equally well; we then return the half circle.
// SolveBisector always returns a result, possibly a degenerate one.
func SolveBisector(p1, p2 arcfit.Pair, others []arcfit.Pair) BisectorFit {
	bs := NewBiSector(p1, p2)
	cost := func(t float64) float64 {
		c := bs.At(t)
		r := c.Distance(p1)
		sum := 0.0
		for _, q := range others {
			dev := c.Distance(q) - r
			sum += dev * dev
		}
		return sum
	}
	t := 0.0
	if len(others) > 0 {
		bound := 10 * bs.ChordLength
		t = arcfit.Minimize(cost, -bound, bound, SearchIterations)
	}
	center := bs.At(t)
	fit := BisectorFit{
		Circle: Circle2D{Center: center, Radius: center.Distance(p1)},
		T:      t,
	}
	//
	// the other points sit on the arc on the far side of the chord from the
	// center: minor arc. If they sit on the center's side, it's the major arc.
	sum := 0.0
	for _, q := range others {
		sum += (q - bs.Midpoint).Dot(bs.Perp)
	}
	if sum != 0 && t != 0 && arcfit.Sign(sum) == arcfit.Sign(t) && !nearMidpoint(t, bs) {
		fit.Arc = Major
	}
	if off := center - bs.Midpoint; off.Abs() > degenerateChord {
		fit.SideDir = off.Unit()
	} else {
		fit.SideDir = bs.Perp.Scaled(float64(arcfit.Sign(t)))
	}
	tracer().Debugf("bisector fit: %s, t=%.4g, %s arc", fit.Circle, t, fit.Arc)
	return fit
}

// A center this close to the midpoint makes both arcs half circles; we call
// it minor.
func nearMidpoint(t float64, bs BiSector2D) bool {
	return math.Abs(t) <= 1e-9*bs.ChordLength
}
