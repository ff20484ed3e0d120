package edit

import (
	"fmt"
	"math"

	"github.com/npillmayer/arcfit"
	"github.com/npillmayer/arcfit/circle"
	"github.com/npillmayer/arcfit/config"
	"github.com/npillmayer/arcfit/space"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Below this |py| the radius of a dragged middle node is searched for
// instead of solved in closed form.
const analyticRadiusLimit = 1e-8

// A dragged radius is kept this much above the half chord.
const radiusMargin = 1e-9

// Up vectors this close to perpendicular count as a tie when choosing a roll.
const rollTie = 1e-9

// PinnedArcParams describes an arc through two endpoints, relative to the
// chord between them. It is a value; updates create new values.
//
// The roll orientation looks along the chord, its up axis is the in-plane
// direction perpendicular to the chord. The circle center sits on the
// side Side of the chord (along up), at distance RadiusFraction·h from
// the endpoints, h being half the chord length.
type PinnedArcParams struct {
	RadiusFraction float64
	Roll           quat.Number
	Side           int
	Arc            circle.ArcChoice
}

// WithRoll returns p with a new roll orientation.
func (p PinnedArcParams) WithRoll(roll quat.Number) PinnedArcParams {
	p.Roll = roll
	return p
}

// WithRadius returns p with a new radius, side and arc choice.
func (p PinnedArcParams) WithRadius(fraction float64, side int, arc circle.ArcChoice) PinnedArcParams {
	p.RadiusFraction = fraction
	p.Side = side
	p.Arc = arc
	return p
}

// bulge is the side of the chord the arc runs on.
func (p PinnedArcParams) bulge() int {
	if p.Arc == circle.Major {
		return p.Side
	}
	return -p.Side
}

func (p PinnedArcParams) String() string {
	return fmt.Sprintf("arc(r=%.4g·h, side=%+d, %s)", p.RadiusFraction, p.Side, p.Arc)
}

// PinnedArcModel reshapes an open chain onto an arc through its endpoints.
// It must be initialized with Init before anything else is called; calling
// other methods first panics.
type PinnedArcModel struct {
	chain       *Chain[ArcParam]
	minDist     float64
	wrapBias    float64
	degenerate  float64
	params      PinnedArcParams
	start       PinnedArcParams
	initialized bool
}

// NewPinnedArcModel creates a model for c, which needs at least three
// nodes.
func NewPinnedArcModel(c *Chain[ArcParam], settings config.Settings) *PinnedArcModel {
	if c.Len() < 3 {
		panic(fmt.Sprintf("pinned arc needs at least 3 nodes, has %d", c.Len()))
	}
	return &PinnedArcModel{
		chain:      c,
		minDist:    settings.Edit.MinimumConnectionDistance,
		wrapBias:   settings.Edit.ThetaWrapBias,
		degenerate: settings.Fit.DegenerateHalfChord,
	}
}

// Chain returns the working copies.
func (m *PinnedArcModel) Chain() *Chain[ArcParam] {
	return m.chain
}

// Init fits the arc to the chain and captures theta and up offset of every
// node.
func (m *PinnedArcModel) Init(up r3.Vec) {
	points := m.chain.Positions()
	n := len(points)
	basis := space.EstimatePlane(points, up)
	p := basis.ProjectAll(points)
	fit := circle.SolveBisector(p[0], p[n-1], p[1:n-1])

	a, b := points[0], points[n-1]
	mid := space.Midpoint(a, b)
	fwd, ok := space.Unit(r3.Sub(b, a))
	if !ok {
		fwd = basis.Ex
	}
	perp, ok := space.Unit(r3.Cross(basis.Normal, fwd))
	if !ok {
		perp = space.Perpendicular(fwd)
	}
	sum := 0.0
	for _, q := range points[1 : n-1] {
		sum += r3.Dot(r3.Sub(q, mid), perp)
	}
	if sum < 0 {
		perp = r3.Scale(-1, perp)
	}
	// middle nodes are on the +perp side, the arc bulges there
	side := -1
	if fit.Arc == circle.Major {
		side = 1
	}
	fraction := 1.0
	if h := (p[n-1] - p[0]).Abs() / 2; h > m.degenerate {
		fraction = math.Max(1, fit.Circle.Radius/h)
	}
	if !arcfit.IsFinite(fraction) {
		tracer().Errorf("pinned arc: non-finite radius fit, falling back to half circle")
		fraction = 1
	}
	m.params = PinnedArcParams{
		RadiusFraction: fraction,
		Roll:           space.LookRotation(fwd, perp),
		Side:           side,
		Arc:            fit.Arc,
	}
	m.start = m.params
	m.initialized = true

	arc := m.arc(m.params)
	for i, node := range m.chain.Nodes() {
		switch i {
		case 0:
			node.Param.Theta = 0
		case n - 1:
			node.Param.Theta = 1
		default:
			node.Param.Theta = arc.Theta(node.Position)
		}
		node.UpOffset = space.Relative(arc.OrientationAt(node.Param.Theta), node.Orientation)
	}
	tracer().Infof("pinned arc over %d nodes: %s", n, m.params)
}

func (m *PinnedArcModel) mustBeInitialized() {
	if !m.initialized {
		panic("pinned arc model used before Init")
	}
}

// Params returns the current arc parameters.
func (m *PinnedArcModel) Params() PinnedArcParams {
	m.mustBeInitialized()
	return m.params
}

// StartParams returns the arc parameters found by Init.
func (m *PinnedArcModel) StartParams() PinnedArcParams {
	m.mustBeInitialized()
	return m.start
}

// Arc returns the current arc.
func (m *PinnedArcModel) Arc() circle.ArcSpan {
	m.mustBeInitialized()
	return m.arc(m.params)
}

// Thetas returns the thetas of all nodes.
func (m *PinnedArcModel) Thetas() []float64 {
	m.mustBeInitialized()
	t := make([]float64, m.chain.Len())
	for i, node := range m.chain.Nodes() {
		t[i] = node.Param.Theta
	}
	return t
}

// chord returns midpoint, unit direction and half length of the chord between
// the endpoints. The half length is clamped to the degenerate minimum.
func (m *PinnedArcModel) chord(p PinnedArcParams) (r3.Vec, r3.Vec, float64) {
	a, b := m.chain.First().Position, m.chain.Last().Position
	fwd, ok := space.Unit(r3.Sub(b, a))
	if !ok {
		fwd = space.Forward(p.Roll)
	}
	h := math.Max(space.Distance(a, b)/2, m.degenerate)
	return space.Midpoint(a, b), fwd, h
}

// frame returns the working plane of p: origin at the chord midpoint, x
// along the chord, y along the roll's up axis.
func (m *PinnedArcModel) frame(p PinnedArcParams) (space.PlaneBasis, float64) {
	mid, fwd, h := m.chord(p)
	return space.NewBasis(mid, fwd, space.Up(p.Roll)), h
}

// arc derives the arc of p from the current endpoints.
func (m *PinnedArcModel) arc(p PinnedArcParams) circle.ArcSpan {
	basis, h := m.frame(p)
	r := math.Max(p.RadiusFraction, 1) * h
	cy := float64(p.Side) * math.Sqrt(math.Max(0, r*r-h*h))
	pc := circle.PlaneCircle{
		Basis:  basis,
		Circle: circle.Circle2D{Center: arcfit.P(0, cy), Radius: r},
	}
	// endpoints at (∓h,0); counter-clockwise from the first passes below
	dir := -p.bulge()
	return circle.NewArcSpan(pc, m.chain.First().Position, m.chain.Last().Position, dir, m.wrapBias)
}

// DragEndpoint moves endpoint i (first or last) to pos. The arc is re-rolled
// to the new chord, keeping its radius fraction, side and arc choice. Thetas
// are not touched.
func (m *PinnedArcModel) DragEndpoint(i int, pos r3.Vec) {
	m.mustBeInitialized()
	if !m.chain.IsEndpoint(i) {
		panic(fmt.Sprintf("node %d is not an endpoint", i))
	}
	m.chain.Node(i).Position = pos
	_, fwd, _ := m.chord(m.params)
	m.params = m.params.WithRoll(space.LookRotation(fwd, space.Up(m.params.Roll)))
	tracer().Debugf("endpoint %d dragged to %v: %s", i, pos, m.params)
}

// DragMiddle moves middle node k towards pos. In sequence, the arc is
// re-rolled so that pos lies in its plane, its radius is solved to pass
// through pos, and the thetas are redistributed around the new theta of k.
// If the nodes do not fit with their minimum distance, ErrNoRoom is
// returned and nothing changes.
func (m *PinnedArcModel) DragMiddle(k int, pos r3.Vec) error {
	m.mustBeInitialized()
	if k <= 0 || k >= m.chain.Len()-1 {
		panic(fmt.Sprintf("node %d is not a middle node", k))
	}
	p := m.rolled(m.params, pos)
	p = m.radiusThrough(p, pos)
	arc := m.arc(p)
	slack := thetaSlack(m.minDist, arc.Length())
	thetas, err := redistribute(m.Thetas(), k, arc.Theta(pos), slack)
	if err != nil {
		tracer().Debugf("drag of node %d rejected: %v", k, err)
		return err
	}
	m.params = p
	for i, node := range m.chain.Nodes() {
		node.Param.Theta = thetas[i]
	}
	tracer().Debugf("node %d dragged to theta %.4f: %s", k, thetas[k], p)
	return nil
}

// rolled returns p rolled around the chord so that pos lies in the arc's
// plane. Of the two candidate up directions it picks the one closer to the
// previous up; ties are broken by the up direction found at Init.
func (m *PinnedArcModel) rolled(p PinnedArcParams, pos r3.Vec) PinnedArcParams {
	mid, fwd, _ := m.chord(p)
	prevUp := space.Up(p.Roll)
	up, ok := space.Unit(space.Reject(r3.Sub(pos, mid), fwd))
	if !ok {
		return p.WithRoll(space.LookRotation(fwd, prevUp))
	}
	d := r3.Dot(up, prevUp)
	if math.Abs(d) <= rollTie {
		d = r3.Dot(up, space.Up(m.start.Roll))
	}
	if d < 0 {
		up = r3.Scale(-1, up)
	}
	return p.WithRoll(space.LookRotation(fwd, up))
}

// radiusThrough returns p with the circle through both endpoints and pos.
// pos is expected to lie in the plane of p.
func (m *PinnedArcModel) radiusThrough(p PinnedArcParams, pos r3.Vec) PinnedArcParams {
	basis, h := m.frame(p)
	q := basis.Project(pos)
	px, py := q.X(), q.Y()
	var cy float64
	if math.Abs(py) > analyticRadiusLimit {
		cy = (px*px + py*py - h*h) / (2 * py)
	} else {
		dev := func(c float64) float64 {
			return math.Abs(q.Distance(arcfit.P(0, c)) - math.Hypot(h, c))
		}
		cy = arcfit.Minimize(dev, -10*h, 10*h, circle.SearchIterations)
	}
	r := math.Max(math.Hypot(h, cy), h+radiusMargin)
	fraction := r / h
	if !arcfit.IsFinite(fraction) || !arcfit.IsFinite(cy) {
		tracer().Errorf("pinned arc: non-finite radius for %v, reverting to half circle", pos)
		return p.WithRadius(1, p.Side, circle.Minor)
	}
	side, bulge := arcfit.Sign(cy), arcfit.Sign(py)
	arc := circle.Minor
	if side == bulge {
		arc = circle.Major
	}
	return p.WithRadius(fraction, side, arc)
}

// EqualizeSpacing spaces all thetas evenly.
func (m *PinnedArcModel) EqualizeSpacing() {
	m.mustBeInitialized()
	for i, t := range evenThetas(m.chain.Len()) {
		m.chain.Node(i).Param.Theta = t
	}
}

// Apply writes positions and orientations derived from the current arc to
// the working copies. Endpoints keep their positions.
func (m *PinnedArcModel) Apply() {
	arc := m.Arc()
	for i, node := range m.chain.Nodes() {
		theta := node.Param.Theta
		if !m.chain.IsEndpoint(i) {
			node.Position = arc.PointAtTheta(theta)
		}
		node.Orientation = space.Compose(arc.OrientationAt(theta), node.UpOffset)
	}
}
