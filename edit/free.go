package edit

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/npillmayer/arcfit"
	"github.com/npillmayer/arcfit/chain"
	"github.com/npillmayer/arcfit/circle"
	"github.com/npillmayer/arcfit/space"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// FreeCircleModel moves an unordered selection of nodes on a circle without
// pinned points. The circle is described by its center, radius and a frame:
// the frame's forward axis is angle 0, its up axis is the circle normal.
type FreeCircleModel struct {
	chain   *Chain[CircleParam]
	center  r3.Vec
	radius  float64
	frame   quat.Number
	anchor  r3.Vec
	clicked int
}

// NewFreeCircleModel creates a model for the nodes of c.
func NewFreeCircleModel(c *Chain[CircleParam]) *FreeCircleModel {
	return &FreeCircleModel{chain: c, frame: space.Identity, clicked: -1}
}

// Chain returns the working copies.
func (m *FreeCircleModel) Chain() *Chain[CircleParam] {
	return m.chain
}

// Init fits a circle to the nodes and captures angle and up offset of every
// node.
func (m *FreeCircleModel) Init(up r3.Vec) {
	points := m.chain.Positions()
	basis := space.EstimatePlane(points, up)
	p := basis.ProjectAll(points)
	c, err := circle.FitFree(p)
	if err != nil {
		tracer().Debugf("free circle: %v, using fallback circle", err)
		c = circle.FallbackCircle(p)
	}
	m.center = basis.Unproject(c.Center)
	m.radius = c.Radius
	m.frame = space.LookRotation(basis.Ex, basis.Normal)
	m.capture()
	tracer().Infof("free circle over %d nodes: center %v, r=%.4g", len(points), m.center, m.radius)
}

// capture assigns every node its angle on the current circle and its up
// offset relative to the tangent frame there.
func (m *FreeCircleModel) capture() {
	pc := m.Circle()
	for _, node := range m.chain.Nodes() {
		node.Param.Angle = pc.Angle(node.Position)
		node.UpOffset = space.Relative(pc.TangentOrientation(node.Param.Angle, 1), node.Orientation)
	}
}

// Circle returns the current circle. Angle 0 points along the frame's
// forward axis.
func (m *FreeCircleModel) Circle() circle.PlaneCircle {
	ex := space.Forward(m.frame)
	n := space.Up(m.frame)
	return circle.PlaneCircle{
		Basis: space.PlaneBasis{
			Centroid: m.center,
			Ex:       ex,
			Ey:       r3.Cross(n, ex),
			Normal:   n,
		},
		Circle: circle.Circle2D{Radius: m.radius},
	}
}

// Center is the circle center.
func (m *FreeCircleModel) Center() r3.Vec {
	return m.center
}

// Radius is the circle radius.
func (m *FreeCircleModel) Radius() float64 {
	return m.radius
}

// BeginDrag prepares dragging node k. The frame is turned so that k sits at
// angle 0, and the point opposite of k becomes the fixed anchor of the drag.
func (m *FreeCircleModel) BeginDrag(k int) {
	node := m.chain.Node(k)
	n := space.Up(m.frame)
	if dir, ok := space.Unit(space.Reject(r3.Sub(node.Position, m.center), n)); ok {
		m.frame = space.LookRotation(dir, n)
	}
	m.capture()
	m.clicked = k
	m.anchor = m.Circle().PointAt(math.Pi)
	tracer().Debugf("free circle drag of node %d, anchor %v", k, m.anchor)
}

// Drag moves the clicked node to pos. The circle now spans from the anchor to
// pos as its diameter; all nodes keep their angles.
func (m *FreeCircleModel) Drag(pos r3.Vec) {
	if m.clicked < 0 {
		panic("free circle drag without BeginDrag")
	}
	d := r3.Sub(pos, m.anchor)
	if space.IsZero(d) {
		return
	}
	m.center = space.Midpoint(m.anchor, pos)
	m.radius = r3.Norm(d) / 2
	m.frame = space.LookRotation(d, space.Up(m.frame))
}

// Apply writes positions and orientations on the current circle to the
// working copies.
func (m *FreeCircleModel) Apply() {
	pc := m.Circle()
	for _, node := range m.chain.Nodes() {
		a := node.Param.Angle
		node.Position = pc.PointAt(a)
		node.Orientation = space.Compose(pc.TangentOrientation(a, 1), node.UpOffset)
	}
}

// EqualizeSpacing distributes the nodes evenly on the circle. The selection
// is partitioned by its connections: a closed loop gets equal angles all
// around, an open chain keeps its two end nodes and spaces its middle nodes
// evenly over the arc between them which holds most of them. Nodes in
// other components are left alone.
func (m *FreeCircleModel) EqualizeSpacing() {
	sel := chain.NewSelection(m.chain.Refs())
	for _, comp := range components(sel) {
		ordered, err := chain.Detect(comp)
		switch {
		case err == nil:
			m.equalizeOpen(ordered)
		case errors.Is(err, chain.ErrCycle) && isLoop(sel, comp):
			m.equalizeLoop(loopOrder(sel, comp))
		default:
			tracer().Debugf("equalize: skipping component of %d nodes: %v", len(comp), err)
		}
	}
}

func (m *FreeCircleModel) angleOf(ref chain.NodeRef) *float64 {
	return &m.chain.Node(m.chain.Index(ref)).Param.Angle
}

func (m *FreeCircleModel) equalizeLoop(loop []chain.NodeRef) {
	n := len(loop)
	a0 := *m.angleOf(loop[0])
	turn := 0.0
	for i := range loop {
		a, b := *m.angleOf(loop[i]), *m.angleOf(loop[(i+1)%n])
		turn += arcfit.WrapAngle(b-a, -math.Pi)
	}
	dir := float64(arcfit.Sign(turn))
	for i, ref := range loop {
		*m.angleOf(ref) = a0 + dir*float64(i)*2*math.Pi/float64(n)
	}
}

func (m *FreeCircleModel) equalizeOpen(path []chain.NodeRef) {
	n := len(path)
	first, last := *m.angleOf(path[0]), *m.angleOf(path[n-1])
	ccw := arcfit.WrapAngle(last-first, 0)
	if ccw < arcfit.Epsilon {
		ccw = 2 * math.Pi
	}
	inside := 0
	for _, ref := range path[1 : n-1] {
		if arcfit.WrapAngle(*m.angleOf(ref)-first, 0) < ccw {
			inside++
		}
	}
	span, dir := ccw, 1.0
	if 2*inside < n-2 {
		span, dir = 2*math.Pi-ccw, -1
	}
	for i, ref := range path[1 : n-1] {
		*m.angleOf(ref) = first + dir*float64(i+1)*span/float64(n-1)
	}
}

// components partitions the selection into connected components.
func components(sel chain.Selection) [][]chain.NodeRef {
	seen := make(map[uuid.UUID]bool)
	var comps [][]chain.NodeRef
	for _, start := range sel.Nodes() {
		if seen[start.ID()] {
			continue
		}
		seen[start.ID()] = true
		comp := []chain.NodeRef{start}
		for i := 0; i < len(comp); i++ {
			for _, nb := range sel.Neighbours(comp[i]) {
				if !seen[nb.ID()] {
					seen[nb.ID()] = true
					comp = append(comp, canonical(sel, nb))
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// canonical returns the selected instance of ref. Neighbour lists of a client
// may hand out fresh references for the same node.
func canonical(sel chain.Selection, ref chain.NodeRef) chain.NodeRef {
	for _, n := range sel.Nodes() {
		if n.ID() == ref.ID() {
			return n
		}
	}
	return ref
}

func isLoop(sel chain.Selection, comp []chain.NodeRef) bool {
	for _, n := range comp {
		if len(sel.Neighbours(n)) != 2 {
			return false
		}
	}
	return len(comp) >= 3
}

// loopOrder walks a loop, starting at its first node.
func loopOrder(sel chain.Selection, comp []chain.NodeRef) []chain.NodeRef {
	order := []chain.NodeRef{comp[0]}
	prev, cur := comp[0], comp[0]
	for len(order) < len(comp) {
		var next chain.NodeRef
		for _, nb := range sel.Neighbours(cur) {
			if nb.ID() != prev.ID() || cur == prev {
				next = canonical(sel, nb)
				break
			}
		}
		if next == nil || next.ID() == comp[0].ID() {
			break
		}
		order = append(order, next)
		prev, cur = cur, next
	}
	return order
}
