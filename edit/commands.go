package edit

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/arcfit"
	"github.com/npillmayer/arcfit/chain"
	"github.com/npillmayer/arcfit/space"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Discrete commands work on a selection outside of gestures. Each one fits
// a fresh model to the selection, decides, and then asks the client graph to
// perform the mutation.

// models holds the model fitted to a selection for a discrete command.
// Exactly one of pinned and free is set for selections of three or more
// nodes; for smaller ones both are nil.
type models struct {
	pinned *PinnedArcModel
	free   *FreeCircleModel
}

func (s *Session) fit(sel chain.Selection) (models, error) {
	if sel.Len() <= 2 {
		return models{}, nil
	}
	ordered, err := chain.Detect(sel.Nodes())
	if err == nil {
		m := NewPinnedArcModel(NewChain[ArcParam](ordered), s.settings)
		m.Init(s.up)
		return models{pinned: m}, nil
	}
	if !errors.Is(err, chain.ErrInvalidTopology) {
		return models{}, err
	}
	m := NewFreeCircleModel(NewChain[CircleParam](sel.Nodes()))
	m.Init(s.up)
	return models{free: m}, nil
}

// segment is a connection between two selected nodes, with the place where
// it would be split.
type segment struct {
	a, b        chain.NodeRef
	length      float64
	pos         r3.Vec
	orientation quat.Number
}

// SplitLongest inserts a new node into the longest connection between
// selected nodes. Lengths are measured along the fitted arc or circle. The
// new node is returned.
//
// Without any connection ErrNoConnection is returned; if the longest
// connection is too short to hold another node, ErrNoRoom.
func (s *Session) SplitLongest(selection []chain.NodeRef) (chain.NodeRef, error) {
	if s.active != nil {
		return nil, ErrGestureActive
	}
	sel := chain.NewSelection(selection)
	ms, err := s.fit(sel)
	if err != nil {
		return nil, err
	}
	var seg *segment
	switch {
	case ms.pinned != nil:
		seg = longestOnArc(ms.pinned)
	case ms.free != nil:
		seg = longestOnCircle(ms.free, sel)
	default:
		seg = longestStraight(sel)
	}
	if seg == nil {
		return nil, ErrNoConnection
	}
	if minDist := s.settings.Edit.MinimumConnectionDistance; seg.length < 2*minDist {
		return nil, fmt.Errorf("%w: longest connection is %.4g, need %.4g", ErrNoRoom,
			seg.length, 2*minDist)
	}
	before := []NodeState{stateOf(seg.a), stateOf(seg.b)}
	n, err := s.graph.SplitConnection(seg.a, seg.b, seg.pos, seg.orientation)
	if err != nil {
		return nil, fmt.Errorf("split connection: %w", err)
	}
	s.record("split connection", before, []NodeState{stateOf(seg.a), stateOf(n), stateOf(seg.b)})
	tracer().Infof("split connection of length %.4g at %v", seg.length, seg.pos)
	return n, nil
}

func longestOnArc(m *PinnedArcModel) *segment {
	arc := m.Arc()
	length := arc.Length()
	c := m.Chain()
	var best *segment
	for i := 0; i+1 < c.Len(); i++ {
		a, b := c.Node(i), c.Node(i+1)
		l := (b.Param.Theta - a.Param.Theta) * length
		if best == nil || l > best.length {
			mid := (a.Param.Theta + b.Param.Theta) / 2
			best = &segment{
				a: a.Ref, b: b.Ref, length: l,
				pos:         arc.PointAtTheta(mid),
				orientation: space.Compose(arc.OrientationAt(mid), a.UpOffset),
			}
		}
	}
	return best
}

func longestOnCircle(m *FreeCircleModel, sel chain.Selection) *segment {
	pc := m.Circle()
	c := m.Chain()
	var best *segment
	for i, a := range c.Nodes() {
		for _, nb := range sel.Neighbours(a.Ref) {
			j := c.Index(nb)
			if j <= i {
				continue // each connection once
			}
			b := c.Node(j)
			delta := arcfit.WrapAngle(b.Param.Angle-a.Param.Angle, -math.Pi)
			l := math.Abs(delta) * m.Radius()
			if best == nil || l > best.length {
				mid := a.Param.Angle + delta/2
				best = &segment{
					a: a.Ref, b: b.Ref, length: l,
					pos:         pc.PointAt(mid),
					orientation: space.Compose(pc.TangentOrientation(mid, 1), a.UpOffset),
				}
			}
		}
	}
	return best
}

func longestStraight(sel chain.Selection) *segment {
	nodes := sel.Nodes()
	if len(nodes) != 2 || len(sel.Neighbours(nodes[0])) == 0 {
		return nil
	}
	a, b := nodes[0], nodes[1]
	return &segment{
		a: a, b: b,
		length:      space.Distance(a.Position(), b.Position()),
		pos:         space.Midpoint(a.Position(), b.Position()),
		orientation: space.LookRotation(r3.Sub(b.Position(), a.Position()), space.Up(a.Orientation())),
	}
}

// RemoveShortest removes the selected node which contributes the least arc
// length, i.e. whose neighbours are closest to each other along the fitted
// arc or circle. Endpoints of a chain are never removed.
func (s *Session) RemoveShortest(selection []chain.NodeRef) error {
	if s.active != nil {
		return ErrGestureActive
	}
	sel := chain.NewSelection(selection)
	ms, err := s.fit(sel)
	if err != nil {
		return err
	}
	var victim chain.NodeRef
	switch {
	case ms.pinned != nil:
		victim = shortestOnArc(ms.pinned)
	case ms.free != nil:
		victim = shortestOnCircle(ms.free, sel)
	}
	if victim == nil {
		return ErrNoRemovableNode
	}
	before := statesOf(sel.Nodes())
	if err := s.graph.MergeNode(victim); err != nil {
		return fmt.Errorf("%w: %w", ErrNoRemovableNode, err)
	}
	var after []NodeState
	for _, st := range before {
		if st.Node.ID() != victim.ID() {
			after = append(after, st)
		}
	}
	s.record("remove node", before, after)
	tracer().Infof("removed node %s", victim.ID())
	return nil
}

func shortestOnArc(m *PinnedArcModel) chain.NodeRef {
	c := m.Chain()
	var victim chain.NodeRef
	shortest := math.Inf(1)
	for k := 1; k+1 < c.Len(); k++ {
		span := c.Node(k+1).Param.Theta - c.Node(k-1).Param.Theta
		if span < shortest {
			shortest, victim = span, c.Node(k).Ref
		}
	}
	return victim
}

func shortestOnCircle(m *FreeCircleModel, sel chain.Selection) chain.NodeRef {
	c := m.Chain()
	var victim chain.NodeRef
	shortest := math.Inf(1)
	for _, node := range c.Nodes() {
		nbs := sel.Neighbours(node.Ref)
		if len(nbs) != 2 {
			continue
		}
		span := 0.0
		for _, nb := range nbs {
			a := c.Node(c.Index(nb)).Param.Angle
			span += math.Abs(arcfit.WrapAngle(a-node.Param.Angle, -math.Pi))
		}
		if span < shortest {
			shortest, victim = span, node.Ref
		}
	}
	return victim
}

// EqualizeSpacing spaces the selected nodes evenly along the fitted arc or
// circle and commits the result. Selections of two nodes or less are left
// alone.
func (s *Session) EqualizeSpacing(selection []chain.NodeRef) error {
	if s.active != nil {
		return ErrGestureActive
	}
	sel := chain.NewSelection(selection)
	ms, err := s.fit(sel)
	if err != nil {
		return err
	}
	var before, after []NodeState
	switch {
	case ms.pinned != nil:
		ms.pinned.EqualizeSpacing()
		ms.pinned.Apply()
		before, after = ms.pinned.Chain().Commit()
	case ms.free != nil:
		ms.free.EqualizeSpacing()
		ms.free.Apply()
		before, after = ms.free.Chain().Commit()
	default:
		return nil
	}
	s.record("equalize spacing", before, after)
	return nil
}

func stateOf(n chain.NodeRef) NodeState {
	return NodeState{Node: n, Position: n.Position(), Orientation: n.Orientation()}
}

func statesOf(nodes []chain.NodeRef) []NodeState {
	states := make([]NodeState, len(nodes))
	for i, n := range nodes {
		states[i] = stateOf(n)
	}
	return states
}
