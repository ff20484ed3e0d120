package edit

import (
	"github.com/npillmayer/arcfit/chain"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// NodeParam is the mode-specific parameter carried by an EditableNode.
type NodeParam interface {
	ArcParam | CircleParam | TranslateParam
}

// ArcParam is the normalized arc position of a node of a pinned arc.
// Theta may transiently leave [0,1].
type ArcParam struct {
	Theta float64
}

// CircleParam is the plane angle of a node on a free circle.
type CircleParam struct {
	Angle float64
}

// TranslateParam carries nothing; translated nodes move rigidly.
type TranslateParam struct{}

// EditableNode is a working copy of a client node.
type EditableNode[P NodeParam] struct {
	Ref         chain.NodeRef
	Position    r3.Vec
	Orientation quat.Number
	// UpOffset is the node's orientation relative to the tangent frame at
	// gesture start. It stays fixed while position and tangent change.
	UpOffset quat.Number
	Param    P
}

// NodeState is the state of a client node, reported to a HistoryRecorder.
type NodeState struct {
	Node        chain.NodeRef
	Position    r3.Vec
	Orientation quat.Number
}

// HistoryRecorder receives the node states before and after a finished
// operation, e.g. for undo.
type HistoryRecorder interface {
	Record(label string, before, after []NodeState)
}

// Chain is an ordered list of working copies. For a pinned arc the first and
// last node are the endpoints.
type Chain[P NodeParam] struct {
	nodes  []*EditableNode[P]
	before []NodeState
}

// NewChain snapshots refs.
func NewChain[P NodeParam](refs []chain.NodeRef) *Chain[P] {
	c := &Chain[P]{
		nodes:  make([]*EditableNode[P], len(refs)),
		before: make([]NodeState, len(refs)),
	}
	for i, ref := range refs {
		c.nodes[i] = &EditableNode[P]{
			Ref:         ref,
			Position:    ref.Position(),
			Orientation: ref.Orientation(),
		}
		c.before[i] = NodeState{Node: ref, Position: ref.Position(), Orientation: ref.Orientation()}
	}
	return c
}

// Len is the number of nodes.
func (c *Chain[P]) Len() int {
	return len(c.nodes)
}

// Node returns node i.
func (c *Chain[P]) Node(i int) *EditableNode[P] {
	return c.nodes[i]
}

// Nodes returns all nodes.
func (c *Chain[P]) Nodes() []*EditableNode[P] {
	return c.nodes
}

// First is the first node.
func (c *Chain[P]) First() *EditableNode[P] {
	return c.nodes[0]
}

// Last is the last node.
func (c *Chain[P]) Last() *EditableNode[P] {
	return c.nodes[len(c.nodes)-1]
}

// IsEndpoint is a predicate: is i the first or last index?
func (c *Chain[P]) IsEndpoint(i int) bool {
	return i == 0 || i == len(c.nodes)-1
}

// Index finds the index of ref, or -1.
func (c *Chain[P]) Index(ref chain.NodeRef) int {
	if ref == nil {
		return -1
	}
	for i, n := range c.nodes {
		if n.Ref.ID() == ref.ID() {
			return i
		}
	}
	return -1
}

// Refs returns the client nodes.
func (c *Chain[P]) Refs() []chain.NodeRef {
	refs := make([]chain.NodeRef, len(c.nodes))
	for i, n := range c.nodes {
		refs[i] = n.Ref
	}
	return refs
}

// Positions returns the working positions.
func (c *Chain[P]) Positions() []r3.Vec {
	pos := make([]r3.Vec, len(c.nodes))
	for i, n := range c.nodes {
		pos[i] = n.Position
	}
	return pos
}

// Before returns the node states captured at creation.
func (c *Chain[P]) Before() []NodeState {
	return append([]NodeState(nil), c.before...)
}

// States returns the current working states.
func (c *Chain[P]) States() []NodeState {
	states := make([]NodeState, len(c.nodes))
	for i, n := range c.nodes {
		states[i] = NodeState{Node: n.Ref, Position: n.Position, Orientation: n.Orientation}
	}
	return states
}

// Commit writes the working states back to the client nodes and returns the
// states before and after.
func (c *Chain[P]) Commit() (before, after []NodeState) {
	for _, n := range c.nodes {
		n.Ref.SetPosition(n.Position)
		n.Ref.SetOrientation(n.Orientation)
	}
	return c.Before(), c.States()
}
