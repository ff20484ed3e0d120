/*
Package memgraph is a small in-memory node graph. It implements the node
contracts of package chain and is used by tests and the command-line driver.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package memgraph

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/npillmayer/arcfit/chain"
	"github.com/npillmayer/arcfit/space"
	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer writes to trace with key 'arcfit.graph'
func tracer() tracing.Trace {
	return tracing.Select("arcfit.graph")
}

var (
	// ErrForeignNode indicates a node which does not belong to the graph.
	ErrForeignNode = errors.New("node does not belong to graph")
	// ErrNotConnected indicates two nodes without a connection.
	ErrNotConnected = errors.New("nodes are not connected")
	// ErrNotMergeable indicates a node without exactly two neighbours.
	ErrNotMergeable = errors.New("node must have exactly two neighbours")
)

// Graph is a set of nodes and their connections.
type Graph struct {
	nodes map[uuid.UUID]*Node
	order []uuid.UUID // insertion order
}

// Node is a node of a Graph.
type Node struct {
	id          uuid.UUID
	graph       *Graph
	position    r3.Vec
	orientation quat.Number
	neighbours  []*Node
}

var _ chain.NodeRef = (*Node)(nil)
var _ chain.Graph = (*Graph)(nil)

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[uuid.UUID]*Node)}
}

// Add creates a new node at pos.
func (g *Graph) Add(pos r3.Vec) *Node {
	return g.AddWithID(uuid.New(), pos)
}

// AddWithID creates a new node with a given identity.
func (g *Graph) AddWithID(id uuid.UUID, pos r3.Vec) *Node {
	n := &Node{id: id, graph: g, position: pos, orientation: space.Identity}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// Node finds a node by ID.
func (g *Graph) Node(id uuid.UUID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		if n, ok := g.nodes[id]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Refs returns all nodes as chain.NodeRef.
func (g *Graph) Refs() []chain.NodeRef {
	nodes := g.Nodes()
	refs := make([]chain.NodeRef, len(nodes))
	for i, n := range nodes {
		refs[i] = n
	}
	return refs
}

// Connect connects a and b. Connecting twice is a no-op.
func (g *Graph) Connect(a, b *Node) {
	if a == b || a.connected(b) {
		return
	}
	a.neighbours = append(a.neighbours, b)
	b.neighbours = append(b.neighbours, a)
}

// Disconnect removes the connection between a and b, if any.
func (g *Graph) Disconnect(a, b *Node) {
	a.neighbours = remove(a.neighbours, b)
	b.neighbours = remove(b.neighbours, a)
}

// Chain adds nodes at the given positions, connected in sequence.
func (g *Graph) Chain(positions ...r3.Vec) []*Node {
	nodes := make([]*Node, len(positions))
	for i, p := range positions {
		nodes[i] = g.Add(p)
		if i > 0 {
			g.Connect(nodes[i-1], nodes[i])
		}
	}
	return nodes
}

// SplitConnection inserts a new node at pos between a and b.
func (g *Graph) SplitConnection(a, b chain.NodeRef, pos r3.Vec, orientation quat.Number) (chain.NodeRef, error) {
	na, err := g.own(a)
	if err != nil {
		return nil, err
	}
	nb, err := g.own(b)
	if err != nil {
		return nil, err
	}
	if !na.connected(nb) {
		return nil, fmt.Errorf("%w: %s, %s", ErrNotConnected, a.ID(), b.ID())
	}
	g.Disconnect(na, nb)
	n := g.Add(pos)
	n.orientation = orientation
	g.Connect(na, n)
	g.Connect(n, nb)
	tracer().Debugf("split connection %s-%s at %v", a.ID(), b.ID(), pos)
	return n, nil
}

// MergeNode removes n, connecting its two neighbours.
func (g *Graph) MergeNode(ref chain.NodeRef) error {
	n, err := g.own(ref)
	if err != nil {
		return err
	}
	if len(n.neighbours) != 2 {
		return fmt.Errorf("%w: %s has %d", ErrNotMergeable, n.id, len(n.neighbours))
	}
	a, b := n.neighbours[0], n.neighbours[1]
	g.Disconnect(a, n)
	g.Disconnect(b, n)
	g.Connect(a, b)
	delete(g.nodes, n.id)
	tracer().Debugf("merged node %s", n.id)
	return nil
}

func (g *Graph) own(ref chain.NodeRef) (*Node, error) {
	n, ok := g.nodes[ref.ID()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrForeignNode, ref.ID())
	}
	return n, nil
}

// --- Node ------------------------------------------------------------------

// ID is the node's identity.
func (n *Node) ID() uuid.UUID { return n.id }

// Position of the node.
func (n *Node) Position() r3.Vec { return n.position }

// SetPosition moves the node.
func (n *Node) SetPosition(p r3.Vec) { n.position = p }

// Orientation of the node.
func (n *Node) Orientation() quat.Number { return n.orientation }

// SetOrientation rotates the node.
func (n *Node) SetOrientation(q quat.Number) { n.orientation = q }

// Neighbours returns the connected nodes.
func (n *Node) Neighbours() []chain.NodeRef {
	refs := make([]chain.NodeRef, len(n.neighbours))
	for i, m := range n.neighbours {
		refs[i] = m
	}
	return refs
}

func (n *Node) String() string {
	return fmt.Sprintf("node(%s @ %v)", n.id.String()[:8], n.position)
}

func (n *Node) connected(m *Node) bool {
	for _, x := range n.neighbours {
		if x == m {
			return true
		}
	}
	return false
}

func remove(nodes []*Node, n *Node) []*Node {
	for i, x := range nodes {
		if x == n {
			return append(nodes[:i], nodes[i+1:]...)
		}
	}
	return nodes
}
