/*
Package chain holds the contracts of externally owned nodes and classifies a
selection of nodes: either an open, branch-free chain between two endpoints,
or something else (junction, cycle, disconnected parts).

Nodes, their connections and all mutation of the node graph belong to the
client. This package only reads neighbours.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package chain

import (
	"github.com/google/uuid"
	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer writes to trace with key 'arcfit.chain'
func tracer() tracing.Trace {
	return tracing.Select("arcfit.chain")
}

// NodeRef is a reference to a node owned by the client. Identity is
// given by ID.
type NodeRef interface {
	ID() uuid.UUID
	Position() r3.Vec
	SetPosition(r3.Vec)
	Orientation() quat.Number
	SetOrientation(quat.Number)
	Neighbours() []NodeRef
}

// Graph is the mutation interface of the client's node graph.
type Graph interface {
	// SplitConnection inserts a new node at pos into the connection between
	// a and b and returns it.
	SplitConnection(a, b NodeRef, pos r3.Vec, orientation quat.Number) (NodeRef, error)
	// MergeNode removes n and connects its two neighbours directly.
	MergeNode(n NodeRef) error
}

// Selection is a set of selected nodes.
type Selection struct {
	nodes []NodeRef
	index map[uuid.UUID]int
}

// NewSelection creates a selection. Duplicates are dropped; the order of
// first appearance is kept.
func NewSelection(nodes []NodeRef) Selection {
	sel := Selection{index: make(map[uuid.UUID]int, len(nodes))}
	for _, n := range nodes {
		if _, dup := sel.index[n.ID()]; dup {
			continue
		}
		sel.index[n.ID()] = len(sel.nodes)
		sel.nodes = append(sel.nodes, n)
	}
	return sel
}

// Len is the number of selected nodes.
func (sel Selection) Len() int {
	return len(sel.nodes)
}

// Nodes returns the selected nodes.
func (sel Selection) Nodes() []NodeRef {
	return sel.nodes
}

// Contains is a predicate: is n selected?
func (sel Selection) Contains(n NodeRef) bool {
	_, ok := sel.index[n.ID()]
	return ok
}

// Neighbours returns the selected neighbours of n.
func (sel Selection) Neighbours(n NodeRef) []NodeRef {
	var nb []NodeRef
	for _, m := range n.Neighbours() {
		if sel.Contains(m) {
			nb = append(nb, m)
		}
	}
	return nb
}

// Positions collects the positions of nodes.
func Positions(nodes []NodeRef) []r3.Vec {
	pos := make([]r3.Vec, len(nodes))
	for i, n := range nodes {
		pos[i] = n.Position()
	}
	return pos
}
