package chain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrTrivialSelection indicates a selection of two nodes or less, which
	// is moved by translation rather than by a circle fit.
	ErrTrivialSelection = errors.New("selection too small for a chain")
	// ErrInvalidTopology indicates a selection which is not an open chain.
	ErrInvalidTopology = errors.New("selection is not an open chain")
	// ErrNoInteriorNode: no node has exactly two selected neighbours.
	ErrNoInteriorNode = fmt.Errorf("%w: no interior node", ErrInvalidTopology)
	// ErrJunction: a node has more than one way to continue.
	ErrJunction = fmt.Errorf("%w: junction", ErrInvalidTopology)
	// ErrCycle: the selection closes into a loop.
	ErrCycle = fmt.Errorf("%w: cycle", ErrInvalidTopology)
	// ErrDisconnected: some selected nodes are not part of the chain.
	ErrDisconnected = fmt.Errorf("%w: disconnected", ErrInvalidTopology)
)

// Detect orders a selection as an open chain
//
//	[endpointA, middle..., endpointB]
//
// It starts at a node with exactly two selected neighbours and walks outward
// in both directions, each step following the single selected neighbour not
// walked yet, until a node without further selected neighbours is reached.
//
// A selection which is not an open chain results in an error wrapping
// ErrInvalidTopology. Selections of two nodes or less result in
// ErrTrivialSelection. These are classifications, clients are expected to
// switch to a different editing mode.
func Detect(selection []NodeRef) ([]NodeRef, error) {
	sel := NewSelection(selection)
	if sel.Len() <= 2 {
		return nil, ErrTrivialSelection
	}
	var seed NodeRef
	for _, n := range sel.Nodes() {
		if len(sel.Neighbours(n)) == 2 {
			seed = n
			break
		}
	}
	if seed == nil {
		return nil, ErrNoInteriorNode
	}
	visited := map[uuid.UUID]bool{seed.ID(): true}
	arms := sel.Neighbours(seed)
	armA, err := walk(sel, arms[0], visited)
	if err != nil {
		return nil, err
	}
	armB, err := walk(sel, arms[1], visited)
	if err != nil {
		return nil, err
	}
	if len(visited) != sel.Len() {
		return nil, fmt.Errorf("%w: %d of %d nodes reachable", ErrDisconnected,
			len(visited), sel.Len())
	}
	ordered := make([]NodeRef, 0, sel.Len())
	for i := len(armA) - 1; i >= 0; i-- {
		ordered = append(ordered, armA[i])
	}
	ordered = append(ordered, seed)
	ordered = append(ordered, armB...)
	tracer().Debugf("detected chain of %d nodes", len(ordered))
	return ordered, nil
}

func walk(sel Selection, start NodeRef, visited map[uuid.UUID]bool) ([]NodeRef, error) {
	var arm []NodeRef
	for n := start; n != nil; {
		if visited[n.ID()] {
			return nil, fmt.Errorf("%w: node %s reached twice", ErrCycle, n.ID())
		}
		visited[n.ID()] = true
		arm = append(arm, n)
		var next []NodeRef
		for _, m := range sel.Neighbours(n) {
			if !visited[m.ID()] {
				next = append(next, m)
			}
		}
		switch len(next) {
		case 0:
			n = nil // endpoint
		case 1:
			n = next[0]
		default:
			return nil, fmt.Errorf("%w at node %s", ErrJunction, n.ID())
		}
	}
	return arm, nil
}
