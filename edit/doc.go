/*
Package edit implements interactive reshaping of node selections onto circles
and circular arcs.

A gesture starts on a selection of nodes. Depending on the topology of the
selection one of three modes is chosen once:

  - translate: one or two nodes, moved rigidly
  - pinned arc: an open chain, reshaped onto an arc through its two endpoints
  - free circle: anything else with at least three nodes

During a gesture all work happens on snapshots of the nodes (EditableNode).
Node state owned by the client is touched only when the gesture finishes.
Cancelling a gesture discards the snapshots.

Parameter updates of the pinned arc model are whole-value replacements of
PinnedArcParams. A drag recomputes roll, radius and theta in sequence, and
a failing step leaves the previous snapshot in place.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package edit

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arcfit.edit'
func tracer() tracing.Trace {
	return tracing.Select("arcfit.edit")
}

var (
	// ErrNoRoom signals that nodes cannot keep their minimum distance.
	ErrNoRoom = errors.New("no room to maneuver")
	// ErrNoConnection signals that there is no connection to split.
	ErrNoConnection = errors.New("no connection to split")
	// ErrNoRemovableNode signals that no node may be removed.
	ErrNoRemovableNode = errors.New("no removable node")
	// ErrGestureActive signals a second gesture while one is running.
	ErrGestureActive = errors.New("gesture already active")
	// ErrNoGesture signals an update without a running gesture.
	ErrNoGesture = errors.New("no active gesture")
	// ErrNotSelected signals a clicked node which is not part of the selection.
	ErrNotSelected = errors.New("node is not selected")
)
