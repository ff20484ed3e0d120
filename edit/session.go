package edit

import (
	"errors"
	"fmt"

	"github.com/npillmayer/arcfit/chain"
	"github.com/npillmayer/arcfit/config"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mode is the editing mode of a gesture.
type Mode int8

// Editing modes, chosen once at the start of a gesture.
const (
	NoMode Mode = iota
	TranslateMode
	PinnedArcMode
	FreeCircleMode
)

func (m Mode) String() string {
	switch m {
	case TranslateMode:
		return "translate"
	case PinnedArcMode:
		return "pinned-arc"
	case FreeCircleMode:
		return "free-circle"
	}
	return "none"
}

// Session runs one gesture at a time on the nodes of a client graph:
// Start, any number of Updates, then Finish or Cancel.
//
// A Session is not safe for concurrent use.
type Session struct {
	settings config.Settings
	graph    chain.Graph
	history  HistoryRecorder
	up       r3.Vec
	active   gesture
}

// gesture is a running gesture in one of the editing modes.
type gesture interface {
	mode() Mode
	update(pos r3.Vec) error
	commit() (before, after []NodeState)
}

// NewSession creates a session. history may be nil.
func NewSession(settings config.Settings, graph chain.Graph, history HistoryRecorder) *Session {
	return &Session{
		settings: settings,
		graph:    graph,
		history:  history,
		up:       settings.UpHint(),
	}
}

// SetUp sets the up hint for plane estimation, e.g. the camera's up vector.
func (s *Session) SetUp(up r3.Vec) {
	s.up = up
}

// Active is a predicate: is a gesture running?
func (s *Session) Active() bool {
	return s.active != nil
}

// Mode is the mode of the running gesture, or NoMode.
func (s *Session) Mode() Mode {
	if s.active == nil {
		return NoMode
	}
	return s.active.mode()
}

// Start begins a gesture on selection, dragging clicked. The mode is chosen
// from the topology of the selection.
func (s *Session) Start(selection []chain.NodeRef, clicked chain.NodeRef) (Mode, error) {
	if s.active != nil {
		return NoMode, ErrGestureActive
	}
	sel := chain.NewSelection(selection)
	if clicked == nil || !sel.Contains(clicked) {
		return NoMode, ErrNotSelected
	}
	g, err := s.prepare(sel, clicked)
	if err != nil {
		return NoMode, err
	}
	s.active = g
	tracer().Infof("gesture started in %s mode on %d nodes", g.mode(), sel.Len())
	return g.mode(), nil
}

func (s *Session) prepare(sel chain.Selection, clicked chain.NodeRef) (gesture, error) {
	if sel.Len() <= 2 {
		c := NewChain[TranslateParam](sel.Nodes())
		return &translateGesture{chain: c, clicked: c.Index(clicked)}, nil
	}
	ordered, err := chain.Detect(sel.Nodes())
	if err == nil {
		m := NewPinnedArcModel(NewChain[ArcParam](ordered), s.settings)
		m.Init(s.up)
		return &pinnedGesture{model: m, clicked: m.Chain().Index(clicked)}, nil
	}
	if !errors.Is(err, chain.ErrInvalidTopology) {
		return nil, err
	}
	tracer().Debugf("selection is not a chain: %v", err)
	m := NewFreeCircleModel(NewChain[CircleParam](sel.Nodes()))
	m.Init(s.up)
	k := m.Chain().Index(clicked)
	m.BeginDrag(k)
	return &freeGesture{model: m}, nil
}

// Update moves the clicked node of the running gesture to pos. A failing
// update (ErrNoRoom) leaves the gesture running and its state unchanged.
func (s *Session) Update(pos r3.Vec) error {
	if s.active == nil {
		return ErrNoGesture
	}
	return s.active.update(pos)
}

// Finish writes the gesture's result to the client nodes and reports it to
// the history recorder.
func (s *Session) Finish() error {
	if s.active == nil {
		return ErrNoGesture
	}
	g := s.active
	s.active = nil
	before, after := g.commit()
	s.record(fmt.Sprintf("%s drag", g.mode()), before, after)
	tracer().Infof("gesture finished, %d nodes committed", len(after))
	return nil
}

// Cancel drops the running gesture. Client nodes are not touched.
func (s *Session) Cancel() {
	if s.active != nil {
		tracer().Infof("gesture cancelled")
	}
	s.active = nil
}

func (s *Session) record(label string, before, after []NodeState) {
	if s.history != nil {
		s.history.Record(label, before, after)
	}
}

// --- Gestures --------------------------------------------------------------

type translateGesture struct {
	chain   *Chain[TranslateParam]
	clicked int
}

func (g *translateGesture) mode() Mode { return TranslateMode }

func (g *translateGesture) update(pos r3.Vec) error {
	delta := r3.Sub(pos, g.chain.before[g.clicked].Position)
	for i, node := range g.chain.Nodes() {
		node.Position = r3.Add(g.chain.before[i].Position, delta)
	}
	return nil
}

func (g *translateGesture) commit() ([]NodeState, []NodeState) { return g.chain.Commit() }

type pinnedGesture struct {
	model   *PinnedArcModel
	clicked int
}

func (g *pinnedGesture) mode() Mode { return PinnedArcMode }

func (g *pinnedGesture) update(pos r3.Vec) error {
	if g.model.Chain().IsEndpoint(g.clicked) {
		g.model.DragEndpoint(g.clicked, pos)
	} else if err := g.model.DragMiddle(g.clicked, pos); err != nil {
		return err
	}
	g.model.Apply()
	return nil
}

func (g *pinnedGesture) commit() ([]NodeState, []NodeState) { return g.model.Chain().Commit() }

type freeGesture struct {
	model *FreeCircleModel
}

func (g *freeGesture) mode() Mode { return FreeCircleMode }

func (g *freeGesture) update(pos r3.Vec) error {
	g.model.Drag(pos)
	g.model.Apply()
	return nil
}

func (g *freeGesture) commit() ([]NodeState, []NodeState) { return g.model.Chain().Commit() }
