package edit

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/arcfit"
	"github.com/npillmayer/arcfit/chain"
	"github.com/npillmayer/arcfit/config"
	"github.com/npillmayer/arcfit/memgraph"
	"github.com/npillmayer/arcfit/space"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func onCircle(center r3.Vec, r, deg float64) r3.Vec {
	a := deg * math.Pi / 180
	return r3.Add(center, space.V(r*math.Cos(a), r*math.Sin(a), 0))
}

func refs(nodes []*memgraph.Node) []chain.NodeRef {
	r := make([]chain.NodeRef, len(nodes))
	for i, n := range nodes {
		r[i] = n
	}
	return r
}

func assertVec(t *testing.T, want, got r3.Vec, eps float64, msg string) {
	t.Helper()
	if space.Distance(want, got) > eps {
		t.Errorf("%s: expected %v, got %v", msg, want, got)
	}
}

// semicircle of radius 10 from (10,0,0) to (-10,0,0), middles at 45°, 90°, 135°
func semicircle(g *memgraph.Graph) []*memgraph.Node {
	o := r3.Vec{}
	return g.Chain(onCircle(o, 10, 0), onCircle(o, 10, 45), onCircle(o, 10, 90),
		onCircle(o, 10, 135), onCircle(o, 10, 180))
}

type journal struct {
	labels []string
	before [][]NodeState
	after  [][]NodeState
}

func (j *journal) Record(label string, before, after []NodeState) {
	j.labels = append(j.labels, label)
	j.before = append(j.before, before)
	j.after = append(j.after, after)
}

// --- Pinned arc ------------------------------------------------------------

func TestPinnedArcBeforeInit(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	m := NewPinnedArcModel(NewChain[ArcParam](refs(semicircle(g))), config.Default())
	assert.Panics(t, func() { m.Params() })
	assert.Panics(t, func() { m.Apply() })
	assert.Panics(t, func() { _ = m.DragMiddle(2, r3.Vec{}) })
}

func TestPinnedArcInitSemicircle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	m := NewPinnedArcModel(NewChain[ArcParam](refs(semicircle(g))), config.Default())
	m.Init(space.WorldUp)
	arc := m.Arc()
	assert.InDelta(t, 10.0, arc.Circle.Radius, 1e-3)
	assert.InDelta(t, math.Pi, arc.ArcAngle, 1e-3)
	thetas := m.Thetas()
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		assert.InDelta(t, want[i], thetas[i], 1e-3, "theta %d", i)
	}
	// without a drag, Apply reproduces the nodes
	m.Apply()
	for i, node := range m.Chain().Nodes() {
		assertVec(t, node.Ref.Position(), node.Position, 1e-3, "position")
		assert.True(t, space.SameOrientation(space.Identity, node.Orientation, 1e-9),
			"orientation of node %d", i)
	}
	assert.Equal(t, m.Params(), m.StartParams())
}

func TestPinnedArcEndpointDragKeepsThetas(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	nodes := semicircle(g)
	m := NewPinnedArcModel(NewChain[ArcParam](refs(nodes)), config.Default())
	m.Init(space.WorldUp)
	before := m.Thetas()
	fraction := m.Params().RadiusFraction
	//
	m.DragEndpoint(4, space.V(-12, 1, 0))
	m.Apply()
	assert.Equal(t, before, m.Thetas())
	assert.Equal(t, fraction, m.Params().RadiusFraction)
	arc := m.Arc()
	center := arc.Center()
	r := arc.Circle.Radius
	for i, node := range m.Chain().Nodes() {
		assert.InDelta(t, r, space.Distance(center, node.Position), 1e-9, "node %d off the arc", i)
	}
	assertVec(t, space.V(-12, 1, 0), m.Chain().Last().Position, 1e-12, "endpoint")
	assert.NotEqual(t, nodes[2].Position(), m.Chain().Node(2).Position)
	// client nodes are untouched until commit
	assertVec(t, onCircle(r3.Vec{}, 10, 180), nodes[4].Position(), 1e-12, "client endpoint")
}

func TestPinnedArcDragMiddle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	m := NewPinnedArcModel(NewChain[ArcParam](refs(semicircle(g))), config.Default())
	m.Init(space.WorldUp)
	require.NoError(t, m.DragMiddle(2, space.V(0, 15, 0)))
	m.Apply()
	assertVec(t, space.V(0, 15, 0), m.Chain().Node(2).Position, 1e-6, "dragged node")
	assert.InDelta(t, 0.5, m.Thetas()[2], 1e-6)
	p := m.Params()
	assert.Equal(t, 1, p.Side)
	assert.Equal(t, "major", p.Arc.String())
	assert.InDelta(t, (15.0-125.0/30)/10, p.RadiusFraction, 1e-9)
	// dragging to the other side of the chord flips the bulge
	require.NoError(t, m.DragMiddle(2, space.V(0, -4, 0)))
	m.Apply()
	assertVec(t, space.V(0, -4, 0), m.Chain().Node(2).Position, 1e-6, "dragged node")
	for i := 1; i < 4; i++ {
		assert.Less(t, m.Chain().Node(i).Position.Y, 0.0, "node %d should bulge downwards", i)
	}
}

func TestPinnedArcDragKeepsSpacing(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	settings := config.Default()
	settings.Edit.MinimumConnectionDistance = 5
	g := memgraph.New()
	m := NewPinnedArcModel(NewChain[ArcParam](refs(semicircle(g))), settings)
	m.Init(space.WorldUp)
	targets := []struct {
		node int
		deg  float64
	}{{1, 80}, {1, 170}, {3, 10}, {2, 1}, {2, 179}}
	for _, target := range targets {
		require.NoError(t, m.DragMiddle(target.node, onCircle(r3.Vec{}, 10, target.deg)))
		length := m.Arc().Length()
		thetas := m.Thetas()
		for i := 1; i < len(thetas); i++ {
			assert.GreaterOrEqual(t, (thetas[i]-thetas[i-1])*length, 5-1e-9,
				"gap %d after dragging node %d to %g°", i, target.node, target.deg)
		}
	}
}

func TestPinnedArcNoRoom(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	settings := config.Default()
	settings.Edit.MinimumConnectionDistance = 10
	g := memgraph.New()
	m := NewPinnedArcModel(NewChain[ArcParam](refs(semicircle(g))), settings)
	m.Init(space.WorldUp)
	params, thetas := m.Params(), m.Thetas()
	err := m.DragMiddle(1, onCircle(r3.Vec{}, 10, 60))
	assert.True(t, errors.Is(err, ErrNoRoom), "got %v", err)
	assert.Equal(t, params, m.Params())
	assert.Equal(t, thetas, m.Thetas())
}

// --- Spacing ---------------------------------------------------------------

func TestRedistributeClamps(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	thetas := []float64{0, 0.25, 0.5, 0.75, 1}
	got, err := redistribute(thetas, 1, 0.9, 0.2)
	require.NoError(t, err)
	want := []float64{0, 0.4, 0.6, 0.8, 1}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
	assert.Equal(t, 0.25, thetas[1], "input must not be modified")
}

func TestRedistributeProportional(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	got, err := redistribute([]float64{0, 0.3, 0.5, 0.9, 1}, 2, 0.35, 0.1)
	require.NoError(t, err)
	want := []float64{0, 0.25, 0.35, 0.9, 1}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
	_, err = redistribute([]float64{0, 0.3, 0.5, 0.9, 1}, 2, 0.35, 0.3)
	assert.True(t, errors.Is(err, ErrNoRoom))
}

// --- Free circle -----------------------------------------------------------

func TestFreeCircleDrag(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	center := space.V(1, 2, 0)
	var nodes []*memgraph.Node
	for _, deg := range []float64{0, 90, 180, 250, 300} {
		nodes = append(nodes, g.Add(onCircle(center, 5, deg)))
	}
	m := NewFreeCircleModel(NewChain[CircleParam](refs(nodes)))
	m.Init(space.WorldUp)
	assert.InDelta(t, 5.0, m.Radius(), 1e-6)
	assertVec(t, center, m.Center(), 1e-6, "center")
	//
	m.BeginDrag(0)
	m.Drag(space.V(8, 2, 0))
	m.Apply()
	assertVec(t, space.V(2, 2, 0), m.Center(), 1e-6, "center")
	assert.InDelta(t, 6.0, m.Radius(), 1e-6)
	c := m.Chain()
	assertVec(t, space.V(8, 2, 0), c.Node(0).Position, 1e-6, "dragged node")
	assertVec(t, space.V(2, 8, 0), c.Node(1).Position, 1e-6, "node at 90°")
	assertVec(t, space.V(-4, 2, 0), c.Node(2).Position, 1e-6, "anchor node")
	for i, node := range c.Nodes() {
		assert.InDelta(t, 6.0, space.Distance(m.Center(), node.Position), 1e-9, "node %d", i)
	}
}

func TestFreeCircleEqualizeLoop(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	var nodes []*memgraph.Node
	for _, deg := range []float64{0, 30, 180, 270} {
		nodes = append(nodes, g.Add(onCircle(r3.Vec{}, 5, deg)))
	}
	for i := range nodes {
		g.Connect(nodes[i], nodes[(i+1)%len(nodes)])
	}
	s := NewSession(config.Default(), g, nil)
	require.NoError(t, s.EqualizeSpacing(refs(nodes)))
	for i := range nodes {
		d := space.Distance(nodes[i].Position(), nodes[(i+1)%len(nodes)].Position())
		assert.InDelta(t, 5*math.Sqrt2, d, 1e-6, "distance %d", i)
	}
	assertVec(t, space.V(5, 0, 0), nodes[0].Position(), 1e-6, "first node stays")
}

func TestFreeCircleEqualizeOpenChains(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	o := r3.Vec{}
	// two open chains on one circle: 0°-20°-30°-90° and 180°-200°-270°
	a := g.Chain(onCircle(o, 5, 0), onCircle(o, 5, 20), onCircle(o, 5, 30), onCircle(o, 5, 90))
	b := g.Chain(onCircle(o, 5, 180), onCircle(o, 5, 200), onCircle(o, 5, 270))
	m := NewFreeCircleModel(NewChain[CircleParam](refs(append(a, b...))))
	m.Init(space.WorldUp)
	before := make([]float64, 7)
	for i, node := range m.Chain().Nodes() {
		before[i] = node.Param.Angle
	}
	m.EqualizeSpacing()
	after := func(i int) float64 { return m.Chain().Node(i).Param.Angle }
	assert.Equal(t, before[0], after(0))
	assert.Equal(t, before[3], after(3))
	assert.Equal(t, before[4], after(4))
	assert.Equal(t, before[6], after(6))
	step := arcfit.WrapAngle(after(3)-after(0), -math.Pi) / 3
	assert.InDelta(t, math.Abs(step), math.Pi/6, 1e-6)
	assert.InDelta(t, after(0)+step, after(1), 1e-9)
	assert.InDelta(t, after(0)+2*step, after(2), 1e-9)
	assert.InDelta(t, math.Pi/4, math.Abs(after(5)-after(4)), 1e-6)
}

// --- Session ---------------------------------------------------------------

func TestSessionModes(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	nodes := semicircle(g)
	s := NewSession(config.Default(), g, nil)
	//
	mode, err := s.Start(refs(nodes[:2]), nodes[0])
	require.NoError(t, err)
	assert.Equal(t, TranslateMode, mode)
	s.Cancel()
	mode, err = s.Start(refs(nodes), nodes[2])
	require.NoError(t, err)
	assert.Equal(t, PinnedArcMode, mode)
	_, err = s.Start(refs(nodes), nodes[2])
	assert.True(t, errors.Is(err, ErrGestureActive))
	s.Cancel()
	lonely := g.Add(space.V(0, -10, 0))
	mode, err = s.Start(refs(append(nodes, lonely)), lonely)
	require.NoError(t, err)
	assert.Equal(t, FreeCircleMode, mode)
	s.Cancel()
	//
	_, err = s.Start(refs(nodes[:3]), lonely)
	assert.True(t, errors.Is(err, ErrNotSelected))
	assert.True(t, errors.Is(s.Update(r3.Vec{}), ErrNoGesture))
	assert.True(t, errors.Is(s.Finish(), ErrNoGesture))
	assert.Equal(t, NoMode, s.Mode())
}

func TestSessionFinishCommits(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	nodes := semicircle(g)
	j := &journal{}
	s := NewSession(config.Default(), g, j)
	_, err := s.Start(refs(nodes), nodes[2])
	require.NoError(t, err)
	require.NoError(t, s.Update(space.V(0, 15, 0)))
	assertVec(t, space.V(0, 10, 0), nodes[2].Position(), 1e-9, "uncommitted")
	require.NoError(t, s.Finish())
	assertVec(t, space.V(0, 15, 0), nodes[2].Position(), 1e-6, "committed")
	assert.False(t, s.Active())
	require.Len(t, j.labels, 1)
	assert.Len(t, j.before[0], 5)
	assert.Len(t, j.after[0], 5)
	for _, st := range j.before[0] {
		if st.Node.ID() == nodes[2].ID() {
			assertVec(t, space.V(0, 10, 0), st.Position, 1e-9, "history before")
		}
	}
}

func TestSessionCancelLeavesNodes(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	nodes := semicircle(g)
	j := &journal{}
	s := NewSession(config.Default(), g, j)
	_, err := s.Start(refs(nodes), nodes[0])
	require.NoError(t, err)
	require.NoError(t, s.Update(space.V(12, 3, 0)))
	s.Cancel()
	for i, n := range nodes {
		assertVec(t, onCircle(r3.Vec{}, 10, float64(45*i)), n.Position(), 1e-9, "node")
	}
	assert.Empty(t, j.labels)
}

func TestSessionTranslate(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	nodes := g.Chain(space.V(0, 0, 0), space.V(1, 0, 0))
	s := NewSession(config.Default(), g, nil)
	_, err := s.Start(refs(nodes), nodes[1])
	require.NoError(t, err)
	require.NoError(t, s.Update(space.V(1, 2, 3)))
	require.NoError(t, s.Finish())
	assertVec(t, space.V(0, 2, 3), nodes[0].Position(), 1e-12, "translated")
	assertVec(t, space.V(1, 2, 3), nodes[1].Position(), 1e-12, "translated")
}

func TestSessionNoRoomKeepsGesture(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	settings := config.Default()
	settings.Edit.MinimumConnectionDistance = 10
	g := memgraph.New()
	nodes := semicircle(g)
	s := NewSession(settings, g, nil)
	_, err := s.Start(refs(nodes), nodes[1])
	require.NoError(t, err)
	err = s.Update(onCircle(r3.Vec{}, 10, 60))
	assert.True(t, errors.Is(err, ErrNoRoom))
	assert.True(t, s.Active())
}

// --- Commands --------------------------------------------------------------

func unevenChain(g *memgraph.Graph) []*memgraph.Node {
	o := r3.Vec{}
	return g.Chain(onCircle(o, 10, 0), onCircle(o, 10, 30), onCircle(o, 10, 60), onCircle(o, 10, 180))
}

func TestSplitLongest(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	nodes := unevenChain(g)
	j := &journal{}
	s := NewSession(config.Default(), g, j)
	n, err := s.SplitLongest(refs(nodes))
	require.NoError(t, err)
	assertVec(t, onCircle(r3.Vec{}, 10, 120), n.Position(), 1e-3, "new node")
	assert.Len(t, g.Nodes(), 5)
	assert.Len(t, n.Neighbours(), 2)
	require.Len(t, j.after, 1)
	assert.Len(t, j.after[0], 3)
	//
	settings := config.Default()
	settings.Edit.MinimumConnectionDistance = 20
	s = NewSession(settings, g, nil)
	_, err = s.SplitLongest(refs(unevenChain(g)))
	assert.True(t, errors.Is(err, ErrNoRoom), "got %v", err)
	//
	lonely := g.Add(space.V(0, 0, 0))
	_, err = s.SplitLongest([]chain.NodeRef{lonely})
	assert.True(t, errors.Is(err, ErrNoConnection))
}

func TestRemoveShortest(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	nodes := unevenChain(g)
	j := &journal{}
	s := NewSession(config.Default(), g, j)
	require.NoError(t, s.RemoveShortest(refs(nodes)))
	_, ok := g.Node(nodes[1].ID())
	assert.False(t, ok, "node at 30° should be gone")
	assert.Len(t, nodes[0].Neighbours(), 1)
	assert.Equal(t, nodes[2].ID(), nodes[0].Neighbours()[0].ID())
	require.Len(t, j.after, 1)
	assert.Len(t, j.after[0], 3)
	//
	err := s.RemoveShortest(refs(nodes[2:]))
	assert.True(t, errors.Is(err, ErrNoRemovableNode))
}

func TestEqualizeChain(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := memgraph.New()
	o := r3.Vec{}
	nodes := g.Chain(onCircle(o, 10, 0), onCircle(o, 10, 20), onCircle(o, 10, 40),
		onCircle(o, 10, 150), onCircle(o, 10, 180))
	s := NewSession(config.Default(), g, nil)
	require.NoError(t, s.EqualizeSpacing(refs(nodes)))
	for i, n := range nodes {
		assertVec(t, onCircle(o, 10, float64(45*i)), n.Position(), 1e-3, "equalized node")
	}
}
