package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/npillmayer/arcfit/chain"
	"github.com/npillmayer/arcfit/memgraph"
	"github.com/npillmayer/arcfit/space"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// sceneFile is the YAML layout of a scene.
//
//	nodes:
//	  - id: a
//	    pos: [0, 0, 0]
//	    neighbours: [b]
//	selection: [a, b, c]
//
// Connections need only be listed at one of their nodes. Without a
// selection, all nodes are selected.
type sceneFile struct {
	Nodes     []sceneNode `yaml:"nodes"`
	Selection []string    `yaml:"selection,omitempty"`
}

type sceneNode struct {
	ID          string    `yaml:"id"`
	Pos         []float64 `yaml:"pos"`
	Orientation []float64 `yaml:"orientation,omitempty"` // w, x, y, z
	Neighbours  []string  `yaml:"neighbours,omitempty"`
}

// scene is a loaded scene.
type scene struct {
	graph     *memgraph.Graph
	labels    map[uuid.UUID]string
	byLabel   map[string]*memgraph.Node
	selection []chain.NodeRef
}

// labelNamespace derives stable node IDs from scene labels.
var labelNamespace = uuid.MustParse("6f1f6a2e-3b5e-4c1e-9a57-0c4f3f0e5d21")

func loadScene(path string) (*scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readScene(f)
}

func readScene(r io.Reader) (*scene, error) {
	var sf sceneFile
	if err := yaml.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	sc := &scene{
		graph:   memgraph.New(),
		labels:  make(map[uuid.UUID]string),
		byLabel: make(map[string]*memgraph.Node),
	}
	for _, n := range sf.Nodes {
		if _, dup := sc.byLabel[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node %q", n.ID)
		}
		pos, err := vec(n.Pos)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		id := uuid.NewSHA1(labelNamespace, []byte(n.ID))
		node := sc.graph.AddWithID(id, pos)
		if len(n.Orientation) == 4 {
			o := n.Orientation
			node.SetOrientation(space.Normalize(quat.Number{Real: o[0], Imag: o[1], Jmag: o[2], Kmag: o[3]}))
		}
		sc.labels[id] = n.ID
		sc.byLabel[n.ID] = node
	}
	for _, n := range sf.Nodes {
		for _, nb := range n.Neighbours {
			m, ok := sc.byLabel[nb]
			if !ok {
				return nil, fmt.Errorf("node %q: unknown neighbour %q", n.ID, nb)
			}
			sc.graph.Connect(sc.byLabel[n.ID], m)
		}
	}
	if len(sf.Selection) == 0 {
		sc.selection = sc.graph.Refs()
	}
	for _, label := range sf.Selection {
		n, ok := sc.byLabel[label]
		if !ok {
			return nil, fmt.Errorf("unknown selected node %q", label)
		}
		sc.selection = append(sc.selection, n)
	}
	return sc, nil
}

func (sc *scene) node(label string) (*memgraph.Node, error) {
	n, ok := sc.byLabel[label]
	if !ok {
		return nil, fmt.Errorf("unknown node %q", label)
	}
	return n, nil
}

func (sc *scene) label(ref chain.NodeRef) string {
	if l, ok := sc.labels[ref.ID()]; ok {
		return l
	}
	return ref.ID().String()[:8]
}

// write prints the scene in the layout it was read in. Nodes created by
// commands are labelled by a prefix of their ID.
func (sc *scene) write(w io.Writer) error {
	var sf sceneFile
	for _, n := range sc.graph.Nodes() {
		o := n.Orientation()
		sn := sceneNode{
			ID:          sc.label(n),
			Pos:         []float64{round(n.Position().X), round(n.Position().Y), round(n.Position().Z)},
			Orientation: []float64{round(o.Real), round(o.Imag), round(o.Jmag), round(o.Kmag)},
		}
		for _, nb := range n.Neighbours() {
			sn.Neighbours = append(sn.Neighbours, sc.label(nb))
		}
		sf.Nodes = append(sf.Nodes, sn)
	}
	for _, n := range sc.selection {
		if _, ok := sc.graph.Node(n.ID()); ok {
			sf.Selection = append(sf.Selection, sc.label(n))
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sf); err != nil {
		return err
	}
	return enc.Close()
}

func round(x float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'g', 9, 64), 64)
	return r
}

func vec(c []float64) (r3.Vec, error) {
	if len(c) != 3 {
		return r3.Vec{}, fmt.Errorf("expected 3 coordinates, have %d", len(c))
	}
	return space.V(c[0], c[1], c[2]), nil
}

// parseVec parses "x,y,z".
func parseVec(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	c := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("coordinate %q: %w", p, err)
		}
		c[i] = f
	}
	return vec(c)
}
