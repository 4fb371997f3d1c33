package viz

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/katalvlaran/lvlath/core"
)

// NodeState tags a graph node.
type NodeState string

const (
	NodeUnvisited NodeState = "unvisited"
	NodeVisiting  NodeState = "visiting"
	NodeVisited   NodeState = "visited"
	NodePath      NodeState = "path"
	NodeStart     NodeState = "start"
	NodeEnd       NodeState = "end"
)

// EdgeState tags a graph edge.
type EdgeState string

const (
	EdgeUnvisited EdgeState = "unvisited"
	EdgeVisiting  EdgeState = "visiting"
	EdgeVisited   EdgeState = "visited"
	EdgePath      EdgeState = "path"
)

// Node is a graph vertex with its layout position and search annotations.
type Node struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	State    NodeState `json:"state"`
	Distance int       `json:"distance"`
	Parent   string    `json:"parent,omitempty"`
}

// Edge connects two nodes.
type Edge struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Weight   int       `json:"weight"`
	State    EdgeState `json:"state"`
	Directed bool      `json:"directed,omitempty"`
}

// Graph is a small drawable graph.
type Graph struct {
	Nodes        []Node   `json:"nodes"`
	Edges        []Edge   `json:"edges"`
	Directed     bool     `json:"directed"`
	Start        string   `json:"start,omitempty"`
	End          string   `json:"end,omitempty"`
	VisitedOrder []string `json:"visitedOrder"`
	PathNodes    []string `json:"pathNodes"`
}

// Clone returns a deep copy.
func (g Graph) Clone() Graph {
	out := g
	out.Nodes = slices.Clone(g.Nodes)
	out.Edges = slices.Clone(g.Edges)
	out.VisitedOrder = slices.Clone(g.VisitedOrder)
	out.PathNodes = slices.Clone(g.PathNodes)
	return out
}

// Node returns a pointer to the node with id, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// HasNode reports whether a node with id exists.
func (g Graph) HasNode(id string) bool {
	return slices.ContainsFunc(g.Nodes, func(n Node) bool { return n.ID == id })
}

// EdgeBetween returns the edge joining a and b, honouring direction for
// directed edges.
func (g *Graph) EdgeBetween(a, b string) *Edge {
	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Source == a && e.Target == b {
			return e
		}
		if !e.Directed && !g.Directed && e.Source == b && e.Target == a {
			return e
		}
	}
	return nil
}

// SetNodeState tags the node with id, leaving start and end markers
// untouched unless state is NodePath.
func (g *Graph) SetNodeState(id string, state NodeState) {
	n := g.Node(id)
	if n == nil {
		return
	}
	if (id == g.Start || id == g.End) && state != NodePath {
		return
	}
	n.State = state
}

// SetEdgeState tags the edge between a and b.
func (g *Graph) SetEdgeState(a, b string, state EdgeState) {
	if e := g.EdgeBetween(a, b); e != nil {
		e.State = state
	}
}

// ResetVisualization clears search annotations and re-marks the endpoints.
func (g *Graph) ResetVisualization() {
	for i := range g.Nodes {
		g.Nodes[i].State = NodeUnvisited
		g.Nodes[i].Distance = Unreached
		g.Nodes[i].Parent = ""
	}
	for i := range g.Edges {
		g.Edges[i].State = EdgeUnvisited
	}
	g.VisitedOrder = nil
	g.PathNodes = nil
	if n := g.Node(g.Start); n != nil {
		n.State = NodeStart
	}
	if n := g.Node(g.End); n != nil {
		n.State = NodeEnd
	}
}

// ToCore builds an lvlath graph with the same topology. Weighted graphs carry
// edge weights; unweighted graphs are what breadth-first search accepts.
func (g Graph) ToCore(weighted bool) (*core.Graph, error) {
	opts := []core.GraphOption{core.WithDirected(g.Directed)}
	if weighted {
		opts = append(opts, core.WithWeighted())
	}
	cg := core.NewGraph(opts...)
	for _, n := range g.Nodes {
		if err := cg.AddVertex(n.ID); err != nil {
			return nil, fmt.Errorf("add vertex %s: %w", n.ID, err)
		}
	}
	for _, e := range g.Edges {
		var w int64
		if weighted {
			w = int64(e.Weight)
		}
		if _, err := cg.AddEdge(e.Source, e.Target, w); err != nil {
			return nil, fmt.Errorf("add edge %s: %w", e.ID, err)
		}
	}
	return cg, nil
}

// GraphPresets lists the built-in graph layouts.
var GraphPresets = []string{"simple", "complex", "tree", "grid", "dag"}

// PresetGraph returns one of the built-in graphs with its default endpoints.
func PresetGraph(name string) (Graph, bool) {
	var g Graph
	switch name {
	case "simple", "":
		g = Graph{
			Nodes: nodes(
				"A", 100, 150, "B", 250, 80, "C", 250, 220,
				"D", 400, 80, "E", 400, 220, "F", 550, 150,
			),
			Edges: edges(false,
				"A", "B", 4, "A", "C", 2, "B", "C", 1, "B", "D", 5,
				"C", "E", 3, "D", "E", 1, "D", "F", 3, "E", "F", 2,
			),
		}
	case "complex":
		g = Graph{
			Nodes: nodes(
				"A", 100, 200, "B", 200, 100, "C", 200, 300, "D", 320, 50,
				"E", 320, 180, "F", 320, 310, "G", 440, 100, "H", 440, 250,
				"I", 560, 180, "J", 650, 180,
			),
			Edges: edges(false,
				"A", "B", 3, "A", "C", 5, "B", "D", 2, "B", "E", 4, "C", "E", 1,
				"C", "F", 6, "D", "G", 3, "E", "G", 2, "E", "H", 5, "F", "H", 4,
				"G", "I", 3, "H", "I", 2, "I", "J", 1, "D", "E", 7, "G", "H", 4,
			),
		}
	case "tree":
		g = Graph{
			Nodes: nodes(
				"A", 350, 50, "B", 200, 150, "C", 500, 150, "D", 125, 250,
				"E", 275, 250, "F", 425, 250, "G", 575, 250,
			),
			Edges: edges(false,
				"A", "B", 3, "A", "C", 2, "B", "D", 4, "B", "E", 1, "C", "F", 5, "C", "G", 3,
			),
		}
	case "grid":
		g = latticeGraph(3, 150)
	case "dag":
		g = Graph{
			Directed: true,
			Nodes: nodes(
				"A", 100, 200, "B", 220, 100, "C", 220, 300, "D", 380, 100,
				"E", 380, 200, "F", 380, 300, "G", 540, 200,
			),
			Edges: edges(true,
				"A", "B", 2, "A", "C", 3, "B", "D", 1, "B", "E", 4, "C", "E", 2,
				"C", "F", 5, "D", "G", 3, "E", "G", 1, "F", "G", 2,
			),
		}
	default:
		return Graph{}, false
	}
	g.Start = g.Nodes[0].ID
	g.End = g.Nodes[len(g.Nodes)-1].ID
	g.ResetVisualization()
	return g, true
}

// RandomGraph lays n nodes on a circle and joins each to one or two random
// others with weights in [1, 9].
func RandomGraph(rng *rand.Rand, n int) Graph {
	const cx, cy, radius = 350.0, 200.0, 150.0
	g := Graph{}
	for i := range n {
		angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		id := nodeLabel(i)
		g.Nodes = append(g.Nodes, Node{
			ID: id, Label: id,
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	if n > 1 {
		for i := range n {
			for range 1 + rng.IntN(2) {
				j := (i + 1 + rng.IntN(n-1)) % n
				a, b := g.Nodes[i].ID, g.Nodes[j].ID
				if g.EdgeBetween(a, b) != nil || g.EdgeBetween(b, a) != nil {
					continue
				}
				g.Edges = append(g.Edges, Edge{
					ID: fmt.Sprintf("e%d", len(g.Edges)+1), Source: a, Target: b, Weight: 1 + rng.IntN(9),
				})
			}
		}
	}
	if n > 0 {
		g.Start = g.Nodes[0].ID
		g.End = g.Nodes[n-1].ID
	}
	g.ResetVisualization()
	return g
}

// latticeGraph builds a size×size lattice with deterministic weights.
func latticeGraph(size int, spacing float64) Graph {
	g := Graph{}
	for row := range size {
		for col := range size {
			id := nodeLabel(row*size + col)
			g.Nodes = append(g.Nodes, Node{
				ID: id, Label: id,
				X: 200 + float64(col)*spacing,
				Y: 80 + float64(row)*spacing,
			})
		}
	}
	for row := range size {
		for col := range size - 1 {
			idx := row*size + col
			g.Edges = append(g.Edges, Edge{
				ID: fmt.Sprintf("eh%d", idx), Source: nodeLabel(idx), Target: nodeLabel(idx + 1),
				Weight: idx%5 + 1,
			})
		}
	}
	for row := range size - 1 {
		for col := range size {
			idx := row*size + col
			g.Edges = append(g.Edges, Edge{
				ID: fmt.Sprintf("ev%d", idx), Source: nodeLabel(idx), Target: nodeLabel(idx + size),
				Weight: (idx*3)%5 + 1,
			})
		}
	}
	return g
}

func nodeLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("N%d", i)
}

// nodes takes (id, x, y) triples.
func nodes(spec ...any) []Node {
	out := make([]Node, 0, len(spec)/3)
	for i := 0; i+2 < len(spec); i += 3 {
		id := spec[i].(string)
		out = append(out, Node{ID: id, Label: id, X: float64(spec[i+1].(int)), Y: float64(spec[i+2].(int))})
	}
	return out
}

// edges takes (source, target, weight) triples and numbers them e1, e2, ...
func edges(directed bool, spec ...any) []Edge {
	out := make([]Edge, 0, len(spec)/3)
	for i := 0; i+2 < len(spec); i += 3 {
		out = append(out, Edge{
			ID:       fmt.Sprintf("e%d", len(out)+1),
			Source:   spec[i].(string),
			Target:   spec[i+1].(string),
			Weight:   spec[i+2].(int),
			Directed: directed,
		})
	}
	return out
}
