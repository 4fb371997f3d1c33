package procedures

import (
	"cmp"
	"slices"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/validate"
	"github.com/manav03panchal/stepwise/internal/viz"
)

// CounterTotalWeight accumulates the weight of a spanning tree.
const CounterTotalWeight = "totalWeight"

// DefaultRandomNodes is the size of a generated random graph.
const DefaultRandomNodes = 8

// GraphParams configures a graph input. Preset "random" generates Nodes
// nodes; any other name selects a built-in layout.
type GraphParams struct {
	Seeded `mapstructure:",squash"`
	Preset string `mapstructure:"preset"`
	Nodes  int    `mapstructure:"nodes"`
	Start  string `mapstructure:"start"`
	End    string `mapstructure:"end"`
}

func graphInput(p Params) (viz.Graph, error) {
	return presetInput(p, "simple")
}

// presetInput is graphInput with fallback as the preset when none is named.
func presetInput(p Params, fallback string) (viz.Graph, error) {
	var gp GraphParams
	if err := decode(p, &gp); err != nil {
		return viz.Graph{}, err
	}
	preset := validate.SanitizeID(gp.Preset)
	if preset == "" {
		preset = fallback
	}

	var g viz.Graph
	if preset == "random" {
		if gp.Nodes == 0 {
			gp.Nodes = DefaultRandomNodes
		}
		if err := validate.InRange("nodes", gp.Nodes, 2, validate.MaxGraphNodes); err != nil {
			return viz.Graph{}, err
		}
		g = viz.RandomGraph(gp.rng(), gp.Nodes)
	} else {
		var ok bool
		if g, ok = viz.PresetGraph(preset); !ok {
			return viz.Graph{}, errors.NewUserErrorWithField("preset", gp.Preset,
				"Unknown graph preset",
				errors.GetSuggestion(errors.ErrUnknownPreset)).
				WithCause(errors.ErrUnknownPreset)
		}
	}

	if err := pickNode(g, &g.Start, "start", gp.Start); err != nil {
		return viz.Graph{}, err
	}
	if err := pickNode(g, &g.End, "end", gp.End); err != nil {
		return viz.Graph{}, err
	}
	g.ResetVisualization()
	return g, nil
}

// pickNode stores the node named raw in dst when raw is set.
func pickNode(g viz.Graph, dst *string, field, raw string) error {
	if raw == "" {
		return nil
	}
	id := validate.SanitizeNodeID(raw)
	if !g.HasNode(id) {
		return errors.NewUserErrorWithField(field, raw,
			"Unknown node",
			errors.GetSuggestion(errors.ErrUnknownNode)).
			WithCause(errors.ErrUnknownNode)
	}
	*dst = id
	return nil
}

type graphTracer = engine.Tracer[viz.Graph]

// defineGraph registers a graph procedure. build receives the prepared
// input and returns the traced body, typically closing over an lvlath
// view of the topology.
func defineGraph(spec Spec, build func(g viz.Graph) (func(t *graphTracer), error)) *Spec {
	return defineGraphOn(spec, "simple", build)
}

// defineGraphOn is defineGraph for procedures that default to preset.
func defineGraphOn(spec Spec, preset string, build func(g viz.Graph) (func(t *graphTracer), error)) *Spec {
	spec.Family = FamilyGraph
	if spec.Counters == nil {
		spec.Counters = []string{CounterNodesVisited, CounterEdgesRelaxed, CounterPathLength}
	}
	return define[viz.Graph](spec, func(p Params) (viz.Graph, engine.Procedure[viz.Graph], error) {
		g, err := presetInput(p, preset)
		if err != nil {
			return viz.Graph{}, nil, err
		}
		run, err := build(g)
		if err != nil {
			return viz.Graph{}, nil, errors.Wrapf(err, "prepare %s", spec.ID)
		}
		return g, engine.Func(spec.ID, run), nil
	})
}

var (
	graphBFSSource = []string{
		"bfs(G, start, end):",
		"  queue = [start]",
		"  seen = {start}",
		"  while queue not empty:",
		"    u = dequeue(queue)",
		"    visit(u)",
		"    if u == end: return path(end)",
		"    for v in neighbors(u):",
		"      if v not in seen:",
		"        seen.add(v); parent[v] = u",
		"        enqueue(queue, v)",
	}
	graphDFSSource = []string{
		"dfs(G, start, end):",
		"  stack = [start]",
		"  while stack not empty:",
		"    u = pop(stack)",
		"    if u in visited: continue",
		"    visited.add(u)",
		"    if u == end: return path(end)",
		"    for v in reverse(neighbors(u)):",
		"      if v not in visited:",
		"        parent[v] = u",
		"        push(stack, v)",
	}
	graphDijkstraSource = []string{
		"dijkstra(G, start, end):",
		"  dist[*] = ∞; dist[start] = 0",
		"  while unvisited nodes remain:",
		"    u = unvisited node with smallest dist",
		"    if dist[u] == ∞: break",
		"    visited.add(u)",
		"    if u == end: return path(end)",
		"    for (v, w) in neighbors(u):",
		"      if v not visited:",
		"        if dist[u] + w < dist[v]:",
		"          dist[v] = dist[u] + w",
		"          parent[v] = u",
	}
	primSource = []string{
		"prim(G, start):",
		"  tree = {start}",
		"  while tree misses nodes:",
		"    (u, v) = lightest edge leaving tree",
		"    if none: break",
		"    tree.add(v)",
		"    mst.add(u, v)",
	}
	kruskalSource = []string{
		"kruskal(G):",
		"  sort edges by weight",
		"  for (u, v, w) in edges:",
		"    if find(u) != find(v):",
		"      union(u, v)",
		"      mst.add(u, v)",
		"    else: skip",
	}
	topologicalSource = []string{
		"topoSort(G):",
		"  order = []",
		"  for u in nodes:",
		"    if u not visited: visit(u)",
		"  return order",
		"",
		"visit(u):",
		"  visited.add(u)",
		"  for v in successors(u):",
		"    if v not visited: visit(v)",
		"  order.prepend(u)",
	}
)

func init() {
	defineGraph(Spec{
		ID:          "bfs",
		Name:        "Breadth-First Search",
		Description: "Explores the graph level by level from the start node.",
		Complexity:  "O(V + E)",
		Source:      graphBFSSource,
	}, func(g viz.Graph) (func(t *graphTracer), error) {
		cg, err := g.ToCore(false)
		if err != nil {
			return nil, err
		}
		return func(t *graphTracer) { graphBFS(t, cg) }, nil
	})
	defineGraph(Spec{
		ID:          "dfs",
		Name:        "Depth-First Search",
		Description: "Follows one branch as deep as possible before backtracking.",
		Complexity:  "O(V + E)",
		Source:      graphDFSSource,
	}, func(g viz.Graph) (func(t *graphTracer), error) {
		cg, err := g.ToCore(false)
		if err != nil {
			return nil, err
		}
		return func(t *graphTracer) { graphDFS(t, cg) }, nil
	})
	defineGraph(Spec{
		ID:          "dijkstra",
		Name:        "Dijkstra's Algorithm",
		Description: "Settles nodes in order of their shortest known distance.",
		Complexity:  "O(V² + E)",
		Source:      graphDijkstraSource,
	}, func(g viz.Graph) (func(t *graphTracer), error) {
		cg, err := g.ToCore(true)
		if err != nil {
			return nil, err
		}
		return func(t *graphTracer) { graphDijkstra(t, cg) }, nil
	})
	defineGraph(Spec{
		ID:          "prim",
		Name:        "Prim's MST",
		Description: "Grows a minimum spanning tree from the start node one lightest edge at a time.",
		Complexity:  "O(V·E)",
		Counters:    []string{CounterEdgesRelaxed, CounterTotalWeight},
		Source:      primSource,
	}, func(viz.Graph) (func(t *graphTracer), error) { return prim, nil })
	defineGraph(Spec{
		ID:          "kruskal",
		Name:        "Kruskal's MST",
		Description: "Adds edges in weight order unless they close a cycle.",
		Complexity:  "O(E log E)",
		Counters:    []string{CounterEdgesRelaxed, CounterTotalWeight},
		Source:      kruskalSource,
	}, func(viz.Graph) (func(t *graphTracer), error) { return kruskal, nil })
	defineGraphOn(Spec{
		ID:          "topological",
		Name:        "Topological Sort",
		Description: "Orders a directed acyclic graph so every edge points forward, by reverse DFS postorder.",
		Complexity:  "O(V + E)",
		Counters:    []string{CounterNodesVisited, CounterEdgesRelaxed},
		Source:      topologicalSource,
	}, "dag", func(viz.Graph) (func(t *graphTracer), error) { return topological, nil })
}

var (
	errReachedEnd = errors.New("end reached")
	errStopped    = errors.New("stopped")
)

// graphBFS drives lvlath's breadth-first walk and renders its hooks.
func graphBFS(t *graphTracer, cg *core.Graph) {
	g := t.State()
	start, end := g.Start, g.End
	if start == "" {
		return
	}

	var current string
	seen := map[string]bool{}
	res, err := bfs.BFS(cg, start,
		bfs.WithContext(t.Context()),
		bfs.WithOnEnqueue(func(id string, depth int) {
			seen[id] = true
			parent := current
			t.Mutate(func(g *viz.Graph) {
				if n := g.Node(id); n != nil {
					n.Distance = depth
					n.Parent = parent
				}
			})
			t.SetLine(11)
		}),
		bfs.WithOnVisit(func(id string, depth int) error {
			prev := current
			current = id
			t.Mutate(func(g *viz.Graph) {
				if prev != "" {
					g.SetNodeState(prev, viz.NodeVisited)
				}
				g.SetNodeState(id, viz.NodeVisiting)
				g.VisitedOrder = append(g.VisitedOrder, id)
			})
			t.Incr(CounterNodesVisited)
			if !t.Step(6) {
				return errStopped
			}
			if id == end {
				return errReachedEnd
			}
			return nil
		}),
		bfs.WithFilterNeighbor(func(u, v string) bool {
			if t.Cancelled() {
				return false
			}
			if seen[v] {
				return true
			}
			t.Mutate(func(g *viz.Graph) {
				g.SetEdgeState(u, v, viz.EdgeVisiting)
				g.SetNodeState(v, viz.NodeVisiting)
			})
			t.Incr(CounterEdgesRelaxed)
			ok := t.StepScaled(9, 0.5)
			t.Mutate(func(g *viz.Graph) {
				g.SetEdgeState(u, v, viz.EdgeVisited)
				g.SetNodeState(v, viz.NodeUnvisited)
			})
			return ok
		}),
	)
	switch {
	case errors.Is(err, errReachedEnd):
		path, perr := res.PathTo(end)
		if perr == nil {
			highlightPath(t, path)
		}
	case err == nil:
		t.Mutate(func(g *viz.Graph) { g.SetNodeState(current, viz.NodeVisited) })
		t.Record(engine.NoLine)
	}
}

// graphDFS walks an explicit stack over lvlath's sorted adjacency.
func graphDFS(t *graphTracer, cg *core.Graph) {
	g := t.State()
	start, end := g.Start, g.End
	if start == "" {
		return
	}

	visited := map[string]bool{}
	parent := map[string]string{start: ""}
	stack := []string{start}
	t.Mutate(func(g *viz.Graph) { g.Node(start).Distance = 0 })
	if !t.Step(2) {
		return
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[u] {
			continue
		}
		visited[u] = true
		t.Mutate(func(g *viz.Graph) {
			g.SetNodeState(u, viz.NodeVisiting)
			g.VisitedOrder = append(g.VisitedOrder, u)
		})
		t.Incr(CounterNodesVisited)
		if !t.Step(6) {
			return
		}
		if u == end {
			highlightPath(t, pathFrom(parent, end))
			return
		}

		nbrs, err := cg.NeighborIDs(u)
		if err != nil {
			return
		}
		for _, v := range slices.Backward(nbrs) {
			if visited[v] {
				continue
			}
			t.Mutate(func(g *viz.Graph) { g.SetEdgeState(u, v, viz.EdgeVisiting) })
			t.Incr(CounterEdgesRelaxed)
			if !t.StepScaled(9, 1.0/3) {
				return
			}
			if _, ok := parent[v]; !ok {
				parent[v] = u
				t.Mutate(func(g *viz.Graph) {
					n := g.Node(v)
					n.Parent = u
					n.Distance = g.Node(u).Distance + 1
				})
				t.SetLine(11)
			}
			stack = append(stack, v)
			t.Mutate(func(g *viz.Graph) { g.SetEdgeState(u, v, viz.EdgeVisited) })
		}
		t.Mutate(func(g *viz.Graph) { g.SetNodeState(u, viz.NodeVisited) })
	}
	t.Record(engine.NoLine)
}

type weightedNeighbor struct {
	id     string
	weight int
}

// neighborsOf returns u's neighbours in a weighted lvlath graph sorted by
// id. Undirected edges are stored once, so either endpoint may be u.
func neighborsOf(cg *core.Graph, u string) ([]weightedNeighbor, error) {
	edges, err := cg.Neighbors(u)
	if err != nil {
		return nil, err
	}
	out := make([]weightedNeighbor, 0, len(edges))
	for _, e := range edges {
		v := e.To
		if v == u {
			v = e.From
		}
		if v == u {
			continue
		}
		out = append(out, weightedNeighbor{id: v, weight: int(e.Weight)})
	}
	slices.SortFunc(out, func(a, b weightedNeighbor) int {
		if c := cmp.Compare(a.id, b.id); c != 0 {
			return c
		}
		return cmp.Compare(a.weight, b.weight)
	})
	return out, nil
}

func graphDijkstra(t *graphTracer, cg *core.Graph) {
	g := t.State()
	start, end := g.Start, g.End
	if start == "" {
		return
	}

	dist := make(map[string]int, len(g.Nodes))
	parent := map[string]string{}
	visited := map[string]bool{}
	dist[start] = 0
	t.Mutate(func(g *viz.Graph) { g.Node(start).Distance = 0 })
	if !t.Step(2) {
		return
	}

	for {
		u, best := "", -1
		for _, n := range g.Nodes {
			d, ok := dist[n.ID]
			if !ok || visited[n.ID] {
				continue
			}
			if best < 0 || d < best {
				u, best = n.ID, d
			}
		}
		if u == "" {
			break
		}
		visited[u] = true
		t.Mutate(func(g *viz.Graph) {
			g.SetNodeState(u, viz.NodeVisiting)
			g.VisitedOrder = append(g.VisitedOrder, u)
		})
		t.Incr(CounterNodesVisited)
		if !t.Step(6) {
			return
		}
		if u == end {
			highlightPath(t, pathFrom(parent, end))
			return
		}

		nbrs, err := neighborsOf(cg, u)
		if err != nil {
			return
		}
		for _, nb := range nbrs {
			v := nb.id
			if visited[v] {
				continue
			}
			t.Mutate(func(g *viz.Graph) {
				g.SetEdgeState(u, v, viz.EdgeVisiting)
				g.SetNodeState(v, viz.NodeVisiting)
			})
			t.Incr(CounterEdgesRelaxed)
			if !t.StepScaled(10, 0.5) {
				return
			}
			alt := best + nb.weight
			if d, ok := dist[v]; !ok || alt < d {
				dist[v] = alt
				parent[v] = u
				t.Mutate(func(g *viz.Graph) {
					n := g.Node(v)
					n.Distance = alt
					n.Parent = u
				})
				if !t.Record(11) {
					return
				}
			}
			t.Mutate(func(g *viz.Graph) {
				g.SetEdgeState(u, v, viz.EdgeVisited)
				g.SetNodeState(v, viz.NodeUnvisited)
			})
		}
		t.Mutate(func(g *viz.Graph) { g.SetNodeState(u, viz.NodeVisited) })
	}
	t.Record(engine.NoLine)
}

// prim grows a spanning tree from the start node, treating every edge as
// undirected.
func prim(t *graphTracer) {
	g := t.State()
	if g.Start == "" {
		return
	}
	inTree := map[string]bool{g.Start: true}
	t.Mutate(func(g *viz.Graph) {
		g.SetNodeState(g.Start, viz.NodePath)
		g.PathNodes = append(g.PathNodes, g.Start)
	})
	if !t.Step(2) {
		return
	}
	for len(inTree) < len(g.Nodes) {
		var best *viz.Edge
		var from, to string
		for i := range g.Edges {
			e := &g.Edges[i]
			var u, v string
			switch {
			case inTree[e.Source] && !inTree[e.Target]:
				u, v = e.Source, e.Target
			case inTree[e.Target] && !inTree[e.Source]:
				u, v = e.Target, e.Source
			default:
				continue
			}
			t.Incr(CounterEdgesRelaxed)
			if best == nil || e.Weight < best.Weight {
				best, from, to = e, u, v
			}
		}
		if best == nil {
			break
		}
		id, w := best.ID, best.Weight
		t.Mutate(func(g *viz.Graph) {
			setEdgeStateByID(g, id, viz.EdgeVisiting)
			g.SetNodeState(to, viz.NodeVisiting)
		})
		if !t.Step(4) {
			return
		}
		inTree[to] = true
		t.Mutate(func(g *viz.Graph) {
			setEdgeStateByID(g, id, viz.EdgePath)
			g.SetNodeState(to, viz.NodePath)
			g.Node(to).Parent = from
			g.PathNodes = append(g.PathNodes, to)
		})
		t.Add(CounterTotalWeight, w)
		if !t.Step(7) {
			return
		}
	}
	t.Record(engine.NoLine)
}

// kruskal scans edges by ascending weight with a union-find over node ids.
func kruskal(t *graphTracer) {
	g := t.State()
	edges := slices.Clone(g.Edges)
	slices.SortStableFunc(edges, func(a, b viz.Edge) int { return cmp.Compare(a.Weight, b.Weight) })

	parent := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		parent[n.ID] = n.ID
	}
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	if !t.Record(2) {
		return
	}
	accepted := 0
	for _, e := range edges {
		if accepted == len(g.Nodes)-1 {
			break
		}
		id := e.ID
		t.Mutate(func(g *viz.Graph) { setEdgeStateByID(g, id, viz.EdgeVisiting) })
		t.Incr(CounterEdgesRelaxed)
		if !t.Step(4) {
			return
		}
		ru, rv := find(e.Source), find(e.Target)
		if ru == rv {
			t.Mutate(func(g *viz.Graph) { setEdgeStateByID(g, id, viz.EdgeVisited) })
			if !t.Record(7) {
				return
			}
			continue
		}
		parent[ru] = rv
		accepted++
		src, dst := e.Source, e.Target
		t.Mutate(func(g *viz.Graph) {
			setEdgeStateByID(g, id, viz.EdgePath)
			for _, n := range []string{src, dst} {
				g.SetNodeState(n, viz.NodePath)
				if !slices.Contains(g.PathNodes, n) {
					g.PathNodes = append(g.PathNodes, n)
				}
			}
		})
		t.Add(CounterTotalWeight, e.Weight)
		if !t.Step(6) {
			return
		}
	}
	t.Record(engine.NoLine)
}

// successors lists the nodes reachable over one edge from each node, sorted
// by id. Undirected edges count both ways.
func successors(g viz.Graph) map[string][]string {
	out := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		out[e.Source] = append(out[e.Source], e.Target)
		if !e.Directed && !g.Directed {
			out[e.Target] = append(out[e.Target], e.Source)
		}
	}
	for id := range out {
		slices.Sort(out[id])
		out[id] = slices.Compact(out[id])
	}
	return out
}

// topological runs a depth-first visit from every unvisited node in layout
// order and prepends each node to the order once its successors finish.
// PathNodes holds the order found so far.
func topological(t *graphTracer) {
	g := t.State()
	next := successors(g)
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}

	visited := make(map[string]bool, len(ids))
	var order []string
	var visit func(u string) bool
	visit = func(u string) bool {
		visited[u] = true
		t.Mutate(func(g *viz.Graph) {
			g.SetNodeState(u, viz.NodeVisiting)
			g.VisitedOrder = append(g.VisitedOrder, u)
		})
		t.Incr(CounterNodesVisited)
		if !t.Step(8) {
			return false
		}
		for _, v := range next[u] {
			if visited[v] {
				continue
			}
			t.Mutate(func(g *viz.Graph) { g.SetEdgeState(u, v, viz.EdgeVisiting) })
			t.Incr(CounterEdgesRelaxed)
			if !t.StepScaled(10, 0.5) || !visit(v) {
				return false
			}
			t.Mutate(func(g *viz.Graph) { g.SetEdgeState(u, v, viz.EdgeVisited) })
		}
		order = slices.Insert(order, 0, u)
		t.Mutate(func(g *viz.Graph) {
			g.SetNodeState(u, viz.NodePath)
			g.PathNodes = slices.Clone(order)
		})
		return t.Step(11)
	}

	if !t.Record(2) {
		return
	}
	for _, id := range ids {
		if visited[id] {
			continue
		}
		if !t.Record(4) || !visit(id) {
			return
		}
	}
	t.Record(engine.NoLine)
}

func setEdgeStateByID(g *viz.Graph, id string, state viz.EdgeState) {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			g.Edges[i].State = state
			return
		}
	}
}

// pathFrom walks parent links back from end.
func pathFrom(parent map[string]string, end string) []string {
	var path []string
	for cur := end; cur != ""; cur = parent[cur] {
		path = append(path, cur)
		if len(path) > len(parent)+1 {
			break
		}
	}
	slices.Reverse(path)
	return path
}

// highlightPath clears the exploration and draws path node by node at half
// speed.
func highlightPath(t *graphTracer, path []string) bool {
	t.Mutate(func(g *viz.Graph) {
		for i := range g.Edges {
			g.Edges[i].State = viz.EdgeUnvisited
		}
		for i := range g.Nodes {
			if id := g.Nodes[i].ID; id != g.Start && id != g.End {
				g.Nodes[i].State = viz.NodeUnvisited
			}
		}
		g.PathNodes = slices.Clone(path)
	})
	if !t.StepScaled(engine.NoLine, 0.5) {
		return false
	}
	for i, id := range path {
		t.Mutate(func(g *viz.Graph) {
			if id != g.Start && id != g.End {
				g.SetNodeState(id, viz.NodePath)
			}
			if i > 0 {
				g.SetEdgeState(path[i-1], id, viz.EdgePath)
			}
		})
		if !t.StepScaled(engine.NoLine, 0.5) {
			return false
		}
	}
	t.SetCounter(CounterPathLength, max(len(path)-1, 0))
	return t.Record(engine.NoLine)
}
