package procedures

import (
	"container/heap"
	"slices"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvlath/gridgraph"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/validate"
	"github.com/manav03panchal/stepwise/internal/viz"
)

// Default pathfinding board.
const (
	DefaultGridRows = 20
	DefaultGridCols = 40
)

// GridParams configures a pathfinding board. Start and End are "row,col"
// pairs; when omitted they sit on the middle row an eighth in from either
// side. Density > 0 scatters random walls; Walls adds fixed ones as
// "row:col" entries.
type GridParams struct {
	Seeded  `mapstructure:",squash"`
	Rows    int      `mapstructure:"rows"`
	Cols    int      `mapstructure:"cols"`
	Density float64  `mapstructure:"density"`
	Start   []int    `mapstructure:"start"`
	End     []int    `mapstructure:"end"`
	Walls   []string `mapstructure:"walls"`
}

func gridInput(p Params) (viz.Grid, error) {
	var gp GridParams
	if err := decode(p, &gp); err != nil {
		return viz.Grid{}, err
	}
	if gp.Rows == 0 {
		gp.Rows = DefaultGridRows
	}
	if gp.Cols == 0 {
		gp.Cols = DefaultGridCols
	}
	if err := validate.GridSize(gp.Rows, gp.Cols); err != nil {
		return viz.Grid{}, err
	}
	if err := validate.Density(gp.Density); err != nil {
		return viz.Grid{}, err
	}

	start := viz.Point{Row: gp.Rows / 2, Col: gp.Cols / 8}
	end := viz.Point{Row: gp.Rows / 2, Col: min(gp.Cols-gp.Cols/8, gp.Cols-1)}
	var err error
	if start, err = pickPoint(gp.Rows, gp.Cols, "start", gp.Start, start); err != nil {
		return viz.Grid{}, err
	}
	if end, err = pickPoint(gp.Rows, gp.Cols, "end", gp.End, end); err != nil {
		return viz.Grid{}, err
	}

	g := viz.NewGrid(gp.Rows, gp.Cols, start, end)
	if gp.Density > 0 {
		g.GenerateMaze(gp.rng(), gp.Density)
	}
	for _, w := range gp.Walls {
		p, err := parseWall(w, gp.Rows, gp.Cols)
		if err != nil {
			return viz.Grid{}, err
		}
		g.SetWall(p, true)
	}
	return g, nil
}

func parseWall(raw string, rows, cols int) (viz.Point, error) {
	r, c, ok := strings.Cut(strings.TrimSpace(raw), ":")
	row, rerr := strconv.Atoi(r)
	col, cerr := strconv.Atoi(c)
	if !ok || rerr != nil || cerr != nil {
		return viz.Point{}, errors.NewUserErrorWithField("walls", raw,
			"Invalid wall",
			"Walls are row:col pairs, e.g. --wall 3:4").
			WithCause(errors.ErrInvalidParams)
	}
	return pickPoint(rows, cols, "wall", []int{row, col}, viz.NoPoint)
}

// pickPoint returns the point encoded in raw, or def when raw is empty.
func pickPoint(rows, cols int, field string, raw []int, def viz.Point) (viz.Point, error) {
	if len(raw) == 0 {
		return def, nil
	}
	if len(raw) != 2 {
		return viz.Point{}, errors.NewUserErrorWithField(field, joinInts(raw),
			"Expected a row,col pair",
			"Pass two numbers, e.g. --"+field+" 10,5").
			WithCause(errors.ErrInvalidParams)
	}
	if err := validate.InRange(field+" row", raw[0], 0, rows-1); err != nil {
		return viz.Point{}, err
	}
	if err := validate.InRange(field+" col", raw[1], 0, cols-1); err != nil {
		return viz.Point{}, err
	}
	return viz.Point{Row: raw[0], Col: raw[1]}, nil
}

func joinInts(vs []int) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}

type gridTracer = engine.Tracer[viz.Grid]

// defineSearch registers a grid search. The lattice is built once per
// input since walls do not change during a run.
func defineSearch(spec Spec, run func(t *gridTracer, lattice *gridgraph.GridGraph)) *Spec {
	spec.Family = FamilyPathfinding
	spec.Counters = []string{CounterNodesVisited, CounterPathLength}
	return define[viz.Grid](spec, func(p Params) (viz.Grid, engine.Procedure[viz.Grid], error) {
		g, err := gridInput(p)
		if err != nil {
			return viz.Grid{}, nil, err
		}
		lattice, err := g.Topology()
		if err != nil {
			return viz.Grid{}, nil, errors.Wrapf(err, "prepare %s", spec.ID)
		}
		return g, engine.Func(spec.ID, func(t *gridTracer) { run(t, lattice) }), nil
	})
}

var (
	gridBFSSource = []string{
		"bfs(grid, start, end):",
		"  queue = [start]; seen = {start}",
		"  while queue not empty:",
		"    u = dequeue(queue)",
		"    if u == end: return path(u)",
		"    mark u visited",
		"    for v in neighbors(u):",
		"      if v not in seen:",
		"        seen.add(v); parent[v] = u",
		"        enqueue(queue, v)",
	}
	gridDFSSource = []string{
		"dfs(grid, start, end):",
		"  stack = [start]",
		"  while stack not empty:",
		"    u = pop(stack)",
		"    if u in visited: continue",
		"    visited.add(u)",
		"    if u == end: return path(u)",
		"    mark u visited",
		"    for v in neighbors(u):",
		"      if v not in visited:",
		"        parent[v] = u; push(stack, v)",
	}
	gridDijkstraSource = []string{
		"dijkstra(grid, start, end):",
		"  dist[start] = 0; pq = [(start, 0)]",
		"  while pq not empty:",
		"    u = pq.popMin()",
		"    if u in visited: continue",
		"    visited.add(u)",
		"    if u == end: return path(u)",
		"    mark u visited",
		"    for v in neighbors(u):",
		"      if dist[u] + 1 < dist[v]:",
		"        dist[v] = dist[u] + 1; parent[v] = u",
		"        pq.push(v, dist[v])",
	}
	astarSource = []string{
		"astar(grid, start, end):",
		"  g[start] = 0",
		"  open = [(start, h(start))]",
		"  while open not empty:",
		"    u = open.popLowestF()",
		"    if u in closed: continue",
		"    closed.add(u)",
		"    if u == end: return path(u)",
		"    mark u visited",
		"    for v in neighbors(u):",
		"      if v in closed: continue",
		"      tentative = g[u] + 1",
		"      if tentative < g[v]:",
		"        g[v] = tentative",
		"        h[v] = manhattan(v, end)",
		"        f[v] = g[v] + h[v]; parent[v] = u",
		"        open.push(v, f[v])",
	}
)

func init() {
	defineSearch(Spec{
		ID:          "grid-bfs",
		Name:        "Breadth-First Search",
		Description: "Floods the grid outward and finds a shortest path in an unweighted maze.",
		Complexity:  "O(R·C)",
		Source:      gridBFSSource,
	}, gridBFS)
	defineSearch(Spec{
		ID:          "grid-dfs",
		Name:        "Depth-First Search",
		Description: "Dives down one corridor at a time. Finds a path, rarely the shortest.",
		Complexity:  "O(R·C)",
		Source:      gridDFSSource,
	}, gridDFS)
	defineSearch(Spec{
		ID:          "grid-dijkstra",
		Name:        "Dijkstra's Algorithm",
		Description: "Settles cells in order of distance from the start.",
		Complexity:  "O(R·C log(R·C))",
		Source:      gridDijkstraSource,
	}, gridDijkstra)
	defineSearch(Spec{
		ID:          "astar",
		Name:        "A* Search",
		Description: "Dijkstra guided by the Manhattan distance to the end.",
		Complexity:  "O(R·C log(R·C))",
		Source:      astarSource,
	}, astar)
}

// visitCell paints u as visited and suspends. The start cell keeps its
// colour and is not counted.
func visitCell(t *gridTracer, start, u viz.Point, line int) bool {
	if u != start {
		t.Mutate(func(g *viz.Grid) { g.Paint(u, viz.CellVisited) })
		t.Incr(CounterNodesVisited)
	}
	return t.Step(line)
}

// frontier marks v as discovered from u.
func frontier(t *gridTracer, u, v viz.Point, annotate func(c *viz.Cell)) {
	t.Mutate(func(g *viz.Grid) {
		c := g.At(v)
		c.Parent = u
		if annotate != nil {
			annotate(c)
		}
		g.Paint(v, viz.CellCurrent)
	})
}

func gridBFS(t *gridTracer, lattice *gridgraph.GridGraph) {
	g := t.State()
	start, end := g.Start, g.End
	seen := map[viz.Point]bool{start: true}
	queue := []viz.Point{start}
	t.Mutate(func(g *viz.Grid) { g.At(start).Distance = 0 })
	if !t.Record(2) {
		return
	}
	dist := map[viz.Point]int{start: 0}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		t.SetLine(4)
		if u == end {
			tracePath(t, u)
			return
		}
		if !visitCell(t, start, u, 6) {
			return
		}
		for _, v := range viz.Neighbors(lattice, u) {
			if seen[v] {
				continue
			}
			seen[v] = true
			dist[v] = dist[u] + 1
			d := dist[v]
			frontier(t, u, v, func(c *viz.Cell) { c.Distance = d })
			t.SetLine(10)
			queue = append(queue, v)
		}
	}
	t.Record(engine.NoLine)
}

func gridDFS(t *gridTracer, lattice *gridgraph.GridGraph) {
	g := t.State()
	start, end := g.Start, g.End
	visited := map[viz.Point]bool{}
	stack := []viz.Point{start}
	if !t.Record(2) {
		return
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[u] {
			continue
		}
		visited[u] = true
		if u == end {
			tracePath(t, u)
			return
		}
		if !visitCell(t, start, u, 8) {
			return
		}
		for _, v := range viz.Neighbors(lattice, u) {
			if visited[v] {
				continue
			}
			frontier(t, u, v, nil)
			t.SetLine(11)
			stack = append(stack, v)
		}
	}
	t.Record(engine.NoLine)
}

// openItem is a priority queue entry ordered by key, then tie, then
// insertion order.
type openItem struct {
	p             viz.Point
	key, tie, seq int
}

type openSet []openItem

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	a, b := o[i], o[j]
	if a.key != b.key {
		return a.key < b.key
	}
	if a.tie != b.tie {
		return a.tie < b.tie
	}
	return a.seq < b.seq
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x any)   { *o = append(*o, x.(openItem)) }
func (o *openSet) Pop() any {
	old := *o
	it := old[len(old)-1]
	*o = old[:len(old)-1]
	return it
}

func gridDijkstra(t *gridTracer, lattice *gridgraph.GridGraph) {
	g := t.State()
	start, end := g.Start, g.End
	dist := map[viz.Point]int{start: 0}
	visited := map[viz.Point]bool{}
	open := &openSet{{p: start}}
	seq := 0
	t.Mutate(func(g *viz.Grid) { g.At(start).Distance = 0 })
	if !t.Record(2) {
		return
	}
	for open.Len() > 0 {
		u := heap.Pop(open).(openItem).p
		if visited[u] {
			continue
		}
		visited[u] = true
		if u == end {
			tracePath(t, u)
			return
		}
		if !visitCell(t, start, u, 8) {
			return
		}
		for _, v := range viz.Neighbors(lattice, u) {
			if visited[v] {
				continue
			}
			alt := dist[u] + 1
			if d, ok := dist[v]; ok && alt >= d {
				continue
			}
			dist[v] = alt
			frontier(t, u, v, func(c *viz.Cell) { c.Distance = alt })
			t.SetLine(11)
			seq++
			heap.Push(open, openItem{p: v, key: alt, seq: seq})
		}
	}
	t.Record(engine.NoLine)
}

// astar breaks f ties on the smaller heuristic, which keeps the search
// pointed at the end on open boards.
func astar(t *gridTracer, lattice *gridgraph.GridGraph) {
	g := t.State()
	start, end := g.Start, g.End
	gScore := map[viz.Point]int{start: 0}
	closed := map[viz.Point]bool{}
	h0 := start.Manhattan(end)
	open := &openSet{{p: start, key: h0, tie: h0}}
	seq := 0
	t.Mutate(func(g *viz.Grid) {
		c := g.At(start)
		c.G, c.H, c.F = 0, h0, h0
	})
	if !t.Record(3) {
		return
	}
	for open.Len() > 0 {
		u := heap.Pop(open).(openItem).p
		if closed[u] {
			continue
		}
		closed[u] = true
		if u == end {
			tracePath(t, u)
			return
		}
		if !visitCell(t, start, u, 9) {
			return
		}
		for _, v := range viz.Neighbors(lattice, u) {
			if closed[v] {
				continue
			}
			tentative := gScore[u] + 1
			if old, ok := gScore[v]; ok && tentative >= old {
				continue
			}
			gScore[v] = tentative
			h := v.Manhattan(end)
			f := tentative + h
			frontier(t, u, v, func(c *viz.Cell) { c.G, c.H, c.F = tentative, h, f })
			t.SetLine(16)
			seq++
			heap.Push(open, openItem{p: v, key: f, tie: h, seq: seq})
		}
	}
	t.Record(engine.NoLine)
}

// tracePath walks parent links back from end and paints the path from the
// start outward at half speed.
func tracePath(t *gridTracer, end viz.Point) bool {
	g := t.State()
	var path []viz.Point
	for p := end; p.Valid() && len(path) <= g.Rows*g.Cols; p = g.At(p).Parent {
		path = append(path, p)
	}
	slices.Reverse(path)
	for _, p := range path {
		t.Mutate(func(g *viz.Grid) { g.Paint(p, viz.CellPath) })
		if !t.StepScaled(engine.NoLine, 0.5) {
			return false
		}
	}
	t.SetCounter(CounterPathLength, max(len(path)-1, 0))
	return t.Record(engine.NoLine)
}
