package viz

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Bars Tests
// =============================================================================

func TestBarsClone(t *testing.T) {
	b := NewBars([]int{3, 1, 2})
	c := b.Clone()
	c.Swap(0, 1)
	c.Mark(BarSorted, 0)

	assert.Equal(t, []int{3, 1, 2}, b.Values())
	assert.Equal(t, BarUnsorted, b.Items[0].Status)
	assert.Equal(t, []int{1, 3, 2}, c.Values())
}

func TestBarsMarking(t *testing.T) {
	b := NewBars([]int{1, 2, 3, 4})
	b.Mark(BarComparing, 0, 9, -1)
	assert.Equal(t, BarComparing, b.Items[0].Status)

	b.MarkRange(BarSorted, 2, 10)
	assert.False(t, b.AllSorted())
	b.MarkAll(BarSorted)
	assert.True(t, b.AllSorted())
	assert.Equal(t, 4, b.Max())
	assert.True(t, NewBars(nil).AllSorted(), "empty array is trivially sorted")
}

func TestRandomValues(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	values := RandomValues(rng, 50, 80, 10)
	require.Len(t, values, 50)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 10)
		assert.LessOrEqual(t, v, 80)
	}
}

// =============================================================================
// Grid Tests
// =============================================================================

func TestNewGrid(t *testing.T) {
	g := NewGrid(20, 40, Point{10, 5}, Point{10, 35})
	assert.Equal(t, CellStart, g.At(Point{10, 5}).Type)
	assert.Equal(t, CellEnd, g.At(Point{10, 35}).Type)
	assert.Equal(t, Unreached, g.At(Point{0, 0}).Distance)
	assert.False(t, g.At(Point{0, 0}).Parent.Valid())

	clamped := NewGrid(5, 5, Point{-3, 2}, Point{9, 9})
	assert.Equal(t, Point{0, 2}, clamped.Start)
	assert.Equal(t, Point{4, 4}, clamped.End)
}

func TestGridCloneIndependent(t *testing.T) {
	g := NewGrid(3, 3, Point{0, 0}, Point{2, 2})
	c := g.Clone()
	c.SetWall(Point{1, 1}, true)
	assert.Equal(t, CellEmpty, g.At(Point{1, 1}).Type)
	assert.Equal(t, CellWall, c.At(Point{1, 1}).Type)
}

func TestGridWallsSpareEndpoints(t *testing.T) {
	g := NewGrid(3, 3, Point{0, 0}, Point{2, 2})
	g.SetWall(Point{0, 0}, true)
	g.SetWall(Point{5, 5}, true)
	assert.Equal(t, CellStart, g.At(Point{0, 0}).Type)

	g.GenerateMaze(rand.New(rand.NewPCG(7, 7)), 1.0)
	assert.Equal(t, CellStart, g.At(g.Start).Type)
	assert.Equal(t, CellEnd, g.At(g.End).Type)
	assert.Equal(t, 7, g.Count(CellWall))

	g.At(Point{1, 1}).Type = CellVisited
	g.ClearPath()
	assert.Equal(t, 0, g.Count(CellVisited))
	assert.Equal(t, 6, g.Count(CellWall))
}

func TestGridNeighbors(t *testing.T) {
	g := NewGrid(3, 3, Point{0, 0}, Point{2, 2})
	g.SetWall(Point{0, 1}, true)

	lattice, err := g.Topology()
	require.NoError(t, err)

	assert.Equal(t, []Point{{1, 0}}, Neighbors(lattice, Point{0, 0}))
	assert.Equal(t, []Point{{1, 2}, {2, 1}, {1, 0}}, Neighbors(lattice, Point{1, 1}))
}

func TestManhattan(t *testing.T) {
	assert.Equal(t, 7, Point{1, 2}.Manhattan(Point{4, 6}))
	assert.Equal(t, 0, Point{3, 3}.Manhattan(Point{3, 3}))
}

// =============================================================================
// Graph Tests
// =============================================================================

func TestPresetGraphs(t *testing.T) {
	expected := map[string][2]int{
		"simple":  {6, 8},
		"complex": {10, 15},
		"tree":    {7, 6},
		"grid":    {9, 12},
		"dag":     {7, 9},
	}
	for _, name := range GraphPresets {
		t.Run(name, func(t *testing.T) {
			g, ok := PresetGraph(name)
			require.True(t, ok)
			assert.Len(t, g.Nodes, expected[name][0])
			assert.Len(t, g.Edges, expected[name][1])
			assert.Equal(t, NodeStart, g.Node(g.Start).State)
			assert.Equal(t, NodeEnd, g.Node(g.End).State)
			for _, e := range g.Edges {
				assert.True(t, g.HasNode(e.Source), e.ID)
				assert.True(t, g.HasNode(e.Target), e.ID)
			}
		})
	}

	_, ok := PresetGraph("hypercube")
	assert.False(t, ok)
}

func TestGraphCloneIndependent(t *testing.T) {
	g, _ := PresetGraph("simple")
	c := g.Clone()
	c.SetNodeState("B", NodeVisited)
	c.SetEdgeState("A", "B", EdgeVisited)
	c.VisitedOrder = append(c.VisitedOrder, "A")

	assert.Equal(t, NodeUnvisited, g.Node("B").State)
	assert.Equal(t, EdgeUnvisited, g.EdgeBetween("A", "B").State)
	assert.Empty(t, g.VisitedOrder)
}

func TestEdgeBetweenDirection(t *testing.T) {
	simple, _ := PresetGraph("simple")
	assert.NotNil(t, simple.EdgeBetween("B", "A"), "undirected edge matches both ways")

	dag, _ := PresetGraph("dag")
	assert.NotNil(t, dag.EdgeBetween("A", "B"))
	assert.Nil(t, dag.EdgeBetween("B", "A"))
}

func TestSetNodeStateKeepsEndpoints(t *testing.T) {
	g, _ := PresetGraph("simple")
	g.SetNodeState("A", NodeVisited)
	assert.Equal(t, NodeStart, g.Node("A").State)
	g.SetNodeState("A", NodePath)
	assert.Equal(t, NodePath, g.Node("A").State)
}

func TestToCore(t *testing.T) {
	g, _ := PresetGraph("simple")

	weighted, err := g.ToCore(true)
	require.NoError(t, err)
	assert.True(t, weighted.Weighted())
	nbrs, err := weighted.NeighborIDs("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D"}, nbrs)

	plain, err := g.ToCore(false)
	require.NoError(t, err)
	assert.False(t, plain.Weighted())
	assert.Len(t, plain.Vertices(), 6)
}

func TestRandomGraph(t *testing.T) {
	g := RandomGraph(rand.New(rand.NewPCG(3, 4)), 8)
	assert.Len(t, g.Nodes, 8)
	assert.NotEmpty(t, g.Edges)
	assert.Equal(t, "A", g.Start)
	assert.Equal(t, "H", g.End)
	for _, e := range g.Edges {
		assert.NotEqual(t, e.Source, e.Target)
		assert.GreaterOrEqual(t, e.Weight, 1)
		assert.LessOrEqual(t, e.Weight, 9)
	}
}

// =============================================================================
// Table Tests
// =============================================================================

func TestTable(t *testing.T) {
	tbl := NewTable("lcs", 2, 3)
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, 3, tbl.Cols())
	assert.Equal(t, "", tbl.Cells[0][0].Text())

	tbl.Set(1, 2, 5, CellStateComputing)
	tbl.Mark(0, 0, CellStateHighlighted)
	c := tbl.Clone()
	tbl.Relax()

	assert.Equal(t, "5", tbl.Cells[1][2].Text())
	assert.Equal(t, CellStateComputed, tbl.Cells[1][2].State)
	assert.Equal(t, CellStateComputing, c.Cells[1][2].State, "clone unaffected")

	tbl.MarkOptimal([]Point{{1, 2}, {0, 0}})
	assert.Equal(t, 2, tbl.Count(CellStateOptimal))
	assert.Equal(t, "∞", TableCell{Display: "∞", State: CellStateComputed}.Text())
}
