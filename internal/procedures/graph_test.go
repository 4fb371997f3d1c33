package procedures

import (
	"testing"

	"github.com/katalvlaran/lvlath/dijkstra"
	"github.com/katalvlaran/lvlath/prim_kruskal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/viz"
)

func finalGraph(t *testing.T, id string, p Params) (viz.Graph, map[string]int) {
	t.Helper()
	_, f := runToEnd(t, id, p)
	return f.State.(viz.Graph), f.Counters
}

func TestGraphBFS(t *testing.T) {
	g, counters := finalGraph(t, "bfs", nil)
	require.NotEmpty(t, g.PathNodes)
	assert.Equal(t, "A", g.PathNodes[0])
	assert.Equal(t, "F", g.PathNodes[len(g.PathNodes)-1])
	assert.Equal(t, 3, counters[CounterPathLength], "A reaches F in three hops")
	assert.Equal(t, "A", g.VisitedOrder[0])
	assert.Equal(t, "F", g.VisitedOrder[len(g.VisitedOrder)-1])
	assert.Equal(t, len(g.VisitedOrder), counters[CounterNodesVisited])

	for i := 1; i < len(g.PathNodes); i++ {
		e := g.EdgeBetween(g.PathNodes[i-1], g.PathNodes[i])
		require.NotNil(t, e)
		assert.Equal(t, viz.EdgePath, e.State)
	}
}

func TestGraphDFS(t *testing.T) {
	g, counters := finalGraph(t, "dfs", Params{"preset": "tree", "end": "g"})
	assert.Equal(t, []string{"A", "C", "G"}, g.PathNodes)
	assert.Equal(t, 2, counters[CounterPathLength])
	assert.Equal(t, "A", g.VisitedOrder[0])
}

func TestGraphDijkstraMatchesLvlath(t *testing.T) {
	for _, preset := range []string{"simple", "complex", "grid"} {
		t.Run(preset, func(t *testing.T) {
			g, counters := finalGraph(t, "dijkstra", Params{"preset": preset})

			in, err := graphInput(Params{"preset": preset})
			require.NoError(t, err)
			cg, err := in.ToCore(true)
			require.NoError(t, err)
			dist, _, err := dijkstra.Dijkstra(cg, dijkstra.Source(in.Start))
			require.NoError(t, err)

			end := g.Node(g.End)
			require.NotNil(t, end)
			assert.Equal(t, int(dist[g.End]), end.Distance)

			total := 0
			for i := 1; i < len(g.PathNodes); i++ {
				e := g.EdgeBetween(g.PathNodes[i-1], g.PathNodes[i])
				require.NotNil(t, e)
				total += e.Weight
			}
			assert.Equal(t, end.Distance, total)
			assert.Equal(t, len(g.PathNodes)-1, counters[CounterPathLength])
		})
	}
}

func TestGraphDijkstraSimplePath(t *testing.T) {
	g, _ := finalGraph(t, "dijkstra", nil)
	assert.Equal(t, []string{"A", "C", "E", "F"}, g.PathNodes)
	assert.Equal(t, 7, g.Node("F").Distance)
}

func TestSpanningTreesMatchLvlath(t *testing.T) {
	for _, preset := range []string{"simple", "complex", "tree", "grid"} {
		in, err := graphInput(Params{"preset": preset})
		require.NoError(t, err)
		cg, err := in.ToCore(true)
		require.NoError(t, err)
		_, want, err := prim_kruskal.Kruskal(cg)
		require.NoError(t, err)

		for _, id := range []string{"prim", "kruskal"} {
			t.Run(preset+"/"+id, func(t *testing.T) {
				g, counters := finalGraph(t, id, Params{"preset": preset})
				assert.Equal(t, int(want), counters[CounterTotalWeight])

				treeEdges := 0
				for _, e := range g.Edges {
					if e.State == viz.EdgePath {
						treeEdges++
					}
				}
				assert.Equal(t, len(g.Nodes)-1, treeEdges)
				assert.ElementsMatch(t, nodeIDs(g), g.PathNodes)
			})
		}
	}
}

func TestGraphUnreachableEnd(t *testing.T) {
	// In the DAG nothing leads back to A.
	for _, id := range []string{"bfs", "dfs", "dijkstra"} {
		t.Run(id, func(t *testing.T) {
			g, counters := finalGraph(t, id, Params{"preset": "dag", "start": "G", "end": "A"})
			assert.Empty(t, g.PathNodes)
			assert.Zero(t, counters[CounterPathLength])
			assert.Equal(t, []string{"G"}, g.VisitedOrder)
		})
	}
}

func TestTopologicalOnDAG(t *testing.T) {
	g, counters := finalGraph(t, "topological", nil)
	assert.True(t, g.Directed, "defaults to the dag preset")
	assert.Equal(t, []string{"A", "C", "F", "B", "E", "D", "G"}, g.PathNodes)
	assert.Equal(t, []string{"A", "B", "D", "G", "E", "C", "F"}, g.VisitedOrder)
	assert.Equal(t, 7, counters[CounterNodesVisited])
	assert.Equal(t, 6, counters[CounterEdgesRelaxed])

	pos := map[string]int{}
	for i, id := range g.PathNodes {
		pos[id] = i
	}
	for _, e := range g.Edges {
		assert.Less(t, pos[e.Source], pos[e.Target], "edge %s -> %s", e.Source, e.Target)
	}
	for _, n := range g.Nodes {
		assert.Equal(t, viz.NodePath, n.State, n.ID)
	}
}

func TestTopologicalCoversEveryNode(t *testing.T) {
	g, counters := finalGraph(t, "topological", Params{"preset": "tree"})
	assert.ElementsMatch(t, nodeIDs(g), g.PathNodes)
	assert.Equal(t, len(g.Nodes), counters[CounterNodesVisited])
}

func TestGraphParams(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr error
	}{
		{"unknown preset", Params{"preset": "hexagon"}, errors.ErrUnknownPreset},
		{"unknown start", Params{"start": "Z"}, errors.ErrUnknownNode},
		{"unknown end", Params{"end": "Q"}, errors.ErrUnknownNode},
		{"too many random nodes", Params{"preset": "random", "nodes": 40}, errors.ErrInvalidParams},
		{"too few random nodes", Params{"preset": "random", "nodes": 1}, errors.ErrInvalidParams},
		{"unknown key", Params{"weights": "1,2"}, errors.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graphInput(tt.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	g, err := graphInput(Params{"start": "b", "end": " d "})
	require.NoError(t, err)
	assert.Equal(t, "B", g.Start)
	assert.Equal(t, "D", g.End)

	r1, err := graphInput(Params{"preset": "random", "nodes": 6, "seed": 3})
	require.NoError(t, err)
	r2, err := graphInput(Params{"preset": "Random", "nodes": "6", "seed": "3"})
	require.NoError(t, err)
	assert.Len(t, r1.Nodes, 6)
	assert.Equal(t, r1, r2)
}

func nodeIDs(g viz.Graph) []string {
	out := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.ID
	}
	return out
}
