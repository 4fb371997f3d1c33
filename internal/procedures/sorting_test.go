package procedures

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/viz"
)

func TestSortsSortFixedInput(t *testing.T) {
	inputs := [][]int{
		{5, 3, 8, 1, 2},
		{1, 2, 3, 4, 5, 6},
		{9, 7, 5, 3, 1},
		{4, 4, 2, 2, 9, 0, 4},
		{2, 1},
	}
	for _, spec := range ByFamily(FamilySorting) {
		for _, in := range inputs {
			t.Run(spec.ID, func(t *testing.T) {
				_, f := runToEnd(t, spec.ID, Params{"values": in})
				bars := f.State.(viz.Bars)
				want := slices.Sorted(slices.Values(in))
				assert.Equal(t, want, bars.Values())
				assert.True(t, bars.AllSorted(), "every bar ends marked sorted")
			})
		}
	}
}

func TestBubbleCounts(t *testing.T) {
	_, f := runToEnd(t, "bubble", Params{"values": []int{5, 3, 8, 1, 2}})
	assert.Equal(t, 10, f.Counters[CounterComparisons])
	// Inversions in 5,3,8,1,2.
	assert.Equal(t, 7, f.Counters[CounterSwaps])
}

func TestSortedInputNeedsNoSwaps(t *testing.T) {
	for _, id := range []string{"bubble", "insertion", "selection"} {
		t.Run(id, func(t *testing.T) {
			_, f := runToEnd(t, id, Params{"values": []int{1, 2, 3, 4, 5}})
			assert.Zero(t, f.Counters[CounterSwaps])
			assert.Positive(t, f.Counters[CounterComparisons])
		})
	}
}

func TestSortStepsRecordComparisons(t *testing.T) {
	in, _ := runToEnd(t, "bubble", Params{"values": []int{2, 1}})

	// Walk back to the first frame and look for a comparing pair.
	for in.StepBack() {
	}
	f := in.Frame()
	assert.Zero(t, f.Cursor)
	seen := false
	for {
		bars := in.Frame().State.(viz.Bars)
		if bars.Items[0].Status == viz.BarComparing && bars.Items[1].Status == viz.BarComparing {
			seen = true
		}
		if !in.StepForward() {
			break
		}
	}
	assert.True(t, seen)
}

func TestSortParams(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantLen int
		wantErr error
	}{
		{"default size", nil, DefaultArraySize, nil},
		{"explicit size", Params{"size": 12}, 12, nil},
		{"size from string", Params{"size": "8"}, 8, nil},
		{"values from csv", Params{"values": "5,4,3"}, 3, nil},
		{"values win over size", Params{"values": []int{1, 2}, "size": 50}, 2, nil},
		{"too small", Params{"size": 1}, 0, errors.ErrInvalidSize},
		{"too large", Params{"size": 1000}, 0, errors.ErrInvalidSize},
		{"value out of range", Params{"values": []int{1, 5000}}, 0, errors.ErrInvalidParams},
		{"not a number", Params{"values": "1,x"}, 0, errors.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars, err := barsInput(tt.params)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, bars.Len())
		})
	}
}

func TestRandomValuesStayInRange(t *testing.T) {
	bars, err := barsInput(Params{"seed": 1, "size": 100})
	require.NoError(t, err)
	for _, v := range bars.Values() {
		assert.GreaterOrEqual(t, v, 10)
		assert.LessOrEqual(t, v, 99)
	}
}

func TestHeapProcedures(t *testing.T) {
	values := []int{50, 30, 70, 20, 40, 60, 80}
	isHeap := func(a []int, above func(c, p int) bool) bool {
		for i := 1; i < len(a); i++ {
			if above(a[i], a[(i-1)/2]) {
				return false
			}
		}
		return true
	}
	minAbove := func(c, p int) bool { return c < p }
	maxAbove := func(c, p int) bool { return c > p }

	for _, id := range []string{"heap-insert", "heap-build"} {
		t.Run(id+"/min", func(t *testing.T) {
			_, f := runToEnd(t, id, Params{"values": values})
			a := f.State.(viz.Bars).Values()
			assert.True(t, isHeap(a, minAbove), "%v", a)
			assert.Equal(t, 20, a[0])
			assert.ElementsMatch(t, values, a)
		})
		t.Run(id+"/max", func(t *testing.T) {
			_, f := runToEnd(t, id, Params{"values": values, "max": true})
			a := f.State.(viz.Bars).Values()
			assert.True(t, isHeap(a, maxAbove), "%v", a)
			assert.Equal(t, 80, a[0])
		})
	}
}

func TestBSTSearch(t *testing.T) {
	values := []int{50, 30, 70, 20, 40, 60, 80}
	labels := func(g viz.Graph, ids []string) []string {
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = g.Node(id).Label
		}
		return out
	}

	t.Run("hit", func(t *testing.T) {
		_, f := runToEnd(t, "bst-search", Params{"values": values, "target": 60})
		g := f.State.(viz.Graph)
		assert.Equal(t, []string{"50", "70", "60"}, labels(g, g.PathNodes))
		assert.Equal(t, g.PathNodes, g.VisitedOrder)
		assert.Equal(t, 3, f.Counters[CounterComparisons])
		assert.Equal(t, 3, f.Counters[CounterNodesVisited])
		assert.Equal(t, 2, f.Counters[CounterPathLength])
		for i := 1; i < len(g.PathNodes); i++ {
			e := g.EdgeBetween(g.PathNodes[i-1], g.PathNodes[i])
			require.NotNil(t, e)
			assert.Equal(t, viz.EdgePath, e.State)
		}
	})
	t.Run("miss", func(t *testing.T) {
		_, f := runToEnd(t, "bst-search", Params{"values": values, "target": "65"})
		g := f.State.(viz.Graph)
		assert.Empty(t, g.PathNodes)
		assert.Equal(t, []string{"50", "70", "60"}, labels(g, g.VisitedOrder))
		assert.Equal(t, 3, f.Counters[CounterComparisons])
		assert.Zero(t, f.Counters[CounterPathLength])
	})
	t.Run("default target is the last value", func(t *testing.T) {
		_, f := runToEnd(t, "bst-search", Params{"values": values})
		g := f.State.(viz.Graph)
		assert.Equal(t, []string{"50", "70", "80"}, labels(g, g.PathNodes))
	})
}

func TestSearchTreeLayout(t *testing.T) {
	st, g := buildSearchTree([]int{50, 30, 70, 30, 20, 80})
	require.Len(t, g.Nodes, 5, "duplicates are dropped")
	assert.Len(t, g.Edges, 4)
	assert.Equal(t, 50, st.nodes[st.root].value)

	var inOrder []string
	for i, n := range g.Nodes {
		inOrder = append(inOrder, n.Label)
		if i > 0 {
			assert.Greater(t, n.X, g.Nodes[i-1].X)
		}
	}
	assert.Equal(t, []string{"20", "30", "50", "70", "80"}, inOrder)
	left := g.Node(st.nodes[st.root].left)
	assert.Equal(t, g.Node(st.root).Y+90, left.Y)
	assert.Equal(t, 1, left.Distance)
	assert.Equal(t, st.root, left.Parent)
}

func TestBSTSearchStepsOncePerNode(t *testing.T) {
	var lines []int
	spec, err := Lookup("bst-search")
	require.NoError(t, err)
	opts := instantOptions()
	opts.Hooks.OnStep = func(_ context.Context, e *engine.StepEvent) { lines = append(lines, e.Line) }
	in, err := spec.New(Params{"values": "50,30,70,20", "target": 20}, opts)
	require.NoError(t, err)
	require.True(t, in.Start())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, in.Wait(ctx))
	compares := 0
	for _, l := range lines {
		if l == 4 {
			compares++
		}
	}
	assert.Equal(t, 3, compares)
}
