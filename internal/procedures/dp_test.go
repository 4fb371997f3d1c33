package procedures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/viz"
)

func finalTable(t *testing.T, id string, p Params) (viz.Table, map[string]int) {
	t.Helper()
	_, f := runToEnd(t, id, p)
	return f.State.(viz.Table), f.Counters
}

func TestDPResults(t *testing.T) {
	tests := []struct {
		id     string
		params Params
		want   string
	}{
		{"fibonacci", nil, "55"},
		{"fibonacci", Params{"n": 0}, "0"},
		{"fibonacci", Params{"n": 1}, "1"},
		{"fibonacci", Params{"n": 20}, "6765"},
		{"knapsack", nil, "10"},
		{"knapsack", Params{"weights": "1,3,4,5", "values": "1,4,5,7", "capacity": 7}, "9"},
		{"lcs", nil, "3"},
		{"lcs", Params{"a": "abc", "b": "abc"}, "3"},
		{"lcs", Params{"a": "abc", "b": "xyz"}, "0"},
		{"edit-distance", nil, "3"},
		{"edit-distance", Params{"a": "kitten", "b": "sitting"}, "3"},
		{"edit-distance", Params{"a": "", "b": "abc"}, "3"},
		{"lis", nil, "5"},
		{"lis", Params{"values": "5,4,3,2,1"}, "1"},
		{"coin-change", nil, "2"},
		{"coin-change", Params{"coins": "2", "amount": 3}, "-1"},
		{"coin-change", Params{"amount": 0}, "0"},
		{"subset-sum", nil, subsetPossible},
		{"subset-sum", Params{"values": "2,4,6", "target": 5}, subsetNotPossible},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			tbl, _ := finalTable(t, tt.id, tt.params)
			assert.Equal(t, tt.want, tbl.Result)
			assert.Empty(t, tbl.Formula)
			assert.Zero(t, tbl.Count(viz.CellStateComputing))
			assert.Zero(t, tbl.Count(viz.CellStateHighlighted))
		})
	}
}

func TestFibonacciTable(t *testing.T) {
	tbl, counters := finalTable(t, "fibonacci", nil)
	require.Equal(t, 11, tbl.Cols())
	want := []int{0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55}
	for i, v := range want {
		assert.Equal(t, v, tbl.Cells[0][i].Value, "F(%d)", i)
	}
	assert.Equal(t, 9, counters[CounterCellsComputed])
	assert.Equal(t, []viz.Point{{Row: 0, Col: 10}}, tbl.OptimalPath)
	assert.Equal(t, viz.CellStateOptimal, tbl.Cells[0][10].State)
}

func TestKnapsackOptimalItems(t *testing.T) {
	tbl, counters := finalTable(t, "knapsack", nil)
	assert.Equal(t, 4*8, counters[CounterCellsComputed])
	assert.Equal(t, []string{"-", "w2 v3", "w3 v4", "w4 v5", "w5 v6"}, tbl.RowHeaders)

	// The second and fourth items fill the capacity of 8 for a value of 10.
	weight, value := 0, 0
	ws, vs := []int{2, 3, 4, 5}, []int{3, 4, 5, 6}
	for _, p := range tbl.OptimalPath {
		weight += ws[p.Row-1]
		value += vs[p.Row-1]
	}
	assert.LessOrEqual(t, weight, 8)
	assert.Equal(t, 10, value)
}

func TestLCSPathSpellsSubsequence(t *testing.T) {
	tbl, counters := finalTable(t, "lcs", nil)
	assert.Equal(t, 36, counters[CounterCellsComputed])
	var got string
	for _, p := range tbl.OptimalPath {
		got += tbl.RowHeaders[p.Row]
	}
	assert.Equal(t, "ADH", got)
}

func TestEditDistanceTable(t *testing.T) {
	tbl, _ := finalTable(t, "edit-distance", Params{"a": "sunday", "b": "saturday"})
	assert.Equal(t, "ε", tbl.RowHeaders[0])
	assert.Equal(t, "S", tbl.RowHeaders[1], "input is uppercased")
	assert.Equal(t, 7, tbl.Rows())
	assert.Equal(t, 9, tbl.Cols())
	for j := range 9 {
		assert.Equal(t, j, tbl.Cells[0][j].Value)
	}
	last := tbl.OptimalPath[len(tbl.OptimalPath)-1]
	assert.Equal(t, viz.Point{Row: 6, Col: 8}, last)
}

func TestLISPathIsIncreasing(t *testing.T) {
	tbl, _ := finalTable(t, "lis", nil)
	require.Len(t, tbl.OptimalPath, 5)
	prev := -1
	for _, p := range tbl.OptimalPath {
		v := tbl.Cells[0][p.Col].Value
		assert.Greater(t, v, prev)
		prev = v
	}
}

func TestCoinChangeMarksUnreachable(t *testing.T) {
	tbl, _ := finalTable(t, "coin-change", Params{"coins": "5", "amount": 7})
	assert.Equal(t, "-1", tbl.Result)
	assert.Equal(t, infinity, tbl.Cells[0][1].Text())
	assert.Equal(t, "1", tbl.Cells[0][5].Text())
	assert.Equal(t, infinity, tbl.Cells[0][7].Text())
	assert.Empty(t, tbl.OptimalPath)
}

func TestDPParams(t *testing.T) {
	tests := []struct {
		id      string
		params  Params
		wantErr error
	}{
		{"fibonacci", Params{"n": 41}, errors.ErrInvalidParams},
		{"fibonacci", Params{"n": -1}, errors.ErrInvalidParams},
		{"knapsack", Params{"weights": "1,2", "values": "3"}, errors.ErrInvalidParams},
		{"knapsack", Params{"capacity": 0}, errors.ErrInvalidParams},
		{"knapsack", Params{"weights": "1,2,3,4,5,6,7,8,9,10,11", "values": "1,2,3,4,5,6,7,8,9,10,11"}, errors.ErrInvalidSize},
		{"lcs", Params{"a": "ABCDEFGHIJKLMNOP"}, errors.ErrInputTooLong},
		{"edit-distance", Params{"b": "THISISWAYTOOLONG"}, errors.ErrInputTooLong},
		{"lis", Params{"values": "1"}, errors.ErrInvalidSize},
		{"coin-change", Params{"coins": "0,1"}, errors.ErrInvalidParams},
		{"coin-change", Params{"amount": 101}, errors.ErrInvalidParams},
		{"subset-sum", Params{"target": -2}, errors.ErrInvalidParams},
		{"subset-sum", Params{"seed": 1}, errors.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			spec, err := Lookup(tt.id)
			require.NoError(t, err)
			_, err = spec.New(tt.params, instantOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
