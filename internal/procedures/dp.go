package procedures

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/validate"
	"github.com/manav03panchal/stepwise/internal/viz"
)

// Default DP inputs.
var (
	DefaultFibonacciN   = 10
	DefaultKnapsackW    = []int{2, 3, 4, 5}
	DefaultKnapsackV    = []int{3, 4, 5, 6}
	DefaultCapacity     = 8
	DefaultLCS          = [2]string{"ABCDGH", "AEDFHR"}
	DefaultEdit         = [2]string{"SUNDAY", "SATURDAY"}
	DefaultLIS          = []int{10, 22, 9, 33, 21, 50, 41, 60}
	DefaultCoins        = []int{1, 2, 5, 10}
	DefaultCoinAmount   = 11
	DefaultSubset       = []int{3, 34, 4, 12, 5, 2}
	DefaultSubsetTarget = 9
)

const (
	maxSubsetTarget = validate.MaxCoinAmount
	maxSubsetValues = validate.MaxKnapsackItems

	unreachable       = math.MaxInt
	infinity          = "∞"
	subsetPossible    = "Possible"
	subsetNotPossible = "Not Possible"

	// Two-dimensional tables split each cell's delay between focus and
	// settle.
	tableComputeFraction = 1.0 / 3
)

// FibonacciParams selects the index to compute.
type FibonacciParams struct {
	N *int `mapstructure:"n"`
}

// KnapsackParams describes a 0/1 knapsack instance.
type KnapsackParams struct {
	Weights  []int `mapstructure:"weights"`
	Values   []int `mapstructure:"values"`
	Capacity *int  `mapstructure:"capacity"`
}

// StringPairParams holds the two strings compared by LCS and edit
// distance.
type StringPairParams struct {
	A string `mapstructure:"a"`
	B string `mapstructure:"b"`
}

// SequenceParams holds the array of a longest increasing subsequence.
type SequenceParams struct {
	Values []int `mapstructure:"values"`
}

// CoinParams describes a coin change instance.
type CoinParams struct {
	Coins  []int `mapstructure:"coins"`
	Amount *int  `mapstructure:"amount"`
}

// SubsetParams describes a subset sum instance.
type SubsetParams struct {
	Values []int `mapstructure:"values"`
	Target *int  `mapstructure:"target"`
}

type tableTracer = engine.Tracer[viz.Table]

// defineDP registers a dynamic-programming procedure. build decodes the
// parameters and returns the initial table with the traced body.
func defineDP(spec Spec, build func(p Params) (viz.Table, func(t *tableTracer), error)) *Spec {
	spec.Family = FamilyDP
	spec.Counters = []string{CounterCellsComputed}
	return define[viz.Table](spec, func(p Params) (viz.Table, engine.Procedure[viz.Table], error) {
		tbl, run, err := build(p)
		if err != nil {
			return viz.Table{}, nil, err
		}
		return tbl, engine.Func(spec.ID, run), nil
	})
}

// focus marks (r, c) as being computed and shows its recurrence.
func focus(t *tableTracer, line, r, c int, scale float64, formula string) bool {
	t.Mutate(func(tb *viz.Table) {
		tb.Relax()
		tb.Mark(r, c, viz.CellStateComputing)
		tb.Formula = formula
	})
	return t.StepScaled(line, scale)
}

// settle stores v at (r, c) and counts the cell.
func settle(t *tableTracer, line, r, c, v int, scale float64) bool {
	t.Mutate(func(tb *viz.Table) { tb.Set(r, c, v, viz.CellStateComputed) })
	t.Incr(CounterCellsComputed)
	return t.StepScaled(line, scale)
}

// conclude highlights the optimal cells and publishes the answer.
func conclude(t *tableTracer, path []viz.Point, result string) {
	t.Mutate(func(tb *viz.Table) {
		tb.Relax()
		tb.MarkOptimal(path)
		tb.Formula = ""
		tb.Result = result
	})
	t.Record(engine.NoLine)
}

func indexHeaders(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

func charHeaders(s string) []string {
	out := []string{"ε"}
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

var (
	fibonacciSource = []string{
		"fib(n):",
		"  dp[0] = 0; dp[1] = 1",
		"  for i in 2..n:",
		"    dp[i] = dp[i-1] + dp[i-2]",
		"  return dp[n]",
	}
	knapsackSource = []string{
		"knapsack(wt, val, W):",
		"  dp[0][*] = 0; dp[*][0] = 0",
		"  for i in 1..n:",
		"    for w in 1..W:",
		"      if wt[i] > w:",
		"        dp[i][w] = dp[i-1][w]",
		"      else:",
		"        dp[i][w] = max(dp[i-1][w],",
		"                       dp[i-1][w-wt[i]] + val[i])",
		"  return dp[n][W]",
	}
	lcsSource = []string{
		"lcs(a, b):",
		"  dp[0][*] = 0; dp[*][0] = 0",
		"  for i in 1..len(a):",
		"    for j in 1..len(b):",
		"      if a[i] == b[j]:",
		"        dp[i][j] = dp[i-1][j-1] + 1",
		"      else:",
		"        dp[i][j] = max(dp[i-1][j], dp[i][j-1])",
		"  return dp[m][n]",
	}
	editSource = []string{
		"edit(a, b):",
		"  dp[i][0] = i; dp[0][j] = j",
		"  for i in 1..len(a):",
		"    for j in 1..len(b):",
		"      if a[i] == b[j]:",
		"        dp[i][j] = dp[i-1][j-1]",
		"      else:",
		"        dp[i][j] = 1 + min(dp[i-1][j],",
		"                           dp[i][j-1], dp[i-1][j-1])",
		"  return dp[m][n]",
	}
	lisSource = []string{
		"lis(a):",
		"  dp[*] = 1",
		"  for i in 1..n-1:",
		"    for j in 0..i-1:",
		"      if a[j] < a[i]:",
		"        dp[i] = max(dp[i], dp[j] + 1)",
		"  return max(dp)",
	}
	coinSource = []string{
		"coinChange(coins, amount):",
		"  dp[0] = 0; dp[1..] = ∞",
		"  for c in coins:",
		"    for i in c..amount:",
		"      if dp[i-c] + 1 < dp[i]:",
		"        dp[i] = dp[i-c] + 1",
		"  return dp[amount] or -1",
	}
	subsetSource = []string{
		"subsetSum(a, target):",
		"  dp[i][0] = true",
		"  for i in 1..n:",
		"    for j in 1..target:",
		"      if a[i] > j:",
		"        dp[i][j] = dp[i-1][j]",
		"      else:",
		"        dp[i][j] = dp[i-1][j] or dp[i-1][j-a[i]]",
		"  return dp[n][target]",
	}
)

func init() {
	defineDP(Spec{
		ID:          "fibonacci",
		Name:        "Fibonacci",
		Description: "Builds F(0)..F(n) bottom-up from the two previous entries.",
		Complexity:  "O(n)",
		Source:      fibonacciSource,
	}, fibonacciTable)
	defineDP(Spec{
		ID:          "knapsack",
		Name:        "0/1 Knapsack",
		Description: "Best total value within a weight capacity, each item used at most once.",
		Complexity:  "O(n·W)",
		Source:      knapsackSource,
	}, knapsackTable)
	defineDP(Spec{
		ID:          "lcs",
		Name:        "Longest Common Subsequence",
		Description: "Length of the longest subsequence shared by two strings.",
		Complexity:  "O(m·n)",
		Source:      lcsSource,
	}, lcsTable)
	defineDP(Spec{
		ID:          "edit-distance",
		Name:        "Edit Distance",
		Description: "Fewest insertions, deletions and replacements turning one string into another.",
		Complexity:  "O(m·n)",
		Source:      editSource,
	}, editTable)
	defineDP(Spec{
		ID:          "lis",
		Name:        "Longest Increasing Subsequence",
		Description: "Length of the longest strictly increasing subsequence.",
		Complexity:  "O(n²)",
		Source:      lisSource,
	}, lisTable)
	defineDP(Spec{
		ID:          "coin-change",
		Name:        "Coin Change",
		Description: "Fewest coins summing to an amount, or -1 when it cannot be made.",
		Complexity:  "O(k·amount)",
		Source:      coinSource,
	}, coinTable)
	defineDP(Spec{
		ID:          "subset-sum",
		Name:        "Subset Sum",
		Description: "Whether some subset of the values adds up to the target.",
		Complexity:  "O(n·target)",
		Source:      subsetSource,
	}, subsetTable)
}

func fibonacciTable(p Params) (viz.Table, func(t *tableTracer), error) {
	var fp FibonacciParams
	if err := decode(p, &fp); err != nil {
		return viz.Table{}, nil, err
	}
	n := intOr(fp.N, DefaultFibonacciN)
	if err := validate.InRange("n", n, 0, validate.MaxFibonacci); err != nil {
		return viz.Table{}, nil, err
	}

	tbl := viz.NewTable(fmt.Sprintf("Fibonacci F(%d)", n), 1, n+1)
	tbl.RowHeaders = []string{"F"}
	tbl.ColHeaders = indexHeaders(0, n)
	tbl.Set(0, 0, 0, viz.CellStateComputed)
	if n >= 1 {
		tbl.Set(0, 1, 1, viz.CellStateComputed)
	}

	return tbl, func(t *tableTracer) {
		dp := make([]int, n+1)
		if n >= 1 {
			dp[1] = 1
		}
		if !t.Step(2) {
			return
		}
		for i := 2; i <= n; i++ {
			if !focus(t, 3, 0, i, 1, fmt.Sprintf("dp[%d] = dp[%d] + dp[%d]", i, i-1, i-2)) {
				return
			}
			dp[i] = dp[i-1] + dp[i-2]
			if !settle(t, 4, 0, i, dp[i], 1) {
				return
			}
		}
		conclude(t, []viz.Point{{Row: 0, Col: n}}, strconv.Itoa(dp[n]))
	}, nil
}

func knapsackTable(p Params) (viz.Table, func(t *tableTracer), error) {
	var kp KnapsackParams
	if err := decode(p, &kp); err != nil {
		return viz.Table{}, nil, err
	}
	if len(kp.Weights) == 0 && len(kp.Values) == 0 {
		kp.Weights, kp.Values = slices.Clone(DefaultKnapsackW), slices.Clone(DefaultKnapsackV)
	}
	if err := validate.Items(kp.Weights, kp.Values); err != nil {
		return viz.Table{}, nil, err
	}
	capacity := intOr(kp.Capacity, DefaultCapacity)
	if err := validate.InRange("capacity", capacity, 1, validate.MaxKnapsackCapacity); err != nil {
		return viz.Table{}, nil, err
	}
	wt, val := kp.Weights, kp.Values
	n := len(wt)

	tbl := viz.NewTable(fmt.Sprintf("0/1 Knapsack (capacity %d)", capacity), n+1, capacity+1)
	tbl.RowHeaders = []string{"-"}
	for i := range wt {
		tbl.RowHeaders = append(tbl.RowHeaders, fmt.Sprintf("w%d v%d", wt[i], val[i]))
	}
	tbl.ColHeaders = indexHeaders(0, capacity)
	for i := 0; i <= n; i++ {
		tbl.Set(i, 0, 0, viz.CellStateComputed)
	}
	for w := 0; w <= capacity; w++ {
		tbl.Set(0, w, 0, viz.CellStateComputed)
	}

	return tbl, func(t *tableTracer) {
		dp := make([][]int, n+1)
		for i := range dp {
			dp[i] = make([]int, capacity+1)
		}
		if !t.Step(2) {
			return
		}
		for i := 1; i <= n; i++ {
			for w := 1; w <= capacity; w++ {
				formula := fmt.Sprintf("dp[%d][%d] = max(dp[%d][%d], dp[%d][%d] + %d)", i, w, i-1, w, i-1, w-wt[i-1], val[i-1])
				line := 8
				if wt[i-1] > w {
					formula = fmt.Sprintf("dp[%d][%d] = dp[%d][%d]", i, w, i-1, w)
					line = 6
				}
				if !focus(t, 5, i, w, 0.5, formula) {
					return
				}
				dp[i][w] = dp[i-1][w]
				if wt[i-1] <= w {
					dp[i][w] = max(dp[i-1][w], dp[i-1][w-wt[i-1]]+val[i-1])
				}
				if !settle(t, line, i, w, dp[i][w], 0.5) {
					return
				}
			}
		}

		var path []viz.Point
		for i, w := n, capacity; i > 0 && w > 0; i-- {
			if dp[i][w] != dp[i-1][w] {
				path = append(path, viz.Point{Row: i, Col: w})
				w -= wt[i-1]
			}
		}
		conclude(t, path, strconv.Itoa(dp[n][capacity]))
	}, nil
}

// stringPair decodes, sanitizes and validates a pair of DP strings.
func stringPair(p Params, def [2]string) (string, string, error) {
	var sp StringPairParams
	if err := decode(p, &sp); err != nil {
		return "", "", err
	}
	a, b := validate.SanitizeText(sp.A), validate.SanitizeText(sp.B)
	if a == "" && b == "" {
		a, b = def[0], def[1]
	}
	if err := validate.Text("a", a); err != nil {
		return "", "", err
	}
	if err := validate.Text("b", b); err != nil {
		return "", "", err
	}
	return a, b, nil
}

func lcsTable(p Params) (viz.Table, func(t *tableTracer), error) {
	a, b, err := stringPair(p, DefaultLCS)
	if err != nil {
		return viz.Table{}, nil, err
	}
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)

	tbl := viz.NewTable(fmt.Sprintf("LCS %q / %q", a, b), m+1, n+1)
	tbl.RowHeaders = charHeaders(a)
	tbl.ColHeaders = charHeaders(b)
	for i := 0; i <= m; i++ {
		tbl.Set(i, 0, 0, viz.CellStateComputed)
	}
	for j := 0; j <= n; j++ {
		tbl.Set(0, j, 0, viz.CellStateComputed)
	}

	return tbl, func(t *tableTracer) {
		dp := make([][]int, m+1)
		for i := range dp {
			dp[i] = make([]int, n+1)
		}
		if !t.Step(2) {
			return
		}
		for i := 1; i <= m; i++ {
			for j := 1; j <= n; j++ {
				match := ra[i-1] == rb[j-1]
				formula := fmt.Sprintf("dp[%d][%d] = max(dp[%d][%d], dp[%d][%d])", i, j, i-1, j, i, j-1)
				line := 8
				if match {
					formula = fmt.Sprintf("dp[%d][%d] = dp[%d][%d] + 1", i, j, i-1, j-1)
					line = 6
				}
				if !focus(t, 5, i, j, tableComputeFraction, formula) {
					return
				}
				if match {
					dp[i][j] = dp[i-1][j-1] + 1
				} else {
					dp[i][j] = max(dp[i-1][j], dp[i][j-1])
				}
				if !settle(t, line, i, j, dp[i][j], tableComputeFraction) {
					return
				}
			}
		}

		var path []viz.Point
		for i, j := m, n; i > 0 && j > 0; {
			switch {
			case ra[i-1] == rb[j-1]:
				path = append(path, viz.Point{Row: i, Col: j})
				i, j = i-1, j-1
			case dp[i-1][j] > dp[i][j-1]:
				i--
			default:
				j--
			}
		}
		slices.Reverse(path)
		conclude(t, path, strconv.Itoa(dp[m][n]))
	}, nil
}

func editTable(p Params) (viz.Table, func(t *tableTracer), error) {
	a, b, err := stringPair(p, DefaultEdit)
	if err != nil {
		return viz.Table{}, nil, err
	}
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)

	tbl := viz.NewTable(fmt.Sprintf("Edit distance %q → %q", a, b), m+1, n+1)
	tbl.RowHeaders = charHeaders(a)
	tbl.ColHeaders = charHeaders(b)
	for i := 0; i <= m; i++ {
		tbl.Set(i, 0, i, viz.CellStateComputed)
	}
	for j := 0; j <= n; j++ {
		tbl.Set(0, j, j, viz.CellStateComputed)
	}

	return tbl, func(t *tableTracer) {
		dp := make([][]int, m+1)
		for i := range dp {
			dp[i] = make([]int, n+1)
			dp[i][0] = i
		}
		for j := 0; j <= n; j++ {
			dp[0][j] = j
		}
		if !t.Step(2) {
			return
		}
		for i := 1; i <= m; i++ {
			for j := 1; j <= n; j++ {
				match := ra[i-1] == rb[j-1]
				formula := fmt.Sprintf("dp[%d][%d] = 1 + min(dp[%d][%d], dp[%d][%d], dp[%d][%d])", i, j, i-1, j, i, j-1, i-1, j-1)
				line := 8
				if match {
					formula = fmt.Sprintf("dp[%d][%d] = dp[%d][%d]", i, j, i-1, j-1)
					line = 6
				}
				if !focus(t, 5, i, j, tableComputeFraction, formula) {
					return
				}
				if match {
					dp[i][j] = dp[i-1][j-1]
				} else {
					dp[i][j] = 1 + min(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
				}
				if !settle(t, line, i, j, dp[i][j], tableComputeFraction) {
					return
				}
			}
		}

		var path []viz.Point
		for i, j := m, n; i > 0 || j > 0; {
			if i > 0 && j > 0 {
				path = append(path, viz.Point{Row: i, Col: j})
			}
			switch {
			case i > 0 && j > 0 && ra[i-1] == rb[j-1]:
				i, j = i-1, j-1
			case j > 0 && (i == 0 || dp[i][j-1] <= dp[i-1][j] && dp[i][j-1] <= dp[i-1][j-1]):
				j--
			case i > 0 && (j == 0 || dp[i-1][j] <= dp[i][j-1] && dp[i-1][j] <= dp[i-1][j-1]):
				i--
			default:
				i, j = i-1, j-1
			}
		}
		slices.Reverse(path)
		conclude(t, path, strconv.Itoa(dp[m][n]))
	}, nil
}

func lisTable(p Params) (viz.Table, func(t *tableTracer), error) {
	var sp SequenceParams
	if err := decode(p, &sp); err != nil {
		return viz.Table{}, nil, err
	}
	a := sp.Values
	if len(a) == 0 {
		a = slices.Clone(DefaultLIS)
	}
	if err := validate.Values(a); err != nil {
		return viz.Table{}, nil, err
	}
	n := len(a)

	// Row 0 holds the input, row 1 the lengths.
	tbl := viz.NewTable("Longest Increasing Subsequence", 2, n)
	tbl.RowHeaders = []string{"a", "dp"}
	tbl.ColHeaders = indexHeaders(0, n-1)
	for i, v := range a {
		tbl.Set(0, i, v, viz.CellStateComputed)
	}
	tbl.Set(1, 0, 1, viz.CellStateComputed)

	return tbl, func(t *tableTracer) {
		dp := make([]int, n)
		prev := make([]int, n)
		for i := range dp {
			dp[i], prev[i] = 1, -1
		}
		if !t.Step(2) {
			return
		}
		for i := 1; i < n; i++ {
			for j := 0; j < i; j++ {
				formula := fmt.Sprintf("dp[%d] = max(dp[%d], dp[%d] + 1)", i, i, j)
				if !focus(t, 4, 1, i, tableComputeFraction, formula) {
					return
				}
				t.Mutate(func(tb *viz.Table) { tb.Mark(1, j, viz.CellStateHighlighted) })
				if !t.StepScaled(5, tableComputeFraction) {
					return
				}
				if a[j] < a[i] && dp[j]+1 > dp[i] {
					dp[i], prev[i] = dp[j]+1, j
					t.SetLine(6)
				}
			}
			if !settle(t, 6, 1, i, dp[i], 1) {
				return
			}
		}

		best := 0
		for i := range dp {
			if dp[i] > dp[best] {
				best = i
			}
		}
		var path []viz.Point
		for i := best; i >= 0; i = prev[i] {
			path = append(path, viz.Point{Row: 1, Col: i})
		}
		slices.Reverse(path)
		conclude(t, path, strconv.Itoa(dp[best]))
	}, nil
}

func coinTable(p Params) (viz.Table, func(t *tableTracer), error) {
	var cp CoinParams
	if err := decode(p, &cp); err != nil {
		return viz.Table{}, nil, err
	}
	coins := cp.Coins
	if len(coins) == 0 {
		coins = slices.Clone(DefaultCoins)
	}
	if err := validate.Coins(coins); err != nil {
		return viz.Table{}, nil, err
	}
	amount := intOr(cp.Amount, DefaultCoinAmount)
	if err := validate.InRange("amount", amount, 0, validate.MaxCoinAmount); err != nil {
		return viz.Table{}, nil, err
	}

	tbl := viz.NewTable(fmt.Sprintf("Coin change for %d", amount), 1, amount+1)
	tbl.RowHeaders = []string{"coins"}
	tbl.ColHeaders = indexHeaders(0, amount)
	tbl.Set(0, 0, 0, viz.CellStateComputed)

	return tbl, func(t *tableTracer) {
		dp := make([]int, amount+1)
		for i := 1; i <= amount; i++ {
			dp[i] = unreachable
		}
		if !t.Step(2) {
			return
		}
		for _, c := range coins {
			for i := c; i <= amount; i++ {
				formula := fmt.Sprintf("dp[%d] = min(dp[%d], dp[%d] + 1)", i, i, i-c)
				if !focus(t, 5, 0, i, 0.5, formula) {
					return
				}
				line := 5
				if dp[i-c] != unreachable && dp[i-c]+1 < dp[i] {
					dp[i] = dp[i-c] + 1
					line = 6
				}
				v := dp[i]
				t.Mutate(func(tb *viz.Table) {
					tb.Cells[0][i].Display = ""
					if v == unreachable {
						tb.Cells[0][i].Display = infinity
					}
				})
				if v == unreachable {
					v = 0
				}
				if !settle(t, line, 0, i, v, 0.5) {
					return
				}
			}
		}

		// Amounts no coin touched were never computed.
		t.Mutate(func(tb *viz.Table) {
			for i := 1; i <= amount; i++ {
				if tb.Cells[0][i].State == viz.CellStateEmpty {
					tb.Cells[0][i].Display = infinity
				}
			}
		})
		if dp[amount] == unreachable {
			conclude(t, nil, "-1")
			return
		}
		conclude(t, []viz.Point{{Row: 0, Col: amount}}, strconv.Itoa(dp[amount]))
	}, nil
}

func subsetTable(p Params) (viz.Table, func(t *tableTracer), error) {
	var sp SubsetParams
	if err := decode(p, &sp); err != nil {
		return viz.Table{}, nil, err
	}
	a := sp.Values
	if len(a) == 0 {
		a = slices.Clone(DefaultSubset)
	}
	if err := validate.InRange("values", len(a), 1, maxSubsetValues); err != nil {
		return viz.Table{}, nil, err
	}
	for i, v := range a {
		if err := validate.InRange(fmt.Sprintf("values[%d]", i), v, 1, validate.MaxArrayValue); err != nil {
			return viz.Table{}, nil, err
		}
	}
	target := intOr(sp.Target, DefaultSubsetTarget)
	if err := validate.InRange("target", target, 0, maxSubsetTarget); err != nil {
		return viz.Table{}, nil, err
	}
	n := len(a)

	tbl := viz.NewTable(fmt.Sprintf("Subset sum to %d", target), n+1, target+1)
	tbl.RowHeaders = []string{"-"}
	for _, v := range a {
		tbl.RowHeaders = append(tbl.RowHeaders, strconv.Itoa(v))
	}
	tbl.ColHeaders = indexHeaders(0, target)
	setBool := func(tb *viz.Table, i, j int, v bool) {
		tb.Set(i, j, boolInt(v), viz.CellStateComputed)
		tb.Cells[i][j].Display = boolText(v)
	}
	for i := 0; i <= n; i++ {
		setBool(&tbl, i, 0, true)
	}
	for j := 1; j <= target; j++ {
		setBool(&tbl, 0, j, false)
	}

	return tbl, func(t *tableTracer) {
		dp := make([][]bool, n+1)
		for i := range dp {
			dp[i] = make([]bool, target+1)
			dp[i][0] = true
		}
		if !t.Step(2) {
			return
		}
		for i := 1; i <= n; i++ {
			for j := 1; j <= target; j++ {
				formula := fmt.Sprintf("dp[%d][%d] = dp[%d][%d] || dp[%d][%d]", i, j, i-1, j, i-1, j-a[i-1])
				line := 8
				if a[i-1] > j {
					formula = fmt.Sprintf("dp[%d][%d] = dp[%d][%d]", i, j, i-1, j)
					line = 6
				}
				if !focus(t, 5, i, j, tableComputeFraction, formula) {
					return
				}
				dp[i][j] = dp[i-1][j] || (a[i-1] <= j && dp[i-1][j-a[i-1]])
				v := dp[i][j]
				t.Mutate(func(tb *viz.Table) { tb.Cells[i][j].Display = boolText(v) })
				if !settle(t, line, i, j, boolInt(v), tableComputeFraction) {
					return
				}
			}
		}

		if !dp[n][target] {
			conclude(t, nil, subsetNotPossible)
			return
		}
		var path []viz.Point
		for i, j := n, target; i > 0 && j > 0; i-- {
			if !dp[i-1][j] {
				path = append(path, viz.Point{Row: i, Col: j})
				j -= a[i-1]
			}
		}
		conclude(t, path, subsetPossible)
	}, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func boolText(v bool) string {
	if v {
		return "T"
	}
	return "F"
}
