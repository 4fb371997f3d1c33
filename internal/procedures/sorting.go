package procedures

import (
	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/validate"
	"github.com/manav03panchal/stepwise/internal/viz"
)

// Counter names.
const (
	CounterComparisons   = "comparisons"
	CounterSwaps         = "swaps"
	CounterNodesVisited  = "nodesVisited"
	CounterEdgesRelaxed  = "edgesRelaxed"
	CounterPathLength    = "pathLength"
	CounterCellsComputed = "cellsComputed"
)

// DefaultArraySize is the length of a generated sorting input.
const DefaultArraySize = 30

// SortParams configures a sorting input. Values wins over Size.
type SortParams struct {
	Seeded `mapstructure:",squash"`
	Values []int `mapstructure:"values"`
	Size   int   `mapstructure:"size"`
}

func barsInput(p Params) (viz.Bars, error) {
	var sp SortParams
	if err := decode(p, &sp); err != nil {
		return viz.Bars{}, err
	}
	return sp.bars()
}

func (sp SortParams) bars() (viz.Bars, error) {
	if len(sp.Values) > 0 {
		if err := validate.Values(sp.Values); err != nil {
			return viz.Bars{}, err
		}
		return viz.NewBars(sp.Values), nil
	}
	if sp.Size == 0 {
		sp.Size = DefaultArraySize
	}
	if err := validate.ArraySize(sp.Size); err != nil {
		return viz.Bars{}, err
	}
	return viz.NewBars(viz.RandomValues(sp.rng(), sp.Size, 10, 99)), nil
}

type barsTracer = engine.Tracer[viz.Bars]

func defineSort(spec Spec, run func(t *barsTracer)) *Spec {
	spec.Family = FamilySorting
	spec.Counters = []string{CounterComparisons, CounterSwaps}
	return define[viz.Bars](spec, func(p Params) (viz.Bars, engine.Procedure[viz.Bars], error) {
		bars, err := barsInput(p)
		if err != nil {
			return viz.Bars{}, nil, err
		}
		return bars, engine.Func(spec.ID, run), nil
	})
}

func mark(t *barsTracer, status viz.BarStatus, idx ...int) {
	t.Mutate(func(b *viz.Bars) { b.Mark(status, idx...) })
}

// compare highlights i and j, counts a comparison and suspends.
func compare(t *barsTracer, line, i, j int) bool {
	mark(t, viz.BarComparing, i, j)
	t.Incr(CounterComparisons)
	return t.Step(line)
}

// exchange shows i and j as swapping for half a unit, swaps them and
// records the result.
func exchange(t *barsTracer, a []int, line, i, j int) bool {
	mark(t, viz.BarSwapping, i, j)
	if !t.StepScaled(line, 0.5) {
		return false
	}
	a[i], a[j] = a[j], a[i]
	t.Mutate(func(b *viz.Bars) { b.Swap(i, j) })
	t.Incr(CounterSwaps)
	return t.Record(line)
}

// finish marks every bar sorted and records the terminal frame.
func finish(t *barsTracer) {
	t.Mutate(func(b *viz.Bars) { b.MarkAll(viz.BarSorted) })
	t.Record(engine.NoLine)
}

var (
	bubbleSource = []string{
		"bubbleSort(a):",
		"  n = len(a)",
		"  for i in 0 .. n-2:",
		"    for j in 0 .. n-i-2:",
		"      if a[j] > a[j+1]:",
		"        swap(a[j], a[j+1])",
		"  return a",
	}
	selectionSource = []string{
		"selectionSort(a):",
		"  n = len(a)",
		"  for i in 0 .. n-2:",
		"    min = i",
		"    for j in i+1 .. n-1:",
		"      if a[j] < a[min]:",
		"        min = j",
		"      end",
		"    end",
		"    swap(a[i], a[min])",
		"  return a",
	}
	insertionSource = []string{
		"insertionSort(a):",
		"  for i in 1 .. n-1:",
		"    key = a[i]",
		"    j = i - 1",
		"    while j >= 0 and a[j] > key:",
		"      a[j+1] = a[j]",
		"      j = j - 1",
		"    end",
		"    a[j+1] = key",
		"  return a",
	}
	quickSource = []string{
		"quickSort(a, lo, hi):",
		"  if lo < hi:",
		"    p = partition(a, lo, hi)",
		"    quickSort(a, lo, p-1)",
		"    quickSort(a, p+1, hi)",
		"",
		"partition(a, lo, hi):",
		"  pivot = a[hi]",
		"  i = lo - 1",
		"  for j in lo .. hi-1:",
		"    if a[j] < pivot:",
		"      i = i + 1",
		"      swap(a[i], a[j])",
		"  swap(a[i+1], a[hi])",
		"  return i + 1",
	}
	mergeSource = []string{
		"mergeSort(a, lo, hi):",
		"  if hi <= lo: return",
		"  mid = (lo + hi) / 2",
		"  mergeSort(a, lo, mid)",
		"  mergeSort(a, mid+1, hi)",
		"  merge(a, lo, mid, hi)",
		"",
		"merge(a, lo, mid, hi):",
		"  left, right = a[lo..mid], a[mid+1..hi]",
		"  while left and right:",
		"    if left[0] <= right[0]: a[k] = take(left)",
		"    else: a[k] = take(right)",
		"  copy the rest into a",
	}
	heapSource = []string{
		"heapSort(a):",
		"  n = len(a)",
		"  for i in n/2-1 down to 0:",
		"    heapify(a, n, i)",
		"  for i in n-1 down to 1:",
		"    swap(a[0], a[i])",
		"    heapify(a, i, 0)",
		"",
		"heapify(a, n, i):",
		"  largest = i",
		"  l, r = 2i+1, 2i+2",
		"  if l < n and a[l] > a[largest]: largest = l",
		"  if r < n and a[r] > a[largest]: largest = r",
		"  if largest != i:",
		"    swap(a[i], a[largest])",
		"    heapify(a, n, largest)",
	}
)

func init() {
	defineSort(Spec{
		ID:          "bubble",
		Name:        "Bubble Sort",
		Description: "Repeatedly swaps adjacent out-of-order pairs until the largest values bubble to the end.",
		Complexity:  "O(n²)",
		Source:      bubbleSource,
	}, bubbleSort)
	defineSort(Spec{
		ID:          "selection",
		Name:        "Selection Sort",
		Description: "Selects the minimum of the unsorted suffix and swaps it into place.",
		Complexity:  "O(n²)",
		Source:      selectionSource,
	}, selectionSort)
	defineSort(Spec{
		ID:          "insertion",
		Name:        "Insertion Sort",
		Description: "Grows a sorted prefix by shifting each new value left into position.",
		Complexity:  "O(n²)",
		Source:      insertionSource,
	}, insertionSort)
	defineSort(Spec{
		ID:          "quick",
		Name:        "Quick Sort",
		Description: "Partitions around the last element and recurses into both sides.",
		Complexity:  "O(n log n) average",
		Source:      quickSource,
	}, quickSort)
	defineSort(Spec{
		ID:          "merge",
		Name:        "Merge Sort",
		Description: "Sorts both halves and merges them back in order.",
		Complexity:  "O(n log n)",
		Source:      mergeSource,
	}, mergeSort)
	defineSort(Spec{
		ID:          "heap",
		Name:        "Heap Sort",
		Description: "Builds a max-heap and repeatedly moves its root to the end.",
		Complexity:  "O(n log n)",
		Source:      heapSource,
	}, heapSort)
}

func bubbleSort(t *barsTracer) {
	a := t.State().Values()
	n := len(a)
	if n < 2 {
		return
	}
	for i := 0; i < n-1; i++ {
		if !t.Record(3) {
			return
		}
		for j := 0; j < n-i-1; j++ {
			if !compare(t, 4, j, j+1) {
				return
			}
			t.SetLine(5)
			if a[j] > a[j+1] {
				if !exchange(t, a, 6, j, j+1) {
					return
				}
			}
			mark(t, viz.BarUnsorted, j, j+1)
		}
		mark(t, viz.BarSorted, n-1-i)
		if !t.Record(3) {
			return
		}
	}
	finish(t)
}

func selectionSort(t *barsTracer) {
	a := t.State().Values()
	n := len(a)
	if n < 2 {
		return
	}
	for i := 0; i < n-1; i++ {
		minIdx := i
		mark(t, viz.BarComparing, i)
		if !t.Record(4) {
			return
		}
		for j := i + 1; j < n; j++ {
			mark(t, viz.BarComparing, j)
			t.Incr(CounterComparisons)
			if !t.Step(5) {
				return
			}
			t.SetLine(6)
			if a[j] < a[minIdx] {
				if minIdx != i {
					mark(t, viz.BarUnsorted, minIdx)
				}
				minIdx = j
				mark(t, viz.BarSwapping, minIdx)
				if !t.Record(7) {
					return
				}
			} else {
				mark(t, viz.BarUnsorted, j)
			}
		}
		if minIdx != i {
			if !exchange(t, a, 10, i, minIdx) {
				return
			}
			mark(t, viz.BarUnsorted, minIdx)
		}
		mark(t, viz.BarSorted, i)
		if !t.Record(3) {
			return
		}
	}
	finish(t)
}

func insertionSort(t *barsTracer) {
	a := t.State().Values()
	n := len(a)
	if n < 2 {
		return
	}
	mark(t, viz.BarSorted, 0)
	if !t.Record(2) {
		return
	}
	for i := 1; i < n; i++ {
		mark(t, viz.BarComparing, i)
		if !t.Step(4) {
			return
		}
		j := i - 1
		for j >= 0 {
			t.Incr(CounterComparisons)
			if a[j] <= a[j+1] {
				break
			}
			mark(t, viz.BarComparing, j)
			if !t.Step(5) {
				return
			}
			if !exchange(t, a, 6, j, j+1) {
				return
			}
			mark(t, viz.BarSorted, j+1)
			j--
		}
		mark(t, viz.BarSorted, j+1)
		if !t.Record(9) {
			return
		}
	}
	finish(t)
}

func quickSort(t *barsTracer) {
	a := t.State().Values()
	if len(a) < 2 {
		return
	}
	if quickRange(t, a, 0, len(a)-1) {
		finish(t)
	}
}

func quickRange(t *barsTracer, a []int, lo, hi int) bool {
	if lo > hi {
		return true
	}
	if lo == hi {
		mark(t, viz.BarSorted, lo)
		return t.Record(2)
	}
	p, ok := partition(t, a, lo, hi)
	if !ok {
		return false
	}
	return quickRange(t, a, lo, p-1) && quickRange(t, a, p+1, hi)
}

func partition(t *barsTracer, a []int, lo, hi int) (int, bool) {
	pivot := a[hi]
	mark(t, viz.BarSwapping, hi)
	if !t.Record(8) {
		return 0, false
	}
	i := lo - 1
	for j := lo; j < hi; j++ {
		mark(t, viz.BarComparing, j)
		t.Incr(CounterComparisons)
		if !t.Step(11) {
			return 0, false
		}
		if a[j] < pivot {
			i++
			if i != j {
				if !exchange(t, a, 13, i, j) {
					return 0, false
				}
			}
			mark(t, viz.BarUnsorted, i)
		}
		mark(t, viz.BarUnsorted, j)
	}
	p := i + 1
	if p != hi {
		if !exchange(t, a, 14, p, hi) {
			return 0, false
		}
	}
	mark(t, viz.BarUnsorted, hi)
	mark(t, viz.BarSorted, p)
	return p, t.Record(15)
}

func mergeSort(t *barsTracer) {
	a := t.State().Values()
	if len(a) < 2 {
		return
	}
	if mergeRange(t, a, 0, len(a)-1) {
		finish(t)
	}
}

func mergeRange(t *barsTracer, a []int, lo, hi int) bool {
	if hi <= lo {
		return true
	}
	mid := (lo + hi) / 2
	if !t.Record(3) {
		return false
	}
	return mergeRange(t, a, lo, mid) &&
		mergeRange(t, a, mid+1, hi) &&
		merge(t, a, lo, mid, hi)
}

func merge(t *barsTracer, a []int, lo, mid, hi int) bool {
	left := append([]int(nil), a[lo:mid+1]...)
	right := append([]int(nil), a[mid+1:hi+1]...)
	write := func(k, v, line int) bool {
		a[k] = v
		t.Mutate(func(b *viz.Bars) {
			b.Items[k].Value = v
			b.Items[k].Status = viz.BarSwapping
		})
		t.Incr(CounterSwaps)
		if !t.StepScaled(line, 0.5) {
			return false
		}
		mark(t, viz.BarUnsorted, k)
		return true
	}

	i, j, k := 0, 0, lo
	for i < len(left) && j < len(right) {
		mark(t, viz.BarComparing, lo+i, mid+1+j)
		t.Incr(CounterComparisons)
		if !t.Step(10) {
			return false
		}
		mark(t, viz.BarUnsorted, lo+i, mid+1+j)
		if left[i] <= right[j] {
			if !write(k, left[i], 11) {
				return false
			}
			i++
		} else {
			if !write(k, right[j], 12) {
				return false
			}
			j++
		}
		k++
	}
	for ; i < len(left); i, k = i+1, k+1 {
		if !write(k, left[i], 13) {
			return false
		}
	}
	for ; j < len(right); j, k = j+1, k+1 {
		if !write(k, right[j], 13) {
			return false
		}
	}
	return true
}

func heapSort(t *barsTracer) {
	a := t.State().Values()
	n := len(a)
	if n < 2 {
		return
	}
	for i := n/2 - 1; i >= 0; i-- {
		if !t.Record(3) || !heapify(t, a, n, i) {
			return
		}
	}
	for i := n - 1; i > 0; i-- {
		if !exchange(t, a, 6, 0, i) {
			return
		}
		mark(t, viz.BarUnsorted, 0)
		mark(t, viz.BarSorted, i)
		if !heapify(t, a, i, 0) {
			return
		}
	}
	finish(t)
}

func heapify(t *barsTracer, a []int, n, i int) bool {
	for {
		largest := i
		l, r := 2*i+1, 2*i+2
		if l < n {
			if !compare(t, 12, l, largest) {
				return false
			}
			mark(t, viz.BarUnsorted, l, largest)
			if a[l] > a[largest] {
				largest = l
			}
		}
		if r < n {
			if !compare(t, 13, r, largest) {
				return false
			}
			mark(t, viz.BarUnsorted, r, largest)
			if a[r] > a[largest] {
				largest = r
			}
		}
		if largest == i {
			return true
		}
		if !exchange(t, a, 15, i, largest) {
			return false
		}
		mark(t, viz.BarUnsorted, i, largest)
		i = largest
	}
}
