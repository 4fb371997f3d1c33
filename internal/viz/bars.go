// Package viz defines the visualization states driven by traced procedures:
// bars for arrays, grids for pathfinding, graphs and DP tables. Every state
// is a plain value with a deep Clone so the engine can snapshot it.
package viz

import (
	"math/rand/v2"
	"slices"
)

// BarStatus tags a bar with its role in the current step.
type BarStatus string

const (
	BarUnsorted  BarStatus = "unsorted"
	BarComparing BarStatus = "comparing"
	BarSwapping  BarStatus = "swapping"
	BarSorted    BarStatus = "sorted"
)

// Bar is one array element.
type Bar struct {
	Value  int       `json:"value"`
	Status BarStatus `json:"status"`
}

// Bars is an array being sorted or arranged.
type Bars struct {
	Items []Bar `json:"bars"`
}

// NewBars creates unsorted bars from values.
func NewBars(values []int) Bars {
	items := make([]Bar, len(values))
	for i, v := range values {
		items[i] = Bar{Value: v, Status: BarUnsorted}
	}
	return Bars{Items: items}
}

// Clone returns a deep copy.
func (b Bars) Clone() Bars {
	return Bars{Items: slices.Clone(b.Items)}
}

// Len returns the number of bars.
func (b Bars) Len() int { return len(b.Items) }

// Values returns the bar values in order.
func (b Bars) Values() []int {
	out := make([]int, len(b.Items))
	for i, bar := range b.Items {
		out[i] = bar.Value
	}
	return out
}

// Max returns the largest value, or 0 for an empty array.
func (b Bars) Max() int {
	m := 0
	for _, bar := range b.Items {
		m = max(m, bar.Value)
	}
	return m
}

// AllSorted reports whether every bar is tagged sorted.
func (b Bars) AllSorted() bool {
	for _, bar := range b.Items {
		if bar.Status != BarSorted {
			return false
		}
	}
	return true
}

// Mark tags the given indices with status. Out-of-range indices are ignored.
func (b *Bars) Mark(status BarStatus, idx ...int) {
	for _, i := range idx {
		if i >= 0 && i < len(b.Items) {
			b.Items[i].Status = status
		}
	}
}

// MarkRange tags indices [from, to) with status.
func (b *Bars) MarkRange(status BarStatus, from, to int) {
	for i := max(from, 0); i < min(to, len(b.Items)); i++ {
		b.Items[i].Status = status
	}
}

// MarkAll tags every bar with status.
func (b *Bars) MarkAll(status BarStatus) {
	b.MarkRange(status, 0, len(b.Items))
}

// Swap exchanges the values at i and j, keeping their statuses in place.
func (b *Bars) Swap(i, j int) {
	b.Items[i].Value, b.Items[j].Value = b.Items[j].Value, b.Items[i].Value
}

// RandomValues returns n values in [lo, hi].
func RandomValues(rng *rand.Rand, n, lo, hi int) []int {
	if hi < lo {
		lo, hi = hi, lo
	}
	out := make([]int, n)
	for i := range out {
		out[i] = lo + rng.IntN(hi-lo+1)
	}
	return out
}
