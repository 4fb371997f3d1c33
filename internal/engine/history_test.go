package engine

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a small state with a reference-typed field so that aliasing
// bugs show up.
type testState struct {
	Values []int
	Tags   []string
}

func (s testState) Clone() testState {
	return testState{Values: slices.Clone(s.Values), Tags: slices.Clone(s.Tags)}
}

func newState(values ...int) testState {
	tags := make([]string, len(values))
	for i := range tags {
		tags[i] = "unsorted"
	}
	return testState{Values: values, Tags: tags}
}

// =============================================================================
// History Tests
// =============================================================================

func TestNewHistory(t *testing.T) {
	h := NewHistory[testState](0)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, -1, h.Cursor())
	assert.Equal(t, DefaultHistoryCapacity, h.Capacity())
	assert.False(t, h.CanStepBack())
	assert.False(t, h.CanStepForward())
}

func TestHistoryAppendMovesCursorToTail(t *testing.T) {
	h := NewHistory[testState](10)
	for i := range 3 {
		h.Append(Snapshot[testState]{State: newState(i)})
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Cursor())
	assert.True(t, h.CanStepBack())
	assert.False(t, h.CanStepForward())
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory[testState](DefaultHistoryCapacity)
	for i := range DefaultHistoryCapacity + 1 {
		h.Append(Snapshot[testState]{State: newState(i), Line: i})
	}

	require.Equal(t, DefaultHistoryCapacity, h.Len())
	assert.Equal(t, DefaultHistoryCapacity-1, h.Cursor())

	oldest, ok := h.At(0)
	require.True(t, ok)
	assert.Equal(t, []int{1}, oldest.State.Values, "first snapshot evicted")
	assert.Equal(t, uint64(2), oldest.Seq)

	newest, ok := h.At(h.Len() - 1)
	require.True(t, ok)
	assert.Equal(t, DefaultHistoryCapacity, newest.Line)
}

func TestHistorySeqPastCapacity(t *testing.T) {
	h := NewHistory[testState](3)
	assert.Zero(t, h.Seq())
	for i := range 7 {
		h.Append(Snapshot[testState]{State: newState(i)})
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, uint64(7), h.Seq())

	_, ok := h.Back()
	require.True(t, ok)
	assert.Equal(t, uint64(6), h.Seq())

	h.Clear()
	assert.Zero(t, h.Seq())
}

func TestHistoryTruncateOnBranch(t *testing.T) {
	h := NewHistory[testState](10)
	for i := range 5 {
		h.Append(Snapshot[testState]{State: newState(i)})
	}
	for range 3 {
		_, ok := h.Back()
		require.True(t, ok)
	}
	require.Equal(t, 1, h.Cursor())

	h.Append(Snapshot[testState]{State: newState(99)})

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Cursor())
	tail, _ := h.At(2)
	assert.Equal(t, []int{99}, tail.State.Values)
	assert.False(t, h.CanStepForward())
}

func TestHistoryEdges(t *testing.T) {
	h := NewHistory[testState](10)

	_, ok := h.Back()
	assert.False(t, ok)
	_, ok = h.Forward()
	assert.False(t, ok)

	h.Append(Snapshot[testState]{State: newState(1)})
	_, ok = h.Back()
	assert.False(t, ok, "single entry cannot step back")
	assert.Equal(t, 0, h.Cursor())

	_, ok = h.Seek(5)
	assert.False(t, ok)
	_, ok = h.Seek(-1)
	assert.False(t, ok)
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory[testState](10)
	h.Append(Snapshot[testState]{State: newState(1)})
	h.Append(Snapshot[testState]{State: newState(2)})
	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, -1, h.Cursor())
}

// =============================================================================
// Container Tests
// =============================================================================

func TestSnapshotIndependence(t *testing.T) {
	c := NewContainer(newState(3, 1, 2), 10)
	c.SaveStep()

	c.Mutate(func(s *testState) {
		s.Values[0] = 100
		s.Tags[0] = "sorted"
	})

	snap, ok := c.Snapshot(0)
	require.True(t, ok)
	assert.Equal(t, []int{3, 1, 2}, snap.State.Values)
	assert.Equal(t, "unsorted", snap.State.Tags[0])

	// Mutating a returned snapshot must not reach the stored one either.
	snap.State.Values[1] = -1
	again, _ := c.Snapshot(0)
	assert.Equal(t, 1, again.State.Values[1])
}

func TestContainerRoundTrip(t *testing.T) {
	c := NewContainer(newState(0), 10)
	for i := range 4 {
		c.Mutate(func(s *testState) { s.Values[0] = i })
		c.Add("comparisons", 1)
		c.SetLine(i)
		c.SaveStep()
	}
	require.Equal(t, 3, c.Cursor())

	require.True(t, c.StepBack())
	require.True(t, c.StepBack())
	assert.Equal(t, 1, c.State().Values[0])
	assert.Equal(t, 1, c.Line())
	assert.Equal(t, 2, c.Counters()["comparisons"])

	require.True(t, c.StepForward())
	require.True(t, c.StepForward())
	assert.False(t, c.StepForward())

	assert.Equal(t, 3, c.Cursor())
	assert.Equal(t, 3, c.State().Values[0])
	assert.Equal(t, 3, c.Line())
	assert.Equal(t, 4, c.Counters()["comparisons"])
}

func TestContainerRestoreIsCopy(t *testing.T) {
	c := NewContainer(newState(5, 6), 10)
	c.SaveStep()
	c.Mutate(func(s *testState) { s.Values[0] = 7 })
	c.SaveStep()

	require.True(t, c.StepBack())
	c.Mutate(func(s *testState) { s.Values[1] = 42 })

	snap, _ := c.Snapshot(0)
	assert.Equal(t, []int{5, 6}, snap.State.Values)
}

func TestContainerClearHistory(t *testing.T) {
	c := NewContainer(newState(1), 10)
	c.SetLine(4)
	c.SaveStep()
	c.ClearHistory()

	assert.Equal(t, 0, c.HistoryLen())
	assert.Equal(t, -1, c.Cursor())
	assert.Equal(t, NoLine, c.Line())
	assert.Equal(t, []int{1}, c.State().Values, "live state untouched")
}

func TestContainerReset(t *testing.T) {
	c := NewContainer(newState(1), 10)
	c.Add("swaps", 3)
	c.SaveStep()
	c.Reset(newState(9, 8))

	assert.Equal(t, []int{9, 8}, c.State().Values)
	assert.Empty(t, c.Counters())
	assert.Equal(t, 0, c.HistoryLen())
	assert.Equal(t, NoLine, c.Line())
}

func TestContainerGuardedEpoch(t *testing.T) {
	c := NewContainer(newState(1), 10)
	epoch := c.advance()

	assert.True(t, c.guarded(epoch, func() { c.state.Values[0] = 2 }))
	c.advance()
	assert.False(t, c.guarded(epoch, func() { c.state.Values[0] = 3 }))
	assert.Equal(t, 2, c.State().Values[0])
}
