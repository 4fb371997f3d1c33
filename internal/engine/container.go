package engine

import (
	"sync"
	"time"
)

// Container holds the live visualization state, its counters, the current
// logical line and the step history. All methods are safe for concurrent use.
type Container[S Cloner[S]] struct {
	mu       sync.RWMutex
	state    S
	counters Counters
	line     int
	history  *History[S]

	// epoch identifies the run allowed to write through a Tracer.
	epoch uint64
	now   func() time.Time
}

// NewContainer creates a Container with a copy of initial as its live state.
func NewContainer[S Cloner[S]](initial S, capacity int) *Container[S] {
	return &Container[S]{
		state:    initial.Clone(),
		counters: Counters{},
		line:     NoLine,
		history:  NewHistory[S](capacity),
		now:      time.Now,
	}
}

// State returns a deep copy of the live state.
func (c *Container[S]) State() S {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Counters returns a copy of the live counters.
func (c *Container[S]) Counters() Counters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counters.Clone()
}

// Line returns the current logical position, or NoLine.
func (c *Container[S]) Line() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.line
}

// HistoryLen returns the number of recorded snapshots.
func (c *Container[S]) HistoryLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.Len()
}

// Cursor returns the history cursor, or -1 when the history is empty.
func (c *Container[S]) Cursor() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.Cursor()
}

// Snapshot returns a copy of the recorded snapshot at index i.
func (c *Container[S]) Snapshot(i int) (Snapshot[S], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.At(i)
}

// Mutate applies fn to the live state.
func (c *Container[S]) Mutate(fn func(*S)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}

// Set replaces the live state with a copy of s.
func (c *Container[S]) Set(s S) {
	c.mu.Lock()
	c.state = s.Clone()
	c.mu.Unlock()
}

// Add increments the named counter by n.
func (c *Container[S]) Add(name string, n int) {
	c.mu.Lock()
	c.counters[name] += n
	c.mu.Unlock()
}

// SetCounter overwrites the named counter.
func (c *Container[S]) SetCounter(name string, v int) {
	c.mu.Lock()
	c.counters[name] = v
	c.mu.Unlock()
}

// SetLine sets the logical position.
func (c *Container[S]) SetLine(line int) {
	c.mu.Lock()
	c.line = line
	c.mu.Unlock()
}

// SaveStep records a deep copy of the live state, counters and line.
// History after the cursor is discarded first.
func (c *Container[S]) SaveStep() {
	c.mu.Lock()
	c.saveLocked()
	c.mu.Unlock()
}

func (c *Container[S]) saveLocked() {
	c.history.Append(Snapshot[S]{
		State:    c.state,
		Counters: c.counters,
		Line:     c.line,
		At:       c.now(),
	})
}

// CanStepBack reports whether StepBack would move.
func (c *Container[S]) CanStepBack() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.CanStepBack()
}

// CanStepForward reports whether StepForward would move.
func (c *Container[S]) CanStepForward() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.CanStepForward()
}

// StepBack restores the previous snapshot into the live state.
func (c *Container[S]) StepBack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.history.Back()
	if ok {
		c.restoreLocked(snap)
	}
	return ok
}

// StepForward restores the next snapshot into the live state.
func (c *Container[S]) StepForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.history.Forward()
	if ok {
		c.restoreLocked(snap)
	}
	return ok
}

// Seek restores the snapshot at index i into the live state.
func (c *Container[S]) Seek(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.history.Seek(i)
	if ok {
		c.restoreLocked(snap)
	}
	return ok
}

// seekTail restores the newest snapshot when the cursor is behind it.
func (c *Container[S]) seekTail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.history.CanStepForward() {
		return
	}
	if snap, ok := c.history.Seek(c.history.Len() - 1); ok {
		c.restoreLocked(snap)
	}
}

// ClearHistory drops all snapshots and resets the line to NoLine.
// The live state is left untouched.
func (c *Container[S]) ClearHistory() {
	c.mu.Lock()
	c.history.Clear()
	c.line = NoLine
	c.mu.Unlock()
}

// Reset replaces the live state, zeroes the counters and clears the history.
func (c *Container[S]) Reset(s S) {
	c.mu.Lock()
	c.state = s.Clone()
	c.counters = Counters{}
	c.history.Clear()
	c.line = NoLine
	c.mu.Unlock()
}

func (c *Container[S]) restoreLocked(snap Snapshot[S]) {
	c.state = snap.State
	c.counters = snap.Counters
	c.line = snap.Line
}

// advance starts a new write epoch and returns it. Writes tagged with an
// older epoch are dropped.
func (c *Container[S]) advance() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	return c.epoch
}

// guarded runs fn under the write lock if epoch is still current.
func (c *Container[S]) guarded(epoch uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	fn()
	return true
}
