package engine

import (
	"maps"
	"time"
)

// DefaultHistoryCapacity bounds the number of snapshots a History retains.
const DefaultHistoryCapacity = 500

// NoLine marks the absence of a logical position.
const NoLine = -1

// Cloner is implemented by visualization states. Clone must return a deep
// copy that shares no mutable memory with the receiver.
type Cloner[S any] interface {
	Clone() S
}

// Counters holds named auxiliary statistics such as comparisons or swaps.
type Counters map[string]int

// Clone returns an independent copy.
func (c Counters) Clone() Counters {
	if c == nil {
		return Counters{}
	}
	return maps.Clone(c)
}

// Snapshot is an immutable copy of the visualization state at one step.
type Snapshot[S Cloner[S]] struct {
	State    S         `json:"state"`
	Counters Counters  `json:"counters"`
	Line     int       `json:"line"`
	Seq      uint64    `json:"seq"`
	At       time.Time `json:"at"`
}

func (s Snapshot[S]) clone() Snapshot[S] {
	return Snapshot[S]{
		State:    s.State.Clone(),
		Counters: s.Counters.Clone(),
		Line:     s.Line,
		Seq:      s.Seq,
		At:       s.At,
	}
}

// History is a bounded, ordered log of snapshots with a cursor.
// The cursor is -1 exactly when the log is empty. It is not safe for
// concurrent use; Container serializes access.
type History[S Cloner[S]] struct {
	entries  []Snapshot[S]
	cursor   int
	capacity int
	seq      uint64
}

// NewHistory creates an empty History. A non-positive capacity falls back to
// DefaultHistoryCapacity.
func NewHistory[S Cloner[S]](capacity int) *History[S] {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History[S]{cursor: -1, capacity: capacity}
}

// Len returns the number of retained snapshots.
func (h *History[S]) Len() int { return len(h.entries) }

// Cursor returns the index of the currently displayed snapshot, or -1.
func (h *History[S]) Cursor() int { return h.cursor }

// Capacity returns the retention bound.
func (h *History[S]) Capacity() int { return h.capacity }

// Seq returns the sequence number of the snapshot under the cursor, or 0
// when the history is empty. It keeps growing after eviction starts.
func (h *History[S]) Seq() uint64 {
	if h.cursor < 0 {
		return 0
	}
	return h.entries[h.cursor].Seq
}

// Append discards everything after the cursor, appends a copy of snap,
// evicts the oldest entry when over capacity and moves the cursor to the
// tail.
func (h *History[S]) Append(snap Snapshot[S]) {
	h.entries = h.entries[:h.cursor+1]
	h.seq++
	snap = snap.clone()
	snap.Seq = h.seq
	h.entries = append(h.entries, snap)
	if len(h.entries) > h.capacity {
		over := len(h.entries) - h.capacity
		clear(h.entries[:over])
		h.entries = h.entries[over:]
	}
	h.cursor = len(h.entries) - 1
}

// CanStepBack reports whether an older snapshot exists.
func (h *History[S]) CanStepBack() bool { return h.cursor > 0 }

// CanStepForward reports whether a newer snapshot exists.
func (h *History[S]) CanStepForward() bool { return h.cursor < len(h.entries)-1 }

// Back moves the cursor one step toward the oldest entry and returns a copy
// of the snapshot there.
func (h *History[S]) Back() (Snapshot[S], bool) {
	if !h.CanStepBack() {
		return Snapshot[S]{}, false
	}
	h.cursor--
	return h.entries[h.cursor].clone(), true
}

// Forward moves the cursor one step toward the newest entry and returns a
// copy of the snapshot there.
func (h *History[S]) Forward() (Snapshot[S], bool) {
	if !h.CanStepForward() {
		return Snapshot[S]{}, false
	}
	h.cursor++
	return h.entries[h.cursor].clone(), true
}

// Seek moves the cursor to index i and returns a copy of the snapshot there.
func (h *History[S]) Seek(i int) (Snapshot[S], bool) {
	if i < 0 || i >= len(h.entries) {
		return Snapshot[S]{}, false
	}
	h.cursor = i
	return h.entries[i].clone(), true
}

// At returns a copy of the snapshot at index i without moving the cursor.
func (h *History[S]) At(i int) (Snapshot[S], bool) {
	if i < 0 || i >= len(h.entries) {
		return Snapshot[S]{}, false
	}
	return h.entries[i].clone(), true
}

// Clear drops every snapshot and resets the cursor.
func (h *History[S]) Clear() {
	clear(h.entries)
	h.entries = h.entries[:0]
	h.cursor = -1
}
