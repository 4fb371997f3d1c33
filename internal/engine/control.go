package engine

import (
	"sync"
	"time"
)

// Flags is a point-in-time copy of the run control state.
type Flags struct {
	Running         bool          `json:"running"`
	Paused          bool          `json:"paused"`
	CancelRequested bool          `json:"cancelRequested"`
	Speed           time.Duration `json:"speed"`
}

// Idle reports whether no run is in progress.
func (f Flags) Idle() bool {
	return !f.Running
}

// Navigable reports whether history navigation is permitted.
func (f Flags) Navigable() bool {
	return !f.Running || f.Paused
}

// RunControl holds the flags that steer a run.
// Paused is only meaningful while running. CancelRequested is monotonic
// within a run and only cleared by begin.
type RunControl struct {
	mu              sync.Mutex
	running         bool
	paused          bool
	cancelRequested bool
	speed           time.Duration

	// changed is closed and replaced on every pause, resume or cancel so
	// that a sleeping Pacer can re-evaluate without waiting for its poll.
	changed chan struct{}
}

// NewRunControl creates an idle RunControl with the given speed.
func NewRunControl(speed time.Duration) *RunControl {
	if speed < 0 {
		speed = 0
	}
	return &RunControl{
		speed:   speed,
		changed: make(chan struct{}),
	}
}

// Flags returns a copy of the current flags.
func (c *RunControl) Flags() Flags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Flags{
		Running:         c.running,
		Paused:          c.paused,
		CancelRequested: c.cancelRequested,
		Speed:           c.speed,
	}
}

// Speed returns the current base delay.
func (c *RunControl) Speed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetSpeed changes the base delay. It takes effect at the next suspension.
func (c *RunControl) SetSpeed(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	c.speed = d
	c.mu.Unlock()
}

// Pause marks a running, unpaused run as paused.
// It returns false when the call was a no-op.
func (c *RunControl) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.paused {
		return false
	}
	c.paused = true
	c.notifyLocked()
	return true
}

// Resume clears the paused flag of a running run.
// It returns false when the call was a no-op.
func (c *RunControl) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || !c.paused {
		return false
	}
	c.paused = false
	c.notifyLocked()
	return true
}

// Cancelled reports whether cancellation was requested for the current run.
func (c *RunControl) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelRequested
}

// begin resets the flags for a fresh run.
func (c *RunControl) begin() {
	c.mu.Lock()
	c.running = true
	c.paused = false
	c.cancelRequested = false
	c.notifyLocked()
	c.mu.Unlock()
}

// requestCancel stops the current run immediately from the observer's view.
func (c *RunControl) requestCancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	wasRunning := c.running
	c.cancelRequested = true
	c.running = false
	c.paused = false
	c.notifyLocked()
	return wasRunning
}

// finish marks the run as no longer running.
func (c *RunControl) finish() {
	c.mu.Lock()
	c.running = false
	c.paused = false
	c.notifyLocked()
	c.mu.Unlock()
}

// watch returns the pause and cancel flags together with a channel that is
// closed on the next transition.
func (c *RunControl) watch() (paused, cancelled bool, changed <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused, c.cancelRequested, c.changed
}

func (c *RunControl) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}
