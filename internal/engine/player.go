package engine

import (
	"context"
	"sync"
	"time"
)

// Frame is a read model of a controller at one instant.
type Frame struct {
	Procedure      string    `json:"procedure"`
	State          any       `json:"state"`
	Counters       Counters  `json:"counters"`
	Line           int       `json:"line"`
	Flags          Flags     `json:"flags"`
	HistoryLen     int       `json:"historyLength"`
	Cursor         int       `json:"cursor"`
	Seq            uint64    `json:"seq"`
	CanStepBack    bool      `json:"canStepBack"`
	CanStepForward bool      `json:"canStepForward"`
	LastRun        RunReport `json:"lastRun"`
}

// Player is the state-agnostic control surface shared by the CLI, the TUI
// and the HTTP API.
type Player interface {
	Procedure() string
	Start() bool
	Pause() bool
	Resume() bool
	Stop() bool
	StepBack() bool
	StepForward() bool
	Seek(i int) bool
	SetSpeed(d time.Duration)
	Frame() Frame
	Done() <-chan struct{}
	Wait(ctx context.Context) error
}

// Binding pairs a Controller with the procedure it starts. It implements
// Player.
type Binding[S Cloner[S]] struct {
	*Controller[S]

	mu   sync.RWMutex
	proc Procedure[S]
}

// Bind returns a Player that starts proc on ctrl.
func Bind[S Cloner[S]](ctrl *Controller[S], proc Procedure[S]) *Binding[S] {
	return &Binding[S]{Controller: ctrl, proc: proc}
}

// Procedure returns the bound procedure's name.
func (b *Binding[S]) Procedure() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.proc.Name()
}

// Start launches the bound procedure.
func (b *Binding[S]) Start() bool {
	b.mu.RLock()
	proc := b.proc
	b.mu.RUnlock()
	return b.Controller.Start(proc)
}

// Rebind stops any active run, installs a new input state and procedure and
// clears the history.
func (b *Binding[S]) Rebind(s S, proc Procedure[S]) {
	b.Controller.Reset(s)
	b.mu.Lock()
	b.proc = proc
	b.mu.Unlock()
}

// Frame captures the controller's current state.
func (b *Binding[S]) Frame() Frame {
	return b.Controller.Frame(b.Procedure())
}

// Frame captures the controller's current state under the given procedure
// name.
func (c *Controller[S]) Frame(procedure string) Frame {
	flags := c.control.Flags()
	c.container.mu.RLock()
	f := Frame{
		Procedure:  procedure,
		State:      c.container.state.Clone(),
		Counters:   c.container.counters.Clone(),
		Line:       c.container.line,
		Flags:      flags,
		HistoryLen: c.container.history.Len(),
		Cursor:     c.container.history.Cursor(),
		Seq:        c.container.history.Seq(),
	}
	if flags.Navigable() {
		f.CanStepBack = c.container.history.CanStepBack()
		f.CanStepForward = c.container.history.CanStepForward()
	}
	c.container.mu.RUnlock()
	f.LastRun = c.LastRun()
	return f
}
