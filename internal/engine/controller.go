package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manav03panchal/stepwise/internal/logging"
)

// Options configure a Controller.
type Options struct {
	Speed           time.Duration
	PollInterval    time.Duration
	HistoryCapacity int
	Hooks           Hooks
	Logger          *slog.Logger
}

// DefaultOptions returns the default controller options.
func DefaultOptions() Options {
	return Options{
		Speed:           50 * time.Millisecond,
		PollInterval:    DefaultPollInterval,
		HistoryCapacity: DefaultHistoryCapacity,
	}
}

// Controller drives one procedure at a time against one state container.
//
// Start launches the procedure on its own goroutine. Pause, Resume and Stop
// are cooperative: the procedure observes them at its next suspension.
// Navigation is ignored while a run is active and not paused.
type Controller[S Cloner[S]] struct {
	container *Container[S]
	control   *RunControl
	pacer     *Pacer
	hooks     Hooks
	logger    *slog.Logger

	// startMu serializes Start and Reset so that a previous run has fully
	// exited before the container is reused.
	startMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	last   RunReport
}

// NewController creates an idle controller holding a copy of initial.
func NewController[S Cloner[S]](initial S, opts Options) *Controller[S] {
	control := NewRunControl(opts.Speed)
	logger := opts.Logger
	if logger == nil {
		logger = logging.Logger()
	}
	done := make(chan struct{})
	close(done)
	return &Controller[S]{
		container: NewContainer(initial, opts.HistoryCapacity),
		control:   control,
		pacer:     NewPacer(control, opts.PollInterval),
		hooks:     opts.Hooks,
		logger:    logger,
		done:      done,
	}
}

// Container exposes the underlying state container for read access.
func (c *Controller[S]) Container() *Container[S] { return c.container }

// Flags returns a copy of the run flags.
func (c *Controller[S]) Flags() Flags { return c.control.Flags() }

// LastRun returns the report of the most recent run.
func (c *Controller[S]) LastRun() RunReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Start launches proc unless a run is already active. History and counters
// are cleared; the live state is kept as the procedure's input.
// It returns false when the call was a no-op.
func (c *Controller[S]) Start(proc Procedure[S]) bool {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	if c.control.Flags().Running {
		return false
	}
	c.awaitPrevious()

	epoch := c.container.advance()
	c.container.mu.Lock()
	c.container.history.Clear()
	c.container.counters = Counters{}
	c.container.line = NoLine
	c.container.mu.Unlock()

	report := RunReport{
		RunID:     uuid.NewString(),
		Procedure: proc.Name(),
		StartedAt: time.Now(),
	}
	ctx, cancel := context.WithCancel(logging.WithRunID(context.Background(), report.RunID))
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.last = report
	c.mu.Unlock()

	c.control.begin()

	tracer := &Tracer[S]{
		ctx:       ctx,
		epoch:     epoch,
		container: c.container,
		control:   c.control,
		pacer:     c.pacer,
	}
	tracer.onStep = func(seq uint64, line int) {
		c.hooks.step(ctx, StepEvent{RunID: report.RunID, Procedure: report.Procedure, Seq: seq, Line: line})
	}

	c.logger.Debug("run started", logging.KeyRunID, report.RunID, logging.KeyProcedure, report.Procedure)
	c.hooks.runStart(ctx, report)

	go c.run(ctx, cancel, done, proc, tracer, report)
	return true
}

func (c *Controller[S]) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, proc Procedure[S], t *Tracer[S], report RunReport) {
	defer close(done)
	defer cancel()

	outcome := Completed
	func() {
		defer func() {
			if r := recover(); r != nil {
				outcome = Failed
				report.Err = fmt.Sprint(r)
			}
		}()
		proc.Run(t)
	}()
	if outcome != Failed && t.Cancelled() {
		outcome = Cancelled
	}

	report.Outcome = outcome
	report.Steps = t.Steps()
	report.FinishedAt = time.Now()

	// A stopped run already released the flags; only a run that ended on
	// its own clears them here.
	if ctx.Err() == nil {
		c.control.finish()
	}

	c.mu.Lock()
	if c.last.RunID == report.RunID {
		c.last = report
	}
	c.mu.Unlock()

	logger := logging.LoggerFromContext(ctx).With(logging.KeyProcedure, report.Procedure)
	if outcome == Failed {
		logger.Error("procedure panicked", logging.KeyError, report.Err)
	} else {
		logger.Debug("run finished",
			logging.KeyOutcome, outcome.String(),
			logging.KeySteps, report.Steps,
			logging.KeyDuration, report.Duration().Milliseconds())
	}
	c.hooks.runEnd(ctx, report)
}

// awaitPrevious blocks until the previous run goroutine has exited.
// The caller must hold startMu and the previous run must be cancelled or
// finished.
func (c *Controller[S]) awaitPrevious() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	<-done
}

// Pause suspends the active run at its next suspension point.
func (c *Controller[S]) Pause() bool { return c.control.Pause() }

// Resume continues a paused run. If the cursor was moved while paused, the
// newest snapshot is restored first so the procedure carries on from the
// state it left.
func (c *Controller[S]) Resume() bool {
	if !c.control.Flags().Paused {
		return false
	}
	c.container.seekTail()
	return c.control.Resume()
}

// Stop cancels the active run. Flags read as stopped immediately; the
// procedure goroutine exits at its next check. It returns false when no run
// was active.
func (c *Controller[S]) Stop() bool {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	wasRunning := c.control.requestCancel()
	if wasRunning {
		c.container.advance()
	}
	if cancel != nil {
		cancel()
	}
	return wasRunning
}

// SetSpeed changes the base delay of subsequent suspensions.
func (c *Controller[S]) SetSpeed(d time.Duration) { c.control.SetSpeed(d) }

// Reset stops any active run, waits for it to exit and replaces the live
// state with a copy of s. History and counters are cleared.
func (c *Controller[S]) Reset(s S) {
	c.Stop()
	c.startMu.Lock()
	defer c.startMu.Unlock()
	c.awaitPrevious()
	c.container.Reset(s)
}

// Done returns a channel closed when the current run goroutine exits.
func (c *Controller[S]) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait blocks until the current run goroutine exits or ctx is done.
func (c *Controller[S]) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CanStepBack reports whether StepBack would move.
func (c *Controller[S]) CanStepBack() bool {
	return c.control.Flags().Navigable() && c.container.CanStepBack()
}

// CanStepForward reports whether StepForward would move.
func (c *Controller[S]) CanStepForward() bool {
	return c.control.Flags().Navigable() && c.container.CanStepForward()
}

// StepBack restores the previous snapshot when navigation is permitted.
func (c *Controller[S]) StepBack() bool {
	if !c.control.Flags().Navigable() {
		return false
	}
	return c.container.StepBack()
}

// StepForward restores the next snapshot when navigation is permitted.
func (c *Controller[S]) StepForward() bool {
	if !c.control.Flags().Navigable() {
		return false
	}
	return c.container.StepForward()
}

// Seek restores the snapshot at index i when navigation is permitted.
func (c *Controller[S]) Seek(i int) bool {
	if !c.control.Flags().Navigable() {
		return false
	}
	return c.container.Seek(i)
}

// ClearHistory drops all snapshots. It is ignored while a run is active.
func (c *Controller[S]) ClearHistory() bool {
	if c.control.Flags().Running {
		return false
	}
	c.container.ClearHistory()
	return true
}
