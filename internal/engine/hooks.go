package engine

import (
	"context"
	"time"
)

// RunReport describes one run of a procedure.
type RunReport struct {
	RunID      string    `json:"runId"`
	Procedure  string    `json:"procedure"`
	Outcome    Outcome   `json:"outcome"`
	Steps      int       `json:"steps"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
	Err        string    `json:"error,omitempty"`
}

// Duration returns the wall-clock length of a finished run.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StepEvent is emitted after a snapshot has been recorded.
type StepEvent struct {
	RunID     string
	Procedure string
	// Seq is the recorded snapshot's sequence number.
	Seq  uint64
	Line int
}

// Hooks observe a controller's lifecycle. Nil fields are skipped. Hooks run
// on the procedure goroutine and must not block.
type Hooks struct {
	OnRunStart func(context.Context, *RunReport)
	OnStep     func(context.Context, *StepEvent)
	OnRunEnd   func(context.Context, *RunReport)
}

// Chain returns Hooks that call h and then next.
func (h Hooks) Chain(next Hooks) Hooks {
	return Hooks{
		OnRunStart: chain(h.OnRunStart, next.OnRunStart),
		OnStep:     chain(h.OnStep, next.OnStep),
		OnRunEnd:   chain(h.OnRunEnd, next.OnRunEnd),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}

func (h Hooks) runStart(ctx context.Context, r RunReport) {
	if h.OnRunStart != nil {
		h.OnRunStart(ctx, &r)
	}
}

func (h Hooks) step(ctx context.Context, e StepEvent) {
	if h.OnStep != nil {
		h.OnStep(ctx, &e)
	}
}

func (h Hooks) runEnd(ctx context.Context, r RunReport) {
	if h.OnRunEnd != nil {
		h.OnRunEnd(ctx, &r)
	}
}
