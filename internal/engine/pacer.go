package engine

import (
	"context"
	"fmt"
	"time"
)

// DefaultPollInterval is the granularity at which a paused wait re-checks
// its flags.
const DefaultPollInterval = 100 * time.Millisecond

// Outcome is the result of a suspension or a run.
type Outcome int

const (
	// Completed means the wait elapsed or the procedure ran to the end.
	Completed Outcome = iota
	// Cancelled means a stop was requested.
	Cancelled
	// Failed means the procedure panicked. Suspend never returns it.
	Failed
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses the names written by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "completed":
		*o = Completed
	case "cancelled":
		*o = Cancelled
	case "failed":
		*o = Failed
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// Pacer turns a requested delay into a pausable, cancellable wait.
type Pacer struct {
	control *RunControl
	poll    time.Duration
}

// NewPacer creates a Pacer observing control. A non-positive poll falls back
// to DefaultPollInterval.
func NewPacer(control *RunControl, poll time.Duration) *Pacer {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Pacer{control: control, poll: poll}
}

// Suspend waits for d of unpaused time. Time spent paused does not count
// toward d. The wait resolves as Cancelled as soon as ctx is done or the
// control requests cancellation. A non-positive d still honours pause and
// cancellation.
func (p *Pacer) Suspend(ctx context.Context, d time.Duration) Outcome {
	remaining := d
	for {
		if ctx.Err() != nil {
			return Cancelled
		}
		paused, cancelled, changed := p.control.watch()
		if cancelled {
			return Cancelled
		}

		if paused {
			timer := time.NewTimer(p.poll)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Cancelled
			case <-changed:
			case <-timer.C:
			}
			timer.Stop()
			continue
		}

		if remaining <= 0 {
			return Completed
		}

		chunk := min(remaining, p.poll)
		started := time.Now()
		timer := time.NewTimer(chunk)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Cancelled
		case <-changed:
			timer.Stop()
		case <-timer.C:
		}
		remaining -= time.Since(started)
	}
}
