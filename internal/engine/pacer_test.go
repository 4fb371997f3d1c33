package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func runningControl(speed time.Duration) *RunControl {
	c := NewRunControl(speed)
	c.begin()
	return c
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		expected string
	}{
		{Completed, "completed"},
		{Cancelled, "cancelled"},
		{Failed, "failed"},
		{Outcome(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.outcome.String())
		})
	}
}

func TestNewPacerDefaultsPoll(t *testing.T) {
	p := NewPacer(NewRunControl(0), 0)
	assert.Equal(t, DefaultPollInterval, p.poll)
}

func TestSuspendCompletes(t *testing.T) {
	p := NewPacer(runningControl(0), 20*time.Millisecond)

	start := time.Now()
	outcome := p.Suspend(context.Background(), 60*time.Millisecond)
	elapsed := time.Since(start)

	assert.Equal(t, Completed, outcome)
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestSuspendZeroDuration(t *testing.T) {
	p := NewPacer(runningControl(0), 0)

	start := time.Now()
	assert.Equal(t, Completed, p.Suspend(context.Background(), 0))
	assert.Less(t, time.Since(start), 20*time.Millisecond)
}

func TestSuspendCancelShortCircuits(t *testing.T) {
	p := NewPacer(runningControl(0), 0)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	outcome := p.Suspend(ctx, 10*time.Second)

	assert.Equal(t, Cancelled, outcome)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestSuspendCancelRequestedByControl(t *testing.T) {
	control := runningControl(0)
	p := NewPacer(control, 0)

	go func() {
		time.Sleep(20 * time.Millisecond)
		control.requestCancel()
	}()

	start := time.Now()
	assert.Equal(t, Cancelled, p.Suspend(context.Background(), 10*time.Second))
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestSuspendAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPacer(runningControl(0), 0)
	assert.Equal(t, Cancelled, p.Suspend(ctx, time.Second))
}

func TestPauseFreezesTime(t *testing.T) {
	control := runningControl(0)
	p := NewPacer(control, 0)

	go func() {
		time.Sleep(50 * time.Millisecond)
		control.Pause()
		time.Sleep(400 * time.Millisecond)
		control.Resume()
	}()

	start := time.Now()
	outcome := p.Suspend(context.Background(), 300*time.Millisecond)
	elapsed := time.Since(start)

	assert.Equal(t, Completed, outcome)
	// 50ms before the pause, 400ms paused, 250ms after.
	assert.GreaterOrEqual(t, elapsed, 690*time.Millisecond)
	assert.Less(t, elapsed, 1500*time.Millisecond)
}

func TestPausedZeroDurationWaitsForResume(t *testing.T) {
	control := runningControl(0)
	control.Pause()
	p := NewPacer(control, 0)

	go func() {
		time.Sleep(150 * time.Millisecond)
		control.Resume()
	}()

	start := time.Now()
	assert.Equal(t, Completed, p.Suspend(context.Background(), 0))
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestStopWhilePaused(t *testing.T) {
	control := runningControl(0)
	control.Pause()
	p := NewPacer(control, 0)

	go func() {
		time.Sleep(30 * time.Millisecond)
		control.requestCancel()
	}()

	start := time.Now()
	assert.Equal(t, Cancelled, p.Suspend(context.Background(), time.Second))
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

// =============================================================================
// RunControl Tests
// =============================================================================

func TestRunControlTransitions(t *testing.T) {
	c := NewRunControl(-5)
	assert.Equal(t, time.Duration(0), c.Speed(), "negative speed clamps to zero")

	assert.False(t, c.Pause(), "pause while idle is a no-op")
	assert.False(t, c.Resume(), "resume while idle is a no-op")

	c.begin()
	assert.True(t, c.Flags().Running)
	assert.False(t, c.Resume(), "resume while not paused is a no-op")
	assert.True(t, c.Pause())
	assert.False(t, c.Pause(), "second pause is a no-op")
	assert.True(t, c.Flags().Paused)
	assert.True(t, c.Resume())

	c.Pause()
	assert.True(t, c.requestCancel())
	flags := c.Flags()
	assert.False(t, flags.Running)
	assert.False(t, flags.Paused)
	assert.True(t, flags.CancelRequested)

	c.begin()
	assert.False(t, c.Flags().CancelRequested, "fresh start clears cancel")
}

func TestFlagsNavigable(t *testing.T) {
	assert.True(t, Flags{}.Navigable())
	assert.True(t, Flags{Running: true, Paused: true}.Navigable())
	assert.False(t, Flags{Running: true}.Navigable())
}
