package engine

import (
	"context"
	"time"
)

// Winner names the side that finished first.
type Winner string

const (
	WinnerNone  Winner = "none"
	WinnerLeft  Winner = "left"
	WinnerRight Winner = "right"
	WinnerTie   Winner = "tie"
)

// RaceResult summarizes a finished race.
type RaceResult struct {
	Winner Winner    `json:"winner"`
	Left   RunReport `json:"left"`
	Right  RunReport `json:"right"`
}

// Race runs two players side by side. Each side keeps its own state, pacer
// and timer; nothing synchronizes their steps.
type Race struct {
	Left  Player
	Right Player
}

// NewRace pairs two players.
func NewRace(left, right Player) *Race {
	return &Race{Left: left, Right: right}
}

// Start launches both sides. It is a no-op unless both are idle.
func (r *Race) Start() bool {
	if r.Left.Frame().Flags.Running || r.Right.Frame().Flags.Running {
		return false
	}
	left := r.Left.Start()
	right := r.Right.Start()
	return left && right
}

// Pause pauses both sides.
func (r *Race) Pause() bool {
	left := r.Left.Pause()
	right := r.Right.Pause()
	return left || right
}

// Resume resumes both sides.
func (r *Race) Resume() bool {
	left := r.Left.Resume()
	right := r.Right.Resume()
	return left || right
}

// Stop cancels both sides.
func (r *Race) Stop() bool {
	left := r.Left.Stop()
	right := r.Right.Stop()
	return left || right
}

// SetSpeed applies d to both sides.
func (r *Race) SetSpeed(d time.Duration) {
	r.Left.SetSpeed(d)
	r.Right.SetSpeed(d)
}

// Finished reports whether both sides have exited.
func (r *Race) Finished() bool {
	return closed(r.Left.Done()) && closed(r.Right.Done())
}

// Result decides the race from the sides' last run reports.
func (r *Race) Result() RaceResult {
	left := r.Left.Frame().LastRun
	right := r.Right.Frame().LastRun
	return RaceResult{Winner: Decide(left, right), Left: left, Right: right}
}

// Wait blocks until both sides exit and returns the result.
func (r *Race) Wait(ctx context.Context) (RaceResult, error) {
	if err := r.Left.Wait(ctx); err != nil {
		return RaceResult{}, err
	}
	if err := r.Right.Wait(ctx); err != nil {
		return RaceResult{}, err
	}
	return r.Result(), nil
}

// Decide compares two run reports. Only completed runs can win; the earlier
// completion timestamp wins and equal timestamps tie.
func Decide(left, right RunReport) Winner {
	lok := left.Outcome == Completed && !left.FinishedAt.IsZero()
	rok := right.Outcome == Completed && !right.FinishedAt.IsZero()
	switch {
	case lok && rok:
		switch {
		case left.FinishedAt.Before(right.FinishedAt):
			return WinnerLeft
		case right.FinishedAt.Before(left.FinishedAt):
			return WinnerRight
		default:
			return WinnerTie
		}
	case lok:
		return WinnerLeft
	case rok:
		return WinnerRight
	default:
		return WinnerNone
	}
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
