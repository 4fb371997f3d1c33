package engine

import (
	"context"
	"time"
)

// Procedure is an algorithm instrumented to drive a visualization state.
//
// A well-behaved procedure repeats, for every unit of work: check
// Cancelled, mutate the state, set the line, save a step, suspend, and
// return if the suspension was cancelled. Tracer.Step bundles the last
// three.
type Procedure[S Cloner[S]] interface {
	Name() string
	Run(t *Tracer[S])
}

type procedureFunc[S Cloner[S]] struct {
	name string
	run  func(t *Tracer[S])
}

func (p procedureFunc[S]) Name() string     { return p.name }
func (p procedureFunc[S]) Run(t *Tracer[S]) { p.run(t) }

// Func adapts a plain function into a Procedure.
func Func[S Cloner[S]](name string, run func(t *Tracer[S])) Procedure[S] {
	return procedureFunc[S]{name: name, run: run}
}

// Tracer is the handle a procedure uses during one run. Writes made after
// the run was stopped or superseded are dropped.
type Tracer[S Cloner[S]] struct {
	ctx       context.Context
	epoch     uint64
	container *Container[S]
	control   *RunControl
	pacer     *Pacer
	onStep    func(seq uint64, line int)
	steps     int
}

// Context returns the run context. It is cancelled by Stop.
func (t *Tracer[S]) Context() context.Context { return t.ctx }

// Cancelled reports whether the run should stop.
func (t *Tracer[S]) Cancelled() bool {
	return t.ctx.Err() != nil || t.control.Cancelled()
}

// Steps returns how many snapshots this run recorded.
func (t *Tracer[S]) Steps() int { return t.steps }

// Speed returns the current base delay.
func (t *Tracer[S]) Speed() time.Duration { return t.control.Speed() }

// State returns a deep copy of the live state.
func (t *Tracer[S]) State() S { return t.container.State() }

// Mutate applies fn to the live state.
func (t *Tracer[S]) Mutate(fn func(s *S)) {
	t.container.guarded(t.epoch, func() { fn(&t.container.state) })
}

// Incr adds one to the named counter.
func (t *Tracer[S]) Incr(name string) { t.Add(name, 1) }

// Add adds n to the named counter.
func (t *Tracer[S]) Add(name string, n int) {
	t.container.guarded(t.epoch, func() { t.container.counters[name] += n })
}

// SetCounter overwrites the named counter.
func (t *Tracer[S]) SetCounter(name string, v int) {
	t.container.guarded(t.epoch, func() { t.container.counters[name] = v })
}

// SetLine sets the logical position.
func (t *Tracer[S]) SetLine(line int) {
	t.container.guarded(t.epoch, func() { t.container.line = line })
}

// SaveStep records a snapshot of the live state.
func (t *Tracer[S]) SaveStep() {
	var (
		seq  uint64
		line int
	)
	saved := t.container.guarded(t.epoch, func() {
		t.container.saveLocked()
		seq, line = t.container.history.Seq(), t.container.line
	})
	if saved {
		t.steps++
		if t.onStep != nil {
			t.onStep(seq, line)
		}
	}
}

// Sleep suspends for the current speed multiplied by scale.
// It returns false when the run was cancelled.
func (t *Tracer[S]) Sleep(scale float64) bool {
	d := time.Duration(float64(t.control.Speed()) * scale)
	return t.pacer.Suspend(t.ctx, d) == Completed
}

// Record sets the line and records a snapshot without suspending.
// It returns false when the procedure must exit.
func (t *Tracer[S]) Record(line int) bool {
	if t.Cancelled() {
		return false
	}
	t.SetLine(line)
	t.SaveStep()
	return true
}

// Step sets the line, records a snapshot and suspends for one speed unit.
// It returns false when the procedure must exit.
func (t *Tracer[S]) Step(line int) bool {
	return t.StepScaled(line, 1)
}

// StepScaled is Step with the delay multiplied by scale.
func (t *Tracer[S]) StepScaled(line int, scale float64) bool {
	if t.Cancelled() {
		return false
	}
	t.SetLine(line)
	t.SaveStep()
	return t.Sleep(scale)
}
