// Package engine runs traced procedures at a controllable pace.
//
// A Controller owns one visualization state container, its step history and
// the run flags. Procedures receive a Tracer for the duration of a run and use
// it to mutate state, record snapshots and yield to the Pacer between units of
// work. Pausing freezes the remaining wait; stopping resolves any pending wait
// as Cancelled. Recorded snapshots can be replayed with StepBack/StepForward
// once the run is paused or finished.
package engine
