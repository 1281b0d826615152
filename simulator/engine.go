package simulator

import (
	"sort"

	"github.com/sarchlab/akita/v4/sim"
)

// Phase is one of the three sub-steps a single simulated clock tick is
// split into (spec.md §4.4 "clock phases"). runClockEdge announces
// BEFORE to the callbacks and then advances every clocked node of the
// domain (the DURING step, which clock-edge events are scheduled with
// but which is not announced separately); AFTER re-evaluates the
// combinational ExecutionBlocks against the post-edge state, checks
// the signal taps, and resumes any coroutine that was waiting on the
// result. Coroutine resumes are scheduled in the AFTER phase.
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseDuring
	PhaseAfter
)

// EventKind distinguishes the handful of things an Engine schedules
// besides a clock edge.
type EventKind int

const (
	KindClockEdge EventKind = iota
	KindSimProcResume
	KindPowerOn
)

// Event is the simulator's own sim.Event: akita's VTimeInSec is the
// primary order. Each Event also carries (Phase, MicroTick, Kind,
// insertionID), which compareEvents orders as a secondary tie-break in
// the manner of original_source/.../ReferenceSimulator.h's
// Event::operator<. The akita engine's queue does not consult these
// fields: events scheduled for the same time are dispatched in
// whatever order akita gives them.
type Event struct {
	time       sim.VTimeInSec
	Phase      Phase
	MicroTick  uint64
	Kind       EventKind
	insertion  uint64
	Clock      *ClockDomain // set for KindClockEdge
	Proc       *Proc        // set for KindSimProcResume
	owner      *Engine
}

// Time implements sim.Event.
func (e *Event) Time() sim.VTimeInSec { return e.time }

// Handler implements sim.Event: every Event is dispatched back to the
// Engine that scheduled it.
func (e *Event) Handler() sim.Handler { return e.owner }

// IsSecondary implements sim.Event; the reference simulator has no
// notion of a secondary (side-channel) event distinct from Handle
// dispatch, so this is always false.
func (e *Event) IsSecondary() bool { return false }

// Engine drives a compiled Program as a discrete-event simulation on
// top of an akita sim.Engine (spec.md §4.4 "the event queue"). Unlike
// the teacher's fixed-frequency TickingComponents, the simulator's
// events land at irregular times (one per clock edge per domain, plus
// coroutine resumes), so Engine schedules each sim.Event for its exact
// akita VTimeInSec directly rather than relying on a periodic tick.
type Engine struct {
	akita    sim.Engine
	program  *Program
	callback SimulatorCallbacks

	microTick uint64
	nextIns   uint64

	procs         []*Proc
	watchers      []*watcher
	pendingSpawns []func(*Proc)

	hasDeadline bool
	deadline    sim.VTimeInSec
}

// RegisterProc registers a coroutine body to be launched once power-on
// completes (spec.md §4.4 power-on sequence, "start coroutines"). Call
// this before Start(): power-on launches the bodies registered so far,
// and a body registered after power-on is not launched (Spawn starts a
// body immediately instead).
func (en *Engine) RegisterProc(body func(p *Proc)) {
	en.pendingSpawns = append(en.pendingSpawns, body)
}

// NewEngine wraps an akita engine around a compiled program. cb may be
// nil, in which case NopCallbacks is used.
func NewEngine(akitaEngine sim.Engine, program *Program, cb SimulatorCallbacks) *Engine {
	if cb == nil {
		cb = NopCallbacks{}
	}
	return &Engine{akita: akitaEngine, program: program, callback: cb}
}

// Handle implements sim.Handler, dispatching each Event back through
// the phase it was scheduled for.
func (en *Engine) Handle(e sim.Event) error {
	ev, ok := e.(*Event)
	if !ok {
		return nil
	}
	en.microTick = ev.MicroTick
	switch ev.Kind {
	case KindClockEdge:
		en.runClockEdge(ev.Clock, ev.time)
	case KindSimProcResume:
		ev.Proc.resumeFromEvent()
	case KindPowerOn:
		en.powerOn()
	}
	return nil
}

func (en *Engine) schedule(time sim.VTimeInSec, phase Phase, micro uint64, kind EventKind, clk *ClockDomain, proc *Proc) {
	en.nextIns++
	ev := &Event{
		time:      time,
		Phase:     phase,
		MicroTick: micro,
		Kind:      kind,
		insertion: en.nextIns,
		Clock:     clk,
		Proc:      proc,
	}
	ev.setHandler(en)
	en.akita.Schedule(ev)
}

// setHandler is a package-private setter so Event.Handler() can return
// the Engine without exposing a mutable exported field.
func (e *Event) setHandler(en *Engine) { e.owner = en }

// scheduleProcResume schedules p to be resumed at time t.
func (en *Engine) scheduleProcResume(t sim.VTimeInSec, p *Proc) {
	en.schedule(t, PhaseAfter, en.microTick, KindSimProcResume, nil, p)
}

// CurrentTime returns the akita engine's current simulated time.
func (en *Engine) CurrentTime() sim.VTimeInSec { return en.akita.CurrentTime() }

// Run drives the underlying akita engine until its event queue is
// exhausted, mirroring the teacher's driver.Run()/Engine.Run() split
// (e.g. test/testbench/axpy/main.go: "Engine.Run() will run until no
// progress is made"). A free-running clock domain reschedules itself
// forever, so Run only terminates once a RunFor deadline is set (or
// the circuit has no clock domain).
func (en *Engine) Run() error { return en.akita.Run() }

// RunFor powers on (if not already started) and runs the simulation
// for duration seconds of simulated time: every clock domain stops
// rescheduling its own edge once that edge would land past the
// deadline, which lets Run's underlying event queue actually drain.
func (en *Engine) RunFor(duration sim.VTimeInSec) error {
	en.hasDeadline = true
	en.deadline = en.akita.CurrentTime() + duration
	en.Start()
	return en.Run()
}

// Program returns the compiled program this engine is running.
func (en *Engine) Program() *Program { return en.program }

// compareEvents implements the spec's secondary tie-break, exposed for
// tests that want to assert ordering directly without driving a full
// akita run; the engine's own dispatch does not call it.
func compareEvents(a, b *Event) bool {
	if a.time != b.time {
		return a.time < b.time
	}
	if a.Phase != b.Phase {
		return a.Phase < b.Phase
	}
	if a.MicroTick != b.MicroTick {
		return a.MicroTick < b.MicroTick
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.insertion < b.insertion
}

// sortEvents orders events per compareEvents; used only by tests that
// want to verify the tie-break in isolation.
func sortEvents(evs []*Event) {
	sort.Slice(evs, func(i, j int) bool { return compareEvents(evs[i], evs[j]) })
}
