package simulator

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/synogate/gatery/bitvec"
)

// Proc is a simulation coroutine: a goroutine parked on a channel at
// each of the five suspension points (spec.md §4.4/§5), resumed by the
// Engine one at a time so only ever one Proc body is actually running
// (spec.md §5 "one-coroutine-live-at-a-time cooperative model"). The
// Engine hands it the baton by sending on resume and blocking on
// parked until the body either suspends again or returns.
type Proc struct {
	engine  *Engine
	body    func(p *Proc)
	resume  chan struct{}
	parked  chan struct{}
	done    bool
	watch   *watcher // non-nil while parked on WaitChange/WaitStable
}

// watcher is a condition an AFTER-phase re-evaluation checks on every
// pass; when it turns true, the owning Proc is resumed.
type watcher struct {
	proc      *Proc
	satisfied func() bool
}

// Spawn starts a new coroutine; it runs until its first suspension
// point before Spawn returns (the baton is handed to it immediately).
func (en *Engine) Spawn(body func(p *Proc)) *Proc {
	p := &Proc{engine: en, body: body, resume: make(chan struct{}), parked: make(chan struct{})}
	en.procs = append(en.procs, p)
	go func() {
		<-p.resume
		body(p)
		p.done = true
		p.parked <- struct{}{}
	}()
	en.handOff(p)
	return p
}

// handOff gives the baton to p and blocks until p suspends or finishes.
func (en *Engine) handOff(p *Proc) {
	if p.done {
		return
	}
	p.resume <- struct{}{}
	<-p.parked
}

// resumeFromEvent is called by the Engine's event loop when a scheduled
// KindSimProcResume event fires for this Proc.
func (p *Proc) resumeFromEvent() {
	p.watch = nil
	p.engine.handOff(p)
}

// suspend parks the calling coroutine body until the Engine hands the
// baton back.
func (p *Proc) suspend() {
	p.parked <- struct{}{}
	<-p.resume
}

// WaitFor suspends the coroutine for duration seconds of simulated
// time (spec.md §4.4 suspension point 1).
func (p *Proc) WaitFor(duration sim.VTimeInSec) {
	p.WaitUntil(p.engine.CurrentTime() + duration)
}

// WaitUntil suspends the coroutine until absolute simulated time t
// (suspension point 2).
func (p *Proc) WaitUntil(t sim.VTimeInSec) {
	p.engine.scheduleProcResume(t, p)
	p.suspend()
}

// WaitClock suspends the coroutine until the next active edge of
// domain (suspension point 3).
func (p *Proc) WaitClock(domain *ClockDomain) {
	p.engine.scheduleProcResume(domain.nextEdge, p)
	p.suspend()
}

// WaitChange suspends the coroutine until the width bits at offset
// differ from their value when WaitChange was called (suspension
// point 4), checked at every AFTER-phase re-evaluation.
func (p *Proc) WaitChange(offset, width int) {
	state := p.engine.program.State.Bits
	before := snapshotBits(state, offset, width)
	p.watch = &watcher{proc: p, satisfied: func() bool {
		return !snapshotEqual(state, offset, width, before)
	}}
	p.engine.watchers = append(p.engine.watchers, p.watch)
	p.suspend()
}

// WaitStable suspends the coroutine until the width bits at offset
// have not changed across one full AFTER-phase re-evaluation
// (suspension point 5) -- approximating "stable for the remainder of
// this micro-tick" since the reference model has no narrower unit of
// time than one phase.
func (p *Proc) WaitStable(offset, width int) {
	state := p.engine.program.State.Bits
	last := snapshotBits(state, offset, width)
	seenOnce := false
	p.watch = &watcher{proc: p, satisfied: func() bool {
		cur := snapshotBits(state, offset, width)
		stable := seenOnce && bitsEqual(cur, last)
		last = cur
		seenOnce = true
		return stable
	}}
	p.engine.watchers = append(p.engine.watchers, p.watch)
	p.suspend()
}

// bitsnapshot is a plain copy of a span's two planes, used to detect
// change/stability without holding a live reference into the state.
type bitsnapshot struct {
	value, defined []bool
}

func snapshotBits(state *bitvec.State, offset, width int) bitsnapshot {
	s := bitsnapshot{value: make([]bool, width), defined: make([]bool, width)}
	for i := 0; i < width; i++ {
		s.value[i] = state.Get(bitvec.Value, offset+i)
		s.defined[i] = state.Get(bitvec.Defined, offset+i)
	}
	return s
}

func snapshotEqual(state *bitvec.State, offset, width int, before bitsnapshot) bool {
	return bitsEqual(snapshotBits(state, offset, width), before)
}

func bitsEqual(a, b bitsnapshot) bool {
	for i := range a.value {
		if a.value[i] != b.value[i] || a.defined[i] != b.defined[i] {
			return false
		}
	}
	return true
}
