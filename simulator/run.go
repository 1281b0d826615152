package simulator

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/synogate/gatery/hlim"
)

// Start schedules power-on and returns; the caller still has to drive
// the underlying akita engine's Run loop (mirroring the teacher's
// driver.Run() / engine.Run() split).
func (en *Engine) Start() {
	en.schedule(0, PhaseBefore, 0, KindPowerOn, nil, nil)
}

// powerOn implements spec.md §4.4's power-on sequence: reset every
// power-on node, evaluate every block once so constant/pin drivers
// settle, apply each register's reset value now that RESET_VALUE
// inputs are resolved, re-evaluate once more so registers expose their
// seeded values, then seed each clock's first edge and launch every
// registered coroutine.
func (en *Engine) powerOn() {
	en.callback.OnPowerOn()

	state := en.program.State.Bits
	for _, mn := range en.program.PowerOnNodes {
		mn.Node.Impl.Reset(mn.Node, state, mn.Internal, mn.Outputs)
	}

	en.evalAllBlocks()

	for _, domain := range en.program.Clocks {
		for _, rc := range domain.Registers {
			reg := rc.Mapped.Node.Impl.(*hlim.RegisterImpl)
			reg.ApplyReset(rc.Mapped.Node, state, rc.Mapped.Internal, rc.Mapped.Inputs)
		}
	}

	en.evalAllBlocks()

	for _, domain := range en.program.Clocks {
		period := 1.0 / float64(domain.Clock.AbsoluteFrequency())
		domain.nextEdge = sim.VTimeInSec(period / 2)
		en.scheduleClockEdge(domain)
	}

	en.callback.OnAfterPowerOn()

	for _, p := range en.pendingSpawns {
		en.Spawn(p)
	}
	en.pendingSpawns = nil
}

// evalAllBlocks runs every ExecutionBlock's nodes once, in order, and
// checks every signal-tap probe for a rising transition afterward.
func (en *Engine) evalAllBlocks() {
	state := en.program.State.Bits
	for _, block := range en.program.Blocks {
		for _, mn := range block.Nodes {
			mn.Node.Impl.Evaluate(mn.Node, state, mn.Internal, mn.Inputs, mn.Outputs)
		}
	}
	en.checkSignalTaps()
	en.checkWatchers()
}

func (en *Engine) checkSignalTaps() {
	state := en.program.State.Bits
	for _, n := range en.program.Circuit.Nodes() {
		if n.Kind() != hlim.KindSignalTap {
			continue
		}
		mn := en.program.Mapped(n.Id())
		if mn == nil {
			continue
		}
		tap := n.Impl.(*hlim.SignalTapImpl)
		if !tap.Triggered(state, mn.Inputs[0]) {
			continue
		}
		label := n.Name()
		if label == "" {
			label = hlim.KindName(n.Kind())
		}
		switch tap.Level {
		case hlim.LvlDebug:
			en.callback.OnDebugMessage(label, tap.Message)
		case hlim.LvlWarning:
			en.callback.OnWarning(label, tap.Message)
		case hlim.LvlAssert:
			en.callback.OnAssert(label, tap.Message)
		}
	}
}

// checkWatchers resumes every coroutine parked on WaitChange/WaitStable
// whose condition is now satisfied.
func (en *Engine) checkWatchers() {
	if len(en.watchers) == 0 {
		return
	}
	remaining := en.watchers[:0]
	var ready []*Proc
	for _, w := range en.watchers {
		if w.satisfied() {
			ready = append(ready, w.proc)
		} else {
			remaining = append(remaining, w)
		}
	}
	en.watchers = remaining
	for _, p := range ready {
		p.watch = nil
		en.handOff(p)
	}
}

// runClockEdge advances every register and memory write port in
// domain (the DURING phase), then re-evaluates all combinational logic
// against the post-edge state (the AFTER phase), then schedules the
// domain's next edge.
func (en *Engine) runClockEdge(domain *ClockDomain, now sim.VTimeInSec) {
	en.callback.OnNewPhase(PhaseBefore, now)
	en.callback.OnNewTick(now)
	en.callback.OnClock(domain, now)

	state := en.program.State.Bits
	for _, rc := range domain.Registers {
		reg := rc.Mapped.Node.Impl.(*hlim.RegisterImpl)
		reg.AdvanceWithInputs(rc.Mapped.Node, state, rc.Mapped.Internal, rc.Mapped.Inputs)
	}
	for _, wc := range domain.Writers {
		port := wc.Mapped.Node.Impl.(*hlim.MemoryPortImpl)
		port.WriteNow(wc.Mapped.Node, state, wc.MemBase, wc.WordWidth, wc.Mapped.Inputs)
	}

	en.callback.OnNewPhase(PhaseAfter, now)
	en.evalAllBlocks()
	en.callback.OnCommitState(now)
	en.callback.OnAfterMicroTick(now)

	period := 1.0 / float64(domain.Clock.AbsoluteFrequency())
	domain.nextEdge = now + sim.VTimeInSec(period)
	en.scheduleClockEdge(domain)
}

// scheduleClockEdge schedules domain's next edge unless a RunFor
// deadline is set and that edge would land past it.
func (en *Engine) scheduleClockEdge(domain *ClockDomain) {
	if en.hasDeadline && domain.nextEdge > en.deadline {
		return
	}
	en.schedule(domain.nextEdge, PhaseDuring, en.microTick+1, KindClockEdge, domain, nil)
}
