package simulator

import "github.com/sarchlab/akita/v4/sim"

// SimulatorCallbacks is the simulator's external interface (spec.md §6
// / §7): every point the simulator's internals surface an observable
// event to an embedder, adapted from the original's SimulatorCallbacks
// table. A fixture test typically implements this to turn asserts and
// warnings into test failures (cmd/gatery-check's reportCallbacks
// instead collects them into a diag.Report).
type SimulatorCallbacks interface {
	OnAnnotationStart(name string)
	OnAnnotationEnd(name string)

	OnPowerOn()
	OnAfterPowerOn()

	OnNewTick(now sim.VTimeInSec)
	OnNewPhase(phase Phase, now sim.VTimeInSec)
	OnAfterMicroTick(now sim.VTimeInSec)

	OnClock(domain *ClockDomain, now sim.VTimeInSec)
	OnReset(domain *ClockDomain, now sim.VTimeInSec)
	OnCommitState(now sim.VTimeInSec)

	OnSimProcOutputOverridden(node string)
	OnSimProcOutputRead(node string)

	OnDebugMessage(node string, message string)
	OnWarning(node string, message string)
	OnAssert(node string, message string)
}

// NopCallbacks implements SimulatorCallbacks with every method a
// no-op; embed it to implement only the callbacks a given test cares
// about.
type NopCallbacks struct{}

func (NopCallbacks) OnAnnotationStart(string)               {}
func (NopCallbacks) OnAnnotationEnd(string)                 {}
func (NopCallbacks) OnPowerOn()                             {}
func (NopCallbacks) OnAfterPowerOn()                        {}
func (NopCallbacks) OnNewTick(sim.VTimeInSec)                {}
func (NopCallbacks) OnNewPhase(Phase, sim.VTimeInSec)        {}
func (NopCallbacks) OnAfterMicroTick(sim.VTimeInSec)         {}
func (NopCallbacks) OnClock(*ClockDomain, sim.VTimeInSec)    {}
func (NopCallbacks) OnReset(*ClockDomain, sim.VTimeInSec)    {}
func (NopCallbacks) OnCommitState(sim.VTimeInSec)            {}
func (NopCallbacks) OnSimProcOutputOverridden(string)       {}
func (NopCallbacks) OnSimProcOutputRead(string)             {}
func (NopCallbacks) OnDebugMessage(string, string)          {}
func (NopCallbacks) OnWarning(string, string)               {}
func (NopCallbacks) OnAssert(string, string)                {}
