package hlim

import "github.com/synogate/gatery/bitvec"

// TapLevel is the severity a signal-tap probe reports at.
type TapLevel int

const (
	LvlDebug TapLevel = iota
	LvlWarning
	LvlAssert
)

// SignalTapImpl is a simulation-time probe: a single Bool condition
// input and a static message. The simulator (not this package) is
// responsible for dispatching to SimulatorCallbacks on each rising
// transition of the condition — Check below only computes "did the
// condition just become true".
type SignalTapImpl struct {
	baseImpl
	Level   TapLevel
	Message string
	prevTrue bool
}

// NewSignalTap creates a probe on cond (a Bool signal).
func (c *Circuit) NewSignalTap(level TapLevel, message string) *Node {
	n := c.CreateNode(KindSignalTap, "", 1, 0, &SignalTapImpl{Level: level, Message: message})
	n.ConstrainInput(0, Bit())
	n.SetRefCounted(true) // probes are side-effecting; never culled
	return n
}

func (s *SignalTapImpl) Kind() NodeKind   { return KindSignalTap }
func (s *SignalTapImpl) TypeName() string { return "SignalTap" }
func (s *SignalTapImpl) CloneUnconnected() NodeImpl {
	return &SignalTapImpl{Level: s.Level, Message: s.Message}
}

// Triggered reports whether the condition has just transitioned from
// false/undefined to true (spec.md §8 scenario 6: "fires again if the
// condition transitions low->high between events"), and updates the
// probe's latched previous value.
func (s *SignalTapImpl) Triggered(state *bitvec.State, condOffset int) bool {
	now := state.IsDefined(condOffset, 1) && state.Get(bitvec.Value, condOffset)
	rose := now && !s.prevTrue
	s.prevTrue = now
	return rose
}
