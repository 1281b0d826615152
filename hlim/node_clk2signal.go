package hlim

import "github.com/synogate/gatery/bitvec"

// ClkToSignalImpl exposes a clock's current value (and, separately, a
// clock's reset signal) as an ordinary Bool signal, so frontend logic
// can read clocks/resets as data.
type ClkToSignalImpl struct {
	baseImpl
	ReadReset bool // false: expose clock value; true: expose reset value
}

// NewClockToSignal creates a node exposing clk (or clk's reset, if
// readReset) as a Bool output.
func (c *Circuit) NewClockToSignal(clk *Clock, readReset bool) *Node {
	n := c.CreateNode(KindClockToSignal, "", 0, 1, &ClkToSignalImpl{ReadReset: readReset})
	n.Outputs[0].Type = Bit()
	n.Clocks = []*Clock{clk}
	return n
}

func (cs *ClkToSignalImpl) Kind() NodeKind   { return KindClockToSignal }
func (cs *ClkToSignalImpl) TypeName() string { return "ClockToSignal" }
func (cs *ClkToSignalImpl) CloneUnconnected() NodeImpl {
	return &ClkToSignalImpl{ReadReset: cs.ReadReset}
}

// Evaluate is a no-op here: the simulator writes this node's output
// directly whenever the referenced clock/reset value changes, the same
// way it seeds pin values, since the value is driven by the event
// system rather than computed from other signals.
func (cs *ClkToSignalImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
}
