package hlim

import "github.com/synogate/gatery/bitvec"

// PinDirection is the closed set of pin boundary directions.
type PinDirection int

const (
	PinInput PinDirection = iota
	PinOutput
	PinBidirectional
)

// PinImpl is a boundary node: an input pin exposes a value the
// simulator's driver code writes directly into the state (it has a
// side effect, so it is never culled and is always seeded into
// power_on_nodes); an output pin exposes a value for the driver to
// read.
type PinImpl struct {
	baseImpl
	Direction PinDirection
	Width     int
	// OverrideValue/OverrideDefined seed an input pin's initial value
	// at power-on when the driver pre-sets it before the run starts.
	OverrideValue   uint64
	OverrideDefined bool
}

// NewPin creates a boundary pin node. Input pins have zero inputs and
// one output; output/bidirectional pins have one input (the value to
// expose) and, for bidirectional, also one output.
func (c *Circuit) NewPin(dir PinDirection, width int) *Node {
	var numIn, numOut int
	switch dir {
	case PinInput:
		numIn, numOut = 0, 1
	case PinOutput:
		numIn, numOut = 1, 0
	case PinBidirectional:
		numIn, numOut = 1, 1
	}
	n := c.CreateNode(KindPin, "", numIn, numOut, &PinImpl{Direction: dir, Width: width})
	if numIn > 0 {
		n.ConstrainInput(0, Vec(width))
	}
	if numOut > 0 {
		n.Outputs[0].Type = Vec(width)
	}
	n.SetRefCounted(true) // a pin is always a side-effecting boundary, never culled
	return n
}

func (p *PinImpl) Kind() NodeKind   { return KindPin }
func (p *PinImpl) TypeName() string { return "Pin" }
func (p *PinImpl) CloneUnconnected() NodeImpl {
	return &PinImpl{Direction: p.Direction, Width: p.Width, OverrideValue: p.OverrideValue, OverrideDefined: p.OverrideDefined}
}

func (p *PinImpl) Reset(n *Node, state *bitvec.State, internal, outputs []int) {
	if p.Direction == PinOutput {
		return
	}
	if p.OverrideDefined {
		state.Insert(outputs[0], p.Width, p.OverrideValue)
	} else {
		state.InsertUndefined(outputs[0], p.Width)
	}
}

func (p *PinImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	if p.Direction == PinInput {
		return // value is driven externally, not recomputed from inputs
	}
	if len(outputs) > 0 {
		bitvec.Copy(state, outputs[0], state, inputs[0], p.Width)
	}
}
