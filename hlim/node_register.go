package hlim

import "github.com/synogate/gatery/bitvec"

// RegisterFlag is a bit in a register's retiming/binding flag set.
type RegisterFlag int

const (
	AllowRetimingForward RegisterFlag = 1 << iota
	AllowRetimingBackward
	IsBoundToMemory
)

const (
	RegData = 0
	RegResetValue = 1
	RegEnable = 2
	regNumInputs = 3
)

// RegisterImpl is a clocked register: DATA/RESET_VALUE/ENABLE inputs,
// one clock side-input, and internal DATA/ENABLE latches (spec.md §3).
type RegisterImpl struct {
	baseImpl
	Flags RegisterFlag
}

const (
	regIntData = 0
	regIntEnable = 1
)

// NewRegister creates a register node of the given output width,
// clocked by clk. DATA and ENABLE start unconnected; RESET_VALUE is
// optional (spec.md §4.1: "registers without reset are bypassed" by
// constant propagation, "registers with defined reset are left alone").
func (c *Circuit) NewRegister(clk *Clock, t ConnectionType) *Node {
	n := c.CreateNode(KindRegister, "", regNumInputs, 1, &RegisterImpl{})
	n.ConstrainInput(RegData, t)
	n.ConstrainInput(RegResetValue, t)
	n.ConstrainInput(RegEnable, Bit())
	n.Outputs[0].Type = t
	n.Outputs[0].Kind = Latched
	n.Clocks = []*Clock{clk}
	return n
}

func (r *RegisterImpl) Kind() NodeKind   { return KindRegister }
func (r *RegisterImpl) TypeName() string { return "Register" }
func (r *RegisterImpl) CloneUnconnected() NodeImpl { return &RegisterImpl{Flags: r.Flags} }

func (r *RegisterImpl) HasFlag(f RegisterFlag) bool { return r.Flags&f != 0 }
func (r *RegisterImpl) SetFlag(f RegisterFlag)      { r.Flags |= f }
func (r *RegisterImpl) ClearFlag(f RegisterFlag)    { r.Flags &^= f }

func (r *RegisterImpl) InternalStateSizes(n *Node) []int {
	width := n.Outputs[0].Type.Width
	return []int{width, 1} // [regIntData]=width bits, [regIntEnable]=1 bit (latched enable decision)
}

// Reset exposes the register's internal state (undefined at power-on)
// on its output; it does not read RESET_VALUE. The simulator's
// power-on sequence loads RESET_VALUE afterwards through ApplyReset.
func (r *RegisterImpl) Reset(n *Node, state *bitvec.State, internal, outputs []int) {
	width := n.Outputs[0].Type.Width
	if n.Inputs[RegResetValue].Connected() {
		// RESET_VALUE must be constant-reachable at export time
		// (spec.md §3 invariant); at simulation time we only need its
		// current value, which by power-on has already been evaluated
		// into the state by an earlier execution block.
	}
	state.Insert(outputs[0], width, state.Extract(internal[regIntData], width))
}

// Evaluate exposes the register's current (pre-edge) state on its
// output; the register's own inputs are only consulted on Advance.
func (r *RegisterImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	width := n.Outputs[0].Type.Width
	bitvec.Copy(state, outputs[0], state, internal[regIntData], width)
}

// Advance is called once per active clock edge: if enabled (or
// unconnected, meaning always-enabled), DATA is latched into the
// register's internal state for the next Evaluate to expose.
func (r *RegisterImpl) Advance(n *Node, state *bitvec.State, internal, outputs []int, clockPort int) {
	// actual latch-in needs the mapped input offsets, which the
	// simulator passes via AdvanceWithInputs (Advance's signature,
	// shared with MemoryPortImpl.Advance, carries no input offsets).
}

// AdvanceWithInputs performs the actual state update; called by the
// simulator's ClockedNode with the register's mapped input offsets.
func (r *RegisterImpl) AdvanceWithInputs(n *Node, state *bitvec.State, internal []int, inputs []int) {
	width := n.Outputs[0].Type.Width
	enabled := true
	if n.Inputs[RegEnable].Connected() {
		enabled = state.IsDefined(inputs[RegEnable], 1) && state.Get(bitvec.Value, inputs[RegEnable])
	}
	if !enabled {
		return
	}
	if n.Inputs[RegData].Connected() {
		bitvec.Copy(state, internal[regIntData], state, inputs[RegData], width)
	}
}

// ApplyReset loads RESET_VALUE into the register's internal state
// (undefined if RESET_VALUE is unconnected); called by the simulator's
// power-on sequence once the RESET_VALUE inputs have been evaluated.
func (r *RegisterImpl) ApplyReset(n *Node, state *bitvec.State, internal []int, inputs []int) {
	width := n.Outputs[0].Type.Width
	if n.Inputs[RegResetValue].Connected() {
		bitvec.Copy(state, internal[regIntData], state, inputs[RegResetValue], width)
	} else {
		state.InsertUndefined(internal[regIntData], width)
	}
}
