package hlim

import "github.com/synogate/gatery/bitvec"

// MuxImpl is a multiplexer: input 0 is the selector, inputs 1..N are
// the data inputs, selected by the selector's unsigned value.
type MuxImpl struct {
	baseImpl
}

const MuxSelector = 0

// NewMux creates a mux with the given number of data inputs, all of
// type t, selected by a selector of selectorWidth bits.
func (c *Circuit) NewMux(numData int, selectorWidth int, t ConnectionType) *Node {
	n := c.CreateNode(KindMux, "", numData+1, 1, &MuxImpl{})
	n.ConstrainInput(MuxSelector, Vec(selectorWidth))
	for i := 0; i < numData; i++ {
		n.ConstrainInput(i+1, t)
	}
	n.Outputs[0].Type = t
	return n
}

func (m *MuxImpl) Kind() NodeKind           { return KindMux }
func (m *MuxImpl) TypeName() string         { return "Multiplexer" }
func (m *MuxImpl) CloneUnconnected() NodeImpl { return &MuxImpl{} }

// NumDataInputs returns how many data inputs n (a mux node) has.
func NumDataInputs(n *Node) int { return len(n.Inputs) - 1 }

func (m *MuxImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	selWidth := n.Inputs[MuxSelector].Type.Width
	width := n.Outputs[0].Type.Width
	if !state.IsDefined(inputs[MuxSelector], selWidth) {
		state.InsertUndefined(outputs[0], width)
		return
	}
	sel := int(state.Extract(inputs[MuxSelector], selWidth))
	dataCount := NumDataInputs(n)
	if sel < 0 || sel >= dataCount {
		state.InsertUndefined(outputs[0], width)
		return
	}
	bitvec.Copy(state, outputs[0], state, inputs[sel+1], width)
}
