package hlim

import "github.com/synogate/gatery/bitvec"

// PriorityImpl is a priority-conditional node: an ordered list of
// condition/value pairs plus a default, evaluated first-match-wins.
// Inputs are laid out as [cond0, value0, cond1, value1, ..., default].
type PriorityImpl struct {
	baseImpl
	NumCases int
}

// NewPriority creates a priority-conditional node with numCases
// condition/value pairs (conditions are Bool, values are of type t)
// plus one default value input.
func (c *Circuit) NewPriority(numCases int, t ConnectionType) *Node {
	n := c.CreateNode(KindPriority, "", numCases*2+1, 1, &PriorityImpl{NumCases: numCases})
	for i := 0; i < numCases; i++ {
		n.ConstrainInput(i*2, Bit())
		n.ConstrainInput(i*2+1, t)
	}
	n.ConstrainInput(numCases*2, t)
	n.Outputs[0].Type = t
	return n
}

func (p *PriorityImpl) Kind() NodeKind           { return KindPriority }
func (p *PriorityImpl) TypeName() string         { return "PriorityConditional" }
func (p *PriorityImpl) CloneUnconnected() NodeImpl { return &PriorityImpl{NumCases: p.NumCases} }

func (p *PriorityImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	width := n.Outputs[0].Type.Width
	for i := 0; i < p.NumCases; i++ {
		condOff := inputs[i*2]
		if state.IsDefined(condOff, 1) && state.Get(bitvec.Value, condOff) {
			bitvec.Copy(state, outputs[0], state, inputs[i*2+1], width)
			return
		}
	}
	bitvec.Copy(state, outputs[0], state, inputs[p.NumCases*2], width)
}
