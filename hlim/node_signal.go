package hlim

import "github.com/synogate/gatery/bitvec"

// SignalImpl is the identity passthrough node: one input, one output of
// the same type, used purely to attach a debug name/comment to a
// sub-expression. Semantically a no-op (spec.md GLOSSARY).
type SignalImpl struct {
	baseImpl
}

// NewSignal creates a named passthrough of type t.
func (c *Circuit) NewSignal(name string, t ConnectionType) *Node {
	n := c.CreateNode(KindSignal, name, 1, 1, &SignalImpl{})
	n.ConstrainInput(0, t)
	n.Outputs[0].Type = t
	n.SetRefCounted(true) // named signals carry debug/export names; never silently culled
	return n
}

func (s *SignalImpl) Kind() NodeKind           { return KindSignal }
func (s *SignalImpl) TypeName() string         { return "Signal" }
func (s *SignalImpl) CloneUnconnected() NodeImpl { return &SignalImpl{} }

func (s *SignalImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	bitvec.Copy(state, outputs[0], state, inputs[0], n.Outputs[0].Type.Width)
}
