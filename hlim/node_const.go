package hlim

import "github.com/synogate/gatery/bitvec"

// ConstImpl is a constant node: zero inputs, one output whose value
// (and defined mask) never change after creation.
type ConstImpl struct {
	baseImpl
	Type  ConnectionType
	Value uint64 // low bits significant, width bits used
	// DefinedMask marks which of the low Width bits are actually known;
	// a bit clear here is 'X' (undefined) at export/simulation time.
	DefinedMask uint64
}

// NewConstant creates a fully-defined constant node.
func (c *Circuit) NewConstant(t ConnectionType, value uint64) *Node {
	mask := uint64(0)
	if t.Width >= 64 {
		mask = ^uint64(0)
	} else if t.Width > 0 {
		mask = (uint64(1) << uint(t.Width)) - 1
	}
	impl := &ConstImpl{Type: t, Value: value & mask, DefinedMask: mask}
	n := c.CreateNode(KindConstant, "", 0, 1, impl)
	n.Outputs[0].Type = t
	n.Outputs[0].Kind = ConstantOutput
	return n
}

func (c *ConstImpl) Kind() NodeKind    { return KindConstant }
func (c *ConstImpl) TypeName() string  { return "Constant" }
func (c *ConstImpl) CloneUnconnected() NodeImpl {
	return &ConstImpl{Type: c.Type, Value: c.Value, DefinedMask: c.DefinedMask}
}

func (c *ConstImpl) Reset(n *Node, state *bitvec.State, internal, outputs []int) {
	c.Evaluate(n, state, internal, nil, outputs)
}

func (c *ConstImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	width := n.Outputs[0].Type.Width
	for i := 0; i < width; i++ {
		defined := c.DefinedMask&(uint64(1)<<uint(i)) != 0
		state.Put(bitvec.Defined, outputs[0]+i, defined)
		if defined {
			state.Put(bitvec.Value, outputs[0]+i, c.Value&(uint64(1)<<uint(i)) != 0)
		}
	}
}

// AllBitsDefined reports whether every bit of the constant is known.
func (c *ConstImpl) AllBitsDefined(width int) bool {
	if width >= 64 {
		return c.DefinedMask == ^uint64(0)
	}
	want := (uint64(1) << uint(width)) - 1
	return c.DefinedMask&want == want
}
