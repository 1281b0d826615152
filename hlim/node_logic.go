package hlim

import "github.com/synogate/gatery/bitvec"

// LogicOp is the closed set of bitwise logic operations. NOT is unary;
// the rest are binary.
type LogicOp int

const (
	OpAnd LogicOp = iota
	OpNand
	OpOr
	OpNor
	OpXor
	OpXnor
	OpNot
)

var logicTable = map[LogicOp]func(a, b uint64) uint64{
	OpAnd:  func(a, b uint64) uint64 { return a & b },
	OpNand: func(a, b uint64) uint64 { return ^(a & b) },
	OpOr:   func(a, b uint64) uint64 { return a | b },
	OpNor:  func(a, b uint64) uint64 { return ^(a | b) },
	OpXor:  func(a, b uint64) uint64 { return a ^ b },
	OpXnor: func(a, b uint64) uint64 { return ^(a ^ b) },
}

// LogicImpl is an AND/NAND/OR/NOR/XOR/XNOR/NOT node.
type LogicImpl struct {
	baseImpl
	Op LogicOp
}

// NewLogic creates a logic node. NOT takes a single input; the rest
// take two.
func (c *Circuit) NewLogic(op LogicOp, width int) *Node {
	numInputs := 2
	if op == OpNot {
		numInputs = 1
	}
	n := c.CreateNode(KindLogic, "", numInputs, 1, &LogicImpl{Op: op})
	for i := 0; i < numInputs; i++ {
		n.ConstrainInput(i, Vec(width))
	}
	n.Outputs[0].Type = Vec(width)
	return n
}

func (l *LogicImpl) Kind() NodeKind           { return KindLogic }
func (l *LogicImpl) TypeName() string         { return "Logic" }
func (l *LogicImpl) CloneUnconnected() NodeImpl { return &LogicImpl{Op: l.Op} }

// IsNegationSelector reports whether this logic node is a bare NOT of
// a single bit, the shape the optimizer's mux selector-negation
// canonicalization looks for.
func (l *LogicImpl) IsNegationSelector() bool { return l.Op == OpNot }

func (l *LogicImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	width := n.Outputs[0].Type.Width
	if l.Op == OpNot {
		if !state.IsDefined(inputs[0], width) {
			state.InsertUndefined(outputs[0], width)
			return
		}
		mask := uint64(0)
		if width >= 64 {
			mask = ^uint64(0)
		} else {
			mask = (uint64(1) << uint(width)) - 1
		}
		state.Insert(outputs[0], width, ^state.Extract(inputs[0], width)&mask)
		return
	}
	if !state.IsDefined(inputs[0], width) || !state.IsDefined(inputs[1], width) {
		state.InsertUndefined(outputs[0], width)
		return
	}
	mask := uint64(0)
	if width >= 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << uint(width)) - 1
	}
	result := logicTable[l.Op](state.Extract(inputs[0], width), state.Extract(inputs[1], width)) & mask
	state.Insert(outputs[0], width, result)
}
