package hlim

import "github.com/synogate/gatery/bitvec"

// CompareOp is the closed set of comparison operations. All produce a
// single Bool output.
type CompareOp int

const (
	OpEQ CompareOp = iota
	OpNEQ
	OpLT
	OpGT
	OpLEQ
	OpGEQ
)

var compareTable = map[CompareOp]func(a, b uint64) bool{
	OpEQ:  func(a, b uint64) bool { return a == b },
	OpNEQ: func(a, b uint64) bool { return a != b },
	OpLT:  func(a, b uint64) bool { return a < b },
	OpGT:  func(a, b uint64) bool { return a > b },
	OpLEQ: func(a, b uint64) bool { return a <= b },
	OpGEQ: func(a, b uint64) bool { return a >= b },
}

// CompareImpl is an EQ/NEQ/LT/GT/LEQ/GEQ node: two same-width inputs,
// one Bool output.
type CompareImpl struct {
	baseImpl
	Op    CompareOp
	Width int
}

// NewCompare creates a comparison node over operands of the given width.
func (c *Circuit) NewCompare(op CompareOp, width int) *Node {
	n := c.CreateNode(KindCompare, "", 2, 1, &CompareImpl{Op: op, Width: width})
	n.ConstrainInput(0, Vec(width))
	n.ConstrainInput(1, Vec(width))
	n.Outputs[0].Type = Bit()
	return n
}

func (cm *CompareImpl) Kind() NodeKind           { return KindCompare }
func (cm *CompareImpl) TypeName() string         { return "Compare" }
func (cm *CompareImpl) CloneUnconnected() NodeImpl { return &CompareImpl{Op: cm.Op, Width: cm.Width} }

func (cm *CompareImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	if !state.IsDefined(inputs[0], cm.Width) || !state.IsDefined(inputs[1], cm.Width) {
		state.InsertUndefined(outputs[0], 1)
		return
	}
	lhs := state.Extract(inputs[0], cm.Width)
	rhs := state.Extract(inputs[1], cm.Width)
	result := compareTable[cm.Op](lhs, rhs)
	val := uint64(0)
	if result {
		val = 1
	}
	state.Insert(outputs[0], 1, val)
}
