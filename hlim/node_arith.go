package hlim

import "github.com/synogate/gatery/bitvec"

// ArithOp is the closed set of arithmetic node operations.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
)

// arithTable maps each ArithOp to its evaluation function, adapted
// from zeonica's program/default.go + instr/isa.go opcode-to-behavior
// dispatch map (instADD/instMOV/instMAC registered into an ISA by
// name), generalized here from named Go funcs over int32 to a
// NodeKind-scoped op table over uint64 lanes.
var arithTable = map[ArithOp]func(a, b uint64) uint64{
	OpAdd: func(a, b uint64) uint64 { return a + b },
	OpSub: func(a, b uint64) uint64 { return a - b },
	OpMul: func(a, b uint64) uint64 { return a * b },
	OpDiv: func(a, b uint64) uint64 {
		if b == 0 {
			return 0
		}
		return a / b
	},
	OpRem: func(a, b uint64) uint64 {
		if b == 0 {
			return 0
		}
		return a % b
	},
}

// ArithImpl is an ADD/SUB/MUL/DIV/REM node: two inputs, one output, all
// the same width (width <= 64, the reference simulator's direct-word
// evaluation fast path).
type ArithImpl struct {
	baseImpl
	Op ArithOp
}

// NewArith creates an arithmetic node of the given op and width.
func (c *Circuit) NewArith(op ArithOp, width int) *Node {
	n := c.CreateNode(KindArith, "", 2, 1, &ArithImpl{Op: op})
	n.ConstrainInput(0, Vec(width))
	n.ConstrainInput(1, Vec(width))
	n.Outputs[0].Type = Vec(width)
	return n
}

func (a *ArithImpl) Kind() NodeKind           { return KindArith }
func (a *ArithImpl) TypeName() string         { return "Arithmetic" }
func (a *ArithImpl) CloneUnconnected() NodeImpl { return &ArithImpl{Op: a.Op} }

func (a *ArithImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	width := n.Outputs[0].Type.Width
	if !state.IsDefined(inputs[0], width) || !state.IsDefined(inputs[1], width) {
		state.InsertUndefined(outputs[0], width)
		return
	}
	lhs := state.Extract(inputs[0], width)
	rhs := state.Extract(inputs[1], width)
	result := arithTable[a.Op](lhs, rhs)
	if width < 64 {
		result &= (uint64(1) << uint(width)) - 1
	}
	state.Insert(outputs[0], width, result)
}
