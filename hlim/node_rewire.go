package hlim

import "github.com/synogate/gatery/bitvec"

// RangeSource tags where one OutputRange's bits come from.
type RangeSource int

const (
	// FromInput copies bits from one of the rewire node's inputs.
	FromInput RangeSource = iota
	// FromConstZero produces all-zero, defined bits.
	FromConstZero
	// FromConstOne produces all-one, defined bits.
	FromConstOne
	// FromConstUndefined produces undefined ('X') bits.
	FromConstUndefined
)

// OutputRange is one element of a rewire node's declarative
// description: a contiguous run of output bits, either copied from a
// sub-range of one input or synthesized from a constant source
// (spec.md §3 "rewire" node kind).
type OutputRange struct {
	Source    RangeSource
	Input     int // meaningful only when Source == FromInput
	InputBit  int // start bit within the input
	Width     int
}

// RewireImpl slices, concatenates, pads and replaces bit ranges in one
// declarative description (spec.md GLOSSARY "Rewire node").
type RewireImpl struct {
	baseImpl
	Ranges []OutputRange
}

// NewRewire creates a rewire node with numInputs inputs (types must be
// set by the caller via ConstrainInput/ConnectInput as usual) producing
// one output whose width is the sum of the given ranges' widths.
func (c *Circuit) NewRewire(numInputs int, ranges []OutputRange) *Node {
	width := 0
	for _, r := range ranges {
		width += r.Width
	}
	impl := &RewireImpl{Ranges: append([]OutputRange(nil), ranges...)}
	n := c.CreateNode(KindRewire, "", numInputs, 1, impl)
	n.Outputs[0].Type = Vec(width)
	return n
}

func (r *RewireImpl) Kind() NodeKind   { return KindRewire }
func (r *RewireImpl) TypeName() string { return "Rewire" }
func (r *RewireImpl) CloneUnconnected() NodeImpl {
	return &RewireImpl{Ranges: append([]OutputRange(nil), r.Ranges...)}
}

// allRangesConstant reports whether every range is a declared constant
// source; used by Circuit.computeOutputKind to decide CONSTANT
// output-kind caching. A range that copies from an input makes the
// result false even when that input's driver is constant-valued.
func (r *RewireImpl) allRangesConstant() bool {
	for _, rg := range r.Ranges {
		if rg.Source == FromInput {
			return false
		}
	}
	return true
}

func (r *RewireImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	out := outputs[0]
	for _, rg := range r.Ranges {
		switch rg.Source {
		case FromInput:
			bitvec.Copy(state, out, state, inputs[rg.Input]+rg.InputBit, rg.Width)
		case FromConstZero:
			state.Insert(out, rg.Width, 0)
		case FromConstOne:
			mask := uint64(0)
			if rg.Width >= 64 {
				mask = ^uint64(0)
			} else {
				mask = (uint64(1) << uint(rg.Width)) - 1
			}
			state.Insert(out, rg.Width, mask)
		case FromConstUndefined:
			state.InsertUndefined(out, rg.Width)
		}
		out += rg.Width
	}
}
