package optimize

import (
	"github.com/synogate/gatery/bitvec"
	"github.com/synogate/gatery/hlim"
)

// ConstantPropagation folds every node whose inputs are all driven by
// constants into a fresh constant node and rewires its consumers,
// starting from a work list seeded by every existing constant node's
// consumers and growing as folds create new constants (spec.md §4.3
// "Constant propagation"). Registers, with or without a connected
// reset, are never folded or bypassed (folding across a clock edge
// would change behavior, not just sink a constant into it) and are not
// walked past.
func ConstantPropagation(c *hlim.Circuit) error {
	var work []hlim.NodeId
	seen := map[hlim.NodeId]bool{}
	enqueue := func(id hlim.NodeId) {
		if !seen[id] {
			seen[id] = true
			work = append(work, id)
		}
	}

	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindConstant {
			continue
		}
		for _, cons := range n.Outputs[0].Consumers {
			enqueue(cons.Node)
		}
	}

	for len(work) > 0 {
		id := work[0]
		work = work[1:]
		seen[id] = false

		n := c.Node(id)
		if n == nil || !foldable(n) {
			continue
		}
		if !allInputsConstant(c, n) {
			continue
		}
		value, defined, width, ok := evaluateConstant(c, n)
		if !ok || defined != fullMask(width) {
			// an inapplicable pattern (undefined result bits) silently
			// no-ops rather than folding a partially-defined constant.
			continue
		}
		constNode := c.NewConstant(n.Outputs[0].Type, value)
		consumers := append([]hlim.NodePort(nil), n.Outputs[0].Consumers...)
		for _, cons := range consumers {
			consumerNode := c.Node(cons.Node)
			if consumerNode == nil {
				continue
			}
			enqueue(cons.Node)
			if err := c.ConnectInput(consumerNode, cons.Port, hlim.NodePort{Node: constNode.Id(), Port: 0}); err != nil {
				return err
			}
		}
	}
	return nil
}

func fullMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// foldable reports whether n is combinational, side-effect-free, and
// has exactly the one output a folded constant can replace.
func foldable(n *hlim.Node) bool {
	if n.HasSideEffects() || n.Kind() == hlim.KindConstant {
		return false
	}
	switch n.Kind() {
	case hlim.KindRegister, hlim.KindMemory, hlim.KindMemoryPort, hlim.KindClockToSignal:
		return false
	}
	return len(n.Outputs) == 1
}

func allInputsConstant(c *hlim.Circuit, n *hlim.Node) bool {
	for _, in := range n.Inputs {
		if in.Type.Kind == hlim.Dependency {
			continue
		}
		if !in.Connected() {
			return false
		}
		driver := c.Node(in.Driver.Node)
		if driver == nil || driver.Outputs[in.Driver.Port].Kind != hlim.ConstantOutput || driver.Kind() != hlim.KindConstant {
			return false
		}
	}
	return true
}

// evaluateConstant drives n's inputs from its constant drivers' actual
// values into a scratch bitvec.State, runs Evaluate, and reports the
// resulting output value/width.
func evaluateConstant(c *hlim.Circuit, n *hlim.Node) (value, defined uint64, width int, ok bool) {
	offset := 0
	inputOffsets := make([]int, len(n.Inputs))
	for i, in := range n.Inputs {
		inputOffsets[i] = offset
		offset += in.Type.Width
	}
	internalSizes := n.Impl.InternalStateSizes(n)
	internalOffsets := make([]int, len(internalSizes))
	for i, sz := range internalSizes {
		internalOffsets[i] = offset
		offset += sz
	}
	outputOffset := offset
	width = n.Outputs[0].Type.Width
	offset += width

	state := bitvec.New(offset)
	for i, in := range n.Inputs {
		if in.Type.Kind == hlim.Dependency || !in.Connected() {
			continue
		}
		driver := c.Node(in.Driver.Node)
		constImpl := driver.Impl.(*hlim.ConstImpl)
		constImpl.Evaluate(driver, state, nil, nil, []int{inputOffsets[i]})
	}

	n.Impl.Evaluate(n, state, internalOffsets, inputOffsets, []int{outputOffset})

	if !state.IsDefined(outputOffset, width) {
		return 0, 0, 0, false
	}
	return state.Extract(outputOffset, width), fullMask(width), width, true
}
