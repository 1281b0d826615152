package optimize

import (
	"github.com/synogate/gatery/hlim"
	"github.com/synogate/gatery/subnet"
)

// nonSignalDriver walks backward through any chain of KindSignal
// passthrough nodes to find the first "real" driver of port, mirroring
// the original gatery Node::getNonSignalDriver helper (grounded in
// original_source/.../Circuit.cpp's mergeMuxes, which calls it so
// pattern matching isn't defeated by a debug-name signal sitting on
// the wire).
func nonSignalDriver(c *hlim.Circuit, port hlim.NodePort) hlim.NodePort {
	for {
		n := c.Node(port.Node)
		if n == nil || n.Kind() != hlim.KindSignal {
			return port
		}
		driver := n.Inputs[0].Driver
		if !driver.Valid() {
			return port
		}
		port = driver
	}
}

// MuxMerge repeatedly collapses mux(c, a, mux(c, x, y)) into the
// appropriate branch whenever the inner and outer selectors' boolean
// conjunctions are equal or exact negations, to a fixed point
// (spec.md §4.3 "Mux merging"; algorithm grounded on
// original_source/.../Circuit.cpp's mergeMuxes).
func MuxMerge(c *hlim.Circuit) error {
	for {
		progress := false
		for _, n := range c.Nodes() {
			if n.Kind() != hlim.KindMux || hlim.NumDataInputs(n) != 2 {
				continue
			}
			outerSel := nonSignalDriver(c, n.Inputs[hlim.MuxSelector].Driver)
			if !outerSel.Valid() {
				continue
			}
			outerConj, ok := subnet.Build(c, outerSel)
			if !ok {
				continue
			}
			for branch := 0; branch < 2; branch++ {
				dataPort := branch + 1 // 1 = selector-false branch, 2 = selector-true branch
				inner := nonSignalDriver(c, n.Inputs[dataPort].Driver)
				innerNode := c.Node(inner.Node)
				if innerNode == nil || innerNode.Kind() != hlim.KindMux || hlim.NumDataInputs(innerNode) != 2 {
					continue
				}
				if innerNode.Id() == n.Id() {
					continue
				}
				innerSel := nonSignalDriver(c, innerNode.Inputs[hlim.MuxSelector].Driver)
				if !innerSel.Valid() {
					continue
				}
				innerConj, ok := subnet.Build(c, innerSel)
				if !ok {
					continue
				}

				var pickTrueBranch bool
				matched := true
				switch {
				case outerConj.IsEqualTo(innerConj):
					pickTrueBranch = branch == 1
				case outerConj.IsNegationOf(innerConj):
					pickTrueBranch = branch == 0
				default:
					matched = false
				}
				if !matched {
					continue
				}
				pick := 1
				if pickTrueBranch {
					pick = 2
				}
				bypass := innerNode.Inputs[pick].Driver
				if err := c.ConnectInput(n, dataPort, bypass); err != nil {
					return err
				}
				progress = true
			}
		}
		if !progress {
			return nil
		}
	}
}

// MuxSelectorNegation rewrites a mux whose selector is a bare NOT(x)
// into a selector of x with the two data branches swapped, re-checking
// the same node afterward to unravel a chain of NOTs (spec.md §4.3
// "Selector-negation normalization"; grounded on
// original_source/.../Circuit.cpp's cullMuxConditionNegations).
func MuxSelectorNegation(c *hlim.Circuit) error {
	for _, n := range c.Nodes() {
		for n.Kind() == hlim.KindMux && hlim.NumDataInputs(n) == 2 {
			cond := nonSignalDriver(c, n.Inputs[hlim.MuxSelector].Driver)
			condNode := c.Node(cond.Node)
			if condNode == nil {
				break
			}
			logic, ok := condNode.Impl.(*hlim.LogicImpl)
			if !ok || logic.Op != hlim.OpNot {
				break
			}
			in0 := n.Inputs[1].Driver
			in1 := n.Inputs[2].Driver
			if err := c.ConnectInput(n, hlim.MuxSelector, condNode.Inputs[0].Driver); err != nil {
				return err
			}
			if err := c.ConnectInput(n, 1, in1); err != nil {
				return err
			}
			if err := c.ConnectInput(n, 2, in0); err != nil {
				return err
			}
		}
	}
	return nil
}

// ConstSelectMux bypasses a mux whose selector is a fully-defined
// constant straight to the selected data input (spec.md §4.3
// "Const-select mux"; grounded on
// original_source/.../Circuit.cpp's removeConstSelectMuxes).
func ConstSelectMux(c *hlim.Circuit) error {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindMux {
			continue
		}
		sel := nonSignalDriver(c, n.Inputs[hlim.MuxSelector].Driver)
		selNode := c.Node(sel.Node)
		if selNode == nil || selNode.Kind() != hlim.KindConstant {
			continue
		}
		constImpl := selNode.Impl.(*hlim.ConstImpl)
		width := selNode.Outputs[sel.Port].Type.Width
		if !constImpl.AllBitsDefined(width) {
			continue
		}
		selValue := int(constImpl.Value)
		dataCount := hlim.NumDataInputs(n)
		if selValue < 0 || selValue >= dataCount {
			continue
		}
		if err := c.BypassOutputToInput(n, 0, selValue+1); err != nil {
			return err
		}
	}
	return nil
}

// RewireNoopRemoval bypasses a rewire node whose single range is a
// straight, untransformed copy of its one input (spec.md §4.3
// "rewire no-op removal"; grounded on
// original_source/.../Circuit.cpp's removeNoOps, whose comment notes
// the pass exists specifically so such identity rewires don't block
// block-RAM/memory-port pattern detection downstream).
func RewireNoopRemoval(c *hlim.Circuit) error {
	for _, n := range c.Nodes() {
		rw, ok := n.Impl.(*hlim.RewireImpl)
		if !ok || !isNoOpRewire(n, rw) {
			continue
		}
		if err := c.BypassOutputToInput(n, 0, 0); err != nil {
			return err
		}
		if len(n.Outputs[0].Consumers) == 0 && !n.RefCounted() {
			c.Delete(n)
		}
	}
	return nil
}

func isNoOpRewire(n *hlim.Node, rw *hlim.RewireImpl) bool {
	if len(rw.Ranges) != 1 {
		return false
	}
	r := rw.Ranges[0]
	return r.Source == hlim.FromInput && r.Input == 0 && r.InputBit == 0 && r.Width == n.Outputs[0].Type.Width
}
