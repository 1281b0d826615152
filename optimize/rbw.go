package optimize

import "github.com/synogate/gatery/hlim"

// ReadBeforeWriteConversion implements spec.md §4.3's
// "Convert-to-read-before-write" pass (grounded on
// original_source/.../MemoryDetector.cpp's
// MemoryGroup::convertToReadBeforeWrite, adapted to match spec.md §7's
// order-independence invariant rather than the original's
// declaration-order-dependent forwarding): for every read port sharing
// a memory with one or more write ports, inject logic that guarantees
// the read always observes the memory's pre-cycle content at its
// address, regardless of a same-cycle, same-address write anywhere
// else on the memory (spec.md §8 scenario 3, §7 "a read at address A
// returns the pre-cycle value of A regardless of the order of
// simultaneous writes").
//
// Because the reference simulator commits writes before the following
// combinational re-evaluation (simulator/run.go's runClockEdge: registers and
// writers advance, then ExecutionBlocks re-run), an unconverted
// combinational read would see the just-written value on a collision.
// The fix captures the read port's own pre-edge value into a shadow
// register -- advanced in lockstep with every write on the same clock,
// so it always latches in the value the read held immediately before
// the write committed -- and muxes that in whenever any write collides
// with the read's address this cycle.
//
// A read port MemoryDetection has already promoted to a synchronous
// read register (IsBoundToMemory) is left alone: it already gets its
// value a cycle late relative to the write, which is its own path to
// the same pre-cycle guarantee, and delay-matching this pass onto it
// would need as many shadow stages as the register chain depth -- not
// attempted here (see DESIGN.md).
func ReadBeforeWriteConversion(c *hlim.Circuit) error {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindMemory {
			continue
		}
		if err := convertMemoryReads(c, n); err != nil {
			return err
		}
	}
	return nil
}

func convertMemoryReads(c *hlim.Circuit, mem *hlim.Node) error {
	var writes, reads []*hlim.Node
	for _, other := range c.Nodes() {
		port, ok := other.Impl.(*hlim.MemoryPortImpl)
		if !ok || port.Memory != mem.Id() {
			continue
		}
		switch port.Mode {
		case hlim.PortWrite:
			writes = append(writes, other)
		case hlim.PortRead:
			if !port.IsBoundToMemory {
				reads = append(reads, other)
			}
		case hlim.PortReadWrite:
			writes = append(writes, other)
			if !port.IsBoundToMemory {
				reads = append(reads, other)
			}
		}
	}
	if len(writes) == 0 || len(reads) == 0 {
		return nil
	}

	wordWidth := mem.Impl.(*hlim.MemoryImpl).WordWidth

	for _, r := range reads {
		if err := forwardPreCycleValue(c, r, writes, wordWidth); err != nil {
			return err
		}
	}
	return nil
}

// readEnableInput returns the input index of r's read-enable signal
// (1 for a plain read port, 3 for the read side of a read/write port;
// see hlim/node_memory.go's unexported portReadEnable/portRWReadEnable).
func readEnableInput(r *hlim.Node) int {
	if r.Impl.(*hlim.MemoryPortImpl).Mode == hlim.PortReadWrite {
		return 3
	}
	return 1
}

// forwardPreCycleValue splices a collision mux between r's raw output
// and every node that currently consumes it: on no collision, the
// mux simply passes r's live value through; on a collision with any
// write in writes, it instead selects a shadow register's output,
// which always holds r's value from immediately before this cycle's
// writes committed.
func forwardPreCycleValue(c *hlim.Circuit, r *hlim.Node, writes []*hlim.Node, wordWidth int) error {
	consumers := append([]hlim.NodePort(nil), r.Outputs[0].Consumers...)
	if len(consumers) == 0 {
		return nil
	}

	var clk *hlim.Clock
	for _, w := range writes {
		if len(w.Clocks) > 0 {
			clk = w.Clocks[0]
			break
		}
	}
	if clk == nil {
		return nil
	}

	shadow := c.NewRegister(clk, hlim.Vec(wordWidth))
	if err := c.ConnectInput(shadow, hlim.RegData, hlim.NodePort{Node: r.Id(), Port: 0}); err != nil {
		return err
	}

	addrWidth := r.Inputs[0].Type.Width
	readEnableIdx := readEnableInput(r)

	var collision hlim.NodePort
	for _, w := range writes {
		if w.Id() == r.Id() {
			continue
		}

		addrEq := c.NewCompare(hlim.OpEQ, addrWidth)
		if err := c.ConnectInput(addrEq, 0, r.Inputs[0].Driver); err != nil {
			return err
		}
		if err := c.ConnectInput(addrEq, 1, w.Inputs[0].Driver); err != nil {
			return err
		}

		writeEnabled := c.NewLogic(hlim.OpAnd, 1)
		if err := c.ConnectInput(writeEnabled, 0, hlim.NodePort{Node: addrEq.Id(), Port: 0}); err != nil {
			return err
		}
		if err := c.ConnectInput(writeEnabled, 1, w.Inputs[2].Driver); err != nil {
			return err
		}

		thisCollision := c.NewLogic(hlim.OpAnd, 1)
		if err := c.ConnectInput(thisCollision, 0, hlim.NodePort{Node: writeEnabled.Id(), Port: 0}); err != nil {
			return err
		}
		if err := c.ConnectInput(thisCollision, 1, r.Inputs[readEnableIdx].Driver); err != nil {
			return err
		}

		if collision.Node == 0 {
			collision = hlim.NodePort{Node: thisCollision.Id(), Port: 0}
			continue
		}

		combined := c.NewLogic(hlim.OpOr, 1)
		if err := c.ConnectInput(combined, 0, collision); err != nil {
			return err
		}
		if err := c.ConnectInput(combined, 1, hlim.NodePort{Node: thisCollision.Id(), Port: 0}); err != nil {
			return err
		}
		collision = hlim.NodePort{Node: combined.Id(), Port: 0}
	}

	if collision.Node == 0 {
		return nil // the only write port is this read/write port itself; nothing to guard against
	}

	mux := c.NewMux(2, 1, hlim.Vec(wordWidth))
	if err := c.ConnectInput(mux, 0, collision); err != nil {
		return err
	}
	if err := c.ConnectInput(mux, 1, hlim.NodePort{Node: r.Id(), Port: 0}); err != nil {
		return err
	}
	if err := c.ConnectInput(mux, 2, hlim.NodePort{Node: shadow.Id(), Port: 0}); err != nil {
		return err
	}

	for _, cons := range consumers {
		consumerNode := c.Node(cons.Node)
		if consumerNode == nil {
			continue
		}
		if err := c.RewireInput(consumerNode, cons.Port, hlim.NodePort{Node: mux.Id(), Port: 0}); err != nil {
			return err
		}
	}
	return nil
}
