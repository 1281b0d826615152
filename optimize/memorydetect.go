package optimize

import "github.com/synogate/gatery/hlim"

// MemoryDetection forms a MemoryGroup around every Memory node and its
// ports, classifies each port, and recognizes the common synchronous
// read pattern — a register sitting directly (through nothing but
// signal passthroughs, with no branch and no reset) on a read port's
// data output — marking that register IsBoundToMemory so a later
// export/technology-mapping stage can fuse it into the memory's own
// read latency instead of treating it as an ordinary register (spec.md
// §4.3 "Memory detection and hazard logic"; grounded on
// original_source/.../postprocessing/MemoryDetector.cpp's
// MemoryGroup::formAround).
//
// This only recognizes and annotates the pattern; it does not rewrite
// the graph to eliminate the register the way full register retiming
// would (spec.md §4.3 lists retiming itself as optional). A bound
// register keeps its own clock/enable/data wiring and continues to
// simulate exactly as an ordinary register would.
func MemoryDetection(c *hlim.Circuit) error {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindMemory {
			continue
		}
		formMemoryGroup(c, n)
	}
	return nil
}

func formMemoryGroup(c *hlim.Circuit, mem *hlim.Node) {
	parent := mem.Group()
	if parent == nil {
		parent = c.RootGroup()
	}
	group := c.CreateGroup(parent, "memory", hlim.SFU)
	group.MoveNode(mem)

	mg := hlim.NewMemoryGroup(mem.Id())
	group.SetMeta(mg)

	for _, other := range c.Nodes() {
		port, ok := other.Impl.(*hlim.MemoryPortImpl)
		if !ok || port.Memory != mem.Id() {
			continue
		}
		group.MoveNode(other)
		mg.Ports = append(mg.Ports, other.Id())

		switch port.Mode {
		case hlim.PortRead:
			mg.Class[other.Id()] = hlim.PortClassReadOnly
			bindSyncReadRegister(c, group, mg, other)
		case hlim.PortWrite:
			mg.Class[other.Id()] = hlim.PortClassWriteOnly
		case hlim.PortReadWrite:
			mg.Class[other.Id()] = hlim.PortClassMixed
			bindSyncReadRegister(c, group, mg, other)
		}
	}
}

// bindSyncReadRegister walks forward from port's single data output
// through signal passthroughs; if it reaches, without ever branching, a
// register with no reset-value driver, that register is the port's
// synchronous read register.
func bindSyncReadRegister(c *hlim.Circuit, group *hlim.NodeGroup, mg *hlim.MemoryGroup, port *hlim.Node) {
	cur := port
	for {
		if len(cur.Outputs[0].Consumers) != 1 {
			return
		}
		consumer := cur.Outputs[0].Consumers[0]
		next := c.Node(consumer.Node)
		if next == nil {
			return
		}
		switch next.Kind() {
		case hlim.KindSignal:
			group.MoveNode(next)
			cur = next
			continue
		case hlim.KindRegister:
			if consumer.Port != hlim.RegData {
				return
			}
			if next.Inputs[hlim.RegResetValue].Driver.Valid() {
				return
			}
			mg.SyncReadRegister[port.Id()] = next.Id()
			port.Impl.(*hlim.MemoryPortImpl).IsBoundToMemory = true
			reg := next.Impl.(*hlim.RegisterImpl)
			reg.Flags |= hlim.IsBoundToMemory
			reg.Flags &^= hlim.AllowRetimingForward | hlim.AllowRetimingBackward
			group.MoveNode(next)
			return
		default:
			return
		}
	}
}
