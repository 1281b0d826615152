// Package simulator implements the reference simulator (spec.md §4.4):
// compiling a hlim.Circuit into a flat, offset-addressed program and
// running it as a discrete-event simulation on top of akita's engine.
package simulator

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/synogate/gatery/diag"
	"github.com/synogate/gatery/hlim"
	"github.com/synogate/gatery/subnet"
)

// MappedNode is one node bound to its execution-time offsets into a
// Program's DataState: internal state slots, and the output offset of
// every other node's output it consumes (Inputs) and produces
// (Outputs). A MemoryPort's Internal[0] aliases its referenced
// Memory's own Internal[0] rather than owning storage of its own
// (hlim/node_memory.go: "aliased by the simulator compiler, not owned
// by this node").
type MappedNode struct {
	Node     *hlim.Node
	Internal []int
	Inputs   []int
	Outputs  []int
}

// ExecutionBlock is one topologically-sorted wave of combinational
// work: every node in it has every input either unconnected, driven by
// a Latched/ConstantOutput output, or driven by a node in an earlier
// block (spec.md §4.4 "topological sort of the combinational
// dependency graph... into ExecutionBlocks").
type ExecutionBlock struct {
	Nodes []*MappedNode
}

// ClockedNode is a register or memory write/read-write port advanced
// on a clock edge, paired with the mapped input offsets its
// AdvanceWithInputs/WriteNow call needs (hlim.NodeImpl.Advance's
// signature carries no input offsets; see hlim/node_register.go and
// hlim/node_memory.go).
type ClockedNode struct {
	Mapped *MappedNode
	// MemBase/WordWidth are set only for memory write/read-write ports.
	MemBase   int
	WordWidth int
}

// ClockDomain is the simulator's per-clock grouping of every register
// and memory write port gated by one Clock (spec.md §4.4 "one
// ClockDomain per clock pin").
type ClockDomain struct {
	Clock     *hlim.Clock
	Registers []*ClockedNode
	Writers   []*ClockedNode

	nextEdge sim.VTimeInSec
}

// Program is a compiled, runnable circuit: flat state, the ordered
// execution blocks that recompute combinational outputs, the nodes
// that must run once at power-on, and one ClockDomain per clock.
type Program struct {
	Circuit      *hlim.Circuit
	State        *DataState
	Blocks       []*ExecutionBlock
	PowerOnNodes []*MappedNode
	Clocks       []*ClockDomain

	byNode map[hlim.NodeId]*MappedNode
}

// Mapped returns the MappedNode for a node id, or nil if that node was
// not part of the compiled program (culled by AllForSimulation).
func (p *Program) Mapped(id hlim.NodeId) *MappedNode { return p.byNode[id] }

// CompileError reports a combinational cycle that prevented
// compilation from completing (the simulator-side analogue of
// hlim.DesignError{Kind: hlim.ErrCombinationalCycle}), carrying the
// full diag.CycleReport detail an hlim.DesignError's flat Msg string
// can't.
type CompileError struct {
	Cycles []diag.CycleReport
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("simulator: %d combinational cycle(s) prevent compilation", len(e.Cycles))
}

// Compile lays out every node AllForSimulation reaches into a single
// packed DataState, then topologically sorts them into ExecutionBlocks
// by repeatedly admitting every node whose inputs are all ready --
// the same "output ready" readiness-pass algorithm
// diag.FindCombinationalCycles uses, run here to build blocks instead
// of just detecting residue (spec.md §4.4 "compilation stage").
func Compile(c *hlim.Circuit) (*Program, error) {
	sn := subnet.AllForSimulation(c)
	ids := sn.Nodes()

	// A Memory node is referenced by its ports via a NodeId field, not
	// an input-driver edge, so AllForSimulation's input-edge traversal
	// never visits it even when one of its ports is included; add any
	// referenced memory explicitly.
	included := map[hlim.NodeId]bool{}
	for _, id := range ids {
		included[id] = true
	}
	for _, id := range ids {
		if mp, ok := c.Node(id).Impl.(*hlim.MemoryPortImpl); ok && !included[mp.Memory] {
			included[mp.Memory] = true
			ids = append(ids, mp.Memory)
		}
	}

	state := NewDataState()
	p := &Program{Circuit: c, byNode: map[hlim.NodeId]*MappedNode{}}

	// Pass 1: allocate every node's internal state and output offsets.
	// Memory must be allocated before its ports so ports can alias it.
	order := make([]*hlim.Node, 0, len(ids))
	for _, id := range ids {
		order = append(order, c.Node(id))
	}
	sortMemoryFirst(order)

	for _, n := range order {
		mn := &MappedNode{Node: n}
		if mp, ok := n.Impl.(*hlim.MemoryPortImpl); ok {
			memMapped := p.byNode[mp.Memory]
			if memMapped != nil && len(memMapped.Internal) > 0 {
				mn.Internal = []int{memMapped.Internal[0]}
			}
		} else {
			for _, width := range n.Impl.InternalStateSizes(n) {
				mn.Internal = append(mn.Internal, state.Alloc(width))
			}
		}
		mn.Outputs = make([]int, len(n.Outputs))
		for i, out := range n.Outputs {
			mn.Outputs[i] = state.Alloc(out.Type.Width)
		}
		p.byNode[n.Id()] = mn
	}

	// Pass 2: bind each node's input offsets to its driver's output
	// offset (unconnected inputs get offset -1, read as undefined).
	for _, n := range order {
		mn := p.byNode[n.Id()]
		mn.Inputs = make([]int, len(n.Inputs))
		for i, in := range n.Inputs {
			if !in.Driver.Valid() {
				mn.Inputs[i] = -1
				continue
			}
			driverMapped := p.byNode[in.Driver.Node]
			if driverMapped == nil {
				mn.Inputs[i] = -1
				continue
			}
			mn.Inputs[i] = driverMapped.Outputs[in.Driver.Port]
		}
	}

	// Topologically sort into ExecutionBlocks via readiness passes.
	blocks, err := scheduleBlocks(c, order, p.byNode)
	if err != nil {
		return nil, err
	}
	p.Blocks = blocks

	// Power-on set: every side-effecting node (pins, signal-taps,
	// memory ports) plus every register and memory (spec.md §4.4
	// "power_on_nodes"); Reset is called on all of these once before
	// the first execution-block pass.
	for _, n := range order {
		if n.HasSideEffects() || n.Kind() == hlim.KindRegister || n.Kind() == hlim.KindMemory {
			p.PowerOnNodes = append(p.PowerOnNodes, p.byNode[n.Id()])
		}
	}

	p.Clocks = buildClockDomains(c, order, p.byNode)
	p.State = state
	return p, nil
}

func sortMemoryFirst(nodes []*hlim.Node) {
	out := make([]*hlim.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind() == hlim.KindMemory {
			out = append(out, n)
		}
	}
	for _, n := range nodes {
		if n.Kind() != hlim.KindMemory {
			out = append(out, n)
		}
	}
	copy(nodes, out)
}

// scheduleBlocks repeatedly admits every node in working whose inputs
// are all ready into the next block, exactly as
// diag.FindCombinationalCycles' readiness pass does, stopping when a
// pass makes no progress; any node left over indicates a cycle.
func scheduleBlocks(c *hlim.Circuit, nodes []*hlim.Node, byNode map[hlim.NodeId]*MappedNode) ([]*ExecutionBlock, error) {
	working := map[hlim.NodeId]*hlim.Node{}
	for _, n := range nodes {
		working[n.Id()] = n
	}
	ready := map[hlim.NodeId]bool{}

	isReady := func(n *hlim.Node) bool {
		for _, in := range n.Inputs {
			if !in.Driver.Valid() {
				continue
			}
			driver := c.Node(in.Driver.Node)
			if driver == nil {
				continue
			}
			kind := driver.Outputs[in.Driver.Port].Kind
			if kind == hlim.Latched || kind == hlim.ConstantOutput {
				continue
			}
			if _, inSet := byNode[in.Driver.Node]; !inSet {
				continue // driver outside the simulated subnet (shouldn't happen, defensive)
			}
			if !ready[in.Driver.Node] {
				return false
			}
		}
		return true
	}

	var blocks []*ExecutionBlock
	for len(working) > 0 {
		var wave []*hlim.Node
		for id, n := range working {
			if isReady(n) {
				wave = append(wave, n)
			}
			_ = id
		}
		if len(wave) == 0 {
			return nil, &CompileError{Cycles: diag.FindCombinationalCycles(c)}
		}
		block := &ExecutionBlock{}
		for _, n := range wave {
			ready[n.Id()] = true
			delete(working, n.Id())
			block.Nodes = append(block.Nodes, byNode[n.Id()])
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// buildClockDomains groups every register and write/read-write memory
// port by the clock that advances it.
func buildClockDomains(c *hlim.Circuit, nodes []*hlim.Node, byNode map[hlim.NodeId]*MappedNode) []*ClockDomain {
	domains := map[uint64]*ClockDomain{}
	var order []uint64

	domainFor := func(clk *hlim.Clock) *ClockDomain {
		d, ok := domains[clk.Id()]
		if !ok {
			d = &ClockDomain{Clock: clk}
			domains[clk.Id()] = d
			order = append(order, clk.Id())
		}
		return d
	}

	for _, n := range nodes {
		switch n.Kind() {
		case hlim.KindRegister:
			if len(n.Clocks) == 0 {
				continue
			}
			d := domainFor(n.Clocks[0])
			d.Registers = append(d.Registers, &ClockedNode{Mapped: byNode[n.Id()]})
		case hlim.KindMemoryPort:
			mp := n.Impl.(*hlim.MemoryPortImpl)
			if mp.Mode == hlim.PortRead || len(n.Clocks) == 0 {
				continue
			}
			memMapped := byNode[mp.Memory]
			memImpl := c.Node(mp.Memory).Impl.(*hlim.MemoryImpl)
			d := domainFor(n.Clocks[0])
			d.Writers = append(d.Writers, &ClockedNode{
				Mapped:    byNode[n.Id()],
				MemBase:   memMapped.Internal[0],
				WordWidth: memImpl.WordWidth,
			})
		}
	}

	out := make([]*ClockDomain, 0, len(order))
	for _, id := range order {
		out = append(out, domains[id])
	}
	return out
}
