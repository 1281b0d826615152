package hlim

import "github.com/synogate/gatery/bitvec"

// MemoryPortMode is the closed set of memory-port roles (spec.md §3
// "memory + memory-port (write / read / combined)").
type MemoryPortMode int

const (
	PortRead MemoryPortMode = iota
	PortWrite
	PortReadWrite
)

// MemoryImpl is a memory node: WordCount words of WordWidth bits each,
// stored as this node's own internal state. Memory ports (MemoryPortImpl
// nodes) reference it by NodeId and read/write through the compiler's
// shared internal-offset indirection (spec.md Design Notes §9: "plus
// indirections into referenced internal state of other nodes").
type MemoryImpl struct {
	baseImpl
	WordWidth int
	WordCount int
	// Init seeds the memory's initial content (spec.md §8 scenario 3:
	// "Memory of 16 words x 8 bits initialized to index^2"); len(Init)
	// may be less than WordCount, remaining words start undefined.
	Init []uint64
}

// NewMemory creates a memory node with no ports of its own; ports are
// separate MemoryPort nodes referencing it.
func (c *Circuit) NewMemory(wordWidth, wordCount int, init []uint64) *Node {
	n := c.CreateNode(KindMemory, "", 0, 0, &MemoryImpl{WordWidth: wordWidth, WordCount: wordCount, Init: init})
	return n
}

func (m *MemoryImpl) Kind() NodeKind   { return KindMemory }
func (m *MemoryImpl) TypeName() string { return "Memory" }
func (m *MemoryImpl) CloneUnconnected() NodeImpl {
	return &MemoryImpl{WordWidth: m.WordWidth, WordCount: m.WordCount, Init: append([]uint64(nil), m.Init...)}
}

func (m *MemoryImpl) InternalStateSizes(n *Node) []int {
	return []int{m.WordWidth * m.WordCount}
}

func (m *MemoryImpl) Reset(n *Node, state *bitvec.State, internal, outputs []int) {
	base := internal[0]
	for w := 0; w < m.WordCount; w++ {
		off := base + w*m.WordWidth
		if w < len(m.Init) {
			state.Insert(off, m.WordWidth, m.Init[w])
		} else {
			state.InsertUndefined(off, m.WordWidth)
		}
	}
}

// WordOffset returns the bit offset of word addr within the memory's
// internal storage, given the memory's internal base offset.
func (m *MemoryImpl) WordOffset(base, addr int) int { return base + addr*m.WordWidth }

// MemoryPortImpl is a read, write or combined port into a Memory node.
// Inputs, by mode:
//   PortRead:      ADDR, ENABLE                           -> one output: DATA
//   PortWrite:     ADDR, DATA, ENABLE                     -> no outputs
//   PortReadWrite: ADDR, WRITE_DATA, WRITE_ENABLE, READ_ENABLE -> one output: READ_DATA
// Write ports require a clock side-input (Clocks[0]); the write
// happens on Advance (the clock edge), so several write ports to one
// memory observe each other only across cycles, matching spec.md §3's
// "multiple write ports to the same memory share the same clock"
// invariant (checked by diag.Lint).
type MemoryPortImpl struct {
	baseImpl
	Memory NodeId
	Mode   MemoryPortMode
	// IsBoundToMemory records that the optimizer has pulled a
	// downstream register into this port's MemoryGroup as its
	// sync-read register
	// (spec.md §4.3 "Memory detection and hazard logic"); set by the
	// optimizer, not at construction.
	IsBoundToMemory bool
}

const (
	portReadAddr   = 0
	portReadEnable = 1

	portWriteAddr   = 0
	portWriteData   = 1
	portWriteEnable = 2

	portRWAddr        = 0
	portRWWriteData   = 1
	portRWWriteEnable = 2
	portRWReadEnable  = 3
)

// NewMemoryPort creates a port of the given mode into mem.
func (c *Circuit) NewMemoryPort(mem *Node, mode MemoryPortMode) *Node {
	memImpl := mem.Impl.(*MemoryImpl)
	var numIn, numOut int
	switch mode {
	case PortRead:
		numIn, numOut = 2, 1
	case PortWrite:
		numIn, numOut = 3, 0
	case PortReadWrite:
		numIn, numOut = 4, 1
	}
	n := c.CreateNode(KindMemoryPort, "", numIn, numOut, &MemoryPortImpl{Memory: mem.id, Mode: mode})
	switch mode {
	case PortRead:
		n.ConstrainInput(portReadAddr, Vec(addrWidth(memImpl.WordCount)))
		n.ConstrainInput(portReadEnable, Bit())
		n.Outputs[0].Type = Vec(memImpl.WordWidth)
	case PortWrite:
		n.ConstrainInput(portWriteAddr, Vec(addrWidth(memImpl.WordCount)))
		n.ConstrainInput(portWriteData, Vec(memImpl.WordWidth))
		n.ConstrainInput(portWriteEnable, Bit())
	case PortReadWrite:
		n.ConstrainInput(portRWAddr, Vec(addrWidth(memImpl.WordCount)))
		n.ConstrainInput(portRWWriteData, Vec(memImpl.WordWidth))
		n.ConstrainInput(portRWWriteEnable, Bit())
		n.ConstrainInput(portRWReadEnable, Bit())
		n.Outputs[0].Type = Vec(memImpl.WordWidth)
	}
	return n
}

func addrWidth(wordCount int) int {
	w := 0
	for (1 << uint(w)) < wordCount {
		w++
	}
	if w == 0 {
		w = 1
	}
	return w
}

func (p *MemoryPortImpl) Kind() NodeKind   { return KindMemoryPort }
func (p *MemoryPortImpl) TypeName() string { return "MemoryPort" }
func (p *MemoryPortImpl) CloneUnconnected() NodeImpl {
	return &MemoryPortImpl{Memory: p.Memory, Mode: p.Mode, IsBoundToMemory: p.IsBoundToMemory}
}

// Evaluate: internal[0] is always the referenced Memory's internal base
// offset (aliased by the simulator compiler, not owned by this node).
func (p *MemoryPortImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	memBase := internal[0]
	switch p.Mode {
	case PortRead:
		addrW := n.Inputs[portReadAddr].Type.Width
		wordW := n.Outputs[0].Type.Width
		if !state.IsDefined(inputs[portReadEnable], 1) || !state.Get(bitvec.Value, inputs[portReadEnable]) ||
			!state.IsDefined(inputs[portReadAddr], addrW) {
			state.InsertUndefined(outputs[0], wordW)
			return
		}
		addr := int(state.Extract(inputs[portReadAddr], addrW))
		off := memBase + addr*wordW
		bitvec.Copy(state, outputs[0], state, off, wordW)
	case PortReadWrite:
		addrW := n.Inputs[portRWAddr].Type.Width
		wordW := n.Outputs[0].Type.Width
		if !state.IsDefined(inputs[portRWReadEnable], 1) || !state.Get(bitvec.Value, inputs[portRWReadEnable]) ||
			!state.IsDefined(inputs[portRWAddr], addrW) {
			state.InsertUndefined(outputs[0], wordW)
			return
		}
		addr := int(state.Extract(inputs[portRWAddr], addrW))
		off := memBase + addr*wordW
		bitvec.Copy(state, outputs[0], state, off, wordW)
	}
}

// Advance performs the write half of a write/read-write port on a
// clock edge.
func (p *MemoryPortImpl) Advance(n *Node, state *bitvec.State, internal, outputs []int, clockPort int) {
	// outputs here is unused for ports (writes mutate `internal`,
	// aliased to the owning Memory's storage); the simulator passes the
	// port's own input offsets separately at the call site because the
	// MappedNode stores them — see simulator/compile.go's ClockedNode.
}

// WriteNow performs the actual store; called by the simulator with the
// port's mapped input offsets (Advance's signature has no input
// offsets, since registers are the only other Advance-using kind and
// don't need them either; memory ports are special-cased in the
// simulator's ClockDomain advance loop).
func (p *MemoryPortImpl) WriteNow(n *Node, state *bitvec.State, memBase int, wordWidth int, inputs []int) {
	var addrIdx, dataIdx, enableIdx int
	switch p.Mode {
	case PortWrite:
		addrIdx, dataIdx, enableIdx = portWriteAddr, portWriteData, portWriteEnable
	case PortReadWrite:
		addrIdx, dataIdx, enableIdx = portRWAddr, portRWWriteData, portRWWriteEnable
	default:
		return
	}
	addrW := n.Inputs[addrIdx].Type.Width
	if !state.IsDefined(inputs[enableIdx], 1) || !state.Get(bitvec.Value, inputs[enableIdx]) {
		return
	}
	if !state.IsDefined(inputs[addrIdx], addrW) {
		return
	}
	addr := int(state.Extract(inputs[addrIdx], addrW))
	off := memBase + addr*wordWidth
	bitvec.Copy(state, off, state, inputs[dataIdx], wordWidth)
}
