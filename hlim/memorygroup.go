package hlim

// PortClass classifies a memory port by how it's used, assigned during
// optimize's memory detection pass (spec.md §4.3).
type PortClass int

const (
	PortClassReadOnly PortClass = iota
	PortClassWriteOnly
	PortClassMixed
)

// MemoryGroup is the NodeGroup metadata the optimizer's memory detector
// attaches to the group it creates for a memory node plus its ports
// (spec.md §4.3 "form a MemoryGroup containing the memory plus its
// ports").
type MemoryGroup struct {
	Memory NodeId
	Ports  []NodeId
	Class  map[NodeId]PortClass
	// SyncReadRegister maps a read port to the downstream register the
	// optimizer bound to it, if any.
	SyncReadRegister map[NodeId]NodeId
}

func (*MemoryGroup) groupMeta() {}

// NewMemoryGroup creates an empty MemoryGroup for the given memory.
func NewMemoryGroup(memory NodeId) *MemoryGroup {
	return &MemoryGroup{
		Memory:           memory,
		Class:            map[NodeId]PortClass{},
		SyncReadRegister: map[NodeId]NodeId{},
	}
}
