package hlim

// kindNames is the tag -> human name lookup table, the Go rendering of
// Design Notes §9's "use a tagged enum NodeKind carrying per-kind
// payload... dispatch table keyed by the tag", adapted from the
// per-id function table zeonica's cgra-new/fu.go built
// (internalInfo map[int]func()) generalized here from instance
// closures to a static kind->metadata map. Per-instance behavior
// (Evaluate/Advance/...) is Impl's interface methods (see node.go);
// this table backs the introspection that doesn't need an instance,
// such as rendering a kind in diagnostics before a node exists.
var kindNames = map[NodeKind]string{
	KindConstant:       "Constant",
	KindSignal:         "Signal",
	KindRewire:         "Rewire",
	KindArith:          "Arithmetic",
	KindLogic:          "Logic",
	KindCompare:        "Compare",
	KindMux:            "Multiplexer",
	KindPriority:       "PriorityConditional",
	KindRegister:       "Register",
	KindPin:            "Pin",
	KindClockToSignal:  "ClockToSignal",
	KindExportOverride: "ExportOverride",
	KindAttribute:      "Attribute",
	KindSignalTap:      "SignalTap",
	KindMemory:         "Memory",
	KindMemoryPort:     "MemoryPort",
}

// KindName returns the human-readable name of a node kind tag.
func KindName(k NodeKind) string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}
