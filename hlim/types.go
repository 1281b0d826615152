// Package hlim implements the High-Level Intermediate Model: the typed
// dataflow graph that a frontend builds, the optimizer rewrites in
// place, and the reference simulator compiles and drives.
package hlim

// ConnectionKind tags the interpretation carried by a signal.
type ConnectionKind int

const (
	// Bool is a single-bit boolean signal.
	Bool ConnectionKind = iota
	// BitVec is a multi-bit value of a declared Width.
	BitVec
	// Dependency is a zero-width ordering edge; it carries no data, only
	// an execution/ordering constraint.
	Dependency
)

// ConnectionType is the tag every signal in the graph carries.
type ConnectionType struct {
	Kind  ConnectionKind
	Width int
}

// Bit is the 1-bit Bool connection type, used throughout for
// selectors, enables and single-bit data paths.
func Bit() ConnectionType { return ConnectionType{Kind: Bool, Width: 1} }

// Vec returns a BitVec connection type of the given width.
func Vec(width int) ConnectionType { return ConnectionType{Kind: BitVec, Width: width} }

// Dep is the zero-width dependency connection type.
func Dep() ConnectionType { return ConnectionType{Kind: Dependency, Width: 0} }

// CompatibleWith reports whether a value of type t may drive an input of
// type other: equal, a Dependency may be coerced from anything (ordering
// edges do not care about what they order), and a single Bool bit and a
// single-bit BitVec are interchangeable (both are one physical wire; the
// Kind tag only distinguishes how a *wider* signal is interpreted, and
// logic/compare nodes would otherwise be unable to feed a mux selector or
// a register enable, which are declared Bool).
func (t ConnectionType) CompatibleWith(other ConnectionType) bool {
	if other.Kind == Dependency {
		return true
	}
	if t == other {
		return true
	}
	if t.Width == 1 && other.Width == 1 && t.Kind != Dependency && other.Kind != Dependency {
		return true
	}
	return false
}

// NodeKind is the closed set of semantic node kinds the graph model
// supports (spec.md §3 "Node kinds (closed set)").
type NodeKind int

const (
	KindConstant NodeKind = iota
	KindSignal
	KindRewire
	KindArith
	KindLogic
	KindCompare
	KindMux
	KindPriority
	KindRegister
	KindPin
	KindClockToSignal
	KindExportOverride
	KindAttribute
	KindSignalTap
	KindMemory
	KindMemoryPort
)

// OutputKind classifies how the simulator should treat an output's
// value across cycles.
type OutputKind int

const (
	// Immediate outputs are recomputed every evaluation.
	Immediate OutputKind = iota
	// Latched outputs survive unevaluated cycles (registers).
	Latched
	// ConstantOutput outputs never change after power-on.
	ConstantOutput
)

// NodeId uniquely identifies a node within one Circuit. The zero value
// is never assigned to a real node and denotes "no node".
type NodeId uint64

// NodePort names one output (or input) port of a node: the original
// gatery source's NodePort (node pointer + port index) rendered with a
// stable id instead of a pointer, so ports survive serialization and
// never dangle.
type NodePort struct {
	Node NodeId
	Port int
}

// InvalidPort is the sentinel for "no driver"/"no port".
var InvalidPort = NodePort{Node: 0, Port: -1}

// Valid reports whether p names a real port.
func (p NodePort) Valid() bool { return p.Port >= 0 && p.Node != 0 }
