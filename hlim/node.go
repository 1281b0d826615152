package hlim

import (
	"fmt"
	"runtime/debug"

	"github.com/synogate/gatery/bitvec"
)

// InputPort is a single input of a node: either unconnected, or driving
// from a single (node, output) pair.
type InputPort struct {
	Type       ConnectionType
	Constrained bool // Type is a fixed requirement; if false, Type is inferred from the first driver connected
	Driver     NodePort
}

// Connected reports whether this input has a driver.
func (p InputPort) Connected() bool { return p.Driver.Valid() }

// OutputPort is a single output of a node: its type, the simulator's
// output kind, and the set of consumers currently wired to it.
type OutputPort struct {
	Type      ConnectionType
	Kind      OutputKind
	Consumers []NodePort // consumer input ports: {Node, input index}
}

func (o *OutputPort) removeConsumer(c NodePort) {
	for i, cur := range o.Consumers {
		if cur == c {
			o.Consumers = append(o.Consumers[:i], o.Consumers[i+1:]...)
			return
		}
	}
}

func (o *OutputPort) addConsumer(c NodePort) {
	for _, cur := range o.Consumers {
		if cur == c {
			return
		}
	}
	o.Consumers = append(o.Consumers, c)
}

// NodeImpl is the per-kind behavior of a node: semantic evaluation for
// the simulator and constant folder, plus the handful of per-kind
// queries the optimizer and simulator compiler need. It is the
// "virtual methods become match arms" resolution of Design Notes §9,
// implemented as Go interface dispatch; see dispatch.go for the
// parallel kind-tag lookup table used where a concrete Impl instance
// isn't yet available (e.g. CloneUnconnected prototypes).
type NodeImpl interface {
	Kind() NodeKind
	TypeName() string

	// Reset initializes internal/output state at power-on.
	Reset(n *Node, state *bitvec.State, internal, outputs []int)
	// Evaluate computes outputs (and may update internal state) from
	// current input values. Called once per execution-block step.
	Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int)
	// Advance is invoked only on clocked nodes, once per relevant clock
	// edge, after Evaluate has been run with pre-edge inputs.
	Advance(n *Node, state *bitvec.State, internal, outputs []int, clockPort int)

	// InternalStateSizes returns the bit width of each hidden internal
	// state slot this node needs (register data/enable latches, etc).
	InternalStateSizes(n *Node) []int
	// CloneUnconnected returns a fresh Impl of the same kind and
	// parameters, with no ports wired up; used by CopySubnet.
	CloneUnconnected() NodeImpl
	// InferOutputName proposes a debug name for an output when the
	// frontend didn't give the node one.
	InferOutputName(n *Node, output int) string
}

// baseImpl provides no-op defaults for the optional parts of NodeImpl;
// concrete node kinds embed it and override only what they need.
type baseImpl struct{}

func (baseImpl) Reset(*Node, *bitvec.State, []int, []int)                    {}
func (baseImpl) Advance(*Node, *bitvec.State, []int, []int, int)             {}
func (baseImpl) InternalStateSizes(*Node) []int                              { return nil }
func (baseImpl) InferOutputName(n *Node, output int) string {
	if output == 0 {
		return n.name
	}
	return fmt.Sprintf("%s_%d", n.name, output)
}

// errUnconnectedSentinel panics if ever evaluated: an unconnected input
// must never be read by a well-formed, optimized circuit. Adapted from
// zeonica's dummy.NonExist, which panics with a stack dump the moment a
// placeholder operand implementation is actually invoked instead of
// being replaced by a real one.
func errUnconnectedSentinel(n *Node, port int) {
	debug.PrintStack()
	panic(fmt.Sprintf("FATAL: node %d (%s) evaluated with unconnected input %d", n.id, n.name, port))
}

// Node is a single node in the graph: stable id, debug metadata,
// ports, clock side-inputs, group membership, and its kind-specific
// Impl.
type Node struct {
	id         NodeId
	kind       NodeKind
	name       string
	comment    string
	stackTrace string
	group      *NodeGroup
	refCounted bool // frontend still holds a reference; never culled

	Inputs  []InputPort
	Outputs []OutputPort
	Clocks  []*Clock // clock side-inputs, e.g. the one clock of a register

	Impl NodeImpl
}

// Id returns the node's stable id.
func (n *Node) Id() NodeId { return n.id }

// Kind returns the node's semantic kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Name returns the node's debug name (may be empty).
func (n *Node) Name() string { return n.name }

// SetName sets the node's debug name.
func (n *Node) SetName(name string) { n.name = name }

// Comment returns the node's optional comment.
func (n *Node) Comment() string { return n.comment }

// SetComment sets the node's optional comment.
func (n *Node) SetComment(c string) { n.comment = c }

// Group returns the node's owning NodeGroup.
func (n *Node) Group() *NodeGroup { return n.group }

// RefCounted reports whether the frontend still holds a reference to
// this node (and so it must never be culled even if it has no
// consumers).
func (n *Node) RefCounted() bool { return n.refCounted }

// SetRefCounted marks or unmarks the node as frontend-referenced.
func (n *Node) SetRefCounted(v bool) { n.refCounted = v }

// StackTrace returns the construction-time stack trace captured for
// diagnostics.
func (n *Node) StackTrace() string { return n.stackTrace }

// ConstrainInput declares that input i must always be driven by a
// signal of exactly type t; ConnectInput will then reject any other
// type instead of inferring one.
func (n *Node) ConstrainInput(i int, t ConnectionType) {
	n.Inputs[i].Type = t
	n.Inputs[i].Constrained = true
}

// HasSideEffects reports whether this node performs an observable
// action beyond producing outputs (pins, signal-taps, memory ports)
// and so must never be culled purely for lacking consumers.
func (n *Node) HasSideEffects() bool {
	switch n.kind {
	case KindPin, KindSignalTap, KindMemoryPort:
		return true
	default:
		return false
	}
}
