package hlim

import (
	"fmt"
	"log/slog"
	"math/big"
	"runtime/debug"
	"sort"

	"github.com/sarchlab/akita/v4/sim"
)

// Circuit owns all nodes, all clocks and the root NodeGroup of one
// dataflow graph. It allocates node/clock/group ids and mediates every
// port connect/disconnect so consumer lists stay consistent in both
// directions.
type Circuit struct {
	ids    *idRegistry
	nodes  map[NodeId]*Node
	order  []NodeId // insertion order, for deterministic iteration
	clocks []*Clock
	root   *NodeGroup
	groups []*NodeGroup

	logger *slog.Logger
}

// NewCircuit creates an empty circuit with a root NodeGroup.
func NewCircuit() *Circuit {
	c := &Circuit{
		ids:    newIDRegistry(),
		nodes:  map[NodeId]*Node{},
		logger: slog.Default(),
	}
	rootID := c.ids.allocate("root")
	c.root = &NodeGroup{id: rootID, name: "root", kind: Entity}
	c.groups = append(c.groups, c.root)
	return c
}

// SetLogger swaps the circuit's structured logger (defaults to
// slog.Default()), returned by Logger. The optimizer passes and the
// simulator compiler do not log through it.
func (c *Circuit) SetLogger(l *slog.Logger) { c.logger = l }

// Logger returns the circuit's structured logger.
func (c *Circuit) Logger() *slog.Logger { return c.logger }

// RootGroup returns the tree root of the NodeGroup hierarchy.
func (c *Circuit) RootGroup() *NodeGroup { return c.root }

// CreateGroup creates a new NodeGroup under parent.
func (c *Circuit) CreateGroup(parent *NodeGroup, name string, kind GroupKind) *NodeGroup {
	if parent == nil {
		parent = c.root
	}
	id := c.ids.allocate(name)
	g := parent.CreateChild(id, name, kind)
	c.groups = append(c.groups, g)
	return g
}

// Node looks up a node by id; returns nil if not present (e.g. already
// deleted).
func (c *Circuit) Node(id NodeId) *Node { return c.nodes[id] }

// Nodes returns all live nodes in insertion order.
func (c *Circuit) Nodes() []*Node {
	out := make([]*Node, 0, len(c.order))
	for _, id := range c.order {
		if n, ok := c.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// CreateNode creates a node of the given kind, owned by the circuit,
// with numInputs/numOutputs ports (all unconnected) and registers its
// kind-specific Impl. The construction stack trace is captured for
// diagnostics only.
func (c *Circuit) CreateNode(kind NodeKind, name string, numInputs, numOutputs int, impl NodeImpl) *Node {
	id := NodeId(c.ids.allocate(name))
	n := &Node{
		id:         id,
		kind:       kind,
		name:       name,
		stackTrace: string(debug.Stack()),
		Inputs:     make([]InputPort, numInputs),
		Outputs:    make([]OutputPort, numOutputs),
		Impl:       impl,
	}
	c.nodes[id] = n
	c.order = append(c.order, id)
	c.root.moveNode(n)
	return n
}

// Delete removes a node from the circuit. All of its inputs are first
// disconnected (so drivers' consumer lists stay correct); it is an
// error (panic, a core-internal bug, never user reachable through the
// public API) to delete a node that still has consumers.
func (c *Circuit) Delete(n *Node) {
	for i := range n.Inputs {
		c.disconnectInput(n, i)
	}
	for oi := range n.Outputs {
		if len(n.Outputs[oi].Consumers) != 0 {
			panic(fmt.Sprintf("cannot delete node %d: output %d still has consumers", n.id, oi))
		}
	}
	if n.group != nil {
		n.group.removeNode(n)
	}
	delete(c.nodes, n.id)
}

func (c *Circuit) disconnectInput(n *Node, input int) {
	driver := n.Inputs[input].Driver
	if !driver.Valid() {
		return
	}
	if dn := c.nodes[driver.Node]; dn != nil {
		dn.Outputs[driver.Port].removeConsumer(NodePort{Node: n.id, Port: input})
	}
	n.Inputs[input].Driver = InvalidPort
}

// ConnectInput drives input `in` of node n from output `out`.
// Idempotent if already wired that way. Returns a *DesignError
// (ErrTypeMismatch) if the types disagree and the node kind doesn't
// accept the coercion (spec.md §4.1).
func (c *Circuit) ConnectInput(n *Node, input int, out NodePort) error {
	if n.Inputs[input].Driver == out {
		return nil
	}
	driverNode := c.nodes[out.Node]
	if driverNode == nil {
		return &DesignError{Kind: ErrUnresolvedReference, Node: n.id, Msg: "driver node does not exist"}
	}
	driverType := driverNode.Outputs[out.Port].Type
	if n.Inputs[input].Constrained {
		if !driverType.CompatibleWith(n.Inputs[input].Type) {
			return newTypeMismatch(n.id, fmt.Sprintf("input %d expects %+v, driver provides %+v", input, n.Inputs[input].Type, driverType))
		}
	} else {
		n.Inputs[input].Type = driverType
	}
	c.disconnectInput(n, input)
	n.Inputs[input].Driver = out
	driverNode.Outputs[out.Port].addConsumer(NodePort{Node: n.id, Port: input})
	c.refreshOutputKinds(driverNode)
	return nil
}

// RewireInput atomically swaps input `in`'s driver for newOutput,
// updating both the old and new drivers' consumer lists. Equivalent to
// disconnect+connect but never observably leaves the input unconnected
// to an external caller.
func (c *Circuit) RewireInput(n *Node, input int, newOutput NodePort) error {
	return c.ConnectInput(n, input, newOutput)
}

// BypassOutputToInput redirects every consumer currently wired to out
// so that they are instead driven by whatever currently drives `in`
// (a node's input). Used by peephole rewrites that remove a node by
// splicing its driver straight through to its consumers.
func (c *Circuit) BypassOutputToInput(node *Node, out int, in int) error {
	newDriver := node.Inputs[in].Driver
	outPort := NodePort{Node: node.id, Port: out}
	consumers := append([]NodePort(nil), node.Outputs[out].Consumers...)
	for _, cons := range consumers {
		consumerNode := c.nodes[cons.Node]
		if !newDriver.Valid() {
			c.disconnectInput(consumerNode, cons.Port)
			continue
		}
		if err := c.ConnectInput(consumerNode, cons.Port, newDriver); err != nil {
			return err
		}
	}
	_ = outPort
	return nil
}

// refreshOutputKinds recomputes the cached OutputKind of every output
// of n (CONSTANT iff produced by a constant node or an all-constant
// rewire; LATCHED iff a register; IMMEDIATE otherwise) per spec.md §4.1.
func (c *Circuit) refreshOutputKinds(n *Node) {
	for i := range n.Outputs {
		n.Outputs[i].Kind = c.computeOutputKind(n, i)
	}
}

func (c *Circuit) computeOutputKind(n *Node, output int) OutputKind {
	switch n.kind {
	case KindConstant:
		return ConstantOutput
	case KindRegister:
		return Latched
	case KindRewire:
		if rw, ok := n.Impl.(*RewireImpl); ok && rw.allRangesConstant() {
			return ConstantOutput
		}
		return Immediate
	default:
		return Immediate
	}
}

// allocateNodeId returns a fresh id without creating a node.
func (c *Circuit) allocateNodeId(name string) NodeId {
	return NodeId(c.ids.allocate(name))
}

// NewRootClock creates a new root clock of the given absolute
// frequency.
func (c *Circuit) NewRootClock(name string, freq sim.Freq, attrs ClockAttributes) *Clock {
	clk := &Clock{
		id:      c.ids.allocate(name),
		name:    name,
		kind:    rootClockTag,
		absFreq: freq,
		attrs:   attrs,
	}
	c.clocks = append(c.clocks, clk)
	return clk
}

// DeriveClock creates a new clock derived from parent by the rational
// multiplier num/den (so its frequency is parent's frequency *
// num/den).
func (c *Circuit) DeriveClock(name string, parent *Clock, num, den int64, attrs ClockAttributes) *Clock {
	clk := &Clock{
		id:         c.ids.allocate(name),
		name:       name,
		kind:       derivedClockTag,
		parent:     parent,
		multiplier: big.NewRat(num, den),
		attrs:      attrs,
	}
	parent.children = append(parent.children, clk)
	c.clocks = append(c.clocks, clk)
	return clk
}

// Clocks returns every clock owned by the circuit.
func (c *Circuit) Clocks() []*Clock { return c.clocks }

// CopySubnet reproduces the sub-DAG reachable backward from outputs,
// stopping at inputs (nodes in `inputs` are not themselves copied; any
// edge crossing into them is left dangling in the returned map so the
// caller can rewire it). Referenced clocks are copied lazily the first
// time they're needed. New node ids are assigned in an order sorted by
// source node id, for deterministic output across runs.
func (c *Circuit) CopySubnet(inputs map[NodeId]bool, outputs []NodeId) map[NodeId]NodeId {
	mapping := map[NodeId]NodeId{}
	clockMapping := map[uint64]*Clock{}

	var order []NodeId
	visited := map[NodeId]bool{}
	var visit func(id NodeId)
	visit = func(id NodeId) {
		if visited[id] || inputs[id] {
			return
		}
		visited[id] = true
		n := c.nodes[id]
		if n == nil {
			return
		}
		for _, in := range n.Inputs {
			if in.Driver.Valid() {
				visit(in.Driver.Node)
			}
		}
		order = append(order, id)
	}
	for _, o := range outputs {
		visit(o)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	for _, srcID := range order {
		src := c.nodes[srcID]
		dstImpl := src.Impl.CloneUnconnected()
		dst := c.CreateNode(src.kind, src.name, len(src.Inputs), len(src.Outputs), dstImpl)
		dst.comment = src.comment
		for _, clk := range src.Clocks {
			newClk, ok := clockMapping[clk.id]
			if !ok {
				newClk = c.cloneClock(clk)
				clockMapping[clk.id] = newClk
			}
			dst.Clocks = append(dst.Clocks, newClk)
		}
		mapping[srcID] = dst.id
	}

	// second pass: wire up copied edges now that every copy exists.
	for _, srcID := range order {
		src := c.nodes[srcID]
		dst := c.nodes[mapping[srcID]]
		for i, in := range src.Inputs {
			if !in.Driver.Valid() {
				continue
			}
			if newDriver, ok := mapping[in.Driver.Node]; ok {
				_ = c.ConnectInput(dst, i, NodePort{Node: newDriver, Port: in.Driver.Port})
			}
			// if the driver wasn't copied (it's one of `inputs`), the
			// caller is responsible for wiring dst's input itself.
		}
	}

	return mapping
}

func (c *Circuit) cloneClock(clk *Clock) *Clock {
	if clk.IsRoot() {
		return c.NewRootClock(clk.name+"_copy", clk.absFreq, clk.attrs)
	}
	parentCopy := c.cloneClock(clk.parent)
	num := clk.multiplier.Num().Int64()
	den := clk.multiplier.Denom().Int64()
	return c.DeriveClock(clk.name+"_copy", parentCopy, num, den, clk.attrs)
}
