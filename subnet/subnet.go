// Package subnet implements the graph algebra of spec.md §4.2: set
// operations over circuit nodes, topology-aware constructors, and
// exploration iterators used by the optimizer's pattern matching.
package subnet

import "github.com/synogate/gatery/hlim"

// Subnet is a filtered view over a Circuit's nodes, with set algebra.
type Subnet struct {
	circuit *hlim.Circuit
	nodes   map[hlim.NodeId]bool
}

// New creates an empty Subnet over circuit.
func New(circuit *hlim.Circuit) *Subnet {
	return &Subnet{circuit: circuit, nodes: map[hlim.NodeId]bool{}}
}

// Circuit returns the Subnet's owning circuit.
func (s *Subnet) Circuit() *hlim.Circuit { return s.circuit }

// Contains reports whether id is a member.
func (s *Subnet) Contains(id hlim.NodeId) bool { return s.nodes[id] }

// Add inserts id into the set.
func (s *Subnet) Add(id hlim.NodeId) { s.nodes[id] = true }

// Remove removes id from the set.
func (s *Subnet) Remove(id hlim.NodeId) { delete(s.nodes, id) }

// Len returns the number of members.
func (s *Subnet) Len() int { return len(s.nodes) }

// Nodes returns the member ids in no particular order.
func (s *Subnet) Nodes() []hlim.NodeId {
	out := make([]hlim.NodeId, 0, len(s.nodes))
	for id := range s.nodes {
		out = append(out, id)
	}
	return out
}

// Clone returns an independent copy of s.
func (s *Subnet) Clone() *Subnet {
	cp := New(s.circuit)
	for id := range s.nodes {
		cp.nodes[id] = true
	}
	return cp
}

// Union returns a new Subnet containing the members of both.
func (s *Subnet) Union(other *Subnet) *Subnet {
	out := s.Clone()
	for id := range other.nodes {
		out.nodes[id] = true
	}
	return out
}

// Intersect returns a new Subnet containing only members of both.
func (s *Subnet) Intersect(other *Subnet) *Subnet {
	out := New(s.circuit)
	for id := range s.nodes {
		if other.nodes[id] {
			out.nodes[id] = true
		}
	}
	return out
}

// Subtract returns a new Subnet containing s's members that are not in
// other.
func (s *Subnet) Subtract(other *Subnet) *Subnet {
	out := New(s.circuit)
	for id := range s.nodes {
		if !other.nodes[id] {
			out.nodes[id] = true
		}
	}
	return out
}

// All returns a Subnet of every node currently in the circuit.
func All(c *hlim.Circuit) *Subnet {
	s := New(c)
	for _, n := range c.Nodes() {
		s.Add(n.Id())
	}
	return s
}

// AllForSimulation follows the simulation side of every
// export-override node (never the export side) and stops at nothing
// else; it includes every node reachable backward from any side-effect
// node (pins, signal-taps, memory ports) or any frontend-referenced
// node (spec.md §4.4 "compilation stage" input set, and §6 "to the
// frontend": "The simulator pulls these at power-on").
func AllForSimulation(c *hlim.Circuit) *Subnet {
	return allForRole(c, ExportOverrideSim)
}

// AllForExport mirrors AllForSimulation but follows the export side of
// export-override nodes; includeAsserts additionally keeps
// signal-tap/assert nodes reachable purely combinatorially (they have
// no export-side effect on their own, but an exporter that wants to
// preserve them for simulation-in-synthesis flows can opt in).
func AllForExport(c *hlim.Circuit, includeAsserts bool) *Subnet {
	s := allForRole(c, ExportOverrideExport)
	if !includeAsserts {
		out := New(c)
		for id := range s.nodes {
			n := c.Node(id)
			if n != nil && n.Kind() == hlim.KindSignalTap {
				continue
			}
			out.Add(id)
		}
		return out
	}
	return s
}

// exportOverrideSide selects which driver of an export-override node
// AllForSimulation/AllForExport should follow.
type exportOverrideSide int

const (
	ExportOverrideSim exportOverrideSide = iota
	ExportOverrideExport
)

func allForRole(c *hlim.Circuit, side exportOverrideSide) *Subnet {
	s := New(c)
	seeds := New(c)
	for _, n := range c.Nodes() {
		if n.HasSideEffects() || n.RefCounted() {
			seeds.Add(n.Id())
		}
	}
	var visit func(id hlim.NodeId)
	visit = func(id hlim.NodeId) {
		if s.Contains(id) {
			return
		}
		s.Add(id)
		n := c.Node(id)
		if n == nil {
			return
		}
		for i, in := range n.Inputs {
			if !in.Driver.Valid() {
				continue
			}
			if n.Kind() == hlim.KindExportOverride {
				wantInput := hlim.ExportOverrideSimInput
				if side == ExportOverrideExport {
					wantInput = hlim.ExportOverrideExportInput
				}
				if i != wantInput {
					continue
				}
			}
			visit(in.Driver.Node)
		}
	}
	for id := range seeds.nodes {
		visit(id)
	}
	return s
}

// AllDrivenBy returns every node transitively downstream (forward) of
// the nodes in seed, seed included.
func AllDrivenBy(c *hlim.Circuit, seed []hlim.NodeId) *Subnet {
	s := New(c)
	var visit func(id hlim.NodeId)
	visit = func(id hlim.NodeId) {
		if s.Contains(id) {
			return
		}
		s.Add(id)
		n := c.Node(id)
		if n == nil {
			return
		}
		for _, out := range n.Outputs {
			for _, cons := range out.Consumers {
				visit(cons.Node)
			}
		}
	}
	for _, id := range seed {
		visit(id)
	}
	return s
}

// AllNecessaryFor returns every node transitively upstream (backward)
// of the nodes in seed, seed included: the minimal subnet that must be
// preserved for those outputs to keep their value.
func AllNecessaryFor(c *hlim.Circuit, seed []hlim.NodeId) *Subnet {
	s := New(c)
	var visit func(id hlim.NodeId)
	visit = func(id hlim.NodeId) {
		if s.Contains(id) {
			return
		}
		s.Add(id)
		n := c.Node(id)
		if n == nil {
			return
		}
		for _, in := range n.Inputs {
			if in.Driver.Valid() {
				visit(in.Driver.Node)
			}
		}
	}
	for _, id := range seed {
		visit(id)
	}
	return s
}

// AllDrivenCombinatoriallyBy is AllDrivenBy but never crosses a
// register or a memory port's state boundary (it does not follow
// through a register/memory-port's *latched* output, only through its
// non-latching inputs and other combinational nodes).
func AllDrivenCombinatoriallyBy(c *hlim.Circuit, seed []hlim.NodeId) *Subnet {
	s := New(c)
	var visit func(id hlim.NodeId)
	visit = func(id hlim.NodeId) {
		if s.Contains(id) {
			return
		}
		s.Add(id)
		n := c.Node(id)
		if n == nil || n.Kind() == hlim.KindRegister || n.Kind() == hlim.KindMemoryPort {
			return
		}
		for _, out := range n.Outputs {
			for _, cons := range out.Consumers {
				visit(cons.Node)
			}
		}
	}
	for _, id := range seed {
		visit(id)
	}
	return s
}

// FromNodeGroup returns the Subnet of a group's direct nodes, or its
// full subtree if recursive.
func FromNodeGroup(c *hlim.Circuit, g *hlim.NodeGroup, recursive bool) *Subnet {
	s := New(c)
	var nodes []*hlim.Node
	if recursive {
		nodes = g.AllNodesRecursive(nil)
	} else {
		nodes = g.Nodes()
	}
	for _, n := range nodes {
		s.Add(n.Id())
	}
	return s
}

// Dilate grows s by one hop: forward includes every node directly
// downstream of a member, backward every node directly upstream.
func (s *Subnet) Dilate(forward, backward bool) *Subnet {
	out := s.Clone()
	for id := range s.nodes {
		n := s.circuit.Node(id)
		if n == nil {
			continue
		}
		if forward {
			for _, out2 := range n.Outputs {
				for _, cons := range out2.Consumers {
					out.Add(cons.Node)
				}
			}
		}
		if backward {
			for _, in := range n.Inputs {
				if in.Driver.Valid() {
					out.Add(in.Driver.Node)
				}
			}
		}
	}
	return out
}

// FilterLoopNodesOnly returns the subset of s that lies on some
// directed cycle entirely within s (used to render cycle diagnostics
// tightly around the offending loop).
func (s *Subnet) FilterLoopNodesOnly() *Subnet {
	// Kosaraju-lite: a node is on a cycle within s iff it can reach
	// itself using only edges that stay inside s.
	out := New(s.circuit)
	for id := range s.nodes {
		if s.canReachSelf(id) {
			out.Add(id)
		}
	}
	return out
}

func (s *Subnet) canReachSelf(start hlim.NodeId) bool {
	visited := map[hlim.NodeId]bool{}
	var dfs func(id hlim.NodeId) bool
	dfs = func(id hlim.NodeId) bool {
		n := s.circuit.Node(id)
		if n == nil {
			return false
		}
		for _, out := range n.Outputs {
			for _, cons := range out.Consumers {
				if !s.nodes[cons.Node] {
					continue
				}
				if cons.Node == start {
					return true
				}
				if !visited[cons.Node] {
					visited[cons.Node] = true
					if dfs(cons.Node) {
						return true
					}
				}
			}
		}
		return false
	}
	return dfs(start)
}
