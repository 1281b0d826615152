package subnet

import "github.com/synogate/gatery/hlim"

// Direction selects which way an Explorer walks the graph.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Explorer is a single-path DFS cursor over a circuit, used by the
// optimizer's pattern-matching passes to walk a few hops from a seed
// node without materializing a full Subnet (spec.md §4.2 "exploration
// iterators ... for localized pattern matching during optimization").
//
// SkipSignals causes the walk to transparently step over KindSignal
// nodes (follow through them without counting them as a hop).
// SkipDependencies causes Dependency-typed ports to be ignored
// entirely.
type Explorer struct {
	circuit          *hlim.Circuit
	dir              Direction
	skipSignals      bool
	skipDependencies bool
	stack            []frame
}

type frame struct {
	node hlim.NodeId
	port int // input index (Backward) or (output,consumer) index (Forward)
}

// NewExplorer starts an exploration at start.
func NewExplorer(c *hlim.Circuit, start hlim.NodeId, dir Direction) *Explorer {
	return &Explorer{
		circuit: c,
		dir:     dir,
		stack:   []frame{{node: start, port: -1}},
	}
}

// WithSkipSignals configures the explorer to transparently cross
// KindSignal nodes.
func (e *Explorer) WithSkipSignals(v bool) *Explorer { e.skipSignals = v; return e }

// WithSkipDependencies configures the explorer to ignore Dependency
// ports.
func (e *Explorer) WithSkipDependencies(v bool) *Explorer { e.skipDependencies = v; return e }

// Current returns the node id the cursor currently sits on.
func (e *Explorer) Current() hlim.NodeId {
	return e.stack[len(e.stack)-1].node
}

// IsBranchingForward reports whether the current node (walking
// Forward) has more than one consumer in total across all its
// outputs — i.e. continuing would require choosing a branch.
func (e *Explorer) IsBranchingForward() bool {
	n := e.circuit.Node(e.Current())
	if n == nil {
		return false
	}
	count := 0
	for _, out := range n.Outputs {
		count += len(out.Consumers)
	}
	return count > 1
}

// Advance moves the cursor one (possibly skip-transparent) hop in the
// configured direction and reports whether it succeeded; a false
// return means the walk dead-ended (no driver, or no consumer) and the
// cursor did not move.
func (e *Explorer) Advance() bool {
	for {
		cur := e.Current()
		n := e.circuit.Node(cur)
		if n == nil {
			return false
		}
		var next hlim.NodeId
		var ok bool
		if e.dir == Backward {
			next, ok = e.firstDriver(n)
		} else {
			next, ok = e.firstConsumer(n)
		}
		if !ok {
			return false
		}
		e.stack = append(e.stack, frame{node: next, port: -1})
		if e.skipSignals {
			if nn := e.circuit.Node(next); nn != nil && nn.Kind() == hlim.KindSignal {
				continue
			}
		}
		return true
	}
}

func (e *Explorer) firstDriver(n *hlim.Node) (hlim.NodeId, bool) {
	for i, in := range n.Inputs {
		if e.skipDependencies && in.Type.Kind == hlim.Dependency {
			continue
		}
		if in.Driver.Valid() {
			_ = i
			return in.Driver.Node, true
		}
	}
	return 0, false
}

func (e *Explorer) firstConsumer(n *hlim.Node) (hlim.NodeId, bool) {
	for _, out := range n.Outputs {
		for _, cons := range out.Consumers {
			if e.skipDependencies {
				target := e.circuit.Node(cons.Node)
				if target != nil && cons.Port < len(target.Inputs) &&
					target.Inputs[cons.Port].Type.Kind == hlim.Dependency {
					continue
				}
			}
			return cons.Node, true
		}
	}
	return 0, false
}

// Backtrack undoes the last Advance, returning the cursor to its prior
// position; it reports false if already at the start.
func (e *Explorer) Backtrack() bool {
	if len(e.stack) <= 1 {
		return false
	}
	e.stack = e.stack[:len(e.stack)-1]
	return true
}

// Depth returns how many Advance calls are currently undone-able.
func (e *Explorer) Depth() int { return len(e.stack) - 1 }
