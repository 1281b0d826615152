package diag

import (
	"github.com/synogate/gatery/hlim"
	"github.com/synogate/gatery/subnet"
)

// CycleReport describes one detected combinational loop: the nodes
// that make it up (tightened to just the cycle, via
// subnet.FilterLoopNodesOnly) and a human-readable node-name trail.
type CycleReport struct {
	Nodes []hlim.NodeId
	Names []string
}

// FindCombinationalCycles repeatedly "executes" every node whose
// inputs are all ready (driven by a Latched/Constant output, an
// unconnected input, or another already-executed node) and removes it
// from the working set, exactly as verify/funcsim.go's Run loop
// repeatedly executes every operation whose operands are ready until
// no more progress is made. Whatever nodes never become ready are
// stuck in (or feeding) a combinational cycle; FilterLoopNodesOnly
// narrows that residue down to the cycle itself for reporting.
func FindCombinationalCycles(c *hlim.Circuit) []CycleReport {
	working := map[hlim.NodeId]bool{}
	for _, n := range c.Nodes() {
		working[n.Id()] = true
	}

	ready := map[hlim.NodeId]bool{}
	isReady := func(n *hlim.Node) bool {
		for _, in := range n.Inputs {
			if !in.Driver.Valid() {
				continue // unconnected: treated as ready (will read undefined/panic later, not a cycle)
			}
			driver := c.Node(in.Driver.Node)
			if driver == nil {
				continue
			}
			kind := driver.Outputs[in.Driver.Port].Kind
			if kind == hlim.Latched || kind == hlim.ConstantOutput {
				continue // crosses a state boundary or is already resolved; never blocks readiness
			}
			if !ready[in.Driver.Node] {
				return false
			}
		}
		return true
	}

	for {
		progress := false
		for id := range working {
			n := c.Node(id)
			if n == nil {
				delete(working, id)
				continue
			}
			if isReady(n) {
				ready[id] = true
				delete(working, id)
				progress = true
			}
		}
		if !progress || len(working) == 0 {
			break
		}
	}

	if len(working) == 0 {
		return nil
	}

	stuck := subnet.New(c)
	for id := range working {
		stuck.Add(id)
	}
	loopOnly := stuck.FilterLoopNodesOnly()
	if loopOnly.Len() == 0 {
		// every remaining node merely feeds a cycle without being part of
		// one (e.g. a dead-end branch off a loop); report the full residue
		// so the user can still find the loop from its fan-out.
		loopOnly = stuck
	}

	var report CycleReport
	for _, id := range loopOnly.Nodes() {
		report.Nodes = append(report.Nodes, id)
		if n := c.Node(id); n != nil {
			name := n.Name()
			if name == "" {
				name = hlim.KindName(n.Kind())
			}
			report.Names = append(report.Names, name)
		}
	}
	return []CycleReport{report}
}
