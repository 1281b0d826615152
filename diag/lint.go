package diag

import (
	"fmt"

	"github.com/synogate/gatery/hlim"
)

// Lint performs the structural checks described in spec.md §7: every
// reachable node must have every non-optional input connected, every
// clocked port of a memory must agree on clock with the other clocked
// ports of that memory, and no memory port may be left referencing a
// deleted memory node. It mirrors the
// STRUCT-category checks of a hand-maintained RunLint pass, rendered
// against hlim's graph instead of a scheduled-instruction program.
func Lint(c *hlim.Circuit) []Entry {
	var entries []Entry
	for _, n := range c.Nodes() {
		entries = append(entries, lintUnconnectedInputs(n)...)
		entries = append(entries, lintMemoryClocks(c, n)...)
	}
	return entries
}

func lintUnconnectedInputs(n *hlim.Node) []Entry {
	var entries []Entry
	for i, in := range n.Inputs {
		if in.Connected() {
			continue
		}
		// a register's optional ENABLE (absent: always enabled) and
		// RESET_VALUE (absent: no reset) are allowed to float;
		// everything else is a structural defect.
		if n.Kind() == hlim.KindRegister && (i == hlim.RegEnable || i == hlim.RegResetValue) {
			continue
		}
		if n.Kind() == hlim.KindPin && n.Impl.(*hlim.PinImpl).Direction == hlim.PinInput {
			continue
		}
		entries = append(entries, Entry{
			Severity: SeverityError,
			Source:   "lint:" + nodeLabel(n),
			Message:  fmt.Sprintf("input %d is unconnected", i),
		})
	}
	return entries
}

func lintMemoryClocks(c *hlim.Circuit, n *hlim.Node) []Entry {
	port, ok := n.Impl.(*hlim.MemoryPortImpl)
	if !ok {
		return nil
	}
	mem := c.Node(port.Memory)
	if mem == nil {
		return []Entry{{
			Severity: SeverityError,
			Source:   "lint:" + nodeLabel(n),
			Message:  "memory port references a deleted memory node",
		}}
	}
	if port.Mode == hlim.PortRead && !port.IsBoundToMemory {
		return nil // combinational read ports have no clock of their own to check
	}
	var others []*hlim.Clock
	for _, other := range c.Nodes() {
		op, ok := other.Impl.(*hlim.MemoryPortImpl)
		if !ok || other == n || op.Memory != port.Memory || (op.Mode == hlim.PortRead && !op.IsBoundToMemory) {
			continue
		}
		others = append(others, other.Clocks...)
	}
	var entries []Entry
	for _, clk := range n.Clocks {
		matched := false
		for _, otherClk := range others {
			if otherClk == clk {
				matched = true
				break
			}
		}
		if !matched && len(others) > 0 {
			entries = append(entries, Entry{
				Severity: SeverityError,
				Source:   "lint:" + nodeLabel(n),
				Message:  "memory port clock disagrees with another port on the same memory",
			})
		}
	}
	return entries
}

func nodeLabel(n *hlim.Node) string {
	if n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%s#%d", hlim.KindName(n.Kind()), n.Id())
}
