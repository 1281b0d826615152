package fixture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/synogate/gatery/hlim"
)

// buildNode constructs one hlim.Node from its YAML description; Kind
// selects the hlim constructor, mirroring the closed set of node kinds
// spec.md §3 defines.
func buildNode(c *hlim.Circuit, yn Node, clocks map[string]*hlim.Clock) (*hlim.Node, error) {
	switch yn.Kind {
	case "pin":
		dir, err := pinDirection(yn.Direction)
		if err != nil {
			return nil, err
		}
		return c.NewPin(dir, yn.Width), nil

	case "const":
		return c.NewConstant(hlim.Vec(yn.Width), yn.Value), nil

	case "register":
		clk, ok := clocks[yn.Clock]
		if !ok {
			return nil, fmt.Errorf("unknown clock %q", yn.Clock)
		}
		return c.NewRegister(clk, hlim.Vec(yn.Width)), nil

	case "arith":
		op, err := arithOp(yn.Op)
		if err != nil {
			return nil, err
		}
		return c.NewArith(op, yn.Width), nil

	case "logic":
		op, err := logicOp(yn.Op)
		if err != nil {
			return nil, err
		}
		return c.NewLogic(op, yn.Width), nil

	case "compare":
		op, err := compareOp(yn.Op)
		if err != nil {
			return nil, err
		}
		return c.NewCompare(op, yn.Width), nil

	case "mux":
		return c.NewMux(yn.NumData, yn.SelectorWidth, hlim.Vec(yn.Width)), nil

	case "memory":
		return c.NewMemory(yn.WordWidth, yn.WordCount, yn.Init), nil

	case "memory_port":
		// Memory ports are built after Build's first pass resolves the
		// referenced memory node below, via buildMemoryPort.
		return nil, errDeferredMemoryPort{yn}

	case "signal_tap":
		level, err := tapLevel(yn.Level)
		if err != nil {
			return nil, err
		}
		return c.NewSignalTap(level, yn.Message), nil

	default:
		return nil, fmt.Errorf("unknown node kind %q", yn.Kind)
	}
}

// errDeferredMemoryPort signals that this node needs the nodes map
// (unavailable to buildNode, which runs before it) and must be finished
// by buildMemoryPort in Build's second pass.
type errDeferredMemoryPort struct{ yn Node }

func (e errDeferredMemoryPort) Error() string { return "memory_port needs deferred construction" }

func buildMemoryPort(c *hlim.Circuit, yn Node, nodes map[string]*hlim.Node, clocks map[string]*hlim.Clock) (*hlim.Node, error) {
	mem, ok := nodes[yn.Memory]
	if !ok {
		return nil, fmt.Errorf("memory_port %q: unknown memory %q", yn.ID, yn.Memory)
	}
	mode, err := memoryPortMode(yn.Mode)
	if err != nil {
		return nil, err
	}
	n := c.NewMemoryPort(mem, mode)
	if yn.Clock != "" {
		clk, ok := clocks[yn.Clock]
		if !ok {
			return nil, fmt.Errorf("memory_port %q: unknown clock %q", yn.ID, yn.Clock)
		}
		n.Clocks = append(n.Clocks, clk)
	}
	return n, nil
}

// parseRef resolves an "id" or "id.port" input reference against the
// already-built node set.
func parseRef(ref string, nodes map[string]*hlim.Node) (*hlim.Node, int, error) {
	id, portStr, hasPort := strings.Cut(ref, ".")
	n, ok := nodes[id]
	if !ok {
		return nil, 0, fmt.Errorf("unknown node %q", id)
	}
	port := 0
	if hasPort {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, 0, fmt.Errorf("bad port in ref %q: %w", ref, err)
		}
		port = p
	}
	return n, port, nil
}

func pinDirection(s string) (hlim.PinDirection, error) {
	switch s {
	case "input":
		return hlim.PinInput, nil
	case "output":
		return hlim.PinOutput, nil
	case "bidirectional":
		return hlim.PinBidirectional, nil
	default:
		return 0, fmt.Errorf("unknown pin direction %q", s)
	}
}

func arithOp(s string) (hlim.ArithOp, error) {
	switch s {
	case "add":
		return hlim.OpAdd, nil
	case "sub":
		return hlim.OpSub, nil
	default:
		return 0, fmt.Errorf("unknown arith op %q", s)
	}
}

func logicOp(s string) (hlim.LogicOp, error) {
	switch s {
	case "and":
		return hlim.OpAnd, nil
	case "nand":
		return hlim.OpNand, nil
	case "or":
		return hlim.OpOr, nil
	case "nor":
		return hlim.OpNor, nil
	case "xor":
		return hlim.OpXor, nil
	case "xnor":
		return hlim.OpXnor, nil
	case "not":
		return hlim.OpNot, nil
	default:
		return 0, fmt.Errorf("unknown logic op %q", s)
	}
}

func compareOp(s string) (hlim.CompareOp, error) {
	switch s {
	case "eq":
		return hlim.OpEQ, nil
	case "neq":
		return hlim.OpNEQ, nil
	case "lt":
		return hlim.OpLT, nil
	case "gt":
		return hlim.OpGT, nil
	case "leq":
		return hlim.OpLEQ, nil
	case "geq":
		return hlim.OpGEQ, nil
	default:
		return 0, fmt.Errorf("unknown compare op %q", s)
	}
}

func memoryPortMode(s string) (hlim.MemoryPortMode, error) {
	switch s {
	case "read":
		return hlim.PortRead, nil
	case "write":
		return hlim.PortWrite, nil
	case "read_write":
		return hlim.PortReadWrite, nil
	default:
		return 0, fmt.Errorf("unknown memory port mode %q", s)
	}
}

func tapLevel(s string) (hlim.TapLevel, error) {
	switch s {
	case "debug":
		return hlim.LvlDebug, nil
	case "warning":
		return hlim.LvlWarning, nil
	case "assert":
		return hlim.LvlAssert, nil
	default:
		return 0, fmt.Errorf("unknown signal tap level %q", s)
	}
}
