package simulator

import (
	"testing"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/synogate/gatery/bitvec"
	"github.com/synogate/gatery/hlim"
)

// buildCounter wires a free-running 4-bit counter (spec.md §8 scenario
// 1): a register with no reset, DATA = register_output + 1, exposed
// on an output pin.
func buildCounter(t *testing.T) (*hlim.Circuit, *hlim.Node, *hlim.Node) {
	t.Helper()
	c := hlim.NewCircuit()
	clk := c.NewRootClock("clk", 1*sim.GHz, hlim.ClockAttributes{})

	reg := c.NewRegister(clk, hlim.Vec(4))
	one := c.NewConstant(hlim.Vec(4), 1)
	add := c.NewArith(hlim.OpAdd, 4)
	if err := c.ConnectInput(add, 0, hlim.NodePort{Node: reg.Id(), Port: 0}); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectInput(add, 1, hlim.NodePort{Node: one.Id(), Port: 0}); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectInput(reg, hlim.RegData, hlim.NodePort{Node: add.Id(), Port: 0}); err != nil {
		t.Fatal(err)
	}

	out := c.NewPin(hlim.PinOutput, 4)
	if err := c.ConnectInput(out, 0, hlim.NodePort{Node: reg.Id(), Port: 0}); err != nil {
		t.Fatal(err)
	}
	return c, reg, out
}

func TestCompileCounterProducesExecutionBlocks(t *testing.T) {
	c, _, _ := buildCounter(t)
	prog, err := Compile(c)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(prog.Blocks) == 0 {
		t.Fatalf("expected at least one execution block")
	}
	if len(prog.Clocks) != 1 {
		t.Fatalf("expected one clock domain, got %d", len(prog.Clocks))
	}
	if len(prog.Clocks[0].Registers) != 1 {
		t.Fatalf("expected one register in the clock domain, got %d", len(prog.Clocks[0].Registers))
	}
}

func TestRunUnresetCounterCompletes(t *testing.T) {
	c, reg, _ := buildCounter(t)
	prog, err := Compile(c)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	akitaEngine := sim.NewSerialEngine()
	en := NewEngine(akitaEngine, prog, nil)
	if err := en.RunFor(sim.VTimeInSec(10e-9)); err != nil {
		t.Fatalf("RunFor: %v", err)
	}

	mn := prog.Mapped(reg.Id())
	if mn == nil {
		t.Fatal("register not mapped")
	}
	// No RESET_VALUE is connected, so the register stays undefined
	// through reset and every DATA = out+1 update keeps it undefined;
	// this only exercises that the run completes and the offsets
	// resolve without panicking.
	_ = prog.State.Bits.IsDefined(mn.Outputs[0], 4)
}

func TestCompileDetectsCombinationalCycle(t *testing.T) {
	c := hlim.NewCircuit()
	a := c.NewArith(hlim.OpAdd, 4)
	b := c.NewArith(hlim.OpAdd, 4)
	one := c.NewConstant(hlim.Vec(4), 1)
	if err := c.ConnectInput(a, 0, hlim.NodePort{Node: b.Id(), Port: 0}); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectInput(a, 1, hlim.NodePort{Node: one.Id(), Port: 0}); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectInput(b, 0, hlim.NodePort{Node: a.Id(), Port: 0}); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectInput(b, 1, hlim.NodePort{Node: one.Id(), Port: 0}); err != nil {
		t.Fatal(err)
	}
	out := c.NewPin(hlim.PinOutput, 4)
	if err := c.ConnectInput(out, 0, hlim.NodePort{Node: a.Id(), Port: 0}); err != nil {
		t.Fatal(err)
	}

	_, err := Compile(c)
	if err == nil {
		t.Fatal("expected a combinational-cycle compile error")
	}
	if _, ok := err.(*CompileError); !ok {
		t.Fatalf("expected *CompileError, got %T", err)
	}
}

func TestDataStateAllocIsDisjoint(t *testing.T) {
	d := NewDataState()
	a := d.Alloc(4)
	b := d.Alloc(8)
	if b != a+4 {
		t.Fatalf("expected disjoint allocation, got a=%d b=%d", a, b)
	}
	if d.Size() != 12 {
		t.Fatalf("expected size 12, got %d", d.Size())
	}
}

func TestEventOrderingSecondaryTiebreak(t *testing.T) {
	a := &Event{time: 1, Phase: PhaseBefore, MicroTick: 0, Kind: KindClockEdge, insertion: 1}
	b := &Event{time: 1, Phase: PhaseAfter, MicroTick: 0, Kind: KindClockEdge, insertion: 2}
	evs := []*Event{b, a}
	sortEvents(evs)
	if evs[0] != a {
		t.Fatalf("expected earlier-phase event first")
	}
}

func TestBitvecCopyGroundsRegisterForwarding(t *testing.T) {
	s := bitvec.New(8)
	s.Insert(0, 4, 5)
	bitvec.Copy(s, 4, s, 0, 4)
	if s.Extract(4, 4) != 5 {
		t.Fatalf("expected copied value 5, got %d", s.Extract(4, 4))
	}
}
