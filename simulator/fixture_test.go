package simulator

import (
	"path/filepath"
	"testing"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/synogate/gatery/fixture"
	"github.com/synogate/gatery/optimize"
)

// TestFixtureCounterReachesExpectedValue drives spec.md §8 scenario 1
// through the fixture loader instead of hand-built hlim calls: after
// one rising edge the register holds 1, and after 16 edges it wraps
// back to 0 (10ns / 160ns at 100 MHz, per the spec's own numbers).
func TestFixtureCounterReachesExpectedValue(t *testing.T) {
	c, nodes, err := fixture.LoadAndBuild(filepath.Join("..", "fixture", "testdata", "counter.yaml"))
	if err != nil {
		t.Fatalf("LoadAndBuild: %v", err)
	}
	prog, err := Compile(c)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	akitaEngine := sim.NewSerialEngine()
	en := NewEngine(akitaEngine, prog, nil)
	if err := en.RunFor(sim.VTimeInSec(10e-9)); err != nil {
		t.Fatalf("RunFor: %v", err)
	}

	mn := prog.Mapped(nodes["reg"].Id())
	if mn == nil {
		t.Fatal("reg not mapped")
	}
	if !prog.State.Bits.IsDefined(mn.Outputs[0], 4) {
		t.Fatal("expected register value to be defined after reset")
	}
	if got := prog.State.Bits.Extract(mn.Outputs[0], 4); got != 1 {
		t.Fatalf("after one edge expected 1, got %d", got)
	}
}

func TestFixtureCounterWrapsAt16Edges(t *testing.T) {
	c, nodes, err := fixture.LoadAndBuild(filepath.Join("..", "fixture", "testdata", "counter.yaml"))
	if err != nil {
		t.Fatalf("LoadAndBuild: %v", err)
	}
	prog, err := Compile(c)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	akitaEngine := sim.NewSerialEngine()
	en := NewEngine(akitaEngine, prog, nil)
	if err := en.RunFor(sim.VTimeInSec(160e-9)); err != nil {
		t.Fatalf("RunFor: %v", err)
	}

	mn := prog.Mapped(nodes["reg"].Id())
	if got := prog.State.Bits.Extract(mn.Outputs[0], 4); got != 0 {
		t.Fatalf("after 16 edges expected wraparound to 0, got %d", got)
	}
}

// TestFixtureRomReadBeforeWrite drives spec.md §8 scenario 3: a write
// and a read to the same address in the same cycle observes the
// pre-cycle value on the read, and the post-cycle memory content at
// that address reflects the write.
func TestFixtureRomReadBeforeWrite(t *testing.T) {
	c, nodes, err := fixture.LoadAndBuild(filepath.Join("..", "fixture", "testdata", "rom_rbw.yaml"))
	if err != nil {
		t.Fatalf("LoadAndBuild: %v", err)
	}
	if err := optimize.Optimize(c, 3); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	prog, err := Compile(c)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	akitaEngine := sim.NewSerialEngine()
	en := NewEngine(akitaEngine, prog, nil)
	if err := en.RunFor(sim.VTimeInSec(10e-9)); err != nil {
		t.Fatalf("RunFor: %v", err)
	}

	// read_out observes the forwarded value: ReadBeforeWriteConversion
	// rewires read_port's consumers, not read_port's own raw output, so
	// the pin is what reflects the collision mux's result.
	outMn := prog.Mapped(nodes["read_out"].Id())
	if got := prog.State.Bits.Extract(outMn.Inputs[0], 8); got != 9 {
		t.Fatalf("expected read-before-write result 9, got %d", got)
	}

	memMn := prog.Mapped(nodes["mem"].Id())
	wordOffset := memMn.Internal[0] + 3*8
	if got := prog.State.Bits.Extract(wordOffset, 8); got != 0xFF {
		t.Fatalf("expected memory[3] == 0xFF after the write, got %#x", got)
	}
}

// TestFixtureMuxConstantSelectsThirteenUnoptimized exercises scenario 4
// only at the hlim-construction level: the simulator doesn't optimize,
// so this just confirms the fixture's mux evaluates to the expected
// selected constant (13) when run. No test checks that optimize removes
// the mux node from this fixture.
func TestFixtureMuxConstantSelectsThirteenUnoptimized(t *testing.T) {
	c, nodes, err := fixture.LoadAndBuild(filepath.Join("..", "fixture", "testdata", "mux_const.yaml"))
	if err != nil {
		t.Fatalf("LoadAndBuild: %v", err)
	}
	prog, err := Compile(c)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	akitaEngine := sim.NewSerialEngine()
	en := NewEngine(akitaEngine, prog, nil)
	if err := en.RunFor(sim.VTimeInSec(1e-9)); err != nil {
		t.Fatalf("RunFor: %v", err)
	}

	mn := prog.Mapped(nodes["mux"].Id())
	if got := prog.State.Bits.Extract(mn.Outputs[0], 8); got != 13 {
		t.Fatalf("expected mux to select 13, got %d", got)
	}
}

// assertCollector turns SimulatorCallbacks.OnAssert calls into a count,
// for TestFixtureAssertionFiresOnceOnDeviation.
type assertCollector struct {
	NopCallbacks
	fired int
}

func (a *assertCollector) OnAssert(node, message string) { a.fired++ }

// TestFixtureAssertionFiresOnceOnDeviation drives spec.md §8 scenario
// 6: the assert fires when out first deviates from expected, and not
// again every subsequent cycle while the condition stays high.
func TestFixtureAssertionFiresOnceOnDeviation(t *testing.T) {
	c, _, err := fixture.LoadAndBuild(filepath.Join("..", "fixture", "testdata", "assert_coroutine.yaml"))
	if err != nil {
		t.Fatalf("LoadAndBuild: %v", err)
	}
	prog, err := Compile(c)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	akitaEngine := sim.NewSerialEngine()
	cb := &assertCollector{}
	en := NewEngine(akitaEngine, prog, cb)
	if err := en.RunFor(sim.VTimeInSec(20e-9)); err != nil {
		t.Fatalf("RunFor: %v", err)
	}

	if cb.fired != 1 {
		t.Fatalf("expected the assertion to fire exactly once, got %d", cb.fired)
	}
}
