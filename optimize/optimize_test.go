package optimize

import (
	"testing"

	"github.com/synogate/gatery/hlim"
)

func TestCullUnusedRemovesDeadChain(t *testing.T) {
	c := hlim.NewCircuit()
	k := c.NewConstant(hlim.Vec(4), 3)
	notUsed := c.NewLogic(hlim.OpNot, 4)
	if err := c.ConnectInput(notUsed, 0, hlim.NodePort{Node: k.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pin := c.NewPin(hlim.PinInput, 4)

	if err := CullUnused(c); err != nil {
		t.Fatalf("CullUnused: %v", err)
	}
	if c.Node(notUsed.Id()) != nil {
		t.Fatalf("expected dangling NOT node to be culled")
	}
	if c.Node(pin.Id()) == nil {
		t.Fatalf("pin has side effects, must survive culling")
	}
}

func TestCullUnnamedSignalsRemovesPassthrough(t *testing.T) {
	c := hlim.NewCircuit()
	k := c.NewConstant(hlim.Vec(4), 5)
	sig := c.NewSignal("", hlim.Vec(4))
	sig.SetRefCounted(false)
	if err := c.ConnectInput(sig, 0, hlim.NodePort{Node: k.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	// sig's only consumer is a (named, ref-counted) signal, which makes
	// sig deletable even though its own driver is a constant.
	named := c.NewSignal("named", hlim.Vec(4))
	if err := c.ConnectInput(named, 0, hlim.NodePort{Node: sig.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pin := c.NewPin(hlim.PinOutput, 4)
	if err := c.ConnectInput(pin, 0, hlim.NodePort{Node: named.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := CullUnnamedSignals(c); err != nil {
		t.Fatalf("CullUnnamedSignals: %v", err)
	}
	if c.Node(sig.Id()) != nil {
		t.Fatalf("expected unnamed passthrough signal to be culled")
	}
	if named.Inputs[0].Driver.Node != k.Id() {
		t.Fatalf("expected the named signal to be rewired straight to the constant, got %+v", named.Inputs[0].Driver)
	}
}

func TestConstantPropagationFoldsAndChain(t *testing.T) {
	c := hlim.NewCircuit()
	a := c.NewConstant(hlim.Vec(4), 0b0110)
	b := c.NewConstant(hlim.Vec(4), 0b0011)
	and := c.NewLogic(hlim.OpAnd, 4)
	if err := c.ConnectInput(and, 0, hlim.NodePort{Node: a.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(and, 1, hlim.NodePort{Node: b.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pin := c.NewPin(hlim.PinOutput, 4)
	if err := c.ConnectInput(pin, 0, hlim.NodePort{Node: and.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := ConstantPropagation(c); err != nil {
		t.Fatalf("ConstantPropagation: %v", err)
	}

	driver := c.Node(pin.Inputs[0].Driver.Node)
	if driver == nil || driver.Kind() != hlim.KindConstant {
		t.Fatalf("expected pin to be driven by a folded constant, got %+v", driver)
	}
	constImpl := driver.Impl.(*hlim.ConstImpl)
	if constImpl.Value != 0b0010 {
		t.Fatalf("expected folded value 0b0010, got %#x", constImpl.Value)
	}
}

func TestMuxMergeCollapsesEqualSelector(t *testing.T) {
	c := hlim.NewCircuit()
	cond := c.NewSignal("cond", hlim.Bit())
	x := c.NewSignal("x", hlim.Vec(4))
	y := c.NewSignal("y", hlim.Vec(4))
	z := c.NewSignal("z", hlim.Vec(4))

	inner := c.NewMux(2, 1, hlim.Vec(4))
	if err := c.ConnectInput(inner, hlim.MuxSelector, hlim.NodePort{Node: cond.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(inner, 1, hlim.NodePort{Node: x.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(inner, 2, hlim.NodePort{Node: y.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	outer := c.NewMux(2, 1, hlim.Vec(4))
	if err := c.ConnectInput(outer, hlim.MuxSelector, hlim.NodePort{Node: cond.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(outer, 1, hlim.NodePort{Node: inner.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(outer, 2, hlim.NodePort{Node: z.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := MuxMerge(c); err != nil {
		t.Fatalf("MuxMerge: %v", err)
	}

	// outer's selector-false branch equals inner's selector, so it
	// should now bypass straight to inner's own false branch (x).
	if got := outer.Inputs[1].Driver.Node; got != x.Id() {
		t.Fatalf("expected outer false branch to collapse onto x, got node %d", got)
	}
}

func TestMuxSelectorNegationSwapsBranches(t *testing.T) {
	c := hlim.NewCircuit()
	cond := c.NewSignal("cond", hlim.Bit())
	notCond := c.NewLogic(hlim.OpNot, 1)
	if err := c.ConnectInput(notCond, 0, hlim.NodePort{Node: cond.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	x := c.NewSignal("x", hlim.Vec(4))
	y := c.NewSignal("y", hlim.Vec(4))

	mux := c.NewMux(2, 1, hlim.Vec(4))
	if err := c.ConnectInput(mux, hlim.MuxSelector, hlim.NodePort{Node: notCond.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(mux, 1, hlim.NodePort{Node: x.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(mux, 2, hlim.NodePort{Node: y.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := MuxSelectorNegation(c); err != nil {
		t.Fatalf("MuxSelectorNegation: %v", err)
	}

	if mux.Inputs[hlim.MuxSelector].Driver.Node != cond.Id() {
		t.Fatalf("expected selector to be un-negated to cond")
	}
	if mux.Inputs[1].Driver.Node != y.Id() || mux.Inputs[2].Driver.Node != x.Id() {
		t.Fatalf("expected data branches to be swapped")
	}
}

func TestConstSelectMuxBypassesToChosenBranch(t *testing.T) {
	c := hlim.NewCircuit()
	sel := c.NewConstant(hlim.Vec(1), 1)
	x := c.NewSignal("x", hlim.Vec(4))
	y := c.NewSignal("y", hlim.Vec(4))

	mux := c.NewMux(2, 1, hlim.Vec(4))
	if err := c.ConnectInput(mux, hlim.MuxSelector, hlim.NodePort{Node: sel.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(mux, 1, hlim.NodePort{Node: x.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(mux, 2, hlim.NodePort{Node: y.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pin := c.NewPin(hlim.PinOutput, 4)
	if err := c.ConnectInput(pin, 0, hlim.NodePort{Node: mux.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := ConstSelectMux(c); err != nil {
		t.Fatalf("ConstSelectMux: %v", err)
	}

	if pin.Inputs[0].Driver.Node != y.Id() {
		t.Fatalf("expected selector=1 to bypass straight to y, got node %d", pin.Inputs[0].Driver.Node)
	}
}

func TestRegisterMuxEnableFoldFoldsSelfFeedback(t *testing.T) {
	c := hlim.NewCircuit()
	clk := c.NewRootClock("clk", 1, hlim.ClockAttributes{})
	reg := c.NewRegister(clk, hlim.Vec(4))
	cond := c.NewSignal("cond", hlim.Bit())
	x := c.NewSignal("x", hlim.Vec(4))

	mux := c.NewMux(2, 1, hlim.Vec(4))
	if err := c.ConnectInput(mux, hlim.MuxSelector, hlim.NodePort{Node: cond.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	// false branch (input 1) is the register feeding back on itself
	if err := c.ConnectInput(mux, 1, hlim.NodePort{Node: reg.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(mux, 2, hlim.NodePort{Node: x.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(reg, hlim.RegData, hlim.NodePort{Node: mux.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := RegisterMuxEnableFold(c); err != nil {
		t.Fatalf("RegisterMuxEnableFold: %v", err)
	}

	if reg.Inputs[hlim.RegData].Driver.Node != x.Id() {
		t.Fatalf("expected register data to be rewired straight to x, got %+v", reg.Inputs[hlim.RegData].Driver)
	}
	enableDriver := c.Node(reg.Inputs[hlim.RegEnable].Driver.Node)
	if enableDriver == nil || enableDriver.Id() != cond.Id() {
		t.Fatalf("expected register with no prior enable to take the mux condition directly as its enable, got %+v", enableDriver)
	}
}

func TestEnsureSignalNodePlacementDedupesByDriver(t *testing.T) {
	c := hlim.NewCircuit()
	a := c.NewLogic(hlim.OpNot, 4)
	k := c.NewConstant(hlim.Vec(4), 0)
	if err := c.ConnectInput(a, 0, hlim.NodePort{Node: k.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pin1 := c.NewPin(hlim.PinOutput, 4)
	pin2 := c.NewPin(hlim.PinOutput, 4)
	if err := c.ConnectInput(pin1, 0, hlim.NodePort{Node: a.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(pin2, 0, hlim.NodePort{Node: a.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := EnsureSignalNodePlacement(c); err != nil {
		t.Fatalf("EnsureSignalNodePlacement: %v", err)
	}

	d1 := c.Node(pin1.Inputs[0].Driver.Node)
	d2 := c.Node(pin2.Inputs[0].Driver.Node)
	if d1 == nil || d1.Kind() != hlim.KindSignal {
		t.Fatalf("expected a signal node inserted ahead of pin1, got %+v", d1)
	}
	if d1.Id() != d2.Id() {
		t.Fatalf("expected both pins to share the one inserted signal, got %d and %d", d1.Id(), d2.Id())
	}
}

func TestInferSignalNamesWalksUnnamedChain(t *testing.T) {
	c := hlim.NewCircuit()
	k := c.NewConstant(hlim.Vec(4), 1)
	s1 := c.NewSignal("", hlim.Vec(4))
	s2 := c.NewSignal("", hlim.Vec(4))
	if err := c.ConnectInput(s1, 0, hlim.NodePort{Node: k.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.ConnectInput(s2, 0, hlim.NodePort{Node: s1.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := InferSignalNames(c); err != nil {
		t.Fatalf("InferSignalNames: %v", err)
	}
	if s1.Name() == "" || s2.Name() == "" {
		t.Fatalf("expected both unnamed signals in the chain to get a name, got %q and %q", s1.Name(), s2.Name())
	}
}

func TestInferGroupInstanceNamesDisambiguatesSiblings(t *testing.T) {
	c := hlim.NewCircuit()
	root := c.RootGroup()
	a := c.CreateGroup(root, "adder", hlim.Entity)
	b := c.CreateGroup(root, "adder", hlim.Entity)

	if err := InferGroupInstanceNames(c); err != nil {
		t.Fatalf("InferGroupInstanceNames: %v", err)
	}
	if a.InstanceName() == b.InstanceName() {
		t.Fatalf("expected sibling groups sharing a name to get distinct instance names, both got %q", a.InstanceName())
	}
}

func TestMemoryDetectionFormsGroupAndBindsSyncReadRegister(t *testing.T) {
	c := hlim.NewCircuit()
	clk := c.NewRootClock("clk", 1, hlim.ClockAttributes{})
	mem := c.NewMemory(8, 16, nil)
	port := c.NewMemoryPort(mem, hlim.PortRead)
	reg := c.NewRegister(clk, hlim.Vec(8))
	if err := c.ConnectInput(reg, hlim.RegData, hlim.NodePort{Node: port.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pin := c.NewPin(hlim.PinOutput, 8)
	if err := c.ConnectInput(pin, 0, hlim.NodePort{Node: reg.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := MemoryDetection(c); err != nil {
		t.Fatalf("MemoryDetection: %v", err)
	}

	group := mem.Group()
	if group == nil || group.Kind() != hlim.SFU {
		t.Fatalf("expected memory to be moved into an SFU group, got %+v", group)
	}
	mg, ok := group.Meta().(*hlim.MemoryGroup)
	if !ok {
		t.Fatalf("expected group metadata to be a *hlim.MemoryGroup")
	}
	if mg.SyncReadRegister[port.Id()] != reg.Id() {
		t.Fatalf("expected the register to be recognized as the port's sync-read register")
	}
	portImpl := port.Impl.(*hlim.MemoryPortImpl)
	if !portImpl.IsBoundToMemory {
		t.Fatalf("expected the read port to be marked bound to memory")
	}
	regImpl := reg.Impl.(*hlim.RegisterImpl)
	if regImpl.Flags&hlim.IsBoundToMemory == 0 {
		t.Fatalf("expected the register's IsBoundToMemory flag to be set")
	}
}

func TestReadBeforeWriteConversionGuardsReadPinAgainstCollidingWrite(t *testing.T) {
	c := hlim.NewCircuit()
	clk := c.NewRootClock("clk", 1, hlim.ClockAttributes{})
	mem := c.NewMemory(8, 16, []uint64{0, 1, 4, 9})

	addr := c.NewConstant(hlim.Vec(4), 3)
	writeData := c.NewConstant(hlim.Vec(8), 0xFF)
	enable := c.NewConstant(hlim.Vec(1), 1)

	write := c.NewMemoryPort(mem, hlim.PortWrite)
	write.Clocks = []*hlim.Clock{clk}
	for i, src := range []*hlim.Node{addr, writeData, enable} {
		if err := c.ConnectInput(write, i, hlim.NodePort{Node: src.Id(), Port: 0}); err != nil {
			t.Fatalf("connect write input %d: %v", i, err)
		}
	}

	read := c.NewMemoryPort(mem, hlim.PortRead)
	for i, src := range []*hlim.Node{addr, enable} {
		if err := c.ConnectInput(read, i, hlim.NodePort{Node: src.Id(), Port: 0}); err != nil {
			t.Fatalf("connect read input %d: %v", i, err)
		}
	}

	pin := c.NewPin(hlim.PinOutput, 8)
	if err := c.ConnectInput(pin, 0, hlim.NodePort{Node: read.Id(), Port: 0}); err != nil {
		t.Fatalf("connect pin: %v", err)
	}

	if err := ReadBeforeWriteConversion(c); err != nil {
		t.Fatalf("ReadBeforeWriteConversion: %v", err)
	}

	// The pin's driver must have been rewired away from the raw read
	// port straight onto a collision mux, per spec.md §7's
	// order-independent pre-cycle-value invariant.
	driver := pin.Inputs[0].Driver
	if driver.Node == read.Id() {
		t.Fatalf("expected the pin's driver to be rewired off the raw read port")
	}
	driverNode := c.Node(driver.Node)
	if driverNode == nil || driverNode.Kind() != hlim.KindMux {
		t.Fatalf("expected the pin to be driven by a mux, got %+v", driverNode)
	}
}

func TestPipelineLevelsAreMonotonicPrefixes(t *testing.T) {
	if len(Pipeline(0)) != 0 {
		t.Fatalf("level 0 must run no passes")
	}
	p1 := Pipeline(1)
	p2 := Pipeline(2)
	p3 := Pipeline(3)
	if len(p1) >= len(p2) || len(p2) >= len(p3) {
		t.Fatalf("expected strictly increasing pass counts across levels, got %d, %d, %d", len(p1), len(p2), len(p3))
	}
	for i, pass := range p1 {
		if pass.Name != p2[i].Name {
			t.Fatalf("level 2 must run level 1 as a prefix, mismatch at %d: %q vs %q", i, pass.Name, p2[i].Name)
		}
	}
}
