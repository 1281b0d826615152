package subnet_test

import (
	"testing"

	"github.com/synogate/gatery/hlim"
	"github.com/synogate/gatery/subnet"
)

func buildChain(t *testing.T) (*hlim.Circuit, *hlim.Node, *hlim.Node, *hlim.Node) {
	t.Helper()
	c := hlim.NewCircuit()
	a := c.NewConstant(hlim.Vec(8), 5)
	b := c.NewSignal("b", hlim.Vec(8))
	if err := c.ConnectInput(b, 0, hlim.NodePort{Node: a.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	p := c.NewPin(hlim.PinOutput, 8)
	if err := c.ConnectInput(p, 0, hlim.NodePort{Node: b.Id(), Port: 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return c, a, b, p
}

func TestAllIncludesEveryNode(t *testing.T) {
	c, a, b, p := buildChain(t)
	s := subnet.All(c)
	for _, n := range []*hlim.Node{a, b, p} {
		if !s.Contains(n.Id()) {
			t.Errorf("All() missing node %d", n.Id())
		}
	}
}

func TestAllNecessaryForWalksBackward(t *testing.T) {
	c, a, b, p := buildChain(t)
	s := subnet.AllNecessaryFor(c, []hlim.NodeId{p.Id()})
	if !s.Contains(a.Id()) || !s.Contains(b.Id()) || !s.Contains(p.Id()) {
		t.Fatalf("expected a, b, p all necessary for p, got %v", s.Nodes())
	}
}

func TestAllDrivenByWalksForward(t *testing.T) {
	c, a, b, p := buildChain(t)
	s := subnet.AllDrivenBy(c, []hlim.NodeId{a.Id()})
	if !s.Contains(a.Id()) || !s.Contains(b.Id()) || !s.Contains(p.Id()) {
		t.Fatalf("expected a, b, p all driven by a, got %v", s.Nodes())
	}
}

func TestSetAlgebra(t *testing.T) {
	c, a, b, _ := buildChain(t)
	s1 := subnet.New(c)
	s1.Add(a.Id())
	s2 := subnet.New(c)
	s2.Add(a.Id())
	s2.Add(b.Id())

	if s1.Intersect(s2).Len() != 1 {
		t.Errorf("expected intersection of size 1")
	}
	if s1.Union(s2).Len() != 2 {
		t.Errorf("expected union of size 2")
	}
	if s2.Subtract(s1).Len() != 1 {
		t.Errorf("expected subtraction of size 1")
	}
}

func TestFilterLoopNodesOnlyKeepsOnlyCycleMembers(t *testing.T) {
	c := hlim.NewCircuit()
	sig1 := c.NewSignal("loop1", hlim.Bit())
	sig2 := c.NewSignal("loop2", hlim.Bit())
	// sig2 driven by sig1, sig1 driven by sig2: a direct cycle.
	_ = c.ConnectInput(sig2, 0, hlim.NodePort{Node: sig1.Id(), Port: 0})
	_ = c.ConnectInput(sig1, 0, hlim.NodePort{Node: sig2.Id(), Port: 0})

	outside := c.NewConstant(hlim.Bit(), 1)

	s := subnet.New(c)
	s.Add(sig1.Id())
	s.Add(sig2.Id())
	s.Add(outside.Id())

	loop := s.FilterLoopNodesOnly()
	if !loop.Contains(sig1.Id()) || !loop.Contains(sig2.Id()) {
		t.Errorf("expected both loop signals kept")
	}
	if loop.Contains(outside.Id()) {
		t.Errorf("expected non-loop node filtered out")
	}
}

func TestConjunctionBuildFlattensAndChain(t *testing.T) {
	c := hlim.NewCircuit()
	cond1 := c.NewSignal("c1", hlim.Bit())
	cond2 := c.NewSignal("c2", hlim.Bit())
	and := c.NewLogic(hlim.OpAnd, 1)
	_ = c.ConnectInput(and, 0, hlim.NodePort{Node: cond1.Id(), Port: 0})
	_ = c.ConnectInput(and, 1, hlim.NodePort{Node: cond2.Id(), Port: 0})

	conj, ok := subnet.Build(c, hlim.NodePort{Node: and.Id(), Port: 0})
	if !ok {
		t.Fatalf("Build failed")
	}
	if len(conj.Terms()) != 2 {
		t.Fatalf("expected 2 flattened literals, got %d: %s", len(conj.Terms()), conj.String())
	}
}

func TestConjunctionNegationDetection(t *testing.T) {
	c := hlim.NewCircuit()
	cond := c.NewSignal("c", hlim.Bit())
	not := c.NewLogic(hlim.OpNot, 1)
	_ = c.ConnectInput(not, 0, hlim.NodePort{Node: cond.Id(), Port: 0})

	positive, ok := subnet.Build(c, hlim.NodePort{Node: cond.Id(), Port: 0})
	if !ok {
		t.Fatalf("Build failed")
	}
	negative, ok := subnet.Build(c, hlim.NodePort{Node: not.Id(), Port: 0})
	if !ok {
		t.Fatalf("Build failed")
	}
	if !positive.IsNegationOf(negative) {
		t.Errorf("expected %s to be negation of %s", negative, positive)
	}
}
