package diag_test

import (
	"strings"
	"testing"

	"github.com/synogate/gatery/diag"
	"github.com/synogate/gatery/hlim"
)

func TestLintFlagsUnconnectedInput(t *testing.T) {
	c := hlim.NewCircuit()
	c.NewLogic(hlim.OpAnd, 1) // both inputs left unconnected

	entries := diag.Lint(c)
	if len(entries) != 2 {
		t.Fatalf("expected 2 unconnected-input findings, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Severity != diag.SeverityError {
			t.Errorf("expected error severity, got %v", e.Severity)
		}
	}
}

func TestFindCombinationalCyclesDetectsDirectLoop(t *testing.T) {
	c := hlim.NewCircuit()
	sig1 := c.NewSignal("loop1", hlim.Bit())
	sig2 := c.NewSignal("loop2", hlim.Bit())
	_ = c.ConnectInput(sig2, 0, hlim.NodePort{Node: sig1.Id(), Port: 0})
	_ = c.ConnectInput(sig1, 0, hlim.NodePort{Node: sig2.Id(), Port: 0})

	reports := diag.FindCombinationalCycles(c)
	if len(reports) != 1 {
		t.Fatalf("expected 1 cycle report, got %d", len(reports))
	}
	if len(reports[0].Nodes) != 2 {
		t.Errorf("expected cycle of 2 nodes, got %d", len(reports[0].Nodes))
	}
}

func TestFindCombinationalCyclesAcyclicIsClean(t *testing.T) {
	c := hlim.NewCircuit()
	a := c.NewConstant(hlim.Bit(), 1)
	b := c.NewSignal("b", hlim.Bit())
	_ = c.ConnectInput(b, 0, hlim.NodePort{Node: a.Id(), Port: 0})

	reports := diag.FindCombinationalCycles(c)
	if len(reports) != 0 {
		t.Fatalf("expected no cycle reports, got %d", len(reports))
	}
}

func TestEntryStringFormat(t *testing.T) {
	e := diag.Entry{Severity: diag.SeverityWarning, Source: "foo", Message: "bar"}
	got := e.String()
	for _, want := range []string{"Warning@foo", "bar"} {
		if !strings.Contains(got, want) {
			t.Errorf("entry string %q missing %q", got, want)
		}
	}
}
