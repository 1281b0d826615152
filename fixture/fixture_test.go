package fixture

import (
	"path/filepath"
	"testing"
)

var scenarios = []string{
	"counter",
	"sr_latch",
	"rom_rbw",
	"mux_const",
	"retiming_read_register",
	"assert_coroutine",
}

func TestLoadAndBuildAllScenarios(t *testing.T) {
	for _, name := range scenarios {
		name := name
		t.Run(name, func(t *testing.T) {
			path := filepath.Join("testdata", name+".yaml")
			c, nodes, err := LoadAndBuild(path)
			if err != nil {
				t.Fatalf("LoadAndBuild(%s): %v", path, err)
			}
			if len(nodes) == 0 {
				t.Fatalf("%s: expected at least one node", name)
			}
			if len(c.Nodes()) == 0 {
				t.Fatalf("%s: expected circuit to contain nodes", name)
			}
		})
	}
}

func TestUnknownNodeKindErrors(t *testing.T) {
	c := &Circuit{Name: "bad", Nodes: []Node{{ID: "x", Kind: "not_a_kind"}}}
	if _, _, err := Build(c); err == nil {
		t.Fatal("expected an error for an unknown node kind")
	}
}

func TestUnknownInputRefErrors(t *testing.T) {
	c := &Circuit{Name: "bad", Nodes: []Node{
		{ID: "out", Kind: "pin", Width: 4, Direction: "output", Inputs: []string{"missing"}},
	}}
	if _, _, err := Build(c); err == nil {
		t.Fatal("expected an error for an unresolvable input reference")
	}
}
