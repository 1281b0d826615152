// Package fixture loads YAML-described example circuits used by package
// tests and cmd/gatery-check, grounded in the teacher's
// core.LoadProgramFileFromYAML pattern (core/program.go): a flat YAML
// document unmarshaled with gopkg.in/yaml.v3 struct tags, then built into
// runnable graph types node by node.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/synogate/gatery/hlim"
)

// Node is one YAML-described hlim node. Kind selects which fields apply;
// unused fields are left at their zero value.
type Node struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`

	Width int `yaml:"width,omitempty"`

	// const
	Value uint64 `yaml:"value,omitempty"`

	// register
	Clock string `yaml:"clock,omitempty"`

	// arith / logic / compare
	Op string `yaml:"op,omitempty"`

	// mux
	SelectorWidth int `yaml:"selector_width,omitempty"`
	NumData       int `yaml:"num_data,omitempty"`

	// pin
	Direction string `yaml:"direction,omitempty"`

	// memory
	WordWidth int      `yaml:"word_width,omitempty"`
	WordCount int       `yaml:"word_count,omitempty"`
	Init      []uint64  `yaml:"init,omitempty"`

	// memory_port
	Memory string `yaml:"memory,omitempty"`
	Mode   string `yaml:"mode,omitempty"`

	// signal_tap
	Level   string `yaml:"level,omitempty"`
	Message string `yaml:"message,omitempty"`

	// Inputs binds this node's input ports, by index, to "<source-id>" or
	// "<source-id>.<port>" (default port 0).
	Inputs []string `yaml:"inputs,omitempty"`
}

// Clock is one YAML-described root clock.
type Clock struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	FreqHz    float64 `yaml:"freq_hz"`
}

// Circuit is the top-level YAML document describing a fixture circuit
// (spec.md §8's six end-to-end scenarios, one file per scenario under
// fixture/testdata/).
type Circuit struct {
	Name   string  `yaml:"name"`
	Clocks []Clock `yaml:"clocks,omitempty"`
	Nodes  []Node  `yaml:"nodes"`
}

// Load reads and parses a fixture YAML file.
func Load(path string) (*Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", path, err)
	}
	var c Circuit
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("fixture: parse %s: %w", path, err)
	}
	return &c, nil
}

// Build constructs a hlim.Circuit from the fixture description, in
// declaration order: every clock first, then every node, then every
// node's input connections (so a node may refer to any earlier or later
// sibling by id).
func Build(c *Circuit) (*hlim.Circuit, map[string]*hlim.Node, error) {
	hc := hlim.NewCircuit()

	clocks := map[string]*hlim.Clock{}
	for _, yc := range c.Clocks {
		clocks[yc.ID] = hc.NewRootClock(yc.Name, sim.Freq(yc.FreqHz), hlim.ClockAttributes{})
	}

	nodes := map[string]*hlim.Node{}
	var deferredPorts []Node
	for _, yn := range c.Nodes {
		n, err := buildNode(hc, yn, clocks)
		if _, deferred := err.(errDeferredMemoryPort); deferred {
			deferredPorts = append(deferredPorts, yn)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("fixture: node %q: %w", yn.ID, err)
		}
		if yn.ID != "" {
			n.SetName(yn.ID)
			nodes[yn.ID] = n
		}
	}
	for _, yn := range deferredPorts {
		n, err := buildMemoryPort(hc, yn, nodes, clocks)
		if err != nil {
			return nil, nil, fmt.Errorf("fixture: node %q: %w", yn.ID, err)
		}
		if yn.ID != "" {
			n.SetName(yn.ID)
			nodes[yn.ID] = n
		}
	}

	for _, yn := range c.Nodes {
		n := nodes[yn.ID]
		for i, ref := range yn.Inputs {
			if ref == "" {
				continue
			}
			src, port, err := parseRef(ref, nodes)
			if err != nil {
				return nil, nil, fmt.Errorf("fixture: node %q input %d: %w", yn.ID, i, err)
			}
			if err := hc.ConnectInput(n, i, hlim.NodePort{Node: src.Id(), Port: port}); err != nil {
				return nil, nil, fmt.Errorf("fixture: node %q input %d: %w", yn.ID, i, err)
			}
		}
	}

	return hc, nodes, nil
}

// LoadAndBuild is the common case: load a YAML file and build it in one
// call.
func LoadAndBuild(path string) (*hlim.Circuit, map[string]*hlim.Node, error) {
	c, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	return Build(c)
}
