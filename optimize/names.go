package optimize

import (
	"fmt"

	"github.com/synogate/gatery/hlim"
)

// InferSignalNames proposes a debug name for every still-unnamed Signal
// node, walking back through a chain of other unnamed signals to the
// first named or non-signal driver and naming the whole chain from
// there (spec.md §4.3 "infer signal names"; grounded on
// original_source/.../Circuit.cpp's inferSignalNames, including its
// "loop" name for a signal chain that cycles back on itself).
func InferSignalNames(c *hlim.Circuit) error {
	pending := map[hlim.NodeId]*hlim.Node{}
	for _, n := range c.Nodes() {
		if n.Kind() == hlim.KindSignal && n.Name() == "" {
			pending[n.Id()] = n
		}
	}

	for len(pending) > 0 {
		var start *hlim.Node
		for _, n := range pending {
			start = n
			break
		}

		chain := []*hlim.Node{start}
		seen := map[hlim.NodeId]bool{start.Id(): true}
		cur := start
		for {
			driver := cur.Inputs[0].Driver
			if !driver.Valid() {
				break
			}
			dn := c.Node(driver.Node)
			if dn == nil || dn.Kind() != hlim.KindSignal {
				break
			}
			if seen[dn.Id()] {
				dn.SetName("loop")
				break
			}
			if dn.Name() != "" {
				break
			}
			chain = append(chain, dn)
			seen[dn.Id()] = true
			cur = dn
		}

		for i := len(chain) - 1; i >= 0; i-- {
			s := chain[i]
			if s.Name() == "" {
				driver := s.Inputs[0].Driver
				if driver.Valid() {
					if dn := c.Node(driver.Node); dn != nil {
						name := dn.Impl.InferOutputName(dn, driver.Port)
						if name == "" {
							name = dn.Impl.TypeName()
						}
						s.SetName(name)
					}
				} else {
					s.SetName("undefined")
				}
			}
			delete(pending, s.Id())
		}
	}
	return nil
}

// InferGroupInstanceNames recursively assigns each NodeGroup a
// disambiguated instance name: its own name, suffixed with a sibling
// index when more than one child of the same parent shares that name
// (spec.md §4.3 "infer group instance names"; grounded on
// original_source/.../NodeGroup.cpp's constructor-time instance-naming
// logic, here run as a post-pass over the whole tree instead of at
// each group's creation so a pass that renames groups, e.g. memory
// detection, is still reflected in the final instance names).
func InferGroupInstanceNames(c *hlim.Circuit) error {
	root := c.RootGroup()
	if root.InstanceName() == "" {
		root.SetInstanceName(root.Name())
	}
	assignInstanceNames(root)
	return nil
}

func assignInstanceNames(g *hlim.NodeGroup) {
	counts := map[string]int{}
	for _, child := range g.Children() {
		idx := counts[child.Name()]
		counts[child.Name()]++
		if idx == 0 {
			child.SetInstanceName(child.Name())
		} else {
			child.SetInstanceName(fmt.Sprintf("%s%d", child.Name(), idx))
		}
		assignInstanceNames(child)
	}
}
