package optimize

import "github.com/synogate/gatery/hlim"

// EnsureSignalNodePlacement inserts a Signal node on every input edge
// whose driver is a non-signal node outside a special-function-unit
// group, deduplicating by driver so two inputs sharing one driver get
// one signal between them (spec.md §4.3 "signal node placement";
// grounded on original_source/.../Circuit.cpp's
// ensureSignalNodePlacement, whose comment notes several export
// backends still expect an explicit named wire between two operator
// nodes even after every optimizer pass has run).
func EnsureSignalNodePlacement(c *hlim.Circuit) error {
	added := map[hlim.NodePort]*hlim.Node{}

	for _, n := range c.Nodes() {
		if n.Kind() == hlim.KindSignal {
			continue
		}
		for i := range n.Inputs {
			driver := n.Inputs[i].Driver
			if !driver.Valid() {
				continue
			}
			if n.Inputs[i].Type.Kind == hlim.Dependency {
				continue
			}
			driverNode := c.Node(driver.Node)
			if driverNode == nil || driverNode.Kind() == hlim.KindSignal {
				continue
			}
			if g := driverNode.Group(); g != nil && g.Kind() == hlim.SFU {
				continue
			}

			sig, ok := added[driver]
			if !ok {
				sig = c.NewSignal("", driverNode.Outputs[driver.Port].Type)
				if g := driverNode.Group(); g != nil {
					g.MoveNode(sig)
				}
				if err := c.ConnectInput(sig, 0, driver); err != nil {
					return err
				}
				added[driver] = sig
			}
			if err := c.ConnectInput(n, i, hlim.NodePort{Node: sig.Id(), Port: 0}); err != nil {
				return err
			}
		}
	}
	return nil
}
