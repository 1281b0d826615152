package optimize

import "github.com/synogate/gatery/hlim"

// CullUnnamedSignals removes a signal (identity passthrough) node when
// it can't possibly be carrying meaning of its own: its driver is
// itself a signal, it is unconnected, or every one of its consumers is
// itself a signal. Named or ref-counted signals are never touched —
// they carry debug/export names a later export stage needs (spec.md
// §4.3 "Cull-unnamed-signals").
func CullUnnamedSignals(c *hlim.Circuit) error {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindSignal || n.RefCounted() || n.Name() != "" {
			continue
		}
		if !deletableSignal(c, n) {
			continue
		}
		if err := c.BypassOutputToInput(n, 0, 0); err != nil {
			return err
		}
		if len(n.Outputs[0].Consumers) == 0 {
			c.Delete(n)
		}
	}
	return nil
}

func deletableSignal(c *hlim.Circuit, n *hlim.Node) bool {
	driver := n.Inputs[0].Driver
	if !driver.Valid() {
		return true
	}
	if driverNode := c.Node(driver.Node); driverNode != nil && driverNode.Kind() == hlim.KindSignal {
		return true
	}
	for _, cons := range n.Outputs[0].Consumers {
		consNode := c.Node(cons.Node)
		if consNode == nil || consNode.Kind() != hlim.KindSignal {
			return false
		}
	}
	return len(n.Outputs[0].Consumers) > 0
}
