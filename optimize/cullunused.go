package optimize

import "github.com/synogate/gatery/hlim"

// CullUnused repeatedly deletes any node with no downstream consumers
// on any output, no side effects and no frontend reference, to a fixed
// point, using a growable work list seeded from every node (spec.md
// §4.3 "Cull-unused"). A Memory node is never culled: it has no
// outputs, and its ports reference it by id instead.
func CullUnused(c *hlim.Circuit) error {
	work := make([]hlim.NodeId, 0, len(c.Nodes()))
	for _, n := range c.Nodes() {
		work = append(work, n.Id())
	}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]

		n := c.Node(id)
		if n == nil || !isCullable(n) {
			continue
		}

		// deleting n may free up its drivers; re-queue them.
		for _, in := range n.Inputs {
			if in.Driver.Valid() {
				work = append(work, in.Driver.Node)
			}
		}
		c.Delete(n)
	}
	return nil
}

func isCullable(n *hlim.Node) bool {
	if n.HasSideEffects() || n.RefCounted() || n.Kind() == hlim.KindMemory {
		return false
	}
	for _, out := range n.Outputs {
		if len(out.Consumers) > 0 {
			return false
		}
	}
	return true
}
