package hlim

import "github.com/synogate/gatery/bitvec"

// AttributeImpl is a pass-through node carrying backend metadata
// (e.g. synthesis directives) that has no simulation effect beyond
// copying its input to its output.
type AttributeImpl struct {
	baseImpl
	Attributes map[string]string
}

// NewAttribute creates an attribute pass-through node of type t.
func (c *Circuit) NewAttribute(t ConnectionType, attrs map[string]string) *Node {
	n := c.CreateNode(KindAttribute, "", 1, 1, &AttributeImpl{Attributes: attrs})
	n.ConstrainInput(0, t)
	n.Outputs[0].Type = t
	return n
}

func (a *AttributeImpl) Kind() NodeKind   { return KindAttribute }
func (a *AttributeImpl) TypeName() string { return "Attribute" }
func (a *AttributeImpl) CloneUnconnected() NodeImpl {
	cp := make(map[string]string, len(a.Attributes))
	for k, v := range a.Attributes {
		cp[k] = v
	}
	return &AttributeImpl{Attributes: cp}
}

func (a *AttributeImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	bitvec.Copy(state, outputs[0], state, inputs[0], n.Outputs[0].Type.Width)
}
