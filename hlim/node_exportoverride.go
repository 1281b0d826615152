package hlim

import "github.com/synogate/gatery/bitvec"

// ExportOverrideImpl is a dual-driver node: input 0 is consumed by the
// simulator, input 1 is consumed by the exporter. Exactly one output,
// whose value at simulation time always follows input 0 (spec.md
// GLOSSARY "Export-override node"). subnet.AllForSimulation follows
// input 0; subnet.AllForExport follows input 1.
type ExportOverrideImpl struct {
	baseImpl
}

const (
	ExportOverrideSimInput    = 0
	ExportOverrideExportInput = 1
)

// NewExportOverride creates an export-override node of type t.
func (c *Circuit) NewExportOverride(t ConnectionType) *Node {
	n := c.CreateNode(KindExportOverride, "", 2, 1, &ExportOverrideImpl{})
	n.ConstrainInput(ExportOverrideSimInput, t)
	n.ConstrainInput(ExportOverrideExportInput, t)
	n.Outputs[0].Type = t
	return n
}

func (e *ExportOverrideImpl) Kind() NodeKind   { return KindExportOverride }
func (e *ExportOverrideImpl) TypeName() string { return "ExportOverride" }
func (e *ExportOverrideImpl) CloneUnconnected() NodeImpl { return &ExportOverrideImpl{} }

func (e *ExportOverrideImpl) Evaluate(n *Node, state *bitvec.State, internal, inputs, outputs []int) {
	width := n.Outputs[0].Type.Width
	bitvec.Copy(state, outputs[0], state, inputs[ExportOverrideSimInput], width)
}
