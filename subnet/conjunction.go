package subnet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/synogate/gatery/hlim"
)

// Literal is one term of a Conjunction: a condition node, optionally
// negated.
type Literal struct {
	Node     hlim.NodeId
	Negated  bool
}

// Conjunction is a normalized AND-of-literals, the representation the
// optimizer's mux-merging and enable-folding passes use to reason
// about when two conditions can be combined or are mutually exclusive
// (spec.md §4.2 "Conjunction: a normalized AND-of-literals
// representation of a condition, used to merge or compare guard
// expressions without re-deriving them from the graph each time").
//
// Terms are kept sorted by Node id and de-duplicated so that two
// logically identical conjunctions compare equal term-by-term.
type Conjunction struct {
	terms []Literal
}

// NewConjunction builds a normalized Conjunction from literals,
// sorting and folding duplicates; if the same node appears both
// negated and non-negated, the conjunction is unsatisfiable and ok is
// false.
func NewConjunction(literals ...Literal) (c Conjunction, ok bool) {
	byNode := map[hlim.NodeId]bool{}
	for _, l := range literals {
		if seen, present := byNode[l.Node]; present {
			if seen != l.Negated {
				return Conjunction{}, false
			}
			continue
		}
		byNode[l.Node] = l.Negated
	}
	terms := make([]Literal, 0, len(byNode))
	for node, neg := range byNode {
		terms = append(terms, Literal{Node: node, Negated: neg})
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Node < terms[j].Node })
	return Conjunction{terms: terms}, true
}

// Terms returns the conjunction's normalized literals.
func (c Conjunction) Terms() []Literal { return c.terms }

// IsEmpty reports whether c is the trivially-true empty conjunction.
func (c Conjunction) IsEmpty() bool { return len(c.terms) == 0 }

// IsEqualTo reports whether c and other are the same set of literals.
func (c Conjunction) IsEqualTo(other Conjunction) bool {
	if len(c.terms) != len(other.terms) {
		return false
	}
	for i := range c.terms {
		if c.terms[i] != other.terms[i] {
			return false
		}
	}
	return true
}

// IsNegationOf reports whether other is exactly c with every literal's
// polarity flipped (used to detect mux branches guarded by a signal
// and its complement, a canonicalization target of spec.md §4.3's
// "selector-negation canonicalization").
func (c Conjunction) IsNegationOf(other Conjunction) bool {
	if len(c.terms) != len(other.terms) {
		return false
	}
	for i := range c.terms {
		if c.terms[i].Node != other.terms[i].Node || c.terms[i].Negated == other.terms[i].Negated {
			return false
		}
	}
	return true
}

// IsSubsetOf reports whether every literal of c also appears in other
// with the same polarity, i.e. other implies c.
func (c Conjunction) IsSubsetOf(other Conjunction) bool {
	otherSet := map[Literal]bool{}
	for _, l := range other.terms {
		otherSet[l] = true
	}
	for _, l := range c.terms {
		if !otherSet[l] {
			return false
		}
	}
	return true
}

// CannotBothBeTrue reports whether c and other share a node with
// opposite polarity, making their conjunction unsatisfiable.
func (c Conjunction) CannotBothBeTrue(other Conjunction) bool {
	byNode := map[hlim.NodeId]bool{}
	for _, l := range c.terms {
		byNode[l.Node] = l.Negated
	}
	for _, l := range other.terms {
		if neg, present := byNode[l.Node]; present && neg != l.Negated {
			return true
		}
	}
	return false
}

// IntersectTermsWith returns the literals common to both conjunctions
// (same node, same polarity).
func (c Conjunction) IntersectTermsWith(other Conjunction) []Literal {
	otherSet := map[Literal]bool{}
	for _, l := range other.terms {
		otherSet[l] = true
	}
	var out []Literal
	for _, l := range c.terms {
		if otherSet[l] {
			out = append(out, l)
		}
	}
	return out
}

// RemoveTerms returns a copy of c with any literal on one of the given
// nodes dropped, regardless of polarity.
func (c Conjunction) RemoveTerms(nodes ...hlim.NodeId) Conjunction {
	drop := map[hlim.NodeId]bool{}
	for _, n := range nodes {
		drop[n] = true
	}
	out := make([]Literal, 0, len(c.terms))
	for _, l := range c.terms {
		if !drop[l.Node] {
			out = append(out, l)
		}
	}
	return Conjunction{terms: out}
}

// Build derives the Conjunction guarding a priority-conditional branch
// by walking backward from its condition input through any chain of
// KindLogic AND nodes, collapsing `a && b && c` (however it was built
// up, with operands in any order) into a flat literal list. A NOT gate
// feeding into the chain negates the literal for its operand instead
// of becoming a term itself. Non-AND/NOT structure (anything else
// driving a branch condition, e.g. a compare or a mux output) becomes
// a single opaque literal rooted at that node.
func Build(c *hlim.Circuit, condition hlim.NodePort) (Conjunction, bool) {
	var literals []Literal
	var walk func(port hlim.NodePort, negate bool) bool
	walk = func(port hlim.NodePort, negate bool) bool {
		n := c.Node(port.Node)
		if n == nil {
			return false
		}
		switch impl := n.Impl.(type) {
		case *hlim.LogicImpl:
			if impl.Op == hlim.OpNot {
				return walk(n.Inputs[0].Driver, !negate)
			}
			if impl.Op == hlim.OpAnd && !negate {
				return walk(n.Inputs[0].Driver, false) && walk(n.Inputs[1].Driver, false)
			}
		}
		literals = append(literals, Literal{Node: port.Node, Negated: negate})
		return true
	}
	if !walk(condition, false) {
		return Conjunction{}, false
	}
	return NewConjunction(literals...)
}

// String renders c as e.g. "n3 & !n7 & n12", for diagnostics.
func (c Conjunction) String() string {
	if len(c.terms) == 0 {
		return "true"
	}
	parts := make([]string, len(c.terms))
	for i, l := range c.terms {
		if l.Negated {
			parts[i] = fmt.Sprintf("!n%d", l.Node)
		} else {
			parts[i] = fmt.Sprintf("n%d", l.Node)
		}
	}
	return strings.Join(parts, " & ")
}
