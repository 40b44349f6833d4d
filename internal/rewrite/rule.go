package rewrite

import "strings"

// Rule is an oriented rewrite lhs => rhs with lhs > rhs under the term
// order. Applying a rule therefore strictly decreases a term, which is
// what makes every rule set in this package terminating.
//
// A rule can be marked deleted; the flag is never cleared and deleted
// rules stay in the rule vector so worklist indices remain valid.
type Rule struct {
	lhs, rhs Term
	deleted  bool
}

// NewRule builds a rule from oriented sides. Orientation is the caller's
// responsibility; System.AddRule is the normal entry point.
func NewRule(lhs, rhs Term) Rule {
	if lhs.Len() == 0 || rhs.Len() == 0 {
		panic("rewrite: empty rule side")
	}
	return Rule{lhs: lhs, rhs: rhs}
}

// LHS returns the left-hand side.
func (r *Rule) LHS() Term {
	return r.lhs
}

// RHS returns the right-hand side.
func (r *Rule) RHS() Term {
	return r.rhs
}

// Apply rewrites the first occurrence of the rule's LHS in term with its
// RHS, reporting whether the term changed.
func (r *Rule) Apply(term *Term) bool {
	return term.RewriteSubterm(r.lhs, r.rhs)
}

// CanReduceLeftHandSide reports whether newRule's LHS occurs as a
// subterm of this rule's LHS. The completion loop retires such rules
// when a shorter generalization is added.
func (r *Rule) CanReduceLeftHandSide(newRule *Rule) bool {
	return r.lhs.FindSubterm(newRule.lhs) >= 0
}

// CheckForOverlap looks for an overlap between the two rules'
// left-hand sides. See Term.CheckForOverlap for the witness shapes.
func (r *Rule) CheckForOverlap(other *Rule) (Term, bool) {
	return r.lhs.CheckForOverlap(other.lhs)
}

// Depth is the divergence measure checked against the completion depth
// budget: the length of the longer side. Orientation guarantees the RHS
// is never longer, so this is the LHS length.
func (r *Rule) Depth() int {
	return max(r.lhs.Len(), r.rhs.Len())
}

// IsDeleted reports whether the rule has been retired.
func (r *Rule) IsDeleted() bool {
	return r.deleted
}

// MarkDeleted retires the rule. Deleted is a terminal state; there is no
// resurrection.
func (r *Rule) MarkDeleted() {
	if r.deleted {
		panic("rewrite: rule deleted twice")
	}
	r.deleted = true
}

// String renders "LHS => RHS", with " [deleted]" appended for retired
// rules. Deleted rules still render; dump consumers rely on that.
func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.lhs.String())
	b.WriteString(" => ")
	b.WriteString(r.rhs.String())
	if r.deleted {
		b.WriteString(" [deleted]")
	}
	return b.String()
}
