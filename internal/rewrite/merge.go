package rewrite

import "fmt"

// MergeAssociatedTypes unifies two AssociatedType atoms that share a
// name into one whose protocol set is the inheritance-minimal union of
// the inputs. Requires lhs > rhs under the atom order, which implies
// lhs carries at most as many protocols as rhs.
//
// The merged atom carries at least as many protocols as either input, so
// under the inverted cardinality order it sorts below every input that
// has fewer protocols, which makes it the orientation target for rules
// from such an input. It can also coincide with an input: [P1:T] merged
// with [P1&P2:T] gives [P1&P2:T], and [Derived:T] merged with [Base:T]
// gives [Derived:T] once inheritance drops Base.
func (s *System) MergeAssociatedTypes(lhs, rhs Atom) Atom {
	if lhs.Kind() != KindAssociatedType || rhs.Kind() != KindAssociatedType {
		panic(fmt.Sprintf("rewrite: merge of non-associated-type atoms (%s, %s)", lhs.Kind(), rhs.Kind()))
	}
	if lhs.Name() != rhs.Name() {
		panic(fmt.Sprintf("rewrite: merge of associated types with different names (%q, %q)", lhs.Name(), rhs.Name()))
	}
	if lhs.Compare(rhs, s.graph) <= 0 {
		panic("rewrite: merge requires lhs > rhs")
	}

	protos := lhs.Protocols()
	otherProtos := rhs.Protocols()

	// Follows from lhs > rhs.
	if len(protos) > len(otherProtos) {
		panic("rewrite: merge order contradicts protocol counts")
	}

	merged := mergeSortedProtocols(protos, otherProtos, s.graph)

	// Drop any protocol that something in the lhs set already implies
	// through inheritance. The union stays minimal without losing any
	// conformance the two inputs carried.
	minimal := make([]Protocol, 0, len(merged))
	for _, candidate := range merged {
		redundant := false
		for _, p := range protos {
			if p != candidate && s.graph.InheritsFrom(p, candidate) {
				redundant = true
				break
			}
		}
		if !redundant {
			minimal = append(minimal, candidate)
		}
	}

	if len(minimal) < len(protos) || len(minimal) < len(otherProtos) {
		panic("rewrite: merged protocol set shrank below an input")
	}

	return ForAssociatedType(minimal, lhs.Name())
}

// mergeSortedProtocols merges two ascending protocol lists into one,
// eliminating exact duplicates.
func mergeSortedProtocols(a, b []Protocol, g ProtocolGraph) []Protocol {
	out := make([]Protocol, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch result := g.CompareProtocols(a[i], b[j]); {
		case result < 0:
			out = append(out, a[i])
			i++
		case result > 0:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// ProcessMergedAssociatedTypes drains the merge queue. For each
// candidate pair ...[P1:T] => ...[P2:T] it adds the bridging rules
//
//	...[P1:T] => ...[P1&P2:T]
//	...[P2:T] => ...[P1&P2:T]
//
// and lifts protocol conformances across the unified atom: every live
// rule [x][Q] => [x] where x is one of the merged atoms yields
// [P1&P2:T][Q] => [P1&P2:T].
//
// AddRule may append further candidates while the queue drains; they are
// processed in the same pass. The conformance sweep iterates only the
// rules that existed when its candidate was taken up, so rules it adds
// itself are never re-examined.
func (s *System) ProcessMergedAssociatedTypes() {
	if len(s.mergedAssociatedTypes) == 0 {
		return
	}

	for i := 0; i < len(s.mergedAssociatedTypes); i++ {
		pair := s.mergedAssociatedTypes[i]
		lhs, rhs := pair.lhs, pair.rhs

		if s.DebugMerge {
			s.debugf("## Associated type merge candidate %s => %s\n", lhs, rhs)
		}

		mergedAtom := s.MergeAssociatedTypes(lhs.Back(), rhs.Back())
		if s.DebugMerge {
			s.debugf("### Merged atom %s\n", mergedAtom)
		}

		mergedTerm := lhs.Clone()
		mergedTerm.SetBack(mergedAtom)

		// Snapshot before the bridging rules land: the conformance sweep
		// below must only see rules that predate this candidate.
		ruleCount := len(s.rules)

		s.AddRule(lhs, mergedTerm)
		s.AddRule(rhs, mergedTerm)

		for j := 0; j < ruleCount; j++ {
			otherRule := &s.rules[j]
			if otherRule.IsDeleted() {
				continue
			}

			otherLHS := otherRule.LHS()
			if otherLHS.Len() != 2 || otherLHS.At(1).Kind() != KindProtocol {
				continue
			}
			x := otherLHS.At(0)
			if !x.Equal(lhs.Back()) && !x.Equal(rhs.Back()) {
				continue
			}
			otherRHS := otherRule.RHS()
			if otherRHS.Len() != 1 || !otherRHS.At(0).Equal(x) {
				continue
			}

			if s.DebugMerge {
				s.debugf("### Lifting conformance rule %s\n", otherRule)
			}

			newRHS := NewTerm(mergedAtom)
			newLHS := NewTerm(mergedAtom, ForProtocol(otherLHS.At(1).Protocol()))
			s.AddRule(newLHS, newRHS)
		}
	}

	s.mergedAssociatedTypes = s.mergedAssociatedTypes[:0]
}
