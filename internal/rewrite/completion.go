package rewrite

import (
	"fmt"
	"sort"
)

// CompletionResult is the outcome of ComputeConfluentCompletion. The two
// budget exits are normal returns, not errors: the rules produced so far
// are valid but the system may not be confluent.
type CompletionResult int

const (
	// CompletionSuccess means the worklist drained and every critical
	// pair was resolved or already joinable.
	CompletionSuccess CompletionResult = iota
	// CompletionMaxIterations means the iteration budget ran out.
	CompletionMaxIterations
	// CompletionMaxDepth means a generated rule exceeded the depth
	// bound, the usual sign of a diverging completion.
	CompletionMaxDepth
)

// String returns the result name for diagnostics.
func (r CompletionResult) String() string {
	switch r {
	case CompletionSuccess:
		return "success"
	case CompletionMaxIterations:
		return "max_iterations"
	case CompletionMaxDepth:
		return "max_depth"
	default:
		return fmt.Sprintf("CompletionResult(%d)", int(r))
	}
}

// ComputeConfluentCompletion closes the rule set under critical pairs.
//
// Pairs are drained FIFO, which biases completion toward resolving older
// overlaps first and, together with the orientation rule, makes the
// output deterministic for identical seeds and graph.
//
// maxIterations is the number of critical-pair insertions the run may
// make; the next insertion after those ends the run with
// CompletionMaxIterations, and the rule it inserted stays in the vector.
// Bridging and lifted rules from the merge queue are not counted.
// maxDepth bounds the depth of any critical-pair rule; a deeper one ends
// the run with CompletionMaxDepth.
func (s *System) ComputeConfluentCompletion(maxIterations, maxDepth int) CompletionResult {
	// Merge candidates recorded while seeding are taken up before the
	// first pair is drawn; candidates recorded later are taken up after
	// each insertion. Without this a seed-only merge would sit in the
	// queue forever when no critical pair ever inserts a rule.
	s.ProcessMergedAssociatedTypes()

	for len(s.worklist) > 0 {
		pair := s.worklist[0]
		s.worklist = s.worklist[1:]

		lhs := &s.rules[pair.i]
		rhs := &s.rules[pair.j]

		if lhs.IsDeleted() || rhs.IsDeleted() {
			continue
		}

		// The swapped pair (j, i) is also on the worklist, so the
		// longer-LHS direction is always probed eventually.
		first, ok := lhs.CheckForOverlap(rhs)
		if !ok {
			continue
		}
		if first.Len() == 0 {
			panic("rewrite: empty overlap witness")
		}

		// The witness contains lhs's pattern as a prefix or subterm and
		// ends with a suffix of rhs's pattern, so each rule applies
		// exactly once at the expected position.
		second := first.Clone()
		lhs.Apply(&first)
		rhs.Apply(&second)

		i := len(s.rules)
		if !s.AddRule(first, second) {
			continue
		}

		if maxIterations == 0 {
			return CompletionMaxIterations
		}
		maxIterations--

		newRule := &s.rules[i]
		if newRule.Depth() > maxDepth {
			return CompletionMaxDepth
		}

		// Retire every rule whose LHS the new rule reduces; the worklist
		// entries that re-derive their consequences from the new rule
		// are already enqueued.
		for j := range s.rules {
			if j == i {
				continue
			}
			rule := &s.rules[j]
			if rule.IsDeleted() {
				continue
			}
			if rule.CanReduceLeftHandSide(newRule) {
				rule.MarkDeleted()
			}
		}

		s.ProcessMergedAssociatedTypes()
	}

	// Not needed for correctness: right-hand sides are already joinable
	// with their reducts. Re-simplifying makes each live rule rewrite
	// straight to normal form in one step.
	for j := range s.rules {
		rule := &s.rules[j]
		if rule.IsDeleted() {
			continue
		}
		rhs := rule.RHS().Clone()
		s.Simplify(&rhs)
		s.rules[j] = NewRule(rule.LHS(), rhs)
	}

	// Just for aesthetics in Dump.
	sort.SliceStable(s.rules, func(a, b int) bool {
		return s.rules[a].lhs.Compare(s.rules[b].lhs, s.graph) < 0
	})

	return CompletionSuccess
}
