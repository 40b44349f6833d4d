package rewrite

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// SeedRule is an unoriented rewrite pair supplied by the caller, derived
// from the requirements of a generic signature.
type SeedRule struct {
	LHS Term
	RHS Term
}

// rulePair cross-references two rules by index for critical-pair
// generation. Indices stay valid because the rule vector is append-only.
type rulePair struct {
	i, j int
}

// termPair records an associated-type merge candidate detected by
// AddRule.
type termPair struct {
	lhs, rhs Term
}

// System owns the rewrite rules and drives simplification, insertion and
// completion. All state lives inside the instance; completion is
// strictly single-threaded.
type System struct {
	// graph is read-only for the lifetime of a run.
	graph ProtocolGraph

	// rules is append-only during completion. Entries may be flagged
	// deleted but are never physically removed; compaction would
	// invalidate worklist indices.
	rules []Rule

	// worklist holds unordered index pairs pending critical-pair
	// generation, drained FIFO. Duplicate pairs are tolerated; the
	// overlap check is cheap enough that a set is not worth the
	// bookkeeping.
	worklist []rulePair

	// mergedAssociatedTypes queues rule pairs whose sides differ only in
	// a final AssociatedType atom with a common name.
	mergedAssociatedTypes []termPair

	// Debug flags toggle trace emission to DebugWriter. They do not
	// affect the rule set.
	DebugAdd      bool
	DebugSimplify bool
	DebugMerge    bool

	// DebugWriter receives debug traces; defaults to os.Stderr.
	DebugWriter io.Writer
}

// NewSystem returns an empty system. Call Initialize before anything
// else.
func NewSystem() *System {
	return &System{}
}

func (s *System) debugf(format string, args ...any) {
	w := s.DebugWriter
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}

// Initialize adopts the protocol graph and inserts the seed rules. Seeds
// are sorted by left-hand side first; completion does not depend on the
// order, but sorting keeps the insertion sequence identical across runs
// regardless of how the caller assembled the seeds.
func (s *System) Initialize(seeds []SeedRule, graph ProtocolGraph) {
	if graph == nil {
		panic("rewrite: nil protocol graph")
	}
	s.graph = graph

	sorted := make([]SeedRule, len(seeds))
	copy(sorted, seeds)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].LHS.Compare(sorted[b].LHS, graph) < 0
	})

	for _, seed := range sorted {
		s.AddRule(seed.LHS, seed.RHS)
	}
}

// Graph returns the protocol graph adopted by Initialize.
func (s *System) Graph() ProtocolGraph {
	return s.graph
}

// Rules returns a snapshot of the rule vector, deleted entries included.
// The system retains ownership of the live rules; the snapshot is safe
// to hold across later mutations.
func (s *System) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Simplify reduces term to normal form against the current rule set and
// reports whether the term changed. Each pass attempts every live rule
// once, in rule-vector order (insertion order until completion sorts the
// vector by LHS), and another pass follows any pass that rewrote the
// term; the loop terminates because every rewrite strictly decreases the
// term under the well-founded term order.
//
// After a successful completion this computes the unique normal form.
func (s *System) Simplify(term *Term) bool {
	changed := false

	if s.DebugSimplify {
		s.debugf("= Term %s\n", term)
	}

	for {
		tryAgain := false
		for i := range s.rules {
			rule := &s.rules[i]
			if rule.IsDeleted() {
				continue
			}

			if s.DebugSimplify {
				s.debugf("== Rule %s\n", rule)
			}

			if rule.Apply(term) {
				if s.DebugSimplify {
					s.debugf("=== Result %s\n", term)
				}
				changed = true
				tryAgain = true
			}
		}
		if !tryAgain {
			break
		}
	}

	return changed
}

// AddRule simplifies both sides, orients them and inserts the resulting
// rule. It returns false without inserting when the sides reduce to the
// same term; that is the normal signal that a critical pair was already
// joinable, not an error.
//
// Insertion enqueues the new rule against every existing rule in both
// orders, and records an associated-type merge candidate when the sides
// are the same length and differ only in a final AssociatedType atom
// sharing a name.
func (s *System) AddRule(lhs, rhs Term) bool {
	if lhs.Len() == 0 || rhs.Len() == 0 {
		panic("rewrite: empty rule side")
	}

	// Both sides get private storage so in-place simplification cannot
	// alias terms held by rules or the merge queue.
	lhs = lhs.Clone()
	rhs = rhs.Clone()

	s.Simplify(&lhs)
	s.Simplify(&rhs)

	result := lhs.Compare(rhs, s.graph)
	if result == 0 {
		return false
	}
	if result < 0 {
		lhs, rhs = rhs, lhs
	}

	if s.DebugAdd {
		s.debugf("# Adding rule %s => %s\n", lhs, rhs)
	}

	i := len(s.rules)
	s.rules = append(s.rules, NewRule(lhs, rhs))

	if lhs.Len() == rhs.Len() &&
		equalRange(lhs.atoms[:lhs.Len()-1], rhs.atoms[:rhs.Len()-1]) &&
		lhs.Back().Kind() == KindAssociatedType &&
		rhs.Back().Kind() == KindAssociatedType &&
		lhs.Back().Name() == rhs.Back().Name() {
		s.mergedAssociatedTypes = append(s.mergedAssociatedTypes, termPair{lhs: lhs, rhs: rhs})
	}

	for j := range s.rules {
		if i == j {
			continue
		}
		s.worklist = append(s.worklist, rulePair{i, j}, rulePair{j, i})
	}

	return true
}

// Dump renders the rule set in the stable textual form:
//
//	Rewrite system: {
//	- LHS => RHS
//	- LHS => RHS [deleted]
//	}
//
// Sink failures propagate to the caller unchanged.
func (s *System) Dump(w io.Writer) error {
	if _, err := io.WriteString(w, "Rewrite system: {\n"); err != nil {
		return err
	}
	for i := range s.rules {
		if _, err := fmt.Fprintf(w, "- %s\n", s.rules[i].String()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}
