package rewrite

import (
	"fmt"
	"strings"
)

// Term is a finite ordered sequence of atoms; equivalently, a path of
// member references. Rule sides are never empty, but the zero Term is
// used transiently while assembling overlap witnesses.
type Term struct {
	atoms []Atom
}

// NewTerm builds a term from the given atoms. At least one atom is
// required.
func NewTerm(atoms ...Atom) Term {
	if len(atoms) == 0 {
		panic("rewrite: empty term")
	}
	owned := make([]Atom, len(atoms))
	copy(owned, atoms)
	return Term{atoms: owned}
}

// Len returns the number of atoms.
func (t Term) Len() int {
	return len(t.atoms)
}

// At returns the atom at position i.
func (t Term) At(i int) Atom {
	return t.atoms[i]
}

// Back returns the last atom.
func (t Term) Back() Atom {
	if len(t.atoms) == 0 {
		panic("rewrite: Back on empty term")
	}
	return t.atoms[len(t.atoms)-1]
}

// SetBack replaces the last atom in place.
func (t *Term) SetBack(a Atom) {
	if len(t.atoms) == 0 {
		panic("rewrite: SetBack on empty term")
	}
	t.atoms[len(t.atoms)-1] = a
}

// Append adds an atom at the end.
func (t *Term) Append(a Atom) {
	t.atoms = append(t.atoms, a)
}

// Clone returns a term with its own backing storage. Rewrites on the
// clone never alias the original.
func (t Term) Clone() Term {
	atoms := make([]Atom, len(t.atoms))
	copy(atoms, t.atoms)
	return Term{atoms: atoms}
}

// Equal reports structural equality.
func (t Term) Equal(other Term) bool {
	if len(t.atoms) != len(other.atoms) {
		return false
	}
	for i := range t.atoms {
		if !t.atoms[i].Equal(other.atoms[i]) {
			return false
		}
	}
	return true
}

// Compare implements the shortlex term order: shorter terms are smaller,
// equal lengths compare atoms left to right.
func (t Term) Compare(other Term, g ProtocolGraph) int {
	if len(t.atoms) != len(other.atoms) {
		if len(t.atoms) < len(other.atoms) {
			return -1
		}
		return 1
	}
	for i := range t.atoms {
		if result := t.atoms[i].Compare(other.atoms[i], g); result != 0 {
			return result
		}
	}
	return 0
}

// FindSubterm returns the position of the first occurrence of other as a
// contiguous subrange of t, or -1. A longer other never occurs.
func (t Term) FindSubterm(other Term) int {
	if other.Len() > t.Len() {
		return -1
	}
	for i := 0; i+other.Len() <= t.Len(); i++ {
		if equalRange(t.atoms[i:i+other.Len()], other.atoms) {
			return i
		}
	}
	return -1
}

func equalRange(a, b []Atom) bool {
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// RewriteSubterm replaces the first occurrence of lhs in t with rhs and
// reports whether a rewrite happened. Requires len(rhs) <= len(lhs); the
// resulting length is len(t) - len(lhs) + len(rhs).
func (t *Term) RewriteSubterm(lhs, rhs Term) bool {
	pos := t.FindSubterm(lhs)
	if pos < 0 {
		return false
	}

	if rhs.Len() > lhs.Len() {
		panic(fmt.Sprintf("rewrite: replacement longer than pattern (%d > %d)", rhs.Len(), lhs.Len()))
	}

	oldLen := len(t.atoms)
	out := t.atoms[:pos]
	out = append(out, rhs.atoms...)
	out = append(out, t.atoms[pos+lhs.Len():]...)
	t.atoms = out

	if len(t.atoms) != oldLen-lhs.Len()+rhs.Len() {
		panic("rewrite: length invariant violated after RewriteSubterm")
	}
	return true
}

// CheckForOverlap looks for an overlap between t and other and returns a
// witness term when one exists. Requires len(other) <= len(t); callers
// probe both argument orders when forming a critical pair.
//
// Two shapes count as overlaps, and they are exactly the shapes that can
// produce a critical pair between string rewrite rules:
//
//   - containment: other occurs as a contiguous subrange of t; the
//     witness is t itself.
//   - boundary overlap: a non-empty proper suffix of t equals an
//     equal-length proper prefix of other; the witness is t followed by
//     the unmatched remainder of other.
//
// Containment is checked first, sliding other across t. The boundary
// scan then shortens the matching window from the right; it starts one
// short of the full length because an equal-length match was already
// covered by the containment pass.
func (t Term) CheckForOverlap(other Term) (Term, bool) {
	n := t.Len()
	m := other.Len()
	if m > n {
		return Term{}, false
	}

	first1 := 0
	for m <= n-first1 {
		if equalRange(t.atoms[first1:first1+m], other.atoms) {
			return t.Clone(), true
		}
		first1++
	}

	last2 := m
	for first1 < n {
		last2--
		if equalRange(t.atoms[first1:], other.atoms[:last2]) {
			atoms := make([]Atom, 0, first1+m)
			atoms = append(atoms, t.atoms[:first1]...)
			atoms = append(atoms, other.atoms...)
			return Term{atoms: atoms}, true
		}
		first1++
	}

	return Term{}, false
}

// String renders the term as its atoms joined by ".".
func (t Term) String() string {
	var b strings.Builder
	for i, a := range t.atoms {
		if i > 0 {
			b.WriteByte('.')
		}
		a.write(&b)
	}
	return b.String()
}
