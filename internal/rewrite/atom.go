package rewrite

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Protocol is an opaque handle to a protocol declaration. Handles are
// compared for identity; ordering and inheritance queries go through a
// ProtocolGraph.
type Protocol interface {
	Name() string
}

// LayoutConstraint is an opaque layout-constraint value with its own
// total order.
type LayoutConstraint interface {
	// Compare returns -1, 0 or +1. Implementations may panic when handed
	// a constraint of a foreign concrete type.
	Compare(other LayoutConstraint) int
	String() string
}

// ProtocolGraph supplies the protocol order and inheritance relation the
// engine depends on. The graph must not be mutated between Initialize and
// the end of ComputeConfluentCompletion.
type ProtocolGraph interface {
	// CompareProtocols is a total order over protocol handles that
	// respects inheritance: ancestors compare smaller.
	CompareProtocols(p, q Protocol) int

	// InheritsFrom reports whether sub properly inherits from super.
	// Only the associated-type merge consults it.
	InheritsFrom(sub, super Protocol) bool
}

// Kind identifies an atom variant. The declaration order is the first key
// of the atom total order and must not be rearranged.
type Kind int

const (
	KindName Kind = iota + 1
	KindProtocol
	KindAssociatedType
	KindGenericParam
	KindLayout
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindName:
		return "Name"
	case KindProtocol:
		return "Protocol"
	case KindAssociatedType:
		return "AssociatedType"
	case KindGenericParam:
		return "GenericParam"
	case KindLayout:
		return "Layout"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Atom is an indivisible symbol in the rewriting alphabet. Atoms are
// immutable value objects with structural equality; exactly one variant
// is populated, selected by Kind.
//
// Accessing an accessor for the wrong variant is a programming error and
// panics.
type Atom struct {
	kind Kind

	// name is set for KindName and KindAssociatedType.
	name string

	// proto is set for KindProtocol.
	proto Protocol

	// protos is set for KindAssociatedType: a non-empty list of distinct
	// protocols sorted ascending by the graph's protocol order.
	protos []Protocol

	// depth and index are set for KindGenericParam.
	depth int
	index int

	// layout is set for KindLayout.
	layout LayoutConstraint
}

// ForName returns a Name atom. The identifier is NFC-normalized at this
// construction boundary.
func ForName(name string) Atom {
	if name == "" {
		panic("rewrite: empty identifier for Name atom")
	}
	return Atom{kind: KindName, name: norm.NFC.String(name)}
}

// ForProtocol returns a Protocol atom.
func ForProtocol(p Protocol) Atom {
	if p == nil {
		panic("rewrite: nil protocol handle")
	}
	return Atom{kind: KindProtocol, proto: p}
}

// ForAssociatedType returns an AssociatedType atom. The protocol list
// must be non-empty, de-duplicated and already sorted ascending by the
// graph's protocol order. The list is copied; the identifier is
// NFC-normalized.
func ForAssociatedType(protos []Protocol, name string) Atom {
	if len(protos) == 0 {
		panic("rewrite: associated type requires at least one protocol")
	}
	if name == "" {
		panic("rewrite: empty identifier for AssociatedType atom")
	}
	owned := make([]Protocol, len(protos))
	copy(owned, protos)
	return Atom{kind: KindAssociatedType, protos: owned, name: norm.NFC.String(name)}
}

// ForGenericParam returns a GenericParam atom. Both coordinates must be
// non-negative.
func ForGenericParam(depth, index int) Atom {
	if depth < 0 || index < 0 {
		panic(fmt.Sprintf("rewrite: negative generic parameter coordinates (%d, %d)", depth, index))
	}
	return Atom{kind: KindGenericParam, depth: depth, index: index}
}

// ForLayout returns a Layout atom.
func ForLayout(c LayoutConstraint) Atom {
	if c == nil {
		panic("rewrite: nil layout constraint")
	}
	return Atom{kind: KindLayout, layout: c}
}

// Kind returns the variant tag.
func (a Atom) Kind() Kind {
	return a.kind
}

func (a Atom) mustBe(kinds ...Kind) {
	for _, k := range kinds {
		if a.kind == k {
			return
		}
	}
	panic(fmt.Sprintf("rewrite: kind mismatch: atom is %s", a.kind))
}

// Name returns the identifier of a Name or AssociatedType atom.
func (a Atom) Name() string {
	a.mustBe(KindName, KindAssociatedType)
	return a.name
}

// Protocol returns the handle of a Protocol atom.
func (a Atom) Protocol() Protocol {
	a.mustBe(KindProtocol)
	return a.proto
}

// Protocols returns the protocol list of an AssociatedType atom. The
// caller must not mutate the returned slice.
func (a Atom) Protocols() []Protocol {
	a.mustBe(KindAssociatedType)
	return a.protos
}

// GenericParam returns the (depth, index) coordinates of a GenericParam
// atom.
func (a Atom) GenericParam() (depth, index int) {
	a.mustBe(KindGenericParam)
	return a.depth, a.index
}

// Layout returns the constraint of a Layout atom.
func (a Atom) Layout() LayoutConstraint {
	a.mustBe(KindLayout)
	return a.layout
}

// Equal reports structural equality.
func (a Atom) Equal(b Atom) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindName:
		return a.name == b.name
	case KindProtocol:
		return a.proto == b.proto
	case KindAssociatedType:
		if a.name != b.name || len(a.protos) != len(b.protos) {
			return false
		}
		for i := range a.protos {
			if a.protos[i] != b.protos[i] {
				return false
			}
		}
		return true
	case KindGenericParam:
		return a.depth == b.depth && a.index == b.index
	case KindLayout:
		return a.layout.Compare(b.layout) == 0
	default:
		panic(fmt.Sprintf("rewrite: bad atom kind %d", int(a.kind)))
	}
}

// Compare implements the atom total order: kinds first, then a
// per-variant comparison.
//
// CRITICAL: among AssociatedType atoms, a larger protocol set sorts
// SMALLER. The associated-type merge relies on this to orient rules
// toward the merged atom.
func (a Atom) Compare(b Atom, g ProtocolGraph) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}

	switch a.kind {
	case KindName:
		return strings.Compare(a.name, b.name)

	case KindProtocol:
		return g.CompareProtocols(a.proto, b.proto)

	case KindAssociatedType:
		if len(a.protos) != len(b.protos) {
			if len(a.protos) > len(b.protos) {
				return -1
			}
			return 1
		}
		for i := range a.protos {
			if result := g.CompareProtocols(a.protos[i], b.protos[i]); result != 0 {
				return result
			}
		}
		return strings.Compare(a.name, b.name)

	case KindGenericParam:
		if a.depth != b.depth {
			if a.depth < b.depth {
				return -1
			}
			return 1
		}
		if a.index != b.index {
			if a.index < b.index {
				return -1
			}
			return 1
		}
		return 0

	case KindLayout:
		return a.layout.Compare(b.layout)

	default:
		panic(fmt.Sprintf("rewrite: bad atom kind %d", int(a.kind)))
	}
}

// String renders the atom in the stable textual form: a Name bare, a
// protocol as [P], an associated type as [P1&P2:name], a generic
// parameter as τ_depth_index and a layout as [layout: ...].
func (a Atom) String() string {
	var b strings.Builder
	a.write(&b)
	return b.String()
}

func (a Atom) write(b *strings.Builder) {
	switch a.kind {
	case KindName:
		b.WriteString(a.name)

	case KindProtocol:
		b.WriteByte('[')
		b.WriteString(a.proto.Name())
		b.WriteByte(']')

	case KindAssociatedType:
		b.WriteByte('[')
		for i, p := range a.protos {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(p.Name())
		}
		b.WriteByte(':')
		b.WriteString(a.name)
		b.WriteByte(']')

	case KindGenericParam:
		fmt.Fprintf(b, "τ_%d_%d", a.depth, a.index)

	case KindLayout:
		b.WriteString("[layout: ")
		b.WriteString(a.layout.String())
		b.WriteByte(']')

	default:
		panic(fmt.Sprintf("rewrite: bad atom kind %d", int(a.kind)))
	}
}
