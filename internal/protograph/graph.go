package protograph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/typelattice/canon/internal/rewrite"
)

// Decl is a protocol declaration. Decls are created by Builder and act
// as the opaque protocol handles the rewrite engine passes around;
// handle identity is pointer identity.
type Decl struct {
	name     string
	inherits []*Decl // direct bases, resolved at Build time
}

// Name returns the protocol name.
func (d *Decl) Name() string {
	return d.name
}

var _ rewrite.Protocol = (*Decl)(nil)

// Builder accumulates protocol declarations. Forward references are
// allowed; inheritance targets resolve when Build runs.
type Builder struct {
	order []string
	decls map[string]*pending
}

type pending struct {
	decl     *Decl
	inherits []string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{decls: make(map[string]*pending)}
}

// Declare records a protocol and the names of its direct bases. It
// fails on a duplicate name.
func (b *Builder) Declare(name string, inherits ...string) error {
	if name == "" {
		return &GraphError{Code: ErrEmptyName, Message: "protocol name must be non-empty"}
	}
	if _, ok := b.decls[name]; ok {
		return &GraphError{Code: ErrDuplicate, Message: fmt.Sprintf("protocol %q declared twice", name)}
	}
	b.order = append(b.order, name)
	b.decls[name] = &pending{
		decl:     &Decl{name: name},
		inherits: inherits,
	}
	return nil
}

// Build resolves inheritance references, rejects cycles and unknown
// bases, and returns the finished graph.
func (b *Builder) Build() (*Graph, error) {
	for _, name := range b.order {
		p := b.decls[name]
		for _, base := range p.inherits {
			target, ok := b.decls[base]
			if !ok {
				return nil, &GraphError{Code: ErrUnknownBase, Message: fmt.Sprintf("protocol %q inherits unknown protocol %q", name, base)}
			}
			if target.decl == p.decl {
				return nil, &GraphError{Code: ErrCycle, Message: fmt.Sprintf("protocol %q inherits itself", name)}
			}
			p.decl.inherits = append(p.decl.inherits, target.decl)
		}
	}

	g := &Graph{
		byName:    make(map[string]*Decl, len(b.order)),
		index:     make(map[*Decl]int, len(b.order)),
		ancestors: make(map[*Decl]map[*Decl]bool, len(b.order)),
	}
	for _, name := range b.order {
		g.byName[name] = b.decls[name].decl
	}

	// Transitive proper ancestors, with cycle rejection on the way.
	for _, name := range b.order {
		decl := g.byName[name]
		seen := make(map[*Decl]bool)
		if err := collectAncestors(decl, decl, seen); err != nil {
			return nil, err
		}
		g.ancestors[decl] = seen
	}

	// Linearize by (depth, name). Depth is the ancestor count, so every
	// ancestor sorts before its descendants.
	decls := make([]*Decl, 0, len(b.order))
	for _, name := range b.order {
		decls = append(decls, g.byName[name])
	}
	sort.SliceStable(decls, func(i, j int) bool {
		di, dj := len(g.ancestors[decls[i]]), len(g.ancestors[decls[j]])
		if di != dj {
			return di < dj
		}
		return decls[i].name < decls[j].name
	})
	for i, decl := range decls {
		g.index[decl] = i
	}

	return g, nil
}

func collectAncestors(root, decl *Decl, seen map[*Decl]bool) error {
	for _, base := range decl.inherits {
		if base == root {
			return &GraphError{Code: ErrCycle, Message: fmt.Sprintf("inheritance cycle through protocol %q", root.name)}
		}
		if seen[base] {
			continue
		}
		seen[base] = true
		if err := collectAncestors(root, base, seen); err != nil {
			return err
		}
	}
	return nil
}

// Graph is an immutable protocol inheritance graph. It implements
// rewrite.ProtocolGraph.
type Graph struct {
	byName    map[string]*Decl
	index     map[*Decl]int
	ancestors map[*Decl]map[*Decl]bool
}

var _ rewrite.ProtocolGraph = (*Graph)(nil)

// Protocol looks up a declaration by name.
func (g *Graph) Protocol(name string) (*Decl, bool) {
	d, ok := g.byName[name]
	return d, ok
}

// Protocols returns all declarations in graph order.
func (g *Graph) Protocols() []*Decl {
	out := make([]*Decl, len(g.index))
	for d, i := range g.index {
		out[i] = d
	}
	return out
}

// CompareProtocols orders two handles by their linearized position.
// Handles from a different graph are a programming error.
func (g *Graph) CompareProtocols(p, q rewrite.Protocol) int {
	pi, ok := g.index[mustDecl(p)]
	if !ok {
		panic(fmt.Sprintf("protograph: protocol %q is not in this graph", p.Name()))
	}
	qi, ok := g.index[mustDecl(q)]
	if !ok {
		panic(fmt.Sprintf("protograph: protocol %q is not in this graph", q.Name()))
	}
	switch {
	case pi < qi:
		return -1
	case pi > qi:
		return 1
	default:
		return 0
	}
}

// InheritsFrom reports whether sub properly inherits from super,
// directly or transitively.
func (g *Graph) InheritsFrom(sub, super rewrite.Protocol) bool {
	return g.ancestors[mustDecl(sub)][mustDecl(super)]
}

func mustDecl(p rewrite.Protocol) *Decl {
	d, ok := p.(*Decl)
	if !ok {
		panic(fmt.Sprintf("protograph: foreign protocol handle %T", p))
	}
	return d
}

// Layout is an ordered opaque layout-constraint token. Constraints
// compare lexicographically, which is total and deterministic.
type Layout string

var _ rewrite.LayoutConstraint = Layout("")

// Compare implements rewrite.LayoutConstraint.
func (l Layout) Compare(other rewrite.LayoutConstraint) int {
	o, ok := other.(Layout)
	if !ok {
		panic(fmt.Sprintf("protograph: foreign layout constraint %T", other))
	}
	return strings.Compare(string(l), string(o))
}

// String returns the token text.
func (l Layout) String() string {
	return string(l)
}

// GraphError reports a malformed protocol declaration set.
type GraphError struct {
	Code    string
	Message string
}

// Graph construction error codes (E3xx).
const (
	ErrEmptyName   = "E301" // empty protocol name
	ErrDuplicate   = "E302" // duplicate declaration
	ErrUnknownBase = "E303" // inherits target not declared
	ErrCycle       = "E304" // inheritance cycle
)

// Error implements the error interface.
func (e *GraphError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
