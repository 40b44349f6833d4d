package testutil

import (
	"testing"

	"github.com/typelattice/canon/internal/protograph"
)

// ProtocolDecl pairs a protocol name with its direct bases for graph
// fixtures.
type ProtocolDecl struct {
	Name     string
	Inherits []string
}

// Graph builds a protocol graph fixture, failing the test on malformed
// declarations.
func Graph(t *testing.T, decls ...ProtocolDecl) *protograph.Graph {
	t.Helper()

	builder := protograph.NewBuilder()
	for _, d := range decls {
		if err := builder.Declare(d.Name, d.Inherits...); err != nil {
			t.Fatalf("declaring protocol %s: %v", d.Name, err)
		}
	}
	g, err := builder.Build()
	if err != nil {
		t.Fatalf("building protocol graph: %v", err)
	}
	return g
}

// FlatGraph builds a graph of unrelated protocols.
func FlatGraph(t *testing.T, names ...string) *protograph.Graph {
	t.Helper()

	decls := make([]ProtocolDecl, len(names))
	for i, name := range names {
		decls[i] = ProtocolDecl{Name: name}
	}
	return Graph(t, decls...)
}
