package rewrite_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typelattice/canon/internal/rewrite"
	"github.com/typelattice/canon/internal/testutil"
)

// newNameSystem seeds a system over Name atoms with an empty protocol
// graph.
func newNameSystem(t *testing.T, seeds ...rewrite.SeedRule) *rewrite.System {
	t.Helper()
	system := rewrite.NewSystem()
	system.Initialize(seeds, testutil.FlatGraph(t))
	return system
}

func seed(lhs, rhs rewrite.Term) rewrite.SeedRule {
	return rewrite.SeedRule{LHS: lhs, RHS: rhs}
}

func dump(t *testing.T, system *rewrite.System) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, system.Dump(&b))
	return b.String()
}

func TestAddRule_OrientsTowardSmallerSide(t *testing.T) {
	system := newNameSystem(t)

	// Given backwards, the rule comes out oriented.
	assert.True(t, system.AddRule(names("A"), names("A", "B")))

	rules := system.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "A.B => A", rules[0].String())
}

func TestAddRule_JoinableSidesNotInserted(t *testing.T) {
	system := newNameSystem(t, seed(names("A", "B"), names("A")))

	// A.B and A both normalize to A: trivially joinable, not an error.
	assert.False(t, system.AddRule(names("A", "B"), names("A")))
	assert.Len(t, system.Rules(), 1)
}

func TestAddRule_PreSimplifiesBothSides(t *testing.T) {
	system := newNameSystem(t, seed(names("X", "Y"), names("Z")))

	// A.X.Y reduces to A.Z before insertion.
	require.True(t, system.AddRule(names("A", "X", "Y"), names("B")))

	rules := system.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "A.Z => B", rules[1].String())
}

func TestAddRule_EmptySidePanics(t *testing.T) {
	system := newNameSystem(t)
	assert.Panics(t, func() { system.AddRule(rewrite.Term{}, names("A")) })
}

func TestSimplify_FixedPointAndIdempotence(t *testing.T) {
	system := newNameSystem(t,
		seed(names("A", "B"), names("A")),
		seed(names("A", "A"), names("A")),
	)

	term := names("A", "B", "B", "A")
	changed := system.Simplify(&term)
	require.True(t, changed)
	first := term.String()

	// Normalization is a fixed point: a second pass changes nothing.
	assert.False(t, system.Simplify(&term))
	assert.Equal(t, first, term.String())
	assert.Equal(t, "A", term.String())
}

func TestSimplify_UnchangedTerm(t *testing.T) {
	system := newNameSystem(t, seed(names("A", "B"), names("A")))

	term := names("C", "D")
	assert.False(t, system.Simplify(&term))
	assert.True(t, term.Equal(names("C", "D")))
}

func TestInitialize_SeedOrderInsensitive(t *testing.T) {
	seeds := []rewrite.SeedRule{
		seed(names("X", "Y"), names("Z")),
		seed(names("Y", "W"), names("V")),
		seed(names("A", "B"), names("A")),
	}
	reversed := []rewrite.SeedRule{seeds[2], seeds[1], seeds[0]}

	run := func(s []rewrite.SeedRule) string {
		system := rewrite.NewSystem()
		system.Initialize(s, testutil.FlatGraph(t))
		require.Equal(t, rewrite.CompletionSuccess, system.ComputeConfluentCompletion(100, 10))
		return dump(t, system)
	}

	assert.Equal(t, run(seeds), run(reversed))
}

func TestDump_Format(t *testing.T) {
	system := newNameSystem(t,
		seed(names("A", "B"), names("A")),
		seed(names("C", "D"), names("C")),
	)

	want := "Rewrite system: {\n" +
		"- A.B => A\n" +
		"- C.D => C\n" +
		"}\n"
	assert.Equal(t, want, dump(t, system))
}

func TestDump_PropagatesSinkFailure(t *testing.T) {
	system := newNameSystem(t, seed(names("A", "B"), names("A")))

	err := system.Dump(&failingWriter{})
	assert.Error(t, err)
}

type failingWriter struct{}

func (w *failingWriter) Write(p []byte) (int, error) {
	return 0, assert.AnError
}

func TestRules_SnapshotIsStable(t *testing.T) {
	system := newNameSystem(t, seed(names("A", "B"), names("A")))

	snapshot := system.Rules()
	system.AddRule(names("C", "D"), names("C"))

	assert.Len(t, snapshot, 1)
	assert.Len(t, system.Rules(), 2)
}
