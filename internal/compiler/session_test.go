package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSessionString(t *testing.T, src string) (*Session, error) {
	t.Helper()
	ctx := cuecontext.New()
	value := ctx.CompileString(src, cue.Filename("session_test.cue"))
	require.NoError(t, value.Err())
	return CompileSession(value)
}

func TestCompileSession(t *testing.T) {
	session, err := compileSessionString(t, `
protocols: {
	Sequence: {}
	Collection: {inherits: ["Sequence"]}
}
rules: [
	{lhs: "τ_0_0.[Collection]", rhs: "τ_0_0"},
	{lhs: "τ_0_0.[Collection].Element", rhs: "τ_0_0.[Sequence:Element]"},
]
`)
	require.NoError(t, err)

	require.Len(t, session.Seeds, 2)
	assert.Equal(t, "τ_0_0.[Collection]", session.Seeds[0].LHS.String())
	assert.Equal(t, "τ_0_0", session.Seeds[0].RHS.String())
	assert.Equal(t, "τ_0_0.[Collection].Element", session.SeedTexts[1].LHS)

	sequence, ok := session.Graph.Protocol("Sequence")
	require.True(t, ok)
	collection, ok := session.Graph.Protocol("Collection")
	require.True(t, ok)
	assert.True(t, session.Graph.InheritsFrom(collection, sequence))
}

func TestCompileSession_EmptyRulesAllowed(t *testing.T) {
	session, err := compileSessionString(t, `protocols: {P: {}}`)
	require.NoError(t, err)
	assert.Empty(t, session.Seeds)
}

func TestCompileSession_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
		code  string
	}{
		{
			name:  "unknown inherits target",
			src:   `protocols: {Collection: {inherits: ["Nope"]}}`,
			field: "protocols",
			code:  ErrProtocolDecl,
		},
		{
			name:  "missing lhs",
			src:   `rules: [{rhs: "A"}]`,
			field: "rules[0].lhs",
			code:  ErrRuleDecl,
		},
		{
			name:  "missing rhs",
			src:   `rules: [{lhs: "A"}]`,
			field: "rules[0].rhs",
			code:  ErrRuleDecl,
		},
		{
			name:  "unknown protocol in term",
			src:   `rules: [{lhs: "τ_0_0.[Nope]", rhs: "τ_0_0"}]`,
			field: "rules[0].lhs",
			code:  ErrRuleDecl,
		},
		{
			name:  "empty term",
			src:   `rules: [{lhs: "", rhs: "A"}]`,
			field: "rules[0].lhs",
			code:  ErrRuleDecl,
		},
		{
			name:  "rules not a list",
			src:   `rules: {lhs: "A"}`,
			field: "rules",
			code:  ErrRuleDecl,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileSessionString(t, tc.src)

			var compileErr *CompileError
			require.ErrorAs(t, err, &compileErr, "expected compile error, got %v", err)
			assert.Equal(t, tc.field, compileErr.Field)
			assert.Equal(t, tc.code, compileErr.Code)
		})
	}
}
