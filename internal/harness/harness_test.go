package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typelattice/canon/internal/rewrite"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		path := path
		t.Run(strings.TrimSuffix(filepath.Base(path), ".yaml"), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)

			for i, q := range scenario.Queries {
				assert.Equal(t, q.Normal, result.Queries[i].Normal,
					"query %d: %s", i, q.Term)
			}
		})
	}
}

func TestRun_ExpectedResultEnforced(t *testing.T) {
	scenario := &Scenario{
		Name: "wrong-expectation",
		Rules: []SeedDecl{
			{LHS: "A.B", RHS: "A"},
		},
		Expect: "max_depth",
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion returned success")
}

func TestRun_BudgetExitKeepsRules(t *testing.T) {
	scenario := &Scenario{
		Name: "depth",
		Rules: []SeedDecl{
			{LHS: "X.Y", RHS: "Z"},
			{LHS: "Y.W", RHS: "V"},
		},
		MaxDepth: 1,
		Expect:   "max_depth",
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, rewrite.CompletionMaxDepth, result.Completion)
	assert.Contains(t, result.Dump, "Z.W => X.V")
}

func TestRun_UnknownProtocolInRule(t *testing.T) {
	scenario := &Scenario{
		Name: "bad-rule",
		Rules: []SeedDecl{
			{LHS: "τ_0_0.[Nope]", RHS: "τ_0_0"},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown protocol")
}

func TestLoadScenario_Validation(t *testing.T) {
	writeScenario := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "scenario.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("missing name", func(t *testing.T) {
		_, err := LoadScenario(writeScenario(t, "rules:\n  - lhs: A.B\n    rhs: A\n"))
		assert.ErrorContains(t, err, "name is required")
	})

	t.Run("no rules", func(t *testing.T) {
		_, err := LoadScenario(writeScenario(t, "name: empty\n"))
		assert.ErrorContains(t, err, "at least one seed rule")
	})

	t.Run("bad expect", func(t *testing.T) {
		_, err := LoadScenario(writeScenario(t, "name: x\nrules:\n  - lhs: A.B\n    rhs: A\nexpect: nonsense\n"))
		assert.ErrorContains(t, err, "unknown expect value")
	})

	t.Run("incomplete query", func(t *testing.T) {
		_, err := LoadScenario(writeScenario(t, "name: x\nrules:\n  - lhs: A.B\n    rhs: A\nqueries:\n  - term: A\n"))
		assert.ErrorContains(t, err, "term and normal are required")
	})
}
