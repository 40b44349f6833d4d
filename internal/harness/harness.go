package harness

import (
	"fmt"
	"strings"

	"github.com/typelattice/canon/internal/compiler"
	"github.com/typelattice/canon/internal/protograph"
	"github.com/typelattice/canon/internal/rewrite"
)

// Result captures one scenario execution.
type Result struct {
	// Completion is the completion outcome.
	Completion rewrite.CompletionResult

	// Dump is the rendered final rule set, the bit-exact external form.
	Dump string

	// Queries holds the normal form computed for each scenario query,
	// index aligned with Scenario.Queries.
	Queries []QueryResult
}

// QueryResult is the outcome of one normal-form query.
type QueryResult struct {
	Term   string
	Normal string
}

// Run executes a scenario: build the graph, parse and seed the rules,
// complete, verify the expected outcome and answer the queries.
func Run(scenario *Scenario) (*Result, error) {
	builder := protograph.NewBuilder()
	for _, p := range scenario.Protocols {
		if err := builder.Declare(p.Name, p.Inherits...); err != nil {
			return nil, err
		}
	}
	graph, err := builder.Build()
	if err != nil {
		return nil, err
	}

	seeds := make([]rewrite.SeedRule, 0, len(scenario.Rules))
	for i, rule := range scenario.Rules {
		lhs, err := compiler.ParseTerm(rule.LHS, graph)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rhs, err := compiler.ParseTerm(rule.RHS, graph)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		seeds = append(seeds, rewrite.SeedRule{LHS: lhs, RHS: rhs})
	}

	system := rewrite.NewSystem()
	system.Initialize(seeds, graph)
	completion := system.ComputeConfluentCompletion(scenario.maxIterations(), scenario.maxDepth())

	expect := scenario.Expect
	if expect == "" {
		expect = "success"
	}
	if completion.String() != expect {
		return nil, fmt.Errorf("scenario %s: completion returned %s, expected %s", scenario.Name, completion, expect)
	}

	var dump strings.Builder
	if err := system.Dump(&dump); err != nil {
		return nil, err
	}

	result := &Result{
		Completion: completion,
		Dump:       dump.String(),
	}

	for i, q := range scenario.Queries {
		term, err := compiler.ParseTerm(q.Term, graph)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		system.Simplify(&term)
		result.Queries = append(result.Queries, QueryResult{
			Term:   q.Term,
			Normal: term.String(),
		})
	}

	return result, nil
}
