package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default completion budgets for scenarios that do not set their own.
const (
	DefaultMaxIterations = 10000
	DefaultMaxDepth      = 20
)

// Scenario defines a completion conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Protocols declares the protocol graph for the run.
	Protocols []ProtocolDecl `yaml:"protocols,omitempty"`

	// Rules are the seed rewrite rules in textual term syntax.
	Rules []SeedDecl `yaml:"rules"`

	// MaxIterations is the critical-pair insertion budget passed to
	// ComputeConfluentCompletion. Zero means DefaultMaxIterations.
	MaxIterations int `yaml:"max_iterations,omitempty"`

	// MaxDepth bounds the depth of generated rules.
	// Zero means DefaultMaxDepth.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// Expect is the expected completion result: "success",
	// "max_iterations" or "max_depth". Empty means "success".
	Expect string `yaml:"expect,omitempty"`

	// Queries are normal-form checks run after completion.
	Queries []Query `yaml:"queries,omitempty"`
}

// ProtocolDecl declares one protocol and its direct bases.
type ProtocolDecl struct {
	Name     string   `yaml:"name"`
	Inherits []string `yaml:"inherits,omitempty"`
}

// SeedDecl is one seed rule in textual term syntax.
type SeedDecl struct {
	LHS string `yaml:"lhs"`
	RHS string `yaml:"rhs"`
}

// Query asserts that a term simplifies to an expected normal form.
type Query struct {
	Term   string `yaml:"term"`
	Normal string `yaml:"normal"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Rules) == 0 {
		return fmt.Errorf("at least one seed rule is required")
	}
	switch s.Expect {
	case "", "success", "max_iterations", "max_depth":
	default:
		return fmt.Errorf("unknown expect value %q", s.Expect)
	}
	for i, rule := range s.Rules {
		if rule.LHS == "" || rule.RHS == "" {
			return fmt.Errorf("rules[%d]: lhs and rhs are required", i)
		}
	}
	for i, q := range s.Queries {
		if q.Term == "" || q.Normal == "" {
			return fmt.Errorf("queries[%d]: term and normal are required", i)
		}
	}
	return nil
}

func (s *Scenario) maxIterations() int {
	if s.MaxIterations == 0 {
		return DefaultMaxIterations
	}
	return s.MaxIterations
}

func (s *Scenario) maxDepth() int {
	if s.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return s.MaxDepth
}
