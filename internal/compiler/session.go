package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/typelattice/canon/internal/protograph"
	"github.com/typelattice/canon/internal/rewrite"
)

// Session is a compiled rewriting session: the protocol graph and the
// seed rules to complete over it.
type Session struct {
	Graph *protograph.Graph
	Seeds []rewrite.SeedRule

	// SeedTexts preserves the source spelling of each seed, index
	// aligned with Seeds. Diagnostics only.
	SeedTexts []SeedText
}

// SeedText is the source spelling of one seed rule.
type SeedText struct {
	LHS string
	RHS string
}

// CompileSession parses a CUE session value into a Session. The value
// is the session struct itself (the fields "protocols" and "rules").
func CompileSession(v cue.Value) (*Session, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "session", Code: ErrSessionInvalid, Message: err.Error(), Pos: v.Pos()}
	}

	graph, err := compileProtocols(v)
	if err != nil {
		return nil, err
	}

	session := &Session{Graph: graph}
	if err := compileRules(v, session); err != nil {
		return nil, err
	}
	return session, nil
}

func compileProtocols(v cue.Value) (*protograph.Graph, error) {
	builder := protograph.NewBuilder()

	protosVal := v.LookupPath(cue.ParsePath("protocols"))
	if protosVal.Exists() {
		iter, err := protosVal.Fields()
		if err != nil {
			return nil, &CompileError{Field: "protocols", Code: ErrProtocolDecl, Message: err.Error(), Pos: protosVal.Pos()}
		}
		for iter.Next() {
			name := iter.Label()
			inherits, err := stringList(iter.Value().LookupPath(cue.ParsePath("inherits")))
			if err != nil {
				return nil, &CompileError{
					Field:   fmt.Sprintf("protocols.%s.inherits", name),
					Code:    ErrProtocolDecl,
					Message: err.Error(),
					Pos:     iter.Value().Pos(),
				}
			}
			if err := builder.Declare(name, inherits...); err != nil {
				return nil, &CompileError{
					Field:   fmt.Sprintf("protocols.%s", name),
					Code:    ErrProtocolDecl,
					Message: err.Error(),
					Pos:     iter.Value().Pos(),
				}
			}
		}
	}

	graph, err := builder.Build()
	if err != nil {
		return nil, &CompileError{Field: "protocols", Code: ErrProtocolDecl, Message: err.Error(), Pos: protosVal.Pos()}
	}
	return graph, nil
}

func compileRules(v cue.Value, session *Session) error {
	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil
	}

	list, err := rulesVal.List()
	if err != nil {
		return &CompileError{Field: "rules", Code: ErrRuleDecl, Message: err.Error(), Pos: rulesVal.Pos()}
	}

	for index := 0; list.Next(); index++ {
		item := list.Value()

		lhsText, err := ruleSide(item, "lhs")
		if err != nil {
			return &CompileError{Field: fmt.Sprintf("rules[%d].lhs", index), Code: ErrRuleDecl, Message: err.Error(), Pos: item.Pos()}
		}
		rhsText, err := ruleSide(item, "rhs")
		if err != nil {
			return &CompileError{Field: fmt.Sprintf("rules[%d].rhs", index), Code: ErrRuleDecl, Message: err.Error(), Pos: item.Pos()}
		}

		lhs, err := ParseTerm(lhsText, session.Graph)
		if err != nil {
			return &CompileError{Field: fmt.Sprintf("rules[%d].lhs", index), Code: ErrRuleDecl, Message: err.Error(), Pos: item.Pos()}
		}
		rhs, err := ParseTerm(rhsText, session.Graph)
		if err != nil {
			return &CompileError{Field: fmt.Sprintf("rules[%d].rhs", index), Code: ErrRuleDecl, Message: err.Error(), Pos: item.Pos()}
		}

		session.Seeds = append(session.Seeds, rewrite.SeedRule{LHS: lhs, RHS: rhs})
		session.SeedTexts = append(session.SeedTexts, SeedText{LHS: lhsText, RHS: rhsText})
	}

	return nil
}

func ruleSide(item cue.Value, field string) (string, error) {
	sideVal := item.LookupPath(cue.ParsePath(field))
	if !sideVal.Exists() {
		return "", fmt.Errorf("%s is required", field)
	}
	text, err := sideVal.String()
	if err != nil {
		return "", err
	}
	return text, nil
}

func stringList(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
