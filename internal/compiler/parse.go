package compiler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/typelattice/canon/internal/protograph"
	"github.com/typelattice/canon/internal/rewrite"
)

const genericParamPrefix = "τ_"

// ParseTerm parses the engine's textual term syntax: atoms joined by
// ".", where an atom is a bare member name, a generic parameter τ_d_i,
// a protocol [P], an associated type [P1&P2:name] or a layout
// [layout: token]. Protocol names resolve against the given graph.
//
// Associated-type protocol lists are accepted in any order and sorted
// into graph order; duplicates are rejected.
func ParseTerm(text string, graph *protograph.Graph) (rewrite.Term, error) {
	if text == "" {
		return rewrite.Term{}, &ParseError{Input: text, Code: ErrTermEmpty, Message: "term must have at least one atom"}
	}

	var atoms []rewrite.Atom
	i := 0
	for {
		atom, next, err := parseAtom(text, i, graph)
		if err != nil {
			return rewrite.Term{}, err
		}
		atoms = append(atoms, atom)
		i = next

		if i == len(text) {
			break
		}
		if text[i] != '.' {
			return rewrite.Term{}, &ParseError{Input: text, Offset: i, Code: ErrTermSyntax, Message: fmt.Sprintf("expected %q between atoms", ".")}
		}
		i++
		if i == len(text) {
			return rewrite.Term{}, &ParseError{Input: text, Offset: i, Code: ErrTermSyntax, Message: "trailing separator"}
		}
	}

	return rewrite.NewTerm(atoms...), nil
}

func parseAtom(text string, start int, graph *protograph.Graph) (rewrite.Atom, int, error) {
	if text[start] == '[' {
		return parseBracketAtom(text, start, graph)
	}

	end := strings.IndexByte(text[start:], '.')
	if end < 0 {
		end = len(text)
	} else {
		end += start
	}
	token := text[start:end]

	if token == "" {
		return rewrite.Atom{}, 0, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: "empty atom"}
	}
	if strings.ContainsAny(token, "[]&:") {
		return rewrite.Atom{}, 0, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: fmt.Sprintf("invalid character in name %q", token)}
	}

	if strings.HasPrefix(token, genericParamPrefix) {
		atom, err := parseGenericParam(text, start, token)
		if err != nil {
			return rewrite.Atom{}, 0, err
		}
		return atom, end, nil
	}

	return rewrite.ForName(token), end, nil
}

func parseGenericParam(text string, start int, token string) (rewrite.Atom, error) {
	parts := strings.Split(token[len(genericParamPrefix):], "_")
	if len(parts) != 2 {
		return rewrite.Atom{}, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: fmt.Sprintf("generic parameter %q is not of the form %sdepth_index", token, genericParamPrefix)}
	}
	depth, err := strconv.Atoi(parts[0])
	if err != nil || depth < 0 {
		return rewrite.Atom{}, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: fmt.Sprintf("bad generic parameter depth %q", parts[0])}
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil || index < 0 {
		return rewrite.Atom{}, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: fmt.Sprintf("bad generic parameter index %q", parts[1])}
	}
	return rewrite.ForGenericParam(depth, index), nil
}

func parseBracketAtom(text string, start int, graph *protograph.Graph) (rewrite.Atom, int, error) {
	rel := strings.IndexByte(text[start:], ']')
	if rel < 0 {
		return rewrite.Atom{}, 0, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: "unterminated bracket atom"}
	}
	inner := text[start+1 : start+rel]
	next := start + rel + 1

	const layoutPrefix = "layout: "
	if strings.HasPrefix(inner, layoutPrefix) {
		token := inner[len(layoutPrefix):]
		if token == "" {
			return rewrite.Atom{}, 0, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: "empty layout constraint"}
		}
		return rewrite.ForLayout(protograph.Layout(token)), next, nil
	}

	if colon := strings.IndexByte(inner, ':'); colon >= 0 {
		atom, err := parseAssociatedType(text, start, inner[:colon], inner[colon+1:], graph)
		if err != nil {
			return rewrite.Atom{}, 0, err
		}
		return atom, next, nil
	}

	if inner == "" {
		return rewrite.Atom{}, 0, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: "empty protocol atom"}
	}
	decl, ok := graph.Protocol(inner)
	if !ok {
		return rewrite.Atom{}, 0, &ParseError{Input: text, Offset: start, Code: ErrUnknownProtocol, Message: fmt.Sprintf("unknown protocol %q", inner)}
	}
	return rewrite.ForProtocol(decl), next, nil
}

func parseAssociatedType(text string, start int, protoList, name string, graph *protograph.Graph) (rewrite.Atom, error) {
	if name == "" {
		return rewrite.Atom{}, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: "associated type has no name"}
	}

	var protos []rewrite.Protocol
	for _, protoName := range strings.Split(protoList, "&") {
		if protoName == "" {
			return rewrite.Atom{}, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: "empty protocol name in associated type"}
		}
		decl, ok := graph.Protocol(protoName)
		if !ok {
			return rewrite.Atom{}, &ParseError{Input: text, Offset: start, Code: ErrUnknownProtocol, Message: fmt.Sprintf("unknown protocol %q", protoName)}
		}
		protos = append(protos, decl)
	}

	sort.SliceStable(protos, func(i, j int) bool {
		return graph.CompareProtocols(protos[i], protos[j]) < 0
	})
	for i := 1; i < len(protos); i++ {
		if protos[i] == protos[i-1] {
			return rewrite.Atom{}, &ParseError{Input: text, Offset: start, Code: ErrTermSyntax, Message: fmt.Sprintf("duplicate protocol %q in associated type", protos[i].Name())}
		}
	}

	return rewrite.ForAssociatedType(protos, name), nil
}
