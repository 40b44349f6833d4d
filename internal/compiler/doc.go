// Package compiler turns session files into rewrite-engine inputs.
//
// A session is a CUE value declaring protocols (with inheritance) and
// seed rewrite rules written in the engine's textual term syntax:
//
//	session: {
//	    protocols: {
//	        Sequence: {}
//	        Collection: {inherits: ["Sequence"]}
//	    }
//	    rules: [
//	        {lhs: "τ_0_0.[Collection]", rhs: "τ_0_0"},
//	    ]
//	}
//
// CompileSession walks the CUE value with the CUE Go API, builds the
// protocol graph and parses each rule side with ParseTerm. ParseTerm is
// the inverse of the engine's renderer: for any constructible term t,
// ParseTerm(t.String()) reproduces t.
package compiler
