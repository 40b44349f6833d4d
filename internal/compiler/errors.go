package compiler

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Compilation error codes (E2xx).
const (
	ErrSessionInvalid  = "E200" // malformed session value
	ErrTermEmpty       = "E201" // empty term text
	ErrTermSyntax      = "E202" // malformed term text
	ErrUnknownProtocol = "E203" // protocol name not declared
	ErrProtocolDecl    = "E204" // malformed protocol declaration
	ErrRuleDecl        = "E205" // malformed rule declaration
)

// CompileError reports a session compilation failure with the field
// that caused it and the CUE position when one is available.
type CompileError struct {
	Field   string
	Code    string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: [%s] %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ParseError reports a malformed term text.
type ParseError struct {
	Input   string
	Offset  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] term %q at offset %d: %s", e.Code, e.Input, e.Offset, e.Message)
}
