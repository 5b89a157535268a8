package dsl

import (
	"fmt"

	"github.com/ritamzico/guard/internal/ast"
)

// SyntaxError mirrors the teacher's XError{Kind, Message} shape, used for
// both lexical/grammar failures and the semantic checks convert.go
// performs while lowering the parse tree (duplicate rule names, illegal
// "some", function calls outside a binding RHS, and so on).
type SyntaxError struct {
	Kind    string
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("syntax error (%v): %v", e.Kind, e.Message)
}

// Diagnostic is a single parse or semantic finding. Parse is total
// (spec.md §4.1) and has no error return: a malformed rule file yields a
// nil *ast.File and a non-empty Diagnostic slice, a well-formed one a nil
// slice.
type Diagnostic struct {
	Kind     string
	Message  string
	Pos      ast.Pos
	Expected string
}

func (d Diagnostic) String() string {
	if d.Expected != "" {
		return fmt.Sprintf("%d:%d: %s: %s (expected %s)", d.Pos.Line, d.Pos.Column, d.Kind, d.Message, d.Expected)
	}
	return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Column, d.Kind, d.Message)
}
