// Package dsl implements the lexer, grammar, and parse-tree-to-AST
// conversion for the Guard policy language (spec.md §4.1): the grammar is
// built with participle (github.com/alecthomas/participle/v2), the same
// combinator-parser library the teacher uses for its own line-oriented
// DSL. convert.go lowers the participle parse tree into the
// parser-independent internal/ast types.
package dsl

import (
	"fmt"

	"github.com/alecthomas/participle/v2"

	"github.com/ritamzico/guard/internal/ast"
)

// Parse lexes and parses source into a File AST. Parse is total: it never
// panics, and a malformed rule file produces a non-empty Diagnostic slice
// with a nil File rather than an error return, matching the "never a
// panic or silent failure" contract of spec.md §4.1.
func Parse(source string) (file *ast.File, diags []Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			file = nil
			diags = []Diagnostic{{Kind: "InternalError", Message: fmt.Sprintf("panic while parsing: %v", r)}}
		}
	}()

	tree, err := dslParser.ParseString("", source)
	if err != nil {
		return nil, []Diagnostic{diagnosticFromParseError(err)}
	}

	f, convErr := convertGrammar(tree)
	if convErr != nil {
		return nil, []Diagnostic{diagnosticFromConvertError(convErr)}
	}

	return f, nil
}

func diagnosticFromParseError(err error) Diagnostic {
	if pe, ok := err.(participle.Error); ok {
		pos := pe.Position()
		return Diagnostic{
			Kind:    "SyntaxError",
			Message: pe.Message(),
			Pos:     ast.Pos{Line: pos.Line, Column: pos.Column},
		}
	}
	return Diagnostic{Kind: "SyntaxError", Message: err.Error()}
}

func diagnosticFromConvertError(err error) Diagnostic {
	if se, ok := err.(SyntaxError); ok {
		return Diagnostic{Kind: se.Kind, Message: se.Message}
	}
	return Diagnostic{Kind: "SemanticError", Message: err.Error()}
}
