// Package query implements Guard's query resolver (spec.md §4.3): given a
// root value, an environment, and an ast.Query, it produces a lazy,
// finite, re-iterable sequence of located values or per-element retrieval
// errors. Resolution never short-circuits evaluation of sibling queries —
// a failed segment becomes a structured error attached to that one
// lineage, not a Go error returned up the stack (spec.md §9: "lazy query
// results are modeled as finite, restartable sequences").
//
// query depends on internal/report for the Outcome type a Filter segment
// needs, but not on internal/clause (which evaluates filter blocks) or
// internal/builtins (which implements function calls) — both would
// create an import cycle, since clause and builtins themselves resolve
// queries. The dependency is inverted via the ConditionEvaluator and
// FunctionEvaluator interfaces below; internal/eval wires the concrete
// implementations in at construction time. Grounded on the teacher's
// interface-typed Query abstraction (internal/query/composite_queries.go's
// `Query` interface, implemented by AndQuery/OrQuery/ConditionalQuery and
// composed without any of them importing each other directly).
package query

import (
	"fmt"

	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

// Located is one element of a resolved query's result: either a value
// (with its source Path already populated by the decoder) or the
// retrieval error that prevented producing one at this lineage position.
type Located struct {
	Value value.Value
	Err   error
}

// Sequence is a resolved query result: finite and safe to iterate more
// than once.
type Sequence []Located

// Values returns the successfully-resolved values in s, dropping errors.
func (s Sequence) Values() []value.Value {
	out := make([]value.Value, 0, len(s))
	for _, loc := range s {
		if loc.Err == nil {
			out = append(out, loc.Value)
		}
	}
	return out
}

// Errors returns the retrieval errors in s, dropping values.
func (s Sequence) Errors() []error {
	var out []error
	for _, loc := range s {
		if loc.Err != nil {
			out = append(out, loc.Err)
		}
	}
	return out
}

// ConditionEvaluator evaluates a Filter segment's clause block with a
// candidate element as "this". Implemented by internal/eval.Evaluator.
type ConditionEvaluator interface {
	Evaluate(this value.Value, e *env.Environment, cs *ast.ConditionSet) (report.Outcome, error)
}

// QueryResolver is the subset of Resolver's surface a FunctionEvaluator
// needs to resolve its own arguments, without depending on the concrete
// Resolver type.
type QueryResolver interface {
	Resolve(e *env.Environment, this value.Value, q *ast.Query) (Sequence, error)
	ResolveFunctionArg(e *env.Environment, this value.Value, arg *ast.FunctionArg) (Sequence, error)
}

// FunctionEvaluator evaluates a built-in function call against its
// arguments. Implemented by internal/builtins.Registry.
type FunctionEvaluator interface {
	Call(qr QueryResolver, e *env.Environment, this value.Value, call *ast.FunctionCall) (Sequence, error)
}

// Resolver resolves ast.Query values against an environment, delegating
// Filter-segment clause evaluation and function calls to the injected
// ConditionEvaluator/FunctionEvaluator.
type Resolver struct {
	Evaluator ConditionEvaluator
	Functions FunctionEvaluator
}

// NewResolver builds a Resolver. fn may be nil if the caller never needs
// to resolve a `let`-bound function call (e.g. in tests exercising query
// resolution alone).
func NewResolver(ev ConditionEvaluator, fn FunctionEvaluator) *Resolver {
	return &Resolver{Evaluator: ev, Functions: fn}
}

// HasCollectionSegment reports whether q contains a segment that
// introduces a collection (wildcard or filter) — the distinction spec.md
// §4.3's final paragraph uses to decide whether an empty/erroring result
// should yield Skip instead of Fail.
func HasCollectionSegment(q *ast.Query) bool {
	for _, seg := range q.Segments {
		switch seg.Kind {
		case ast.SegWildcardKey, ast.SegWildcardIndex, ast.SegFilter:
			return true
		}
	}
	return false
}

func retrievalErr(kind, format string, args ...any) error {
	return RetrievalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// retrievalErrAt is retrievalErr with the document Path the traversal was
// standing on when it failed, so a Check built from this error's
// Sequence can report where it touched (spec.md §4.8).
func retrievalErrAt(path value.Path, kind, format string, args ...any) error {
	return RetrievalError{Kind: kind, Message: fmt.Sprintf(format, args...), Path: path}
}
