// Package clause implements Guard's clause evaluator (spec.md §4.4): the
// atomic boolean assertion, resolved via internal/query and scored into a
// report.Outcome plus a report.Check diagnostic record. Grounded on the
// teacher's per-node-evaluates-itself convention (pgraph's Query
// interface's Execute method), generalized from a single probability
// float into the three-valued Pass/Fail/Skip outcome spec.md §3.4
// requires.
package clause

import (
	"strings"

	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/query"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

// Evaluate scores c against this, returning its Outcome and the Check
// record that formatters traverse.
func Evaluate(this value.Value, e *env.Environment, r *query.Resolver, c *ast.Clause) (report.Outcome, *report.Check) {
	switch {
	case c.Not != nil:
		outcome, inner := Evaluate(this, e, r, c.Not)
		negated := invert(outcome)
		return negated, negateCheck(inner, negated)

	case c.Unary != nil:
		return evaluateUnary(this, e, r, c)

	case c.Binary != nil:
		return evaluateBinary(this, e, r, c)

	default:
		return report.Fail, &report.Check{
			Pos:        c.Pos,
			Outcome:    report.Fail,
			Diagnostic: "malformed clause: neither a unary nor a binary operator",
		}
	}
}

func invert(o report.Outcome) report.Outcome {
	switch o {
	case report.Pass:
		return report.Fail
	case report.Fail:
		return report.Pass
	default:
		return report.Skip
	}
}

func negateCheck(inner *report.Check, outcome report.Outcome) *report.Check {
	c := *inner
	c.Operator = "not " + inner.Operator
	c.Outcome = outcome
	return &c
}

// missingOutcome is spec.md §4.3's final paragraph: a clause whose query
// resolved to no values is Fail, unless the query is collection-
// introducing (wildcard/filter) or the clause carries `some`, in which
// case it is Skip rather than Fail.
func missingOutcome(q *ast.Query, some bool) report.Outcome {
	if some || query.HasCollectionSegment(q) {
		return report.Skip
	}
	return report.Fail
}

func pathsOf(seq query.Sequence) []value.Path {
	vals := seq.Values()
	out := make([]value.Path, len(vals))
	for i, v := range vals {
		out[i] = v.Path
	}
	return out
}

// errorDiagnostics folds seq's retrieval errors into a Check's Paths and
// Diagnostic (spec.md §4.8: "the path(s) in the input document it
// touched"). this is the fallback path for an error that predates any
// document traversal (e.g. a malformed query shape carries a zero Path).
// Called only when seq resolved to no values — a clause with at least
// one resolved value reports that value's path instead (pathsOf).
func errorDiagnostics(this value.Value, seq query.Sequence) ([]value.Path, string) {
	errs := seq.Errors()
	if len(errs) == 0 {
		return nil, ""
	}
	paths := make([]value.Path, len(errs))
	msgs := make([]string, len(errs))
	for i, err := range errs {
		path := this.Path
		if re, ok := err.(query.RetrievalError); ok && re.Path != (value.Path{}) {
			path = re.Path
		}
		paths[i] = path
		msgs[i] = err.Error()
	}
	return paths, strings.Join(msgs, "; ")
}
