package clause

import (
	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/query"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

func evaluateUnary(this value.Value, e *env.Environment, r *query.Resolver, c *ast.Clause) (report.Outcome, *report.Check) {
	u := c.Unary
	check := &report.Check{Operator: u.Op.String(), Pos: c.Pos, Message: c.Message}

	seq, err := r.Resolve(e, this, u.Query)
	if err != nil {
		check.Outcome = report.Fail
		check.Diagnostic = err.Error()
		return report.Fail, check
	}
	check.Paths = pathsOf(seq)
	check.Left = seq.Values()
	if len(check.Left) == 0 {
		check.Paths, check.Diagnostic = errorDiagnostics(this, seq)
	}

	var outcome report.Outcome
	switch u.Op {
	case ast.OpExists:
		outcome = existsOutcome(u.Query, c.Some, seq)
	case ast.OpEmpty:
		outcome = emptyOutcome(seq)
	default:
		outcome = kindOutcome(u.Query, c.Some, u.Op, seq)
	}

	check.Outcome = outcome
	return outcome, check
}

func existsOutcome(q *ast.Query, some bool, seq query.Sequence) report.Outcome {
	if len(seq.Values()) > 0 {
		return report.Pass
	}
	return missingOutcome(q, some)
}

// emptyOutcome: passes iff the query resolves to an empty collection (or
// every resolved value is empty) OR the target path does not exist
// (spec.md §4.4's "missing-property semantics"). Unlike the other unary
// operators this never falls back to missingOutcome: a missing path is
// itself a defining case of "empty", not a separate skip/fail decision.
func emptyOutcome(seq query.Sequence) report.Outcome {
	vals := seq.Values()
	for _, v := range vals {
		if !v.IsEmpty() {
			return report.Fail
		}
	}
	return report.Pass
}

func kindOutcome(q *ast.Query, some bool, op ast.UnaryOp, seq query.Sequence) report.Outcome {
	vals := seq.Values()
	if len(vals) == 0 {
		return missingOutcome(q, some)
	}

	if some {
		for _, v := range vals {
			if hasKind(v, op) {
				return report.Pass
			}
		}
		return report.Fail
	}

	for _, v := range vals {
		if !hasKind(v, op) {
			return report.Fail
		}
	}
	return report.Pass
}

func hasKind(v value.Value, op ast.UnaryOp) bool {
	switch op {
	case ast.OpIsString:
		return v.IsString()
	case ast.OpIsList:
		return v.IsList()
	case ast.OpIsStruct:
		return v.IsStruct()
	case ast.OpIsInt:
		return v.IsInt()
	case ast.OpIsFloat:
		return v.IsFloat()
	case ast.OpIsBool:
		return v.IsBool()
	default:
		return false
	}
}
