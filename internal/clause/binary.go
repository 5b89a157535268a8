package clause

import (
	"fmt"

	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/query"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

func evaluateBinary(this value.Value, e *env.Environment, r *query.Resolver, c *ast.Clause) (report.Outcome, *report.Check) {
	b := c.Binary
	check := &report.Check{Operator: b.Op.String(), Pos: c.Pos, Message: c.Message}

	leftSeq, err := r.Resolve(e, this, b.Query)
	if err != nil {
		check.Outcome = report.Fail
		check.Diagnostic = err.Error()
		return report.Fail, check
	}
	check.Paths = pathsOf(leftSeq)
	check.Left = leftSeq.Values()

	rightSeq, err := r.EvalRhsExpr(e, this, b.Rhs)
	if err != nil {
		check.Outcome = report.Fail
		check.Diagnostic = err.Error()
		return report.Fail, check
	}
	check.Right = rightSeq.Values()

	leftVals := leftSeq.Values()
	if len(leftVals) == 0 {
		check.Paths, check.Diagnostic = errorDiagnostics(this, leftSeq)
		outcome := missingOutcome(b.Query, c.Some)
		check.Outcome = outcome
		return outcome, check
	}

	rightVals := rightSeq.Values()
	outcome, diag := foldBinary(leftVals, rightVals, b.Op, c.Some)
	if diag != "" {
		check.Diagnostic = diag
	}
	check.Outcome = outcome
	return outcome, check
}

// foldBinary implements the universal-on-left/existential-on-right
// quantification spec.md §4.4 defines, switching to existential-on-left
// when `some` is present.
func foldBinary(leftVals, rightVals []value.Value, op ast.BinaryOp, some bool) (report.Outcome, string) {
	var lastDiag string

	if some {
		for _, l := range leftVals {
			ok, err := matchBinary(l, op, rightVals)
			if err != nil {
				lastDiag = err.Error()
				continue
			}
			if ok {
				return report.Pass, ""
			}
		}
		return report.Fail, lastDiag
	}

	for _, l := range leftVals {
		ok, err := matchBinary(l, op, rightVals)
		if err != nil {
			return report.Fail, err.Error()
		}
		if !ok {
			return report.Fail, ""
		}
	}
	return report.Pass, ""
}

func matchBinary(l value.Value, op ast.BinaryOp, rightVals []value.Value) (bool, error) {
	if op == ast.OpIn || op == ast.OpNotIn {
		member, err := inMembership(l, rightVals)
		if err != nil {
			return false, err
		}
		if op == ast.OpNotIn {
			return !member, nil
		}
		return member, nil
	}

	var lastErr error
	for _, rv := range rightVals {
		ok, err := compareOp(l, op, rv)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, lastErr
}

func compareOp(l value.Value, op ast.BinaryOp, r value.Value) (bool, error) {
	switch op {
	case ast.OpEq:
		return value.Equal(l, r)
	case ast.OpNeq:
		return value.NotEqual(l, r)
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		cmp, err := value.Compare(l, r)
		if err != nil {
			return false, err
		}
		switch op {
		case ast.OpLt:
			return cmp < 0, nil
		case ast.OpLte:
			return cmp <= 0, nil
		case ast.OpGt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	default:
		return false, fmt.Errorf("clause: %v is not an ordered/equality operator", op)
	}
}

// inMembership generalizes spec.md §4.4's "right-hand side must resolve
// to a list or a range" to also accept a bare multi-valued scalar
// sequence (e.g. a variable bound to a query), treating each resolved
// right-hand value as an individual membership candidate.
func inMembership(l value.Value, rightVals []value.Value) (bool, error) {
	if len(rightVals) == 1 && rightVals[0].Kind == value.RangeKind {
		return value.InRange(l, *rightVals[0].Rng)
	}
	if len(rightVals) == 1 && rightVals[0].Kind == value.List {
		for _, item := range rightVals[0].Items {
			eq, err := value.Equal(l, item)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
		return false, nil
	}
	for _, r := range rightVals {
		eq, err := value.Equal(l, r)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}
