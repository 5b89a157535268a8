package clause

import (
	"testing"

	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/query"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

type noopEvaluator struct{}

func (noopEvaluator) Evaluate(this value.Value, e *env.Environment, cs *ast.ConditionSet) (report.Outcome, error) {
	return report.Pass, nil
}

func newTestResolver() *query.Resolver {
	return query.NewResolver(noopEvaluator{}, nil)
}

func keySeg(name string) *ast.Segment { return &ast.Segment{Kind: ast.SegKey, Key: name} }

func structOf(pairs ...any) value.Value {
	m := value.NewOrderedMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(value.Value))
	}
	return value.NewMap(m, value.Path{})
}

func TestUnaryExistsPass(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	this := structOf("cpu", value.NewString("0.5", value.Path{}))
	c := &ast.Clause{Unary: &ast.UnaryClause{Query: &ast.Query{Segments: []*ast.Segment{keySeg("cpu")}}, Op: ast.OpExists}}

	outcome, check := Evaluate(this, e, r, c)
	if outcome != report.Pass {
		t.Fatalf("exists on a present key = %v, want Pass", outcome)
	}
	if check.Operator != "exists" {
		t.Errorf("check.Operator = %q, want \"exists\"", check.Operator)
	}
}

func TestUnaryExistsMissingIsFail(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	this := structOf("cpu", value.NewString("0.5", value.Path{}))
	c := &ast.Clause{Unary: &ast.UnaryClause{Query: &ast.Query{Segments: []*ast.Segment{keySeg("memory")}}, Op: ast.OpExists}}

	outcome, _ := Evaluate(this, e, r, c)
	if outcome != report.Fail {
		t.Fatalf("exists on a missing, non-collection query = %v, want Fail", outcome)
	}
}

func TestNotInvertsPassToFail(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	this := structOf("cpu", value.NewString("0.5", value.Path{}))
	inner := &ast.Clause{Unary: &ast.UnaryClause{Query: &ast.Query{Segments: []*ast.Segment{keySeg("cpu")}}, Op: ast.OpExists}}
	c := &ast.Clause{Not: inner}

	outcome, check := Evaluate(this, e, r, c)
	if outcome != report.Fail {
		t.Fatalf("not(exists) on a present key = %v, want Fail", outcome)
	}
	if check.Operator != "not exists" {
		t.Errorf("check.Operator = %q, want \"not exists\"", check.Operator)
	}
}

func TestBinaryEqualityPass(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	this := structOf("kind", value.NewString("Pod", value.Path{}))
	rhsLit := value.NewString("Pod", value.Path{})
	c := &ast.Clause{Binary: &ast.BinaryClause{
		Query: &ast.Query{Segments: []*ast.Segment{keySeg("kind")}},
		Op:    ast.OpEq,
		Rhs:   &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &rhsLit},
	}}

	outcome, _ := Evaluate(this, e, r, c)
	if outcome != report.Pass {
		t.Fatalf("kind == 'Pod' = %v, want Pass", outcome)
	}
}

func TestBinaryInRange(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	this := structOf("port", value.NewInt(90, value.Path{}))
	rng := value.NewRange(value.RangeVal{
		Lo: value.NewInt(89, value.Path{}), LoInclusive: true,
		Hi: value.NewInt(109, value.Path{}), HiInclusive: true,
	}, value.Path{})
	c := &ast.Clause{Binary: &ast.BinaryClause{
		Query: &ast.Query{Segments: []*ast.Segment{keySeg("port")}},
		Op:    ast.OpIn,
		Rhs:   &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &rng},
	}}

	outcome, _ := Evaluate(this, e, r, c)
	if outcome != report.Pass {
		t.Fatalf("90 in r[89,109] = %v, want Pass", outcome)
	}
}

func TestBinaryMissingLeftOnCollectionQueryIsSkip(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	this := structOf("items", value.NewList(nil, value.Path{}))
	rhsLit := value.NewInt(1, value.Path{})
	c := &ast.Clause{Binary: &ast.BinaryClause{
		Query: &ast.Query{Segments: []*ast.Segment{keySeg("items"), {Kind: ast.SegWildcardIndex}}},
		Op:    ast.OpEq,
		Rhs:   &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &rhsLit},
	}}

	outcome, _ := Evaluate(this, e, r, c)
	if outcome != report.Skip {
		t.Fatalf("binary clause over an empty wildcard query = %v, want Skip", outcome)
	}
}

func TestSomeMakesLeftExistential(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	this := value.NewList([]value.Value{
		value.NewInt(1, value.Path{}),
		value.NewInt(2, value.Path{}),
	}, value.Path{})
	rhsLit := value.NewInt(2, value.Path{})
	c := &ast.Clause{
		Some: true,
		Binary: &ast.BinaryClause{
			Query: &ast.Query{Segments: []*ast.Segment{{Kind: ast.SegWildcardIndex}}},
			Op:    ast.OpEq,
			Rhs:   &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &rhsLit},
		},
	}

	outcome, _ := Evaluate(this, e, r, c)
	if outcome != report.Pass {
		t.Fatalf("some this[*] == 2 over [1,2] = %v, want Pass", outcome)
	}
}

func TestUnaryExistsMissingRecordsPathAndDiagnostic(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	limitsPath := value.Path{Pointer: "/spec/containers/1/resources/limits"}
	m := value.NewOrderedMap()
	m.Set("memory", value.NewString("128Mi", limitsPath.Key("memory")))
	this := value.NewMap(m, limitsPath)

	c := &ast.Clause{Unary: &ast.UnaryClause{Query: &ast.Query{Segments: []*ast.Segment{keySeg("cpu")}}, Op: ast.OpExists}}

	outcome, check := Evaluate(this, e, r, c)
	if outcome != report.Fail {
		t.Fatalf("exists on a missing key = %v, want Fail", outcome)
	}
	if check.Diagnostic == "" {
		t.Error("expected a retrieval-error diagnostic naming the missing key")
	}
	if len(check.Paths) != 1 || check.Paths[0].Pointer != limitsPath.Pointer {
		t.Errorf("check.Paths = %+v, want the path the traversal was standing on (%s)", check.Paths, limitsPath)
	}
}

func TestIncompatibleOrderedComparisonIsFailWithDiagnostic(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	this := structOf("name", value.NewString("a", value.Path{}))
	rhsLit := value.NewInt(1, value.Path{})
	c := &ast.Clause{Binary: &ast.BinaryClause{
		Query: &ast.Query{Segments: []*ast.Segment{keySeg("name")}},
		Op:    ast.OpLt,
		Rhs:   &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &rhsLit},
	}}

	outcome, check := Evaluate(this, e, r, c)
	if outcome != report.Fail {
		t.Fatalf("string < int = %v, want Fail", outcome)
	}
	if check.Diagnostic == "" {
		t.Error("expected an incompatible-types diagnostic to be recorded")
	}
}

func TestNotEqualCrossKindIsTrueNotError(t *testing.T) {
	r := newTestResolver()
	e := env.New()
	e.Push()

	this := structOf("v", value.NewString("5", value.Path{}))
	rhsLit := value.NewBool(true, value.Path{})
	c := &ast.Clause{Binary: &ast.BinaryClause{
		Query: &ast.Query{Segments: []*ast.Segment{keySeg("v")}},
		Op:    ast.OpNeq,
		Rhs:   &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &rhsLit},
	}}

	outcome, check := Evaluate(this, e, r, c)
	if outcome != report.Pass {
		t.Fatalf("string != bool (cross-kind) = %v, want Pass per preserved partial-equality semantics", outcome)
	}
	if check.Diagnostic != "" {
		t.Errorf("cross-kind != should not record a diagnostic, got %q", check.Diagnostic)
	}
}
