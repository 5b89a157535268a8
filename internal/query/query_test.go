package query

import (
	"testing"

	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

// fakeEvaluator lets tests drive Filter-segment evaluation without
// internal/eval, breaking the same import cycle the real Resolver is
// built to avoid.
type fakeEvaluator struct {
	outcome report.Outcome
	err     error
}

func (f fakeEvaluator) Evaluate(this value.Value, e *env.Environment, cs *ast.ConditionSet) (report.Outcome, error) {
	return f.outcome, f.err
}

func key(name string) *ast.Segment { return &ast.Segment{Kind: ast.SegKey, Key: name} }
func index(i int) *ast.Segment     { return &ast.Segment{Kind: ast.SegIndex, Index: i} }
func wildcardKey() *ast.Segment    { return &ast.Segment{Kind: ast.SegWildcardKey} }
func wildcardIndex() *ast.Segment  { return &ast.Segment{Kind: ast.SegWildcardIndex} }

func newResolver() *Resolver {
	return NewResolver(fakeEvaluator{outcome: report.Pass}, nil)
}

func containerPod() value.Value {
	limits := value.NewOrderedMap()
	limits.Set("cpu", value.NewString("0.5", value.Path{Pointer: "/spec/containers/0/resources/limits/cpu"}))
	resources := value.NewOrderedMap()
	resources.Set("limits", value.NewMap(limits, value.Path{Pointer: "/spec/containers/0/resources/limits"}))
	container := value.NewOrderedMap()
	container.Set("resources", value.NewMap(resources, value.Path{Pointer: "/spec/containers/0/resources"}))
	return value.NewMap(container, value.Path{Pointer: "/spec/containers/0"})
}

func TestResolveKeyChain(t *testing.T) {
	r := newResolver()
	e := env.New()
	e.Push()

	q := &ast.Query{Segments: []*ast.Segment{key("resources"), key("limits"), key("cpu")}}
	seq, err := r.Resolve(e, containerPod(), q)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	vals := seq.Values()
	if len(vals) != 1 || vals[0].S != "0.5" {
		t.Fatalf("Resolve(resources.limits.cpu) = %+v, want singleton \"0.5\"", vals)
	}
}

func TestResolveMissingKeyIsRetrievalError(t *testing.T) {
	r := newResolver()
	e := env.New()
	e.Push()

	q := &ast.Query{Segments: []*ast.Segment{key("resources"), key("limits"), key("memory")}}
	seq, err := r.Resolve(e, containerPod(), q)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(seq) != 1 || seq[0].Err == nil {
		t.Fatalf("Resolve(...memory) = %+v, want one located retrieval error", seq)
	}
}

func TestResolveIndexOutOfRange(t *testing.T) {
	r := newResolver()
	e := env.New()
	e.Push()

	list := value.NewList([]value.Value{value.NewInt(1, value.Path{})}, value.Path{})
	q := &ast.Query{Segments: []*ast.Segment{key("x"), index(5)}}

	obj := value.NewOrderedMap()
	obj.Set("x", list)
	root := value.NewMap(obj, value.Path{})

	seq, err := r.Resolve(e, root, q)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(seq) != 1 || seq[0].Err == nil {
		t.Fatalf("expected an index-out-of-range retrieval error, got %+v", seq)
	}
}

func TestWildcardIndexOnEmptyListYieldsEmptySequence(t *testing.T) {
	r := newResolver()
	e := env.New()
	e.Push()

	empty := value.NewList(nil, value.Path{})
	seq, err := r.Resolve(e, empty, &ast.Query{Segments: []*ast.Segment{wildcardIndex()}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(seq) != 0 {
		t.Fatalf("wildcard over an empty list = %+v, want empty sequence with no error", seq)
	}
}

func TestWildcardIndexOnScalarIsSingletonRelaxation(t *testing.T) {
	r := newResolver()
	e := env.New()
	e.Push()

	scalar := value.NewInt(42, value.Path{})
	seq, err := r.Resolve(e, scalar, &ast.Query{Segments: []*ast.Segment{wildcardIndex()}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	vals := seq.Values()
	if len(vals) != 1 || vals[0].I != 42 {
		t.Fatalf("scalar[*] = %+v, want singleton [42] (array/single-value relaxation)", vals)
	}
}

func TestWildcardKeyPreservesInsertionOrder(t *testing.T) {
	r := newResolver()
	e := env.New()
	e.Push()

	m := value.NewOrderedMap()
	m.Set("c", value.NewInt(3, value.Path{}))
	m.Set("a", value.NewInt(1, value.Path{}))
	root := value.NewMap(m, value.Path{})

	seq, err := r.Resolve(e, root, &ast.Query{Segments: []*ast.Segment{wildcardKey()}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	vals := seq.Values()
	if len(vals) != 2 || vals[0].I != 3 || vals[1].I != 1 {
		t.Fatalf("wildcard key order = %+v, want [3, 1] (insertion order)", vals)
	}
}

func TestFilterKeepsOnlyPassingElements(t *testing.T) {
	e := env.New()
	e.Push()

	list := value.NewList([]value.Value{
		value.NewInt(1, value.Path{}),
		value.NewInt(2, value.Path{}),
	}, value.Path{})

	calls := 0
	ev := conditionalEvaluator{fn: func(this value.Value) report.Outcome {
		calls++
		if this.I == 2 {
			return report.Pass
		}
		return report.Fail
	}}
	r := NewResolver(ev, nil)

	q := &ast.Query{Segments: []*ast.Segment{wildcardIndex(), {Kind: ast.SegFilter, Filter: &ast.ConditionSet{}}}}
	seq, err := r.Resolve(e, list, q)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	vals := seq.Values()
	if len(vals) != 1 || vals[0].I != 2 {
		t.Fatalf("filter result = %+v, want only [2]", vals)
	}
	if calls != 2 {
		t.Errorf("filter evaluated %d elements, want 2", calls)
	}
}

func TestFilterSilentlySkipsRetrievalErrors(t *testing.T) {
	e := env.New()
	e.Push()

	// A Key segment against a non-struct element produces a retrieval
	// error for that element; the subsequent filter must skip it rather
	// than propagate or count it against the surviving elements.
	list := value.NewList([]value.Value{
		value.NewInt(1, value.Path{}),
		value.NewMap(value.NewOrderedMap(), value.Path{}),
	}, value.Path{})

	r := NewResolver(fakeEvaluator{outcome: report.Pass}, nil)
	q := &ast.Query{Segments: []*ast.Segment{wildcardIndex(), key("missing"), {Kind: ast.SegFilter, Filter: &ast.ConditionSet{}}}}

	seq, err := r.Resolve(e, list, q)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(seq) != 0 {
		t.Fatalf("expected filter to drop every errored element, got %+v", seq)
	}
}

func TestHasCollectionSegment(t *testing.T) {
	if HasCollectionSegment(&ast.Query{Segments: []*ast.Segment{key("a"), key("b")}}) {
		t.Error("a plain key path has no collection segment")
	}
	if !HasCollectionSegment(&ast.Query{Segments: []*ast.Segment{key("a"), wildcardKey()}}) {
		t.Error("a wildcard key segment should count as collection-introducing")
	}
	if !HasCollectionSegment(&ast.Query{Segments: []*ast.Segment{key("a"), {Kind: ast.SegFilter, Filter: &ast.ConditionSet{}}}}) {
		t.Error("a filter segment should count as collection-introducing")
	}
}

type conditionalEvaluator struct {
	fn func(this value.Value) report.Outcome
}

func (c conditionalEvaluator) Evaluate(this value.Value, e *env.Environment, cs *ast.ConditionSet) (report.Outcome, error) {
	return c.fn(this), nil
}
