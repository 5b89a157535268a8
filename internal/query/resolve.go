package query

import (
	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

// Resolve resolves q against this, left to right (spec.md §4.3). The head
// segment is resolved against this: Key/VarRef/ThisRef directly, and any
// other segment kind as if the query had been written `this<segment>`.
// Every tail segment then fans out or subsets the running Sequence.
func (r *Resolver) Resolve(e *env.Environment, this value.Value, q *ast.Query) (Sequence, error) {
	if len(q.Segments) == 0 {
		return nil, retrievalErr("EmptyQuery", "query has no segments")
	}

	seq, err := r.resolveHead(e, this, q.Segments[0])
	if err != nil {
		return nil, err
	}
	for _, seg := range q.Segments[1:] {
		seq, err = r.resolveSegment(e, seq, seg)
		if err != nil {
			return nil, err
		}
	}
	return seq, nil
}

func (r *Resolver) resolveHead(e *env.Environment, this value.Value, seg *ast.Segment) (Sequence, error) {
	switch seg.Kind {
	case ast.SegThis:
		return Sequence{{Value: this}}, nil
	case ast.SegVarRef:
		return r.resolveVarRef(e, seg.VarName)
	case ast.SegKey:
		return resolveOneElement(Located{Value: this}, seg), nil
	default:
		return r.resolveSegment(e, Sequence{{Value: this}}, seg)
	}
}

// resolveSegment applies one tail segment to the running Sequence. Filter
// is a whole-sequence subsetting operation (spec.md §4.3: "for each
// incoming element, evaluate the clause block ... retain only elements
// whose block evaluates to Pass"); every other tail kind is a per-element
// fan-out.
func (r *Resolver) resolveSegment(e *env.Environment, seq Sequence, seg *ast.Segment) (Sequence, error) {
	switch seg.Kind {
	case ast.SegFilter:
		return r.applyFilter(e, seq, seg)
	case ast.SegKey, ast.SegIndex, ast.SegWildcardKey, ast.SegWildcardIndex:
		return fanOut(seq, seg), nil
	default:
		return nil, retrievalErr("InvalidQuery", "segment kind %v is not legal after the first position", seg.Kind)
	}
}

func fanOut(seq Sequence, seg *ast.Segment) Sequence {
	out := make(Sequence, 0, len(seq))
	for _, loc := range seq {
		out = append(out, resolveOneElement(loc, seg)...)
	}
	return out
}

// resolveOneElement applies a single Key/Index/WildcardKey/WildcardIndex
// segment to one located value. A value already carrying an error simply
// propagates it (spec.md §4.3: "partial retrieval failures ... returned
// as structured retrieval errors").
func resolveOneElement(loc Located, seg *ast.Segment) Sequence {
	if loc.Err != nil {
		return Sequence{loc}
	}
	v := loc.Value

	switch seg.Kind {
	case ast.SegKey:
		if v.Kind != value.Map {
			return Sequence{{Err: retrievalErrAt(v.Path, "TypeMismatch", "key %q: value at %s is not a struct", seg.Key, v.Path)}}
		}
		child, ok := v.Obj.Get(seg.Key)
		if !ok {
			return Sequence{{Err: retrievalErrAt(v.Path, "MissingKey", "missing key %q at %s", seg.Key, v.Path)}}
		}
		return Sequence{{Value: child}}

	case ast.SegIndex:
		if v.Kind != value.List {
			return Sequence{{Err: retrievalErrAt(v.Path, "TypeMismatch", "index %d: value at %s is not a list", seg.Index, v.Path)}}
		}
		if seg.Index < 0 || seg.Index >= len(v.Items) {
			return Sequence{{Err: retrievalErrAt(v.Path, "IndexOutOfRange", "index %d out of range (len %d) at %s", seg.Index, len(v.Items), v.Path)}}
		}
		return Sequence{{Value: v.Items[seg.Index]}}

	case ast.SegWildcardKey:
		if v.Kind != value.Map {
			return Sequence{{Err: retrievalErrAt(v.Path, "TypeMismatch", "wildcard key: value at %s is not a struct", v.Path)}}
		}
		out := make(Sequence, 0, v.Obj.Len())
		for _, k := range v.Obj.Keys() {
			child, _ := v.Obj.Get(k)
			out = append(out, Located{Value: child})
		}
		return out

	case ast.SegWildcardIndex:
		if v.Kind == value.List {
			out := make(Sequence, 0, len(v.Items))
			for _, it := range v.Items {
				out = append(out, Located{Value: it})
			}
			return out
		}
		// array/single-value relaxation (spec.md §4.3, §9).
		return Sequence{{Value: v}}

	default:
		return Sequence{{Err: retrievalErr("InvalidQuery", "unrecognized segment kind %v", seg.Kind)}}
	}
}

// applyFilter evaluates seg.Filter with each element of seq as "this",
// keeping only those that Pass. Elements already carrying an error, or
// whose filter evaluation itself errors, are silently dropped (spec.md
// §4.3: "a filter that encounters a retrieval error against an element
// skips that element").
func (r *Resolver) applyFilter(e *env.Environment, seq Sequence, seg *ast.Segment) (Sequence, error) {
	out := make(Sequence, 0, len(seq))
	for _, loc := range seq {
		if loc.Err != nil {
			continue
		}
		outcome, err := r.Evaluator.Evaluate(loc.Value, e, seg.Filter)
		if err != nil {
			continue
		}
		if outcome == report.Pass {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (r *Resolver) resolveVarRef(e *env.Environment, name string) (Sequence, error) {
	v, err := e.Resolve(name, func(expr *ast.RhsExpr, declThis value.Value) (any, error) {
		return r.EvalRhsExpr(e, declThis, expr)
	})
	if err != nil {
		return nil, err
	}
	seq, ok := v.(Sequence)
	if !ok {
		return nil, retrievalErr("InternalError", "binding %q resolved to unexpected type %T", name, v)
	}
	return seq, nil
}
