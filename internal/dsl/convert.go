package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/value"
)

func posFrom(line, column int) ast.Pos { return ast.Pos{Line: line, Column: column} }

func convertGrammar(g *Grammar) (*ast.File, error) {
	file := &ast.File{}
	seenBindings := map[string]bool{}
	seenRules := map[string]bool{}

	for _, item := range g.Items {
		switch {
		case item.Binding != nil:
			b, err := convertBinding(item.Binding)
			if err != nil {
				return nil, err
			}
			if seenBindings[b.Name] {
				return nil, SyntaxError{Kind: "DuplicateBinding", Message: fmt.Sprintf("binding %q declared twice at file scope", b.Name)}
			}
			seenBindings[b.Name] = true
			file.Bindings = append(file.Bindings, b)

		case item.Rule != nil:
			r, err := convertRule(item.Rule)
			if err != nil {
				return nil, err
			}
			if seenRules[r.Name] {
				return nil, SyntaxError{Kind: "DuplicateRule", Message: fmt.Sprintf("rule %q declared twice", r.Name)}
			}
			seenRules[r.Name] = true
			file.Rules = append(file.Rules, r)

		default:
			return nil, SyntaxError{Kind: "InvalidSyntax", Message: "empty file item"}
		}
	}

	return file, nil
}

func convertBinding(b *BindingAST) (*ast.Binding, error) {
	expr, err := convertRhsExpr(b.Expr)
	if err != nil {
		return nil, err
	}
	return &ast.Binding{
		Name: b.Name,
		Expr: expr,
		Pos:  posFrom(b.Pos.Line, b.Pos.Column),
	}, nil
}

func convertRule(r *RuleAST) (*ast.Rule, error) {
	var when *ast.ConditionSet
	if r.When != nil {
		w, err := convertConditionSet(r.When)
		if err != nil {
			return nil, err
		}
		when = w
	}

	body, err := convertBlock(r.Body)
	if err != nil {
		return nil, err
	}

	return &ast.Rule{
		Name: r.Name,
		When: when,
		Body: body,
		Pos:  posFrom(r.Pos.Line, r.Pos.Column),
	}, nil
}

func convertBlock(b *BlockAST) (*ast.Block, error) {
	blk := &ast.Block{}
	seen := map[string]bool{}

	for _, s := range b.Statements {
		st, err := convertStatement(s)
		if err != nil {
			return nil, err
		}
		if st.Binding != nil {
			if seen[st.Binding.Name] {
				return nil, SyntaxError{Kind: "DuplicateBinding", Message: fmt.Sprintf("binding %q declared twice in the same scope", st.Binding.Name)}
			}
			seen[st.Binding.Name] = true
		}
		blk.Statements = append(blk.Statements, st)
	}

	return blk, nil
}

func convertStatement(s *StatementAST) (*ast.Statement, error) {
	switch {
	case s.Binding != nil:
		b, err := convertBinding(s.Binding)
		if err != nil {
			return nil, err
		}
		return &ast.Statement{Binding: b}, nil

	case s.WhenBlock != nil:
		wb, err := convertWhenBlock(s.WhenBlock)
		if err != nil {
			return nil, err
		}
		return &ast.Statement{WhenBlock: wb}, nil

	case s.QueryBlock != nil:
		qb, err := convertQueryBlock(s.QueryBlock)
		if err != nil {
			return nil, err
		}
		return &ast.Statement{QueryBlock: qb}, nil

	case s.Condition != nil:
		d, err := convertDisjunction(s.Condition)
		if err != nil {
			return nil, err
		}
		return &ast.Statement{Condition: d}, nil

	default:
		return nil, SyntaxError{Kind: "EmptyStatement", Message: "statement has no recognized form"}
	}
}

func convertWhenBlock(w *WhenBlockAST) (*ast.WhenBlock, error) {
	cond, err := convertConditionSet(w.Condition)
	if err != nil {
		return nil, err
	}
	body, err := convertBlock(w.Body)
	if err != nil {
		return nil, err
	}
	return &ast.WhenBlock{
		Condition: cond,
		Body:      body,
		Pos:       posFrom(w.Pos.Line, w.Pos.Column),
	}, nil
}

func convertQueryBlock(q *QueryBlockAST) (*ast.QueryBlock, error) {
	query, err := convertQuery(q.Query)
	if err != nil {
		return nil, err
	}
	body, err := convertBlock(q.Body)
	if err != nil {
		return nil, err
	}
	return &ast.QueryBlock{
		Query: query,
		Body:  body,
		Pos:   posFrom(q.Pos.Line, q.Pos.Column),
	}, nil
}

func convertConditionSet(cs *ConditionSetAST) (*ast.ConditionSet, error) {
	out := &ast.ConditionSet{}
	for _, d := range cs.Disjunctions {
		dj, err := convertDisjunction(d)
		if err != nil {
			return nil, err
		}
		out.Disjunctions = append(out.Disjunctions, dj)
	}
	return out, nil
}

func convertDisjunction(d *DisjunctionAST) (*ast.Disjunction, error) {
	out := &ast.Disjunction{}
	for _, t := range d.Terms {
		term, err := convertTerm(t)
		if err != nil {
			return nil, err
		}
		out.Terms = append(out.Terms, term)
	}
	return out, nil
}

func convertTerm(t *TermAST) (*ast.Term, error) {
	pos := posFrom(t.Pos.Line, t.Pos.Column)
	if t.Clause != nil {
		c, err := convertClause(t.Clause)
		if err != nil {
			return nil, err
		}
		return &ast.Term{Clause: c, Pos: pos}, nil
	}
	return &ast.Term{RuleRef: *t.RuleRef, Pos: pos}, nil
}

func convertClause(c *ClauseAST) (*ast.Clause, error) {
	q, err := convertQuery(c.Query)
	if err != nil {
		return nil, err
	}

	inner := &ast.Clause{
		Some: c.Some,
		Pos:  posFrom(c.Pos.Line, c.Pos.Column),
	}
	if c.Message != nil {
		msg := trimCustomMessage(*c.Message)
		inner.Message = &msg
	}

	switch {
	case c.Unary != nil:
		op, err := convertUnaryOp(c.Unary)
		if err != nil {
			return nil, err
		}
		inner.Unary = &ast.UnaryClause{Query: q, Op: op}

	case c.Binary != nil:
		op, err := convertBinaryOp(c.Binary)
		if err != nil {
			return nil, err
		}
		rhs, err := convertRhsExpr(c.Binary.Rhs)
		if err != nil {
			return nil, err
		}
		if rhs.Kind == ast.RhsCall {
			return nil, SyntaxError{Kind: "InvalidFunctionCall", Message: fmt.Sprintf("built-in %q may only be called as the right-hand side of a let binding", rhs.Call.Name)}
		}
		inner.Binary = &ast.BinaryClause{Query: q, Op: op, Rhs: rhs}

	default:
		return nil, SyntaxError{Kind: "InvalidClause", Message: "clause has neither a unary nor a binary operator"}
	}

	if err := validateSome(inner.Some, q); err != nil {
		return nil, err
	}

	if !c.Not && !c.PostNot {
		return inner, nil
	}
	return &ast.Clause{Not: inner, Pos: inner.Pos}, nil
}

func validateSome(some bool, q *ast.Query) error {
	if !some {
		return nil
	}
	for _, seg := range q.Segments {
		switch seg.Kind {
		case ast.SegWildcardKey, ast.SegWildcardIndex, ast.SegFilter:
			return nil
		}
	}
	return SyntaxError{Kind: "InvalidSome", Message: "\"some\" is only legal on a query with a wildcard or filter segment"}
}

func convertUnaryOp(u *UnaryOpAST) (ast.UnaryOp, error) {
	switch {
	case u.Exists:
		return ast.OpExists, nil
	case u.Empty:
		return ast.OpEmpty, nil
	case u.IsString:
		return ast.OpIsString, nil
	case u.IsList:
		return ast.OpIsList, nil
	case u.IsStruct:
		return ast.OpIsStruct, nil
	case u.IsInt:
		return ast.OpIsInt, nil
	case u.IsFloat:
		return ast.OpIsFloat, nil
	case u.IsBool:
		return ast.OpIsBool, nil
	default:
		return 0, SyntaxError{Kind: "InvalidUnaryOp", Message: "unrecognized unary operator"}
	}
}

func convertBinaryOp(b *BinaryOpAST) (ast.BinaryOp, error) {
	switch {
	case b.Eq:
		return ast.OpEq, nil
	case b.Neq:
		return ast.OpNeq, nil
	case b.Lte:
		return ast.OpLte, nil
	case b.Gte:
		return ast.OpGte, nil
	case b.Lt:
		return ast.OpLt, nil
	case b.Gt:
		return ast.OpGt, nil
	case b.NotIn:
		return ast.OpNotIn, nil
	case b.In:
		return ast.OpIn, nil
	default:
		return 0, SyntaxError{Kind: "InvalidBinaryOp", Message: "unrecognized binary operator"}
	}
}

func convertQuery(q *QueryAST) (*ast.Query, error) {
	head, err := convertQueryHead(q.Head)
	if err != nil {
		return nil, err
	}
	segs := []*ast.Segment{head}

	for _, t := range q.Tail {
		seg, err := convertQueryTail(t)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}

	return &ast.Query{Segments: segs}, nil
}

func convertQueryHead(h *QueryHeadAST) (*ast.Segment, error) {
	pos := posFrom(h.Pos.Line, h.Pos.Column)
	switch {
	case h.VarName != nil:
		return &ast.Segment{Kind: ast.SegVarRef, VarName: *h.VarName, Pos: pos}, nil
	case h.This:
		return &ast.Segment{Kind: ast.SegThis, Pos: pos}, nil
	case h.Key != nil:
		return &ast.Segment{Kind: ast.SegKey, Key: *h.Key, Pos: pos}, nil
	case h.Quoted != nil:
		return &ast.Segment{Kind: ast.SegKey, Key: unquote(*h.Quoted), Pos: pos}, nil
	default:
		return nil, SyntaxError{Kind: "InvalidQuery", Message: "query has no head segment"}
	}
}

func convertQueryTail(t *QueryTailAST) (*ast.Segment, error) {
	pos := posFrom(t.Pos.Line, t.Pos.Column)
	switch {
	case t.DotKey != nil:
		return &ast.Segment{Kind: ast.SegKey, Key: *t.DotKey, Pos: pos}, nil
	case t.DotQuoted != nil:
		return &ast.Segment{Kind: ast.SegKey, Key: unquote(*t.DotQuoted), Pos: pos}, nil
	case t.DotStar:
		return &ast.Segment{Kind: ast.SegWildcardKey, Pos: pos}, nil
	case t.Index != nil:
		return &ast.Segment{Kind: ast.SegIndex, Index: int(*t.Index), Pos: pos}, nil
	case t.IndexStar:
		return &ast.Segment{Kind: ast.SegWildcardIndex, Pos: pos}, nil
	case t.Filter != nil:
		cs, err := convertConditionSet(t.Filter)
		if err != nil {
			return nil, err
		}
		return &ast.Segment{Kind: ast.SegFilter, Filter: cs, Pos: pos}, nil
	default:
		return nil, SyntaxError{Kind: "InvalidQuery", Message: "query segment has no recognized form"}
	}
}

func convertRhsExpr(e *RhsExprAST) (*ast.RhsExpr, error) {
	switch {
	case e.Call != nil:
		call, err := convertFunctionCall(e.Call)
		if err != nil {
			return nil, err
		}
		return &ast.RhsExpr{Kind: ast.RhsCall, Call: call, Pos: call.Pos}, nil

	case e.Range != nil:
		v, err := parseRangeLiteral(*e.Range)
		if err != nil {
			return nil, err
		}
		return &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &v}, nil

	case e.Regex != nil:
		v := value.NewRegex(unquoteRegex(*e.Regex), value.Path{})
		return &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &v}, nil

	case e.Str != nil:
		v := value.NewString(unquote(*e.Str), value.Path{})
		return &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &v}, nil

	case e.Float != nil:
		v := value.NewFloat(*e.Float, value.Path{})
		return &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &v}, nil

	case e.Int != nil:
		v := value.NewInt(*e.Int, value.Path{})
		return &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &v}, nil

	case e.True:
		v := value.NewBool(true, value.Path{})
		return &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &v}, nil

	case e.False:
		v := value.NewBool(false, value.Path{})
		return &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &v}, nil

	case e.List != nil:
		items := make([]value.Value, 0, len(e.List.Items))
		for _, it := range e.List.Items {
			sub, err := convertRhsExpr(it)
			if err != nil {
				return nil, err
			}
			if sub.Kind != ast.RhsLiteral {
				return nil, SyntaxError{Kind: "InvalidListLiteral", Message: "list literal elements must be literal values"}
			}
			items = append(items, *sub.Literal)
		}
		v := value.NewList(items, value.Path{})
		return &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &v}, nil

	case e.Map != nil:
		obj := value.NewOrderedMap()
		for _, ent := range e.Map.Entries {
			sub, err := convertRhsExpr(ent.Value)
			if err != nil {
				return nil, err
			}
			if sub.Kind != ast.RhsLiteral {
				return nil, SyntaxError{Kind: "InvalidMapLiteral", Message: "map literal entries must be literal values"}
			}
			obj.Set(ent.Key, *sub.Literal)
		}
		v := value.NewMap(obj, value.Path{})
		return &ast.RhsExpr{Kind: ast.RhsLiteral, Literal: &v}, nil

	case e.Query != nil:
		q, err := convertQuery(e.Query)
		if err != nil {
			return nil, err
		}
		if len(q.Segments) == 1 && q.Segments[0].Kind == ast.SegVarRef {
			return &ast.RhsExpr{Kind: ast.RhsVarRef, VarName: q.Segments[0].VarName, Pos: q.Segments[0].Pos}, nil
		}
		return &ast.RhsExpr{Kind: ast.RhsQuery, Query: q, Pos: q.Segments[0].Pos}, nil

	default:
		return nil, SyntaxError{Kind: "InvalidRhs", Message: "right-hand side has no recognized form"}
	}
}

func convertFunctionCall(c *FunctionCallAST) (*ast.FunctionCall, error) {
	args := make([]*ast.FunctionArg, 0, len(c.Args))
	for _, a := range c.Args {
		arg, err := convertFunctionArg(a)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &ast.FunctionCall{
		Name: c.Name,
		Args: args,
		Pos:  posFrom(c.Pos.Line, c.Pos.Column),
	}, nil
}

func convertFunctionArg(a *FunctionArgAST) (*ast.FunctionArg, error) {
	switch {
	case a.Str != nil:
		v := value.NewString(unquote(*a.Str), value.Path{})
		return &ast.FunctionArg{Literal: &v}, nil
	case a.Int != nil:
		v := value.NewInt(*a.Int, value.Path{})
		return &ast.FunctionArg{Literal: &v}, nil
	case a.Query != nil:
		q, err := convertQuery(a.Query)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionArg{Query: q}, nil
	default:
		return nil, SyntaxError{Kind: "InvalidFunctionArg", Message: "function argument has no recognized form"}
	}
}

// parseRangeLiteral parses the raw lexeme of a Range token, e.g. "r[10,20)",
// into a range value.Value (spec.md §3.1).
func parseRangeLiteral(raw string) (value.Value, error) {
	if len(raw) < 4 || raw[0] != 'r' {
		return value.Value{}, SyntaxError{Kind: "InvalidRange", Message: fmt.Sprintf("malformed range literal %q", raw)}
	}
	body := raw[1:]
	loInclusive := body[0] == '['
	hiInclusive := body[len(body)-1] == ']'
	inner := body[1 : len(body)-1]

	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return value.Value{}, SyntaxError{Kind: "InvalidRange", Message: fmt.Sprintf("range literal %q must have exactly two bounds", raw)}
	}

	lo, err := parseRangeBound(strings.TrimSpace(parts[0]))
	if err != nil {
		return value.Value{}, err
	}
	hi, err := parseRangeBound(strings.TrimSpace(parts[1]))
	if err != nil {
		return value.Value{}, err
	}

	return value.NewRange(value.RangeVal{
		Lo:          lo,
		Hi:          hi,
		LoInclusive: loInclusive,
		HiInclusive: hiInclusive,
	}, value.Path{}), nil
}

func parseRangeBound(s string) (value.Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.NewInt(i, value.Path{}), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.NewFloat(f, value.Path{}), nil
	}
	if len(s) == 3 && s[0] == '\'' && s[2] == '\'' {
		return value.NewChar(rune(s[1]), value.Path{}), nil
	}
	return value.Value{}, SyntaxError{Kind: "InvalidRange", Message: fmt.Sprintf("range bound %q is neither numeric nor a character literal", s)}
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	quote := s[0]
	inner := s[1 : len(s)-1]

	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) && (inner[i+1] == '\\' || inner[i+1] == quote) {
			b.WriteByte(inner[i+1])
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func unquoteRegex(s string) string {
	if len(s) < 2 {
		return s
	}
	inner := s[1 : len(s)-1]
	return strings.ReplaceAll(inner, `\/`, `/`)
}

func trimCustomMessage(s string) string {
	s = strings.TrimPrefix(s, "<<")
	s = strings.TrimSuffix(s, ">>")
	return strings.TrimSpace(s)
}
