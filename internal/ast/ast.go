// Package ast defines Guard's domain abstract syntax tree (spec.md §3.2):
// the plain, parser-independent data the evaluator walks. internal/dsl
// builds these types from a participle parse tree; nothing downstream of
// this package imports participle.
package ast

import "github.com/ritamzico/guard/internal/value"

// Pos is a rule-source location, used for parse/semantic diagnostics.
// It is distinct from value.Path, which locates a node within the input
// *document* being evaluated, not within the rule file.
type Pos struct {
	Line, Column int
}

// File is the top-level unit: file-scoped bindings followed by named
// rules, in source order (spec.md §3.2).
type File struct {
	Bindings []*Binding
	Rules    []*Rule
}

// Binding is `let name = expr-or-query`, legal at file, rule, or block
// scope.
type Binding struct {
	Name string
	Expr *RhsExpr
	Pos  Pos
}

// Rule is a named, optionally `when`-gated block.
type Rule struct {
	Name string
	When *ConditionSet // nil if the rule is unconditional
	Body *Block
	Pos  Pos
}

// ConditionSet is a conjunction of disjunctions of Terms, used both for a
// `when` condition and for a Block's ordinary (non-binding/block)
// statements (spec.md §3.4: "disjunction binds tighter than conjunction").
type ConditionSet struct {
	Disjunctions []*Disjunction
}

// Disjunction is one or more Terms joined by `or`/`OR`; spec.md §4.1:
// "<line1> or <line2> groups into a disjunction; adjacent non-or lines are
// conjuncts."
type Disjunction struct {
	Terms []*Term
}

// Term is either an inline clause or a reference to another rule used as
// a boolean condition (spec.md §3.2, §4.5).
type Term struct {
	Clause  *Clause
	RuleRef string // non-empty when this term is a named-rule reference
	Pos     Pos
}

// Block is a brace-delimited sequence of statements sharing a common
// "this" context.
type Block struct {
	Statements []*Statement
}

// Statement is one of: a variable binding, a conjunction/disjunction of
// clauses-or-rule-refs, a query-block, or a when-block (spec.md §3.2).
// Exactly one field is set, matching the teacher's pointer-field dispatch
// convention (internal/dsl/grammar.go's StatementAST).
type Statement struct {
	Binding    *Binding
	Condition  *Disjunction
	QueryBlock *QueryBlock
	WhenBlock  *WhenBlock
}

// QueryBlock is `Query { body }`: it resolves Query, then evaluates Body
// once per resolved element with that element as the new "this".
type QueryBlock struct {
	Query *Query
	Body  *Block
	Pos   Pos
}

// WhenBlock is `when Condition { body }`: Body evaluates only if
// Condition is Pass.
type WhenBlock struct {
	Condition *ConditionSet
	Body      *Block
	Pos       Pos
}

// UnaryOp enumerates the unary clause operators (spec.md §3.2). Not is
// handled separately on Clause (it wraps a whole Clause, not a query).
type UnaryOp int

const (
	OpExists UnaryOp = iota
	OpEmpty
	OpIsString
	OpIsList
	OpIsStruct
	OpIsInt
	OpIsFloat
	OpIsBool
)

func (op UnaryOp) String() string {
	switch op {
	case OpExists:
		return "exists"
	case OpEmpty:
		return "empty"
	case OpIsString:
		return "is_string"
	case OpIsList:
		return "is_list"
	case OpIsStruct:
		return "is_struct"
	case OpIsInt:
		return "is_int"
	case OpIsFloat:
		return "is_float"
	case OpIsBool:
		return "is_bool"
	default:
		return "unknown"
	}
}

// BinaryOp enumerates the binary clause operators (spec.md §3.2).
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNeq
	OpLt
	OpGt
	OpLte
	OpGte
	OpIn
	OpNotIn
)

func (op BinaryOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLte:
		return "<="
	case OpGte:
		return ">="
	case OpIn:
		return "in"
	case OpNotIn:
		return "not in"
	default:
		return "unknown"
	}
}

// Clause is Guard's atomic boolean assertion: either a unary test, a
// binary comparison, or a negation of another Clause. Exactly one of
// Unary/Binary/Not is set.
type Clause struct {
	Some    bool
	Message *string // verbatim <<...>> custom message, if any

	Unary  *UnaryClause
	Binary *BinaryClause
	Not    *Clause

	Pos Pos
}

type UnaryClause struct {
	Query *Query
	Op    UnaryOp
}

type BinaryClause struct {
	Query *Query
	Op    BinaryOp
	Rhs   *RhsExpr
}

// SegmentKind enumerates the kinds of a Query's path Segments (spec.md
// §3.2).
type SegmentKind int

const (
	SegKey SegmentKind = iota
	SegIndex
	SegWildcardKey
	SegWildcardIndex
	SegVarRef
	SegFilter
	SegThis
)

// Segment is one step of a Query's path.
type Segment struct {
	Kind SegmentKind

	Key     string        // SegKey
	Index   int           // SegIndex
	VarName string        // SegVarRef
	Filter  *ConditionSet // SegFilter: clauses evaluated with the element as "this"

	Pos Pos
}

// Query is an ordered path of Segments, resolved against a root value and
// environment into a lazy, multi-valued result set (spec.md §4.3).
type Query struct {
	Segments []*Segment
}

// RhsExprKind enumerates the shapes an RhsExpr (a `let` value, or a
// binary clause's right-hand side) can take.
type RhsExprKind int

const (
	RhsLiteral RhsExprKind = iota
	RhsQuery
	RhsVarRef
	RhsCall
)

// RhsExpr is a value literal, range literal, list/map literal (captured
// directly as a value.Value), a query, a `%name` variable reference, or a
// built-in function call (spec.md §3.2). Function calls are legal only as
// the entire right-hand side of a `let` binding; internal/dsl/convert.go
// enforces this at conversion time.
type RhsExpr struct {
	Kind    RhsExprKind
	Literal *value.Value
	Query   *Query
	VarName string
	Call    *FunctionCall
	Pos     Pos
}

// FunctionArg is one argument to a built-in function call: either a query
// or a literal value (spec.md §4.7's functions take queries and, for e.g.
// regex_replace's pattern/replacement or join's delimiter, string
// literals).
type FunctionArg struct {
	Query   *Query
	Literal *value.Value
}

// FunctionCall is `name(args...)`, the only legal form of a `let` RHS that
// is not a literal/query/variable reference (spec.md §4.7).
type FunctionCall struct {
	Name string
	Args []*FunctionArg
	Pos  Pos
}
