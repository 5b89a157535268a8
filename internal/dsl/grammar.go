package dsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "CustomMessage", Pattern: `<<[^>]*>>`},
	{Name: "Keyword", Pattern: `(?i)\b(rule|when|let|or|and|in|not|exists|empty|some|is_string|is_list|is_struct|is_int|is_float|is_bool|true|false|this)\b`},
	{Name: "Range", Pattern: `r[\[\(][^\]\)]*[\]\)]`},
	{Name: "Regex", Pattern: `/(\\.|[^/\\\n])*/`},
	{Name: "String", Pattern: `'([^'\\]|\\.)*'|"([^"\\]|\\.)*"`},
	{Name: "Float", Pattern: `\d+\.\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Op2", Pattern: `==|!=|<=|>=`},
	{Name: "Punct", Pattern: `[(){}\[\]\.,\*%=<>!:]`},
	{Name: "Semi", Pattern: `;`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Grammar is the top-level parse-tree node: a rule file is a sequence of
// file-scoped bindings and rules, in source order.
type Grammar struct {
	Items []*FileItemAST `parser:"@@*"`
}

// FileItemAST dispatches on "let" (a file-scoped binding) or a bare rule.
type FileItemAST struct {
	Binding *BindingAST `parser:"  \"let\" @@"`
	Rule    *RuleAST    `parser:"| @@"`
}

// BindingAST: name = expr.
type BindingAST struct {
	Pos  lexer.Position
	Name string      `parser:"@Ident \"=\""`
	Expr *RhsExprAST `parser:"@@"`
}

// RuleAST: rule <name> [when <condition>] { body }.
type RuleAST struct {
	Pos  lexer.Position
	Name string           `parser:"\"rule\" @Ident"`
	When *ConditionSetAST `parser:"( \"when\" @@ )?"`
	Body *BlockAST        `parser:"@@"`
}

// BlockAST: a brace-delimited sequence of statements.
type BlockAST struct {
	Statements []*StatementAST `parser:"\"{\" @@* \"}\""`
}

// StatementAST dispatches, in order, on a let-binding, a when-block, a
// query-block, or a bare clause/rule-reference disjunction. Order matters:
// WhenBlockAST and the "let" branch have unambiguous keyword prefixes;
// QueryBlockAST and DisjunctionAST both start with a Query and are
// disambiguated by backtracking on whether a "{" follows.
type StatementAST struct {
	Binding    *BindingAST     `parser:"(  \"let\" @@"`
	WhenBlock  *WhenBlockAST   `parser:" | @@"`
	QueryBlock *QueryBlockAST  `parser:" | @@"`
	Condition  *DisjunctionAST `parser:" | @@ )"`
}

// WhenBlockAST: when <condition> { body }.
type WhenBlockAST struct {
	Pos       lexer.Position
	Condition *ConditionSetAST `parser:"\"when\" @@"`
	Body      *BlockAST        `parser:"@@"`
}

// QueryBlockAST: <query> { body }, re-scoping "this" to each resolved
// element of query.
type QueryBlockAST struct {
	Pos   lexer.Position
	Query *QueryAST `parser:"@@"`
	Body  *BlockAST `parser:"@@"`
}

// ConditionSetAST is a conjunction of Disjunctions: one or more Disjunction
// parses back to back, optionally separated by the no-op "and" keyword.
type ConditionSetAST struct {
	Disjunctions []*DisjunctionAST `parser:"@@+"`
}

// DisjunctionAST is one or more Terms joined by "or".
type DisjunctionAST struct {
	And   bool       `parser:"@\"and\"?"`
	Terms []*TermAST `parser:"@@ ( \"or\" @@ )*"`
}

// TermAST is either an inline clause, or a bare identifier referencing
// another rule used as a boolean condition.
type TermAST struct {
	Pos     lexer.Position
	Clause  *ClauseAST `parser:"  @@"`
	RuleRef *string    `parser:"| @Ident"`
}

// ClauseAST: optional not/some prefixes, a query, an optional not/!
// immediately before the operator (the postfix negation spec.md §8
// scenario 3 writes as "!empty"), then exactly one of a unary or binary
// operator, then an optional custom <<message>>.
type ClauseAST struct {
	Pos     lexer.Position
	Not     bool         `parser:"@( \"not\" | \"!\" )?"`
	Some    bool         `parser:"@\"some\"?"`
	Query   *QueryAST    `parser:"@@"`
	PostNot bool         `parser:"@( \"not\" | \"!\" )?"`
	Unary   *UnaryOpAST  `parser:"(  @@"`
	Binary  *BinaryOpAST `parser:" | @@ )"`
	Message *string      `parser:"@CustomMessage?"`
}

// UnaryOpAST enumerates the unary clause operators.
type UnaryOpAST struct {
	Exists   bool `parser:"  @\"exists\""`
	Empty    bool `parser:"| @\"empty\""`
	IsString bool `parser:"| @\"is_string\""`
	IsList   bool `parser:"| @\"is_list\""`
	IsStruct bool `parser:"| @\"is_struct\""`
	IsInt    bool `parser:"| @\"is_int\""`
	IsFloat  bool `parser:"| @\"is_float\""`
	IsBool   bool `parser:"| @\"is_bool\""`
}

// BinaryOpAST enumerates the binary clause operators and their right-hand
// side.
type BinaryOpAST struct {
	Eq    bool        `parser:"(  @\"==\""`
	Neq   bool        `parser:" | @\"!=\""`
	Lte   bool        `parser:" | @\"<=\""`
	Gte   bool        `parser:" | @\">=\""`
	Lt    bool        `parser:" | @\"<\""`
	Gt    bool        `parser:" | @\">\""`
	NotIn bool        `parser:" | @(\"not\" \"in\")"`
	In    bool        `parser:" | @\"in\" )"`
	Rhs   *RhsExprAST `parser:"@@"`
}

// QueryAST is a head segment followed by zero or more tail segments.
type QueryAST struct {
	Head *QueryHeadAST   `parser:"@@"`
	Tail []*QueryTailAST `parser:"@@*"`
}

// QueryHeadAST is the first segment of a query: a variable splice, the
// explicit "this" context, a plain key, or a quoted key.
type QueryHeadAST struct {
	Pos     lexer.Position
	VarName *string `parser:"(  \"%\" @Ident"`
	This    bool    `parser:" | @\"this\""`
	Key     *string `parser:" | @Ident"`
	Quoted  *string `parser:" | @String )"`
}

// QueryTailAST is one continuation segment of a query: a dotted key, a
// dotted wildcard, an indexed element, an indexed wildcard, or a filter.
type QueryTailAST struct {
	Pos       lexer.Position
	DotKey    *string          `parser:"(  \".\" @Ident"`
	DotQuoted *string          `parser:" | \".\" @String"`
	DotStar   bool             `parser:" | \".\" @\"*\""`
	Index     *int64           `parser:" | \"[\" @Int \"]\""`
	IndexStar bool             `parser:" | \"[\" @\"*\" \"]\""`
	Filter    *ConditionSetAST `parser:" | \"[\" @@ \"]\" )"`
}

// RhsExprAST is the right-hand side of a `let` binding or a binary
// clause: a built-in call, a range/regex/string/numeric/bool literal, a
// list or map literal, or a query (which also covers bare variable
// references, since a VarName-headed Query with no tail is exactly that).
type RhsExprAST struct {
	Call  *FunctionCallAST `parser:"(  @@"`
	Range *string          `parser:" | @Range"`
	Regex *string          `parser:" | @Regex"`
	Str   *string          `parser:" | @String"`
	Float *float64         `parser:" | @Float"`
	Int   *int64           `parser:" | @Int"`
	True  bool             `parser:" | @\"true\""`
	False bool             `parser:" | @\"false\""`
	List  *ListLiteralAST  `parser:" | @@"`
	Map   *MapLiteralAST   `parser:" | @@"`
	Query *QueryAST        `parser:" | @@ )"`
}

// ListLiteralAST: [ v, v, ... ].
type ListLiteralAST struct {
	Items []*RhsExprAST `parser:"\"[\" ( @@ ( \",\" @@ )* )? \"]\""`
}

// MapEntryAST: key: value.
type MapEntryAST struct {
	Key   string      `parser:"( @Ident | @String ) \":\""`
	Value *RhsExprAST `parser:"@@"`
}

// MapLiteralAST: { key: v, key: v, ... }.
type MapLiteralAST struct {
	Entries []*MapEntryAST `parser:"\"{\" ( @@ ( \",\" @@ )* )? \"}\""`
}

// FunctionCallAST: name(arg, arg, ...), legal only as a let binding's RHS
// (enforced by convert.go, since RhsExprAST appears in both positions).
type FunctionCallAST struct {
	Pos  lexer.Position
	Name string            `parser:"@Ident \"(\""`
	Args []*FunctionArgAST `parser:"( @@ ( \",\" @@ )* )? \")\""`
}

// FunctionArgAST is a built-in function argument: a string/int literal or
// a query.
type FunctionArgAST struct {
	Str   *string   `parser:"(  @String"`
	Int   *int64    `parser:" | @Int"`
	Query *QueryAST `parser:" | @@ )"`
}

var dslParser = participle.MustBuild[Grammar](
	participle.Lexer(dslLexer),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("Whitespace", "Comment", "Semi"),
	participle.UseLookahead(1024),
)
