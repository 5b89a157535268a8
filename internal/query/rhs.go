package query

import (
	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/value"
)

// EvalRhsExpr evaluates a `let` binding's (or a binary clause's) RHS into
// a Sequence, relative to this (spec.md §4.6). A literal is a singleton
// Sequence; a query is resolved normally; a bare variable reference
// forces the referenced binding (which carries its own declaration-site
// "this", per env.Binding); a function call delegates to the injected
// FunctionEvaluator.
func (r *Resolver) EvalRhsExpr(e *env.Environment, this value.Value, expr *ast.RhsExpr) (Sequence, error) {
	switch expr.Kind {
	case ast.RhsLiteral:
		return Sequence{{Value: *expr.Literal}}, nil

	case ast.RhsQuery:
		return r.Resolve(e, this, expr.Query)

	case ast.RhsVarRef:
		return r.resolveVarRef(e, expr.VarName)

	case ast.RhsCall:
		if r.Functions == nil {
			return nil, retrievalErr("NoFunctionRegistry", "built-in %q called but no function registry is configured", expr.Call.Name)
		}
		return r.Functions.Call(r, e, this, expr.Call)

	default:
		return nil, retrievalErr("InvalidRhs", "right-hand side has no recognized form")
	}
}

// ResolveFunctionArg resolves one built-in function argument: a literal
// (string/int, per the grammar) becomes a singleton Sequence; a query is
// resolved normally. Implements the QueryResolver interface the
// FunctionEvaluator uses to resolve its own arguments.
func (r *Resolver) ResolveFunctionArg(e *env.Environment, this value.Value, arg *ast.FunctionArg) (Sequence, error) {
	if arg.Literal != nil {
		return Sequence{{Value: *arg.Literal}}, nil
	}
	return r.Resolve(e, this, arg.Query)
}
