// Package builtins implements Guard's fixed function registry (spec.md
// §4.7), legal only as the entire right-hand side of a `let` binding.
// Grounded on the teacher's Reducer interface/registry shape
// (internal/query/reducer.go): a small closed set of named concrete
// types implementing one method, dispatched by name rather than by a
// type switch, so adding a function never touches the dispatcher.
package builtins

import (
	"fmt"

	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/query"
	"github.com/ritamzico/guard/internal/value"
)

// Function is one built-in: it receives its arguments already resolved
// to Sequences (queries walked, literals wrapped as singletons) and
// produces a result Sequence. Per-element failures are the Function's
// own responsibility to skip silently (spec.md §4.7: "functions never
// fail the program").
type Function interface {
	Call(args []query.Sequence) (query.Sequence, error)
}

var registry = map[string]Function{
	"json_parse":    jsonParseFn{},
	"regex_replace": regexReplaceFn{},
	"join":          joinFn{},
	"to_lower":      caseFn{upper: false},
	"to_upper":      caseFn{upper: true},
	"substring":     substringFn{},
	"url_decode":    urlDecodeFn{},
	"count":         countFn{},
}

// Registry implements query.FunctionEvaluator, resolving a FunctionCall's
// arguments via the caller-supplied query.QueryResolver and dispatching
// to the fixed registry by name.
type Registry struct{}

func (Registry) Call(qr query.QueryResolver, e *env.Environment, this value.Value, call *ast.FunctionCall) (query.Sequence, error) {
	fn, ok := registry[call.Name]
	if !ok {
		return nil, Error{Kind: "UnknownFunction", Message: fmt.Sprintf("%q is not a recognized built-in function", call.Name)}
	}

	args := make([]query.Sequence, len(call.Args))
	for i, a := range call.Args {
		seq, err := qr.ResolveFunctionArg(e, this, a)
		if err != nil {
			return nil, err
		}
		args[i] = seq
	}

	return fn.Call(args)
}

func requireArgs(name string, args []query.Sequence, n int) error {
	if len(args) != n {
		return Error{Kind: "ArgumentCount", Message: fmt.Sprintf("%s expects %d argument(s), got %d", name, n, len(args))}
	}
	return nil
}

func singleIntArg(args []query.Sequence, i int) (int, bool) {
	vals := args[i].Values()
	if len(vals) != 1 || vals[0].Kind != value.Int {
		return 0, false
	}
	return int(vals[0].I), true
}

func singleStringArg(args []query.Sequence, i int) (string, bool) {
	vals := args[i].Values()
	if len(vals) != 1 || vals[0].Kind != value.String {
		return "", false
	}
	return vals[0].S, true
}
