// Package guard is the public API of the Guard policy-as-code evaluator
// (spec.md §§1, 7–8): parse rule-file text, decode a JSON/YAML document,
// and evaluate the rules against it, producing a Pass/Fail/Skip report
// tree. Mirrors the teacher's top-level alias-and-constructor package
// (pgraph.go), which re-exports its result types and wraps dsl/graph/
// serialization behind a small façade.
package guard

import (
	"encoding/json"
	"fmt"

	"github.com/ritamzico/guard/internal/decode"
	"github.com/ritamzico/guard/internal/dsl"
	"github.com/ritamzico/guard/internal/eval"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

type (
	// Outcome is one of Pass, Fail, or Skip (spec.md §3.4).
	Outcome = report.Outcome
	// Check is one leaf clause evaluation (spec.md §4.10).
	Check = report.Check
	// Block is one conjunction/disjunction node in a rule's evaluation
	// tree (spec.md §4.10).
	Block = report.Block
	// Rule is one named rule's evaluation result (spec.md §4.10).
	Rule = report.Rule
	// Report is the evaluation result for every rule in a file
	// (spec.md §4.10, §7).
	Report = report.File
	// Diagnostic describes a single DSL syntax or semantic error
	// (spec.md §4.1).
	Diagnostic = dsl.Diagnostic
	// Value is one node of the decoded input document (spec.md §3.1).
	Value = value.Value
	// Format selects the input document's encoding for ParseData.
	Format = decode.Format
)

const (
	Pass = report.Pass
	Fail = report.Fail
	Skip = report.Skip

	YAML = decode.YAML
	JSON = decode.JSON
)

// EvalOptions configures a single Evaluate/EvaluateBytes call (spec.md
// §6). Summary, verbose, structured, and output-format selection are
// formatter-facing concerns the core does not interpret (spec.md §6:
// "affect only formatters") and are out of this package's scope (spec.md
// §1); InputParameters is the one option with evaluation semantics of
// its own.
type EvalOptions struct {
	// InputParameters, when its Kind is not value.Null, is shallow-merged
	// onto the decoded document's root map under the key
	// "InputParameters" before evaluation (spec.md §6, SPEC_FULL.md §5),
	// matching spec.md §8 scenario 4's `InputParameters.TcpBlockedPorts`
	// usage.
	InputParameters Value
}

func (o EvalOptions) apply(data Value) (Value, error) {
	if o.InputParameters.Kind == value.Null {
		return data, nil
	}
	return decode.Merge(data, "InputParameters", o.InputParameters)
}

// Ruleset is a parsed Guard rule file (spec.md §4.3), ready to evaluate
// against any number of input documents.
type Ruleset struct {
	evaluator *eval.Evaluator
}

// Parse lexes and parses source into a Ruleset. A malformed rule file
// returns a nil Ruleset and the diagnostics explaining why, never an
// error and never a panic (spec.md §4.1's totality contract).
func Parse(source string) (*Ruleset, []Diagnostic) {
	file, diags := dsl.Parse(source)
	if len(diags) != 0 {
		return nil, diags
	}
	return &Ruleset{evaluator: eval.NewEvaluator(file)}, nil
}

// ParseData decodes raw JSON or YAML bytes into a Value tree rooted at
// Path{} (spec.md §3.1, §6).
func ParseData(data []byte, format Format) (Value, error) {
	return decode.Parse(data, format)
}

// Evaluate runs every rule in rs against data in source order and returns
// the resulting Report (spec.md §4.5, §4.8, §7). opts is variadic so
// existing callers that never set an option are unaffected; only the
// first EvalOptions passed is honored.
func (rs *Ruleset) Evaluate(data Value, opts ...EvalOptions) (*Report, error) {
	if len(opts) > 0 {
		merged, err := opts[0].apply(data)
		if err != nil {
			return nil, err
		}
		data = merged
	}
	return rs.evaluator.EvaluateFile(data)
}

// EvaluateBytes is a convenience wrapper combining ParseData and
// Evaluate for callers holding raw document bytes.
func (rs *Ruleset) EvaluateBytes(data []byte, format Format, opts ...EvalOptions) (*Report, error) {
	v, err := ParseData(data, format)
	if err != nil {
		return nil, err
	}
	return rs.Evaluate(v, opts...)
}

// MarshalReportJSON renders a Report as JSON, the shape cmd/guardserver
// returns to callers (spec.md §8). Mirrors the teacher's
// MarshalResultJSON, generalized from a discriminated Result union to
// the Pass/Fail/Skip report tree.
func MarshalReportJSON(r *Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("guard: nil report")
	}
	return json.Marshal(r)
}
