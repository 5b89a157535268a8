// Package report implements Guard's diagnostics model (spec.md §4.8): the
// structured tree of Checks, Blocks, Rules, and the top-level File status
// that formatters (SARIF, JUnit, YAML, JSON, single-line) traverse.
// Grounded on the teacher's internal/result.Result interface/Kind enum
// (internal/result/result.go) and its MultiResult/BooleanResult
// composition shape, generalized from a flat scalar result into a tree
// since spec.md §4.8 requires a full Check/Block/Rule tree rather than one
// probability value.
package report

import (
	"encoding/json"

	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/value"
)

// Outcome is the three-valued result of any check, block, or rule
// (spec.md §3.4).
type Outcome int

const (
	Pass Outcome = iota
	Fail
	Skip
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders an Outcome as its String() form rather than a bare
// int, so the JSON report a formatter emits reads "PASS"/"FAIL"/"SKIP".
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// And folds outcomes by conjunction (spec.md §3.4): Fail if any is Fail;
// Pass if all non-Skip outcomes are Pass; Skip if every outcome is Skip.
// An empty input is vacuously Skip (nothing was checked).
func And(outcomes []Outcome) Outcome {
	if len(outcomes) == 0 {
		return Skip
	}
	sawNonSkip := false
	for _, o := range outcomes {
		if o == Fail {
			return Fail
		}
		if o != Skip {
			sawNonSkip = true
		}
	}
	if !sawNonSkip {
		return Skip
	}
	return Pass
}

// Or folds outcomes by disjunction (spec.md §3.4): Pass if any is Pass;
// else Fail if any is Fail; else Skip.
func Or(outcomes []Outcome) Outcome {
	if len(outcomes) == 0 {
		return Skip
	}
	sawFail := false
	for _, o := range outcomes {
		if o == Pass {
			return Pass
		}
		if o == Fail {
			sawFail = true
		}
	}
	if sawFail {
		return Fail
	}
	return Skip
}

// Check is one atomic clause evaluation (spec.md §4.8): the operator,
// its rule-source location, the input-document paths it touched, the
// resolved left/right operand samples, an optional custom message, and
// the outcome.
type Check struct {
	Operator   string
	Pos        ast.Pos
	Paths      []value.Path
	Left       []value.Value
	Right      []value.Value
	Message    *string
	Diagnostic string
	Outcome    Outcome
}

// Block is the result of evaluating an ast.Block: a conjunction over its
// statements' outcomes, plus the Checks and nested query-block/when-block
// Blocks that produced them, in source order (spec.md §4.5).
type Block struct {
	Outcome  Outcome
	Checks   []*Check
	Children []*Block
}

// Rule is one named rule's result (spec.md §4.5): its gating `when`
// condition (nil if unconditional) and its body's combined outcome.
type Rule struct {
	Name    string
	Outcome Outcome
	When    *Block
	Body    *Block
}

// File is the top-level result tree (spec.md §6, §7).
type File struct {
	Rules  []*Rule
	Status Outcome
}

// StatusFromRules computes the Report's top-level status: Fail if any
// rule failed, else Pass if any rule passed, else Skip (spec.md §7).
func StatusFromRules(rules []*Rule) Outcome {
	sawPass := false
	for _, r := range rules {
		if r.Outcome == Fail {
			return Fail
		}
		if r.Outcome == Pass {
			sawPass = true
		}
	}
	if sawPass {
		return Pass
	}
	return Skip
}
