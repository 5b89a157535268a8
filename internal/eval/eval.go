// Package eval implements Guard's tree-walking evaluator (spec.md §4.5):
// the driver that turns a parsed File and a decoded input Value into a
// report.File. It owns cross-rule memoization and cycle detection
// (spec.md §4.5/§9), and implements query.ConditionEvaluator so
// internal/query can evaluate Filter segments without importing
// internal/clause (which itself depends on query). Grounded on the
// teacher's AndQuery/OrQuery composite-result folding
// (internal/query/composite_queries.go) generalized from a probability
// float to the Pass/Fail/Skip Outcome spec.md §3.4 requires.
package eval

import (
	"fmt"

	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/builtins"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/query"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

type ruleState int

const (
	notStarted ruleState = iota
	inProgress
	done
)

type ruleCacheEntry struct {
	state  ruleState
	cyclic bool
	report *report.Rule
}

// Evaluator evaluates every rule in a single parsed File against a single
// root document. Each rule evaluation (top-level or via a cross-rule
// reference) gets its own fresh env.Environment rooted at file scope
// (newRuleEnv): named rules are independent top-level checks, not
// parameterized by whatever context happened to reference them.
type Evaluator struct {
	file *ast.File
	root value.Value

	resolver    *query.Resolver
	rulesByName map[string]*ast.Rule
	ruleCache   map[string]*ruleCacheEntry
}

// NewEvaluator builds an Evaluator for file. Duplicate rule names and
// duplicate bindings are already rejected by internal/dsl at conversion
// time, so construction cannot fail.
func NewEvaluator(file *ast.File) *Evaluator {
	ev := &Evaluator{
		file:        file,
		rulesByName: make(map[string]*ast.Rule, len(file.Rules)),
		ruleCache:   make(map[string]*ruleCacheEntry, len(file.Rules)),
	}
	for _, rule := range file.Rules {
		ev.rulesByName[rule.Name] = rule
	}
	ev.resolver = query.NewResolver(ev, builtins.Registry{})
	return ev
}

// EvaluateFile evaluates every rule in the file against data, in source
// order, and returns the resulting report (spec.md §4.8, §7).
func (ev *Evaluator) EvaluateFile(data value.Value) (*report.File, error) {
	ev.root = data
	ev.ruleCache = make(map[string]*ruleCacheEntry, len(ev.file.Rules))

	rules := make([]*report.Rule, 0, len(ev.file.Rules))
	for _, rule := range ev.file.Rules {
		rpt, err := ev.evaluateRuleByName(rule.Name)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rpt)
	}

	return &report.File{Rules: rules, Status: report.StatusFromRules(rules)}, nil
}

// newRuleEnv builds a fresh environment rooted at file scope: a pushed
// frame holding every file-level `let` binding, relative to the root
// document. This is what gives cross-rule references isolation from
// whatever scope happened to reference them (spec.md §4.5).
func (ev *Evaluator) newRuleEnv() (*env.Environment, error) {
	e := env.New()
	e.Push()
	for _, b := range ev.file.Bindings {
		if err := e.Declare(b.Name, b.Expr, ev.root); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// evaluateRuleByName evaluates (or returns the memoized result of) the
// named rule. A second entry while the same rule is already in progress
// is a cycle: both the referencing and the referenced rule resolve to
// Fail (spec.md §4.5/§9). The reference that closes the cycle returns a
// CyclicRule error, which evaluateTerm records as the Check's diagnostic.
func (ev *Evaluator) evaluateRuleByName(name string) (*report.Rule, error) {
	if entry, ok := ev.ruleCache[name]; ok {
		if entry.state == inProgress {
			entry.cyclic = true
			return nil, Error{Kind: "CyclicRule", Message: fmt.Sprintf("rule %q is referenced from within its own evaluation", name)}
		}
		return entry.report, nil
	}

	rule, ok := ev.rulesByName[name]
	if !ok {
		return nil, Error{Kind: "UnknownRule", Message: fmt.Sprintf("rule %q is not defined in this file", name)}
	}

	entry := &ruleCacheEntry{state: inProgress}
	ev.ruleCache[name] = entry

	e, err := ev.newRuleEnv()
	if err != nil {
		return nil, err
	}
	rpt := ev.computeRule(e, rule)
	if entry.cyclic {
		rpt.Outcome = report.Fail
	}

	entry.state = done
	entry.report = rpt
	return rpt, nil
}

// computeRule evaluates rule's `when` gate (if any) and body (spec.md
// §4.5: "if a when clause is present, gate by it ...; else evaluate the
// body. The rule's status is the body's combined outcome.").
func (ev *Evaluator) computeRule(e *env.Environment, rule *ast.Rule) *report.Rule {
	rpt := &report.Rule{Name: rule.Name}

	e.Push()
	defer e.Pop()

	if rule.When != nil {
		whenOutcome, whenBlock := ev.evaluateConditionSet(e, ev.root, rule.When)
		rpt.When = whenBlock
		if whenOutcome != report.Pass {
			rpt.Outcome = report.Skip
			return rpt
		}
	}

	bodyOutcome, bodyBlock := ev.evaluateBlock(e, ev.root, rule.Body)
	rpt.Body = bodyBlock
	rpt.Outcome = bodyOutcome
	return rpt
}

// Evaluate implements query.ConditionEvaluator, letting a Filter segment
// evaluate its clause block without internal/query depending on
// internal/clause. Filters are silent selection (spec.md §4.3): only the
// Pass/Fail/Skip outcome matters, so the intermediate Check/Block tree is
// discarded here rather than threaded into the enclosing report.
func (ev *Evaluator) Evaluate(this value.Value, e *env.Environment, cs *ast.ConditionSet) (report.Outcome, error) {
	outcome, _ := ev.evaluateConditionSet(e, this, cs)
	return outcome, nil
}
