package eval

import (
	"github.com/ritamzico/guard/internal/ast"
	"github.com/ritamzico/guard/internal/clause"
	"github.com/ritamzico/guard/internal/env"
	"github.com/ritamzico/guard/internal/report"
	"github.com/ritamzico/guard/internal/value"
)

// evaluateBlock evaluates blk's statements in order against this,
// combining their outcomes by conjunction (spec.md §4.5). Bindings
// contribute no outcome on success; a binding that fails to declare
// (e.g. shadowing a visible name) contributes a Fail with a diagnostic.
func (ev *Evaluator) evaluateBlock(e *env.Environment, this value.Value, blk *ast.Block) (report.Outcome, *report.Block) {
	rb := &report.Block{}
	var outcomes []report.Outcome

	for _, st := range blk.Statements {
		switch {
		case st.Binding != nil:
			if err := e.Declare(st.Binding.Name, st.Binding.Expr, this); err != nil {
				rb.Checks = append(rb.Checks, &report.Check{
					Pos:        st.Binding.Pos,
					Outcome:    report.Fail,
					Diagnostic: err.Error(),
				})
				outcomes = append(outcomes, report.Fail)
			}

		case st.Condition != nil:
			outcome, checks := ev.evaluateDisjunction(e, this, st.Condition)
			rb.Checks = append(rb.Checks, checks...)
			outcomes = append(outcomes, outcome)

		case st.QueryBlock != nil:
			outcome, child := ev.evaluateQueryBlock(e, this, st.QueryBlock)
			rb.Children = append(rb.Children, child)
			outcomes = append(outcomes, outcome)

		case st.WhenBlock != nil:
			outcome, child := ev.evaluateWhenBlock(e, this, st.WhenBlock)
			rb.Children = append(rb.Children, child)
			outcomes = append(outcomes, outcome)
		}
	}

	rb.Outcome = report.And(outcomes)
	return rb.Outcome, rb
}

// evaluateConditionSet evaluates a conjunction of disjunctions (a `when`
// gate or a Filter segment's clause block) against this.
func (ev *Evaluator) evaluateConditionSet(e *env.Environment, this value.Value, cs *ast.ConditionSet) (report.Outcome, *report.Block) {
	rb := &report.Block{}
	var outcomes []report.Outcome

	for _, d := range cs.Disjunctions {
		outcome, checks := ev.evaluateDisjunction(e, this, d)
		rb.Checks = append(rb.Checks, checks...)
		outcomes = append(outcomes, outcome)
	}

	rb.Outcome = report.And(outcomes)
	return rb.Outcome, rb
}

// evaluateDisjunction evaluates `term or term or ...` (spec.md §3.4).
func (ev *Evaluator) evaluateDisjunction(e *env.Environment, this value.Value, d *ast.Disjunction) (report.Outcome, []*report.Check) {
	outcomes := make([]report.Outcome, 0, len(d.Terms))
	checks := make([]*report.Check, 0, len(d.Terms))

	for _, t := range d.Terms {
		outcome, check := ev.evaluateTerm(e, this, t)
		outcomes = append(outcomes, outcome)
		checks = append(checks, check)
	}

	return report.Or(outcomes), checks
}

// evaluateTerm evaluates one inline clause or named-rule reference
// (spec.md §3.2, §4.5).
func (ev *Evaluator) evaluateTerm(e *env.Environment, this value.Value, t *ast.Term) (report.Outcome, *report.Check) {
	if t.Clause != nil {
		return clause.Evaluate(this, e, ev.resolver, t.Clause)
	}

	outcome, err := ev.evaluateRuleByNameAsCondition(t.RuleRef)
	if err != nil {
		return report.Fail, &report.Check{
			Operator:   "rule:" + t.RuleRef,
			Pos:        t.Pos,
			Outcome:    report.Fail,
			Diagnostic: err.Error(),
		}
	}
	return outcome, &report.Check{Operator: "rule:" + t.RuleRef, Pos: t.Pos, Outcome: outcome}
}

func (ev *Evaluator) evaluateRuleByNameAsCondition(name string) (report.Outcome, error) {
	rpt, err := ev.evaluateRuleByName(name)
	if err != nil {
		return report.Fail, err
	}
	return rpt.Outcome, nil
}

// evaluateQueryBlock resolves qb.Query, then evaluates qb.Body once per
// resolved element with that element as the new "this" (spec.md §4.5).
// An empty result with no retrieval errors yields Skip; retrieval errors
// without any resolved values yield Fail.
func (ev *Evaluator) evaluateQueryBlock(e *env.Environment, this value.Value, qb *ast.QueryBlock) (report.Outcome, *report.Block) {
	rb := &report.Block{}

	seq, err := ev.resolver.Resolve(e, this, qb.Query)
	if err != nil {
		rb.Outcome = report.Fail
		rb.Checks = append(rb.Checks, &report.Check{Pos: qb.Pos, Outcome: report.Fail, Diagnostic: err.Error()})
		return rb.Outcome, rb
	}

	vals := seq.Values()
	if len(vals) == 0 {
		if len(seq.Errors()) > 0 {
			rb.Outcome = report.Fail
		} else {
			rb.Outcome = report.Skip
		}
		return rb.Outcome, rb
	}

	outcomes := make([]report.Outcome, 0, len(vals))
	for _, v := range vals {
		e.Push()
		outcome, child := ev.evaluateBlock(e, v, qb.Body)
		e.Pop()
		rb.Children = append(rb.Children, child)
		outcomes = append(outcomes, outcome)
	}

	rb.Outcome = report.And(outcomes)
	return rb.Outcome, rb
}

// evaluateWhenBlock evaluates wb.Condition; wb.Body runs only if it is
// Pass, otherwise the whole when-block is Skip (spec.md §3.4, §4.5).
func (ev *Evaluator) evaluateWhenBlock(e *env.Environment, this value.Value, wb *ast.WhenBlock) (report.Outcome, *report.Block) {
	condOutcome, condBlock := ev.evaluateConditionSet(e, this, wb.Condition)
	if condOutcome != report.Pass {
		return report.Skip, &report.Block{Outcome: report.Skip, Children: []*report.Block{condBlock}}
	}

	e.Push()
	bodyOutcome, bodyBlock := ev.evaluateBlock(e, this, wb.Body)
	e.Pop()

	return bodyOutcome, &report.Block{Outcome: bodyOutcome, Children: []*report.Block{condBlock, bodyBlock}}
}
