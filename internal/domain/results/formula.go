package results

import (
	"fmt"

	"github.com/lims/lims/internal/domain/catalog"
)

// evaluateFormula computes a derived value from the target's formula and its
// sibling rows. The returned string is already rounded for display. An error
// means the expression could not be evaluated with the current siblings, in
// which case the caller leaves the target untouched.
func evaluateFormula(target *ResolvedParameterValue, siblings []ResolvedParameterValue) (string, error) {
	vals := make(map[string]string, len(siblings))
	for i := range siblings {
		if siblings[i].Name == target.Name {
			continue
		}
		vals[siblings[i].Name] = siblings[i].Value
	}
	expr := substituteTokens(target.Formula, vals)
	v, err := evalArithmetic(expr)
	if err != nil {
		return "", err
	}
	return formatResult(v), nil
}

// Calculate evaluates one parameter's formula on operator request. The value
// is replaced only on a successful evaluation.
func (s *EntrySession) Calculate(testIdx int, paramName string) error {
	if testIdx < 0 || testIdx >= len(s.Tests) {
		return fmt.Errorf("test index %d out of range", testIdx)
	}
	t := &s.Tests[testIdx]
	p := t.find(paramName)
	if p == nil {
		return fmt.Errorf("no parameter %q in test %q", paramName, t.TestName)
	}
	if p.Formula == "" {
		return fmt.Errorf("parameter %q has no formula", paramName)
	}
	v, err := evaluateFormula(p, t.Parameters)
	if err != nil {
		return err
	}
	p.Value = v
	return nil
}

// RecomputeAllFormulas re-evaluates every formula parameter across the
// session, walking each test's parameters in definition order. Evaluation
// uses sibling values as they stand at that point in the pass, so a formula
// that references a later formula parameter sees its pre-pass value.
// Parameters whose formula fails to evaluate keep their current value.
func (s *EntrySession) RecomputeAllFormulas() {
	for ti := range s.Tests {
		t := &s.Tests[ti]
		if t.Outsourced {
			continue
		}
		for pi := range t.Parameters {
			p := &t.Parameters[pi]
			if p.Kind != catalog.KindNumeric || p.Formula == "" {
				continue
			}
			if v, err := evaluateFormula(p, t.Parameters); err == nil {
				p.Value = v
			}
		}
	}
}
