package results

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/domain/catalog"
)

// ResolvedParameterValue is one entry row: the parameter definition flattened
// against the patient (range already resolved) plus the current value. Values
// are held as entry-form strings until save.
type ResolvedParameterValue struct {
	Name          string                   `json:"name"`
	Unit          string                   `json:"unit,omitempty"`
	Kind          string                   `json:"kind"`
	Formula       string                   `json:"formula,omitempty"`
	Value         string                   `json:"value"`
	NormalRange   string                   `json:"normal_range,omitempty"`
	Suggestions   []catalog.Suggestion     `json:"suggestions,omitempty"`
	SubParameters []ResolvedParameterValue `json:"sub_parameters,omitempty"`
}

var rangeBounds = regexp.MustCompile(`-?\d+(\.\d+)?`)

// OutOfRange reports whether the current value falls outside the resolved
// range text. It is derived on demand and never persisted. Values that are
// not plain numbers, and ranges without two numeric bounds, are never flagged.
func (p *ResolvedParameterValue) OutOfRange() bool {
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return false
	}
	bounds := rangeBounds.FindAllString(p.NormalRange, 2)
	if len(bounds) != 2 {
		return false
	}
	lo, err1 := strconv.ParseFloat(bounds[0], 64)
	hi, err2 := strconv.ParseFloat(bounds[1], 64)
	if err1 != nil || err2 != nil {
		return false
	}
	return v < lo || v > hi
}

// TestEntry is the entry sheet for one booked test. Outsourced tests carry no
// parameters: they are listed but never seeded or validated.
type TestEntry struct {
	TestID      uuid.UUID                      `json:"test_id"`
	TestName    string                         `json:"test_name"`
	TestKey     string                         `json:"test_key"`
	Outsourced  bool                           `json:"outsourced"`
	Parameters  []ResolvedParameterValue       `json:"parameters,omitempty"`
	SubHeadings []catalog.SubHeadingDefinition `json:"subheadings,omitempty"`
}

func (t *TestEntry) find(name string) *ResolvedParameterValue {
	for i := range t.Parameters {
		if t.Parameters[i].Name == name {
			return &t.Parameters[i]
		}
	}
	return nil
}

// EntrySession is the full data-entry state for one registration.
type EntrySession struct {
	RegistrationID uuid.UUID   `json:"registration_id"`
	PatientID      uuid.UUID   `json:"patient_id"`
	PatientName    string      `json:"patient_name"`
	AgeDays        int         `json:"age_days"`
	Gender         string      `json:"gender"`
	Tests          []TestEntry `json:"tests"`
}

// seedParameters builds the entry rows for one test: the definition's
// parameters in order, filtered by the booking's selection when one was made,
// with ranges resolved against the patient and any previously saved values
// carried in over the defaults.
func seedParameters(defs []catalog.ParameterDefinition, selected []string, prior *SavedTest, ageDays int, gender string) []ResolvedParameterValue {
	allow := map[string]bool{}
	for _, s := range selected {
		allow[s] = true
	}
	out := make([]ResolvedParameterValue, 0, len(defs))
	for i := range defs {
		def := &defs[i]
		if len(allow) > 0 && !allow[def.Name] {
			continue
		}
		out = append(out, seedOne(def, prior.find(def.Name), ageDays, gender))
	}
	return out
}

func seedOne(def *catalog.ParameterDefinition, prior *SavedParameter, ageDays int, gender string) ResolvedParameterValue {
	rv := ResolvedParameterValue{
		Name:        def.Name,
		Unit:        def.Unit,
		Kind:        def.Kind,
		Formula:     def.Formula,
		Value:       def.Default,
		NormalRange: ResolveRange(def, ageDays, gender),
		Suggestions: def.Suggestions,
	}
	if prior != nil {
		rv.Value = prior.ValueString()
	}
	for j := range def.SubParameters {
		sub := &def.SubParameters[j]
		var priorSub *SavedParameter
		if prior != nil {
			for k := range prior.SubParameters {
				if prior.SubParameters[k].Name == sub.Name {
					priorSub = &prior.SubParameters[k]
					break
				}
			}
		}
		rv.SubParameters = append(rv.SubParameters, seedOne(sub, priorSub, ageDays, gender))
	}
	return rv
}

// SetValue records an operator keystroke for a parameter, applying the
// numeric entry filter for numeric kinds. It reports whether the input was
// accepted; rejected input leaves the previous value in place. An empty
// subName targets a top-level parameter.
func (s *EntrySession) SetValue(testIdx int, paramName, subName, raw string) (bool, error) {
	if testIdx < 0 || testIdx >= len(s.Tests) {
		return false, fmt.Errorf("test index %d out of range", testIdx)
	}
	t := &s.Tests[testIdx]
	if t.Outsourced {
		return false, fmt.Errorf("test %q is outsourced", t.TestName)
	}
	p := t.find(paramName)
	if p == nil {
		return false, fmt.Errorf("no parameter %q in test %q", paramName, t.TestName)
	}
	if subName != "" {
		var sub *ResolvedParameterValue
		for i := range p.SubParameters {
			if p.SubParameters[i].Name == subName {
				sub = &p.SubParameters[i]
				break
			}
		}
		if sub == nil {
			return false, fmt.Errorf("no sub-parameter %q under %q", subName, paramName)
		}
		p = sub
	}
	if p.Kind == catalog.KindNumeric && !AcceptNumericInput(raw) {
		return false, nil
	}
	p.Value = raw
	return true, nil
}
