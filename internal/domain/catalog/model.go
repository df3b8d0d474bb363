package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Test categories.
const (
	CategoryPathology = "pathology"
	CategoryRadiology = "radiology"
)

// Parameter value kinds.
const (
	KindNumeric = "numeric"
	KindText    = "text"
)

// RangeBand is one age-banded entry in a parameter's reference-range table.
// Key encodes the age interval as "<lower>-<upper><unit>" with unit y (years),
// m (months) or d (days); Value is the range text shown beside the entered
// value, e.g. "13.5 - 17.5".
type RangeBand struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Suggestion is one entry in a text parameter's autocomplete list.
type Suggestion struct {
	Description string `json:"description"`
}

// ParameterDefinition describes a single reportable quantity within a test.
// Sub-parameters nest one level only.
type ParameterDefinition struct {
	Name          string                 `json:"name"`
	Unit          string                 `json:"unit,omitempty"`
	Kind          string                 `json:"kind"`
	Formula       string                 `json:"formula,omitempty"`
	Default       string                 `json:"default,omitempty"`
	SubParameters []ParameterDefinition  `json:"sub_parameters,omitempty"`
	Suggestions   []Suggestion           `json:"suggestions,omitempty"`
	Ranges        map[string][]RangeBand `json:"ranges,omitempty"`
}

// HasFormula reports whether the parameter's value is derived from siblings.
func (p *ParameterDefinition) HasFormula() bool {
	return p.Kind == KindNumeric && p.Formula != ""
}

// SubHeadingDefinition groups parameters under a titled cluster. When
// MustSumTo100 is set the members' numeric values are expected to total 100
// (e.g. a differential leukocyte count).
type SubHeadingDefinition struct {
	Title        string   `json:"title"`
	Parameters   []string `json:"parameters"`
	MustSumTo100 bool     `json:"must_sum_to_100"`
}

// TestDefinition maps to the test_definition table. The parameter schema is
// stored as JSONB.
type TestDefinition struct {
	ID          uuid.UUID              `db:"id" json:"id"`
	Name        string                 `db:"name" json:"name"`
	Category    string                 `db:"category" json:"category"`
	Price       float64                `db:"price" json:"price"`
	Parameters  []ParameterDefinition  `db:"parameters" json:"parameters"`
	SubHeadings []SubHeadingDefinition `db:"sub_headings" json:"sub_headings"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time              `db:"updated_at" json:"updated_at"`
}

// GlobalSuggestion maps to the suggestion_pool table: the shared autocomplete
// pool used by text parameters that declare no suggestions of their own.
type GlobalSuggestion struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
