package results

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/domain/catalog"
)

// TestKey derives the persistence key for a test name: lowercased, spaces
// replaced with underscores, and the characters .#$[] stripped.
func TestKey(name string) string {
	k := strings.ToLower(name)
	k = strings.ReplaceAll(k, " ", "_")
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '#', '$', '[', ']':
			return -1
		}
		return r
	}, k)
}

// SavedParameter is the persisted form of one entered value. Value is a
// float64 or a string: comparator-prefixed entries and decimals with a
// significant trailing zero stay strings, everything else numeric-kind is
// stored as a number.
type SavedParameter struct {
	Name          string           `json:"name"`
	Value         interface{}      `json:"value"`
	Unit          string           `json:"unit,omitempty"`
	NormalRange   string           `json:"normal_range,omitempty"`
	SubParameters []SavedParameter `json:"sub_parameters,omitempty"`
}

// ValueString renders the persisted value back to its entry-form string.
func (sp *SavedParameter) ValueString() string {
	switch v := sp.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// SavedTest is the persisted result set for one test within a registration.
type SavedTest struct {
	TestID      uuid.UUID                     `json:"test_id"`
	Parameters  []SavedParameter              `json:"parameters"`
	SubHeadings []catalog.SubHeadingDefinition `json:"subheadings,omitempty"`
	CreatedAt   time.Time                     `json:"created_at"`
	ReportedOn  time.Time                     `json:"reported_on"`
	EnteredBy   string                        `json:"entered_by"`
}

// find returns the saved parameter with the given name, or nil.
func (st *SavedTest) find(name string) *SavedParameter {
	if st == nil {
		return nil
	}
	for i := range st.Parameters {
		if st.Parameters[i].Name == name {
			return &st.Parameters[i]
		}
	}
	return nil
}
