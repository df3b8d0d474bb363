package report

import (
	"testing"

	"github.com/lims/lims/internal/domain/results"
)

func TestLabReportRows(t *testing.T) {
	saved := map[string]results.SavedTest{
		"complete_blood_count": {
			Parameters: []results.SavedParameter{
				{Name: "Hemoglobin", Value: 18.2, Unit: "g/dL", NormalRange: "13.5 - 17.5"},
				{Name: "RBC Indices", SubParameters: []results.SavedParameter{
					{Name: "MCV", Value: 88.0, Unit: "fL", NormalRange: "80 - 100"},
				}},
			},
		},
		"lipid_profile": {
			Parameters: []results.SavedParameter{
				{Name: "LDL", Value: "pending", Unit: "mg/dL", NormalRange: "0 - 130"},
			},
		},
	}

	rows := labReportRows(saved)
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	if !rows[0].heading || rows[0].name != "Complete Blood Count" {
		t.Errorf("first row = %+v", rows[0])
	}
	if !rows[1].flagged {
		t.Error("out-of-range hemoglobin not flagged")
	}
	if rows[1].value != "18.2" {
		t.Errorf("value rendered as %q", rows[1].value)
	}
	if rows[3].name != "  MCV" {
		t.Errorf("sub-parameter not indented: %q", rows[3].name)
	}
	if !rows[4].heading || rows[4].name != "Lipid Profile" {
		t.Errorf("tests not sorted by key: %+v", rows[4])
	}
	if rows[5].flagged {
		t.Error("non-numeric value flagged")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"complete_blood_count", "Complete Blood Count"},
		{"hba1c", "Hba1c"},
		{"x", "X"},
	}
	for _, tt := range tests {
		if got := displayName(tt.in); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAmount(t *testing.T) {
	if got := amount(1234.5); got != "1234.50" {
		t.Errorf("amount = %q", got)
	}
}
