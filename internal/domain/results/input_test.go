package results

import (
	"testing"

	"github.com/lims/lims/internal/domain/catalog"
)

func TestAcceptNumericInput(t *testing.T) {
	accept := []string{
		"", "-", "5", "5.", "5.2", "5.25", "5.253", "123", "-4.5", "<5", ">120", "<-2", ".5",
	}
	for _, in := range accept {
		if !AcceptNumericInput(in) {
			t.Errorf("AcceptNumericInput(%q) = false, want true", in)
		}
	}

	reject := []string{
		"5.2534", "abc", "5a", "1 2", "<>5", "5-", "--4", "5..2", "=5",
	}
	for _, in := range reject {
		if AcceptNumericInput(in) {
			t.Errorf("AcceptNumericInput(%q) = true, want false", in)
		}
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind string
		want interface{}
	}{
		{"plain number becomes float", "4.5", catalog.KindNumeric, 4.5},
		{"integer becomes float", "120", catalog.KindNumeric, 120.0},
		{"comparator stays string", "<5", catalog.KindNumeric, "<5"},
		{"greater-than stays string", ">120", catalog.KindNumeric, ">120"},
		{"trailing zero decimal stays string", "4.50", catalog.KindNumeric, "4.50"},
		{"trailing zero single place stays string", "7.0", catalog.KindNumeric, "7.0"},
		{"whole number with zero is numeric", "40", catalog.KindNumeric, 40.0},
		{"empty stays string", "", catalog.KindNumeric, ""},
		{"text kind untouched", "120", catalog.KindText, "120"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceValue(tt.raw, tt.kind); got != tt.want {
				t.Errorf("coerceValue(%q, %s) = %#v, want %#v", tt.raw, tt.kind, got, tt.want)
			}
		})
	}
}

func TestValueStringRoundTrip(t *testing.T) {
	for _, raw := range []string{"4.5", "<5", "4.50", "120", ""} {
		sp := SavedParameter{Name: "X", Value: coerceValue(raw, catalog.KindNumeric)}
		if got := sp.ValueString(); got != raw {
			t.Errorf("round trip of %q gave %q", raw, got)
		}
	}
}
