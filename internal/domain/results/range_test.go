package results

import (
	"testing"

	"github.com/lims/lims/internal/domain/catalog"
)

func bands(kv ...string) []catalog.RangeBand {
	var out []catalog.RangeBand
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, catalog.RangeBand{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestResolveRange(t *testing.T) {
	def := &catalog.ParameterDefinition{
		Name: "Hemoglobin",
		Kind: catalog.KindNumeric,
		Ranges: map[string][]catalog.RangeBand{
			"male": bands(
				"0-30d", "13.4 - 19.8",
				"1-12m", "10.0 - 15.0",
				"1-12y", "11.5 - 15.5",
				"13-200y", "13.5 - 17.5",
			),
			"female": bands(
				"0-12y", "11.5 - 15.5",
				"13-200y", "12.0 - 16.0",
			),
		},
	}

	tests := []struct {
		name    string
		ageDays int
		gender  string
		want    string
	}{
		{"newborn day band", 15, "male", "13.4 - 19.8"},
		{"day band upper bound inclusive", 30, "male", "13.4 - 19.8"},
		{"month band", 90, "male", "10.0 - 15.0"},
		{"year band", 5 * 365, "male", "11.5 - 15.5"},
		{"adult male", 30 * 365, "male", "13.5 - 17.5"},
		{"adult female", 30 * 365, "female", "12.0 - 16.0"},
		{"other gender uses female bucket", 30 * 365, "other", "12.0 - 16.0"},
		{"empty gender uses female bucket", 5 * 365, "", "11.5 - 15.5"},
		{"gap in coverage falls back to last band", 4500, "female", "12.0 - 16.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRange(def, tt.ageDays, tt.gender); got != tt.want {
				t.Errorf("ResolveRange(%d, %q) = %q, want %q", tt.ageDays, tt.gender, got, tt.want)
			}
		})
	}
}

func TestResolveRangeEdges(t *testing.T) {
	t.Run("no bands yields empty", func(t *testing.T) {
		def := &catalog.ParameterDefinition{Name: "X", Kind: catalog.KindNumeric}
		if got := ResolveRange(def, 100, "male"); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("malformed band never matches", func(t *testing.T) {
		def := &catalog.ParameterDefinition{
			Name: "X",
			Kind: catalog.KindNumeric,
			Ranges: map[string][]catalog.RangeBand{
				"male": bands("garbage", "1 - 2", "0-200y", "3 - 4"),
			},
		}
		if got := ResolveRange(def, 10, "male"); got != "3 - 4" {
			t.Errorf("got %q, want %q", got, "3 - 4")
		}
	})

	t.Run("all malformed falls back to last", func(t *testing.T) {
		def := &catalog.ParameterDefinition{
			Name: "X",
			Kind: catalog.KindNumeric,
			Ranges: map[string][]catalog.RangeBand{
				"male": bands("oops", "1 - 2", "also-bad-x", "5 - 6"),
			},
		}
		if got := ResolveRange(def, 10, "male"); got != "5 - 6" {
			t.Errorf("got %q, want %q", got, "5 - 6")
		}
	})
}

func TestBandInterval(t *testing.T) {
	tests := []struct {
		key    string
		lo, hi float64
	}{
		{"0-12y", 0, 12 * 365},
		{"1-6m", 30, 180},
		{"0-30d", 0, 30},
		{"5-10", 5, 10},
	}
	for _, tt := range tests {
		lo, hi := bandInterval(tt.key)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("bandInterval(%q) = (%v, %v), want (%v, %v)", tt.key, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestTestKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Complete Blood Count", "complete_blood_count"},
		{"HbA1c", "hba1c"},
		{"T3. T4 [Free]", "t3_t4_free"},
		{"Vit-D #25", "vit-d_25"},
	}
	for _, tt := range tests {
		if got := TestKey(tt.in); got != tt.want {
			t.Errorf("TestKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
