package results

import (
	"testing"

	"github.com/lims/lims/internal/domain/catalog"
)

func cbcDefinition() []catalog.ParameterDefinition {
	return []catalog.ParameterDefinition{
		{Name: "Hemoglobin", Unit: "g/dL", Kind: catalog.KindNumeric,
			Ranges: map[string][]catalog.RangeBand{
				"male":   bands("0-200y", "13.5 - 17.5"),
				"female": bands("0-200y", "12.0 - 16.0"),
			}},
		{Name: "PCV", Unit: "%", Kind: catalog.KindNumeric, Formula: "Hemoglobin * 3"},
		{Name: "Neutrophils", Unit: "%", Kind: catalog.KindNumeric},
		{Name: "Lymphocytes", Unit: "%", Kind: catalog.KindNumeric},
		{Name: "Eosinophils", Unit: "%", Kind: catalog.KindNumeric},
		{Name: "Morphology", Kind: catalog.KindText, Default: "Normocytic"},
		{Name: "RBC Indices", Kind: catalog.KindNumeric, SubParameters: []catalog.ParameterDefinition{
			{Name: "MCV", Unit: "fL", Kind: catalog.KindNumeric},
			{Name: "MCH", Unit: "pg", Kind: catalog.KindNumeric},
		}},
	}
}

func cbcSubHeadings() []catalog.SubHeadingDefinition {
	return []catalog.SubHeadingDefinition{
		{Title: "Differential Count", MustSumTo100: true,
			Parameters: []string{"Neutrophils", "Lymphocytes", "Eosinophils"}},
	}
}

func cbcSession() *EntrySession {
	return &EntrySession{
		AgeDays: 30 * 365,
		Gender:  "male",
		Tests: []TestEntry{{
			TestName:    "Complete Blood Count",
			TestKey:     "complete_blood_count",
			Parameters:  seedParameters(cbcDefinition(), nil, nil, 30*365, "male"),
			SubHeadings: cbcSubHeadings(),
		}},
	}
}

func TestSeedParameters(t *testing.T) {
	params := seedParameters(cbcDefinition(), nil, nil, 30*365, "male")
	if len(params) != 7 {
		t.Fatalf("seeded %d parameters, want 7", len(params))
	}
	if params[0].NormalRange != "13.5 - 17.5" {
		t.Errorf("Hemoglobin range = %q", params[0].NormalRange)
	}
	if params[5].Value != "Normocytic" {
		t.Errorf("text default = %q, want Normocytic", params[5].Value)
	}
	if len(params[6].SubParameters) != 2 {
		t.Fatalf("RBC Indices seeded %d sub-parameters, want 2", len(params[6].SubParameters))
	}

	t.Run("selection filters top level", func(t *testing.T) {
		params := seedParameters(cbcDefinition(), []string{"Hemoglobin", "PCV"}, nil, 30*365, "male")
		if len(params) != 2 {
			t.Fatalf("seeded %d parameters, want 2", len(params))
		}
		if params[0].Name != "Hemoglobin" || params[1].Name != "PCV" {
			t.Errorf("wrong parameters kept: %s, %s", params[0].Name, params[1].Name)
		}
	})

	t.Run("prior values override defaults", func(t *testing.T) {
		prior := &SavedTest{Parameters: []SavedParameter{
			{Name: "Hemoglobin", Value: 14.2},
			{Name: "Morphology", Value: "Microcytic"},
			{Name: "RBC Indices", SubParameters: []SavedParameter{{Name: "MCH", Value: "4.50"}}},
		}}
		params := seedParameters(cbcDefinition(), nil, prior, 30*365, "male")
		if params[0].Value != "14.2" {
			t.Errorf("Hemoglobin = %q, want 14.2", params[0].Value)
		}
		if params[5].Value != "Microcytic" {
			t.Errorf("Morphology = %q, want Microcytic", params[5].Value)
		}
		if params[6].SubParameters[1].Value != "4.50" {
			t.Errorf("MCH = %q, want 4.50", params[6].SubParameters[1].Value)
		}
		if params[6].SubParameters[0].Value != "" {
			t.Errorf("MCV = %q, want empty", params[6].SubParameters[0].Value)
		}
	})
}

func TestSetValue(t *testing.T) {
	sess := cbcSession()

	ok, err := sess.SetValue(0, "Hemoglobin", "", "14.2")
	if err != nil || !ok {
		t.Fatalf("SetValue: ok=%v err=%v", ok, err)
	}
	if sess.Tests[0].Parameters[0].Value != "14.2" {
		t.Errorf("value = %q", sess.Tests[0].Parameters[0].Value)
	}

	ok, err = sess.SetValue(0, "Hemoglobin", "", "14.2abc")
	if err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if ok {
		t.Error("SetValue accepted malformed numeric input")
	}
	if sess.Tests[0].Parameters[0].Value != "14.2" {
		t.Errorf("rejected input clobbered value: %q", sess.Tests[0].Parameters[0].Value)
	}

	ok, err = sess.SetValue(0, "Morphology", "", "whatever text at all!")
	if err != nil || !ok {
		t.Fatalf("text kind should accept anything: ok=%v err=%v", ok, err)
	}
}

func TestSetValueSubParameter(t *testing.T) {
	sess := cbcSession()
	if _, err := sess.SetValue(0, "RBC Indices", "MCV", "88"); err != nil {
		t.Fatalf("SetValue sub: %v", err)
	}
	if sess.Tests[0].Parameters[6].SubParameters[0].Value != "88" {
		t.Errorf("MCV not set")
	}
	if _, err := sess.SetValue(0, "RBC Indices", "Nope", "1"); err == nil {
		t.Error("expected error for unknown sub-parameter")
	}
}

func TestCalculate(t *testing.T) {
	sess := cbcSession()
	if _, err := sess.SetValue(0, "Hemoglobin", "", "14.2"); err != nil {
		t.Fatal(err)
	}
	if err := sess.Calculate(0, "PCV"); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got := sess.Tests[0].Parameters[1].Value; got != "42.6" {
		t.Errorf("PCV = %q, want 42.6", got)
	}

	t.Run("failure leaves value untouched", func(t *testing.T) {
		sess := cbcSession()
		sess.Tests[0].Parameters[1].Value = "held"
		if err := sess.Calculate(0, "PCV"); err == nil {
			t.Error("expected error with empty Hemoglobin")
		}
		if sess.Tests[0].Parameters[1].Value != "held" {
			t.Errorf("value changed to %q", sess.Tests[0].Parameters[1].Value)
		}
	})
}

func TestRecomputeAllFormulas(t *testing.T) {
	sess := cbcSession()
	if _, err := sess.SetValue(0, "Hemoglobin", "", "14.2"); err != nil {
		t.Fatal(err)
	}
	sess.RecomputeAllFormulas()
	if got := sess.Tests[0].Parameters[1].Value; got != "42.6" {
		t.Errorf("PCV = %q, want 42.6", got)
	}
}

// A formula referencing a later formula parameter reads that parameter's
// pre-pass value: recomputation is a single pass in definition order.
func TestRecomputeSinglePass(t *testing.T) {
	sess := &EntrySession{Tests: []TestEntry{{
		TestName: "Derived",
		TestKey:  "derived",
		Parameters: []ResolvedParameterValue{
			{Name: "A", Kind: catalog.KindNumeric, Formula: "B + 1", Value: ""},
			{Name: "B", Kind: catalog.KindNumeric, Formula: "C * 2", Value: "5"},
			{Name: "C", Kind: catalog.KindNumeric, Value: "10"},
		},
	}}}
	sess.RecomputeAllFormulas()
	if got := sess.Tests[0].Parameters[0].Value; got != "6" {
		t.Errorf("A = %q, want 6 (pre-pass B)", got)
	}
	if got := sess.Tests[0].Parameters[1].Value; got != "20" {
		t.Errorf("B = %q, want 20", got)
	}
}

func TestCheckGroupSums(t *testing.T) {
	set := func(sess *EntrySession, name, v string) {
		if _, err := sess.SetValue(0, name, "", v); err != nil {
			panic(err)
		}
	}

	t.Run("exactly 100 passes", func(t *testing.T) {
		sess := cbcSession()
		set(sess, "Neutrophils", "60")
		set(sess, "Lymphocytes", "35")
		set(sess, "Eosinophils", "5")
		if flags := sess.CheckGroupSums(); flags["0-0"] {
			t.Error("group flagged at exactly 100")
		}
	})

	t.Run("float noise within slack passes", func(t *testing.T) {
		sess := cbcSession()
		set(sess, "Neutrophils", "33.3")
		set(sess, "Lymphocytes", "33.3")
		set(sess, "Eosinophils", "33.4")
		if flags := sess.CheckGroupSums(); flags["0-0"] {
			t.Error("group flagged within tolerance")
		}
	})

	t.Run("over limit flags", func(t *testing.T) {
		sess := cbcSession()
		set(sess, "Neutrophils", "60")
		set(sess, "Lymphocytes", "35")
		set(sess, "Eosinophils", "5.5")
		if flags := sess.CheckGroupSums(); !flags["0-0"] {
			t.Error("group not flagged above limit")
		}
	})

	t.Run("non-numeric members count as zero", func(t *testing.T) {
		sess := cbcSession()
		set(sess, "Neutrophils", "60")
		set(sess, "Lymphocytes", "")
		set(sess, "Eosinophils", "5")
		if flags := sess.CheckGroupSums(); flags["0-0"] {
			t.Error("incomplete group flagged")
		}
	})
}

func TestFillRemainder(t *testing.T) {
	sess := cbcSession()
	if _, err := sess.SetValue(0, "Neutrophils", "", "60"); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.SetValue(0, "Lymphocytes", "", "35.4"); err != nil {
		t.Fatal(err)
	}
	rem, err := sess.FillRemainder(0, 0)
	if err != nil {
		t.Fatalf("FillRemainder: %v", err)
	}
	if rem != 5 {
		t.Errorf("remainder = %d, want 5", rem)
	}
	if got := sess.Tests[0].Parameters[4].Value; got != "5" {
		t.Errorf("Eosinophils = %q, want 5", got)
	}

	if _, err := sess.FillRemainder(0, 3); err == nil {
		t.Error("expected error for bad subheading index")
	}
}

func TestOutOfRange(t *testing.T) {
	tests := []struct {
		value, rng string
		want       bool
	}{
		{"14.2", "13.5 - 17.5", false},
		{"12.9", "13.5 - 17.5", true},
		{"18", "13.5 - 17.5", true},
		{"13.5", "13.5 - 17.5", false},
		{"<5", "13.5 - 17.5", false},
		{"", "13.5 - 17.5", false},
		{"14.2", "", false},
		{"14.2", "normal", false},
	}
	for _, tt := range tests {
		p := ResolvedParameterValue{Value: tt.value, NormalRange: tt.rng}
		if got := p.OutOfRange(); got != tt.want {
			t.Errorf("OutOfRange(%q in %q) = %v, want %v", tt.value, tt.rng, got, tt.want)
		}
	}
}
