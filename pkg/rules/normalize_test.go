package rules

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func fixedClock() Clock {
	return func() time.Time { return time.UnixMilli(1700000000000) }
}

func TestNormalizeOnReadCoercions(t *testing.T) {
	got := normalizeOnRead(Record{
		ID:             "42",
		RuleCode:       " NID_LEN ",
		TargetField:    "nid",
		ValidationType: "length",
		Severity:       "HIGH",
		Category:       "identity",
		Parameters:     []Parameter{{Name: "min", Value: "10"}},
	}, fixedClock())

	want := Rule{
		ID:             42,
		RuleCode:       "NID_LEN",
		TargetField:    "nid",
		ValidationType: TypeLength,
		Severity:       SeverityHigh,
		Category:       CategoryIdentity,
		Active:         true,
		Parameters:     []Parameter{{Name: "min", Value: "10"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalized rule mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeOnReadDefaults(t *testing.T) {
	got := normalizeOnRead(Record{ID: float64(7), Active: boolPtr(false)}, fixedClock())
	if got.Severity != SeverityDefault {
		t.Fatalf("severity = %q, want %q", got.Severity, SeverityDefault)
	}
	if got.Active {
		t.Fatalf("explicit false must stay inactive")
	}
	if got.IDMinted || got.ID != 7 {
		t.Fatalf("id = %d minted=%v", got.ID, got.IDMinted)
	}
}

func TestNormalizeOnReadMintsNonNumericIDs(t *testing.T) {
	for _, raw := range []any{nil, "tmp-1", 3.5, "", map[string]any{}} {
		got := normalizeOnRead(Record{ID: raw}, fixedClock())
		if !got.IDMinted || got.ID != 1700000000000 {
			t.Errorf("id %#v: got id=%d minted=%v", raw, got.ID, got.IDMinted)
		}
	}
}

func TestNormalizeOnReadKeepsNumericZeroAndNegativeIDs(t *testing.T) {
	cases := map[any]int64{
		0:          0,
		float64(0): 0,
		"0":        0,
		-4:         -4,
		"-12":      -12,
	}
	for raw, want := range cases {
		got := normalizeOnRead(Record{ID: raw}, fixedClock())
		if got.IDMinted || got.ID != want {
			t.Errorf("id %#v: got id=%d minted=%v", raw, got.ID, got.IDMinted)
		}
	}
	if _, ok := ParseID(0); ok {
		t.Fatalf("ParseID must still reject zero")
	}
}

func TestNormalizeOnReadIsIdempotent(t *testing.T) {
	inputs := []Record{
		{ID: "12", Severity: "Medium", ValidationType: "regex"},
		{ID: json.Number("3"), Active: boolPtr(false), Condition: strPtr("age > 18")},
		{ID: 9, Severity: "", Category: "contact", Parameters: []Parameter{{Name: " pattern ", Value: "^x$"}}},
		{ID: "not-a-number", Severity: "LOW"},
	}
	for _, in := range inputs {
		once := normalizeOnRead(in, fixedClock())
		twice := normalizeOnRead(NormalizeBeforeWrite(once), fixedClock())
		twice.IDMinted = once.IDMinted
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("not idempotent for %#v (-once +twice):\n%s", in, diff)
		}
	}
}

func TestNormalizeBeforeWrite(t *testing.T) {
	rec := NormalizeBeforeWrite(Rule{RuleCode: "A", Active: true})
	if rec.ID != nil {
		t.Fatalf("zero id must be omitted, got %#v", rec.ID)
	}
	if rec.Condition == nil || *rec.Condition != "" {
		t.Fatalf("condition must default to empty string")
	}
	if rec.Active == nil || !*rec.Active {
		t.Fatalf("active must be carried")
	}

	rec = NormalizeBeforeWrite(Rule{ID: 5})
	if rec.ID != int64(5) {
		t.Fatalf("id = %#v", rec.ID)
	}
}

func TestWriteReadRoundTripKeepsSeverityAndActive(t *testing.T) {
	cases := []struct {
		severity string
		active   *bool
	}{
		{"HIGH", nil},
		{"low", boolPtr(false)},
		{"", boolPtr(true)},
		{"Medium", boolPtr(false)},
	}
	for _, tc := range cases {
		first := normalizeOnRead(Record{ID: 1, Severity: tc.severity, Active: tc.active}, fixedClock())
		back := normalizeOnRead(NormalizeBeforeWrite(first), fixedClock())
		if back.Severity != first.Severity || back.Active != first.Active {
			t.Errorf("round trip changed %+v: got severity=%q active=%v", tc, back.Severity, back.Active)
		}
	}
}

func TestParseID(t *testing.T) {
	cases := map[any]int64{
		"15":       15,
		" 8 ":      8,
		"3.0":      3,
		int64(4):   4,
		float64(2): 2,
	}
	for raw, want := range cases {
		got, ok := ParseID(raw)
		if !ok || got != want {
			t.Errorf("ParseID(%#v) = %d, %v", raw, got, ok)
		}
	}
	for _, raw := range []any{"abc", "", nil, true, "1e400", float64(1.5)} {
		if _, ok := ParseID(raw); ok {
			t.Errorf("ParseID(%#v) should fail", raw)
		}
	}
}
