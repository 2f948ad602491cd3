package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
)

func TestGroupFieldsFirstOccurrenceOrder(t *testing.T) {
	fields := []model.FieldDescriptor{
		{Name: "salary", Group: "Payroll"},
		{Name: "name", Group: "Identity"},
		{Name: "bonus", Group: "Payroll"},
		{Name: "notes", Group: "  "},
		{Name: "email", Group: "Contact", GroupBackendKey: "contact_info"},
		{Name: "nid", Group: " Identity "},
	}

	groups := model.GroupFields(fields)
	if diff := cmp.Diff([]string{"Payroll", "Identity", "General", "Contact"}, groups.Names()); diff != "" {
		t.Fatalf("group order mismatch (-want +got):\n%s", diff)
	}
	if groups.Default() != "Payroll" {
		t.Fatalf("default group = %q", groups.Default())
	}

	identity, ok := groups.Get("Identity")
	if !ok {
		t.Fatalf("identity group missing")
	}
	if len(identity.Fields) != 2 || identity.Fields[0].Name != "name" || identity.Fields[1].Name != "nid" {
		t.Fatalf("identity fields = %+v", identity.Fields)
	}
	if identity.Key() != "identity" {
		t.Fatalf("identity key = %q", identity.Key())
	}
	if got := groups.BackendKey("Contact"); got != "contact_info" {
		t.Fatalf("contact backend key = %q", got)
	}
	if got := groups.BackendKey("Missing"); got != "" {
		t.Fatalf("missing group backend key = %q", got)
	}

	contact, _ := groups.Get("Contact")
	if contact.Key() != "contact_info" {
		t.Fatalf("contact key = %q", contact.Key())
	}
}

func TestGroupFieldsOrderMatchesFirstOccurrenceForPermutations(t *testing.T) {
	names := []string{"A", "B", "C", "", "B", "A", "D"}
	for shift := 0; shift < len(names); shift++ {
		var fields []model.FieldDescriptor
		var want []string
		seen := map[string]bool{}
		for i := range names {
			group := names[(i+shift)%len(names)]
			fields = append(fields, model.FieldDescriptor{Name: "f", Group: group})
			key := group
			if key == "" {
				key = model.DefaultGroup
			}
			if !seen[key] {
				seen[key] = true
				want = append(want, key)
			}
		}
		if diff := cmp.Diff(want, model.GroupFields(fields).Names()); diff != "" {
			t.Fatalf("shift %d: order mismatch (-want +got):\n%s", shift, diff)
		}
	}
}

func TestGroupFieldsEmpty(t *testing.T) {
	groups := model.GroupFields(nil)
	if len(groups) != 0 || groups.Default() != "" {
		t.Fatalf("expected empty groups, got %+v", groups)
	}
}
