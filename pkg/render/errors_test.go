package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/session"
)

func TestMapErrorPayload(t *testing.T) {
	tpl := model.FormTemplate{Fields: []model.FieldDescriptor{
		{Name: "name", Group: "Identity"},
		{Name: "email", Group: "Contact"},
	}}
	payload := map[string][]string{
		"/body/name":             {"Name is required"},
		"$[1].contact.email":     {"Email taken", " Email taken "},
		"data/1/name":            {"Too short"},
		"non_field_errors":       {"Form level error"},
		"request/body/unknown":   {"Should fall back to form errors"},
		"":                       {"Unscoped form error"},
		"errors.0.identity.name": {"Name reserved"},
	}

	mapped := render.MapErrorPayload(tpl, payload)

	want := map[int]session.ErrorRecord{
		0: {"name": "Name is required; Name reserved"},
		1: {"email": "Email taken", "name": "Too short"},
	}
	opts := cmp.Transformer("splitJoined", func(r session.ErrorRecord) map[string][]string {
		out := make(map[string][]string, len(r))
		for k, v := range r {
			out[k] = splitMessages(v)
		}
		return out
	})
	if diff := cmp.Diff(want, mapped.Entries, opts, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("entry errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func splitMessages(joined string) []string {
	out := []string{}
	start := 0
	for i := 0; i+1 < len(joined); i++ {
		if joined[i] == ';' && joined[i+1] == ' ' {
			out = append(out, joined[start:i])
			start = i + 2
		}
	}
	return append(out, joined[start:])
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	if diff := cmp.Diff([]string{"First", "Second", "third"}, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
