package payload_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/payload"
	"github.com/goliatone/go-formkit/pkg/session"
)

func identityContactGroups() model.Groups {
	return model.GroupFields([]model.FieldDescriptor{
		{Name: "name", Group: "Identity"},
		{Name: "email", Group: "Contact"},
	})
}

func TestBuildGroupedEntry(t *testing.T) {
	entries := []session.Entry{{"name": "A", "email": "a@x.com"}}

	got := payload.Build(entries, identityContactGroups(), payload.Options{GroupSaveEnabled: true, EditID: "42"})
	want := map[string]any{
		"identity": map[string]any{"name": "A"},
		"contact":  map[string]any{"email": "a@x.com"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("grouped payload mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSingleVersusArray(t *testing.T) {
	entry := session.Entry{"name": "A", "email": "a@x.com"}
	groups := identityContactGroups()

	edit := payload.Build([]session.Entry{entry}, groups, payload.Options{EditID: "7"})
	if _, ok := edit.(map[string]any); !ok {
		t.Fatalf("edit of one entry should be a single object, got %T", edit)
	}

	created := payload.Build([]session.Entry{entry}, groups, payload.Options{})
	items, ok := created.([]map[string]any)
	if !ok || len(items) != 1 {
		t.Fatalf("new session should produce a one-element array, got %#v", created)
	}
	if diff := cmp.Diff(map[string]any{"name": "A", "email": "a@x.com"}, items[0]); diff != "" {
		t.Fatalf("flat entry mismatch (-want +got):\n%s", diff)
	}

	multiEdit := payload.Build([]session.Entry{entry, entry}, groups, payload.Options{EditID: "7"})
	if items, ok := multiEdit.([]map[string]any); !ok || len(items) != 2 {
		t.Fatalf("edit with two entries should stay an array, got %#v", multiEdit)
	}
}

func TestGroupedOmitsFieldsOutsideGroupsAndMergesSharedKeys(t *testing.T) {
	groups := model.Groups{
		{Name: "Identity", BackendKey: "person", Fields: []model.FieldDescriptor{{Name: "name"}}},
		{Name: "Extra", BackendKey: "person", Fields: []model.FieldDescriptor{{Name: "nickname"}}},
		{Name: "Pay", Fields: []model.FieldDescriptor{{Name: "salary"}}},
	}
	entry := session.Entry{"name": "A", "nickname": "a", "salary": 10, "stray": true}

	got := payload.Grouped(entry, groups)
	want := map[string]any{
		"person": map[string]any{"name": "A", "nickname": "a"},
		"pay":    map[string]any{"salary": 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("grouped mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFlatDoesNotAliasEntries(t *testing.T) {
	entries := []session.Entry{{"tags": []any{"a"}}}
	out := payload.Build(entries, nil, payload.Options{}).([]map[string]any)
	out[0]["tags"].([]any)[0] = "changed"
	if entries[0]["tags"].([]any)[0] != "a" {
		t.Fatalf("payload must not alias session entries")
	}
}
