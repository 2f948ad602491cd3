package templates_test

import (
	"errors"
	"os"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/templates"
)

func TestLoadFSReadsJSONAndYAML(t *testing.T) {
	store, err := templates.LoadFS(os.DirFS("testdata/forms"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"Employee", "Leave"}, store.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	rec, err := store.Get("Employee")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !rec.GroupSaveEnabled || len(rec.Fields) != 5 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	fields := model.BuildFields(rec, model.SurfaceForm)
	if got := len(fields); got != 4 {
		t.Fatalf("form fields = %d, want 4", got)
	}

	doc, err := store.Document("Leave")
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if diff := cmp.Diff([]string{"Fields[0].Colour"}, doc.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if doc.Source != "hr/leave.yaml" {
		t.Fatalf("source = %q", doc.Source)
	}
}

func TestLoadFSStrictRejectsUnknownKeys(t *testing.T) {
	_, err := templates.LoadFS(os.DirFS("testdata/forms"), templates.WithStrict(true))
	if !errors.Is(err, model.ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestLoadFSDuplicateNames(t *testing.T) {
	files := fstest.MapFS{
		"a.json": {Data: []byte(`{"Name": "Employee"}`)},
		"b.yaml": {Data: []byte("Name: ' Employee '\n")},
	}
	_, err := templates.LoadFS(files)
	if !errors.Is(err, templates.ErrDuplicateTemplate) {
		t.Fatalf("expected ErrDuplicateTemplate, got %v", err)
	}
}

func TestLoadFSEmptyName(t *testing.T) {
	files := fstest.MapFS{"a.json": {Data: []byte(`{"Description": "nameless"}`)}}
	if _, err := templates.LoadFS(files); !errors.Is(err, templates.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestStorePutAndMissing(t *testing.T) {
	store, err := templates.LoadFS(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store")
	}
	if err := store.Put(model.TemplateRecord{Name: "Loan"}, "openapi"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(model.TemplateRecord{Name: "Loan"}, "openapi"); !errors.Is(err, templates.ErrDuplicateTemplate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := store.Get("Payroll"); !errors.Is(err, templates.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
