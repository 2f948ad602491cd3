// Package testsupport holds fixtures and fakes shared by package tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/goliatone/go-formkit/pkg/model"
)

// LoadTemplateRecord decodes a JSON or YAML template fixture. Unknown keys
// fail the test so fixtures stay in sync with the record shape.
func LoadTemplateRecord(t *testing.T, path string) model.TemplateRecord {
	t.Helper()

	rec, err := LoadTemplateRecordFromPath(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	return rec
}

// LoadTemplateRecordFromPath is LoadTemplateRecord without testing.T.
func LoadTemplateRecordFromPath(path string) (model.TemplateRecord, error) {
	if path == "" {
		return model.TemplateRecord{}, errors.New("testsupport: template path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.TemplateRecord{}, fmt.Errorf("testsupport: read template: %w", err)
	}
	rec, _, err := model.DecodeTemplateRecord(data, model.DecodeOptions{Strict: true})
	if err != nil {
		return model.TemplateRecord{}, fmt.Errorf("testsupport: decode template: %w", err)
	}
	return rec, nil
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
