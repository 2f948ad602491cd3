package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/session"
)

const numberPattern = `^-?[0-9]+(\.[0-9]+)?$`

// SchemaValidator checks entries against a JSON schema derived from field
// descriptors: required fields, numeric input, option membership and the
// email, url and date formats.
type SchemaValidator struct {
	fields []model.FieldDescriptor
	labels map[string]string
	schema *gojsonschema.Schema
}

// NewSchemaValidator compiles the schema for fields.
func NewSchemaValidator(fields []model.FieldDescriptor) (*SchemaValidator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(Schema(fields)))
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}
	labels := make(map[string]string, len(fields))
	for _, field := range fields {
		label := strings.TrimSpace(field.Label)
		if label == "" {
			label = field.Name
		}
		labels[field.Name] = label
	}
	return &SchemaValidator{
		fields: append([]model.FieldDescriptor(nil), fields...),
		labels: labels,
		schema: compiled,
	}, nil
}

// Schema builds the JSON schema document for fields. Empty values are
// removed before validation, so "required" also rejects blank input.
func Schema(fields []model.FieldDescriptor) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]any, 0)
	for _, field := range fields {
		properties[field.Name] = propertySchema(field)
		if field.Required {
			required = append(required, field.Name)
		}
	}
	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func propertySchema(field model.FieldDescriptor) map[string]any {
	kind := field.Kind()
	switch {
	case kind.Boolean:
		return map[string]any{"type": "boolean"}
	case kind.Choices && len(field.Options) > 0:
		values := make([]any, 0, len(field.Options))
		for _, opt := range field.Options {
			values = append(values, opt.Value)
		}
		if kind.Multiple {
			return map[string]any{"type": "array", "items": map[string]any{"enum": values}}
		}
		return map[string]any{"enum": values}
	case kind.Multiple:
		return map[string]any{"type": "array"}
	}

	switch kind.Widget {
	case model.WidgetNumber, model.WidgetRange:
		return map[string]any{"type": []any{"number", "string"}, "pattern": numberPattern}
	}
	switch field.Type {
	case model.FieldTypeEmail:
		return map[string]any{"type": "string", "format": "email"}
	case model.FieldTypeURL:
		return map[string]any{"type": "string", "format": "uri"}
	case model.FieldTypeDate:
		return map[string]any{"type": "string", "format": "date"}
	}
	return map[string]any{}
}

// Validate implements Validator.
func (v *SchemaValidator) Validate(_ context.Context, entry session.Entry) (Result, error) {
	doc := make(map[string]any, len(v.fields))
	for _, field := range v.fields {
		value, ok := entry[field.Name]
		if !ok || isBlank(value) {
			continue
		}
		doc[field.Name] = value
	}

	res, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Result{}, fmt.Errorf("validation: schema check: %w", err)
	}
	out := Result{Valid: res.Valid(), Errors: map[string]string{}}
	for _, issue := range res.Errors() {
		field := issueField(issue)
		if field == "" || out.Errors[field] != "" {
			continue
		}
		out.Errors[field] = v.message(field, issue)
	}
	return out, nil
}

func (v *SchemaValidator) message(field string, issue gojsonschema.ResultError) string {
	label := v.labels[field]
	if label == "" {
		label = field
	}
	switch issue.Type() {
	case "required":
		return label + " is required"
	case "format":
		return fmt.Sprintf("%s must be a valid %v", label, issue.Details()["format"])
	case "pattern", "invalid_type":
		return label + " must be a number"
	case "enum":
		return label + " must be one of the listed options"
	default:
		return fmt.Sprintf("%s: %s", label, issue.Description())
	}
}

// issueField maps a gojsonschema error context to a top level field name.
func issueField(issue gojsonschema.ResultError) string {
	if issue.Type() == "required" {
		if prop, ok := issue.Details()["property"].(string); ok {
			return prop
		}
	}
	path := strings.TrimSpace(issue.Field())
	path = strings.TrimPrefix(path, "(root)")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return ""
	}
	if idx := strings.Index(path, "."); idx >= 0 {
		path = path[:idx]
	}
	return path
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	default:
		return false
	}
}
