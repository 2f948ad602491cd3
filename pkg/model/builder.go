package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Builder converts raw template records into form templates for a surface.
type Builder interface {
	Build(rec TemplateRecord) FormTemplate
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builder)

// WithSurface selects the applicable-context tag fields must carry. Defaults
// to SurfaceForm.
func WithSurface(surface string) BuilderOption {
	return func(b *builder) {
		if trimmed := strings.TrimSpace(surface); trimmed != "" {
			b.surface = trimmed
		}
	}
}

// WithLabeler overrides the label generated for records without a Label.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(b *builder) {
		if labeler != nil {
			b.labeler = labeler
		}
	}
}

type builder struct {
	surface string
	labeler func(string) string
}

// NewBuilder returns a Builder for the given options.
func NewBuilder(options ...BuilderOption) Builder {
	b := &builder{
		surface: SurfaceForm,
		labeler: DefaultLabeler,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *builder) Build(rec TemplateRecord) FormTemplate {
	return FormTemplate{
		Name:             strings.TrimSpace(rec.Name),
		Description:      strings.TrimSpace(rec.Description),
		Icon:             rec.Icon,
		GroupSaveEnabled: rec.GroupSaveEnabled,
		Fields:           b.fields(rec.Fields),
	}
}

func (b *builder) fields(records []FieldRecord) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(records))
	for _, rec := range records {
		if !rec.IsActive() {
			continue
		}
		field := buildField(rec, b.labeler)
		if field.Name == "" || !field.ApplicableTo(b.surface) {
			continue
		}
		out = append(out, field)
	}
	return out
}

// BuildTemplate builds rec for surface with the default labeler.
func BuildTemplate(rec TemplateRecord, surface string) FormTemplate {
	return NewBuilder(WithSurface(surface)).Build(rec)
}

// BuildFields returns the descriptors of rec usable on surface, in source
// order.
func BuildFields(rec TemplateRecord, surface string) []FieldDescriptor {
	return BuildTemplate(rec, surface).Fields
}

// BuildField parses a single record without surface filtering.
func BuildField(rec FieldRecord) FieldDescriptor {
	return buildField(rec, DefaultLabeler)
}

func buildField(rec FieldRecord, labeler func(string) string) FieldDescriptor {
	name := strings.TrimSpace(rec.Name)
	fieldType := ParseFieldType(rec.Type)

	label := strings.TrimSpace(rec.Label)
	if label == "" && labeler != nil {
		label = labeler(name)
	}

	group := strings.TrimSpace(rec.FieldGroup)
	if group == "" {
		group = DefaultGroup
	}
	backendKey := strings.TrimSpace(rec.GroupBackendKey)
	if backendKey == "" {
		backendKey = strings.ToLower(group)
	}

	var ruleID *int64
	if rec.ValidationRuleID != nil {
		id := *rec.ValidationRuleID
		ruleID = &id
	}

	return FieldDescriptor{
		Name:               name,
		Label:              label,
		Type:               fieldType,
		Required:           rec.Required,
		DefaultValue:       defaultValue(fieldType.Kind(), rec.DefaultValue),
		Placeholder:        rec.Placeholder,
		Accept:             rec.Accept,
		ApplicableContexts: ParseStringList(rec.ApplicableJSON),
		Options:            ParseOptions(rec.OptionsJSON),
		Group:              group,
		GroupBackendKey:    backendKey,
		ValidationRuleID:   ruleID,
		DisplayOrder:       rec.DisplayOrder,
	}
}

func defaultValue(kind Kind, raw any) any {
	if kind.Boolean {
		switch typed := raw.(type) {
		case bool:
			return typed
		case string:
			return strings.EqualFold(strings.TrimSpace(typed), "true")
		default:
			return false
		}
	}
	if raw == nil {
		return ""
	}
	return raw
}

// ParseStringList decodes a JSON-encoded list. Malformed or empty input yields
// an empty, non-nil slice.
func ParseStringList(raw string) []string {
	items, ok := decodeList(raw)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		value := strings.TrimSpace(fmt.Sprint(item))
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

// ParseOptions decodes a JSON-encoded option list. Entries may be objects
// with label/value keys or bare scalars. Malformed input yields an empty,
// non-nil slice.
func ParseOptions(raw string) []Option {
	items, ok := decodeList(raw)
	if !ok {
		return []Option{}
	}
	out := make([]Option, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case map[string]any:
			value := scalarString(lookupKey(typed, "value"))
			label := scalarString(lookupKey(typed, "label"))
			if value == "" && label == "" {
				continue
			}
			if label == "" {
				label = value
			}
			if value == "" {
				value = label
			}
			out = append(out, Option{Label: label, Value: value})
		case nil:
			continue
		default:
			value := scalarString(typed)
			out = append(out, Option{Label: value, Value: value})
		}
	}
	return out
}

func decodeList(raw string) ([]any, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, false
	}
	return items, true
}

func scalarString(value any) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

// SortByDisplayOrder returns a copy of fields ordered by DisplayOrder. Ties
// keep their source order.
func SortByDisplayOrder(fields []FieldDescriptor) []FieldDescriptor {
	out := append([]FieldDescriptor(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}
