package model

import "strings"

const (
	// DefaultGroup names the section used when a field declares no group.
	DefaultGroup = "General"
	// SurfaceForm is the applicable-context tag for data entry forms.
	SurfaceForm = "form"
)

// Option is a single label/value pair offered by choice-based fields.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// FieldDescriptor is the normalised description of one configurable input.
type FieldDescriptor struct {
	Name               string            `json:"name"`
	Label              string            `json:"label"`
	Type               FieldType         `json:"type"`
	Required           bool              `json:"required"`
	DefaultValue       any               `json:"defaultValue"`
	Placeholder        string            `json:"placeholder,omitempty"`
	Accept             string            `json:"accept,omitempty"`
	ApplicableContexts []string          `json:"applicableContexts"`
	Options            []Option          `json:"options"`
	Group              string            `json:"group"`
	GroupBackendKey    string            `json:"groupBackendKey"`
	ValidationRuleID   *int64            `json:"validationRuleId,omitempty"`
	DisplayOrder       int               `json:"displayOrder"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// Kind reports the dispatch entry for the field's type.
func (f FieldDescriptor) Kind() Kind {
	return f.Type.Kind()
}

// ApplicableTo reports whether the field is usable on the given surface.
func (f FieldDescriptor) ApplicableTo(surface string) bool {
	surface = strings.TrimSpace(surface)
	if surface == "" {
		return false
	}
	for _, ctx := range f.ApplicableContexts {
		if strings.EqualFold(strings.TrimSpace(ctx), surface) {
			return true
		}
	}
	return false
}

// GroupName returns the trimmed group or DefaultGroup when blank.
func (f FieldDescriptor) GroupName() string {
	if group := strings.TrimSpace(f.Group); group != "" {
		return group
	}
	return DefaultGroup
}

// BackendKey returns the key under which the field's group nests in grouped
// payloads.
func (f FieldDescriptor) BackendKey() string {
	if key := strings.TrimSpace(f.GroupBackendKey); key != "" {
		return key
	}
	return strings.ToLower(f.GroupName())
}

// FormTemplate is the read-only form definition consumed at render time.
type FormTemplate struct {
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	Icon             string            `json:"icon,omitempty"`
	GroupSaveEnabled bool              `json:"groupSaveEnabled"`
	Fields           []FieldDescriptor `json:"fields"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Field looks up a descriptor by name.
func (t FormTemplate) Field(name string) (FieldDescriptor, bool) {
	for _, field := range t.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldDescriptor{}, false
}

// FieldNames lists descriptor names in template order.
func (t FormTemplate) FieldNames() []string {
	if len(t.Fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(t.Fields))
	for _, field := range t.Fields {
		names = append(names, field.Name)
	}
	return names
}
