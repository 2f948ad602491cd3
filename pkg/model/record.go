package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned by strict decoding when a record carries a key the
// engine does not recognise.
var ErrUnknownKey = errors.New("model: unknown template key")

// FieldRecord is the raw field configuration as stored by the template
// builder. Every recognised key is enumerated here; OptionsJson and
// ApplicableJson stay JSON-encoded until BuildField parses them.
type FieldRecord struct {
	Name             string `json:"Name" yaml:"Name"`
	Label            string `json:"Label" yaml:"Label"`
	Type             string `json:"Type" yaml:"Type"`
	Required         bool   `json:"Required" yaml:"Required"`
	OptionsJSON      string `json:"OptionsJson" yaml:"OptionsJson"`
	ApplicableJSON   string `json:"ApplicableJson" yaml:"ApplicableJson"`
	DefaultValue     any    `json:"DefaultValue" yaml:"DefaultValue"`
	FieldGroup       string `json:"FieldGroup" yaml:"FieldGroup"`
	GroupBackendKey  string `json:"GroupBackendKey" yaml:"GroupBackendKey"`
	Placeholder      string `json:"Placeholder" yaml:"Placeholder"`
	Accept           string `json:"Accept" yaml:"Accept"`
	ValidationRuleID *int64 `json:"ValidationRuleId" yaml:"ValidationRuleId"`
	DisplayOrder     int    `json:"DisplayOrder" yaml:"DisplayOrder"`
	Active           *bool  `json:"Active" yaml:"Active"`
}

// IsActive reports whether the record is enabled. Records default to active.
func (r FieldRecord) IsActive() bool {
	return r.Active == nil || *r.Active
}

// TemplateRecord is the raw form template as stored by the template builder.
type TemplateRecord struct {
	Name             string        `json:"Name" yaml:"Name"`
	Description      string        `json:"Description" yaml:"Description"`
	Icon             string        `json:"Icon" yaml:"Icon"`
	GroupSaveEnabled bool          `json:"GroupSaveEnabled" yaml:"GroupSaveEnabled"`
	Fields           []FieldRecord `json:"Fields" yaml:"Fields"`
}

var fieldRecordKeys = keySet(
	"Name", "Label", "Type", "Required", "OptionsJson", "ApplicableJson",
	"DefaultValue", "FieldGroup", "GroupBackendKey", "Placeholder", "Accept",
	"ValidationRuleId", "DisplayOrder", "Active",
)

var templateRecordKeys = keySet("Name", "Description", "Icon", "GroupSaveEnabled", "Fields")

func keySet(keys ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		out[strings.ToLower(key)] = struct{}{}
	}
	return out
}

// DecodeOptions controls record decoding.
type DecodeOptions struct {
	// Strict rejects unknown keys instead of reporting them as warnings.
	Strict bool
}

// DecodeTemplateRecord parses a JSON or YAML template document. Unknown keys
// are returned as warnings ("Fields[2].Colour") unless opts.Strict is set, in
// which case decoding fails with ErrUnknownKey.
func DecodeTemplateRecord(data []byte, opts DecodeOptions) (TemplateRecord, []string, error) {
	raw, err := decodeGeneric(data)
	if err != nil {
		return TemplateRecord{}, nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return TemplateRecord{}, nil, fmt.Errorf("model: template document must be an object")
	}

	warnings := unknownKeys(obj, templateRecordKeys, "")
	if fields, ok := lookupKey(obj, "Fields").([]any); ok {
		for idx, item := range fields {
			if fieldObj, ok := item.(map[string]any); ok {
				warnings = append(warnings, unknownKeys(fieldObj, fieldRecordKeys, fmt.Sprintf("Fields[%d].", idx))...)
			}
		}
	}
	if opts.Strict && len(warnings) > 0 {
		return TemplateRecord{}, warnings, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(warnings, ", "))
	}

	var rec TemplateRecord
	if err := remarshal(obj, &rec); err != nil {
		return TemplateRecord{}, warnings, fmt.Errorf("model: decode template: %w", err)
	}
	return rec, warnings, nil
}

// DecodeFieldRecord parses a single JSON or YAML field record, following the
// same unknown-key policy as DecodeTemplateRecord.
func DecodeFieldRecord(data []byte, opts DecodeOptions) (FieldRecord, []string, error) {
	raw, err := decodeGeneric(data)
	if err != nil {
		return FieldRecord{}, nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return FieldRecord{}, nil, fmt.Errorf("model: field record must be an object")
	}
	warnings := unknownKeys(obj, fieldRecordKeys, "")
	if opts.Strict && len(warnings) > 0 {
		return FieldRecord{}, warnings, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(warnings, ", "))
	}
	var rec FieldRecord
	if err := remarshal(obj, &rec); err != nil {
		return FieldRecord{}, warnings, fmt.Errorf("model: decode field: %w", err)
	}
	return rec, warnings, nil
}

// decodeGeneric accepts JSON or YAML; YAML is a superset so a single decoder
// covers both.
func decodeGeneric(data []byte) (any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("model: document is empty")
	}
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("model: parse document: %w", err)
	}
	return out, nil
}

func remarshal(src any, dst any) error {
	payload, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dst)
}

func unknownKeys(obj map[string]any, known map[string]struct{}, prefix string) []string {
	var out []string
	for key := range obj {
		if _, ok := known[strings.ToLower(key)]; !ok {
			out = append(out, prefix+key)
		}
	}
	sort.Strings(out)
	return out
}

func lookupKey(obj map[string]any, key string) any {
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}
