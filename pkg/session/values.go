package session

import (
	"sort"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Entry maps field names to their current values for one row of a form.
type Entry map[string]any

// ErrorRecord maps field names to validation messages. A missing key means
// the field currently has no error.
type ErrorRecord map[string]string

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	if e == nil {
		return nil
	}
	out := make(Entry, len(e))
	for k, v := range e {
		out[k] = deepCopy(v)
	}
	return out
}

// Clone returns a copy of the record.
func (r ErrorRecord) Clone() ErrorRecord {
	out := make(ErrorRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// HasErrors reports whether any field carries a message.
func (r ErrorRecord) HasErrors() bool {
	for _, msg := range r {
		if msg != "" {
			return true
		}
	}
	return false
}

// DefaultEntry builds one entry holding every field's default value: the
// configured default, false for boolean kinds, or an empty string.
func DefaultEntry(fields []model.FieldDescriptor) Entry {
	entry := make(Entry, len(fields))
	for _, field := range fields {
		entry[field.Name] = initialValue(field)
	}
	return entry
}

func initialValue(field model.FieldDescriptor) any {
	if field.DefaultValue != nil {
		return deepCopy(field.DefaultValue)
	}
	if field.Kind().Boolean {
		return false
	}
	return ""
}

// Flatten merges nested objects of record into a single flat mapping. Keys
// are visited in sorted order at each level and later writes win, so a
// top-level "id" overrides a nested "employee.id".
func Flatten(record map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, record)
	return out
}

func flattenInto(out map[string]any, src map[string]any) {
	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if nested, ok := src[key].(map[string]any); ok {
			flattenInto(out, nested)
			continue
		}
		out[key] = deepCopy(src[key])
	}
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}
