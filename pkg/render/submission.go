package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// HiddenFields merges base with extra and returns the result sorted by name.
// Blank names are dropped and later values win.
func HiddenFields(base map[string]string, extra ...HiddenField) []HiddenField {
	merged := make(map[string]string, len(base)+len(extra))
	for name, value := range base {
		if key := strings.TrimSpace(name); key != "" {
			merged[key] = value
		}
	}
	for _, field := range extra {
		if key := strings.TrimSpace(field.Name); key != "" {
			merged[key] = field.Value
		}
	}
	if len(merged) == 0 {
		return nil
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: merged[name]})
	}
	return out
}
