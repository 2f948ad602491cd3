// Package payload shapes validated form entries into the submission body the
// backend expects.
package payload

import (
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/session"
)

// Options selects the payload shape.
type Options struct {
	// GroupSaveEnabled nests each entry's values under the backend key of the
	// group owning the field.
	GroupSaveEnabled bool
	// EditID is set when the session edits an existing record.
	EditID string
}

// Build converts entries into a submission payload. The result is a single
// map[string]any when EditID is set and there is exactly one entry; in every
// other case it is a []map[string]any, even for one new entry.
func Build(entries []session.Entry, groups model.Groups, opts Options) any {
	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if opts.GroupSaveEnabled {
			items = append(items, Grouped(entry, groups))
			continue
		}
		items = append(items, map[string]any(entry.Clone()))
	}

	if strings.TrimSpace(opts.EditID) != "" && len(items) == 1 {
		return items[0]
	}
	return items
}

// Grouped nests the values of one entry by group backend key. Fields that do
// not belong to a keyed group are left out.
func Grouped(entry session.Entry, groups model.Groups) map[string]any {
	out := make(map[string]any, len(groups))
	for _, group := range groups {
		key := group.Key()
		if key == "" {
			continue
		}
		nested, _ := out[key].(map[string]any)
		if nested == nil {
			nested = make(map[string]any, len(group.Fields))
		}
		for _, field := range group.Fields {
			if value, ok := entry[field.Name]; ok {
				nested[field.Name] = value
			}
		}
		out[key] = nested
	}
	return out
}
