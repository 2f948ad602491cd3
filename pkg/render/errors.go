package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/session"
)

// ErrorMapping splits a backend error payload into per-entry field errors and
// form-level messages.
type ErrorMapping struct {
	Entries map[int]session.ErrorRecord
	Form    []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload maps backend error keys onto template fields. Keys may be
// JSON pointers or dotted paths, may carry wrapper segments such as "body"
// or "data", an entry index and a group backend key ("/1/contact/email").
// A key without an index addresses entry 0. Keys that name no field become
// form-level messages so nothing is lost.
func MapErrorPayload(tpl model.FormTemplate, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Entries: make(map[int]session.ErrorRecord)}
	if len(payload) == 0 {
		return mapping
	}
	names := make(map[string]struct{}, len(tpl.Fields))
	for _, field := range tpl.Fields {
		names[field.Name] = struct{}{}
	}

	for rawPath, messages := range payload {
		clean := normalizeMessages(messages)
		if len(clean) == 0 {
			continue
		}
		index, field, ok := resolveErrorPath(rawPath, names)
		if !ok {
			mapping.Form = append(mapping.Form, clean...)
			continue
		}
		record := mapping.Entries[index]
		if record == nil {
			record = make(session.ErrorRecord)
			mapping.Entries[index] = record
		}
		joined := strings.Join(clean, "; ")
		if prev := record[field]; prev != "" {
			joined = prev + "; " + joined
		}
		record[field] = joined
	}

	if len(mapping.Entries) == 0 {
		mapping.Entries = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func resolveErrorPath(raw string, names map[string]struct{}) (int, string, bool) {
	if isFormLevelKey(raw) {
		return 0, "", false
	}
	segments := dropWrapperSegments(parsePathSegments(raw))
	index, haveIndex := 0, false
	for _, segment := range segments {
		if n, err := strconv.Atoi(segment); err == nil {
			if !haveIndex && n >= 0 {
				index, haveIndex = n, true
			}
			continue
		}
		if _, ok := names[segment]; ok {
			return index, segment, true
		}
	}
	return 0, "", false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"errors":     {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
