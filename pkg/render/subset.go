package render

import (
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
)

// ApplySubset keeps only fields whose group matches one of groups, compared
// case-insensitively against the group name or backend key. No groups leaves
// the template unchanged.
func ApplySubset(tpl *model.FormTemplate, groups ...string) {
	if tpl == nil {
		return
	}
	wanted := normaliseTokens(groups)
	if len(wanted) == 0 {
		return
	}
	filtered := make([]model.FieldDescriptor, 0, len(tpl.Fields))
	for _, field := range tpl.Fields {
		_, byName := wanted[strings.ToLower(field.GroupName())]
		_, byKey := wanted[strings.ToLower(field.BackendKey())]
		if byName || byKey {
			filtered = append(filtered, field)
		}
	}
	tpl.Fields = filtered
}

func normaliseTokens(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		for _, token := range strings.Split(value, ",") {
			if trimmed := strings.ToLower(strings.TrimSpace(token)); trimmed != "" {
				out[trimmed] = struct{}{}
			}
		}
	}
	return out
}
