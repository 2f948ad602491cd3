package model

import "strings"

// Group is one named section of a form template.
type Group struct {
	Name       string            `json:"name"`
	BackendKey string            `json:"backendKey"`
	Fields     []FieldDescriptor `json:"fields"`
}

// Groups is an ordered partition of fields. Order equals the first occurrence
// of each group name in the input, so Groups[0] is the default visible tab.
type Groups []Group

// GroupFields partitions fields by their trimmed Group, defaulting to
// DefaultGroup. Fields keep their relative order inside each group.
func GroupFields(fields []FieldDescriptor) Groups {
	if len(fields) == 0 {
		return Groups{}
	}
	index := make(map[string]int)
	out := make(Groups, 0, 4)
	for _, field := range fields {
		name := field.GroupName()
		pos, ok := index[name]
		if !ok {
			pos = len(out)
			index[name] = pos
			out = append(out, Group{Name: name, BackendKey: field.BackendKey()})
		}
		out[pos].Fields = append(out[pos].Fields, field)
	}
	return out
}

// Names lists group names in first-occurrence order.
func (g Groups) Names() []string {
	names := make([]string, 0, len(g))
	for _, group := range g {
		names = append(names, group.Name)
	}
	return names
}

// Get returns the group with the given name.
func (g Groups) Get(name string) (Group, bool) {
	for _, group := range g {
		if group.Name == name {
			return group, true
		}
	}
	return Group{}, false
}

// BackendKey returns the payload key of the named group, or "" when the
// group does not exist.
func (g Groups) BackendKey(name string) string {
	group, ok := g.Get(name)
	if !ok {
		return ""
	}
	return group.Key()
}

// Default returns the name of the first group, or "" when empty.
func (g Groups) Default() string {
	if len(g) == 0 {
		return ""
	}
	return g[0].Name
}

// Key returns the payload key of the group: the backend key of its first
// field, or the lower-cased group name.
func (g Group) Key() string {
	if key := strings.TrimSpace(g.BackendKey); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(g.Name))
}
