package rules

import "github.com/goliatone/go-formkit/pkg/model"

// RulesByTemplate returns the rules whose TargetField exactly matches the
// name of a template field, in template field order. The match is case
// sensitive. A template without fields yields an empty result.
func RulesByTemplate(tpl model.FormTemplate, catalog []Rule) []Rule {
	out := make([]Rule, 0)
	if len(tpl.Fields) == 0 {
		return out
	}
	for _, field := range tpl.Fields {
		for _, rule := range catalog {
			if rule.TargetField == field.Name {
				out = append(out, rule)
			}
		}
	}
	return out
}

// RulesForField returns the active rules that apply to field: the rule it
// references by ValidationRuleID plus every rule targeting its name.
func RulesForField(field model.FieldDescriptor, catalog []Rule) []Rule {
	out := make([]Rule, 0)
	seen := make(map[int64]struct{})
	for _, rule := range catalog {
		if !rule.Active {
			continue
		}
		linked := field.ValidationRuleID != nil && *field.ValidationRuleID == rule.ID
		if !linked && rule.TargetField != field.Name {
			continue
		}
		if _, ok := seen[rule.ID]; ok {
			continue
		}
		seen[rule.ID] = struct{}{}
		out = append(out, rule)
	}
	return out
}
