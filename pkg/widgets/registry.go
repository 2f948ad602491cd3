// Package widgets resolves the widget a renderer should use for a field.
// Resolution starts from the field type's kinds table row and lets
// registered matchers override it.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formkit/pkg/model"
)

// MetadataKey is the descriptor metadata key holding an explicit widget.
const MetadataKey = "widget"

// MaxRadioOptions is the option count above which radios render as selects.
const MaxRadioOptions = 6

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.FieldDescriptor) bool

type rule struct {
	widget   model.Widget
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields. Explicit metadata wins, then
// matchers by priority (ties keep registration order), then the field
// type's default widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher for widget. Widgets outside the closed set are
// ignored.
func (r *Registry) Register(widget model.Widget, priority int, matcher Matcher) {
	if r == nil || matcher == nil || !known(widget) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		widget:   widget,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget for field. It always resolves: the last resort
// is the kinds table, which itself falls back to text.
func (r *Registry) Resolve(field model.FieldDescriptor) model.Widget {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit
	}
	if r != nil {
		r.mu.RLock()
		rules := append([]rule(nil), r.rules...)
		r.mu.RUnlock()
		sort.SliceStable(rules, func(i, j int) bool {
			if rules[i].priority == rules[j].priority {
				return rules[i].order < rules[j].order
			}
			return rules[i].priority > rules[j].priority
		})
		for _, entry := range rules {
			if entry.match(field) {
				return entry.widget
			}
		}
	}
	return field.Kind().Widget
}

// Decorate implements model.Decorator by recording the resolved widget in
// each field's metadata. Existing values are kept.
func (r *Registry) Decorate(tpl *model.FormTemplate) error {
	if tpl == nil {
		return nil
	}
	for idx := range tpl.Fields {
		field := &tpl.Fields[idx]
		widget := r.Resolve(*field)
		if field.Metadata == nil {
			field.Metadata = make(map[string]string)
		}
		if strings.TrimSpace(field.Metadata[MetadataKey]) == "" {
			field.Metadata[MetadataKey] = string(widget)
		}
	}
	return nil
}

func explicitWidget(field model.FieldDescriptor) model.Widget {
	if field.Metadata == nil {
		return ""
	}
	widget := model.Widget(strings.ToLower(strings.TrimSpace(field.Metadata[MetadataKey])))
	if known(widget) {
		return widget
	}
	return ""
}

func known(widget model.Widget) bool {
	for _, w := range model.Widgets() {
		if w == widget {
			return true
		}
	}
	return false
}

func (r *Registry) registerBuiltins() {
	// Choice widgets without options have nothing to offer.
	r.Register(model.WidgetText, 90, func(field model.FieldDescriptor) bool {
		kind := field.Kind()
		return kind.Choices && !kind.Multiple && len(field.Options) == 0
	})

	r.Register(model.WidgetTags, 80, func(field model.FieldDescriptor) bool {
		kind := field.Kind()
		return kind.Choices && kind.Multiple && len(field.Options) == 0
	})

	r.Register(model.WidgetSelect, 70, func(field model.FieldDescriptor) bool {
		return field.Kind().Widget == model.WidgetRadio && len(field.Options) > MaxRadioOptions
	})
}
