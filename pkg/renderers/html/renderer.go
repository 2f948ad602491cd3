// Package html renders form templates as static HTML markup using pongo2.
package html

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/session"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// Renderer produces HTML for a whole form or a single field. Its output is
// static: it never calls the onChange callback.
type Renderer struct {
	engine      *engine
	widgets     *widgets.Registry
	submitLabel string
	logger      *slog.Logger
}

var (
	_ render.FieldRenderer = (*Renderer)(nil)
	_ render.Renderer      = (*Renderer)(nil)
)

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy
)

// New constructs an HTML renderer backed by the embedded templates.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templates:   Templates(),
		submitLabel: "Submit",
		logger:      logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	eng, err := newEngine(cfg.templates)
	if err != nil {
		return nil, err
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}
	return &Renderer{
		engine:      eng,
		widgets:     cfg.widgets,
		submitLabel: cfg.submitLabel,
		logger:      cfg.logger,
	}, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType reports the MIME type of Render output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// RenderField renders one field of a single entry form.
func (r *Renderer) RenderField(ctx context.Context, field model.FieldDescriptor, value any, _ func(any), hasError bool) (render.Element, error) {
	if err := ctx.Err(); err != nil {
		return render.Element{}, err
	}
	message := ""
	if hasError {
		message = "Invalid value"
	}
	return r.field(field, value, message, 0, false)
}

// Render renders the whole form, one block per entry with fields grouped
// into fieldsets.
func (r *Renderer) Render(ctx context.Context, tpl model.FormTemplate, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	render.ApplySubset(&tpl, opts.Groups...)
	if opts.Translator != nil {
		render.LocalizeTemplate(&tpl, opts.Locale, opts.Translator, nil)
	}

	entries := opts.Entries
	if len(entries) == 0 {
		entries = []session.Entry{session.DefaultEntry(tpl.Fields)}
	}
	multi := len(entries) > 1
	groups := model.GroupFields(tpl.Fields)

	entryViews := make([]map[string]any, 0, len(entries))
	for i, entry := range entries {
		var errs session.ErrorRecord
		if i < len(opts.Errors) {
			errs = opts.Errors[i]
		}
		groupViews := make([]map[string]any, 0, len(groups))
		for _, group := range groups {
			fields := make([]string, 0, len(group.Fields))
			for _, field := range group.Fields {
				el, err := r.field(field, entry[field.Name], errs[field.Name], i, multi)
				if err != nil {
					return nil, err
				}
				fields = append(fields, el.Content)
			}
			groupViews = append(groupViews, map[string]any{
				"name":   group.Name,
				"key":    group.Key(),
				"fields": fields,
			})
		}
		entryViews = append(entryViews, map[string]any{"index": i, "groups": groupViews})
	}

	hidden := make([]map[string]any, 0, len(opts.Hidden))
	for _, h := range render.HiddenFields(opts.Hidden) {
		hidden = append(hidden, map[string]any{"name": h.Name, "value": h.Value})
	}

	method := strings.ToLower(strings.TrimSpace(opts.Method))
	if method == "" {
		method = "post"
	}
	title := tpl.Name
	if strings.TrimSpace(title) == "" {
		title = "Form"
	}

	out, err := r.engine.render(FormTemplate, pongo2.Context{
		"name":        tpl.Name,
		"title":       title,
		"description": sanitizeDescription(tpl.Description),
		"icon":        model.SanitizeIcon(tpl.Icon),
		"method":      method,
		"action":      opts.Action,
		"formErrors":  render.MergeFormErrors(nil, opts.FormErrors...),
		"hidden":      hidden,
		"entries":     entryViews,
		"submitLabel": r.submitLabel,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("form rendered", "template", tpl.Name, "entries", len(entries), "bytes", len(out))
	return []byte(out), nil
}

func (r *Renderer) field(field model.FieldDescriptor, value any, message string, index int, multi bool) (render.Element, error) {
	widget := r.widgets.Resolve(field)
	kind := field.Kind()

	id := field.Name
	input := field.Name
	if multi {
		id = fmt.Sprintf("%s-%d", field.Name, index)
		input = fmt.Sprintf("entries[%d][%s]", index, field.Name)
	}
	multiple := widget == model.WidgetMultiSelect || widget == model.WidgetCheckboxes
	if multiple {
		input += "[]"
	}
	inputType := kind.InputType
	if inputType == "" || (widget == model.WidgetText && kind.Widget != model.WidgetText) {
		inputType = "text"
	}
	label := field.Label
	if label == "" {
		label = field.Name
	}

	data := pongo2.Context{
		"name":        field.Name,
		"id":          id,
		"input":       input,
		"label":       label,
		"widget":      string(widget),
		"inputType":   inputType,
		"required":    field.Required,
		"placeholder": field.Placeholder,
		"accept":      field.Accept,
		"value":       formatValue(value),
		"checked":     truthy(value),
		"multiple":    multiple,
		"options":     optionViews(field.Options, value),
		"error":       message,
	}
	content, err := r.engine.render(FieldTemplate, data)
	if err != nil {
		return render.Element{}, err
	}
	return render.Element{Field: field.Name, Widget: widget, Content: content}, nil
}

func optionViews(options []model.Option, value any) []map[string]any {
	selected := make(map[string]struct{})
	for _, v := range valueList(value) {
		selected[v] = struct{}{}
	}
	out := make([]map[string]any, 0, len(options))
	for _, opt := range options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		_, ok := selected[opt.Value]
		out = append(out, map[string]any{"label": label, "value": opt.Value, "selected": ok})
	}
	return out
}

func valueList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return ""
	default:
		return strings.Join(valueList(v), ", ")
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

func sanitizeDescription(raw string) string {
	descriptionPolicyOnce.Do(func() {
		descriptionPolicy = bluemonday.UGCPolicy()
	})
	return strings.TrimSpace(descriptionPolicy.Sanitize(raw))
}
