// Package tui renders form fields as interactive terminal prompts.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/session"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// Renderer prompts for field values through a PromptDriver. It implements
// render.FieldRenderer for interactive sessions and render.Renderer for one
// shot collection.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	widgets      *widgets.Registry
	logger       *slog.Logger
}

var (
	_ render.FieldRenderer = (*Renderer)(nil)
	_ render.Renderer      = (*Renderer)(nil)
)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
		logger:       logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.widgets == nil {
		r.widgets = widgets.NewRegistry()
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Info prints msg through the driver.
func (r *Renderer) Info(ctx context.Context, msg string) error {
	if r.driver == nil {
		return ErrNoDriver
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

// RenderField prompts for one field and passes the answer to onChange before
// returning. It never validates the answer beyond parsing numbers.
func (r *Renderer) RenderField(ctx context.Context, field model.FieldDescriptor, value any, onChange func(any), hasError bool) (render.Element, error) {
	if r.driver == nil {
		return render.Element{}, ErrNoDriver
	}
	widget := r.widgets.Resolve(field)
	label := r.label(field, hasError)

	answer, err := r.prompt(ctx, widget, field, label, value)
	if err != nil {
		return render.Element{}, err
	}
	r.logger.Debug("field answered", "field", field.Name, "widget", widget)
	if onChange != nil {
		onChange(answer)
	}
	return render.Element{
		Field:   field.Name,
		Widget:  widget,
		Content: fmt.Sprintf("%s: %s", displayLabel(field), display(answer)),
	}, nil
}

func (r *Renderer) prompt(ctx context.Context, widget model.Widget, field model.FieldDescriptor, label string, value any) (any, error) {
	help := displayHelp(field)
	switch widget {
	case model.WidgetToggle:
		return r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: truthy(value), Help: help})
	case model.WidgetNumber, model.WidgetRange:
		return r.promptNumber(ctx, field, label, help, value)
	case model.WidgetSelect, model.WidgetRadio:
		return r.promptSelect(ctx, field, label, help, value)
	case model.WidgetMultiSelect, model.WidgetCheckboxes:
		return r.promptMultiSelect(ctx, field, label, help, value)
	case model.WidgetTags:
		raw, err := r.driver.Input(ctx, InputConfig{Message: label, Default: strings.Join(stringList(value), ", "), Help: help})
		if err != nil {
			return nil, err
		}
		return splitTags(raw), nil
	case model.WidgetTextArea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: stringValue(value), Help: help})
	case model.WidgetPassword:
		return r.driver.Password(ctx, InputConfig{Message: label, Default: stringValue(value), Help: help})
	default:
		return r.driver.Input(ctx, InputConfig{Message: label, Default: stringValue(value), Help: help})
	}
}

func (r *Renderer) promptNumber(ctx context.Context, field model.FieldDescriptor, label, help string, value any) (any, error) {
	defaultStr := stringValue(value)
	for {
		input, err := r.driver.Input(ctx, InputConfig{Message: label, Default: defaultStr, Help: help})
		if err != nil {
			return nil, err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return "", nil
		}
		if i, err := strconv.ParseInt(input, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(input, 64)
		if err == nil {
			return f, nil
		}
		_ = r.driver.Info(ctx, fmt.Sprintf("%s%s must be a number", r.theme.ErrorPrefix, displayLabel(field)))
	}
}

func (r *Renderer) promptSelect(ctx context.Context, field model.FieldDescriptor, label, help string, value any) (any, error) {
	labels := optionLabels(field.Options)
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      label,
		Options:      labels,
		DefaultIndex: optionIndex(field.Options, stringValue(value)),
		Help:         help,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(field.Options) {
		return "", nil
	}
	return field.Options[idx].Value, nil
}

func (r *Renderer) promptMultiSelect(ctx context.Context, field model.FieldDescriptor, label, help string, value any) (any, error) {
	var defaults []int
	for _, current := range stringList(value) {
		if idx := optionIndex(field.Options, current); idx >= 0 {
			defaults = append(defaults, idx)
		}
	}
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  label,
		Options:  optionLabels(field.Options),
		Defaults: defaults,
		Help:     help,
	})
	if err != nil {
		return nil, err
	}
	selected := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(field.Options) {
			selected = append(selected, field.Options[idx].Value)
		}
	}
	return selected, nil
}

// Render prompts for every field of every entry in options and serializes
// the collected entries. A single entry serializes as an object.
func (r *Renderer) Render(ctx context.Context, tpl model.FormTemplate, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	render.ApplySubset(&tpl, opts.Groups...)
	if opts.Translator != nil {
		render.LocalizeTemplate(&tpl, opts.Locale, opts.Translator, nil)
	}

	entries := make([]session.Entry, 0, len(opts.Entries))
	for _, entry := range opts.Entries {
		entries = append(entries, entry.Clone())
	}
	if len(entries) == 0 {
		entries = append(entries, session.DefaultEntry(tpl.Fields))
	}

	for _, msg := range opts.FormErrors {
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
	}
	for i, entry := range entries {
		if len(entries) > 1 {
			_ = r.Info(ctx, fmt.Sprintf("Entry %d", i+1))
		}
		var errs session.ErrorRecord
		if i < len(opts.Errors) {
			errs = opts.Errors[i]
		}
		for _, field := range tpl.Fields {
			msg := errs[field.Name]
			if msg != "" {
				_ = r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
			}
			name := field.Name
			onChange := func(v any) { entry[name] = v }
			if _, err := r.RenderField(ctx, field, entry[name], onChange, msg != ""); err != nil {
				return nil, err
			}
		}
	}
	return r.serialize(entries)
}

func (r *Renderer) serialize(entries []session.Entry) ([]byte, error) {
	items := make([]map[string]any, len(entries))
	for i, entry := range entries {
		items[i] = entry
	}
	var value any = items
	if len(items) == 1 {
		value = items[0]
	}
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		out := url.Values{}
		flatten("", value, out)
		return []byte(out.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		writePretty(&b, "", value)
		return []byte(b.String()), nil
	default:
		return json.Marshal(value)
	}
}

func (r *Renderer) label(field model.FieldDescriptor, hasError bool) string {
	label := displayLabel(field)
	if field.Required {
		label += " *"
	}
	if hasError {
		label = r.theme.ErrorPrefix + label
	}
	return label
}

func displayLabel(field model.FieldDescriptor) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func displayHelp(field model.FieldDescriptor) string {
	if help := field.Metadata["cli.help"]; help != "" {
		return help
	}
	if field.Accept != "" {
		return "Accepts " + field.Accept
	}
	return field.Placeholder
}

func optionLabels(options []model.Option) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		out[i] = opt.Label
		if out[i] == "" {
			out[i] = opt.Value
		}
	}
	return out
}

func optionIndex(options []model.Option, value string) int {
	for i, opt := range options {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return splitTags(v)
	default:
		return nil
	}
}

func splitTags(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func display(value any) string {
	switch v := value.(type) {
	case []string:
		return strings.Join(v, ", ")
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return stringValue(v)
	}
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, v[key], out)
		}
	case []map[string]any:
		for idx, item := range v {
			flatten(fmt.Sprintf("%s[%d]", prefix, idx), item, out)
		}
	case []string:
		for _, item := range v {
			out.Add(prefix+"[]", item)
		}
	case []any:
		for _, item := range v {
			out.Add(prefix+"[]", fmt.Sprint(item))
		}
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []map[string]any:
		for idx, item := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), item)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, display(v))
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
