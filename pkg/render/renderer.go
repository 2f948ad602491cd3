package render

import (
	"context"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Element is the output of rendering one field. Content holds markup for
// HTML renderers and the answered prompt line for terminal renderers.
type Element struct {
	Field   string       `json:"field"`
	Widget  model.Widget `json:"widget"`
	Content string       `json:"content,omitempty"`
}

// FieldRenderer draws one field. It must call onChange synchronously from
// its own input events with the new value, and must never trigger
// validation itself. Renderers that produce static output never call it.
type FieldRenderer interface {
	RenderField(ctx context.Context, field model.FieldDescriptor, value any, onChange func(any), hasError bool) (Element, error)
}

// FieldRendererFunc adapts a function into a FieldRenderer.
type FieldRendererFunc func(ctx context.Context, field model.FieldDescriptor, value any, onChange func(any), hasError bool) (Element, error)

// RenderField calls the underlying function.
func (fn FieldRendererFunc) RenderField(ctx context.Context, field model.FieldDescriptor, value any, onChange func(any), hasError bool) (Element, error) {
	return fn(ctx, field, value, onChange, hasError)
}

// Renderer converts a whole form template into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, tpl model.FormTemplate, options RenderOptions) ([]byte, error)
}
