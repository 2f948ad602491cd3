package engine

import (
	"log/slog"

	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/rules"
	"github.com/goliatone/go-formkit/pkg/templates"
	"github.com/goliatone/go-formkit/pkg/validation"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

const defaultRendererName = "html"

// Option customises the engine.
type Option func(*Engine)

// WithTemplates sets the template store forms are opened from.
func WithTemplates(store *templates.Store) Option {
	return func(e *Engine) {
		e.templates = store
	}
}

// WithSurface selects the applicable context fields must carry.
func WithSurface(surface string) Option {
	return func(e *Engine) {
		if surface != "" {
			e.surface = surface
		}
	}
}

// WithDecorators registers decorators run on every built template after the
// built-in icon sanitizer and widget resolution.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(e *Engine) {
		e.decorators = append(e.decorators, decorators...)
	}
}

// WithWidgets overrides the widget registry used to decorate templates.
func WithWidgets(registry *widgets.Registry) Option {
	return func(e *Engine) {
		if registry != nil {
			e.widgets = registry
		}
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request names none.
func WithDefaultRenderer(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.defaultRenderer = name
		}
	}
}

// WithRuleStore enables catalog rule validation for opened forms.
func WithRuleStore(store *rules.Store) Option {
	return func(e *Engine) {
		e.rules = store
	}
}

// WithValidator appends a validator chained after the built-in ones.
func WithValidator(v validation.Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validators = append(e.validators, v)
		}
	}
}

// WithPersister sets where successful submissions are saved.
func WithPersister(p validation.Persister) Option {
	return func(e *Engine) {
		e.persister = p
	}
}

// WithLogger sets the engine logger. Components created by the engine log
// through it with a module attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.OrDiscard(logger)
	}
}
