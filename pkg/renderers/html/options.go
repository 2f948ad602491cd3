package html

import (
	"io/fs"
	"log/slog"

	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// Option configures the HTML renderer.
type Option func(*config)

type config struct {
	templates   fs.FS
	widgets     *widgets.Registry
	submitLabel string
	logger      *slog.Logger
}

// WithTemplates replaces the built-in templates. The filesystem must provide
// form.tpl and field.tpl at its root.
func WithTemplates(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithWidgets overrides the widget registry.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithSubmitLabel sets the submit button text.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if label != "" {
			cfg.submitLabel = label
		}
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logging.OrDiscard(logger)
	}
}
