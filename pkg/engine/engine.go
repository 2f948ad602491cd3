// Package engine wires templates, sessions, validation and rendering into
// form lifecycles.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/html"
	"github.com/goliatone/go-formkit/pkg/renderers/tui"
	"github.com/goliatone/go-formkit/pkg/rules"
	"github.com/goliatone/go-formkit/pkg/session"
	"github.com/goliatone/go-formkit/pkg/templates"
	"github.com/goliatone/go-formkit/pkg/validation"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// Engine coordinates template lookup, form sessions and rendering. Built
// templates and the rule catalog are cached per engine until evicted.
type Engine struct {
	templates       *templates.Store
	surface         string
	decorators      []model.Decorator
	widgets         *widgets.Registry
	registry        *render.Registry
	defaultRenderer string
	rules           *rules.Store
	validators      []validation.Validator
	persister       validation.Persister
	logger          *slog.Logger
	cache           *Cache

	mu     sync.Mutex
	forms  map[string]*Form
	closed bool
}

// New constructs an Engine. Missing dependencies get the built-in
// implementations: an empty template store, the widget registry and a
// renderer registry holding the html and tui renderers.
func New(options ...Option) (*Engine, error) {
	e := &Engine{
		surface:         model.SurfaceForm,
		defaultRenderer: defaultRendererName,
		logger:          logging.Discard(),
		cache:           NewCache(),
		forms:           make(map[string]*Form),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.templates == nil {
		e.templates = templates.NewStore()
	}
	if e.widgets == nil {
		e.widgets = widgets.NewRegistry()
	}
	if e.registry == nil {
		registry, err := defaultRegistry(e.widgets, e.logger)
		if err != nil {
			return nil, err
		}
		e.registry = registry
	}
	return e, nil
}

func defaultRegistry(reg *widgets.Registry, logger *slog.Logger) (*render.Registry, error) {
	htmlRenderer, err := html.New(html.WithWidgets(reg), html.WithLogger(logger.With("module", "html")))
	if err != nil {
		return nil, fmt.Errorf("engine: html renderer: %w", err)
	}
	registry := render.NewRegistry()
	registry.MustRegister(htmlRenderer)
	registry.MustRegister(tui.New(tui.WithWidgets(reg), tui.WithLogger(logger.With("module", "tui"))))
	return registry, nil
}

// Templates exposes the template store.
func (e *Engine) Templates() *templates.Store {
	return e.templates
}

// Registry exposes the renderer registry.
func (e *Engine) Registry() *render.Registry {
	return e.registry
}

// Cache exposes the engine cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Template returns the built, decorated template for name.
func (e *Engine) Template(ctx context.Context, name string) (model.FormTemplate, error) {
	if err := ctx.Err(); err != nil {
		return model.FormTemplate{}, err
	}
	if e.isClosed() {
		return model.FormTemplate{}, ErrClosed
	}
	if tpl, ok := e.cache.Template(name); ok {
		return tpl, nil
	}
	rec, err := e.templates.Get(name)
	if err != nil {
		return model.FormTemplate{}, err
	}
	tpl := model.NewBuilder(model.WithSurface(e.surface)).Build(rec)
	decorators := append([]model.Decorator{model.IconSanitizer, e.widgets}, e.decorators...)
	if err := model.ApplyDecorators(&tpl, decorators...); err != nil {
		return model.FormTemplate{}, fmt.Errorf("engine: decorate %q: %w", name, err)
	}
	e.cache.StoreTemplate(name, tpl)
	e.logger.Debug("template built", "template", name, "fields", len(tpl.Fields))
	return cloneTemplate(tpl), nil
}

// Render renders template name with the named renderer, or the default one.
func (e *Engine) Render(ctx context.Context, name, renderer string, opts render.RenderOptions) ([]byte, error) {
	tpl, err := e.Template(ctx, name)
	if err != nil {
		return nil, err
	}
	if renderer == "" {
		renderer = e.defaultRenderer
	}
	r, err := e.registry.Get(renderer)
	if err != nil {
		return nil, err
	}
	out, err := r.Render(ctx, tpl, opts)
	if err != nil {
		return nil, fmt.Errorf("engine: render %q with %s: %w", name, renderer, err)
	}
	return out, nil
}

// Catalog returns the rule catalog, loading it through the rule store on
// first use. It is nil when no rule store is configured.
func (e *Engine) Catalog(ctx context.Context) ([]rules.Rule, error) {
	if e.rules == nil {
		return nil, nil
	}
	if catalog, ok := e.cache.Catalog(); ok {
		return catalog, nil
	}
	catalog, err := e.rules.List(ctx)
	if err != nil {
		return nil, err
	}
	e.cache.StoreCatalog(catalog)
	return catalog, nil
}

// OpenOptions configure a new form.
type OpenOptions struct {
	// EditRecord seeds the first entry from an existing record.
	EditRecord map[string]any
	// EditID marks the form as editing that record.
	EditID string
	// SessionID overrides the generated session id.
	SessionID string
}

// Open starts a form session for template name. When the rule catalog
// cannot be loaded the form validates against the schema only.
func (e *Engine) Open(ctx context.Context, name string, opts OpenOptions) (*Form, error) {
	tpl, err := e.Template(ctx, name)
	if err != nil {
		return nil, err
	}

	schema, err := validation.NewSchemaValidator(tpl.Fields)
	if err != nil {
		return nil, fmt.Errorf("engine: schema for %q: %w", name, err)
	}
	validators := []validation.Validator{schema}
	catalog, err := e.Catalog(ctx)
	if err != nil {
		e.logger.Warn("rule catalog unavailable", "template", name, "error", err)
	} else if evaluator := rules.NewEvaluator(tpl.Fields, catalog, e.rules); evaluator.Len() > 0 {
		validators = append(validators, evaluator)
	}
	validators = append(validators, e.validators...)

	sessionOpts := []session.Option{session.WithEditRecord(opts.EditRecord)}
	if opts.SessionID != "" {
		sessionOpts = append(sessionOpts, session.WithID(opts.SessionID))
	}
	sess := session.New(tpl.Fields, sessionOpts...)
	logger := e.logger.With("module", "validation", "template", name)
	pipeline := validation.NewPipeline(sess, validation.Chain(validators...), validation.WithLogger(logger))

	groups := model.GroupFields(tpl.Fields)
	submitter := validation.NewSubmitter(pipeline, e.persister,
		validation.WithGroups(groups),
		validation.WithGroupSave(tpl.GroupSaveEnabled),
		validation.WithEditID(opts.EditID),
		validation.WithSubmitLogger(logger),
	)

	form := &Form{
		Template:  tpl,
		Groups:    groups,
		session:   sess,
		pipeline:  pipeline,
		submitter: submitter,
		release:   e.forget,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		sess.Close()
		return nil, ErrClosed
	}
	e.forms[sess.ID()] = form
	e.logger.Debug("form opened", "template", name, "session", sess.ID(), "edit", opts.EditID != "")
	return form, nil
}

// Forms reports the number of open forms.
func (e *Engine) Forms() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.forms)
}

func (e *Engine) forget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.forms, id)
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close closes every open form and evicts the cache.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	forms := make([]*Form, 0, len(e.forms))
	for _, form := range e.forms {
		forms = append(forms, form)
	}
	e.forms = make(map[string]*Form)
	e.mu.Unlock()

	for _, form := range forms {
		form.session.Close()
	}
	e.cache.Close()
	return nil
}
