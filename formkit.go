// Package formkit exposes the common entry points of the form engine so
// callers can render or import forms without wiring the packages by hand.
package formkit

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formkit/pkg/engine"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/openapi"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/html"
	"github.com/goliatone/go-formkit/pkg/templates"
)

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// OpenOptions aliases engine.OpenOptions.
type OpenOptions = engine.OpenOptions

// New builds an engine. See engine.New.
func New(options ...engine.Option) (*engine.Engine, error) {
	return engine.New(options...)
}

// Load builds an engine over the template records found in fsys.
func Load(fsys fs.FS, options ...engine.Option) (*engine.Engine, error) {
	store, err := templates.LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	return engine.New(append([]engine.Option{engine.WithTemplates(store)}, options...)...)
}

// RenderHTML loads the template records in fsys and renders the named one
// as HTML.
func RenderHTML(ctx context.Context, fsys fs.FS, name string, opts RenderOptions) ([]byte, error) {
	eng, err := Load(fsys)
	if err != nil {
		return nil, err
	}
	defer eng.Close()
	return eng.Render(ctx, name, "html", opts)
}

// ImportOpenAPI reads the OpenAPI document at path in fsys and builds a
// template record from the request body of operationID.
func ImportOpenAPI(ctx context.Context, fsys fs.FS, path, operationID string, options ...openapi.Option) (model.TemplateRecord, error) {
	importer := openapi.NewImporter(options...)
	doc, err := importer.LoadFS(ctx, fsys, path)
	if err != nil {
		return model.TemplateRecord{}, err
	}
	return importer.Import(doc, operationID)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or override them.
func EmbeddedTemplates() fs.FS {
	return html.Templates()
}
