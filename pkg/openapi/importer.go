package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/model"
)

// Extension keys read from property schemas.
const (
	ExtensionWidget      = "x-formkit-widget"
	ExtensionGroup       = "x-formkit-group"
	ExtensionPlaceholder = "x-formkit-placeholder"
	ExtensionOrder       = "x-formkit-order"
	ExtensionAccept      = "x-formkit-accept"
)

// textAreaMinLength is the maxLength from which strings import as textareas.
const textAreaMinLength = 256

var mediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Document is a loaded and validated OpenAPI document.
type Document struct {
	spec *openapi3.T
}

// Operation summarizes an importable operation.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// Importer converts request body schemas into template records.
type Importer struct {
	surface  string
	validate bool
	logger   *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithSurface sets the applicable context written on every imported field.
func WithSurface(surface string) Option {
	return func(i *Importer) {
		if trimmed := strings.TrimSpace(surface); trimmed != "" {
			i.surface = trimmed
		}
	}
}

// WithValidation toggles document validation on load. Enabled by default.
func WithValidation(enabled bool) Option {
	return func(i *Importer) {
		i.validate = enabled
	}
}

// WithLogger sets the importer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		i.logger = logging.OrDiscard(logger)
	}
}

// NewImporter returns an Importer for the form surface.
func NewImporter(options ...Option) *Importer {
	imp := &Importer{
		surface:  model.SurfaceForm,
		validate: true,
		logger:   logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(imp)
		}
	}
	return imp
}

// Load parses a JSON or YAML OpenAPI document.
func (i *Importer) Load(ctx context.Context, data []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyDocument
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return &Document{spec: spec}, nil
}

// LoadFS reads name from fsys and loads it.
func (i *Importer) LoadFS(ctx context.Context, fsys fs.FS, name string) (*Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", name, err)
	}
	return i.Load(ctx, data)
}

// Operations lists operations that carry a request body, sorted by id.
// Operations without an operationId are keyed "method:path".
func (d *Document) Operations() []Operation {
	if d == nil || d.spec == nil || d.spec.Paths == nil {
		return nil
	}
	var out []Operation
	for path, item := range d.spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || op.RequestBody == nil {
				continue
			}
			out = append(out, Operation{
				ID:      operationID(method, path, op),
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
			})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (d *Document) find(id string) (*openapi3.Operation, bool) {
	if d == nil || d.spec == nil || d.spec.Paths == nil {
		return nil, false
	}
	for path, item := range d.spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op != nil && operationID(method, path, op) == id {
				return op, true
			}
		}
	}
	return nil, false
}

// Import builds a template record from the request body of operation id.
// Top-level scalar properties land in the default group. Nested objects
// become a group named by their title (or property name) whose backend key
// is the property name.
func (i *Importer) Import(doc *Document, id string) (model.TemplateRecord, error) {
	op, ok := doc.find(id)
	if !ok {
		return model.TemplateRecord{}, fmt.Errorf("%w: %q", ErrOperationNotFound, id)
	}
	schema := requestSchema(op)
	if schema == nil || !schema.Type.Is(openapi3.TypeObject) || len(schema.Properties) == 0 {
		return model.TemplateRecord{}, fmt.Errorf("%w: %q", ErrNoRequestBody, id)
	}

	name := strings.TrimSpace(op.Summary)
	if name == "" {
		name = id
	}
	rec := model.TemplateRecord{Name: name, Description: op.Description}

	order := 0
	for _, prop := range sortedProperties(schema) {
		value := prop.ref.Value
		if value.Type.Is(openapi3.TypeObject) && len(value.Properties) > 0 {
			group := value.Title
			if group == "" {
				group = model.DefaultLabeler(prop.name)
			}
			for _, nested := range sortedProperties(value) {
				order++
				field := i.field(nested.name, nested.ref.Value, contains(value.Required, nested.name), order)
				field.FieldGroup = group
				field.GroupBackendKey = prop.name
				rec.Fields = append(rec.Fields, field)
			}
			rec.GroupSaveEnabled = true
			continue
		}
		order++
		rec.Fields = append(rec.Fields, i.field(prop.name, value, contains(schema.Required, prop.name), order))
	}
	i.logger.Debug("operation imported", "operation", id, "fields", len(rec.Fields))
	return rec, nil
}

func (i *Importer) field(name string, schema *openapi3.Schema, required bool, order int) model.FieldRecord {
	fieldType, options := fieldType(schema)
	applicable, _ := json.Marshal([]string{i.surface})

	rec := model.FieldRecord{
		Name:           name,
		Label:          schema.Title,
		Type:           string(fieldType),
		Required:       required,
		ApplicableJSON: string(applicable),
		DefaultValue:   schema.Default,
		FieldGroup:     stringExtension(schema, ExtensionGroup),
		Placeholder:    stringExtension(schema, ExtensionPlaceholder),
		DisplayOrder:   order,
	}
	if len(options) > 0 {
		encoded, _ := json.Marshal(options)
		rec.OptionsJSON = string(encoded)
	}
	if fieldType.Kind().Widget == model.WidgetFile {
		rec.Accept = stringExtension(schema, ExtensionAccept)
	}
	return rec
}

func fieldType(schema *openapi3.Schema) (model.FieldType, []model.Option) {
	if widget := stringExtension(schema, ExtensionWidget); widget != "" {
		return model.ParseFieldType(widget), enumOptions(schema.Enum)
	}
	switch {
	case schema.Type.Is(openapi3.TypeBoolean):
		return model.FieldTypeSwitch, nil
	case schema.Type.Is(openapi3.TypeInteger), schema.Type.Is(openapi3.TypeNumber):
		return model.FieldTypeNumber, nil
	case schema.Type.Is(openapi3.TypeArray):
		if schema.Items != nil && schema.Items.Value != nil && len(schema.Items.Value.Enum) > 0 {
			return model.FieldTypeMultiSelect, enumOptions(schema.Items.Value.Enum)
		}
		return model.FieldTypeTags, nil
	}
	if len(schema.Enum) > 0 {
		return model.FieldTypeSelect, enumOptions(schema.Enum)
	}
	switch schema.Format {
	case "email":
		return model.FieldTypeEmail, nil
	case "date":
		return model.FieldTypeDate, nil
	case "date-time":
		return model.FieldTypeDateTime, nil
	case "time":
		return model.FieldTypeTime, nil
	case "uri", "url":
		return model.FieldTypeURL, nil
	case "password":
		return model.FieldTypePassword, nil
	case "binary":
		return model.FieldTypeFile, nil
	case "color":
		return model.FieldTypeColor, nil
	}
	if schema.MaxLength != nil && *schema.MaxLength >= textAreaMinLength {
		return model.FieldTypeTextArea, nil
	}
	return model.FieldTypeText, nil
}

func enumOptions(values []any) []model.Option {
	out := make([]model.Option, 0, len(values))
	for _, value := range values {
		text := fmt.Sprint(value)
		out = append(out, model.Option{Label: model.DefaultLabeler(text), Value: text})
	}
	return out
}

type property struct {
	name  string
	ref   *openapi3.SchemaRef
	order int
}

// sortedProperties orders properties by x-formkit-order, then name.
// Properties without a resolved schema are skipped.
func sortedProperties(schema *openapi3.Schema) []property {
	out := make([]property, 0, len(schema.Properties))
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		out = append(out, property{name: name, ref: ref, order: intExtension(ref.Value, ExtensionOrder)})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].order != out[b].order {
			return out[a].order < out[b].order
		}
		return out[a].name < out[b].name
	})
	return out
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range mediaTypes {
		if mt := content.Get(mediaType); mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func operationID(method, path string, op *openapi3.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

func stringExtension(schema *openapi3.Schema, key string) string {
	if value, ok := schema.Extensions[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// intExtension returns math.MaxInt32 when the extension is absent so
// unordered properties sort last.
func intExtension(schema *openapi3.Schema, key string) int {
	switch value := schema.Extensions[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case string:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return math.MaxInt32
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
