package engine

import (
	"sync"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/rules"
)

// Cache holds built templates by name and the rule catalog. It is owned by
// one Engine; nothing is shared between engines.
type Cache struct {
	mu            sync.RWMutex
	templates     map[string]model.FormTemplate
	catalog       []rules.Rule
	catalogLoaded bool
	closed        bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{templates: make(map[string]model.FormTemplate)}
}

// Template returns a copy of the cached template.
func (c *Cache) Template(name string) (model.FormTemplate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tpl, ok := c.templates[name]
	if !ok {
		return model.FormTemplate{}, false
	}
	return cloneTemplate(tpl), true
}

// StoreTemplate caches tpl under name. It is a no-op after Close.
func (c *Cache) StoreTemplate(name string, tpl model.FormTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.templates[name] = cloneTemplate(tpl)
}

// Catalog returns the cached rule catalog.
func (c *Cache) Catalog() ([]rules.Rule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.catalogLoaded {
		return nil, false
	}
	return append([]rules.Rule(nil), c.catalog...), true
}

// StoreCatalog caches the rule catalog. It is a no-op after Close.
func (c *Cache) StoreCatalog(catalog []rules.Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.catalog = append([]rules.Rule(nil), catalog...)
	c.catalogLoaded = true
}

// Evict drops the named templates. Without names it drops every template
// and the rule catalog.
func (c *Cache) Evict(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(names) == 0 {
		c.templates = make(map[string]model.FormTemplate)
		c.catalog = nil
		c.catalogLoaded = false
		return
	}
	for _, name := range names {
		delete(c.templates, name)
	}
}

// EvictCatalog drops the cached rule catalog.
func (c *Cache) EvictCatalog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = nil
	c.catalogLoaded = false
}

// Len reports the number of cached templates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// Close evicts everything and stops further caching.
func (c *Cache) Close() {
	c.Evict()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func cloneTemplate(tpl model.FormTemplate) model.FormTemplate {
	out := tpl
	out.Fields = make([]model.FieldDescriptor, len(tpl.Fields))
	for i, field := range tpl.Fields {
		out.Fields[i] = cloneField(field)
	}
	return out
}

func cloneField(field model.FieldDescriptor) model.FieldDescriptor {
	out := field
	out.ApplicableContexts = append([]string(nil), field.ApplicableContexts...)
	out.Options = append([]model.Option(nil), field.Options...)
	if field.ValidationRuleID != nil {
		id := *field.ValidationRuleID
		out.ValidationRuleID = &id
	}
	if field.Metadata != nil {
		out.Metadata = make(map[string]string, len(field.Metadata))
		for k, v := range field.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
