// Package templates loads raw form template records from JSON or YAML files
// and keeps them in a name-indexed store.
package templates

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/model"
)

// Document is a loaded template record together with where it came from.
type Document struct {
	Record   model.TemplateRecord
	Source   string
	Warnings []string
}

// Store holds template records by trimmed name. It is safe for concurrent
// use.
type Store struct {
	mu        sync.RWMutex
	documents map[string]Document
}

// Option configures LoadFS.
type Option func(*loadConfig)

type loadConfig struct {
	strict bool
	logger *slog.Logger
}

// WithStrict rejects documents carrying unknown keys.
func WithStrict(strict bool) Option {
	return func(cfg *loadConfig) {
		cfg.strict = strict
	}
}

// WithLogger receives unknown-key warnings and load progress.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *loadConfig) {
		cfg.logger = logging.OrDiscard(logger)
	}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{documents: make(map[string]Document)}
}

// LoadFS walks fsys and decodes every .json, .yaml and .yml file as one
// template record. A nil fsys yields an empty store.
func LoadFS(fsys fs.FS, options ...Option) (*Store, error) {
	cfg := loadConfig{logger: logging.Discard()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	store := NewStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isTemplateFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("templates: read %s: %w", path, err)
		}
		record, warnings, err := model.DecodeTemplateRecord(data, model.DecodeOptions{Strict: cfg.strict})
		if err != nil {
			return fmt.Errorf("templates: decode %s: %w", path, err)
		}
		for _, warning := range warnings {
			cfg.logger.Warn("unknown template key", "file", path, "key", warning)
		}
		return store.add(Document{Record: record, Source: path, Warnings: warnings})
	})
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("templates loaded", "count", store.Len())
	return store, nil
}

// Put adds record under its name. Existing names are rejected.
func (s *Store) Put(record model.TemplateRecord, source string) error {
	return s.add(Document{Record: record, Source: source})
}

func (s *Store) add(doc Document) error {
	name := strings.TrimSpace(doc.Record.Name)
	if name == "" {
		return fmt.Errorf("%w (file %s)", ErrEmptyName, doc.Source)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, exists := s.documents[name]; exists {
		return fmt.Errorf("%w: %q (files %s and %s)", ErrDuplicateTemplate, name, prev.Source, doc.Source)
	}
	s.documents[name] = doc
	return nil
}

// Get returns the record stored under name.
func (s *Store) Get(name string) (model.TemplateRecord, error) {
	doc, err := s.Document(name)
	if err != nil {
		return model.TemplateRecord{}, err
	}
	return doc.Record, nil
}

// Document returns the record stored under name with its source.
func (s *Store) Document(name string) (Document, error) {
	if s == nil {
		return Document{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[strings.TrimSpace(name)]
	if !ok {
		return Document{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return doc, nil
}

// Names lists stored template names in sorted order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.documents))
	for name := range s.documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of stored templates.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

func isTemplateFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
