package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/config"
	"github.com/goliatone/go-formkit/pkg/engine"
	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/rules"
	"github.com/goliatone/go-formkit/pkg/templates"
	"github.com/goliatone/go-formkit/pkg/transport/rest"
)

var (
	errNoBackend   = errors.New("no backend configured: set rules_base_url or FORMKIT_RULES_BASE_URL")
	errNoTemplates = errors.New("no template directory configured: pass --templates or set templates_dir")
)

// runtime carries the resolved settings of one command invocation.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
}

func loadRuntime(cmd *cli.Command) (*runtime, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if v := cmd.String("templates"); v != "" {
		cfg.TemplatesDir = v
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := cmd.String("log-format"); v != "" {
		cfg.LogFormat = v
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return &runtime{cfg: cfg, logger: logger.With("module", "cli"), out: out}, nil
}

func (r *runtime) client() (*rest.Client, error) {
	if strings.TrimSpace(r.cfg.RulesBaseURL) == "" {
		return nil, errNoBackend
	}
	return rest.New(r.cfg.RulesBaseURL,
		rest.WithTimeout(r.cfg.RequestTimeout),
		rest.WithLogger(r.logger.With("module", "rest")),
	)
}

func (r *runtime) ruleStore() (*rules.Store, error) {
	client, err := r.client()
	if err != nil {
		return nil, err
	}
	return rules.NewStore(client,
		rules.WithBasePath(r.cfg.RulesPath),
		rules.WithStoreLogger(r.logger.With("module", "rules")),
	), nil
}

func (r *runtime) templates() (*templates.Store, error) {
	dir := strings.TrimSpace(r.cfg.TemplatesDir)
	if dir == "" {
		return nil, errNoTemplates
	}
	return templates.LoadFS(os.DirFS(dir),
		templates.WithStrict(r.cfg.StrictTemplates),
		templates.WithLogger(r.logger.With("module", "templates")),
	)
}

// engine wires the template store and, when a backend is configured, the
// rule catalog.
func (r *runtime) engine(extra ...engine.Option) (*engine.Engine, error) {
	store, err := r.templates()
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithTemplates(store),
		engine.WithSurface(r.cfg.Surface),
		engine.WithLogger(r.logger.With("module", "engine")),
	}
	if strings.TrimSpace(r.cfg.RulesBaseURL) != "" {
		rs, err := r.ruleStore()
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithRuleStore(rs))
	}
	return engine.New(append(opts, extra...)...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeDocument writes v as YAML when path has a YAML extension and as JSON
// otherwise. An empty path writes JSON to w.
func writeDocument(w io.Writer, path string, v any) error {
	if path == "" {
		return writeJSON(w, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeJSON(f, v)
	}
}

// readDocument decodes a JSON or YAML file into out. yaml.v3 accepts both.
func readDocument(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
