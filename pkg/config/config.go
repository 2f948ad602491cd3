// Package config loads formkit settings from a YAML file with FORMKIT_*
// environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/rules"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMKIT_"

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds runtime settings shared by the engine and the CLI.
type Config struct {
	Surface         string        `yaml:"surface" validate:"required"`
	RulesBaseURL    string        `yaml:"rules_base_url" validate:"omitempty,url"`
	RulesPath       string        `yaml:"rules_path" validate:"required,startswith=/"`
	SubmitPath      string        `yaml:"submit_path" validate:"omitempty,startswith=/"`
	TemplatesDir    string        `yaml:"templates_dir"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat       string        `yaml:"log_format" validate:"oneof=text json"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gte=0"`
	StrictTemplates bool          `yaml:"strict_templates"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Surface:        model.SurfaceForm,
		RulesPath:      rules.DefaultBasePath,
		LogLevel:       "info",
		LogFormat:      "text",
		RequestTimeout: 15 * time.Second,
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SURFACE":        &c.Surface,
		"RULES_BASE_URL": &c.RulesBaseURL,
		"RULES_PATH":     &c.RulesPath,
		"SUBMIT_PATH":    &c.SubmitPath,
		"TEMPLATES_DIR":  &c.TemplatesDir,
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FORMAT":     &c.LogFormat,
	}
	for key, target := range strs {
		if value, ok := lookup(EnvPrefix + key); ok {
			*target = strings.TrimSpace(value)
		}
	}
	if value, ok := lookup(EnvPrefix + "REQUEST_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %sREQUEST_TIMEOUT: %w", ErrInvalidConfig, EnvPrefix, err)
		}
		c.RequestTimeout = timeout
	}
	if value, ok := lookup(EnvPrefix + "STRICT_TEMPLATES"); ok {
		strict, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %sSTRICT_TEMPLATES: %w", ErrInvalidConfig, EnvPrefix, err)
		}
		c.StrictTemplates = strict
	}
	return nil
}
