package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formkit.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
surface: report
rules_base_url: https://hr.example.com/api
request_timeout: 3s
log_format: json
`)
	t.Setenv("FORMKIT_LOG_LEVEL", "debug")
	t.Setenv("FORMKIT_STRICT_TEMPLATES", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.Surface = "report"
	want.RulesBaseURL = "https://hr.example.com/api"
	want.RequestTimeout = 3 * time.Second
	want.LogFormat = "json"
	want.LogLevel = "debug"
	want.StrictTemplates = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownKeysAndBadValues(t *testing.T) {
	if _, err := Load(writeConfig(t, "colour: red\n")); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if _, err := Load(writeConfig(t, "log_level: loud\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := Load(writeConfig(t, "rules_path: rules\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for relative path, got %v", err)
	}

	t.Setenv("FORMKIT_REQUEST_TIMEOUT", "soon")
	if _, err := Load(""); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for bad timeout, got %v", err)
	}
}

func TestApplyEnvUsesLookup(t *testing.T) {
	cfg := Default()
	env := map[string]string{"FORMKIT_SURFACE": " kiosk ", "FORMKIT_SUBMIT_PATH": "/employees"}
	err := cfg.applyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Surface != "kiosk" || cfg.SubmitPath != "/employees" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
