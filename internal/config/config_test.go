package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/decoykit/scamtrap/internal/detect"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Detection.Threshold != detect.DefaultThreshold {
		t.Errorf("Detection.Threshold = %v, want %v", cfg.Detection.Threshold, detect.DefaultThreshold)
	}
	if cfg.Detection.Weights.Urgency != 0.25 {
		t.Errorf("Weights.Urgency = %v, want 0.25", cfg.Detection.Weights.Urgency)
	}
	if cfg.Session.MaxTurns != 20 {
		t.Errorf("Session.MaxTurns = %d, want 20", cfg.Session.MaxTurns)
	}
	if cfg.Session.IdleTimeout != time.Hour {
		t.Errorf("Session.IdleTimeout = %v, want 1h", cfg.Session.IdleTimeout)
	}
	if cfg.Session.SweepInterval != time.Minute {
		t.Errorf("Session.SweepInterval = %v, want 1m", cfg.Session.SweepInterval)
	}
	if cfg.Callback.MaxAttempts != 3 {
		t.Errorf("Callback.MaxAttempts = %d, want 3", cfg.Callback.MaxAttempts)
	}
	if cfg.Callback.Backoff != 500*time.Millisecond {
		t.Errorf("Callback.Backoff = %v, want 500ms", cfg.Callback.Backoff)
	}
	if cfg.Auth.APIKey != "" {
		t.Errorf("Auth.APIKey = %q, want empty by default", cfg.Auth.APIKey)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
auth:
  api_key: file-key
callback:
  url: https://collector.example/report
  timeout: 5s
detection:
  threshold: 0.6
session:
  max_turns: 10
  idle_timeout: 30m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.APIKey != "file-key" {
		t.Errorf("Auth.APIKey = %q, want file-key", cfg.Auth.APIKey)
	}
	if cfg.Callback.URL != "https://collector.example/report" {
		t.Errorf("Callback.URL = %q", cfg.Callback.URL)
	}
	if cfg.Callback.Timeout != 5*time.Second {
		t.Errorf("Callback.Timeout = %v, want 5s", cfg.Callback.Timeout)
	}
	if cfg.Detection.Threshold != 0.6 {
		t.Errorf("Detection.Threshold = %v, want 0.6", cfg.Detection.Threshold)
	}
	if cfg.Session.MaxTurns != 10 {
		t.Errorf("Session.MaxTurns = %d, want 10", cfg.Session.MaxTurns)
	}
	if cfg.Session.IdleTimeout != 30*time.Minute {
		t.Errorf("Session.IdleTimeout = %v, want 30m", cfg.Session.IdleTimeout)
	}
	// Untouched keys keep their defaults.
	if cfg.Session.AdvancedCutoff != 3 {
		t.Errorf("Session.AdvancedCutoff = %d, want default 3", cfg.Session.AdvancedCutoff)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("HONEYPOT_SERVER__PORT", "7070")
	t.Setenv("HONEYPOT_AUTH__API_KEY", "env-key")
	t.Setenv("HONEYPOT_SESSION__IDLE_TIMEOUT", "2h")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("Auth.APIKey = %q, want env-key", cfg.Auth.APIKey)
	}
	if cfg.Session.IdleTimeout != 2*time.Hour {
		t.Errorf("Session.IdleTimeout = %v, want 2h", cfg.Session.IdleTimeout)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not: valid"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse failure")
	}
}
