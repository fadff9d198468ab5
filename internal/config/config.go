// Package config loads service configuration from an optional YAML file and
// HONEYPOT_-prefixed environment variables (env wins). Detection weights and
// the classification threshold live here: they are tunable configuration,
// never inline constants.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/decoykit/scamtrap/internal/detect"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Auth      AuthConfig      `koanf:"auth"`
	Callback  CallbackConfig  `koanf:"callback"`
	Detection DetectionConfig `koanf:"detection"`
	Session   SessionConfig   `koanf:"session"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type AuthConfig struct {
	// APIKey guards the message and stats endpoints (X-API-Key header).
	// Empty disables authentication, for local development only.
	APIKey string `koanf:"api_key"`
}

type CallbackConfig struct {
	URL         string        `koanf:"url"`
	AuthToken   string        `koanf:"auth_token"`
	MaxAttempts int           `koanf:"max_attempts"`
	Backoff     time.Duration `koanf:"backoff"`
	Timeout     time.Duration `koanf:"timeout"`
}

type DetectionConfig struct {
	Threshold       float64        `koanf:"threshold"`
	EscalationBonus float64        `koanf:"escalation_bonus"`
	Weights         detect.Weights `koanf:"weights"`
	Keywords        []string       `koanf:"keywords"`
	ExtractKeywords []string       `koanf:"extract_keywords"`
	AllowedDomains  []string       `koanf:"allowed_domains"`
}

type SessionConfig struct {
	MaxTurns       int           `koanf:"max_turns"`
	AdvancedCutoff int           `koanf:"advanced_cutoff"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`
}

// Load reads config.yaml when present, then environment overrides.
// HONEYPOT_SERVER__PORT=9000 maps to server.port, and so on.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = "config.yaml"
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("HONEYPOT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "HONEYPOT_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	setDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"server.port":                   8080,
		"callback.max_attempts":         3,
		"callback.backoff":              "500ms",
		"callback.timeout":              "10s",
		"detection.threshold":           detect.DefaultThreshold,
		"detection.escalation_bonus":    detect.DefaultEscalationBonus,
		"detection.weights.keyword_per": 0.15,
		"detection.weights.keyword_cap": 0.45,
		"detection.weights.urgency":     0.25,
		"detection.weights.financial":   0.30,
		"detection.weights.phishing":    0.20,
		"detection.weights.url":         0.15,
		"detection.weights.phone":       0.10,
		"session.max_turns":             20,
		"session.advanced_cutoff":       3,
		"session.idle_timeout":          "1h",
		"session.sweep_interval":        "1m",
	}
	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}
}
