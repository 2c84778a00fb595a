package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if VIGIL_CONFIG is set
//  3. env (prefix VIGIL_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("VIGIL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: VIGIL_ADDR, VIGIL_QUEUE_SIZE, ...
	// Map env keys like VIGIL_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("VIGIL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "vigil_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, errors.New("addr must not be empty")
	case cfg.FallenTimeoutSeconds <= 0:
		return nil, errors.New("fallen_timeout_seconds must be positive")
	case cfg.SuddenFallWindowSeconds <= 0:
		return nil, errors.New("sudden_fall_window_seconds must be positive")
	case cfg.CooldownSeconds < 0:
		return nil, errors.New("cooldown_seconds must not be negative")
	case cfg.HistorySeconds <= 0:
		return nil, errors.New("history_seconds must be positive")
	case cfg.FPS <= 0:
		return nil, errors.New("fps must be positive")
	}
	return &cfg, nil
}
