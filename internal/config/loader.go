package config

import (
	"context"
	"errors"
	"fmt"
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
//  2. file (YAML) if PUNDIT_CONFIG is set
//  3. env (prefix PUNDIT_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PUNDIT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PUNDIT_ADDR, PUNDIT_API_KEY, ...
	// Map env keys like PUNDIT_MAX_PER_CLUB -> max_per_club (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PUNDIT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pundit_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.Budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive", ErrInvalidConfig)
	}
	if cfg.MaxPerClub <= 0 {
		return nil, fmt.Errorf("%w: max_per_club must be positive", ErrInvalidConfig)
	}
	if !cfg.LLMUseMock && len(cfg.APIKeys()) == 0 {
		return nil, fmt.Errorf("%w: no API key provided (set PUNDIT_API_KEY or PUNDIT_LLM_USE_MOCK)", ErrInvalidConfig)
	}
	return &cfg, nil
}
