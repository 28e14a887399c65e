// Package config loads the policy engine's runtime settings from the
// environment, with an optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults match the SWE-bench evaluation environment.
const (
	DefaultSourcePrefix        = "/testbed"
	DefaultTargetPrefix        = "/workspace/repo"
	DefaultContextWindow       = 200_000
	DefaultMaxCompletionTokens = 16_384
)

// Config is the loaded runtime configuration. Immutable after Load.
type Config struct {
	SourcePrefix string // environment-side path prefix
	TargetPrefix string // runner-side path prefix

	ContextWindow       int // model context window in tokens
	MaxCompletionTokens int // reserved for the model's reply

	EffectivenessDBPath string // empty disables the sqlite store
	RepoOverridesPath   string // empty disables YAML repository overrides
	StateDir            string // empty disables state snapshots
}

// Load reads configuration from the environment. A .env file in the working
// directory is honoured when present; a missing one is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		SourcePrefix:        getEnv("SWEGUARD_SOURCE_PREFIX", DefaultSourcePrefix),
		TargetPrefix:        getEnv("SWEGUARD_TARGET_PREFIX", DefaultTargetPrefix),
		EffectivenessDBPath: os.Getenv("SWEGUARD_EFFECTIVENESS_DB"),
		RepoOverridesPath:   os.Getenv("SWEGUARD_REPO_OVERRIDES"),
		StateDir:            os.Getenv("SWEGUARD_STATE_DIR"),
	}

	var err error
	cfg.ContextWindow, err = getEnvInt("SWEGUARD_CONTEXT_WINDOW", DefaultContextWindow)
	if err != nil {
		return nil, err
	}
	cfg.MaxCompletionTokens, err = getEnvInt("SWEGUARD_MAX_COMPLETION_TOKENS", DefaultMaxCompletionTokens)
	if err != nil {
		return nil, err
	}

	if cfg.ContextWindow <= cfg.MaxCompletionTokens {
		return nil, fmt.Errorf("context window (%d) must exceed max completion tokens (%d)",
			cfg.ContextWindow, cfg.MaxCompletionTokens)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
