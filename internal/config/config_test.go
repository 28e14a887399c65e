package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourcePrefix != DefaultSourcePrefix || cfg.TargetPrefix != DefaultTargetPrefix {
		t.Errorf("prefixes = %q -> %q", cfg.SourcePrefix, cfg.TargetPrefix)
	}
	if cfg.ContextWindow != DefaultContextWindow {
		t.Errorf("context window = %d", cfg.ContextWindow)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("SWEGUARD_SOURCE_PREFIX", "/repo")
	t.Setenv("SWEGUARD_CONTEXT_WINDOW", "100000")
	t.Setenv("SWEGUARD_MAX_COMPLETION_TOKENS", "8000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourcePrefix != "/repo" {
		t.Errorf("source prefix = %q", cfg.SourcePrefix)
	}
	if cfg.ContextWindow != 100000 || cfg.MaxCompletionTokens != 8000 {
		t.Errorf("window = %d, completion = %d", cfg.ContextWindow, cfg.MaxCompletionTokens)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SWEGUARD_CONTEXT_WINDOW", "not-a-number")
	if _, err := Load(); err == nil {
		t.Error("non-numeric window must error")
	}

	t.Setenv("SWEGUARD_CONTEXT_WINDOW", "1000")
	t.Setenv("SWEGUARD_MAX_COMPLETION_TOKENS", "2000")
	if _, err := Load(); err == nil {
		t.Error("window smaller than completion budget must error")
	}
}
