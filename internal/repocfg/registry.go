// Package repocfg maps SWE-bench instance IDs to per-repository settings:
// the official test runner, example invocations, and exploration thresholds.
package repocfg

import (
	"fmt"
	"log"
	"strings"
)

// ProjectType categorises how a repository runs its tests.
type ProjectType string

const (
	ProjectDjango ProjectType = "django"
	ProjectPytest ProjectType = "pytest"
	ProjectTox    ProjectType = "tox"
	ProjectCustom ProjectType = "custom"
)

// Config holds the repository-specific knowledge the policy engine consults.
// Immutable after load.
type Config struct {
	Repo              string      `yaml:"repo"`
	ProjectType       ProjectType `yaml:"project_type"`
	TestRunner        string      `yaml:"test_runner"`
	Examples          []string    `yaml:"examples"`
	TestPatterns      []string    `yaml:"test_patterns"`
	MinReadCalls      int         `yaml:"min_read_calls"`
	MinTestCalls      int         `yaml:"min_test_calls"`
	StrictExploration bool        `yaml:"strict_exploration"`
}

// Registry resolves instance IDs to repository configurations.
type Registry struct {
	configs map[string]Config
	logger  *log.Logger
}

// NewRegistry builds a registry over the built-in repository table.
func NewRegistry(logger *log.Logger) *Registry {
	configs := make(map[string]Config, len(builtinConfigs))
	for repo, cfg := range builtinConfigs {
		configs[repo] = cfg
	}
	return &Registry{configs: configs, logger: logger}
}

// RepoFromInstanceID extracts the repository identifier from a SWE-bench
// instance ID: the first double underscore splits owner from name, and the
// numeric suffix after the final hyphen is the issue number.
// "django__django-12325" -> "django/django".
func RepoFromInstanceID(instanceID string) (string, error) {
	owner, rest, ok := strings.Cut(instanceID, "__")
	if !ok || owner == "" || rest == "" {
		return "", fmt.Errorf("instance id %q has no owner__name separator", instanceID)
	}
	name := rest
	if i := strings.LastIndex(rest, "-"); i > 0 {
		suffix := rest[i+1:]
		if isDigits(suffix) {
			name = rest[:i]
		}
	}
	if name == "" {
		return "", fmt.Errorf("instance id %q has an empty repository name", instanceID)
	}
	return owner + "/" + name, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// GetRepositoryConfig returns the configuration for the repository an
// instance belongs to. Unknown repositories get a usable generic fallback;
// this never fails.
func (r *Registry) GetRepositoryConfig(instanceID string) Config {
	repo, err := RepoFromInstanceID(instanceID)
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("repocfg: %v, using fallback config", err)
		}
		return fallbackConfig(instanceID)
	}

	cfg, ok := r.configs[repo]
	if !ok {
		if r.logger != nil {
			r.logger.Printf("repocfg: unknown repository %q, using fallback config", repo)
		}
		return fallbackConfig(repo)
	}

	for _, w := range validate(cfg) {
		if r.logger != nil {
			r.logger.Printf("repocfg: %s: %s", repo, w)
		}
	}
	return cfg
}

// Known reports whether the repository behind an instance ID is in the table.
func (r *Registry) Known(instanceID string) bool {
	repo, err := RepoFromInstanceID(instanceID)
	if err != nil {
		return false
	}
	_, ok := r.configs[repo]
	return ok
}

// fallbackConfig is returned for instances outside the known table.
func fallbackConfig(repo string) Config {
	return Config{
		Repo:         repo,
		ProjectType:  ProjectCustom,
		TestRunner:   "auto-detect",
		TestPatterns: []string{"test_*.py", "*_test.py", "tests/"},
		MinReadCalls: 5,
		MinTestCalls: 2,
	}
}

// validate collects warnings for missing fields. The config stays usable
// either way; callers only ever see a complete value.
func validate(cfg Config) []string {
	var warnings []string
	if cfg.TestRunner == "" {
		warnings = append(warnings, "missing test_runner")
	}
	if len(cfg.Examples) == 0 {
		warnings = append(warnings, "no example invocations")
	}
	if len(cfg.TestPatterns) == 0 {
		warnings = append(warnings, "no test patterns")
	}
	if cfg.MinReadCalls <= 0 {
		warnings = append(warnings, "min_read_calls not set")
	}
	return warnings
}
