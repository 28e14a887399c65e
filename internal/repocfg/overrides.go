package repocfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overridesFile is the shape of an on-disk overrides document:
//
//	repositories:
//	  django/django:
//	    test_runner: ./tests/runtests.py
//	    min_read_calls: 8
type overridesFile struct {
	Repositories map[string]Config `yaml:"repositories"`
}

// LoadOverrides merges a YAML overrides file over the built-in table.
// A missing file is not an error. A malformed file is logged and ignored so
// a bad override can never take the registry down.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read overrides file: %w", err)
	}

	var doc overridesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		if r.logger != nil {
			r.logger.Printf("repocfg: ignoring malformed overrides %s: %v", path, err)
		}
		return nil
	}

	for repo, override := range doc.Repositories {
		merged, ok := r.configs[repo]
		if !ok {
			merged = fallbackConfig(repo)
		}
		mergeConfig(&merged, override)
		merged.Repo = repo
		r.configs[repo] = merged
	}
	return nil
}

// mergeConfig copies the set fields of override onto base.
func mergeConfig(base *Config, override Config) {
	if override.ProjectType != "" {
		base.ProjectType = override.ProjectType
	}
	if override.TestRunner != "" {
		base.TestRunner = override.TestRunner
	}
	if len(override.Examples) > 0 {
		base.Examples = override.Examples
	}
	if len(override.TestPatterns) > 0 {
		base.TestPatterns = override.TestPatterns
	}
	if override.MinReadCalls > 0 {
		base.MinReadCalls = override.MinReadCalls
	}
	if override.MinTestCalls > 0 {
		base.MinTestCalls = override.MinTestCalls
	}
	if override.StrictExploration {
		base.StrictExploration = true
	}
}
