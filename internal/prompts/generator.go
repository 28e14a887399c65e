package prompts

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// phasePromptID returns the registry ID for a phase's default template.
func phasePromptID(phase string) string {
	return "phase/" + strings.ToLower(phase)
}

// repoPromptID returns the registry ID for a repository-specific override.
func repoPromptID(phase, repo string) string {
	return phasePromptID(phase) + "@" + repo
}

// Result is what a render returns. Text is always usable: on failure it
// holds the deterministic fallback block instead of being empty.
type Result struct {
	Success  bool
	Text     string
	Warnings []string
}

// Generator renders phase-guidance prompts from registered templates.
type Generator struct {
	registry *PromptRegistry
	logger   *log.Logger
}

// NewGenerator creates a Generator over the given registry; a nil registry
// uses the default one.
func NewGenerator(registry *PromptRegistry, logger *log.Logger) *Generator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Generator{registry: registry, logger: logger}
}

// PhaseGuidance renders the guidance for a phase. Template choice is the
// repository override when one is registered, the phase default otherwise.
// Any critical failure yields the fallback block; warnings surface in the
// result rather than as errors.
func (g *Generator) PhaseGuidance(phase, repo string, vars map[string]string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			if g.logger != nil {
				g.logger.Printf("prompts: render panic for phase %s: %v", phase, r)
			}
			result = Result{
				Text:     FallbackGuidance(phase, vars),
				Warnings: []string{fmt.Sprintf("render panic: %v", r)},
			}
		}
	}()

	prompt, err := g.lookup(phase, repo)
	if err != nil {
		if g.logger != nil {
			g.logger.Printf("prompts: %v, using fallback", err)
		}
		return Result{
			Text:     FallbackGuidance(phase, vars),
			Warnings: []string{err.Error()},
		}
	}

	text, warnings := RenderTemplate(prompt.Content, vars)
	if strings.TrimSpace(text) == "" {
		return Result{
			Text:     FallbackGuidance(phase, vars),
			Warnings: append(warnings, "template rendered empty"),
		}
	}

	for _, w := range warnings {
		if g.logger != nil {
			g.logger.Printf("prompts: phase %s: %s", phase, w)
		}
	}
	return Result{Success: true, Text: text, Warnings: warnings}
}

func (g *Generator) lookup(phase, repo string) (*Prompt, error) {
	if repo != "" {
		if p, err := g.registry.GetLatest(repoPromptID(phase, repo)); err == nil {
			return p, nil
		}
	}
	p, err := g.registry.GetLatest(phasePromptID(phase))
	if err != nil {
		return nil, fmt.Errorf("no template for phase %s: %w", phase, err)
	}
	return p, nil
}

// FallbackGuidance is the deterministic block returned when rendering fails.
// It names the phase and echoes the status counters in a stable order.
func FallbackGuidance(phase string, vars map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CURRENT PHASE: %s\n\n", phase)
	b.WriteString("Guidance rendering failed; continue with the standard workflow:\n")
	b.WriteString("1. Reproduce the failure with the repository's test runner.\n")
	b.WriteString("2. Make one focused modification at a time.\n")
	b.WriteString("3. Re-run the failing tests, then the surrounding suite.\n")

	if len(vars) > 0 {
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nStatus:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, vars[k])
		}
	}
	return b.String()
}
