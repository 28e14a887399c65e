// Package prompts renders the phase-guidance text injected into the agent's
// conversation. Templates are registered per phase, with optional
// per-repository overrides, and versioned so guidance can evolve without
// breaking recorded runs.
package prompts

// PromptVersion identifies one revision of a template.
type PromptVersion string

const (
	// PromptV1 is the first template revision.
	PromptV1 PromptVersion = "1.0.0"
	// PromptV2 is reserved for the next revision.
	PromptV2 PromptVersion = "2.0.0"
)

// Prompt is a versioned guidance template with metadata.
type Prompt struct {
	ID          string        // e.g. "phase/analyze", "phase/analyze@django/django"
	Version     PromptVersion // revision of this template
	Content     string        // template text, see RenderTemplate for syntax
	Description string        // human-readable description
	Tags        []string      // e.g. ["phase", "analyze", "django"]
	Deprecated  bool          // true when superseded by a newer revision
}
