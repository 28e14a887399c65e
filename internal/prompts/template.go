package prompts

import (
	"fmt"
	"regexp"
	"strings"
)

// maxConditionalPasses bounds the fixpoint loop over nested conditionals so
// a malformed template can never spin forever.
const maxConditionalPasses = 10

var (
	varPattern    = regexp.MustCompile(`\{\{(\w+)\}\}`)
	ifOpenPattern = regexp.MustCompile(`\{\{#if\s+\w+\}\}`)
)

// RenderTemplate evaluates a template against a variable map.
//
// Supported constructs, resolved innermost-first:
//
//	{{var}}
//	{{#if var}}...{{/if}}
//	{{#if var}}...{{else}}...{{/if}}
//
// Missing variables render as [name] and produce a warning instead of
// failing; rendering always returns usable text.
func RenderTemplate(template string, vars map[string]string) (string, []string) {
	var warnings []string

	text := template
	for pass := 0; pass < maxConditionalPasses; pass++ {
		next, changed := resolveInnermostPass(text, vars)
		if !changed {
			break
		}
		text = next
	}

	// Anything still holding conditional markers was nested too deep or
	// unterminated; strip the markers so the agent never sees them.
	if strings.Contains(text, "{{#if") || strings.Contains(text, "{{/if}}") {
		warnings = append(warnings, "unresolved conditional markers stripped")
		text = strings.ReplaceAll(text, "{{/if}}", "")
		text = strings.ReplaceAll(text, "{{else}}", "")
		text = ifOpenPattern.ReplaceAllString(text, "")
	}

	// Variable substitution runs last, over the surviving branches only.
	text = varPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := varPattern.FindStringSubmatch(m)[1]
		val, ok := vars[name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("missing variable %q", name))
			return "[" + name + "]"
		}
		return val
	})

	return text, warnings
}

// resolveInnermostPass rewrites every conditional block that is innermost in
// the current text, reporting whether anything changed. Outer blocks exposed
// by a rewrite are picked up by the next pass.
//
// An innermost block pairs the first {{/if}} closer with the last {{#if ...}}
// opener before it: any opener between the two would have to close earlier,
// contradicting the closer being first.
func resolveInnermostPass(text string, vars map[string]string) (string, bool) {
	const (
		openMarker  = "{{#if "
		closeMarker = "{{/if}}"
		elseMarker  = "{{else}}"
	)

	var out strings.Builder
	changed := false
	rest := text

	for {
		closeIdx := strings.Index(rest, closeMarker)
		if closeIdx < 0 {
			out.WriteString(rest)
			break
		}
		openIdx := strings.LastIndex(rest[:closeIdx], openMarker)
		if openIdx < 0 {
			// Orphan closer; leave it for the caller's cleanup.
			out.WriteString(rest[:closeIdx+len(closeMarker)])
			rest = rest[closeIdx+len(closeMarker):]
			continue
		}
		openEnd := strings.Index(rest[openIdx:], "}}")
		if openEnd < 0 {
			out.WriteString(rest)
			break
		}
		openEnd += openIdx + len("}}")
		if openEnd > closeIdx {
			// Unterminated opener tag; nothing sane to do.
			out.WriteString(rest[:closeIdx+len(closeMarker)])
			rest = rest[closeIdx+len(closeMarker):]
			continue
		}

		name := strings.TrimSpace(rest[openIdx+len(openMarker) : openEnd-len("}}")])
		body := rest[openEnd:closeIdx]

		thenPart := body
		elsePart := ""
		if i := strings.Index(body, elseMarker); i >= 0 {
			thenPart = body[:i]
			elsePart = body[i+len(elseMarker):]
		}

		chosen := elsePart
		if truthy(vars[name]) {
			chosen = thenPart
		}

		// Text before the opener may hold outer openers whose closers come
		// later; they stay as markers for the next pass.
		out.WriteString(rest[:openIdx])
		out.WriteString(chosen)
		rest = rest[closeIdx+len(closeMarker):]
		changed = true
	}

	return out.String(), changed
}

// truthy treats empty, "false", "0" and "no" as false (case-insensitive,
// surrounding whitespace ignored); everything else is true.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "no":
		return false
	}
	return true
}
