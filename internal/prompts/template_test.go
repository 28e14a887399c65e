package prompts

import (
	"strings"
	"testing"
)

func TestRenderTemplateVariables(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
		warnings int
	}{
		{
			name:     "simple substitution",
			template: "phase is {{phase}}",
			vars:     map[string]string{"phase": "ANALYZE"},
			want:     "phase is ANALYZE",
		},
		{
			name:     "missing variable renders bracketed name",
			template: "runner: {{test_runner}}",
			vars:     map[string]string{},
			want:     "runner: [test_runner]",
			warnings: 1,
		},
		{
			name:     "repeated variable",
			template: "{{x}} and {{x}}",
			vars:     map[string]string{"x": "a"},
			want:     "a and a",
		},
		{
			name:     "no constructs",
			template: "plain text",
			vars:     nil,
			want:     "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := RenderTemplate(tt.template, tt.vars)
			if got != tt.want {
				t.Errorf("RenderTemplate() = %q, want %q", got, tt.want)
			}
			if len(warnings) != tt.warnings {
				t.Errorf("warnings = %v, want %d", warnings, tt.warnings)
			}
		})
	}
}

func TestRenderTemplateConditionals(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{
			name:     "true branch",
			template: "{{#if ready}}go{{/if}}",
			vars:     map[string]string{"ready": "true"},
			want:     "go",
		},
		{
			name:     "false drops body",
			template: "a{{#if ready}}go{{/if}}b",
			vars:     map[string]string{},
			want:     "ab",
		},
		{
			name:     "else branch",
			template: "{{#if ready}}go{{else}}wait{{/if}}",
			vars:     map[string]string{"ready": ""},
			want:     "wait",
		},
		{
			name:     "false string is false",
			template: "{{#if flag}}yes{{else}}no{{/if}}",
			vars:     map[string]string{"flag": "false"},
			want:     "no",
		},
		{
			name:     "nested inner first",
			template: "{{#if outer}}A{{#if inner}}B{{else}}C{{/if}}D{{/if}}",
			vars:     map[string]string{"outer": "1", "inner": "1"},
			want:     "ABD",
		},
		{
			name:     "nested outer false hides inner",
			template: "{{#if outer}}A{{#if inner}}B{{/if}}{{/if}}",
			vars:     map[string]string{"inner": "1"},
			want:     "",
		},
		{
			name:     "siblings",
			template: "{{#if a}}1{{/if}}-{{#if b}}2{{/if}}",
			vars:     map[string]string{"a": "y", "b": "y"},
			want:     "1-2",
		},
		{
			name:     "variable inside surviving branch",
			template: "{{#if show}}value={{v}}{{/if}}",
			vars:     map[string]string{"show": "1", "v": "7"},
			want:     "value=7",
		},
		{
			name:     "variable inside dropped branch not warned",
			template: "{{#if show}}{{missing}}{{/if}}",
			vars:     map[string]string{},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := RenderTemplate(tt.template, tt.vars)
			if got != tt.want {
				t.Errorf("RenderTemplate(%q) = %q, want %q", tt.template, got, tt.want)
			}
			if tt.name == "variable inside dropped branch not warned" && len(warnings) != 0 {
				t.Errorf("dropped branch should not warn, got %v", warnings)
			}
		})
	}
}

func TestRenderTemplateMalformed(t *testing.T) {
	// Unterminated conditional: markers are stripped, text survives.
	got, warnings := RenderTemplate("a{{#if x}}b", map[string]string{"x": "1"})
	if strings.Contains(got, "{{#if") {
		t.Errorf("markers leaked: %q", got)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning for unterminated conditional")
	}

	// Orphan closer.
	got, _ = RenderTemplate("a{{/if}}b", nil)
	if strings.Contains(got, "{{/if}}") {
		t.Errorf("orphan closer leaked: %q", got)
	}
}

func TestRenderTemplateDeepNestingTerminates(t *testing.T) {
	// Deeper than the pass bound; must terminate and strip leftovers.
	tpl := ""
	for i := 0; i < 15; i++ {
		tpl += "{{#if v}}"
	}
	tpl += "core"
	for i := 0; i < 15; i++ {
		tpl += "{{/if}}"
	}

	got, _ := RenderTemplate(tpl, map[string]string{"v": "1"})
	if !strings.Contains(got, "core") {
		t.Errorf("core text lost: %q", got)
	}
	if strings.Contains(got, "{{") {
		t.Errorf("markers leaked after deep nesting: %q", got)
	}
}
