package providers

import (
	"testing"

	"github.com/ChamsBouzaiene/sweguard/internal/condense"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		min  int
		max  int
	}{
		{name: "empty", in: "", min: 0, max: 0},
		{name: "single char", in: "a", min: 1, max: 1},
		{name: "sentence", in: "the quick brown fox jumps over the lazy dog", min: 8, max: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTokens(tt.in)
			if got < tt.min || got > tt.max {
				t.Errorf("EstimateTokens(%q) = %d, want in [%d, %d]", tt.in, got, tt.min, tt.max)
			}
		})
	}
}

func TestEstimateTokensMonotone(t *testing.T) {
	prev := 0
	text := ""
	for n := 0; n < 10; n++ {
		text += "some more source code here\n"
		got := EstimateTokens(text)
		if got < prev {
			t.Fatalf("estimate decreased as text grew: %d after %d", got, prev)
		}
		prev = got
	}
}

func TestEstimateBlocks(t *testing.T) {
	blocks := []condense.ContentBlock{
		{Type: condense.BlockText, Text: "hello there"},
		{Type: condense.BlockToolUse, Name: "read_file", Input: map[string]string{"path": "/workspace/repo/a.py"}},
		{Type: condense.BlockToolResult, Content: "file contents go here"},
	}
	got := estimateBlocks(blocks)
	if got <= 0 {
		t.Fatalf("estimateBlocks = %d, want positive", got)
	}
	if estimateBlocks(blocks[:1]) >= got {
		t.Error("adding blocks must increase the estimate")
	}
}
