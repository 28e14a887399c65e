// Package providers adapts concrete LLM SDKs to the narrow client surface
// the context compressor consumes: token counting and one streamed message
// call.
package providers

import (
	"strings"

	"github.com/ChamsBouzaiene/sweguard/internal/condense"
)

// EstimateTokens is the shared counting heuristic: roughly four characters
// per token for English and code, plus one token per six whitespace
// characters, so whitespace-heavy text counts somewhat higher.
// Providers that cannot count precisely fall back to this; the compressor
// only needs counts that are stable and monotone in text size.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	charCount := len([]rune(text))
	whitespace := strings.Count(text, " ") + strings.Count(text, "\n") + strings.Count(text, "\t")
	estimated := (charCount / 4) + (whitespace / 6)
	if estimated < 1 {
		return 1
	}
	return estimated
}

// estimateBlocks sums the estimate over a block list, with a small per-block
// overhead for the structural wrapping the API adds.
func estimateBlocks(blocks []condense.ContentBlock) int {
	const blockOverhead = 5
	total := 0
	for _, b := range blocks {
		total += EstimateTokens(b.Text)
		total += EstimateTokens(b.Content)
		for k, v := range b.Input {
			total += EstimateTokens(k) + EstimateTokens(v)
		}
		total += blockOverhead
	}
	return total
}
