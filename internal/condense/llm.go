package condense

import "context"

// Usage is the token accounting a provider reports at end of stream.
type Usage struct {
	OutputTokens int
	TotalCost    float64
}

// StreamEvent is one element of a summarisation stream: a text chunk or a
// final usage report.
type StreamEvent struct {
	Text  string
	Usage *Usage
}

// LLMClient is the narrow surface the compressor needs from a provider:
// token counting and one streamed message call.
type LLMClient interface {
	CountTokens(ctx context.Context, blocks []ContentBlock) (int, error)
	CreateMessage(ctx context.Context, systemPrompt string, messages []Message) (<-chan StreamEvent, error)
}

// collectStream drains a summarisation stream into text and usage.
func collectStream(ctx context.Context, events <-chan StreamEvent) (string, Usage, error) {
	var text string
	var usage Usage
	for {
		select {
		case <-ctx.Done():
			return text, usage, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return text, usage, nil
			}
			text += ev.Text
			if ev.Usage != nil {
				usage = *ev.Usage
			}
		}
	}
}
