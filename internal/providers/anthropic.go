package providers

import (
	"context"
	"fmt"

	"github.com/ChamsBouzaiene/sweguard/internal/condense"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// AnthropicClient implements condense.LLMClient against the Anthropic SDK.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicClient creates a summarisation client for the given model.
func NewAnthropicClient(apiKey, modelName string, maxTokens int) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is empty")
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(apiKey),
		model:     modelName,
		maxTokens: maxTokens,
	}, nil
}

// CountTokens estimates the token count of a block list. The estimate is
// deliberately local: counting is on the hot path before every LLM call and
// must not cost a network round trip.
func (c *AnthropicClient) CountTokens(_ context.Context, blocks []condense.ContentBlock) (int, error) {
	return estimateBlocks(blocks), nil
}

// CreateMessage streams one summarisation call.
func (c *AnthropicClient) CreateMessage(ctx context.Context, systemPrompt string, messages []condense.Message) (<-chan condense.StreamEvent, error) {
	anthropicMsgs, err := toAnthropicMessages(messages)
	if err != nil {
		return nil, err
	}

	eventCh := make(chan condense.StreamEvent, 16)

	req := anthropic.MessagesStreamRequest{
		MessagesRequest: anthropic.MessagesRequest{
			Model:     anthropic.Model(c.model),
			Messages:  anthropicMsgs,
			MaxTokens: c.maxTokens,
		},
	}
	if systemPrompt != "" {
		req.MultiSystem = []anthropic.MessageSystemPart{{Type: "text", Text: systemPrompt}}
	}

	req.OnContentBlockDelta = func(delta anthropic.MessagesEventContentBlockDeltaData) {
		if delta.Delta.Type == "text_delta" && delta.Delta.Text != nil {
			select {
			case eventCh <- condense.StreamEvent{Text: *delta.Delta.Text}:
			case <-ctx.Done():
			}
		}
	}

	go func() {
		defer close(eventCh)
		resp, err := c.client.CreateMessagesStream(ctx, req)
		if err != nil {
			return
		}
		if resp.Usage.OutputTokens > 0 {
			select {
			case eventCh <- condense.StreamEvent{Usage: &condense.Usage{
				OutputTokens: resp.Usage.OutputTokens,
			}}:
			case <-ctx.Done():
			}
		}
	}()

	return eventCh, nil
}

// toAnthropicMessages converts transcript messages into SDK messages. Tool
// blocks are rendered as text: the summariser reads history, it does not
// continue the tool conversation.
func toAnthropicMessages(messages []condense.Message) ([]anthropic.Message, error) {
	out := make([]anthropic.Message, 0, len(messages))
	for _, m := range messages {
		text := flattenMessage(m)
		if text == "" {
			continue
		}
		role := anthropic.RoleUser
		if m.Role == condense.RoleAssistant {
			role = anthropic.RoleAssistant
		}
		out = append(out, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(text)},
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no content to send")
	}
	return out, nil
}

// flattenMessage renders a message's blocks as plain text.
func flattenMessage(m condense.Message) string {
	var text string
	for _, b := range m.Content {
		switch b.Type {
		case condense.BlockText:
			text += b.Text
		case condense.BlockToolUse:
			text += fmt.Sprintf("[tool_use %s]", b.Name)
		case condense.BlockToolResult:
			text += b.Content
		}
	}
	return text
}
