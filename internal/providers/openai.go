package providers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ChamsBouzaiene/sweguard/internal/condense"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIClient implements condense.LLMClient against the OpenAI-compatible
// chat completions API. Kimi and other compatible endpoints work through the
// baseURL override.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient creates a summarisation client. baseURL may be empty for
// the default endpoint.
func NewOpenAIClient(apiKey, modelName, baseURL string, maxTokens int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(config),
		model:     modelName,
		maxTokens: maxTokens,
	}, nil
}

// CountTokens estimates the token count of a block list.
func (c *OpenAIClient) CountTokens(_ context.Context, blocks []condense.ContentBlock) (int, error) {
	return estimateBlocks(blocks), nil
}

// CreateMessage streams one summarisation call through the chat completions
// streaming API.
func (c *OpenAIClient) CreateMessage(ctx context.Context, systemPrompt string, messages []condense.Message) (<-chan condense.StreamEvent, error) {
	openaiMsgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		openaiMsgs = append(openaiMsgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range messages {
		text := flattenMessage(m)
		if text == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		if m.Role == condense.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		openaiMsgs = append(openaiMsgs, openai.ChatCompletionMessage{Role: role, Content: text})
	}
	if len(openaiMsgs) == 0 {
		return nil, fmt.Errorf("no content to send")
	}

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  openaiMsgs,
		MaxTokens: c.maxTokens,
		Stream:    true,
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to open completion stream: %w", err)
	}

	eventCh := make(chan condense.StreamEvent, 16)
	go func() {
		defer close(eventCh)
		defer stream.Close()

		outputTokens := 0
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			outputTokens += EstimateTokens(delta)
			select {
			case eventCh <- condense.StreamEvent{Text: delta}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case eventCh <- condense.StreamEvent{Usage: &condense.Usage{OutputTokens: outputTokens}}:
		case <-ctx.Done():
		}
	}()

	return eventCh, nil
}
