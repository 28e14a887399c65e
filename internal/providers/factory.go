package providers

import (
	"fmt"
	"os"

	"github.com/ChamsBouzaiene/sweguard/internal/condense"
)

// NewLLMClientFromEnv creates a summarisation client from environment
// variables. LLM_PROVIDER selects the backend; each backend reads its own
// key and model variables.
func NewLLMClientFromEnv(maxTokens int) (condense.LLMClient, string, error) {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "anthropic"
	}

	switch provider {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		modelName := os.Getenv("ANTHROPIC_MODEL")
		if modelName == "" {
			modelName = "claude-3-5-sonnet-20241022"
		}
		client, err := NewAnthropicClient(apiKey, modelName, maxTokens)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Anthropic client: %w", err)
		}
		return client, modelName, nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY not set")
		}
		modelName := os.Getenv("OPENAI_MODEL")
		if modelName == "" {
			modelName = "gpt-4o-mini"
		}
		baseURL := os.Getenv("OPENAI_BASE_URL")
		client, err := NewOpenAIClient(apiKey, modelName, baseURL, maxTokens)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, modelName, nil

	default:
		return nil, "", fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
