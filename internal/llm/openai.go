package llm

import (
	"context"
	"fmt"

	"docchat/internal/rag/interfaces"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAILLM implements the LLM interface using the OpenAI chat completion API.
// A custom base URL allows pointing it at compatible servers.
type OpenAILLM struct {
	client *openai.Client
	model  string
}

// NewOpenAILLM creates a new OpenAI client. baseURL may be empty for the
// public endpoint.
func NewOpenAILLM(apiKey, baseURL, model string) *OpenAILLM {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAILLM{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate sends the prompt as a single user message and returns the reply.
func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// compile-time check to ensure OpenAILLM implements the LLM interface
var _ interfaces.LLM = (*OpenAILLM)(nil)
