package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docchat/internal/rag/interfaces"

	"github.com/ollama/ollama/api"
)

// OllamaLLM implements the LLM interface against a local Ollama server.
type OllamaLLM struct {
	client *api.Client
	model  string
}

// NewOllamaLLM creates a new Ollama client for the given server URL and model.
func NewOllamaLLM(serverURL, model string) (*OllamaLLM, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	client := api.NewClient(parsed, &http.Client{Timeout: 120 * time.Second})
	return &OllamaLLM{client: client, model: model}, nil
}

// Generate runs a non-streaming completion and returns the full response.
func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}
	return sb.String(), nil
}

// compile-time check to ensure OllamaLLM implements the LLM interface
var _ interfaces.LLM = (*OllamaLLM)(nil)
