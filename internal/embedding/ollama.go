package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"docchat/internal/rag/interfaces"

	"github.com/ollama/ollama/api"
)

// OllamaEmbedder implements the EmbeddingModel interface against a local
// Ollama server.
type OllamaEmbedder struct {
	client *api.Client
	model  string
}

// NewOllamaEmbedder creates a new Ollama embedding client.
func NewOllamaEmbedder(serverURL, model string) (*OllamaEmbedder, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	client := api.NewClient(parsed, &http.Client{Timeout: 120 * time.Second})
	return &OllamaEmbedder{client: client, model: model}, nil
}

// Embed generates embeddings for a batch of texts in a single request.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embedding failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// compile-time check to ensure OllamaEmbedder implements the EmbeddingModel interface
var _ interfaces.EmbeddingModel = (*OllamaEmbedder)(nil)
