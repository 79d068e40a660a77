package embedding

import (
	"context"
	"fmt"

	"docchat/internal/rag/interfaces"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenaiEmbedder implements the EmbeddingModel interface using the Google
// GenAI SDK.
type GenaiEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

// NewGenaiEmbedder creates a new Gemini embedding client for the given model.
func NewGenaiEmbedder(ctx context.Context, apiKey, modelName string) (*GenaiEmbedder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenaiEmbedder{
		client: client,
		model:  client.EmbeddingModel(modelName),
	}, nil
}

// Embed generates embeddings for a batch of texts in a single request.
func (e *GenaiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := e.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := e.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

// Close releases the underlying client.
func (e *GenaiEmbedder) Close() error {
	return e.client.Close()
}

// compile-time check to ensure GenaiEmbedder implements the EmbeddingModel interface
var _ interfaces.EmbeddingModel = (*GenaiEmbedder)(nil)
