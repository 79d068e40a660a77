package pipeline

import (
	"context"
	"fmt"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"
)

// RetrievalPipeline orchestrates the process of retrieving relevant chunks
// for a given query.
type RetrievalPipeline struct {
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	log         *logger.Logger
}

// NewRetrievalPipeline creates a new RetrievalPipeline.
func NewRetrievalPipeline(
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	log *logger.Logger,
) *RetrievalPipeline {
	return &RetrievalPipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		log:         log,
	}
}

// Run embeds the query and returns the topK most similar chunks.
func (p *RetrievalPipeline) Run(ctx context.Context, query string, topK int) ([]*schema.Document, error) {
	p.log.Info(fmt.Sprintf("Starting retrieval for query: '%s'", query))

	queryEmbeddings, err := p.embedder.Embed(ctx, []string{query})
	if err != nil || len(queryEmbeddings) == 0 {
		p.log.Error(fmt.Sprintf("Failed to embed query: %v", err))
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	retrievedDocs, err := p.vectorStore.Query(ctx, queryEmbeddings[0], topK)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to query vector store: %v", err))
		return nil, err
	}
	if len(retrievedDocs) == 0 {
		p.log.Info("No chunks found in vector store for the given query.")
		return []*schema.Document{}, nil
	}

	p.log.Info(fmt.Sprintf("Retrieved %d chunks from vector store", len(retrievedDocs)))
	return retrievedDocs, nil
}
