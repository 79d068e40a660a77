package pipeline

import (
	"context"
	"fmt"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"
)

// IndexingPipeline orchestrates the process of loading, splitting, embedding
// and storing a document.
type IndexingPipeline struct {
	splitter    interfaces.Splitter
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	log         *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline.
func NewIndexingPipeline(
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	log *logger.Logger,
) *IndexingPipeline {
	return &IndexingPipeline{
		splitter:    splitter,
		embedder:    embedder,
		vectorStore: vectorStore,
		log:         log,
	}
}

// Run splits the loaded document into chunks, embeds them and writes them to
// the vector store. It returns the number of chunks indexed.
func (p *IndexingPipeline) Run(ctx context.Context, doc *schema.Document) (int, error) {
	p.log.Info(fmt.Sprintf("Starting indexing for document: %s", doc.ID))

	chunks, err := p.splitter.Split(ctx, doc)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to split document: %v", err))
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	p.log.Info(fmt.Sprintf("Split into %d chunks", len(chunks)))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to embed chunks: %v", err))
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}
	for i, chunk := range chunks {
		chunk.Embedding = embeddings[i]
	}

	if err := p.vectorStore.Add(ctx, chunks); err != nil {
		p.log.Error(fmt.Sprintf("Failed to add chunks to VectorStore: %v", err))
		return 0, err
	}

	p.log.Info(fmt.Sprintf("Successfully indexed %d chunks for document: %s", len(chunks), doc.ID))
	return len(chunks), nil
}
