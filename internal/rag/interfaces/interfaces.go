package interfaces

import (
	"context"
	"image"

	"docchat/internal/rag/schema"
)

// Loader is the interface for loading data from a source file and converting
// it into a single Document holding the full extracted text.
type Loader interface {
	Load(ctx context.Context, path string) (*schema.Document, error)
}

// Splitter is the interface for splitting a Document into smaller chunks.
type Splitter interface {
	Split(ctx context.Context, doc *schema.Document) ([]*schema.Document, error)
}

// VectorStore is the interface for storing and querying document chunks.
type VectorStore interface {
	// Add inserts chunks; each must carry an ID, a text, an embedding and
	// its metadata.
	Add(ctx context.Context, docs []*schema.Document) error
	// Query returns the topK nearest chunks by cosine similarity.
	Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error)
	// List returns every stored chunk's ID and metadata (no embeddings).
	List(ctx context.Context) ([]*schema.Document, error)
	// Delete removes chunks by ID.
	Delete(ctx context.Context, ids []string) error
}

// EmbeddingModel is the interface for a text embedding model.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM is the interface for a large language model that can generate text.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OCREngine recognizes text on a rendered page image. It is the fallback
// used when a PDF has no usable text layer.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}
