package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"docchat/internal/config"
	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"
)

// ChromaStore is a minimal REST client to a ChromaDB server implementing the
// VectorStore interface. The collection is created on first use with cosine
// similarity.
type ChromaStore struct {
	url          string
	collectionID string
	client       *http.Client
	log          *logger.Logger
}

// chromaCollection is the subset of the collection resource we care about.
type chromaCollection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewChromaStore connects to the server and resolves (or creates) the
// collection named in the config.
func NewChromaStore(cfg *config.ChromaConfig, log *logger.Logger) (*ChromaStore, error) {
	s := &ChromaStore{
		url:    cfg.URL,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}

	var coll chromaCollection
	body := map[string]any{
		"name":          cfg.Collection,
		"get_or_create": true,
		"metadata":      map[string]any{"hnsw:space": "cosine"},
	}
	if err := s.postJSON(context.Background(), "/api/v1/collections", body, &coll); err != nil {
		return nil, fmt.Errorf("failed to get or create chroma collection '%s': %w", cfg.Collection, err)
	}
	s.collectionID = coll.ID

	log.Info(fmt.Sprintf("Connected to ChromaDB collection '%s' (%s)", cfg.Collection, coll.ID))
	return s, nil
}

// Add inserts chunks with their embeddings, texts and metadata.
func (s *ChromaStore) Add(ctx context.Context, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	embeddings := make([][]float32, len(docs))
	metadatas := make([]map[string]interface{}, len(docs))
	documents := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		embeddings[i] = doc.Embedding
		metadatas[i] = doc.Metadata
		documents[i] = doc.Text
	}

	body := map[string]any{
		"ids":        ids,
		"embeddings": embeddings,
		"metadatas":  metadatas,
		"documents":  documents,
	}
	path := fmt.Sprintf("/api/v1/collections/%s/add", s.collectionID)
	if err := s.postJSON(ctx, path, body, nil); err != nil {
		return fmt.Errorf("failed to add documents to chroma: %w", err)
	}
	return nil
}

// Query performs a nearest-neighbor search and returns the matched chunks
// with their text, metadata and similarity score.
func (s *ChromaStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	body := map[string]any{
		"query_embeddings": [][]float32{embedding},
		"n_results":        topK,
		"include":          []string{"documents", "metadatas", "distances"},
	}

	var resp struct {
		IDs       [][]string                 `json:"ids"`
		Documents [][]string                 `json:"documents"`
		Metadatas [][]map[string]interface{} `json:"metadatas"`
		Distances [][]float64                `json:"distances"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/query", s.collectionID)
	if err := s.postJSON(ctx, path, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to query chroma: %w", err)
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	results := make([]*schema.Document, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		doc := &schema.Document{ID: id, Metadata: map[string]interface{}{}}
		if i < len(resp.Documents[0]) {
			doc.Text = resp.Documents[0][i]
		}
		if i < len(resp.Metadatas[0]) && resp.Metadatas[0][i] != nil {
			doc.Metadata = resp.Metadatas[0][i]
		}
		if i < len(resp.Distances[0]) {
			// Chroma returns a cosine distance; flip it into a similarity.
			doc.Metadata[schema.MetadataKeyScore] = 1 - resp.Distances[0][i]
		}
		results = append(results, doc)
	}
	return results, nil
}

// List returns the ID and metadata of every stored chunk.
func (s *ChromaStore) List(ctx context.Context) ([]*schema.Document, error) {
	body := map[string]any{
		"include": []string{"metadatas"},
	}

	var resp struct {
		IDs       []string                 `json:"ids"`
		Metadatas []map[string]interface{} `json:"metadatas"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/get", s.collectionID)
	if err := s.postJSON(ctx, path, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to list chroma documents: %w", err)
	}

	results := make([]*schema.Document, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		doc := &schema.Document{ID: id, Metadata: map[string]interface{}{}}
		if i < len(resp.Metadatas) && resp.Metadatas[i] != nil {
			doc.Metadata = resp.Metadatas[i]
		}
		results = append(results, doc)
	}
	return results, nil
}

// Delete removes chunks by ID.
func (s *ChromaStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	body := map[string]any{"ids": ids}
	path := fmt.Sprintf("/api/v1/collections/%s/delete", s.collectionID)
	if err := s.postJSON(ctx, path, body, nil); err != nil {
		return fmt.Errorf("failed to delete chroma documents: %w", err)
	}
	return nil
}

// postJSON posts a JSON body and optionally decodes a JSON response.
func (s *ChromaStore) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("chroma POST %s failed: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// compile-time check to ensure ChromaStore implements the VectorStore interface
var _ interfaces.VectorStore = (*ChromaStore)(nil)
