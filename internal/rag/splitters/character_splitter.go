package splitters

import (
	"context"
	"fmt"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
)

// CharacterSplitter implements the Splitter interface by cutting text into
// fixed-size overlapping character windows. Window i covers the characters
// [i*stride, i*stride+size) where stride = size - overlap; the final window
// may be shorter than size. No snapping to word or sentence boundaries.
type CharacterSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewCharacterSplitter creates a new CharacterSplitter. The overlap must be
// smaller than the size or the window start would never advance.
func NewCharacterSplitter(chunkSize, chunkOverlap int) (*CharacterSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}
	return &CharacterSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	}, nil
}

// Split cuts a document into chunk documents. Chunks inherit the parent's
// metadata and additionally carry doc_id and chunk_index; their IDs follow
// the "{doc_id}_chunk_{i}" convention. Characters are counted in runes so
// multi-byte text windows line up with what a reader would count.
func (s *CharacterSplitter) Split(ctx context.Context, doc *schema.Document) ([]*schema.Document, error) {
	runes := []rune(doc.Text)
	stride := s.ChunkSize - s.ChunkOverlap

	var chunks []*schema.Document
	for start, i := 0, 0; start < len(runes); start, i = start+stride, i+1 {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		md := s.copyMetadata(doc.Metadata)
		md[schema.MetadataKeyDocID] = doc.ID
		md[schema.MetadataKeyChunkIndex] = i

		chunks = append(chunks, &schema.Document{
			ID:       fmt.Sprintf("%s_chunk_%d", doc.ID, i),
			Text:     string(runes[start:end]),
			Metadata: md,
		})
	}

	return chunks, nil
}

// copyMetadata deep-copies the metadata map so chunks do not share it.
func (s *CharacterSplitter) copyMetadata(md map[string]interface{}) map[string]interface{} {
	newMd := make(map[string]interface{}, len(md)+2)
	for k, v := range md {
		newMd[k] = v
	}
	return newMd
}

// compile-time check to ensure CharacterSplitter implements the Splitter interface
var _ interfaces.Splitter = (*CharacterSplitter)(nil)
