package vectorstore

import (
	"context"
	"fmt"

	"docchat/internal/database/milvus"
	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Column names of the chunk collection.
const (
	FieldID         = "id"
	FieldText       = "text"
	FieldFileName   = "filename"
	FieldDocID      = "doc_id"
	FieldChunkIndex = "chunk_index"
	FieldEmbedding  = "embedding"
)

// MilvusStore adapts the shared Milvus client to the VectorStore interface.
// Chunk text and metadata are stored in scalar columns so they can be
// returned alongside search hits.
type MilvusStore struct {
	log        *logger.Logger
	client     client.Client
	collection string
}

// NewMilvusStore wraps the project's Milvus client, creating the chunk
// collection when it does not exist yet.
func NewMilvusStore(ctx context.Context, milvusClient *milvus.MilvusClient, log *logger.Logger) (*MilvusStore, error) {
	if milvusClient == nil || milvusClient.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	if err := milvusClient.EnsureCollection(ctx); err != nil {
		return nil, err
	}
	return &MilvusStore{
		log:        log,
		client:     milvusClient.Client,
		collection: milvusClient.Config.Collection,
	}, nil
}

// Add inserts chunks into the collection, one column per field.
func (s *MilvusStore) Add(ctx context.Context, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	fileNames := make([]string, len(docs))
	docIDs := make([]string, len(docs))
	chunkIndexes := make([]int64, len(docs))
	embeddings := make([][]float32, len(docs))

	dim := 0
	for i, doc := range docs {
		ids[i] = doc.ID
		texts[i] = doc.Text
		embeddings[i] = doc.Embedding
		if len(doc.Embedding) > dim {
			dim = len(doc.Embedding)
		}
		if name, ok := doc.Metadata[schema.MetadataKeyFileName].(string); ok {
			fileNames[i] = name
		}
		if id, ok := doc.Metadata[schema.MetadataKeyDocID].(string); ok {
			docIDs[i] = id
		}
		if idx, ok := doc.Metadata[schema.MetadataKeyChunkIndex].(int); ok {
			chunkIndexes[i] = int64(idx)
		}
	}

	s.log.Info(fmt.Sprintf("Inserting %d chunks into Milvus collection: %s", len(docs), s.collection))
	_, err := s.client.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnVarChar(FieldText, texts),
		entity.NewColumnVarChar(FieldFileName, fileNames),
		entity.NewColumnVarChar(FieldDocID, docIDs),
		entity.NewColumnInt64(FieldChunkIndex, chunkIndexes),
		entity.NewColumnFloatVector(FieldEmbedding, dim, embeddings),
	)
	if err != nil {
		return fmt.Errorf("failed to insert data into Milvus: %w", err)
	}
	return nil
}

// Query performs a cosine similarity search and returns the matched chunks.
func (s *MilvusStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	searchParams, _ := entity.NewIndexHNSWSearchParam(64)
	outputFields := []string{FieldID, FieldText, FieldFileName, FieldDocID, FieldChunkIndex}

	searchResults, err := s.client.Search(
		ctx, s.collection, []string{}, "", outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		FieldEmbedding, entity.COSINE, topK, searchParams,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var results []*schema.Document
	for _, res := range searchResults {
		idData, textData := varCharColumn(res.Fields, FieldID), varCharColumn(res.Fields, FieldText)
		nameData, docIDData := varCharColumn(res.Fields, FieldFileName), varCharColumn(res.Fields, FieldDocID)
		if idData == nil {
			s.log.Warn("Search result is missing the ID column, skipping.")
			continue
		}

		for i := 0; i < res.ResultCount; i++ {
			doc := &schema.Document{
				ID:       idData[i],
				Metadata: map[string]interface{}{schema.MetadataKeyScore: res.Scores[i]},
			}
			if textData != nil {
				doc.Text = textData[i]
			}
			if nameData != nil {
				doc.Metadata[schema.MetadataKeyFileName] = nameData[i]
			}
			if docIDData != nil {
				doc.Metadata[schema.MetadataKeyDocID] = docIDData[i]
			}
			results = append(results, doc)
		}
	}
	return results, nil
}

// List returns the ID and metadata of every stored chunk.
func (s *MilvusStore) List(ctx context.Context) ([]*schema.Document, error) {
	cols, err := s.client.Query(ctx, s.collection, []string{}, `id != ""`,
		[]string{FieldID, FieldFileName, FieldDocID})
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks from Milvus: %w", err)
	}

	idData, nameData, docIDData := varCharColumn(cols, FieldID), varCharColumn(cols, FieldFileName), varCharColumn(cols, FieldDocID)
	if idData == nil {
		return nil, nil
	}

	results := make([]*schema.Document, 0, len(idData))
	for i, id := range idData {
		doc := &schema.Document{ID: id, Metadata: map[string]interface{}{}}
		if nameData != nil {
			doc.Metadata[schema.MetadataKeyFileName] = nameData[i]
		}
		if docIDData != nil {
			doc.Metadata[schema.MetadataKeyDocID] = docIDData[i]
		}
		results = append(results, doc)
	}
	return results, nil
}

// Delete removes chunks by primary key.
func (s *MilvusStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.client.DeleteByPks(ctx, s.collection, "", entity.NewColumnVarChar(FieldID, ids)); err != nil {
		return fmt.Errorf("failed to delete chunks from Milvus: %w", err)
	}
	return nil
}

// varCharColumn extracts the data of a VarChar column by name, nil when absent.
func varCharColumn(cols []entity.Column, name string) []string {
	for _, col := range cols {
		if col.Name() == name {
			if vc, ok := col.(*entity.ColumnVarChar); ok {
				return vc.Data()
			}
		}
	}
	return nil
}

// compile-time check to ensure MilvusStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MilvusStore)(nil)
