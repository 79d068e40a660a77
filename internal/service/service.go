package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"docchat/internal/events"
	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/pipeline"
	"docchat/internal/rag/schema"
	"docchat/internal/registry"
	"docchat/internal/storage"
	"docchat/pkg/logger"

	"github.com/google/uuid"
)

// Answers returned without consulting the model.
const (
	noDocumentsAnswer = "I don't have any documents to reference. Please upload a PDF document first."
	noAPIKeyAnswer    = "Error: Gemini API is not configured. Please set GEMINI_API_KEY environment variable."
)

// Deps bundles the components the service is assembled from. LLM and
// Embedder may be nil when no API key is configured; Events may be nil when
// eventing is disabled.
type Deps struct {
	Loader   interfaces.Loader
	Splitter interfaces.Splitter
	Embedder interfaces.EmbeddingModel
	LLM      interfaces.LLM
	Store    interfaces.VectorStore
	Files    storage.FileStore
	Registry registry.Registry
	Events   *events.Publisher
	TopK     int
	Log      *logger.Logger
}

// DocumentService implements the document Q&A workflow: uploads are
// extracted, chunked, embedded and indexed; questions are answered from the
// most similar chunks.
type DocumentService struct {
	loader    interfaces.Loader
	embedder  interfaces.EmbeddingModel
	llm       interfaces.LLM
	store     interfaces.VectorStore
	files     storage.FileStore
	registry  registry.Registry
	events    *events.Publisher
	indexing  *pipeline.IndexingPipeline
	retrieval *pipeline.RetrievalPipeline
	qa        *pipeline.QAPipeline
	topK      int
	log       *logger.Logger
}

// NewDocumentService wires the pipelines from the given dependencies.
func NewDocumentService(deps Deps) *DocumentService {
	s := &DocumentService{
		loader:   deps.Loader,
		embedder: deps.Embedder,
		llm:      deps.LLM,
		store:    deps.Store,
		files:    deps.Files,
		registry: deps.Registry,
		events:   deps.Events,
		topK:     deps.TopK,
		log:      deps.Log,
	}
	s.indexing = pipeline.NewIndexingPipeline(deps.Splitter, deps.Embedder, deps.Store, deps.Log)
	s.retrieval = pipeline.NewRetrievalPipeline(deps.Embedder, deps.Store, deps.Log)
	if deps.LLM != nil {
		s.qa = pipeline.NewQAPipeline(deps.LLM, deps.Log)
	}
	return s
}

// UploadResult describes a successfully indexed document.
type UploadResult struct {
	Filename   string
	DocID      string
	Chunks     int
	TextLength int
}

// ChatResult holds the generated answer and the filenames it drew from.
type ChatResult struct {
	Answer  string
	Sources []string
}

// DocumentInfo identifies one indexed document.
type DocumentInfo struct {
	ID       string
	Filename string
}

// DeleteResult describes a completed document removal.
type DeleteResult struct {
	Filename      string
	ChunksDeleted int
}

// HealthStatus reports which optional components are configured.
type HealthStatus struct {
	GeminiConfigured      bool
	VectorStoreConfigured bool
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips any path components and replaces characters that
// are unsafe in a filesystem name.
func SanitizeFilename(name string) string {
	// Strip both unix and windows style directory prefixes.
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._-")
}

// Upload stores the file, extracts its text and indexes it. The returned
// errors wrap the package sentinels so the API layer can map them to
// status codes.
func (s *DocumentService) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return nil, ErrNoFile
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return nil, ErrInvalidFile
	}
	if s.store == nil || s.embedder == nil {
		return nil, fmt.Errorf("%w: vector store or embedding model missing", ErrNotConfigured)
	}

	// Claim the filename first so two concurrent uploads of the same name
	// cannot both pass the duplicate scan below.
	if err := s.registry.Reserve(ctx, name); err != nil {
		if errors.Is(err, registry.ErrAlreadyReserved) {
			return nil, ErrDuplicateFilename
		}
		return nil, err
	}

	exists, err := s.filenameExists(ctx, name)
	if err != nil {
		s.registry.Release(ctx, name)
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateFilename
	}

	path, err := s.files.Save(ctx, name, r)
	if err != nil {
		s.registry.Release(ctx, name)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	doc, err := s.loader.Load(ctx, path)
	if err != nil {
		s.cleanupUpload(ctx, name)
		return nil, err
	}
	if strings.TrimSpace(doc.Text) == "" {
		s.cleanupUpload(ctx, name)
		return nil, ErrEmptyExtraction
	}

	docID := uuid.New().String()
	doc.ID = docID
	if doc.Metadata == nil {
		doc.Metadata = map[string]interface{}{}
	}
	doc.Metadata[schema.MetadataKeyFileName] = name

	chunks, err := s.indexing.Run(ctx, doc)
	if err != nil {
		s.cleanupUpload(ctx, name)
		return nil, err
	}

	s.log.Info(fmt.Sprintf("Indexed '%s' as %s (%d chunks)", name, docID, chunks))
	s.events.Publish(ctx, &events.DocumentEvent{
		Type:     events.TypeDocumentIndexed,
		DocID:    docID,
		Filename: name,
		Chunks:   chunks,
	})

	return &UploadResult{
		Filename:   name,
		DocID:      docID,
		Chunks:     chunks,
		TextLength: len([]rune(doc.Text)),
	}, nil
}

// Chat answers a question from the indexed documents. Generation problems
// are reported inside the answer text rather than as errors, so the client
// always receives a well-formed response once retrieval succeeded.
func (s *DocumentService) Chat(ctx context.Context, question string) (*ChatResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: vector store missing", ErrNotConfigured)
	}

	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return &ChatResult{Answer: noDocumentsAnswer, Sources: []string{}}, nil
	}

	if s.embedder == nil {
		return nil, fmt.Errorf("%w: embedding model missing", ErrNotConfigured)
	}
	docs, err := s.retrieval.Run(ctx, question, s.topK)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &ChatResult{Answer: noDocumentsAnswer, Sources: []string{}}, nil
	}

	sources := collectSources(docs)

	if s.qa == nil {
		return &ChatResult{Answer: noAPIKeyAnswer, Sources: sources}, nil
	}

	answer, err := s.qa.Run(ctx, question, docs)
	if err != nil {
		return &ChatResult{
			Answer:  fmt.Sprintf("Error generating response: %v", err),
			Sources: sources,
		}, nil
	}
	return &ChatResult{Answer: answer, Sources: sources}, nil
}

// ListDocuments returns each indexed document once, in the order its chunks
// were first seen.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: vector store missing", ErrNotConfigured)
	}

	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	docs := make([]DocumentInfo, 0)
	for _, chunk := range stored {
		docID := chunk.DocID()
		if docID == "" || seen[docID] {
			continue
		}
		seen[docID] = true
		docs = append(docs, DocumentInfo{ID: docID, Filename: chunk.FileName()})
	}
	return docs, nil
}

// DeleteDocument removes every chunk of the document, its stored file and
// its filename reservation.
func (s *DocumentService) DeleteDocument(ctx context.Context, docID string) (*DeleteResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: vector store missing", ErrNotConfigured)
	}

	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	var filename string
	for _, chunk := range stored {
		if chunk.DocID() != docID {
			continue
		}
		ids = append(ids, chunk.ID)
		if filename == "" {
			filename = chunk.FileName()
		}
	}
	if len(ids) == 0 {
		return nil, ErrDocumentNotFound
	}

	if err := s.store.Delete(ctx, ids); err != nil {
		return nil, err
	}

	if filename != "" {
		if err := s.files.Remove(ctx, filename); err != nil {
			// The chunks are already gone; a leftover file is not fatal.
			s.log.Warn(fmt.Sprintf("Failed to remove stored file '%s': %v", filename, err))
		}
		if err := s.registry.Release(ctx, filename); err != nil {
			s.log.Warn(fmt.Sprintf("Failed to release filename '%s': %v", filename, err))
		}
	}

	s.log.Info(fmt.Sprintf("Deleted document %s ('%s', %d chunks)", docID, filename, len(ids)))
	s.events.Publish(ctx, &events.DocumentEvent{
		Type:     events.TypeDocumentDeleted,
		DocID:    docID,
		Filename: filename,
		Chunks:   len(ids),
	})

	return &DeleteResult{Filename: filename, ChunksDeleted: len(ids)}, nil
}

// Health reports which optional components are configured.
func (s *DocumentService) Health() HealthStatus {
	return HealthStatus{
		GeminiConfigured:      s.llm != nil,
		VectorStoreConfigured: s.store != nil,
	}
}

// filenameExists scans the store for chunks carrying the filename.
func (s *DocumentService) filenameExists(ctx context.Context, name string) (bool, error) {
	stored, err := s.store.List(ctx)
	if err != nil {
		return false, err
	}
	for _, chunk := range stored {
		if chunk.FileName() == name {
			return true, nil
		}
	}
	return false, nil
}

// cleanupUpload undoes the file write and reservation of a failed upload.
func (s *DocumentService) cleanupUpload(ctx context.Context, name string) {
	if err := s.files.Remove(ctx, name); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to clean up file '%s': %v", name, err))
	}
	if err := s.registry.Release(ctx, name); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to release filename '%s': %v", name, err))
	}
}

// collectSources returns the distinct source filenames in first-seen order.
func collectSources(docs []*schema.Document) []string {
	seen := make(map[string]bool)
	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		name := doc.FileName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		sources = append(sources, name)
	}
	return sources
}
