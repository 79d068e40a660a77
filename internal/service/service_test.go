package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docchat/internal/rag/schema"
	"docchat/internal/rag/splitters"
	"docchat/internal/registry"
	"docchat/internal/storage"
	"docchat/pkg/logger"
)

// memStore is an in-memory vector store used across the service tests.
type memStore struct {
	docs []*schema.Document
}

func (m *memStore) Add(ctx context.Context, docs []*schema.Document) error {
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *memStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	if topK < len(m.docs) {
		return m.docs[:topK], nil
	}
	return m.docs, nil
}

func (m *memStore) List(ctx context.Context) ([]*schema.Document, error) {
	return m.docs, nil
}

func (m *memStore) Delete(ctx context.Context, ids []string) error {
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	var kept []*schema.Document
	for _, doc := range m.docs {
		if !remove[doc.ID] {
			kept = append(kept, doc)
		}
	}
	m.docs = kept
	return nil
}

// stubLoader returns a fixed text for any path.
type stubLoader struct {
	text string
	err  error
}

func (l *stubLoader) Load(ctx context.Context, path string) (*schema.Document, error) {
	if l.err != nil {
		return nil, l.err
	}
	return &schema.Document{Text: l.text, Metadata: map[string]interface{}{}}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type stubLLM struct {
	answer string
	err    error
}

func (l *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return l.answer, l.err
}

func newTestService(t *testing.T, deps Deps) *DocumentService {
	t.Helper()

	if deps.Loader == nil {
		deps.Loader = &stubLoader{text: strings.Repeat("document text ", 100)}
	}
	if deps.Splitter == nil {
		sp, err := splitters.NewCharacterSplitter(1000, 200)
		if err != nil {
			t.Fatalf("NewCharacterSplitter failed: %v", err)
		}
		deps.Splitter = sp
	}
	if deps.Embedder == nil {
		deps.Embedder = stubEmbedder{}
	}
	if deps.Store == nil {
		deps.Store = &memStore{}
	}
	if deps.Files == nil {
		files, err := storage.NewLocalStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStore failed: %v", err)
		}
		deps.Files = files
	}
	if deps.Registry == nil {
		deps.Registry = registry.NewMemoryRegistry()
	}
	if deps.TopK == 0 {
		deps.TopK = 5
	}
	if deps.Log == nil {
		deps.Log = logger.New("test")
	}
	return NewDocumentService(deps)
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd.pdf", "passwd.pdf"},
		{`C:\docs\report.pdf`, "report.pdf"},
		{"my report (final).pdf", "my_report_final_.pdf"},
		{"...", ""},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUploadIndexesDocument(t *testing.T) {
	store := &memStore{}
	text := strings.Repeat("x", 2400)
	s := newTestService(t, Deps{Store: store, Loader: &stubLoader{text: text}})

	res, err := s.Upload(context.Background(), "report.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.Filename != "report.pdf" {
		t.Errorf("Unexpected filename: %q", res.Filename)
	}
	if res.DocID == "" {
		t.Error("Expected a generated document ID")
	}
	if res.Chunks != 3 {
		t.Errorf("Expected 3 chunks, got %d", res.Chunks)
	}
	if res.TextLength != 2400 {
		t.Errorf("Expected text length 2400, got %d", res.TextLength)
	}
	if len(store.docs) != 3 {
		t.Fatalf("Expected 3 chunks in store, got %d", len(store.docs))
	}
	if store.docs[0].DocID() != res.DocID {
		t.Errorf("Stored chunks should carry the document ID")
	}
	if store.docs[0].FileName() != "report.pdf" {
		t.Errorf("Stored chunks should carry the filename")
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	s := newTestService(t, Deps{})
	if _, err := s.Upload(context.Background(), "notes.txt", strings.NewReader("x")); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("Expected ErrInvalidFile, got %v", err)
	}
}

func TestUploadRejectsDuplicateFilename(t *testing.T) {
	s := newTestService(t, Deps{})
	ctx := context.Background()

	if _, err := s.Upload(ctx, "report.pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("First upload failed: %v", err)
	}
	if _, err := s.Upload(ctx, "report.pdf", strings.NewReader("%PDF")); !errors.Is(err, ErrDuplicateFilename) {
		t.Fatalf("Expected ErrDuplicateFilename, got %v", err)
	}
}

func TestUploadDetectsPersistedDuplicate(t *testing.T) {
	// Chunks from an earlier process exist in the store, but the registry
	// is empty. The store scan must still reject the name.
	store := &memStore{docs: []*schema.Document{{
		ID: "old_chunk_0",
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName: "report.pdf",
			schema.MetadataKeyDocID:    "old",
		},
	}}}
	s := newTestService(t, Deps{Store: store})

	if _, err := s.Upload(context.Background(), "report.pdf", strings.NewReader("%PDF")); !errors.Is(err, ErrDuplicateFilename) {
		t.Fatalf("Expected ErrDuplicateFilename, got %v", err)
	}
}

func TestUploadEmptyExtraction(t *testing.T) {
	s := newTestService(t, Deps{Loader: &stubLoader{text: "   \n "}})
	ctx := context.Background()

	if _, err := s.Upload(ctx, "scan.pdf", strings.NewReader("%PDF")); !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("Expected ErrEmptyExtraction, got %v", err)
	}

	// The failed upload must not hold the filename.
	if _, err := s.Upload(ctx, "scan.pdf", strings.NewReader("%PDF")); !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("Retry should reach extraction again, got %v", err)
	}
}

func TestChatWithoutDocuments(t *testing.T) {
	s := newTestService(t, Deps{LLM: &stubLLM{answer: "unused"}})

	res, err := s.Chat(context.Background(), "anything?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if res.Answer != noDocumentsAnswer {
		t.Errorf("Unexpected answer: %q", res.Answer)
	}
	if res.Sources == nil || len(res.Sources) != 0 {
		t.Errorf("Expected empty sources slice, got %v", res.Sources)
	}
}

func TestChatAnswersFromChunks(t *testing.T) {
	s := newTestService(t, Deps{LLM: &stubLLM{answer: "the answer"}})
	ctx := context.Background()

	if _, err := s.Upload(ctx, "a.pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	res, err := s.Chat(ctx, "what is it?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if res.Answer != "the answer" {
		t.Errorf("Unexpected answer: %q", res.Answer)
	}
	if len(res.Sources) != 1 || res.Sources[0] != "a.pdf" {
		t.Errorf("Expected sources [a.pdf], got %v", res.Sources)
	}
}

func TestChatWithoutModel(t *testing.T) {
	s := newTestService(t, Deps{})
	ctx := context.Background()

	if _, err := s.Upload(ctx, "a.pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	res, err := s.Chat(ctx, "question")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if res.Answer != noAPIKeyAnswer {
		t.Errorf("Unexpected answer: %q", res.Answer)
	}
}

func TestChatGenerationFailureIsSoft(t *testing.T) {
	s := newTestService(t, Deps{LLM: &stubLLM{err: errors.New("model overloaded")}})
	ctx := context.Background()

	if _, err := s.Upload(ctx, "a.pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	res, err := s.Chat(ctx, "question")
	if err != nil {
		t.Fatalf("Chat should not fail on generation errors: %v", err)
	}
	if !strings.HasPrefix(res.Answer, "Error generating response:") {
		t.Errorf("Unexpected answer: %q", res.Answer)
	}
	if len(res.Sources) != 1 {
		t.Errorf("Sources should still be returned, got %v", res.Sources)
	}
}

func TestListDocumentsDeduplicatesChunks(t *testing.T) {
	s := newTestService(t, Deps{})
	ctx := context.Background()

	first, err := s.Upload(ctx, "a.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	second, err := s.Upload(ctx, "b.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	docs, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != first.DocID || docs[0].Filename != "a.pdf" {
		t.Errorf("Unexpected first document: %+v", docs[0])
	}
	if docs[1].ID != second.DocID || docs[1].Filename != "b.pdf" {
		t.Errorf("Unexpected second document: %+v", docs[1])
	}
}

func TestDeleteDocument(t *testing.T) {
	store := &memStore{}
	s := newTestService(t, Deps{Store: store, Loader: &stubLoader{text: strings.Repeat("x", 2400)}})
	ctx := context.Background()

	up, err := s.Upload(ctx, "a.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	res, err := s.DeleteDocument(ctx, up.DocID)
	if err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if res.Filename != "a.pdf" || res.ChunksDeleted != 3 {
		t.Errorf("Unexpected delete result: %+v", res)
	}
	if len(store.docs) != 0 {
		t.Errorf("Store should be empty after delete, got %d chunks", len(store.docs))
	}

	// The name is free again.
	if _, err := s.Upload(ctx, "a.pdf", strings.NewReader("%PDF")); err != nil {
		t.Errorf("Re-upload after delete should succeed: %v", err)
	}
}

func TestDeleteDocumentNotFound(t *testing.T) {
	s := newTestService(t, Deps{})
	if _, err := s.DeleteDocument(context.Background(), "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("Expected ErrDocumentNotFound, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestService(t, Deps{})
	h := s.Health()
	if h.GeminiConfigured {
		t.Error("GeminiConfigured should be false without a model")
	}
	if !h.VectorStoreConfigured {
		t.Error("VectorStoreConfigured should be true")
	}

	s = newTestService(t, Deps{LLM: &stubLLM{}})
	if !s.Health().GeminiConfigured {
		t.Error("GeminiConfigured should be true with a model")
	}
}
