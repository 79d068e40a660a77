package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docchat/internal/rag/schema"
	"docchat/internal/rag/splitters"
	"docchat/pkg/logger"
)

// fakeEmbedder returns a fixed-dimension vector per input text.
type fakeEmbedder struct {
	calls [][]string
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

// fakeStore records added chunks and serves canned query results.
type fakeStore struct {
	added   []*schema.Document
	results []*schema.Document
	addErr  error
}

func (f *fakeStore) Add(ctx context.Context, docs []*schema.Document) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, docs...)
	return nil
}

func (f *fakeStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	if topK < len(f.results) {
		return f.results[:topK], nil
	}
	return f.results, nil
}

func (f *fakeStore) List(ctx context.Context) ([]*schema.Document, error) { return f.added, nil }
func (f *fakeStore) Delete(ctx context.Context, ids []string) error       { return nil }

// fakeLLM echoes the prompt it was given.
type fakeLLM struct {
	prompt string
	err    error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return "generated answer", nil
}

func TestIndexingPipelineRun(t *testing.T) {
	splitter, err := splitters.NewCharacterSplitter(1000, 200)
	if err != nil {
		t.Fatalf("NewCharacterSplitter failed: %v", err)
	}
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	p := NewIndexingPipeline(splitter, embedder, store, logger.New("test"))

	doc := &schema.Document{
		ID:       "doc-1",
		Text:     strings.Repeat("x", 2400),
		Metadata: map[string]interface{}{schema.MetadataKeyFileName: "a.pdf"},
	}
	count, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 chunks indexed, got %d", count)
	}
	if len(store.added) != 3 {
		t.Fatalf("Expected 3 chunks in store, got %d", len(store.added))
	}
	for i, chunk := range store.added {
		if len(chunk.Embedding) == 0 {
			t.Errorf("Chunk %d was stored without an embedding", i)
		}
	}
	if len(embedder.calls) != 1 || len(embedder.calls[0]) != 3 {
		t.Errorf("Expected one embedding batch of 3 texts, got %v", embedder.calls)
	}
}

func TestIndexingPipelineEmptyDocument(t *testing.T) {
	splitter, _ := splitters.NewCharacterSplitter(1000, 200)
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	p := NewIndexingPipeline(splitter, embedder, store, logger.New("test"))

	count, err := p.Run(context.Background(), &schema.Document{ID: "doc-1", Text: ""})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 chunks for empty text, got %d", count)
	}
	if len(embedder.calls) != 0 {
		t.Errorf("Embedder should not be called for an empty document")
	}
}

func TestIndexingPipelineEmbedError(t *testing.T) {
	splitter, _ := splitters.NewCharacterSplitter(1000, 200)
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	store := &fakeStore{}
	p := NewIndexingPipeline(splitter, embedder, store, logger.New("test"))

	_, err := p.Run(context.Background(), &schema.Document{ID: "doc-1", Text: "some text"})
	if err == nil {
		t.Fatal("Expected an error when embedding fails")
	}
	if len(store.added) != 0 {
		t.Errorf("Nothing should be stored when embedding fails")
	}
}

func TestRetrievalPipelineRun(t *testing.T) {
	store := &fakeStore{results: []*schema.Document{
		{ID: "d1_chunk_0", Text: "alpha"},
		{ID: "d1_chunk_1", Text: "beta"},
	}}
	p := NewRetrievalPipeline(&fakeEmbedder{}, store, logger.New("test"))

	docs, err := p.Run(context.Background(), "what is alpha?", 5)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(docs))
	}

	docs, err = p.Run(context.Background(), "what is alpha?", 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("Expected topK to cap results at 1, got %d", len(docs))
	}
}

func TestRetrievalPipelineEmbedError(t *testing.T) {
	p := NewRetrievalPipeline(&fakeEmbedder{err: errors.New("boom")}, &fakeStore{}, logger.New("test"))
	if _, err := p.Run(context.Background(), "question", 5); err == nil {
		t.Fatal("Expected an error when the query embedding fails")
	}
}

func TestQAPipelinePrompt(t *testing.T) {
	llm := &fakeLLM{}
	p := NewQAPipeline(llm, logger.New("test"))

	docs := []*schema.Document{
		{Text: "first chunk"},
		{Text: "second chunk"},
	}
	answer, err := p.Run(context.Background(), "what happened?", docs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if answer != "generated answer" {
		t.Errorf("Unexpected answer: %q", answer)
	}

	if !strings.HasPrefix(llm.prompt, "You are a helpful AI assistant.") {
		t.Errorf("Prompt missing instruction header: %q", llm.prompt)
	}
	if !strings.Contains(llm.prompt, "first chunk\n\nsecond chunk") {
		t.Errorf("Context chunks should be joined with a blank line: %q", llm.prompt)
	}
	if !strings.Contains(llm.prompt, "Question: what happened?") {
		t.Errorf("Prompt missing the question: %q", llm.prompt)
	}
	if !strings.HasSuffix(llm.prompt, "Answer:") {
		t.Errorf("Prompt should end with the answer cue: %q", llm.prompt)
	}
}

func TestQAPipelineLLMError(t *testing.T) {
	p := NewQAPipeline(&fakeLLM{err: errors.New("model overloaded")}, logger.New("test"))
	if _, err := p.Run(context.Background(), "q", nil); err == nil {
		t.Fatal("Expected the LLM error to be returned")
	}
}
