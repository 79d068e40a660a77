package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docchat/internal/config"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"
)

// fakeChroma is a tiny in-memory stand-in for a ChromaDB server covering the
// endpoints the store touches.
type fakeChroma struct {
	ids       []string
	documents []string
	metadatas []map[string]interface{}
}

func (f *fakeChroma) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name        string `json:"name"`
			GetOrCreate bool   `json:"get_or_create"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "col-1", "name": body.Name})
	})

	mux.HandleFunc("/api/v1/collections/col-1/add", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs       []string                 `json:"ids"`
			Documents []string                 `json:"documents"`
			Metadatas []map[string]interface{} `json:"metadatas"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.ids = append(f.ids, body.IDs...)
		f.documents = append(f.documents, body.Documents...)
		f.metadatas = append(f.metadatas, body.Metadatas...)
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/api/v1/collections/col-1/query", func(w http.ResponseWriter, r *http.Request) {
		n := len(f.ids)
		distances := make([]float64, n)
		for i := range distances {
			distances[i] = 0.25
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ids":       [][]string{f.ids},
			"documents": [][]string{f.documents},
			"metadatas": [][]map[string]interface{}{f.metadatas},
			"distances": [][]float64{distances},
		})
	})

	mux.HandleFunc("/api/v1/collections/col-1/get", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ids":       f.ids,
			"metadatas": f.metadatas,
		})
	})

	mux.HandleFunc("/api/v1/collections/col-1/delete", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		remove := make(map[string]bool, len(body.IDs))
		for _, id := range body.IDs {
			remove[id] = true
		}
		var ids []string
		var documents []string
		var metadatas []map[string]interface{}
		for i, id := range f.ids {
			if remove[id] {
				continue
			}
			ids = append(ids, id)
			documents = append(documents, f.documents[i])
			metadatas = append(metadatas, f.metadatas[i])
		}
		f.ids, f.documents, f.metadatas = ids, documents, metadatas
		json.NewEncoder(w).Encode(body.IDs)
	})

	return mux
}

func newTestStore(t *testing.T) (*ChromaStore, *fakeChroma) {
	t.Helper()

	fake := &fakeChroma{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	store, err := NewChromaStore(&config.ChromaConfig{URL: srv.URL, Collection: "documents"}, logger.New("test"))
	if err != nil {
		t.Fatalf("NewChromaStore failed: %v", err)
	}
	return store, fake
}

func TestChromaStoreAddAndQuery(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	docs := []*schema.Document{
		{
			ID:        "d1_chunk_0",
			Text:      "alpha",
			Embedding: []float32{0.1, 0.2},
			Metadata:  map[string]interface{}{schema.MetadataKeyFileName: "a.pdf", schema.MetadataKeyDocID: "d1"},
		},
		{
			ID:        "d1_chunk_1",
			Text:      "beta",
			Embedding: []float32{0.3, 0.4},
			Metadata:  map[string]interface{}{schema.MetadataKeyFileName: "a.pdf", schema.MetadataKeyDocID: "d1"},
		},
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(fake.ids) != 2 {
		t.Fatalf("Expected 2 stored chunks, got %d", len(fake.ids))
	}

	results, err := store.Query(ctx, []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Text != "alpha" {
		t.Errorf("Expected text 'alpha', got %q", results[0].Text)
	}
	if results[0].FileName() != "a.pdf" {
		t.Errorf("Expected filename 'a.pdf', got %q", results[0].FileName())
	}
	score, ok := results[0].Metadata[schema.MetadataKeyScore].(float64)
	if !ok || score != 0.75 {
		t.Errorf("Expected similarity 0.75, got %v", results[0].Metadata[schema.MetadataKeyScore])
	}
}

func TestChromaStoreListAndDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	docs := []*schema.Document{
		{ID: "d1_chunk_0", Text: "alpha", Metadata: map[string]interface{}{schema.MetadataKeyDocID: "d1"}},
		{ID: "d2_chunk_0", Text: "beta", Metadata: map[string]interface{}{schema.MetadataKeyDocID: "d2"}},
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	listed, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("Expected 2 listed chunks, got %d", len(listed))
	}

	if err := store.Delete(ctx, []string{"d1_chunk_0"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	listed, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "d2_chunk_0" {
		t.Fatalf("Expected only d2_chunk_0 to remain, got %+v", listed)
	}
}

func TestChromaStoreEmptyBatches(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, nil); err != nil {
		t.Errorf("Add of empty batch failed: %v", err)
	}
	if err := store.Delete(ctx, nil); err != nil {
		t.Errorf("Delete of empty batch failed: %v", err)
	}
}
