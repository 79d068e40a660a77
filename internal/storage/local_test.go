package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	ctx := context.Background()

	path, err := store.Save(ctx, "report.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Saved file is not readable: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("Unexpected file content: %q", data)
	}

	if err := store.Remove(ctx, "report.pdf"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("File should be gone after Remove")
	}

	// Removing a missing file is tolerated.
	if err := store.Remove(ctx, "report.pdf"); err != nil {
		t.Errorf("Remove of a missing file should not error: %v", err)
	}
}

func TestLocalStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := NewLocalStore(dir); err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("Upload directory was not created: %v", err)
	}
}
