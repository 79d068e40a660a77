package registry

import (
	"context"
	"sync"
)

// MemoryRegistry is a process-local Registry for single-instance deployments.
type MemoryRegistry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{names: make(map[string]struct{})}
}

// Reserve claims the filename, failing when it is already held.
func (r *MemoryRegistry) Reserve(ctx context.Context, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, held := r.names[filename]; held {
		return ErrAlreadyReserved
	}
	r.names[filename] = struct{}{}
	return nil
}

// Release frees the filename for future uploads.
func (r *MemoryRegistry) Release(ctx context.Context, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.names, filename)
	return nil
}

// compile-time check to ensure MemoryRegistry implements the Registry interface
var _ Registry = (*MemoryRegistry)(nil)
