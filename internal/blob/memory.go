package blob

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"filedepot/internal/depot"
)

// MemoryStore is an in-memory implementation of the BlobStore interface,
// useful for testing. It is safe for concurrent use.
type MemoryStore struct {
	files map[string][]byte
	dirs  map[string]bool
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: make(map[string][]byte),
		dirs:  map[string]bool{depot.RootPath: true},
	}
}

func (m *MemoryStore) MakeDir(ctx context.Context, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Idempotent: creating an existing directory is safe
	m.dirs[dir] = true
	return nil
}

func (m *MemoryStore) Write(ctx context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[path] = append([]byte(nil), data...)
	m.dirs[depot.ParentDir(path)] = true
	return nil
}

func (m *MemoryStore) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("content not found: %s", path)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Move(ctx context.Context, oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[oldPath]
	if !ok {
		return fmt.Errorf("content not found: %s", oldPath)
	}
	delete(m.files, oldPath)
	m.files[newPath] = data
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Absence is tolerated
	delete(m.files, path)
	return nil
}

// Validate always succeeds for the in-memory store.
func (m *MemoryStore) Validate(ctx context.Context) error {
	return nil
}

// HasDir reports whether a directory was created, for tests that assert on
// blob-layer effects.
func (m *MemoryStore) HasDir(dir string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[dir]
}

// Paths returns the stored file paths, for tests.
func (m *MemoryStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var paths []string
	for p := range m.files {
		paths = append(paths, p)
	}
	return paths
}

// HasPrefix reports whether any stored file path starts with the prefix.
func (m *MemoryStore) HasPrefix(prefix string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Compile-time check that MemoryStore implements depot.BlobStore interface
var _ depot.BlobStore = (*MemoryStore)(nil)
