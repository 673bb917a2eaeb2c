package testutil

import (
	"context"
	"fmt"

	"filedepot/internal/blob"
	"filedepot/internal/depot"
)

// NewTestBlobStore returns an in-memory blob store for tests.
func NewTestBlobStore() *blob.MemoryStore {
	return blob.NewMemoryStore()
}

// FailingBlobStore wraps another blob store and fails the selected
// operations, for exercising the best-effort paths of the service.
type FailingBlobStore struct {
	Inner      depot.BlobStore
	FailWrite  bool
	FailMove   bool
	FailRemove bool
}

func (f *FailingBlobStore) MakeDir(ctx context.Context, dir string) error {
	return f.Inner.MakeDir(ctx, dir)
}

func (f *FailingBlobStore) Write(ctx context.Context, path string, data []byte) error {
	if f.FailWrite {
		return fmt.Errorf("write failure injected for %s", path)
	}
	return f.Inner.Write(ctx, path, data)
}

func (f *FailingBlobStore) Read(ctx context.Context, path string) ([]byte, error) {
	return f.Inner.Read(ctx, path)
}

func (f *FailingBlobStore) Move(ctx context.Context, oldPath, newPath string) error {
	if f.FailMove {
		return fmt.Errorf("move failure injected for %s", oldPath)
	}
	return f.Inner.Move(ctx, oldPath, newPath)
}

func (f *FailingBlobStore) Remove(ctx context.Context, path string) error {
	if f.FailRemove {
		return fmt.Errorf("remove failure injected for %s", path)
	}
	return f.Inner.Remove(ctx, path)
}

func (f *FailingBlobStore) Validate(ctx context.Context) error {
	return f.Inner.Validate(ctx)
}

// Compile-time check that FailingBlobStore implements depot.BlobStore
var _ depot.BlobStore = (*FailingBlobStore)(nil)
