package depot

import "context"

// BlobStore persists the raw byte content of files, addressed by the same
// logical paths the metadata layer uses ("/docs/a.txt", "/docs/").
//
// The service treats several blob operations as best-effort: a failed Move
// or Remove is logged and the metadata operation proceeds anyway. Callers
// must not infer blob-layer success from metadata-layer success.
type BlobStore interface {
	// MakeDir ensures the directory exists. Idempotent: a pre-existing
	// directory is not an error.
	MakeDir(ctx context.Context, dir string) error

	// Write stores the content for a file path, creating parents as needed.
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the content stored at a file path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Move relocates content from oldPath to newPath.
	Move(ctx context.Context, oldPath, newPath string) error

	// Remove deletes the content at a file path. Absence is tolerated.
	Remove(ctx context.Context, path string) error

	// Validate verifies the backing medium is accessible.
	Validate(ctx context.Context) error
}
