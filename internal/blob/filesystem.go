// Package blob provides backends for the raw file content addressed by the
// logical paths of the metadata layer.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"filedepot/internal/depot"
)

// FileSystemStore keeps blobs as regular files under a root directory.
// Logical paths map directly onto the directory tree below the root.
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a filesystem blob store rooted at the given path.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

// resolve maps a logical path onto the filesystem, rejecting anything that
// would escape the root.
func (s *FileSystemStore) resolve(logical string) (string, error) {
	cleaned := filepath.Clean("/" + strings.TrimSuffix(logical, depot.Separator))
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid path: %q", logical)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *FileSystemStore) MakeDir(ctx context.Context, dir string) error {
	p, err := s.resolve(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Write stores data atomically using a temp file in the destination
// directory followed by a rename.
func (s *FileSystemStore) Write(ctx context.Context, path string, data []byte) error {
	destPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (s *FileSystemStore) Read(ctx context.Context, path string) ([]byte, error) {
	p, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *FileSystemStore) Move(ctx context.Context, oldPath, newPath string) error {
	from, err := s.resolve(oldPath)
	if err != nil {
		return err
	}
	to, err := s.resolve(newPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}
	return nil
}

// Remove deletes the file at path. A missing file is not an error.
func (s *FileSystemStore) Remove(ctx context.Context, path string) error {
	p, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Validate verifies that the root directory exists and is a directory.
func (s *FileSystemStore) Validate(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("blob root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("blob root is not a directory: %s", s.root)
	}
	return nil
}

// Compile-time check that FileSystemStore implements depot.BlobStore interface
var _ depot.BlobStore = (*FileSystemStore)(nil)
