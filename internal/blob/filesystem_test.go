package blob

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileSystemStore(t *testing.T) {
	t.Run("creates root directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		root := filepath.Join(tmpDir, "blobs")

		_, err := NewFileSystemStore(root)
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}

		if _, err := os.Stat(root); err != nil {
			t.Errorf("root directory not created: %v", err)
		}
	})

	t.Run("works with existing directory", func(t *testing.T) {
		_, err := NewFileSystemStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}
	})
}

func TestFileSystemStore_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileSystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	if err := s.Write(ctx, "/docs/notes.txt", []byte("hello world")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := s.Read(ctx, "/docs/notes.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(got, []byte("hello world")) {
		t.Errorf("Read() = %q, want %q", got, "hello world")
	}
}

func TestFileSystemStore_Read_NotFound(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileSystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	if _, err := s.Read(ctx, "/missing.txt"); err == nil {
		t.Fatal("Read() expected error for missing file")
	}
}

func TestFileSystemStore_MakeDir(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	if err := s.MakeDir(ctx, "/docs/reports/"); err != nil {
		t.Fatalf("MakeDir() error = %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "docs", "reports"))
	if err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("created path is not a directory")
	}

	// Idempotent
	if err := s.MakeDir(ctx, "/docs/reports/"); err != nil {
		t.Errorf("second MakeDir() error = %v", err)
	}
}

func TestFileSystemStore_Move(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileSystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	if err := s.Write(ctx, "/a.txt", []byte("data")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Move(ctx, "/a.txt", "/archive/a.txt"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	if _, err := s.Read(ctx, "/a.txt"); err == nil {
		t.Error("old path still readable after move")
	}
	got, err := s.Read(ctx, "/archive/a.txt")
	if err != nil {
		t.Fatalf("Read() after move error = %v", err)
	}
	if string(got) != "data" {
		t.Errorf("Read() = %q, want %q", got, "data")
	}
}

func TestFileSystemStore_Remove(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileSystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	if err := s.Write(ctx, "/a.txt", []byte("data")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Remove(ctx, "/a.txt"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := s.Read(ctx, "/a.txt"); err == nil {
		t.Error("file still readable after remove")
	}

	// Absence is tolerated
	if err := s.Remove(ctx, "/a.txt"); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestFileSystemStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	// Clean collapses the traversal inside the root, so nothing outside
	// the root is ever touched.
	if err := s.Write(ctx, "/../../etc/escape.txt", []byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "etc", "escape.txt")); err != nil {
		t.Errorf("traversal path not confined to root: %v", err)
	}
}

func TestFileSystemStore_Validate(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	if err := s.Validate(ctx); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	os.RemoveAll(root)
	if err := s.Validate(ctx); err == nil {
		t.Error("Validate() expected error after root removal")
	}
}

func TestFileSystemStore_AtomicWrite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	if err := s.Write(ctx, "/a.txt", []byte("data")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// No temp files should remain after a successful write
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if e.Name() != "a.txt" {
			t.Errorf("unexpected file in root: %s", e.Name())
		}
	}
}
