package blob

import (
	"context"
	"path/filepath"
	"testing"

	"filedepot/internal/config"
)

func TestNewStoreFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := NewStoreFromConfig(ctx, &config.BlobConfig{Type: "memory"}, nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := s.(*MemoryStore); !ok {
			t.Errorf("store type = %T, want *MemoryStore", s)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		s, err := NewStoreFromConfig(ctx, &config.BlobConfig{
			Type: "filesystem",
			Root: t.TempDir(),
		}, nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := s.(*FileSystemStore); !ok {
			t.Errorf("store type = %T, want *FileSystemStore", s)
		}
	})

	t.Run("filesystem requires root", func(t *testing.T) {
		_, err := NewStoreFromConfig(ctx, &config.BlobConfig{Type: "filesystem"}, nil)
		if err == nil {
			t.Fatal("NewStoreFromConfig() expected error for missing root")
		}
	})

	t.Run("s3 requires bucket", func(t *testing.T) {
		_, err := NewStoreFromConfig(ctx, &config.BlobConfig{Type: "s3"}, nil)
		if err == nil {
			t.Fatal("NewStoreFromConfig() expected error for missing bucket")
		}
	})

	t.Run("age encryption wraps the backend", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "depot.key")
		if _, err := GenerateKeyFile(keyPath); err != nil {
			t.Fatalf("GenerateKeyFile() error = %v", err)
		}

		s, err := NewStoreFromConfig(ctx,
			&config.BlobConfig{Type: "memory"},
			&config.EncryptionConfig{Type: "age", KeyPath: keyPath})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := s.(*EncryptedStore); !ok {
			t.Errorf("store type = %T, want *EncryptedStore", s)
		}
	})

	t.Run("age encryption requires key path", func(t *testing.T) {
		_, err := NewStoreFromConfig(ctx,
			&config.BlobConfig{Type: "memory"},
			&config.EncryptionConfig{Type: "age"})
		if err == nil {
			t.Fatal("NewStoreFromConfig() expected error for missing key path")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewStoreFromConfig(ctx, &config.BlobConfig{Type: "tape"}, nil)
		if err == nil {
			t.Fatal("NewStoreFromConfig() expected error for unknown type")
		}
	})
}
