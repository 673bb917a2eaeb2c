package blob

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func newTestEncryptedStore(t *testing.T) (*EncryptedStore, *MemoryStore) {
	t.Helper()

	keyPath := filepath.Join(t.TempDir(), "depot.key")
	if _, err := GenerateKeyFile(keyPath); err != nil {
		t.Fatalf("GenerateKeyFile() error = %v", err)
	}

	inner := NewMemoryStore()
	s, err := NewEncryptedStore(inner, keyPath)
	if err != nil {
		t.Fatalf("NewEncryptedStore() error = %v", err)
	}
	return s, inner
}

func TestGenerateKeyFile(t *testing.T) {
	t.Run("writes identity and returns recipient", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "keys", "depot.key")

		recipient, err := GenerateKeyFile(keyPath)
		if err != nil {
			t.Fatalf("GenerateKeyFile() error = %v", err)
		}
		if !strings.HasPrefix(recipient, "age1") {
			t.Errorf("recipient = %q, want age1 prefix", recipient)
		}
	})

	t.Run("fails if key already exists", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "depot.key")
		if _, err := GenerateKeyFile(keyPath); err != nil {
			t.Fatalf("first GenerateKeyFile() error = %v", err)
		}
		if _, err := GenerateKeyFile(keyPath); err == nil {
			t.Fatal("second GenerateKeyFile() expected error")
		}
	})
}

func TestEncryptedStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, inner := newTestEncryptedStore(t)

	plaintext := []byte("secret report contents")
	if err := s.Write(ctx, "/docs/report.txt", plaintext); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// The inner store must hold ciphertext, not the plaintext
	stored, err := inner.Read(ctx, "/docs/report.txt")
	if err != nil {
		t.Fatalf("inner Read() error = %v", err)
	}
	if bytes.Contains(stored, plaintext) {
		t.Error("inner store contains plaintext")
	}

	got, err := s.Read(ctx, "/docs/report.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Read() = %q, want %q", got, plaintext)
	}
}

func TestEncryptedStore_MoveKeepsContentReadable(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestEncryptedStore(t)

	if err := s.Write(ctx, "/a.txt", []byte("data")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Move(ctx, "/a.txt", "/b/a.txt"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	got, err := s.Read(ctx, "/b/a.txt")
	if err != nil {
		t.Fatalf("Read() after move error = %v", err)
	}
	if string(got) != "data" {
		t.Errorf("Read() = %q, want %q", got, "data")
	}
}

func TestNewEncryptedStore_MissingKey(t *testing.T) {
	_, err := NewEncryptedStore(NewMemoryStore(), "/nonexistent/depot.key")
	if err == nil {
		t.Fatal("NewEncryptedStore() expected error for missing key file")
	}
}
