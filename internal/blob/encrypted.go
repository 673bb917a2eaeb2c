package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"filedepot/internal/depot"
)

// EncryptedStore wraps another BlobStore and encrypts file content at rest
// using filippo.io/age with an X25519 identity. Directory structure, moves
// and removals pass through to the inner store untouched; only the bytes of
// Write and Read are transformed.
type EncryptedStore struct {
	inner     depot.BlobStore
	identity  *age.X25519Identity
	recipient age.Recipient
}

// NewEncryptedStore wraps inner with age encryption using the identity
// stored in plaintext at keyPath.
func NewEncryptedStore(inner depot.BlobStore, keyPath string) (*EncryptedStore, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(keyData))
	if err != nil {
		return nil, fmt.Errorf("parsing identity file: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no identities found in %s", keyPath)
	}

	x25519, ok := identities[0].(*age.X25519Identity)
	if !ok {
		return nil, fmt.Errorf("identity in %s is not an X25519 key", keyPath)
	}

	return &EncryptedStore{
		inner:     inner,
		identity:  x25519,
		recipient: x25519.Recipient(),
	}, nil
}

// GenerateKeyFile creates a new X25519 identity and writes it to path with
// owner-only permissions. Fails if the file already exists.
func GenerateKeyFile(path string) (recipient string, err error) {
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("key file already exists at %s", path)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(identity.String()+"\n"), 0600); err != nil {
		return "", fmt.Errorf("writing identity file: %w", err)
	}

	return identity.Recipient().String(), nil
}

func (s *EncryptedStore) MakeDir(ctx context.Context, dir string) error {
	return s.inner.MakeDir(ctx, dir)
}

func (s *EncryptedStore) Write(ctx context.Context, path string, data []byte) error {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	return s.inner.Write(ctx, path, buf.Bytes())
}

func (s *EncryptedStore) Read(ctx context.Context, path string) ([]byte, error) {
	ciphertext, err := s.inner.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), s.identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting data: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted data: %w", err)
	}
	return plaintext, nil
}

func (s *EncryptedStore) Move(ctx context.Context, oldPath, newPath string) error {
	// Ciphertext is not path-bound, so a move needs no re-encryption.
	return s.inner.Move(ctx, oldPath, newPath)
}

func (s *EncryptedStore) Remove(ctx context.Context, path string) error {
	return s.inner.Remove(ctx, path)
}

func (s *EncryptedStore) Validate(ctx context.Context) error {
	return s.inner.Validate(ctx)
}

// Compile-time check that EncryptedStore implements depot.BlobStore interface
var _ depot.BlobStore = (*EncryptedStore)(nil)
