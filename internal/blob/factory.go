package blob

import (
	"context"
	"fmt"

	"filedepot/internal/config"
	"filedepot/internal/depot"
)

// NewStoreFromConfig creates a BlobStore implementation based on the blob
// config type, optionally wrapped with age encryption.
func NewStoreFromConfig(ctx context.Context, cfg *config.BlobConfig, enc *config.EncryptionConfig) (depot.BlobStore, error) {
	store, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if enc != nil && enc.Type == "age" {
		if enc.KeyPath == "" {
			return nil, fmt.Errorf("age encryption requires key_path to be set")
		}
		return NewEncryptedStore(store, enc.KeyPath)
	}
	return store, nil
}

func newBackend(ctx context.Context, cfg *config.BlobConfig) (depot.BlobStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem blob store requires root to be set")
		}
		return NewFileSystemStore(cfg.Root)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 blob store requires s3_bucket to be set")
		}
		return NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown blob store type: %s", cfg.Type)
	}
}
