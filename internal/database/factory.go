package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"filedepot/internal/config"
	"filedepot/internal/depot"
)

// NewStoreFromConfig creates a metadata store from its configuration.
//
// Supported types:
//   - "sqlite":   depot.db inside the configured data directory
//   - "json":     items.json + audit.json inside the data directory
//   - "postgres": connection URL from config, falling back to DATABASE_URL
//   - "memory":   in-memory SQLite with the schema pre-applied
func NewStoreFromConfig(ctx context.Context, cfg *config.DatabaseConfig) (depot.Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite store requires data_dir")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "depot.db"))
	case "json":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("json store requires data_dir")
		}
		return NewJSONStore(cfg.DataDir)
	case "postgres":
		url := cfg.URL
		if url == "" {
			url = os.Getenv("DATABASE_URL")
		}
		if url == "" {
			return nil, fmt.Errorf("postgres store requires url (or DATABASE_URL)")
		}
		return NewPostgresStore(ctx, url)
	case "memory":
		db, err := OpenConnection(":memory:")
		if err != nil {
			return nil, err
		}
		if _, err := db.Exec(Schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
		return NewSQLiteStoreFromDB(db), nil
	default:
		return nil, fmt.Errorf("unknown database type: %q", cfg.Type)
	}
}
