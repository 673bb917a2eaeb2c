package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"filedepot/internal/config"
	"filedepot/internal/database/migrations"
)

// Migrate brings the configured database to the latest schema version.
// Only the sqlite and postgres types carry migrations; json needs none and
// memory applies the schema directly at creation.
func Migrate(cfg *config.DatabaseConfig) error {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return fmt.Errorf("sqlite store requires data_dir")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		db, err := OpenConnection(filepath.Join(cfg.DataDir, "depot.db"))
		if err != nil {
			return err
		}
		defer db.Close()
		return migrations.Up(db, migrations.DialectSQLite)
	case "postgres":
		url := cfg.URL
		if url == "" {
			url = os.Getenv("DATABASE_URL")
		}
		if url == "" {
			return fmt.Errorf("postgres store requires url (or DATABASE_URL)")
		}
		db, err := sql.Open("pgx", url)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		return migrations.Up(db, migrations.DialectPostgres)
	case "json", "memory":
		return nil
	default:
		return fmt.Errorf("unknown database type: %q", cfg.Type)
	}
}
