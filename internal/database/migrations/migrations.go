// Package migrations manages the SQL schema for the metadata stores.
// Migration files are embedded so the binary is self-contained.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/sqlite/*.sql files/postgres/*.sql
var migrationFiles embed.FS

// Dialect selects which embedded migration set applies to a connection.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// CheckStatus verifies that the database schema is up-to-date.
// Returns nil if the database is at the latest version.
func CheckStatus(db *sql.DB, dialect Dialect) error {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// m is not closed here: closing it would close the db connection,
	// which the caller owns.

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("database has no schema version (needs migration)")
		}
		return fmt.Errorf("reading database version: %w", err)
	}

	if dirty {
		return fmt.Errorf("database is in dirty state at version %d (migration failed previously)", version)
	}

	sourceDriver, err := newSource(dialect)
	if err != nil {
		return fmt.Errorf("reading migration files: %w", err)
	}
	defer sourceDriver.Close()

	latest, err := latestVersion(sourceDriver)
	if err != nil {
		return fmt.Errorf("determining latest version: %w", err)
	}

	if version < latest {
		return fmt.Errorf("database is at version %d but latest is %d (%d migrations behind)",
			version, latest, latest-version)
	}
	if version > latest {
		return fmt.Errorf("database version %d is ahead of binary version %d (binary needs update)",
			version, latest)
	}

	return nil
}

// Up runs all pending migrations to bring the database to the latest version.
func Up(db *sql.DB, dialect Dialect) error {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// newSource creates a source driver over the embedded files for a dialect.
func newSource(dialect Dialect) (source.Driver, error) {
	switch dialect {
	case DialectSQLite:
		return iofs.New(migrationFiles, "files/sqlite")
	case DialectPostgres:
		return iofs.New(migrationFiles, "files/postgres")
	default:
		return nil, fmt.Errorf("unknown migration dialect: %q", dialect)
	}
}

// newMigrate creates a migrate instance for the given database and dialect.
func newMigrate(db *sql.DB, dialect Dialect) (*migrate.Migrate, error) {
	sourceDriver, err := newSource(dialect)
	if err != nil {
		return nil, fmt.Errorf("creating source driver: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
		if err != nil {
			sourceDriver.Close()
			return nil, fmt.Errorf("creating sqlite driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
		if err != nil {
			sourceDriver.Close()
			return nil, fmt.Errorf("creating migrate instance: %w", err)
		}
		return m, nil
	case DialectPostgres:
		dbDriver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
		if err != nil {
			sourceDriver.Close()
			return nil, fmt.Errorf("creating postgres driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", sourceDriver, "pgx5", dbDriver)
		if err != nil {
			sourceDriver.Close()
			return nil, fmt.Errorf("creating migrate instance: %w", err)
		}
		return m, nil
	default:
		sourceDriver.Close()
		return nil, fmt.Errorf("unknown migration dialect: %q", dialect)
	}
}

// latestVersion returns the highest version number available in the source.
func latestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, err
	}

	latest := version
	for {
		next, err := src.Next(latest)
		if err != nil {
			// Any error from Next() means the end of the migration set.
			break
		}
		latest = next
	}

	return latest, nil
}
