package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"filedepot/internal/database/migrations"
	"filedepot/internal/depot"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore implements the depot.Store interface using SQLite.
// Mutations that read then write run inside a transaction, so concurrent
// writers cannot lose updates.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{
		db:   db,
		path: path,
	}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:   db,
		path: "",
	}
}

// OpenConnection opens and configures a SQLite database connection with
// appropriate PRAGMAs. Exported for use in tools and tests that need a
// properly configured SQLite connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == ":memory:" {
		// An in-memory database exists per connection; a second pooled
		// connection would see an empty schema.
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return db, nil
}

const itemColumns = "id, name, kind, size, path, mime_type, content, last_modified"

// listOrder puts folders before files, then sorts by name.
// 'folder' > 'file' lexically, hence the DESC.
const listOrder = "ORDER BY kind DESC, name ASC"

// Item operations

func (s *SQLiteStore) ListItems(ctx context.Context) ([]*depot.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items "+listOrder)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (s *SQLiteStore) ListChildren(ctx context.Context, dir string) ([]*depot.Item, error) {
	// parent_dir is maintained on every insert and path update, so this is
	// the indexed equivalent of the exact one-segment containment scan.
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE parent_dir = ? "+listOrder, dir)
	if err != nil {
		return nil, fmt.Errorf("listing children of %s: %w", dir, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*depot.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ?", id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding item by id: %w", err)
	}
	return item, nil
}

func (s *SQLiteStore) InsertItem(ctx context.Context, item *depot.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, kind, size, path, parent_dir, mime_type, content, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Name,
		string(item.Kind),
		nullableSize(item.Size),
		item.Path,
		depot.ParentDir(item.Path),
		item.MimeType,
		item.Content,
		item.LastModified,
	)
	if err != nil {
		// The unique index on path backstops the sibling check in the
		// service layer, which runs outside any store serialization.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("inserting item at %s: %w", item.Path, depot.ErrConflict)
		}
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateItemPath(ctx context.Context, id, newPath string, modified time.Time) (*depot.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE items SET path = ?, parent_dir = ?, last_modified = ? WHERE id = ?",
		newPath, depot.ParentDir(newPath), modified, id)
	if err != nil {
		return nil, fmt.Errorf("updating item path: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("updating item %s: %w", id, depot.ErrNotFound)
	}

	item, err := scanItem(tx.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("loading updated item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return item, nil
}

func (s *SQLiteStore) DeleteItem(ctx context.Context, id string) (*depot.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := scanItem(tx.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deleting item %s: %w", id, depot.ErrNotFound)
		}
		return nil, fmt.Errorf("loading item for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("deleting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return item, nil
}

// Audit operations

func (s *SQLiteStore) AppendAudit(ctx context.Context, entry *depot.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, timestamp, ip, mac, action, details)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp, entry.IP, entry.MAC, entry.Action, entry.Details,
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentAudit(ctx context.Context, limit int) ([]*depot.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, ip, mac, action, details
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*depot.AuditEntry
	for rows.Next() {
		var e depot.AuditEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.IP, &e.MAC, &e.Action, &e.Details); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading audit entries: %w", err)
	}
	return entries, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date. Stores built
// from an existing connection (in-memory, tests) get their schema applied
// directly and carry no migration history to check.
func (s *SQLiteStore) CheckMigrations() error {
	if s.path == "" {
		return nil
	}
	return migrations.CheckStatus(s.db, migrations.DialectSQLite)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*depot.Item, error) {
	var (
		item depot.Item
		kind string
		size sql.NullInt64
	)
	err := row.Scan(&item.ID, &item.Name, &kind, &size, &item.Path,
		&item.MimeType, &item.Content, &item.LastModified)
	if err != nil {
		return nil, err
	}
	item.Kind = depot.ItemKind(kind)
	if size.Valid {
		item.Size = &size.Int64
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*depot.Item, error) {
	var items []*depot.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	return items, nil
}

func nullableSize(size *int64) sql.NullInt64 {
	if size == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *size, Valid: true}
}

// Compile-time check that SQLiteStore implements the depot.Store interface
var _ depot.Store = (*SQLiteStore)(nil)
