package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations

	"filedepot/internal/database/migrations"
	"filedepot/internal/depot"
)

// PostgresStore implements the depot.Store interface using PostgreSQL
// via a pgx connection pool. Read-then-write mutations run inside a
// transaction, mirroring the SQLite store.
type PostgresStore struct {
	pool *pgxpool.Pool
	url  string
}

// NewPostgresStore connects to the database at the given URL and verifies
// the connection with a ping.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool, url: url}, nil
}

// Item operations

func (s *PostgresStore) ListItems(ctx context.Context) ([]*depot.Item, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+itemColumns+" FROM items "+listOrder)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanPgxItems(rows)
}

func (s *PostgresStore) ListChildren(ctx context.Context, dir string) ([]*depot.Item, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+itemColumns+" FROM items WHERE parent_dir = $1 "+listOrder, dir)
	if err != nil {
		return nil, fmt.Errorf("listing children of %s: %w", dir, err)
	}
	defer rows.Close()

	return scanPgxItems(rows)
}

func (s *PostgresStore) GetItem(ctx context.Context, id string) (*depot.Item, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = $1", id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding item by id: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) InsertItem(ctx context.Context, item *depot.Item) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO items (id, name, kind, size, path, parent_dir, mime_type, content, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID,
		item.Name,
		string(item.Kind),
		item.Size,
		item.Path,
		depot.ParentDir(item.Path),
		item.MimeType,
		item.Content,
		item.LastModified,
	)
	if err != nil {
		// The unique index on path backstops the sibling check in the
		// service layer, which runs outside any store serialization.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("inserting item at %s: %w", item.Path, depot.ErrConflict)
		}
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateItemPath(ctx context.Context, id, newPath string, modified time.Time) (*depot.Item, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE items SET path = $1, parent_dir = $2, last_modified = $3 WHERE id = $4",
		newPath, depot.ParentDir(newPath), modified, id)
	if err != nil {
		return nil, fmt.Errorf("updating item path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("updating item %s: %w", id, depot.ErrNotFound)
	}

	item, err := scanItem(tx.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("loading updated item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) DeleteItem(ctx context.Context, id string) (*depot.Item, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	item, err := scanItem(tx.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("deleting item %s: %w", id, depot.ErrNotFound)
		}
		return nil, fmt.Errorf("loading item for delete: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM items WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("deleting item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return item, nil
}

// Audit operations

func (s *PostgresStore) AppendAudit(ctx context.Context, entry *depot.AuditEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, timestamp, ip, mac, action, details)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Timestamp, entry.IP, entry.MAC, entry.Action, entry.Details,
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentAudit(ctx context.Context, limit int) ([]*depot.AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, timestamp, ip, mac, action, details
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
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

// CheckMigrations verifies the database schema is up-to-date. The migration
// machinery works over database/sql, so a short-lived stdlib connection is
// opened next to the pool.
func (s *PostgresStore) CheckMigrations() error {
	db, err := sql.Open("pgx", s.url)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer db.Close()

	return migrations.CheckStatus(db, migrations.DialectPostgres)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgxItems(rows pgx.Rows) ([]*depot.Item, error) {
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

// Compile-time check that PostgresStore implements the depot.Store interface
var _ depot.Store = (*PostgresStore)(nil)
