package depot

import (
	"context"
	"time"
)

// Store provides metadata persistence for items and the audit trail.
//
// Implementations must serialize read-modify-write cycles: two concurrent
// inserts must both persist. The file-backed implementation uses a mutex,
// SQL implementations rely on transactions.
type Store interface {
	// Item operations

	// ListItems returns every item, folders before files, then by name.
	ListItems(ctx context.Context) ([]*Item, error)

	// ListChildren returns the direct children of the given directory path,
	// in the same order as ListItems. Containment is exact one-segment
	// matching, never a prefix match.
	ListChildren(ctx context.Context, dir string) ([]*Item, error)

	// GetItem returns the item with the given id, or nil if absent.
	GetItem(ctx context.Context, id string) (*Item, error)

	// InsertItem persists a new item. The caller assigns the ID.
	InsertItem(ctx context.Context, item *Item) error

	// UpdateItemPath sets a new materialized path and modification time.
	// Returns the updated item, or an error wrapping ErrNotFound.
	UpdateItemPath(ctx context.Context, id, newPath string, modified time.Time) (*Item, error)

	// DeleteItem removes the item and returns the removed record,
	// or an error wrapping ErrNotFound.
	DeleteItem(ctx context.Context, id string) (*Item, error)

	// Audit operations

	// AppendAudit writes an entry to the front of the log. File-backed
	// implementations truncate the log to AuditRetention entries.
	AppendAudit(ctx context.Context, entry *AuditEntry) error

	// RecentAudit returns the most recent entries, newest first,
	// bounded to limit.
	RecentAudit(ctx context.Context, limit int) ([]*AuditEntry, error)

	// Close closes the underlying medium.
	Close() error
}
