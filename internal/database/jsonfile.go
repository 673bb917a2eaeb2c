package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"filedepot/internal/depot"
)

// JSONStore implements the depot.Store interface over two JSON files:
// items.json holds the full item collection, audit.json the audit log
// (newest first, capped at depot.AuditRetention).
//
// Every operation is a read-modify-write over the full snapshot. A single
// mutex serializes them, so two concurrent mutations both persist and the
// lost-update hazard of unsynchronized full-snapshot writes does not apply.
type JSONStore struct {
	mu        sync.Mutex
	itemsPath string
	auditPath string
}

// NewJSONStore creates a JSON-file-backed store in the given directory.
// The directory is created if it does not exist.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	return &JSONStore{
		itemsPath: filepath.Join(dir, "items.json"),
		auditPath: filepath.Join(dir, "audit.json"),
	}, nil
}

// Item operations

func (s *JSONStore) ListItems(ctx context.Context) ([]*depot.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadItems()
}

func (s *JSONStore) ListChildren(ctx context.Context, dir string) ([]*depot.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadItems()
	if err != nil {
		return nil, err
	}
	return depot.DirectChildren(items, dir), nil
}

func (s *JSONStore) GetItem(ctx context.Context, id string) (*depot.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadItems()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, nil // Not found
}

func (s *JSONStore) InsertItem(ctx context.Context, item *depot.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadItems()
	if err != nil {
		return err
	}
	// Backstops the sibling check in the service layer, which runs
	// outside the store mutex.
	for _, existing := range items {
		if existing.Path == item.Path {
			return fmt.Errorf("inserting item at %s: %w", item.Path, depot.ErrConflict)
		}
	}
	items = append(items, item)
	return s.saveItems(items)
}

func (s *JSONStore) UpdateItemPath(ctx context.Context, id, newPath string, modified time.Time) (*depot.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadItems()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == id {
			item.Path = newPath
			item.LastModified = modified
			if err := s.saveItems(items); err != nil {
				return nil, err
			}
			return item, nil
		}
	}
	return nil, fmt.Errorf("updating item %s: %w", id, depot.ErrNotFound)
}

func (s *JSONStore) DeleteItem(ctx context.Context, id string) (*depot.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadItems()
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		if item.ID == id {
			items = append(items[:i], items[i+1:]...)
			if err := s.saveItems(items); err != nil {
				return nil, err
			}
			return item, nil
		}
	}
	return nil, fmt.Errorf("deleting item %s: %w", id, depot.ErrNotFound)
}

// Audit operations

func (s *JSONStore) AppendAudit(ctx context.Context, entry *depot.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadAudit()
	if err != nil {
		return err
	}

	// Newest first; keep the most recent AuditRetention entries.
	entries = append([]*depot.AuditEntry{entry}, entries...)
	if len(entries) > depot.AuditRetention {
		entries = entries[:depot.AuditRetention]
	}
	return s.saveAudit(entries)
}

func (s *JSONStore) RecentAudit(ctx context.Context, limit int) ([]*depot.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadAudit()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Close is a no-op: every operation opens and closes the files itself.
func (s *JSONStore) Close() error {
	return nil
}

// loadItems reads the full item collection, sorted folders before files,
// then by name. A missing file is an empty collection.
func (s *JSONStore) loadItems() ([]*depot.Item, error) {
	var items []*depot.Item
	if err := readJSON(s.itemsPath, &items); err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Kind != items[j].Kind {
			return items[i].Kind == depot.KindFolder
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *JSONStore) saveItems(items []*depot.Item) error {
	if err := writeJSON(s.itemsPath, items); err != nil {
		return fmt.Errorf("saving items: %w", err)
	}
	return nil
}

func (s *JSONStore) loadAudit() ([]*depot.AuditEntry, error) {
	var entries []*depot.AuditEntry
	if err := readJSON(s.auditPath, &entries); err != nil {
		return nil, fmt.Errorf("loading audit log: %w", err)
	}
	return entries, nil
}

func (s *JSONStore) saveAudit(entries []*depot.AuditEntry) error {
	if err := writeJSON(s.auditPath, entries); err != nil {
		return fmt.Errorf("saving audit log: %w", err)
	}
	return nil
}

// readJSON decodes the file into dest. A missing file leaves dest untouched.
func readJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// writeJSON writes dest atomically: temp file in the same directory, then rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Compile-time check that JSONStore implements the depot.Store interface
var _ depot.Store = (*JSONStore)(nil)
