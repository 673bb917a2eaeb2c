package depot

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Service is the orchestration layer for the virtual filesystem: it
// coordinates metadata mutations with the corresponding blob operations
// and appends to the audit trail.
type Service struct {
	store    Store
	blobs    BlobStore
	logger   Logger
	clock    Clock
	idgen    IDGenerator
	notifier AuditNotifier
}

// NewService creates a new Service with the provided dependencies.
func NewService(store Store, blobs BlobStore, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:  store,
		blobs:  blobs,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
	}
}

// SetNotifier registers a notifier that receives every appended audit entry.
func (s *Service) SetNotifier(n AuditNotifier) {
	s.notifier = n
}

// CreateRequest carries the caller-supplied fields for a Create operation.
// Dir is the target directory the item is created under; the service
// computes the materialized path from Dir, Name and Kind.
type CreateRequest struct {
	Name     string   `json:"name"`
	Kind     ItemKind `json:"type"`
	Size     *int64   `json:"size,omitempty"`
	Dir      string   `json:"path"`
	MimeType string   `json:"mimeType,omitempty"`
	Content  string   `json:"content,omitempty"`
}

func (r *CreateRequest) validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Kind, validation.Required, validation.In(KindFile, KindFolder)),
		validation.Field(&r.Dir, validation.Required, validation.By(dirPathRule)),
	)
}

func dirPathRule(value interface{}) error {
	p, _ := value.(string)
	if !IsDirPath(p) {
		return fmt.Errorf("must be an absolute directory path ending in %q", Separator)
	}
	return nil
}

// List returns the direct children of the given directory path.
// An empty dir defaults to the root.
func (s *Service) List(ctx context.Context, dir string) ([]*Item, error) {
	if dir == "" {
		dir = RootPath
	}
	if !IsDirPath(dir) {
		return nil, &ValidationError{Message: fmt.Sprintf("listing path must be an absolute directory path: %q", dir)}
	}

	children, err := s.store.ListChildren(ctx, dir)
	if err != nil {
		return nil, &StorageError{Op: "listing items", Err: err}
	}

	s.logger.Debug("listed directory", "path", dir, "children", len(children))
	return children, nil
}

// Create makes a new file or folder under the requested directory.
//
// The blob write happens before the metadata insert, so a crash never leaves
// metadata pointing at a missing blob. The reverse divergence is accepted: a
// successful blob write is not rolled back if the metadata insert fails.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Item, error) {
	if err := req.validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	if err := s.checkSibling(ctx, req.Dir, req.Name, req.Kind); err != nil {
		return nil, err
	}

	path := ChildPath(req.Dir, req.Name, req.Kind)

	if req.Kind == KindFolder {
		if err := s.blobs.MakeDir(ctx, path); err != nil {
			return nil, &StorageError{Op: "creating directory", Err: err}
		}
	} else {
		data, err := DecodeContent(req.Content)
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid content: %v", err)}
		}
		if err := s.blobs.MakeDir(ctx, req.Dir); err != nil {
			return nil, &StorageError{Op: "creating parent directory", Err: err}
		}
		if err := s.blobs.Write(ctx, path, data); err != nil {
			return nil, &StorageError{Op: "writing content", Err: err}
		}
	}

	item := &Item{
		ID:           s.idgen.New(),
		Name:         req.Name,
		Kind:         req.Kind,
		Size:         req.Size,
		Path:         path,
		MimeType:     req.MimeType,
		Content:      req.Content,
		LastModified: s.clock.Now(),
	}

	if err := s.store.InsertItem(ctx, item); err != nil {
		// The blob has already been written; it is left in place.
		s.logger.Warn("metadata insert failed after blob write", "path", path, "error", err)
		return nil, &StorageError{Op: "inserting item", Err: err}
	}

	action := ActionUpload
	if item.IsFolder() {
		action = ActionCreateFolder
	}
	s.audit(ctx, action, fmt.Sprintf("%s %s", item.Kind, item.Path))

	s.logger.Info("item created", "id", item.ID, "kind", item.Kind, "path", item.Path)
	return item, nil
}

// Move relocates an item to the target directory, keeping its name.
//
// For files, the blob relocation is best-effort: a failure is logged and the
// metadata path is still updated, so logical and physical state can diverge.
// Folder moves update only the folder's own path; descendants keep their
// old materialized paths and drop out of the moved folder's listings.
func (s *Service) Move(ctx context.Context, itemID, targetDir string) (*Item, error) {
	if itemID == "" || targetDir == "" {
		return nil, &ValidationError{Message: "missing required fields: itemId, targetPath"}
	}
	if !IsDirPath(targetDir) {
		return nil, &ValidationError{Message: fmt.Sprintf("target path must be an absolute directory path: %q", targetDir)}
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, &StorageError{Op: "loading item", Err: err}
	}
	if item == nil {
		return nil, &NotFoundError{ID: itemID}
	}

	if err := s.checkSibling(ctx, targetDir, item.Name, item.Kind); err != nil {
		return nil, err
	}

	newPath := ChildPath(targetDir, item.Name, item.Kind)

	if !item.IsFolder() {
		if err := s.blobs.MakeDir(ctx, targetDir); err != nil {
			s.logger.Warn("creating target directory failed, metadata will still be updated",
				"target", targetDir, "error", err)
		} else if err := s.blobs.Move(ctx, item.Path, newPath); err != nil {
			s.logger.Warn("blob move failed, metadata will still be updated",
				"from", item.Path, "to", newPath, "error", err)
		}
	}

	updated, err := s.store.UpdateItemPath(ctx, itemID, newPath, s.clock.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{ID: itemID}
		}
		return nil, &StorageError{Op: "updating item path", Err: err}
	}

	s.audit(ctx, ActionMove, fmt.Sprintf("%s %s -> %s", item.Kind, item.Path, newPath))

	s.logger.Info("item moved", "id", itemID, "from", item.Path, "to", newPath)
	return updated, nil
}

// Delete removes an item. For files, the blob is unlinked best-effort
// (absence is tolerated). Folder deletes remove only the folder's own
// metadata record; descendants are not cascade-removed and the backing
// directory is left in place so their blobs stay reachable.
func (s *Service) Delete(ctx context.Context, id string) (*Item, error) {
	if id == "" {
		return nil, &ValidationError{Message: "missing required field: id"}
	}

	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "loading item", Err: err}
	}
	if item == nil {
		return nil, &NotFoundError{ID: id}
	}

	if !item.IsFolder() {
		if err := s.blobs.Remove(ctx, item.Path); err != nil {
			s.logger.Warn("blob removal failed, metadata will still be deleted",
				"path", item.Path, "error", err)
		}
	}

	deleted, err := s.store.DeleteItem(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &StorageError{Op: "deleting item", Err: err}
	}

	s.audit(ctx, ActionDelete, fmt.Sprintf("%s %s", deleted.Kind, deleted.Path))

	s.logger.Info("item deleted", "id", id, "path", deleted.Path)
	return deleted, nil
}

// AppendAudit assigns id and timestamp to the entry and appends it to the
// log. Empty ip/mac fields get the placeholder identity.
func (s *Service) AppendAudit(ctx context.Context, entry *AuditEntry) (*AuditEntry, error) {
	if entry.Action == "" {
		return nil, &ValidationError{Message: "missing required field: action"}
	}
	if entry.IP == "" {
		entry.IP = PlaceholderIP
	}
	if entry.MAC == "" {
		entry.MAC = PlaceholderMAC
	}
	entry.ID = s.idgen.New()
	entry.Timestamp = s.clock.Now()

	if err := s.store.AppendAudit(ctx, entry); err != nil {
		return nil, &StorageError{Op: "appending audit entry", Err: err}
	}

	if s.notifier != nil {
		s.notifier.Notify(entry)
	}
	return entry, nil
}

// RecentAudit returns the most recent audit entries, newest first.
// limit values outside (0, DefaultAuditLimit] are clamped to the default.
func (s *Service) RecentAudit(ctx context.Context, limit int) ([]*AuditEntry, error) {
	if limit <= 0 || limit > DefaultAuditLimit {
		limit = DefaultAuditLimit
	}
	entries, err := s.store.RecentAudit(ctx, limit)
	if err != nil {
		return nil, &StorageError{Op: "listing audit entries", Err: err}
	}
	return entries, nil
}

// checkSibling rejects the operation when a direct child of dir with the
// same name and kind already exists.
func (s *Service) checkSibling(ctx context.Context, dir, name string, kind ItemKind) error {
	children, err := s.store.ListChildren(ctx, dir)
	if err != nil {
		return &StorageError{Op: "checking siblings", Err: err}
	}
	if FindSibling(children, dir, name, kind) != nil {
		return &ConflictError{Name: name, Kind: kind, Dir: dir}
	}
	return nil
}

// audit records a mutation in the audit trail. Log-after-action: a failed
// append never fails the mutation that triggered it.
func (s *Service) audit(ctx context.Context, action, details string) {
	entry := &AuditEntry{
		IP:      PlaceholderIP,
		MAC:     PlaceholderMAC,
		Action:  action,
		Details: details,
	}
	if _, err := s.AppendAudit(ctx, entry); err != nil {
		s.logger.Warn("audit append failed", "action", action, "error", err)
	}
}
