package depot

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrStorage    = errors.New("storage failure")
)

// ValidationError indicates a required field is missing or malformed.
// Reported before any side effect is performed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is allows errors.Is() to match against ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError indicates a referenced identifier is absent from the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("item not found: %s", e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError indicates a sibling with the same name and kind already
// exists under the target directory.
type ConflictError struct {
	Name string
	Kind ItemKind
	Dir  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists in %s", e.Kind, e.Name, e.Dir)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// StorageError indicates the backing medium (disk, database, object store)
// failed. Operation context is carried in Op.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
