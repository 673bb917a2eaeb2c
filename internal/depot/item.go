package depot

import (
	"strings"
	"time"
)

// Separator is the path separator used in materialized paths.
const Separator = "/"

// RootPath is the path of the root directory.
const RootPath = "/"

// ItemKind distinguishes files from folders. Immutable after creation.
type ItemKind string

const (
	KindFile   ItemKind = "file"
	KindFolder ItemKind = "folder"
)

// Item is a single entry in the virtual filesystem: a file or a folder.
//
// The hierarchy is encoded solely in Path, a materialized absolute path.
// A folder's path always ends with the separator ("/docs/"); a file's path
// never does ("/docs/a.txt"). There are no parent pointers; containment is
// reconstructed from path strings.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         ItemKind  `json:"type"`
	Size         *int64    `json:"size,omitempty"`
	Path         string    `json:"path"`
	MimeType     string    `json:"mime_type,omitempty"`
	Content      string    `json:"content,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// IsFolder returns true if the item is a folder.
func (i *Item) IsFolder() bool {
	return i.Kind == KindFolder
}

// ChildPath returns the path an item with the given name and kind has as a
// direct child of dir. dir must be a directory path (ending in Separator).
func ChildPath(dir, name string, kind ItemKind) string {
	p := dir + name
	if kind == KindFolder {
		p += Separator
	}
	return p
}

// ParentDir returns the directory path (ending in Separator) that contains
// the given item path. The parent of a root-level item is RootPath.
func ParentDir(path string) string {
	trimmed := strings.TrimSuffix(path, Separator)
	idx := strings.LastIndex(trimmed, Separator)
	if idx < 0 {
		return RootPath
	}
	return trimmed[:idx+1]
}

// IsDirPath reports whether p is a well-formed absolute directory path:
// it begins and ends with the separator.
func IsDirPath(p string) bool {
	return strings.HasPrefix(p, Separator) && strings.HasSuffix(p, Separator)
}
