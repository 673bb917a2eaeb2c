package depot

// DirectChildren filters items to the direct children of the directory dir.
//
// An item is a direct child iff its materialized path equals exactly the
// single-segment template under dir: dir + name for a file, dir + name + "/"
// for a folder. Items nested two or more levels deep never match because
// their paths carry extra segments. This is deliberately an equality test,
// not a prefix test: a prefix test would include deep descendants.
//
// The input order is preserved. SQL-backed stores answer the same question
// with an indexed parent-directory column instead of a full scan; this
// function is the reference semantics and the file-backed implementation.
func DirectChildren(items []*Item, dir string) []*Item {
	children := make([]*Item, 0, len(items))
	for _, item := range items {
		if item.Path == ChildPath(dir, item.Name, item.Kind) {
			children = append(children, item)
		}
	}
	return children
}

// FindSibling returns the item under dir with the given name and kind,
// or nil if no such direct child exists.
func FindSibling(items []*Item, dir, name string, kind ItemKind) *Item {
	want := ChildPath(dir, name, kind)
	for _, item := range items {
		if item.Kind == kind && item.Path == want {
			return item
		}
	}
	return nil
}
