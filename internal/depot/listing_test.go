package depot

import "testing"

func fixtureItems() []*Item {
	return []*Item{
		{ID: "d1", Name: "docs", Kind: KindFolder, Path: "/docs/"},
		{ID: "d2", Name: "reports", Kind: KindFolder, Path: "/docs/reports/"},
		{ID: "f1", Name: "a.txt", Kind: KindFile, Path: "/a.txt"},
		{ID: "f2", Name: "b.txt", Kind: KindFile, Path: "/docs/b.txt"},
		{ID: "f3", Name: "deep.txt", Kind: KindFile, Path: "/docs/reports/deep.txt"},
	}
}

func ids(items []*Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestDirectChildren(t *testing.T) {
	items := fixtureItems()

	tests := []struct {
		name string
		dir  string
		want []string
	}{
		{"root lists only top level", "/", []string{"d1", "f1"}},
		{"one level down", "/docs/", []string{"d2", "f2"}},
		{"two levels down", "/docs/reports/", []string{"f3"}},
		{"empty directory", "/other/", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(DirectChildren(items, tt.dir))
			if len(got) != len(tt.want) {
				t.Fatalf("children = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("children = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestDirectChildren_ExcludesDeepDescendants(t *testing.T) {
	// A name that makes a deep path share a prefix with a root child:
	// prefix matching would wrongly include it, equality must not.
	items := []*Item{
		{ID: "f1", Name: "a", Kind: KindFile, Path: "/a"},
		{ID: "f2", Name: "a", Kind: KindFile, Path: "/x/a"},
		{ID: "d1", Name: "x", Kind: KindFolder, Path: "/x/"},
	}

	got := ids(DirectChildren(items, "/"))
	if len(got) != 2 || got[0] != "f1" || got[1] != "d1" {
		t.Errorf("children of / = %v, want [f1 d1]", got)
	}
}

func TestDirectChildren_SameNameDifferentKinds(t *testing.T) {
	// "/docs" the file and "/docs/" the folder are distinct paths
	items := []*Item{
		{ID: "f1", Name: "docs", Kind: KindFile, Path: "/docs"},
		{ID: "d1", Name: "docs", Kind: KindFolder, Path: "/docs/"},
	}

	got := ids(DirectChildren(items, "/"))
	if len(got) != 2 {
		t.Fatalf("children = %v, want both items", got)
	}
}

func TestFindSibling(t *testing.T) {
	items := fixtureItems()

	t.Run("finds existing file", func(t *testing.T) {
		got := FindSibling(items, "/docs/", "b.txt", KindFile)
		if got == nil || got.ID != "f2" {
			t.Errorf("FindSibling() = %v, want f2", got)
		}
	})

	t.Run("finds existing folder", func(t *testing.T) {
		got := FindSibling(items, "/docs/", "reports", KindFolder)
		if got == nil || got.ID != "d2" {
			t.Errorf("FindSibling() = %v, want d2", got)
		}
	})

	t.Run("kind must match", func(t *testing.T) {
		if got := FindSibling(items, "/docs/", "b.txt", KindFolder); got != nil {
			t.Errorf("FindSibling() = %v, want nil for kind mismatch", got)
		}
	})

	t.Run("absent name", func(t *testing.T) {
		if got := FindSibling(items, "/docs/", "missing.txt", KindFile); got != nil {
			t.Errorf("FindSibling() = %v, want nil", got)
		}
	})
}
