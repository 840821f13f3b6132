package source

import (
	"reflect"
	"testing"
)

func listing(paths ...string) []FileInfo {
	entries := make([]FileInfo, len(paths))
	for i, p := range paths {
		entries[i] = FileInfo{Path: p, Kind: KindFile}
	}
	return entries
}

func TestFileIndexLookups(t *testing.T) {
	idx := NewFileIndex(listing(
		"package.json",
		"src/app.js",
		"src/lib/util.js",
		"src/lib/util.js", // duplicate entries collapse
	))

	if idx.Len() != 3 {
		t.Errorf("Len = %d, want 3", idx.Len())
	}
	if !idx.Exists("src/app.js") {
		t.Error("expected src/app.js to exist")
	}
	if idx.Exists("src/missing.js") {
		t.Error("src/missing.js should not exist")
	}
	if !idx.IsDir("src") || !idx.IsDir("src/lib") {
		t.Error("expected src and src/lib to be directories")
	}
	if !idx.IsDir("") {
		t.Error("the root must always be a directory")
	}
	if idx.IsDir("src/app.js") {
		t.Error("a file is not a directory")
	}
}

func TestFileIndexDirFiles(t *testing.T) {
	idx := NewFileIndex(listing("src/b.js", "src/a.js", "src/sub/c.js"))

	got := idx.DirFiles("src")
	want := []string{"b.js", "a.js"} // listing order, not sorted
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DirFiles = %v, want %v", got, want)
	}
}

func TestFileIndexSubDirs(t *testing.T) {
	idx := NewFileIndex(listing("app/page.js", "app/blog/page.js", "app/(auth)/login/page.js", "lib/x.js"))

	got := idx.SubDirs("app")
	want := []string{"blog", "(auth)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SubDirs(app) = %v, want %v", got, want)
	}

	root := idx.SubDirs("")
	wantRoot := []string{"app", "lib"}
	if !reflect.DeepEqual(root, wantRoot) {
		t.Errorf("SubDirs(\"\") = %v, want %v", root, wantRoot)
	}
}

func TestFindBySegment(t *testing.T) {
	idx := NewFileIndex(listing("c.js", "src/a.js", "src/lib/b.js"))

	tests := []struct {
		importPath string
		want       string
	}{
		{"lib/b.js", "src/lib/b.js"},
		{"c.js", "c.js"},
		{"lib", "src/lib"}, // directories match too
		{"nope/missing.js", ""},
	}

	for _, tt := range tests {
		if got := idx.FindBySegment(tt.importPath); got != tt.want {
			t.Errorf("FindBySegment(%q) = %q, want %q", tt.importPath, got, tt.want)
		}
	}
}
