package source

import (
	"sort"
	"strings"

	"depscope/internal/paths"
)

// FileIndex is an in-memory view of one tree listing. The path resolver
// consults it for existence, directory, and sibling checks so that local and
// remote trees resolve identically.
type FileIndex struct {
	files   []string // listing order
	fileSet map[string]bool
	dirs    []string // order of first appearance
	dirSet  map[string]bool
	byDir   map[string][]string // dir -> file base names, listing order
}

// NewFileIndex builds an index from a tree listing. Directories are taken
// from explicit dir entries and derived from file path prefixes, in order of
// first appearance; the repository root is always present as "".
func NewFileIndex(entries []FileInfo) *FileIndex {
	idx := &FileIndex{
		fileSet: make(map[string]bool),
		dirSet:  make(map[string]bool),
		byDir:   make(map[string][]string),
	}
	idx.addDir("")

	for _, e := range entries {
		p := paths.Canonical(e.Path)
		if p == "" {
			continue
		}
		if e.Kind == KindDir {
			idx.addDirChain(p)
			continue
		}
		if idx.fileSet[p] {
			continue
		}
		dir := paths.Dir(p)
		idx.addDirChain(dir)
		idx.files = append(idx.files, p)
		idx.fileSet[p] = true
		idx.byDir[dir] = append(idx.byDir[dir], p[strings.LastIndex(p, "/")+1:])
	}

	return idx
}

func (x *FileIndex) addDirChain(dir string) {
	if dir == "" {
		return
	}
	segs := paths.Segments(dir)
	for i := range segs {
		x.addDir(strings.Join(segs[:i+1], "/"))
	}
}

func (x *FileIndex) addDir(dir string) {
	if x.dirSet[dir] {
		return
	}
	x.dirSet[dir] = true
	x.dirs = append(x.dirs, dir)
}

// Files returns every file path in listing order.
func (x *FileIndex) Files() []string {
	return x.files
}

// Len returns the number of files in the index.
func (x *FileIndex) Len() int {
	return len(x.files)
}

// Exists reports whether a file exists at the canonical path.
func (x *FileIndex) Exists(p string) bool {
	return x.fileSet[paths.Canonical(p)]
}

// IsDir reports whether the canonical path is a known directory.
func (x *FileIndex) IsDir(p string) bool {
	return x.dirSet[paths.Canonical(p)]
}

// DirFiles returns the base names of files directly inside dir, listing order.
func (x *FileIndex) DirFiles(dir string) []string {
	return x.byDir[paths.Canonical(dir)]
}

// SubDirs returns the base names of directories directly inside dir, in
// order of first appearance.
func (x *FileIndex) SubDirs(dir string) []string {
	dir = paths.Canonical(dir)
	var out []string
	for _, d := range x.dirs {
		if d == "" {
			continue
		}
		if paths.Dir(d) == dir {
			out = append(out, d[strings.LastIndex(d, "/")+1:])
		}
	}
	return out
}

// FindBySegment performs the best-effort repository-wide search for a bare
// import: the first directory (in discovery order, root first) under which
// the import path names an existing file or directory wins. Returns the base
// path, or "" when nothing matches.
func (x *FileIndex) FindBySegment(importPath string) string {
	for _, dir := range x.dirs {
		candidate := paths.Join(dir, importPath)
		if x.fileSet[candidate] || (candidate != "" && x.dirSet[candidate]) {
			return candidate
		}
	}
	return ""
}

// SortedCopy returns the file paths sorted lexically. Used by concurrent
// providers to restore a deterministic order after fan-out listing.
func SortedCopy(entries []FileInfo) []FileInfo {
	out := make([]FileInfo, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
