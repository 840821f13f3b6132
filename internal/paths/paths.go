// Package paths normalizes file paths to the repo-relative POSIX form used
// as graph keys. All graph, scoring, and output code works exclusively on
// these canonical paths; only the local source provider touches OS paths.
package paths

import (
	"path"
	"path/filepath"
	"strings"
)

// Canonical converts a path to the canonical repo-relative form:
// forward slashes, no leading "./" or "/", cleaned.
func Canonical(p string) string {
	p = filepath.ToSlash(p)
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// Rel makes an absolute OS path relative to repoRoot in canonical form.
func Rel(repoRoot, absPath string) (string, error) {
	rel, err := filepath.Rel(repoRoot, absPath)
	if err != nil {
		return "", err
	}
	return Canonical(rel), nil
}

// Join joins canonical path elements, producing a canonical path.
func Join(elems ...string) string {
	return Canonical(path.Join(elems...))
}

// Dir returns the canonical directory of a canonical path ("" for top level).
func Dir(p string) string {
	d := path.Dir(p)
	if d == "." || d == "/" {
		return ""
	}
	return d
}

// Stem returns the file name without its extension.
func Stem(p string) string {
	base := path.Base(p)
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// Segments splits a canonical path into its parts.
func Segments(p string) []string {
	p = Canonical(p)
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// ToOS converts a canonical path to an OS path rooted at repoRoot.
func ToOS(repoRoot, canonical string) string {
	parts := Segments(canonical)
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// HasDir reports whether the canonical path contains the given directory
// name as a full segment, e.g. HasDir("src/pages/index.tsx", "pages").
func HasDir(p, dir string) bool {
	for _, seg := range Segments(Dir(p)) {
		if seg == dir {
			return true
		}
	}
	return false
}
