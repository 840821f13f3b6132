// Package source provides source-tree providers for the analyzer: a local
// filesystem walk and a GitHub API client. Both expose the same capability
// interface, so the graph builder and scorer never know which one they run
// against.
package source

import (
	"context"
)

// Kind distinguishes tree entries
type Kind string

const (
	// KindFile is a regular file entry
	KindFile Kind = "file"
	// KindDir is a directory entry
	KindDir Kind = "dir"
)

// FileInfo is one entry of a tree listing, with a canonical repo-relative path
type FileInfo struct {
	Path string
	Kind Kind
}

// Provider is the capability interface the analysis engine depends on.
// Implementations must return canonical repo-relative POSIX paths and a
// deterministic listing order within one run.
type Provider interface {
	// ListFiles enumerates every entry under the root with excluded
	// directories pruned. Called once per run.
	ListFiles(ctx context.Context) ([]FileInfo, error)

	// ReadFile returns the contents of a canonical path. A missing or
	// unreadable file yields an error carrying the SOURCE_UNREADABLE code;
	// callers treat that as "no content" and continue.
	ReadFile(ctx context.Context, path string) (string, error)

	// Root describes the analyzed tree for logs and report provenance.
	Root() string
}
