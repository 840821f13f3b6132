// Package resolve maps raw import strings to concrete files in the analyzed
// tree. Resolution is best-effort: imports that cannot be mapped yield an
// unresolved outcome with a reason code, never an error that aborts the run.
package resolve

import (
	"strings"

	"depscope/internal/aliases"
	"depscope/internal/paths"
	"depscope/internal/source"
)

// Kind classifies a resolution outcome
type Kind string

const (
	// Internal resolved to a file inside the analyzed repository
	Internal Kind = "internal"
	// External resolved to a third-party package, never traversed further
	External Kind = "external"
	// Unresolved could not be mapped to any file
	Unresolved Kind = "unresolved"
)

// Unresolved reason codes. The distinction matters diagnostically: a base
// path was computed but no file matched, versus no base path at all.
const (
	ReasonFileNotFound = "File not found"
	ReasonNoBasePath   = "Could not resolve import path"
)

// Extensions tried during file inference, in order.
var Extensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

// routingDirs are the framework directories where dynamic-route bracket
// matching applies.
var routingDirs = []string{"pages", "app"}

// Target is the outcome of resolving one import.
type Target struct {
	Kind    Kind
	Path    string // resolved repo-relative path when Kind == Internal
	Library string // package identity when Kind == External
	Reason  string // reason code when Kind == Unresolved
}

// Resolver resolves import strings against one tree listing and one alias
// table, both immutable for the duration of a run.
type Resolver struct {
	idx   *source.FileIndex
	table *aliases.Table
	exts  []string
}

// New creates a resolver. A nil extension list falls back to the default set.
func New(idx *source.FileIndex, table *aliases.Table, exts []string) *Resolver {
	if len(exts) == 0 {
		exts = Extensions
	}
	return &Resolver{idx: idx, table: table, exts: exts}
}

// Resolve maps an import written in fromFile to a Target.
func (r *Resolver) Resolve(importPath, fromFile string) Target {
	if IsExternal(importPath, r.table) {
		return Target{Kind: External, Library: LibraryName(importPath)}
	}

	base, ok := r.basePath(importPath, fromFile)
	if !ok {
		return Target{Kind: Unresolved, Reason: ReasonNoBasePath}
	}

	if file, ok := r.findFile(base); ok {
		return Target{Kind: Internal, Path: file}
	}

	return Target{Kind: Unresolved, Reason: ReasonFileNotFound}
}

// IsExternal reports whether an import path refers to a third-party package:
// not relative, not absolute, and matching no configured alias prefix.
func IsExternal(importPath string, table *aliases.Table) bool {
	if strings.HasPrefix(importPath, ".") || strings.HasPrefix(importPath, "/") {
		return false
	}
	if _, ok := table.Match(importPath); ok {
		return false
	}
	return true
}

// LibraryName returns the package identity of an external import: the
// top-level package name, or a two-segment unit for scoped packages
// ("@scope/pkg/sub" -> "@scope/pkg").
func LibraryName(importPath string) string {
	parts := strings.Split(importPath, "/")
	if strings.HasPrefix(importPath, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// basePath computes the extension-less candidate path for a non-external
// import. Alias substitution wins first (first-match order), then relative
// resolution against the importing file's directory, then absolute
// resolution against the repository root, then the repository-wide segment
// search for bare imports.
func (r *Resolver) basePath(importPath, fromFile string) (string, bool) {
	if rule, ok := r.table.Match(importPath); ok {
		return paths.Canonical(strings.Replace(importPath, rule.Alias, rule.Target, 1)), true
	}

	if strings.HasPrefix(importPath, ".") {
		return paths.Join(paths.Dir(fromFile), importPath), true
	}

	if strings.HasPrefix(importPath, "/") {
		return paths.Canonical(importPath), true
	}

	if found := r.idx.FindBySegment(importPath); found != "" {
		return found, true
	}

	return "", false
}

// findFile turns a base path into a concrete file: exact path first, then
// each supported extension appended, then an index file when the base is a
// directory, then the dynamic-route bracket match for paths under a routing
// directory.
func (r *Resolver) findFile(base string) (string, bool) {
	if r.idx.Exists(base) {
		return base, true
	}

	for _, ext := range r.exts {
		if r.idx.Exists(base + ext) {
			return base + ext, true
		}
	}

	if r.idx.IsDir(base) {
		for _, ext := range r.exts {
			index := paths.Join(base, "index"+ext)
			if r.idx.Exists(index) {
				return index, true
			}
		}
	}

	if file, ok := r.matchDynamicRoute(base); ok {
		return file, true
	}

	return "", false
}

// matchDynamicRoute approximates Next.js dynamic-route resolution: for a
// base under pages/ or app/, a sibling whose bracket-wrapped name echoes the
// base name matches. First sibling in listing order wins.
func (r *Resolver) matchDynamicRoute(base string) (string, bool) {
	under := false
	for _, dir := range routingDirs {
		if paths.HasDir(base, dir) {
			under = true
			break
		}
	}
	if !under {
		return "", false
	}

	name := paths.Stem(base)
	parent := paths.Dir(base)

	for _, sibling := range r.idx.DirFiles(parent) {
		stem := paths.Stem(sibling)
		inner, ok := bracketContent(stem)
		if !ok {
			continue
		}
		if strings.Contains(inner, name) {
			return paths.Join(parent, sibling), true
		}
	}

	return "", false
}

// bracketContent unwraps [param], [...param] and [[...param]] names,
// returning the inner text.
func bracketContent(stem string) (string, bool) {
	if !strings.HasPrefix(stem, "[") || !strings.HasSuffix(stem, "]") {
		return "", false
	}
	inner := strings.TrimPrefix(stem, "[")
	inner = strings.TrimSuffix(inner, "]")
	inner = strings.TrimPrefix(inner, "[")
	inner = strings.TrimSuffix(inner, "]")
	inner = strings.TrimPrefix(inner, "...")
	if inner == "" {
		return "", false
	}
	return inner, true
}
