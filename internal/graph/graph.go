// Package graph builds the import-dependency graph of a JavaScript/
// TypeScript tree: discovery seeds a FIFO worklist, every file's imports are
// extracted and resolved, and internal resolutions may requeue files that
// discovery never saw. Back-references are populated in a finalization pass
// after the worklist drains.
package graph

import (
	"depscope/internal/resolve"
)

// ImportEdge records one import of a SourceFile. Exactly one of Resolved,
// Library or Error is set, matching the edge type.
type ImportEdge struct {
	Type     resolve.Kind `json:"type"`
	Path     string       `json:"path"`               // raw import string as written
	Resolved string       `json:"resolved,omitempty"` // target path for internal edges
	Library  string       `json:"library,omitempty"`  // package identity for external edges
	Error    string       `json:"error,omitempty"`    // reason code for unresolved edges
}

// SourceFile is one node of the graph, keyed by repo-relative path.
// ImportedBy is populated during finalization, in the discovery order of the
// importing files, each importer exactly once.
type SourceFile struct {
	Path       string       `json:"path"`
	Imports    []ImportEdge `json:"imports"`
	ImportedBy []string     `json:"imported_by"`
}

// Status describes how a build run ended
type Status string

const (
	// StatusAnalyzed means the worklist drained and back-references are complete
	StatusAnalyzed Status = "analyzed"
	// StatusCancelled means the run was aborted; the graph is partial and
	// back-references were not finalized
	StatusCancelled Status = "cancelled"
)

// DependencyGraph is the complete analysis result: all discovered files, a
// derived adjacency view, and external-library usage counts.
type DependencyGraph struct {
	// Files maps path -> node for every processed file
	Files map[string]*SourceFile

	// Dependencies is the adjacency view: importer -> imported paths,
	// insertion-ordered and deduplicated. Kept in sync with edge additions.
	Dependencies map[string][]string

	// ExternalLibraries counts import occurrences per external package
	ExternalLibraries map[string]int

	// Status reports whether the build ran to completion
	Status Status

	order   []string            // file insertion order
	depSets map[string]map[string]bool
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Files:             make(map[string]*SourceFile),
		Dependencies:      make(map[string][]string),
		ExternalLibraries: make(map[string]int),
		depSets:           make(map[string]map[string]bool),
	}
}

// AddFile registers a node for path if absent and returns it.
func (g *DependencyGraph) AddFile(path string) *SourceFile {
	if f, ok := g.Files[path]; ok {
		return f
	}
	f := &SourceFile{
		Path:       path,
		Imports:    []ImportEdge{},
		ImportedBy: []string{},
	}
	g.Files[path] = f
	g.order = append(g.order, path)
	return f
}

// Paths returns all file paths in insertion (discovery) order.
func (g *DependencyGraph) Paths() []string {
	return g.order
}

// Len returns the number of files in the graph.
func (g *DependencyGraph) Len() int {
	return len(g.order)
}

// AddInternalEdge records that from imports target: the edge joins from's
// import list and the adjacency view gains target at most once.
func (g *DependencyGraph) AddInternalEdge(from, rawImport, target string) {
	f := g.AddFile(from)
	f.Imports = append(f.Imports, ImportEdge{
		Type:     resolve.Internal,
		Path:     rawImport,
		Resolved: target,
	})

	set := g.depSets[from]
	if set == nil {
		set = make(map[string]bool)
		g.depSets[from] = set
	}
	if !set[target] {
		set[target] = true
		g.Dependencies[from] = append(g.Dependencies[from], target)
	}
}

// AddExternalEdge records an external-library import.
func (g *DependencyGraph) AddExternalEdge(from, rawImport, library string) {
	f := g.AddFile(from)
	f.Imports = append(f.Imports, ImportEdge{
		Type:    resolve.External,
		Path:    rawImport,
		Library: library,
	})
	g.ExternalLibraries[library]++
}

// AddUnresolvedEdge records an import that could not be mapped to a file.
func (g *DependencyGraph) AddUnresolvedEdge(from, rawImport, reason string) {
	f := g.AddFile(from)
	f.Imports = append(f.Imports, ImportEdge{
		Type:  resolve.Unresolved,
		Path:  rawImport,
		Error: reason,
	})
}

// DependsOn reports whether from has an internal edge to target.
func (g *DependencyGraph) DependsOn(from, target string) bool {
	return g.depSets[from][target]
}

// TotalDependencies counts the deduplicated internal edges.
func (g *DependencyGraph) TotalDependencies() int {
	total := 0
	for _, deps := range g.Dependencies {
		total += len(deps)
	}
	return total
}

// finalize populates every imported_by back-reference from the adjacency
// view. It must run only after the worklist has drained: a file discovered
// late still receives back-references from files processed earlier, which is
// why back-references are not maintained incrementally.
func (g *DependencyGraph) finalize() {
	for _, from := range g.order {
		for _, target := range g.Dependencies[from] {
			if t, ok := g.Files[target]; ok {
				t.ImportedBy = append(t.ImportedBy, from)
			}
		}
	}
	g.Status = StatusAnalyzed
}
