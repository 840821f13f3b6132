package graph

import (
	"context"
	"strings"

	"depscope/internal/aliases"
	derrors "depscope/internal/errors"
	"depscope/internal/logging"
	"depscope/internal/resolve"
	"depscope/internal/scan"
	"depscope/internal/source"
)

// Builder orchestrates discovery, extraction and resolution into a
// DependencyGraph. One Builder performs one run; it is not reusable.
type Builder struct {
	provider   source.Provider
	extensions []string
	logger     *logging.Logger

	idx      *source.FileIndex
	table    *aliases.Table
	resolver *resolve.Resolver
}

// NewBuilder creates a builder over the given provider. extensions filters
// the discovery seed queue; a nil slice uses the resolver's default set.
func NewBuilder(provider source.Provider, extensions []string, logger *logging.Logger) *Builder {
	if len(extensions) == 0 {
		extensions = resolve.Extensions
	}
	return &Builder{
		provider:   provider,
		extensions: extensions,
		logger:     logger,
	}
}

// AliasTable returns the alias table loaded during Build, for diagnostics.
func (b *Builder) AliasTable() *aliases.Table {
	return b.table
}

// Index returns the file index built during Build.
func (b *Builder) Index() *source.FileIndex {
	return b.idx
}

// Build runs the full pipeline: list the tree, load aliases, drain the
// worklist, finalize back-references. Cancellation between files returns the
// partial graph with StatusCancelled and skips finalization; a cancelled
// result is never reported as analyzed. Per-file read and per-edge
// resolution failures degrade to warnings and unresolved edges.
func (b *Builder) Build(ctx context.Context) (*DependencyGraph, error) {
	entries, err := b.provider.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	b.idx = source.NewFileIndex(entries)
	b.table = aliases.Load(ctx, b.provider, b.logger)
	b.resolver = resolve.New(b.idx, b.table, b.extensions)

	g := NewDependencyGraph()

	// Seed the worklist with every discovered source file, listing order
	var queue []string
	for _, path := range b.idx.Files() {
		if b.isSourceFile(path) {
			queue = append(queue, path)
		}
	}

	b.logger.Info("Starting graph build", logging.Fields{
		"root":    b.provider.Root(),
		"files":   len(queue),
		"aliases": b.table.Len(),
	})

	processed := make(map[string]bool)

	for len(queue) > 0 {
		if ctx.Err() != nil {
			g.Status = StatusCancelled
			b.logger.Warn("Graph build cancelled", logging.Fields{
				"processed": len(processed),
				"pending":   len(queue),
			})
			return g, nil
		}

		path := queue[0]
		queue = queue[1:]

		// Reprocessing is a no-op, which guarantees termination even with
		// cyclic imports
		if processed[path] {
			continue
		}
		processed[path] = true

		queue = append(queue, b.processFile(ctx, g, path, processed)...)
	}

	g.finalize()

	b.logger.Info("Graph build complete", logging.Fields{
		"files":        g.Len(),
		"dependencies": g.TotalDependencies(),
	})

	return g, nil
}

// processFile extracts and resolves one file's imports, returning newly
// discovered internal targets for the worklist.
func (b *Builder) processFile(ctx context.Context, g *DependencyGraph, path string, processed map[string]bool) []string {
	g.AddFile(path)

	content, err := b.provider.ReadFile(ctx, path)
	if err != nil {
		if derrors.IsCode(err, derrors.Cancelled) {
			return nil
		}
		// Unreadable files yield an empty import list, never abort the run
		b.logger.Warn("Could not extract imports", logging.Fields{
			"file":  path,
			"error": err.Error(),
		})
		return nil
	}

	var requeue []string
	for _, rawImport := range scan.Extract(content) {
		target := b.resolver.Resolve(rawImport, path)

		switch target.Kind {
		case resolve.Internal:
			g.AddInternalEdge(path, rawImport, target.Path)
			if !processed[target.Path] {
				requeue = append(requeue, target.Path)
			}
		case resolve.External:
			g.AddExternalEdge(path, rawImport, target.Library)
		case resolve.Unresolved:
			g.AddUnresolvedEdge(path, rawImport, target.Reason)
		}
	}

	return requeue
}

func (b *Builder) isSourceFile(path string) bool {
	for _, ext := range b.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
