package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	gitignore "github.com/sabhiram/go-gitignore"

	"depscope/internal/config"
	derrors "depscope/internal/errors"
	"depscope/internal/logging"
	"depscope/internal/paths"
)

// LocalProvider walks a local directory tree. Listing order is the lexical
// order of filepath.WalkDir, which is deterministic for an unchanged tree.
type LocalProvider struct {
	root     string
	excludes map[string]bool
	globs    []glob.Glob
	ignore   *gitignore.GitIgnore
	logger   *logging.Logger
}

// NewLocalProvider creates a provider rooted at root. Exclude directories
// come from the discovery config; exclude globs and .gitignore support are
// the stricter discovery variants and default off.
func NewLocalProvider(root string, cfg config.DiscoveryConfig, logger *logging.Logger) (*LocalProvider, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, derrors.New(derrors.InputInvalid, "project path is not a directory: "+root)
	}

	excludes := make(map[string]bool, len(cfg.ExcludeDirs))
	for _, d := range cfg.ExcludeDirs {
		excludes[d] = true
	}

	globs := make([]glob.Glob, 0, len(cfg.ExcludeGlobs))
	for _, pattern := range cfg.ExcludeGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			logger.Warn("Skipping invalid exclude glob", logging.Fields{
				"pattern": pattern,
				"error":   err.Error(),
			})
			continue
		}
		globs = append(globs, g)
	}

	var ignore *gitignore.GitIgnore
	if cfg.UseGitignore {
		ign, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
		if err == nil {
			ignore = ign
		}
	}

	return &LocalProvider{
		root:     root,
		excludes: excludes,
		globs:    globs,
		ignore:   ignore,
		logger:   logger,
	}, nil
}

// Root returns the local root directory.
func (p *LocalProvider) Root() string {
	return p.root
}

// ListFiles walks the tree, pruning excluded directories. Every surviving
// file is listed regardless of extension; the builder filters its seed queue
// by extension, but the resolver may still target non-source files.
func (p *LocalProvider) ListFiles(ctx context.Context) ([]FileInfo, error) {
	var entries []FileInfo

	err := filepath.WalkDir(p.root, func(osPath string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable subtree degrades to "not listed", never fatal
			p.logger.Warn("Skipping unreadable entry", logging.Fields{
				"path":  osPath,
				"error": err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := paths.Rel(p.root, osPath)
		if relErr != nil || rel == "" {
			return nil
		}

		if d.IsDir() {
			if p.excludes[d.Name()] || p.matchesExcludes(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if p.matchesExcludes(rel) {
			return nil
		}

		entries = append(entries, FileInfo{Path: rel, Kind: KindFile})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return entries, derrors.Wrap(derrors.Cancelled, "discovery aborted", ctx.Err())
		}
		return nil, err
	}

	return entries, nil
}

func (p *LocalProvider) matchesExcludes(rel string) bool {
	for _, g := range p.globs {
		if g.Match(rel) {
			return true
		}
	}
	if p.ignore != nil && p.ignore.MatchesPath(rel) {
		return true
	}
	return false
}

// ReadFile reads a canonical path from disk.
func (p *LocalProvider) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", derrors.Wrap(derrors.Cancelled, "read aborted", err)
	}

	data, err := os.ReadFile(paths.ToOS(p.root, path))
	if err != nil {
		return "", derrors.Wrap(derrors.SourceUnreadable, "could not read "+path, err)
	}
	return string(data), nil
}
