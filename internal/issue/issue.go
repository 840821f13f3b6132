// Package issue assembles the context document for one issue: the
// repository fingerprint, the ranked relevant files with excerpted content,
// and the dependency relationships among the selected files.
package issue

import (
	"context"

	"depscope/internal/graph"
	"depscope/internal/insights"
	"depscope/internal/logging"
	"depscope/internal/relevance"
	"depscope/internal/source"
)

// Fingerprint is the concise repository summary attached to every issue
// context. FileTypeCounts lists only non-empty categories.
type Fingerprint struct {
	TotalFiles           int                      `json:"total_files"`
	ArchitecturePatterns []string                 `json:"architecture_patterns"`
	Structure            insights.StructureFlags  `json:"structure"`
	FileTypeCounts       []insights.CategoryCount `json:"file_type_counts"`
	CircularDependencies int                      `json:"circular_dependencies"`
}

// Relationships names the dependency edges of one selected file that stay
// inside the selected set. Edges leaving the set are not reported.
type Relationships struct {
	Imports    []string `json:"imports,omitempty"`
	ImportedBy []string `json:"imported_by,omitempty"`
}

// RelevantFile is one ranked selection with its excerpted content.
type RelevantFile struct {
	Path          string         `json:"path"`
	Score         float64        `json:"score"`
	Content       string         `json:"content"`
	Relationships *Relationships `json:"relationships,omitempty"`
}

// Context is the complete issue-context document.
type Context struct {
	Issue          string         `json:"issue"`
	Keywords       []string       `json:"keywords,omitempty"`
	RepositoryInfo Fingerprint    `json:"repository_info"`
	RelevantFiles  []RelevantFile `json:"relevant_files"`
	Error          string         `json:"error,omitempty"`
}

// BuildFingerprint derives the repository fingerprint from an insight report.
func BuildFingerprint(g *graph.DependencyGraph, report *insights.Report) Fingerprint {
	return Fingerprint{
		TotalFiles:           g.Len(),
		ArchitecturePatterns: report.Architecture.Patterns,
		Structure:            report.Architecture.Structure,
		FileTypeCounts:       report.Metadata.CategoryCounts,
		CircularDependencies: len(report.Hotspots),
	}
}

// Build ranks the graph against issueText and assembles the full context.
// An issue yielding no usable keywords produces a context carrying only the
// fingerprint and an explanatory error, not a failure.
func Build(ctx context.Context, g *graph.DependencyGraph, report *insights.Report, scorer *relevance.Scorer, provider source.Provider, logger *logging.Logger, issueText string, maxFiles int) (*Context, error) {
	selected, keywords, err := scorer.FindRelevantFiles(ctx, issueText, maxFiles)
	if err != nil {
		return nil, err
	}

	return BuildFromSelection(ctx, g, report, provider, logger, issueText, keywords, selected)
}

// BuildFromSelection assembles the context for an already-chosen file set,
// used both by the algorithmic path and by a model-refined selection.
func BuildFromSelection(ctx context.Context, g *graph.DependencyGraph, report *insights.Report, provider source.Provider, logger *logging.Logger, issueText string, keywords []string, selected []relevance.ScoredFile) (*Context, error) {
	out := &Context{
		Issue:          issueText,
		Keywords:       keywords,
		RepositoryInfo: BuildFingerprint(g, report),
	}

	if len(selected) == 0 {
		out.Error = "Could not identify relevant files for this issue"
		return out, nil
	}

	inSet := make(map[string]bool, len(selected))
	for _, f := range selected {
		inSet[f.Path] = true
	}

	for _, f := range selected {
		rf := RelevantFile{Path: f.Path, Score: f.Score}

		content, err := provider.ReadFile(ctx, f.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			logger.Warn("Could not read selected file", logging.Fields{
				"file":  f.Path,
				"error": err.Error(),
			})
			rf.Content = "Error reading file: " + err.Error()
		} else {
			rf.Content = relevance.Excerpt(content, keywords)
		}

		rf.Relationships = relationships(g, f.Path, inSet)
		out.RelevantFiles = append(out.RelevantFiles, rf)
	}

	return out, nil
}

// relationships filters one file's edges to those inside the selected set.
func relationships(g *graph.DependencyGraph, path string, inSet map[string]bool) *Relationships {
	var rel Relationships

	for _, target := range g.Dependencies[path] {
		if inSet[target] {
			rel.Imports = append(rel.Imports, target)
		}
	}
	if f, ok := g.Files[path]; ok {
		for _, importer := range f.ImportedBy {
			if inSet[importer] {
				rel.ImportedBy = append(rel.ImportedBy, importer)
			}
		}
	}

	if len(rel.Imports) == 0 && len(rel.ImportedBy) == 0 {
		return nil
	}
	return &rel
}
