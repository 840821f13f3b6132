// Package analyzer wires the pipeline together: one Engine owns the source
// provider, builds the dependency graph once, and serves every downstream
// operation (insight reports, issue contexts, app-structure trees) from that
// shared build.
package analyzer

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"depscope/internal/appstruct"
	"depscope/internal/config"
	derrors "depscope/internal/errors"
	"depscope/internal/graph"
	"depscope/internal/insights"
	"depscope/internal/issue"
	"depscope/internal/llm"
	"depscope/internal/logging"
	"depscope/internal/relevance"
	"depscope/internal/source"
)

// Result is the full analysis document, the JSON shape of the analyze
// command.
type Result struct {
	FileStructure     map[string]*graph.SourceFile `json:"file_structure"`
	Dependencies      map[string][]string          `json:"dependencies"`
	ExternalLibraries map[string]int               `json:"external_libraries"`
	Status            graph.Status                 `json:"status"`
	Insights          *insights.Report             `json:"insights"`
}

// Engine runs the analysis pipeline over one source tree. The graph build
// happens once per Engine; every operation after that reuses it.
type Engine struct {
	cfg      *config.Config
	logger   *logging.Logger
	provider source.Provider
	builder  *graph.Builder
	runID    string

	buildOnce sync.Once
	g         *graph.DependencyGraph
	buildErr  error

	scorerOnce sync.Once
	scorer     *relevance.Scorer
}

// New creates an engine over a provider.
func New(provider source.Provider, cfg *config.Config, logger *logging.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		builder:  graph.NewBuilder(provider, cfg.Discovery.Extensions, logger),
		runID:    uuid.NewString(),
	}
}

// RunID identifies this engine's analysis run in logs.
func (e *Engine) RunID() string {
	return e.runID
}

// Graph returns the dependency graph, building it on first use.
func (e *Engine) Graph(ctx context.Context) (*graph.DependencyGraph, error) {
	e.buildOnce.Do(func() {
		e.logger.Debug("Starting analysis run", logging.Fields{
			"run_id": e.runID,
			"root":   e.provider.Root(),
		})
		e.g, e.buildErr = e.builder.Build(ctx)
	})
	return e.g, e.buildErr
}

// Analyze builds the graph and derives the full insight document. A
// cancelled build yields the partial document with its cancelled status; the
// caller decides whether partial output is worth writing.
func (e *Engine) Analyze(ctx context.Context) (*Result, error) {
	g, err := e.Graph(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		FileStructure:     g.Files,
		Dependencies:      g.Dependencies,
		ExternalLibraries: g.ExternalLibraries,
		Status:            g.Status,
		Insights:          insights.Analyze(g),
	}, nil
}

// IssueContext ranks the tree against issueText and assembles the issue
// context. When client is non-nil the model refines the file selection; any
// model failure falls back to the algorithmic ranking with a warning.
func (e *Engine) IssueContext(ctx context.Context, issueText string, client *llm.Client) (*issue.Context, error) {
	g, err := e.Graph(ctx)
	if err != nil {
		return nil, err
	}
	report := insights.Analyze(g)
	scorer := e.Scorer(g)
	maxFiles := e.cfg.Scoring.MaxFiles

	if client == nil {
		return issue.Build(ctx, g, report, scorer, e.provider, e.logger, issueText, maxFiles)
	}

	keywords := relevance.ExtractKeywords(issueText)
	picked, err := client.PickRelevantFiles(ctx, issueText, g.Paths(), func(n int) []string {
		shortlist := scorer.PathShortlist(keywords, n)
		paths := make([]string, len(shortlist))
		for i, f := range shortlist {
			paths[i] = f.Path
		}
		return paths
	}, maxFiles)
	if err != nil {
		if derrors.IsCode(err, derrors.Cancelled) {
			return nil, err
		}
		e.logger.Warn("Model selection failed, keeping algorithmic ranking", logging.Fields{
			"error": err.Error(),
		})
		return issue.Build(ctx, g, report, scorer, e.provider, e.logger, issueText, maxFiles)
	}

	selected := make([]relevance.ScoredFile, len(picked))
	for i, p := range picked {
		selected[i] = relevance.ScoredFile{Path: p, Score: relevance.PathScore(p, keywords)}
	}
	return issue.BuildFromSelection(ctx, g, report, e.provider, e.logger, issueText, keywords, selected)
}

// AppStructure builds the routing-structure tree of the app directory.
// Returns an InputInvalid error when the tree has no app directory.
func (e *Engine) AppStructure(ctx context.Context) (*appstruct.Directory, error) {
	if _, err := e.Graph(ctx); err != nil {
		return nil, err
	}

	a := appstruct.NewAnalyzer(e.provider, e.builder.Index(), e.logger)
	appDir := a.FindAppDir()
	if appDir == "" {
		return nil, derrors.New(derrors.InputInvalid, "no app directory found")
	}
	return a.Analyze(ctx, appDir)
}

// Scorer returns the shared relevance scorer for a built graph.
func (e *Engine) Scorer(g *graph.DependencyGraph) *relevance.Scorer {
	e.scorerOnce.Do(func() {
		e.scorer = relevance.NewScorer(g, e.provider, e.cfg.Scoring, e.logger)
	})
	return e.scorer
}

// Provider exposes the engine's source provider.
func (e *Engine) Provider() source.Provider {
	return e.provider
}
