package relevance

import (
	"context"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"depscope/internal/config"
	"depscope/internal/graph"
	"depscope/internal/logging"
	"depscope/internal/paths"
	"depscope/internal/source"
)

// Path scoring weights. An exact match on a path segment or the file stem
// scores higher than a substring match, and stem matches outrank segment
// matches.
const (
	segmentExactScore   = 10
	segmentPartialScore = 5
	stemExactScore      = 15
	stemPartialScore    = 8
)

// Content scoring weights per keyword.
const (
	classDefScore     = 12
	funcDefScore      = 10
	exportDeclScore   = 15
	commentMatchScore = 5
	mentionCap        = 10
	mentionWeight     = 0.5
)

// Structural scoring weights.
const (
	relatedHighThreshold = 15
	relatedHighScore     = 5
	relatedMedThreshold  = 8
	relatedMedScore      = 2
	centralityCap        = 5
)

// keywordPatterns holds the compiled content-matching regexes for one keyword.
type keywordPatterns struct {
	classDef   *regexp.Regexp
	funcDef    *regexp.Regexp
	exportDecl *regexp.Regexp
	comment    *regexp.Regexp
}

// ScoredFile pairs a path with its composite relevance score.
type ScoredFile struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Scorer ranks the files of one completed graph against issue keywords.
// File contents flow through an LRU cache so repeated scoring passes over
// the same tree do not re-fetch, which matters for the GitHub provider.
type Scorer struct {
	g        *graph.DependencyGraph
	provider source.Provider
	cfg      config.ScoringConfig
	logger   *logging.Logger

	cache    *lru.Cache[string, string]
	patterns map[string]*keywordPatterns
}

// NewScorer creates a scorer over a finalized graph.
func NewScorer(g *graph.DependencyGraph, provider source.Provider, cfg config.ScoringConfig, logger *logging.Logger) *Scorer {
	size := cfg.ContentCacheSize
	if size <= 0 {
		size = config.DefaultConfig().Scoring.ContentCacheSize
	}
	cache, _ := lru.New[string, string](size)
	return &Scorer{
		g:        g,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		cache:    cache,
		patterns: make(map[string]*keywordPatterns),
	}
}

// FindRelevantFiles ranks the graph's files against issueText and returns
// the top maxFiles with their scores, plus the extracted keywords. Ranking
// runs in two stages: a cheap path-score pass over every file selects the
// candidate set, then the full composite score is computed only for those
// candidates. Ties keep discovery order, so results are stable across runs.
func (s *Scorer) FindRelevantFiles(ctx context.Context, issueText string, maxFiles int) ([]ScoredFile, []string, error) {
	if maxFiles <= 0 {
		maxFiles = s.cfg.MaxFiles
	}

	keywords := ExtractKeywords(issueText)
	s.logger.Debug("Extracted issue keywords", logging.Fields{"keywords": keywords})
	if len(keywords) == 0 {
		s.logger.Warn("No meaningful keywords extracted from issue", nil)
		return nil, nil, nil
	}

	candidates := s.PathShortlist(keywords, s.cfg.PathCandidates)

	scored := make([]ScoredFile, 0, len(candidates))
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, keywords, err
		}

		content := s.pathContentScore(ctx, cand.Path, keywords)
		structural := s.structuralScore(cand.Path, keywords)

		total := cand.Score*s.cfg.PathWeight +
			content*s.cfg.ContentWeight +
			structural*s.cfg.StructuralWeight

		scored = append(scored, ScoredFile{Path: cand.Path, Score: total})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxFiles {
		scored = scored[:maxFiles]
	}

	return scored, keywords, nil
}

// PathShortlist returns the top n files by path score alone, in stable
// order. It is also the pre-filter used when a repository is too large to
// hand the model its full file list.
func (s *Scorer) PathShortlist(keywords []string, n int) []ScoredFile {
	shortlist := make([]ScoredFile, 0, s.g.Len())
	for _, path := range s.g.Paths() {
		shortlist = append(shortlist, ScoredFile{
			Path:  path,
			Score: PathScore(path, keywords),
		})
	}

	sort.SliceStable(shortlist, func(i, j int) bool {
		return shortlist[i].Score > shortlist[j].Score
	})
	if n > 0 && len(shortlist) > n {
		shortlist = shortlist[:n]
	}
	return shortlist
}

// PathScore scores a path against keywords: every segment is compared with
// every keyword, and the file stem is scored again at a higher weight, so a
// stem hit counts on top of its segment hit.
func PathScore(path string, keywords []string) float64 {
	score := 0.0

	for _, part := range paths.Segments(path) {
		partLower := strings.ToLower(part)
		for _, kw := range keywords {
			kwLower := strings.ToLower(kw)
			if kwLower == partLower {
				score += segmentExactScore
			} else if strings.Contains(partLower, kwLower) {
				score += segmentPartialScore
			}
		}
	}

	stem := strings.ToLower(paths.Stem(path))
	for _, kw := range keywords {
		kwLower := strings.ToLower(kw)
		if kwLower == stem {
			score += stemExactScore
		} else if strings.Contains(stem, kwLower) {
			score += stemPartialScore
		}
	}

	return score
}

// pathContentScore reads the file through the cache and scores its content.
// Unreadable files score zero and the run continues.
func (s *Scorer) pathContentScore(ctx context.Context, path string, keywords []string) float64 {
	content, err := s.content(ctx, path)
	if err != nil {
		s.logger.Warn("Could not read file for content scoring", logging.Fields{
			"file":  path,
			"error": err.Error(),
		})
		return 0
	}
	return s.ContentScore(content, keywords)
}

// ContentScore scores file content against keywords. Definition sites score
// flat bonuses per keyword, comment mentions score per occurrence, and raw
// mention counts contribute with a cap so sheer repetition cannot dominate.
func (s *Scorer) ContentScore(content string, keywords []string) float64 {
	score := 0.0
	lower := strings.ToLower(content)

	for _, kw := range keywords {
		p := s.patternsFor(kw)

		if p.classDef.MatchString(content) {
			score += classDefScore
		}
		if p.funcDef.MatchString(content) {
			score += funcDefScore
		}
		if p.exportDecl.MatchString(content) {
			score += exportDeclScore
		}
		score += float64(len(p.comment.FindAllString(content, -1))) * commentMatchScore

		count := strings.Count(lower, strings.ToLower(kw))
		if count > mentionCap {
			count = mentionCap
		}
		score += float64(count) * mentionWeight
	}

	return score
}

// structuralScore scores a file by its neighborhood: related files whose
// paths match the keywords pull it up, and files that both import and are
// imported get a capped centrality bonus.
func (s *Scorer) structuralScore(path string, keywords []string) float64 {
	score := 0.0

	imports := s.g.Dependencies[path]
	var importedBy []string
	if f, ok := s.g.Files[path]; ok {
		importedBy = f.ImportedBy
	}

	for _, related := range imports {
		score += relatedBonus(related, keywords)
	}
	for _, related := range importedBy {
		score += relatedBonus(related, keywords)
	}

	if len(imports) > 0 && len(importedBy) > 0 {
		in := len(imports)
		if in > centralityCap {
			in = centralityCap
		}
		out := len(importedBy)
		if out > centralityCap {
			out = centralityCap
		}
		score += float64(in + out)
	}

	return score
}

func relatedBonus(path string, keywords []string) float64 {
	related := PathScore(path, keywords)
	switch {
	case related > relatedHighThreshold:
		return relatedHighScore
	case related > relatedMedThreshold:
		return relatedMedScore
	}
	return 0
}

// content returns the scoring window of a file, at most ContentWindowBytes,
// via the LRU cache.
func (s *Scorer) content(ctx context.Context, path string) (string, error) {
	if cached, ok := s.cache.Get(path); ok {
		return cached, nil
	}

	content, err := s.provider.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	if s.cfg.ContentWindowBytes > 0 && len(content) > s.cfg.ContentWindowBytes {
		content = content[:s.cfg.ContentWindowBytes]
	}

	s.cache.Add(path, content)
	return content, nil
}

func (s *Scorer) patternsFor(kw string) *keywordPatterns {
	if p, ok := s.patterns[kw]; ok {
		return p
	}
	q := regexp.QuoteMeta(kw)
	p := &keywordPatterns{
		classDef:   regexp.MustCompile(`(?i)class\s+\w*` + q + `\w*`),
		funcDef:    regexp.MustCompile(`(?i)(function|const)\s+\w*` + q + `\w*`),
		exportDecl: regexp.MustCompile(`(?i)export\s+(?:default\s+)?(?:const\s+)?\w*` + q + `\w*`),
		comment:    regexp.MustCompile(`(?i)//.*` + q + `|/\*[\s\S]*?` + q + `[\s\S]*?\*/`),
	}
	s.patterns[kw] = p
	return p
}
