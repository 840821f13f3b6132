package relevance

import (
	"context"
	"testing"

	"depscope/internal/config"
	derrors "depscope/internal/errors"
	"depscope/internal/graph"
	"depscope/internal/logging"
	"depscope/internal/source"
)

type stubProvider struct {
	files map[string]string
}

func (p *stubProvider) ListFiles(ctx context.Context) ([]source.FileInfo, error) {
	return nil, nil
}

func (p *stubProvider) ReadFile(ctx context.Context, path string) (string, error) {
	if content, ok := p.files[path]; ok {
		return content, nil
	}
	return "", derrors.New(derrors.SourceUnreadable, "not found: "+path)
}

func (p *stubProvider) Root() string { return "stub" }

func quietLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func newTestScorer(g *graph.DependencyGraph, files map[string]string) *Scorer {
	return NewScorer(g, &stubProvider{files: files}, config.DefaultConfig().Scoring, quietLogger())
}

func TestPathScore(t *testing.T) {
	tests := []struct {
		path     string
		keywords []string
		want     float64
	}{
		// stem exact 15 + segment partial 5
		{"components/Button.jsx", []string{"Button"}, 20},
		// segment exact 10, stem misses
		{"src/utils/helpers.js", []string{"utils"}, 10},
		// stem partial 8 + segment partial 5
		{"components/ButtonGroup.jsx", []string{"Button"}, 13},
		{"pages/index.js", []string{"Button"}, 0},
	}

	for _, tt := range tests {
		if got := PathScore(tt.path, tt.keywords); got != tt.want {
			t.Errorf("PathScore(%q, %v) = %v, want %v", tt.path, tt.keywords, got, tt.want)
		}
	}
}

func TestContentScore(t *testing.T) {
	s := newTestScorer(graph.NewDependencyGraph(), nil)

	tests := []struct {
		name     string
		content  string
		keywords []string
		want     float64
	}{
		{
			// funcDef 10 + exportDecl 15 + one mention 0.5
			name:     "exported const definition",
			content:  "export const Button = () => {}",
			keywords: []string{"Button"},
			want:     25.5,
		},
		{
			// two comment hits 10 + two mentions 1.0
			name:     "comment mentions",
			content:  "// fix Button here\n// Button again",
			keywords: []string{"Button"},
			want:     11,
		},
		{
			// classDef 12 + one mention 0.5
			name:     "class definition",
			content:  "class ButtonModel {\n}",
			keywords: []string{"Button"},
			want:     12.5,
		},
		{
			name:     "no hits",
			content:  "const x = 1",
			keywords: []string{"Button"},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ContentScore(tt.content, tt.keywords); got != tt.want {
				t.Errorf("ContentScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContentScoreMentionCap(t *testing.T) {
	s := newTestScorer(graph.NewDependencyGraph(), nil)

	var b []byte
	for i := 0; i < 40; i++ {
		b = append(b, " widget"...)
	}

	// 40 mentions capped at 10, worth 0.5 each
	if got := s.ContentScore(string(b), []string{"widget"}); got != 5 {
		t.Errorf("capped mention score = %v, want 5", got)
	}
}

func TestStructuralScore(t *testing.T) {
	g := graph.NewDependencyGraph()
	// hub.js imports Button.jsx and is imported by index.js
	g.AddInternalEdge("hub.js", "./Button", "components/Button.jsx")
	g.AddInternalEdge("index.js", "./hub", "hub.js")
	g.Files["hub.js"].ImportedBy = []string{"index.js"}

	s := newTestScorer(g, nil)

	// Related path components/Button.jsx scores 20 (> 15) for +5, and the
	// centrality bonus adds one import plus one importer.
	got := s.structuralScore("hub.js", []string{"Button"})
	if got != 7 {
		t.Errorf("structuralScore = %v, want 7", got)
	}

	// A leaf with no importers gets no centrality bonus
	if got := s.structuralScore("components/Button.jsx", []string{"Button"}); got != 0 {
		t.Errorf("leaf structuralScore = %v, want 0", got)
	}
}

func TestFindRelevantFiles(t *testing.T) {
	g := graph.NewDependencyGraph()
	files := map[string]string{
		"components/Button.jsx": "export const Button = () => {}\n",
		"pages/index.js":        "import Button from '../components/Button'\n",
		"utils/math.js":         "export const add = (a, b) => a + b\n",
	}
	for _, p := range []string{"components/Button.jsx", "pages/index.js", "utils/math.js"} {
		g.AddFile(p)
	}
	g.AddInternalEdge("pages/index.js", "../components/Button", "components/Button.jsx")
	g.Files["components/Button.jsx"].ImportedBy = []string{"pages/index.js"}

	s := newTestScorer(g, files)

	scored, keywords, err := s.FindRelevantFiles(context.Background(), "Button component is broken", 2)
	if err != nil {
		t.Fatalf("FindRelevantFiles: %v", err)
	}
	if len(keywords) == 0 {
		t.Fatal("expected keywords")
	}
	if len(scored) != 2 {
		t.Fatalf("result count = %d, want truncation to 2", len(scored))
	}
	if scored[0].Path != "components/Button.jsx" {
		t.Errorf("top file = %q, want components/Button.jsx", scored[0].Path)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("scores not descending: %v", scored)
	}
}

func TestFindRelevantFilesNoKeywords(t *testing.T) {
	s := newTestScorer(graph.NewDependencyGraph(), nil)

	scored, keywords, err := s.FindRelevantFiles(context.Background(), "a an of", 5)
	if err != nil {
		t.Fatalf("FindRelevantFiles: %v", err)
	}
	if scored != nil || keywords != nil {
		t.Errorf("got %v / %v, want empty results for an unusable issue", scored, keywords)
	}
}
