package graph

import (
	"context"
	"reflect"
	"testing"

	derrors "depscope/internal/errors"
	"depscope/internal/logging"
	"depscope/internal/resolve"
	"depscope/internal/source"
)

type fakeProvider struct {
	order []string
	files map[string]string
}

func newFakeProvider(files map[string]string, order ...string) *fakeProvider {
	return &fakeProvider{order: order, files: files}
}

func (p *fakeProvider) ListFiles(ctx context.Context) ([]source.FileInfo, error) {
	entries := make([]source.FileInfo, len(p.order))
	for i, path := range p.order {
		entries[i] = source.FileInfo{Path: path, Kind: source.KindFile}
	}
	return entries, nil
}

func (p *fakeProvider) ReadFile(ctx context.Context, path string) (string, error) {
	if content, ok := p.files[path]; ok {
		return content, nil
	}
	return "", derrors.New(derrors.SourceUnreadable, "not found: "+path)
}

func (p *fakeProvider) Root() string { return "fake" }

func quietLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func build(t *testing.T, p source.Provider) *DependencyGraph {
	t.Helper()
	g, err := NewBuilder(p, nil, quietLogger()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBuildDedupAndBackrefs(t *testing.T) {
	p := newFakeProvider(map[string]string{
		"a.js": "import b from './b'\nimport React from 'react'\nconst again = require('./b')\n",
		"b.js": "const x = 1\n",
	}, "a.js", "b.js")

	g := build(t, p)

	if g.Status != StatusAnalyzed {
		t.Fatalf("Status = %s, want analyzed", g.Status)
	}
	if g.Len() != 2 {
		t.Fatalf("Len = %d, want 2", g.Len())
	}

	// Both import statements are recorded as edges
	if n := len(g.Files["a.js"].Imports); n != 3 {
		t.Errorf("a.js edge count = %d, want 3", n)
	}

	// The adjacency view deduplicates
	if got := g.Dependencies["a.js"]; !reflect.DeepEqual(got, []string{"b.js"}) {
		t.Errorf("Dependencies[a.js] = %v, want [b.js]", got)
	}

	// The back-reference appears exactly once despite the duplicate import
	if got := g.Files["b.js"].ImportedBy; !reflect.DeepEqual(got, []string{"a.js"}) {
		t.Errorf("b.js ImportedBy = %v, want [a.js]", got)
	}

	if g.ExternalLibraries["react"] != 1 {
		t.Errorf("react count = %d, want 1", g.ExternalLibraries["react"])
	}
}

func TestBuildCycleTerminates(t *testing.T) {
	p := newFakeProvider(map[string]string{
		"a.js": "import { b } from './b'\n",
		"b.js": "import { a } from './a'\n",
	}, "a.js", "b.js")

	g := build(t, p)

	if !g.DependsOn("a.js", "b.js") || !g.DependsOn("b.js", "a.js") {
		t.Error("expected edges in both directions")
	}
	if got := g.Files["a.js"].ImportedBy; !reflect.DeepEqual(got, []string{"b.js"}) {
		t.Errorf("a.js ImportedBy = %v, want [b.js]", got)
	}
}

func TestBuildUnresolved(t *testing.T) {
	p := newFakeProvider(map[string]string{
		"a.js": "import missing from './missing'\n",
	}, "a.js")

	g := build(t, p)

	edges := g.Files["a.js"].Imports
	if len(edges) != 1 {
		t.Fatalf("edge count = %d, want 1", len(edges))
	}
	if edges[0].Type != resolve.Unresolved || edges[0].Error != resolve.ReasonFileNotFound {
		t.Errorf("edge = %+v, want unresolved %q", edges[0], resolve.ReasonFileNotFound)
	}
	if len(g.Dependencies["a.js"]) != 0 {
		t.Error("unresolved imports must not appear in the adjacency view")
	}
}

func TestBuildUnreadableFileDegrades(t *testing.T) {
	p := newFakeProvider(map[string]string{
		"a.js": "import b from './b'\n",
		// b.js is listed but unreadable
	}, "a.js", "b.js")

	g := build(t, p)

	if g.Status != StatusAnalyzed {
		t.Errorf("Status = %s, want analyzed despite the unreadable file", g.Status)
	}
	if _, ok := g.Files["b.js"]; !ok {
		t.Error("unreadable file should still be a node")
	}
	if n := len(g.Files["b.js"].Imports); n != 0 {
		t.Errorf("unreadable file edge count = %d, want 0", n)
	}
}

func TestBuildRequeuesNonSeededTargets(t *testing.T) {
	// b.ts is outside the configured extension set so discovery does not
	// seed it, but resolution reaches it and it must still be processed.
	p := newFakeProvider(map[string]string{
		"a.js": "import b from './b.ts'\n",
		"b.ts": "import React from 'react'\n",
	}, "a.js", "b.ts")

	g, err := NewBuilder(p, []string{".js"}, quietLogger()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, ok := g.Files["b.ts"]; !ok {
		t.Fatal("expected b.ts to be processed via requeue")
	}
	if g.ExternalLibraries["react"] != 1 {
		t.Error("expected b.ts imports to be extracted")
	}
	if got := g.Files["b.ts"].ImportedBy; !reflect.DeepEqual(got, []string{"a.js"}) {
		t.Errorf("b.ts ImportedBy = %v, want [a.js]", got)
	}
}

func TestBuildCancelled(t *testing.T) {
	p := newFakeProvider(map[string]string{
		"a.js": "import b from './b'\n",
		"b.js": "const x = 1\n",
	}, "a.js", "b.js")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := NewBuilder(p, nil, quietLogger()).Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Status != StatusCancelled {
		t.Errorf("Status = %s, want cancelled", g.Status)
	}
	if g.Status == StatusAnalyzed {
		t.Error("a cancelled run must never report analyzed")
	}
}
