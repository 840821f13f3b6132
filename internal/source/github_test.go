package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"depscope/internal/config"
	derrors "depscope/internal/errors"
)

func newGitHubTestProvider(t *testing.T, baseURL string) *GitHubProvider {
	t.Helper()
	cfg := config.DefaultConfig().GitHub
	cfg.APIBaseURL = baseURL
	cfg.MaxRetries = 1
	cfg.RateLimitBufferSeconds = 0

	p, err := NewGitHubProvider("octo/webapp", "", "", cfg, config.DefaultConfig().Discovery, quietLogger())
	if err != nil {
		t.Fatalf("NewGitHubProvider: %v", err)
	}
	return p
}

func TestParseRepoSpec(t *testing.T) {
	tests := []struct {
		spec      string
		owner     string
		repo      string
		wantError bool
	}{
		{"octo/webapp", "octo", "webapp", false},
		{"https://github.com/octo/webapp", "octo", "webapp", false},
		{"https://github.com/octo/webapp.git", "octo", "webapp", false},
		{"https://gitlab.com/octo/webapp", "", "", true},
		{"webapp", "", "", true},
		{"a/b/c", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := ParseRepoSpec(tt.spec)
		if tt.wantError {
			if !derrors.IsCode(err, derrors.InputInvalid) {
				t.Errorf("ParseRepoSpec(%q) error = %v, want InputInvalid", tt.spec, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRepoSpec(%q): %v", tt.spec, err)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseRepoSpec(%q) = %s/%s, want %s/%s", tt.spec, owner, repo, tt.owner, tt.repo)
		}
	}
}

func TestGitHubListFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/webapp/git/trees/main" {
			t.Errorf("unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"truncated": false, "tree": [
			{"path": "package.json", "type": "blob"},
			{"path": "src", "type": "tree"},
			{"path": "src/a.js", "type": "blob"},
			{"path": "node_modules/react/index.js", "type": "blob"}
		]}`))
	}))
	defer srv.Close()

	p := newGitHubTestProvider(t, srv.URL)
	entries, err := p.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	kinds := make(map[string]Kind)
	for _, e := range entries {
		kinds[e.Path] = e.Kind
	}
	if len(entries) != 3 {
		t.Errorf("entries = %v, want 3", entries)
	}
	if kinds["src"] != KindDir || kinds["src/a.js"] != KindFile {
		t.Errorf("kinds = %v", kinds)
	}
	if _, ok := kinds["node_modules/react/index.js"]; ok {
		t.Error("node_modules must be excluded")
	}
}

func TestGitHubListFilesTruncatedFanOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octo/webapp/git/trees/main":
			w.Write([]byte(`{"truncated": true, "tree": []}`))
		case "/repos/octo/webapp/contents/":
			w.Write([]byte(`[
				{"name": "src", "path": "src", "type": "dir"},
				{"name": "node_modules", "path": "node_modules", "type": "dir"},
				{"name": "package.json", "path": "package.json", "type": "file"}
			]`))
		case "/repos/octo/webapp/contents/src":
			w.Write([]byte(`[{"name": "a.js", "path": "src/a.js", "type": "file"}]`))
		case "/repos/octo/webapp/contents/node_modules":
			t.Error("excluded directory must not be listed")
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Errorf("unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := newGitHubTestProvider(t, srv.URL)
	entries, err := p.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	want := []FileInfo{
		{Path: "package.json", Kind: KindFile},
		{Path: "src", Kind: KindDir},
		{Path: "src/a.js", Kind: KindFile},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %v, want %v", i, entries[i], want[i])
		}
	}
}

func TestGitHubReadFileCached(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("export const a = 1\n"))
	}))
	defer srv.Close()

	p := newGitHubTestProvider(t, srv.URL)

	for i := 0; i < 2; i++ {
		content, err := p.ReadFile(context.Background(), "src/a.js")
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if content != "export const a = 1\n" {
			t.Errorf("content = %q", content)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (second read served from cache)", hits)
	}
}

func TestGitHubReadFileMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := newGitHubTestProvider(t, srv.URL)
	_, err := p.ReadFile(context.Background(), "src/missing.js")
	if !derrors.IsCode(err, derrors.SourceUnreadable) {
		t.Errorf("missing remote file = %v, want SourceUnreadable", err)
	}
}

func TestGitHubRateLimitWaitCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := newGitHubTestProvider(t, srv.URL)
	_, err := p.ReadFile(ctx, "src/a.js")
	if !derrors.IsCode(err, derrors.Cancelled) {
		t.Errorf("cancelled rate-limit wait = %v, want Cancelled", err)
	}
}
