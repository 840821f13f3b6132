package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"depscope/internal/config"
	derrors "depscope/internal/errors"
	"depscope/internal/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLocalProviderListFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pages/index.js":       "export default function Home() {}\n",
		"components/Button.js": "export const Button = () => {}\n",
		"node_modules/react/index.js": "module.exports = {}\n",
		".next/cache.js":       "cached\n",
		"public/logo.svg":      "<svg/>\n",
	})

	p, err := NewLocalProvider(root, config.DefaultConfig().Discovery, quietLogger())
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	entries, err := p.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	listed := make(map[string]bool)
	for _, e := range entries {
		listed[e.Path] = true
	}

	if !listed["pages/index.js"] || !listed["components/Button.js"] {
		t.Errorf("expected source files in listing, got %v", entries)
	}
	// Non-source assets are listed; the builder filters its seed queue
	if !listed["public/logo.svg"] {
		t.Error("expected non-source assets in listing")
	}
	if listed["node_modules/react/index.js"] {
		t.Error("node_modules must be excluded")
	}
	if listed[".next/cache.js"] {
		t.Error(".next must be excluded")
	}
}

func TestLocalProviderExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app.js":          "code\n",
		"src/app.test.js":     "test\n",
	})

	cfg := config.DefaultConfig().Discovery
	cfg.ExcludeGlobs = []string{"**/*.test.js"}

	p, err := NewLocalProvider(root, cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	entries, err := p.ListFiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	for _, e := range entries {
		if e.Path == "src/app.test.js" {
			t.Error("glob-excluded file should not be listed")
		}
	}
}

func TestLocalProviderReadFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.js": "const a = 1\n"})

	p, err := NewLocalProvider(root, config.DefaultConfig().Discovery, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	content, err := p.ReadFile(context.Background(), "src/a.js")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if content != "const a = 1\n" {
		t.Errorf("content = %q", content)
	}

	_, err = p.ReadFile(context.Background(), "src/missing.js")
	if !derrors.IsCode(err, derrors.SourceUnreadable) {
		t.Errorf("missing file should be SourceUnreadable, got %v", err)
	}
}

func TestLocalProviderBadRoot(t *testing.T) {
	_, err := NewLocalProvider(filepath.Join(t.TempDir(), "missing"), config.DefaultConfig().Discovery, quietLogger())
	if !derrors.IsCode(err, derrors.InputInvalid) {
		t.Errorf("want InputInvalid, got %v", err)
	}
}
