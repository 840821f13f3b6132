package relevance

import (
	"fmt"
	"strings"
	"testing"
)

func TestImportSection(t *testing.T) {
	content := "import a from 'a'\nimport b from 'b'\n\nconst x = 1\n"

	got := ImportSection(content)
	want := "import a from 'a'\nimport b from 'b'\n"
	if got != want {
		t.Errorf("ImportSection = %q, want %q (trailing blank line kept)", got, want)
	}
}

func TestImportSectionRequire(t *testing.T) {
	content := "const fs = require('fs')\nconst x = 1\n"

	got := ImportSection(content)
	if got != "const fs = require('fs')" {
		t.Errorf("ImportSection = %q", got)
	}
}

func TestImportSectionNone(t *testing.T) {
	if got := ImportSection("const x = 1\n"); got != "" {
		t.Errorf("ImportSection = %q, want empty", got)
	}
}

func TestRelevantSections(t *testing.T) {
	content := "function handleButton() {\n  return 1\n}\n\nfunction other() {\n  return 2\n}\n"

	got := RelevantSections(content, []string{"Button"})
	if len(got) != 1 {
		t.Fatalf("section count = %d, want 1: %v", len(got), got)
	}
	if !strings.Contains(got[0], "handleButton") {
		t.Errorf("section = %q, want the handleButton block", got[0])
	}
}

func TestRelevantSectionsDedup(t *testing.T) {
	// A capitalized function matches both the general and the
	// component-specific pattern but must appear once
	content := "function BigButton() {\n  return 3\n}\n"

	got := RelevantSections(content, []string{"Button"})
	if len(got) != 1 {
		t.Errorf("section count = %d, want 1 after dedup: %v", len(got), got)
	}
}

func TestRelevantSectionsBelowThreshold(t *testing.T) {
	// Two body mentions without a declaration-line hit score exactly the
	// threshold and are excluded
	content := "function other() {\n  // grid\n  return grid\n}\n"

	if got := RelevantSections(content, []string{"grid"}); len(got) != 0 {
		t.Errorf("sections = %v, want none at threshold", got)
	}
}

func TestExcerptWithSections(t *testing.T) {
	content := "import React from 'react'\n\n" +
		"function handleButton() {\n  return 1\n}\n"

	got := Excerpt(content, []string{"Button"})
	if !strings.HasPrefix(got, "import React from 'react'\n") {
		t.Errorf("excerpt must start with the import block: %q", got)
	}
	if !strings.Contains(got, "handleButton") {
		t.Errorf("excerpt missing relevant section: %q", got)
	}
	if strings.Contains(got, partialNote) {
		t.Errorf("no partial note expected for a single-declaration file: %q", got)
	}
}

func TestExcerptPartialNote(t *testing.T) {
	var b strings.Builder
	b.WriteString("function relevantButton() {\n  return 0\n}\n\n")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "function filler%d() {\n  return %d\n}\n\n", i, i)
	}

	got := Excerpt(b.String(), []string{"Button"})
	if !strings.HasSuffix(got, partialNote) {
		t.Errorf("excerpt should note omitted declarations: %q", got)
	}
}

func TestRelevantChunks(t *testing.T) {
	lines := make([]string, 45)
	for i := range lines {
		lines[i] = fmt.Sprintf("line%d", i)
	}
	lines[39] = "const button = 1"
	content := strings.Join(lines, "\n")

	got := RelevantChunks(content, []string{"button"})

	if !strings.HasPrefix(got, "line0\n") {
		t.Errorf("chunks must start with the leading lines: %q", got)
	}
	if !strings.Contains(got, omissionMarker) {
		t.Error("expected an omission marker for the gap")
	}
	if strings.Contains(got, "line25") {
		t.Error("lines outside the lead and context windows must be omitted")
	}
	if !strings.Contains(got, "line30") || !strings.HasSuffix(got, "line44") {
		t.Errorf("context window around the mention is wrong: %q", got)
	}
}
