package relevance

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("The Button component crashes when `useAuth` fails")

	// Capitalized identifiers first, then lowercase terms; stopwords and the
	// inline code span are gone. "Button" and "button" both survive because
	// dedup is case-sensitive.
	want := []string{"The", "Button", "button", "component", "crashes", "fails"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}
}

func TestExtractKeywordsStripsFencedCode(t *testing.T) {
	issue := "Navbar broken\n```\nclass FromSnippet {}\n```\nafter"
	got := ExtractKeywords(issue)

	for _, kw := range got {
		if kw == "FromSnippet" {
			t.Error("fenced code must not contribute keywords")
		}
	}
	if len(got) == 0 || got[0] != "Navbar" {
		t.Errorf("keywords = %v, want Navbar first", got)
	}
}

func TestExtractKeywordsCamelCase(t *testing.T) {
	got := ExtractKeywords("UserProfileCard renders blank")
	if len(got) == 0 || got[0] != "UserProfileCard" {
		t.Errorf("keywords = %v, want the full CamelCase identifier first", got)
	}
}

func TestExtractKeywordsEmpty(t *testing.T) {
	if got := ExtractKeywords("a an of"); len(got) != 0 {
		t.Errorf("keywords = %v, want none", got)
	}
}
