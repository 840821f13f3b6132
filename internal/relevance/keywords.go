// Package relevance ranks files of a dependency graph against free-form
// issue text. Scoring combines path, content and structural signals into a
// weighted composite; excerpting trims selected files down to the sections
// an issue reader actually needs.
package relevance

import (
	"regexp"
	"strings"
)

var (
	fencedCodeRe = regexp.MustCompile("```[\\s\\S]*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]*`")

	// Capitalized identifiers, including multi-hump CamelCase
	componentRe = regexp.MustCompile(`\b([A-Z][a-z0-9]*(?:[A-Z][a-z0-9]*)*)\b`)

	// Lowercase technical terms of three characters or more
	termRe = regexp.MustCompile(`\b[a-z][a-z0-9]{2,}\b`)
)

var stopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true,
	"for": true, "with": true, "when": true, "where": true,
	"what": true, "how": true, "why": true,
}

// ExtractKeywords pulls ranking keywords from issue text. Fenced and inline
// code spans are stripped first so snippet noise never drives the ranking.
// Capitalized component names come first, then lowercase terms, deduplicated
// in first-seen order so downstream scoring is deterministic.
func ExtractKeywords(issueText string) []string {
	cleaned := fencedCodeRe.ReplaceAllString(issueText, "")
	cleaned = inlineCodeRe.ReplaceAllString(cleaned, "")

	var keywords []string
	seen := make(map[string]bool)

	for _, m := range componentRe.FindAllString(cleaned, -1) {
		if !seen[m] {
			seen[m] = true
			keywords = append(keywords, m)
		}
	}

	for _, m := range termRe.FindAllString(strings.ToLower(cleaned), -1) {
		if stopwords[m] || seen[m] {
			continue
		}
		seen[m] = true
		keywords = append(keywords, m)
	}

	return keywords
}
