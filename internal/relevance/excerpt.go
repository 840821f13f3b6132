package relevance

import (
	"regexp"
	"sort"
	"strings"

	"depscope/internal/scan"
)

// Section patterns for excerpting, each capturing one top-level declaration
// block up to its closing brace at column zero. Braces are matched lazily,
// so a nested closing brace at column zero truncates the block; acceptable
// for excerpting.
var sectionRes = []*regexp.Regexp{
	regexp.MustCompile(`function\s+\w+\s*\([^)]*\)\s*\{[\s\S]*?\n\}`),
	regexp.MustCompile(`const\s+\w+\s*=\s*\([^)]*\)\s*=>\s*\{[\s\S]*?\n\}`),
	regexp.MustCompile(`class\s+\w+(?:\s+extends\s+\w+)?\s*\{[\s\S]*?\n\}`),
	regexp.MustCompile(`const\s+\w+\s*=\s*\{[\s\S]*?\n\}`),
	regexp.MustCompile(`function\s+[A-Z]\w*\s*\([^)]*\)\s*\{[\s\S]*?\n\}`),
	regexp.MustCompile(`const\s+[A-Z]\w*\s*=\s*(?:\([^)]*\)|)\s*=>\s*\{[\s\S]*?\n\}`),
}

const (
	sectionThreshold = 2
	declLineBonus    = 10
	leadingLines     = 20
	contextLines     = 10
	omissionMarker   = "\n// ... (code omitted) ...\n"
	partialNote      = "\n\n// Note: Only showing relevant portions of the file"
)

// Excerpt reduces file content to the portions relevant to the keywords.
// The leading import block is always kept. When declaration blocks score
// above the threshold they are returned with the imports; otherwise the
// fallback keeps the first lines of the file plus a context window around
// every keyword mention.
func Excerpt(content string, keywords []string) string {
	importBlock := ImportSection(content)
	sections := RelevantSections(content, keywords)

	if len(sections) > 0 {
		out := importBlock + "\n\n" + strings.Join(sections, "\n\n")
		if len(sections) < declarationCount(content) {
			out += partialNote
		}
		return out
	}

	return RelevantChunks(content, keywords)
}

// ImportSection returns the contiguous import block at the top of a file.
// Blank lines inside the block are kept; the first non-import, non-blank
// line after an import ends it.
func ImportSection(content string) string {
	var imports []string
	for _, line := range strings.Split(content, "\n") {
		switch {
		case scan.ImportLineRe.MatchString(line) || scan.RequireLineRe.MatchString(line):
			imports = append(imports, line)
		case len(imports) > 0 && strings.TrimSpace(line) == "":
			imports = append(imports, line)
		case len(imports) > 0:
			return strings.Join(imports, "\n")
		}
	}
	return strings.Join(imports, "\n")
}

// RelevantSections extracts declaration blocks whose relevance to the
// keywords clears the threshold. A keyword on the declaration line weighs
// far more than mentions inside the body. Blocks matched by more than one
// pattern appear once.
func RelevantSections(content string, keywords []string) []string {
	var sections []string
	seen := make(map[string]bool)

	for _, re := range sectionRes {
		for _, section := range re.FindAllString(content, -1) {
			if seen[section] {
				continue
			}

			score := 0
			firstLine := strings.ToLower(strings.SplitN(section, "\n", 2)[0])
			sectionLower := strings.ToLower(section)
			for _, kw := range keywords {
				kwLower := strings.ToLower(kw)
				if strings.Contains(firstLine, kwLower) {
					score += declLineBonus
				}
				score += strings.Count(sectionLower, kwLower)
			}

			if score > sectionThreshold {
				seen[section] = true
				sections = append(sections, section)
			}
		}
	}

	return sections
}

// RelevantChunks is the fallback excerpt: the first lines of the file plus
// a window of context around every line mentioning a keyword, with gaps
// collapsed into omission markers.
func RelevantChunks(content string, keywords []string) string {
	lines := strings.Split(content, "\n")

	included := make(map[int]bool)
	for i := 0; i < leadingLines && i < len(lines); i++ {
		included[i] = true
	}

	for i, line := range lines {
		if !lineMentions(line, keywords) {
			continue
		}
		lo := i - contextLines
		if lo < 0 {
			lo = 0
		}
		hi := i + contextLines
		if hi > len(lines)-1 {
			hi = len(lines) - 1
		}
		for j := lo; j <= hi; j++ {
			included[j] = true
		}
	}

	nums := make([]int, 0, len(included))
	for n := range included {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var out []string
	var section []string
	last := -2
	for _, n := range nums {
		if n > last+1 {
			if len(section) > 0 {
				out = append(out, strings.Join(section, "\n"))
				section = section[:0]
			}
			if len(out) > 0 {
				out = append(out, omissionMarker)
			}
		}
		section = append(section, lines[n])
		last = n
	}
	if len(section) > 0 {
		out = append(out, strings.Join(section, "\n"))
	}

	return strings.Join(out, "\n")
}

func lineMentions(line string, keywords []string) bool {
	lower := strings.ToLower(line)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// declarationCount approximates how many declarations a file holds, used
// only to decide whether the partial-content note applies.
func declarationCount(content string) int {
	n := strings.Count(content, "function") +
		strings.Count(content, "class") +
		strings.Count(content, "const") - 2
	if n < 0 {
		n = 0
	}
	return n
}
