// Package scan extracts import statements from JavaScript/TypeScript source
// text. Extraction is purely lexical: three regex patterns over the raw
// text, no comment stripping and no string-escape awareness. Matches inside
// comments or template strings are accepted false positives of the
// heuristic; callers must not assume otherwise.
package scan

import (
	"regexp"
)

var (
	// ES-module imports: default, named, namespace and mixed forms
	es6ImportRe = regexp.MustCompile(`import\s+(?:{[^}]*}|\*\s+as\s+[^,]+|[\w\s,]+)\s+from\s+['"]([^'"]+)['"]`)

	// Dynamic import("...") expressions
	dynamicImportRe = regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`)

	// CommonJS require("...") calls
	requireRe = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
)

// Extract returns every raw import path found in the file text, in source
// order per pattern: ES-module imports first, then dynamic imports, then
// requires. Duplicates are preserved; the graph builder deduplicates edges.
func Extract(content string) []string {
	var imports []string

	for _, re := range []*regexp.Regexp{es6ImportRe, dynamicImportRe, requireRe} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			imports = append(imports, m[1])
		}
	}

	return imports
}

// ImportLineRe matches a line that begins an ES-module import statement.
// The excerpting code uses it to detect the leading import block of a file.
var ImportLineRe = regexp.MustCompile(`^import\s+.+\s+from\s+['"]`)

// RequireLineRe matches a line that begins a CommonJS require assignment.
var RequireLineRe = regexp.MustCompile(`^const\s+.+\s+=\s+require\(['"]`)
