// Package aliases loads the analyzed project's path-alias configuration:
// tsconfig.json compilerOptions.paths, the alias block of next.config.js,
// and an optional .depscope/aliases.toml override file. Every failure here
// is a warning; the analysis degrades to an empty table and continues.
package aliases

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"depscope/internal/logging"
	"depscope/internal/source"
)

// Rule maps an alias prefix to a target directory prefix relative to the
// repository root.
type Rule struct {
	Alias  string `json:"alias" toml:"alias"`
	Target string `json:"target" toml:"target"`
}

// Table is the ordered alias table. Lookup is first-match in registration
// order, not longest-match: a shorter alias registered earlier shadows a
// more specific one registered later. Downstream consumers depend on this
// order, so it must not be "fixed" to longest-match.
type Table struct {
	rules []Rule
}

// NewTable builds a table from rules in registration order.
func NewTable(rules []Rule) *Table {
	return &Table{rules: rules}
}

// Rules returns the rules in registration order.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	return t.rules
}

// Len returns the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Match returns the first rule whose alias prefixes importPath.
func (t *Table) Match(importPath string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	for _, r := range t.rules {
		if strings.HasPrefix(importPath, r.Alias) {
			return r, true
		}
	}
	return Rule{}, false
}

var nextAliasBlockRe = regexp.MustCompile(`alias\s*:\s*{([^}]*)}`)
var nextAliasPairRe = regexp.MustCompile(`['"]([\w@/-]+)['"]:\s*['"]([^'"]*)['"]\s*`)

// Load reads the alias configuration through the source provider, once at
// graph-build start. The table is immutable afterwards.
func Load(ctx context.Context, provider source.Provider, logger *logging.Logger) *Table {
	var rules []Rule

	rules = append(rules, loadTsconfig(ctx, provider, logger)...)
	rules = append(rules, loadNextConfig(ctx, provider, logger)...)
	rules = append(rules, loadOverrides(ctx, provider, logger)...)

	return NewTable(rules)
}

// loadTsconfig extracts compilerOptions.paths from tsconfig.json, keeping
// the first target per alias and stripping trailing "/*" on both sides.
// Declaration order in the JSON file is preserved because first-match
// resolution depends on it.
func loadTsconfig(ctx context.Context, provider source.Provider, logger *logging.Logger) []Rule {
	content, err := provider.ReadFile(ctx, "tsconfig.json")
	if err != nil {
		return nil
	}

	rules, err := parseTsconfigPaths(content)
	if err != nil {
		logger.Warn("Error parsing tsconfig.json", logging.Fields{"error": err.Error()})
		return nil
	}
	return rules
}

// parseTsconfigPaths walks the JSON token stream instead of unmarshalling
// into a map, because Go map iteration would randomize the alias order.
func parseTsconfigPaths(content string) ([]Rule, error) {
	var doc struct {
		CompilerOptions struct {
			Paths json.RawMessage `json:"paths"`
		} `json:"compilerOptions"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, err
	}
	if len(doc.CompilerOptions.Paths) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(string(doc.CompilerOptions.Paths)))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}

	var rules []Rule
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		alias, _ := keyTok.(string)

		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return nil, err
		}
		if alias == "" || len(targets) == 0 {
			continue
		}

		rules = append(rules, Rule{
			Alias:  strings.ReplaceAll(alias, "/*", ""),
			Target: strings.ReplaceAll(targets[0], "/*", ""),
		})
	}

	return rules, nil
}

// loadNextConfig extracts an alias block from next.config.js by regex.
// Best-effort: a config file that builds its aliases programmatically
// yields nothing.
func loadNextConfig(ctx context.Context, provider source.Provider, logger *logging.Logger) []Rule {
	content, err := provider.ReadFile(ctx, "next.config.js")
	if err != nil {
		return nil
	}

	block := nextAliasBlockRe.FindStringSubmatch(content)
	if block == nil {
		return nil
	}

	var rules []Rule
	for _, pair := range nextAliasPairRe.FindAllStringSubmatch(block[1], -1) {
		rules = append(rules, Rule{Alias: pair[1], Target: pair[2]})
	}
	return rules
}

type overridesFile struct {
	Alias []Rule `toml:"alias"`
}

// loadOverrides reads user-declared aliases from .depscope/aliases.toml.
// These append after the project's own configuration, so they cannot shadow
// it under first-match.
func loadOverrides(ctx context.Context, provider source.Provider, logger *logging.Logger) []Rule {
	content, err := provider.ReadFile(ctx, ".depscope/aliases.toml")
	if err != nil {
		return nil
	}

	var f overridesFile
	if err := toml.Unmarshal([]byte(content), &f); err != nil {
		logger.Warn("Error parsing .depscope/aliases.toml", logging.Fields{"error": err.Error()})
		return nil
	}

	rules := make([]Rule, 0, len(f.Alias))
	for _, r := range f.Alias {
		if r.Alias == "" || r.Target == "" {
			continue
		}
		rules = append(rules, r)
	}
	return rules
}
