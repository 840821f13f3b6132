// Package appstruct maps the routing tree of a Next.js app directory:
// every directory is classified by its routing semantics (route groups,
// dynamic segments, parallel and intercepting routes) and every special file
// by its framework role. Page, layout and API files additionally carry
// extracted declarations for the component diagram.
package appstruct

import (
	"context"
	"regexp"
	"strings"

	"depscope/internal/logging"
	"depscope/internal/paths"
	"depscope/internal/source"
)

// FileType is the framework role of a file inside the app directory.
type FileType string

const (
	TypePage       FileType = "page"
	TypeLayout     FileType = "layout"
	TypeLoading    FileType = "loading"
	TypeError      FileType = "error"
	TypeNotFound   FileType = "not-found"
	TypeAPI        FileType = "api"
	TypeMiddleware FileType = "middleware"
	TypeRegular    FileType = "regular"
)

// RouteFlags classifies a directory's routing semantics by its name.
// Protected is a heuristic over the whole relative path, not the name alone.
type RouteFlags struct {
	RouteGroup       bool `json:"route_group"`
	Dynamic          bool `json:"dynamic"`
	CatchAll         bool `json:"catch_all"`
	OptionalCatchAll bool `json:"optional_catch_all"`
	Parallel         bool `json:"parallel"`
	Intercepting     bool `json:"intercepting"`
	Protected        bool `json:"protected"`
}

// Function is one extracted function or arrow-function declaration.
type Function struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Params []string `json:"params"`
}

// Prop is one property of a Props declaration.
type Prop struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// PropsDecl is one extracted interface/type XxxProps declaration.
type PropsDecl struct {
	Component  string `json:"component"`
	Properties []Prop `json:"properties"`
}

// FileDetails holds the declarations extracted from a page, layout or API
// file. Imports keep the full import statement text, not just the module.
type FileDetails struct {
	Imports          []string    `json:"imports"`
	Functions        []Function  `json:"functions"`
	Props            []PropsDecl `json:"props"`
	HasDefaultExport bool        `json:"has_default_export"`
}

// File is one file entry of the structure tree.
type File struct {
	Name    string       `json:"name"`
	Type    FileType     `json:"type"`
	Details *FileDetails `json:"details,omitempty"`
}

// Directory is one node of the structure tree.
type Directory struct {
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	Type        string      `json:"type"`
	Flags       RouteFlags  `json:"flags"`
	Files       []File      `json:"files"`
	Directories []Directory `json:"directories"`
}

var protectedKeywords = []string{"auth", "protected", "private", "admin", "dashboard"}

var interceptingRe = regexp.MustCompile(`^\(\.+\)`)

var detailExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

var (
	importStmtRe = regexp.MustCompile(`import\s+(?:{[^}]+}|\*\s+as\s+\w+|\w+)\s+from\s+['"]([^'"]+)['"]`)
	funcDeclRe   = regexp.MustCompile(`(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*\(([^)]*)\)`)
	arrowDeclRe  = regexp.MustCompile(`(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s*)?\(([^)]*)\)\s*=>`)
	propsDeclRe  = regexp.MustCompile(`(?:interface|type)\s+(\w+)Props\s*(?:extends[^{]+)?\s*{\s*([^}]+)\s*}`)
	propItemRe   = regexp.MustCompile(`(\w+)\??:\s*([^;]+)`)
	defaultExpRe = regexp.MustCompile(`export\s+default`)
)

// Analyzer walks one app directory through the source provider.
type Analyzer struct {
	provider source.Provider
	idx      *source.FileIndex
	logger   *logging.Logger
}

// NewAnalyzer creates an analyzer over an already-listed tree.
func NewAnalyzer(provider source.Provider, idx *source.FileIndex, logger *logging.Logger) *Analyzer {
	return &Analyzer{provider: provider, idx: idx, logger: logger}
}

// FindAppDir locates the app directory, preferring the repository root over
// src/. Returns "" when neither exists.
func (a *Analyzer) FindAppDir() string {
	for _, dir := range []string{"app", "src/app"} {
		if a.idx.IsDir(dir) {
			return dir
		}
	}
	return ""
}

// Analyze builds the structure tree rooted at appDir.
func (a *Analyzer) Analyze(ctx context.Context, appDir string) (*Directory, error) {
	appDir = paths.Canonical(appDir)
	root, err := a.directory(ctx, appDir)
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (a *Analyzer) directory(ctx context.Context, dir string) (*Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := dir
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		name = dir[i+1:]
	}

	node := &Directory{
		Name:        name,
		Path:        dir,
		Type:        "directory",
		Flags:       classifyDir(name, dir),
		Files:       []File{},
		Directories: []Directory{},
	}

	for _, base := range a.idx.DirFiles(dir) {
		f := File{Name: base, Type: ClassifyFile(base)}

		if f.Type == TypePage || f.Type == TypeLayout || f.Type == TypeAPI {
			details, err := a.fileDetails(ctx, paths.Join(dir, base))
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				a.logger.Warn("Could not extract file details", logging.Fields{
					"file":  paths.Join(dir, base),
					"error": err.Error(),
				})
			} else if details != nil {
				f.Details = details
			}
		}

		node.Files = append(node.Files, f)
	}

	for _, sub := range a.idx.SubDirs(dir) {
		child, err := a.directory(ctx, paths.Join(dir, sub))
		if err != nil {
			return nil, err
		}
		node.Directories = append(node.Directories, *child)
	}

	return node, nil
}

// classifyDir derives routing flags from a directory name. The checks are
// ordered so a catch-all is never also reported as plain dynamic.
func classifyDir(name, relPath string) RouteFlags {
	optional := strings.HasPrefix(name, "[[...") && strings.HasSuffix(name, "]]")
	catchAll := !optional && strings.HasPrefix(name, "[...") && strings.HasSuffix(name, "]")

	flags := RouteFlags{
		RouteGroup:       strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")"),
		Dynamic:          !optional && !catchAll && strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"),
		CatchAll:         catchAll,
		OptionalCatchAll: optional,
		Parallel:         strings.HasPrefix(name, "@"),
		Intercepting:     interceptingRe.MatchString(name),
	}

	lower := strings.ToLower(relPath)
	for _, kw := range protectedKeywords {
		if strings.Contains(lower, kw) {
			flags.Protected = true
			break
		}
	}

	return flags
}

// ClassifyFile maps a file base name to its framework role.
func ClassifyFile(name string) FileType {
	switch {
	case strings.HasPrefix(name, "page."):
		return TypePage
	case strings.HasPrefix(name, "layout."):
		return TypeLayout
	case strings.HasPrefix(name, "loading."):
		return TypeLoading
	case strings.HasPrefix(name, "error."):
		return TypeError
	case strings.HasPrefix(name, "not-found."):
		return TypeNotFound
	case strings.HasPrefix(name, "route."):
		return TypeAPI
	case name == "middleware.js" || name == "middleware.ts":
		return TypeMiddleware
	}
	return TypeRegular
}

func (a *Analyzer) fileDetails(ctx context.Context, path string) (*FileDetails, error) {
	if !hasDetailExtension(path) {
		return nil, nil
	}

	content, err := a.provider.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return ExtractDetails(content), nil
}

// ExtractDetails pulls imports, function declarations and Props declarations
// out of file content by regex.
func ExtractDetails(content string) *FileDetails {
	d := &FileDetails{
		Imports:   []string{},
		Functions: []Function{},
		Props:     []PropsDecl{},
	}

	for _, m := range importStmtRe.FindAllString(content, -1) {
		d.Imports = append(d.Imports, m)
	}

	for _, m := range funcDeclRe.FindAllStringSubmatch(content, -1) {
		d.Functions = append(d.Functions, Function{
			Name:   m[1],
			Type:   "function",
			Params: splitParams(m[2]),
		})
	}
	for _, m := range arrowDeclRe.FindAllStringSubmatch(content, -1) {
		d.Functions = append(d.Functions, Function{
			Name:   m[1],
			Type:   "arrow function",
			Params: splitParams(m[2]),
		})
	}

	for _, m := range propsDeclRe.FindAllStringSubmatch(content, -1) {
		decl := PropsDecl{Component: m[1], Properties: []Prop{}}
		for _, pm := range propItemRe.FindAllStringSubmatch(m[2], -1) {
			decl.Properties = append(decl.Properties, Prop{
				Name: pm[1],
				Type: strings.TrimSpace(pm[2]),
			})
		}
		d.Props = append(d.Props, decl)
	}

	d.HasDefaultExport = defaultExpRe.MatchString(content)

	return d
}

func splitParams(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func hasDetailExtension(path string) bool {
	for _, ext := range detailExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
