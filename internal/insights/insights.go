// Package insights derives aggregate architecture statistics from a
// completed dependency graph: component categories, structural flags,
// pattern detections, circular-dependency hotspots and coupling candidates.
// The analysis is a pure post-pass; it never mutates the graph.
package insights

import (
	"sort"
	"strings"

	"depscope/internal/graph"
	"depscope/internal/paths"
)

// Category names, in the fixed priority order used for bucketing.
const (
	CategoryPages      = "pages"
	CategoryComponents = "components"
	CategoryHooks      = "hooks"
	CategoryUtils      = "utils"
	CategoryContexts   = "contexts"
	CategoryLayouts    = "layouts"
	CategoryAPI        = "api"
)

// ComponentTypes buckets every categorized file. A file lands in at most one
// bucket: categories are tested in priority order and the first match wins,
// so a file matching several categories is placed by priority, not by best
// match.
type ComponentTypes struct {
	Pages      []string `json:"pages"`
	Components []string `json:"components"`
	Hooks      []string `json:"hooks"`
	Utils      []string `json:"utils"`
	Contexts   []string `json:"contexts"`
	Layouts    []string `json:"layouts"`
	API        []string `json:"api"`
}

// StructureFlags records the presence of conventional directories.
type StructureFlags struct {
	HasPagesDir     bool `json:"has_pages_dir"`
	HasAppDir       bool `json:"has_app_dir"`
	HasAPIRoutes    bool `json:"has_api_routes"`
	HasPublicDir    bool `json:"has_public_dir"`
	HasComponentDir bool `json:"has_component_dir"`
}

// Architecture is the categorical breakdown of the analyzed tree.
type Architecture struct {
	ComponentTypes ComponentTypes `json:"component_types"`
	Patterns       []string       `json:"patterns"`
	Structure      StructureFlags `json:"structure"`
}

// Hotspot reports one direction of a circular dependency. A true two-file
// cycle surfaces as two entries (A->B and B->A); callers depend on this
// per-directed-edge shape.
type Hotspot struct {
	File string `json:"file"`
	Type string `json:"type"`
	With string `json:"with"`
}

// RefactoringCandidate flags a file for high coupling.
type RefactoringCandidate struct {
	File          string `json:"file"`
	ImporterCount int    `json:"importer_count"`
	Suggestion    string `json:"suggestion"`
}

// FileCount pairs a path with a count for top-N listings.
type FileCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// LibraryCount pairs an external library with its import count.
type LibraryCount struct {
	Library string `json:"library"`
	Count   int    `json:"count"`
}

// CategoryCount pairs a category with its file count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Metadata aggregates graph-wide counts and top-N rankings.
type Metadata struct {
	TotalFiles        int             `json:"total_files"`
	TotalDependencies int             `json:"total_dependencies"`
	MostImported      []FileCount     `json:"most_imported"`
	MostImporting     []FileCount     `json:"most_importing"`
	MostUsedLibraries []LibraryCount  `json:"most_used_libraries"`
	CategoryCounts    []CategoryCount `json:"category_counts"`
}

// Report is the complete insight document for one graph.
type Report struct {
	Architecture          Architecture           `json:"architecture"`
	Metadata              Metadata               `json:"metadata"`
	Hotspots              []Hotspot              `json:"dependency_hotspots"`
	RefactoringCandidates []RefactoringCandidate `json:"refactoring_candidates"`
}

// Pattern detection thresholds. Hard-coded counts, matched exactly by tests.
const (
	containerThreshold = 2
	hooksThreshold     = 3
	contextThreshold   = 1
	utilsThreshold     = 5
	featureThreshold   = 3
	couplingThreshold  = 5
	topN               = 5
	maxCandidates      = 10
)

// Analyze derives the full insight report from a completed graph.
func Analyze(g *graph.DependencyGraph) *Report {
	report := &Report{
		Architecture: analyzeArchitecture(g),
		Hotspots:     findCircularDependencies(g),
	}
	report.Metadata = buildMetadata(g, report.Architecture.ComponentTypes)
	report.RefactoringCandidates = findRefactoringCandidates(g)
	return report
}

func analyzeArchitecture(g *graph.DependencyGraph) Architecture {
	arch := Architecture{Patterns: []string{}}
	types := &arch.ComponentTypes

	containerCount := 0
	hooksCount := 0
	contextCount := 0
	utilsCount := 0
	featureFolders := make(map[string]bool)

	for _, filePath := range g.Paths() {
		// Substring categorization against "/"+path so top-level
		// directories count the same as nested ones
		p := "/" + filePath

		switch {
		case strings.Contains(p, "/pages/") || strings.Contains(p, "/app/"):
			types.Pages = append(types.Pages, filePath)
			if strings.Contains(p, "/pages/") {
				arch.Structure.HasPagesDir = true
			}
			if strings.Contains(p, "/app/") {
				arch.Structure.HasAppDir = true
			}
		case strings.Contains(p, "/components/"):
			types.Components = append(types.Components, filePath)
			arch.Structure.HasComponentDir = true
		case strings.Contains(p, "/hooks/") || strings.HasSuffix(filePath, "Hook.js") || strings.HasSuffix(filePath, "Hook.tsx"):
			types.Hooks = append(types.Hooks, filePath)
			hooksCount++
		case strings.Contains(p, "/utils/") || strings.Contains(p, "/lib/") || strings.Contains(p, "/helpers/"):
			types.Utils = append(types.Utils, filePath)
			if strings.Contains(p, "/utils/") || strings.Contains(p, "/helpers/") {
				utilsCount++
			}
		case strings.Contains(p, "/context/") || strings.Contains(p, "/contexts/") || strings.Contains(filePath, "Provider"):
			types.Contexts = append(types.Contexts, filePath)
			contextCount++
		case strings.Contains(p, "/layouts/") || strings.Contains(filePath, "Layout"):
			types.Layouts = append(types.Layouts, filePath)
		case strings.Contains(p, "/api/"):
			types.API = append(types.API, filePath)
			arch.Structure.HasAPIRoutes = true
		}

		if strings.Contains(filePath, "Container") {
			containerCount++
		}
		if strings.Contains(p, "/public/") {
			arch.Structure.HasPublicDir = true
		}

		parts := paths.Segments(filePath)
		if len(parts) > 2 && (parts[0] == "src" || parts[0] == "app" || parts[0] == "features") {
			featureFolders[parts[1]] = true
		}
	}

	if containerCount > containerThreshold {
		arch.Patterns = append(arch.Patterns, "Container/Presentation Pattern")
	}
	if hooksCount > hooksThreshold {
		arch.Patterns = append(arch.Patterns, "Custom Hooks Pattern")
	}
	if contextCount > contextThreshold {
		arch.Patterns = append(arch.Patterns, "React Context API")
	}
	if utilsCount > utilsThreshold {
		arch.Patterns = append(arch.Patterns, "Utility-First Approach")
	}
	if len(featureFolders) > featureThreshold {
		arch.Patterns = append(arch.Patterns, "Feature-Based/Modular Architecture")
	}

	return arch
}

// findCircularDependencies reports every directed edge that participates in
// a two-file cycle: A->B is a hotspot when B also imports A, so a cycle
// yields two entries. The asymmetric double report is deliberate.
func findCircularDependencies(g *graph.DependencyGraph) []Hotspot {
	var hotspots []Hotspot

	for _, from := range g.Paths() {
		for _, target := range g.Dependencies[from] {
			if g.DependsOn(target, from) {
				hotspots = append(hotspots, Hotspot{
					File: from,
					Type: "Circular Dependency",
					With: target,
				})
			}
		}
	}

	return hotspots
}

func buildMetadata(g *graph.DependencyGraph, types ComponentTypes) Metadata {
	meta := Metadata{
		TotalFiles:        g.Len(),
		TotalDependencies: g.TotalDependencies(),
	}

	imported := make([]FileCount, 0, g.Len())
	importing := make([]FileCount, 0, g.Len())
	for _, path := range g.Paths() {
		if n := len(g.Files[path].ImportedBy); n > 0 {
			imported = append(imported, FileCount{Path: path, Count: n})
		}
		if n := len(g.Dependencies[path]); n > 0 {
			importing = append(importing, FileCount{Path: path, Count: n})
		}
	}
	meta.MostImported = topFiles(imported)
	meta.MostImporting = topFiles(importing)

	libs := make([]LibraryCount, 0, len(g.ExternalLibraries))
	for lib, count := range g.ExternalLibraries {
		libs = append(libs, LibraryCount{Library: lib, Count: count})
	}
	sort.Slice(libs, func(i, j int) bool {
		if libs[i].Count != libs[j].Count {
			return libs[i].Count > libs[j].Count
		}
		return libs[i].Library < libs[j].Library
	})
	if len(libs) > topN {
		libs = libs[:topN]
	}
	meta.MostUsedLibraries = libs

	for _, cc := range []CategoryCount{
		{CategoryPages, len(types.Pages)},
		{CategoryComponents, len(types.Components)},
		{CategoryHooks, len(types.Hooks)},
		{CategoryUtils, len(types.Utils)},
		{CategoryContexts, len(types.Contexts)},
		{CategoryLayouts, len(types.Layouts)},
		{CategoryAPI, len(types.API)},
	} {
		if cc.Count > 0 {
			meta.CategoryCounts = append(meta.CategoryCounts, cc)
		}
	}

	return meta
}

func topFiles(counts []FileCount) []FileCount {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Path < counts[j].Path
	})
	if len(counts) > topN {
		counts = counts[:topN]
	}
	return counts
}

func findRefactoringCandidates(g *graph.DependencyGraph) []RefactoringCandidate {
	var candidates []RefactoringCandidate

	for _, path := range g.Paths() {
		n := len(g.Files[path].ImportedBy)
		if n >= couplingThreshold {
			candidates = append(candidates, RefactoringCandidate{
				File:          path,
				ImporterCount: n,
				Suggestion:    "Widely imported; consider splitting or stabilizing its interface",
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ImporterCount != candidates[j].ImporterCount {
			return candidates[i].ImporterCount > candidates[j].ImporterCount
		}
		return candidates[i].File < candidates[j].File
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return candidates
}
