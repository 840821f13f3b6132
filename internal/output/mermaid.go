package output

import (
	"fmt"
	"regexp"
	"strings"

	"depscope/internal/appstruct"
	"depscope/internal/graph"
)

var nodeIDRe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// DependencyFlowchart renders the internal edges of a graph as a mermaid
// flowchart. Node identifiers are sanitized paths; labels keep the real path.
func DependencyFlowchart(g *graph.DependencyGraph) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	for _, path := range g.Paths() {
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", nodeID(path), path)
	}

	b.WriteString("\n")
	for _, from := range g.Paths() {
		for _, target := range g.Dependencies[from] {
			fmt.Fprintf(&b, "    %s --> %s\n", nodeID(from), nodeID(target))
		}
	}

	return b.String()
}

func nodeID(path string) string {
	return nodeIDRe.ReplaceAllString(path, "_")
}

// Import dependency groups of the component diagram, in render order.
var componentGroups = []string{
	"CoreLibraries",
	"ExternalLibraries",
	"UIComponents",
	"Utils",
	"Contexts",
	"API",
	"Other",
}

var fromModuleRe = regexp.MustCompile(`from\s+['"]([^'"]+)['"]`)

type component struct {
	name     string
	fileType appstruct.FileType
	groups   []string // first-occurrence order, deduplicated
}

// ComponentDiagram renders the page and layout components of an app
// structure tree together with their import dependency groups, as a mermaid
// flowchart with per-role styling.
func ComponentDiagram(root *appstruct.Directory) string {
	var components []component
	groupUsed := make(map[string]bool)

	collectComponents(root, &components, groupUsed)

	var b strings.Builder
	b.WriteString("flowchart LR\n")

	b.WriteString("    %% Main page components\n")
	for _, c := range components {
		if c.fileType == appstruct.TypePage {
			fmt.Fprintf(&b, "    %s[\"%s()\"]:::page\n", c.name, c.name)
		}
	}

	b.WriteString("\n    %% Layout components\n")
	for _, c := range components {
		if c.fileType == appstruct.TypeLayout {
			fmt.Fprintf(&b, "    %s[\"%s()\"]:::layout\n", c.name, c.name)
		}
	}

	for _, group := range componentGroups {
		if groupUsed[group] {
			fmt.Fprintf(&b, "\n    %%%% %s\n", group)
			fmt.Fprintf(&b, "    %s[\"%s\"]:::%s\n", group, group, strings.ToLower(group))
		}
	}

	b.WriteString("\n    %% Dependencies\n")
	for _, c := range components {
		for _, group := range c.groups {
			fmt.Fprintf(&b, "    %s --> %s\n", group, c.name)
		}
	}

	b.WriteString("\n    %% Styling definitions\n")
	b.WriteString("    classDef page fill:#d4f0fd,stroke:#333,stroke-width:1px;\n")
	b.WriteString("    classDef layout fill:#d4fdd4,stroke:#333,stroke-width:1px;\n")
	b.WriteString("    classDef corelibraries fill:#f9d4fd,stroke:#333,stroke-width:1px;\n")
	b.WriteString("    classDef externallibraries fill:#d4d4fd,stroke:#333,stroke-width:1px;\n")
	b.WriteString("    classDef uicomponents fill:#ffd4d4,stroke:#333,stroke-width:1px;\n")
	b.WriteString("    classDef utils fill:#d4fdf9,stroke:#333,stroke-width:1px;\n")
	b.WriteString("    classDef contexts fill:#ffffb3,stroke:#333,stroke-width:1px;\n")
	b.WriteString("    classDef api fill:#f9f9d4,stroke:#333,stroke-width:1px;\n")
	b.WriteString("    classDef other fill:#f5f5f5,stroke:#333,stroke-width:1px;\n")

	return b.String()
}

func collectComponents(node *appstruct.Directory, out *[]component, groupUsed map[string]bool) {
	for _, f := range node.Files {
		if f.Type != appstruct.TypePage && f.Type != appstruct.TypeLayout {
			continue
		}
		if f.Details == nil {
			continue
		}
		name := componentName(f.Details)
		if name == "" {
			continue
		}

		c := component{name: name, fileType: f.Type}
		seen := make(map[string]bool)
		for _, imp := range f.Details.Imports {
			group := categorizeImport(imp)
			if group == "" {
				continue
			}
			groupUsed[group] = true
			if !seen[group] {
				seen[group] = true
				c.groups = append(c.groups, group)
			}
		}
		*out = append(*out, c)
	}

	for i := range node.Directories {
		collectComponents(&node.Directories[i], out, groupUsed)
	}
}

// componentName picks the declaration that names the component: the first
// function with an uppercase initial or a Page/Layout suffix, else the first
// function of the file.
func componentName(d *appstruct.FileDetails) string {
	for _, fn := range d.Functions {
		if fn.Name == "" {
			continue
		}
		first := fn.Name[0]
		if (first >= 'A' && first <= 'Z') ||
			strings.HasSuffix(fn.Name, "Page") ||
			strings.HasSuffix(fn.Name, "Layout") {
			return fn.Name
		}
	}
	if len(d.Functions) > 0 {
		return d.Functions[0].Name
	}
	return ""
}

func categorizeImport(importStmt string) string {
	m := fromModuleRe.FindStringSubmatch(importStmt)
	if m == nil {
		return ""
	}
	module := m[1]

	switch {
	case strings.HasPrefix(module, "react") || strings.HasPrefix(module, "next"):
		return "CoreLibraries"
	case strings.HasPrefix(module, "@tanstack") || strings.HasPrefix(module, "framer") || strings.Contains(module, "lucide"):
		return "ExternalLibraries"
	case strings.HasPrefix(module, "@/components"):
		return "UIComponents"
	case strings.HasPrefix(module, "@/lib") || strings.HasPrefix(module, "@/utils"):
		return "Utils"
	case strings.HasPrefix(module, "@/context"):
		return "Contexts"
	case strings.HasPrefix(module, "@/api") || strings.Contains(module, "api"):
		return "API"
	}
	return "Other"
}
