package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"depscope/internal/appstruct"
)

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Map the routing structure of the app directory",
	Long: `Structure walks the project's app directory and classifies every route
segment: route groups, dynamic segments, catch-alls, parallel and
intercepting routes, plus the framework role of every special file. Page,
layout and API files carry their extracted declarations.`,
	RunE: runStructure,
}

func init() {
	rootCmd.AddCommand(structureCmd)
}

func runStructure(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx, cancel := newContext()
	defer cancel()

	engine := mustGetEngine(logger)

	root, err := engine.AppStructure(ctx)
	if err != nil {
		return err
	}

	return emit(root, func(w io.Writer) {
		printStructure(w, root, 0)
	})
}

func printStructure(w io.Writer, node *appstruct.Directory, depth int) {
	indent := strings.Repeat("  ", depth)

	var marks []string
	if node.Flags.RouteGroup {
		marks = append(marks, "group")
	}
	if node.Flags.Dynamic {
		marks = append(marks, "dynamic")
	}
	if node.Flags.CatchAll {
		marks = append(marks, "catch-all")
	}
	if node.Flags.OptionalCatchAll {
		marks = append(marks, "optional-catch-all")
	}
	if node.Flags.Parallel {
		marks = append(marks, "parallel")
	}
	if node.Flags.Intercepting {
		marks = append(marks, "intercepting")
	}
	if node.Flags.Protected {
		marks = append(marks, "protected")
	}

	suffix := ""
	if len(marks) > 0 {
		suffix = " (" + strings.Join(marks, ", ") + ")"
	}
	fmt.Fprintf(w, "%s%s/%s\n", indent, node.Name, suffix)

	for _, f := range node.Files {
		if f.Type == appstruct.TypeRegular {
			continue
		}
		fmt.Fprintf(w, "%s  %s [%s]\n", indent, f.Name, f.Type)
	}

	for i := range node.Directories {
		printStructure(w, &node.Directories[i], depth+1)
	}
}
