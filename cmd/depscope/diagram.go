package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	derrors "depscope/internal/errors"
	"depscope/internal/output"
)

// diagramTypeFlag selects which diagram to render
var diagramTypeFlag string

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Render a mermaid diagram of the project",
	Long: `Diagram renders a mermaid document: either the import dependency
flowchart of the whole graph, or the component diagram of the app directory
with pages, layouts and their import dependency groups.`,
	RunE: runDiagram,
}

func init() {
	diagramCmd.Flags().StringVar(&diagramTypeFlag, "type", "deps",
		"Diagram type: deps or components")
	rootCmd.AddCommand(diagramCmd)
}

func runDiagram(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx, cancel := newContext()
	defer cancel()

	engine := mustGetEngine(logger)

	var doc string
	switch diagramTypeFlag {
	case "deps":
		g, err := engine.Graph(ctx)
		if err != nil {
			return err
		}
		doc = output.DependencyFlowchart(g)
	case "components":
		root, err := engine.AppStructure(ctx)
		if err != nil {
			return err
		}
		doc = output.ComponentDiagram(root)
	default:
		return derrors.New(derrors.InputInvalid, "unknown diagram type: "+diagramTypeFlag)
	}

	if outputFlag != "" {
		return os.WriteFile(outputFlag, []byte(doc), 0644)
	}
	fmt.Print(doc)
	return nil
}
