package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"depscope/internal/analyzer"
	"depscope/internal/graph"
	"depscope/internal/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build the dependency graph and derive architecture insights",
	Long: `Analyze builds the full import dependency graph of the project, resolves
every import to a file, an external library or an unresolved reason, and
derives the architecture report: component categories, detected patterns,
circular-dependency hotspots and coupling candidates.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx, cancel := newContext()
	defer cancel()

	engine := mustGetEngine(logger)

	result, err := engine.Analyze(ctx)
	if err != nil {
		return err
	}

	return emit(result, func(w io.Writer) {
		printAnalyzeSummary(w, result)
	})
}

func printAnalyzeSummary(w io.Writer, result *analyzer.Result) {
	fmt.Fprintln(w, "Repository Summary:")
	fmt.Fprintf(w, "  Total files: %d\n", result.Insights.Metadata.TotalFiles)
	fmt.Fprintf(w, "  Total dependencies: %d\n", result.Insights.Metadata.TotalDependencies)
	if result.Status == graph.StatusCancelled {
		fmt.Fprintln(w, "  Status: cancelled (partial result)")
	}

	if patterns := result.Insights.Architecture.Patterns; len(patterns) > 0 {
		fmt.Fprintln(w, "  Architectural patterns:")
		for _, p := range patterns {
			fmt.Fprintf(w, "    - %s\n", p)
		}
	}

	if libs := result.Insights.Metadata.MostUsedLibraries; len(libs) > 0 {
		fmt.Fprintln(w, "  Top external libraries:")
		for _, l := range libs {
			fmt.Fprintf(w, "    - %s (%d imports)\n", l.Library, l.Count)
		}
	}

	if hotspots := result.Insights.Hotspots; len(hotspots) > 0 {
		fmt.Fprintf(w, "  Circular dependencies: %d\n", len(hotspots))
	}
}

// emit writes v in the selected format. Human format uses the provided
// renderer on stdout; writing to a file always serializes, defaulting the
// human format to JSON.
func emit(v interface{}, human func(io.Writer)) error {
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	if outputFlag != "" {
		if format == output.FormatHuman {
			format = output.FormatJSON
		}
		return output.WriteFile(outputFlag, format, v)
	}

	if format == output.FormatHuman && human != nil {
		human(os.Stdout)
		return nil
	}
	return output.Write(os.Stdout, format, v)
}
