package main

import (
	"depscope/internal/version"

	"github.com/spf13/cobra"
)

var (
	// repoFlag points at a local project tree
	repoFlag string
	// githubFlag selects a remote tree as owner/repo or a github.com URL
	githubFlag string
	// branchFlag overrides the configured branch for remote trees
	branchFlag string
	// formatFlag selects the output serialization: json, yaml or human
	formatFlag string
	// outputFlag writes the result to a file instead of stdout; a .gz
	// suffix enables gzip
	outputFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
	// logFormatFlag overrides the configured log format
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "depscope",
	Short: "depscope - Next.js dependency graph and issue context analyzer",
	Long: `depscope builds the import dependency graph of a Next.js (or general
JavaScript/TypeScript) project, derives architectural insights from it, and
ranks files by relevance to a GitHub issue to assemble a focused context for
solution drafting.

The analyzed tree is either a local directory or a GitHub repository fetched
through the REST API.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("depscope version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", ".",
		"Path to the local project to analyze")
	rootCmd.PersistentFlags().StringVar(&githubFlag, "github", "",
		"GitHub repository to analyze (owner/repo or URL) instead of a local path")
	rootCmd.PersistentFlags().StringVar(&branchFlag, "branch", "",
		"Branch to analyze for remote repositories (default from config)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "human",
		"Output format: json, yaml or human")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "",
		"Write output to file instead of stdout (.gz enables gzip)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json")
}
