package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	derrors "depscope/internal/errors"
	"depscope/internal/issue"
	"depscope/internal/llm"
	"depscope/internal/logging"
)

var (
	// issueFlag carries the issue text inline
	issueFlag string
	// issueFileFlag reads the issue text from a file
	issueFileFlag string
	// useLLMFlag lets the model refine the algorithmic file selection
	useLLMFlag bool
	// solveFlag additionally asks the model to draft a solution
	solveFlag bool
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Assemble the repository context relevant to a GitHub issue",
	Long: `Context ranks every file of the project against the issue text, excerpts
the most relevant files down to the sections that matter, and assembles a
context document with the repository fingerprint and the dependency
relationships among the selected files.

With --llm a model refines the file selection; with --solve it additionally
drafts a solution proposal from the assembled context. Both require
OPENAI_API_KEY and degrade to the algorithmic result when unavailable.`,
	RunE: runContext,
}

func init() {
	contextCmd.Flags().StringVar(&issueFlag, "issue", "", "Issue text")
	contextCmd.Flags().StringVar(&issueFileFlag, "issue-file", "", "File containing the issue text")
	contextCmd.Flags().BoolVar(&useLLMFlag, "llm", false, "Let the model refine the file selection")
	contextCmd.Flags().BoolVar(&solveFlag, "solve", false, "Draft a solution proposal with the model")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx, cancel := newContext()
	defer cancel()

	issueText, err := readIssueText()
	if err != nil {
		return err
	}

	engine := mustGetEngine(logger)

	var client *llm.Client
	if useLLMFlag || solveFlag {
		client, err = llm.New(os.Getenv("OPENAI_API_KEY"), loadConfig(logger).LLM, logger)
		if err != nil {
			logger.Warn("Model unavailable, using algorithmic ranking only", logging.Fields{
				"error": err.Error(),
			})
			client = nil
		}
	}

	issueCtx, err := engine.IssueContext(ctx, issueText, client)
	if err != nil {
		return err
	}

	if solveFlag && client != nil {
		solution, err := client.GenerateSolution(ctx, issueCtx)
		if err != nil {
			if derrors.IsCode(err, derrors.Cancelled) {
				return err
			}
			logger.Warn("Solution drafting failed", logging.Fields{"error": err.Error()})
		} else {
			return emitSolution(issueCtx, solution)
		}
	}

	return emit(issueCtx, func(w io.Writer) {
		printContextSummary(w, issueCtx)
	})
}

func readIssueText() (string, error) {
	if issueFlag != "" {
		return issueFlag, nil
	}
	if issueFileFlag != "" {
		data, err := os.ReadFile(issueFileFlag)
		if err != nil {
			return "", derrors.Wrap(derrors.InputInvalid, "could not read issue file", err)
		}
		return string(data), nil
	}
	return "", derrors.New(derrors.InputInvalid, "either --issue or --issue-file is required")
}

type solutionDocument struct {
	Context  *issue.Context `json:"context"`
	Solution string         `json:"solution"`
}

func emitSolution(issueCtx *issue.Context, solution string) error {
	return emit(&solutionDocument{Context: issueCtx, Solution: solution}, func(w io.Writer) {
		printContextSummary(w, issueCtx)
		fmt.Fprintln(w, "\nProposed solution:")
		fmt.Fprintln(w, solution)
	})
}

func printContextSummary(w io.Writer, issueCtx *issue.Context) {
	if issueCtx.Error != "" {
		fmt.Fprintf(w, "Warning: %s\n", issueCtx.Error)
		return
	}

	fmt.Fprintln(w, "Issue-relevant files:")
	for i, f := range issueCtx.RelevantFiles {
		if i >= 5 {
			fmt.Fprintf(w, "   ... and %d more files\n", len(issueCtx.RelevantFiles)-5)
			break
		}
		fmt.Fprintf(w, "%d. %s (score %.1f)\n", i+1, f.Path, f.Score)
	}
}
