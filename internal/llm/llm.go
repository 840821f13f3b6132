// Package llm is the optional generative collaborator: a model can refine
// the algorithmic file ranking and draft a solution from an assembled issue
// context. Everything here degrades: an unavailable or misbehaving model
// falls back to the algorithmic ranking, never fails the analysis.
package llm

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"depscope/internal/config"
	derrors "depscope/internal/errors"
	"depscope/internal/issue"
	"depscope/internal/logging"
)

// Client wraps one model endpoint.
type Client struct {
	api    openai.Client
	cfg    config.LLMConfig
	logger *logging.Logger
}

// New creates a client. An empty API key is an LLMUnavailable error so
// callers can fall back to algorithmic ranking without probing the network.
func New(apiKey string, cfg config.LLMConfig, logger *logging.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, derrors.New(derrors.LLMUnavailable, "no API key configured")
	}
	return &Client{
		api:    openai.NewClient(option.WithAPIKey(apiKey)),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// PickRelevantFiles asks the model to choose up to maxFiles paths from the
// candidate list for the given issue. Repositories larger than the
// MaxCandidates threshold send only the scored shortlist instead of the full
// list. The reply must be a JSON array of known paths; anything else is an
// error the caller handles by keeping the algorithmic ranking.
func (c *Client) PickRelevantFiles(ctx context.Context, issueText string, candidates []string, shortlist func(n int) []string, maxFiles int) ([]string, error) {
	if len(candidates) > c.cfg.MaxCandidates && shortlist != nil {
		c.logger.Debug("Candidate list exceeds threshold, sending shortlist", logging.Fields{
			"candidates": len(candidates),
			"shortlist":  c.cfg.ShortlistSize,
		})
		candidates = shortlist(c.cfg.ShortlistSize)
	}

	known := make(map[string]bool, len(candidates))
	for _, p := range candidates {
		known[p] = true
	}

	prompt := pickPrompt(issueText, candidates, maxFiles)
	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	files := ParseFileList(raw, known)
	if len(files) == 0 {
		return nil, derrors.New(derrors.LLMUnavailable, "model returned no usable file list")
	}
	if len(files) > maxFiles {
		files = files[:maxFiles]
	}
	return files, nil
}

// GenerateSolution drafts a solution proposal from an assembled context.
func (c *Client) GenerateSolution(ctx context.Context, issueCtx *issue.Context) (string, error) {
	doc, err := json.MarshalIndent(issueCtx, "", "  ")
	if err != nil {
		return "", derrors.Wrap(derrors.InternalError, "could not encode issue context", err)
	}

	prompt := "You are assisting with a Next.js codebase. Below is a GitHub issue " +
		"and the repository context relevant to it: a repository fingerprint and " +
		"excerpts of the most relevant files with their dependency relationships.\n\n" +
		string(doc) +
		"\n\nPropose a concrete solution to the issue. Reference files by path and " +
		"explain which of the provided excerpts each change touches."

	return c.complete(ctx, prompt)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	result, err := c.api.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.cfg.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", derrors.Wrap(derrors.Cancelled, "model request cancelled", err)
		}
		return "", derrors.Wrap(derrors.LLMUnavailable, "model request failed", err)
	}
	return result.OutputText(), nil
}

func pickPrompt(issueText string, candidates []string, maxFiles int) string {
	var b strings.Builder
	b.WriteString("Given the GitHub issue below, pick the files most relevant to ")
	b.WriteString("resolving it from the candidate list. Respond with ONLY a JSON ")
	b.WriteString("array of file paths taken verbatim from the list, at most ")
	b.WriteString(strconv.Itoa(maxFiles))
	b.WriteString(" entries, most relevant first.\n\nIssue:\n")
	b.WriteString(issueText)
	b.WriteString("\n\nCandidate files:\n")
	for _, p := range candidates {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseFileList extracts a JSON array of file paths from a model reply and
// filters it to known paths, deduplicated in reply order. Fenced replies and
// surrounding prose are tolerated; hallucinated paths are dropped.
func ParseFileList(raw string, known map[string]bool) []string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}

	var parsed []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil
	}

	var files []string
	seen := make(map[string]bool)
	for _, p := range parsed {
		p = strings.TrimSpace(p)
		if known[p] && !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	return files
}
