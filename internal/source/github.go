package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"depscope/internal/config"
	derrors "depscope/internal/errors"
	"depscope/internal/logging"
	"depscope/internal/paths"
	"depscope/internal/version"
)

// GitHubProvider lists and reads a remote tree through the GitHub API.
// Listing prefers the recursive git-trees endpoint (one call); when GitHub
// truncates that response, it falls back to a contents-API fan-out with a
// bounded worker pool. File contents are cached in an LRU because the
// relevance scorer re-reads candidate files after the graph build.
type GitHubProvider struct {
	client *http.Client
	owner  string
	repo   string
	branch string
	token  string

	baseURL     string
	listWorkers int
	maxRetries  int
	rateBuffer  time.Duration
	excludes    map[string]bool

	cache  *lru.Cache[string, string]
	logger *logging.Logger
}

// ParseRepoSpec accepts "owner/repo" or a github.com URL and returns the
// owner and repository name.
func ParseRepoSpec(spec string) (owner, repo string, err error) {
	s := strings.TrimSuffix(strings.TrimSpace(spec), ".git")
	if u, uerr := url.Parse(s); uerr == nil && u.Host != "" {
		if !strings.HasSuffix(u.Host, "github.com") {
			return "", "", derrors.New(derrors.InputInvalid, "unsupported repository host: "+u.Host)
		}
		s = strings.Trim(u.Path, "/")
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", derrors.New(derrors.InputInvalid, "repository must be owner/repo or a github.com URL: "+spec)
	}
	return parts[0], parts[1], nil
}

// NewGitHubProvider creates a provider for owner/repo on the configured
// branch. The token is optional; without it the API's anonymous quota applies.
func NewGitHubProvider(spec, branch, token string, cfg config.GitHubConfig, discovery config.DiscoveryConfig, logger *logging.Logger) (*GitHubProvider, error) {
	owner, repo, err := ParseRepoSpec(spec)
	if err != nil {
		return nil, err
	}
	if branch == "" {
		branch = cfg.Branch
	}

	excludes := make(map[string]bool, len(discovery.ExcludeDirs))
	for _, d := range discovery.ExcludeDirs {
		excludes[d] = true
	}

	cache, err := lru.New[string, string](512)
	if err != nil {
		return nil, err
	}

	return &GitHubProvider{
		client:      &http.Client{Timeout: 30 * time.Second},
		owner:       owner,
		repo:        repo,
		branch:      branch,
		token:       token,
		baseURL:     strings.TrimSuffix(cfg.APIBaseURL, "/"),
		listWorkers: cfg.MaxConcurrentListings,
		maxRetries:  cfg.MaxRetries,
		rateBuffer:  time.Duration(cfg.RateLimitBufferSeconds) * time.Second,
		excludes:    excludes,
		cache:       cache,
		logger:      logger,
	}, nil
}

// Root describes the remote tree.
func (p *GitHubProvider) Root() string {
	return fmt.Sprintf("github.com/%s/%s@%s", p.owner, p.repo, p.branch)
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"` // blob | tree
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// ListFiles lists the remote tree. The flat recursive listing already has a
// stable order; the fan-out fallback sorts its merged result so both paths
// produce a deterministic listing.
func (p *GitHubProvider) ListFiles(ctx context.Context) ([]FileInfo, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", p.baseURL, p.owner, p.repo, url.PathEscape(p.branch))

	body, status, err := p.get(ctx, endpoint, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, derrors.New(derrors.InputInvalid, "repository or branch not found: "+p.Root())
	}
	if status != http.StatusOK {
		return nil, derrors.New(derrors.NetworkFailed, fmt.Sprintf("tree listing failed with status %d", status))
	}

	var tree treeResponse
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, derrors.Wrap(derrors.NetworkFailed, "malformed tree listing", err)
	}

	if tree.Truncated {
		p.logger.Warn("Tree listing truncated, falling back to directory fan-out", logging.Fields{
			"repo": p.Root(),
		})
		return p.listByContents(ctx)
	}

	entries := make([]FileInfo, 0, len(tree.Tree))
	for _, e := range tree.Tree {
		path := paths.Canonical(e.Path)
		if p.isExcluded(path) {
			continue
		}
		kind := KindFile
		if e.Type == "tree" {
			kind = KindDir
		}
		entries = append(entries, FileInfo{Path: path, Kind: kind})
	}
	return entries, nil
}

type contentsEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // file | dir
}

// listByContents walks the tree through the contents API with a bounded
// worker pool. Worker completion order is nondeterministic, so the merged
// listing is sorted before it is returned.
func (p *GitHubProvider) listByContents(ctx context.Context) ([]FileInfo, error) {
	var (
		mu       sync.Mutex
		entries  []FileInfo
		wg       sync.WaitGroup
		firstErr error
	)

	sem := make(chan struct{}, p.listWorkers)

	var listDir func(dir string)
	listDir = func(dir string) {
		defer wg.Done()
		sem <- struct{}{}
		defer func() { <-sem }()

		if ctx.Err() != nil {
			return
		}

		endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", p.baseURL, p.owner, p.repo, dir, url.QueryEscape(p.branch))
		body, status, err := p.get(ctx, endpoint, "application/vnd.github+json")
		if err != nil || status != http.StatusOK {
			mu.Lock()
			if firstErr == nil && err != nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}

		var listing []contentsEntry
		if err := json.Unmarshal(body, &listing); err != nil {
			return
		}

		for _, e := range listing {
			path := paths.Canonical(e.Path)
			switch e.Type {
			case "dir":
				if p.excludes[e.Name] {
					continue
				}
				mu.Lock()
				entries = append(entries, FileInfo{Path: path, Kind: KindDir})
				mu.Unlock()
				wg.Add(1)
				go listDir(path)
			case "file":
				mu.Lock()
				entries = append(entries, FileInfo{Path: path, Kind: KindFile})
				mu.Unlock()
			}
		}
	}

	wg.Add(1)
	go listDir("")
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, derrors.Wrap(derrors.Cancelled, "listing aborted", err)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return SortedCopy(entries), nil
}

func (p *GitHubProvider) isExcluded(path string) bool {
	for _, seg := range paths.Segments(path) {
		if p.excludes[seg] {
			return true
		}
	}
	return false
}

// ReadFile fetches raw file content through the contents API. A 404 is
// reported as SOURCE_UNREADABLE so callers degrade to "no content".
func (p *GitHubProvider) ReadFile(ctx context.Context, path string) (string, error) {
	if content, ok := p.cache.Get(path); ok {
		return content, nil
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", p.baseURL, p.owner, p.repo, url.PathEscape(path), url.QueryEscape(p.branch))
	body, status, err := p.get(ctx, endpoint, "application/vnd.github.raw")
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", derrors.New(derrors.SourceUnreadable, "remote file not found: "+path)
	}
	if status != http.StatusOK {
		return "", derrors.New(derrors.SourceUnreadable, fmt.Sprintf("remote read of %s failed with status %d", path, status))
	}

	content := string(body)
	p.cache.Add(path, content)
	return content, nil
}

// get performs one API request with rate-limit waiting and capped exponential
// backoff on transient failures. Rate-limit waits block until the reset time
// plus a safety buffer and then retry the same request; they do not consume
// retry budget. Once the context is cancelled no further calls are issued.
func (p *GitHubProvider) get(ctx context.Context, endpoint, accept string) ([]byte, int, error) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, derrors.Wrap(derrors.Cancelled, "request aborted", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, 0, derrors.Wrap(derrors.InternalError, "building request", err)
		}
		req.Header.Set("Accept", accept)
		req.Header.Set("User-Agent", "depscope/"+version.Version)
		if p.token != "" {
			req.Header.Set("Authorization", "Bearer "+p.token)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, derrors.Wrap(derrors.Cancelled, "request aborted", ctx.Err())
			}
			p.logger.Warn("Transient network error, backing off", logging.Fields{
				"endpoint": endpoint,
				"attempt":  attempt + 1,
				"error":    err.Error(),
			})
			if werr := sleepCtx(ctx, backoff); werr != nil {
				return nil, 0, derrors.Wrap(derrors.Cancelled, "request aborted", werr)
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if isRateLimited(resp) {
			wait := p.rateLimitWait(resp)
			p.logger.Warn("Rate limit exhausted, waiting for reset", logging.Fields{
				"waitSeconds": int(wait.Seconds()),
			})
			if werr := sleepCtx(ctx, wait); werr != nil {
				return nil, 0, derrors.Wrap(derrors.Cancelled, "request aborted", werr)
			}
			attempt-- // reset waits retry the same request without consuming budget
			continue
		}

		if resp.StatusCode >= 500 {
			if werr := sleepCtx(ctx, backoff); werr != nil {
				return nil, 0, derrors.Wrap(derrors.Cancelled, "request aborted", werr)
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		if readErr != nil {
			return nil, resp.StatusCode, derrors.Wrap(derrors.NetworkFailed, "reading response", readErr)
		}
		return body, resp.StatusCode, nil
	}

	return nil, 0, derrors.New(derrors.NetworkFailed, "retries exhausted for "+endpoint)
}

func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func (p *GitHubProvider) rateLimitWait(resp *http.Response) time.Duration {
	reset := resp.Header.Get("X-RateLimit-Reset")
	if reset != "" {
		if ts, err := strconv.ParseInt(reset, 10, 64); err == nil {
			until := time.Until(time.Unix(ts, 0)) + p.rateBuffer
			if until > 0 {
				return until
			}
		}
	}
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			return time.Duration(secs)*time.Second + p.rateBuffer
		}
	}
	return time.Minute + p.rateBuffer
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
