package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/depvet/depvet/pkg/cache"
	deperrors "github.com/depvet/depvet/pkg/errors"
	"github.com/depvet/depvet/pkg/integrations"
)

const hostMarker = "github.com"

// ParseRepoURL extracts owner and repo from a GitHub repository URL.
// It accepts any URL containing "github.com" followed by at least two
// non-empty path segments (extra segments such as /tree/main are ignored).
// Returns an INVALID_REPOSITORY_URL error otherwise.
func ParseRepoURL(url string) (owner, repo string, err error) {
	_, after, found := strings.Cut(url, hostMarker)
	if !found {
		return "", "", deperrors.New(deperrors.ErrCodeInvalidRepositoryURL, "not a github.com URL: %s", url)
	}

	var parts []string
	for _, p := range strings.Split(after, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", "", deperrors.New(deperrors.ErrCodeInvalidRepositoryURL, "missing owner/repo in URL: %s", url)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// Client provides access to the GitHub REST API for one owner/repo pair.
// It handles HTTP requests with caching, automatic retries, and optional
// authentication. Every fetch is independent and idempotent; results are
// cached under keys scoped to the repository.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	owner   string
	repo    string
}

// NewClient creates a GitHub API client for the repository at url.
// Pass an empty string for token to use unauthenticated requests
// (lower rate limits). Returns an INVALID_REPOSITORY_URL error if the
// URL cannot be split into owner and repo.
func NewClient(backend cache.Cache, url, token string, cacheTTL time.Duration) (*Client, error) {
	owner, repo, err := ParseRepoURL(url)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return &Client{
		Client:  integrations.NewClient(backend, "github:", cacheTTL, headers),
		baseURL: "https://api.github.com",
		owner:   owner,
		repo:    repo,
	}, nil
}

// Owner returns the repository owner parsed from the URL.
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name parsed from the URL.
func (c *Client) Repo() string { return c.repo }

func (c *Client) repoURL(format string, args ...any) string {
	return fmt.Sprintf("%s/repos/%s/%s", c.baseURL, c.owner, c.repo) + fmt.Sprintf(format, args...)
}

func (c *Client) key(kind string) string {
	return fmt.Sprintf("%s/%s:%s", c.owner, c.repo, kind)
}

// CommunityProfile fetches the community-health profile, including the
// health percentage and which well-known files (readme, license, ...) exist.
func (c *Client) CommunityProfile(ctx context.Context, refresh bool) (*CommunityProfile, error) {
	var p CommunityProfile
	err := c.Cached(ctx, c.key("profile"), refresh, &p, func() error {
		var data profileResponse
		if err := c.Get(ctx, c.repoURL("/community/profile"), &data); err != nil {
			return err
		}
		p = CommunityProfile{
			HealthPercentage: data.HealthPercentage,
			Files:            make(map[string]bool, len(data.Files)),
		}
		for name, raw := range data.Files {
			p.Files[name] = len(raw) > 0 && string(raw) != "null"
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LatestRelease fetches the most recent published release.
// A repository with no releases yields (nil, nil): absence is a normal
// outcome, distinct from a fetch failure.
func (c *Client) LatestRelease(ctx context.Context, refresh bool) (*Release, error) {
	var rel releaseResult
	err := c.Cached(ctx, c.key("release"), refresh, &rel, func() error {
		var data Release
		err := c.Get(ctx, c.repoURL("/releases/latest"), &data)
		if errors.Is(err, integrations.ErrNotFound) {
			rel = releaseResult{None: true}
			return nil
		}
		if err != nil {
			return err
		}
		rel = releaseResult{Release: &data}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rel.None {
		return nil, nil
	}
	return rel.Release, nil
}

// DefaultBranch fetches the repository's default branch name.
func (c *Client) DefaultBranch(ctx context.Context, refresh bool) (string, error) {
	var branch string
	err := c.Cached(ctx, c.key("branch"), refresh, &branch, func() error {
		var data repoResponse
		if err := c.Get(ctx, c.repoURL(""), &data); err != nil {
			return err
		}
		branch = data.DefaultBranch
		return nil
	})
	return branch, err
}

// FileExists reports whether a file exists at the repository's default branch.
// It resolves the default branch first, then probes the contents API.
func (c *Client) FileExists(ctx context.Context, filename string, refresh bool) (bool, error) {
	branch, err := c.DefaultBranch(ctx, refresh)
	if err != nil {
		return false, err
	}

	var exists bool
	err = c.Cached(ctx, c.key("file:"+filename), refresh, &exists, func() error {
		ok, err := c.Head(ctx, c.repoURL("/contents/%s?ref=%s", filename, branch))
		if err != nil {
			return err
		}
		exists = ok
		return nil
	})
	return exists, err
}

// Contents fetches the repository's root directory listing at the default branch.
func (c *Client) Contents(ctx context.Context, refresh bool) ([]ContentItem, error) {
	var items []ContentItem
	err := c.Cached(ctx, c.key("contents"), refresh, &items, func() error {
		return c.Get(ctx, c.repoURL("/contents"), &items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Issues fetches issues filtered by label and state, with comment counts.
func (c *Client) Issues(ctx context.Context, label, state string, refresh bool) ([]Issue, error) {
	var issues []Issue
	key := fmt.Sprintf("issues:%s:%s", label, state)
	err := c.Cached(ctx, c.key(key), refresh, &issues, func() error {
		url := c.repoURL("/issues?labels=%s&state=%s&per_page=100", label, state)
		return c.Get(ctx, url, &issues)
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// Workflows fetches the repository's GitHub Actions workflow definitions.
func (c *Client) Workflows(ctx context.Context, refresh bool) ([]Workflow, error) {
	var flows []Workflow
	err := c.Cached(ctx, c.key("workflows"), refresh, &flows, func() error {
		var data workflowsResponse
		if err := c.Get(ctx, c.repoURL("/actions/workflows"), &data); err != nil {
			return err
		}
		flows = data.Workflows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return flows, nil
}

// FailedRuns counts failed, non-pull-request runs of a workflow on the
// default branch (most recent page only).
func (c *Client) FailedRuns(ctx context.Context, workflowID int64, refresh bool) (int, error) {
	branch, err := c.DefaultBranch(ctx, refresh)
	if err != nil {
		return 0, err
	}

	var count int
	err = c.Cached(ctx, c.key(fmt.Sprintf("runs:%d", workflowID)), refresh, &count, func() error {
		url := c.repoURL("/actions/workflows/%d/runs?status=failure&branch=%s&exclude_pull_requests=true&per_page=100&page=1",
			workflowID, branch)
		var data runsResponse
		if err := c.Get(ctx, url, &data); err != nil {
			return err
		}
		count = len(data.WorkflowRuns)
		return nil
	})
	return count, err
}

// CommitsSince fetches commits on the default branch since the cutoff,
// most recent first. Pass limit <= 0 for the API default page size.
func (c *Client) CommitsSince(ctx context.Context, since time.Time, limit int, refresh bool) ([]Commit, error) {
	var commits []Commit
	key := fmt.Sprintf("commits:%s:%d", since.Format(time.RFC3339), limit)
	err := c.Cached(ctx, c.key(key), refresh, &commits, func() error {
		url := c.repoURL("/commits?since=%s", since.UTC().Format(time.RFC3339))
		if limit > 0 {
			url += fmt.Sprintf("&per_page=%d", limit)
		}
		var data []commitResponse
		if err := c.Get(ctx, url, &data); err != nil {
			return err
		}
		commits = commits[:0]
		for _, cr := range data {
			commits = append(commits, Commit{SHA: cr.SHA, Date: cr.Commit.Author.Date})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

// releaseResult distinguishes "no release yet" from a missing cache entry.
type releaseResult struct {
	Release *Release `json:"release,omitempty"`
	None    bool     `json:"none,omitempty"`
}

type profileResponse struct {
	HealthPercentage int                        `json:"health_percentage"`
	Files            map[string]json.RawMessage `json:"files"`
}

type repoResponse struct {
	DefaultBranch string `json:"default_branch"`
}

type workflowsResponse struct {
	TotalCount int        `json:"total_count"`
	Workflows  []Workflow `json:"workflows"`
}

type runsResponse struct {
	TotalCount   int `json:"total_count"`
	WorkflowRuns []struct {
		ID int64 `json:"id"`
	} `json:"workflow_runs"`
}

type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}
