package check

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/depvet/depvet/pkg/cache"
	"github.com/depvet/depvet/pkg/deps"
	"github.com/depvet/depvet/pkg/integrations/docsrs"
	"github.com/depvet/depvet/pkg/integrations/github"
)

// SourceHost is the subset of the GitHub client the evaluators need.
type SourceHost interface {
	CommunityProfile(ctx context.Context, refresh bool) (*github.CommunityProfile, error)
	LatestRelease(ctx context.Context, refresh bool) (*github.Release, error)
	FileExists(ctx context.Context, filename string, refresh bool) (bool, error)
	Contents(ctx context.Context, refresh bool) ([]github.ContentItem, error)
	Issues(ctx context.Context, label, state string, refresh bool) ([]github.Issue, error)
	Workflows(ctx context.Context, refresh bool) ([]github.Workflow, error)
	FailedRuns(ctx context.Context, workflowID int64, refresh bool) (int, error)
	CommitsSince(ctx context.Context, since time.Time, limit int, refresh bool) ([]github.Commit, error)
}

// DocHost is the subset of the docs.rs client the evaluators need.
type DocHost interface {
	URL() string
	PageExists(ctx context.Context, refresh bool) (bool, error)
	BuildSucceeded(ctx context.Context, refresh bool) (bool, error)
	CoverageScore(ctx context.Context, refresh bool) (int, error)
}

// docSource tells the documentation evaluator where docs live.
type docSource int

const (
	// docOnSourceHost means documentation is the repository README.
	docOnSourceHost docSource = iota
	// docOnDocHost means documentation is a hosted docs.rs page.
	docOnDocHost
)

// memo caches the result of one fetch for the lifetime of a dependency's
// evaluation, so criteria sharing a network call kind issue it once.
type memo[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (m *memo[T]) do(fetch func() (T, error)) (T, error) {
	m.once.Do(func() {
		m.val, m.err = fetch()
	})
	return m.val, m.err
}

// depContext owns the lazily-constructed clients and memoized fetch results
// for one dependency during one evaluation run. It is discarded afterwards.
type depContext struct {
	dep     *deps.Dependency
	engine  *Engine
	refresh bool
	now     time.Time

	hostOnce sync.Once
	host     SourceHost
	hostErr  error

	docOnce sync.Once
	doc     DocHost
	docSrc  docSource

	profile       memo[*github.CommunityProfile]
	release       memo[*github.Release]
	changelogFile memo[bool]
	contents      memo[[]github.ContentItem]
	bugs          memo[[]github.Issue]
	workflows     memo[[]github.Workflow]
	yearCommits   memo[[]github.Commit]
	latestCommit  memo[[]github.Commit]
}

func (e *Engine) newDepContext(dep *deps.Dependency) *depContext {
	return &depContext{
		dep:     dep,
		engine:  e,
		refresh: e.opts.Refresh,
		now:     e.now(),
	}
}

// sourceHost lazily constructs the source-host client for the dependency's
// repository URL. Construction fails when the URL is absent or malformed.
func (d *depContext) sourceHost() (SourceHost, error) {
	d.hostOnce.Do(func() {
		d.host, d.hostErr = d.engine.newSourceHost(d.dep.SourceURL)
	})
	return d.host, d.hostErr
}

// docHost classifies where the dependency's documentation lives and, for
// hosted documentation, constructs the docs client. A documentation URL
// pointing at the source host means the README is the documentation; any
// other URL (or none) resolves to the canonical docs page for the crate.
func (d *depContext) docHost() (DocHost, docSource) {
	d.docOnce.Do(func() {
		link := d.dep.Documentation
		if link == "" {
			link = d.dep.SourceURL
		}
		if strings.Contains(link, "github.com") {
			d.docSrc = docOnSourceHost
			return
		}
		d.docSrc = docOnDocHost
		d.doc = d.engine.newDocHost(d.dep.Name)
	})
	return d.doc, d.docSrc
}

func (d *depContext) communityProfile(ctx context.Context) (*github.CommunityProfile, error) {
	return d.profile.do(func() (*github.CommunityProfile, error) {
		host, err := d.sourceHost()
		if err != nil {
			return nil, err
		}
		return host.CommunityProfile(ctx, d.refresh)
	})
}

func (d *depContext) latestRelease(ctx context.Context) (*github.Release, error) {
	return d.release.do(func() (*github.Release, error) {
		host, err := d.sourceHost()
		if err != nil {
			return nil, err
		}
		return host.LatestRelease(ctx, d.refresh)
	})
}

func (d *depContext) changelogFileExists(ctx context.Context) (bool, error) {
	return d.changelogFile.do(func() (bool, error) {
		host, err := d.sourceHost()
		if err != nil {
			return false, err
		}
		return host.FileExists(ctx, "CHANGELOG.md", d.refresh)
	})
}

func (d *depContext) rootContents(ctx context.Context) ([]github.ContentItem, error) {
	return d.contents.do(func() ([]github.ContentItem, error) {
		host, err := d.sourceHost()
		if err != nil {
			return nil, err
		}
		return host.Contents(ctx, d.refresh)
	})
}

func (d *depContext) openBugs(ctx context.Context) ([]github.Issue, error) {
	return d.bugs.do(func() ([]github.Issue, error) {
		host, err := d.sourceHost()
		if err != nil {
			return nil, err
		}
		return host.Issues(ctx, "bug", "open", d.refresh)
	})
}

func (d *depContext) workflowList(ctx context.Context) ([]github.Workflow, error) {
	return d.workflows.do(func() ([]github.Workflow, error) {
		host, err := d.sourceHost()
		if err != nil {
			return nil, err
		}
		return host.Workflows(ctx, d.refresh)
	})
}

func (d *depContext) commitsThisYear(ctx context.Context) ([]github.Commit, error) {
	return d.yearCommits.do(func() ([]github.Commit, error) {
		host, err := d.sourceHost()
		if err != nil {
			return nil, err
		}
		yearStart := time.Date(d.now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return host.CommitsSince(ctx, yearStart, 0, d.refresh)
	})
}

func (d *depContext) mostRecentCommit(ctx context.Context) ([]github.Commit, error) {
	return d.latestCommit.do(func() ([]github.Commit, error) {
		host, err := d.sourceHost()
		if err != nil {
			return nil, err
		}
		return host.CommitsSince(ctx, time.Time{}, 1, d.refresh)
	})
}

// defaultSourceHost constructs the real GitHub client.
func defaultSourceHost(backend cache.Cache, token string, ttl time.Duration) func(url string) (SourceHost, error) {
	return func(url string) (SourceHost, error) {
		return github.NewClient(backend, url, token, ttl)
	}
}

// defaultDocHost constructs the real docs.rs client.
func defaultDocHost(backend cache.Cache, ttl time.Duration) func(crate string) DocHost {
	return func(crate string) DocHost {
		return docsrs.NewClient(backend, crate, ttl)
	}
}
