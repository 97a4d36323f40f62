package check

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/depvet/depvet/pkg/cache"
	"github.com/depvet/depvet/pkg/deps"
)

// maxParallelDeps bounds how many dependencies are evaluated concurrently,
// keeping request bursts against the external APIs modest.
const maxParallelDeps = 4

// Options configures an evaluation Engine.
type Options struct {
	// Cache is the backend for HTTP response caching. Nil means no caching.
	Cache cache.Cache
	// Token is an optional bearer token for source-host requests.
	Token string
	// TTL is how long fetched responses stay cached.
	TTL time.Duration
	// Refresh bypasses cached responses when true.
	Refresh bool
	// Logger receives per-dependency progress at debug level.
	Logger *log.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine evaluates dependencies against the criterion catalog.
// An Engine is safe for concurrent use and holds no state across runs.
type Engine struct {
	catalog *Catalog
	opts    Options
	logger  *log.Logger

	newSourceHost func(url string) (SourceHost, error)
	newDocHost    func(crate string) DocHost
}

// NewEngine creates an evaluation engine over the given catalog.
func NewEngine(catalog *Catalog, opts Options) *Engine {
	backend := opts.Cache
	if backend == nil {
		backend = cache.NewNullCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		catalog:       catalog,
		opts:          opts,
		logger:        logger,
		newSourceHost: defaultSourceHost(backend, opts.Token, opts.TTL),
		newDocHost:    defaultDocHost(backend, opts.TTL),
	}
}

func (e *Engine) now() time.Time {
	if e.opts.Now != nil {
		return e.opts.Now()
	}
	return time.Now()
}

// DependencyResult is one dependency's block of the result matrix, with
// criterion results in catalog order.
type DependencyResult struct {
	Dependency deps.Dependency   `json:"dependency"`
	Results    []CriterionResult `json:"results"`
}

// SkipNotice records a dependency left out of the matrix, with the reason.
type SkipNotice struct {
	Dependency string `json:"dependency"`
	Reason     string `json:"reason"`
}

// Report is the outcome of one evaluation run.
type Report struct {
	RunID        string             `json:"run_id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Criteria     []Criterion        `json:"criteria"`
	Dependencies []DependencyResult `json:"dependencies"`
	Skipped      []SkipNotice       `json:"skipped,omitempty"`
}

// Evaluate runs the selected criteria against every dependency and returns
// the assembled matrix. The selector is either SelectorAll or one criterion
// number.
//
// Dependencies are evaluated in parallel; input order is preserved in the
// report. A dependency without a source URL is skipped entirely (with a
// notice) when any selected criterion needs source-host data, so the matrix
// never mixes evaluated and unevaluable rows for one dependency. Fetch
// failures inside a criterion degrade that single cell to FAIL; they never
// abort the run.
func (e *Engine) Evaluate(ctx context.Context, dependencies []deps.Dependency, selector string) (*Report, error) {
	criteria, err := e.catalog.Select(selector)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: e.now(),
		Criteria:    criteria,
	}

	requireSource := needsSourceURL(criteria)
	results := make([]*DependencyResult, len(dependencies))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallelDeps)

	for i := range dependencies {
		dep := dependencies[i]
		if requireSource && !dep.HasSourceURL() {
			report.Skipped = append(report.Skipped, SkipNotice{
				Dependency: dep.Label(),
				Reason:     missingSourceExplanation,
			})
			e.logger.Warn("skipping dependency", "dependency", dep.Label(), "reason", missingSourceExplanation)
			continue
		}

		i := i
		group.Go(func() error {
			e.logger.Debug("evaluating dependency", "dependency", dep.Label(), "criteria", len(criteria))
			results[i] = e.evaluateDependency(gctx, &dep, criteria)
			return gctx.Err()
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r != nil {
			report.Dependencies = append(report.Dependencies, *r)
		}
	}
	return report, nil
}

func (e *Engine) evaluateDependency(ctx context.Context, dep *deps.Dependency, criteria []Criterion) *DependencyResult {
	dctx := e.newDepContext(dep)
	rows := make([]CriterionResult, 0, len(criteria))
	for _, crit := range criteria {
		rows = append(rows, e.evaluate(ctx, dctx, crit))
	}
	return &DependencyResult{Dependency: *dep, Results: rows}
}
