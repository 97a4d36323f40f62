package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/depvet/depvet/pkg/cache"
	"github.com/depvet/depvet/pkg/check"
	"github.com/depvet/depvet/pkg/deps"
	"github.com/depvet/depvet/pkg/integrations/crates"
)

const defaultTTL = 24 * time.Hour

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	criterion     string        // criterion selector: "all" or a number
	jsonOut       bool          // emit JSON instead of tables
	refresh       bool          // bypass cached responses
	backend       string        // cache backend: file, redis, none
	redisAddr     string        // redis address for the redis backend
	redisDB       int           // redis database number
	redisPassword string        // redis password
	ttl           time.Duration // how long responses stay cached
	interactive   bool          // pick the criterion interactively
}

func newCheckCmd() *cobra.Command {
	opts := checkOpts{
		criterion: check.SelectorAll,
		backend:   backendFile,
		redisAddr: "localhost:6379",
		ttl:       defaultTTL,
	}

	cmd := &cobra.Command{
		Use:   "check [identifier...]",
		Short: "Evaluate dependencies against the maintenance criteria",
		Long: `Check evaluates each dependency against the maintenance-health catalog.

Identifiers can be crate names ("serde"), Cargo manifest paths
("path/to/Cargo.toml"), or GitHub repository URLs. Manifest identifiers
expand to every dependency the manifest declares.

Set GITHUB_TOKEN to raise the GitHub API rate limit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.criterion, "criterion", "c", opts.criterion, `criterion number to check, or "all"`)
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output results as JSON")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached responses")
	cmd.Flags().StringVar(&opts.backend, "cache-backend", opts.backend, "cache backend: file, redis, none")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "redis address for --cache-backend=redis")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "redis database number")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "redis password")
	cmd.Flags().DurationVar(&opts.ttl, "cache-ttl", opts.ttl, "how long responses stay cached")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the criterion interactively")

	return cmd
}

func runCheck(ctx context.Context, identifiers []string, opts *checkOpts) error {
	logger := loggerFromContext(ctx)

	catalog, err := check.LoadCatalog()
	if err != nil {
		return err
	}

	if opts.interactive {
		selector, err := pickCriterion(catalog)
		if err != nil {
			return err
		}
		if selector == "" {
			printInfo("No criterion selected")
			return nil
		}
		opts.criterion = selector
	}

	backend, err := openCache(ctx, opts)
	if err != nil {
		return err
	}
	defer backend.Close()

	registry := crates.NewClient(backend, opts.ttl)
	resolver := deps.NewResolver(registry, opts.refresh)

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Resolving dependencies...")
	if !opts.jsonOut {
		spinner.Start()
	}
	dependencies, err := resolver.Resolve(ctx, identifiers)
	if !opts.jsonOut {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d dependencies", len(dependencies)))

	engine := check.NewEngine(catalog, check.Options{
		Cache:   backend,
		Token:   os.Getenv("GITHUB_TOKEN"),
		TTL:     opts.ttl,
		Refresh: opts.refresh,
		Logger:  logger,
	})

	prog = newProgress(logger)
	spinner = newSpinnerWithContext(ctx, "Evaluating criteria...")
	if !opts.jsonOut {
		spinner.Start()
	}
	report, err := engine.Evaluate(ctx, dependencies, opts.criterion)
	if !opts.jsonOut {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Evaluated %d dependencies", len(report.Dependencies)))

	if opts.jsonOut {
		return writeJSON(os.Stdout, report)
	}
	renderReport(report)
	return nil
}

const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// openCache constructs the cache backend selected by the flags.
func openCache(ctx context.Context, opts *checkOpts) (cache.Cache, error) {
	switch opts.backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     opts.redisAddr,
			Password: opts.redisPassword,
			DB:       opts.redisDB,
		})
	case backendFile:
		dir, err := cache.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (valid: file, redis, none)", opts.backend)
	}
}
