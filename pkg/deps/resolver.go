package deps

import (
	"context"
	"strings"

	stderrors "errors"

	"github.com/depvet/depvet/pkg/errors"
	"github.com/depvet/depvet/pkg/integrations"
	"github.com/depvet/depvet/pkg/integrations/crates"
)

const (
	manifestSuffix   = ".toml"
	sourceHostPrefix = "https://github.com"
)

// Registry is the subset of the crates.io client the resolver needs.
type Registry interface {
	FetchCrate(ctx context.Context, crate string, refresh bool) (*crates.CrateInfo, error)
}

// Resolver turns raw identifiers into Dependency records.
//
// Identifiers are classified by shape:
//   - "*.toml" is treated as a Cargo manifest path; each declared dependency
//     is resolved against the registry with its pinned version preserved
//   - a source-host URL skips the registry entirely and yields a record
//     carrying only the URL
//   - anything else is looked up as a crate name
//
// Resolution is fail-fast: the first identifier that cannot be resolved
// aborts the whole run.
type Resolver struct {
	registry Registry
	refresh  bool
}

// NewResolver creates a resolver backed by the given registry client.
// When refresh is true, registry lookups bypass the cache.
func NewResolver(registry Registry, refresh bool) *Resolver {
	return &Resolver{registry: registry, refresh: refresh}
}

// Resolve expands every identifier into one or more dependencies, in input
// order (manifest entries sorted by name). A single failure aborts resolution.
func (r *Resolver) Resolve(ctx context.Context, identifiers []string) ([]Dependency, error) {
	var deps []Dependency
	for _, id := range identifiers {
		resolved, err := r.resolveOne(ctx, id)
		if err != nil {
			return nil, err
		}
		deps = append(deps, resolved...)
	}
	return deps, nil
}

func (r *Resolver) resolveOne(ctx context.Context, identifier string) ([]Dependency, error) {
	switch {
	case identifier == "":
		return nil, errors.New(errors.ErrCodeInvalidIdentifier, "empty dependency identifier")

	case strings.HasSuffix(identifier, manifestSuffix):
		return r.fromManifest(ctx, identifier)

	case strings.HasPrefix(identifier, sourceHostPrefix):
		return []Dependency{{SourceURL: integrations.NormalizeRepoURL(identifier)}}, nil

	default:
		dep, err := r.fromName(ctx, identifier, NoLocalVersion)
		if err != nil {
			return nil, err
		}
		return []Dependency{*dep}, nil
	}
}

func (r *Resolver) fromManifest(ctx context.Context, path string) ([]Dependency, error) {
	entries, err := parseManifest(path)
	if err != nil {
		return nil, err
	}

	deps := make([]Dependency, 0, len(entries))
	for _, entry := range entries {
		dep, err := r.fromName(ctx, entry.Name, entry.Version)
		if err != nil {
			return nil, err
		}
		deps = append(deps, *dep)
	}
	return deps, nil
}

func (r *Resolver) fromName(ctx context.Context, name, localVersion string) (*Dependency, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}

	info, err := r.registry.FetchCrate(ctx, name, r.refresh)
	if err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "crate %q not found in registry", name)
		}
		return nil, errors.Wrap(errors.ErrCodeRegistryUnavailable, err, "registry lookup for %q failed", name)
	}

	return &Dependency{
		Name:          info.Name,
		SourceURL:     info.Repository,
		Description:   info.Description,
		Documentation: info.Documentation,
		HomePage:      info.HomePage,
		Version:       VersionInfo{Local: localVersion, Remote: info.Version},
		CreatedAt:     info.CreatedAt,
		UpdatedAt:     info.UpdatedAt,
		Downloads:     info.Downloads,
	}, nil
}
