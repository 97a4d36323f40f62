// Package integrations provides HTTP clients for the external services
// depvet pulls metadata from.
//
// # Subpackages
//
//   - crates: crates.io package registry (version, downloads, URLs)
//   - github: GitHub REST API (community profile, releases, issues, workflows, commits)
//   - docsrs: docs.rs documentation pages (build status, coverage)
//
// # Shared Client
//
// [Client] provides the functionality shared by all service clients:
// HTTP response caching via [cache.Cache], automatic retries with backoff
// for transient failures, and default request headers.
//
// # Error Handling
//
// All clients return [ErrNotFound] when a resource doesn't exist and
// [ErrNetwork] for transport failures. Network errors and 5xx responses
// are wrapped in [httputil.RetryableError] internally and retried up to
// three times before surfacing.
//
// [cache.Cache]: github.com/depvet/depvet/pkg/cache.Cache
// [httputil.RetryableError]: github.com/depvet/depvet/pkg/httputil.RetryableError
package integrations
