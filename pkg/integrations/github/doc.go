// Package github provides an HTTP client for the GitHub REST API.
//
// # Overview
//
// A [Client] is bound to one owner/repo pair, parsed from a repository URL
// with [ParseRepoURL]. It exposes the repository signals depvet's criteria
// need: the community-health profile, the latest release, file presence at
// the default branch, the root directory listing, labeled issues with
// comment counts, workflow definitions and their failed runs, and recent
// commits.
//
// # Absence vs. failure
//
// [Client.LatestRelease] returns (nil, nil) for a repository that has never
// published a release. Callers must treat that as a normal outcome; only a
// non-nil error indicates the fetch itself failed.
//
// # Authentication
//
// Pass a bearer token to [NewClient] to raise rate limits. An empty token
// makes unauthenticated requests.
//
// # Caching
//
// Every fetch is cached under a key scoped to the repository and fetch
// kind, so repeated calls within one evaluation run hit the network at
// most once per kind.
package github
