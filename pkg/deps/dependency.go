// Package deps resolves raw dependency identifiers (crate names, manifest
// paths, repository URLs) into canonical Dependency records using the
// crates.io registry.
package deps

import "time"

// NoLocalVersion is the sentinel recorded when a manifest pins no version
// for a dependency, or when the identifier was a bare crate name.
const NoLocalVersion = "N/A"

// VersionInfo pairs the locally pinned version with the registry's latest.
type VersionInfo struct {
	Local  string `json:"local,omitempty"`  // Version pinned in the manifest, or NoLocalVersion
	Remote string `json:"remote,omitempty"` // max_version reported by the registry
}

// Dependency is the canonical record for one evaluated package.
// It is constructed once by the Resolver and immutable afterwards.
//
// Name may be empty when the dependency was identified only by a source
// URL (the "issues-first" path, which performs no registry lookup).
// SourceURL may be empty when the registry reports no repository; criteria
// that need source-host data fail fast on such dependencies.
type Dependency struct {
	Name          string      `json:"name,omitempty"`
	SourceURL     string      `json:"source_url,omitempty"`
	Description   string      `json:"description,omitempty"`
	Documentation string      `json:"documentation,omitempty"`
	HomePage      string      `json:"homepage,omitempty"`
	Version       VersionInfo `json:"version"`
	CreatedAt     *time.Time  `json:"created_at,omitempty"`
	UpdatedAt     *time.Time  `json:"updated_at,omitempty"`
	Downloads     int         `json:"downloads"`
}

// Label returns the best human-readable identifier for the dependency:
// the crate name when known, the source URL otherwise.
func (d *Dependency) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.SourceURL
}

// HasSourceURL reports whether source-host criteria can run for this dependency.
func (d *Dependency) HasSourceURL() bool {
	return d.SourceURL != ""
}
