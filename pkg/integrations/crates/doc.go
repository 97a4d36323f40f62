// Package crates provides an HTTP client for the crates.io API.
//
// # Overview
//
// This package fetches crate metadata from crates.io (https://crates.io),
// the Rust community's package registry.
//
// # Usage
//
//	client := crates.NewClient(backend, 24*time.Hour)
//
//	crate, err := client.FetchCrate(ctx, "serde", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(crate.Name, crate.Version, crate.Downloads)
//
// # CrateInfo
//
// [FetchCrate] returns a [CrateInfo] containing:
//
//   - Name, Version: crate identity (max_version from the API)
//   - Description: crate description
//   - Documentation, Repository, HomePage: URLs for enrichment
//   - Downloads: total download count
//   - CreatedAt, UpdatedAt: registry timestamps
//
// # Caching
//
// Responses are cached to reduce load on crates.io. The cache TTL is set
// when creating the client. Pass refresh=true to bypass the cache.
//
// # User-Agent
//
// The client includes a User-Agent header as requested by crates.io policy.
package crates
