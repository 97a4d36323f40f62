// Package docsrs provides a scraping client for docs.rs documentation pages.
//
// docs.rs exposes no stable API for build status or documentation coverage,
// so this package fetches the rendered HTML and inspects it:
//
//   - a "warning" element indicates the latest documentation build failed
//   - the navigation menu entry containing a percent sign carries the
//     documentation coverage score
//
// Coverage extraction failing is an expected condition (older pages don't
// render a coverage entry); it surfaces as a COVERAGE_UNPARSEABLE error
// that callers downgrade to "coverage unknown".
package docsrs
