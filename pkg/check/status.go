// Package check implements the maintenance-health engine: a fixed catalog
// of criteria, per-dependency evaluation against registry, source-host, and
// documentation-host metadata, and the result matrix consumed by the CLI.
package check

// Status is the verdict for one (dependency, criterion) pair.
type Status string

const (
	// StatusPass means the dependency fully satisfies the criterion.
	StatusPass Status = "PASS"
	// StatusPartial means the criterion is satisfied with caveats.
	StatusPartial Status = "PARTIAL"
	// StatusFail means the dependency does not satisfy the criterion.
	StatusFail Status = "FAIL"
	// StatusUnsupported means the criterion cannot currently be evaluated
	// for this dependency kind.
	StatusUnsupported Status = "UNSUPPORTED"
)

// Rank orders statuses for display, best first.
func (s Status) Rank() int {
	switch s {
	case StatusPass:
		return 0
	case StatusPartial:
		return 1
	case StatusFail:
		return 2
	default:
		return 3
	}
}
