// Package version parses semantic version strings and exposes the
// release-maturity predicates depvet's criteria are built on.
package version

import (
	"strconv"
	"strings"

	deperrors "github.com/depvet/depvet/pkg/errors"
)

// Version is a parsed semantic version. Only the first three dot-separated
// components are modeled; further dot-separated segments are ignored.
type Version struct {
	Raw   string // The input text, unchanged
	Major int
	Minor int
	Patch int
}

// Parse splits text into major.minor.patch components.
// It fails with a MALFORMED_VERSION error if fewer than three dot-separated
// segments exist, or if any of the first three segments is not a plain
// non-negative integer. There is no leniency for pre-release or build
// metadata suffixes attached to the patch segment ("1.0.0-rc1" fails).
func Parse(text string) (Version, error) {
	segments := strings.Split(text, ".")
	if len(segments) < 3 {
		return Version{}, deperrors.New(deperrors.ErrCodeMalformedVersion,
			"version %q has %d segments, need at least 3", text, len(segments))
	}

	var parts [3]int
	for i := range 3 {
		n, err := strconv.Atoi(segments[i])
		if err != nil || n < 0 {
			return Version{}, deperrors.New(deperrors.ErrCodeMalformedVersion,
				"version %q: segment %q is not a non-negative integer", text, segments[i])
		}
		parts[i] = n
	}

	return Version{Raw: text, Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// HasMajorRelease reports whether at least one major release exists (major > 0).
func (v Version) HasMajorRelease() bool {
	return v.Major > 0
}

// HasMinorRelease reports whether at least one minor release exists (minor >= 1).
func (v Version) HasMinorRelease() bool {
	return v.Minor >= 1
}
