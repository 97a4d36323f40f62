package deps

import (
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/depvet/depvet/pkg/errors"
)

// cargoManifest mirrors the subset of a Cargo.toml we care about. Dependency
// values are either a plain version string or an inline table with an
// optional "version" key, so the map value stays untyped.
type cargoManifest struct {
	Dependencies map[string]any `toml:"dependencies"`
}

// parseManifest reads a Cargo.toml from disk and returns the declared
// dependencies as name -> pinned version, sorted by name. Dependencies
// declared without a version (path or git requirements) map to
// NoLocalVersion.
func parseManifest(path string) ([]manifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to read manifest %q", path)
	}

	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to parse manifest %q", path)
	}

	entries := make([]manifestEntry, 0, len(manifest.Dependencies))
	for name, spec := range manifest.Dependencies {
		entries = append(entries, manifestEntry{Name: name, Version: manifestVersion(spec)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

type manifestEntry struct {
	Name    string
	Version string
}

func manifestVersion(spec any) string {
	switch v := spec.(type) {
	case string:
		return v
	case map[string]any:
		if version, ok := v["version"].(string); ok {
			return version
		}
	}
	return NoLocalVersion
}
