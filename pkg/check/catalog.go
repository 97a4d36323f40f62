package check

import (
	_ "embed"

	"github.com/BurntSushi/toml"

	"github.com/depvet/depvet/pkg/errors"
)

//go:embed criteria.toml
var criteriaTOML []byte

// SelectorAll selects every catalog entry.
const SelectorAll = "all"

// Criterion is one catalog entry. The catalog is loaded once at startup and
// read-only afterwards.
type Criterion struct {
	Number      string `toml:"number" json:"number"`
	Question    string `toml:"question" json:"question"`
	Explanation string `toml:"explanation" json:"explanation"`
	Check       string `toml:"check" json:"-"`
}

// Catalog is the ordered list of maintenance criteria.
type Catalog struct {
	Criteria []Criterion `toml:"criteria"`
}

// checkTags lists the evaluators the engine dispatches on, and whether each
// one needs source-host data. Criteria needing a source URL cause
// dependencies without one to be skipped (see Engine.Evaluate).
var checkTags = map[string]struct{ needsSource bool }{
	"production_readiness": {false},
	"documentation":        {false},
	"changelog":            {true},
	"tests":                {true},
	"tests_language":       {true},
	"tests_integration":    {false},
	"bug_response":         {true},
	"ci_config":            {true},
	"ci_passes":            {true},
	"usage":                {true},
	"latest_commit":        {true},
	"latest_release":       {true},
}

// LoadCatalog parses the embedded catalog and validates every entry against
// the engine's known evaluators.
func LoadCatalog() (*Catalog, error) {
	var catalog Catalog
	if err := toml.Unmarshal(criteriaTOML, &catalog); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to parse criteria catalog")
	}
	if len(catalog.Criteria) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "criteria catalog is empty")
	}
	for _, crit := range catalog.Criteria {
		if _, ok := checkTags[crit.Check]; !ok {
			return nil, errors.New(errors.ErrCodeInternal, "criterion %s references unknown check %q", crit.Number, crit.Check)
		}
	}
	return &catalog, nil
}

// Get returns the catalog entry with the given number.
func (c *Catalog) Get(number string) (Criterion, bool) {
	for _, crit := range c.Criteria {
		if crit.Number == number {
			return crit, true
		}
	}
	return Criterion{}, false
}

// Select returns the criteria matching the selector, in catalog order.
// The selector is either SelectorAll or one criterion number.
func (c *Catalog) Select(selector string) ([]Criterion, error) {
	if selector == SelectorAll || selector == "" {
		return c.Criteria, nil
	}
	crit, ok := c.Get(selector)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidIdentifier, "no criterion numbered %q (valid: 1-%d or %q)", selector, len(c.Criteria), SelectorAll)
	}
	return []Criterion{crit}, nil
}

// needsSourceURL reports whether any of the given criteria require
// source-host data.
func needsSourceURL(criteria []Criterion) bool {
	for _, crit := range criteria {
		if checkTags[crit.Check].needsSource {
			return true
		}
	}
	return false
}
