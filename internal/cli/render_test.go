package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/depvet/depvet/pkg/check"
	"github.com/depvet/depvet/pkg/deps"
)

func sampleReport() *check.Report {
	return &check.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		Dependencies: []check.DependencyResult{
			{
				Dependency: deps.Dependency{
					Name:      "serde",
					SourceURL: "https://github.com/serde-rs/serde",
					Version:   deps.VersionInfo{Local: deps.NoLocalVersion, Remote: "1.0.193"},
					Downloads: 250000000,
				},
				Results: []check.CriterionResult{
					{Number: "1", Question: "Is the package production ready?", Status: check.StatusPass, Explanation: "The package has at least one major release."},
					{Number: "6", Question: "Are the tests run against the latest integration version?", Status: check.StatusUnsupported, Explanation: "not currently supported"},
				},
			},
		},
		Skipped: []check.SkipNotice{{Dependency: "no-source", Reason: "missing source URL"}},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("writeJSON failed: %v", err)
	}

	var decoded check.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RunID != "run-1" {
		t.Errorf("expected run ID to round-trip, got %q", decoded.RunID)
	}
	if len(decoded.Dependencies) != 1 || decoded.Dependencies[0].Dependency.Name != "serde" {
		t.Errorf("unexpected dependencies in output: %+v", decoded.Dependencies)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented JSON")
	}
}

func TestRenderReportDoesNotPanic(t *testing.T) {
	// Table rendering writes to stdout; this guards the StyleFunc row
	// indexing against off-by-one regressions.
	renderReport(sampleReport())
}

func TestRenderCriteriaDoesNotPanic(t *testing.T) {
	catalog, err := check.LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	renderCriteria(catalog.Criteria)
}
