package check

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/depvet/depvet/pkg/deps"
	deperrors "github.com/depvet/depvet/pkg/errors"
	"github.com/depvet/depvet/pkg/integrations/github"
)

// fakeHost is an in-memory SourceHost with per-fetch call counting.
type fakeHost struct {
	profile    *github.CommunityProfile
	release    *github.Release
	files      map[string]bool
	contents   []github.ContentItem
	issues     []github.Issue
	workflows  []github.Workflow
	failedRuns map[int64]int
	commits    []github.Commit
	err        error
	calls      map[string]int
}

func (f *fakeHost) count(kind string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[kind]++
}

func (f *fakeHost) CommunityProfile(context.Context, bool) (*github.CommunityProfile, error) {
	f.count("profile")
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return &github.CommunityProfile{Files: map[string]bool{}}, nil
	}
	return f.profile, nil
}

func (f *fakeHost) LatestRelease(context.Context, bool) (*github.Release, error) {
	f.count("release")
	return f.release, f.err
}

func (f *fakeHost) FileExists(_ context.Context, filename string, _ bool) (bool, error) {
	f.count("file:" + filename)
	return f.files[filename], f.err
}

func (f *fakeHost) Contents(context.Context, bool) ([]github.ContentItem, error) {
	f.count("contents")
	return f.contents, f.err
}

func (f *fakeHost) Issues(_ context.Context, label, state string, _ bool) ([]github.Issue, error) {
	f.count("issues")
	return f.issues, f.err
}

func (f *fakeHost) Workflows(context.Context, bool) ([]github.Workflow, error) {
	f.count("workflows")
	return f.workflows, f.err
}

func (f *fakeHost) FailedRuns(_ context.Context, workflowID int64, _ bool) (int, error) {
	f.count("runs")
	return f.failedRuns[workflowID], f.err
}

func (f *fakeHost) CommitsSince(_ context.Context, since time.Time, limit int, _ bool) ([]github.Commit, error) {
	f.count("commits")
	if f.err != nil {
		return nil, f.err
	}
	var out []github.Commit
	for _, c := range f.commits {
		if c.Date.After(since) {
			out = append(out, c)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeDoc is an in-memory DocHost.
type fakeDoc struct {
	exists   bool
	built    bool
	score    int
	scoreErr error
}

func (f *fakeDoc) URL() string                                   { return "https://docs.rs/fake" }
func (f *fakeDoc) PageExists(context.Context, bool) (bool, error) { return f.exists, nil }
func (f *fakeDoc) BuildSucceeded(context.Context, bool) (bool, error) {
	return f.built, nil
}
func (f *fakeDoc) CoverageScore(context.Context, bool) (int, error) {
	return f.score, f.scoreErr
}

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func testEngine(t *testing.T, host SourceHost, doc DocHost) *Engine {
	t.Helper()
	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(catalog, Options{Now: func() time.Time { return testNow }})
	e.newSourceHost = func(string) (SourceHost, error) { return host, nil }
	e.newDocHost = func(string) DocHost { return doc }
	return e
}

func evalOne(t *testing.T, e *Engine, dep deps.Dependency, number string) CriterionResult {
	t.Helper()
	crit, ok := e.catalog.Get(number)
	if !ok {
		t.Fatalf("no criterion %s", number)
	}
	return e.evaluate(context.Background(), e.newDepContext(&dep), crit)
}

func TestProductionReadiness(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		downloads int
		want      Status
	}{
		{"major release", "2.0.0", 0, StatusPass},
		{"minor with adoption", "0.3.0", 500, StatusPartial},
		{"minor below threshold", "0.3.0", 499, StatusFail},
		{"patch only", "0.0.5", 1000000, StatusFail},
	}

	e := testEngine(t, &fakeHost{}, &fakeDoc{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dep := deps.Dependency{
				Name:      "x",
				Version:   deps.VersionInfo{Remote: tt.version},
				Downloads: tt.downloads,
			}
			got := evalOne(t, e, dep, "1")
			if got.Status != tt.want {
				t.Errorf("version %s downloads %d: expected %s, got %s (%s)",
					tt.version, tt.downloads, tt.want, got.Status, got.Explanation)
			}
		})
	}
}

func TestProductionReadinessMalformedVersion(t *testing.T) {
	e := testEngine(t, &fakeHost{}, &fakeDoc{})
	dep := deps.Dependency{Name: "x", Version: deps.VersionInfo{Remote: "1.0"}}
	got := evalOne(t, e, dep, "1")
	if got.Status != StatusFail {
		t.Errorf("expected FAIL for malformed version, got %s", got.Status)
	}
}

func TestDocumentationHostedCoverage(t *testing.T) {
	tests := []struct {
		score int
		want  Status
	}{
		{75, StatusPass},
		{30, StatusPartial},
		{5, StatusFail},
	}

	for _, tt := range tests {
		doc := &fakeDoc{exists: true, built: true, score: tt.score}
		e := testEngine(t, &fakeHost{}, doc)
		dep := deps.Dependency{Name: "x", Documentation: "https://docs.rs/x"}
		got := evalOne(t, e, dep, "2")
		if got.Status != tt.want {
			t.Errorf("score %d: expected %s, got %s", tt.score, tt.want, got.Status)
		}
		if !strings.Contains(got.Explanation, "%") {
			t.Errorf("explanation should state the percentage, got %q", got.Explanation)
		}
	}
}

func TestDocumentationCoverageUnparseable(t *testing.T) {
	doc := &fakeDoc{
		exists:   true,
		built:    true,
		scoreErr: deperrors.New(deperrors.ErrCodeCoverageUnparseable, "no coverage entry"),
	}
	e := testEngine(t, &fakeHost{}, doc)
	dep := deps.Dependency{Name: "x", Documentation: "https://docs.rs/x"}
	got := evalOne(t, e, dep, "2")
	if got.Status != StatusPartial {
		t.Errorf("expected PARTIAL for unparseable coverage, got %s", got.Status)
	}
}

func TestDocumentationFailedBuild(t *testing.T) {
	doc := &fakeDoc{exists: true, built: false}
	e := testEngine(t, &fakeHost{}, doc)
	dep := deps.Dependency{Name: "x", Documentation: "https://docs.rs/x"}
	got := evalOne(t, e, dep, "2")
	if got.Status != StatusFail {
		t.Errorf("expected FAIL for failed build, got %s", got.Status)
	}
}

func TestDocumentationReadme(t *testing.T) {
	host := &fakeHost{profile: &github.CommunityProfile{Files: map[string]bool{"readme": true}}}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{
		Name:          "x",
		SourceURL:     "https://github.com/o/r",
		Documentation: "https://github.com/o/r",
	}
	got := evalOne(t, e, dep, "2")
	if got.Status != StatusPass {
		t.Errorf("expected PASS for existing README, got %s (%s)", got.Status, got.Explanation)
	}
}

func TestChangelogFileTakesPrecedence(t *testing.T) {
	host := &fakeHost{
		files:   map[string]bool{"CHANGELOG.md": true},
		release: &github.Release{Body: "notes"},
	}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	got := evalOne(t, e, dep, "3")
	if got.Status != StatusPass {
		t.Fatalf("expected PASS, got %s", got.Status)
	}
	if !strings.Contains(got.Explanation, "CHANGELOG") {
		t.Errorf("CHANGELOG file should take explanation precedence, got %q", got.Explanation)
	}
}

func TestChangelogReleaseNotes(t *testing.T) {
	host := &fakeHost{release: &github.Release{Body: "release notes here"}}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	got := evalOne(t, e, dep, "3")
	if got.Status != StatusPass {
		t.Errorf("expected PASS for release notes, got %s", got.Status)
	}
}

func TestChangelogMissing(t *testing.T) {
	e := testEngine(t, &fakeHost{}, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	got := evalOne(t, e, dep, "3")
	if got.Status != StatusFail {
		t.Errorf("expected FAIL, got %s", got.Status)
	}
}

func TestTestsDirectory(t *testing.T) {
	host := &fakeHost{contents: []github.ContentItem{
		{Name: "src", Path: "src", Type: "dir"},
		{Name: "tests", Path: "tests", Type: "dir"},
	}}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}

	if got := evalOne(t, e, dep, "4"); got.Status != StatusPass {
		t.Errorf("expected PASS with tests dir, got %s", got.Status)
	}

	// The language-version criterion shares the signal with an extra caveat.
	langResult := evalOne(t, e, dep, "5")
	if langResult.Status != StatusPass {
		t.Errorf("expected PASS for language criterion, got %s", langResult.Status)
	}
	if !strings.Contains(langResult.Explanation, "language") {
		t.Errorf("expected language caveat, got %q", langResult.Explanation)
	}
}

func TestTestsDirectoryMissing(t *testing.T) {
	host := &fakeHost{contents: []github.ContentItem{{Name: "src", Path: "src", Type: "dir"}}}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	if got := evalOne(t, e, dep, "4"); got.Status != StatusFail {
		t.Errorf("expected FAIL without tests dir, got %s", got.Status)
	}
}

func TestIntegrationTestsUnsupported(t *testing.T) {
	e := testEngine(t, &fakeHost{}, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	got := evalOne(t, e, dep, "6")
	if got.Status != StatusUnsupported {
		t.Errorf("expected UNSUPPORTED, got %s", got.Status)
	}
}

func TestBugResponse(t *testing.T) {
	tests := []struct {
		name   string
		issues []github.Issue
		want   Status
	}{
		{"no open bugs", nil, StatusPass},
		{"unanswered bug", []github.Issue{{Number: 1, Comments: 0}}, StatusFail},
		{"answered bug", []github.Issue{{Number: 1, Comments: 3}}, StatusPass},
		{"mixed", []github.Issue{{Number: 1, Comments: 3}, {Number: 2, Comments: 1}}, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine(t, &fakeHost{issues: tt.issues}, &fakeDoc{})
			dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
			got := evalOne(t, e, dep, "7")
			if got.Status != tt.want {
				t.Errorf("expected %s, got %s (%s)", tt.want, got.Status, got.Explanation)
			}
		})
	}
}

func TestCIConfiguration(t *testing.T) {
	withFlows := &fakeHost{workflows: []github.Workflow{{ID: 1, Name: "ci"}}}
	e := testEngine(t, withFlows, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	if got := evalOne(t, e, dep, "8"); got.Status != StatusPass {
		t.Errorf("expected PASS with workflows, got %s", got.Status)
	}

	e = testEngine(t, &fakeHost{}, &fakeDoc{})
	if got := evalOne(t, e, dep, "8"); got.Status != StatusFail {
		t.Errorf("expected FAIL without workflows, got %s", got.Status)
	}
}

func TestCIPassesNeverDowngrades(t *testing.T) {
	host := &fakeHost{
		workflows:  []github.Workflow{{ID: 1, Name: "ci"}, {ID: 2, Name: "release"}},
		failedRuns: map[int64]int{1: 3},
	}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	got := evalOne(t, e, dep, "9")

	// Failing workflows show up in the explanation only.
	if got.Status != StatusPass {
		t.Errorf("expected PASS, got %s", got.Status)
	}
	if !strings.Contains(got.Explanation, "1 of 2") {
		t.Errorf("expected failing count in explanation, got %q", got.Explanation)
	}
}

func TestCIPassesClean(t *testing.T) {
	host := &fakeHost{workflows: []github.Workflow{{ID: 1, Name: "ci"}}}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	got := evalOne(t, e, dep, "9")
	if got.Status != StatusPass || got.Explanation != "no failing workflow" {
		t.Errorf("expected clean pass, got %s (%q)", got.Status, got.Explanation)
	}
}

func TestUsageThisYear(t *testing.T) {
	active := &fakeHost{commits: []github.Commit{{SHA: "a", Date: testNow.AddDate(0, -1, 0)}}}
	e := testEngine(t, active, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	if got := evalOne(t, e, dep, "10"); got.Status != StatusPass {
		t.Errorf("expected PASS with recent commits, got %s", got.Status)
	}

	stale := &fakeHost{commits: []github.Commit{{SHA: "a", Date: testNow.AddDate(-2, 0, 0)}}}
	e = testEngine(t, stale, &fakeDoc{})
	if got := evalOne(t, e, dep, "10"); got.Status != StatusFail {
		t.Errorf("expected FAIL with no commits this year, got %s", got.Status)
	}
}

func TestLatestCommitPolarity(t *testing.T) {
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}

	// A commit within the last year fails; an older one passes.
	recent := &fakeHost{commits: []github.Commit{{SHA: "a", Date: testNow.AddDate(0, 0, -10)}}}
	e := testEngine(t, recent, &fakeDoc{})
	got := evalOne(t, e, dep, "11")
	if got.Status != StatusFail {
		t.Errorf("expected FAIL for recent commit, got %s", got.Status)
	}
	if !strings.Contains(got.Explanation, "10 days") {
		t.Errorf("expected day count in explanation, got %q", got.Explanation)
	}

	old := &fakeHost{commits: []github.Commit{{SHA: "a", Date: testNow.AddDate(0, 0, -400)}}}
	e = testEngine(t, old, &fakeDoc{})
	if got := evalOne(t, e, dep, "11"); got.Status != StatusPass {
		t.Errorf("expected PASS for old commit, got %s", got.Status)
	}
}

func TestLatestRelease(t *testing.T) {
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}

	recent := &fakeHost{release: &github.Release{PublishedAt: testNow.AddDate(0, 0, -10)}}
	e := testEngine(t, recent, &fakeDoc{})
	got := evalOne(t, e, dep, "12")
	if got.Status != StatusPass {
		t.Errorf("expected PASS for recent release, got %s", got.Status)
	}
	if !strings.Contains(got.Explanation, "10 days") {
		t.Errorf("expected day count, got %q", got.Explanation)
	}

	old := &fakeHost{release: &github.Release{PublishedAt: testNow.AddDate(0, 0, -400)}}
	e = testEngine(t, old, &fakeDoc{})
	if got := evalOne(t, e, dep, "12"); got.Status != StatusPartial {
		t.Errorf("expected PARTIAL for year-old release, got %s", got.Status)
	}

	e = testEngine(t, &fakeHost{}, &fakeDoc{})
	if got := evalOne(t, e, dep, "12"); got.Status != StatusFail {
		t.Errorf("expected FAIL with no release, got %s", got.Status)
	}
}

func TestMissingSourceURLFailsSourceCriteria(t *testing.T) {
	e := testEngine(t, &fakeHost{}, &fakeDoc{})
	dep := deps.Dependency{Name: "x", Version: deps.VersionInfo{Remote: "1.0.0"}}

	got := evalOne(t, e, dep, "3")
	if got.Status != StatusFail || got.Explanation != missingSourceExplanation {
		t.Errorf("expected FAIL %q, got %s (%q)", missingSourceExplanation, got.Status, got.Explanation)
	}

	// Registry-only criteria still work.
	if got := evalOne(t, e, dep, "1"); got.Status != StatusPass {
		t.Errorf("expected PASS for production readiness, got %s", got.Status)
	}
}

func TestFetchErrorDegradesSingleCell(t *testing.T) {
	host := &fakeHost{err: deperrors.New(deperrors.ErrCodeRepositoryUnavailable, "github unreachable")}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{
		Name:      "x",
		SourceURL: "https://github.com/o/r",
		Version:   deps.VersionInfo{Remote: "1.0.0"},
	}

	got := evalOne(t, e, dep, "3")
	if got.Status != StatusFail {
		t.Errorf("expected FAIL, got %s", got.Status)
	}
	if !strings.Contains(got.Explanation, "github unreachable") {
		t.Errorf("expected error text in explanation, got %q", got.Explanation)
	}

	// A registry-only criterion is unaffected.
	if got := evalOne(t, e, dep, "1"); got.Status != StatusPass {
		t.Errorf("expected PASS, got %s", got.Status)
	}
}

func TestEvaluationIsIdempotent(t *testing.T) {
	host := &fakeHost{release: &github.Release{PublishedAt: testNow.AddDate(0, 0, -30)}}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}

	first := evalOne(t, e, dep, "12")
	second := evalOne(t, e, dep, "12")
	if first != second {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestFetchesAreMemoizedPerDependency(t *testing.T) {
	host := &fakeHost{
		files:   map[string]bool{"CHANGELOG.md": false},
		release: &github.Release{Body: "notes", PublishedAt: testNow.AddDate(0, 0, -5)},
	}
	e := testEngine(t, host, &fakeDoc{})
	dep := deps.Dependency{Name: "x", SourceURL: "https://github.com/o/r"}
	dctx := e.newDepContext(&dep)

	// Criteria 3 and 12 both need the latest release; one fetch serves both.
	for _, number := range []string{"3", "12"} {
		crit, _ := e.catalog.Get(number)
		e.evaluate(context.Background(), dctx, crit)
	}
	if host.calls["release"] != 1 {
		t.Errorf("expected 1 release fetch, got %d", host.calls["release"])
	}
}
