package check

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/depvet/depvet/pkg/errors"
	"github.com/depvet/depvet/pkg/version"
)

// minorReleaseDownloads is the adoption threshold below which a pre-1.0
// package is not considered production ready.
const minorReleaseDownloads = 500

const missingSourceExplanation = "missing source URL"

// staleDays is the age cutoff, in days, used by the recency criteria.
const staleDays = 365

// CriterionResult is one cell of the result matrix.
type CriterionResult struct {
	Number      string `json:"number"`
	Question    string `json:"question"`
	Status      Status `json:"status"`
	Explanation string `json:"explanation"`
}

// evaluate runs one criterion against one dependency. Fetch failures degrade
// to a FAIL row carrying the error text; they never propagate.
func (e *Engine) evaluate(ctx context.Context, d *depContext, crit Criterion) CriterionResult {
	if checkTags[crit.Check].needsSource && !d.dep.HasSourceURL() {
		return result(crit, StatusFail, missingSourceExplanation)
	}

	var status Status
	var explanation string
	var err error

	switch crit.Check {
	case "production_readiness":
		status, explanation, err = e.checkProductionReadiness(d)
	case "documentation":
		status, explanation, err = e.checkDocumentation(ctx, d)
	case "changelog":
		status, explanation, err = e.checkChangelog(ctx, d)
	case "tests":
		status, explanation, err = e.checkTests(ctx, d, "")
	case "tests_language":
		status, explanation, err = e.checkTests(ctx, d, " Currency against the latest language release cannot be verified.")
	case "tests_integration":
		status, explanation = StatusUnsupported, "not currently supported"
	case "bug_response":
		status, explanation, err = e.checkBugResponse(ctx, d)
	case "ci_config":
		status, explanation, err = e.checkCIConfig(ctx, d)
	case "ci_passes":
		status, explanation, err = e.checkCIPasses(ctx, d)
	case "usage":
		status, explanation, err = e.checkUsage(ctx, d)
	case "latest_commit":
		status, explanation, err = e.checkLatestCommit(ctx, d)
	case "latest_release":
		status, explanation, err = e.checkLatestRelease(ctx, d)
	default:
		status, explanation = StatusUnsupported, fmt.Sprintf("unknown check %q", crit.Check)
	}

	if err != nil {
		return result(crit, StatusFail, errors.UserMessage(err))
	}
	return result(crit, status, explanation)
}

func result(crit Criterion, status Status, explanation string) CriterionResult {
	return CriterionResult{
		Number:      crit.Number,
		Question:    crit.Question,
		Status:      status,
		Explanation: explanation,
	}
}

// checkProductionReadiness judges maturity from the registry version and
// download count: a major release passes outright, a minor release with
// meaningful adoption passes with caveats, anything else fails.
func (e *Engine) checkProductionReadiness(d *depContext) (Status, string, error) {
	remote := d.dep.Version.Remote
	if remote == "" {
		return StatusFail, "no registry version available", nil
	}

	v, err := version.Parse(remote)
	if err != nil {
		return StatusFail, "", err
	}

	switch {
	case v.HasMajorRelease():
		return StatusPass, "The package has at least one major release.", nil
	case v.HasMinorRelease() && d.dep.Downloads >= minorReleaseDownloads:
		return StatusPartial, fmt.Sprintf("The package has minor releases and at least %d downloads.", minorReleaseDownloads), nil
	default:
		return StatusFail, "The package has no major release and little adoption.", nil
	}
}

// checkDocumentation resolves where documentation lives and judges it.
// READMEs pass without a coverage figure; hosted documentation pages are
// graded by build status and reported coverage percentage.
func (e *Engine) checkDocumentation(ctx context.Context, d *depContext) (Status, string, error) {
	doc, src := d.docHost()

	if src == docOnSourceHost {
		profile, err := d.communityProfile(ctx)
		if err != nil {
			return StatusFail, "", err
		}
		if profile.HasFile("readme") {
			return StatusPass, "README exists; coverage unknown.", nil
		}
		return StatusFail, "The package has no README or documentation page.", nil
	}

	exists, err := doc.PageExists(ctx, d.refresh)
	if err != nil {
		return StatusFail, "", err
	}
	if !exists {
		return StatusFail, "The package has no README or documentation page.", nil
	}

	built, err := doc.BuildSucceeded(ctx, d.refresh)
	if err != nil {
		return StatusFail, "", err
	}
	if !built {
		return StatusFail, "The documentation build is failing.", nil
	}

	score, err := doc.CoverageScore(ctx, d.refresh)
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeCoverageUnparseable {
			return StatusPartial, "The package is documented but reports no coverage figure.", nil
		}
		return StatusFail, "", err
	}

	explanation := fmt.Sprintf("%d%% of the package is documented.", score)
	switch {
	case score >= 50:
		return StatusPass, explanation, nil
	case score >= 10:
		return StatusPartial, explanation, nil
	default:
		return StatusFail, explanation, nil
	}
}

// checkChangelog passes when a CHANGELOG file exists at the default branch
// or the latest release carries notes. The file takes explanation precedence
// when both are present.
func (e *Engine) checkChangelog(ctx context.Context, d *depContext) (Status, string, error) {
	hasFile, err := d.changelogFileExists(ctx)
	if err != nil {
		return StatusFail, "", err
	}
	if hasFile {
		return StatusPass, "A CHANGELOG file exists at the default branch.", nil
	}

	release, err := d.latestRelease(ctx)
	if err != nil {
		return StatusFail, "", err
	}
	if release != nil && strings.TrimSpace(release.Body) != "" {
		return StatusPass, "The latest release carries release notes.", nil
	}
	return StatusFail, "The package has no CHANGELOG file or release notes.", nil
}

// checkTests looks for a test directory in the repository root listing.
// The caveat suffix lets the language-version criterion share the signal
// while stating its own limitation.
func (e *Engine) checkTests(ctx context.Context, d *depContext, caveat string) (Status, string, error) {
	items, err := d.rootContents(ctx)
	if err != nil {
		return StatusFail, "", err
	}
	for _, item := range items {
		if item.Type == "dir" && strings.Contains(strings.ToLower(item.Path), "test") {
			return StatusPass, "A test directory exists; coverage is not guaranteed." + caveat, nil
		}
	}
	return StatusFail, "No test directory found in the repository root." + caveat, nil
}

// checkBugResponse fails when any open bug-labeled issue has no maintainer
// response. An issue with more than one comment counts as answered.
func (e *Engine) checkBugResponse(ctx context.Context, d *depContext) (Status, string, error) {
	bugs, err := d.openBugs(ctx)
	if err != nil {
		return StatusFail, "", err
	}
	if len(bugs) == 0 {
		return StatusPass, "The package has no open bug reports.", nil
	}

	unanswered := 0
	for _, bug := range bugs {
		if bug.Comments <= 1 {
			unanswered++
		}
	}
	if unanswered > 0 {
		return StatusFail, fmt.Sprintf("%d of %d open bug reports have no maintainer response.", unanswered, len(bugs)), nil
	}
	return StatusPass, fmt.Sprintf("All %d open bug reports have a maintainer response.", len(bugs)), nil
}

func (e *Engine) checkCIConfig(ctx context.Context, d *depContext) (Status, string, error) {
	flows, err := d.workflowList(ctx)
	if err != nil {
		return StatusFail, "", err
	}
	if len(flows) == 0 {
		return StatusFail, "No CI workflows are configured.", nil
	}
	return StatusPass, fmt.Sprintf("The repository defines %d CI workflows.", len(flows)), nil
}

// checkCIPasses counts workflows with failing runs on the default branch.
// A failing count is reported in the explanation only; the status stays
// PASS, matching long-standing behavior the output format depends on.
func (e *Engine) checkCIPasses(ctx context.Context, d *depContext) (Status, string, error) {
	flows, err := d.workflowList(ctx)
	if err != nil {
		return StatusFail, "", err
	}
	if len(flows) == 0 {
		return StatusFail, "No CI workflows are configured.", nil
	}

	failing := 0
	for _, flow := range flows {
		count, err := e.failedRuns(ctx, d, flow.ID)
		if err != nil {
			return StatusFail, "", err
		}
		if count > 0 {
			failing++
		}
	}
	if failing > 0 {
		return StatusPass, fmt.Sprintf("%d of %d workflows have failing runs on the default branch.", failing, len(flows)), nil
	}
	return StatusPass, "no failing workflow", nil
}

func (e *Engine) failedRuns(ctx context.Context, d *depContext, workflowID int64) (int, error) {
	host, err := d.sourceHost()
	if err != nil {
		return 0, err
	}
	return host.FailedRuns(ctx, workflowID, d.refresh)
}

func (e *Engine) checkUsage(ctx context.Context, d *depContext) (Status, string, error) {
	commits, err := d.commitsThisYear(ctx)
	if err != nil {
		return StatusFail, "", err
	}
	if len(commits) == 0 {
		return StatusFail, "No commits so far this year.", nil
	}
	return StatusPass, fmt.Sprintf("%d commits so far this year.", len(commits)), nil
}

// checkLatestCommit reports the age of the most recent commit. Ages under a
// year fail and older ones pass; the polarity is inherited from the catalog's
// published results and kept until the catalog owners revisit it.
func (e *Engine) checkLatestCommit(ctx context.Context, d *depContext) (Status, string, error) {
	commits, err := d.mostRecentCommit(ctx)
	if err != nil {
		return StatusFail, "", err
	}
	if len(commits) == 0 {
		return StatusFail, "The repository has no commits.", nil
	}

	days := daysBetween(commits[0].Date, d.now)
	explanation := fmt.Sprintf("The latest commit was %d days ago.", days)
	if days < staleDays {
		return StatusFail, explanation, nil
	}
	return StatusPass, explanation, nil
}

func (e *Engine) checkLatestRelease(ctx context.Context, d *depContext) (Status, string, error) {
	release, err := d.latestRelease(ctx)
	if err != nil {
		return StatusFail, "", err
	}
	if release == nil {
		return StatusFail, "The package has no published release.", nil
	}

	date := release.PublishedAt
	if date.IsZero() {
		date = release.CreatedAt
	}
	days := daysBetween(date, d.now)
	if days > staleDays {
		return StatusPartial, fmt.Sprintf("The last release was %d days ago, over a year.", days), nil
	}
	return StatusPass, fmt.Sprintf("The last release was %d days ago.", days), nil
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
