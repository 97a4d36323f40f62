package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/depvet/depvet/pkg/check"
	"github.com/depvet/depvet/pkg/deps"
)

// writeJSON encodes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderReport prints one table per dependency, plus skip notices.
func renderReport(report *check.Report) {
	for i := range report.Dependencies {
		renderDependency(&report.Dependencies[i])
	}
	for _, skip := range report.Skipped {
		printWarning("Skipped %s: %s", skip.Dependency, skip.Reason)
	}
}

func renderDependency(dr *check.DependencyResult) {
	fmt.Println()
	fmt.Println(StyleTitle.Render(dr.Dependency.Label()))
	renderDependencyDetails(&dr.Dependency)

	statuses := make([]check.Status, len(dr.Results))
	rows := make([][]string, len(dr.Results))
	for i, row := range dr.Results {
		statuses[i] = row.Status
		rows[i] = []string{row.Number, row.Question, string(row.Status), row.Explanation}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleTitle.Padding(0, 1)
			}
			if col == 2 {
				return statusStyle(statuses[row]).Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		Headers("#", "Question", "Status", "Explanation").
		Rows(rows...)

	fmt.Println(t)
}

func renderDependencyDetails(dep *deps.Dependency) {
	if dep.Description != "" {
		printDetail("%s", dep.Description)
	}
	if dep.Version.Remote != "" {
		printDetail("local %s / remote %s", dep.Version.Local, dep.Version.Remote)
	}
	if dep.Downloads > 0 {
		printDetail("%d downloads", dep.Downloads)
	}
	if dep.SourceURL != "" {
		printDetail("%s", dep.SourceURL)
	}
}

// renderCriteria prints the catalog as a table.
func renderCriteria(criteria []check.Criterion) {
	rows := make([][]string, len(criteria))
	for i, crit := range criteria {
		rows[i] = []string{crit.Number, crit.Question, crit.Explanation}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleTitle.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		Headers("#", "Question", "Explanation").
		Rows(rows...)

	fmt.Println(t)
}
