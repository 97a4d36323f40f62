package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/depvet/depvet/pkg/check"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// criterionItem is one selectable row: the whole catalog or a single entry.
type criterionItem struct {
	selector string
	label    string
}

// CriterionListModel is the bubbletea model for interactive criterion selection.
type CriterionListModel struct {
	Items    []criterionItem
	Cursor   int
	Selected string
}

// newCriterionListModel builds the selection list from the catalog,
// with an "all criteria" entry first.
func newCriterionListModel(catalog *check.Catalog) CriterionListModel {
	items := []criterionItem{{selector: check.SelectorAll, label: "All criteria"}}
	for _, crit := range catalog.Criteria {
		items = append(items, criterionItem{
			selector: crit.Number,
			label:    fmt.Sprintf("%s. %s", crit.Number, crit.Question),
		})
	}
	return CriterionListModel{Items: items}
}

func (m CriterionListModel) Init() tea.Cmd {
	return nil
}

func (m CriterionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Items[m.Cursor].selector
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m CriterionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Criterion"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, item := range m.Items {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor + style.Render(item.label) + "\n")
	}

	return b.String()
}

// pickCriterion runs the interactive criterion picker and returns the chosen
// selector, or the empty string when the user quit without choosing.
func pickCriterion(catalog *check.Catalog) (string, error) {
	model, err := tea.NewProgram(newCriterionListModel(catalog)).Run()
	if err != nil {
		return "", fmt.Errorf("run criterion picker: %w", err)
	}
	final, ok := model.(CriterionListModel)
	if !ok {
		return "", nil
	}
	return final.Selected, nil
}
