package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/report-ai/cli/internal/db"
)

// CriteriaView manages the evaluation criteria: the active set here is what
// an analysis run evaluates.
type CriteriaView struct {
	app      *App
	criteria []*db.Criterion
	selected int
	width    int
	height   int
	loading  bool
	status   string
	errorMsg string
}

// NewCriteriaView creates a new criteria view
func NewCriteriaView(app *App) *CriteriaView {
	return &CriteriaView{
		app:    app,
		width:  80,
		height: 24,
	}
}

// Init initializes the criteria view
func (cv *CriteriaView) Init() tea.Cmd {
	cv.loading = true
	cv.errorMsg = ""
	return cv.loadCriteria
}

// Update handles updates
func (cv *CriteriaView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cv.width = msg.Width
		cv.height = msg.Height
		return cv, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if cv.selected < len(cv.criteria)-1 {
				cv.selected++
			}
			return cv, nil
		case "k", "up":
			if cv.selected > 0 {
				cv.selected--
			}
			return cv, nil
		case " ", "enter":
			if cv.selected < len(cv.criteria) {
				c := cv.criteria[cv.selected]
				return cv, cv.toggleActive(c)
			}
			return cv, nil
		case "d":
			if cv.selected < len(cv.criteria) {
				c := cv.criteria[cv.selected]
				return cv, cv.deleteCriterion(c)
			}
			return cv, nil
		case "r":
			return cv, cv.Init()
		}
	case criteriaLoadedMsg:
		cv.criteria = msg.criteria
		cv.loading = false
		if cv.selected >= len(cv.criteria) {
			cv.selected = 0
		}
		return cv, nil
	case criterionSavedMsg:
		cv.status = msg.status
		return cv, cv.loadCriteria
	case errorMsg:
		cv.errorMsg = msg.error.Error()
		cv.loading = false
		return cv, nil
	}
	return cv, nil
}

// View renders the criteria view
func (cv *CriteriaView) View() string {
	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("Criteria")

	lines = append(lines, title)
	lines = append(lines, "")

	if cv.errorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("Error: "+cv.errorMsg))
		lines = append(lines, "")
	}

	if cv.status != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Render(cv.status))
		lines = append(lines, "")
	}

	if cv.loading {
		lines = append(lines, "Loading criteria...")
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if len(cv.criteria) == 0 {
		lines = append(lines, "No criteria loaded. Use -load-criteria <file> to import a version.")
	} else {
		for i, c := range cv.criteria {
			style := lipgloss.NewStyle()
			if i == cv.selected {
				style = style.Bold(true).Foreground(lipgloss.Color("205"))
			}
			mark := "[ ]"
			if c.Active {
				mark = "[x]"
			}
			lines = append(lines, style.Render(fmt.Sprintf("%s %-20s %-6s %.2f  %s",
				mark, truncate(c.ID, 20), c.Version, c.Weight, truncate(c.Question, cv.width-40))))
		}

		if cv.selected < len(cv.criteria) {
			c := cv.criteria[cv.selected]
			lines = append(lines, "")
			lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Question:"))
			lines = append(lines, truncate(c.Question, cv.width*2))
		}
	}

	lines = append(lines, "")
	help := "j/k: Navigate | Space: Toggle active | d: Delete | r: Reload"
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// loadCriteria loads every criterion across versions
func (cv *CriteriaView) loadCriteria() tea.Msg {
	criteria, err := cv.app.criteria.ListAll(context.Background())
	if err != nil {
		return errorMsg{error: err}
	}
	return criteriaLoadedMsg{criteria: criteria}
}

// toggleActive flips whether a criterion participates in analysis runs.
func (cv *CriteriaView) toggleActive(c *db.Criterion) tea.Cmd {
	return func() tea.Msg {
		if err := cv.app.criteria.SetActive(context.Background(), c.ID, c.Version, !c.Active); err != nil {
			return errorMsg{error: err}
		}
		state := "activated"
		if c.Active {
			state = "deactivated"
		}
		return criterionSavedMsg{status: fmt.Sprintf("%s %s (%s)", state, c.ID, c.Version)}
	}
}

// deleteCriterion removes one criterion from its version.
func (cv *CriteriaView) deleteCriterion(c *db.Criterion) tea.Cmd {
	return func() tea.Msg {
		if err := cv.app.criteria.Delete(context.Background(), c.ID, c.Version); err != nil {
			return errorMsg{error: err}
		}
		return criterionSavedMsg{status: fmt.Sprintf("deleted %s (%s)", c.ID, c.Version)}
	}
}

// criteriaLoadedMsg signals the criteria list has been loaded
type criteriaLoadedMsg struct {
	criteria []*db.Criterion
}

// criterionSavedMsg signals a criteria mutation has been applied
type criterionSavedMsg struct {
	status string
}
