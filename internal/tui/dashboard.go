package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/report-ai/cli/internal/db"
)

// DashboardView shows the pipeline counters.
type DashboardView struct {
	app        *App
	stats      *db.Stats
	generation int64
	width      int
	height     int
	loading    bool
	errorMsg   string
}

// NewDashboardView creates a new dashboard view
func NewDashboardView(app *App) *DashboardView {
	return &DashboardView{
		app:    app,
		width:  80,
		height: 24,
	}
}

// Init initializes the dashboard view
func (dv *DashboardView) Init() tea.Cmd {
	dv.loading = true
	dv.errorMsg = ""
	return dv.loadStats
}

// Update handles updates
func (dv *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		dv.width = msg.Width
		dv.height = msg.Height
		return dv, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return dv, dv.Init()
		}
	case statsLoadedMsg:
		dv.stats = msg.stats
		dv.generation = msg.generation
		dv.loading = false
		return dv, nil
	case errorMsg:
		dv.errorMsg = msg.error.Error()
		dv.loading = false
		return dv, nil
	}
	return dv, nil
}

// View renders the dashboard view
func (dv *DashboardView) View() string {
	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("Dashboard")

	lines = append(lines, title)
	lines = append(lines, "")

	if dv.loading {
		lines = append(lines, "Loading stats...")
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if dv.errorMsg != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("Error: " + dv.errorMsg)
		lines = append(lines, errorStyle)
		lines = append(lines, "")
	}

	if dv.stats != nil {
		labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
		rows := []struct {
			label string
			value int
		}{
			{"Documents", dv.stats.Documents},
			{"Parsed documents", dv.stats.ParsedDocuments},
			{"Chunks", dv.stats.Chunks},
			{"Searchable entries", dv.stats.SearchableChunks},
			{"Active criteria", dv.stats.ActiveCriteria},
			{"Media scans", dv.stats.MediaScans},
			{"Analysis runs", dv.stats.Runs},
		}
		for _, row := range rows {
			lines = append(lines, fmt.Sprintf("%s %d",
				labelStyle.Render(fmt.Sprintf("%-20s", row.label)), row.value))
		}

		generation := "none"
		if dv.generation > 0 {
			generation = fmt.Sprintf("%d", dv.generation)
		}
		lines = append(lines, fmt.Sprintf("%s %s",
			labelStyle.Render(fmt.Sprintf("%-20s", "Index generation")), generation))
	}

	lines = append(lines, "")
	help := "r: Reload"
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// loadStats loads the dashboard counters
func (dv *DashboardView) loadStats() tea.Msg {
	ctx := context.Background()
	stats, err := dv.app.db.GetStats(ctx)
	if err != nil {
		return errorMsg{error: err}
	}
	generation, err := dv.app.db.ActiveGeneration(ctx)
	if err != nil {
		return errorMsg{error: err}
	}
	return statsLoadedMsg{stats: stats, generation: generation}
}

// statsLoadedMsg signals stats have been loaded
type statsLoadedMsg struct {
	stats      *db.Stats
	generation int64
}
