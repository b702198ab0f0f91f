package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/report-ai/cli/internal/analysis"
	"github.com/report-ai/cli/internal/db"
)

// analysisMode selects between run setup, run history, and result browsing.
type analysisMode int

const (
	modeSetup analysisMode = iota
	modeRuns
	modeResults
)

// AnalysisView drives evaluation runs and result review.
type AnalysisView struct {
	app       *App
	mode      analysisMode
	companies []string
	checked   map[int]bool
	criteria  []*db.Criterion
	runs      []*db.RunInfo
	results   []*db.EvaluationResult
	selected  int
	width     int
	height    int
	loading   bool
	busy      bool
	status    string
	errorMsg  string
}

// NewAnalysisView creates a new analysis view
func NewAnalysisView(app *App) *AnalysisView {
	return &AnalysisView{
		app:     app,
		checked: map[int]bool{},
		width:   80,
		height:  24,
	}
}

// Init initializes the analysis view
func (av *AnalysisView) Init() tea.Cmd {
	av.mode = modeSetup
	av.loading = true
	av.errorMsg = ""
	return av.loadSetup
}

// Update handles updates
func (av *AnalysisView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		av.width = msg.Width
		av.height = msg.Height
		return av, nil
	case tea.KeyMsg:
		if av.busy {
			return av, nil
		}
		return av.handleKey(msg)
	case setupLoadedMsg:
		av.companies = msg.companies
		av.criteria = msg.criteria
		av.loading = false
		if av.selected >= len(av.companies) {
			av.selected = 0
		}
		return av, nil
	case runsLoadedMsg:
		av.runs = msg.runs
		av.loading = false
		av.selected = 0
		return av, nil
	case resultsLoadedMsg:
		av.results = msg.results
		av.loading = false
		av.selected = 0
		return av, nil
	case runDoneMsg:
		av.busy = false
		av.status = fmt.Sprintf("Run %s: %d succeeded, %d failed of %d",
			msg.summary.RunID, msg.summary.Succeeded, msg.summary.Failed, msg.summary.Total)
		return av, nil
	case errorMsg:
		av.busy = false
		av.errorMsg = msg.error.Error()
		av.loading = false
		return av, nil
	}
	return av, nil
}

func (av *AnalysisView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if av.selected < av.listLen()-1 {
			av.selected++
		}
	case "k", "up":
		if av.selected > 0 {
			av.selected--
		}
	case " ":
		if av.mode == modeSetup && av.selected < len(av.companies) {
			av.checked[av.selected] = !av.checked[av.selected]
		}
	case "a":
		if av.mode == modeSetup {
			all := len(av.selectedCompanies()) < len(av.companies)
			for i := range av.companies {
				av.checked[i] = all
			}
		}
	case "enter":
		switch av.mode {
		case modeSetup:
			companies := av.selectedCompanies()
			if len(companies) == 0 || len(av.criteria) == 0 {
				av.errorMsg = "select at least one company and load criteria first"
				return av, nil
			}
			av.busy = true
			av.errorMsg = ""
			return av, av.runAnalysis(companies)
		case modeRuns:
			if av.selected < len(av.runs) {
				av.mode = modeResults
				av.loading = true
				return av, av.loadResults(av.runs[av.selected].RunID)
			}
		}
	case "v":
		if av.mode == modeSetup {
			av.mode = modeRuns
			av.loading = true
			return av, av.loadRuns
		}
	case "esc":
		switch av.mode {
		case modeResults:
			av.mode = modeRuns
			av.selected = 0
		case modeRuns:
			av.mode = modeSetup
			av.selected = 0
		}
	case "r":
		return av, av.Init()
	}
	return av, nil
}

func (av *AnalysisView) listLen() int {
	switch av.mode {
	case modeRuns:
		return len(av.runs)
	case modeResults:
		return len(av.results)
	default:
		return len(av.companies)
	}
}

func (av *AnalysisView) selectedCompanies() []string {
	var out []string
	for i, name := range av.companies {
		if av.checked[i] {
			out = append(out, name)
		}
	}
	return out
}

// View renders the analysis view
func (av *AnalysisView) View() string {
	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("Analysis")

	lines = append(lines, title)
	lines = append(lines, "")

	if av.busy {
		lines = append(lines, "Running analysis... this can take a while.")
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if av.errorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("Error: "+av.errorMsg))
		lines = append(lines, "")
	}

	if av.status != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Render(av.status))
		lines = append(lines, "")
	}

	if av.loading {
		lines = append(lines, "Loading...")
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	switch av.mode {
	case modeRuns:
		lines = append(lines, av.viewRuns()...)
	case modeResults:
		lines = append(lines, av.viewResults()...)
	default:
		lines = append(lines, av.viewSetup()...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (av *AnalysisView) viewSetup() []string {
	var lines []string

	lines = append(lines, fmt.Sprintf("Active criteria: %d", len(av.criteria)))
	lines = append(lines, "")

	if len(av.companies) == 0 {
		lines = append(lines, "No companies in the search index. Process documents and rebuild the index first.")
	} else {
		for i, name := range av.companies {
			style := lipgloss.NewStyle()
			if i == av.selected {
				style = style.Bold(true).Foreground(lipgloss.Color("205"))
			}
			mark := "[ ]"
			if av.checked[i] {
				mark = "[x]"
			}
			lines = append(lines, style.Render(fmt.Sprintf("%s %s", mark, name)))
		}
	}

	lines = append(lines, "")
	help := "j/k: Navigate | Space: Toggle | a: All | Enter: Run | v: Past runs | r: Reload"
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(help))
	return lines
}

func (av *AnalysisView) viewRuns() []string {
	var lines []string

	lines = append(lines, "Recent runs:")
	lines = append(lines, "")

	if len(av.runs) == 0 {
		lines = append(lines, "No runs yet.")
	} else {
		for i, run := range av.runs {
			style := lipgloss.NewStyle()
			if i == av.selected {
				style = style.Bold(true).Foreground(lipgloss.Color("205"))
			}
			lines = append(lines, style.Render(fmt.Sprintf("%-40s %d criteria x %d companies, %d results",
				run.RunID, run.CriteriaCount, run.CompanyCount, run.ResultCount)))
		}
	}

	lines = append(lines, "")
	help := "j/k: Navigate | Enter: View results | Esc: Back"
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(help))
	return lines
}

func (av *AnalysisView) viewResults() []string {
	var lines []string

	if len(av.results) == 0 {
		lines = append(lines, "No results in this run.")
	} else {
		for i, res := range av.results {
			style := lipgloss.NewStyle()
			if i == av.selected {
				style = style.Bold(true).Foreground(lipgloss.Color("205"))
			}
			if res.Result == "error" {
				style = style.Foreground(lipgloss.Color("196"))
			}
			lines = append(lines, style.Render(fmt.Sprintf("%-20s %-20s %s",
				truncate(res.CriterionID, 20), truncate(res.CompanyName, 20), truncate(res.Result, 30))))
		}

		if av.selected < len(av.results) {
			res := av.results[av.selected]
			lines = append(lines, "")
			lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Justification:"))
			lines = append(lines, truncate(res.Justification, av.width*3))
			if res.Evidence != "" {
				lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Evidence:"))
				lines = append(lines, truncate(res.Evidence, av.width*2))
			}
		}
	}

	lines = append(lines, "")
	help := "j/k: Navigate | Esc: Back"
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(help))
	return lines
}

// loadSetup loads the companies and active criteria for run setup
func (av *AnalysisView) loadSetup() tea.Msg {
	ctx := context.Background()
	companies, err := av.app.indexer.Companies(ctx)
	if err != nil {
		return errorMsg{error: err}
	}
	criteria, err := av.app.criteria.ListAllActive(ctx)
	if err != nil {
		return errorMsg{error: err}
	}
	return setupLoadedMsg{companies: companies, criteria: criteria}
}

// runAnalysis executes the evaluation matrix for the selected companies
func (av *AnalysisView) runAnalysis(companies []string) tea.Cmd {
	criteria := av.criteria
	return func() tea.Msg {
		summary, err := av.app.runner.Run(context.Background(), criteria, companies)
		if err != nil {
			return errorMsg{error: err}
		}
		return runDoneMsg{summary: summary}
	}
}

// loadRuns loads recent run summaries
func (av *AnalysisView) loadRuns() tea.Msg {
	runs, err := av.app.runner.RecentRuns(context.Background(), 20)
	if err != nil {
		return errorMsg{error: err}
	}
	return runsLoadedMsg{runs: runs}
}

// loadResults loads the result rows of one run
func (av *AnalysisView) loadResults(runID string) tea.Cmd {
	return func() tea.Msg {
		results, err := av.app.runner.RunResults(context.Background(), runID)
		if err != nil {
			return errorMsg{error: err}
		}
		return resultsLoadedMsg{results: results}
	}
}

// setupLoadedMsg signals run setup data has been loaded
type setupLoadedMsg struct {
	companies []string
	criteria  []*db.Criterion
}

// runsLoadedMsg signals run history has been loaded
type runsLoadedMsg struct {
	runs []*db.RunInfo
}

// resultsLoadedMsg signals run results have been loaded
type resultsLoadedMsg struct {
	results []*db.EvaluationResult
}

// runDoneMsg signals an analysis run has finished
type runDoneMsg struct {
	summary *analysis.RunSummary
}
