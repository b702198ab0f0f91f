package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/report-ai/cli/config"
	"github.com/report-ai/cli/internal/analysis"
	"github.com/report-ai/cli/internal/criteria"
	"github.com/report-ai/cli/internal/db"
	"github.com/report-ai/cli/internal/documents"
	"github.com/report-ai/cli/internal/index"
	"github.com/report-ai/cli/internal/mediascan"
	"github.com/report-ai/cli/internal/ollama"
)

// screen identifies which view is active.
type screen int

const (
	screenDashboard screen = iota
	screenDocuments
	screenCriteria
	screenAnalysis
	screenMedia
	screenSettings
)

// App is the root bubbletea model. It owns the wired pipeline components
// and routes messages to the active view.
type App struct {
	cfg           *config.Config
	db            *db.DB
	processor     *documents.Processor
	indexer       *index.Indexer
	criteria      *criteria.Store
	media         *mediascan.Store
	runner        *analysis.Runner
	modelSelector *ollama.ModelSelector

	active       screen
	dashboard    *DashboardView
	documents    *DocumentsView
	criteriaView *CriteriaView
	analysis     *AnalysisView
	mediaView    *MediaView
	settings     *SettingsView

	width  int
	height int
}

// NewApp wires the views around the pipeline components.
func NewApp(cfg *config.Config, database *db.DB, processor *documents.Processor, indexer *index.Indexer, criteriaStore *criteria.Store, media *mediascan.Store, runner *analysis.Runner, modelSelector *ollama.ModelSelector) *App {
	app := &App{
		cfg:           cfg,
		db:            database,
		processor:     processor,
		indexer:       indexer,
		criteria:      criteriaStore,
		media:         media,
		runner:        runner,
		modelSelector: modelSelector,
	}
	app.dashboard = NewDashboardView(app)
	app.documents = NewDocumentsView(app)
	app.criteriaView = NewCriteriaView(app)
	app.analysis = NewAnalysisView(app)
	app.mediaView = NewMediaView(app)
	app.settings = NewSettingsView(app)
	return app
}

// Run starts the TUI event loop.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles global keys and routes everything else to the active view.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.Update(msg)
		a.documents.Update(msg)
		a.criteriaView.Update(msg)
		a.analysis.Update(msg)
		a.mediaView.Update(msg)
		a.settings.Update(msg)
		return a, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		// Digits are text while the media view is capturing input
		if a.active != screenMedia || a.mediaView.mode == mediaList {
			switch msg.String() {
			case "1":
				a.active = screenDashboard
				return a, a.dashboard.Init()
			case "2":
				a.active = screenDocuments
				return a, a.documents.Init()
			case "3":
				a.active = screenCriteria
				return a, a.criteriaView.Init()
			case "4":
				a.active = screenAnalysis
				return a, a.analysis.Init()
			case "5":
				a.active = screenMedia
				return a, a.mediaView.Init()
			case "6":
				a.active = screenSettings
				return a, a.settings.Init()
			}
		}
	}

	var cmd tea.Cmd
	switch a.active {
	case screenDashboard:
		_, cmd = a.dashboard.Update(msg)
	case screenDocuments:
		_, cmd = a.documents.Update(msg)
	case screenCriteria:
		_, cmd = a.criteriaView.Update(msg)
	case screenAnalysis:
		_, cmd = a.analysis.Update(msg)
	case screenMedia:
		_, cmd = a.mediaView.Update(msg)
	case screenSettings:
		_, cmd = a.settings.Update(msg)
	}
	return a, cmd
}

// View renders the active screen with the shared header and footer.
func (a *App) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("report-ai")

	tabs := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render("1: Dashboard | 2: Documents | 3: Criteria | 4: Analysis | 5: Media | 6: Settings | Ctrl+C: Quit")

	var body string
	switch a.active {
	case screenDashboard:
		body = a.dashboard.View()
	case screenDocuments:
		body = a.documents.View()
	case screenCriteria:
		body = a.criteriaView.View()
	case screenAnalysis:
		body = a.analysis.View()
	case screenMedia:
		body = a.mediaView.View()
	case screenSettings:
		body = a.settings.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, tabs, "", body)
}

// errorMsg carries an error from a command back into a view.
type errorMsg struct {
	error error
}
