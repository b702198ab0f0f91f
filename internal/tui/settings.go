package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/report-ai/cli/internal/ollama"
)

// SettingsView shows the effective configuration and lets the user pick the
// generation model from the ones Ollama has pulled.
type SettingsView struct {
	app      *App
	models   []ollama.ModelInfo
	selected int
	width    int
	height   int
	loading  bool
	status   string
	errorMsg string
}

// NewSettingsView creates a new settings view
func NewSettingsView(app *App) *SettingsView {
	return &SettingsView{
		app:    app,
		width:  80,
		height: 24,
	}
}

// Init initializes the settings view
func (sv *SettingsView) Init() tea.Cmd {
	sv.loading = true
	sv.errorMsg = ""
	return sv.loadModels
}

// Update handles updates
func (sv *SettingsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		sv.width = msg.Width
		sv.height = msg.Height
		return sv, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if sv.selected < len(sv.models)-1 {
				sv.selected++
			}
			return sv, nil
		case "k", "up":
			if sv.selected > 0 {
				sv.selected--
			}
			return sv, nil
		case "enter", " ":
			if sv.selected >= 0 && sv.selected < len(sv.models) {
				return sv, sv.selectModel
			}
		case "r":
			return sv, sv.Init()
		}
	case modelsLoadedMsg:
		sv.models = msg.models
		sv.loading = false
		for i, model := range sv.models {
			if model.Name == sv.app.cfg.Ollama.DefaultModel {
				sv.selected = i
				break
			}
		}
		return sv, nil
	case modelSelectedMsg:
		sv.app.cfg.Ollama.DefaultModel = msg.model
		if err := sv.app.cfg.Save(); err != nil {
			sv.errorMsg = err.Error()
		} else {
			sv.status = fmt.Sprintf("Default model set to %s", msg.model)
		}
		return sv, nil
	case errorMsg:
		sv.errorMsg = msg.error.Error()
		sv.loading = false
		return sv, nil
	}
	return sv, nil
}

// View renders the settings view
func (sv *SettingsView) View() string {
	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("Settings")

	lines = append(lines, title)
	lines = append(lines, "")

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	cfg := sv.app.cfg
	rows := []struct {
		label string
		value string
	}{
		{"Documents dir", cfg.Paths.DocumentsDir},
		{"Log file", cfg.Paths.LogFile},
		{"Ollama URL", cfg.Ollama.BaseURL},
		{"Embedding model", cfg.Embeddings.TextModel},
		{"Chunk window", fmt.Sprintf("%d chars, %d overlap", cfg.Processing.WindowSize, cfg.Processing.WindowOverlap)},
		{"Search", fmt.Sprintf("top %d, %ds timeout", cfg.Processing.TopK, cfg.Processing.SearchTimeoutS)},
		{"Language", cfg.Processing.Language},
	}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s %s",
			labelStyle.Render(fmt.Sprintf("%-18s", row.label)), row.value))
	}
	lines = append(lines, "")

	if sv.errorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("Error: "+sv.errorMsg))
		lines = append(lines, "")
	}

	if sv.status != "" {
		lines = append(lines, labelStyle.Render(sv.status))
		lines = append(lines, "")
	}

	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Generation model"))
	if sv.loading {
		lines = append(lines, "Loading models...")
	} else if len(sv.models) == 0 {
		lines = append(lines, "No models found. Make sure Ollama is running.")
	} else {
		for i, model := range sv.models {
			style := lipgloss.NewStyle()
			if i == sv.selected {
				style = style.Bold(true).Foreground(lipgloss.Color("205"))
			}
			if model.Name == cfg.Ollama.DefaultModel {
				style = style.Foreground(lipgloss.Color("39"))
			}
			sizeMB := float64(model.Size) / (1024 * 1024)
			lines = append(lines, style.Render(fmt.Sprintf("%s %.2f MB", model.Name, sizeMB)))
		}
	}

	lines = append(lines, "")
	help := "j/k: Navigate | Enter/Space: Set default model | r: Reload"
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// loadModels loads available models
func (sv *SettingsView) loadModels() tea.Msg {
	models, err := sv.app.modelSelector.ListModels(context.Background())
	if err != nil {
		return errorMsg{error: err}
	}
	return modelsLoadedMsg{models: models}
}

// selectModel selects the highlighted model
func (sv *SettingsView) selectModel() tea.Msg {
	if sv.selected < 0 || sv.selected >= len(sv.models) {
		return nil
	}
	return modelSelectedMsg{model: sv.models[sv.selected].Name}
}

// modelsLoadedMsg signals models have been loaded
type modelsLoadedMsg struct {
	models []ollama.ModelInfo
}

// modelSelectedMsg signals a model has been selected
type modelSelectedMsg struct {
	model string
}
