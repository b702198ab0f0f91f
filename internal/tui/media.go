package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/report-ai/cli/internal/db"
)

// mediaMode selects between browsing records and entering a new one.
type mediaMode int

const (
	mediaList mediaMode = iota
	mediaEditCompany
	mediaEditTopic
)

// MediaView manages the media scan records that feed evaluation prompts.
type MediaView struct {
	app      *App
	records  []*db.MediaScanRecord
	selected int
	mode     mediaMode
	company  string
	topic    string
	width    int
	height   int
	loading  bool
	status   string
	errorMsg string
}

// NewMediaView creates a new media scan view
func NewMediaView(app *App) *MediaView {
	return &MediaView{
		app:    app,
		width:  80,
		height: 24,
	}
}

// Init initializes the media scan view
func (mv *MediaView) Init() tea.Cmd {
	mv.mode = mediaList
	mv.loading = true
	mv.errorMsg = ""
	return mv.loadRecords
}

// Update handles updates
func (mv *MediaView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		mv.width = msg.Width
		mv.height = msg.Height
		return mv, nil
	case tea.KeyMsg:
		if mv.mode == mediaList {
			return mv.handleListKey(msg)
		}
		return mv.handleInputKey(msg)
	case mediaLoadedMsg:
		mv.records = msg.records
		mv.loading = false
		if mv.selected >= len(mv.records) {
			mv.selected = 0
		}
		return mv, nil
	case mediaSavedMsg:
		mv.status = msg.status
		return mv, mv.loadRecords
	case errorMsg:
		mv.errorMsg = msg.error.Error()
		mv.loading = false
		return mv, nil
	}
	return mv, nil
}

func (mv *MediaView) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if mv.selected < len(mv.records)-1 {
			mv.selected++
		}
	case "k", "up":
		if mv.selected > 0 {
			mv.selected--
		}
	case "n":
		mv.mode = mediaEditCompany
		mv.company = ""
		mv.topic = ""
		mv.errorMsg = ""
	case "e":
		if mv.selected < len(mv.records) {
			rec := mv.records[mv.selected]
			mv.mode = mediaEditTopic
			mv.company = rec.CompanyName
			mv.topic = rec.Topic
			mv.errorMsg = ""
		}
	case "d":
		if mv.selected < len(mv.records) {
			return mv, mv.deleteRecord(mv.records[mv.selected].CompanyName)
		}
	case "r":
		return mv, mv.Init()
	}
	return mv, nil
}

func (mv *MediaView) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := &mv.company
	if mv.mode == mediaEditTopic {
		field = &mv.topic
	}

	switch msg.String() {
	case "esc":
		mv.mode = mediaList
	case "enter":
		if mv.mode == mediaEditCompany {
			if mv.company == "" {
				mv.errorMsg = "company name cannot be empty"
				return mv, nil
			}
			mv.mode = mediaEditTopic
			return mv, nil
		}
		mv.mode = mediaList
		return mv, mv.saveRecord(mv.company, mv.topic)
	case "backspace":
		if len(*field) > 0 {
			runes := []rune(*field)
			*field = string(runes[:len(runes)-1])
		}
	default:
		switch msg.Type {
		case tea.KeyRunes:
			*field += string(msg.Runes)
		case tea.KeySpace:
			*field += " "
		}
	}
	return mv, nil
}

// View renders the media scan view
func (mv *MediaView) View() string {
	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("Media Scan")

	lines = append(lines, title)
	lines = append(lines, "")

	if mv.errorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("Error: "+mv.errorMsg))
		lines = append(lines, "")
	}

	if mv.status != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Render(mv.status))
		lines = append(lines, "")
	}

	if mv.mode != mediaList {
		inputStyle := lipgloss.NewStyle().Bold(true)
		cursor := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render("_")
		if mv.mode == mediaEditCompany {
			lines = append(lines, inputStyle.Render("Company: ")+mv.company+cursor)
		} else {
			lines = append(lines, inputStyle.Render("Company: ")+mv.company)
			lines = append(lines, inputStyle.Render("Topic:   ")+mv.topic+cursor)
		}
		lines = append(lines, "")
		help := "Enter: Next/Save | Esc: Cancel"
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(help))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if mv.loading {
		lines = append(lines, "Loading media scans...")
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if len(mv.records) == 0 {
		lines = append(lines, "No media scan records. Press n to add one.")
	} else {
		for i, rec := range mv.records {
			style := lipgloss.NewStyle()
			if i == mv.selected {
				style = style.Bold(true).Foreground(lipgloss.Color("205"))
			}
			lines = append(lines, style.Render(fmt.Sprintf("%-30s %s",
				truncate(rec.CompanyName, 30), truncate(rec.Topic, mv.width-34))))
		}
	}

	lines = append(lines, "")
	help := "j/k: Navigate | n: New | e: Edit topic | d: Delete | r: Reload"
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// loadRecords loads all media scan records
func (mv *MediaView) loadRecords() tea.Msg {
	records, err := mv.app.media.List(context.Background())
	if err != nil {
		return errorMsg{error: err}
	}
	return mediaLoadedMsg{records: records}
}

// saveRecord upserts one record
func (mv *MediaView) saveRecord(company, topic string) tea.Cmd {
	return func() tea.Msg {
		if err := mv.app.media.Upsert(context.Background(), company, topic); err != nil {
			return errorMsg{error: err}
		}
		return mediaSavedMsg{status: fmt.Sprintf("Saved media scan for %s", company)}
	}
}

// deleteRecord removes one record
func (mv *MediaView) deleteRecord(company string) tea.Cmd {
	return func() tea.Msg {
		if err := mv.app.media.Delete(context.Background(), company); err != nil {
			return errorMsg{error: err}
		}
		return mediaSavedMsg{status: fmt.Sprintf("Deleted media scan for %s", company)}
	}
}

// mediaLoadedMsg signals media scan records have been loaded
type mediaLoadedMsg struct {
	records []*db.MediaScanRecord
}

// mediaSavedMsg signals a record change has been stored
type mediaSavedMsg struct {
	status string
}
