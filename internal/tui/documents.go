package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/report-ai/cli/internal/db"
	"github.com/report-ai/cli/internal/documents"
	"github.com/report-ai/cli/internal/index"
)

// DocumentsView lists the document corpus and drives batch processing and
// index rebuilds.
type DocumentsView struct {
	app       *App
	docs      []*db.Document
	selected  int
	chunks    []*db.Chunk
	chunksFor string
	width     int
	height    int
	loading   bool
	busy      string
	status    string
	errorMsg  string
}

// NewDocumentsView creates a new documents view
func NewDocumentsView(app *App) *DocumentsView {
	return &DocumentsView{
		app:    app,
		width:  80,
		height: 24,
	}
}

// Init initializes the documents view
func (dv *DocumentsView) Init() tea.Cmd {
	dv.loading = true
	dv.errorMsg = ""
	return dv.loadDocuments
}

// Update handles updates
func (dv *DocumentsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		dv.width = msg.Width
		dv.height = msg.Height
		return dv, nil
	case tea.KeyMsg:
		if dv.busy != "" {
			return dv, nil
		}
		if dv.chunksFor != "" {
			if msg.String() == "esc" || msg.String() == "q" {
				dv.chunks = nil
				dv.chunksFor = ""
			}
			return dv, nil
		}
		switch msg.String() {
		case "j", "down":
			if dv.selected < len(dv.docs)-1 {
				dv.selected++
			}
			return dv, nil
		case "k", "up":
			if dv.selected > 0 {
				dv.selected--
			}
			return dv, nil
		case "enter":
			if dv.selected < len(dv.docs) {
				return dv, dv.loadChunks(dv.docs[dv.selected])
			}
			return dv, nil
		case "d":
			if dv.selected < len(dv.docs) {
				dv.busy = "Deleting document..."
				return dv, dv.deleteDocument(dv.docs[dv.selected])
			}
			return dv, nil
		case "p":
			dv.busy = "Processing documents..."
			return dv, dv.processBatch(false)
		case "P":
			dv.busy = "Reprocessing all documents..."
			return dv, dv.processBatch(true)
		case "x":
			dv.busy = "Rebuilding search index..."
			return dv, dv.rebuildIndex
		case "r":
			return dv, dv.Init()
		}
	case documentsLoadedMsg:
		dv.docs = msg.docs
		dv.loading = false
		if dv.selected >= len(dv.docs) {
			dv.selected = 0
		}
		return dv, nil
	case batchDoneMsg:
		dv.busy = ""
		dv.status = fmt.Sprintf("Batch complete: %d succeeded, %d failed, %d skipped",
			msg.summary.Succeeded, msg.summary.Failed, msg.summary.Skipped)
		return dv, dv.loadDocuments
	case rebuildDoneMsg:
		dv.busy = ""
		dv.status = fmt.Sprintf("Index rebuilt: %d entries in %s",
			msg.stats.Entries, msg.stats.Duration.Round(time.Millisecond))
		return dv, nil
	case chunksLoadedMsg:
		dv.chunks = msg.chunks
		dv.chunksFor = msg.path
		return dv, nil
	case documentDeletedMsg:
		dv.busy = ""
		dv.status = fmt.Sprintf("Deleted %s", msg.path)
		return dv, dv.loadDocuments
	case errorMsg:
		dv.busy = ""
		dv.errorMsg = msg.error.Error()
		dv.loading = false
		return dv, nil
	}
	return dv, nil
}

// View renders the documents view
func (dv *DocumentsView) View() string {
	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("Documents")

	lines = append(lines, title)
	lines = append(lines, "")

	if dv.busy != "" {
		lines = append(lines, dv.busy)
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if dv.chunksFor != "" {
		return dv.viewChunks()
	}

	if dv.errorMsg != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("Error: " + dv.errorMsg)
		lines = append(lines, errorStyle)
		lines = append(lines, "")
	}

	if dv.status != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
		lines = append(lines, statusStyle.Render(dv.status))
		lines = append(lines, "")
	}

	if dv.loading {
		lines = append(lines, "Loading documents...")
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if len(dv.docs) == 0 {
		lines = append(lines, fmt.Sprintf("No documents found. Drop PDF files into %s and press p.",
			dv.app.cfg.Paths.DocumentsDir))
	} else {
		for i, doc := range dv.docs {
			style := lipgloss.NewStyle()
			if i == dv.selected {
				style = style.Bold(true).Foreground(lipgloss.Color("205"))
			}

			state := "pending"
			if doc.ParseError != nil {
				state = "failed"
				style = style.Foreground(lipgloss.Color("196"))
			} else if doc.ParsedAt != nil {
				state = "parsed"
			}

			line := fmt.Sprintf("%-50s %-12s %d  [%s]",
				truncate(doc.RelativePath, 50), doc.CompanyName, doc.Year, state)
			lines = append(lines, style.Render(line))
		}

		if dv.selected < len(dv.docs) {
			if reason := dv.docs[dv.selected].ParseError; reason != nil {
				lines = append(lines, "")
				lines = append(lines, lipgloss.NewStyle().
					Foreground(lipgloss.Color("196")).
					Render("Parse error: "+truncate(*reason, dv.width-14)))
			}
		}
	}

	lines = append(lines, "")
	help := "j/k: Navigate | Enter: Chunks | p: Process new | P: Reprocess all | d: Delete | x: Rebuild index | r: Reload"
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// viewChunks renders the chunk listing for the selected document.
func (dv *DocumentsView) viewChunks() string {
	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render(fmt.Sprintf("Chunks: %s (%d)", dv.chunksFor, len(dv.chunks)))

	lines = append(lines, title)
	lines = append(lines, "")

	if len(dv.chunks) == 0 {
		lines = append(lines, "No chunks. Process the document first.")
	}

	limit := dv.height - 6
	if limit < 1 {
		limit = 1
	}
	for i, chunk := range dv.chunks {
		if i >= limit {
			lines = append(lines, fmt.Sprintf("... and %d more", len(dv.chunks)-i))
			break
		}
		lines = append(lines, fmt.Sprintf("%4d  %s", chunk.ChunkIndex, truncate(chunk.Content, dv.width-8)))
	}

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("Esc: Back"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// loadDocuments loads the document list
func (dv *DocumentsView) loadDocuments() tea.Msg {
	docs, err := dv.app.db.GetAllDocuments(context.Background())
	if err != nil {
		return errorMsg{error: err}
	}
	return documentsLoadedMsg{docs: docs}
}

// processBatch runs the document processor over the documents directory.
func (dv *DocumentsView) processBatch(force bool) tea.Cmd {
	return func() tea.Msg {
		summary, err := dv.app.processor.ProcessAll(context.Background(), force)
		if err != nil {
			return errorMsg{error: err}
		}
		return batchDoneMsg{summary: summary}
	}
}

// loadChunks fetches the parsed chunks of a document for inspection.
func (dv *DocumentsView) loadChunks(doc *db.Document) tea.Cmd {
	return func() tea.Msg {
		chunks, err := dv.app.db.GetChunksByDocument(context.Background(), doc.ID)
		if err != nil {
			return errorMsg{error: err}
		}
		return chunksLoadedMsg{path: doc.RelativePath, chunks: chunks}
	}
}

// deleteDocument removes a document and its chunks from the database.
func (dv *DocumentsView) deleteDocument(doc *db.Document) tea.Cmd {
	return func() tea.Msg {
		if err := dv.app.db.DeleteDocument(context.Background(), doc.ID); err != nil {
			return errorMsg{error: err}
		}
		return documentDeletedMsg{path: doc.RelativePath}
	}
}

// rebuildIndex rebuilds the search index from the current chunk set.
func (dv *DocumentsView) rebuildIndex() tea.Msg {
	stats, err := dv.app.indexer.Rebuild(context.Background())
	if err != nil {
		return errorMsg{error: err}
	}
	return rebuildDoneMsg{stats: stats}
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// documentsLoadedMsg signals documents have been loaded
type documentsLoadedMsg struct {
	docs []*db.Document
}

// batchDoneMsg signals a processing batch has finished
type batchDoneMsg struct {
	summary *documents.BatchSummary
}

// rebuildDoneMsg signals an index rebuild has finished
type rebuildDoneMsg struct {
	stats *index.RebuildStats
}

// chunksLoadedMsg carries the chunk listing of one document
type chunksLoadedMsg struct {
	path   string
	chunks []*db.Chunk
}

// documentDeletedMsg signals a document has been removed
type documentDeletedMsg struct {
	path string
}
