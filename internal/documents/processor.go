package documents

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/report-ai/cli/internal/db"
	"github.com/report-ai/cli/internal/logging"
)

// Item statuses reported in a batch summary.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// ItemResult reports the outcome for one document in a batch.
type ItemResult struct {
	Path   string
	Status string
	Reason string
	Chunks int
}

// BatchSummary reports a whole processing pass. Succeeded, Failed and
// Skipped partition the scanned file set.
type BatchSummary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Items     []ItemResult
}

// Add records one item outcome and bumps the matching counter.
func (s *BatchSummary) Add(item ItemResult) {
	s.Items = append(s.Items, item)
	switch item.Status {
	case StatusSucceeded:
		s.Succeeded++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	}
}

// Processor runs the parse-and-chunk stage over the documents directory.
// Parsing is fanned out across workers; each document fails independently.
type Processor struct {
	db       *db.DB
	parser   Parser
	chunker  *Chunker
	docsDir  string
	language string
	workers  int
}

// NewProcessor creates a document processor.
func NewProcessor(database *db.DB, docsDir, language string, windowSize, overlap, workers int) (*Processor, error) {
	chunker, err := NewChunker(windowSize, overlap)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 4
	}
	return &Processor{
		db:       database,
		parser:   NewPDFParser(),
		chunker:  chunker,
		docsDir:  docsDir,
		language: language,
		workers:  workers,
	}, nil
}

// ProcessAll scans the documents directory for PDF files and processes the
// whole corpus in one pass. Files whose content hash is unchanged since the
// last successful parse are skipped unless force is set. Per-document
// failures are recorded in the summary and never abort the batch.
func (p *Processor) ProcessAll(ctx context.Context, force bool) (*BatchSummary, error) {
	paths, err := p.scanDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to scan documents directory: %w", err)
	}

	summary := &BatchSummary{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, relPath := range paths {
		g.Go(func() error {
			item := p.processOne(gctx, relPath, force)
			mu.Lock()
			summary.Add(item)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	sort.Slice(summary.Items, func(i, j int) bool {
		return summary.Items[i].Path < summary.Items[j].Path
	})

	logging.Infow("document batch complete",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// processOne handles a single document end to end: hash check, parse,
// chunk, store.
func (p *Processor) processOne(ctx context.Context, relPath string, force bool) ItemResult {
	absPath := filepath.Join(p.docsDir, relPath)

	hash, err := computeFileHash(absPath)
	if err != nil {
		return ItemResult{Path: relPath, Status: StatusFailed, Reason: fmt.Sprintf("hash: %v", err)}
	}

	existing, err := p.db.GetDocumentByPath(ctx, relPath)
	if err != nil {
		return ItemResult{Path: relPath, Status: StatusFailed, Reason: err.Error()}
	}
	if existing != nil && existing.FileHash == hash && existing.ParsedAt != nil && !force {
		if err := p.db.TouchDocumentUpload(ctx, existing.ID, time.Now()); err != nil {
			logging.Warnf("failed to touch document %s: %v", relPath, err)
		}
		return ItemResult{Path: relPath, Status: StatusSkipped, Reason: "unchanged"}
	}

	company, year := InferMetadata(relPath)
	doc, err := p.db.UpsertDocument(ctx, relPath, "file://"+absPath, hash, company, year)
	if err != nil {
		return ItemResult{Path: relPath, Status: StatusFailed, Reason: err.Error()}
	}

	parsed, err := p.parser.Parse(absPath)
	if err != nil {
		logging.Errorw("parse failed", "path", relPath, "error", err)
		if dbErr := p.db.SetDocumentParseError(ctx, doc.ID, err.Error()); dbErr != nil {
			logging.Errorw("failed to record parse error", "path", relPath, "error", dbErr)
		}
		return ItemResult{Path: relPath, Status: StatusFailed, Reason: err.Error()}
	}

	if err := p.db.SetDocumentParsed(ctx, doc.ID, parsed.Text); err != nil {
		return ItemResult{Path: relPath, Status: StatusFailed, Reason: err.Error()}
	}

	chunks := p.buildChunks(doc.ID, relPath, parsed.Text)
	if err := p.db.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return ItemResult{Path: relPath, Status: StatusFailed, Reason: err.Error()}
	}

	return ItemResult{Path: relPath, Status: StatusSucceeded, Chunks: len(chunks)}
}

// buildChunks splits parsed text into chunk rows for one document.
func (p *Processor) buildChunks(docID uuid.UUID, relPath, text string) []*db.Chunk {
	pieces := p.chunker.Split(text)
	chunks := make([]*db.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		chunks = append(chunks, &db.Chunk{
			ID:             uuid.New(),
			DocumentID:     docID,
			ChunkIndex:     piece.Index,
			Content:        piece.Text,
			DisplayContent: DisplayChunk(relPath, piece.Text),
			Language:       p.language,
		})
	}
	return chunks
}

// scanDirectory lists PDF files below the documents directory as relative
// paths.
func (p *Processor) scanDirectory() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(p.docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		rel, err := filepath.Rel(p.docsDir, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// computeFileHash computes the SHA256 hash of a file.
func computeFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
