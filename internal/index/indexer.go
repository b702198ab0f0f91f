package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"github.com/report-ai/cli/internal/db"
	"github.com/report-ai/cli/internal/logging"
)

// ErrSearchTimeout is returned when a query exceeds its deadline. Callers
// treat it as "no results" with an explanation rather than a crash.
var ErrSearchTimeout = errors.New("search timed out")

// ErrIndexRebuild wraps every rebuild failure so callers can detect the
// class with errors.Is. The previously active index keeps serving.
var ErrIndexRebuild = errors.New("index rebuild failed")

// Chunks at or below this length carry no retrievable signal and are left
// out of the index.
const minIndexableLength = 10

// insertBatchSize bounds the rows queued in one pgx batch.
const insertBatchSize = 200

// Embedder generates query and chunk embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (*pgvector.Vector, error)
}

// Store is the persistence surface the indexer needs. *db.DB satisfies it.
type Store interface {
	ListIndexableChunks(ctx context.Context, minLength int) ([]*db.IndexableChunk, error)
	InsertSearchEntries(ctx context.Context, entries []*db.SearchEntry) error
	ActivateGeneration(ctx context.Context, gen int64) error
	DeleteGeneration(ctx context.Context, gen int64) error
	SearchEntries(ctx context.Context, embedding *pgvector.Vector, filters db.SearchFilters, topK int) ([]*db.SearchEntry, error)
	SearchableCompanies(ctx context.Context) ([]string, error)
}

// Indexer rebuilds and queries the chunk search index. Rebuilds are
// wholesale: a fresh generation is written out of sight of readers and then
// swapped in atomically, so the old index keeps serving until the new one is
// complete.
type Indexer struct {
	db            Store
	embedder      Embedder
	embedWorkers  int
	searchTimeout time.Duration
}

// NewIndexer creates an indexer.
func NewIndexer(store Store, embedder Embedder, embedWorkers int, searchTimeout time.Duration) *Indexer {
	if embedWorkers <= 0 {
		embedWorkers = 4
	}
	if searchTimeout <= 0 {
		searchTimeout = 30 * time.Second
	}
	return &Indexer{
		db:            store,
		embedder:      embedder,
		embedWorkers:  embedWorkers,
		searchTimeout: searchTimeout,
	}
}

// RebuildStats reports the outcome of a rebuild.
type RebuildStats struct {
	Entries    int
	Generation int64
	Duration   time.Duration
}

// Rebuild regenerates the whole search index from the current chunk set.
// If anything fails the partially built generation is discarded and the
// previously active index remains queryable.
func (ix *Indexer) Rebuild(ctx context.Context) (*RebuildStats, error) {
	start := time.Now()
	gen := start.UnixNano()

	chunks, err := ix.db.ListIndexableChunks(ctx, minIndexableLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexRebuild, err)
	}

	entries := make([]*db.SearchEntry, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.embedWorkers)

	for i, chunk := range chunks {
		g.Go(func() error {
			vec, err := ix.embedder.Embed(gctx, chunk.Display)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %s/%d: %w",
					chunk.DocumentPath, chunk.ChunkIndex, err)
			}
			entries[i] = &db.SearchEntry{
				ID:           uuid.New(),
				Generation:   gen,
				ChunkID:      chunk.ChunkID,
				ChunkIndex:   chunk.ChunkIndex,
				DocumentPath: chunk.DocumentPath,
				FileURL:      chunk.FileURL,
				Content:      chunk.Display,
				CompanyName:  chunk.CompanyName,
				Year:         chunk.Year,
				Language:     chunk.Language,
				Embedding:    vec,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		ix.discard(gen)
		return nil, fmt.Errorf("%w: %w", ErrIndexRebuild, err)
	}

	for i := 0; i < len(entries); i += insertBatchSize {
		end := min(i+insertBatchSize, len(entries))
		if err := ix.db.InsertSearchEntries(ctx, entries[i:end]); err != nil {
			ix.discard(gen)
			return nil, fmt.Errorf("%w: %w", ErrIndexRebuild, err)
		}
	}

	if err := ix.db.ActivateGeneration(ctx, gen); err != nil {
		ix.discard(gen)
		return nil, fmt.Errorf("%w: %w", ErrIndexRebuild, err)
	}

	stats := &RebuildStats{
		Entries:    len(entries),
		Generation: gen,
		Duration:   time.Since(start),
	}
	logging.Infow("search index rebuilt",
		"entries", stats.Entries,
		"generation", stats.Generation,
		"duration", stats.Duration.String(),
	)
	return stats, nil
}

// discard drops an abandoned generation. Best effort: leftover rows are
// invisible to readers and swept by the next successful activation anyway.
func (ix *Indexer) discard(gen int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ix.db.DeleteGeneration(ctx, gen); err != nil {
		logging.Warnf("failed to discard abandoned generation %d: %v", gen, err)
	}
}

// Search embeds the query and returns the topK nearest indexed chunks under
// the given attribute filters. The whole operation is bounded by the
// configured search timeout.
func (ix *Indexer) Search(ctx context.Context, query string, filters db.SearchFilters, topK int) ([]*db.SearchEntry, error) {
	sctx, cancel := context.WithTimeout(ctx, ix.searchTimeout)
	defer cancel()

	vec, err := ix.embedder.Embed(sctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(sctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	entries, err := ix.db.SearchEntries(sctx, vec, filters, topK)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(sctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSearchTimeout
		}
		return nil, err
	}
	return entries, nil
}

// Companies lists the company names available for filtering.
func (ix *Indexer) Companies(ctx context.Context) ([]string, error) {
	return ix.db.SearchableCompanies(ctx)
}
