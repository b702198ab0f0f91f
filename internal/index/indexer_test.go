package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/require"

	"github.com/report-ai/cli/internal/db"
)

// fakeEmbedder returns a fixed vector, or fails after a set number of calls.
type fakeEmbedder struct {
	failAfter int
	calls     int
	err       error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (*pgvector.Vector, error) {
	f.calls++
	if f.err != nil && f.calls > f.failAfter {
		return nil, f.err
	}
	vec := pgvector.NewVector([]float32{float32(len(text)), 0, 1})
	return &vec, nil
}

// fakeStore keeps generations in memory so swap semantics can be observed.
type fakeStore struct {
	chunks      []*db.IndexableChunk
	minLength   int
	generations map[int64][]*db.SearchEntry
	active      int64

	listErr     error
	insertErr   error
	activateErr error
}

func newFakeStore(chunks ...*db.IndexableChunk) *fakeStore {
	return &fakeStore{
		chunks:      chunks,
		generations: make(map[int64][]*db.SearchEntry),
	}
}

func (s *fakeStore) ListIndexableChunks(ctx context.Context, minLength int) ([]*db.IndexableChunk, error) {
	s.minLength = minLength
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.chunks, nil
}

func (s *fakeStore) InsertSearchEntries(ctx context.Context, entries []*db.SearchEntry) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, e := range entries {
		s.generations[e.Generation] = append(s.generations[e.Generation], e)
	}
	return nil
}

func (s *fakeStore) ActivateGeneration(ctx context.Context, gen int64) error {
	if s.activateErr != nil {
		return s.activateErr
	}
	s.active = gen
	for g := range s.generations {
		if g != gen {
			delete(s.generations, g)
		}
	}
	return nil
}

func (s *fakeStore) DeleteGeneration(ctx context.Context, gen int64) error {
	delete(s.generations, gen)
	return nil
}

func (s *fakeStore) SearchEntries(ctx context.Context, embedding *pgvector.Vector, filters db.SearchFilters, topK int) ([]*db.SearchEntry, error) {
	entries := s.generations[s.active]
	if len(entries) > topK {
		entries = entries[:topK]
	}
	return entries, nil
}

func (s *fakeStore) SearchableCompanies(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	for _, e := range s.generations[s.active] {
		if !seen[e.CompanyName] {
			seen[e.CompanyName] = true
			names = append(names, e.CompanyName)
		}
	}
	sort.Strings(names)
	return names, nil
}

func chunkFixture(i int, company string) *db.IndexableChunk {
	return &db.IndexableChunk{
		ChunkIndex:   i,
		Content:      fmt.Sprintf("chunk %d body text", i),
		Display:      fmt.Sprintf("reports/%s.pdf: chunk %d body text", company, i),
		Language:     "English",
		DocumentPath: fmt.Sprintf("reports/%s.pdf", company),
		CompanyName:  company,
		Year:         2023,
	}
}

func activeContents(s *fakeStore) []string {
	var out []string
	for _, e := range s.generations[s.active] {
		out = append(out, e.Content)
	}
	sort.Strings(out)
	return out
}

func TestRebuild(t *testing.T) {
	t.Run("success activates new generation", func(t *testing.T) {
		store := newFakeStore(chunkFixture(0, "Acme"), chunkFixture(1, "Acme"))
		ix := NewIndexer(store, &fakeEmbedder{}, 2, time.Second)

		stats, err := ix.Rebuild(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, stats.Entries)
		require.Equal(t, stats.Generation, store.active)
		require.Len(t, store.generations[store.active], 2)
		for _, e := range store.generations[store.active] {
			require.NotNil(t, e.Embedding)
			require.Equal(t, "Acme", e.CompanyName)
		}
	})

	t.Run("short chunks are excluded by the length floor", func(t *testing.T) {
		store := newFakeStore(chunkFixture(0, "Acme"))
		ix := NewIndexer(store, &fakeEmbedder{}, 2, time.Second)

		_, err := ix.Rebuild(context.Background())
		require.NoError(t, err)
		require.Equal(t, 10, store.minLength)
	})

	t.Run("rebuild is idempotent", func(t *testing.T) {
		store := newFakeStore(chunkFixture(0, "Acme"), chunkFixture(1, "Acme"))
		ix := NewIndexer(store, &fakeEmbedder{}, 2, time.Second)

		_, err := ix.Rebuild(context.Background())
		require.NoError(t, err)
		first := activeContents(store)
		firstGen := store.active

		_, err = ix.Rebuild(context.Background())
		require.NoError(t, err)
		require.NotEqual(t, firstGen, store.active)
		require.Equal(t, first, activeContents(store))
		require.Len(t, store.generations, 1)
	})

	t.Run("embed failure keeps old index serving", func(t *testing.T) {
		store := newFakeStore(chunkFixture(0, "Acme"))
		ix := NewIndexer(store, &fakeEmbedder{}, 2, time.Second)
		_, err := ix.Rebuild(context.Background())
		require.NoError(t, err)
		oldGen := store.active

		broken := NewIndexer(store, &fakeEmbedder{err: errors.New("ollama down")}, 2, time.Second)
		_, err = broken.Rebuild(context.Background())
		require.ErrorIs(t, err, ErrIndexRebuild)
		require.Equal(t, oldGen, store.active)
		require.Len(t, store.generations, 1)

		entries, err := ix.Search(context.Background(), "query", db.SearchFilters{}, 5)
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("insert failure discards the new generation", func(t *testing.T) {
		store := newFakeStore(chunkFixture(0, "Acme"))
		ix := NewIndexer(store, &fakeEmbedder{}, 2, time.Second)
		_, err := ix.Rebuild(context.Background())
		require.NoError(t, err)
		oldGen := store.active

		store.insertErr = errors.New("connection reset")
		_, err = ix.Rebuild(context.Background())
		require.ErrorIs(t, err, ErrIndexRebuild)
		require.Equal(t, oldGen, store.active)
		require.Len(t, store.generations, 1)
	})

	t.Run("activate failure discards the new generation", func(t *testing.T) {
		store := newFakeStore(chunkFixture(0, "Acme"))
		ix := NewIndexer(store, &fakeEmbedder{}, 2, time.Second)
		_, err := ix.Rebuild(context.Background())
		require.NoError(t, err)
		oldGen := store.active

		store.activateErr = errors.New("deadlock detected")
		_, err = ix.Rebuild(context.Background())
		require.ErrorIs(t, err, ErrIndexRebuild)
		require.Equal(t, oldGen, store.active)
		require.Len(t, store.generations, 1)
		require.Len(t, store.generations[oldGen], 1)
	})

	t.Run("list failure wraps the sentinel", func(t *testing.T) {
		store := newFakeStore()
		store.listErr = errors.New("relation does not exist")
		ix := NewIndexer(store, &fakeEmbedder{}, 2, time.Second)

		_, err := ix.Rebuild(context.Background())
		require.ErrorIs(t, err, ErrIndexRebuild)
	})
}

func TestSearch(t *testing.T) {
	t.Run("returns active entries up to topK", func(t *testing.T) {
		store := newFakeStore(chunkFixture(0, "Acme"), chunkFixture(1, "Acme"), chunkFixture(2, "Acme"))
		ix := NewIndexer(store, &fakeEmbedder{}, 2, time.Second)
		_, err := ix.Rebuild(context.Background())
		require.NoError(t, err)

		entries, err := ix.Search(context.Background(), "emissions", db.SearchFilters{}, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("companies reflect the active generation", func(t *testing.T) {
		store := newFakeStore(chunkFixture(0, "Acme"), chunkFixture(0, "Globex"))
		ix := NewIndexer(store, &fakeEmbedder{}, 2, time.Second)
		_, err := ix.Rebuild(context.Background())
		require.NoError(t, err)

		companies, err := ix.Companies(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"Acme", "Globex"}, companies)
	})
}
