package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// ActiveGeneration returns the generation currently served to readers.
func (db *DB) ActiveGeneration(ctx context.Context) (int64, error) {
	var gen int64
	err := db.pool.QueryRow(ctx,
		`SELECT active_generation FROM search_index_state`,
	).Scan(&gen)
	if err != nil {
		return 0, fmt.Errorf("failed to read index state: %w", err)
	}
	return gen, nil
}

// InsertSearchEntries bulk-inserts entries for a generation under
// construction. The rows stay invisible to readers until the generation is
// activated.
func (db *DB) InsertSearchEntries(ctx context.Context, entries []*SearchEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO search_entries
			 (id, generation, chunk_id, chunk_index, document_path, file_url,
			  content, company_name, year, language, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			e.ID, e.Generation, e.ChunkID, e.ChunkIndex, e.DocumentPath, e.FileURL,
			e.Content, e.CompanyName, e.Year, e.Language, e.Embedding,
		)
	}
	br := db.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < len(entries); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert search entry %d: %w", i, err)
		}
	}
	return nil
}

// ActivateGeneration flips the visible generation to gen and drops every
// other generation's rows in the same transaction. Readers observe either
// the old index or the new one, never a mix.
func (db *DB) ActivateGeneration(ctx context.Context, gen int64) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE search_index_state SET active_generation = $1, rebuilt_at = NOW()`,
		gen,
	); err != nil {
		return fmt.Errorf("failed to activate generation: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM search_entries WHERE generation <> $1`, gen,
	); err != nil {
		return fmt.Errorf("failed to drop stale generations: %w", err)
	}

	return tx.Commit(ctx)
}

// DeleteGeneration discards the rows of an abandoned build.
func (db *DB) DeleteGeneration(ctx context.Context, gen int64) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM search_entries WHERE generation = $1`, gen)
	return err
}

// SearchFilters restrict a search to matching attribute values. Zero values
// mean "any".
type SearchFilters struct {
	Language    string
	CompanyName string
	Year        int
}

// SearchEntries finds the topK active-generation entries nearest to the
// query embedding, after applying attribute filters. Ties are broken by
// document path and ordinal so retrieval order is stable.
func (db *DB) SearchEntries(ctx context.Context, embedding *pgvector.Vector, filters SearchFilters, topK int) ([]*SearchEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, generation, chunk_id, chunk_index, document_path, file_url,
		        content, company_name, year, language, embedding, created_at
		 FROM search_entries
		 WHERE generation = (SELECT active_generation FROM search_index_state)
		   AND embedding IS NOT NULL
		   AND ($2 = '' OR language = $2)
		   AND ($3 = '' OR company_name = $3)
		   AND ($4 = 0 OR year = $4)
		 ORDER BY embedding <=> $1, document_path, chunk_index
		 LIMIT $5`,
		embedding, filters.Language, filters.CompanyName, filters.Year, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()

	var entries []*SearchEntry
	for rows.Next() {
		var e SearchEntry
		if err := rows.Scan(
			&e.ID, &e.Generation, &e.ChunkID, &e.ChunkIndex, &e.DocumentPath, &e.FileURL,
			&e.Content, &e.CompanyName, &e.Year, &e.Language, &e.Embedding, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// SearchableCompanies returns the distinct company names present in the
// active generation.
func (db *DB) SearchableCompanies(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT company_name FROM search_entries
		 WHERE generation = (SELECT active_generation FROM search_index_state)
		   AND company_name <> ''
		 ORDER BY company_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, name)
	}
	return companies, rows.Err()
}

// GetStats collects the dashboard counters.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := db.pool.QueryRow(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM documents),
		    (SELECT COUNT(*) FROM documents WHERE parsed_at IS NOT NULL),
		    (SELECT COUNT(*) FROM chunks),
		    (SELECT COUNT(*) FROM search_entries
		     WHERE generation = (SELECT active_generation FROM search_index_state)),
		    (SELECT COUNT(*) FROM criteria WHERE active),
		    (SELECT COUNT(*) FROM media_scan),
		    (SELECT COUNT(DISTINCT run_id) FROM evaluation_results)`,
	).Scan(
		&s.Documents, &s.ParsedDocuments, &s.Chunks, &s.SearchableChunks,
		&s.ActiveCriteria, &s.MediaScans, &s.Runs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &s, nil
}
