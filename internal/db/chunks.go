package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReplaceChunks deletes all chunks for a document and inserts the new set
// in a single transaction, so re-chunking never leaves a partial sequence.
func (db *DB) ReplaceChunks(ctx context.Context, docID uuid.UUID, chunks []*Chunk) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, docID); err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(
			`INSERT INTO chunks (id, document_id, chunk_index, content, display_content, language)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			chunk.ID, chunk.DocumentID, chunk.ChunkIndex,
			chunk.Content, chunk.DisplayContent, chunk.Language,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < len(chunks); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	return tx.Commit(ctx)
}

// GetChunksByDocument returns the chunk sequence for a document in ordinal
// order.
func (db *DB) GetChunksByDocument(ctx context.Context, docID uuid.UUID) ([]*Chunk, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, document_id, chunk_index, content, display_content, language, created_at
		 FROM chunks WHERE document_id = $1 ORDER BY chunk_index`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*Chunk
	for rows.Next() {
		var chunk Chunk
		if err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex,
			&chunk.Content, &chunk.DisplayContent, &chunk.Language, &chunk.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

// IndexableChunk joins a chunk with its document attributes for indexing.
type IndexableChunk struct {
	ChunkID      uuid.UUID
	ChunkIndex   int
	Content      string
	Display      string
	Language     string
	DocumentPath string
	FileURL      string
	CompanyName  string
	Year         int
}

// ListIndexableChunks returns every chunk eligible for the search index:
// non-empty content strictly longer than minLength characters. Short chunks
// stay in the chunk table but are never indexed.
func (db *DB) ListIndexableChunks(ctx context.Context, minLength int) ([]*IndexableChunk, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT c.id, c.chunk_index, c.content, c.display_content, c.language,
		        d.relative_path, d.file_url, d.company_name, d.year
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE c.content IS NOT NULL AND LENGTH(c.content) > $1
		 ORDER BY d.relative_path, c.chunk_index`,
		minLength,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexable chunks: %w", err)
	}
	defer rows.Close()

	var out []*IndexableChunk
	for rows.Next() {
		var ic IndexableChunk
		if err := rows.Scan(
			&ic.ChunkID, &ic.ChunkIndex, &ic.Content, &ic.Display, &ic.Language,
			&ic.DocumentPath, &ic.FileURL, &ic.CompanyName, &ic.Year,
		); err != nil {
			return nil, fmt.Errorf("failed to scan indexable chunk: %w", err)
		}
		out = append(out, &ic)
	}
	return out, rows.Err()
}
