package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const documentColumns = `id, relative_path, file_url, file_hash, company_name, year,
	 parsed_text, parse_error, uploaded_at, parsed_at, created_at, updated_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	err := row.Scan(
		&doc.ID, &doc.RelativePath, &doc.FileURL, &doc.FileHash,
		&doc.CompanyName, &doc.Year, &doc.ParsedText, &doc.ParseError,
		&doc.UploadedAt, &doc.ParsedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocumentByPath retrieves a document by its relative path, or nil if
// the path has never been seen.
func (db *DB) GetDocumentByPath(ctx context.Context, relativePath string) (*Document, error) {
	doc, err := scanDocument(db.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE relative_path = $1`,
		relativePath,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document by path: %w", err)
	}
	return doc, nil
}

// UpsertDocument creates or replaces the document record for a path. A new
// upload of a known path resets the parse state.
func (db *DB) UpsertDocument(ctx context.Context, relativePath, fileURL, fileHash, companyName string, year int) (*Document, error) {
	doc, err := scanDocument(db.pool.QueryRow(ctx,
		`INSERT INTO documents (relative_path, file_url, file_hash, company_name, year)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (relative_path) DO UPDATE SET
		     file_url = EXCLUDED.file_url,
		     file_hash = EXCLUDED.file_hash,
		     company_name = EXCLUDED.company_name,
		     year = EXCLUDED.year,
		     parsed_text = NULL,
		     parse_error = NULL,
		     parsed_at = NULL,
		     updated_at = NOW()
		 RETURNING `+documentColumns,
		relativePath, fileURL, fileHash, companyName, year,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert document: %w", err)
	}
	return doc, nil
}

// SetDocumentParsed stores the extracted text and marks the document parsed.
func (db *DB) SetDocumentParsed(ctx context.Context, docID uuid.UUID, text string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents
		 SET parsed_text = $2, parse_error = NULL, parsed_at = NOW(), updated_at = NOW()
		 WHERE id = $1`,
		docID, text,
	)
	return err
}

// SetDocumentParseError records a per-document parse failure.
func (db *DB) SetDocumentParseError(ctx context.Context, docID uuid.UUID, reason string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents
		 SET parse_error = $2, parsed_at = NULL, updated_at = NOW()
		 WHERE id = $1`,
		docID, reason,
	)
	return err
}

// GetAllDocuments retrieves all documents, newest first.
func (db *DB) GetAllDocuments(ctx context.Context) ([]*Document, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument deletes a document and its chunks.
func (db *DB) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, docID)
	return err
}

// TouchDocumentUpload refreshes the upload timestamp without resetting
// parse state, used when a rescan sees an unchanged file.
func (db *DB) TouchDocumentUpload(ctx context.Context, docID uuid.UUID, at time.Time) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents SET uploaded_at = $2, updated_at = NOW() WHERE id = $1`,
		docID, at,
	)
	return err
}
