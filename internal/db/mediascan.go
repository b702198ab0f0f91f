package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertMediaScan inserts or updates the disqualification topic for a
// company.
func (db *DB) UpsertMediaScan(ctx context.Context, companyName, topic string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO media_scan (company_name, topic)
		 VALUES ($1, $2)
		 ON CONFLICT (company_name) DO UPDATE SET topic = EXCLUDED.topic, updated_at = NOW()`,
		companyName, topic,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert media scan: %w", err)
	}
	return nil
}

// GetMediaScan returns the record for a company, or nil when none exists.
func (db *DB) GetMediaScan(ctx context.Context, companyName string) (*MediaScanRecord, error) {
	var rec MediaScanRecord
	err := db.pool.QueryRow(ctx,
		`SELECT company_name, topic, updated_at FROM media_scan WHERE company_name = $1`,
		companyName,
	).Scan(&rec.CompanyName, &rec.Topic, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media scan: %w", err)
	}
	return &rec, nil
}

// ListMediaScans returns all records ordered by company name.
func (db *DB) ListMediaScans(ctx context.Context) ([]*MediaScanRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT company_name, topic, updated_at FROM media_scan ORDER BY company_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list media scans: %w", err)
	}
	defer rows.Close()

	var out []*MediaScanRecord
	for rows.Next() {
		var rec MediaScanRecord
		if err := rows.Scan(&rec.CompanyName, &rec.Topic, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan media scan record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// DeleteMediaScan removes a company's record.
func (db *DB) DeleteMediaScan(ctx context.Context, companyName string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM media_scan WHERE company_name = $1`, companyName)
	return err
}
