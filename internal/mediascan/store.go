package mediascan

import (
	"context"
	"fmt"
	"strings"

	"github.com/report-ai/cli/internal/db"
)

// Store manages media scan records: disqualifying topics found in press
// coverage of a company, kept separately from the document pipeline.
type Store struct {
	db *db.DB
}

// NewStore creates a media scan store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert records a topic for a company, replacing any previous one. Company
// names are matched exactly, so the name is normalized before storage.
func (s *Store) Upsert(ctx context.Context, companyName, topic string) error {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return fmt.Errorf("company name cannot be empty")
	}
	return s.db.UpsertMediaScan(ctx, companyName, strings.TrimSpace(topic))
}

// Get returns the record for a company, or nil when none exists.
func (s *Store) Get(ctx context.Context, companyName string) (*db.MediaScanRecord, error) {
	return s.db.GetMediaScan(ctx, strings.TrimSpace(companyName))
}

// List returns every media scan record.
func (s *Store) List(ctx context.Context) ([]*db.MediaScanRecord, error) {
	return s.db.ListMediaScans(ctx)
}

// Delete removes the record for a company.
func (s *Store) Delete(ctx context.Context, companyName string) error {
	return s.db.DeleteMediaScan(ctx, strings.TrimSpace(companyName))
}
