package criteria

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/report-ai/cli/internal/db"
	"github.com/report-ai/cli/internal/logging"
)

// Backend is the persistence surface the store needs. *db.DB satisfies it.
type Backend interface {
	ReplaceCriteriaVersion(ctx context.Context, version string, criteria []*db.Criterion) error
	ListActiveCriteria(ctx context.Context, version string) ([]*db.Criterion, error)
	ListAllActiveCriteria(ctx context.Context) ([]*db.Criterion, error)
	ListCriteria(ctx context.Context) ([]*db.Criterion, error)
	SetCriterionActive(ctx context.Context, id, version string, active bool) error
	DeleteCriterion(ctx context.Context, id, version string) error
}

// Store manages versioned evaluation criteria.
type Store struct {
	db              Backend
	weightTolerance float64
}

// NewStore creates a criteria store.
func NewStore(backend Backend, weightTolerance float64) *Store {
	return &Store{db: backend, weightTolerance: weightTolerance}
}

// LoadVersion validates a criteria batch and replaces the given version with
// it in one transaction. On validation failure nothing is written, so the
// prior rows of that version stay visible.
func (s *Store) LoadVersion(ctx context.Context, version string, criteria []*db.Criterion) error {
	if version == "" {
		return &ValidationError{Field: "version", Reason: "missing required field"}
	}
	if err := Validate(criteria, s.weightTolerance); err != nil {
		return err
	}

	for _, c := range criteria {
		c.Version = version
		if c.Prompt == "" {
			c.Prompt = ComposePrompt(c)
		}
	}

	if err := s.db.ReplaceCriteriaVersion(ctx, version, criteria); err != nil {
		return fmt.Errorf("failed to load criteria version %s: %w", version, err)
	}

	logging.Infow("criteria version loaded", "version", version, "count", len(criteria))
	return nil
}

// ListActive returns the active criteria of a version ordered by id.
func (s *Store) ListActive(ctx context.Context, version string) ([]*db.Criterion, error) {
	return s.db.ListActiveCriteria(ctx, version)
}

// ListAll returns every criterion across versions.
func (s *Store) ListAll(ctx context.Context) ([]*db.Criterion, error) {
	return s.db.ListCriteria(ctx)
}

// ListAllActive returns the active criteria of every version. These are the
// criteria an analysis run evaluates.
func (s *Store) ListAllActive(ctx context.Context) ([]*db.Criterion, error) {
	return s.db.ListAllActiveCriteria(ctx)
}

// SetActive toggles a criterion's active flag.
func (s *Store) SetActive(ctx context.Context, id, version string, active bool) error {
	return s.db.SetCriterionActive(ctx, id, version, active)
}

// Delete removes one criterion.
func (s *Store) Delete(ctx context.Context, id, version string) error {
	return s.db.DeleteCriterion(ctx, id, version)
}

// fileRecord is the JSON shape accepted by LoadFile.
type fileRecord struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Cluster      []string `json:"cluster"`
	Role         string   `json:"role"`
	Instructions string   `json:"instructions"`
	OutputSchema string   `json:"outputSchema"`
	Prompt       string   `json:"prompt"`
	Weight       float64  `json:"weight"`
	Active       bool     `json:"active"`
}

// LoadFile reads a JSON array of criteria records from disk and loads them
// as the given version.
func (s *Store) LoadFile(ctx context.Context, path, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read criteria file: %w", err)
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse criteria file: %w", err)
	}

	criteria := make([]*db.Criterion, 0, len(records))
	for _, r := range records {
		criteria = append(criteria, &db.Criterion{
			ID:           r.ID,
			Question:     r.Question,
			Cluster:      r.Cluster,
			Role:         r.Role,
			Instructions: r.Instructions,
			OutputSchema: r.OutputSchema,
			Prompt:       r.Prompt,
			Weight:       r.Weight,
			Active:       r.Active,
		})
	}

	return s.LoadVersion(ctx, version, criteria)
}
