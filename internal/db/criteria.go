package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const criterionColumns = `id, version, question, cluster, role, instructions,
	 output_schema, prompt, weight, active, created_at`

func scanCriterion(row pgx.Row) (*Criterion, error) {
	var c Criterion
	err := row.Scan(
		&c.ID, &c.Version, &c.Question, &c.Cluster, &c.Role, &c.Instructions,
		&c.OutputSchema, &c.Prompt, &c.Weight, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ReplaceCriteriaVersion deletes every row of the given version and inserts
// the replacement set inside one transaction. Readers see the old version
// until commit, then only the new one.
func (db *DB) ReplaceCriteriaVersion(ctx context.Context, version string, criteria []*Criterion) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM criteria WHERE version = $1`, version); err != nil {
		return fmt.Errorf("failed to delete criteria version %s: %w", version, err)
	}

	batch := &pgx.Batch{}
	for _, c := range criteria {
		batch.Queue(
			`INSERT INTO criteria
			 (id, version, question, cluster, role, instructions, output_schema, prompt, weight, active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			c.ID, version, c.Question, c.Cluster, c.Role, c.Instructions,
			c.OutputSchema, c.Prompt, c.Weight, c.Active,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < len(criteria); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert criterion %q: %w", criteria[i].ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	return tx.Commit(ctx)
}

// ListActiveCriteria returns the active criteria of a version ordered by id.
func (db *DB) ListActiveCriteria(ctx context.Context, version string) ([]*Criterion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+criterionColumns+` FROM criteria
		 WHERE version = $1 AND active
		 ORDER BY id`,
		version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active criteria: %w", err)
	}
	defer rows.Close()

	var out []*Criterion
	for rows.Next() {
		c, err := scanCriterion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan criterion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListAllActiveCriteria returns active criteria across versions, ordered by
// id then version, for the analysis screen.
func (db *DB) ListAllActiveCriteria(ctx context.Context) ([]*Criterion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+criterionColumns+` FROM criteria
		 WHERE active
		 ORDER BY id, version`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active criteria: %w", err)
	}
	defer rows.Close()

	var out []*Criterion
	for rows.Next() {
		c, err := scanCriterion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan criterion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListCriteria returns every criterion, all versions included.
func (db *DB) ListCriteria(ctx context.Context) ([]*Criterion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+criterionColumns+` FROM criteria ORDER BY id, version`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	defer rows.Close()

	var out []*Criterion
	for rows.Next() {
		c, err := scanCriterion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan criterion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetCriterionActive toggles a criterion's active flag.
func (db *DB) SetCriterionActive(ctx context.Context, id, version string, active bool) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE criteria SET active = $3 WHERE id = $1 AND version = $2`,
		id, version, active,
	)
	return err
}

// DeleteCriterion removes one criterion row.
func (db *DB) DeleteCriterion(ctx context.Context, id, version string) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM criteria WHERE id = $1 AND version = $2`,
		id, version,
	)
	return err
}
