package db

import (
	"context"
	"fmt"
)

// InsertEvaluationResult appends one judgment row. Results are never
// updated in place; a run is the unit of traceability.
func (db *DB) InsertEvaluationResult(ctx context.Context, r *EvaluationResult) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO evaluation_results
		 (id, run_id, criterion_id, criterion_version, question, prompt,
		  company_name, result, justification, evidence, output)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.RunID, r.CriterionID, r.CriterionVersion, r.Question, r.Prompt,
		r.CompanyName, r.Result, r.Justification, r.Evidence, r.Output,
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation result: %w", err)
	}
	return nil
}

// ListRecentRuns summarizes the most recent analysis runs.
func (db *DB) ListRecentRuns(ctx context.Context, limit int) ([]*RunInfo, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id,
		        COUNT(DISTINCT criterion_id),
		        COUNT(DISTINCT company_name),
		        COUNT(*),
		        MIN(created_at)
		 FROM evaluation_results
		 GROUP BY run_id
		 ORDER BY MIN(created_at) DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(
			&info.RunID, &info.CriteriaCount, &info.CompanyCount,
			&info.ResultCount, &info.StartedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run info: %w", err)
		}
		runs = append(runs, &info)
	}
	return runs, rows.Err()
}

// GetRunResults returns every result row of a run, ordered by criterion
// then company.
func (db *DB) GetRunResults(ctx context.Context, runID string) ([]*EvaluationResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, criterion_id, criterion_version, question, prompt,
		        company_name, result, justification, evidence, output, created_at
		 FROM evaluation_results
		 WHERE run_id = $1
		 ORDER BY criterion_id, company_name`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer rows.Close()

	var results []*EvaluationResult
	for rows.Next() {
		var r EvaluationResult
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.CriterionID, &r.CriterionVersion, &r.Question, &r.Prompt,
			&r.CompanyName, &r.Result, &r.Justification, &r.Evidence, &r.Output, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation result: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}
