package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/report-ai/cli/internal/db"
	"github.com/report-ai/cli/internal/logging"
)

// Generator produces the model judgment for one prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, model, prompt string) (string, error)
}

// ContextRetriever fetches the context chunks for one question. *Retriever
// satisfies it.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query, companyName string) (*RetrievalResult, error)
}

// MediaLookup resolves the media scan record of a company. *mediascan.Store
// satisfies it.
type MediaLookup interface {
	Get(ctx context.Context, companyName string) (*db.MediaScanRecord, error)
}

// ResultStore persists evaluation rows and serves run history. *db.DB
// satisfies it.
type ResultStore interface {
	InsertEvaluationResult(ctx context.Context, r *db.EvaluationResult) error
	ListRecentRuns(ctx context.Context, limit int) ([]*db.RunInfo, error)
	GetRunResults(ctx context.Context, runID string) ([]*db.EvaluationResult, error)
}

// Runner executes the evaluation matrix: every selected criterion against
// every selected company. Cells fail independently; a failed cell becomes an
// error row, never an aborted run.
type Runner struct {
	db          ResultStore
	retriever   ContextRetriever
	prompts     *PromptBuilder
	media       MediaLookup
	llm         Generator
	model       string
	callTimeout time.Duration
}

// NewRunner creates an analysis runner.
func NewRunner(results ResultStore, retriever ContextRetriever, prompts *PromptBuilder, media MediaLookup, llm Generator, model string, callTimeout time.Duration) *Runner {
	if callTimeout <= 0 {
		callTimeout = 2 * time.Minute
	}
	return &Runner{
		db:          results,
		retriever:   retriever,
		prompts:     prompts,
		media:       media,
		llm:         llm,
		model:       model,
		callTimeout: callTimeout,
	}
}

// RunSummary reports the outcome of one analysis run.
type RunSummary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// NewRunID generates a unique, sortable run identifier.
func NewRunID() string {
	return fmt.Sprintf("analysis_%s_%s",
		strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
		time.Now().Format("20060102_150405"),
	)
}

// Run evaluates every criterion against every company under a single run id.
func (r *Runner) Run(ctx context.Context, criteria []*db.Criterion, companies []string) (*RunSummary, error) {
	if len(criteria) == 0 {
		return nil, fmt.Errorf("no criteria selected")
	}
	if len(companies) == 0 {
		return nil, fmt.Errorf("no companies selected")
	}

	summary := &RunSummary{
		RunID: NewRunID(),
		Total: len(criteria) * len(companies),
	}
	start := time.Now()

	logging.Infow("analysis run started",
		"run_id", summary.RunID,
		"criteria", len(criteria),
		"companies", len(companies),
	)

	for _, criterion := range criteria {
		for _, company := range companies {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			if err := r.runCell(ctx, summary.RunID, criterion, company); err != nil {
				summary.Failed++
				logging.Errorw("evaluation cell failed",
					"run_id", summary.RunID,
					"criterion", criterion.ID,
					"company", company,
					"error", err,
				)
			} else {
				summary.Succeeded++
			}
		}
	}

	summary.Duration = time.Since(start)
	logging.Infow("analysis run complete",
		"run_id", summary.RunID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", summary.Duration.String(),
	)
	return summary, nil
}

// cellOutput is the JSON shape the model is asked to return.
type cellOutput struct {
	Result        string `json:"result"`
	Justification string `json:"justification"`
}

// runCell evaluates one (criterion, company) pair and stores the result.
// Failures after retrieval are still recorded as error rows so the run
// remains reviewable.
func (r *Runner) runCell(ctx context.Context, runID string, criterion *db.Criterion, company string) error {
	cctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	retrieved, err := r.retriever.Retrieve(cctx, criterion.Question, company)
	if err != nil {
		return r.recordFailure(ctx, runID, criterion, company, "", err)
	}

	var topics []string
	record, err := r.media.Get(cctx, company)
	if err != nil {
		// The media scan is supplementary context, so the cell still runs
		// without it.
		logging.Warnf("media scan lookup failed for %s: %v", company, err)
	} else if record != nil && record.Topic != "" {
		topics = append(topics, record.Topic)
	}

	prompt := r.prompts.BuildPrompt(criterion.Prompt, topics, retrieved.Entries)

	raw, err := r.llm.GenerateJSON(cctx, r.model, prompt)
	if err != nil {
		return r.recordFailure(ctx, runID, criterion, company, prompt, err)
	}

	var out cellOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// Keep the raw text reviewable even when the model ignored the schema.
		out.Result = "unstructured"
		out.Justification = raw
	}

	payload, err := json.Marshal(map[string]any{
		"model":     r.model,
		"raw":       raw,
		"sources":   SourcePaths(retrieved),
		"retrieved": len(retrieved.Entries),
	})
	if err != nil {
		payload = []byte(`{}`)
	}

	return r.db.InsertEvaluationResult(ctx, &db.EvaluationResult{
		ID:               uuid.New(),
		RunID:            runID,
		CriterionID:      criterion.ID,
		CriterionVersion: criterion.Version,
		Question:         criterion.Question,
		Prompt:           prompt,
		CompanyName:      company,
		Result:           out.Result,
		Justification:    out.Justification,
		Evidence:         strings.Join(SourcePaths(retrieved), "; "),
		Output:           payload,
	})
}

// recordFailure writes an error row for a failed cell and reports the
// original error.
func (r *Runner) recordFailure(ctx context.Context, runID string, criterion *db.Criterion, company, prompt string, cause error) error {
	row := &db.EvaluationResult{
		ID:               uuid.New(),
		RunID:            runID,
		CriterionID:      criterion.ID,
		CriterionVersion: criterion.Version,
		Question:         criterion.Question,
		Prompt:           prompt,
		CompanyName:      company,
		Result:           "error",
		Justification:    fmt.Sprintf("Analysis failed: %v", cause),
		Output:           []byte(`{}`),
	}
	if dbErr := r.db.InsertEvaluationResult(ctx, row); dbErr != nil {
		logging.Errorw("failed to record evaluation error",
			"run_id", runID, "criterion", criterion.ID, "company", company, "error", dbErr)
	}
	return cause
}

// RecentRuns lists the latest runs with aggregate counts.
func (r *Runner) RecentRuns(ctx context.Context, limit int) ([]*db.RunInfo, error) {
	return r.db.ListRecentRuns(ctx, limit)
}

// RunResults fetches every result row of a run.
func (r *Runner) RunResults(ctx context.Context, runID string) ([]*db.EvaluationResult, error) {
	return r.db.GetRunResults(ctx, runID)
}
