package analysis

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/report-ai/cli/internal/db"
)

func TestNewRunID(t *testing.T) {
	pattern := regexp.MustCompile(`^analysis_[0-9a-f]{8}_\d{8}_\d{6}$`)

	first := NewRunID()
	assert.Regexp(t, pattern, first)

	second := NewRunID()
	assert.NotEqual(t, first, second)
}

// fakeRetriever serves canned entries, or fails.
type fakeRetriever struct {
	entries []*db.SearchEntry
	err     error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query, companyName string) (*RetrievalResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &RetrievalResult{Entries: f.entries}, nil
}

// fakeMedia returns one topic per company, or fails.
type fakeMedia struct {
	topics map[string]string
	err    error
}

func (f *fakeMedia) Get(ctx context.Context, companyName string) (*db.MediaScanRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	topic, ok := f.topics[companyName]
	if !ok {
		return nil, nil
	}
	return &db.MediaScanRecord{CompanyName: companyName, Topic: topic}, nil
}

// fakeResults collects inserted rows.
type fakeResults struct {
	rows []*db.EvaluationResult
}

func (f *fakeResults) InsertEvaluationResult(ctx context.Context, r *db.EvaluationResult) error {
	f.rows = append(f.rows, r)
	return nil
}

func (f *fakeResults) ListRecentRuns(ctx context.Context, limit int) ([]*db.RunInfo, error) {
	return nil, nil
}

func (f *fakeResults) GetRunResults(ctx context.Context, runID string) ([]*db.EvaluationResult, error) {
	var out []*db.EvaluationResult
	for _, r := range f.rows {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeLLM records prompts and replies with a fixed body.
type fakeLLM struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, model, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func criterionFixture(id string) *db.Criterion {
	return &db.Criterion{
		ID:       id,
		Version:  "v1",
		Question: "Does the report disclose scope 1 emissions?",
		Prompt:   "Evaluate scope 1 emission disclosure.",
		Weight:   1.0,
		Active:   true,
	}
}

func searchEntry(path, content string) *db.SearchEntry {
	return &db.SearchEntry{DocumentPath: path, Content: content}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("successful cell stores a structured row", func(t *testing.T) {
		results := &fakeResults{}
		llm := &fakeLLM{reply: `{"result": "yes", "justification": "page 12 discloses it"}`}
		runner := NewRunner(results,
			&fakeRetriever{entries: []*db.SearchEntry{searchEntry("reports/acme.pdf", "scope 1: 120t")}},
			NewPromptBuilder(0),
			&fakeMedia{topics: map[string]string{"Acme": "emissions scandal coverage"}},
			llm, "llama3", time.Minute)

		summary, err := runner.Run(ctx, []*db.Criterion{criterionFixture("c1")}, []string{"Acme"})
		require.NoError(t, err)
		require.Equal(t, 1, summary.Succeeded)
		require.Equal(t, 0, summary.Failed)

		require.Len(t, results.rows, 1)
		row := results.rows[0]
		require.Equal(t, "yes", row.Result)
		require.Equal(t, "page 12 discloses it", row.Justification)
		require.Equal(t, "reports/acme.pdf", row.Evidence)
		require.Equal(t, summary.RunID, row.RunID)

		require.Len(t, llm.prompts, 1)
		require.Contains(t, llm.prompts[0], "<media_scan>")
		require.Contains(t, llm.prompts[0], "emissions scandal coverage")
		require.Contains(t, llm.prompts[0], "scope 1: 120t")
	})

	t.Run("media lookup failure does not fail the cell", func(t *testing.T) {
		results := &fakeResults{}
		llm := &fakeLLM{reply: `{"result": "yes", "justification": "ok"}`}
		runner := NewRunner(results,
			&fakeRetriever{entries: []*db.SearchEntry{searchEntry("reports/acme.pdf", "scope 1: 120t")}},
			NewPromptBuilder(0),
			&fakeMedia{err: errors.New("connection refused")},
			llm, "llama3", time.Minute)

		summary, err := runner.Run(ctx, []*db.Criterion{criterionFixture("c1")}, []string{"Acme"})
		require.NoError(t, err)
		require.Equal(t, 1, summary.Succeeded)
		require.NotContains(t, llm.prompts[0], "<media_scan>")
	})

	t.Run("generation failure becomes an error row", func(t *testing.T) {
		results := &fakeResults{}
		runner := NewRunner(results,
			&fakeRetriever{entries: []*db.SearchEntry{searchEntry("reports/acme.pdf", "text")}},
			NewPromptBuilder(0),
			&fakeMedia{},
			&fakeLLM{err: errors.New("model not loaded")}, "llama3", time.Minute)

		summary, err := runner.Run(ctx, []*db.Criterion{criterionFixture("c1")}, []string{"Acme"})
		require.NoError(t, err)
		require.Equal(t, 1, summary.Failed)

		require.Len(t, results.rows, 1)
		require.Equal(t, "error", results.rows[0].Result)
		require.Contains(t, results.rows[0].Justification, "Analysis failed:")
	})

	t.Run("non-JSON reply is kept as unstructured", func(t *testing.T) {
		results := &fakeResults{}
		runner := NewRunner(results,
			&fakeRetriever{entries: []*db.SearchEntry{searchEntry("reports/acme.pdf", "text")}},
			NewPromptBuilder(0),
			&fakeMedia{},
			&fakeLLM{reply: "the report probably discloses it"}, "llama3", time.Minute)

		summary, err := runner.Run(ctx, []*db.Criterion{criterionFixture("c1")}, []string{"Acme"})
		require.NoError(t, err)
		require.Equal(t, 1, summary.Succeeded)
		require.Equal(t, "unstructured", results.rows[0].Result)
		require.Equal(t, "the report probably discloses it", results.rows[0].Justification)
	})

	t.Run("matrix covers every pair", func(t *testing.T) {
		results := &fakeResults{}
		runner := NewRunner(results,
			&fakeRetriever{entries: []*db.SearchEntry{searchEntry("reports/x.pdf", "text")}},
			NewPromptBuilder(0),
			&fakeMedia{},
			&fakeLLM{reply: `{"result": "no", "justification": "absent"}`}, "llama3", time.Minute)

		summary, err := runner.Run(ctx,
			[]*db.Criterion{criterionFixture("c1"), criterionFixture("c2")},
			[]string{"Acme", "Globex"})
		require.NoError(t, err)
		require.Equal(t, 4, summary.Total)
		require.Equal(t, 4, summary.Succeeded)
		require.Len(t, results.rows, 4)
	})

	t.Run("empty selection is rejected", func(t *testing.T) {
		runner := NewRunner(&fakeResults{}, &fakeRetriever{}, NewPromptBuilder(0), &fakeMedia{},
			&fakeLLM{}, "llama3", time.Minute)

		_, err := runner.Run(ctx, nil, []string{"Acme"})
		require.Error(t, err)
		_, err = runner.Run(ctx, []*db.Criterion{criterionFixture("c1")}, nil)
		require.Error(t, err)
	})
}
