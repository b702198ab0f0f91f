package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/report-ai/cli/internal/criteria"
	"github.com/report-ai/cli/internal/db"
)

// fakeCriteriaBackend keeps criteria rows in memory for view tests.
type fakeCriteriaBackend struct {
	rows []*db.Criterion
}

func (b *fakeCriteriaBackend) ReplaceCriteriaVersion(ctx context.Context, version string, rows []*db.Criterion) error {
	b.rows = rows
	return nil
}

func (b *fakeCriteriaBackend) ListActiveCriteria(ctx context.Context, version string) ([]*db.Criterion, error) {
	var out []*db.Criterion
	for _, c := range b.rows {
		if c.Version == version && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (b *fakeCriteriaBackend) ListAllActiveCriteria(ctx context.Context) ([]*db.Criterion, error) {
	var out []*db.Criterion
	for _, c := range b.rows {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (b *fakeCriteriaBackend) ListCriteria(ctx context.Context) ([]*db.Criterion, error) {
	return b.rows, nil
}

func (b *fakeCriteriaBackend) SetCriterionActive(ctx context.Context, id, version string, active bool) error {
	for _, c := range b.rows {
		if c.ID == id && c.Version == version {
			c.Active = active
		}
	}
	return nil
}

func (b *fakeCriteriaBackend) DeleteCriterion(ctx context.Context, id, version string) error {
	out := b.rows[:0]
	for _, c := range b.rows {
		if c.ID != id || c.Version != version {
			out = append(out, c)
		}
	}
	b.rows = out
	return nil
}

func criteriaApp(rows ...*db.Criterion) (*App, *fakeCriteriaBackend) {
	backend := &fakeCriteriaBackend{rows: rows}
	store := criteria.NewStore(backend, criteria.DefaultWeightTolerance)
	return NewApp(nil, nil, nil, nil, store, nil, nil, nil), backend
}

func criterionRow(id string, active bool) *db.Criterion {
	return &db.Criterion{
		ID:       id,
		Version:  "v1",
		Question: "Does the report disclose emissions?",
		Weight:   0.5,
		Active:   active,
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCriteriaView(t *testing.T) {
	t.Run("loads and lists criteria", func(t *testing.T) {
		app, _ := criteriaApp(criterionRow("c1", true), criterionRow("c2", false))
		cv := app.criteriaView

		msg := cv.Init()()
		loaded, ok := msg.(criteriaLoadedMsg)
		require.True(t, ok)
		require.Len(t, loaded.criteria, 2)

		cv.Update(loaded)
		view := cv.View()
		require.Contains(t, view, "c1")
		require.Contains(t, view, "c2")
		require.Contains(t, view, "[x]")
		require.Contains(t, view, "[ ]")
	})

	t.Run("space toggles the active flag", func(t *testing.T) {
		app, backend := criteriaApp(criterionRow("c1", true))
		cv := app.criteriaView
		cv.Update(cv.Init()())

		_, cmd := cv.Update(key(" "))
		require.NotNil(t, cmd)
		saved, ok := cmd().(criterionSavedMsg)
		require.True(t, ok)
		require.Contains(t, saved.status, "deactivated")
		require.False(t, backend.rows[0].Active)

		active, err := app.criteria.ListAllActive(context.Background())
		require.NoError(t, err)
		require.Empty(t, active)
	})

	t.Run("d deletes the selected criterion", func(t *testing.T) {
		app, backend := criteriaApp(criterionRow("c1", true), criterionRow("c2", true))
		cv := app.criteriaView
		cv.Update(cv.Init()())

		cv.Update(key("j"))
		_, cmd := cv.Update(key("d"))
		require.NotNil(t, cmd)
		saved, ok := cmd().(criterionSavedMsg)
		require.True(t, ok)
		require.Contains(t, saved.status, "c2")

		require.Len(t, backend.rows, 1)
		require.Equal(t, "c1", backend.rows[0].ID)
	})

	t.Run("key 3 opens the criteria screen", func(t *testing.T) {
		app, _ := criteriaApp(criterionRow("c1", true))

		_, cmd := app.Update(key("3"))
		require.Equal(t, screenCriteria, app.active)
		require.NotNil(t, cmd)
		_, ok := cmd().(criteriaLoadedMsg)
		require.True(t, ok)
	})
}
