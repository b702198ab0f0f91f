package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/report-ai/cli/internal/db"
)

func criterion(id string, weight float64, active bool) *db.Criterion {
	return &db.Criterion{
		ID:       id,
		Question: "Does the report disclose " + id + "?",
		Weight:   weight,
		Active:   active,
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid batch", func(t *testing.T) {
		batch := []*db.Criterion{
			criterion("emissions", 0.5, true),
			criterion("governance", 0.5, true),
		}
		assert.NoError(t, Validate(batch, DefaultWeightTolerance))
	})

	t.Run("weights within tolerance", func(t *testing.T) {
		batch := []*db.Criterion{
			criterion("a", 0.3333, true),
			criterion("b", 0.3333, true),
			criterion("c", 0.3334, true),
		}
		assert.NoError(t, Validate(batch, DefaultWeightTolerance))
	})

	t.Run("inactive weights are ignored", func(t *testing.T) {
		batch := []*db.Criterion{
			criterion("a", 1.0, true),
			criterion("b", 5.0, false),
		}
		assert.NoError(t, Validate(batch, DefaultWeightTolerance))
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		err := Validate(nil, DefaultWeightTolerance)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "criteria", verr.Field)
	})

	t.Run("missing id rejected", func(t *testing.T) {
		batch := []*db.Criterion{criterion("", 1.0, true)}
		var verr *ValidationError
		require.ErrorAs(t, Validate(batch, DefaultWeightTolerance), &verr)
		assert.Equal(t, "id", verr.Field)
	})

	t.Run("missing question rejected", func(t *testing.T) {
		batch := []*db.Criterion{{ID: "a", Weight: 1.0, Active: true}}
		var verr *ValidationError
		require.ErrorAs(t, Validate(batch, DefaultWeightTolerance), &verr)
		assert.Equal(t, "question", verr.Field)
		assert.Equal(t, "a", verr.ID)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		batch := []*db.Criterion{
			criterion("a", 0.5, true),
			criterion("a", 0.5, true),
		}
		var verr *ValidationError
		require.ErrorAs(t, Validate(batch, DefaultWeightTolerance), &verr)
		assert.Equal(t, "id", verr.Field)
		assert.Equal(t, "a", verr.ID)
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		batch := []*db.Criterion{criterion("a", -0.5, true)}
		var verr *ValidationError
		require.ErrorAs(t, Validate(batch, DefaultWeightTolerance), &verr)
		assert.Equal(t, "weight", verr.Field)
	})

	t.Run("weights off by more than tolerance rejected", func(t *testing.T) {
		batch := []*db.Criterion{
			criterion("a", 0.5, true),
			criterion("b", 0.4, true),
		}
		var verr *ValidationError
		require.ErrorAs(t, Validate(batch, DefaultWeightTolerance), &verr)
		assert.Equal(t, "weight", verr.Field)
	})

	t.Run("all inactive batch allowed regardless of weights", func(t *testing.T) {
		batch := []*db.Criterion{
			criterion("a", 0.1, false),
			criterion("b", 0.1, false),
		}
		assert.NoError(t, Validate(batch, DefaultWeightTolerance))
	})
}

func TestComposePrompt(t *testing.T) {
	t.Run("all parts present", func(t *testing.T) {
		c := &db.Criterion{
			ID:           "emissions",
			Question:     "Are scope 1 emissions disclosed?",
			Role:         "senior ESG analyst",
			Instructions: "Check the environmental section carefully.",
			OutputSchema: `{"result": "yes|no", "justification": "string"}`,
		}
		prompt := ComposePrompt(c)

		assert.Contains(t, prompt, "You are a senior ESG analyst.")
		assert.Contains(t, prompt, "Check the environmental section carefully.")
		assert.Contains(t, prompt, "Question: Are scope 1 emissions disclosed?")
		assert.Contains(t, prompt, `{"result": "yes|no", "justification": "string"}`)
	})

	t.Run("question only", func(t *testing.T) {
		c := &db.Criterion{ID: "a", Question: "Is there a board diversity policy?"}
		prompt := ComposePrompt(c)

		assert.Contains(t, prompt, "Question: Is there a board diversity policy?")
		assert.NotContains(t, prompt, "You are a")
		assert.NotContains(t, prompt, "schema")
	})
}
