package criteria

import (
	"fmt"
	"math"

	"github.com/report-ai/cli/internal/db"
)

// DefaultWeightTolerance bounds how far active weights may drift from 1.0.
const DefaultWeightTolerance = 0.001

// ValidationError rejects a criteria batch and names the offending record
// and field.
type ValidationError struct {
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid criteria batch: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid criterion %q: %s: %s", e.ID, e.Field, e.Reason)
}

// Validate checks a criteria batch before it can replace a version. The
// whole batch is rejected on the first problem: a version is loaded entirely
// or not at all.
func Validate(criteria []*db.Criterion, weightTolerance float64) error {
	if weightTolerance <= 0 {
		weightTolerance = DefaultWeightTolerance
	}
	if len(criteria) == 0 {
		return &ValidationError{Field: "criteria", Reason: "batch is empty"}
	}

	seen := make(map[string]bool, len(criteria))
	activeWeight := 0.0
	hasActive := false

	for _, c := range criteria {
		if c.ID == "" {
			return &ValidationError{Field: "id", Reason: "missing required field"}
		}
		if c.Question == "" {
			return &ValidationError{ID: c.ID, Field: "question", Reason: "missing required field"}
		}
		if c.Weight < 0 {
			return &ValidationError{ID: c.ID, Field: "weight", Reason: "must not be negative"}
		}
		if seen[c.ID] {
			return &ValidationError{ID: c.ID, Field: "id", Reason: "duplicate id within version"}
		}
		seen[c.ID] = true

		if c.Active {
			hasActive = true
			activeWeight += c.Weight
		}
	}

	if hasActive && math.Abs(activeWeight-1.0) > weightTolerance {
		return &ValidationError{
			Field:  "weight",
			Reason: fmt.Sprintf("active weights sum to %.4f, expected 1.0", activeWeight),
		}
	}
	return nil
}
