package criteria

import (
	"fmt"
	"strings"

	"github.com/report-ai/cli/internal/db"
)

// taskInstruction closes every composed prompt so the model answers from
// the retrieved context only.
const taskInstruction = "Answer the question using only the provided context documents. " +
	"If the context does not contain the answer, say so explicitly."

// ComposePrompt builds an evaluation prompt from a criterion's parts.
// Criteria loaded with an explicit prompt keep it; this fills the gap for
// records that only define the structured fields.
func ComposePrompt(c *db.Criterion) string {
	var b strings.Builder

	if c.Role != "" {
		fmt.Fprintf(&b, "You are a %s.\n\n", c.Role)
	}
	if c.Instructions != "" {
		b.WriteString(c.Instructions)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Question: %s\n\n", c.Question)
	if c.OutputSchema != "" {
		fmt.Fprintf(&b, "Respond as JSON matching this schema:\n%s\n\n", c.OutputSchema)
	}
	b.WriteString(taskInstruction)

	return b.String()
}
