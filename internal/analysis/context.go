package analysis

import (
	"fmt"
	"strings"

	"github.com/report-ai/cli/internal/db"
)

// PromptBuilder assembles evaluation prompts from a criterion prompt, the
// company's media scan findings, and retrieved context chunks.
type PromptBuilder struct {
	maxContextChars int
}

// NewPromptBuilder creates a prompt builder. maxContextChars caps the
// context block to keep prompts inside the model window.
func NewPromptBuilder(maxContextChars int) *PromptBuilder {
	if maxContextChars <= 0 {
		maxContextChars = 24000
	}
	return &PromptBuilder{maxContextChars: maxContextChars}
}

// BuildContext formats retrieved chunks as numbered context documents.
func (pb *PromptBuilder) BuildContext(entries []*db.SearchEntry) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "Context document %d: %s\n\n", i+1, e.Content)
	}

	context := b.String()
	if len(context) > pb.maxContextChars {
		context = context[:pb.maxContextChars] + "\n\n[Context truncated...]"
	}
	return context
}

// BuildPrompt composes the full evaluation prompt. Media scan topics go in a
// <media_scan> block between the criterion prompt and the <context> block;
// the block is omitted when the company has no findings.
func (pb *PromptBuilder) BuildPrompt(criterionPrompt string, topics []string, entries []*db.SearchEntry) string {
	var parts []string

	parts = append(parts, criterionPrompt)

	if len(topics) > 0 {
		parts = append(parts, "<media_scan>")
		for _, topic := range topics {
			parts = append(parts, topic)
		}
		parts = append(parts, "</media_scan>")
	}

	parts = append(parts, "<context>")
	parts = append(parts, pb.BuildContext(entries))
	parts = append(parts, "</context>")

	return strings.Join(parts, "\n")
}
