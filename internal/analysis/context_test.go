package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/report-ai/cli/internal/db"
)

func entries(contents ...string) []*db.SearchEntry {
	out := make([]*db.SearchEntry, 0, len(contents))
	for i, c := range contents {
		out = append(out, &db.SearchEntry{
			Content:      c,
			DocumentPath: "acme.pdf",
			ChunkIndex:   i,
		})
	}
	return out
}

func TestBuildContext(t *testing.T) {
	t.Run("numbers context documents from one", func(t *testing.T) {
		pb := NewPromptBuilder(0)
		ctx := pb.BuildContext(entries("first chunk", "second chunk"))

		assert.Contains(t, ctx, "Context document 1: first chunk")
		assert.Contains(t, ctx, "Context document 2: second chunk")
		assert.Less(t, strings.Index(ctx, "Context document 1"), strings.Index(ctx, "Context document 2"))
	})

	t.Run("empty retrieval yields empty context", func(t *testing.T) {
		pb := NewPromptBuilder(0)
		assert.Equal(t, "", pb.BuildContext(nil))
	})

	t.Run("oversized context is truncated", func(t *testing.T) {
		pb := NewPromptBuilder(50)
		ctx := pb.BuildContext(entries(strings.Repeat("x", 500)))

		assert.Contains(t, ctx, "[Context truncated...]")
		assert.Less(t, len(ctx), 100)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Run("media scan block included when topics exist", func(t *testing.T) {
		pb := NewPromptBuilder(0)
		prompt := pb.BuildPrompt("Evaluate emissions.", []string{"greenwashing allegations"}, entries("chunk"))

		assert.Contains(t, prompt, "Evaluate emissions.")
		assert.Contains(t, prompt, "<media_scan>")
		assert.Contains(t, prompt, "greenwashing allegations")
		assert.Contains(t, prompt, "</media_scan>")
		assert.Contains(t, prompt, "<context>")
		assert.Contains(t, prompt, "Context document 1: chunk")
		assert.Contains(t, prompt, "</context>")
	})

	t.Run("media scan block omitted without topics", func(t *testing.T) {
		pb := NewPromptBuilder(0)
		prompt := pb.BuildPrompt("Evaluate emissions.", nil, entries("chunk"))

		assert.NotContains(t, prompt, "<media_scan>")
		assert.Contains(t, prompt, "<context>")
	})

	t.Run("criterion prompt comes before the context", func(t *testing.T) {
		pb := NewPromptBuilder(0)
		prompt := pb.BuildPrompt("Evaluate emissions.", nil, entries("chunk"))

		assert.Less(t, strings.Index(prompt, "Evaluate emissions."), strings.Index(prompt, "<context>"))
	})
}

func TestSourcePaths(t *testing.T) {
	result := &RetrievalResult{Entries: []*db.SearchEntry{
		{DocumentPath: "acme_2023.pdf"},
		{DocumentPath: "acme_2022.pdf"},
		{DocumentPath: "acme_2023.pdf"},
	}}

	assert.Equal(t, []string{"acme_2023.pdf", "acme_2022.pdf"}, SourcePaths(result))
}
