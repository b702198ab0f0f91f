package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 2000, cfg.Processing.WindowSize)
	assert.Equal(t, 300, cfg.Processing.WindowOverlap)
	assert.Equal(t, 5, cfg.Processing.TopK)
	assert.Equal(t, "English", cfg.Processing.Language)
	assert.Equal(t, 0.001, cfg.Criteria.WeightTolerance)
	assert.Equal(t, "nomic-embed-text", cfg.Embeddings.TextModel)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.NotEmpty(t, cfg.Paths.DocumentsDir)
	assert.NotEmpty(t, cfg.Paths.LogFile)
	assert.Greater(t, cfg.Processing.WindowSize, cfg.Processing.WindowOverlap)
}
