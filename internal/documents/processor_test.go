package documents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchSummaryAdd(t *testing.T) {
	var s BatchSummary

	s.Add(ItemResult{Path: "a.pdf", Status: StatusSucceeded, Chunks: 3})
	s.Add(ItemResult{Path: "b.pdf", Status: StatusFailed, Reason: "corrupt"})
	s.Add(ItemResult{Path: "c.pdf", Status: StatusSkipped, Reason: "unchanged"})
	s.Add(ItemResult{Path: "d.pdf", Status: StatusSucceeded, Chunks: 1})

	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.Len(t, s.Items, 4)
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"b.pdf", "a.pdf", "notes.txt", filepath.Join("sub", "c.PDF")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	p, err := NewProcessor(nil, dir, "English", 100, 10, 2)
	require.NoError(t, err)

	paths, err := p.scanDirectory()
	require.NoError(t, err)

	assert.Equal(t, []string{"a.pdf", "b.pdf", filepath.Join("sub", "c.PDF")}, paths)
}

func TestComputeFileHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("same content"), 0644))

	first, err := computeFileHash(path)
	require.NoError(t, err)
	second, err := computeFileHash(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, os.WriteFile(path, []byte("different content"), 0644))
	third, err := computeFileHash(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}
