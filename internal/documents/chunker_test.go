package documents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunker(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		c, err := NewChunker(2000, 300)
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("zero window size", func(t *testing.T) {
		_, err := NewChunker(0, 0)
		assert.ErrorIs(t, err, ErrChunkParams)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := NewChunker(100, -1)
		assert.ErrorIs(t, err, ErrChunkParams)
	})

	t.Run("overlap equal to window", func(t *testing.T) {
		_, err := NewChunker(100, 100)
		assert.ErrorIs(t, err, ErrChunkParams)
	})

	t.Run("overlap larger than window", func(t *testing.T) {
		_, err := NewChunker(100, 150)
		assert.ErrorIs(t, err, ErrChunkParams)
	})
}

func TestChunkerSplit(t *testing.T) {
	t.Run("empty text yields no pieces", func(t *testing.T) {
		c, err := NewChunker(10, 3)
		require.NoError(t, err)
		assert.Empty(t, c.Split(""))
	})

	t.Run("text within one window", func(t *testing.T) {
		c, err := NewChunker(10, 3)
		require.NoError(t, err)

		pieces := c.Split("short")
		require.Len(t, pieces, 1)
		assert.Equal(t, 0, pieces[0].Index)
		assert.Equal(t, "short", pieces[0].Text)
	})

	t.Run("text exactly one window", func(t *testing.T) {
		c, err := NewChunker(10, 3)
		require.NoError(t, err)

		pieces := c.Split("0123456789")
		require.Len(t, pieces, 1)
		assert.Equal(t, "0123456789", pieces[0].Text)
	})

	t.Run("consecutive windows share the overlap", func(t *testing.T) {
		c, err := NewChunker(10, 3)
		require.NoError(t, err)

		text := "abcdefghijklmnopqrstuvwxy"
		pieces := c.Split(text)
		require.Greater(t, len(pieces), 1)

		for i := 0; i < len(pieces)-1; i++ {
			prev := []rune(pieces[i].Text)
			tail := string(prev[len(prev)-3:])
			assert.True(t, strings.HasPrefix(pieces[i+1].Text, tail),
				"piece %d should start with the last 3 chars of piece %d", i+1, i)
		}
	})

	t.Run("windows cover the whole text", func(t *testing.T) {
		c, err := NewChunker(10, 3)
		require.NoError(t, err)

		text := "abcdefghijklmnopqrstuvwxyz0123456789"
		pieces := c.Split(text)

		var rebuilt strings.Builder
		for i, p := range pieces {
			runes := []rune(p.Text)
			if i == 0 {
				rebuilt.WriteString(p.Text)
			} else {
				rebuilt.WriteString(string(runes[3:]))
			}
		}
		assert.Equal(t, text, rebuilt.String())
	})

	t.Run("ordinals are sequential", func(t *testing.T) {
		c, err := NewChunker(5, 1)
		require.NoError(t, err)

		pieces := c.Split("abcdefghijklmnop")
		for i, p := range pieces {
			assert.Equal(t, i, p.Index)
		}
	})

	t.Run("same input yields same pieces", func(t *testing.T) {
		c, err := NewChunker(7, 2)
		require.NoError(t, err)

		text := "the quick brown fox jumps over the lazy dog"
		assert.Equal(t, c.Split(text), c.Split(text))
	})

	t.Run("windows count runes not bytes", func(t *testing.T) {
		c, err := NewChunker(4, 1)
		require.NoError(t, err)

		pieces := c.Split("ééééééé")
		require.Len(t, pieces, 2)
		assert.Equal(t, "éééé", pieces[0].Text)
		assert.Equal(t, "éééé", pieces[1].Text)
	})
}

func TestDisplayChunk(t *testing.T) {
	assert.Equal(t, "reports/acme.pdf: some text", DisplayChunk("reports/acme.pdf", "some text"))
}
