package documents

import (
	"errors"
	"fmt"
)

// Chunker defaults match the split parameters the search index was tuned
// for: 2000-character windows sharing 300 characters of context.
const (
	DefaultWindowSize    = 2000
	DefaultWindowOverlap = 300
)

// ErrChunkParams marks an invalid window/overlap combination.
var ErrChunkParams = errors.New("invalid chunk parameters")

// Piece is one window of text with its stable ordinal. Identity downstream
// is (document path, Index), so splitting the same text with the same
// parameters must always reproduce the same sequence.
type Piece struct {
	Index int
	Text  string
}

// Chunker splits text into overlapping fixed-size character windows.
type Chunker struct {
	windowSize int
	overlap    int
}

// NewChunker creates a chunker. windowSize must exceed overlap and overlap
// must be non-negative.
func NewChunker(windowSize, overlap int) (*Chunker, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size %d must be positive", ErrChunkParams, windowSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must be non-negative", ErrChunkParams, overlap)
	}
	if overlap >= windowSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than window size %d", ErrChunkParams, overlap, windowSize)
	}
	return &Chunker{windowSize: windowSize, overlap: overlap}, nil
}

// Split covers the text left to right with windows of at most windowSize
// characters, consecutive windows sharing overlap characters. Empty text
// yields no pieces; text that fits in one window yields exactly one piece
// equal to the input.
func (c *Chunker) Split(text string) []Piece {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := c.windowSize - c.overlap

	pieces := make([]Piece, 0, total/step+1)
	index := 0
	for start := 0; start < total; start += step {
		end := start + c.windowSize
		if end > total {
			end = total
		}
		pieces = append(pieces, Piece{Index: index, Text: string(runes[start:end])})
		index++
		if end == total {
			break
		}
	}
	return pieces
}

// DisplayChunk renders the path-prefixed form of a piece, the string that
// gets indexed and quoted back to the model.
func DisplayChunk(relativePath, text string) string {
	return relativePath + ": " + text
}
