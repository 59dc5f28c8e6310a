// Package chunker splits normalized documents into overlapping fixed-size
// text windows, the unit of embedding and storage.
package chunker

import (
	"errors"
	"fmt"
	"maps"

	"github.com/docside/docside/internal/docs"
)

// ErrInvalidOverlap indicates overlap >= size, which would prevent progress.
var ErrInvalidOverlap = errors.New("chunk overlap must be smaller than chunk size")

// DefaultSeparators is the boundary priority for window breaks: paragraph,
// line, sentence, word, then raw characters as the last resort.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Chunk is one window of a parent document. Content is a contiguous
// sub-window of the parent's content; consecutive chunks from the same
// document overlap by the configured overlap. Metadata is inherited verbatim
// from the parent; Index is the chunk's position within it, contiguous from 0.
type Chunk struct {
	Content  string
	Metadata map[string]string
	Index    int
}

// Splitter produces deterministic chunk sequences: the same document with the
// same (size, overlap) always yields the same chunks.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// New creates a Splitter with the given window size and overlap, both in
// characters (runes).
func New(size, overlap int) (*Splitter, error) {
	if size < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidOverlap, size, overlap)
	}

	return &Splitter{
		size:       size,
		overlap:    overlap,
		separators: DefaultSeparators,
	}, nil
}

// SplitDocuments chunks each document and copies its metadata onto every
// resulting chunk. Chunk production per document is all-or-nothing: a
// document either contributes its full chunk sequence or nothing.
func (s *Splitter) SplitDocuments(documents []docs.Document) []Chunk {
	var chunks []Chunk
	for _, doc := range documents {
		for i, content := range s.Split(doc.Content) {
			chunks = append(chunks, Chunk{
				Content:  content,
				Metadata: maps.Clone(doc.Metadata),
				Index:    i,
			})
		}
	}
	return chunks
}

// Split breaks text into windows of at most size characters, each overlapping
// the previous by exactly overlap characters. Windows prefer to end at a
// boundary from the separator priority list; only when no boundary falls in
// the admissible range does a window cut mid-word.
//
// Invariant: concatenating the windows with the first overlap characters of
// every window after the first removed reconstructs text exactly.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.size {
		return []string{text}
	}

	var out []string
	start := 0
	for {
		end := start + s.size
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			return out
		}

		// The break must leave room for forward progress: the next window
		// starts at end-overlap, which has to advance past start.
		minEnd := start + s.overlap + 1
		end = s.breakPoint(runes, minEnd, end)

		out = append(out, string(runes[start:end]))
		start = end - s.overlap
	}
}

// breakPoint finds the best window end in (minEnd, maxEnd]: the latest
// occurrence of the highest-priority separator whose trailing edge lies in
// range. Falls back to the hard cut at maxEnd.
func (s *Splitter) breakPoint(runes []rune, minEnd, maxEnd int) int {
	for _, sep := range s.separators {
		sepRunes := []rune(sep)
		// Scan backward so the window stays as full as possible.
		for pos := maxEnd - len(sepRunes); pos >= 0; pos-- {
			cut := pos + len(sepRunes)
			if cut <= minEnd {
				break
			}
			if runesHavePrefix(runes[pos:], sepRunes) {
				return cut
			}
		}
	}
	return maxEnd
}

func runesHavePrefix(r, prefix []rune) bool {
	if len(r) < len(prefix) {
		return false
	}
	for i := range prefix {
		if r[i] != prefix[i] {
			return false
		}
	}
	return true
}
