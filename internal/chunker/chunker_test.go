package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docside/docside/internal/docs"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 1000, 200, false},
		{"zero overlap", 100, 0, false},
		{"minimal size", 1, 0, false},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
		{"negative overlap", 100, -1, true},
		{"zero size", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

// reconstruct joins chunks after stripping the leading overlap from every
// chunk but the first. The result must equal the original text.
func reconstruct(chunks []string, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		runes := []rune(c)
		if i > 0 {
			runes = runes[overlap:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func TestSplitReconstruction(t *testing.T) {
	texts := map[string]string{
		"paragraphs": strings.Repeat("A paragraph of documentation text that goes on for a while.\n\n", 40),
		"lines":      strings.Repeat("short line\n", 200),
		"sentences":  strings.Repeat("This is a sentence. ", 150),
		"words":      strings.Repeat("word ", 500),
		"no breaks":  strings.Repeat("x", 2500),
		"unicode":    strings.Repeat("文檔內容測試，包含中文字符。", 120),
	}

	configs := []struct {
		size    int
		overlap int
	}{
		{1000, 200},
		{500, 100},
		{100, 0},
		{64, 16},
	}

	for name, text := range texts {
		for _, cfg := range configs {
			s, err := New(cfg.size, cfg.overlap)
			require.NoError(t, err)

			chunks := s.Split(text)
			require.NotEmpty(t, chunks)

			got := reconstruct(chunks, cfg.overlap)
			assert.Equal(t, text, got,
				"%s with size=%d overlap=%d must reconstruct exactly", name, cfg.size, cfg.overlap)

			for i, c := range chunks {
				assert.LessOrEqual(t, len([]rune(c)), cfg.size,
					"%s chunk %d exceeds window size", name, i)
			}
		}
	}
}

func TestSplitShortText(t *testing.T) {
	s, err := New(1000, 200)
	require.NoError(t, err)

	assert.Nil(t, s.Split(""))
	assert.Equal(t, []string{"short"}, s.Split("short"))
}

func TestSplitDeterministic(t *testing.T) {
	s, err := New(300, 50)
	require.NoError(t, err)

	text := strings.Repeat("Documentation about embeddings and retrieval. ", 60)
	first := s.Split(text)
	for range 5 {
		assert.Equal(t, first, s.Split(text))
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	s, err := New(100, 10)
	require.NoError(t, err)

	para := strings.Repeat("a", 60)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"),
		"first window should break at the paragraph boundary, got %q tail", chunks[0][len(chunks[0])-5:])
}

func TestSplitDocuments(t *testing.T) {
	s, err := New(120, 20)
	require.NoError(t, err)

	documents := []docs.Document{
		{
			Content: strings.Repeat("First document text. ", 30),
			Metadata: map[string]string{
				docs.MetaSource: "https://example.com/a",
				docs.MetaTitle:  "Doc A",
				docs.MetaTopic:  "genkit",
			},
		},
		{
			Content: strings.Repeat("Second document text. ", 30),
			Metadata: map[string]string{
				docs.MetaSource: "https://example.com/b",
				docs.MetaTitle:  "Doc B",
				docs.MetaTopic:  "gemini",
			},
		},
	}

	chunks := s.SplitDocuments(documents)
	require.NotEmpty(t, chunks)

	// Indices restart at 0 for each document and increase contiguously.
	indexBySource := map[string]int{}
	for _, c := range chunks {
		source := c.Metadata[docs.MetaSource]
		assert.Equal(t, indexBySource[source], c.Index, "chunk indices must be contiguous per document")
		indexBySource[source]++
	}
	assert.Len(t, indexBySource, 2)

	// Metadata is copied, not shared.
	chunks[0].Metadata[docs.MetaTitle] = "mutated"
	assert.Equal(t, "Doc A", documents[0].Metadata[docs.MetaTitle])
	for _, c := range chunks[1:] {
		if c.Metadata[docs.MetaSource] == "https://example.com/a" {
			assert.Equal(t, "Doc A", c.Metadata[docs.MetaTitle])
		}
	}
}

func TestSplitDocumentsEmpty(t *testing.T) {
	s, err := New(100, 10)
	require.NoError(t, err)

	assert.Empty(t, s.SplitDocuments(nil))
	assert.Empty(t, s.SplitDocuments([]docs.Document{{Content: ""}}))
}
