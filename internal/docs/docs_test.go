package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docside/docside/internal/config"
)

func testTopics() []config.Topic {
	return []config.Topic{
		{
			ID:   "genkit",
			Name: "Genkit",
			Pages: []config.Page{
				{URL: "https://genkit.dev/docs/a", Title: "A"},
				{URL: "https://genkit.dev/docs/b", Title: "B"},
			},
		},
		{
			ID:   "gemini",
			Name: "Gemini API",
			Pages: []config.Page{
				{URL: "https://ai.google.dev/docs/c", Title: "C"},
			},
		},
	}
}

func TestPagesForTopics(t *testing.T) {
	topics := testTopics()

	t.Run("all topics when ids empty", func(t *testing.T) {
		pages := PagesForTopics(topics, nil)
		require.Len(t, pages, 3)
		assert.Equal(t, "genkit", pages[0].Topic)
		assert.Equal(t, "gemini", pages[2].Topic)
	})

	t.Run("single topic", func(t *testing.T) {
		pages := PagesForTopics(topics, []string{"gemini"})
		require.Len(t, pages, 1)
		assert.Equal(t, "https://ai.google.dev/docs/c", pages[0].URL)
		assert.Equal(t, "C", pages[0].Title)
	})

	t.Run("unknown id skipped", func(t *testing.T) {
		pages := PagesForTopics(topics, []string{"nope"})
		assert.Empty(t, pages)
	})
}

func TestNewDocument(t *testing.T) {
	page := SourcePage{URL: "https://genkit.dev/docs/a", Title: "A", Topic: "genkit"}
	doc := NewDocument("body text", page)

	assert.Equal(t, "body text", doc.Content)
	assert.Equal(t, "https://genkit.dev/docs/a", doc.Metadata[MetaSource])
	assert.Equal(t, "A", doc.Metadata[MetaTitle])
	assert.Equal(t, "genkit", doc.Metadata[MetaTopic])
}

func TestStaticCorpus(t *testing.T) {
	t.Run("all topics", func(t *testing.T) {
		corpus := StaticCorpus(nil)
		require.NotEmpty(t, corpus)

		topics := map[string]bool{}
		for _, d := range corpus {
			require.NotEmpty(t, d.Content)
			require.NotEmpty(t, d.Metadata[MetaSource])
			require.NotEmpty(t, d.Metadata[MetaTitle])
			topics[d.Metadata[MetaTopic]] = true
		}
		assert.True(t, topics["genkit"])
		assert.True(t, topics["gemini"])
		assert.True(t, topics["vertex"])
	})

	t.Run("scoped to one topic", func(t *testing.T) {
		corpus := StaticCorpus([]string{"gemini"})
		require.NotEmpty(t, corpus)
		for _, d := range corpus {
			assert.Equal(t, "gemini", d.Metadata[MetaTopic])
		}
	})

	t.Run("unknown topic yields nothing", func(t *testing.T) {
		assert.Empty(t, StaticCorpus([]string{"unknown"}))
	})
}
