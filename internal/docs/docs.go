// Package docs acquires and normalizes documentation pages.
//
// The pipeline is Fetcher → Extractor → Loader: Fetcher retrieves raw HTML
// for configured source pages, Extractor strips non-content markup and
// converts the main content region to markdown, and Loader runs both across
// a page set with per-page failure tolerance. A bundled static corpus backs
// the pipeline when the network is unavailable.
package docs

import "github.com/docside/docside/internal/config"

// Metadata keys attached to every Document and inherited by its chunks.
// Round-trip fidelity of these keys through the index store is what makes
// topic filtering and citation building work.
const (
	MetaSource = "source"
	MetaTitle  = "title"
	MetaTopic  = "topic"
)

// SourcePage is one page of the acquisition universe: where to fetch it,
// what to call it, and which topic it belongs to. Static configuration,
// never mutated.
type SourcePage struct {
	URL   string
	Title string
	Topic string
}

// Document is the normalized text of one successfully extracted page.
// Created by the Extractor, consumed by the chunker, never persisted itself.
type Document struct {
	Content  string
	Metadata map[string]string
}

// NewDocument builds a Document for a source page with the standard metadata.
func NewDocument(content string, page SourcePage) Document {
	return Document{
		Content: content,
		Metadata: map[string]string{
			MetaSource: page.URL,
			MetaTitle:  page.Title,
			MetaTopic:  page.Topic,
		},
	}
}

// PagesForTopics flattens the configured topics into the page set to ingest.
// Unknown topic IDs are skipped; callers validate topic names at the boundary.
func PagesForTopics(topics []config.Topic, ids []string) []SourcePage {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var pages []SourcePage
	for _, t := range topics {
		if len(ids) > 0 && !want[t.ID] {
			continue
		}
		for _, p := range t.Pages {
			pages = append(pages, SourcePage{URL: p.URL, Title: p.Title, Topic: t.ID})
		}
	}
	return pages
}
