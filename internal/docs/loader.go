package docs

import (
	"context"
	"sync"

	"github.com/docside/docside/internal/log"
)

// Loader runs fetch+extract across a page set.
//
// Pages are loaded with bounded concurrency; per-page results are independent
// and merged order-insensitively. A page that fails to fetch or extracts to
// nothing is logged and skipped, never aborting the batch.
type Loader struct {
	fetcher     *Fetcher
	extractor   *Extractor
	parallelism int
	logger      log.Logger
}

// NewLoader creates a Loader. parallelism below 1 is treated as 1.
func NewLoader(fetcher *Fetcher, extractor *Extractor, parallelism int, logger log.Logger) *Loader {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Loader{
		fetcher:     fetcher,
		extractor:   extractor,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Load fetches and extracts the given pages, returning one Document per page
// that yielded content. The returned slice may be empty (total fetch failure
// or nothing extractable); deciding fallback policy is the caller's job.
func (l *Loader) Load(ctx context.Context, pages []SourcePage) []Document {
	var (
		mu   sync.Mutex
		docs []Document
		wg   sync.WaitGroup
	)

	sem := make(chan struct{}, l.parallelism)

	for _, page := range pages {
		wg.Add(1)
		go func() {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			raw, err := l.fetcher.Fetch(ctx, page.URL)
			if err != nil {
				l.logger.Warn("skipping page", "url", page.URL, "error", err)
				return
			}

			content := l.extractor.Extract(raw)
			if content == "" {
				l.logger.Warn("page yielded no content", "url", page.URL)
				return
			}

			l.logger.Debug("loaded page",
				"url", page.URL,
				"title", page.Title,
				"topic", page.Topic,
				"chars", len(content))

			mu.Lock()
			docs = append(docs, NewDocument(content, page))
			mu.Unlock()
		}()
	}

	wg.Wait()

	l.logger.Info("loaded documents", "requested", len(pages), "loaded", len(docs))
	return docs
}
