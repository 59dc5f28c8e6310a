package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/docside/docside/internal/chunker"
	"github.com/docside/docside/internal/config"
	"github.com/docside/docside/internal/docs"
	"github.com/docside/docside/internal/knowledge"
	"github.com/docside/docside/internal/log"
)

// ErrIndexingInProgress is returned when an ingestion run is triggered while
// another one is still running.
var ErrIndexingInProgress = errors.New("indexing already in progress")

// ErrUnknownTopic is returned when a reindex names a topic that is not
// configured.
var ErrUnknownTopic = errors.New("unknown topic")

// fallbackAnswer is returned verbatim when retrieval yields nothing.
const fallbackAnswer = "I couldn't find relevant information in the documentation. " +
	"Please try rephrasing your question or check the official documentation directly."

// maxCitations caps the number of cited sources per answer.
const maxCitations = 5

// previewLimit is the citation preview length in runes before truncation.
const previewLimit = 200

// State describes where the service is in its ingestion lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateReindexing
)

// String returns the lowercase state name as exposed by the health endpoint.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateReindexing:
		return "reindexing"
	default:
		return "uninitialized"
	}
}

// Index is the slice of the vector store the service needs. Staging and
// locking semantics live behind it: Replace and ReplaceTopic must leave
// readers seeing either the old or the new contents of the affected scope.
type Index interface {
	Upsert(ctx context.Context, chunks []chunker.Chunk) error
	Replace(ctx context.Context, chunks []chunker.Chunk) error
	ReplaceTopic(ctx context.Context, topic string, chunks []chunker.Chunk) error
	SearchTopic(ctx context.Context, query string, k int, topic string) ([]knowledge.Result, error)
	Count() int
}

// Loader produces extracted documents from source pages, tolerating
// individual page failures.
type Loader interface {
	Load(ctx context.Context, pages []docs.SourcePage) []docs.Document
}

// Generator synthesizes an answer from a system instruction and a prompt.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Citation points at a source page that contributed to an answer.
type Citation struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Preview string `json:"content_preview"`
	Topic   string `json:"topic"`
}

// Answer is the full result of one question.
type Answer struct {
	Text      string
	Citations []Citation
	Elapsed   time.Duration
}

// Service drives ingestion and answers questions. All dependencies are
// injected; construct one per process.
type Service struct {
	cfg      *config.Config
	index    Index
	loader   Loader
	splitter *chunker.Splitter
	gen      Generator
	logger   log.Logger

	// writing serializes ingestion runs. TryLock failure means another
	// run is active and the caller gets ErrIndexingInProgress.
	writing sync.Mutex

	stateMu sync.Mutex
	state   State

	// populated is set once the service first reaches Ready. From then on
	// reads are served from the store's last-committed contents, including
	// while a reindex run is in flight.
	populated bool
}

// NewService wires a Service from its parts.
func NewService(cfg *config.Config, index Index, loader Loader, splitter *chunker.Splitter, gen Generator, logger log.Logger) *Service {
	return &Service{
		cfg:      cfg,
		index:    index,
		loader:   loader,
		splitter: splitter,
		gen:      gen,
		logger:   logger,
	}
}

// State reports the current lifecycle state.
func (s *Service) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// IsReady reports whether the index is populated and queries can be served.
func (s *Service) IsReady() bool {
	return s.State() == StateReady
}

// DocumentCount returns the number of indexed chunks.
func (s *Service) DocumentCount() int {
	return s.index.Count()
}

func (s *Service) setState(st State) {
	s.stateMu.Lock()
	s.state = st
	if st == StateReady {
		s.populated = true
	}
	s.stateMu.Unlock()
}

// readable reports whether queries can be served without initializing first.
// A reindex does not make the index unreadable: it replaces entries scope by
// scope while searches keep hitting the last-committed state.
func (s *Service) readable() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.populated
}

// Initialize brings the index to Ready. When the persisted store already has
// entries and force is false, they are adopted as-is and no fetching happens.
// Otherwise the full corpus is fetched, chunked and indexed; with force the
// previous contents are replaced wholesale. Returns the number of indexed
// chunks. Concurrent runs are rejected with ErrIndexingInProgress.
func (s *Service) Initialize(ctx context.Context, force bool) (int, error) {
	if !s.writing.TryLock() {
		return 0, ErrIndexingInProgress
	}
	defer s.writing.Unlock()

	if existing := s.index.Count(); existing > 0 && !force {
		s.setState(StateReady)
		s.logger.Info("adopting persisted index", "entries", existing)
		return existing, nil
	}

	prev := s.State()
	s.setState(StateInitializing)

	chunks, err := s.buildCorpus(ctx, nil)
	if err != nil {
		s.setState(prev)
		return 0, err
	}

	if force {
		err = s.index.Replace(ctx, chunks)
	} else {
		err = s.index.Upsert(ctx, chunks)
	}
	if err != nil {
		s.setState(prev)
		return 0, fmt.Errorf("indexing corpus: %w", err)
	}

	s.setState(StateReady)
	s.logger.Info("index initialized", "chunks", len(chunks), "force", force)
	return len(chunks), nil
}

// Reindex refreshes the given topics, or every configured topic when the
// list is empty. Each topic's old entries are replaced atomically with its
// fresh chunks; topics not named keep their entries untouched. Returns the
// total number of chunks written and the topic IDs refreshed.
func (s *Service) Reindex(ctx context.Context, topics []string) (int, []string, error) {
	for _, id := range topics {
		if _, ok := s.cfg.TopicByID(id); !ok {
			return 0, nil, fmt.Errorf("%w: %q", ErrUnknownTopic, id)
		}
	}

	if !s.writing.TryLock() {
		return 0, nil, ErrIndexingInProgress
	}
	defer s.writing.Unlock()

	prev := s.State()
	s.setState(StateReindexing)

	ids := topics
	if len(ids) == 0 {
		ids = s.cfg.TopicIDs()
	}

	total := 0
	for _, id := range ids {
		chunks, err := s.buildCorpus(ctx, []string{id})
		if err != nil {
			s.setState(prev)
			return total, ids, err
		}
		if err := s.index.ReplaceTopic(ctx, id, chunks); err != nil {
			s.setState(prev)
			return total, ids, fmt.Errorf("reindexing topic %q: %w", id, err)
		}
		total += len(chunks)
		s.logger.Info("topic reindexed", "topic", id, "chunks", len(chunks))
	}

	s.setState(StateReady)
	return total, ids, nil
}

// buildCorpus fetches, extracts and chunks the pages of the given topic IDs
// (all topics when empty). When nothing at all could be fetched, the bundled
// static corpus stands in so the service still comes up with content.
func (s *Service) buildCorpus(ctx context.Context, topicIDs []string) ([]chunker.Chunk, error) {
	pages := docs.PagesForTopics(s.cfg.Topics, topicIDs)
	documents := s.loader.Load(ctx, pages)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(documents) == 0 {
		ids := topicIDs
		if len(ids) == 0 {
			ids = s.cfg.TopicIDs()
		}
		s.logger.Warn("no pages fetched, falling back to bundled corpus", "topics", ids)
		documents = docs.StaticCorpus(ids)
	}

	return s.splitter.SplitDocuments(documents), nil
}

// Ask answers a question from the indexed documentation. topic narrows
// retrieval to one topic's entries; empty means search everything. If the
// index has never been populated, a lazy Initialize(false) runs first; once
// it has, questions are answered from the last-committed store contents even
// while a reindex is running. When retrieval finds nothing, a fixed fallback
// answer is returned and the generator is not invoked.
func (s *Service) Ask(ctx context.Context, question, topic string) (*Answer, error) {
	start := time.Now()

	if !s.readable() {
		if _, err := s.Initialize(ctx, false); err != nil {
			return nil, err
		}
	}

	results, err := s.index.SearchTopic(ctx, question, s.cfg.TopK, topic)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	if len(results) == 0 {
		return &Answer{
			Text:    fallbackAnswer,
			Elapsed: time.Since(start),
		}, nil
	}

	text, err := s.gen.Complete(ctx, systemInstruction, buildPrompt(question, results))
	if err != nil {
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}

	return &Answer{
		Text:      text,
		Citations: buildCitations(results),
		Elapsed:   time.Since(start),
	}, nil
}

// buildCitations deduplicates retrieved chunks by source URL, preserving
// similarity order, and caps the list at maxCitations.
func buildCitations(results []knowledge.Result) []Citation {
	seen := make(map[string]struct{}, len(results))
	citations := make([]Citation, 0, maxCitations)

	for _, r := range results {
		url := r.Metadata[docs.MetaSource]
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}

		title := r.Metadata[docs.MetaTitle]
		if title == "" {
			title = "Documentation"
		}

		citations = append(citations, Citation{
			Title:   title,
			URL:     url,
			Preview: preview(r.Content),
			Topic:   r.Metadata[docs.MetaTopic],
		})
		if len(citations) == maxCitations {
			break
		}
	}
	return citations
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit]) + "..."
}

// buildPrompt assembles the grounding context and the question into the
// final user prompt.
func buildPrompt(question string, results []knowledge.Result) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		title := r.Metadata[docs.MetaTitle]
		if title == "" {
			title = "Unknown"
		}
		blocks = append(blocks, "Source: "+title+"\n"+r.Content)
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(blocks, "\n\n---\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
