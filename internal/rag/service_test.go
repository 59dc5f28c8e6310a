package rag

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/docside/docside/internal/chunker"
	"github.com/docside/docside/internal/config"
	"github.com/docside/docside/internal/docs"
	"github.com/docside/docside/internal/knowledge"
	"github.com/docside/docside/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

// mockIndex implements Index with call tracking.
type mockIndex struct {
	mu sync.Mutex

	count             int
	upsertCalls       [][]chunker.Chunk
	replaceCalls      [][]chunker.Chunk
	replaceTopicCalls map[string][]chunker.Chunk

	searchResults []knowledge.Result
	searchErr     error
	lastQuery     string
	lastK         int
	lastTopic     string
}

func (m *mockIndex) Upsert(_ context.Context, chunks []chunker.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls = append(m.upsertCalls, chunks)
	m.count += len(chunks)
	return nil
}

func (m *mockIndex) Replace(_ context.Context, chunks []chunker.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls = append(m.replaceCalls, chunks)
	m.count = len(chunks)
	return nil
}

func (m *mockIndex) ReplaceTopic(_ context.Context, topic string, chunks []chunker.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceTopicCalls == nil {
		m.replaceTopicCalls = make(map[string][]chunker.Chunk)
	}
	m.replaceTopicCalls[topic] = chunks
	m.count += len(chunks)
	return nil
}

func (m *mockIndex) SearchTopic(_ context.Context, query string, k int, topic string) ([]knowledge.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = query
	m.lastK = k
	m.lastTopic = topic
	return m.searchResults, m.searchErr
}

func (m *mockIndex) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// mockLoader returns canned documents, optionally blocking until released.
type mockLoader struct {
	mu      sync.Mutex
	docs    []docs.Document
	calls   int
	blockCh chan struct{}
}

func (m *mockLoader) Load(_ context.Context, pages []docs.SourcePage) []docs.Document {
	m.mu.Lock()
	m.calls++
	block := m.blockCh
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	return m.docs
}

func (m *mockLoader) loadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockGenerator records the synthesis inputs.
type mockGenerator struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  int
	system string
	prompt string
}

func (m *mockGenerator) Complete(_ context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.system = system
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testConfig() *config.Config {
	return &config.Config{
		ChunkSize:    200,
		ChunkOverlap: 20,
		TopK:         5,
		Topics:       config.DefaultTopics(),
	}
}

func newTestService(t *testing.T, index *mockIndex, loader *mockLoader, gen *mockGenerator) *Service {
	t.Helper()
	cfg := testConfig()
	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	require.NoError(t, err)
	return NewService(cfg, index, loader, splitter, gen, log.NewNop())
}

func webDocs() []docs.Document {
	return []docs.Document{
		docs.NewDocument(strings.Repeat("Genkit flows and plugins. ", 30),
			docs.SourcePage{URL: "https://genkit.dev/a", Title: "Genkit A", Topic: "genkit"}),
		docs.NewDocument(strings.Repeat("Gemini models and tokens. ", 30),
			docs.SourcePage{URL: "https://ai.google.dev/b", Title: "Gemini B", Topic: "gemini"}),
	}
}

func TestInitializeAdoptsPersistedIndex(t *testing.T) {
	index := &mockIndex{count: 40}
	loader := &mockLoader{}
	svc := newTestService(t, index, loader, &mockGenerator{})

	count, err := svc.Initialize(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 40, count)
	assert.True(t, svc.IsReady())
	assert.Equal(t, 0, loader.loadCalls(), "a warm index must not trigger fetching")
	assert.Empty(t, index.upsertCalls)
	assert.Empty(t, index.replaceCalls)
}

func TestInitializeFreshIndex(t *testing.T) {
	index := &mockIndex{}
	loader := &mockLoader{docs: webDocs()}
	svc := newTestService(t, index, loader, &mockGenerator{})

	count, err := svc.Initialize(context.Background(), false)
	require.NoError(t, err)

	assert.True(t, svc.IsReady())
	assert.Equal(t, 1, loader.loadCalls())
	require.Len(t, index.upsertCalls, 1)
	assert.Empty(t, index.replaceCalls, "a fresh index has nothing to delete")
	assert.Equal(t, len(index.upsertCalls[0]), count)
	assert.Equal(t, count, svc.DocumentCount())
}

func TestInitializeForceReplacesEverything(t *testing.T) {
	index := &mockIndex{count: 40}
	loader := &mockLoader{docs: webDocs()}
	svc := newTestService(t, index, loader, &mockGenerator{})

	count, err := svc.Initialize(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, loader.loadCalls())
	require.Len(t, index.replaceCalls, 1)
	assert.Empty(t, index.upsertCalls)
	assert.Equal(t, len(index.replaceCalls[0]), count)
	assert.Equal(t, count, index.Count(), "store count must equal the chunks produced by the rebuild")
}

func TestInitializeStaticFallback(t *testing.T) {
	index := &mockIndex{}
	loader := &mockLoader{} // web loading yields nothing
	svc := newTestService(t, index, loader, &mockGenerator{})

	count, err := svc.Initialize(context.Background(), false)
	require.NoError(t, err)
	require.Greater(t, count, 0, "bundled corpus must stand in when the web is unreachable")

	require.Len(t, index.upsertCalls, 1)
	known := map[string]bool{"genkit": true, "gemini": true, "vertex": true}
	for _, c := range index.upsertCalls[0] {
		assert.True(t, known[c.Metadata[docs.MetaTopic]], "unexpected topic %q", c.Metadata[docs.MetaTopic])
	}
}

func TestInitializeConcurrentRejected(t *testing.T) {
	release := make(chan struct{})
	index := &mockIndex{}
	loader := &mockLoader{docs: webDocs(), blockCh: release}
	svc := newTestService(t, index, loader, &mockGenerator{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Initialize(context.Background(), true)
		done <- err
	}()

	// Wait until the first run is inside the loader.
	require.Eventually(t, func() bool { return loader.loadCalls() == 1 },
		waitFor, tick)

	_, err := svc.Initialize(context.Background(), true)
	assert.ErrorIs(t, err, ErrIndexingInProgress)

	_, _, err = svc.Reindex(context.Background(), nil)
	assert.ErrorIs(t, err, ErrIndexingInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.True(t, svc.IsReady())
}

func TestReindexScopedToTopic(t *testing.T) {
	index := &mockIndex{count: 40}
	loader := &mockLoader{docs: []docs.Document{
		docs.NewDocument(strings.Repeat("Gemini docs. ", 40),
			docs.SourcePage{URL: "https://ai.google.dev/b", Title: "Gemini B", Topic: "gemini"}),
	}}
	svc := newTestService(t, index, loader, &mockGenerator{})

	count, topics, err := svc.Reindex(context.Background(), []string{"gemini"})
	require.NoError(t, err)

	assert.Equal(t, []string{"gemini"}, topics)
	assert.Greater(t, count, 0)
	require.Len(t, index.replaceTopicCalls, 1)
	assert.Contains(t, index.replaceTopicCalls, "gemini")
	assert.Empty(t, index.replaceCalls, "scoped reindex must not touch other topics")
	assert.True(t, svc.IsReady())
}

func TestReindexAllTopics(t *testing.T) {
	index := &mockIndex{}
	loader := &mockLoader{docs: webDocs()}
	svc := newTestService(t, index, loader, &mockGenerator{})

	_, topics, err := svc.Reindex(context.Background(), nil)
	require.NoError(t, err)

	cfg := testConfig()
	assert.Equal(t, cfg.TopicIDs(), topics)
	assert.Len(t, index.replaceTopicCalls, len(cfg.Topics))
}

func TestReindexUnknownTopic(t *testing.T) {
	svc := newTestService(t, &mockIndex{}, &mockLoader{}, &mockGenerator{})

	_, _, err := svc.Reindex(context.Background(), []string{"langchain"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestAskFallbackSkipsGenerator(t *testing.T) {
	index := &mockIndex{count: 10} // warm, but search finds nothing
	gen := &mockGenerator{reply: "should never appear"}
	svc := newTestService(t, index, &mockLoader{}, gen)

	answer, err := svc.Ask(context.Background(), "something unanswerable", "")
	require.NoError(t, err)

	assert.Equal(t, fallbackAnswer, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Equal(t, 0, gen.callCount(), "empty retrieval must not invoke generation")
}

func TestAskSynthesizesAnswer(t *testing.T) {
	index := &mockIndex{
		count: 10,
		searchResults: []knowledge.Result{
			{
				Content: "Flows are observable functions.",
				Metadata: map[string]string{
					docs.MetaSource: "https://genkit.dev/flows",
					docs.MetaTitle:  "Flows",
					docs.MetaTopic:  "genkit",
				},
				Similarity: 0.92,
			},
			{
				Content: "Plugins extend the framework.",
				Metadata: map[string]string{
					docs.MetaSource: "https://genkit.dev/plugins",
					docs.MetaTitle:  "Plugins",
					docs.MetaTopic:  "genkit",
				},
				Similarity: 0.85,
			},
		},
	}
	gen := &mockGenerator{reply: "Flows are Genkit's unit of work."}
	svc := newTestService(t, index, &mockLoader{}, gen)

	answer, err := svc.Ask(context.Background(), "What is a flow?", "genkit")
	require.NoError(t, err)

	assert.Equal(t, "Flows are Genkit's unit of work.", answer.Text)
	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "Flows", answer.Citations[0].Title)
	assert.Equal(t, "https://genkit.dev/flows", answer.Citations[0].URL)

	// Retrieval used the configured top-k and the topic filter.
	assert.Equal(t, "What is a flow?", index.lastQuery)
	assert.Equal(t, 5, index.lastK)
	assert.Equal(t, "genkit", index.lastTopic)

	// The prompt grounds the question in the retrieved chunks.
	assert.Contains(t, gen.prompt, "Source: Flows\nFlows are observable functions.")
	assert.Contains(t, gen.prompt, "\n\n---\n\n")
	assert.Contains(t, gen.prompt, "Question: What is a flow?")
	assert.NotEmpty(t, gen.system)
}

func TestAskLazyInitialize(t *testing.T) {
	index := &mockIndex{count: 40}
	gen := &mockGenerator{reply: "ok"}
	svc := newTestService(t, index, &mockLoader{}, gen)

	require.False(t, svc.IsReady())

	_, err := svc.Ask(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.True(t, svc.IsReady())
}

func TestAskServesDuringReindex(t *testing.T) {
	release := make(chan struct{})
	index := &mockIndex{
		count: 40,
		searchResults: []knowledge.Result{
			{
				Content: "Flows are observable functions.",
				Metadata: map[string]string{
					docs.MetaSource: "https://genkit.dev/flows",
					docs.MetaTitle:  "Flows",
					docs.MetaTopic:  "genkit",
				},
			},
		},
	}
	loader := &mockLoader{docs: webDocs(), blockCh: release}
	gen := &mockGenerator{reply: "Flows are Genkit's unit of work."}
	svc := newTestService(t, index, loader, gen)

	_, err := svc.Initialize(context.Background(), false)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, _, err := svc.Reindex(context.Background(), nil)
		done <- err
	}()

	// Park the reindex inside its load phase.
	require.Eventually(t, func() bool { return loader.loadCalls() == 1 },
		waitFor, tick)
	require.Equal(t, StateReindexing, svc.State())

	// Questions keep being answered from the last-committed entries.
	answer, err := svc.Ask(context.Background(), "What is a flow?", "")
	require.NoError(t, err)
	assert.Equal(t, "Flows are Genkit's unit of work.", answer.Text)
	require.Len(t, answer.Citations, 1)

	close(release)
	require.NoError(t, <-done)
	assert.True(t, svc.IsReady())
}

func TestAskGeneratorError(t *testing.T) {
	index := &mockIndex{
		count: 10,
		searchResults: []knowledge.Result{
			{Content: "text", Metadata: map[string]string{docs.MetaSource: "u", docs.MetaTitle: "t"}},
		},
	}
	gen := &mockGenerator{err: errors.New("model unavailable")}
	svc := newTestService(t, index, &mockLoader{}, gen)

	_, err := svc.Ask(context.Background(), "question", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestBuildCitations(t *testing.T) {
	result := func(url, title, content string) knowledge.Result {
		return knowledge.Result{
			Content: content,
			Metadata: map[string]string{
				docs.MetaSource: url,
				docs.MetaTitle:  title,
				docs.MetaTopic:  "genkit",
			},
		}
	}

	t.Run("deduplicates by URL preserving order", func(t *testing.T) {
		citations := buildCitations([]knowledge.Result{
			result("https://a", "A", "first"),
			result("https://b", "B", "second"),
			result("https://a", "A", "duplicate of first"),
		})

		require.Len(t, citations, 2)
		assert.Equal(t, "https://a", citations[0].URL)
		assert.Equal(t, "https://b", citations[1].URL)
	})

	t.Run("caps at five", func(t *testing.T) {
		var results []knowledge.Result
		for _, u := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			results = append(results, result("https://"+u, u, "content"))
		}
		assert.Len(t, buildCitations(results), 5)
	})

	t.Run("truncates long previews", func(t *testing.T) {
		long := strings.Repeat("x", 300)
		citations := buildCitations([]knowledge.Result{result("https://a", "A", long)})

		require.Len(t, citations, 1)
		preview := citations[0].Preview
		assert.Len(t, []rune(preview), 203)
		assert.True(t, strings.HasSuffix(preview, "..."))
	})

	t.Run("keeps short previews verbatim", func(t *testing.T) {
		citations := buildCitations([]knowledge.Result{result("https://a", "A", "short content")})
		require.Len(t, citations, 1)
		assert.Equal(t, "short content", citations[0].Preview)
	})

	t.Run("defaults missing titles", func(t *testing.T) {
		citations := buildCitations([]knowledge.Result{
			{Content: "c", Metadata: map[string]string{docs.MetaSource: "https://a"}},
		})
		require.Len(t, citations, 1)
		assert.Equal(t, "Documentation", citations[0].Title)
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "reindexing", StateReindexing.String())
}
