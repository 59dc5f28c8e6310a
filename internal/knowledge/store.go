package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/docside/docside/internal/chunker"
	"github.com/docside/docside/internal/docs"
	"github.com/docside/docside/internal/log"
)

// addConcurrency bounds parallel inserts when writing staged documents.
const addConcurrency = 4

// Result is a single search hit: the stored chunk content, its metadata as
// written at upsert time, and the cosine similarity to the query.
type Result struct {
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// SearchOption configures search behavior using the functional options pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK   int
	filter map[string]string
}

// WithTopK sets the maximum number of results to return. Default is 5.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		c.topK = k
	}
}

// WithFilter restricts results to entries whose metadata has the given
// key/value. Multiple calls add filters (AND logic).
func WithFilter(key, value string) SearchOption {
	return func(c *searchConfig) {
		if c.filter == nil {
			c.filter = make(map[string]string)
		}
		c.filter[key] = value
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{topK: 5}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Store manages indexed chunks with vector search via an embedded,
// disk-persisted chromem-go collection.
//
// Writes follow a staging discipline: embeddings are computed before any
// exclusive lock is taken, so the lock only covers the in-memory
// delete+insert swap. Readers observe either the old or the new state of
// the affected scope, never a deleted-but-not-replaced gap.
type Store struct {
	db     *chromem.DB
	name   string
	embed  chromem.EmbeddingFunc
	logger log.Logger

	// mu guards the collection pointer and the replace window.
	mu  sync.RWMutex
	col *chromem.Collection
}

// Open opens (or creates) the persistent store at persistDir under the given
// collection name. Opening an existing collection loads prior entries from
// disk without re-embedding; initialization is idempotent.
func Open(persistDir, collection string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	db, err := chromem.NewPersistentDB(persistDir, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector store at %q: %w", persistDir, err)
	}

	col, err := db.GetOrCreateCollection(collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", collection, err)
	}

	logger.Debug("vector store opened",
		"persist_dir", persistDir,
		"collection", collection,
		"entries", col.Count())

	return &Store{
		db:     db,
		name:   collection,
		embed:  embed,
		logger: logger,
		col:    col,
	}, nil
}

// Upsert embeds and stores the given chunks without deleting anything.
// IDs are derived from source URL and chunk index, so re-ingesting the same
// page overwrites its prior entries instead of accumulating duplicates.
func (s *Store) Upsert(ctx context.Context, chunks []chunker.Chunk) error {
	staged, err := s.stage(ctx, chunks)
	if err != nil {
		return err
	}

	s.mu.RLock()
	col := s.col
	s.mu.RUnlock()

	if err := col.AddDocuments(ctx, staged, addConcurrency); err != nil {
		return fmt.Errorf("upserting %d chunks: %w", len(staged), err)
	}

	s.logger.Debug("upserted chunks", "count", len(staged))
	return nil
}

// Replace swaps the entire collection contents for the given chunks.
// The new entries are fully staged (embedded) first; only the drop+insert
// happens under the exclusive lock.
func (s *Store) Replace(ctx context.Context, chunks []chunker.Chunk) error {
	staged, err := s.stage(ctx, chunks)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("dropping collection %q: %w", s.name, err)
	}
	col, err := s.db.GetOrCreateCollection(s.name, nil, s.embed)
	if err != nil {
		return fmt.Errorf("recreating collection %q: %w", s.name, err)
	}
	s.col = col

	if len(staged) > 0 {
		if err := col.AddDocuments(ctx, staged, addConcurrency); err != nil {
			return fmt.Errorf("writing %d replacement chunks: %w", len(staged), err)
		}
	}

	s.logger.Debug("collection replaced", "entries", len(staged))
	return nil
}

// ReplaceTopic swaps all entries of one topic for the given chunks, leaving
// every other topic untouched. Staging happens before the lock, as in Replace.
func (s *Store) ReplaceTopic(ctx context.Context, topic string, chunks []chunker.Chunk) error {
	staged, err := s.stage(ctx, chunks)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.col.Count() > 0 {
		if err := s.col.Delete(ctx, map[string]string{docs.MetaTopic: topic}, nil); err != nil {
			return fmt.Errorf("deleting entries for topic %q: %w", topic, err)
		}
	}

	if len(staged) > 0 {
		if err := s.col.AddDocuments(ctx, staged, addConcurrency); err != nil {
			return fmt.Errorf("writing %d chunks for topic %q: %w", len(staged), topic, err)
		}
	}

	s.logger.Debug("topic replaced", "topic", topic, "entries", len(staged))
	return nil
}

// Count returns the current number of indexed entries, reflecting all
// completed upserts and deletes.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.col.Count()
}

// Search performs semantic search and returns at most topK results ordered
// by similarity. An empty store yields an empty result, never an error.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := s.col.Count()
	if count == 0 {
		return nil, nil
	}

	k := cfg.topK
	if k > count {
		k = count
	}

	rows, err := s.col.Query(ctx, query, k, cfg.filter, nil)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, Result{
			Content:    row.Content,
			Metadata:   row.Metadata,
			Similarity: row.Similarity,
		})
	}
	return results, nil
}

// SearchTopic is the retrieval-path convenience wrapper: top-k search,
// optionally restricted to one topic.
func (s *Store) SearchTopic(ctx context.Context, query string, k int, topic string) ([]Result, error) {
	opts := []SearchOption{WithTopK(k)}
	if topic != "" {
		opts = append(opts, WithFilter(docs.MetaTopic, topic))
	}
	return s.Search(ctx, query, opts...)
}

// stage embeds chunks into ready-to-insert documents. This is the write-ahead
// step: all embedding I/O happens here, before any exclusive lock.
func (s *Store) stage(ctx context.Context, chunks []chunker.Chunk) ([]chromem.Document, error) {
	staged := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		vec, err := s.embed(ctx, c.Content)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d of %q: %w", c.Index, c.Metadata[docs.MetaSource], err)
		}
		staged = append(staged, chromem.Document{
			ID:        chunkID(c.Metadata[docs.MetaSource], c.Index),
			Content:   c.Content,
			Metadata:  c.Metadata,
			Embedding: vec,
		})
	}
	return staged, nil
}

// chunkID generates a stable entry ID from the chunk's source URL and its
// position within the parent document.
func chunkID(source string, index int) string {
	hash := sha256.Sum256([]byte(source + "#" + strconv.Itoa(index)))
	return "chunk_" + hex.EncodeToString(hash[:16])
}
