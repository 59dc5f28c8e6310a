// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./config.yaml or ~/.docside/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - AI: chat model, embedder model, temperature
//   - Index: chunk size/overlap, persistence directory, collection name
//   - Fetch: per-page timeout, parallelism, request pacing
//   - Topics: documentation topics and their page lists
//   - Server: listen address
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidChunkSize indicates the chunk size is out of range.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidChunkOverlap indicates the chunk overlap is out of range.
	ErrInvalidChunkOverlap = errors.New("invalid chunk overlap")

	// ErrInvalidTopK indicates the retrieval depth is out of range.
	ErrInvalidTopK = errors.New("invalid top k")

	// ErrInvalidCollection indicates the collection name is empty.
	ErrInvalidCollection = errors.New("invalid collection name")

	// ErrInvalidPersistDir indicates the persistence directory is empty.
	ErrInvalidPersistDir = errors.New("invalid persist directory")

	// ErrInvalidFetchTimeout indicates the fetch timeout is out of range.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout")

	// ErrNoTopics indicates no documentation topics are configured.
	ErrNoTopics = errors.New("no topics configured")

	// ErrInvalidTopic indicates a topic definition is malformed.
	ErrInvalidTopic = errors.New("invalid topic")
)

const (
	// DefaultChatModel is the default generation model (Genkit model reference).
	DefaultChatModel = "googleai/gemini-2.5-flash"

	// DefaultEmbedderModel is the default Gemini embedder model.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultCollectionName is the default vector collection name.
	// The on-disk store is keyed by this name; changing it effectively
	// starts an empty index.
	DefaultCollectionName = "docside_docs"

	// MaxTopK caps retrieval depth to keep context windows bounded.
	MaxTopK = 20
)

// Page is one documentation page to ingest: a URL plus a human-readable title.
type Page struct {
	URL   string `mapstructure:"url" json:"url"`
	Title string `mapstructure:"title" json:"title"`
}

// Topic is a documentation subset used for scoped ingestion and filtering.
type Topic struct {
	ID          string `mapstructure:"id" json:"id"`
	Name        string `mapstructure:"name" json:"name"`
	Description string `mapstructure:"description" json:"description"`
	DocsURL     string `mapstructure:"docs_url" json:"docs_url"`
	Pages       []Page `mapstructure:"pages" json:"pages"`
}

// Config stores application configuration.
type Config struct {
	// AI model configuration
	ChatModel     string  `mapstructure:"chat_model" json:"chat_model"`
	EmbedderModel string  `mapstructure:"embedder_model" json:"embedder_model"`
	Temperature   float32 `mapstructure:"temperature" json:"temperature"`

	// Index configuration
	ChunkSize      int    `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap   int    `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	TopK           int    `mapstructure:"top_k" json:"top_k"`
	PersistDir     string `mapstructure:"persist_dir" json:"persist_dir"`
	CollectionName string `mapstructure:"collection_name" json:"collection_name"`

	// Fetch configuration
	FetchTimeoutMS int `mapstructure:"fetch_timeout_ms" json:"fetch_timeout_ms"`
	FetchDelayMS   int `mapstructure:"fetch_delay_ms" json:"fetch_delay_ms"`
	Parallelism    int `mapstructure:"parallelism" json:"parallelism"`

	// Documentation topics (falls back to DefaultTopics when empty)
	Topics []Topic `mapstructure:"topics" json:"topics"`

	// Server configuration
	Addr string `mapstructure:"addr" json:"addr"`
}

// FetchTimeout returns the per-page fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// FetchDelay returns the pause between page fetches as a duration.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelayMS) * time.Millisecond
}

// TopicIDs returns the configured topic identifiers in declaration order.
func (c *Config) TopicIDs() []string {
	ids := make([]string, 0, len(c.Topics))
	for _, t := range c.Topics {
		ids = append(ids, t.ID)
	}
	return ids
}

// TopicByID returns the topic with the given identifier, or false.
func (c *Config) TopicByID(id string) (Topic, bool) {
	for _, t := range c.Topics {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".docside")

	// Configure Viper
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(configDir)

	setDefaults()
	bindEnvVariables()

	// Read configuration file (if exists)
	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{".", configDir},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Topic lists are structured data; viper defaults only cover scalars.
	if len(cfg.Topics) == 0 {
		cfg.Topics = DefaultTopics()
	}

	// CRITICAL: Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// AI defaults
	viper.SetDefault("chat_model", DefaultChatModel)
	viper.SetDefault("embedder_model", DefaultEmbedderModel)
	viper.SetDefault("temperature", 0.1)

	// Index defaults (matching the retrieval design: 1000-char windows,
	// 200-char overlap, 5 grounding chunks per question)
	viper.SetDefault("chunk_size", 1000)
	viper.SetDefault("chunk_overlap", 200)
	viper.SetDefault("top_k", 5)
	viper.SetDefault("persist_dir", "./data/index")
	viper.SetDefault("collection_name", DefaultCollectionName)

	// Fetch defaults
	viper.SetDefault("fetch_timeout_ms", 30000)
	viper.SetDefault("fetch_delay_ms", 200)
	viper.SetDefault("parallelism", 4)

	// Server defaults
	viper.SetDefault("addr", "127.0.0.1:3005")
}

// bindEnvVariables binds environment variable overrides explicitly.
// GEMINI_API_KEY is read directly by Genkit (not via Viper) and is
// verified in ValidateServe.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("addr", "DOCSIDE_ADDR")
	mustBind("persist_dir", "DOCSIDE_PERSIST_DIR")
	mustBind("collection_name", "DOCSIDE_COLLECTION")
	mustBind("chat_model", "DOCSIDE_CHAT_MODEL")
	mustBind("embedder_model", "DOCSIDE_EMBEDDER_MODEL")
}

// Validate checks the configuration for invalid values.
// Returns a sentinel error (wrapped with detail) on the first violation.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.ChunkSize < 100 || c.ChunkSize > 100_000 {
		return fmt.Errorf("%w: %d (must be 100..100000)", ErrInvalidChunkSize, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: %d (must be 0..chunk_size-1)", ErrInvalidChunkOverlap, c.ChunkOverlap)
	}
	if c.TopK < 1 || c.TopK > MaxTopK {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidTopK, c.TopK, MaxTopK)
	}
	if c.CollectionName == "" {
		return ErrInvalidCollection
	}
	if c.PersistDir == "" {
		return ErrInvalidPersistDir
	}
	if c.FetchTimeoutMS <= 0 {
		return fmt.Errorf("%w: %dms", ErrInvalidFetchTimeout, c.FetchTimeoutMS)
	}

	if len(c.Topics) == 0 {
		return ErrNoTopics
	}
	seen := make(map[string]bool, len(c.Topics))
	for _, t := range c.Topics {
		if t.ID == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidTopic)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidTopic, t.ID)
		}
		seen[t.ID] = true
		if len(t.Pages) == 0 {
			return fmt.Errorf("%w: topic %q has no pages", ErrInvalidTopic, t.ID)
		}
		for _, p := range t.Pages {
			if p.URL == "" {
				return fmt.Errorf("%w: topic %q has a page without url", ErrInvalidTopic, t.ID)
			}
		}
	}

	return nil
}

// ValidateServe performs additional checks required for serve mode.
// The embedder and generator need a Gemini API key at request time;
// failing here makes the misconfiguration observable at startup.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}
