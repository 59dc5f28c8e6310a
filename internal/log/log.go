// Package log builds the slog loggers the service runs on.
//
// Logger is an alias for *slog.Logger, injected through constructors rather
// than reached for globally. Each component narrows its logger with With
// ("component", "fetcher" and the like) so one line of setup in cmd/serve
// configures the whole pipeline's output. The serve command logs JSON; the
// one-shot CLI commands log text; tests use NewNop or capture a buffer via
// NewWithWriter.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the dependency type components accept. Aliasing *slog.Logger
// keeps With, LogAttrs and the rest of the slog surface available without an
// interface in between.
type Logger = *slog.Logger

// Config selects output format and verbosity.
type Config struct {
	// Level is the minimum level emitted. The zero value is slog.LevelInfo.
	Level slog.Level

	// JSON switches from text to JSON output.
	JSON bool

	// AddSource includes the emitting file and line in each record.
	AddSource bool
}

// New returns a logger writing to stderr.
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter returns a logger writing to w. Tests pass a bytes.Buffer
// here to assert on output.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop returns a logger that discards everything. Test use only.
func NewNop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
