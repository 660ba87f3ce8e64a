// Package logging wraps log/slog with the field names used across bsparse.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with block-sparse specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at Info level.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewText creates a Logger writing human-readable text to w.
func NewText(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// FromSlog wraps an existing slog.Logger. A nil logger yields Noop.
func FromSlog(l *slog.Logger) *Logger {
	if l == nil {
		return Noop()
	}
	return &Logger{Logger: l}
}

// Noop creates a Logger that discards all output.
func Noop() *Logger {
	return New(slog.DiscardHandler)
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
	return level, nil
}

// WithOp adds an op field naming the running algorithm.
func (l *Logger) WithOp(op string) *Logger {
	return &Logger{Logger: l.Logger.With("op", op)}
}

// WithShape adds shape and block_shape fields.
func (l *Logger) WithShape(shape, blockShape []int) *Logger {
	return &Logger{Logger: l.Logger.With("shape", shape, "block_shape", blockShape)}
}

// LogClusters logs the outcome of a per-cluster factorization at Debug,
// failures included.
func (l *Logger) LogClusters(clusters, largest int, elapsed time.Duration, err error) {
	if err != nil {
		l.Debug("factorization failed",
			"clusters", clusters,
			"largest", largest,
			"error", err,
		)
		return
	}
	l.Debug("factorization completed",
		"clusters", clusters,
		"largest", largest,
		"elapsed", elapsed,
	)
}

// LogContraction logs a finished block contraction.
func (l *Logger) LogContraction(pairs, blocks int, elapsed time.Duration) {
	l.Debug("contraction completed",
		"pairs", pairs,
		"blocks", blocks,
		"elapsed", elapsed,
	)
}
