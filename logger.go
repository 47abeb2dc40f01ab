package lexfst

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with dictionary-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithName adds a blob name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBuild logs the completion of a dictionary build.
func (l *Logger) LogBuild(ctx context.Context, terms int64, sizeBytes int64, packed bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"terms", terms,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dictionary built",
			"terms", terms,
			"size_bytes", sizeBytes,
			"packed", packed,
		)
	}
}

// LogSave logs a save operation.
func (l *Logger) LogSave(ctx context.Context, name string, written int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dictionary saved",
			"name", name,
			"bytes", written,
		)
	}
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, name string, terms int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dictionary loaded",
			"name", name,
			"terms", terms,
		)
	}
}

// LogBatch logs a batch lookup.
func (l *Logger) LogBatch(ctx context.Context, count, found int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch lookup failed",
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "batch lookup completed",
			"count", count,
			"found", found,
		)
	}
}
