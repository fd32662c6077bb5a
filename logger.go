package nilq

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with nilq-specific context.
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
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithRun tags the logger with a run ID.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", id),
	}
}

// WithPresentation tags the logger with the input file, signature and ring.
func (l *Logger) WithPresentation(file, signature, ring string) *Logger {
	return &Logger{
		Logger: l.Logger.With("file", file, "signature", signature, "ring", ring),
	}
}

// LogClassStart logs the start of a class step.
func (l *Logger) LogClassStart(ctx context.Context, class, gens int) {
	l.DebugContext(ctx, "class started",
		"class", class,
		"generators", gens,
	)
}

// LogClassDone logs a completed class step.
func (l *Logger) LogClassDone(ctx context.Context, s ClassStats) {
	l.InfoContext(ctx, "class completed",
		"class", s.Class,
		"tails", s.Tails,
		"new", s.NewGens,
		"torsion", s.Torsion,
		"eliminated", s.Eliminated,
		"total", s.TotalGens,
		"rows", s.Rows,
		"elapsed", s.Elapsed,
		"cpu", s.CPU,
	)
}

// LogProgress logs an intermediate progress line.
func (l *Logger) LogProgress(ctx context.Context, class int, msg string, args ...any) {
	l.DebugContext(ctx, msg, append([]any{"class", class}, args...)...)
}

// LogCheckpoint logs a written or failed checkpoint.
func (l *Logger) LogCheckpoint(ctx context.Context, name string, err error) {
	if err != nil {
		l.WarnContext(ctx, "checkpoint failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "checkpoint written", "name", name)
}

// LogRunDone logs the end of a run.
func (l *Logger) LogRunDone(ctx context.Context, class, gens int, stable bool, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"class", class,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "run completed",
		"class", class,
		"generators", gens,
		"stable", stable,
		"elapsed", elapsed,
	)
}
