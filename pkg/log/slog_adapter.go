package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes generation events to an slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. File writes and removals, stale
// and orphaned files and input changes are logged at Info, failed runs at Error, everything else
// at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("kind", event.Kind.String()),
	}

	if event.Layer != "" {
		attrs = append(attrs, slog.String("layer", event.Layer))
	}
	if event.File != "" {
		attrs = append(attrs, slog.String("file", event.File))
	}
	if event.Block != "" {
		attrs = append(attrs, slog.String("block", event.Block))
	}
	if event.Register != "" {
		attrs = append(attrs, slog.String("register", event.Register))
	}
	if event.Field != "" {
		attrs = append(attrs, slog.String("field", event.Field))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}

	switch event.Kind {
	case KindFieldsForwarded, KindStructEmitted:
		attrs = append(attrs, slog.Int("fields", event.Count))
	case KindFileWritten:
		attrs = append(attrs, slog.Int("bytes", event.Count))
	}

	level := slog.LevelDebug
	switch event.Kind {
	case KindFileWritten, KindFileStale, KindInputChanged, KindFileOrphaned, KindFileRemoved:
		level = slog.LevelInfo
	case KindRunFailed:
		level = slog.LevelError
	}
	a.logger.LogAttrs(context.Background(), level, "regtokens", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
