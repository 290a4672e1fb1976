// Package log provides structured generation logging for regtokens.
//
// The generator reports what it does (layers parsed, blocks emitted,
// fields accumulated and forwarded, files written) as Events through the
// Logger interface. It is separate from error reporting: a failed run
// returns an error, the event trace explains how it got there.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	opts.Logger = log.NewSlogAdapter(slog.Default())
//
//	// Both console and an in-memory trace
//	opts.Logger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), &trace)
package log
