package manifest

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownGenerator is returned when a name used by a layer or by the
	// capability is declared by no layer of the manifest.
	ErrUnknownGenerator = errors.New("unknown generator")

	// ErrDuplicateGenerator is returned when two layers declare the same
	// generator name.
	ErrDuplicateGenerator = errors.New("duplicate generator")

	// ErrCycle is returned when following predecessors revisits a layer.
	ErrCycle = errors.New("generator chain has a cycle")

	// ErrNoTerminal is returned when no layer renders the capability.
	ErrNoTerminal = errors.New("no terminal layer")
)

// MultipleTerminalError reports more than one terminal layer. Only one
// capability chain may exist per build.
type MultipleTerminalError struct {
	Generators []string
}

func (e *MultipleTerminalError) Error() string {
	return "multiple terminal layers: " + strings.Join(e.Generators, ", ")
}

// LoadError provides details about a manifest loading error.
type LoadError struct {
	// File is the path to the manifest.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
