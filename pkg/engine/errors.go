package engine

import "errors"

var (
	// ErrClosed is returned by an engine or form after Close.
	ErrClosed = errors.New("engine: closed")
	// ErrNoTemplates is returned when no template store is configured.
	ErrNoTemplates = errors.New("engine: template store is not configured")
)
