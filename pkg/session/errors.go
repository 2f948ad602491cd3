package session

import "errors"

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("session: closed")
	// ErrIndexOutOfRange signals an entry index outside the current sequence.
	ErrIndexOutOfRange = errors.New("session: entry index out of range")
	// ErrUnknownField signals a field name not declared by the template.
	ErrUnknownField = errors.New("session: unknown field")
)
