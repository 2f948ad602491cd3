package openapi

import "errors"

var (
	// ErrEmptyDocument is returned for blank input.
	ErrEmptyDocument = errors.New("openapi: document is empty")
	// ErrOperationNotFound is returned when no operation has the requested id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned when the operation has no object request
	// body to import.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)
