package templates

import "errors"

var (
	// ErrDuplicateTemplate is returned when two documents declare the same
	// template name.
	ErrDuplicateTemplate = errors.New("templates: duplicate template")
	// ErrEmptyName is returned for documents without a template name.
	ErrEmptyName = errors.New("templates: template name is empty")
	// ErrNotFound is returned when a template name is not in the store.
	ErrNotFound = errors.New("templates: template not found")
)
