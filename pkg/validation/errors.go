package validation

import "errors"

var (
	// ErrValidationFailed blocks a submission because at least one entry is
	// invalid. No payload is sent.
	ErrValidationFailed = errors.New("validation: form is invalid")
	// ErrPersistFailed reports that the persistence collaborator rejected the
	// payload. Entry values are retained.
	ErrPersistFailed = errors.New("validation: persist failed")
	// ErrSubmitInProgress is returned when Submit is called while another
	// submission is still running.
	ErrSubmitInProgress = errors.New("validation: submission already in progress")
	// ErrNoEntries is returned when a session without entries is validated
	// for submission.
	ErrNoEntries = errors.New("validation: session has no entries")
)
