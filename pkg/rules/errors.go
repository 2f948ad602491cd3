package rules

import "errors"

var (
	// ErrInvalidID is returned before any network call when an update names a
	// rule id that is not numeric.
	ErrInvalidID = errors.New("rules: rule id is not numeric")
	// ErrMintedID refuses to update a rule whose id was minted locally while
	// reading; the id does not exist on the backend.
	ErrMintedID = errors.New("rules: rule id was minted locally")
	// ErrInvalidRule wraps validator failures on rule writes.
	ErrInvalidRule = errors.New("rules: invalid rule")
	// ErrPartialReplace reports that a bulk replace or reconcile stopped or
	// skipped steps. The accompanying Report tells what was done.
	ErrPartialReplace = errors.New("rules: catalog only partially replaced")
	// ErrNoTransport is returned when a store has no transport configured.
	ErrNoTransport = errors.New("rules: transport is not configured")
)
