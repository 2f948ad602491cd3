// Package validation runs field-level and whole-form validation for a form
// session and drives the submission state machine.
package validation

import (
	"context"

	"github.com/goliatone/go-formkit/pkg/session"
)

// Result is the verdict of a validator for one entry. Errors maps field
// names to messages; an empty message means the field is valid.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Message returns the error for field, or "" when it has none.
func (r Result) Message(field string) string {
	if r.Errors == nil {
		return ""
	}
	return r.Errors[field]
}

// Record converts the result into an error record holding only non-empty
// messages.
func (r Result) Record() session.ErrorRecord {
	record := make(session.ErrorRecord, len(r.Errors))
	for field, msg := range r.Errors {
		if msg != "" {
			record[field] = msg
		}
	}
	return record
}

// Validator evaluates a complete entry. Implementations must not mutate the
// entry and may be called from several goroutines at once.
type Validator interface {
	Validate(ctx context.Context, entry session.Entry) (Result, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, entry session.Entry) (Result, error)

// Validate implements Validator.
func (fn ValidatorFunc) Validate(ctx context.Context, entry session.Entry) (Result, error) {
	if fn == nil {
		return Result{Valid: true}, nil
	}
	return fn(ctx, entry)
}

// Chain runs validators in order and merges their results. The first message
// reported for a field wins; the entry is valid only when every validator
// says so. A validator error stops the chain.
func Chain(validators ...Validator) Validator {
	return chain(validators)
}

type chain []Validator

func (c chain) Validate(ctx context.Context, entry session.Entry) (Result, error) {
	merged := Result{Valid: true, Errors: map[string]string{}}
	for _, v := range c {
		if v == nil {
			continue
		}
		res, err := v.Validate(ctx, entry)
		if err != nil {
			return Result{}, err
		}
		if !res.Valid {
			merged.Valid = false
		}
		for field, msg := range res.Errors {
			if msg == "" {
				continue
			}
			if merged.Errors[field] == "" {
				merged.Errors[field] = msg
			}
		}
	}
	return merged, nil
}
