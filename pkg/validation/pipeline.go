package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/session"
)

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a logger. Stale responses are reported at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.OrDiscard(logger)
	}
}

// Pipeline connects a session to a validator. Change may be called from many
// goroutines; responses are reconciled by edit sequence so the error shown
// for a field always belongs to its latest edit.
type Pipeline struct {
	session   *session.Session
	validator Validator
	logger    *slog.Logger
}

// NewPipeline wires validator to s. A nil validator accepts everything.
func NewPipeline(s *session.Session, validator Validator, options ...Option) *Pipeline {
	if validator == nil {
		validator = ValidatorFunc(nil)
	}
	p := &Pipeline{
		session:   s,
		validator: validator,
		logger:    logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Session returns the session the pipeline validates.
func (p *Pipeline) Session() *session.Session {
	return p.session
}

// Change sets a value and validates the whole entry as it stood after the
// edit. Only the changed field's message is written, and only when no newer
// edit or newer result exists for it. applied reports whether the message
// reached the error record.
func (p *Pipeline) Change(ctx context.Context, index int, field string, value any) (bool, error) {
	edit, err := p.session.SetValue(index, field, value)
	if err != nil {
		return false, err
	}

	res, err := p.validator.Validate(ctx, edit.Values)
	if err != nil {
		return false, fmt.Errorf("validation: validate %q of entry %d: %w", field, edit.Index, err)
	}

	applied := p.session.ApplyFieldError(edit, res.Message(field))
	if !applied {
		p.logger.Debug("stale field validation discarded",
			"session", p.session.ID(),
			"field", field,
			"seq", edit.Seq,
		)
	}
	return applied, nil
}

// ValidateAll validates every entry in index order and writes each full error
// record under the same reconciliation rule as Change. The form is valid only
// when every entry is. An empty session returns ErrNoEntries.
func (p *Pipeline) ValidateAll(ctx context.Context) (bool, []session.ErrorRecord, error) {
	valid, records, _, err := p.validateSnapshots(ctx)
	return valid, records, err
}

// validateSnapshots is ValidateAll returning the snapshots that were
// validated, so a submission can send exactly those values.
func (p *Pipeline) validateSnapshots(ctx context.Context) (bool, []session.ErrorRecord, []session.Snapshot, error) {
	snaps, err := p.session.Snapshots()
	if err != nil {
		return false, nil, nil, err
	}
	if len(snaps) == 0 {
		return false, nil, nil, ErrNoEntries
	}

	valid := true
	records := make([]session.ErrorRecord, 0, len(snaps))
	for _, snap := range snaps {
		if err := ctx.Err(); err != nil {
			return false, nil, nil, err
		}
		res, err := p.validator.Validate(ctx, snap.Values)
		if err != nil {
			return false, nil, nil, fmt.Errorf("validation: validate entry %d: %w", snap.Index, err)
		}
		record := res.Record()
		p.session.ApplyRecord(snap, record)
		records = append(records, record)
		if !res.Valid {
			valid = false
		}
	}

	p.logger.Debug("form validated",
		"session", p.session.ID(),
		"entries", len(snaps),
		"valid", valid,
	)
	return valid, records, snaps, nil
}
