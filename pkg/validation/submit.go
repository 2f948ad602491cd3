package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formkit/pkg/logging"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/payload"
	"github.com/goliatone/go-formkit/pkg/session"
)

// Status is a state of the submission machine.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Persister stores a submission payload. isEdit is true when recordID names
// an existing record.
type Persister interface {
	Save(ctx context.Context, isEdit bool, recordID string, body any) (bool, error)
}

// PersisterFunc adapts a function to the Persister interface.
type PersisterFunc func(ctx context.Context, isEdit bool, recordID string, body any) (bool, error)

// Save implements Persister.
func (fn PersisterFunc) Save(ctx context.Context, isEdit bool, recordID string, body any) (bool, error) {
	return fn(ctx, isEdit, recordID, body)
}

// Outcome describes one Submit call.
type Outcome struct {
	Status  Status
	Payload any
	Errors  []session.ErrorRecord
}

// SubmitOption customises a Submitter.
type SubmitOption func(*Submitter)

// WithGroups sets the groups used for grouped payloads.
func WithGroups(groups model.Groups) SubmitOption {
	return func(s *Submitter) {
		s.groups = groups
	}
}

// WithGroupSave nests payload values by group backend key.
func WithGroupSave(enabled bool) SubmitOption {
	return func(s *Submitter) {
		s.payload.GroupSaveEnabled = enabled
	}
}

// WithEditID marks the session as an edit of the record with this id.
func WithEditID(id string) SubmitOption {
	return func(s *Submitter) {
		s.payload.EditID = id
	}
}

// WithSubmitLogger attaches a logger to the submitter.
func WithSubmitLogger(logger *slog.Logger) SubmitOption {
	return func(s *Submitter) {
		s.logger = logging.OrDiscard(logger)
	}
}

// Submitter drives idle -> submitting -> success|failed. Whole-form
// validation always runs first; persistence is reached only when every entry
// is valid.
type Submitter struct {
	pipeline  *Pipeline
	persister Persister
	groups    model.Groups
	payload   payload.Options
	logger    *slog.Logger

	mu     sync.Mutex
	status Status
}

// NewSubmitter builds a submitter for the pipeline's session.
func NewSubmitter(pipeline *Pipeline, persister Persister, options ...SubmitOption) *Submitter {
	s := &Submitter{
		pipeline:  pipeline,
		persister: persister,
		logger:    logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.groups == nil {
		s.groups = model.GroupFields(pipeline.Session().Fields())
	}
	return s
}

// Status returns the current state.
func (s *Submitter) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Submit validates every entry and, when all are valid, builds the payload
// from the validated values and hands it to the persister. Edits made while
// validation runs are not part of the submission. A failed submission keeps the entries so
// the caller can correct them and submit again.
func (s *Submitter) Submit(ctx context.Context) (Outcome, error) {
	if err := s.begin(); err != nil {
		return Outcome{Status: StatusSubmitting}, err
	}

	valid, records, snaps, err := s.pipeline.validateSnapshots(ctx)
	if err != nil {
		return s.finish(Outcome{Status: StatusFailed}, err)
	}
	if !valid {
		return s.finish(Outcome{Status: StatusFailed, Errors: records}, ErrValidationFailed)
	}

	entries := make([]session.Entry, len(snaps))
	for i, snap := range snaps {
		entries[i] = snap.Values
	}
	body := payload.Build(entries, s.groups, s.payload)
	out := Outcome{Status: StatusFailed, Payload: body, Errors: records}
	if s.persister == nil {
		return s.finish(out, fmt.Errorf("%w: no persister configured", ErrPersistFailed))
	}

	isEdit := s.payload.EditID != ""
	ok, err := s.persister.Save(ctx, isEdit, s.payload.EditID, body)
	switch {
	case err != nil:
		return s.finish(out, errors.Join(ErrPersistFailed, err))
	case !ok:
		return s.finish(out, ErrPersistFailed)
	}

	out.Status = StatusSuccess
	return s.finish(out, nil)
}

func (s *Submitter) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitting {
		return ErrSubmitInProgress
	}
	s.status = StatusSubmitting
	return nil
}

func (s *Submitter) finish(out Outcome, err error) (Outcome, error) {
	s.mu.Lock()
	s.status = out.Status
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("submission failed",
			"session", s.pipeline.Session().ID(),
			"error", err,
		)
	} else {
		s.logger.Info("submission saved",
			"session", s.pipeline.Session().ID(),
			"edit", s.payload.EditID != "",
		)
	}
	return out, err
}
