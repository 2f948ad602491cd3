package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/session"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// Form is one open form: a template, its session and the validation and
// submission machinery bound to it.
type Form struct {
	Template model.FormTemplate
	Groups   model.Groups

	session   *session.Session
	pipeline  *validation.Pipeline
	submitter *validation.Submitter
	release   func(id string)
	closeOnce sync.Once
}

// ID returns the session id.
func (f *Form) ID() string {
	return f.session.ID()
}

// Session exposes the underlying session for reads.
func (f *Form) Session() *session.Session {
	return f.session
}

// Change sets a value and validates the entry. See validation.Pipeline.
func (f *Form) Change(ctx context.Context, index int, field string, value any) (bool, error) {
	return f.pipeline.Change(ctx, index, field, value)
}

// AddEntry appends a default entry.
func (f *Form) AddEntry() (int, error) {
	return f.session.AddEntry()
}

// RemoveEntry removes the entry at index.
func (f *Form) RemoveEntry(index int) error {
	return f.session.RemoveEntry(index)
}

// Validate runs whole-form validation without submitting.
func (f *Form) Validate(ctx context.Context) (bool, []session.ErrorRecord, error) {
	return f.pipeline.ValidateAll(ctx)
}

// Submit validates and persists the form.
func (f *Form) Submit(ctx context.Context) (validation.Outcome, error) {
	return f.submitter.Submit(ctx)
}

// Status reports the submission state.
func (f *Form) Status() validation.Status {
	return f.submitter.Status()
}

// Fill renders every field of the entry at index through fr, restricted to
// groups when given. Each value fr reports through onChange goes through
// Change before the next field is rendered.
func (f *Form) Fill(ctx context.Context, fr render.FieldRenderer, index int, groups ...string) ([]render.Element, error) {
	if f.session.Closed() {
		return nil, ErrClosed
	}
	tpl := f.Template
	render.ApplySubset(&tpl, groups...)

	elements := make([]render.Element, 0, len(tpl.Fields))
	for _, field := range tpl.Fields {
		value, err := f.session.Value(index, field.Name)
		if err != nil {
			return elements, err
		}
		var changeErr error
		name := field.Name
		onChange := func(v any) {
			_, changeErr = f.pipeline.Change(ctx, index, name, v)
		}
		hasError := f.session.ErrorFor(index, name) != ""
		el, err := fr.RenderField(ctx, field, value, onChange, hasError)
		if err != nil {
			return elements, err
		}
		if changeErr != nil {
			return elements, changeErr
		}
		elements = append(elements, el)
	}
	return elements, nil
}

// ApplyBackendErrors maps a backend error payload onto the session's error
// records and returns the form-level messages. Errors addressed to entries
// that no longer exist are returned as form-level messages.
func (f *Form) ApplyBackendErrors(payload map[string][]string) []string {
	mapping := render.MapErrorPayload(f.Template, payload)
	snaps, err := f.session.Snapshots()
	if err != nil {
		return mapping.Form
	}
	form := mapping.Form
	for index, record := range mapping.Entries {
		if index >= len(snaps) {
			for _, msg := range record {
				form = append(form, msg)
			}
			continue
		}
		f.session.ApplyRecord(snaps[index], record)
	}
	return render.MergeFormErrors(nil, form...)
}

// Close destroys the session and releases the form from its engine.
func (f *Form) Close() {
	f.closeOnce.Do(func() {
		id := f.session.ID()
		f.session.Close()
		if f.release != nil {
			f.release(id)
		}
	})
}

// IsValidationFailure reports whether err came from a blocked submission.
func IsValidationFailure(err error) bool {
	return errors.Is(err, validation.ErrValidationFailed)
}
