package validation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/session"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// gatedValidator blocks each call until the test releases the value it was
// called with, so completion order can be forced.
type gatedValidator struct {
	mu       sync.Mutex
	started  map[string]chan struct{}
	release  map[string]chan struct{}
	messages map[string]string
}

func newGatedValidator(values ...string) *gatedValidator {
	g := &gatedValidator{
		started:  map[string]chan struct{}{},
		release:  map[string]chan struct{}{},
		messages: map[string]string{},
	}
	for _, v := range values {
		g.started[v] = make(chan struct{})
		g.release[v] = make(chan struct{})
	}
	return g
}

func (g *gatedValidator) Validate(ctx context.Context, entry session.Entry) (validation.Result, error) {
	value, _ := entry["code"].(string)
	g.mu.Lock()
	started, release := g.started[value], g.release[value]
	msg := g.messages[value]
	g.mu.Unlock()

	close(started)
	select {
	case <-release:
	case <-ctx.Done():
		return validation.Result{}, ctx.Err()
	}
	return validation.Result{Valid: msg == "", Errors: map[string]string{"code": msg}}, nil
}

func codeFields() []model.FieldDescriptor {
	return []model.FieldDescriptor{{Name: "code", Type: model.FieldTypeText}}
}

func TestChangeLatestEditWinsWhenOlderResponseArrivesLast(t *testing.T) {
	gate := newGatedValidator("1", "12")
	gate.messages["1"] = "code must have at least 2 characters"

	s := session.New(codeFields())
	p := validation.NewPipeline(s, gate)
	ctx := context.Background()

	type result struct {
		applied bool
		err     error
	}
	first := make(chan result, 1)
	second := make(chan result, 1)

	go func() {
		applied, err := p.Change(ctx, 0, "code", "1")
		first <- result{applied, err}
	}()
	<-gate.started["1"]

	go func() {
		applied, err := p.Change(ctx, 0, "code", "12")
		second <- result{applied, err}
	}()
	<-gate.started["12"]

	close(gate.release["12"])
	r2 := <-second
	close(gate.release["1"])
	r1 := <-first

	if r2.err != nil || !r2.applied {
		t.Fatalf("second edit: applied=%v err=%v", r2.applied, r2.err)
	}
	if r1.err != nil || r1.applied {
		t.Fatalf("first edit should be discarded: applied=%v err=%v", r1.applied, r1.err)
	}
	if got := s.ErrorFor(0, "code"); got != "" {
		t.Fatalf("error = %q, want the result of the latest edit", got)
	}
}

func TestChangeInOrderCompletionKeepsLatestError(t *testing.T) {
	gate := newGatedValidator("ab", "a")
	gate.messages["a"] = "too short"

	s := session.New(codeFields())
	p := validation.NewPipeline(s, gate)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Change(ctx, 0, "code", "ab")
	}()
	<-gate.started["ab"]
	close(gate.release["ab"])
	<-done

	close(gate.release["a"])
	applied, err := p.Change(ctx, 0, "code", "a")
	if err != nil || !applied {
		t.Fatalf("applied=%v err=%v", applied, err)
	}
	if got := s.ErrorFor(0, "code"); got != "too short" {
		t.Fatalf("error = %q", got)
	}
}

func TestChangeWritesOnlyTheChangedField(t *testing.T) {
	fields := []model.FieldDescriptor{{Name: "name"}, {Name: "email"}}
	s := session.New(fields)
	v := validation.ValidatorFunc(func(context.Context, session.Entry) (validation.Result, error) {
		return validation.Result{Errors: map[string]string{"name": "bad name", "email": "bad email"}}, nil
	})
	p := validation.NewPipeline(s, v)

	if _, err := p.Change(context.Background(), 0, "name", "x"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if diff := cmp.Diff(session.ErrorRecord{"name": "bad name"}, s.Errors()[0]); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestChangePropagatesValidatorAndSessionErrors(t *testing.T) {
	boom := errors.New("boom")
	s := session.New(codeFields())
	p := validation.NewPipeline(s, validation.ValidatorFunc(func(context.Context, session.Entry) (validation.Result, error) {
		return validation.Result{}, boom
	}))

	if _, err := p.Change(context.Background(), 0, "code", "x"); !errors.Is(err, boom) {
		t.Fatalf("expected validator error, got %v", err)
	}
	if _, err := p.Change(context.Background(), 3, "code", "x"); !errors.Is(err, session.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestValidateAllRequiresEveryEntry(t *testing.T) {
	s := session.New(codeFields())
	if _, err := s.AddEntry(); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.SetValue(0, "code", "ok"); err != nil {
		t.Fatalf("set: %v", err)
	}

	var order []string
	v := validation.ValidatorFunc(func(_ context.Context, entry session.Entry) (validation.Result, error) {
		code, _ := entry["code"].(string)
		order = append(order, code)
		if code == "" {
			return validation.Result{Valid: false, Errors: map[string]string{"code": "required"}}, nil
		}
		return validation.Result{Valid: true}, nil
	})
	p := validation.NewPipeline(s, v)

	valid, records, err := p.ValidateAll(context.Background())
	if err != nil {
		t.Fatalf("validate all: %v", err)
	}
	if valid {
		t.Fatalf("partially valid form must be invalid")
	}
	if diff := cmp.Diff([]string{"ok", ""}, order); diff != "" {
		t.Fatalf("validation order mismatch (-want +got):\n%s", diff)
	}
	want := []session.ErrorRecord{{}, {"code": "required"}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, s.Errors()); diff != "" {
		t.Fatalf("session errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateAllEmptySession(t *testing.T) {
	s := session.New(codeFields())
	if err := s.RemoveEntry(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	p := validation.NewPipeline(s, nil)
	valid, _, err := p.ValidateAll(context.Background())
	if valid || !errors.Is(err, validation.ErrNoEntries) {
		t.Fatalf("valid=%v err=%v", valid, err)
	}
}

func TestChainFirstMessageWins(t *testing.T) {
	a := validation.ValidatorFunc(func(context.Context, session.Entry) (validation.Result, error) {
		return validation.Result{Valid: false, Errors: map[string]string{"name": "first", "age": ""}}, nil
	})
	b := validation.ValidatorFunc(func(context.Context, session.Entry) (validation.Result, error) {
		return validation.Result{Valid: true, Errors: map[string]string{"name": "second", "age": "too young"}}, nil
	})

	res, err := validation.Chain(a, nil, b).Validate(context.Background(), session.Entry{})
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	want := validation.Result{Valid: false, Errors: map[string]string{"name": "first", "age": "too young"}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("chain result mismatch (-want +got):\n%s", diff)
	}
}
