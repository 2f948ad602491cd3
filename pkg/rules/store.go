package rules

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formkit/pkg/condition"
	"github.com/goliatone/go-formkit/pkg/logging"
)

// DefaultBasePath is the collection path of the rule catalog.
const DefaultBasePath = "/validation-rules"

// Transport is the generic REST client the store talks through. body is
// JSON encoded when non-nil; out receives the decoded response when
// non-nil.
type Transport interface {
	Get(ctx context.Context, path string, body, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, body, out any) error
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithBasePath overrides DefaultBasePath.
func WithBasePath(path string) StoreOption {
	return func(s *Store) {
		if trimmed := strings.TrimRight(strings.TrimSpace(path), "/"); trimmed != "" {
			s.base = trimmed
		}
	}
}

// WithClock sets the clock used to mint ids for non-numeric records.
func WithClock(clock Clock) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithStoreLogger attaches a logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logging.OrDiscard(logger)
	}
}

// Store is the rule catalog client. Reads are normalised with
// NormalizeOnRead and writes with NormalizeBeforeWrite after validation.
type Store struct {
	transport Transport
	base      string
	clock     Clock
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewStore builds a store over transport.
func NewStore(transport Transport, options ...StoreOption) *Store {
	s := &Store{
		transport: transport,
		base:      DefaultBasePath,
		clock:     defaultClock,
		validate:  NewValidator(),
		logger:    logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewValidator returns the validator used for rule writes. It registers the
// case-insensitive "severity" tag and the "condition" tag, which requires a
// parseable guard expression.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		switch normalizeSeverity(fl.Field().String()) {
		case SeverityHigh, SeverityMedium, SeverityLow, SeverityDefault:
			return true
		default:
			return false
		}
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		_, err := condition.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// Check validates rule the way every write does.
func (s *Store) Check(rule Rule) error {
	if err := s.validate.Struct(rule); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRule, rule.RuleCode, err)
	}
	return nil
}

func (s *Store) path(parts ...string) string {
	return strings.Join(append([]string{s.base}, parts...), "/")
}

func (s *Store) ready() error {
	if s == nil || s.transport == nil {
		return ErrNoTransport
	}
	return nil
}

// List returns every rule in the catalog.
func (s *Store) List(ctx context.Context) ([]Rule, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var records []Record
	if err := s.transport.Get(ctx, s.base, nil, &records); err != nil {
		return nil, fmt.Errorf("rules: list: %w", err)
	}
	out := make([]Rule, 0, len(records))
	for _, rec := range records {
		rule := normalizeOnRead(rec, s.clock)
		if rule.IDMinted {
			s.logger.Warn("rule id minted on read",
				"rule", rule.RuleCode,
				"source_id", rec.ID,
				"minted_id", rule.ID,
			)
		}
		out = append(out, rule)
	}
	return out, nil
}

// Get fetches one rule.
func (s *Store) Get(ctx context.Context, id int64) (Rule, error) {
	if err := s.ready(); err != nil {
		return Rule{}, err
	}
	var rec Record
	if err := s.transport.Get(ctx, s.path(formatID(id)), nil, &rec); err != nil {
		return Rule{}, fmt.Errorf("rules: get %d: %w", id, err)
	}
	return normalizeOnRead(rec, s.clock), nil
}

// Create validates and posts rule. A minted or zero id is not sent.
func (s *Store) Create(ctx context.Context, rule Rule) (Rule, error) {
	if err := s.ready(); err != nil {
		return Rule{}, err
	}
	if err := s.Check(rule); err != nil {
		return Rule{}, err
	}
	body := NormalizeBeforeWrite(rule)
	if rule.IDMinted {
		body.ID = nil
	}
	var rec Record
	if err := s.transport.Post(ctx, s.base, body, &rec); err != nil {
		return Rule{}, fmt.Errorf("rules: create %s: %w", rule.RuleCode, err)
	}
	return s.written(rec, body), nil
}

// Update replaces the rule stored under id. id may be an integer or a
// numeric string; anything else fails with ErrInvalidID before the
// transport is used.
func (s *Store) Update(ctx context.Context, id any, rule Rule) (Rule, error) {
	n, ok := ParseID(id)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %v", ErrInvalidID, id)
	}
	if rule.IDMinted {
		return Rule{}, fmt.Errorf("%w: %d", ErrMintedID, rule.ID)
	}
	if err := s.ready(); err != nil {
		return Rule{}, err
	}
	if err := s.Check(rule); err != nil {
		return Rule{}, err
	}
	rule.ID = n
	body := NormalizeBeforeWrite(rule)
	var rec Record
	if err := s.transport.Put(ctx, s.path(formatID(n)), body, &rec); err != nil {
		return Rule{}, fmt.Errorf("rules: update %d: %w", n, err)
	}
	return s.written(rec, body), nil
}

// Delete removes one rule.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.transport.Delete(ctx, s.path(formatID(id)), nil, nil); err != nil {
		return fmt.Errorf("rules: delete %d: %w", id, err)
	}
	return nil
}

// Test asks the backend to evaluate rule ruleID against sample.
func (s *Store) Test(ctx context.Context, ruleID int64, sample any) (TestResult, error) {
	if err := s.ready(); err != nil {
		return TestResult{}, err
	}
	var res TestResult
	body := map[string]any{"value": sample}
	if err := s.transport.Post(ctx, s.path(formatID(ruleID), "test"), body, &res); err != nil {
		return TestResult{}, fmt.Errorf("rules: test %d: %w", ruleID, err)
	}
	return res, nil
}

// written normalises the backend echo of a write. Backends that answer with
// an empty body get the sent record back.
func (s *Store) written(rec, sent Record) Rule {
	if rec.ID == nil && rec.RuleCode == "" {
		rec = sent
	}
	return normalizeOnRead(rec, s.clock)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
