package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Edit identifies one SetValue call. It is handed to the validation pipeline
// so the eventual response can be reconciled against newer edits.
type Edit struct {
	EntryID uint64
	Index   int
	Field   string
	Seq     uint64
	// Values is the entry as it stood right after the edit.
	Values Entry
}

// Snapshot captures one entry for whole-record validation.
type Snapshot struct {
	EntryID uint64
	Index   int
	Seq     uint64
	Values  Entry
}

// slot keeps an entry and its error record together so the two sequences
// can never drift out of alignment.
type slot struct {
	id          uint64
	values      Entry
	errors      ErrorRecord
	lastEdit    map[string]uint64
	lastApplied map[string]uint64
}

// Session owns the entries and error records of one form. All mutation goes
// through its methods; it is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	id     string
	fields []model.FieldDescriptor
	names  map[string]struct{}
	slots  []*slot
	seq    uint64
	nextID uint64
	closed bool
}

// Option configures a new session.
type Option func(*config)

type config struct {
	id         string
	editRecord map[string]any
}

// WithEditRecord seeds the first entry from an existing record. Nested
// objects are flattened and only keys matching declared fields are applied.
func WithEditRecord(record map[string]any) Option {
	return func(c *config) {
		c.editRecord = record
	}
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(c *config) {
		c.id = id
	}
}

// New starts a session with one entry built from the field defaults and the
// optional edit record.
func New(fields []model.FieldDescriptor, options ...Option) *Session {
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	s := &Session{
		id:     cfg.id,
		fields: append([]model.FieldDescriptor(nil), fields...),
		names:  make(map[string]struct{}, len(fields)),
	}
	for _, field := range fields {
		s.names[field.Name] = struct{}{}
	}

	first := DefaultEntry(fields)
	if cfg.editRecord != nil {
		for key, value := range Flatten(cfg.editRecord) {
			if _, ok := s.names[key]; ok {
				first[key] = value
			}
		}
	}
	s.slots = append(s.slots, s.newSlot(first))
	return s
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// Fields returns the descriptors the session was created with.
func (s *Session) Fields() []model.FieldDescriptor {
	return append([]model.FieldDescriptor(nil), s.fields...)
}

func (s *Session) newSlot(values Entry) *slot {
	s.nextID++
	return &slot{
		id:          s.nextID,
		values:      values,
		errors:      make(ErrorRecord),
		lastEdit:    make(map[string]uint64),
		lastApplied: make(map[string]uint64),
	}
}

// Len reports the number of entries.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// AddEntry appends a default entry with an empty error record and returns
// its index.
func (s *Session) AddEntry() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.slots = append(s.slots, s.newSlot(DefaultEntry(s.fields)))
	return len(s.slots) - 1, nil
}

// RemoveEntry drops the entry and its error record at index. Removing the
// last remaining entry is allowed and leaves an empty session.
func (s *Session) RemoveEntry(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(s.slots) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.slots = append(s.slots[:index], s.slots[index+1:]...)
	return nil
}

// SetValue updates one field of one entry and returns the edit token used to
// reconcile the validation response for it.
func (s *Session) SetValue(index int, field string, value any) (Edit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Edit{}, ErrClosed
	}
	if index < 0 || index >= len(s.slots) {
		return Edit{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	if _, ok := s.names[field]; !ok {
		return Edit{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	sl := s.slots[index]
	sl.values[field] = deepCopy(value)
	s.seq++
	sl.lastEdit[field] = s.seq

	return Edit{
		EntryID: sl.id,
		Index:   index,
		Field:   field,
		Seq:     s.seq,
		Values:  sl.values.Clone(),
	}, nil
}

// Value returns the current value of field in the entry at index.
func (s *Session) Value(index int, field string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if index < 0 || index >= len(s.slots) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return deepCopy(s.slots[index].values[field]), nil
}

// Entries returns a deep copy of every entry in index order.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.values.Clone()
	}
	return out
}

// Errors returns a copy of every error record, index-aligned with Entries.
func (s *Session) Errors() []ErrorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ErrorRecord, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.errors.Clone()
	}
	return out
}

// ErrorFor returns the message currently recorded for field at index.
func (s *Session) ErrorFor(index int, field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.slots) {
		return ""
	}
	return s.slots[index].errors[field]
}

// Snapshots captures every entry together with the current edit sequence.
func (s *Session) Snapshots() ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]Snapshot, len(s.slots))
	for i, sl := range s.slots {
		out[i] = Snapshot{
			EntryID: sl.id,
			Index:   i,
			Seq:     s.seq,
			Values:  sl.values.Clone(),
		}
	}
	return out, nil
}

// ApplyFieldError records message for the edited field unless a newer edit
// or a newer validation result already exists for that entry and field, or
// the entry has been removed. It reports whether the message was written.
func (s *Session) ApplyFieldError(edit Edit, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slotByID(edit.EntryID)
	if sl == nil {
		return false
	}
	return sl.apply(edit.Field, edit.Seq, message)
}

// ApplyRecord writes a whole-record validation result captured by snap.
// Fields edited after the snapshot keep their current error. It returns the
// number of fields written.
func (s *Session) ApplyRecord(snap Snapshot, record ErrorRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slotByID(snap.EntryID)
	if sl == nil {
		return 0
	}
	written := 0
	for _, field := range s.fields {
		if sl.apply(field.Name, snap.Seq, record[field.Name]) {
			written++
		}
	}
	return written
}

func (sl *slot) apply(field string, seq uint64, message string) bool {
	if sl.lastEdit[field] > seq || sl.lastApplied[field] > seq {
		return false
	}
	sl.lastApplied[field] = seq
	if message == "" {
		delete(sl.errors, field)
	} else {
		sl.errors[field] = message
	}
	return true
}

func (s *Session) slotByID(id uint64) *slot {
	if s.closed {
		return nil
	}
	for _, sl := range s.slots {
		if sl.id == id {
			return sl
		}
	}
	return nil
}

// Close destroys all entries and error records.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.slots = nil
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
