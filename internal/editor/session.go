// Package editor implements the form editing and synchronization
// engine: one Session per open form, owning the editing context for
// the subject currently displayed and guaranteeing that edits are
// persisted when the subject changes or the form closes, without an
// explicit save action.
//
// A Session is single-writer by construction: all calls are expected
// from the goroutine that owns the UI event loop. The only external
// interaction is with the RecordStore, and a save for an outgoing
// subject always completes before the next subject's data becomes the
// active context, so rapid subject switching can never interleave two
// live contexts.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kardex-app/kardex/internal/record"
	"github.com/kardex-app/kardex/internal/storage"
)

// State describes the lifecycle position of a session.
type State int

const (
	// StateEmpty means no editing context exists.
	StateEmpty State = iota
	// StateLoaded means a subject's record is loaded and unmodified.
	StateLoaded
	// StateEditing means the live record has received at least one
	// field change since load (it may still equal the baseline).
	StateEditing
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for background autosave failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithDiagnostics registers a callback invoked with every swallowed
// background save failure. Navigation is never blocked on these, but
// they stay observable for tests and UI badges.
func WithDiagnostics(fn func(subject string, err error)) Option {
	return func(s *Session) { s.diag = fn }
}

// WithSavedNotifier registers a callback fired after every successful
// persist, for transient "saved" feedback in the view layer.
func WithSavedNotifier(fn func(subject string)) Option {
	return func(s *Session) { s.onSaved = fn }
}

// Session binds one form to at most one editing context: a subject, a
// live record, and the baseline snapshot of the last known-persisted
// state. The baseline only ever advances through a fresh load or a
// successful persist.
type Session struct {
	def    record.FormDef
	store  storage.RecordStore
	logger *slog.Logger

	diag    func(subject string, err error)
	onSaved func(subject string)

	state    State
	subject  string
	rec      *record.Record
	baseline record.Snapshot
	lastErr  error
}

// NewSession creates a session for one form. The store must be ready
// for use; the session performs no I/O until Enter.
func NewSession(def record.FormDef, store storage.RecordStore, opts ...Option) *Session {
	s := &Session{
		def:    def,
		store:  store,
		logger: slog.Default(),
		state:  StateEmpty,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enter makes subject the active editing context.
//
// Entering the already-active subject is a no-op and keeps pending
// edits. Otherwise any existing context is left first (autosaving the
// outgoing subject), then the new subject's record is loaded. A
// missing record yields a fresh empty one; any other load failure
// leaves the session Empty and is returned, and the form must not
// open for editing.
func (s *Session) Enter(ctx context.Context, subject string) error {
	if subject == "" {
		return fmt.Errorf("subject id is required")
	}
	if s.state != StateEmpty && s.subject == subject {
		return nil
	}
	if s.state != StateEmpty {
		s.Leave(ctx)
	}

	rec, err := s.loadRecord(ctx, subject)
	if err != nil {
		s.lastErr = err
		return err
	}

	s.subject = subject
	s.rec = rec
	s.baseline = record.Capture(s.def, rec)
	s.state = StateLoaded
	s.lastErr = nil
	return nil
}

func (s *Session) loadRecord(ctx context.Context, subject string) (*record.Record, error) {
	fields, err := s.store.LoadRecord(ctx, s.def.Name, subject)
	if errors.Is(err, storage.ErrNotFound) {
		return record.New(s.def, subject), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s record for %s: %w", s.def.Name, subject, err)
	}
	// DecodeField clamps selections to the current vocabulary, so
	// records written under an older vocabulary load cleanly.
	return record.FromFields(s.def, subject, fields), nil
}

// SetField stores a scalar field change in the live record. Select
// fields are routed through SetSelection so the exclusivity rules
// apply. Purely in-memory: no store interaction happens here.
func (s *Session) SetField(key string, v record.Value) error {
	fd, err := s.editableField(key)
	if err != nil {
		return err
	}
	if fd.Kind == record.KindSelect {
		return s.SetSelection(key, v.Sel)
	}
	if v.Kind != fd.Kind {
		return fmt.Errorf("field %s: value kind %s does not match field kind %s", key, v.Kind, fd.Kind)
	}
	s.rec.Set(key, v)
	s.state = StateEditing
	return nil
}

// SetSelection applies a proposed selection to a group field. The
// proposal is normalized against the immediately prior accepted
// selection, so several toggles before a save each re-normalize.
func (s *Session) SetSelection(key string, proposed record.Selection) error {
	fd, err := s.editableField(key)
	if err != nil {
		return err
	}
	if fd.Kind != record.KindSelect || fd.Group == nil {
		return fmt.Errorf("field %s is not a selection group", key)
	}

	old := record.NewSelection()
	if cur, ok := s.rec.Value(key); ok && cur.Sel != nil {
		old = cur.Sel
	}
	accepted := fd.Group.Normalize(old, proposed)
	s.rec.Set(key, record.SelectValue(accepted))
	s.state = StateEditing
	return nil
}

// Toggle flips one label of a group field, the way a checkbox row in
// a form behaves, and normalizes the result.
func (s *Session) Toggle(key, label string) error {
	fd, err := s.editableField(key)
	if err != nil {
		return err
	}
	if fd.Kind != record.KindSelect || fd.Group == nil {
		return fmt.Errorf("field %s is not a selection group", key)
	}

	old := record.NewSelection()
	if cur, ok := s.rec.Value(key); ok && cur.Sel != nil {
		old = cur.Sel
	}
	proposed := old.Clone()
	if proposed.Has(label) {
		proposed.Remove(label)
	} else {
		proposed.Add(label)
	}
	return s.SetSelection(key, proposed)
}

func (s *Session) editableField(key string) (record.FieldDef, error) {
	if s.state == StateEmpty {
		return record.FieldDef{}, fmt.Errorf("no active editing context")
	}
	fd, ok := s.def.Field(key)
	if !ok {
		return record.FieldDef{}, fmt.Errorf("form %s has no field %s", s.def.Name, key)
	}
	return fd, nil
}

// Save persists the live record if and only if it differs from the
// baseline. On success the current snapshot becomes the new baseline
// and the saved notifier fires. On failure the baseline is untouched,
// so the dirty state survives and a retry remains possible.
func (s *Session) Save(ctx context.Context) error {
	if s.state == StateEmpty {
		return nil
	}
	current := record.Capture(s.def, s.rec)
	if !record.IsDirty(current, s.baseline) {
		return nil
	}

	fields := record.ToFields(s.def, s.rec)
	if err := s.store.UpsertRecord(ctx, s.def.Name, s.subject, fields); err != nil {
		err = fmt.Errorf("save %s record for %s: %w", s.def.Name, s.subject, err)
		s.lastErr = err
		return err
	}

	s.baseline = current
	s.lastErr = nil
	if s.onSaved != nil {
		s.onSaved(s.subject)
	}
	return nil
}

// Leave tears down the editing context when the subject is about to
// change or the form is closing. A dirty record is autosaved first;
// a save failure here is logged and reported to the diagnostics
// callback but never propagated, because blocking a navigation on a
// failed background save would strand the user.
func (s *Session) Leave(ctx context.Context) {
	if s.state == StateEmpty {
		return
	}
	subject := s.subject
	if err := s.Save(ctx); err != nil {
		s.logger.Warn("autosave on leave failed",
			"form", s.def.Name,
			"subject", subject,
			"error", err)
		if s.diag != nil {
			s.diag(subject, err)
		}
	}
	s.reset()
}

// Done is the explicit save-and-close path. Unlike Leave, a save
// failure is returned to the caller and the context is kept so the
// user can retry or discard deliberately.
func (s *Session) Done(ctx context.Context) error {
	if s.state == StateEmpty {
		return nil
	}
	if err := s.Save(ctx); err != nil {
		return err
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.state = StateEmpty
	s.subject = ""
	s.rec = nil
	s.baseline = nil
	s.lastErr = nil
}

// IsDirty reports whether the live record differs from the baseline.
func (s *Session) IsDirty() bool {
	if s.state == StateEmpty {
		return false
	}
	return record.IsDirty(record.Capture(s.def, s.rec), s.baseline)
}

// LastError returns the most recent load or explicit-save error, nil
// after a successful load or save.
func (s *Session) LastError() error {
	return s.lastErr
}

// Subject returns the active subject id, empty when no context exists.
func (s *Session) Subject() string {
	return s.subject
}

// State returns the session state.
func (s *Session) State() State {
	return s.state
}

// Record returns the live record, nil when no context exists. Callers
// must treat it as read-only and go through SetField/SetSelection for
// mutations, or dirty tracking breaks down.
func (s *Session) Record() *record.Record {
	return s.rec
}

// Form returns the form definition this session edits.
func (s *Session) Form() record.FormDef {
	return s.def
}
