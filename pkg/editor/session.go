// Package editor implements the inline edit session over the active variant.
package editor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/versions"
)

// State is the edit session's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSaving
)

func (s State) String() (name string) {
	switch s {
	case StateIdle:
		name = "idle"
	case StateEditing:
		name = "editing"
	case StateSaving:
		name = "saving"
	default:
		name = fmt.Sprintf("State(%d)", int(s))
	}
	return name
}

// PreconditionError reports an operation invoked in a state that does not
// allow it. The session is left unchanged.
type PreconditionError struct {
	Op     string
	State  State
	Reason string
}

func (e *PreconditionError) Error() (msg string) {
	msg = fmt.Sprintf("cannot %s while %s: %s", e.Op, e.State, e.Reason)
	return msg
}

// Session is a single operator's edit session against a Directory.
type Session struct {
	dir      *versions.Directory
	baseline content.Bundle
	logger   *zap.Logger

	mu        sync.Mutex
	state     State
	variantID string
	buffer    *content.Overrides
	// pending is the last saved buffer, shown until the directory's feed
	// reports the same content for the variant.
	pending *content.Overrides
	err     error
}

// Option configures a Session.
type Option func(s *Session)

// WithLogger sets the session's logger.
func WithLogger(logger *zap.Logger) (opt Option) {
	opt = func(s *Session) {
		s.logger = logger
	}
	return opt
}

// NewSession creates an idle session editing variants of dir over baseline.
func NewSession(dir *versions.Directory, baseline content.Bundle, opts ...Option) (s *Session) {
	s = &Session{
		dir:      dir,
		baseline: baseline,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	dir.OnChange(s.reconcile)
	return s
}

// State returns the current state.
func (s *Session) State() (state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state = s.state
	return state
}

// Err returns the error of the last failed save, if the session has not
// since saved successfully or been cancelled.
func (s *Session) Err() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.err
	return err
}

// VariantID returns the id of the variant being edited, or "" when idle.
func (s *Session) VariantID() (id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return id
	}
	id = s.variantID
	return id
}

// Start snapshots the resolved content of the active variant into the edit
// buffer.
func (s *Session) Start() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		err = &PreconditionError{Op: "start editing", State: s.state, Reason: "a session is already in progress"}
		return err
	}

	active := s.dir.Active()
	if active == nil {
		err = &PreconditionError{Op: "start editing", State: s.state, Reason: "the baseline cannot be edited, select a variant first"}
		return err
	}

	resolved := content.Apply(s.baseline, &active.Content)
	buffer := content.FromBundle(resolved)

	s.state = StateEditing
	s.variantID = active.ID
	s.buffer = &buffer
	s.pending = nil
	s.err = nil

	s.logger.Debug("edit session started", zap.String("variant", active.ID))
	return err
}

// UpdateField merges partial into the edit buffer. Nothing is persisted.
func (s *Session) UpdateField(partial content.Overrides) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		err = &PreconditionError{Op: "update field", State: s.state, Reason: "no edit in progress"}
		return err
	}

	merged := s.buffer.Merge(partial)
	s.buffer = &merged
	return err
}

// Cancel discards the edit buffer. Resolved content reverts to whatever the
// directory currently reports.
func (s *Session) Cancel() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		err = &PreconditionError{Op: "cancel", State: s.state, Reason: "only an edit in progress can be cancelled"}
		return err
	}

	s.logger.Debug("edit session cancelled", zap.String("variant", s.variantID))
	s.reset()
	return err
}

// Save persists the edit buffer as the variant's content. On failure the
// session returns to editing with the buffer intact and the error is kept
// in Err.
func (s *Session) Save(ctx context.Context) (err error) {
	s.mu.Lock()
	if s.state != StateEditing {
		err = &PreconditionError{Op: "save", State: s.state, Reason: "no edit in progress"}
		s.mu.Unlock()
		return err
	}
	s.state = StateSaving
	id := s.variantID
	buffer := *s.buffer
	s.pending = &buffer
	s.mu.Unlock()

	// The feed may confirm the write before Update returns.
	err = s.dir.Update(ctx, id, versions.Patch{Content: &buffer})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateEditing
		s.pending = nil
		s.err = err
		s.logger.Warn("failed to save edits", zap.String("variant", id), zap.Error(err))
		return err
	}

	s.reset()
	s.err = nil
	if s.pending != nil && s.confirmedLocked(id, *s.pending) {
		s.pending = nil
	}
	s.logger.Info("saved edits", zap.String("variant", id))
	return err
}

// reset returns to idle without touching pending.
func (s *Session) reset() {
	s.state = StateIdle
	s.buffer = nil
	s.err = nil
}

// reconcile drops the pending buffer once the directory reflects it, or
// once a different variant becomes active.
func (s *Session) reconcile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || s.state != StateIdle {
		return
	}
	if s.confirmedLocked(s.variantID, *s.pending) {
		s.logger.Debug("saved edits confirmed by store", zap.String("variant", s.variantID))
		s.pending = nil
	}
}

// confirmedLocked compares resolved content, not raw overrides: storage may
// hand back an empty nested list as nil.
func (s *Session) confirmedLocked(id string, saved content.Overrides) (done bool) {
	active := s.dir.Active()
	if active == nil || active.ID != id {
		done = true
		return done
	}
	done = content.Equal(content.Apply(s.baseline, &active.Content), content.Apply(s.baseline, &saved))
	return done
}

// Resolver returns the resolver for the current state: baseline, active
// variant and, while editing, the edit buffer.
func (s *Session) Resolver() (r content.Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = s.dir.Resolver(s.baseline)
	switch {
	case s.state != StateIdle:
		// Diff against the variant being edited even if the selection moved.
		r.Active = nil
		if v := s.dir.Find(s.variantID); v != nil {
			r.Active = &v.Content
		}
		buffer := *s.buffer
		r.Edit = &buffer
	case s.pending != nil:
		pending := *s.pending
		r.Active = &pending
	}
	return r
}

// Resolve returns the content to display.
func (s *Session) Resolve() (resolved content.Bundle) {
	resolved = s.Resolver().Resolve()
	return resolved
}

// IsFieldModified reports whether field differs from the variant's saved
// value. It is always false outside an edit.
func (s *Session) IsFieldModified(field content.Field) (modified bool) {
	modified = s.Resolver().IsFieldModified(field)
	return modified
}

// ModifiedFields lists the modified fields in display order.
func (s *Session) ModifiedFields() (fields []content.Field) {
	fields = s.Resolver().ModifiedFields()
	return fields
}
