// Package privacy decides which personal and reference contact details a
// viewer may see.
package privacy

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Level is a disclosure level, ordered by increasing disclosure.
type Level string

// Disclosure levels.
const (
	// LevelNone shows no personal contact information.
	LevelNone Level = "none"
	// LevelPersonal shows the candidate's own contact details.
	LevelPersonal Level = "personal"
	// LevelFull additionally shows reference contact details.
	LevelFull Level = "full"
)

// ParseLevel parses a level name. Matching is case-insensitive.
func ParseLevel(s string) (level Level, err error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelNone:
		level = LevelNone
	case LevelPersonal:
		level = LevelPersonal
	case LevelFull:
		level = LevelFull
	default:
		level = LevelNone
		err = errors.Errorf("invalid privacy level %q: must be 'none', 'personal', or 'full'", s)
	}
	return level, err
}

// Next returns the following level in the none → personal → full → none cycle.
func (l Level) Next() (next Level) {
	switch l {
	case LevelNone:
		next = LevelPersonal
	case LevelPersonal:
		next = LevelFull
	default:
		next = LevelNone
	}
	return next
}

// Viewer is what the authentication collaborator knows about the caller.
type Viewer struct {
	Authenticated     bool
	CanViewReferences bool
}

// Visibility is the outcome of evaluating a requested level for a viewer.
type Visibility struct {
	Level                Level
	ShowPersonalContact  bool
	ShowReferenceContact bool
	ShowPersonalBlock    bool
}

// Evaluate clamps the requested level by authentication and derives the
// visibility flags. An unauthenticated viewer always gets LevelNone, whatever
// was requested.
func Evaluate(viewer Viewer, requested Level) (v Visibility) {
	effective := LevelNone
	if viewer.Authenticated {
		effective = requested
	}

	v.Level = effective
	v.ShowPersonalContact = effective == LevelPersonal || effective == LevelFull
	v.ShowReferenceContact = effective == LevelFull && viewer.CanViewReferences
	v.ShowPersonalBlock = v.ShowPersonalContact || v.ShowReferenceContact
	return v
}

// PreconditionError reports a level change the viewer is not allowed to make.
// The selection is left untouched when it is returned.
type PreconditionError struct {
	Requested Level
}

func (e *PreconditionError) Error() (msg string) {
	msg = fmt.Sprintf("privacy level %q requires an authenticated viewer", e.Requested)
	return msg
}

// Selector holds an operator's requested level.
type Selector struct {
	viewer    Viewer
	requested Level
}

// NewSelector creates a selector. The initial level is clamped like any other
// request, so a level read from an untrusted link cannot leak through.
func NewSelector(viewer Viewer, initial Level) (s *Selector) {
	s = &Selector{viewer: viewer, requested: LevelNone}
	if viewer.Authenticated {
		s.requested = initial
	}
	return s
}

// Level returns the effective level.
func (s *Selector) Level() (level Level) {
	level = Evaluate(s.viewer, s.requested).Level
	return level
}

// Visibility evaluates the current selection.
func (s *Selector) Visibility() (v Visibility) {
	v = Evaluate(s.viewer, s.requested)
	return v
}

// Cycle advances none → personal → full → none.
func (s *Selector) Cycle() (level Level, err error) {
	if !s.viewer.Authenticated {
		err = &PreconditionError{Requested: s.requested.Next()}
		level = LevelNone
		return level, err
	}
	s.requested = s.requested.Next()
	level = s.requested
	return level, err
}

// Set selects a level explicitly.
func (s *Selector) Set(level Level) (err error) {
	if !s.viewer.Authenticated && level != LevelNone {
		err = &PreconditionError{Requested: level}
		return err
	}
	s.requested = level
	return err
}
