package versions

import (
	"fmt"

	"github.com/pkg/errors"
)

// PersistenceError reports a failed store read or write. It is retryable by
// the operator and never leaves in-memory state changed.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() (msg string) {
	if e.ID == "" {
		msg = fmt.Sprintf("%s variant failed: %v", e.Op, e.Err)
		return msg
	}
	msg = fmt.Sprintf("%s variant %s failed: %v", e.Op, e.ID, e.Err)
	return msg
}

func (e *PersistenceError) Unwrap() (err error) {
	err = e.Err
	return err
}

// NotFoundError reports a variant id that does not resolve.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() (msg string) {
	msg = fmt.Sprintf("variant not found: %s", e.ID)
	return msg
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) (ok bool) {
	var nf *NotFoundError
	ok = errors.As(err, &nf)
	return ok
}

// IsPersistence reports whether err is or wraps a PersistenceError.
func IsPersistence(err error) (ok bool) {
	var pe *PersistenceError
	ok = errors.As(err, &pe)
	return ok
}

func persistenceError(op, id string, err error) (wrapped error) {
	wrapped = &PersistenceError{Op: op, ID: id, Err: err}
	return wrapped
}
