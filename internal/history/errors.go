package history

import (
	"errors"
	"fmt"
)

// History errors.
var (
	// ErrInvalidRecord is returned when a record fails validation.
	ErrInvalidRecord = errors.New("invalid history record")

	// ErrPersistence marks failures reading or writing the backing file.
	ErrPersistence = errors.New("history persistence failure")

	// ErrBadHeader is returned when the backing file has an unexpected header.
	ErrBadHeader = errors.New("unexpected history header")
)

// PersistenceError describes a failed load or save of the backing file.
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPersistence or matches the wrapped error.
func (e *PersistenceError) Is(target error) bool {
	if target == ErrPersistence {
		return true
	}
	return errors.Is(e.Err, target)
}
