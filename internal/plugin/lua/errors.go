package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNotTable is returned when a script does not return a table.
	ErrNotTable = errors.New("plugin script must return a table")

	// ErrNotNumber is returned when a plugin function returns a non-number.
	ErrNotNumber = errors.New("plugin function must return a number")
)
