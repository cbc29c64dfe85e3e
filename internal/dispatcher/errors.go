package dispatcher

import (
	"errors"
	"fmt"
)

// Dispatcher errors.
var (
	// ErrUnknownCommand indicates no handler is bound to the command name.
	ErrUnknownCommand = errors.New("Unknown command")

	// ErrTerminated indicates the dispatcher has executed quit.
	ErrTerminated = errors.New("dispatcher: session terminated")

	// ErrPanic indicates the handler panicked.
	ErrPanic = errors.New("dispatcher: handler panic")

	// ErrNoLoader indicates plugin loading is not configured.
	ErrNoLoader = errors.New("dispatcher: no plugin loader")
)

// LoadError reports a plugin that could not be loaded.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Error loading plugin '%s': %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
