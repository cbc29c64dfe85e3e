package handler

import "fmt"

// ResultStatus indicates the outcome of a command.
type ResultStatus uint8

const (
	// StatusOK indicates successful execution.
	StatusOK ResultStatus = iota
	// StatusNoOp indicates nothing was executed.
	StatusNoOp
	// StatusError indicates an error occurred.
	StatusError
	// StatusQuit indicates the session should end.
	StatusQuit
)

// String returns a string representation of the status.
func (s ResultStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusError:
		return "error"
	case StatusQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Calculation is a computed value to be recorded in history.
type Calculation struct {
	// Operation is the command that produced the value.
	Operation string

	// Operands are the coerced inputs, in order.
	Operands []float64

	// Value is the result.
	Value float64
}

// Result represents the outcome of handling a command.
type Result struct {
	// Status indicates the result status.
	Status ResultStatus

	// Error contains any error that occurred.
	Error error

	// Message is text for display. Multi-line output such as tables goes
	// here too.
	Message string

	// Calculation is set when the command computed a value.
	Calculation *Calculation
}

// IsOK returns true if the result indicates success.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// IsError returns true if the result indicates an error.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// IsQuit returns true if the session should end.
func (r Result) IsQuit() bool {
	return r.Status == StatusQuit
}

// Success creates a successful result.
func Success() Result {
	return Result{Status: StatusOK}
}

// SuccessWithMessage creates a successful result with a message.
func SuccessWithMessage(msg string) Result {
	return Result{Status: StatusOK, Message: msg}
}

// Computed creates a successful result carrying a calculation.
func Computed(op string, value float64, operands ...float64) Result {
	return Result{
		Status: StatusOK,
		Calculation: &Calculation{
			Operation: op,
			Operands:  operands,
			Value:     value,
		},
	}
}

// NoOp creates a no-operation result.
func NoOp() Result {
	return Result{Status: StatusNoOp}
}

// Error creates an error result.
func Error(err error) Result {
	return Result{Status: StatusError, Error: err}
}

// Errorf creates an error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Result{
		Status: StatusError,
		Error:  fmt.Errorf(format, args...),
	}
}

// Quit creates a result ending the session.
func Quit(msg string) Result {
	return Result{Status: StatusQuit, Message: msg}
}

// WithMessage returns a copy of the result with the specified message.
func (r Result) WithMessage(msg string) Result {
	r.Message = msg
	return r
}
