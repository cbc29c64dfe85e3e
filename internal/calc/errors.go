package calc

import "errors"

// Operation errors.
var (
	// ErrInvalidArgument is returned when an operand cannot be coerced to the
	// required numeric type or fails type-specific validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDivisionByZero is returned by Divide when the divisor is zero.
	ErrDivisionByZero = errors.New("Cannot divide by zero")

	// ErrNegativeRadicand is returned by SquareRoot for negative input.
	ErrNegativeRadicand = errors.New("Cannot calculate the square root of a negative number")

	// ErrUndefined is returned when a function has no value at the given point.
	ErrUndefined = errors.New("undefined")

	// ErrDomain is returned when a result is not a real number.
	ErrDomain = errors.New("result is not a real number")
)
