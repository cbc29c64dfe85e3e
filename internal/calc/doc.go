// Package calc provides the calculator's operation library.
//
// Every operation is a pure function over float64 operands. Operations that
// have a failure mode return an error wrapping one of the package sentinels
// (ErrDivisionByZero, ErrNegativeRadicand, ErrInvalidArgument, ErrUndefined,
// ErrDomain), so callers can classify failures with errors.Is.
//
// Operands entered at the prompt arrive as text. ParseReal and ParseInteger
// turn a token into a number; Coerce and CoerceInt do the same for values of
// arbitrary Go type. FormatResult and FormatOperand render numbers for
// display and persistence.
package calc
