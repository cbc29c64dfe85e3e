package calc

import (
	"fmt"
	"math"
)

// TangentTolerance is the cosine magnitude below which Tangent treats the
// angle as an odd multiple of 90 degrees.
const TangentTolerance = 1e-12

// Add returns a + b.
func Add(a, b float64) float64 {
	return a + b
}

// Subtract returns a - b.
func Subtract(a, b float64) float64 {
	return a - b
}

// Multiply returns a * b.
func Multiply(a, b float64) float64 {
	return a * b
}

// Divide returns a / b.
// Returns ErrDivisionByZero if b is zero.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// Power returns base raised to exponent.
// Overflow yields an infinite result rather than an error. A base and
// exponent whose power is not real (e.g. (-8)^0.5) return ErrDomain.
func Power(base, exponent float64) (float64, error) {
	v := math.Pow(base, exponent)
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s ^ %s", ErrDomain, FormatOperand(base), FormatOperand(exponent))
	}
	return v, nil
}

// Factorial returns n! for a non-negative integral n.
// Results beyond the float64 range are +Inf.
func Factorial(n float64) (float64, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return 0, fmt.Errorf("%w: factorial requires an integer, got %s", ErrInvalidArgument, FormatOperand(n))
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: cannot calculate the factorial of a negative number", ErrInvalidArgument)
	}

	result := 1.0
	for i := 2.0; i <= n; i++ {
		result *= i
		if math.IsInf(result, 1) {
			break
		}
	}
	return result, nil
}

// FactorialOf coerces v with CoerceInt and returns its factorial.
func FactorialOf(v any) (float64, error) {
	n, err := CoerceInt(v)
	if err != nil {
		return 0, err
	}
	return Factorial(float64(n))
}

// SquareRoot returns the non-negative square root of x.
// Returns ErrNegativeRadicand if x is negative.
func SquareRoot(x float64) (float64, error) {
	if x < 0 {
		return 0, ErrNegativeRadicand
	}
	return math.Sqrt(x), nil
}

// Radians converts an angle in degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Sine returns the sine of an angle given in degrees.
func Sine(degrees float64) float64 {
	return math.Sin(Radians(degrees))
}

// Cosine returns the cosine of an angle given in degrees.
func Cosine(degrees float64) float64 {
	return math.Cos(Radians(degrees))
}

// Tangent returns the tangent of an angle given in degrees.
// Angles whose cosine is within TangentTolerance of zero (90, 270, ...)
// return ErrUndefined instead of a huge finite value.
func Tangent(degrees float64) (float64, error) {
	r := Radians(degrees)
	if math.Abs(math.Cos(r)) < TangentTolerance {
		return 0, fmt.Errorf("%w: tangent of %s degrees", ErrUndefined, FormatOperand(degrees))
	}
	return math.Tan(r), nil
}
