package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseReal parses a token as a real number.
// NaN and empty tokens are rejected.
func ParseReal(token string) (float64, error) {
	s := strings.TrimSpace(token)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, token)
	}
	return v, nil
}

// ParseInteger parses a token as a base-10 integer literal.
// Float syntax ("5.0", "1e3") is rejected.
func ParseInteger(token string) (int64, error) {
	s := strings.TrimSpace(token)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, token)
	}
	return v, nil
}

// Coerce converts a value of any supported type to float64.
// Strings are parsed with ParseReal.
func Coerce(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, fmt.Errorf("%w: NaN", ErrInvalidArgument)
		}
		return n, nil
	case float32:
		return Coerce(float64(n))
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		return ParseReal(n)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidArgument, v)
	}
}

// CoerceInt converts a value of any supported type to an integer.
// Integral floats are accepted; strings must be integer literals.
func CoerceInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case float32:
		return CoerceInt(float64(n))
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidArgument, FormatOperand(n))
		}
		if n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidArgument, FormatOperand(n))
		}
		return int64(n), nil
	case string:
		return ParseInteger(n)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidArgument, v)
	}
}
