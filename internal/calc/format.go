package calc

import (
	"math"
	"strconv"
	"strings"
)

// FormatResult renders a computed value for display.
// Integral values keep one decimal place ("15.0") so results read as real
// numbers; infinities render as "inf" and "-inf".
func FormatResult(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return formatSpecial(v)
	}
	s := FormatOperand(v)
	if strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

// FormatOperand renders an operand in its shortest form ("10", "2.5").
// Very large and very small magnitudes use exponent notation.
func FormatOperand(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return formatSpecial(v)
	}
	if abs := math.Abs(v); abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatSpecial(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return "nan"
	}
}
