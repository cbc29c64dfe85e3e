package history

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/calcshell/internal/calc"
)

// NoOperand marks an absent second operand.
var NoOperand = math.NaN()

// Record is one logged calculation.
type Record struct {
	Operation string
	A         float64
	B         float64 // NoOperand for single-operand operations
	Result    float64
}

// NewRecord creates a record for a two-operand calculation.
func NewRecord(op string, a, b, result float64) Record {
	return Record{Operation: op, A: a, B: b, Result: result}
}

// NewUnaryRecord creates a record for a single-operand calculation.
func NewUnaryRecord(op string, a, result float64) Record {
	return Record{Operation: op, A: a, B: NoOperand, Result: result}
}

// HasB reports whether the record carries a second operand.
func (r Record) HasB() bool {
	return !math.IsNaN(r.B)
}

// Validate checks that the record can be persisted.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Operation) == "":
		return fmt.Errorf("%w: missing operation", ErrInvalidRecord)
	case math.IsNaN(r.A):
		return fmt.Errorf("%w: missing operand a", ErrInvalidRecord)
	case math.IsNaN(r.Result):
		return fmt.Errorf("%w: missing result", ErrInvalidRecord)
	}
	return nil
}

// Valid reports whether Validate succeeds.
func (r Record) Valid() bool {
	return r.Validate() == nil
}

// Fields returns the record's CSV fields in header order.
func (r Record) Fields() []string {
	b := ""
	if r.HasB() {
		b = calc.FormatOperand(r.B)
	}
	return []string{r.Operation, calc.FormatOperand(r.A), b, calc.FormatResult(r.Result)}
}

// Equal reports whether two records hold the same values.
// Absent operands compare equal to each other.
func (r Record) Equal(o Record) bool {
	sameB := r.B == o.B || (!r.HasB() && !o.HasB())
	return r.Operation == o.Operation && r.A == o.A && sameB && r.Result == o.Result
}

// String returns a one-line rendering of the record.
func (r Record) String() string {
	f := r.Fields()
	if !r.HasB() {
		return fmt.Sprintf("%s %s = %s", f[0], f[1], f[3])
	}
	return fmt.Sprintf("%s %s %s = %s", f[0], f[1], f[2], f[3])
}
