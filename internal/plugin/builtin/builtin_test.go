package builtin

import (
	"errors"
	"math"
	"testing"

	"github.com/dshills/calcshell/internal/calc"
	"github.com/dshills/calcshell/internal/plugin"
)

func TestRegister(t *testing.T) {
	c := plugin.NewCatalog()
	if err := Register(c); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	want := []string{"factorial", "power", "square", "square_root", "trig"}
	got := c.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if err := Register(c); !errors.Is(err, plugin.ErrAlreadyRegistered) {
		t.Errorf("second Register() error = %v, want ErrAlreadyRegistered", err)
	}
}

func opByName(t *testing.T, p plugin.Plugin, name string) plugin.Operation {
	t.Helper()
	for _, op := range p.Operations() {
		if op.Name == name {
			return op
		}
	}
	t.Fatalf("%s has no operation %q", p.Name(), name)
	return plugin.Operation{}
}

func TestFactorial(t *testing.T) {
	op := opByName(t, Factorial(), "factorial")
	if !op.Integer || op.Arity != 1 {
		t.Errorf("factorial Integer=%v Arity=%d, want true 1", op.Integer, op.Arity)
	}

	tests := []struct {
		n    float64
		want float64
	}{
		{0, 1},
		{1, 1},
		{5, 120},
		{10, 3628800},
	}
	for _, tt := range tests {
		got, err := op.Fn(tt.n)
		if err != nil || got != tt.want {
			t.Errorf("factorial(%v) = %v, %v; want %v", tt.n, got, err, tt.want)
		}
	}

	if _, err := op.Fn(-1); !errors.Is(err, calc.ErrInvalidArgument) {
		t.Errorf("factorial(-1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestSquareRoot(t *testing.T) {
	op := opByName(t, SquareRoot(), "square_root")

	got, err := op.Fn(16)
	if err != nil || got != 4 {
		t.Errorf("square_root(16) = %v, %v; want 4", got, err)
	}
	if _, err := op.Fn(-4); !errors.Is(err, calc.ErrNegativeRadicand) {
		t.Errorf("square_root(-4) error = %v, want ErrNegativeRadicand", err)
	}
}

func TestTrig(t *testing.T) {
	unit := Trig()

	sine := opByName(t, unit, "sine")
	if got, _ := sine.Fn(30); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("sine(30) = %v, want 0.5", got)
	}

	cosine := opByName(t, unit, "cosine")
	if got, _ := cosine.Fn(60); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("cosine(60) = %v, want 0.5", got)
	}

	tangent := opByName(t, unit, "tangent")
	if got, err := tangent.Fn(45); err != nil || math.Abs(got-1) > 1e-9 {
		t.Errorf("tangent(45) = %v, %v; want 1", got, err)
	}
	if _, err := tangent.Fn(90); !errors.Is(err, calc.ErrUndefined) {
		t.Errorf("tangent(90) error = %v, want ErrUndefined", err)
	}
}

func TestPower(t *testing.T) {
	op := opByName(t, Power(), "power")
	if op.Arity != 2 {
		t.Errorf("power Arity = %d, want 2", op.Arity)
	}

	tests := []struct {
		base, exp, want float64
	}{
		{2, 3, 8},
		{5, 2, 25},
		{0, 3, 0},
		{5, 0, 1},
		{-2, 3, -8},
		{2, -2, 0.25},
		{10, 6, 1e6},
	}
	for _, tt := range tests {
		got, err := op.Fn(tt.base, tt.exp)
		if err != nil || got != tt.want {
			t.Errorf("power(%v, %v) = %v, %v; want %v", tt.base, tt.exp, got, err, tt.want)
		}
	}

	if _, err := op.Fn(-8, 0.5); !errors.Is(err, calc.ErrDomain) {
		t.Errorf("power(-8, 0.5) error = %v, want ErrDomain", err)
	}
}

func TestSquare(t *testing.T) {
	op := opByName(t, Square(), "square")

	tests := []struct {
		x, want float64
	}{
		{2, 4},
		{3, 9},
		{5.5, 30.25},
		{0, 0},
		{-3, 9},
		{-2.5, 6.25},
		{1e6, 1e12},
	}
	for _, tt := range tests {
		got, err := op.Fn(tt.x)
		if err != nil || got != tt.want {
			t.Errorf("square(%v) = %v, %v; want %v", tt.x, got, err, tt.want)
		}
	}
}
