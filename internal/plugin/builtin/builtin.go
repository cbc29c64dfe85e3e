// Package builtin provides the compiled-in plugin units: factorial, power,
// square, square_root and trig.
package builtin

import (
	"github.com/dshills/calcshell/internal/calc"
	"github.com/dshills/calcshell/internal/plugin"
)

// Units returns every compiled-in unit.
func Units() []plugin.Plugin {
	return []plugin.Plugin{Factorial(), Power(), Square(), SquareRoot(), Trig()}
}

// Register adds every compiled-in unit to c.
func Register(c *plugin.Catalog) error {
	for _, u := range Units() {
		if err := c.Register(u); err != nil {
			return err
		}
	}
	return nil
}

// Factorial contributes the factorial operation. Operands must be integer
// literals.
func Factorial() plugin.Plugin {
	return &plugin.Unit{
		UnitName: "factorial",
		Ops: []plugin.Operation{{
			Name:        "factorial",
			Description: "factorial <n>: product 1*2*...*n of a non-negative integer",
			Arity:       1,
			Integer:     true,
			Fn:          unary(calc.Factorial),
		}},
	}
}

// Power contributes power under its own plugin name. Loading it rebinds
// the power command with the same semantics as the built-in.
func Power() plugin.Plugin {
	return &plugin.Unit{
		UnitName: "power",
		Ops: []plugin.Operation{{
			Name:        "power",
			Description: "power <base> <exponent>: base raised to exponent",
			Arity:       2,
			Fn: func(args ...float64) (float64, error) {
				return calc.Power(args[0], args[1])
			},
		}},
	}
}

// Square contributes the square operation.
func Square() plugin.Plugin {
	return &plugin.Unit{
		UnitName: "square",
		Ops: []plugin.Operation{{
			Name:        "square",
			Description: "square <x>: x * x",
			Arity:       1,
			Fn:          unary(total(func(x float64) float64 { return x * x })),
		}},
	}
}

// SquareRoot contributes the square_root operation.
func SquareRoot() plugin.Plugin {
	return &plugin.Unit{
		UnitName: "square_root",
		Ops: []plugin.Operation{{
			Name:        "square_root",
			Description: "square_root <x>: square root of a non-negative number",
			Arity:       1,
			Fn:          unary(calc.SquareRoot),
		}},
	}
}

// Trig contributes sine, cosine and tangent over degrees.
func Trig() plugin.Plugin {
	return &plugin.Unit{
		UnitName: "trig",
		Ops: []plugin.Operation{
			{
				Name:        "sine",
				Description: "sine <degrees>",
				Arity:       1,
				Fn:          unary(total(calc.Sine)),
			},
			{
				Name:        "cosine",
				Description: "cosine <degrees>",
				Arity:       1,
				Fn:          unary(total(calc.Cosine)),
			},
			{
				Name:        "tangent",
				Description: "tangent <degrees>: undefined at odd multiples of 90",
				Arity:       1,
				Fn:          unary(calc.Tangent),
			},
		},
	}
}

func unary(fn func(float64) (float64, error)) plugin.Func {
	return func(args ...float64) (float64, error) {
		return fn(args[0])
	}
}

func total(fn func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) {
		return fn(x), nil
	}
}
