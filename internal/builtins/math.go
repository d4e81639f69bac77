package builtins

import (
	"math"

	"github.com/mcgru/gulfmex/internal/value"
)

func unary(name string, f func(float64) float64) *Builtin {
	return &Builtin{Name: name, Arity: 1, Fn: func(ctx *value.Context, args []value.Value) (value.Value, error) {
		n, err := value.ToNumber(args[0])
		if err != nil {
			return nil, err
		}
		return value.Number{V: f(n.V)}, nil
	}}
}

func binary(name string, f func(a, b float64) float64) *Builtin {
	return &Builtin{Name: name, Arity: 2, Fn: func(ctx *value.Context, args []value.Value) (value.Value, error) {
		a, err := value.ToNumber(args[0])
		if err != nil {
			return nil, err
		}
		b, err := value.ToNumber(args[1])
		if err != nil {
			return nil, err
		}
		return value.Number{V: f(a.V, b.V)}, nil
	}}
}

// MathBuiltins returns the numeric-only wrapper table Root() merges directly
// into the top-level builtin set, grounded on the original's
// MATH_FUNCTION_KEYWORDS: `KEYWORDS |= MATH_FUNCTION_KEYWORDS` merges every
// math name into the global keyword table rather than nesting it under a
// `math.` member-access namespace.
func MathBuiltins() map[string]*Builtin {
	return map[string]*Builtin{
		"abs":   unary("abs", math.Abs),
		"sign": unary("sign", func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return 0
			}
		}),
		"floor": unary("floor", math.Floor),
		"ceil":  unary("ceil", math.Ceil),
		"round": unary("round", math.Round),
		"trunc": unary("trunc", math.Trunc),
		"sqrt":  unary("sqrt", math.Sqrt),
		"cbrt":  unary("cbrt", math.Cbrt),
		"exp":   unary("exp", math.Exp),
		"log":   unary("log", math.Log),
		"log10": unary("log10", math.Log10),
		"log2":  unary("log2", math.Log2),
		"sin":   unary("sin", math.Sin),
		"cos":   unary("cos", math.Cos),
		"tan":   unary("tan", math.Tan),
		"asin":  unary("asin", math.Asin),
		"acos":  unary("acos", math.Acos),
		"atan":  unary("atan", math.Atan),
		"pow":   binary("pow", math.Pow),
		"min":   binary("min", math.Min),
		"max":   binary("max", math.Max),
		"atan2": binary("atan2", math.Atan2),
	}
}
