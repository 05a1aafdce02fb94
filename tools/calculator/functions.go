package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

var errArgs = errors.New("wrong number of arguments")

func unary(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: %w", name, errArgs)
		}
		v, err := toFloat(name, args[0])
		if err != nil {
			return nil, err
		}
		return fn(v), nil
	}
}

func binary(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: %w", name, errArgs)
		}
		a, err := toFloat(name, args[0])
		if err != nil {
			return nil, err
		}
		b, err := toFloat(name, args[1])
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

func variadic(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s: %w", name, errArgs)
		}
		ret, err := toFloat(name, args[0])
		if err != nil {
			return nil, err
		}
		for _, arg := range args[1:] {
			v, err := toFloat(name, arg)
			if err != nil {
				return nil, err
			}
			ret = fn(ret, v)
		}
		return ret, nil
	}
}

func toFloat(name string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%s: argument %v is not a number", name, v)
}

// Functions are the functions available in expressions
var Functions = map[string]govaluate.ExpressionFunction{
	"sqrt":  unary("sqrt", math.Sqrt),
	"cbrt":  unary("cbrt", math.Cbrt),
	"abs":   unary("abs", math.Abs),
	"floor": unary("floor", math.Floor),
	"ceil":  unary("ceil", math.Ceil),
	"round": unary("round", math.Round),
	"sin":   unary("sin", math.Sin),
	"cos":   unary("cos", math.Cos),
	"tan":   unary("tan", math.Tan),
	"asin":  unary("asin", math.Asin),
	"acos":  unary("acos", math.Acos),
	"atan":  unary("atan", math.Atan),
	"exp":   unary("exp", math.Exp),
	"ln":    unary("ln", math.Log),
	"log":   unary("log", math.Log10),
	"log2":  unary("log2", math.Log2),
	"pow":   binary("pow", math.Pow),
	"mod":   binary("mod", math.Mod),
	"hypot": binary("hypot", math.Hypot),
	"min":   variadic("min", math.Min),
	"max":   variadic("max", math.Max),
}
