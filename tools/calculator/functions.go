package calculator

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

func unary(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s expects a number, got %T", name, args[0])
		}
		return fn(v), nil
	}
}

func variadic(name string, fn func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s expects at least 1 argument", name)
		}
		ret, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s expects numbers, got %T", name, args[0])
		}
		for _, arg := range args[1:] {
			v, ok := arg.(float64)
			if !ok {
				return nil, fmt.Errorf("%s expects numbers, got %T", name, arg)
			}
			ret = fn(ret, v)
		}
		return ret, nil
	}
}

// Functions available inside expressions
var Functions = map[string]govaluate.ExpressionFunction{
	"abs":   unary("abs", math.Abs),
	"ceil":  unary("ceil", math.Ceil),
	"floor": unary("floor", math.Floor),
	"round": unary("round", math.Round),
	"sqrt":  unary("sqrt", math.Sqrt),
	"min":   variadic("min", math.Min),
	"max":   variadic("max", math.Max),
}

// Constants are predefined parameters, caller params with the same name win
var Constants = map[string]interface{}{
	"pi":  math.Pi,
	"e":   math.E,
	"phi": math.Phi,
}
