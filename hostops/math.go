package hostops

import (
	"context"
	"errors"

	"github.com/jonwraymond/toolscript/ops"
)

// ErrDivideByZero is returned by the divide op.
var ErrDivideByZero = errors.New("division by zero")

// Math returns add, subtract, multiply, divide and sum.
func Math() []ops.Op {
	return []ops.Op{
		{
			Name:        "add",
			Description: "Add two numbers",
			Params:      []string{"a", "b"},
			Tags:        []string{"math", "arithmetic"},
			Func: ops.Binary(func(_ context.Context, a, b float64) (float64, error) {
				return a + b, nil
			}),
		},
		{
			Name:        "subtract",
			Description: "Subtract b from a",
			Params:      []string{"a", "b"},
			Tags:        []string{"math", "arithmetic"},
			Func: ops.Binary(func(_ context.Context, a, b float64) (float64, error) {
				return a - b, nil
			}),
		},
		{
			Name:        "multiply",
			Description: "Multiply two numbers",
			Params:      []string{"a", "b"},
			Tags:        []string{"math", "arithmetic"},
			Func: ops.Binary(func(_ context.Context, a, b float64) (float64, error) {
				return a * b, nil
			}),
		},
		{
			Name:        "divide",
			Description: "Divide a by b",
			Params:      []string{"a", "b"},
			Tags:        []string{"math", "arithmetic"},
			Notes:       "Throws when b is zero.",
			Func: ops.Binary(func(_ context.Context, a, b float64) (float64, error) {
				if b == 0 {
					return 0, ErrDivideByZero
				}
				return a / b, nil
			}),
		},
		{
			Name:        "sum",
			Description: "Sum any number of numbers",
			Params:      []string{"values"},
			Tags:        []string{"math", "aggregate"},
			Func: ops.Variadic(func(_ context.Context, values []float64) (float64, error) {
				var total float64
				for _, v := range values {
					total += v
				}
				return total, nil
			}),
		},
	}
}
