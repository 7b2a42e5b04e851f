package ops

import (
	"context"
	"encoding/json"
	"fmt"
)

// Nullary adapts a function taking no script arguments. Extra arguments are
// ignored.
func Nullary[R any](fn func(ctx context.Context) (R, error)) Func {
	return func(ctx context.Context, _ []any) (any, error) {
		return fn(ctx)
	}
}

// Unary adapts a function of one typed argument. The script value is decoded
// into A through its JSON form; a missing argument decodes as null.
func Unary[A, R any](fn func(ctx context.Context, a A) (R, error)) Func {
	return func(ctx context.Context, args []any) (any, error) {
		a, err := Arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a)
	}
}

// Binary adapts a function of two typed arguments.
func Binary[A, B, R any](fn func(ctx context.Context, a A, b B) (R, error)) Func {
	return func(ctx context.Context, args []any) (any, error) {
		a, err := Arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := Arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a, b)
	}
}

// Variadic adapts a function whose arguments all share type A.
func Variadic[A, R any](fn func(ctx context.Context, args []A) (R, error)) Func {
	return func(ctx context.Context, args []any) (any, error) {
		typed := make([]A, len(args))
		for i := range args {
			v, err := Arg[A](args, i)
			if err != nil {
				return nil, err
			}
			typed[i] = v
		}
		return fn(ctx, typed)
	}
}

// Arg decodes args[i] into T. An index past the end decodes JSON null, which
// leaves T at its zero value.
func Arg[T any](args []any, i int) (T, error) {
	var out T
	var v any
	if i < len(args) {
		v = args[i]
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return out, &ArgError{Index: i, Err: err}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &ArgError{Index: i, Err: fmt.Errorf("want %T: %w", out, err)}
	}
	return out, nil
}
