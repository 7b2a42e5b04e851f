package ops

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestArg(t *testing.T) {
	args := []any{int64(3), "hi", map[string]any{"x": int64(1), "y": 2.0}, []any{1.0, 2.0}}

	f, err := Arg[float64](args, 0)
	if err != nil || f != 3 {
		t.Errorf("Arg[float64] = %v, %v", f, err)
	}
	s, err := Arg[string](args, 1)
	if err != nil || s != "hi" {
		t.Errorf("Arg[string] = %v, %v", s, err)
	}
	p, err := Arg[point](args, 2)
	if err != nil || p != (point{X: 1, Y: 2}) {
		t.Errorf("Arg[point] = %v, %v", p, err)
	}
	xs, err := Arg[[]int](args, 3)
	if err != nil || !reflect.DeepEqual(xs, []int{1, 2}) {
		t.Errorf("Arg[[]int] = %v, %v", xs, err)
	}
	missing, err := Arg[string](args, 10)
	if err != nil || missing != "" {
		t.Errorf("Arg past end = %q, %v", missing, err)
	}
}

func TestArg_TypeMismatch(t *testing.T) {
	_, err := Arg[int]([]any{"seven"}, 0)
	var argErr *ArgError
	if !errors.As(err, &argErr) {
		t.Fatalf("Arg() error = %v, want *ArgError", err)
	}
	if argErr.Index != 0 {
		t.Errorf("Index = %d, want 0", argErr.Index)
	}
}

func TestAdapters(t *testing.T) {
	ctx := context.Background()

	nullary := Nullary(func(context.Context) (string, error) { return "ok", nil })
	if got, err := nullary(ctx, []any{"ignored"}); err != nil || got != "ok" {
		t.Errorf("Nullary = %v, %v", got, err)
	}

	unary := Unary(func(_ context.Context, s string) (int, error) { return len(s), nil })
	if got, err := unary(ctx, []any{"four"}); err != nil || got != 4 {
		t.Errorf("Unary = %v, %v", got, err)
	}

	binary := Binary(func(_ context.Context, a, b float64) (float64, error) { return a - b, nil })
	if got, err := binary(ctx, []any{int64(10), 2.5}); err != nil || got != 7.5 {
		t.Errorf("Binary = %v, %v", got, err)
	}
	if _, err := binary(ctx, []any{1.0, "x"}); err == nil {
		t.Error("Binary with bad second argument should fail")
	}

	variadic := Variadic(func(_ context.Context, xs []string) (string, error) {
		out := ""
		for _, x := range xs {
			out += x
		}
		return out, nil
	})
	if got, err := variadic(ctx, []any{"a", "b", "c"}); err != nil || got != "abc" {
		t.Errorf("Variadic = %v, %v", got, err)
	}
}

func TestAdapters_PropagateError(t *testing.T) {
	want := errors.New("nope")
	fn := Unary(func(context.Context, int) (int, error) { return 0, want })
	if _, err := fn(context.Background(), []any{1.0}); !errors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
}
