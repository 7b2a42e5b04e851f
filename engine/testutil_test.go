package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/toolscript/ops"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type ctxKey struct{}

// testRegistry returns a registry with a small fixed set of ops.
func testRegistry(t *testing.T) *ops.Registry {
	t.Helper()
	r := ops.NewRegistry()
	require.NoError(t, r.Register(ops.Op{
		Name:        "add",
		Description: "Adds two numbers",
		Params:      []string{"a", "b"},
		Tags:        []string{"math"},
		Func: ops.Binary(func(_ context.Context, a, b float64) (float64, error) {
			return a + b, nil
		}),
	}))
	require.NoError(t, r.Register(ops.Op{
		Name:        "fail",
		Description: "Always fails",
		Func: func(context.Context, []any) (any, error) {
			return nil, errors.New("nope")
		},
	}))
	require.NoError(t, r.RegisterFunc("echo", func(_ context.Context, args []any) (any, error) {
		return args, nil
	}))
	require.NoError(t, r.RegisterFunc("boom", func(context.Context, []any) (any, error) {
		panic("kaboom")
	}))
	require.NoError(t, r.RegisterFunc("origin", func(context.Context, []any) (any, error) {
		return point{X: 3, Y: 4}, nil
	}))
	require.NoError(t, r.RegisterFunc("fromCtx", func(ctx context.Context, _ []any) (any, error) {
		v, _ := ctx.Value(ctxKey{}).(string)
		return v, nil
	}))
	require.NoError(t, r.RegisterFunc("badResult", func(context.Context, []any) (any, error) {
		return make(chan int), nil
	}))
	return r
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustRun(t *testing.T, s *Session, src string) string {
	t.Helper()
	out, err := s.Execute(context.Background(), src)
	require.NoError(t, err, "source: %s", src)
	return out.Value
}
