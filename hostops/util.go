package hostops

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/toolscript/ops"
)

// MaxFibonacci is the largest n accepted by the fibonacci op. fib(78) is the
// last value exactly representable as a script number.
const MaxFibonacci = 78

// MaxSleep caps the sleep op.
const MaxSleep = 10 * time.Second

// Util returns uuid, fibonacci, now and sleep.
func Util() []ops.Op {
	return []ops.Op{
		{
			Name:        "uuid",
			Description: "Generate a random UUID",
			Tags:        []string{"util", "id", "random"},
			Func: ops.Nullary(func(context.Context) (string, error) {
				return uuid.NewString(), nil
			}),
		},
		{
			Name:        "fibonacci",
			Description: "Compute the nth Fibonacci number",
			Params:      []string{"n"},
			Tags:        []string{"util", "math", "sequence"},
			Func:        ops.Unary(fibonacci),
		},
		{
			Name:        "now",
			Description: "Current time as an RFC 3339 string",
			Tags:        []string{"util", "time", "clock"},
			Func: ops.Nullary(func(context.Context) (string, error) {
				return time.Now().UTC().Format(time.RFC3339Nano), nil
			}),
		},
		{
			Name:        "sleep",
			Description: "Block for ms milliseconds",
			Params:      []string{"ms"},
			Tags:        []string{"util", "time", "delay"},
			Notes:       "Returns early with an error when the run is cancelled.",
			Func:        ops.Unary(sleep),
		},
	}
}

func fibonacci(_ context.Context, n int) (int64, error) {
	if n < 0 || n > MaxFibonacci {
		return 0, fmt.Errorf("n must be between 0 and %d, got %d", MaxFibonacci, n)
	}
	var a, b int64 = 0, 1
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return a, nil
}

func sleep(ctx context.Context, ms int) (int, error) {
	d := time.Duration(ms) * time.Millisecond
	if d < 0 || d > MaxSleep {
		return 0, fmt.Errorf("ms must be between 0 and %d", MaxSleep.Milliseconds())
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return ms, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
