package runner

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/jonwraymond/toolscript/engine"
	"github.com/jonwraymond/toolscript/ops"
)

// fakeEngine implements Engine for testing.
type fakeEngine struct {
	mu sync.Mutex

	// Configurable returns
	outcome  engine.Outcome
	err      error
	unusable bool

	// Call tracking
	sources    []string
	closeCalls int
}

func (f *fakeEngine) Execute(_ context.Context, source string) (engine.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, source)
	return f.outcome, f.err
}

func (f *fakeEngine) Usable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unusable && f.closeCalls == 0
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	return nil
}

func (f *fakeEngine) executeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sources)
}

func newFakeRunner(f *fakeEngine) *Runner {
	return newRunner("test-session", f, ops.NewRegistry(), zap.NewNop(), nil)
}

// newTestRunner builds a real runner with an "add" op and registers cleanup.
func newTestRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	r, err := NewBuilder(opts...).AddOp(addOp()).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func addOp() ops.Op {
	return ops.Op{
		Name:        "add",
		Description: "Adds two numbers",
		Params:      []string{"a", "b"},
		Func: ops.Binary(func(_ context.Context, a, b float64) (float64, error) {
			return a + b, nil
		}),
	}
}

func containsStr(s, substr string) bool {
	return strings.Contains(s, substr)
}
