package runner

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jonwraymond/toolscript/binding"
)

// DefaultPoolSize is used when NewPool is given a non-positive size.
const DefaultPoolSize = 4

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("runner pool is closed")

// Pool holds a fixed number of Runners built from one Builder, so
// independent runs can proceed in parallel. A runner is exclusively held
// between Acquire and Release.
//
// Each pooled runner keeps its own persistent state, so runs that go through
// the pool should not rely on globals left by earlier runs.
type Pool struct {
	builder *Builder
	runners chan *Runner
	size    int
	done    chan struct{}

	mu       sync.Mutex
	closed   bool
	replaced int

	// missing counts slots whose replacement failed to build. Acquire
	// rebuilds them before waiting.
	missing int
}

// PoolStats is a snapshot of pool occupancy.
type PoolStats struct {
	Size      int  `json:"size"`
	Available int  `json:"available"`
	InUse     int  `json:"inUse"`
	Missing   int  `json:"missing"`
	Replaced  int  `json:"replaced"`
	Closed    bool `json:"closed"`
}

// NewPool builds size runners from b.
func NewPool(b *Builder, size int) (*Pool, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}

	p := &Pool{
		builder: b,
		runners: make(chan *Runner, size),
		size:    size,
		done:    make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		r, err := b.Build()
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		p.runners <- r
	}
	return p, nil
}

// Acquire takes a runner from the pool, waiting until one is free, ctx
// ends, or the pool is closed. When no runner is idle and a slot lost to a
// failed rebuild is pending, Acquire builds its runner instead of waiting and
// returns the build error if that fails again.
func (p *Pool) Acquire(ctx context.Context) (*Runner, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}

	select {
	case r := <-p.runners:
		return r, nil
	default:
	}
	if r, err := p.rebuildMissing(); r != nil || err != nil {
		return r, err
	}

	select {
	case r := <-p.runners:
		return r, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns r to the pool. A runner that is no longer usable is closed
// and replaced with a freshly built one.
func (p *Pool) Release(r *Runner) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return r.Close()
	}

	if !r.Usable() {
		_ = r.Close()
		fresh, err := p.builder.Build()
		if err != nil {
			p.missing++
			p.logger().Error("failed to replace pooled runner", zap.Error(err), zap.Int("missing", p.missing))
			return err
		}
		p.replaced++
		r = fresh
	}

	select {
	case p.runners <- r:
		return nil
	default:
		return r.Close()
	}
}

// rebuildMissing builds a runner for one missing slot. It returns nil, nil
// when no slot is missing.
func (p *Pool) rebuildMissing() (*Runner, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if p.missing == 0 {
		return nil, nil
	}
	r, err := p.builder.Build()
	if err != nil {
		return nil, err
	}
	p.missing--
	p.replaced++
	return r, nil
}

func (p *Pool) logger() *zap.Logger {
	if l := p.builder.cfg.Logger; l != nil {
		return l
	}
	return zap.NewNop()
}

// Execute runs req on a pooled runner.
func (p *Pool) Execute(ctx context.Context, req Request) (Result, error) {
	r, err := p.Acquire(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = p.Release(r) }()
	return r.Execute(ctx, req)
}

// Run executes body with bs bound on a pooled runner.
func (p *Pool) Run(ctx context.Context, body string, bs binding.Bindings) (string, error) {
	res, err := p.Execute(ctx, Request{Body: body, Bindings: bs})
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// Close closes the pool and every idle runner. Runners still held are closed
// when released.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)

	var errs []error
	for {
		select {
		case r := <-p.runners:
			errs = append(errs, r.Close())
		default:
			return errors.Join(errs...)
		}
	}
}

// Stats returns pool statistics.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	available := len(p.runners)
	return PoolStats{
		Size:      p.size,
		Available: available,
		InUse:     p.size - available - p.missing,
		Missing:   p.missing,
		Replaced:  p.replaced,
		Closed:    p.closed,
	}
}
