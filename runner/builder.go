package runner

import (
	"fmt"

	"github.com/jonwraymond/toolscript/engine"
	"github.com/jonwraymond/toolscript/ops"
)

// Builder collects configuration and op registrations and produces
// Runners. A Builder may Build any number of independent Runners; each gets
// its own session and op registry.
//
// Builder is not safe for concurrent mutation. Build may be called
// concurrently once registration is finished.
type Builder struct {
	cfg Config
	ops []ops.Op
}

// NewBuilder creates a builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(&b.cfg)
	}
	return b
}

// AddOp registers a host op. Invalid ops are reported by Build.
func (b *Builder) AddOp(op ops.Op) *Builder {
	b.ops = append(b.ops, op)
	return b
}

// AddOps registers several host ops.
func (b *Builder) AddOps(list ...ops.Op) *Builder {
	b.ops = append(b.ops, list...)
	return b
}

// AddFunc registers fn as a host op named name.
func (b *Builder) AddFunc(name string, fn ops.Func) *Builder {
	return b.AddOp(ops.Op{Name: name, Func: fn})
}

// Build creates a Runner with a fresh session.
// Returns ErrConfiguration if the configuration or any op registration is
// invalid.
func (b *Builder) Build() (*Runner, error) {
	cfg := b.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	reg := ops.NewRegistry()
	for _, op := range b.ops {
		if err := reg.Register(op); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}

	id := newSessionID()
	logger := cfg.Logger.With(sessionField(id))
	metrics := cfg.Metrics

	session, err := engine.New(engine.Config{
		Ops:              reg,
		Logger:           logger,
		MaxCallStackSize: cfg.MaxCallStackSize,
		MaxOpCalls:       cfg.MaxOpCalls,
		OnOpCall: func(c engine.OpCall) {
			metrics.observeOpCall(c.Op, c.OK())
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return newRunner(id, session, reg, logger, metrics), nil
}
