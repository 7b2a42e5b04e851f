package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonwraymond/toolscript/binding"
	"github.com/jonwraymond/toolscript/engine"
	"github.com/jonwraymond/toolscript/ops"
)

// Engine executes composed source. *engine.Session is the production
// implementation.
type Engine interface {
	Execute(ctx context.Context, source string) (engine.Outcome, error)
	Usable() bool
	Close() error
}

// Request is a single run.
type Request struct {
	// Body is the caller's script text, used verbatim.
	Body string

	// Bindings are exposed to Body as block-scoped constants.
	Bindings binding.Bindings
}

// Result is the outcome of a successful run.
type Result struct {
	// Value is the rendered completion value of Body.
	Value string `json:"value"`

	// Console holds console output from the run.
	Console []engine.LogEntry `json:"console,omitempty"`

	// OpCalls records every host op call made by the run.
	OpCalls []engine.OpCall `json:"opCalls,omitempty"`

	Duration time.Duration `json:"duration"`

	// SessionID identifies the runner that executed the run.
	SessionID string `json:"sessionId"`
}

// Runner binds host values into scripts and executes them in one
// persistent session. See the package documentation for the persistence
// contract.
//
// Runner is safe for concurrent use; runs are executed one at a time.
type Runner struct {
	id      string
	engine  Engine
	ops     *ops.Registry
	logger  *zap.Logger
	metrics *Metrics
	closed  atomic.Bool
}

func newRunner(id string, e Engine, reg *ops.Registry, logger *zap.Logger, m *Metrics) *Runner {
	m.sessionOpened()
	return &Runner{
		id:      id,
		engine:  e,
		ops:     reg,
		logger:  logger,
		metrics: m,
	}
}

// New builds a Runner with no host ops.
func New(opts ...Option) (*Runner, error) {
	return NewBuilder(opts...).Build()
}

// Run executes body with bs bound and returns the rendered result.
func (r *Runner) Run(ctx context.Context, body string, bs binding.Bindings) (string, error) {
	res, err := r.Execute(ctx, Request{Body: body, Bindings: bs})
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// RunMap is Run with bindings taken from a map, ordered by name.
func (r *Runner) RunMap(ctx context.Context, body string, vars map[string]any) (string, error) {
	return r.Run(ctx, body, binding.FromMap(vars))
}

// Execute runs req and returns the full result.
//
// Bindings are compiled before anything reaches the engine; an invalid name,
// a duplicate name or an unencodable value fails the run with nothing
// executed. Errors are always *Error.
func (r *Runner) Execute(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res := Result{SessionID: r.id}

	prologue, err := binding.Compile(req.Bindings)
	if err != nil {
		return res, r.fail(classify(err), start, 0)
	}

	out, err := r.engine.Execute(ctx, binding.Compose(prologue, req.Body))
	res.Value = out.Value
	res.Console = out.Console
	res.OpCalls = out.OpCalls
	res.Duration = time.Since(start)
	if err != nil {
		res.Value = ""
		toBodyPosition(err, binding.PrologueLines(prologue))
		return res, r.fail(classify(err), start, len(out.OpCalls))
	}

	r.metrics.observeRun("ok", res.Duration)
	r.logger.Debug("run complete",
		zap.Int("bindings", len(req.Bindings)),
		zap.Int("op_calls", len(res.OpCalls)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// toBodyPosition rebases a script error position from the composed source
// onto the caller's body. A position inside the prologue is cleared.
func toBodyPosition(err error, offset int) {
	var serr *engine.ScriptError
	if !errors.As(err, &serr) || serr.Line == 0 {
		return
	}
	if serr.Line <= offset {
		serr.Line, serr.Column = 0, 0
		return
	}
	serr.Line -= offset
}

func (r *Runner) fail(rerr *Error, start time.Time, opCalls int) error {
	d := time.Since(start)
	r.metrics.observeRun(rerr.Kind.String(), d)

	fields := []zap.Field{
		zap.String("kind", rerr.Kind.String()),
		zap.Int("op_calls", opCalls),
		zap.Duration("duration", d),
	}
	if rerr.Name != "" {
		fields = append(fields, zap.String("name", rerr.Name))
	}
	switch rerr.Kind {
	case KindAborted, KindSessionUnavailable:
		r.logger.Warn("run failed", append(fields, zap.Error(rerr))...)
	default:
		r.logger.Debug("run failed", append(fields, zap.String("detail", rerr.Detail))...)
	}
	return rerr
}

// ID returns the session identifier.
func (r *Runner) ID() string {
	return r.id
}

// Ops returns the ops exposed to scripts.
func (r *Runner) Ops() *ops.Registry {
	return r.ops
}

// Usable reports whether the runner can accept more runs. A runner stops
// being usable after Close or after a run is aborted.
func (r *Runner) Usable() bool {
	return r.engine.Usable()
}

// Close releases the session. Later runs fail with ErrSessionUnavailable.
func (r *Runner) Close() error {
	if !r.closed.Swap(true) {
		r.metrics.sessionClosed()
	}
	return r.engine.Close()
}

func newSessionID() string {
	return uuid.NewString()
}

func sessionField(id string) zap.Field {
	return zap.String("session", id)
}
