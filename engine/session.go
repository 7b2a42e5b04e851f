package engine

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/jonwraymond/toolscript/ops"
)

//go:embed bootstrap.js
var bootstrapSource string

// scriptName labels composed source in engine diagnostics.
const scriptName = "<script>"

// Globals removed from the runtime before the bootstrap runs.
var strippedGlobals = []string{"require", "process", "module", "exports"}

// Globals owned by the bootstrap. Ops may not use these names.
var bootstrapGlobals = []string{
	"console", "ops", "host",
	"setTimeout", "clearTimeout", "setInterval", "clearInterval",
}

// Config configures a Session.
type Config struct {
	// Ops are exposed to scripts as global functions and through the ops
	// helper. Nil means no ops.
	Ops *ops.Registry

	// Logger receives session diagnostics. Script console output goes to a
	// child logger named "console". Nil means no logging.
	Logger *zap.Logger

	// OnOpCall, if set, is invoked after every op call.
	OnOpCall func(OpCall)

	// MaxCallStackSize limits script call depth. Zero keeps the engine
	// default.
	MaxCallStackSize int

	// MaxOpCalls limits op calls per run. Further calls throw a script
	// Error wrapping ErrOpLimit. Zero means unlimited.
	MaxOpCalls int
}

// Session is a persistent script context. It owns one goja runtime and
// executes one source unit at a time; state written to the global object by
// one Execute is visible to the next.
//
// Session is safe for concurrent use. Concurrent Execute calls are
// serialized.
type Session struct {
	mu sync.Mutex

	vm        *goja.Runtime
	ops       *ops.Registry
	logger    *zap.Logger
	console   *zap.Logger
	onOpCall  func(OpCall)
	maxCalls  int
	jsonObj   goja.Value
	stringify goja.Callable
	stringFn  goja.Callable

	closed   atomic.Bool
	poisoned atomic.Bool

	// Per-run state, guarded by mu.
	runCtx  context.Context
	logs    []LogEntry
	opCalls []OpCall
}

// New creates a session, strips host-access globals, installs the
// bootstrap and exposes every op in cfg.Ops.
func New(cfg Config) (*Session, error) {
	if cfg.Ops == nil {
		cfg.Ops = ops.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if cfg.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(cfg.MaxCallStackSize)
	}

	s := &Session{
		vm:       vm,
		ops:      cfg.Ops,
		logger:   cfg.Logger,
		console:  cfg.Logger.Named("console"),
		onOpCall: cfg.OnOpCall,
		maxCalls: cfg.MaxOpCalls,
		runCtx:   context.Background(),
	}

	for _, name := range strippedGlobals {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return nil, fmt.Errorf("%w: strip %s: %w", ErrBootstrap, name, err)
		}
	}

	if err := s.checkOpNames(); err != nil {
		return nil, err
	}

	s.jsonObj = vm.Get("JSON")
	stringify, ok := goja.AssertFunction(s.jsonObj.ToObject(vm).Get("stringify"))
	if !ok {
		return nil, fmt.Errorf("%w: JSON.stringify is not callable", ErrBootstrap)
	}
	s.stringify = stringify
	stringFn, ok := goja.AssertFunction(vm.Get("String"))
	if !ok {
		return nil, fmt.Errorf("%w: String is not callable", ErrBootstrap)
	}
	s.stringFn = stringFn

	if err := s.bootstrap(); err != nil {
		return nil, err
	}

	s.logger.Debug("session ready", zap.Int("ops", cfg.Ops.Len()))
	return s, nil
}

func (s *Session) checkOpNames() error {
	reserved := make(map[string]bool, len(bootstrapGlobals))
	for _, name := range bootstrapGlobals {
		reserved[name] = true
	}
	global := s.vm.GlobalObject()
	for _, name := range s.ops.Names() {
		if reserved[name] || global.Get(name) != nil {
			return fmt.Errorf("%w: %s", ErrOpConflict, name)
		}
	}
	return nil
}

func (s *Session) bootstrap() error {
	v, err := s.vm.RunScript("bootstrap.js", bootstrapSource)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBootstrap, err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return fmt.Errorf("%w: bootstrap did not evaluate to a function", ErrBootstrap)
	}
	if _, err := fn(goja.Undefined(), s.vm.GlobalObject(), s.native()); err != nil {
		return fmt.Errorf("%w: %w", ErrBootstrap, err)
	}
	return nil
}

// Execute runs source in the session and renders its completion value.
//
// Cancelling ctx interrupts the run; the session is then poisoned and every
// later Execute returns ErrPoisoned. A ctx that is already done is rejected
// before anything runs and leaves the session usable.
func (s *Session) Execute(ctx context.Context, source string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return Outcome{}, ErrClosed
	}
	if s.poisoned.Load() {
		return Outcome{}, ErrPoisoned
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, &abortError{cause: err}
	}

	start := time.Now()
	s.runCtx = ctx
	s.logs = nil
	s.opCalls = nil
	defer func() {
		s.runCtx = context.Background()
		s.logs = nil
		s.opCalls = nil
	}()

	value, err := s.evaluate(ctx, source)
	out := Outcome{
		Value:    value,
		Console:  s.logs,
		OpCalls:  s.opCalls,
		Duration: time.Since(start),
	}
	return out, err
}

// evaluate runs and renders source while a watcher interrupts the runtime if
// ctx ends. The interrupt flag is always cleared before returning.
func (s *Session) evaluate(ctx context.Context, source string) (value string, err error) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			s.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
		s.vm.ClearInterrupt()
	}()

	defer func() {
		if p := recover(); p != nil {
			s.poisoned.Store(true)
			s.logger.Error("engine panic", zap.Any("panic", p))
			value = ""
			err = fmt.Errorf("%w: engine panic: %v", ErrPoisoned, p)
		}
	}()

	v, err := s.vm.RunScript(scriptName, source)
	if err != nil {
		return "", s.convertError(ctx, err)
	}
	return s.render(ctx, v)
}

// convertError maps a runtime error into a ScriptError or an abort.
func (s *Session) convertError(ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		s.poisoned.Store(true)
		cause := ctx.Err()
		if cause == nil {
			cause = fmt.Errorf("%v", interrupted.Value())
		}
		s.logger.Warn("run interrupted, session poisoned", zap.Error(cause))
		return &abortError{cause: cause}
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		serr := &ScriptError{Message: ex.Error()}
		if frames := ex.Stack(); len(frames) > 0 {
			pos := frames[0].Position()
			serr.Line = pos.Line
			serr.Column = pos.Column
		}
		return serr
	}
	return &ScriptError{Message: err.Error()}
}

// Usable reports whether the session can accept another Execute.
func (s *Session) Usable() bool {
	return !s.closed.Load() && !s.poisoned.Load()
}

// Poisoned reports whether an abort or panic poisoned the session.
func (s *Session) Poisoned() bool {
	return s.poisoned.Load()
}

// Ops returns the registry the session exposes.
func (s *Session) Ops() *ops.Registry {
	return s.ops
}

// Close releases the session. It waits for an in-flight Execute to finish.
// Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Swap(true) {
		return nil
	}
	s.vm = nil
	s.jsonObj = nil
	s.stringify = nil
	s.stringFn = nil
	return nil
}
