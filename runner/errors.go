package runner

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/toolscript/binding"
	"github.com/jonwraymond/toolscript/engine"
)

// Sentinel errors for error classification. Every error returned by Run
// matches exactly one of the first six via errors.Is.
var (
	// ErrInvalidVariableName indicates a binding name outside
	// [A-Za-z_][A-Za-z0-9_]*. Nothing was executed.
	ErrInvalidVariableName = errors.New("invalid variable name")

	// ErrSerialization indicates a bound value has no JSON form. Nothing was
	// executed.
	ErrSerialization = errors.New("serialization error")

	// ErrExecution indicates the engine rejected or threw while running the
	// composed source.
	ErrExecution = errors.New("execution error")

	// ErrDuplicateBinding indicates the same name was bound twice in one
	// call. Nothing was executed.
	ErrDuplicateBinding = errors.New("duplicate binding")

	// ErrAborted indicates the caller's context ended the run. The session
	// is no longer usable.
	ErrAborted = errors.New("run aborted")

	// ErrSessionUnavailable indicates the session was closed or poisoned by
	// an earlier abort.
	ErrSessionUnavailable = errors.New("session unavailable")

	// ErrConfiguration indicates an invalid builder configuration or op
	// registration.
	ErrConfiguration = errors.New("configuration error")
)

// Kind is the closed set of run failure kinds.
type Kind int

const (
	KindInvalidVariableName Kind = iota + 1
	KindSerialization
	KindExecution
	KindDuplicateBinding
	KindAborted
	KindSessionUnavailable
)

// String returns a snake_case label, used for logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindInvalidVariableName:
		return "invalid_variable_name"
	case KindSerialization:
		return "serialization"
	case KindExecution:
		return "execution"
	case KindDuplicateBinding:
		return "duplicate_binding"
	case KindAborted:
		return "aborted"
	case KindSessionUnavailable:
		return "session_unavailable"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidVariableName:
		return ErrInvalidVariableName
	case KindSerialization:
		return ErrSerialization
	case KindExecution:
		return ErrExecution
	case KindDuplicateBinding:
		return ErrDuplicateBinding
	case KindAborted:
		return ErrAborted
	case KindSessionUnavailable:
		return ErrSessionUnavailable
	default:
		return nil
	}
}

// Error is the error type returned by Run and Execute.
type Error struct {
	Kind Kind

	// Name is the offending binding name for InvalidVariableName,
	// DuplicateBinding and Serialization. Empty otherwise.
	Name string

	// Detail is the stage diagnostic. For execution errors it is the engine
	// message, verbatim.
	Detail string

	// Err is the underlying stage error.
	Err error
}

// Error formats the kind, the name when present, and the detail.
func (e *Error) Error() string {
	prefix := "run failed"
	if s := e.Kind.sentinel(); s != nil {
		prefix = s.Error()
	}
	if e.Name != "" {
		prefix = fmt.Sprintf("%s %q", prefix, e.Name)
	}
	if e.Detail == "" {
		return prefix
	}
	return prefix + ": " + e.Detail
}

// Unwrap returns the underlying stage error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of a run error.
func KindOf(err error) (Kind, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind, true
	}
	return 0, false
}

// classify maps a stage error onto the run taxonomy.
func classify(err error) *Error {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}

	var nameErr *binding.NameError
	if errors.As(err, &nameErr) {
		return &Error{Kind: KindInvalidVariableName, Name: nameErr.Name, Detail: nameErr.Reason, Err: err}
	}
	var dupErr *binding.DuplicateError
	if errors.As(err, &dupErr) {
		return &Error{
			Kind:   KindDuplicateBinding,
			Name:   dupErr.Name,
			Detail: fmt.Sprintf("bound at positions %d and %d", dupErr.First, dupErr.Index),
			Err:    err,
		}
	}
	var serErr *binding.SerializeError
	if errors.As(err, &serErr) {
		return &Error{Kind: KindSerialization, Name: serErr.Name, Detail: serErr.Err.Error(), Err: err}
	}

	switch {
	case errors.Is(err, engine.ErrAborted):
		return &Error{Kind: KindAborted, Detail: err.Error(), Err: err}
	case errors.Is(err, engine.ErrClosed), errors.Is(err, engine.ErrPoisoned):
		return &Error{Kind: KindSessionUnavailable, Detail: err.Error(), Err: err}
	}

	var scriptErr *engine.ScriptError
	if errors.As(err, &scriptErr) {
		return &Error{Kind: KindExecution, Detail: scriptErr.Message, Err: err}
	}
	return &Error{Kind: KindExecution, Detail: err.Error(), Err: err}
}
