package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for session state and failures.
var (
	// ErrScript indicates the engine rejected or threw while running source.
	ErrScript = errors.New("script error")

	// ErrAborted indicates the caller's context ended while a run was in
	// progress. The run was interrupted and the session is poisoned.
	ErrAborted = errors.New("run aborted")

	// ErrPoisoned is returned by every run after an abort or an internal
	// panic left the session in an unknown state.
	ErrPoisoned = errors.New("session poisoned by an earlier abort")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")

	// ErrOpConflict indicates an op name that would shadow a builtin or
	// bootstrap global.
	ErrOpConflict = errors.New("op name conflicts with a global")

	// ErrBootstrap indicates the runtime bootstrap failed to load.
	ErrBootstrap = errors.New("bootstrap failed")

	// ErrOpLimit is raised in the script when a run exceeds
	// Config.MaxOpCalls.
	ErrOpLimit = errors.New("op call limit reached")
)

// ScriptError carries the engine diagnostic for a failed run.
type ScriptError struct {
	// Message is the diagnostic text, verbatim.
	Message string

	// Line and Column locate the failure within the executed source when the
	// engine reports a position. Zero when unknown.
	Line   int
	Column int
}

func (e *ScriptError) Error() string {
	return e.Message
}

// Is reports whether target is ErrScript.
func (e *ScriptError) Is(target error) bool {
	return target == ErrScript
}

// abortError wraps the context error that interrupted a run.
type abortError struct {
	cause error
}

func (e *abortError) Error() string {
	return fmt.Sprintf("%v: %v", ErrAborted, e.cause)
}

func (e *abortError) Is(target error) bool {
	return target == ErrAborted
}

func (e *abortError) Unwrap() error {
	return e.cause
}
