package ops

import (
	"errors"
	"fmt"
)

// Sentinel errors for op registration and dispatch.
var (
	// ErrInvalidOp indicates an op that cannot be registered: bad name or
	// missing implementation.
	ErrInvalidOp = errors.New("invalid op")

	// ErrOpExists is returned when registering a duplicate op name.
	ErrOpExists = errors.New("op already registered")

	// ErrOpNotFound is returned when calling an unregistered op.
	ErrOpNotFound = errors.New("op not registered")

	// ErrOpPanic indicates an op implementation panicked.
	ErrOpPanic = errors.New("op panicked")
)

// NotFoundError reports a call to an op name that is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("operation %q is not registered", e.Name)
}

// Is reports whether target is ErrOpNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrOpNotFound
}

// ArgError reports a positional argument that could not be decoded into the
// type an adapter expects.
type ArgError struct {
	Op    string
	Index int
	Err   error
}

func (e *ArgError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("argument %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("%s: argument %d: %v", e.Op, e.Index, e.Err)
}

// Unwrap returns the decode error.
func (e *ArgError) Unwrap() error {
	return e.Err
}
