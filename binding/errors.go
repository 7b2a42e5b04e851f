package binding

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrInvalidName indicates a binding name outside the identifier grammar.
	ErrInvalidName = errors.New("invalid variable name")

	// ErrDuplicate indicates the same name was bound twice in one call.
	ErrDuplicate = errors.New("duplicate binding")

	// ErrSerialization indicates a bound value could not be encoded.
	ErrSerialization = errors.New("serialization error")
)

// NameError reports a name rejected by ValidateName.
type NameError struct {
	// Name is the rejected name, verbatim.
	Name string

	// Reason describes the first grammar violation.
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("invalid variable name %q: %s", e.Name, e.Reason)
}

// Is reports whether target is ErrInvalidName.
func (e *NameError) Is(target error) bool {
	return target == ErrInvalidName
}

// DuplicateError reports a name that appears more than once in a single
// Bindings list.
type DuplicateError struct {
	Name string

	// First and Index are the positions of the first and the repeated
	// occurrence.
	First int
	Index int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate binding %q (positions %d and %d)", e.Name, e.First, e.Index)
}

// Is reports whether target is ErrDuplicate.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// SerializeError reports a value that cannot be represented as JSON.
type SerializeError struct {
	// Name is the binding the value belongs to. Empty when Serialize was
	// called directly.
	Name string

	// Err is the underlying encoder error.
	Err error
}

func (e *SerializeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("cannot serialize binding %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("cannot serialize value: %v", e.Err)
}

// Unwrap returns the encoder error.
func (e *SerializeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSerialization.
func (e *SerializeError) Is(target error) bool {
	return target == ErrSerialization
}
