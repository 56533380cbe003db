package reflectx

import (
	"errors"
	"fmt"
	"reflect"
)

// Error kinds. Every error produced by the package family matches exactly one of them
// through errors.Is.
var (
	// ErrConfiguration is returned when a requested capability does not exist structurally:
	// no default constructor, no public getter or setter, an invalid synthesized type.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvocation is returned when an argument could not be marshalled at call time.
	ErrInvocation = errors.New("invocation error")
)

// Invocation error details.
var (
	ErrIncorrectArgumentCount = fmt.Errorf("%w: incorrect number of arguments", ErrInvocation)
	ErrInvalidArgumentValue   = fmt.Errorf("%w: invalid argument value", ErrInvocation)
	ErrNullArgument           = fmt.Errorf("%w: invalid assignment of null to value type", ErrInvocation)
	ErrOverflow               = fmt.Errorf("%w: value was either too large or too small", ErrInvocation)
	ErrInvalidCast            = fmt.Errorf("%w: invalid cast", ErrInvocation)
	ErrNotAddressable         = fmt.Errorf("%w: receiver is not addressable", ErrInvocation)
)

// ValueError is a custom error type that wraps both external and internal errors,
// providing additional context about the argument and the target type involved in the error.
type ValueError struct {
	external error
	internal error
	arg      any
	t        string
}

// Error returns a formatted error message indicating the conversion failure.
func (e ValueError) Error() string {
	if e.external == nil {
		return fmt.Sprintf("%v: '%v': for type '%s'", e.internal, e.arg, e.t)
	}

	return fmt.Sprintf("%v: '%v': for type '%s': '%v'", e.internal, e.arg, e.t, e.external)
}

// Is checks if the target error matches the internal error or one of its kinds.
func (e ValueError) Is(target error) bool {
	return errors.Is(e.internal, target)
}

// Unwrap returns the external error, if any.
func (e ValueError) Unwrap() error {
	return e.external
}

// NewValueError constructs an error for a value that could not be converted to t.
// internal is one of the package invocation errors, errOrNil is the underlying cause.
func NewValueError(arg any, t reflect.Type, internal error, errOrNil error) error {
	name := "<nil>"
	if t != nil {
		name = t.String()
	}

	return ValueError{
		external: errOrNil,
		internal: internal,
		arg:      arg,
		t:        name,
	}
}
