package reflectx

import (
	"reflect"
)

// Conversion identifies how a boxed argument is marshalled to a parameter type.
type Conversion int

const (
	ConversionCoerce Conversion = iota // table coercion, value types listed in the table
	ConversionUnbox                    // exact-type unbox, remaining value types
	ConversionCast                     // reference cast, nullable types
)

// String implements fmt.Stringer.
func (c Conversion) String() string {
	switch c {
	case ConversionCoerce:
		return "coerce"
	case ConversionUnbox:
		return "unbox"
	case ConversionCast:
		return "cast"
	default:
		return "unknown"
	}
}

// ConversionOf selects the conversion for a parameter of type t. Reference types always
// use a cast and never consult the table.
func ConversionOf(t reflect.Type) Conversion {
	if Nullable(t) {
		return ConversionCast
	}

	if _, ok := coercions[t]; ok {
		return ConversionCoerce
	}

	return ConversionUnbox
}

// Nullable reports whether nil is an admissible value of type t.
func Nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func,
		reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// Unbox converts v to exactly t. A value whose type is t's underlying type, or whose
// underlying type is t, is accepted; two distinct named types and numeric widening are not.
func Unbox(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Value{}, NewValueError(v, t, ErrNullArgument, nil)
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}

	if rv.Type() == t.Underlying() || rv.Type().Underlying() == t {
		return rv.Convert(t), nil
	}

	return reflect.Value{}, NewValueError(v, t, ErrInvalidCast, nil)
}

// Cast converts v to the reference type t. nil yields the zero value of t.
func Cast(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}

	if rv.Type().AssignableTo(t) {
		return rv.Convert(t), nil
	}

	return reflect.Value{}, NewValueError(v, t, ErrInvalidCast, nil)
}

// Marshal converts v to t using the conversion ConversionOf selects for t.
func Marshal(v any, t reflect.Type) (reflect.Value, error) {
	switch ConversionOf(t) {
	case ConversionCoerce:
		return coercions[t](v)
	case ConversionUnbox:
		return Unbox(v, t)
	default:
		return Cast(v, t)
	}
}

// Interface returns the boxed form of rv. Invalid values and nil references yield nil.
func Interface(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}

	if Nullable(rv.Type()) && rv.IsNil() {
		return nil
	}

	return rv.Interface()
}
