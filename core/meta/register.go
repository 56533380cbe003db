package meta

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/anoideaopen/fastreflect/core/reflectx"
)

var (
	// ErrInvalidMember is returned when a registration does not describe a usable member.
	ErrInvalidMember = fmt.Errorf("%w: invalid member", reflectx.ErrConfiguration)

	// ErrSealed is returned when members are registered after the descriptors of the type
	// have been handed out.
	ErrSealed = fmt.Errorf("%w: type descriptors are sealed", reflectx.ErrConfiguration)

	// ErrMemberNotFound is returned by lookups when nothing matches.
	ErrMemberNotFound = errors.New("member not found")

	// ErrAmbiguousMatch is returned by lookups when more than one member matches.
	ErrAmbiguousMatch = errors.New("ambiguous match found")
)

type memberKind int

const (
	kindStaticMethod memberKind = iota
	kindExtensionMethod
	kindStaticField
	kindStaticProperty
	kindConstructor
)

// Registration adds a member that Go types cannot declare themselves.
type Registration struct {
	kind   memberKind
	name   string
	fn     any
	setter any
}

// StaticMethod registers a package-level function as a static method named name.
func StaticMethod(name string, fn any) Registration {
	return Registration{kind: kindStaticMethod, name: name, fn: fn}
}

// ExtensionMethod registers a function whose first parameter is the extended receiver.
// A thunk of the method called with a receiver passes it as that first argument.
func ExtensionMethod(name string, fn any) Registration {
	return Registration{kind: kindExtensionMethod, name: name, fn: fn}
}

// StaticField registers the package variable ptr points to as a static field.
func StaticField(name string, ptr any) Registration {
	return Registration{kind: kindStaticField, name: name, fn: ptr}
}

// StaticProperty registers accessor functions as a static property. getter has the form
// func() T or func() (T, error), setter func(T) or func(T) error; either may be nil.
func StaticProperty(name string, getter, setter any) Registration {
	return Registration{kind: kindStaticProperty, name: name, fn: getter, setter: setter}
}

// ConstructorFunc registers a function returning T or *T, optionally followed by an error.
func ConstructorFunc(fn any) Registration {
	return Registration{kind: kindConstructor, fn: fn}
}

func (r Registration) validate(base reflect.Type) error {
	switch r.kind {
	case kindStaticMethod, kindExtensionMethod:
		ft, err := funcType(r.name, r.fn)
		if err != nil {
			return err
		}
		if r.kind == kindExtensionMethod && ft.NumIn() == 0 {
			return fmt.Errorf("%w: extension method %s has no receiver parameter", ErrInvalidMember, r.name)
		}
	case kindStaticField:
		if r.name == "" {
			return fmt.Errorf("%w: static field without name", ErrInvalidMember)
		}
		rv := reflect.ValueOf(r.fn)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return fmt.Errorf("%w: static field %s requires a non-nil pointer", ErrInvalidMember, r.name)
		}
	case kindStaticProperty:
		_, err := staticPropertyType(r.name, r.fn, r.setter)
		return err
	case kindConstructor:
		ft, err := funcType("constructor", r.fn)
		if err != nil {
			return err
		}
		out := reflectx.Out(ft)
		if len(out) != 1 || (out[0] != base && out[0] != reflect.PointerTo(base)) {
			return fmt.Errorf("%w: constructor must return %s or *%s", ErrInvalidMember, base, base)
		}
	}

	return nil
}

func funcType(name string, fn any) (reflect.Type, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: function without name", ErrInvalidMember)
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %s is not a function", ErrInvalidMember, name)
	}

	return rv.Type(), nil
}

func staticPropertyType(name string, getter, setter any) (reflect.Type, error) {
	var typ reflect.Type

	if getter != nil {
		ft, err := funcType(name, getter)
		if err != nil {
			return nil, err
		}
		if ft.NumIn() != 0 || len(reflectx.Out(ft)) != 1 {
			return nil, fmt.Errorf("%w: getter of %s must take nothing and return one value", ErrInvalidMember, name)
		}
		typ = ft.Out(0)
	}

	if setter != nil {
		ft, err := funcType(name, setter)
		if err != nil {
			return nil, err
		}
		if ft.NumIn() != 1 || len(reflectx.Out(ft)) != 0 {
			return nil, fmt.Errorf("%w: setter of %s must take one value and return nothing", ErrInvalidMember, name)
		}
		if typ != nil && ft.In(0) != typ {
			return nil, fmt.Errorf("%w: accessors of %s disagree on the property type", ErrInvalidMember, name)
		}
		typ = ft.In(0)
	}

	if typ == nil {
		return nil, fmt.Errorf("%w: property %s has no accessors", ErrInvalidMember, name)
	}

	return typ, nil
}
