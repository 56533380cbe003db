package meta

import (
	"reflect"
	"slices"
	"sync/atomic"
)

// lastID issues descriptor identities. Descriptors are compared by pointer; the ID is the
// same identity in a printable form.
var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}

// Method describes an instance, static or extension method.
type Method struct {
	id    uint64
	owner *Type
	name  string

	fn        reflect.Value // method expression, registered func, invalid for interface methods
	index     int           // method index in an interface type
	signature reflect.Type  // function type without the receiver
	receiver  reflect.Type  // nil for static methods

	params       []reflect.Type
	results      []reflect.Type
	returnsError bool

	static    bool
	extension bool
	virtual   bool
}

// ID returns the process-unique identity of the descriptor.
func (m *Method) ID() uint64 { return m.id }

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// Owner returns the type the method was found on.
func (m *Method) Owner() *Type { return m.owner }

// Func returns the function to call. For instance methods of concrete types it takes
// the receiver as its first argument. It is invalid for virtual methods.
func (m *Method) Func() reflect.Value { return m.fn }

// Index returns the method index in the interface method set of a virtual method.
func (m *Method) Index() int { return m.index }

// Signature returns the function type of the method without the receiver.
func (m *Method) Signature() reflect.Type { return m.signature }

// Receiver returns the receiver type: T, *T or an interface. Nil for static methods.
func (m *Method) Receiver() reflect.Type { return m.receiver }

// Params returns the parameter types without the receiver. Extension methods report the
// extended receiver as their first parameter.
func (m *Method) Params() []reflect.Type { return slices.Clone(m.params) }

// Results returns the result types without a trailing error.
func (m *Method) Results() []reflect.Type { return slices.Clone(m.results) }

// ReturnsError reports whether the last result of the method is an error.
func (m *Method) ReturnsError() bool { return m.returnsError }

// IsStatic reports whether the method is called without a receiver.
func (m *Method) IsStatic() bool { return m.static }

// IsExtension reports whether the method is a static method extending its first parameter.
func (m *Method) IsExtension() bool { return m.extension }

// IsVirtual reports whether the method is dispatched dynamically through an interface.
func (m *Method) IsVirtual() bool { return m.virtual }

// IsVariadic reports whether the last parameter is variadic. The argument bound to it
// is passed as a slice.
func (m *Method) IsVariadic() bool { return m.signature.IsVariadic() }

// Field describes a struct field or a static variable.
type Field struct {
	id    uint64
	owner *Type
	name  string
	alias string
	typ   reflect.Type

	index  []int
	depth  int
	direct bool

	static   bool
	variable reflect.Value
}

// ID returns the process-unique identity of the descriptor.
func (f *Field) ID() uint64 { return f.id }

// Name returns the Go name of the field.
func (f *Field) Name() string { return f.name }

// Alias returns the name given by the `fast` struct tag, if any.
func (f *Field) Alias() string { return f.alias }

// Owner returns the type the field was found on.
func (f *Field) Owner() *Type { return f.owner }

// Type returns the field type.
func (f *Field) Type() reflect.Type { return f.typ }

// Index returns the index sequence for reflect.Value.FieldByIndex.
func (f *Field) Index() []int { return slices.Clone(f.index) }

// Depth returns the embedding depth of a promoted field, 0 for own fields.
func (f *Field) Depth() int { return f.depth }

// IsDirect reports whether every field on the index path is exported, so the value can be
// read and written without bypassing visibility.
func (f *Field) IsDirect() bool { return f.direct }

// IsStatic reports whether the field is a registered package variable.
func (f *Field) IsStatic() bool { return f.static }

// Variable returns the addressable package variable of a static field.
func (f *Field) Variable() reflect.Value { return f.variable }

// Property describes a getter/setter pair. Either side may be absent.
type Property struct {
	id     uint64
	owner  *Type
	name   string
	typ    reflect.Type
	getter *Method
	setter *Method
	static bool
}

// ID returns the process-unique identity of the descriptor.
func (p *Property) ID() uint64 { return p.id }

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// Owner returns the type the property was found on.
func (p *Property) Owner() *Type { return p.owner }

// Type returns the property type.
func (p *Property) Type() reflect.Type { return p.typ }

// Getter returns the public get accessor or nil.
func (p *Property) Getter() *Method { return p.getter }

// Setter returns the public set accessor or nil.
func (p *Property) Setter() *Method { return p.setter }

// IsStatic reports whether the accessors are called without a receiver.
func (p *Property) IsStatic() bool { return p.static }

// Constructor describes a function producing values of the owner type.
type Constructor struct {
	id       uint64
	owner    *Type
	fn       reflect.Value // invalid for the implicit zero-value constructor
	params   []reflect.Type
	produces reflect.Type

	returnsError bool
	implicit     bool
}

// ID returns the process-unique identity of the descriptor.
func (c *Constructor) ID() uint64 { return c.id }

// Owner returns the type the constructor builds.
func (c *Constructor) Owner() *Type { return c.owner }

// Func returns the registered constructor function. Invalid for implicit constructors.
func (c *Constructor) Func() reflect.Value { return c.fn }

// Params returns the parameter types.
func (c *Constructor) Params() []reflect.Type { return slices.Clone(c.params) }

// Produces returns the type of the constructed value: T or *T.
func (c *Constructor) Produces() reflect.Type { return c.produces }

// ReturnsError reports whether the constructor function returns a trailing error.
func (c *Constructor) ReturnsError() bool { return c.returnsError }

// IsImplicit reports whether the constructor produces the zero value and has no function.
func (c *Constructor) IsImplicit() bool { return c.implicit }
