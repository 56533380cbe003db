package fastclass

import (
	"fmt"
	"reflect"

	"github.com/anoideaopen/fastreflect/core/emit"
	"github.com/anoideaopen/fastreflect/core/meta"
)

// Property calls the accessors of one property. A missing accessor is a normal state;
// calling it fails with ErrNoGetter or ErrNoSetter.
type Property struct {
	ctx    *Context
	target *meta.Property
	get    emit.Invoker
	set    emit.Invoker
}

func compileProperty(c *Context, p *meta.Property) *Property {
	name := fmt.Sprintf("%s.%s", c.typ, p.Name())
	accessor := &Property{ctx: c, target: p}

	if m := p.Getter(); m != nil {
		g := emit.NewGenerator("get "+name, 0)
		loadReceiver(g, m)
		call(g, m)
		accessor.get = emit.MustAssemble(g.EmitReturn(m.Results()...).Program())
	}

	if m := p.Setter(); m != nil {
		g := emit.NewGenerator("set "+name, 1)
		loadReceiver(g, m)
		g.EmitLoadArg(0).EmitExactCast(p.Type())
		call(g, m)
		accessor.set = emit.MustAssemble(g.EmitReturn(m.Results()...).Program())
	}

	return accessor
}

func loadReceiver(g *emit.Generator, m *meta.Method) {
	if !m.IsStatic() {
		g.EmitLoadReceiver(m.Receiver())
	}
}

func call(g *emit.Generator, m *meta.Method) {
	if m.IsVirtual() {
		g.EmitCallVirt(m.Receiver(), m.Index())
	} else {
		g.EmitCall(m.Func())
	}
}

// Get calls the getter on receiver. Static properties ignore the receiver.
func (p *Property) Get(receiver any) (any, error) {
	if p.get == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrNoGetter, p.target.Name())
	}

	return p.get(receiver, nil)
}

// Set calls the setter on receiver with value, which must have exactly the property type.
// Static properties ignore the receiver.
func (p *Property) Set(receiver, value any) error {
	if p.set == nil {
		return fmt.Errorf("%w: '%s'", ErrNoSetter, p.target.Name())
	}

	_, err := p.set(receiver, []any{value})
	return err
}

// GetStatic calls the getter of a static property.
func (p *Property) GetStatic() (any, error) {
	return p.Get(nil)
}

// SetStatic calls the setter of a static property.
func (p *Property) SetStatic(value any) error {
	return p.Set(nil, value)
}

// CanRead reports whether the property has a getter.
func (p *Property) CanRead() bool { return p.get != nil }

// CanWrite reports whether the property has a setter.
func (p *Property) CanWrite() bool { return p.set != nil }

// Getter returns the compiled getter, nil without one.
func (p *Property) Getter() emit.Invoker { return p.get }

// Target returns the descriptor the accessor was compiled for.
func (p *Property) Target() *meta.Property { return p.target }

// Context returns the owning context.
func (p *Property) Context() *Context { return p.ctx }

// Name returns the property name.
func (p *Property) Name() string { return p.target.Name() }

// Type returns the property type.
func (p *Property) Type() reflect.Type { return p.target.Type() }
