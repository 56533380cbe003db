package fastclass

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/anoideaopen/fastreflect/core/meta"
	"github.com/anoideaopen/fastreflect/core/telemetry"
	"github.com/sirupsen/logrus"
)

// Context caches the compiled accessors of one runtime type. Every accessor is compiled
// at most once; later requests return the cached instance.
type Context struct {
	id       uint64
	typ      reflect.Type
	meta     *meta.Type
	registry *Registry

	mu           sync.RWMutex
	methods      map[*meta.Method]*Method
	constructors map[*meta.Constructor]*Constructor
	fields       map[*meta.Field]*Field
	properties   map[*meta.Property]*Property
}

func newContext(r *Registry, id uint64, t reflect.Type) *Context {
	return &Context{
		id:           id,
		typ:          t,
		meta:         meta.Of(t),
		registry:     r,
		methods:      make(map[*meta.Method]*Method),
		constructors: make(map[*meta.Constructor]*Constructor),
		fields:       make(map[*meta.Field]*Field),
		properties:   make(map[*meta.Property]*Property),
	}
}

// ID returns the sequential identity of the context.
func (c *Context) ID() uint64 { return c.id }

// TargetType returns the type the context serves.
func (c *Context) TargetType() reflect.Type { return c.typ }

// Meta returns the member descriptors of the type.
func (c *Context) Meta() *meta.Type { return c.meta }

// Method returns the thunk of m.
func (c *Context) Method(m *meta.Method) (*Method, error) {
	if m.Owner() != c.meta {
		return nil, fmt.Errorf("%w: %s is not a member of %s", ErrForeignMember, m.Name(), c.typ)
	}

	return cached(c, c.methods, m, telemetry.MemberMethod, m.Name(), func() *Method {
		return compileMethod(c, m)
	}), nil
}

// MethodByName returns the thunk of the method name, nil if there is no such method or
// the name is overloaded.
func (c *Context) MethodByName(name string) *Method {
	m, err := c.meta.Method(name)
	if err != nil {
		return nil
	}

	thunk, _ := c.Method(m)
	return thunk
}

// MethodBySignature returns the thunk of the method name taking exactly params, or nil.
func (c *Context) MethodBySignature(name string, params ...reflect.Type) *Method {
	m, err := c.meta.MethodBySignature(name, params...)
	if err != nil {
		return nil
	}

	thunk, _ := c.Method(m)
	return thunk
}

// Constructor returns the thunk of ctor.
func (c *Context) Constructor(ctor *meta.Constructor) (*Constructor, error) {
	if ctor.Owner() != c.meta {
		return nil, fmt.Errorf("%w: constructor of %s", ErrForeignMember, ctor.Owner().Type())
	}

	return cached(c, c.constructors, ctor, telemetry.MemberConstructor, "new", func() *Constructor {
		return compileConstructor(c, ctor)
	}), nil
}

// ConstructorOf returns the thunk of the constructor taking exactly params, or nil.
func (c *Context) ConstructorOf(params ...reflect.Type) *Constructor {
	ctor, err := c.meta.Constructor(params...)
	if err != nil {
		return nil
	}

	thunk, _ := c.Constructor(ctor)
	return thunk
}

// DefaultConstructor returns the thunk of the parameterless constructor, or nil.
// When several are registered the first one declared is used.
func (c *Context) DefaultConstructor() *Constructor {
	if thunk := c.ConstructorOf(); thunk != nil {
		return thunk
	}

	for _, ctor := range c.meta.Constructors() {
		if len(ctor.Params()) == 0 {
			thunk, _ := c.Constructor(ctor)
			return thunk
		}
	}

	return nil
}

// NewInstance creates a value with the parameterless constructor.
func (c *Context) NewInstance() (any, error) {
	ctor := c.DefaultConstructor()
	if ctor == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDefaultConstructor, c.typ)
	}

	return ctor.New()
}

// Field returns the accessor of f.
func (c *Context) Field(f *meta.Field) (*Field, error) {
	if f.Owner() != c.meta {
		return nil, fmt.Errorf("%w: %s is not a member of %s", ErrForeignMember, f.Name(), c.typ)
	}

	return cached(c, c.fields, f, telemetry.MemberField, f.Name(), func() *Field {
		return compileField(c, f)
	}), nil
}

// FieldByName returns the accessor of the field with the Go name or tag alias name, or nil.
func (c *Context) FieldByName(name string) *Field {
	f, err := c.meta.Field(name)
	if err != nil {
		return nil
	}

	accessor, _ := c.Field(f)
	return accessor
}

// Property returns the accessor of p.
func (c *Context) Property(p *meta.Property) (*Property, error) {
	if p.Owner() != c.meta {
		return nil, fmt.Errorf("%w: %s is not a member of %s", ErrForeignMember, p.Name(), c.typ)
	}

	return cached(c, c.properties, p, telemetry.MemberProperty, p.Name(), func() *Property {
		return compileProperty(c, p)
	}), nil
}

// PropertyByName returns the accessor of the property name, or nil.
func (c *Context) PropertyByName(name string) *Property {
	p, err := c.meta.Property(name)
	if err != nil {
		return nil
	}

	accessor, _ := c.Property(p)
	return accessor
}

// cached returns the accessor of d, compiling it under the context lock on first use.
func cached[D comparable, A any](
	c *Context,
	cache map[D]A,
	d D,
	kind telemetry.MemberKind,
	name string,
	compile func() A,
) A {
	c.mu.RLock()
	a, ok := cache[d]
	c.mu.RUnlock()

	if ok {
		return a
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok = cache[d]; ok {
		return a
	}

	start := time.Now()
	_, span := telemetry.StartCompileSpan(context.Background(), c.registry.tracer, kind, name, c.typ.String(), c.id)

	a = compile()
	cache[d] = a

	telemetry.EndSpan(span, nil)
	c.registry.log.WithFields(logrus.Fields{
		"context_id": c.id,
		"type":       c.typ.String(),
		"kind":       kind.String(),
		"member":     name,
		"elapsed":    time.Since(start),
	}).Debug("member compiled")

	return a
}
