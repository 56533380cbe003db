package meta

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/anoideaopen/fastreflect/core/reflectx"
	"github.com/anoideaopen/fastreflect/core/stringsx"
)

// fieldTag names the struct tag that gives a field an alternative lookup name.
const fieldTag = "fast"

var (
	mu      sync.Mutex
	types   = make(map[reflect.Type]*Type)
	pending = make(map[reflect.Type][]Registration)
)

// Type holds the descriptors of one base type. It is immutable once built.
type Type struct {
	typ          reflect.Type
	methods      []*Method
	fields       []*Field
	properties   []*Property
	constructors []*Constructor
}

// Base strips one level of pointer indirection: T and *T share descriptors.
func Base(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}

// Of returns the descriptors of the base type of t, building them on first use.
// Descriptors are issued once and never change, so their pointers are stable identities.
func Of(t reflect.Type) *Type {
	base := Base(t)

	mu.Lock()
	defer mu.Unlock()

	if mt, ok := types[base]; ok {
		return mt
	}

	mt := build(base, pending[base])
	delete(pending, base)
	types[base] = mt

	return mt
}

// Register adds members to the base type of t. It must be called before the
// descriptors of the type are first requested.
func Register(t reflect.Type, regs ...Registration) error {
	base := Base(t)

	for _, r := range regs {
		if err := r.validate(base); err != nil {
			return err
		}
	}

	mu.Lock()
	defer mu.Unlock()

	if _, ok := types[base]; ok {
		return fmt.Errorf("%w: %s", ErrSealed, base)
	}

	pending[base] = append(pending[base], regs...)

	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(t reflect.Type, regs ...Registration) {
	if err := Register(t, regs...); err != nil {
		panic(err)
	}
}

// Type returns the base type.
func (mt *Type) Type() reflect.Type { return mt.typ }

// Methods returns all method descriptors: instance methods first, then registered ones.
func (mt *Type) Methods() []*Method { return slices.Clone(mt.methods) }

// Fields returns all field descriptors, promoted and unexported fields included.
func (mt *Type) Fields() []*Field { return slices.Clone(mt.fields) }

// Properties returns all property descriptors.
func (mt *Type) Properties() []*Property { return slices.Clone(mt.properties) }

// Constructors returns all constructor descriptors.
func (mt *Type) Constructors() []*Constructor { return slices.Clone(mt.constructors) }

// Method finds the method named name.
func (mt *Type) Method(name string) (*Method, error) {
	return only(mt.methods, func(m *Method) bool {
		return m.name == name
	})
}

// MethodBySignature finds the method named name with exactly the given parameter types.
func (mt *Type) MethodBySignature(name string, params ...reflect.Type) (*Method, error) {
	return only(mt.methods, func(m *Method) bool {
		return m.name == name && reflectx.SameTypes(m.params, params)
	})
}

// Field finds a field by Go name or tag alias. The least embedded match wins.
func (mt *Type) Field(name string) (*Field, error) {
	var (
		found []*Field
		depth = -1
	)
	for _, f := range mt.fields {
		if f.name != name && f.alias != name {
			continue
		}
		switch {
		case depth == -1 || f.depth < depth:
			found, depth = []*Field{f}, f.depth
		case f.depth == depth:
			found = append(found, f)
		}
	}

	return only(found, func(*Field) bool { return true })
}

// Property finds the property named name.
func (mt *Type) Property(name string) (*Property, error) {
	return only(mt.properties, func(p *Property) bool {
		return p.name == name
	})
}

// Constructor finds the constructor with exactly the given parameter types.
func (mt *Type) Constructor(params ...reflect.Type) (*Constructor, error) {
	return only(mt.constructors, func(c *Constructor) bool {
		return reflectx.SameTypes(c.params, params)
	})
}

func only[T any](items []T, match func(T) bool) (T, error) {
	var (
		found T
		count int
	)
	for _, item := range items {
		if match(item) {
			found = item
			count++
		}
	}

	switch count {
	case 0:
		return found, ErrMemberNotFound
	case 1:
		return found, nil
	default:
		var zero T
		return zero, ErrAmbiguousMatch
	}
}

func build(base reflect.Type, regs []Registration) *Type {
	mt := &Type{typ: base}

	mt.addMethods()
	mt.addFields()
	mt.addProperties()

	for _, r := range regs {
		mt.addRegistration(r)
	}

	if len(mt.constructors) == 0 && hasZeroValue(base) {
		mt.constructors = append(mt.constructors, &Constructor{
			id:       nextID(),
			owner:    mt,
			produces: base,
			implicit: true,
		})
	}

	return mt
}

func (mt *Type) addMethods() {
	base := mt.typ

	if base.Kind() == reflect.Interface {
		for i := 0; i < base.NumMethod(); i++ {
			m := base.Method(i)
			if !m.IsExported() {
				continue
			}
			mt.methods = append(mt.methods, newMethod(mt, m.Name, reflect.Value{}, m.Type, base, i, true))
		}
		return
	}

	ptr := reflect.PointerTo(base)
	for i := 0; i < ptr.NumMethod(); i++ {
		m := ptr.Method(i)
		if vm, ok := base.MethodByName(m.Name); ok {
			m = vm
		}
		recv := m.Type.In(0)
		mt.methods = append(mt.methods, newMethod(mt, m.Name, m.Func, withoutReceiver(m.Type), recv, m.Index, false))
	}
}

func newMethod(
	owner *Type,
	name string,
	fn reflect.Value,
	signature reflect.Type,
	receiver reflect.Type,
	index int,
	virtual bool,
) *Method {
	return &Method{
		id:           nextID(),
		owner:        owner,
		name:         name,
		fn:           fn,
		index:        index,
		signature:    signature,
		receiver:     receiver,
		params:       reflectx.In(signature, 0),
		results:      reflectx.Out(signature),
		returnsError: reflectx.ReturnsError(signature),
		virtual:      virtual,
	}
}

// withoutReceiver returns the function type of a method expression minus parameter 0.
func withoutReceiver(ft reflect.Type) reflect.Type {
	in := reflectx.In(ft, 1)
	out := make([]reflect.Type, 0, ft.NumOut())
	for i := 0; i < ft.NumOut(); i++ {
		out = append(out, ft.Out(i))
	}

	return reflect.FuncOf(in, out, ft.IsVariadic())
}

func (mt *Type) addFields() {
	if mt.typ.Kind() != reflect.Struct {
		return
	}

	walkFields(mt.typ, nil, 0, true, map[reflect.Type]bool{mt.typ: true}, func(sf reflect.StructField, index []int, depth int, direct bool) {
		mt.fields = append(mt.fields, &Field{
			id:     nextID(),
			owner:  mt,
			name:   sf.Name,
			alias:  sf.Tag.Get(fieldTag),
			typ:    sf.Type,
			index:  index,
			depth:  depth,
			direct: direct,
		})
	})
}

func walkFields(
	t reflect.Type,
	index []int,
	depth int,
	direct bool,
	seen map[reflect.Type]bool,
	visit func(sf reflect.StructField, index []int, depth int, direct bool),
) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		path := append(slices.Clone(index), i)
		exported := direct && sf.IsExported()

		visit(sf, path, depth, exported)

		if !sf.Anonymous {
			continue
		}

		embedded := Base(sf.Type)
		if embedded.Kind() != reflect.Struct || seen[embedded] {
			continue
		}

		seen[embedded] = true
		walkFields(embedded, path, depth+1, exported, seen, visit)
		delete(seen, embedded)
	}
}

func (mt *Type) addProperties() {
	var (
		getters = make(map[string]*Method)
		setters = make(map[string]*Method)
		order   []string
	)

	for _, m := range mt.methods {
		switch {
		case len(m.params) == 0 && len(m.results) == 1:
			if _, ok := getters[m.name]; !ok && setters[m.name] == nil {
				order = append(order, m.name)
			}
			getters[m.name] = m
		case len(m.params) == 1 && len(m.results) == 0 && !m.IsVariadic():
			name, ok := stringsx.PropertyOfSetter(m.name)
			if !ok {
				continue
			}
			if _, ok := getters[name]; !ok && setters[name] == nil {
				order = append(order, name)
			}
			setters[name] = m
		}
	}

	for _, name := range order {
		p := &Property{id: nextID(), owner: mt, name: name}

		if g := getters[name]; g != nil {
			p.getter, p.typ = g, g.results[0]
		}
		if s := setters[name]; s != nil && (p.typ == nil || p.typ == s.params[0]) {
			p.setter, p.typ = s, s.params[0]
		}
		if p.typ == nil {
			continue
		}

		mt.properties = append(mt.properties, p)
	}
}

func (mt *Type) addRegistration(r Registration) {
	switch r.kind {
	case kindStaticMethod, kindExtensionMethod:
		m := staticMethod(mt, r.name, r.fn)
		m.extension = r.kind == kindExtensionMethod
		mt.methods = append(mt.methods, m)

	case kindStaticField:
		variable := reflect.ValueOf(r.fn).Elem()
		mt.fields = append(mt.fields, &Field{
			id:       nextID(),
			owner:    mt,
			name:     r.name,
			typ:      variable.Type(),
			direct:   true,
			static:   true,
			variable: variable,
		})

	case kindStaticProperty:
		typ, _ := staticPropertyType(r.name, r.fn, r.setter)
		p := &Property{id: nextID(), owner: mt, name: r.name, typ: typ, static: true}
		if r.fn != nil {
			p.getter = staticMethod(mt, r.name, r.fn)
		}
		if r.setter != nil {
			p.setter = staticMethod(mt, stringsx.SetterName(r.name), r.setter)
		}
		mt.properties = append(mt.properties, p)

	case kindConstructor:
		fn := reflect.ValueOf(r.fn)
		mt.constructors = append(mt.constructors, &Constructor{
			id:           nextID(),
			owner:        mt,
			fn:           fn,
			params:       reflectx.In(fn.Type(), 0),
			produces:     fn.Type().Out(0),
			returnsError: reflectx.ReturnsError(fn.Type()),
		})
	}
}

func staticMethod(owner *Type, name string, fn any) *Method {
	rv := reflect.ValueOf(fn)
	m := newMethod(owner, name, rv, rv.Type(), nil, -1, false)
	m.static = true

	return m
}

// hasZeroValue reports whether a usable value of t can be produced without a constructor.
func hasZeroValue(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return false
	default:
		return true
	}
}
