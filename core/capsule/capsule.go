// Package capsule synthesizes struct types at run time and hands back their contexts.
//
// A capsule is a named struct with one exported field per requested field. Its context
// is the one of the pointer type, so instances are addressable and the requested name
// stays usable as a lookup name through the `fast` tag:
//
//	ctx, _ := capsule.Create("Point", capsule.F("x", intType), capsule.F("y", intType))
//	p, _ := ctx.NewInstance()
//	ctx.FieldByName("x").Set(p, 3)
package capsule

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/anoideaopen/fastreflect/core/fastclass"
	"github.com/anoideaopen/fastreflect/core/logger"
	"github.com/anoideaopen/fastreflect/core/reflectx"
	"github.com/anoideaopen/fastreflect/core/stringsx"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidName  = fmt.Errorf("%w: invalid capsule name", reflectx.ErrConfiguration)
	ErrNoFields     = fmt.Errorf("%w: capsule without fields", reflectx.ErrConfiguration)
	ErrInvalidField = fmt.Errorf("%w: invalid capsule field", reflectx.ErrConfiguration)
	ErrDuplicate    = fmt.Errorf("%w: duplicate capsule field", reflectx.ErrConfiguration)
	ErrNameTaken    = fmt.Errorf("%w: capsule name is taken by a different field list", reflectx.ErrConfiguration)
)

// Field is one requested field.
type Field struct {
	Name string
	Type reflect.Type
}

// F is shorthand for a Field literal.
func F(name string, t reflect.Type) Field {
	return Field{Name: name, Type: t}
}

// module holds every capsule of the process.
type module struct {
	id    uuid.UUID
	log   *logrus.Entry
	types map[string]capsule
}

type capsule struct {
	typ    reflect.Type
	fields []Field
}

var (
	mu  sync.Mutex
	mod *module
)

// current returns the module, creating it on first use. mu must be held.
func current() *module {
	if mod == nil {
		id := uuid.New()
		mod = &module{
			id:    id,
			log:   logger.Logger().WithFields(logrus.Fields{"component": "capsule", "module": id.String()}),
			types: make(map[string]capsule),
		}
		mod.log.Debug("capsule module created")
	}

	return mod
}

// ModuleID returns the identity of the module capsules are created in.
func ModuleID() uuid.UUID {
	mu.Lock()
	defer mu.Unlock()

	return current().id
}

// Lookup returns the type of the capsule name.
func Lookup(name string) (reflect.Type, bool) {
	mu.Lock()
	defer mu.Unlock()

	c, ok := current().types[name]
	return c.typ, ok
}

// Create synthesizes the capsule name and returns the context of a pointer to it from the
// process-wide registry.
func Create(name string, fields ...Field) (*fastclass.Context, error) {
	return CreateIn(fastclass.Default(), name, fields...)
}

// CreateIn is like Create but registers the capsule with r. Creating a name again with
// the same fields returns the context of the existing type.
func CreateIn(r *fastclass.Registry, name string, fields ...Field) (*fastclass.Context, error) {
	structFields, err := structFields(name, fields)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	m := current()

	if existing, ok := m.types[name]; ok {
		if !slices.Equal(existing.fields, fields) {
			return nil, fmt.Errorf("%w: '%s'", ErrNameTaken, name)
		}
		return r.GetOrCreate(reflect.PointerTo(existing.typ)), nil
	}

	typ, err := structOf(structFields)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrInvalidField, name, err)
	}

	m.types[name] = capsule{typ: typ, fields: slices.Clone(fields)}
	ctx := r.GetOrCreate(reflect.PointerTo(typ))

	m.log.WithFields(logrus.Fields{
		"capsule":    name,
		"fields":     len(fields),
		"context_id": ctx.ID(),
	}).Debug("capsule created")

	return ctx, nil
}

func structFields(name string, fields []Field) ([]reflect.StructField, error) {
	if !stringsx.IsIdentifier(name) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrNoFields, name)
	}

	out := make([]reflect.StructField, 0, len(fields))
	seen := make(map[string]bool, len(fields))

	for i, f := range fields {
		exported := stringsx.UpperFirstChar(f.Name)

		switch {
		case !stringsx.IsIdentifier(f.Name) || !stringsx.IsExported(exported):
			return nil, fmt.Errorf("%w: field %d: name '%s'", ErrInvalidField, i, f.Name)
		case f.Type == nil:
			return nil, fmt.Errorf("%w: field %d: '%s' has no type", ErrInvalidField, i, f.Name)
		case seen[exported]:
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicate, f.Name)
		}

		seen[exported] = true
		out = append(out, reflect.StructField{
			Name: exported,
			Type: f.Type,
			Tag:  reflect.StructTag(fmt.Sprintf(`fast:"%s" json:"%s" capsule:"%s"`, f.Name, f.Name, name)),
		})
	}

	return out, nil
}

func structOf(fields []reflect.StructField) (typ reflect.Type, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	return reflect.StructOf(fields), nil
}
