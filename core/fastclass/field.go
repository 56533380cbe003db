package fastclass

import (
	"fmt"
	"reflect"

	"github.com/anoideaopen/fastreflect/core/emit"
	"github.com/anoideaopen/fastreflect/core/meta"
)

// Field reads and writes one field. It is safe for concurrent use; synchronizing access
// to the field itself is up to the caller.
type Field struct {
	ctx    *Context
	target *meta.Field
	get    emit.Invoker
	set    emit.Invoker
}

func compileField(c *Context, f *meta.Field) *Field {
	name := fmt.Sprintf("%s.%s", c.typ, f.Name())

	get := emit.NewGenerator("get "+name, 0)
	set := emit.NewGenerator("set "+name, 1)

	if f.IsStatic() {
		get.Emit(emit.Instruction{Op: emit.LdSFld, Var: f.Variable()})
		set.EmitLoadArg(0).
			EmitExactCast(f.Type()).
			Emit(emit.Instruction{Op: emit.StSFld, Var: f.Variable()})
	} else {
		base := meta.Base(c.typ)
		get.EmitLoadReceiver(base).
			Emit(emit.Instruction{Op: emit.LdFld, Path: f.Index(), Direct: f.IsDirect()})
		set.EmitLoadReceiver(reflect.PointerTo(base)).
			EmitLoadArg(0).
			EmitExactCast(f.Type()).
			Emit(emit.Instruction{Op: emit.StFld, Path: f.Index(), Direct: f.IsDirect()})
	}

	return &Field{
		ctx:    c,
		target: f,
		get:    emit.MustAssemble(get.EmitReturn(f.Type()).Program()),
		set:    emit.MustAssemble(set.EmitReturn().Program()),
	}
}

// Get returns the value of the field of receiver. A receiver of the pointer type is
// dereferenced. Static fields ignore the receiver.
func (f *Field) Get(receiver any) (any, error) {
	return f.get(receiver, nil)
}

// Set stores value, which must have exactly the field type, in the field of receiver.
// The receiver must be a pointer. Static fields ignore the receiver.
func (f *Field) Set(receiver, value any) error {
	_, err := f.set(receiver, []any{value})
	return err
}

// GetStatic returns the value of a static field.
func (f *Field) GetStatic() (any, error) {
	return f.Get(nil)
}

// SetStatic stores value in a static field.
func (f *Field) SetStatic(value any) error {
	return f.Set(nil, value)
}

// Target returns the descriptor the accessor was compiled for.
func (f *Field) Target() *meta.Field { return f.target }

// Context returns the owning context.
func (f *Field) Context() *Context { return f.ctx }

// Name returns the Go name of the field.
func (f *Field) Name() string { return f.target.Name() }

// Type returns the field type.
func (f *Field) Type() reflect.Type { return f.target.Type() }
