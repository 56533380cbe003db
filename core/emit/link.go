package emit

import (
	"reflect"
	"unsafe"

	"github.com/anoideaopen/fastreflect/core/reflectx"
)

type frame struct {
	receiver any
	args     []any
	stack    []reflect.Value
}

func (f *frame) push(v reflect.Value) {
	f.stack = append(f.stack, v)
}

func (f *frame) pop() reflect.Value {
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack = f.stack[:n]

	return v
}

type step func(f *frame) error

// link threads verified instructions into closures. A load directly followed by its
// conversion is fused into one step so the boxed value is never wrapped in a reflect.Value.
func link(code []Instruction) []step {
	steps := make([]step, 0, len(code))

	for pc := 0; pc < len(code); pc++ {
		in := code[pc]

		if pc+1 < len(code) {
			next := code[pc+1]
			switch {
			case in.Op == LdArg0 && next.Op == CastReceiver:
				steps = append(steps, loadReceiver(next.Type))
				pc++
				continue
			case in.Op == LdArg && isConversion(next.Op):
				steps = append(steps, loadArg(in.Index, converter(next)))
				pc++
				continue
			}
		}

		steps = append(steps, compile(in))
	}

	return steps
}

func isConversion(op OpCode) bool {
	return op == Convert || op == Unbox || op == CastClass
}

func converter(in Instruction) func(any) (reflect.Value, error) {
	t := in.Type

	switch in.Op {
	case Convert:
		f, _ := reflectx.Coercion(t)
		return f
	case Unbox:
		return func(v any) (reflect.Value, error) { return reflectx.Unbox(v, t) }
	default:
		return func(v any) (reflect.Value, error) { return reflectx.Cast(v, t) }
	}
}

func loadReceiver(t reflect.Type) step {
	return func(f *frame) error {
		v, err := castReceiver(f.receiver, t)
		if err != nil {
			return err
		}
		f.push(v)
		return nil
	}
}

func loadArg(i int, conv func(any) (reflect.Value, error)) step {
	return func(f *frame) error {
		v, err := conv(f.args[i])
		if err != nil {
			return err
		}
		f.push(v)
		return nil
	}
}

//nolint:gocyclo,funlen
func compile(in Instruction) step {
	switch in.Op {
	case LdArg0:
		return func(f *frame) error {
			f.push(reflect.ValueOf(&f.receiver).Elem())
			return nil
		}

	case LdArg:
		i := in.Index
		return func(f *frame) error {
			f.push(reflect.ValueOf(&f.args[i]).Elem())
			return nil
		}

	case CastReceiver:
		t := in.Type
		return func(f *frame) error {
			v, err := castReceiver(f.pop().Interface(), t)
			if err != nil {
				return err
			}
			f.push(v)
			return nil
		}

	case Convert, Unbox, CastClass:
		conv := converter(in)
		return func(f *frame) error {
			v, err := conv(f.pop().Interface())
			if err != nil {
				return err
			}
			f.push(v)
			return nil
		}

	case Call:
		fn := in.Func
		n := fn.Type().NumIn()
		call := fn.Call
		if fn.Type().IsVariadic() {
			call = fn.CallSlice
		}
		return func(f *frame) error {
			base := len(f.stack) - n
			out := call(f.stack[base:])
			f.stack = append(f.stack[:base], out...)
			return nil
		}

	case CallVirt:
		index := in.Index
		n := in.Type.Method(index).Type.NumIn()
		variadic := in.Type.Method(index).Type.IsVariadic()
		return func(f *frame) error {
			base := len(f.stack) - n
			m := f.stack[base-1].Method(index)
			var out []reflect.Value
			if variadic {
				out = m.CallSlice(f.stack[base:])
			} else {
				out = m.Call(f.stack[base:])
			}
			f.stack = append(f.stack[:base-1], out...)
			return nil
		}

	case TrapError:
		return func(f *frame) error {
			if v := f.pop(); !v.IsNil() {
				return v.Interface().(error) //nolint:forcetypeassert
			}
			return nil
		}

	case NewObj:
		t := in.Type
		return func(f *frame) error {
			f.push(newObject(t))
			return nil
		}

	case Addr:
		return func(f *frame) error {
			v := f.pop()
			p := reflect.New(v.Type())
			p.Elem().Set(v)
			f.push(p)
			return nil
		}

	case Deref:
		return func(f *frame) error {
			v := f.pop()
			if v.IsNil() {
				return reflectx.NewValueError(nil, v.Type().Elem(), reflectx.ErrNullArgument, nil)
			}
			f.push(v.Elem())
			return nil
		}

	case LdFld:
		path, direct := in.Path, in.Direct
		return func(f *frame) error {
			v, err := field(f.pop(), path, direct)
			if err != nil {
				return err
			}
			f.push(v)
			return nil
		}

	case StFld:
		path, direct := in.Path, in.Direct
		return func(f *frame) error {
			value := f.pop()
			target, err := field(f.pop(), path, direct)
			if err != nil {
				return err
			}
			target.Set(value)
			return nil
		}

	case LdSFld:
		variable := in.Var
		return func(f *frame) error {
			f.push(variable)
			return nil
		}

	case StSFld:
		variable := in.Var
		return func(f *frame) error {
			variable.Set(f.pop())
			return nil
		}

	case Box:
		return func(f *frame) error {
			boxed := f.pop().Interface()
			f.push(reflect.ValueOf(&boxed).Elem())
			return nil
		}

	case Ref:
		return func(f *frame) error {
			boxed := reflectx.Interface(f.pop())
			f.push(reflect.ValueOf(&boxed).Elem())
			return nil
		}

	case Pack:
		n := in.Index
		return func(f *frame) error {
			base := len(f.stack) - n
			packed := make([]any, n)
			for i, v := range f.stack[base:] {
				packed[i] = reflectx.Interface(v)
			}
			f.stack = append(f.stack[:base], reflect.ValueOf(packed))
			return nil
		}

	case LdNull:
		return func(f *frame) error {
			f.push(reflect.Zero(anyType))
			return nil
		}
	}

	panic("emit: unlinkable op code " + in.Op.String())
}

// castReceiver converts the receiver to t. A *T receiver is dereferenced for a T
// receiver; a T receiver cannot stand in for *T because the method would modify a copy.
func castReceiver(receiver any, t reflect.Type) (reflect.Value, error) {
	if receiver == nil {
		return reflect.Value{}, reflectx.NewValueError(receiver, t, reflectx.ErrNullArgument, nil)
	}

	rv := reflect.ValueOf(receiver)
	rt := rv.Type()

	switch {
	case rt == t:
		return rv, nil

	case t.Kind() == reflect.Interface && rt.Implements(t):
		v := reflect.New(t).Elem()
		v.Set(rv)
		return v, nil

	case t.Kind() == reflect.Pointer && rt == t.Elem():
		return reflect.Value{}, reflectx.NewValueError(receiver, t, reflectx.ErrNotAddressable, nil)

	case rt.Kind() == reflect.Pointer && rt.Elem() == t:
		if rv.IsNil() {
			return reflect.Value{}, reflectx.NewValueError(receiver, t, reflectx.ErrNullArgument, nil)
		}
		return rv.Elem(), nil
	}

	return reflect.Value{}, reflectx.NewValueError(receiver, t, reflectx.ErrInvalidCast, nil)
}

func newObject(t reflect.Type) reflect.Value {
	switch t.Kind() {
	case reflect.Pointer:
		return reflect.New(t.Elem())
	case reflect.Map:
		return reflect.MakeMap(t)
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0)
	default:
		return reflect.New(t).Elem()
	}
}

// field resolves path from v, a struct or a pointer to struct. Fields that are not
// direct are read through their address, so an unaddressable struct is copied first.
func field(v reflect.Value, path []int, direct bool) (reflect.Value, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, reflectx.NewValueError(nil, v.Type(), reflectx.ErrNullArgument, nil)
		}
		v = v.Elem()
	}

	if !direct && !v.CanAddr() {
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		v = c
	}

	fv, err := v.FieldByIndexErr(path)
	if err != nil {
		return reflect.Value{}, reflectx.NewValueError(nil, v.Type(), reflectx.ErrNullArgument, err)
	}

	if !direct {
		fv = reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
	}

	return fv, nil
}
