package emit

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/anoideaopen/fastreflect/core/reflectx"
)

// ErrInvalidProgram is returned by Assemble for programs that would corrupt the stack.
var ErrInvalidProgram = errors.New("invalid program")

// Invoker is an assembled program. It takes the receiver (ignored by programs that never
// load it) and the boxed arguments.
type Invoker func(receiver any, args []any) (any, error)

var (
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	slotsType = reflect.TypeOf([]any(nil))
)

// Assemble verifies p and links it into an Invoker.
func Assemble(p *Program) (Invoker, error) {
	depth, err := verify(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidProgram, p.Name, err)
	}

	steps := link(p.Code[:len(p.Code)-1])
	arity := p.Arity

	return func(receiver any, args []any) (any, error) {
		if len(args) != arity {
			return nil, fmt.Errorf("%w: %d expected, %d given", reflectx.ErrIncorrectArgumentCount, arity, len(args))
		}

		f := frame{
			receiver: receiver,
			args:     args,
			stack:    make([]reflect.Value, 0, depth),
		}
		for _, s := range steps {
			if err := s(&f); err != nil {
				return nil, err
			}
		}

		if len(f.stack) == 0 {
			return nil, nil
		}

		return reflectx.Interface(f.stack[0]), nil
	}, nil
}

// MustAssemble is like Assemble but panics on error. Programs built by the compilers are
// well formed, so failure is a bug.
func MustAssemble(p *Program) Invoker {
	inv, err := Assemble(p)
	if err != nil {
		panic(err)
	}

	return inv
}

// verify simulates the program on a stack of static types and returns the maximum depth.
func verify(p *Program) (int, error) {
	if len(p.Code) == 0 || p.Code[len(p.Code)-1].Op != Ret {
		return 0, errors.New("program must end with ret")
	}

	var (
		stack []reflect.Type
		depth int
	)

	pop := func(pc int, n int) ([]reflect.Type, error) {
		if len(stack) < n {
			return nil, fmt.Errorf("%04d: stack underflow", pc)
		}
		top := stack[len(stack)-n:]
		stack = stack[:len(stack)-n]
		return top, nil
	}

	for pc, in := range p.Code {
		var (
			popped []reflect.Type
			err    error
		)

		switch in.Op {
		case LdArg0, LdNull:
			stack = append(stack, anyType)

		case LdArg:
			if in.Index < 0 || in.Index >= p.Arity {
				return 0, fmt.Errorf("%04d: argument %d out of range", pc, in.Index)
			}
			stack = append(stack, anyType)

		case CastReceiver, Convert, Unbox, CastClass:
			if in.Type == nil {
				return 0, fmt.Errorf("%04d: %s without type", pc, in.Op)
			}
			if popped, err = pop(pc, 1); err != nil {
				return 0, err
			}
			if popped[0] != anyType {
				return 0, fmt.Errorf("%04d: %s expects a boxed value, got %s", pc, in.Op, popped[0])
			}
			if in.Op == Convert {
				if _, ok := reflectx.Coercion(in.Type); !ok {
					return 0, fmt.Errorf("%04d: no coercion to %s", pc, in.Type)
				}
			}
			stack = append(stack, in.Type)

		case Call:
			if !in.Func.IsValid() || in.Func.Kind() != reflect.Func {
				return 0, fmt.Errorf("%04d: call without function", pc)
			}
			ft := in.Func.Type()
			if popped, err = pop(pc, ft.NumIn()); err != nil {
				return 0, err
			}
			if err = assignable(pc, popped, reflectx.In(ft, 0)); err != nil {
				return 0, err
			}
			stack = append(stack, results(ft)...)

		case CallVirt:
			if in.Type == nil || in.Type.Kind() != reflect.Interface || in.Index < 0 || in.Index >= in.Type.NumMethod() {
				return 0, fmt.Errorf("%04d: callvirt without interface method", pc)
			}
			ft := in.Type.Method(in.Index).Type
			if popped, err = pop(pc, ft.NumIn()+1); err != nil {
				return 0, err
			}
			if err = assignable(pc, popped, append([]reflect.Type{in.Type}, reflectx.In(ft, 0)...)); err != nil {
				return 0, err
			}
			stack = append(stack, results(ft)...)

		case TrapError:
			if popped, err = pop(pc, 1); err != nil {
				return 0, err
			}
			if popped[0] != reflectx.ErrorType {
				return 0, fmt.Errorf("%04d: traperror expects an error, got %s", pc, popped[0])
			}

		case NewObj:
			if in.Type == nil {
				return 0, fmt.Errorf("%04d: newobj without type", pc)
			}
			stack = append(stack, in.Type)

		case Addr:
			if popped, err = pop(pc, 1); err != nil {
				return 0, err
			}
			stack = append(stack, reflect.PointerTo(popped[0]))

		case Deref:
			if popped, err = pop(pc, 1); err != nil {
				return 0, err
			}
			if popped[0].Kind() != reflect.Pointer {
				return 0, fmt.Errorf("%04d: deref of %s", pc, popped[0])
			}
			stack = append(stack, popped[0].Elem())

		case LdFld:
			if popped, err = pop(pc, 1); err != nil {
				return 0, err
			}
			ft, err := fieldType(popped[0], in.Path)
			if err != nil {
				return 0, fmt.Errorf("%04d: %w", pc, err)
			}
			stack = append(stack, ft)

		case StFld:
			if popped, err = pop(pc, 2); err != nil {
				return 0, err
			}
			if popped[0].Kind() != reflect.Pointer {
				return 0, fmt.Errorf("%04d: stfld requires a pointer receiver, got %s", pc, popped[0])
			}
			ft, err := fieldType(popped[0], in.Path)
			if err != nil {
				return 0, fmt.Errorf("%04d: %w", pc, err)
			}
			if err = assignable(pc, popped[1:], []reflect.Type{ft}); err != nil {
				return 0, err
			}

		case LdSFld:
			if !in.Var.IsValid() {
				return 0, fmt.Errorf("%04d: ldsfld without variable", pc)
			}
			stack = append(stack, in.Var.Type())

		case StSFld:
			if !in.Var.CanSet() {
				return 0, fmt.Errorf("%04d: stsfld to a variable that cannot be set", pc)
			}
			if popped, err = pop(pc, 1); err != nil {
				return 0, err
			}
			if err = assignable(pc, popped, []reflect.Type{in.Var.Type()}); err != nil {
				return 0, err
			}

		case Box, Ref:
			if _, err = pop(pc, 1); err != nil {
				return 0, err
			}
			stack = append(stack, anyType)

		case Pack:
			if in.Index < 0 {
				return 0, fmt.Errorf("%04d: pack of %d values", pc, in.Index)
			}
			if _, err = pop(pc, in.Index); err != nil {
				return 0, err
			}
			stack = append(stack, slotsType)

		case Ret:
			if pc != len(p.Code)-1 {
				return 0, fmt.Errorf("%04d: ret before the end of the program", pc)
			}
			if len(stack) > 1 {
				return 0, fmt.Errorf("%04d: %d values left on the stack", pc, len(stack))
			}

		default:
			return 0, fmt.Errorf("%04d: unknown op code %d", pc, in.Op)
		}

		depth = max(depth, len(stack))
	}

	return depth, nil
}

func assignable(pc int, got, want []reflect.Type) error {
	for i := range want {
		if !got[i].AssignableTo(want[i]) {
			return fmt.Errorf("%04d: operand %d is %s, %s expected", pc, i, got[i], want[i])
		}
	}

	return nil
}

func results(ft reflect.Type) []reflect.Type {
	out := make([]reflect.Type, 0, ft.NumOut())
	for i := 0; i < ft.NumOut(); i++ {
		out = append(out, ft.Out(i))
	}

	return out
}

func fieldType(t reflect.Type, path []int) (reflect.Type, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	for _, i := range path {
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct || i < 0 || i >= t.NumField() {
			return nil, fmt.Errorf("field path %v does not fit %s", path, t)
		}
		t = t.Field(i).Type
	}

	if len(path) == 0 {
		return nil, errors.New("empty field path")
	}

	return t, nil
}
