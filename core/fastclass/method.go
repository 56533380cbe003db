package fastclass

import (
	"fmt"
	"reflect"

	"github.com/anoideaopen/fastreflect/core/emit"
	"github.com/anoideaopen/fastreflect/core/meta"
	"github.com/anoideaopen/fastreflect/core/reflectx"
)

var slotsType = reflect.TypeOf([]any(nil))

// Method is the compiled thunk of a method. It is safe for concurrent use.
type Method struct {
	ctx     *Context
	target  *meta.Method
	invoker emit.Invoker

	params    []reflect.Type
	nonNull   []bool
	extension bool
}

func compileMethod(c *Context, m *meta.Method) *Method {
	params := m.Params()

	g := emit.NewGenerator(fmt.Sprintf("%s.%s", c.typ, m.Name()), len(params))
	loadReceiver(g, m)
	for i, p := range params {
		g.EmitLoadArg(i).EmitCastConversion(p)
	}
	call(g, m)
	g.EmitReturn(m.Results()...)

	return &Method{
		ctx:       c,
		target:    m,
		invoker:   emit.MustAssemble(g.Program()),
		params:    params,
		nonNull:   nonNullable(params),
		extension: m.IsExtension(),
	}
}

func nonNullable(params []reflect.Type) []bool {
	nonNull := make([]bool, len(params))
	for i, p := range params {
		nonNull[i] = !reflectx.Nullable(p)
	}

	return nonNull
}

// checkArgs validates the argument count and rejects nil for value-type parameters
// before anything is executed.
func checkArgs(member string, params []reflect.Type, nonNull []bool, args []any) error {
	if len(args) != len(params) {
		return fmt.Errorf("%w: found %d but expected %d: '%s'",
			reflectx.ErrIncorrectArgumentCount, len(args), len(params), member)
	}

	for i, check := range nonNull {
		if check && args[i] == nil {
			return fmt.Errorf("argument %d of '%s': %w",
				i, member, reflectx.NewValueError(nil, params[i], reflectx.ErrNullArgument, nil))
		}
	}

	return nil
}

// Invoke calls the method on receiver with args. Static methods ignore the receiver. An
// extension method called with a receiver gets it as its first argument.
//
// The result is nil for methods without results, the result itself for one result and a
// []any for more. A trailing error result of the method is returned as the error.
func (m *Method) Invoke(receiver any, args ...any) (any, error) {
	if m.extension && receiver != nil {
		args = append([]any{receiver}, args...)
		receiver = nil
	}

	if err := checkArgs(m.target.Name(), m.params, m.nonNull, args); err != nil {
		return nil, err
	}

	return m.invoker(receiver, args)
}

// InvokeStatic calls a static method.
func (m *Method) InvokeStatic(args ...any) (any, error) {
	return m.Invoke(nil, args...)
}

// Target returns the descriptor the thunk was compiled for.
func (m *Method) Target() *meta.Method { return m.target }

// Context returns the owning context.
func (m *Method) Context() *Context { return m.ctx }

// Name returns the method name.
func (m *Method) Name() string { return m.target.Name() }

// ParameterCount returns the number of arguments Invoke expects.
func (m *Method) ParameterCount() int { return len(m.params) }

// DeclaringType returns the type the method was found on.
func (m *Method) DeclaringType() reflect.Type { return m.target.Owner().Type() }

// ReturnType returns the type of the value Invoke returns, nil for methods without results.
func (m *Method) ReturnType() reflect.Type {
	results := m.target.Results()

	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	default:
		return slotsType
	}
}
