package fastclass

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/anoideaopen/fastreflect/core/emit"
	"github.com/anoideaopen/fastreflect/core/meta"
)

// lastConstructorID names constructor programs.
var lastConstructorID atomic.Uint64

// Constructor is the compiled thunk of a constructor. It is safe for concurrent use.
type Constructor struct {
	ctx     *Context
	target  *meta.Constructor
	invoker emit.Invoker
	uid     uint64

	params  []reflect.Type
	nonNull []bool
}

func compileConstructor(c *Context, ctor *meta.Constructor) *Constructor {
	uid := lastConstructorID.Add(1)
	params := ctor.Params()

	g := emit.NewGenerator(fmt.Sprintf("%s.new#%d", c.typ, uid), len(params))
	if ctor.IsImplicit() {
		g.Emit(emit.Instruction{Op: emit.NewObj, Type: c.typ})
	} else {
		for i, p := range params {
			g.EmitLoadArg(i).EmitCastConversion(p)
		}
		g.EmitCall(ctor.Func())
		adapt(g, ctor.Produces(), c.typ)
	}
	g.EmitReturn(c.typ)

	return &Constructor{
		ctx:     c,
		target:  ctor,
		invoker: emit.MustAssemble(g.Program()),
		uid:     uid,
		params:  params,
		nonNull: nonNullable(params),
	}
}

// adapt converts a constructed T or *T to the context type.
func adapt(g *emit.Generator, produced, want reflect.Type) {
	switch {
	case produced == want:
	case produced.Kind() == reflect.Pointer && produced.Elem() == want:
		g.EmitOp(emit.Deref)
	case want.Kind() == reflect.Pointer && want.Elem() == produced:
		g.EmitOp(emit.Addr)
	}
}

// New constructs a value of the context type from args.
func (c *Constructor) New(args ...any) (any, error) {
	if err := checkArgs(c.ctx.typ.String(), c.params, c.nonNull, args); err != nil {
		return nil, err
	}

	return c.invoker(nil, args)
}

// ID returns the number that tells constructor programs apart.
func (c *Constructor) ID() uint64 { return c.uid }

// Target returns the descriptor the thunk was compiled for.
func (c *Constructor) Target() *meta.Constructor { return c.target }

// Context returns the owning context.
func (c *Constructor) Context() *Context { return c.ctx }

// ParameterCount returns the number of arguments New expects.
func (c *Constructor) ParameterCount() int { return len(c.params) }
