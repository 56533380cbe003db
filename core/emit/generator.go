package emit

import (
	"reflect"

	"github.com/anoideaopen/fastreflect/core/reflectx"
)

// Generator accumulates the instructions of one program.
type Generator struct {
	name  string
	arity int
	code  []Instruction
}

// NewGenerator starts a program named name for an invoker taking arity arguments.
func NewGenerator(name string, arity int) *Generator {
	return &Generator{name: name, arity: arity}
}

// Emit appends instructions.
func (g *Generator) Emit(code ...Instruction) *Generator {
	g.code = append(g.code, code...)
	return g
}

// EmitOp appends an instruction without operands.
func (g *Generator) EmitOp(op OpCode) *Generator {
	return g.Emit(Instruction{Op: op})
}

// EmitLoadReceiver loads the receiver cast to t.
func (g *Generator) EmitLoadReceiver(t reflect.Type) *Generator {
	return g.Emit(Instruction{Op: LdArg0}, Instruction{Op: CastReceiver, Type: t})
}

// EmitLoadArg loads argument i.
func (g *Generator) EmitLoadArg(i int) *Generator {
	return g.Emit(Instruction{Op: LdArg, Index: i})
}

// EmitCastConversion converts the top of the stack to t the way parameters are
// marshalled: table coercion, unbox or reference cast.
func (g *Generator) EmitCastConversion(t reflect.Type) *Generator {
	switch reflectx.ConversionOf(t) {
	case reflectx.ConversionCoerce:
		return g.Emit(Instruction{Op: Convert, Type: t})
	case reflectx.ConversionUnbox:
		return g.Emit(Instruction{Op: Unbox, Type: t})
	default:
		return g.Emit(Instruction{Op: CastClass, Type: t})
	}
}

// EmitExactCast converts the top of the stack to exactly t, never through the table.
func (g *Generator) EmitExactCast(t reflect.Type) *Generator {
	if reflectx.Nullable(t) {
		return g.Emit(Instruction{Op: CastClass, Type: t})
	}

	return g.Emit(Instruction{Op: Unbox, Type: t})
}

// EmitCall calls fn. A trailing error result is trapped.
func (g *Generator) EmitCall(fn reflect.Value) *Generator {
	g.Emit(Instruction{Op: Call, Func: fn})
	if reflectx.ReturnsError(fn.Type()) {
		g.EmitOp(TrapError)
	}

	return g
}

// EmitCallVirt calls method index of the interface type iface. A trailing error result is trapped.
func (g *Generator) EmitCallVirt(iface reflect.Type, index int) *Generator {
	g.Emit(Instruction{Op: CallVirt, Type: iface, Index: index})
	if reflectx.ReturnsError(iface.Method(index).Type) {
		g.EmitOp(TrapError)
	}

	return g
}

// EmitReturn boxes the values on the stack and returns. No results return nil, one result
// is returned itself, more are returned as a []any.
func (g *Generator) EmitReturn(results ...reflect.Type) *Generator {
	switch len(results) {
	case 0:
	case 1:
		if reflectx.Nullable(results[0]) {
			g.EmitOp(Ref)
		} else {
			g.EmitOp(Box)
		}
	default:
		g.Emit(Instruction{Op: Pack, Index: len(results)})
	}

	return g.EmitOp(Ret)
}

// Program returns the accumulated program.
func (g *Generator) Program() *Program {
	code := make([]Instruction, len(g.code))
	copy(code, g.code)

	return &Program{Name: g.name, Arity: g.arity, Code: code}
}
