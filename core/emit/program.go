package emit

import (
	"fmt"
	"reflect"
	"strings"
)

// Instruction is one op code with its operands. Which operands are used depends on Op.
type Instruction struct {
	Op     OpCode
	Index  int           // LdArg, CallVirt, Pack
	Type   reflect.Type  // CastReceiver, Convert, Unbox, CastClass, CallVirt, NewObj
	Func   reflect.Value // Call
	Path   []int         // LdFld, StFld
	Direct bool          // LdFld, StFld: every field on Path is exported
	Var    reflect.Value // LdSFld, StSFld
}

// String implements fmt.Stringer.
func (in Instruction) String() string {
	switch in.Op {
	case LdArg, Pack:
		return fmt.Sprintf("%s %d", in.Op, in.Index)
	case CastReceiver, Convert, Unbox, CastClass, NewObj:
		return fmt.Sprintf("%s %s", in.Op, in.Type)
	case CallVirt:
		return fmt.Sprintf("%s %s.%s", in.Op, in.Type, in.Type.Method(in.Index).Name)
	case Call:
		return fmt.Sprintf("%s %s", in.Op, in.Func.Type())
	case LdFld, StFld:
		if in.Direct {
			return fmt.Sprintf("%s %v", in.Op, in.Path)
		}
		return fmt.Sprintf("%s %v unexported", in.Op, in.Path)
	case LdSFld, StSFld:
		return fmt.Sprintf("%s %s", in.Op, in.Var.Type())
	default:
		return in.Op.String()
	}
}

// Program is an instruction sequence for an invoker taking Arity arguments.
type Program struct {
	Name  string
	Arity int
	Code  []Instruction
}

// String returns the disassembly of the program.
func (p *Program) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%d args)\n", p.Name, p.Arity)
	for i, in := range p.Code {
		fmt.Fprintf(&b, "%04d %s\n", i, in)
	}

	return b.String()
}
