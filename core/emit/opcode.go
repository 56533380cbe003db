package emit

// OpCode is an abstract instruction of an invoker program. Programs operate on an
// evaluation stack of reflect.Value.
type OpCode uint8

const (
	LdArg0       OpCode = iota // push the receiver
	CastReceiver               // pop the receiver, push it cast to Type
	LdArg                      // push argument Index
	Convert                    // pop, push the table coercion to Type
	Unbox                      // pop, push the exact-type unbox to Type
	CastClass                  // pop, push the reference cast to Type
	Call                       // pop the parameters of Func, call it, push the results
	CallVirt                   // pop an interface receiver and parameters, call method Index of Type
	TrapError                  // pop an error, return it when not nil
	NewObj                     // push a new value of Type
	Addr                       // pop a value, push a pointer to a copy of it
	Deref                      // pop a pointer, push the value it points to
	LdFld                      // pop a struct or pointer to struct, push the field at Path
	StFld                      // pop a value and a pointer to struct, store the value at Path
	LdSFld                     // push the variable Var
	StSFld                     // pop a value, store it in Var
	Box                        // pop a value, push it boxed
	Ref                        // pop a reference, push it boxed with nil normalized
	Pack                       // pop Index values, push them boxed in a []any
	LdNull                     // push a boxed nil
	Ret                        // return the top of the stack or nil
)

var mnemonics = [...]string{
	LdArg0:       "ldarg.0",
	CastReceiver: "castreceiver",
	LdArg:        "ldarg",
	Convert:      "convert",
	Unbox:        "unbox",
	CastClass:    "castclass",
	Call:         "call",
	CallVirt:     "callvirt",
	TrapError:    "traperror",
	NewObj:       "newobj",
	Addr:         "addr",
	Deref:        "deref",
	LdFld:        "ldfld",
	StFld:        "stfld",
	LdSFld:       "ldsfld",
	StSFld:       "stsfld",
	Box:          "box",
	Ref:          "ref",
	Pack:         "pack",
	LdNull:       "ldnull",
	Ret:          "ret",
}

// String returns the mnemonic of the op code.
func (op OpCode) String() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}

	return "unknown"
}
