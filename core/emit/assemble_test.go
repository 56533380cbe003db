package emit

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/anoideaopen/fastreflect/core/reflectx"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Total int
	step  int
}

func (c *counter) Add(n int32) int { c.Total += int(n) + c.step; return c.Total }

func (c counter) Peek() (int, error) {
	if c.Total < 0 {
		return 0, errors.New("negative")
	}
	return c.Total, nil
}

var (
	counterType = reflect.TypeOf(counter{})
	intType     = reflect.TypeOf(0)
	int32Type   = reflect.TypeOf(int32(0))
	stringerT   = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

type label string

func (l label) String() string { return strings.ToUpper(string(l)) }

func methodFunc(t reflect.Type, name string) reflect.Value {
	m, _ := t.MethodByName(name)
	return m.Func
}

func TestAssembleInstanceCall(t *testing.T) {
	p := NewGenerator("counter.Add", 1).
		EmitLoadReceiver(reflect.PointerTo(counterType)).
		EmitLoadArg(0).
		EmitCastConversion(int32Type).
		EmitCall(methodFunc(reflect.PointerTo(counterType), "Add")).
		EmitReturn(intType).
		Program()

	inv, err := Assemble(p)
	require.NoError(t, err)

	c := &counter{Total: 1, step: 1}
	out, err := inv(c, []any{int64(3)})
	require.NoError(t, err)
	require.Equal(t, 5, out)
	require.Equal(t, 5, c.Total)

	_, err = inv(c, []any{"xy"})
	require.ErrorIs(t, err, reflectx.ErrInvalidArgumentValue)

	_, err = inv(*c, []any{1})
	require.ErrorIs(t, err, reflectx.ErrNotAddressable)

	_, err = inv(nil, []any{1})
	require.ErrorIs(t, err, reflectx.ErrNullArgument)

	_, err = inv(c, nil)
	require.ErrorIs(t, err, reflectx.ErrIncorrectArgumentCount)
}

func TestAssembleTrapError(t *testing.T) {
	inv := MustAssemble(NewGenerator("counter.Peek", 0).
		EmitLoadReceiver(counterType).
		EmitCall(methodFunc(counterType, "Peek")).
		EmitReturn(intType).
		Program())

	out, err := inv(&counter{Total: 7}, nil)
	require.NoError(t, err)
	require.Equal(t, 7, out)

	_, err = inv(counter{Total: -1}, nil)
	require.EqualError(t, err, "negative")
}

func TestAssembleCallVirt(t *testing.T) {
	inv := MustAssemble(NewGenerator("Stringer.String", 0).
		EmitLoadReceiver(stringerT).
		EmitCallVirt(stringerT, 0).
		EmitReturn(reflect.TypeOf("")).
		Program())

	out, err := inv(label("abc"), nil)
	require.NoError(t, err)
	require.Equal(t, "ABC", out)

	_, err = inv(42, nil)
	require.ErrorIs(t, err, reflectx.ErrInvalidCast)
}

func TestAssembleFields(t *testing.T) {
	get := MustAssemble(NewGenerator("get step", 0).
		EmitLoadReceiver(counterType).
		Emit(Instruction{Op: LdFld, Path: []int{1}}).
		EmitReturn(intType).
		Program())

	set := MustAssemble(NewGenerator("set step", 1).
		EmitLoadReceiver(reflect.PointerTo(counterType)).
		EmitLoadArg(0).
		EmitExactCast(intType).
		Emit(Instruction{Op: StFld, Path: []int{1}}).
		EmitReturn().
		Program())

	c := &counter{}
	out, err := set(c, []any{9})
	require.NoError(t, err)
	require.Nil(t, out)
	require.Equal(t, 9, c.step)

	out, err = get(*c, nil)
	require.NoError(t, err)
	require.Equal(t, 9, out)

	_, err = set(c, []any{int64(9)})
	require.ErrorIs(t, err, reflectx.ErrInvalidCast)
}

func TestAssembleStaticField(t *testing.T) {
	var v int
	variable := reflect.ValueOf(&v).Elem()

	set := MustAssemble(NewGenerator("set v", 1).
		EmitLoadArg(0).
		EmitExactCast(intType).
		Emit(Instruction{Op: StSFld, Var: variable}).
		EmitReturn().
		Program())
	get := MustAssemble(NewGenerator("get v", 0).
		Emit(Instruction{Op: LdSFld, Var: variable}).
		EmitReturn(intType).
		Program())

	_, err := set(nil, []any{4})
	require.NoError(t, err)
	out, err := get(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 4, out)
}

func TestAssembleNewObjAndPack(t *testing.T) {
	inv := MustAssemble(NewGenerator("pair", 0).
		Emit(Instruction{Op: NewObj, Type: counterType}).
		EmitOp(Addr).
		Emit(Instruction{Op: NewObj, Type: reflect.TypeOf(map[string]int(nil))}).
		EmitReturn(reflect.PointerTo(counterType), reflect.TypeOf(map[string]int(nil))).
		Program())

	out, err := inv(nil, nil)
	require.NoError(t, err)
	pair, ok := out.([]any)
	require.True(t, ok)
	require.Equal(t, &counter{}, pair[0])
	require.Equal(t, map[string]int{}, pair[1])
}

func TestAssembleRejectsInvalidPrograms(t *testing.T) {
	tests := []struct {
		name string
		code []Instruction
	}{
		{"empty", nil},
		{"no ret", []Instruction{{Op: LdNull}}},
		{"underflow", []Instruction{{Op: Box}, {Op: Ret}}},
		{"argument out of range", []Instruction{{Op: LdArg, Index: 1}, {Op: Ret}}},
		{"values left", []Instruction{{Op: LdNull}, {Op: LdNull}, {Op: Ret}}},
		{"convert outside the table", []Instruction{{Op: LdNull}, {Op: Convert, Type: reflect.TypeOf(int8(0))}, {Op: Ret}}},
		{"call with wrong operand", []Instruction{
			{Op: LdNull},
			{Op: Call, Func: reflect.ValueOf(func(int) {})},
			{Op: Ret},
		}},
		{"deref of a value", []Instruction{{Op: NewObj, Type: intType}, {Op: Deref}, {Op: Ret}}},
		{"stfld on a value", []Instruction{
			{Op: NewObj, Type: counterType},
			{Op: NewObj, Type: intType},
			{Op: StFld, Path: []int{0}},
			{Op: Ret},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(&Program{Name: tt.name, Arity: 1, Code: tt.code})
			require.ErrorIs(t, err, ErrInvalidProgram)
		})
	}
}

func TestProgramString(t *testing.T) {
	p := NewGenerator("counter.Add", 1).
		EmitLoadReceiver(reflect.PointerTo(counterType)).
		EmitLoadArg(0).
		EmitCastConversion(int32Type).
		EmitReturn().
		Program()

	require.Contains(t, p.String(), "0000 ldarg.0")
	require.Contains(t, p.String(), "0003 convert int32")
}
