package meta

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/anoideaopen/fastreflect/core/reflectx"
	"github.com/stretchr/testify/require"
)

type entity struct {
	ID     int
	hidden string
}

type account struct {
	entity
	*Audit
	Owner   string `fast:"owner"`
	balance int64
}

type Audit struct {
	CreatedBy string
	ID        string
}

func (a account) Balance() int64       { return a.balance }
func (a *account) SetBalance(v int64)  { a.balance = v }
func (a *account) Deposit(v int64)     { a.balance += v }
func (a account) Describe() string     { return fmt.Sprintf("%s:%d", a.Owner, a.balance) }
func (a *account) SetLabel(string)     {}
func (a *account) Settle() error       { return nil }
func (a account) Split() (int64, bool) { return a.balance / 2, true }

type shape interface {
	Area() float64
	Scale(k float64)
}

type registered struct{ n int }

var registeredCount int

func TestOfMethods(t *testing.T) {
	mt := Of(reflect.TypeOf(&account{}))
	require.Same(t, mt, Of(reflect.TypeOf(account{})))
	require.Equal(t, reflect.TypeOf(account{}), mt.Type())

	deposit, err := mt.Method("Deposit")
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf(&account{}), deposit.Receiver())
	require.Equal(t, []reflect.Type{reflect.TypeOf(int64(0))}, deposit.Params())
	require.Empty(t, deposit.Results())
	require.False(t, deposit.IsStatic())
	require.False(t, deposit.IsVirtual())

	describe, err := mt.Method("Describe")
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf(account{}), describe.Receiver())

	settle, err := mt.Method("Settle")
	require.NoError(t, err)
	require.True(t, settle.ReturnsError())
	require.Empty(t, settle.Results())

	_, err = mt.Method("Withdraw")
	require.ErrorIs(t, err, ErrMemberNotFound)

	again, err := mt.MethodBySignature("Deposit", reflect.TypeOf(int64(0)))
	require.NoError(t, err)
	require.Same(t, deposit, again)

	_, err = mt.MethodBySignature("Deposit", reflect.TypeOf(0))
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestOfInterfaceMethods(t *testing.T) {
	mt := Of(reflect.TypeOf((*shape)(nil)).Elem())

	area, err := mt.Method("Area")
	require.NoError(t, err)
	require.True(t, area.IsVirtual())
	require.False(t, area.Func().IsValid())

	p, err := mt.Property("Area")
	require.NoError(t, err)
	require.Same(t, area, p.Getter())
	require.Nil(t, p.Setter())

	require.Empty(t, mt.Constructors())
}

func TestOfFields(t *testing.T) {
	mt := Of(reflect.TypeOf(account{}))

	owner, err := mt.Field("owner")
	require.NoError(t, err)
	require.Equal(t, "Owner", owner.Name())
	require.True(t, owner.IsDirect())

	byName, err := mt.Field("Owner")
	require.NoError(t, err)
	require.Same(t, owner, byName)

	balance, err := mt.Field("balance")
	require.NoError(t, err)
	require.False(t, balance.IsDirect())

	hidden, err := mt.Field("hidden")
	require.NoError(t, err)
	require.Equal(t, 1, hidden.Depth())
	require.Equal(t, []int{0, 1}, hidden.Index())

	createdBy, err := mt.Field("CreatedBy")
	require.NoError(t, err)
	require.True(t, createdBy.IsDirect())
	require.Equal(t, []int{1, 0}, createdBy.Index())

	_, err = mt.Field("ID")
	require.ErrorIs(t, err, ErrAmbiguousMatch)
}

func TestOfProperties(t *testing.T) {
	mt := Of(reflect.TypeOf(account{}))

	balance, err := mt.Property("Balance")
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf(int64(0)), balance.Type())
	require.NotNil(t, balance.Getter())
	require.NotNil(t, balance.Setter())

	label, err := mt.Property("Label")
	require.NoError(t, err)
	require.Nil(t, label.Getter())
	require.NotNil(t, label.Setter())

	_, err = mt.Property("Settle")
	require.ErrorIs(t, err, ErrMemberNotFound)

	_, err = mt.Property("Split")
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestImplicitConstructor(t *testing.T) {
	ctors := Of(reflect.TypeOf(account{})).Constructors()
	require.Len(t, ctors, 1)
	require.True(t, ctors[0].IsImplicit())
	require.Empty(t, ctors[0].Params())

	c, err := Of(reflect.TypeOf(account{})).Constructor()
	require.NoError(t, err)
	require.Same(t, ctors[0], c)
}

func TestRegister(t *testing.T) {
	typ := reflect.TypeOf(registered{})

	require.NoError(t, Register(typ,
		ConstructorFunc(func(n int) *registered { return &registered{n: n} }),
		ConstructorFunc(func() (registered, error) { return registered{}, nil }),
		StaticMethod("Count", func() int { return registeredCount }),
		ExtensionMethod("Double", func(r registered) int { return r.n * 2 }),
		StaticField("Counter", &registeredCount),
		StaticProperty("Total", func() int { return registeredCount }, func(v int) { registeredCount = v }),
	))

	mt := Of(typ)

	ctors := mt.Constructors()
	require.Len(t, ctors, 2)
	require.False(t, ctors[0].IsImplicit())
	require.True(t, ctors[1].ReturnsError())

	c, err := mt.Constructor(reflect.TypeOf(0))
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf(&registered{}), c.Produces())

	count, err := mt.Method("Count")
	require.NoError(t, err)
	require.True(t, count.IsStatic())
	require.Nil(t, count.Receiver())

	double, err := mt.Method("Double")
	require.NoError(t, err)
	require.True(t, double.IsExtension())
	require.Equal(t, []reflect.Type{typ}, double.Params())

	counter, err := mt.Field("Counter")
	require.NoError(t, err)
	require.True(t, counter.IsStatic())
	require.True(t, counter.Variable().CanSet())

	total, err := mt.Property("Total")
	require.NoError(t, err)
	require.True(t, total.IsStatic())
	require.Equal(t, "SetTotal", total.Setter().Name())

	err = Register(typ, StaticMethod("Late", func() {}))
	require.ErrorIs(t, err, ErrSealed)
	require.ErrorIs(t, err, reflectx.ErrConfiguration)
}

func TestRegisterValidation(t *testing.T) {
	type target struct{}
	typ := reflect.TypeOf(target{})

	tests := []struct {
		name string
		reg  Registration
	}{
		{"static method without name", StaticMethod("", func() {})},
		{"static method not a func", StaticMethod("X", 42)},
		{"extension without receiver", ExtensionMethod("X", func() {})},
		{"static field not a pointer", StaticField("X", 42)},
		{"static field nil pointer", StaticField("X", (*int)(nil))},
		{"static property without accessors", StaticProperty("X", nil, nil)},
		{"static property disagreeing accessors", StaticProperty("X", func() int { return 0 }, func(string) {})},
		{"static property getter with params", StaticProperty("X", func(int) int { return 0 }, nil)},
		{"constructor of another type", ConstructorFunc(func() int { return 0 })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Register(typ, tt.reg)
			require.ErrorIs(t, err, ErrInvalidMember)
			require.True(t, errors.Is(err, reflectx.ErrConfiguration))
		})
	}
}

func TestDescriptorIdentity(t *testing.T) {
	mt := Of(reflect.TypeOf(account{}))
	seen := make(map[uint64]bool)

	for _, m := range mt.Methods() {
		require.False(t, seen[m.ID()])
		seen[m.ID()] = true
	}
	for _, f := range mt.Fields() {
		require.False(t, seen[f.ID()])
		seen[f.ID()] = true
	}
}
