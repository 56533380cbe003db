package capsule

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"

	"github.com/anoideaopen/fastreflect/core/fastclass"
	"github.com/anoideaopen/fastreflect/core/reflectx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	intType    = reflect.TypeOf(0)
	stringType = reflect.TypeOf("")
)

func TestCreatePoint(t *testing.T) {
	ctx, err := Create("Point", F("x", intType), F("y", intType))
	require.NoError(t, err)

	typ := ctx.TargetType()
	require.Equal(t, reflect.Pointer, typ.Kind())
	require.Equal(t, reflect.Struct, typ.Elem().Kind())
	require.Equal(t, 2, typ.Elem().NumField())
	require.Equal(t, "X", typ.Elem().Field(0).Name)
	require.Equal(t, "Y", typ.Elem().Field(1).Name)

	instance, err := ctx.NewInstance()
	require.NoError(t, err)

	x := ctx.FieldByName("x")
	y := ctx.FieldByName("y")
	require.NotNil(t, x)
	require.NotNil(t, y)

	require.NoError(t, x.Set(instance, 3))
	got, err := x.Get(instance)
	require.NoError(t, err)
	require.Equal(t, 3, got)

	got, err = y.Get(instance)
	require.NoError(t, err)
	require.Equal(t, 0, got)

	require.NoError(t, y.Set(instance, 4))
	got, err = x.Get(instance)
	require.NoError(t, err)
	require.Equal(t, 3, got)

	raw, err := json.Marshal(instance)
	require.NoError(t, err)
	require.JSONEq(t, `{"x":3,"y":4}`, string(raw))
}

func TestCreateValueContext(t *testing.T) {
	ctx, err := Create("Account", F("owner", stringType), F("balance", reflect.TypeOf(int64(0))))
	require.NoError(t, err)

	a, err := ctx.NewInstance()
	require.NoError(t, err)
	require.NoError(t, ctx.FieldByName("owner").Set(a, "ann"))

	valueCtx := fastclass.GetContext(ctx.TargetType().Elem())
	v, err := valueCtx.NewInstance()
	require.NoError(t, err)
	require.ErrorIs(t, valueCtx.FieldByName("owner").Set(v, "bob"), reflectx.ErrNotAddressable)

	got, err := valueCtx.FieldByName("owner").Get(reflect.ValueOf(a).Elem().Interface())
	require.NoError(t, err)
	require.Equal(t, "ann", got)
}

func TestCreateIsIdempotent(t *testing.T) {
	fields := []Field{F("name", stringType), F("size", intType)}

	first, err := Create("Box", fields...)
	require.NoError(t, err)
	second, err := Create("Box", fields...)
	require.NoError(t, err)
	require.Same(t, first, second)

	typ, ok := Lookup("Box")
	require.True(t, ok)
	require.Equal(t, first.TargetType(), reflect.PointerTo(typ))

	_, err = Create("Box", F("name", stringType))
	require.ErrorIs(t, err, ErrNameTaken)
	require.ErrorIs(t, err, fastclass.ErrConfiguration)

	other, err := Create("Crate", fields...)
	require.NoError(t, err)
	require.NotEqual(t, first.TargetType(), other.TargetType())
}

func TestCreateConcurrently(t *testing.T) {
	const goroutines = 16

	contexts := make([]*fastclass.Context, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			contexts[i], _ = Create("Pair", F("left", intType), F("right", intType))
		}(i)
	}
	wg.Wait()

	for _, c := range contexts {
		require.NotNil(t, c)
		require.Same(t, contexts[0], c)
	}
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		capsule string
		fields  []Field
		err     error
	}{
		{"empty name", "", []Field{F("x", intType)}, ErrInvalidName},
		{"bad name", "1Point", []Field{F("x", intType)}, ErrInvalidName},
		{"no fields", "Empty", nil, ErrNoFields},
		{"empty field name", "Bad", []Field{F("", intType)}, ErrInvalidField},
		{"field name with space", "Bad", []Field{F("a b", intType)}, ErrInvalidField},
		{"underscore field", "Bad", []Field{F("_x", intType)}, ErrInvalidField},
		{"nil type", "Bad", []Field{F("x", nil)}, ErrInvalidField},
		{"duplicate", "Bad", []Field{F("x", intType), F("x", stringType)}, ErrDuplicate},
		{"duplicate after export", "Bad", []Field{F("x", intType), F("X", intType)}, ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(tt.capsule, tt.fields...)
			require.ErrorIs(t, err, tt.err)
			require.ErrorIs(t, err, fastclass.ErrConfiguration)
		})
	}

	_, ok := Lookup("Bad")
	require.False(t, ok)
}

func TestModuleID(t *testing.T) {
	id := ModuleID()
	require.NotEqual(t, uuid.Nil, id)
	require.Equal(t, id, ModuleID())
}
