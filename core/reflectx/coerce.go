package reflectx

import (
	"errors"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Func converts a boxed value to a reflect.Value of a fixed target type.
type Func func(v any) (reflect.Value, error)

var (
	boolType    = reflect.TypeOf(false)
	intType     = reflect.TypeOf(int(0))
	int16Type   = reflect.TypeOf(int16(0))
	int32Type   = reflect.TypeOf(int32(0))
	int64Type   = reflect.TypeOf(int64(0))
	uintType    = reflect.TypeOf(uint(0))
	uint16Type  = reflect.TypeOf(uint16(0))
	uint32Type  = reflect.TypeOf(uint32(0))
	uint64Type  = reflect.TypeOf(uint64(0))
	float32Type = reflect.TypeOf(float32(0))
	float64Type = reflect.TypeOf(float64(0))
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})

	// ErrorType is the reflect.Type of the error interface.
	ErrorType = reflect.TypeOf((*error)(nil)).Elem()
)

// coercions is the closed numeric coercion table. The key is the exact parameter type:
// named types with the same underlying kind are not in the table and are unboxed instead.
// int32 doubles as the char entry since rune is an alias of int32.
var coercions = map[reflect.Type]Func{
	boolType:    coerceBool,
	intType:     signed(intType, strconv.IntSize),
	int16Type:   signed(int16Type, 16),
	int32Type:   coerceChar,
	int64Type:   signed(int64Type, 64),
	uintType:    unsigned(uintType, strconv.IntSize),
	uint16Type:  unsigned(uint16Type, 16),
	uint32Type:  unsigned(uint32Type, 32),
	uint64Type:  unsigned(uint64Type, 64),
	float32Type: floating(float32Type),
	float64Type: floating(float64Type),
	decimalType: coerceDecimal,
	timeType:    coerceTime,
}

// Coercion returns the table conversion registered for exactly t.
func Coercion(t reflect.Type) (Func, bool) {
	f, ok := coercions[t]
	return f, ok
}

// unwrap replaces protobuf scalar wrappers with the value they carry.
func unwrap(v any) any {
	switch w := v.(type) {
	case *wrapperspb.BoolValue:
		return w.GetValue()
	case *wrapperspb.Int32Value:
		return w.GetValue()
	case *wrapperspb.Int64Value:
		return w.GetValue()
	case *wrapperspb.UInt32Value:
		return w.GetValue()
	case *wrapperspb.UInt64Value:
		return w.GetValue()
	case *wrapperspb.FloatValue:
		return w.GetValue()
	case *wrapperspb.DoubleValue:
		return w.GetValue()
	case *wrapperspb.StringValue:
		return w.GetValue()
	}

	return v
}

func coerceBool(v any) (reflect.Value, error) {
	v = unwrap(v)
	if v == nil {
		return reflect.ValueOf(false), nil
	}

	if d, ok := v.(decimal.Decimal); ok {
		return reflect.ValueOf(!d.IsZero()), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return reflect.ValueOf(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(rv.Int() != 0), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return reflect.ValueOf(rv.Uint() != 0), nil
	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(rv.Float() != 0), nil
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		switch {
		case strings.EqualFold(s, "true"):
			return reflect.ValueOf(true), nil
		case strings.EqualFold(s, "false"):
			return reflect.ValueOf(false), nil
		}
		return reflect.Value{}, NewValueError(v, boolType, ErrInvalidArgumentValue, nil)
	}

	return reflect.Value{}, NewValueError(v, boolType, ErrInvalidCast, nil)
}

func coerceChar(v any) (reflect.Value, error) {
	v = unwrap(v)
	if s, ok := v.(string); ok {
		if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32); err != nil && utf8.RuneCountInString(s) == 1 {
			r, _ := utf8.DecodeRuneInString(s)
			return reflect.ValueOf(r), nil
		}
	}

	return signed(int32Type, 32)(v)
}

func signed(t reflect.Type, bits int) Func {
	var (
		lo = int64(-1) << (bits - 1)
		hi = int64(1)<<(bits-1) - 1
	)

	return func(v any) (reflect.Value, error) {
		n, err := toInt64(unwrap(v), t)
		if err != nil {
			return reflect.Value{}, err
		}

		if n < lo || n > hi {
			return reflect.Value{}, NewValueError(v, t, ErrOverflow, nil)
		}

		return reflect.ValueOf(n).Convert(t), nil
	}
}

func unsigned(t reflect.Type, bits int) Func {
	hi := uint64(math.MaxUint64)
	if bits < 64 {
		hi = uint64(1)<<bits - 1
	}

	return func(v any) (reflect.Value, error) {
		n, err := toUint64(unwrap(v), t)
		if err != nil {
			return reflect.Value{}, err
		}

		if n > hi {
			return reflect.Value{}, NewValueError(v, t, ErrOverflow, nil)
		}

		return reflect.ValueOf(n).Convert(t), nil
	}
}

func floating(t reflect.Type) Func {
	return func(v any) (reflect.Value, error) {
		f, err := toFloat64(unwrap(v), t)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(f).Convert(t), nil
	}
}

func toInt64(v any, t reflect.Type) (int64, error) {
	if v == nil {
		return 0, nil
	}

	if d, ok := v.(decimal.Decimal); ok {
		n := d.RoundBank(0).BigInt()
		if !n.IsInt64() {
			return 0, NewValueError(v, t, ErrOverflow, nil)
		}
		return n.Int64(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, NewValueError(v, t, ErrOverflow, nil)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := math.RoundToEven(rv.Float())
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, NewValueError(v, t, ErrOverflow, nil)
		}
		return int64(f), nil
	case reflect.String:
		n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		if err != nil {
			return 0, parseError(v, t, err)
		}
		return n, nil
	}

	return 0, NewValueError(v, t, ErrInvalidCast, nil)
}

func toUint64(v any, t reflect.Type) (uint64, error) {
	if v == nil {
		return 0, nil
	}

	if d, ok := v.(decimal.Decimal); ok {
		n := d.RoundBank(0).BigInt()
		if !n.IsUint64() {
			return 0, NewValueError(v, t, ErrOverflow, nil)
		}
		return n.Uint64(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return 0, NewValueError(v, t, ErrOverflow, nil)
		}
		return uint64(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		f := math.RoundToEven(rv.Float())
		if math.IsNaN(f) || f < 0 || f >= math.MaxUint64 {
			return 0, NewValueError(v, t, ErrOverflow, nil)
		}
		return uint64(f), nil
	case reflect.String:
		n, err := strconv.ParseUint(strings.TrimSpace(rv.String()), 10, 64)
		if err != nil {
			return 0, parseError(v, t, err)
		}
		return n, nil
	}

	return 0, NewValueError(v, t, ErrInvalidCast, nil)
}

func toFloat64(v any, t reflect.Type) (float64, error) {
	if v == nil {
		return 0, nil
	}

	if d, ok := v.(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return 0, parseError(v, t, err)
		}
		return f, nil
	}

	return 0, NewValueError(v, t, ErrInvalidCast, nil)
}

func coerceDecimal(v any) (reflect.Value, error) {
	v = unwrap(v)
	if v == nil {
		return reflect.ValueOf(decimal.Zero), nil
	}

	if d, ok := v.(decimal.Decimal); ok {
		return reflect.ValueOf(d), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return reflect.ValueOf(decimal.NewFromInt(1)), nil
		}
		return reflect.ValueOf(decimal.Zero), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(decimal.NewFromInt(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return reflect.ValueOf(decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0)), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return reflect.Value{}, NewValueError(v, decimalType, ErrOverflow, nil)
		}
		if rv.Kind() == reflect.Float32 {
			return reflect.ValueOf(decimal.NewFromFloat32(float32(f))), nil
		}
		return reflect.ValueOf(decimal.NewFromFloat(f)), nil
	case reflect.String:
		d, err := decimal.NewFromString(strings.TrimSpace(rv.String()))
		if err != nil {
			return reflect.Value{}, NewValueError(v, decimalType, ErrInvalidArgumentValue, err)
		}
		return reflect.ValueOf(d), nil
	}

	return reflect.Value{}, NewValueError(v, decimalType, ErrInvalidCast, nil)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func coerceTime(v any) (reflect.Value, error) {
	switch src := unwrap(v).(type) {
	case nil:
		return reflect.ValueOf(time.Time{}), nil
	case time.Time:
		return reflect.ValueOf(src), nil
	case *time.Time:
		if src == nil {
			return reflect.ValueOf(time.Time{}), nil
		}
		return reflect.ValueOf(*src), nil
	case *timestamppb.Timestamp:
		if err := src.CheckValid(); err != nil {
			return reflect.Value{}, NewValueError(v, timeType, ErrInvalidArgumentValue, err)
		}
		return reflect.ValueOf(src.AsTime()), nil
	case string:
		var err error
		for _, layout := range timeLayouts {
			var ts time.Time
			if ts, err = time.Parse(layout, strings.TrimSpace(src)); err == nil {
				return reflect.ValueOf(ts), nil
			}
		}
		return reflect.Value{}, NewValueError(v, timeType, ErrInvalidArgumentValue, err)
	}

	return reflect.Value{}, NewValueError(v, timeType, ErrInvalidCast, nil)
}

func parseError(v any, t reflect.Type, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return NewValueError(v, t, ErrOverflow, err)
	}

	return NewValueError(v, t, ErrInvalidArgumentValue, err)
}
