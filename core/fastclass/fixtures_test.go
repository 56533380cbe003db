package fastclass

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/anoideaopen/fastreflect/core/meta"
)

type Wallet struct {
	Owner   string `fast:"owner"`
	Limit   int16
	balance int64
	calls   int
	Tags    []string
}

func (w *Wallet) Deposit(amount int64) int64 {
	w.calls++
	w.balance += amount
	return w.balance
}

func (w *Wallet) Withdraw(amount int64) (int64, error) {
	if amount > w.balance {
		return w.balance, errors.New("insufficient funds")
	}
	w.balance -= amount
	return w.balance, nil
}

func (w Wallet) Describe(prefix string, scale float64) string {
	return fmt.Sprintf("%s%s:%.2f", prefix, w.Owner, float64(w.balance)*scale)
}

func (w Wallet) Split(parts int32) (int64, int64) {
	return w.balance / int64(parts), w.balance % int64(parts)
}

func (w *Wallet) Tag(tags ...string) int {
	w.Tags = append(w.Tags, tags...)
	return len(w.Tags)
}

func (w *Wallet) Reset() { w.balance = 0 }

func (w Wallet) Balance() int64 { return w.balance }

func (w *Wallet) SetBalance(v int64) { w.balance = v }

func (w *Wallet) SetPin(string) {}

func (w Wallet) Calls() int { return w.calls }

type Stamped struct {
	Created any
	Nested
	*Extra
}

type Nested struct {
	Depth int
	note  string
}

type Extra struct{ Label string }

type Shape interface {
	Area() float64
	Name() string
}

type square struct{ side float64 }

func (s square) Area() float64 { return s.side * s.side }
func (s square) Name() string  { return "square" }

type circle struct{ r float64 }

func (c *circle) Area() float64 { return math.Pi * c.r * c.r }
func (c *circle) Name() string  { return "circle" }

// Ledger has registered members only.
type Ledger struct {
	Entries []string
	Scale   int
}

var (
	ledgerCount int
	ledgerRate  = 1.5
)

func newLedger(scale int) *Ledger { return &Ledger{Scale: scale} }

func newLedgerNamed(name string, scale int) (Ledger, error) {
	if name == "" {
		return Ledger{}, errors.New("empty name")
	}
	return Ledger{Entries: []string{name}, Scale: scale}, nil
}

func ledgerTotal(l Ledger, extra int) int { return len(l.Entries)*l.Scale + extra }

func ledgerJoin(sep string, parts ...string) string { return strings.Join(parts, sep) }

// Sealed has no parameterless constructor.
type Sealed struct{ Key string }

// Twin has two parameterless constructors.
type Twin struct{ From string }

func init() {
	meta.MustRegister(reflect.TypeOf(Ledger{}),
		meta.ConstructorFunc(newLedger),
		meta.ConstructorFunc(newLedgerNamed),
		meta.ExtensionMethod("Total", ledgerTotal),
		meta.StaticMethod("Join", ledgerJoin),
		meta.StaticField("Count", &ledgerCount),
		meta.StaticProperty("Rate",
			func() float64 { return ledgerRate },
			func(v float64) { ledgerRate = v }),
		meta.StaticProperty("Version", func() string { return "1" }, nil),
	)

	meta.MustRegister(reflect.TypeOf(Sealed{}),
		meta.ConstructorFunc(func(key string) Sealed { return Sealed{Key: key} }),
	)

	meta.MustRegister(reflect.TypeOf(Twin{}),
		meta.ConstructorFunc(func() Twin { return Twin{From: "value"} }),
		meta.ConstructorFunc(func() *Twin { return &Twin{From: "pointer"} }),
	)
}
