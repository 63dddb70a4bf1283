package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Value is the typed result of converting one cell.
// Each supported kind has exactly one implementation.
type Value interface {
	Kind() Kind
	Value() any
}

type ValueText struct {
	Val string
}

func (ValueText) Kind() Kind {
	return KindText
}

func (v ValueText) Value() any {
	return v.Val
}

type ValueUUID struct {
	Val uuid.UUID
}

func (ValueUUID) Kind() Kind {
	return KindUUID
}

func (v ValueUUID) Value() any {
	return v.Val
}

type ValueBytes struct {
	Val []byte
}

func (ValueBytes) Kind() Kind {
	return KindBytes
}

func (v ValueBytes) Value() any {
	return v.Val
}

type ValueInt32 struct {
	Val int32
}

func (ValueInt32) Kind() Kind {
	return KindInt32
}

func (v ValueInt32) Value() any {
	return v.Val
}

type ValueInt64 struct {
	Val int64
}

func (ValueInt64) Kind() Kind {
	return KindInt64
}

func (v ValueInt64) Value() any {
	return v.Val
}

type ValueFloat32 struct {
	Val float32
}

func (ValueFloat32) Kind() Kind {
	return KindFloat32
}

func (v ValueFloat32) Value() any {
	return v.Val
}

type ValueFloat64 struct {
	Val float64
}

func (ValueFloat64) Kind() Kind {
	return KindFloat64
}

func (v ValueFloat64) Value() any {
	return v.Val
}

type ValueDecimal struct {
	Val decimal.Decimal
}

func (ValueDecimal) Kind() Kind {
	return KindDecimal
}

func (v ValueDecimal) Value() any {
	return v.Val
}

type ValueDateTime struct {
	Val time.Time
}

func (ValueDateTime) Kind() Kind {
	return KindDateTime
}

func (v ValueDateTime) Value() any {
	return v.Val
}

// ZeroValue returns the value reported for a cell of the given kind when
// conversion fails. Text and unsupported kinds have no zero: the raw text is
// returned instead, so ZeroValue gives an empty ValueText for them.
func ZeroValue(kind Kind) Value {
	switch kind {
	case KindUUID:
		return ValueUUID{Val: uuid.Nil}
	case KindBytes:
		return ValueBytes{Val: []byte{}}
	case KindInt32:
		return ValueInt32{}
	case KindInt64:
		return ValueInt64{}
	case KindFloat32:
		return ValueFloat32{}
	case KindFloat64:
		return ValueFloat64{}
	case KindDecimal:
		return ValueDecimal{Val: decimal.Zero}
	case KindDateTime:
		return ValueDateTime{Val: time.Time{}}
	default:
		return ValueText{}
	}
}
