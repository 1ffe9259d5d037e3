// Package value implements the canonical in-memory Value tagged union shared
// by the SQL composer, the document orchestrator and their wire-conversion
// layers. A Value carries exactly one of a fixed set of scalar or composite
// kinds; no variant silently narrows into another on construction, and the
// conversions in sqlwire.go / bsonwire.go are the only places a Value ever
// loses information (and they document exactly where).
package value

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind discriminates the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindUUID
	KindDate
	KindTimeOfDay
	KindNaiveTimestamp
	KindTimestampUTC
	KindJSON
	KindDecimal
	KindObjectIDHex
	KindMillis
	KindArray
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt16:
		return "SignedInt16"
	case KindInt32:
		return "SignedInt32"
	case KindInt64:
		return "SignedInt64"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "Utf8String"
	case KindBytes:
		return "ByteString"
	case KindUUID:
		return "Uuid"
	case KindDate:
		return "Date"
	case KindTimeOfDay:
		return "TimeOfDay"
	case KindNaiveTimestamp:
		return "NaiveTimestamp"
	case KindTimestampUTC:
		return "TimestampUtc"
	case KindJSON:
		return "JsonTree"
	case KindDecimal:
		return "Decimal"
	case KindObjectIDHex:
		return "ObjectIdHex"
	case KindMillis:
		return "MillisSinceEpoch"
	case KindArray:
		return "HomogeneousOrMixedArray"
	case KindDocument:
		return "Document"
	default:
		return "Unknown"
	}
}

// DocField is one (key, Value) pair of an ordered Document.
type DocField struct {
	Key string
	Val Value
}

// Value is the tagged union described by spec §3. Only the fields relevant
// to Kind are meaningful; the rest are zero. Construct with the New*
// functions rather than building a literal directly.
type Value struct {
	kind Kind

	b    bool
	i    int64
	f64  float64
	f32  float32
	s    string
	bs   []byte
	u    uuid.UUID
	t    time.Time
	dec  decimal.Decimal
	ms   int64
	arr  []Value
	doc  []DocField
}

func Null() Value                 { return Value{kind: KindNull} }
func NewBool(b bool) Value        { return Value{kind: KindBool, b: b} }
func NewInt16(i int16) Value      { return Value{kind: KindInt16, i: int64(i)} }
func NewInt32(i int32) Value      { return Value{kind: KindInt32, i: int64(i)} }
func NewInt64(i int64) Value      { return Value{kind: KindInt64, i: i} }
func NewFloat32(f float32) Value  { return Value{kind: KindFloat32, f32: f} }
func NewFloat64(f float64) Value  { return Value{kind: KindFloat64, f64: f} }
func NewString(s string) Value    { return Value{kind: KindString, s: s} }
func NewBytes(b []byte) Value     { return Value{kind: KindBytes, bs: b} }
func NewUUID(u uuid.UUID) Value   { return Value{kind: KindUUID, u: u} }

// NewDate stores only the calendar-date portion of t (UTC, time-of-day
// truncated to midnight); the wire converters never look at the clock
// fields for this kind.
func NewDate(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewTimeOfDay stores a clock-only value; the calendar fields of t are
// ignored by the wire converters.
func NewTimeOfDay(t time.Time) Value { return Value{kind: KindTimeOfDay, t: t} }

// NewNaiveTimestamp stores a timestamp with no attached time zone.
func NewNaiveTimestamp(t time.Time) Value { return Value{kind: KindNaiveTimestamp, t: t} }

// NewTimestampUTC stores a timestamp known to be UTC.
func NewTimestampUTC(t time.Time) Value { return Value{kind: KindTimestampUTC, t: t.UTC()} }

// NewJSON stores a raw JSON document or array as opaque bytes, reparsed only
// at wire-conversion time.
func NewJSON(raw []byte) Value { return Value{kind: KindJSON, bs: raw} }

func NewDecimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }

// NewObjectIDHex stores a 24-character hex Mongo ObjectId, kept as text
// until BSON wire conversion. Callers that already hold a validated hex
// string should use this instead of NewString so that TypeHinted mode
// recognizes it as an explicit ObjectId reference.
func NewObjectIDHex(hex string) Value { return Value{kind: KindObjectIDHex, s: hex} }

func NewMillis(ms int64) Value { return Value{kind: KindMillis, ms: ms} }

func NewArray(elems []Value) Value { return Value{kind: KindArray, arr: elems} }

func NewDocument(fields []DocField) Value { return Value{kind: KindDocument, doc: fields} }

func (v Value) Kind() Kind  { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool)             { return v.b, v.kind == KindBool }
func (v Value) Int16() (int16, bool)           { return int16(v.i), v.kind == KindInt16 }
func (v Value) Int32() (int32, bool)           { return int32(v.i), v.kind == KindInt32 }
func (v Value) Int64() (int64, bool)           { return v.i, v.kind == KindInt64 }
func (v Value) Float32() (float32, bool)       { return v.f32, v.kind == KindFloat32 }
func (v Value) Float64() (float64, bool)       { return v.f64, v.kind == KindFloat64 }
func (v Value) Str() (string, bool)            { return v.s, v.kind == KindString }
func (v Value) Bytes() ([]byte, bool)          { return v.bs, v.kind == KindBytes }
func (v Value) UUID() (uuid.UUID, bool)        { return v.u, v.kind == KindUUID }
func (v Value) Date() (time.Time, bool)        { return v.t, v.kind == KindDate }
func (v Value) TimeOfDay() (time.Time, bool)   { return v.t, v.kind == KindTimeOfDay }
func (v Value) NaiveTimestamp() (time.Time, bool) {
	return v.t, v.kind == KindNaiveTimestamp
}
func (v Value) TimestampUTC() (time.Time, bool) { return v.t, v.kind == KindTimestampUTC }
func (v Value) JSON() ([]byte, bool)            { return v.bs, v.kind == KindJSON }
func (v Value) Decimal() (decimal.Decimal, bool) { return v.dec, v.kind == KindDecimal }
func (v Value) ObjectIDHex() (string, bool)      { return v.s, v.kind == KindObjectIDHex }
func (v Value) Millis() (int64, bool)            { return v.ms, v.kind == KindMillis }
func (v Value) Array() ([]Value, bool)           { return v.arr, v.kind == KindArray }
func (v Value) Document() ([]DocField, bool)     { return v.doc, v.kind == KindDocument }

// Equal reports whether v and other carry the same kind and payload.
// Recognized by github.com/google/go-cmp as a custom equality method, so
// test code can cmp.Diff slices of Value without reaching into unexported
// fields.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt16, KindInt32, KindInt64:
		return v.i == other.i
	case KindFloat32:
		return v.f32 == other.f32
	case KindFloat64:
		return v.f64 == other.f64
	case KindString, KindObjectIDHex:
		return v.s == other.s
	case KindBytes, KindJSON:
		return bytes.Equal(v.bs, other.bs)
	case KindUUID:
		return v.u == other.u
	case KindDate, KindTimeOfDay, KindNaiveTimestamp, KindTimestampUTC:
		return v.t.Equal(other.t)
	case KindDecimal:
		return v.dec.Equal(other.dec)
	case KindMillis:
		return v.ms == other.ms
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindDocument:
		if len(v.doc) != len(other.doc) {
			return false
		}
		for i := range v.doc {
			if v.doc[i].Key != other.doc[i].Key || !v.doc[i].Val.Equal(other.doc[i].Val) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsScalarArrayable reports whether Kind k has a native SQL array element
// type (INT2/INT4/INT8/FLOAT4/FLOAT8/BOOL/TEXT/UUID), per the array-binding
// policy in §4.4.
func (k Kind) IsScalarArrayable() bool {
	switch k {
	case KindInt16, KindInt32, KindInt64, KindFloat32, KindFloat64, KindBool, KindString, KindUUID:
		return true
	default:
		return false
	}
}
