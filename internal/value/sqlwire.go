package value

import (
	"math"
	"math/big"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/relaydata/corebridge/internal/bridgeerr"
)

// PgxArg converts a scalar Value into a type pgx's default type map can bind
// directly as a query argument. Arrays and documents are not scalars; use
// BindArray / PgxArg on JSON-encoded Values for those.
//
// Decimals bind through pgtype.Numeric (a native arbitrary-precision path);
// float32 NaN is not representable on the wire and exports as SQL NULL, per
// the no-silent-narrowing invariant in §3 ("producers that cannot represent
// a foreign scalar emit Null on export").
func (v Value) PgxArg() (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindInt16:
		return int16(v.i), nil
	case KindInt32:
		return int32(v.i), nil
	case KindInt64:
		return v.i, nil
	case KindFloat32:
		if math.IsNaN(float64(v.f32)) {
			return nil, nil
		}
		return v.f32, nil
	case KindFloat64:
		if math.IsNaN(v.f64) {
			return nil, nil
		}
		return v.f64, nil
	case KindString:
		return v.s, nil
	case KindBytes:
		return v.bs, nil
	case KindUUID:
		return v.u, nil
	case KindDate:
		return pgtype.Date{Time: v.t, Valid: true}, nil
	case KindTimeOfDay:
		return v.t.Format("15:04:05.999999"), nil
	case KindNaiveTimestamp:
		return pgtype.Timestamp{Time: v.t, Valid: true}, nil
	case KindTimestampUTC:
		return pgtype.Timestamptz{Time: v.t, Valid: true}, nil
	case KindJSON:
		return v.bs, nil
	case KindDecimal:
		return decimalToNumeric(v.dec), nil
	case KindObjectIDHex:
		return v.s, nil
	case KindMillis:
		return v.ms, nil
	case KindArray:
		return BindArray(v.arr)
	case KindDocument:
		return nil, bridgeerr.NewWireError("cannot bind a Document directly as a SQL argument; encode it as JsonTree first", nil)
	default:
		return nil, bridgeerr.NewWireError("unknown Value kind for SQL bind", nil)
	}
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).Set(d.Coefficient()), Exp: d.Exponent(), Valid: true}
}

// numericToDecimal is the inverse of decimalToNumeric, used when reading a
// NUMERIC column back from the backend.
func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// BindArray implements the array binding policy of §4.4 / §9: a sequence of
// Values whose non-null elements share one of the eight scalar-arrayable
// kinds binds as a native T[] (or a nullable T[] if any element is Null);
// anything else — mixed tags, nested arrays, documents, decimals,
// timestamps — binds as a single JSON value. Empty arrays bind as a
// text[]-typed NULL, since there is no element to infer a type from.
func BindArray(elems []Value) (any, error) {
	if len(elems) == 0 {
		return ([]string)(nil), nil
	}

	kind := KindNull
	hasNull := false
	mixed := false
	for _, e := range elems {
		if e.kind == KindNull {
			hasNull = true
			continue
		}
		if kind == KindNull {
			kind = e.kind
		} else if kind != e.kind {
			mixed = true
			break
		}
	}

	if mixed || kind == KindNull || !kind.IsScalarArrayable() {
		return jsonArray(elems)
	}

	switch kind {
	case KindInt16:
		return buildNullableArray(elems, hasNull, func(v Value) int16 { i, _ := v.Int16(); return i })
	case KindInt32:
		return buildNullableArray(elems, hasNull, func(v Value) int32 { i, _ := v.Int32(); return i })
	case KindInt64:
		return buildNullableArray(elems, hasNull, func(v Value) int64 { i, _ := v.Int64(); return i })
	case KindFloat32:
		return buildNullableArray(elems, hasNull, func(v Value) float32 { f, _ := v.Float32(); return f })
	case KindFloat64:
		return buildNullableArray(elems, hasNull, func(v Value) float64 { f, _ := v.Float64(); return f })
	case KindBool:
		return buildNullableArray(elems, hasNull, func(v Value) bool { b, _ := v.Bool(); return b })
	case KindString:
		return buildNullableArray(elems, hasNull, func(v Value) string { s, _ := v.Str(); return s })
	case KindUUID:
		return buildNullableArray(elems, hasNull, func(v Value) uuid.UUID { u, _ := v.UUID(); return u })
	default:
		return jsonArray(elems)
	}
}

// buildNullableArray materializes elems as []T if no element is Null, or
// []*T (with nil entries for Null) if any element is Null.
func buildNullableArray[T any](elems []Value, hasNull bool, extract func(Value) T) any {
	if !hasNull {
		out := make([]T, len(elems))
		for i, e := range elems {
			out[i] = extract(e)
		}
		return out
	}
	out := make([]*T, len(elems))
	for i, e := range elems {
		if e.kind == KindNull {
			continue
		}
		t := extract(e)
		out[i] = &t
	}
	return out
}

// FromPgxNative converts a value already decoded by pgx's default type map
// (as returned by pgx.Rows.Values()) into a Value. It dispatches on the Go
// type pgx chose rather than the raw wire OID; no OID is consulted.
// Unrecognized dynamic types return ok == false; rowscan then applies
// §4.8's "unknown type codes fall back to string extraction with a warning"
// rule, doing the fmt string extraction and logging the warning itself,
// since only it holds a logger.
func FromPgxNative(raw any) (Value, bool) {
	switch t := raw.(type) {
	case nil:
		return Null(), true
	case bool:
		return NewBool(t), true
	case int16:
		return NewInt16(t), true
	case int32:
		return NewInt32(t), true
	case int64:
		return NewInt64(t), true
	case float32:
		return NewFloat32(t), true
	case float64:
		return NewFloat64(t), true
	case string:
		return NewString(t), true
	case []byte:
		return NewBytes(t), true
	case uuid.UUID:
		return NewUUID(t), true
	case pgtype.Numeric:
		return NewDecimal(numericToDecimal(t)), true
	case pgtype.Date:
		return NewDate(t.Time), true
	case pgtype.Timestamp:
		return NewNaiveTimestamp(t.Time), true
	case pgtype.Timestamptz:
		return NewTimestampUTC(t.Time), true
	default:
		return Value{}, false
	}
}

func jsonArray(elems []Value) (any, error) {
	tree := make([]any, len(elems))
	for i, e := range elems {
		v, err := e.toJSONTree()
		if err != nil {
			return nil, err
		}
		tree[i] = v
	}
	return marshalJSON(tree)
}
