package value

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/relaydata/corebridge/internal/bridgeerr"
)

func decimalFromString(s string) (decimal.Decimal, error) { return decimal.NewFromString(s) }

// ObjectIDMode governs whether a plain 24-hex-character string auto-converts
// to a BSON ObjectId during document-wire binding. It is process-wide
// configuration, set once at startup via SetObjectIDMode.
type ObjectIDMode int

const (
	// ObjectIDLenient auto-converts any 24-hex-character string, emitting a
	// one-time deprecation warning on first use. This is the default, for
	// compatibility with callers that never adopted explicit ObjectId
	// wrapper values.
	ObjectIDLenient ObjectIDMode = iota
	// ObjectIDTypeHinted only converts Values explicitly constructed with
	// NewObjectIDHex; plain strings that happen to look like hex24 never
	// auto-convert.
	ObjectIDTypeHinted
	// ObjectIDStrict never auto-converts; only Values already typed as
	// ObjectIdHex become BSON ObjectIds.
	ObjectIDStrict
)

var objectIDMode atomic.Int32

func init() { objectIDMode.Store(int32(ObjectIDLenient)) }

// SetObjectIDMode sets the process-wide ObjectId inference mode. Intended to
// be called once at host startup, before any document operation runs.
func SetObjectIDMode(m ObjectIDMode) { objectIDMode.Store(int32(m)) }

// GetObjectIDMode returns the current process-wide ObjectId inference mode.
func GetObjectIDMode() ObjectIDMode { return ObjectIDMode(objectIDMode.Load()) }

var lenientDeprecationWarned sync.Once

func warnLenientAutoConvert(hex string) {
	lenientDeprecationWarned.Do(func() {
		prefix := hex
		if len(prefix) > 8 {
			prefix = prefix[:8]
		}
		fmt.Fprintf(os.Stderr, "corebridge: deprecated lenient ObjectId auto-conversion triggered for string beginning %q; switch to TypeHinted or Strict mode and wrap explicit ids with value.NewObjectIDHex\n", prefix)
	})
}

func isHex24(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// ToBSON converts v into a value the mongo-driver/v2 bson encoder accepts
// directly, per the tag mapping in §4.4: Null→nil, Bool→bool, Int32→int32,
// Int64→int64, Double→float64, String→string, ByteString→bson.Binary
// (generic subtype), MillisSinceEpoch→bson.DateTime, Decimal→Decimal128 (via
// textual parse, falling back to string), ObjectIdHex→ObjectID (via hex
// parse, falling back to string), Array→[]any (recursive),
// Document→bson.D (recursive, order-preserving).
func (v Value) ToBSON() (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindInt16:
		return int32(v.i), nil
	case KindInt32:
		return int32(v.i), nil
	case KindInt64:
		return v.i, nil
	case KindFloat32:
		return float64(v.f32), nil
	case KindFloat64:
		return v.f64, nil
	case KindString:
		return v.objectIDAwareString()
	case KindBytes:
		return bson.Binary{Subtype: 0x00, Data: v.bs}, nil
	case KindUUID:
		return bson.Binary{Subtype: 0x04, Data: v.u[:]}, nil
	case KindDate:
		return bson.NewDateTimeFromTime(v.t), nil
	case KindTimeOfDay:
		return v.t.Format("15:04:05.999999"), nil
	case KindNaiveTimestamp:
		return bson.NewDateTimeFromTime(v.t), nil
	case KindTimestampUTC:
		return bson.NewDateTimeFromTime(v.t.UTC()), nil
	case KindJSON:
		tree, err := (Value{kind: KindJSON, bs: v.bs}).toJSONTree()
		if err != nil {
			return nil, err
		}
		return tree, nil
	case KindDecimal:
		if d, err := bson.ParseDecimal128(v.dec.String()); err == nil {
			return d, nil
		}
		return v.dec.String(), nil
	case KindObjectIDHex:
		if oid, err := bson.ObjectIDFromHex(v.s); err == nil {
			return oid, nil
		}
		return v.s, nil
	case KindMillis:
		return bson.DateTime(v.ms), nil
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			b, err := e.ToBSON()
			if err != nil {
				return nil, err
			}
			out[i] = b
		}
		return out, nil
	case KindDocument:
		out := make(bson.D, 0, len(v.doc))
		for _, f := range v.doc {
			b, err := f.Val.ToBSON()
			if err != nil {
				return nil, err
			}
			out = append(out, bson.E{Key: f.Key, Value: b})
		}
		return out, nil
	default:
		return nil, bridgeerr.NewWireError("unknown Value kind for BSON bind", nil)
	}
}

// objectIDAwareString applies the ObjectId inference mode to a plain String
// Value: Lenient converts any hex24 string (warning once); TypeHinted and
// Strict never convert a plain String (only an explicit ObjectIdHex Value
// converts, handled in the KindObjectIDHex case above).
func (v Value) objectIDAwareString() (any, error) {
	if GetObjectIDMode() == ObjectIDLenient && isHex24(v.s) {
		if oid, err := bson.ObjectIDFromHex(v.s); err == nil {
			warnLenientAutoConvert(v.s)
			return oid, nil
		}
	}
	return v.s, nil
}

// FromBSON converts a value already decoded by the mongo-driver/v2 bson
// codec (as returned from a cursor Decode into bson.M / bson.D, or from a
// raw bson.RawValue.AsInterface) into a Value.
func FromBSON(raw any) (Value, bool) {
	switch t := raw.(type) {
	case nil:
		return Null(), true
	case bool:
		return NewBool(t), true
	case int32:
		return NewInt32(t), true
	case int64:
		return NewInt64(t), true
	case float64:
		return NewFloat64(t), true
	case string:
		return NewString(t), true
	case bson.Binary:
		if t.Subtype == 0x04 && len(t.Data) == 16 {
			var u uuid.UUID
			copy(u[:], t.Data)
			return NewUUID(u), true
		}
		return NewBytes(t.Data), true
	case bson.ObjectID:
		return NewObjectIDHex(t.Hex()), true
	case bson.DateTime:
		return NewTimestampUTC(t.Time()), true
	case bson.Decimal128:
		d, err := decimalFromString(t.String())
		if err != nil {
			return NewString(t.String()), true
		}
		return NewDecimal(d), true
	case bson.A:
		out := make([]Value, len(t))
		for i, e := range t {
			cv, ok := FromBSON(e)
			if !ok {
				return Value{}, false
			}
			out[i] = cv
		}
		return NewArray(out), true
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			cv, ok := FromBSON(e)
			if !ok {
				return Value{}, false
			}
			out[i] = cv
		}
		return NewArray(out), true
	case bson.D:
		out := make([]DocField, len(t))
		for i, e := range t {
			cv, ok := FromBSON(e.Value)
			if !ok {
				return Value{}, false
			}
			out[i] = DocField{Key: e.Key, Val: cv}
		}
		return NewDocument(out), true
	case bson.M:
		out := make([]DocField, 0, len(t))
		for k, e := range t {
			cv, ok := FromBSON(e)
			if !ok {
				return Value{}, false
			}
			out = append(out, DocField{Key: k, Val: cv})
		}
		return NewDocument(out), true
	default:
		return Value{}, false
	}
}
