package value

import (
	goccyjson "github.com/goccy/go-json"

	"github.com/relaydata/corebridge/internal/bridgeerr"
)

func marshalJSON(v any) ([]byte, error) {
	b, err := goccyjson.Marshal(v)
	if err != nil {
		return nil, bridgeerr.NewWireError("failed to marshal value to JSON", err)
	}
	return b, nil
}

// toJSONTree renders a Value as a plain Go value (map[string]any, []any,
// string, the Go integer and float types, []byte, bool, nil) suitable for
// marshaling with encoding/json or
// goccy/go-json. It is used both for the heterogeneous-array JSON fallback
// in sqlwire.go and for JsonTree round-tripping.
func (v Value) toJSONTree() (any, error) {
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
		return v.f32, nil
	case KindFloat64:
		return v.f64, nil
	case KindString:
		return v.s, nil
	case KindBytes:
		return v.bs, nil
	case KindUUID:
		return v.u.String(), nil
	case KindDate:
		return v.t.Format("2006-01-02"), nil
	case KindTimeOfDay:
		return v.t.Format("15:04:05.999999"), nil
	case KindNaiveTimestamp:
		return v.t.Format("2006-01-02T15:04:05.999999"), nil
	case KindTimestampUTC:
		return v.t.UTC().Format("2006-01-02T15:04:05.999999Z"), nil
	case KindJSON:
		var tree any
		if err := goccyjson.Unmarshal(v.bs, &tree); err != nil {
			return nil, bridgeerr.NewWireError("failed to parse JsonTree value", err)
		}
		return tree, nil
	case KindDecimal:
		return v.dec.String(), nil
	case KindObjectIDHex:
		return v.s, nil
	case KindMillis:
		return v.ms, nil
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			t, err := e.toJSONTree()
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	case KindDocument:
		out := make(map[string]any, len(v.doc))
		for _, f := range v.doc {
			t, err := f.Val.toJSONTree()
			if err != nil {
				return nil, err
			}
			out[f.Key] = t
		}
		return out, nil
	default:
		return nil, bridgeerr.NewWireError("unknown Value kind for JSON conversion", nil)
	}
}

// MarshalJSON renders v as a standalone JSON document, useful for logging
// and for the heterogeneous-array fallback path.
func (v Value) MarshalJSON() ([]byte, error) {
	tree, err := v.toJSONTree()
	if err != nil {
		return nil, err
	}
	return marshalJSON(tree)
}
