package docstore

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/relaydata/corebridge/internal/bridgeerr"
	"github.com/relaydata/corebridge/internal/value"
)

// parallelThreshold is the fixed batch size at or above which element
// conversion runs concurrently, per §5's "Parallelism" (a compile-time
// constant, not tunable by callers).
const parallelThreshold = 50

// toBSONBatch converts vals to BSON wire form, off the host lock. Batches
// at or above parallelThreshold convert concurrently across a pool bounded
// by GOMAXPROCS; smaller batches convert sequentially to avoid scheduler
// overhead.
func toBSONBatch(ctx context.Context, vals []value.Value) ([]any, error) {
	out := make([]any, len(vals))
	if len(vals) < parallelThreshold {
		for i, v := range vals {
			converted, err := v.ToBSON()
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range vals {
		i := i
		g.Go(func() error {
			converted, err := vals[i].ToBSON()
			if err != nil {
				return err
			}
			out[i] = converted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// extractDocument walks a generic map[string]any (the host-language
// document literal, decoded under the host lock) into an ordered
// []value.DocField — the Value-model intermediate form, per §4.7's
// "two-phase conversion" phase 1.
func extractDocument(doc map[string]any, keys []string) (value.Value, error) {
	fields := make([]value.DocField, 0, len(doc))
	for _, k := range keys {
		v, err := extractAny(doc[k])
		if err != nil {
			return value.Value{}, err
		}
		fields = append(fields, value.DocField{Key: k, Val: v})
	}
	return value.NewDocument(fields), nil
}

// extractAny converts one decoded host value into the Value model. Unlike
// the SQL side, document input does not carry type-descriptor metadata, so
// this dispatches on Go's native decoded shape rather than a schema.
func extractAny(v any) (value.Value, error) {
	switch x := v.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.NewBool(x), nil
	case int32:
		return value.NewInt32(x), nil
	case int64:
		return value.NewInt64(x), nil
	case int:
		return value.NewInt64(int64(x)), nil
	case float64:
		return value.NewFloat64(x), nil
	case string:
		return value.NewString(x), nil
	case []byte:
		return value.NewBytes(x), nil
	case bson.ObjectID:
		return value.NewObjectIDHex(x.Hex()), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		return extractDocument(x, keys)
	case []any:
		elems := make([]value.Value, len(x))
		for i, e := range x {
			conv, err := extractAny(e)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = conv
		}
		return value.NewArray(elems), nil
	default:
		return value.Value{}, bridgeerr.NewWireError("unsupported document field type", nil)
	}
}

// documentKeys returns a document's keys in map-iteration order; callers
// that need deterministic field order should pass an explicit key list to
// extractDocument instead (map[string]any has no stable order of its own —
// this is acceptable for document fields, since BSON field order inside a
// nested sub-document is not semantically meaningful to the operators this
// orchestrator issues).
func documentKeys(doc map[string]any) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	return keys
}
