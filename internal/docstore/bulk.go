package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/relaydata/corebridge/internal/bridgeerr"
)

// BulkOpKind tags one entry of a bulk-write batch, per §3's Document Plan.
type BulkOpKind int

const (
	BulkInsertOne BulkOpKind = iota
	BulkUpdateOne
	BulkUpdateMany
	BulkDeleteOne
	BulkDeleteMany
	BulkReplaceOne
)

// BulkOp is one tagged operation in a bulk-write batch. Filter and Document
// are host-language documents as appropriate to Kind (Document carries the
// inserted document, the update document or the replacement); Upsert
// applies only to the update/replace kinds.
type BulkOp struct {
	Kind     BulkOpKind
	Filter   map[string]any
	Document map[string]any
	Upsert   bool
}

// BulkWriteResult carries the aggregate counts across every attempted
// operation plus a map from input-index (as int64, matching the driver's
// own result shape) to upserted primary key for operations that produced
// one, per §4.7.
type BulkWriteResult struct {
	InsertedCount int64
	MatchedCount  int64
	ModifiedCount int64
	DeletedCount  int64
	UpsertedCount int64
	UpsertedIDs   map[int64]any
}

// BulkWrite extracts and validates every operation's documents up front
// (phase 1), then issues them. Ordered mode stops at the first backend
// error and propagates it; unordered attempts every operation and
// accumulates success counts, never raising for a per-operation failure.
func (s *Store) BulkWrite(ctx context.Context, database, collection string, ops []BulkOp, ordered bool) (BulkWriteResult, error) {
	models := make([]mongo.WriteModel, len(ops))
	for i, op := range ops {
		model, err := buildWriteModel(op, s.ValidateQueries)
		if err != nil {
			return BulkWriteResult{}, err
		}
		models[i] = model
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return BulkWriteResult{}, err
	}

	res, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(ordered))
	result := BulkWriteResult{}
	if res != nil {
		result = BulkWriteResult{
			InsertedCount: res.InsertedCount,
			MatchedCount:  res.MatchedCount,
			ModifiedCount: res.ModifiedCount,
			DeletedCount:  res.DeletedCount,
			UpsertedCount: res.UpsertedCount,
			UpsertedIDs:   res.UpsertedIDs,
		}
	}
	if err != nil {
		if ordered {
			return result, s.wrapBackendError("bulk write", err)
		}
		// Unordered mode never raises for per-operation failures; the
		// accumulated counts in res already reflect every operation the
		// backend did manage to apply.
	}
	return result, nil
}

func buildWriteModel(op BulkOp, validateQueries bool) (mongo.WriteModel, error) {
	var filterBSON, docBSON any
	var err error

	if op.Filter != nil {
		if validateQueries {
			if err := validateQueryDocument(op.Filter); err != nil {
				return nil, err
			}
		}
		filterBSON, err = extractAndConvert(op.Filter)
		if err != nil {
			return nil, err
		}
	}
	if op.Document != nil {
		docBSON, err = extractAndConvert(op.Document)
		if err != nil {
			return nil, err
		}
	}

	switch op.Kind {
	case BulkInsertOne:
		return mongo.NewInsertOneModel().SetDocument(docBSON), nil
	case BulkUpdateOne:
		return mongo.NewUpdateOneModel().SetFilter(filterBSON).SetUpdate(docBSON).SetUpsert(op.Upsert), nil
	case BulkUpdateMany:
		return mongo.NewUpdateManyModel().SetFilter(filterBSON).SetUpdate(docBSON).SetUpsert(op.Upsert), nil
	case BulkDeleteOne:
		return mongo.NewDeleteOneModel().SetFilter(filterBSON), nil
	case BulkDeleteMany:
		return mongo.NewDeleteManyModel().SetFilter(filterBSON), nil
	case BulkReplaceOne:
		return mongo.NewReplaceOneModel().SetFilter(filterBSON).SetReplacement(docBSON).SetUpsert(op.Upsert), nil
	default:
		return nil, bridgeerr.NewWireError("unrecognized bulk operation kind", nil)
	}
}

func extractAndConvert(doc map[string]any) (any, error) {
	v, err := extractDocument(doc, documentKeys(doc))
	if err != nil {
		return nil, err
	}
	return v.ToBSON()
}
