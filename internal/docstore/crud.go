package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/relaydata/corebridge/internal/value"
)

// FindOptions mirrors the optional clauses of a document read: projection,
// sort, skip and limit, per §3's "Document Plan (document side)".
type FindOptions struct {
	Projection map[string]any
	Sort       map[string]any
	Skip       *int64
	Limit      *int64
}

// toMongoFindOptions renders the caller-facing options into the driver's
// own options type.
func (o FindOptions) toMongoFindOptions() *options.FindOptionsBuilder {
	opts := options.Find()
	if o.Projection != nil {
		opts = opts.SetProjection(o.Projection)
	}
	if o.Sort != nil {
		opts = opts.SetSort(o.Sort)
	}
	if o.Skip != nil {
		opts = opts.SetSkip(*o.Skip)
	}
	if o.Limit != nil {
		opts = opts.SetLimit(*o.Limit)
	}
	return opts
}

// Find extracts filter into the Value model (phase 1) before taking the
// read lock, then, holding the read lock, converts it to BSON (phase 2) and
// issues the query.
func (s *Store) Find(ctx context.Context, database, collection string, filter map[string]any, opts FindOptions) ([]bson.M, error) {
	if s.ValidateQueries {
		if err := validateQueryDocument(filter); err != nil {
			return nil, err
		}
	}

	filterVal, err := extractDocument(filter, documentKeys(filter))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return nil, err
	}

	bsonFilter, err := filterVal.ToBSON()
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bsonFilter, opts.toMongoFindOptions())
	if err != nil {
		return nil, s.wrapBackendError("find", err)
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, s.wrapBackendError("decode find results", err)
	}
	return results, nil
}

// InsertOne extracts doc, converts it, and inserts it.
func (s *Store) InsertOne(ctx context.Context, database, collection string, doc map[string]any) (any, error) {
	docVal, err := extractDocument(doc, documentKeys(doc))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return nil, err
	}

	bsonDoc, err := docVal.ToBSON()
	if err != nil {
		return nil, err
	}

	res, err := coll.InsertOne(ctx, bsonDoc)
	if err != nil {
		return nil, s.wrapBackendError("insert one", err)
	}
	return res.InsertedID, nil
}

// InsertMany extracts every document (phase 1), then converts the batch
// (phase 2) using toBSONBatch's parallel-threshold policy, which Aggregate
// also uses. BulkWrite does not use it: it converts its operations one at a
// time whatever the batch size.
func (s *Store) InsertMany(ctx context.Context, database, collection string, docs []map[string]any) ([]any, error) {
	vals := make([]value.Value, len(docs))
	for i, d := range docs {
		v, err := extractDocument(d, documentKeys(d))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}

	bsonDocs, err := toBSONBatch(ctx, vals)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return nil, err
	}

	res, err := coll.InsertMany(ctx, bsonDocs)
	if err != nil {
		return nil, s.wrapBackendError("insert many", err)
	}
	ids := make([]any, len(res.InsertedIDs))
	copy(ids, res.InsertedIDs)
	return ids, nil
}

// UpdateResult carries the counts returned by an update/replace operation.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedID    any
}

func (s *Store) UpdateOne(ctx context.Context, database, collection string, filter, update map[string]any, upsert bool) (UpdateResult, error) {
	return s.updateOne(ctx, database, collection, filter, update, upsert, false)
}

func (s *Store) ReplaceOne(ctx context.Context, database, collection string, filter, replacement map[string]any, upsert bool) (UpdateResult, error) {
	return s.updateOne(ctx, database, collection, filter, replacement, upsert, true)
}

func (s *Store) updateOne(ctx context.Context, database, collection string, filter, update map[string]any, upsert, replace bool) (UpdateResult, error) {
	if s.ValidateQueries {
		if err := validateQueryDocument(filter); err != nil {
			return UpdateResult{}, err
		}
	}

	filterVal, err := extractDocument(filter, documentKeys(filter))
	if err != nil {
		return UpdateResult{}, err
	}
	updateVal, err := extractDocument(update, documentKeys(update))
	if err != nil {
		return UpdateResult{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return UpdateResult{}, err
	}

	bsonFilter, err := filterVal.ToBSON()
	if err != nil {
		return UpdateResult{}, err
	}
	bsonUpdate, err := updateVal.ToBSON()
	if err != nil {
		return UpdateResult{}, err
	}

	var res *mongo.UpdateResult
	if replace {
		res, err = coll.ReplaceOne(ctx, bsonFilter, bsonUpdate, options.Replace().SetUpsert(upsert))
	} else {
		res, err = coll.UpdateOne(ctx, bsonFilter, bsonUpdate, options.UpdateOne().SetUpsert(upsert))
	}
	if err != nil {
		return UpdateResult{}, s.wrapBackendError("update one", err)
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount, UpsertedID: res.UpsertedID}, nil
}

func (s *Store) UpdateMany(ctx context.Context, database, collection string, filter, update map[string]any, upsert bool) (UpdateResult, error) {
	if s.ValidateQueries {
		if err := validateQueryDocument(filter); err != nil {
			return UpdateResult{}, err
		}
	}

	filterVal, err := extractDocument(filter, documentKeys(filter))
	if err != nil {
		return UpdateResult{}, err
	}
	updateVal, err := extractDocument(update, documentKeys(update))
	if err != nil {
		return UpdateResult{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return UpdateResult{}, err
	}

	bsonFilter, err := filterVal.ToBSON()
	if err != nil {
		return UpdateResult{}, err
	}
	bsonUpdate, err := updateVal.ToBSON()
	if err != nil {
		return UpdateResult{}, err
	}

	res, err := coll.UpdateMany(ctx, bsonFilter, bsonUpdate, options.UpdateMany().SetUpsert(upsert))
	if err != nil {
		return UpdateResult{}, s.wrapBackendError("update many", err)
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount, UpsertedID: res.UpsertedID}, nil
}

func (s *Store) DeleteOne(ctx context.Context, database, collection string, filter map[string]any) (int64, error) {
	return s.delete(ctx, database, collection, filter, false)
}

func (s *Store) DeleteMany(ctx context.Context, database, collection string, filter map[string]any) (int64, error) {
	return s.delete(ctx, database, collection, filter, true)
}

func (s *Store) delete(ctx context.Context, database, collection string, filter map[string]any, many bool) (int64, error) {
	if s.ValidateQueries {
		if err := validateQueryDocument(filter); err != nil {
			return 0, err
		}
	}

	filterVal, err := extractDocument(filter, documentKeys(filter))
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return 0, err
	}

	bsonFilter, err := filterVal.ToBSON()
	if err != nil {
		return 0, err
	}

	var res *mongo.DeleteResult
	if many {
		res, err = coll.DeleteMany(ctx, bsonFilter)
	} else {
		res, err = coll.DeleteOne(ctx, bsonFilter)
	}
	if err != nil {
		return 0, s.wrapBackendError("delete", err)
	}
	return res.DeletedCount, nil
}

// Aggregate passes the caller's pipeline stages through to the backend
// after the same operator-denylist scan applied to filters.
func (s *Store) Aggregate(ctx context.Context, database, collection string, pipeline []map[string]any) ([]bson.M, error) {
	if s.ValidateQueries {
		for _, stage := range pipeline {
			if err := validateQueryDocument(stage); err != nil {
				return nil, err
			}
		}
	}

	stages := make([]value.Value, len(pipeline))
	for i, stage := range pipeline {
		v, err := extractDocument(stage, documentKeys(stage))
		if err != nil {
			return nil, err
		}
		stages[i] = v
	}
	bsonStages, err := toBSONBatch(ctx, stages)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Aggregate(ctx, bsonStages)
	if err != nil {
		return nil, s.wrapBackendError("aggregate", err)
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, s.wrapBackendError("decode aggregate results", err)
	}
	return results, nil
}

// CountDocuments and EstimatedDocumentCount are read-only aggregate
// helpers supplementing the core CRUD surface (see original_source's
// mongodb client, which exposes both).
func (s *Store) CountDocuments(ctx context.Context, database, collection string, filter map[string]any) (int64, error) {
	if s.ValidateQueries {
		if err := validateQueryDocument(filter); err != nil {
			return 0, err
		}
	}
	filterVal, err := extractDocument(filter, documentKeys(filter))
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return 0, err
	}
	bsonFilter, err := filterVal.ToBSON()
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bsonFilter)
	if err != nil {
		return 0, s.wrapBackendError("count documents", err)
	}
	return n, nil
}

func (s *Store) EstimatedDocumentCount(ctx context.Context, database, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return 0, err
	}
	n, err := coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, s.wrapBackendError("estimated document count", err)
	}
	return n, nil
}

// Distinct shares the same filter-extraction path as Find.
func (s *Store) Distinct(ctx context.Context, database, collection, field string, filter map[string]any) ([]any, error) {
	if s.ValidateQueries {
		if err := validateQueryDocument(filter); err != nil {
			return nil, err
		}
	}
	filterVal, err := extractDocument(filter, documentKeys(filter))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return nil, err
	}
	bsonFilter, err := filterVal.ToBSON()
	if err != nil {
		return nil, err
	}
	var results []any
	if err := coll.Distinct(ctx, field, bsonFilter).Decode(&results); err != nil {
		return nil, s.wrapBackendError("distinct", err)
	}
	return results, nil
}
