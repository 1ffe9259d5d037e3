package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/relaydata/corebridge/internal/bridgeerr"
)

// IndexKey is one (field, direction) pair of a compound index key, where
// direction is 1 for ascending or -1 for descending.
type IndexKey struct {
	Field     string
	Direction int
}

// IndexSpec describes one index to create: Keys is an ordered field →
// direction spec, matching the driver's own index-model key document
// shape. Order matters for compound indexes — a slice, not a map, so
// callers' declared column order survives.
type IndexSpec struct {
	Keys   []IndexKey
	Unique bool
	Name   string
}

// CreateIndex and DropIndex / ListIndexes supplement the core CRUD surface
// per §4.7's "plus index ... management".
func (s *Store) CreateIndex(ctx context.Context, database, collection string, spec IndexSpec) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return "", err
	}

	keys := make(bson.D, 0, len(spec.Keys))
	for _, k := range spec.Keys {
		keys = append(keys, bson.E{Key: k.Field, Value: k.Direction})
	}

	opts := options.Index()
	if spec.Unique {
		opts = opts.SetUnique(true)
	}
	if spec.Name != "" {
		opts = opts.SetName(spec.Name)
	}

	model := mongo.IndexModel{Keys: keys, Options: opts}
	name, err := coll.Indexes().CreateOne(ctx, model)
	if err != nil {
		return "", s.wrapBackendError("create index", err)
	}
	return name, nil
}

func (s *Store) DropIndex(ctx context.Context, database, collection, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return err
	}
	if _, err := coll.Indexes().DropOne(ctx, name); err != nil {
		return s.wrapBackendError("drop index", err)
	}
	return nil
}

func (s *Store) ListIndexes(ctx context.Context, database, collection string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, s.wrapBackendError("list indexes", err)
	}
	defer cursor.Close(ctx)

	var results []map[string]any
	if err := cursor.All(ctx, &results); err != nil {
		return nil, s.wrapBackendError("decode index list", err)
	}
	return results, nil
}

// ListCollectionNames and DropCollection supplement the core CRUD surface
// per §4.7's "plus ... collection management".
func (s *Store) ListCollectionNames(ctx context.Context, database string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, bridgeerr.NewNotInitializedError()
	}
	names, err := s.client.Database(database).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, s.wrapBackendError("list collection names", err)
	}
	return names, nil
}

func (s *Store) DropCollection(ctx context.Context, database, collection string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, err := s.collection(database, collection)
	if err != nil {
		return err
	}
	if err := coll.Drop(ctx); err != nil {
		return s.wrapBackendError("drop collection", err)
	}
	return nil
}
