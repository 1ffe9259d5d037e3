// Package docstore implements the document CRUD/bulk orchestrator (§4.7):
// a process-wide handle over one *mongo.Client, guarded by a
// single-writer/multi-reader lock, that extracts caller values into the
// Value model before taking the lock and then converts them to wire form.
package docstore

import (
	"context"
	"os"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/relaydata/corebridge/internal/bridgeerr"
	"github.com/relaydata/corebridge/internal/bridgelog"
)

// Store holds exactly one process-wide *mongo.Client behind a
// single-writer/multi-reader lock, per §5's "Shared state". init/close/reset
// take the write hold; every query method takes a read hold.
type Store struct {
	mu          sync.RWMutex
	client      *mongo.Client
	initialized bool

	log bridgelog.Logger

	// ValidateQueries gates the operator denylist scan (§6's process-wide
	// validate_queries config). SanitizeErrors gates raw-error pass-through.
	ValidateQueries bool
	SanitizeErrors  bool
}

// New returns an uninitialized Store. Call Init before issuing any query.
// A nil log falls back to a standard-format logger writing to stdout/stderr.
func New(log bridgelog.Logger) *Store {
	if log == nil {
		log, _ = bridgelog.NewStdLogger(os.Stdout, os.Stderr, bridgelog.Info)
	}
	return &Store{log: log, ValidateQueries: true, SanitizeErrors: true}
}

// Init transitions the store from uninitialized to initialized. Calling
// Init without first Close-ing or Reset-ing an already-initialized store
// fails, per §5.
func (s *Store) Init(ctx context.Context, uri string, opts ...options.Lister[options.ClientOptions]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return bridgeerr.NewAlreadyInitializedError()
	}

	clientOpts := append([]options.Lister[options.ClientOptions]{options.Client().ApplyURI(uri)}, opts...)
	client, err := mongo.Connect(clientOpts...)
	if err != nil {
		return s.wrapBackendError("connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return s.wrapBackendError("ping", err)
	}

	s.client = client
	s.initialized = true
	s.log.InfoContext(ctx, "docstore initialized")
	return nil
}

// Close disconnects the client and transitions back to uninitialized.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return bridgeerr.NewNotInitializedError()
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.initialized = false
	if err != nil {
		return s.wrapBackendError("disconnect", err)
	}
	s.log.InfoContext(ctx, "docstore closed")
	return nil
}

// Reset synchronously tears down and clears state without requiring a
// prior successful Init — used to recover from a broken client handle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.initialized = false
}

func (s *Store) collection(database, name string) (*mongo.Collection, error) {
	if err := validateCollectionName(name); err != nil {
		return nil, err
	}
	if !s.initialized {
		return nil, bridgeerr.NewNotInitializedError()
	}
	return s.client.Database(database).Collection(name), nil
}

func (s *Store) wrapBackendError(op string, err error) error {
	be := bridgeerr.NewBackendError(op, err)
	return bridgeerr.Sanitize(be, s.SanitizeErrors)
}
