// Package indexing hosts the illustrative consumer of the actor runtime:
// an 8-stage document indexing pipeline supervised with health checks and
// exponential-backoff restarts, grounded on quickwit-indexing's
// indexing_pipeline.rs and actors/mod.rs. spec.md §1 specifies it only as
// far as needed to exercise the runtime's supervision contract; blob
// storage, document mapping, and the metastore are consumed as opaque
// collaborators.
package indexing

import (
	"context"
	"fmt"
	"sync"
)

// Storage is the opaque blob store the uploader stage writes finished
// packages to. spec.md §1 explicitly places storage clients out of scope;
// this interface and its RAM-backed implementation exist only to give the
// pipeline something real to call, grounded on quickwit's own RamStorage
// test double (referenced throughout indexing_pipeline.rs's test suite).
type Storage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// RAMStorage is an in-memory Storage, suitable for tests and for the
// demo CLI.
type RAMStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewRAMStorage returns an empty RAMStorage.
func NewRAMStorage() *RAMStorage {
	return &RAMStorage{data: make(map[string][]byte)}
}

func (r *RAMStorage) Put(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	r.data[key] = cp
	return nil
}

func (r *RAMStorage) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.data[key]
	if !ok {
		return nil, fmt.Errorf("indexing: no object at key %q", key)
	}
	return data, nil
}
