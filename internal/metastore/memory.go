package metastore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemory is a process-local Metastore, grounded on quickwit-indexing's
// own test doubles (indexing_pipeline.rs exercises its retry and
// terminal-failure paths against an in-memory metastore stand-in rather
// than a real backing store). Safe for concurrent use.
type InMemory struct {
	mu      sync.Mutex
	indexes map[string]struct{}
	splits  map[string][]Split

	// failuresBeforeSuccess, when positive, makes the next
	// StageSplit calls fail with a plain error (not
	// ErrIndexDoesNotExist) that many times before succeeding, to drive
	// the pipeline's retry-then-succeed test scenario (S3).
	failuresBeforeSuccess int
}

// NewInMemory returns an empty in-memory Metastore.
func NewInMemory() *InMemory {
	return &InMemory{
		indexes: make(map[string]struct{}),
		splits:  make(map[string][]Split),
	}
}

// CreateIndex registers indexID as existing. Test and CLI helper, not
// part of the Metastore interface: a real metastore's index lifecycle is
// out of scope per spec.md §1.
func (m *InMemory) CreateIndex(indexID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[indexID] = struct{}{}
}

// DeleteIndex removes indexID, so a subsequent StageSplit against it
// returns ErrIndexDoesNotExist.
func (m *InMemory) DeleteIndex(indexID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexes, indexID)
	delete(m.splits, indexID)
}

// FailNextStages arranges for the next n StageSplit calls to fail with a
// transient error before succeeding, for driving retry-then-succeed
// tests.
func (m *InMemory) FailNextStages(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresBeforeSuccess = n
}

func (m *InMemory) IndexExists(_ context.Context, indexID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.indexes[indexID]
	return ok, nil
}

func (m *InMemory) StageSplit(_ context.Context, indexID string, split Split) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.indexes[indexID]; !ok {
		return ErrIndexDoesNotExist
	}
	if m.failuresBeforeSuccess > 0 {
		m.failuresBeforeSuccess--
		return errTransient
	}
	if split.SplitID == "" {
		split.SplitID = uuid.NewString()
	}
	m.splits[indexID] = append(m.splits[indexID], split)
	return nil
}

func (m *InMemory) ListSplits(_ context.Context, indexID string) ([]Split, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Split, len(m.splits[indexID]))
	copy(out, m.splits[indexID])
	return out, nil
}

var errTransient = transientError{}

type transientError struct{}

func (transientError) Error() string { return "metastore: transient failure" }
