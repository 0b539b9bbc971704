// Package metastore defines the thin metadata store interface the
// indexing pipeline depends on. spec.md §1 names the metastore as an
// external collaborator consumed through an opaque interface rather than
// specified in full; this package supplies that interface plus two
// concrete backings so the pipeline in internal/indexing has something
// real to drive.
package metastore

import (
	"context"
	"errors"
	"time"
)

// ErrIndexDoesNotExist is the sentinel the indexing pipeline checks for to
// short-circuit a supervisor to Success with zero retries, per spec.md
// §4.5's "terminal metastore index does not exist surfaces as Success".
var ErrIndexDoesNotExist = errors.New("metastore: index does not exist")

// Split is a minimal record of one committed batch of indexed documents.
type Split struct {
	SplitID   string
	IndexID   string
	NumDocs   int
	CreatedAt time.Time
}

// Metastore is the thin, opaque interface the indexing pipeline depends
// on: whether an index exists, and publishing completed splits. It
// intentionally omits the query/search surface of a real metastore, which
// spec.md places out of scope.
type Metastore interface {
	// IndexExists reports whether indexID has been registered. A false
	// result with a nil error is a normal "not found"; the pipeline's
	// spawn step treats it as terminal and exits with Success.
	IndexExists(ctx context.Context, indexID string) (bool, error)

	// StageSplit records a newly built split against indexID. Returns
	// ErrIndexDoesNotExist if indexID was never created (or was
	// deleted), which the pipeline treats as a terminal, non-retryable
	// condition.
	StageSplit(ctx context.Context, indexID string, split Split) error

	// ListSplits returns every split staged against indexID.
	ListSplits(ctx context.Context, indexID string) ([]Split, error)
}
