package metastore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestSqlite(t *testing.T) *Sqlite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metastore.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestSqliteIndexLifecycle(t *testing.T) {
	s := openTestSqlite(t)
	ctx := context.Background()

	exists, err := s.IndexExists(ctx, "idx")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, s.CreateIndex(ctx, "idx"))
	exists, err = s.IndexExists(ctx, "idx")
	require.NoError(t, err)
	require.True(t, exists)

	// CreateIndex is idempotent against a repeated index_id.
	require.NoError(t, s.CreateIndex(ctx, "idx"))
}

func TestSqliteStageSplitAgainstMissingIndex(t *testing.T) {
	s := openTestSqlite(t)
	ctx := context.Background()

	err := s.StageSplit(ctx, "nope", Split{NumDocs: 1})
	require.ErrorIs(t, err, ErrIndexDoesNotExist)
}

func TestSqliteStageAndListSplits(t *testing.T) {
	s := openTestSqlite(t)
	ctx := context.Background()
	require.NoError(t, s.CreateIndex(ctx, "idx"))

	require.NoError(t, s.StageSplit(ctx, "idx", Split{NumDocs: 2}))
	require.NoError(t, s.StageSplit(ctx, "idx", Split{SplitID: "explicit", NumDocs: 5}))

	splits, err := s.ListSplits(ctx, "idx")
	require.NoError(t, err)
	require.Len(t, splits, 2)

	var total int
	for _, sp := range splits {
		require.NotEmpty(t, sp.SplitID)
		require.False(t, sp.CreatedAt.IsZero())
		total += sp.NumDocs
	}
	require.Equal(t, 7, total)
}

func TestSqliteReopenPreservesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metastore.db")

	s1, err := Open(path, nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s1.CreateIndex(ctx, "idx"))
	require.NoError(t, s1.StageSplit(ctx, "idx", Split{NumDocs: 1}))
	require.NoError(t, s1.Close())

	s2, err := Open(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	exists, err := s2.IndexExists(ctx, "idx")
	require.NoError(t, err)
	require.True(t, exists)

	splits, err := s2.ListSplits(ctx, "idx")
	require.NoError(t, err)
	require.Len(t, splits, 1)
}
