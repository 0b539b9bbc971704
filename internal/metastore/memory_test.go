package metastore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryIndexLifecycle(t *testing.T) {
	m := NewInMemory()
	ctx := context.Background()

	exists, err := m.IndexExists(ctx, "idx")
	require.NoError(t, err)
	require.False(t, exists)

	m.CreateIndex("idx")
	exists, err = m.IndexExists(ctx, "idx")
	require.NoError(t, err)
	require.True(t, exists)

	m.DeleteIndex("idx")
	exists, err = m.IndexExists(ctx, "idx")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestInMemoryStageSplitAgainstMissingIndex(t *testing.T) {
	m := NewInMemory()
	ctx := context.Background()

	err := m.StageSplit(ctx, "nope", Split{NumDocs: 1})
	require.ErrorIs(t, err, ErrIndexDoesNotExist)
}

func TestInMemoryStageSplitMintsID(t *testing.T) {
	m := NewInMemory()
	m.CreateIndex("idx")
	ctx := context.Background()

	require.NoError(t, m.StageSplit(ctx, "idx", Split{NumDocs: 3}))

	splits, err := m.ListSplits(ctx, "idx")
	require.NoError(t, err)
	require.Len(t, splits, 1)
	require.NotEmpty(t, splits[0].SplitID)
	require.Equal(t, 3, splits[0].NumDocs)
}

func TestInMemoryFailNextStages(t *testing.T) {
	m := NewInMemory()
	m.CreateIndex("idx")
	m.FailNextStages(2)
	ctx := context.Background()

	err := m.StageSplit(ctx, "idx", Split{NumDocs: 1})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrIndexDoesNotExist))

	err = m.StageSplit(ctx, "idx", Split{NumDocs: 1})
	require.Error(t, err)

	require.NoError(t, m.StageSplit(ctx, "idx", Split{NumDocs: 1}))

	splits, err := m.ListSplits(ctx, "idx")
	require.NoError(t, err)
	require.Len(t, splits, 1)
}

func TestInMemoryListSplitsReturnsACopy(t *testing.T) {
	m := NewInMemory()
	m.CreateIndex("idx")
	ctx := context.Background()
	require.NoError(t, m.StageSplit(ctx, "idx", Split{SplitID: "s1", NumDocs: 1}))

	splits, err := m.ListSplits(ctx, "idx")
	require.NoError(t, err)
	splits[0].NumDocs = 99

	again, err := m.ListSplits(ctx, "idx")
	require.NoError(t, err)
	require.Equal(t, 1, again[0].NumDocs)
}
