package actorutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/roasbeef/corpus/internal/actor"
	"github.com/stretchr/testify/require"
)

func newCountingFactory(behaviors *[]*doubleBehavior, mu *sync.Mutex) func(int) actor.Behavior {
	return func(idx int) actor.Behavior {
		b := &doubleBehavior{name: "pool-member"}
		mu.Lock()
		*behaviors = append(*behaviors, b)
		mu.Unlock()
		return b
	}
}

func TestNewPool(t *testing.T) {
	u := actor.NewUniverse()
	defer u.Shutdown()

	var mu sync.Mutex
	var behaviors []*doubleBehavior

	pool := NewPool(PoolConfig{
		ID:       "test-pool",
		Size:     3,
		Factory:  newCountingFactory(&behaviors, &mu),
		Universe: u,
	})

	require.Equal(t, 3, pool.Size())
	require.Equal(t, "test-pool", pool.ID())
	require.Len(t, pool.Handles(), 3)
}

func TestPool_AskRoundRobin(t *testing.T) {
	u := actor.NewUniverse()
	defer u.Shutdown()

	var mu sync.Mutex
	var behaviors []*doubleBehavior

	const poolSize = 3
	const numMessages = 9

	pool := NewPool(PoolConfig{
		ID:       "test-pool-ask",
		Size:     poolSize,
		Factory:  newCountingFactory(&behaviors, &mu),
		Universe: u,
	})

	ctx := context.Background()
	for i := 0; i < numMessages; i++ {
		result := pool.Ask(ctx, &doubleMsg{value: i + 1})
		_, err := result.Unpack()
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, b := range behaviors {
			if b.received.Load() != 3 {
				return false
			}
		}
		return true
	}, time.Second, time.Millisecond)
}

func TestPool_Broadcast(t *testing.T) {
	u := actor.NewUniverse()
	defer u.Shutdown()

	var mu sync.Mutex
	var behaviors []*doubleBehavior

	const poolSize = 4

	pool := NewPool(PoolConfig{
		ID:       "test-pool-broadcast",
		Size:     poolSize,
		Factory:  newCountingFactory(&behaviors, &mu),
		Universe: u,
	})

	pool.Broadcast(context.Background(), &doubleMsg{value: 42})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, b := range behaviors {
			if b.received.Load() != 1 {
				return false
			}
		}
		return true
	}, time.Second, time.Millisecond)
}

func TestPool_BroadcastAsk(t *testing.T) {
	u := actor.NewUniverse()
	defer u.Shutdown()

	var mu sync.Mutex
	var behaviors []*doubleBehavior

	const poolSize = 3

	pool := NewPool(PoolConfig{
		ID:       "test-pool-broadcast-ask",
		Size:     poolSize,
		Factory:  newCountingFactory(&behaviors, &mu),
		Universe: u,
	})

	results := pool.BroadcastAsk(context.Background(), &doubleMsg{value: 5})
	require.Len(t, results, poolSize)
	for _, r := range results {
		_, err := r.Unpack()
		require.NoError(t, err)
	}
}

func TestPool_DefaultSize(t *testing.T) {
	u := actor.NewUniverse()
	defer u.Shutdown()

	var mu sync.Mutex
	var behaviors []*doubleBehavior

	pool := NewPool(PoolConfig{
		ID:       "test-pool-default",
		Factory:  newCountingFactory(&behaviors, &mu),
		Universe: u,
	})

	require.Equal(t, 1, pool.Size())
}

func TestPool_Shutdown(t *testing.T) {
	u := actor.NewUniverse()
	defer u.Shutdown()

	var mu sync.Mutex
	var behaviors []*doubleBehavior

	pool := NewPool(PoolConfig{
		ID:       "test-pool-shutdown",
		Size:     3,
		Factory:  newCountingFactory(&behaviors, &mu),
		Universe: u,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))
}
