package actorutil

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/corpus/internal/actor"
)

// Pool distributes messages across a fixed set of actor instances using
// round-robin scheduling, generalizing the teacher's Pool[M, R] to this
// runtime's single concrete (Message, any) pair: every pool member is an
// independently spawned *actor.ActorHandle sharing one Behavior factory,
// useful for scaling out a stateless pipeline stage or source reader
// across several goroutines.
type Pool struct {
	id      string
	handles []*actor.ActorHandle
	next    atomic.Uint64
}

// PoolConfig configures a new Pool.
type PoolConfig struct {
	// ID identifies the pool (see Pool.ID). Members take their names
	// from the Behavior that Factory builds.
	ID string

	// Size is the number of actor instances to spawn.
	Size int

	// Factory builds the Behavior for pool member idx.
	Factory func(idx int) actor.Behavior

	// Universe spawns and supervises the pool's members.
	Universe *actor.Universe
}

// NewPool spawns Size actors from Factory under Universe and returns a Pool
// ready to round-robin Tell/Ask across them.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}

	p := &Pool{
		id:      cfg.ID,
		handles: make([]*actor.ActorHandle, cfg.Size),
	}

	for i := 0; i < cfg.Size; i++ {
		behavior := cfg.Factory(i)
		p.handles[i] = cfg.Universe.Spawn(actor.NewSpawnBuilder(behavior))
	}

	return p
}

// ID returns the pool's identifier.
func (p *Pool) ID() string { return p.id }

// Size returns the number of actors in the pool.
func (p *Pool) Size() int { return len(p.handles) }

// Handles returns a copy of the pool's member handles.
func (p *Pool) Handles() []*actor.ActorHandle {
	handles := make([]*actor.ActorHandle, len(p.handles))
	copy(handles, p.handles)
	return handles
}

func (p *Pool) pick() *actor.ActorHandle {
	idx := p.next.Add(1) % uint64(len(p.handles))
	return p.handles[idx]
}

// Tell sends msg to the next member in round-robin order.
func (p *Pool) Tell(ctx context.Context, msg actor.Message) error {
	return p.pick().Tell(ctx, msg)
}

// Ask sends msg to the next member in round-robin order and blocks until
// its reply Result is available.
func (p *Pool) Ask(ctx context.Context, msg actor.Message) fn.Result[any] {
	return p.pick().Ask(ctx, msg)
}

// Broadcast sends msg to every member of the pool.
func (p *Pool) Broadcast(ctx context.Context, msg actor.Message) {
	TellAll(ctx, p.handles, msg)
}

// BroadcastAsk sends msg to every member and returns their replies in
// member order.
func (p *Pool) BroadcastAsk(ctx context.Context, msg actor.Message) []fn.Result[any] {
	return ParallelAskSame(ctx, p.handles, msg)
}

// Shutdown requests a graceful exit of every pool member and waits for all
// of them to terminate or ctx to expire, whichever comes first.
func (p *Pool) Shutdown(ctx context.Context) error {
	for _, h := range p.handles {
		h.SendExitWithSuccess()
	}
	for _, h := range p.handles {
		if _, _, err := h.Join(ctx); err != nil {
			return fmt.Errorf("pool %s: member %s: %w", p.id, h.Name(), err)
		}
	}
	return nil
}
