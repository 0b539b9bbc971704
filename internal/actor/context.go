package actor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Context is the handle an actor's Behavior uses to interact with the
// runtime from inside a Receive/Initialize/Finalize call: sending to other
// actors, scheduling delayed self-messages, recording liveness, and
// checking its own kill switch. It plays the role of quickwit's
// ActorContext<A>.
type Context struct {
	self   *ActorHandle
	ks     *KillSwitch
	prog   *Progress
	state  *stateBox
	sched  *Scheduler
	sleepGen *sleepGeneration
}

// Self returns this actor's own handle, for registering itself with a
// Receptionist or passing itself to a spawned child.
func (c *Context) Self() *ActorHandle {
	return c.self
}

// KillSwitch returns this actor's kill switch. Checking IsKilled or
// selecting on Done lets long-running handlers exit early when the
// subtree is torn down.
func (c *Context) KillSwitch() *KillSwitch {
	return c.ks
}

// RecordProgress bumps the heartbeat counter read by supervisors, for
// handlers that run long enough to need a mid-flight liveness signal
// beyond the automatic bump the driver loop gives on every dispatch.
func (c *Context) RecordProgress() {
	c.prog.Record()
}

// ProtectZone opens a protected zone for the duration the returned guard
// is held, exempting the actor from liveness-timeout suspicion while it
// blocks on something outside the runtime's control. Callers must Release
// the guard on every exit path.
func (c *Context) ProtectZone() *ProtectedZoneGuard {
	return c.prog.ProtectZone()
}

// ProtectFuture runs fn with a protected zone open for its duration,
// releasing it unconditionally (even on panic) before returning. This
// mirrors quickwit's protect_future helper and is the preferred way to
// guard a single blocking call.
func ProtectFuture[T any](c *Context, fn func() T) T {
	guard := c.ProtectZone()
	defer guard.Release()
	return fn()
}

// Send delivers msg to target as a fire-and-forget tell.
func (c *Context) Send(ctx context.Context, target *ActorHandle, msg Message) error {
	return target.Tell(ctx, msg)
}

// Ask delivers msg to target and blocks for a reply, surfacing the
// result as a generic fn.Result[any]. Use AskForResult for a typed
// reply.
func (c *Context) Ask(ctx context.Context, target *ActorHandle, msg Message) fn.Result[any] {
	return target.Ask(ctx, msg)
}

// AskForResult delivers msg to target, blocks for a reply, and type-asserts
// it to R, mirroring the teacher's AskAwaitTyped helper
// (internal/actorutil/helpers.go).
func AskForResult[R any](ctx context.Context, c *Context, target *ActorHandle, msg Message) fn.Result[R] {
	result := target.Ask(ctx, msg)
	val, err := result.Unpack()
	if err != nil {
		return fn.Err[R](err)
	}
	typed, ok := val.(R)
	if !ok {
		return fn.Err[R](fmt.Errorf("unexpected reply type %T", val))
	}
	return fn.Ok(typed)
}

// ScheduleSelfMsg asks the universe's Scheduler to deliver msg back to
// this actor after delay. The scheduled delivery is stamped with the
// current sleep generation so a subsequent Resume (which bumps the
// generation) makes any still-pending wake-up a silent no-op when it
// eventually fires, matching spec.md §3's sleep/wake generation-counter
// invariant.
func (c *Context) ScheduleSelfMsg(delay time.Duration, msg Message) {
	gen := c.sleepGen.current()
	c.sched.ScheduleAt(c.sched.nowTime().Add(delay), func() {
		if c.sleepGen.current() != gen {
			return
		}
		_ = c.self.Tell(context.Background(), msg)
	})
}

// Sleep schedules a WakeUp message to be delivered to this actor after
// delay, stamped with the current sleep generation, and returns
// immediately. It does not block the calling goroutine; "sleep" here
// names the actor's conceptual state, not a blocking stdlib call. A
// Resume in the meantime bumps the generation, so a wake-up scheduled
// before it silently discards itself instead of firing twice.
func (c *Context) Sleep(delay time.Duration) {
	gen := c.sleepGen.bump()
	c.sched.ScheduleAt(c.sched.nowTime().Add(delay), func() {
		if c.sleepGen.current() != gen {
			return
		}
		_ = c.self.Tell(context.Background(), &WakeUp{})
	})
}

// WakeUp is the message a Behavior sees after a Sleep that survived
// generation filtering (i.e. wasn't superseded by a Resume or another
// Sleep in the meantime).
type WakeUp struct {
	BaseMessage
}

func (WakeUp) MessageType() string { return "WakeUp" }

// sleepGeneration is a monotonically increasing counter bumped on every
// Sleep and every manual Resume, so stale timed wake-ups scheduled before
// a Resume are discarded instead of waking an actor a second time. It is
// read from the Scheduler's goroutine and written from the actor's own
// goroutine, hence the atomic.
type sleepGeneration struct {
	v atomic.Uint64
}

func (g *sleepGeneration) current() uint64 { return g.v.Load() }
func (g *sleepGeneration) bump() uint64 {
	return g.v.Add(1)
}
