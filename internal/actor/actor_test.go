package actor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// incMsg and getMsg model the S1 "counting actor" scenario from spec.md
// §8. The test sends 100 Inc messages, waits until Observe reports 100,
// then requests a graceful exit and checks that Join returns Success.
type incMsg struct{ BaseMessage }

func (incMsg) MessageType() string { return "Inc" }

type getMsg struct{ BaseMessage }

func (getMsg) MessageType() string { return "Get" }

type counterBehavior struct {
	count uint64
}

func (c *counterBehavior) Name() string { return "counter" }

func (c *counterBehavior) Receive(ctx *Context, msg Message) error {
	switch msg.(type) {
	case *incMsg:
		c.count++
		return nil
	case *getMsg:
		return nil
	default:
		return nil
	}
}

// ObservableState lets callers recover the count via Observe; Ask replies
// carry no value.
func (c *counterBehavior) ObservableState() any { return c.count }

func TestCountingActorS1(t *testing.T) {
	u := NewUniverse()
	defer u.Shutdown()

	beh := &counterBehavior{}
	h := u.Spawn(NewSpawnBuilder(beh))

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, h.Tell(ctx, &incMsg{}))
	}

	require.Eventually(t, func() bool {
		v, err := h.Observe(ctx)
		return err == nil && v.(uint64) == 100
	}, time.Second, time.Millisecond)

	h.SendExitWithSuccess()

	exit, _, err := h.Join(ctx)
	require.NoError(t, err)
	require.Equal(t, ExitSuccess, exit.Kind)
}

// fifoBehavior records the order messages arrive in.
type fifoBehavior struct {
	order *[]int
}

func (fifoBehavior) Name() string { return "fifo" }

type orderedMsg struct {
	BaseMessage
	n int
}

func (orderedMsg) MessageType() string { return "Ordered" }

func (b fifoBehavior) Receive(ctx *Context, msg Message) error {
	if m, ok := msg.(*orderedMsg); ok {
		*b.order = append(*b.order, m.n)
	}
	return nil
}

func TestFIFOPerPriority(t *testing.T) {
	var order []int
	u := NewUniverse()
	defer u.Shutdown()

	h := u.Spawn(NewSpawnBuilder(fifoBehavior{order: &order}))

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, h.Tell(ctx, &orderedMsg{n: i}))
	}
	h.SendExitWithSuccess()

	_, _, err := h.Join(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

// blockingBehavior blocks its first Receive call until released, letting
// a test enqueue a command while a handler is in flight to verify the
// command preempts the next queued message without interrupting the
// current one.
type blockingBehavior struct {
	release  chan struct{}
	started  chan struct{}
	startedOnce atomic.Bool
	seen     *[]string
}

func (blockingBehavior) Name() string { return "blocker" }

type tagMsg struct {
	BaseMessage
	tag string
}

func (tagMsg) MessageType() string { return "Tag" }

func (b *blockingBehavior) Receive(ctx *Context, msg Message) error {
	m := msg.(*tagMsg)
	if m.tag == "first" && b.startedOnce.CompareAndSwap(false, true) {
		close(b.started)
		<-b.release
	}
	*b.seen = append(*b.seen, m.tag)
	return nil
}

func TestCommandPreemption(t *testing.T) {
	var seen []string
	beh := &blockingBehavior{
		release: make(chan struct{}),
		started: make(chan struct{}),
		seen:    &seen,
	}

	u := NewUniverse()
	defer u.Shutdown()

	h := u.Spawn(NewSpawnBuilder(beh))
	ctx := context.Background()

	require.NoError(t, h.Tell(ctx, &tagMsg{tag: "first"}))
	<-beh.started

	require.NoError(t, h.Tell(ctx, &tagMsg{tag: "second"}))
	h.Pause()
	close(beh.release)

	require.Eventually(t, func() bool {
		return h.State() == StatePaused
	}, time.Second, time.Millisecond)

	require.Equal(t, []string{"first"}, seen)

	h.Resume()
	h.SendExitWithSuccess()
	_, _, err := h.Join(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, seen)
}
