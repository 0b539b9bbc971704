package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// blockForeverBehavior blocks inside a protected zone on the first message
// it receives, never calling RecordProgress, until the test releases it.
type blockForeverBehavior struct {
	release chan struct{}
	started chan struct{}
}

func (blockForeverBehavior) Name() string { return "block-forever" }

func (b *blockForeverBehavior) Receive(ctx *Context, msg Message) error {
	guard := ctx.ProtectZone()
	defer guard.Release()
	close(b.started)
	<-b.release
	return nil
}

// TestProtectZoneSuppressesStaleness exercises spec.md §8's S6 scenario:
// an actor blocked inside a protected zone never accrues stale heartbeats,
// so repeated Health checks during the block still report Healthy.
func TestProtectZoneSuppressesStaleness(t *testing.T) {
	beh := &blockForeverBehavior{
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	u := NewUniverse()
	defer u.Shutdown()

	h := u.Spawn(NewSpawnBuilder(beh))
	ctx := context.Background()

	require.NoError(t, h.Tell(ctx, &tagMsg{tag: "go"}))
	<-beh.started

	// Three Health polls while the handler sits blocked inside its
	// protected zone: without the protected-zone exemption this would
	// accumulate two stale-progress beats and flip to unhealthy.
	require.Equal(t, HealthHealthy, h.Health())
	require.Equal(t, HealthHealthy, h.Health())
	require.Equal(t, HealthHealthy, h.Health())

	close(beh.release)
	h.SendExitWithSuccess()

	exit, _, err := h.Join(ctx)
	require.NoError(t, err)
	require.Equal(t, ExitSuccess, exit.Kind)
}

// TestHealthFlipsAfterStaleBeats confirms the complementary path: an actor
// that genuinely stalls outside any protected zone is eventually reported
// unhealthy.
func TestHealthFlipsAfterStaleBeats(t *testing.T) {
	beh := &blockForeverBehaviorUnprotected{
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	u := NewUniverse()
	defer u.Shutdown()

	h := u.Spawn(NewSpawnBuilder(beh))
	ctx := context.Background()

	require.NoError(t, h.Tell(ctx, &tagMsg{tag: "go"}))
	<-beh.started

	require.Equal(t, HealthHealthy, h.Health())
	require.Equal(t, HealthHealthy, h.Health())
	require.Equal(t, HealthFailureOrUnhealthy, h.Health())

	close(beh.release)
	h.SendExitWithSuccess()

	require.Eventually(t, func() bool {
		_, done := h.ExitStatus()
		return done
	}, time.Second, time.Millisecond)
}

type blockForeverBehaviorUnprotected struct {
	release chan struct{}
	started chan struct{}
}

func (blockForeverBehaviorUnprotected) Name() string { return "block-forever-unprotected" }

func (b *blockForeverBehaviorUnprotected) Receive(ctx *Context, msg Message) error {
	close(b.started)
	<-b.release
	return nil
}
