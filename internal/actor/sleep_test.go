package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// sleeperBehavior sleeps as soon as it sees a sleepMsg (long delay) or
// shortSleepMsg (short delay), and records every WakeUp it actually
// receives.
type sleeperBehavior struct {
	wakeUps *[]struct{}
}

func (sleeperBehavior) Name() string { return "sleeper" }

type sleepMsg struct{ BaseMessage }

func (sleepMsg) MessageType() string { return "Sleep" }

type shortSleepMsg struct{ BaseMessage }

func (shortSleepMsg) MessageType() string { return "ShortSleep" }

func (b sleeperBehavior) Receive(ctx *Context, msg Message) error {
	switch msg.(type) {
	case *sleepMsg:
		ctx.Sleep(time.Hour)
	case *shortSleepMsg:
		ctx.Sleep(5 * time.Millisecond)
	case *WakeUp:
		*b.wakeUps = append(*b.wakeUps, struct{}{})
	}
	return nil
}

// TestSleepPreemptedByResume exercises spec.md §8's S5 scenario: a Sleep
// schedules a long-delayed WakeUp stamped with the current generation, and
// a manual Resume in the meantime bumps the generation so the stale
// wake-up is silently discarded instead of ever reaching Receive.
func TestSleepPreemptedByResume(t *testing.T) {
	var wakeUps []struct{}
	u := NewUniverse()
	defer u.Shutdown()

	h := u.Spawn(NewSpawnBuilder(sleeperBehavior{wakeUps: &wakeUps}))
	ctx := context.Background()

	require.NoError(t, h.Tell(ctx, &sleepMsg{}))

	require.Eventually(t, func() bool {
		return h.State() == StateIdle
	}, time.Second, time.Millisecond)

	// Resume bumps the sleep generation even though the actor was never
	// paused; the hour-long wake-up scheduled above now carries a stale
	// generation and must never be delivered.
	h.Resume()

	h.SendExitWithSuccess()
	exit, _, err := h.Join(ctx)
	require.NoError(t, err)
	require.Equal(t, ExitSuccess, exit.Kind)
	require.Empty(t, wakeUps)
}

// TestWakeUpDeliveredWithoutResume confirms the happy path: a short Sleep
// with no intervening Resume delivers exactly one WakeUp.
func TestWakeUpDeliveredWithoutResume(t *testing.T) {
	var wakeUps []struct{}
	u := NewUniverse()
	defer u.Shutdown()

	h := u.Spawn(NewSpawnBuilder(sleeperBehavior{wakeUps: &wakeUps}))
	ctx := context.Background()

	require.NoError(t, h.Tell(ctx, &shortSleepMsg{}))

	require.Eventually(t, func() bool {
		return len(wakeUps) == 1
	}, time.Second, 5*time.Millisecond)

	h.SendExitWithSuccess()
	_, _, err := h.Join(ctx)
	require.NoError(t, err)
}
