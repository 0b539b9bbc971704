package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateBoxValidTransitions(t *testing.T) {
	b := newStateBox()
	require.Equal(t, StateIdle, b.Load())

	require.True(t, b.Transition(StateProcessing))
	require.True(t, b.Transition(StateIdle))
	require.True(t, b.Transition(StatePaused))
	require.True(t, b.Transition(StateProcessing))
	require.True(t, b.Transition(StateSuccess))

	// Terminal states are sticky: nothing else is reachable afterward.
	require.False(t, b.Transition(StateIdle))
	require.False(t, b.Transition(StateFailure))
	require.Equal(t, StateSuccess, b.Load())
}

func TestStateBoxFailureTerminal(t *testing.T) {
	b := newStateBox()
	require.True(t, b.Transition(StateProcessing))
	require.True(t, b.Transition(StateFailure))
	require.False(t, b.Transition(StateProcessing))
}
