package actor

import "sync/atomic"

// ActorState is the lifecycle state of an actor, tracked independently of
// its ExitStatus so that supervisors and Observe callers can distinguish
// "still running" from "terminated with reason X".
type ActorState int32

const (
	// StateIdle is the initial state and the state between dispatches:
	// the actor has no in-flight handler call.
	StateIdle ActorState = iota

	// StateProcessing is set for the duration of a single handler call.
	StateProcessing

	// StatePaused is entered on CmdPause and left via CmdResume. No
	// regular messages are dispatched while paused; commands still are.
	StatePaused

	// StateSuccess is terminal: the actor finalized with a successful
	// exit status.
	StateSuccess

	// StateFailure is terminal: the actor finalized with a
	// non-successful exit status (Killed, Failure, or Panicked; see
	// ExitStatus.IsSuccess).
	StateFailure
)

func (s ActorState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateProcessing:
		return "Processing"
	case StatePaused:
		return "Paused"
	case StateSuccess:
		return "Success"
	case StateFailure:
		return "Failure"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the state is one an actor can never leave.
func (s ActorState) IsTerminal() bool {
	return s == StateSuccess || s == StateFailure
}

// validTransition enforces the state machine: Idle and Processing toggle
// freely between each other, Paused is reachable from either and returns
// to either, and only a non-terminal state may move to a terminal one.
// Once terminal, no further transition is permitted.
func validTransition(from, to ActorState) bool {
	if from.IsTerminal() {
		return false
	}
	switch to {
	case StateIdle:
		return from == StateProcessing || from == StatePaused || from == StateIdle
	case StateProcessing:
		return from == StateIdle || from == StateProcessing || from == StatePaused
	case StatePaused:
		return from == StateIdle || from == StateProcessing || from == StatePaused
	case StateSuccess, StateFailure:
		return true
	default:
		return false
	}
}

// stateBox is an atomically-updated ActorState cell with transition
// enforcement, shared between the driver loop and Observe/Health readers.
type stateBox struct {
	v atomic.Int32
}

func newStateBox() *stateBox {
	b := &stateBox{}
	b.v.Store(int32(StateIdle))
	return b
}

// Load returns the current state.
func (b *stateBox) Load() ActorState {
	return ActorState(b.v.Load())
}

// Transition attempts to move to the given state, returning false if the
// transition is invalid (e.g. leaving a terminal state). Terminal states
// are sticky: the first terminal transition wins and later calls no-op.
func (b *stateBox) Transition(to ActorState) bool {
	for {
		from := ActorState(b.v.Load())
		if !validTransition(from, to) {
			return false
		}
		if b.v.CompareAndSwap(int32(from), int32(to)) {
			return true
		}
	}
}
