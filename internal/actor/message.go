package actor

import "context"

// Message is a sealed interface for actor messages. Only types embedding
// BaseMessage (or declared in this package) can satisfy it, mirroring the
// teacher runtime's sealed-interface trick for its own Message type.
type Message interface {
	// messageMarker is unexported, sealing the interface to this package
	// and to types that embed BaseMessage.
	messageMarker()

	// MessageType returns the type name of the message, used for
	// routing, logging, and metrics labels.
	MessageType() string
}

// BaseMessage is embedded by user-defined message types to satisfy the
// Message interface's sealing method.
type BaseMessage struct{}

func (BaseMessage) messageMarker() {}

// PriorityMessage is an extension of Message for messages that carry a
// relative priority, for actors whose mailboxes want to reorder within the
// low-priority queue (the command queue always preempts regardless).
type PriorityMessage interface {
	Message

	// Priority returns the processing priority of the message (higher is
	// more important).
	Priority() int
}

// Command enumerates the fixed set of high-priority control messages every
// actor understands. Commands are never user-extensible; they travel on a
// dedicated unbounded queue that always preempts the regular message queue
// at handler boundaries.
type Command int

const (
	// CmdPause transitions the actor to the Paused state. While paused,
	// regular messages are not dispatched, but commands still are.
	CmdPause Command = iota

	// CmdResume moves the actor out of Paused and back to Idle.
	CmdResume

	// CmdExitWithSuccess requests a graceful drain-then-exit with a
	// Success exit status. SendExitWithSuccess enqueues it on the command
	// queue like every other command; on receiving it, the driver loop
	// dispatches the regular messages already queued before exiting.
	CmdExitWithSuccess

	// CmdQuit requests immediate graceful shutdown with a Quit exit
	// status, skipping any remaining queued messages.
	CmdQuit

	// CmdKill requests immediate forced shutdown with a Killed exit
	// status, skipping any remaining queued messages.
	CmdKill

	// CmdNudge wakes the driver loop without doing anything else: it
	// records no progress and publishes no observable state.
	CmdNudge

	// CmdObserve requests a snapshot of the actor's observable state.
	// The reply channel carries the snapshot as an opaque value; typed
	// callers recover the concrete type via ActorHandle.Observe.
	CmdObserve
)

// String implements fmt.Stringer for log readability.
func (c Command) String() string {
	switch c {
	case CmdPause:
		return "Pause"
	case CmdResume:
		return "Resume"
	case CmdExitWithSuccess:
		return "ExitWithSuccess"
	case CmdQuit:
		return "Quit"
	case CmdKill:
		return "Kill"
	case CmdNudge:
		return "Nudge"
	case CmdObserve:
		return "Observe"
	default:
		return "Unknown"
	}
}

// controlEnvelope is the payload carried on an inbox's command queue.
type controlEnvelope struct {
	cmd Command

	// observeReply is non-nil only for CmdObserve; the driver loop sends
	// the actor's current observable-state snapshot on it exactly once.
	observeReply chan any
}

// envelope wraps a regular message with its optional reply promise and the
// caller's context, mirroring the teacher runtime's envelope type. A nil
// promise means fire-and-forget ("tell").
type envelope struct {
	msg       Message
	promise   *promiseImpl
	callerCtx context.Context
}
