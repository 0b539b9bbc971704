package actor

import "errors"

// ErrActorTerminated indicates that an operation failed because the target
// actor was terminated or in the process of shutting down.
var ErrActorTerminated = errors.New("actor terminated")

// ErrMailboxClosed indicates a send was attempted after the mailbox had
// already been closed, e.g. because the actor drained and exited.
var ErrMailboxClosed = errors.New("mailbox closed")

// ErrMailboxFull is returned by non-blocking sends against a bounded
// mailbox that has no free capacity.
var ErrMailboxFull = errors.New("mailbox full")

// ErrMessageNotDelivered indicates an ask's reply slot was dropped by the
// actor without ever being completed.
var ErrMessageNotDelivered = errors.New("message not delivered: reply dropped")

// ErrProcessMessage indicates an ask's target actor exited before it could
// reply to the message.
var ErrProcessMessage = errors.New("actor exited before replying")

// SendError is returned by blocking and non-blocking sends.
type SendError struct {
	// Cause is the underlying reason the send failed.
	Cause error
}

func (e *SendError) Error() string { return "send failed: " + e.Cause.Error() }

func (e *SendError) Unwrap() error { return e.Cause }

// AskError is returned by Ask and AskForResult when a request/response
// round trip fails to complete normally.
type AskError struct {
	// Cause is ErrActorTerminated (the actor had already terminated),
	// the error from enqueuing the message, ErrProcessMessage (the actor
	// exited before replying), the caller's context error, or a handler
	// returned error (ErrorReply).
	Cause error
}

func (e *AskError) Error() string { return "ask failed: " + e.Cause.Error() }

func (e *AskError) Unwrap() error { return e.Cause }
