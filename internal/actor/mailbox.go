package actor

import "context"

// QueueCapacity describes the backing capacity of an actor's regular
// message queue. The command queue is always unbounded (spec.md §3) and is
// not configurable.
type QueueCapacity struct {
	unbounded bool
	capacity  int
}

// Unbounded returns a QueueCapacity with no upper bound, backed by a
// dynamically growing queue.
func Unbounded() QueueCapacity {
	return QueueCapacity{unbounded: true}
}

// Bounded returns a QueueCapacity backed by a fixed-size buffered channel,
// mirroring the teacher's ChannelMailbox. Sends block (or fail, for
// TrySend) once the channel is full.
func Bounded(capacity int) QueueCapacity {
	if capacity <= 0 {
		capacity = 1
	}
	return QueueCapacity{capacity: capacity}
}

// pulled is a single item handed to the driver loop by Inbox.Pull.
type pulled struct {
	isCommand bool
	cmd       controlEnvelope
	msg       envelope
}

// Inbox is an actor's dual-priority mailbox: an always-unbounded command
// queue that preempts an independently-configured regular message queue.
// Preemption only happens at handler boundaries, between Pull calls, never
// by interrupting a running handler, matching spec.md §3's mailbox
// invariant.
//
// Both queues are fed into plain channels so the driver loop can select
// across commands, messages, scheduler wake-ups, and kill-switch
// cancellation in one place. The command queue's backing store is the
// cond-variable unboundedQueue from queue.go; a relay goroutine pumps it
// into a channel. A bounded message queue skips the relay and uses its
// buffered channel directly, exactly like the teacher's ChannelMailbox.
type Inbox struct {
	commands *unboundedQueue[controlEnvelope]
	cmdCh    chan controlEnvelope

	boundedMsgCh  chan envelope
	unbounded     *unboundedQueue[envelope]
	unboundedCh   chan envelope
	isUnbounded   bool

	closeOnce chan struct{}
}

// NewInbox constructs an Inbox with the given message queue capacity.
func NewInbox(capacity QueueCapacity) *Inbox {
	ib := &Inbox{
		commands:  newUnboundedQueue[controlEnvelope](),
		cmdCh:     make(chan controlEnvelope),
		closeOnce: make(chan struct{}),
	}
	go ib.relayCommands()

	if capacity.unbounded {
		ib.isUnbounded = true
		ib.unbounded = newUnboundedQueue[envelope]()
		ib.unboundedCh = make(chan envelope)
		go ib.relayMessages()
	} else {
		ib.boundedMsgCh = make(chan envelope, capacity.capacity)
	}
	return ib
}

func (ib *Inbox) relayCommands() {
	for {
		cmd, ok := ib.commands.Pop()
		if !ok {
			return
		}
		select {
		case ib.cmdCh <- cmd:
		case <-ib.closeOnce:
			return
		}
	}
}

func (ib *Inbox) relayMessages() {
	for {
		msg, ok := ib.unbounded.Pop()
		if !ok {
			return
		}
		select {
		case ib.unboundedCh <- msg:
		case <-ib.closeOnce:
			return
		}
	}
}

func (ib *Inbox) messageChan() chan envelope {
	if ib.isUnbounded {
		return ib.unboundedCh
	}
	return ib.boundedMsgCh
}

// PushCommand enqueues a control message. Always succeeds unless the inbox
// is closed.
func (ib *Inbox) PushCommand(cmd controlEnvelope) bool {
	return ib.commands.Push(cmd)
}

// Send enqueues a regular message, blocking if the mailbox is bounded and
// full, or until ctx is done. Returns ErrMailboxClosed or ctx.Err() on
// failure.
func (ib *Inbox) Send(ctx context.Context, e envelope) error {
	if ib.isUnbounded {
		if !ib.unbounded.Push(e) {
			return ErrMailboxClosed
		}
		return nil
	}
	select {
	case ib.boundedMsgCh <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues without blocking, returning ErrMailboxFull for a full
// bounded mailbox.
func (ib *Inbox) TrySend(e envelope) error {
	if ib.isUnbounded {
		if !ib.unbounded.Push(e) {
			return ErrMailboxClosed
		}
		return nil
	}
	select {
	case ib.boundedMsgCh <- e:
		return nil
	default:
		return ErrMailboxFull
	}
}

// Pull returns the next item the driver loop should process. Commands are
// always checked first so they preempt any queued regular message, but
// never interrupt a handler already in flight (Pull is only called between
// handler calls). Pull also observes ctx cancellation so the driver loop
// can react to a tripped kill switch even with an empty mailbox.
func (ib *Inbox) Pull(ctx context.Context) (pulled, bool) {
	select {
	case cmd := <-ib.cmdCh:
		return pulled{isCommand: true, cmd: cmd}, true
	default:
	}

	select {
	case cmd := <-ib.cmdCh:
		return pulled{isCommand: true, cmd: cmd}, true
	case msg := <-ib.messageChan():
		return pulled{msg: msg}, true
	case <-ctx.Done():
		return pulled{}, false
	}
}

// Close shuts down both queues and their relay goroutines. Pending Send
// calls against a bounded mailbox will block forever if not also guarded
// by ctx; callers should always pass a cancellable context to Send.
func (ib *Inbox) Close() {
	close(ib.closeOnce)
	ib.commands.Close()
	if ib.isUnbounded {
		ib.unbounded.Close()
	}
}
