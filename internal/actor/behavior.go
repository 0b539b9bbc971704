package actor

// RuntimeHint is an actor's declared scheduling preference. Spawn does not
// read it: every actor runs on its own goroutine for its entire lifetime,
// whichever hint it declares.
type RuntimeHint int

const (
	// RuntimeShared declares that the actor is fine sharing scheduling
	// with others. This is the default for actors that don't implement
	// RuntimeHinter.
	RuntimeShared RuntimeHint = iota

	// RuntimeDedicated declares that the actor blocks for long stretches
	// (e.g. on cgo or syscalls).
	RuntimeDedicated
)

// Behavior is the minimal contract every actor must implement: a name for
// logging/metrics, and a Receive method invoked once per regular message.
// Everything else an actor might want to customize is expressed as an
// optional capability interface below, in the same spirit as io.ReaderFrom
// or http.Flusher: the driver loop type-asserts for it and falls back to a
// sane default when absent, rather than forcing every actor to embed a
// base struct and override virtual methods (Go has no such mechanism).
type Behavior interface {
	// Name identifies the actor in logs, metrics labels, and Observe
	// snapshots.
	Name() string

	// Receive handles a single regular message. Returning an error ends
	// the actor with ExitFailure(err) unless the error is recovered by
	// the call site (e.g. an Ask reply).
	Receive(ctx *Context, msg Message) error
}

// Initializer is implemented by actors that need setup before the first
// message is dispatched.
type Initializer interface {
	Initialize(ctx *Context) error
}

// Finalizer is implemented by actors that need teardown once their exit
// status is decided. Finalize is guaranteed to run exactly once, even on
// a panic or a kill, matching spec.md §3's finalize-once invariant.
type Finalizer interface {
	Finalize(ctx *Context, exit ExitStatus) error
}

// DrainObserver is implemented by actors that want a callback once their
// message queue has been fully drained (relevant after CmdExitWithSuccess,
// where the regular queue is emptied before the actor actually exits).
type DrainObserver interface {
	OnDrainedMessages(ctx *Context) error
}

// RuntimeHinter is implemented by actors that want a non-default
// RuntimeHint. See RuntimeHint.
type RuntimeHinter interface {
	RuntimeHint() RuntimeHint
}

// QueueCapacitor is implemented by actors that want a non-default mailbox
// capacity. Actors that don't implement this get Bounded(64).
type QueueCapacitor interface {
	QueueCapacity() QueueCapacity
}

// ObservableStateProvider is implemented by actors that want CmdObserve
// (triggered via ActorHandle.Observe) to return a meaningful snapshot
// instead of nil.
type ObservableStateProvider interface {
	ObservableState() any
}

// YieldPolicy is implemented by actors that want to yield the goroutine
// back to the Go scheduler after every message, trading throughput for
// fairness in a universe with many busy actors sharing RuntimeShared.
type YieldPolicy interface {
	YieldAfterEachMessage() bool
}

const defaultMailboxCapacity = 64

func runtimeHintOf(b Behavior) RuntimeHint {
	if h, ok := b.(RuntimeHinter); ok {
		return h.RuntimeHint()
	}
	return RuntimeShared
}

func queueCapacityOf(b Behavior) QueueCapacity {
	if q, ok := b.(QueueCapacitor); ok {
		return q.QueueCapacity()
	}
	return Bounded(defaultMailboxCapacity)
}

func yieldAfterEachMessageOf(b Behavior) bool {
	if y, ok := b.(YieldPolicy); ok {
		return y.YieldAfterEachMessage()
	}
	return false
}
