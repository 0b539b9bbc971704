package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ActorHandle is the caller-facing reference to a running actor: the only
// way anything outside the actor's own goroutine interacts with it. It
// plays the role of the teacher's ActorRef (internal/baselib/actor/
// interface.go), generalized to the single concrete (Message, any) pair
// the teacher itself uses for its DLO actor rather than attempting a
// per-message-type generic Handler[M], which Go's type system cannot
// express as cleanly as Rust's trait-per-message dispatch.
type ActorHandle struct {
	name       string
	inbox      *Inbox
	ks         *KillSwitch
	prog       *Progress
	state      *stateBox
	observable observableBox
	exit       chan struct{}
	exitMu     sync.Mutex
	exitVal    ExitStatus
	exitSet    bool

	healthMu       sync.Mutex
	lastHealthProg uint64
	staleBeats     int
}

// Name returns the actor's name.
func (h *ActorHandle) Name() string { return h.name }

// Tell sends msg without waiting for a reply.
func (h *ActorHandle) Tell(ctx context.Context, msg Message) error {
	if h.state.Load().IsTerminal() {
		return &SendError{Cause: ErrActorTerminated}
	}
	err := h.inbox.Send(ctx, envelope{msg: msg, callerCtx: ctx})
	if err != nil {
		return &SendError{Cause: err}
	}
	return nil
}

// TryTell sends msg without blocking, failing with ErrMailboxFull against
// a full bounded mailbox.
func (h *ActorHandle) TryTell(msg Message) error {
	if h.state.Load().IsTerminal() {
		return &SendError{Cause: ErrActorTerminated}
	}
	err := h.inbox.TrySend(envelope{msg: msg})
	if err != nil {
		return &SendError{Cause: err}
	}
	return nil
}

// Ask sends msg and blocks until a reply arrives, ctx is cancelled, or the
// actor exits without replying.
func (h *ActorHandle) Ask(ctx context.Context, msg Message) fn.Result[any] {
	if h.state.Load().IsTerminal() {
		return fn.Err[any](&AskError{Cause: ErrActorTerminated})
	}
	p := newPromise()
	err := h.inbox.Send(ctx, envelope{msg: msg, promise: p, callerCtx: ctx})
	if err != nil {
		return fn.Err[any](&AskError{Cause: err})
	}
	select {
	case <-p.done:
	case <-h.exit:
		// The actor may have replied just before exiting.
		select {
		case <-p.done:
		default:
			return fn.Err[any](&AskError{Cause: ErrProcessMessage})
		}
	case <-ctx.Done():
		return fn.Err[any](&AskError{Cause: ctx.Err()})
	}
	result := p.result
	if _, err := result.Unpack(); err != nil {
		return fn.Err[any](&AskError{Cause: err})
	}
	return result
}

// Observe requests a snapshot of the actor's observable state. The result
// is whatever the Behavior's ObservableState (if implemented) returns at
// the moment the command is processed, honoring command-queue priority
// ahead of any queued regular messages.
func (h *ActorHandle) Observe(ctx context.Context) (any, error) {
	reply := make(chan any, 1)
	if !h.inbox.PushCommand(controlEnvelope{cmd: CmdObserve, observeReply: reply}) {
		return nil, ErrActorTerminated
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pause requests the actor stop dispatching regular messages until
// Resume.
func (h *ActorHandle) Pause() {
	h.inbox.PushCommand(controlEnvelope{cmd: CmdPause})
}

// Resume requests the actor leave Paused and resume dispatching.
func (h *ActorHandle) Resume() {
	h.inbox.PushCommand(controlEnvelope{cmd: CmdResume})
}

// SendExitWithSuccess requests a graceful drain-then-exit with ExitSuccess.
func (h *ActorHandle) SendExitWithSuccess() {
	h.inbox.PushCommand(controlEnvelope{cmd: CmdExitWithSuccess})
}

// Quit requests immediate shutdown with ExitQuit.
func (h *ActorHandle) Quit() {
	h.inbox.PushCommand(controlEnvelope{cmd: CmdQuit})
}

// Kill trips the actor's kill switch directly, bypassing the command
// queue: kill switches are meant to be observed by handlers mid-flight via
// ctx.Done(), not just at the next dispatch boundary.
func (h *ActorHandle) Kill() {
	h.ks.Kill()
}

// State returns the actor's current lifecycle state.
func (h *ActorHandle) State() ActorState {
	return h.state.Load()
}

// LatestObservableState returns the most recent snapshot published by the
// actor, or nil if none has been published yet.
func (h *ActorHandle) LatestObservableState() any {
	return h.observable.load()
}

// Join blocks until the actor terminates, returning its final exit status
// and final observable-state snapshot.
func (h *ActorHandle) Join(ctx context.Context) (ExitStatus, any, error) {
	select {
	case <-h.exit:
		status, _ := h.ExitStatus()
		return status, h.LatestObservableState(), nil
	case <-ctx.Done():
		return ExitStatus{}, nil, ctx.Err()
	}
}

// Health reports the actor's health per spec.md §4.6: Success if the
// actor's final state is a success, FailureOrUnhealthy if its final state
// is a failure or if progress has not advanced across two consecutive
// calls to Health while the actor is non-paused, else Healthy. Callers
// (typically a supervisor) are expected to call Health roughly once per
// heartbeat; calling it more often than that will spuriously report
// staleness.
func (h *ActorHandle) Health() Health {
	if exit, done := h.ExitStatus(); done {
		if exit.IsSuccess() {
			return HealthSuccess
		}
		return HealthFailureOrUnhealthy
	}

	h.healthMu.Lock()
	defer h.healthMu.Unlock()

	current := h.prog.Value()
	if h.state.Load() == StatePaused || h.prog.IsProtected() {
		h.lastHealthProg = current
		h.staleBeats = 0
		return HealthHealthy
	}
	if current == h.lastHealthProg {
		h.staleBeats++
	} else {
		h.staleBeats = 0
	}
	h.lastHealthProg = current

	if h.staleBeats >= 2 {
		return HealthFailureOrUnhealthy
	}
	return HealthHealthy
}

// Progress returns the actor's current heartbeat counter, for supervisors
// polling liveness.
func (h *ActorHandle) Progress() uint64 {
	return h.prog.Value()
}

// Done returns a channel closed once the actor has fully terminated
// (after Finalize has run).
func (h *ActorHandle) Done() <-chan struct{} {
	return h.exit
}

// ExitStatus returns the actor's final exit status. Only valid after Done
// is closed; returns false otherwise.
func (h *ActorHandle) ExitStatus() (ExitStatus, bool) {
	h.exitMu.Lock()
	defer h.exitMu.Unlock()
	return h.exitVal, h.exitSet
}

func (h *ActorHandle) setExitStatus(s ExitStatus) {
	h.exitMu.Lock()
	defer h.exitMu.Unlock()
	if h.exitSet {
		return
	}
	h.exitVal = s
	h.exitSet = true
}

// SpawnBuilder configures and launches a new actor, mirroring the
// teacher's ActorConfig construction pattern generalized to this
// package's own SpawnBuilder/ActorHandle types named in this module's
// supplemented feature set.
type SpawnBuilder struct {
	behavior  Behavior
	parentKS  *KillSwitch
	mailbox   *QueueCapacity
	scheduler *Scheduler
	metrics   *Metrics
	obsCap    int
}

// NewSpawnBuilder starts a builder for behavior.
func NewSpawnBuilder(behavior Behavior) *SpawnBuilder {
	return &SpawnBuilder{behavior: behavior}
}

// WithKillSwitch scopes the new actor under parent instead of creating a
// fresh, parentless kill switch.
func (b *SpawnBuilder) WithKillSwitch(parent *KillSwitch) *SpawnBuilder {
	b.parentKS = parent
	return b
}

// WithMailbox overrides the Behavior's QueueCapacitor (or the package
// default) with an explicit capacity.
func (b *SpawnBuilder) WithMailbox(capacity QueueCapacity) *SpawnBuilder {
	b.mailbox = &capacity
	return b
}

// WithScheduler wires in the Scheduler used for ScheduleSelfMsg and Sleep.
// A Universe's Spawn calls this automatically; tests constructing an actor
// directly must call it to exercise those features.
func (b *SpawnBuilder) WithScheduler(sched *Scheduler) *SpawnBuilder {
	b.scheduler = sched
	return b
}

// WithMetrics wires the actor's dispatch loop into shared Prometheus
// instruments. A Universe with metrics attached via Universe.WithMetrics
// sets this automatically.
func (b *SpawnBuilder) WithMetrics(m *Metrics) *SpawnBuilder {
	b.metrics = m
	return b
}

// WithObservableStateCapacity records n on the builder. Spawn does not read
// it: every Observe call gets its own one-slot reply channel whatever n
// is.
func (b *SpawnBuilder) WithObservableStateCapacity(n int) *SpawnBuilder {
	b.obsCap = n
	return b
}

// Spawn launches the actor's driver loop in its own goroutine and returns
// its handle immediately; Initialize runs asynchronously before the first
// message is dispatched.
func (b *SpawnBuilder) Spawn() *ActorHandle {
	ks := b.parentKS
	if ks == nil {
		ks = NewKillSwitch()
	} else {
		ks = ks.Child()
	}

	capacity := queueCapacityOf(b.behavior)
	if b.mailbox != nil {
		capacity = *b.mailbox
	}

	h := &ActorHandle{
		name:  b.behavior.Name(),
		inbox: NewInbox(capacity),
		ks:    ks,
		prog:  NewProgress(),
		state: newStateBox(),
		exit:  make(chan struct{}),
	}

	d := &driver{
		handle:   h,
		behavior: b.behavior,
		sched:    b.scheduler,
		metrics:  b.metrics,
	}
	go d.run()

	return h
}
