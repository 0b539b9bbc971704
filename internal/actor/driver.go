package actor

import (
	"fmt"
	"runtime"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// driver runs a single actor's lifecycle in its own goroutine: Initialize,
// then an alternating pull/dispatch loop that always checks the command
// queue first, then Finalize exactly once regardless of how the loop
// ends. This is the Go rendering of spec.md §4.3's driver pseudocode and
// of quickwit's ActorContext-driven processing loop
// (quickwit-actors/src/actor.rs).
type driver struct {
	handle   *ActorHandle
	behavior Behavior
	sched    *Scheduler
	metrics  *Metrics
}

func (d *driver) run() {
	ctx := &Context{
		self:     d.handle,
		ks:       d.handle.ks,
		prog:     d.handle.prog,
		state:    d.handle.state,
		sched:    d.sched,
		sleepGen: &sleepGeneration{},
	}

	exit := d.loop(ctx)

	d.handle.state.Transition(stateForExit(exit))
	d.runFinalize(ctx, exit)
	d.publishObservable()

	if exit.TripsKillSwitch() {
		d.handle.ks.Kill()
	}
	d.handle.setExitStatus(exit)
	close(d.handle.exit)
}

func stateForExit(exit ExitStatus) ActorState {
	if exit.IsSuccess() {
		return StateSuccess
	}
	return StateFailure
}

// loop is the core pull/dispatch cycle, isolated from run so a panic
// inside it can be recovered into an ExitPanicked status without skipping
// Finalize.
func (d *driver) loop(ctx *Context) (exit ExitStatus) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("actor %q panicked: %v", d.handle.name, r)
			exit = Panicked(fmt.Errorf("%v", r))
		}
	}()

	if init, ok := d.behavior.(Initializer); ok {
		d.handle.state.Transition(StateProcessing)
		if err := init.Initialize(ctx); err != nil {
			if exit, ok := err.(ExitStatus); ok {
				return exit
			}
			return Failure(err)
		}
		d.handle.state.Transition(StateIdle)
	}

	paused := false
	yieldEach := yieldAfterEachMessageOf(d.behavior)

	for {
		if d.handle.ks.IsKilled() {
			return Killed()
		}

		if paused {
			// While paused, never even pull from the message
			// channel: only commands are eligible, so a paused
			// actor's regular messages stay queued in FIFO order
			// until Resume.
			exit, done := d.drainUntilResumed(ctx, &paused)
			if done {
				return exit
			}
			continue
		}

		item, ok := d.handle.inbox.Pull(d.handle.ks.Context())
		if !ok {
			return Killed()
		}

		if item.isCommand {
			if status, done := d.handleCommand(ctx, item.cmd, &paused); done {
				return status
			}
			continue
		}

		if dispatchExit, failed := d.dispatch(ctx, item.msg); failed {
			return dispatchExit
		}

		if yieldEach {
			runtimeGosched()
		}
	}
}

// dispatch delivers msg to the Behavior, bumping progress and replying to
// any ask promise. failed is true only when the handler error should end
// the actor (an ask reply absorbs the error instead of ending it).
func (d *driver) dispatch(ctx *Context, msg envelope) (exit ExitStatus, failed bool) {
	d.handle.state.Transition(StateProcessing)
	d.handle.prog.Record()
	d.metrics.observeState(d.handle.name, StateProcessing)

	err := d.behavior.Receive(ctx, msg.msg)
	d.metrics.observeDispatch(d.handle.name, err)

	d.handle.state.Transition(StateIdle)
	d.metrics.observeState(d.handle.name, StateIdle)
	d.publishObservable()

	if msg.promise != nil {
		if err != nil {
			msg.promise.Complete(fn.Err[any](err))
		} else {
			msg.promise.Complete(fn.Ok[any](nil))
		}
		// Errors surfaced through an ask are the caller's problem,
		// not grounds for ending the actor.
		return ExitStatus{}, false
	}

	if err != nil {
		// A Behavior may return an ExitStatus directly (e.g.
		// Success() or Killed()) to end the actor with that exact
		// status instead of an opaque Failure, matching spec.md
		// §4.3's "r = actor.handle(m, ctx); if Err(s) -> break s".
		if exit, ok := err.(ExitStatus); ok {
			return exit, true
		}
		return Failure(err), true
	}
	return ExitStatus{}, false
}

// handleCommand applies a single control message. done is true once the
// loop should stop, with status holding the final ExitStatus.
func (d *driver) handleCommand(
	ctx *Context, cmd controlEnvelope, paused *bool,
) (status ExitStatus, done bool) {

	switch cmd.cmd {
	case CmdPause:
		*paused = true
		d.handle.state.Transition(StatePaused)
		return ExitStatus{}, false

	case CmdResume:
		*paused = false
		ctx.sleepGen.bump()
		d.handle.state.Transition(StateIdle)
		return ExitStatus{}, false

	case CmdNudge:
		return ExitStatus{}, false

	case CmdObserve:
		var snapshot any
		if p, ok := d.behavior.(ObservableStateProvider); ok {
			snapshot = p.ObservableState()
		}
		if cmd.observeReply != nil {
			cmd.observeReply <- snapshot
		}
		return ExitStatus{}, false

	case CmdExitWithSuccess:
		d.drainMessages(ctx)
		return Success(), true

	case CmdQuit:
		return Quit(), true

	case CmdKill:
		return Killed(), true

	default:
		return ExitStatus{}, false
	}
}

// drainMessages dispatches every regular message currently queued, for
// CmdExitWithSuccess's "drain before exit" semantics. It does not read
// further commands, since CmdExitWithSuccess itself already won the race
// against the command queue to be delivered.
func (d *driver) drainMessages(ctx *Context) {
	for {
		select {
		case msg := <-d.handle.inbox.messageChan():
			if _, failed := d.dispatch(ctx, msg); failed {
				return
			}
		default:
			if obs, ok := d.behavior.(DrainObserver); ok {
				_ = obs.OnDrainedMessages(ctx)
			}
			return
		}
	}
}

// drainUntilResumed blocks processing regular messages until CmdResume or
// a terminal command arrives. done is true once the actor should stop.
func (d *driver) drainUntilResumed(ctx *Context, paused *bool) (exit ExitStatus, done bool) {
	for *paused {
		select {
		case cmd := <-d.handle.inbox.cmdCh:
			if status, stop := d.handleCommand(ctx, cmd, paused); stop {
				return status, true
			}
		case <-d.handle.ks.Done():
			return Killed(), true
		}
	}
	return ExitStatus{}, false
}

// publishObservable pushes the Behavior's current observable-state
// snapshot, if it implements ObservableStateProvider, so subscribers
// always see the latest value per spec.md §6.
func (d *driver) publishObservable() {
	if p, ok := d.behavior.(ObservableStateProvider); ok {
		d.handle.observable.publish(p.ObservableState())
	}
}

func (d *driver) runFinalize(ctx *Context, exit ExitStatus) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf(
				"actor %q panicked during finalize: %v",
				d.handle.name, r,
			)
		}
	}()
	if f, ok := d.behavior.(Finalizer); ok {
		if err := f.Finalize(ctx, exit); err != nil {
			log.Errorf(
				"actor %q finalize error: %v", d.handle.name, err,
			)
		}
	}
}

// runtimeGosched yields the current goroutine, named to make call sites
// read as an intentional scheduling hint rather than a stray stdlib call.
func runtimeGosched() {
	runtime.Gosched()
}
