package actor

// ExitKind enumerates the ways an actor's lifecycle can end, mirroring the
// quickwit ActorExitStatus enum (quickwit-actors/src/actor.rs).
type ExitKind int

const (
	// ExitSuccess is a clean, intentional exit after draining.
	ExitSuccess ExitKind = iota

	// ExitQuit is an immediate, intentional exit that may skip queued
	// messages (requested via CmdQuit).
	ExitQuit

	// ExitDownstreamClosed means a send to a downstream actor failed
	// because its mailbox was closed, and this actor chose to exit
	// rather than treat it as an error.
	ExitDownstreamClosed

	// ExitKilled means the actor's kill switch was tripped, either
	// directly or by an ancestor.
	ExitKilled

	// ExitFailure means the actor's handler returned an error that was
	// not recovered from.
	ExitFailure

	// ExitPanicked means the actor's handler panicked; the driver loop
	// recovered the panic and converted it into this exit status.
	ExitPanicked
)

func (k ExitKind) String() string {
	switch k {
	case ExitSuccess:
		return "Success"
	case ExitQuit:
		return "Quit"
	case ExitDownstreamClosed:
		return "DownstreamClosed"
	case ExitKilled:
		return "Killed"
	case ExitFailure:
		return "Failure"
	case ExitPanicked:
		return "Panicked"
	default:
		return "Unknown"
	}
}

// ExitStatus is the tagged-union result of an actor's lifecycle. Cause is
// only meaningful for ExitFailure and ExitPanicked.
type ExitStatus struct {
	Kind  ExitKind
	Cause error
}

// Success builds an ExitSuccess status.
func Success() ExitStatus { return ExitStatus{Kind: ExitSuccess} }

// Quit builds an ExitQuit status.
func Quit() ExitStatus { return ExitStatus{Kind: ExitQuit} }

// DownstreamClosed builds an ExitDownstreamClosed status.
func DownstreamClosed() ExitStatus { return ExitStatus{Kind: ExitDownstreamClosed} }

// Killed builds an ExitKilled status.
func Killed() ExitStatus { return ExitStatus{Kind: ExitKilled} }

// Failure builds an ExitFailure status carrying cause.
func Failure(cause error) ExitStatus { return ExitStatus{Kind: ExitFailure, Cause: cause} }

// Panicked builds an ExitPanicked status carrying the recovered value as
// an error (via fmt.Errorf at the panic recovery site).
func Panicked(cause error) ExitStatus { return ExitStatus{Kind: ExitPanicked, Cause: cause} }

// IsSuccess reports whether the actor ended in a way the runtime counts as
// a success: a clean Success, an intentional Quit, or DownstreamClosed.
// Such an actor ends in StateSuccess and reports HealthSuccess.
// DownstreamClosed still trips the kill switch (see TripsKillSwitch).
func (s ExitStatus) IsSuccess() bool {
	switch s.Kind {
	case ExitSuccess, ExitQuit, ExitDownstreamClosed:
		return true
	default:
		return false
	}
}

// TripsKillSwitch reports whether this exit status should cascade a kill
// to the actor's subtree, mirroring quickwit's should_activate_kill_switch:
// DownstreamClosed, Failure and Panicked cascade; Success and Quit do not,
// and Killed is already a kill, so it's excluded as redundant.
func (s ExitStatus) TripsKillSwitch() bool {
	switch s.Kind {
	case ExitDownstreamClosed, ExitFailure, ExitPanicked:
		return true
	default:
		return false
	}
}

func (s ExitStatus) Error() string {
	if s.Cause != nil {
		return s.Kind.String() + ": " + s.Cause.Error()
	}
	return s.Kind.String()
}
