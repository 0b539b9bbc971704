package actor

// Health is a supervisor's view of a single actor's liveness, mirroring
// quickwit's Health enum (quickwit-actors/src/actor.rs).
type Health int

const (
	// HealthHealthy means the actor is still running and has made
	// progress since it was last polled.
	HealthHealthy Health = iota

	// HealthSuccess means the actor has exited with a successful
	// ExitStatus.
	HealthSuccess

	// HealthFailureOrUnhealthy means the actor has exited with a
	// non-successful ExitStatus, or is still running but has not made
	// progress since it was last polled (a stall).
	HealthFailureOrUnhealthy
)

func (h Health) String() string {
	switch h {
	case HealthHealthy:
		return "Healthy"
	case HealthSuccess:
		return "Success"
	case HealthFailureOrUnhealthy:
		return "FailureOrUnhealthy"
	default:
		return "Unknown"
	}
}

// Supervisable is implemented by anything a Supervisor loop can health
// check: in practice this is always an *ActorHandle, but the interface
// lets a pipeline supervisor (internal/indexing) treat heterogeneous
// handles uniformly.
type Supervisable interface {
	Name() string
	State() ActorState
	Progress() uint64
	Done() <-chan struct{}
	ExitStatus() (ExitStatus, bool)
}

var _ Supervisable = (*ActorHandle)(nil)

// Healthcheck computes a Supervisable's Health given the last progress
// value observed for it. lastProgress should be the value from the
// previous Healthcheck call; pass 0 on the first call.
func Healthcheck(s Supervisable, lastProgress uint64) Health {
	if exit, done := s.ExitStatus(); done {
		if exit.IsSuccess() {
			return HealthSuccess
		}
		return HealthFailureOrUnhealthy
	}
	if s.Progress() == lastProgress {
		return HealthFailureOrUnhealthy
	}
	return HealthHealthy
}
