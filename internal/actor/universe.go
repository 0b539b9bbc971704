package actor

import "sync"

// Universe is the root container for a set of actors sharing one
// Scheduler and one Receptionist, mirroring the teacher's ActorSystem
// (internal/baselib/actor/system.go) generalized to this package's
// rewritten actor core. Tests typically construct a fresh Universe per
// test case so actor state never leaks between them.
type Universe struct {
	sched        *Scheduler
	receptionist *Receptionist
	metrics      *Metrics

	mu     sync.Mutex
	actors map[string]*ActorHandle
	rootKS *KillSwitch
}

// NewUniverse builds a Universe with a real-time Scheduler.
func NewUniverse() *Universe {
	return &Universe{
		sched:        NewScheduler(),
		receptionist: newReceptionist(),
		actors:       make(map[string]*ActorHandle),
		rootKS:       NewKillSwitch(),
	}
}

// NewSimulatedUniverse builds a Universe whose Scheduler only advances via
// AdvanceTime, for deterministic timing tests.
func NewSimulatedUniverse(sched *Scheduler) *Universe {
	return &Universe{
		sched:        sched,
		receptionist: newReceptionist(),
		actors:       make(map[string]*ActorHandle),
		rootKS:       NewKillSwitch(),
	}
}

// WithMetrics attaches Prometheus instruments that every subsequently
// spawned actor in this Universe will report through.
func (u *Universe) WithMetrics(m *Metrics) *Universe {
	u.metrics = m
	return u
}

// Scheduler returns the Universe's shared Scheduler, for callers that need
// to pass it explicitly to a SpawnBuilder built outside Spawn (e.g. the
// indexing pipeline's own nested supervisor).
func (u *Universe) Scheduler() *Scheduler {
	return u.sched
}

// RootKillSwitch returns the Universe's top-level kill switch. Killing it
// cascades to every actor spawned without an explicit WithKillSwitch
// override.
func (u *Universe) RootKillSwitch() *KillSwitch {
	return u.rootKS
}

// Spawn launches behavior under this Universe: it wires in the shared
// Scheduler and, unless the builder already set one, scopes the actor
// under the Universe's root kill switch.
func (u *Universe) Spawn(builder *SpawnBuilder) *ActorHandle {
	if builder.scheduler == nil {
		builder.WithScheduler(u.sched)
	}
	if builder.parentKS == nil {
		builder.WithKillSwitch(u.rootKS)
	}
	if builder.metrics == nil && u.metrics != nil {
		builder.WithMetrics(u.metrics)
	}
	handle := builder.Spawn()

	u.mu.Lock()
	u.actors[handle.name] = handle
	u.mu.Unlock()

	return handle
}

// Lookup returns a previously spawned actor by name.
func (u *Universe) Lookup(name string) (*ActorHandle, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	h, ok := u.actors[name]
	return h, ok
}

// Receptionist returns the Universe's service-discovery registry.
func (u *Universe) Receptionist() *Receptionist {
	return u.receptionist
}

// Shutdown trips the root kill switch and stops the Scheduler's timer
// goroutine (a no-op for a simulated Scheduler).
func (u *Universe) Shutdown() {
	u.rootKS.Kill()
	u.sched.Stop()
}
