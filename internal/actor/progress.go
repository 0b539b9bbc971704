package actor

import "sync/atomic"

// Progress is a monotonic heartbeat counter plus a protected-zone gate. A
// supervisor reads the counter at heartbeat cadence (see ActorHandle.Health)
// to decide whether an actor has made forward progress; an open protected
// zone exempts the actor from that check entirely, for handlers that must
// block on something outside the runtime's control (an external API call,
// a long disk flush) without being mistaken for a hang.
type Progress struct {
	counter   atomic.Uint64
	protected atomic.Int32
}

// NewProgress returns a fresh, unprotected progress tracker at counter 0.
func NewProgress() *Progress {
	return &Progress{}
}

// Record bumps the heartbeat counter. Called by the driver loop on every
// dispatch, and by handlers via ActorContext.RecordProgress for handlers
// that run long enough to need a mid-flight heartbeat.
func (p *Progress) Record() {
	p.counter.Add(1)
}

// Value returns the current heartbeat counter.
func (p *Progress) Value() uint64 {
	return p.counter.Load()
}

// IsProtected reports whether a protected zone is currently open.
func (p *Progress) IsProtected() bool {
	return p.protected.Load() > 0
}

// ProtectedZoneGuard releases a single protected-zone reservation. It must
// be released on every exit path (typically via defer) or the actor will be
// considered permanently alive by supervisors.
type ProtectedZoneGuard struct {
	progress *Progress
	released atomic.Bool
}

// Release ends the protected zone. Idempotent: only the first call has any
// effect.
func (g *ProtectedZoneGuard) Release() {
	if g.released.CompareAndSwap(false, true) {
		g.progress.protected.Add(-1)
	}
}

// ProtectZone opens a protected zone and returns a guard that must be
// released to close it. Protected zones nest: a supervisor sees the actor
// as alive as long as any guard remains open.
func (p *Progress) ProtectZone() *ProtectedZoneGuard {
	p.protected.Add(1)
	return &ProtectedZoneGuard{progress: p}
}
