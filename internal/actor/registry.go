package actor

import (
	"sync"
	"sync/atomic"
)

// ServiceKey identifies a family of interchangeable actors registered
// with a Receptionist, mirroring the teacher's ServiceKey[M, R]
// (internal/baselib/actor/system.go). The type parameter is carried only
// in the key's identity (its id string); lookups are untyped at the
// Receptionist layer and recovered by the caller, same tradeoff this
// package makes elsewhere in favor of a single concrete ActorHandle type.
type ServiceKey[M any] struct {
	id string
}

// NewServiceKey returns a ServiceKey identified by id. Two ServiceKeys
// with the same id and type parameter refer to the same service family.
func NewServiceKey[M any](id string) ServiceKey[M] {
	return ServiceKey[M]{id: id}
}

func (k ServiceKey[M]) String() string { return k.id }

// Receptionist is a simple service-discovery registry: actors register
// themselves under a ServiceKey, and callers look up every handle
// currently registered under that key, or use a Router for round-robin
// dispatch across them.
type Receptionist struct {
	mu       sync.Mutex
	services map[string][]*ActorHandle
}

func newReceptionist() *Receptionist {
	return &Receptionist{services: make(map[string][]*ActorHandle)}
}

// Register adds handle to the set registered under key.
func Register[M any](r *Receptionist, key ServiceKey[M], handle *ActorHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[key.String()] = append(r.services[key.String()], handle)
}

// Deregister removes handle from the set registered under key, if
// present.
func Deregister[M any](r *Receptionist, key ServiceKey[M], handle *ActorHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.services[key.String()]
	for i, h := range list {
		if h == handle {
			r.services[key.String()] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Find returns every handle currently registered under key.
func Find[M any](r *Receptionist, key ServiceKey[M]) []*ActorHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.services[key.String()]
	out := make([]*ActorHandle, len(list))
	copy(out, list)
	return out
}

// Router round-robins Tell/Ask calls across every handle registered under
// a ServiceKey at the time the Router was built. It does not re-query the
// Receptionist on each call; build a fresh Router after topology changes.
type Router struct {
	handles []*ActorHandle
	next    atomic.Uint64
}

// NewRouter builds a Router over the handles currently registered under
// key.
func NewRouter[M any](r *Receptionist, key ServiceKey[M]) *Router {
	return &Router{handles: Find(r, key)}
}

// Next returns the next handle in round-robin order, or false if the
// Router has no members.
func (rt *Router) Next() (*ActorHandle, bool) {
	if len(rt.handles) == 0 {
		return nil, false
	}
	i := rt.next.Add(1) - 1
	return rt.handles[i%uint64(len(rt.handles))], true
}
