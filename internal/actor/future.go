package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Future represents the result of an in-flight ask. It mirrors the teacher
// runtime's Future interface (internal/baselib/actor/interface.go), which
// this package now implements directly.
type Future interface {
	// Await blocks until the result is available or ctx is cancelled.
	Await(ctx context.Context) fn.Result[any]

	// ThenApply returns a new Future that carries transform(result) once
	// the original future completes. If ctx is cancelled first, the new
	// future completes with the context's error.
	ThenApply(ctx context.Context, transform func(any) any) Future

	// OnComplete registers a callback invoked once the future completes,
	// or once ctx is cancelled, whichever happens first.
	OnComplete(ctx context.Context, fn func(fn.Result[any]))
}

// Promise completes an associated Future exactly once.
type Promise interface {
	Future() Future
	Complete(result fn.Result[any]) bool
}

// promiseImpl is the concrete Promise/Future pair used by every ask and by
// Observe replies. completed is guarded by mu; done is closed exactly once,
// on the first Complete call, to wake any Await/OnComplete waiters.
type promiseImpl struct {
	mu        sync.Mutex
	done      chan struct{}
	result    fn.Result[any]
	completed bool
}

// newPromise allocates an unfulfilled promise.
func newPromise() *promiseImpl {
	return &promiseImpl{done: make(chan struct{})}
}

func (p *promiseImpl) Future() Future { return p }

func (p *promiseImpl) Complete(result fn.Result[any]) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.completed {
		return false
	}
	p.result = result
	p.completed = true
	close(p.done)
	return true
}

func (p *promiseImpl) Await(ctx context.Context) fn.Result[any] {
	select {
	case <-p.done:
		return p.result
	case <-ctx.Done():
		return fn.Err[any](ctx.Err())
	}
}

func (p *promiseImpl) ThenApply(
	ctx context.Context, transform func(any) any,
) Future {

	next := newPromise()
	go func() {
		result := p.Await(ctx)
		val, err := result.Unpack()
		if err != nil {
			next.Complete(fn.Err[any](err))
			return
		}
		next.Complete(fn.Ok(transform(val)))
	}()
	return next
}

func (p *promiseImpl) OnComplete(ctx context.Context, cb func(fn.Result[any])) {
	go func() {
		cb(p.Await(ctx))
	}()
}
