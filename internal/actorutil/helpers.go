// Package actorutil provides convenience helpers layered on top of
// internal/actor's single-concrete-type ActorHandle, mirroring the shape of
// the teacher's internal/actorutil helpers but adapted to a runtime that has
// no per-message-type ActorRef[M, R] generic: every handle speaks the same
// (Message, any) pair, so these helpers operate directly on
// *actor.ActorHandle and recover typed responses via a type assertion.
package actorutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/corpus/internal/actor"
)

// AskAwait sends msg to h and blocks until the reply is available, unpacking
// the Result into a plain (value, error) pair.
func AskAwait(
	ctx context.Context, h *actor.ActorHandle, msg actor.Message,
) (any, error) {

	return h.Ask(ctx, msg).Unpack()
}

// AskAwaitTyped is like AskAwait but asserts the response to type T, which
// is useful when a Behavior's Ask responses are a union recovered through
// ObservableState or a reply message carrying more than one concrete shape.
func AskAwaitTyped[T any](
	ctx context.Context, h *actor.ActorHandle, msg actor.Message,
) (T, error) {

	resp, err := AskAwait(ctx, h, msg)
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := resp.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf(
			"unexpected response type: got %T, want %T",
			resp, zero,
		)
	}

	return typed, nil
}

// TellAll sends msg to every handle in handles using fire-and-forget
// semantics, for broadcasting to a pool or a set of pipeline stages.
func TellAll(ctx context.Context, handles []*actor.ActorHandle, msg actor.Message) {
	for _, h := range handles {
		_ = h.Tell(ctx, msg)
	}
}

// ParallelAsk sends msgs[i] to handles[i] concurrently and collects all
// results in input order. handles and msgs must have the same length.
func ParallelAsk(
	ctx context.Context, handles []*actor.ActorHandle, msgs []actor.Message,
) []fn.Result[any] {

	if len(handles) != len(msgs) {
		panic("handles and msgs must have same length")
	}

	results := make([]fn.Result[any], len(handles))
	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, h *actor.ActorHandle) {
			defer wg.Done()
			results[i] = h.Ask(ctx, msgs[i])
		}(i, h)
	}
	wg.Wait()
	return results
}

// ParallelAskSame sends the same msg to every handle concurrently and
// collects all results in input order.
func ParallelAskSame(
	ctx context.Context, handles []*actor.ActorHandle, msg actor.Message,
) []fn.Result[any] {

	results := make([]fn.Result[any], len(handles))
	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, h *actor.ActorHandle) {
			defer wg.Done()
			results[i] = h.Ask(ctx, msg)
		}(i, h)
	}
	wg.Wait()
	return results
}

// FirstSuccess asks every handle concurrently and returns the first
// successful response. If every ask fails, the last error observed is
// returned.
func FirstSuccess(
	ctx context.Context, handles []*actor.ActorHandle, msg actor.Message,
) (any, error) {

	if len(handles) == 0 {
		return nil, fmt.Errorf("no actors provided")
	}

	type indexed struct {
		result fn.Result[any]
		idx    int
	}
	resultCh := make(chan indexed, len(handles))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i, h := range handles {
		go func(idx int, handle *actor.ActorHandle) {
			result := handle.Ask(ctx, msg)
			select {
			case resultCh <- indexed{result: result, idx: idx}:
			case <-ctx.Done():
			}
		}(i, h)
	}

	var lastErr error
	for received := 0; received < len(handles); received++ {
		select {
		case res := <-resultCh:
			val, err := res.result.Unpack()
			if err == nil {
				cancel()
				return val, nil
			}
			lastErr = err

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// MapResponses transforms every successful result with mapFn, passing
// through errors unchanged.
func MapResponses[T any](
	results []fn.Result[any], mapFn func(any) T,
) []fn.Result[T] {

	mapped := make([]fn.Result[T], len(results))
	for i, r := range results {
		val, err := r.Unpack()
		if err != nil {
			mapped[i] = fn.Err[T](err)
		} else {
			mapped[i] = fn.Ok(mapFn(val))
		}
	}
	return mapped
}

// CollectSuccesses returns only the successful values from results,
// discarding errors.
func CollectSuccesses(results []fn.Result[any]) []any {
	var successes []any
	for _, r := range results {
		if val, err := r.Unpack(); err == nil {
			successes = append(successes, val)
		}
	}
	return successes
}

// AllSucceeded reports whether every result in results succeeded.
func AllSucceeded(results []fn.Result[any]) bool {
	for _, r := range results {
		if _, err := r.Unpack(); err != nil {
			return false
		}
	}
	return true
}

// FirstError returns the first error in results, or nil if all succeeded.
func FirstError(results []fn.Result[any]) error {
	for _, r := range results {
		if _, err := r.Unpack(); err != nil {
			return err
		}
	}
	return nil
}
