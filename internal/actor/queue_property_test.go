package actor

import (
	"testing"

	"pgregory.net/rapid"
)

// TestUnboundedQueueFIFOInvariant checks the property the command queue
// relies on throughout the driver loop (spec.md §3): for any sequence of
// Push/TryPop operations, items come back out in the exact order they went
// in, and TryPop never reports an item present when none was pushed.
func TestUnboundedQueueFIFOInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := newUnboundedQueue[int]()

		var pending []int

		numOps := rapid.IntRange(1, 200).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			if rapid.Bool().Draw(t, "doPush") || len(pending) == 0 {
				v := rapid.Int().Draw(t, "value")
				q.Push(v)
				pending = append(pending, v)
				continue
			}

			v, ok := q.TryPop()
			if !ok {
				t.Fatalf("TryPop reported empty with %d items pending", len(pending))
			}
			if v != pending[0] {
				t.Fatalf("FIFO violated: popped %d, expected %d", v, pending[0])
			}
			pending = pending[1:]
		}

		for len(pending) > 0 {
			v, ok := q.TryPop()
			if !ok {
				t.Fatalf("TryPop reported empty with %d items pending", len(pending))
			}
			if v != pending[0] {
				t.Fatalf("FIFO violated: popped %d, expected %d", v, pending[0])
			}
			pending = pending[1:]
		}

		if _, ok := q.TryPop(); ok {
			t.Fatal("TryPop returned an item after the queue should have been drained")
		}
	})
}
