package actor

import "sync/atomic"

// observableBox holds the latest observable-state snapshot an actor has
// published. Subscribers only ever see the most recent value, never a
// history, matching spec.md §6's "monotonically updated latest value"
// contract. atomic.Value gives a lock-free single-publisher/many-reader
// cell, which fits: the actor's own driver loop is the only writer.
type observableBox struct {
	v atomic.Value // holds `any`, boxed in observableEntry to allow nil
}

type observableEntry struct {
	val any
}

func (b *observableBox) publish(val any) {
	b.v.Store(observableEntry{val: val})
}

func (b *observableBox) load() any {
	v := b.v.Load()
	if v == nil {
		return nil
	}
	return v.(observableEntry).val
}
