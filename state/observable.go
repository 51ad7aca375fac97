// Package state provides a minimal observable value container used by the
// controllers to publish view-state snapshots to a rendering layer.
//
// A Value holds the current snapshot, notifies subscribers synchronously on
// every change, and serializes mutation internally, so controllers can be
// driven from multiple goroutines while subscribers always observe a
// consistent ordering of snapshots.
package state

import "sync"

// Value is a concurrency-safe container for a single observable value.
//
// Semantics:
//   - Get returns the current value.
//   - Set / Update replace the value and notify all subscribers synchronously,
//     in registration order, while still holding the mutation lock. Callbacks
//     must therefore be quick and must not call back into the same Value.
//   - Subscribe registers a callback and returns a cancel func; cancel is
//     idempotent.
//
// The zero Value is not usable; construct with NewValue.
type Value[T any] struct {
	mu    sync.Mutex
	v     T
	subs  map[int]func(T)
	order []int
	next  int
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[int]func(T))}
}

// Get returns the current value.
func (o *Value[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.v
}

// Set replaces the current value and notifies subscribers.
func (o *Value[T]) Set(v T) {
	o.Update(func(T) T { return v })
}

// Update applies fn to the current value under the mutation lock and
// notifies subscribers with the result. The read-modify-write is atomic with
// respect to concurrent Set/Update calls.
func (o *Value[T]) Update(fn func(T) T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.v = fn(o.v)
	for _, id := range o.order {
		if cb, ok := o.subs[id]; ok {
			cb(o.v)
		}
	}
}

// Subscribe registers fn to be called synchronously on every change. It does
// not fire with the current value; call Get first if an initial render is
// needed. The returned cancel func removes the subscription.
func (o *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.next
	o.next++
	o.subs[id] = fn
	o.order = append(o.order, id)

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
		for i, v := range o.order {
			if v == id {
				o.order = append(o.order[:i], o.order[i+1:]...)
				break
			}
		}
	}
}
