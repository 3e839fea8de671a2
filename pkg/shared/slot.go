// Package shared provides the objects producers and the display consumer use
// to hand readings across goroutines: a latest-value slot per reading type and
// a coalescing readiness signal.
package shared

import "sync"

// Slot is a single-value mailbox. Publish overwrites the stored value in
// place; there is no queueing and the latest value wins.
//
// Each Slot is expected to have a single writer. Readers always observe a
// complete value, either the previous one or the new one.
type Slot[T any] struct {
	mu    sync.Mutex
	value T
	ok    bool
	seq   uint64
}

func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{}
}

// Publish replaces the stored value.
func (s *Slot[T]) Publish(v T) {
	s.mu.Lock()
	s.value = v
	s.ok = true
	s.seq++
	s.mu.Unlock()
}

// Snapshot returns a copy of the last published value. The bool is false
// until the first Publish.
func (s *Slot[T]) Snapshot() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.ok
}

// Seq returns the number of completed publishes.
func (s *Slot[T]) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}
