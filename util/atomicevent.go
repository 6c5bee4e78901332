package util

import (
	"sync"
)

// AtomicEvent holds the most recent value of something that changes and
// wakes up at most one pending reader. Writers never block; a reader that
// falls behind only ever sees the latest value.
type AtomicEvent[T any] struct {
	mu     sync.Mutex
	value  T
	notify chan struct{}
}

func NewAtomicEvent[T any]() *AtomicEvent[T] {
	return &AtomicEvent[T]{
		notify: make(chan struct{}, 1),
	}
}

// Send stores event as the latest value and signals Channel.
func (ae *AtomicEvent[T]) Send(event T) {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	ae.value = event

	select {
	case ae.notify <- struct{}{}:
	default:
		// a notification is already pending
	}
}

// Channel is signalled after Send; use it in select statements.
func (ae *AtomicEvent[T]) Channel() <-chan struct{} {
	return ae.notify
}

func (ae *AtomicEvent[T]) Value() T {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	return ae.value
}
