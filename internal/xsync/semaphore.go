// Package xsync carries small concurrency primitives that don't belong to
// either subsystem directly: a channel-backed counting semaphore.
package xsync

// Semaphore is a counting semaphore built on a buffered channel.
type Semaphore struct {
	slots chan struct{}
}

// NewSemaphore creates a semaphore with the given capacity. Capacities
// below 1 are clamped to 1.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 1
	}
	return &Semaphore{slots: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is available.
func (s *Semaphore) Acquire() {
	s.slots <- struct{}{}
}

// Release frees a slot. Releasing past capacity is a no-op rather than a
// panic.
func (s *Semaphore) Release() {
	select {
	case <-s.slots:
	default:
	}
}

// TryAcquire acquires a slot without blocking, reporting whether it got one.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}
