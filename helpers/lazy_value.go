package helpers

import (
	"context"
	"sync"
)

// LazyValue is a value that may not be available yet. Waiters block in Await until Set is called.
// Set may be called again to replace the value; Reset makes the value absent so that later waiters
// block until the next Set. Waiters that were blocked when Reset ran keep waiting for that next Set.
type LazyValue[T any] struct {
	mu    sync.Mutex
	value T
	has   bool
	ready chan struct{}
}

// NewLazyValue returns an empty LazyValue.
func NewLazyValue[T any]() *LazyValue[T] {
	return &LazyValue[T]{ready: make(chan struct{})}
}

// Set stores v and releases every waiter.
func (l *LazyValue[T]) Set(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
	if !l.has {
		l.has = true
		close(l.ready)
	}
}

// Reset drops the current value. It is a no-op when no value is set.
func (l *LazyValue[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.has {
		return
	}
	var zero T
	l.value = zero
	l.has = false
	l.ready = make(chan struct{})
}

// HasValue reports whether a value is currently set.
func (l *LazyValue[T]) HasValue() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.has
}

// Peek returns the current value without waiting.
func (l *LazyValue[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.has
}

// Await blocks until a value is set or ctx is done.
func (l *LazyValue[T]) Await(ctx context.Context) (T, error) {
	for {
		l.mu.Lock()
		if l.has {
			v := l.value
			l.mu.Unlock()
			return v, nil
		}
		ready := l.ready
		l.mu.Unlock()

		select {
		case <-ready:
			// re-check under lock: a Reset may have raced with the wake-up
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
